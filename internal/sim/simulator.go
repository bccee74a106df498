// Package sim drives a fixed-step integration over the assembled system
// and records the full state history.
package sim

import (
	"context"
	"math"

	"github.com/pavshv/mdof/internal/assembly"
	"github.com/pavshv/mdof/internal/forcing"
	"github.com/pavshv/mdof/internal/logging"
	"github.com/pavshv/mdof/internal/metrics"
	"github.com/pavshv/mdof/internal/model"
	"github.com/pavshv/mdof/internal/solver"
)

type Simulator struct {
	reg       *model.Registry
	mats      *assembly.Matrices
	stepper   solver.Stepper
	metrics   []Metric
	observers []Observer
}

func New(reg *model.Registry, mats *assembly.Matrices, stepper solver.Stepper) *Simulator {
	return &Simulator{
		reg:     reg,
		mats:    mats,
		stepper: stepper,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Build wires the full pipeline for a registry: sample forces, assemble
// matrices, invert mass and construct the named stepper. All fatal
// definition errors surface here, before any integration.
func Build(reg *model.Registry, cfg Config, integrator string) (*Simulator, *assembly.Matrices, []float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	grid := Grid(cfg)

	mats, err := assembly.Assemble(reg)
	if err != nil {
		return nil, nil, nil, err
	}
	forces, err := forcing.BuildAll(reg, grid)
	if err != nil {
		return nil, nil, nil, err
	}
	sys, err := solver.NewSystem(mats, forces)
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := solver.New(integrator, sys)
	if err != nil {
		return nil, nil, nil, err
	}
	return New(reg, mats, st), mats, grid, nil
}

// Run integrates over the grid. Step 0 is seeded from the initial
// conditions; every later step accumulates the stepper's increments onto
// the previous state. Reference offsets are added to the displacement
// series after integration, so the result holds absolute positions while
// metrics observe relative ones.
func (s *Simulator) Run(ctx context.Context, grid []float64) (*Result, error) {
	if len(grid) < 2 {
		return nil, ErrShortGrid
	}

	n := s.reg.N()
	steps := len(grid)
	dt := grid[1] - grid[0]

	logging.Logger.Debug().
		Int("bodies", n).
		Int("samples", steps).
		Float64("dt", dt).
		Str("integrator", s.stepper.Name()).
		Msg("starting integration")

	result := &Result{
		Times:         append([]float64(nil), grid...),
		Displacements: make([][]float64, steps),
		Velocities:    make([][]float64, steps),
		Metrics:       make(map[string]float64),
		Integrator:    s.stepper.Name(),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	v0, x0 := s.reg.InitialConditions()
	result.Velocities[0] = append([]float64(nil), v0...)
	result.Displacements[0] = append([]float64(nil), x0...)
	s.observe(v0, x0, grid[0])

	initialEnergy := metrics.Total(s.mats.M, s.mats.K, v0, x0)

	for i := 1; i < steps; i++ {
		select {
		case <-ctx.Done():
			result.Times = result.Times[:i]
			result.Velocities = result.Velocities[:i]
			result.Displacements = result.Displacements[:i]
			return result, ctx.Err()
		default:
		}

		prevV := result.Velocities[i-1]
		prevX := result.Displacements[i-1]
		dv, dx := s.stepper.Step(prevV, prevX, grid[i-1], dt)

		v := make([]float64, n)
		x := make([]float64, n)
		for j := 0; j < n; j++ {
			v[j] = prevV[j] + dv[j]
			x[j] = prevX[j] + dx[j]
		}

		if !valid(v) || !valid(x) {
			return nil, &SimulationError{Step: i, Time: grid[i], Wrapped: ErrUnstable}
		}

		result.Velocities[i] = v
		result.Displacements[i] = x
		result.Steps++

		s.observe(v, x, grid[i])
	}

	finalV := result.Velocities[steps-1]
	finalX := result.Displacements[steps-1]
	finalEnergy := metrics.Total(s.mats.M, s.mats.K, finalV, finalX)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	logging.Logger.Debug().
		Int("steps", result.Steps).
		Float64("energy_drift", result.EnergyDrift).
		Msg("integration finished")

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	off := s.reg.Offsets()
	for i := range result.Displacements {
		for j := 0; j < n; j++ {
			result.Displacements[i][j] += off[j]
		}
	}

	return result, nil
}

func (s *Simulator) observe(v, x []float64, t float64) {
	for _, m := range s.metrics {
		m.Observe(v, x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(v, x, t)
	}
}
