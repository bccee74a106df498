// Package sweep runs a scenario repeatedly across a range of one
// physical parameter and reports how the response changes.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pavshv/mdof/internal/logging"
	"github.com/pavshv/mdof/internal/metrics"
	"github.com/pavshv/mdof/internal/model"
	"github.com/pavshv/mdof/internal/sim"
)

var (
	ErrTooFewSteps  = errors.New("sweep: need at least two steps")
	ErrUnknownBody  = errors.New("sweep: body is not part of the system")
	ErrBadParameter = errors.New("sweep: unknown parameter")
)

// Parameter selects which physical quantity the sweep varies.
type Parameter string

const (
	Stiffness Parameter = "stiffness"
	Zeta      Parameter = "zeta"
	Mass      Parameter = "mass"
)

// ParseParameter maps a flag value onto a Parameter.
func ParseParameter(s string) (Parameter, error) {
	switch Parameter(s) {
	case Stiffness, Zeta, Mass:
		return Parameter(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadParameter, s)
}

// Config describes a linear sweep. Body selects whose parameter is
// varied; for Stiffness and Zeta the value is applied to every coupling
// attached to that body, in both declaration directions.
type Config struct {
	Parameter  Parameter
	Body       int
	Min, Max   float64
	Steps      int
	Workers    int
	Integrator string
}

// Point is the outcome of one run of the sweep.
type Point struct {
	Value             float64
	PeakDisplacement  float64
	EnergyDrift       float64
	FinalDisplacement []float64
}

// Run executes the sweep. Each point rebuilds the system with the swept
// value substituted, so derived damping follows the change. Points come
// back ordered by value regardless of which worker finished first; the
// first failing point aborts the whole sweep.
func Run(ctx context.Context, base *model.Registry, simCfg sim.Config, cfg Config) ([]Point, error) {
	if cfg.Steps < 2 {
		return nil, ErrTooFewSteps
	}
	if cfg.Body == model.GroundID || !base.Has(cfg.Body) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBody, cfg.Body)
	}
	if _, err := ParseParameter(string(cfg.Parameter)); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > cfg.Steps {
		workers = cfg.Steps
	}

	values := make([]float64, cfg.Steps)
	span := (cfg.Max - cfg.Min) / float64(cfg.Steps-1)
	for i := range values {
		values[i] = cfg.Min + float64(i)*span
	}

	logging.Logger.Debug().
		Str("parameter", string(cfg.Parameter)).
		Int("body", cfg.Body).
		Float64("min", cfg.Min).
		Float64("max", cfg.Max).
		Int("steps", cfg.Steps).
		Int("workers", workers).
		Msg("starting sweep")

	points := make([]Point, cfg.Steps)
	errs := make([]error, cfg.Steps)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				points[idx], errs[idx] = runPoint(ctx, base, simCfg, cfg, values[idx])
			}
		}()
	}
	for i := 0; i < cfg.Steps; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", cfg.Parameter, values[i], err)
		}
	}
	return points, nil
}

func runPoint(ctx context.Context, base *model.Registry, simCfg sim.Config, cfg Config, value float64) (Point, error) {
	reg, err := substituted(base, cfg.Parameter, cfg.Body, value)
	if err != nil {
		return Point{}, err
	}

	s, _, grid, err := sim.Build(reg, simCfg, cfg.Integrator)
	if err != nil {
		return Point{}, err
	}
	peak := metrics.NewPeakDisplacement()
	s.AddMetric(peak)

	result, err := s.Run(ctx, grid)
	if err != nil {
		return Point{}, err
	}

	last := result.Displacements[len(result.Displacements)-1]
	return Point{
		Value:             value,
		PeakDisplacement:  peak.Value(),
		EnergyDrift:       result.EnergyDrift,
		FinalDisplacement: append([]float64(nil), last...),
	}, nil
}

// substituted rebuilds the registry with the swept value in place.
// Couplings are declared from both ends, so stiffness and zeta must be
// rewritten wherever either endpoint is the chosen body; otherwise the
// later mirrored declaration would win back the original value.
func substituted(base *model.Registry, p Parameter, body int, value float64) (*model.Registry, error) {
	reg := model.NewRegistry()
	for _, b := range base.Bodies() {
		mass := b.Mass
		stiff := make([]float64, len(b.Couplings))
		zeta := make([]float64, len(b.Couplings))
		coupled := make([]int, len(b.Couplings))
		for j, c := range b.Couplings {
			stiff[j] = c.Stiffness
			zeta[j] = c.Zeta
			coupled[j] = c.To
		}

		switch p {
		case Mass:
			if b.ID == body {
				mass = value
			}
		case Stiffness:
			for j := range coupled {
				if b.ID == body || coupled[j] == body {
					stiff[j] = value
				}
			}
		case Zeta:
			for j := range coupled {
				if b.ID == body || coupled[j] == body {
					zeta[j] = value
				}
			}
		}

		nb, err := model.FromArrays(b.ID, mass, stiff, zeta, coupled)
		if err != nil {
			return nil, err
		}
		nb.X0 = b.X0
		nb.V0 = b.V0
		nb.XLoc = b.XLoc
		nb.Force = b.Force
		if err := reg.Add(nb); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
