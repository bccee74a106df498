package sim

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for simulation runs.
var (
	// ErrUnstable indicates a state vector that diverged (NaN or Inf).
	ErrUnstable = errors.New("sim: state diverged (NaN or Inf detected)")

	// ErrShortGrid indicates a time grid with fewer than two points.
	ErrShortGrid = errors.New("sim: time grid needs at least two points")
)

// SimulationError wraps an error with the step where it happened.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// Config holds the time settings of a run. FullAnimation selects the richer
// rendering style downstream; the solver ignores it.
type Config struct {
	Dt            float64
	TMax          float64
	FullAnimation bool
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %f", c.Dt)
	}
	if c.TMax <= 0 {
		return fmt.Errorf("sim: tmax must be positive, got %f", c.TMax)
	}
	if c.TMax/c.Dt < 2 {
		return ErrShortGrid
	}
	return nil
}

// Grid returns the half-open time grid [0, TMax) with step Dt.
func Grid(cfg Config) []float64 {
	n := int(math.Ceil(cfg.TMax / cfg.Dt))
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = float64(i) * cfg.Dt
	}
	return grid
}

// Metric accumulates a scalar observation over a run. Observe sees the raw
// state relative to each body's reference position.
type Metric interface {
	Name() string
	Observe(v, x []float64, t float64)
	Value() float64
	Reset()
}

// Observer is notified of every recorded state.
type Observer interface {
	OnStep(v, x []float64, t float64)
}

// Result is the full state history of a run. Displacements hold absolute
// positions (reference offsets added); Velocities stay relative. Both are
// indexed [step][body].
type Result struct {
	Times         []float64
	Displacements [][]float64
	Velocities    [][]float64
	Metrics       map[string]float64
	EnergyDrift   float64
	Steps         int
	Integrator    string
}

// Body returns the displacement series of one body (1-based id).
func (r *Result) Body(id int) []float64 {
	series := make([]float64, len(r.Displacements))
	for i, row := range r.Displacements {
		series[i] = row[id-1]
	}
	return series
}

// BodyVelocity returns the velocity series of one body (1-based id).
func (r *Result) BodyVelocity(id int) []float64 {
	series := make([]float64, len(r.Velocities))
	for i, row := range r.Velocities {
		series[i] = row[id-1]
	}
	return series
}

// NumBodies is the number of bodies in the recorded history.
func (r *Result) NumBodies() int {
	if len(r.Displacements) == 0 {
		return 0
	}
	return len(r.Displacements[0])
}

func valid(s []float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
