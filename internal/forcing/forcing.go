// Package forcing turns per-body excitation specs into force functions
// sampled on the simulation time grid.
package forcing

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pavshv/mdof/internal/logging"
	"github.com/pavshv/mdof/internal/model"
)

var (
	// ErrIncompleteForce indicates a periodic excitation missing its
	// amplitude or angular frequency. Callers typically degrade the body
	// to zero force rather than abort.
	ErrIncompleteForce = errors.New("forcing: periodic force requires P0 and OMEGA")

	// ErrWindowOutOfRange indicates a start/stop window outside the grid.
	ErrWindowOutOfRange = errors.New("forcing: force window outside simulation time range")

	// ErrNotImplemented indicates a recognized but unsupported force type.
	ErrNotImplemented = errors.New("forcing: force type not implemented")

	// ErrShortGrid indicates a time grid with fewer than two points.
	ErrShortGrid = errors.New("forcing: time grid needs at least two points")
)

// Function is an excitation pre-sampled on the simulation grid. Values
// between samples are linearly interpolated, so integrator sub-steps land
// on the same curve the grid defines.
type Function struct {
	grid   []float64
	values []float64
}

// Zero returns the identically-zero function on the given grid.
func Zero(grid []float64) *Function {
	return &Function{grid: grid, values: make([]float64, len(grid))}
}

// Sample evaluates the spec for one body on the grid. A missing window
// bound defaults to the corresponding grid end with a warning; an explicit
// bound outside the grid is an error. Periodic kinds without amplitude or
// frequency return ErrIncompleteForce so the caller can choose degradation.
func Sample(spec model.ForceSpec, grid []float64, bodyID int) (*Function, error) {
	if len(grid) < 2 {
		return nil, ErrShortGrid
	}

	switch spec.Kind {
	case model.ForceNone:
		return Zero(grid), nil
	case model.ForceRandom:
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, spec.Kind)
	case model.ForceSine, model.ForceCosine:
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, spec.Kind)
	}

	if !spec.HasAmplitude || !spec.HasOmega {
		return nil, fmt.Errorf("body %d: %w", bodyID, ErrIncompleteForce)
	}

	tMin, tMax := grid[0], grid[len(grid)-1]

	start := spec.Start
	if !spec.HasStart {
		start = tMin
		logging.Logger.Warn().Int("body", bodyID).Float64("start", start).
			Msg("force START not given, defaulting to grid start")
	}
	stop := spec.Stop
	if !spec.HasStop {
		stop = tMax
		logging.Logger.Warn().Int("body", bodyID).Float64("stop", stop).
			Msg("force STOP not given, defaulting to grid end")
	}

	if start < tMin || start > tMax || stop < tMin || stop > tMax || start > stop {
		return nil, fmt.Errorf("body %d: %w: window [%g, %g] vs grid [%g, %g]",
			bodyID, ErrWindowOutOfRange, start, stop, tMin, tMax)
	}

	wave := math.Sin
	if spec.Kind == model.ForceCosine {
		wave = math.Cos
	}

	f := &Function{grid: grid, values: make([]float64, len(grid))}
	for i, t := range grid {
		if t < start || t > stop {
			continue
		}
		f.values[i] = spec.Amplitude * wave(spec.Omega*(t-start))
	}
	return f, nil
}

// At returns the force at time t by linear interpolation. Times at or
// beyond either grid end clamp to the boundary sample.
func (f *Function) At(t float64) float64 {
	n := len(f.grid)
	if t <= f.grid[0] {
		return f.values[0]
	}
	if t >= f.grid[n-1] {
		return f.values[n-1]
	}

	// First index with grid[i] >= t; t is strictly inside the grid here.
	i := sort.SearchFloat64s(f.grid, t)
	if f.grid[i] == t {
		return f.values[i]
	}
	t0, t1 := f.grid[i-1], f.grid[i]
	v0, v1 := f.values[i-1], f.values[i]
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

// Values exposes the raw samples, index-aligned with the grid.
func (f *Function) Values() []float64 { return f.values }

// BuildAll samples every body's spec. Incomplete periodic definitions
// degrade that body to zero force with a warning; window and type errors
// abort. Returned functions are index-aligned with the registry order.
func BuildAll(reg *model.Registry, grid []float64) ([]*Function, error) {
	specs := reg.ForceSpecs()
	funcs := make([]*Function, len(specs))
	for i, spec := range specs {
		bodyID := i + 1
		f, err := Sample(spec, grid, bodyID)
		switch {
		case err == nil:
			funcs[i] = f
		case errors.Is(err, ErrIncompleteForce):
			logging.Logger.Warn().Int("body", bodyID).
				Msg("force definition incomplete, body gets zero force")
			funcs[i] = Zero(grid)
		default:
			return nil, err
		}
	}
	return funcs, nil
}
