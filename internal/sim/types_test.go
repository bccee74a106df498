package sim

import (
	"errors"
	"math"
	"testing"
)

func TestGrid(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		length int
		last   float64
	}{
		{"hundredth steps", Config{Dt: 0.01, TMax: 1.0}, 100, 0.99},
		{"tenth steps", Config{Dt: 0.1, TMax: 1.0}, 10, 0.9},
		{"uneven division", Config{Dt: 0.3, TMax: 1.0}, 4, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Grid(tt.cfg)
			if len(g) != tt.length {
				t.Fatalf("expected %d points, got %d", tt.length, len(g))
			}
			if g[0] != 0 {
				t.Errorf("grid must start at 0, got %f", g[0])
			}
			if math.Abs(g[len(g)-1]-tt.last) > 1e-12 {
				t.Errorf("expected last point %f, got %f", tt.last, g[len(g)-1])
			}
		})
	}
}

func TestGridExcludesTMax(t *testing.T) {
	g := Grid(Config{Dt: 0.25, TMax: 1.0})
	for _, v := range g {
		if v >= 1.0 {
			t.Errorf("grid point %f must stay below tmax", v)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Dt: 0.01, TMax: 1.0}).Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	if err := (Config{Dt: 1.0, TMax: 1.5}).Validate(); !errors.Is(err, ErrShortGrid) {
		t.Errorf("expected ErrShortGrid, got %v", err)
	}
}

func TestResultBodySeries(t *testing.T) {
	r := &Result{
		Times:         []float64{0, 0.1},
		Displacements: [][]float64{{1, 2}, {3, 4}},
		Velocities:    [][]float64{{5, 6}, {7, 8}},
	}

	if got := r.Body(1); got[0] != 1 || got[1] != 3 {
		t.Errorf("body 1 series wrong: %v", got)
	}
	if got := r.Body(2); got[0] != 2 || got[1] != 4 {
		t.Errorf("body 2 series wrong: %v", got)
	}
	if got := r.BodyVelocity(2); got[0] != 6 || got[1] != 8 {
		t.Errorf("body 2 velocity series wrong: %v", got)
	}
	if r.NumBodies() != 2 {
		t.Errorf("expected 2 bodies, got %d", r.NumBodies())
	}
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := &SimulationError{Step: 7, Time: 0.07, Wrapped: ErrUnstable}
	if !errors.Is(err, ErrUnstable) {
		t.Error("expected errors.Is to reach the wrapped sentinel")
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		state []float64
		want  bool
	}{
		{"empty", []float64{}, true},
		{"normal", []float64{1.0, 2.0, 3.0}, true},
		{"with NaN", []float64{1.0, math.NaN()}, false},
		{"with +Inf", []float64{1.0, math.Inf(1)}, false},
		{"with -Inf", []float64{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := valid(tt.state); got != tt.want {
				t.Errorf("valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
