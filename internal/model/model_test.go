package model

import (
	"errors"
	"math"
	"testing"
)

func TestFromArrays(t *testing.T) {
	b, err := FromArrays(1, 2.0, []float64{10, 5}, []float64{0.1, 0}, []int{0, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Couplings) != 2 {
		t.Fatalf("expected 2 couplings, got %d", len(b.Couplings))
	}
	if b.Couplings[0].To != 0 || b.Couplings[1].To != 2 {
		t.Errorf("coupling targets wrong: %+v", b.Couplings)
	}
}

func TestFromArraysLengthMismatch(t *testing.T) {
	_, err := FromArrays(1, 1.0, []float64{10}, []float64{0.1, 0.2}, []int{0})
	if !errors.Is(err, ErrIncompleteCoupling) {
		t.Errorf("expected ErrIncompleteCoupling, got %v", err)
	}

	var be *BodyError
	if !errors.As(err, &be) || be.Body != 1 {
		t.Errorf("expected body 1 in error, got %v", err)
	}
}

func TestAddDerivesDamping(t *testing.T) {
	r := NewRegistry()
	b, _ := FromArrays(1, 4.0, []float64{9.0}, []float64{0.5}, []int{0})
	if err := r.Add(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// c = zeta * 2*sqrt(k*m) = 0.5 * 2*sqrt(36) = 6
	got := r.Body(1).Couplings[0].Damping
	if math.Abs(got-6.0) > 1e-12 {
		t.Errorf("expected damping coefficient 6, got %f", got)
	}
}

func TestAddRejectsSelfCoupling(t *testing.T) {
	r := NewRegistry()
	b, _ := FromArrays(1, 1.0, []float64{10}, []float64{0}, []int{1})
	err := r.Add(b)
	if !errors.Is(err, ErrSelfCoupling) {
		t.Errorf("expected ErrSelfCoupling, got %v", err)
	}
	if r.N() != 0 {
		t.Errorf("body should not be registered after rejection, have %d", r.N())
	}
}

func TestAddRejectsNonPositiveMass(t *testing.T) {
	tests := []struct {
		name string
		mass float64
	}{
		{"zero", 0},
		{"negative", -1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			b, _ := FromArrays(1, tt.mass, []float64{10}, []float64{0}, []int{0})
			if err := r.Add(b); !errors.Is(err, ErrNonPositiveMass) {
				t.Errorf("expected ErrNonPositiveMass, got %v", err)
			}
		})
	}
}

func TestAddRejectsDuplicateAndOutOfOrder(t *testing.T) {
	r := NewRegistry()
	b1, _ := FromArrays(1, 1.0, []float64{10}, []float64{0}, []int{0})
	if err := r.Add(b1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup, _ := FromArrays(1, 1.0, []float64{10}, []float64{0}, []int{0})
	if err := r.Add(dup); !errors.Is(err, ErrDuplicateBody) {
		t.Errorf("expected ErrDuplicateBody, got %v", err)
	}

	skip, _ := FromArrays(3, 1.0, []float64{10}, []float64{0}, []int{0})
	if err := r.Add(skip); !errors.Is(err, ErrBodyOrder) {
		t.Errorf("expected ErrBodyOrder, got %v", err)
	}
}

func TestInitialConditionsAndOffsets(t *testing.T) {
	r := NewRegistry()
	b1, _ := FromArrays(1, 1.0, []float64{10}, []float64{0}, []int{0})
	b1.X0, b1.V0, b1.XLoc = 1.0, -0.5, 2.0
	b2, _ := FromArrays(2, 1.0, []float64{5}, []float64{0}, []int{1})
	b2.X0, b2.V0, b2.XLoc = 0.0, 0.25, 4.0
	if err := r.Add(b1); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(b2); err != nil {
		t.Fatal(err)
	}

	v0, x0 := r.InitialConditions()
	if v0[0] != -0.5 || v0[1] != 0.25 {
		t.Errorf("v0 wrong: %v", v0)
	}
	if x0[0] != 1.0 || x0[1] != 0.0 {
		t.Errorf("x0 wrong: %v", x0)
	}

	off := r.Offsets()
	if off[0] != 2.0 || off[1] != 4.0 {
		t.Errorf("offsets wrong: %v", off)
	}
}

func TestParseForceKind(t *testing.T) {
	tests := []struct {
		in   string
		want ForceKind
	}{
		{"NONE", ForceNone},
		{"SIN", ForceSine},
		{"COS", ForceCosine},
		{"RANDOM", ForceRandom},
	}

	for _, tt := range tests {
		got, err := ParseForceKind(tt.in)
		if err != nil {
			t.Errorf("ParseForceKind(%q): unexpected error %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseForceKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseForceKind("TRIANGLE"); err == nil {
		t.Error("expected error for unknown force type")
	}
}

func TestHas(t *testing.T) {
	r := NewRegistry()
	b1, _ := FromArrays(1, 1.0, []float64{10}, []float64{0}, []int{0})
	if err := r.Add(b1); err != nil {
		t.Fatal(err)
	}

	if !r.Has(0) {
		t.Error("ground should always be present")
	}
	if !r.Has(1) {
		t.Error("declared body should be present")
	}
	if r.Has(2) {
		t.Error("undeclared body should not be present")
	}
}
