// Package solver integrates the reformed first-order system
// x′ = y, y′ = M⁻¹(P(t) − K·x − C·y) with fixed-step schemes.
package solver

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/pavshv/mdof/internal/assembly"
	"github.com/pavshv/mdof/internal/forcing"
)

// ErrSingularMass indicates a mass matrix that cannot be inverted.
var ErrSingularMass = errors.New("solver: mass matrix is singular")

// Stepper advances the system by one step from (v, x) at time t and
// returns velocity and displacement increments. The caller owns state
// history and accumulates the increments itself.
type Stepper interface {
	Step(v, x []float64, t, dt float64) (dv, dx []float64)
	Name() string
}

// System holds the inverted mass matrix, the damping and stiffness
// matrices and the per-body force functions. Scratch vectors are reused
// across evaluations, so a System serves one run at a time; concurrent
// runs each build their own.
type System struct {
	minv *mat.Dense
	c    *mat.Dense
	k    *mat.Dense

	forces []*forcing.Function
	n      int

	p   []float64
	kx  *mat.VecDense
	cv  *mat.VecDense
	rhs *mat.VecDense
}

// NewSystem inverts M once up front. A zero row makes the inversion fail
// with ErrSingularMass before any integration happens.
func NewSystem(mats *assembly.Matrices, forces []*forcing.Function) (*System, error) {
	if len(forces) != mats.N {
		return nil, fmt.Errorf("solver: %d force functions for %d bodies", len(forces), mats.N)
	}

	var minv mat.Dense
	if err := minv.Inverse(mats.M); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularMass, err)
	}

	n := mats.N
	return &System{
		minv:   &minv,
		c:      mats.C,
		k:      mats.K,
		forces: forces,
		n:      n,
		p:      make([]float64, n),
		kx:     mat.NewVecDense(n, nil),
		cv:     mat.NewVecDense(n, nil),
		rhs:    mat.NewVecDense(n, nil),
	}, nil
}

// Dim is the number of movable bodies.
func (s *System) Dim() int { return s.n }

// accelInto writes M⁻¹(P(t) − K·x − C·v) into dst.
func (s *System) accelInto(dst, x, v []float64, t float64) {
	for i := 0; i < s.n; i++ {
		s.p[i] = s.forces[i].At(t)
	}
	s.kx.MulVec(s.k, mat.NewVecDense(s.n, x))
	s.cv.MulVec(s.c, mat.NewVecDense(s.n, v))
	for i := 0; i < s.n; i++ {
		s.rhs.SetVec(i, s.p[i]-s.kx.AtVec(i)-s.cv.AtVec(i))
	}
	out := mat.NewVecDense(s.n, dst)
	out.MulVec(s.minv, s.rhs)
}

// New builds a stepper by name. Known names are listed by Names.
func New(name string, sys *System) (Stepper, error) {
	switch name {
	case "rk4":
		return NewRK4(sys), nil
	case "euler":
		return NewEuler(sys), nil
	case "verlet":
		return NewVerlet(sys), nil
	}
	return nil, fmt.Errorf("solver: unknown integrator %q (have %v)", name, Names())
}

// Names lists the available steppers.
func Names() []string { return []string{"rk4", "euler", "verlet"} }
