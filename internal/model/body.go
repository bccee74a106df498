package model

import "math"

// GroundID is the id of the immovable reference body. Couplings to it anchor
// a body to the fixed frame; it never appears in the solved system.
const GroundID = 0

// Coupling is a spring-damper pair attaching a body to another body or to
// ground. Damping holds the coefficient derived from the ratio at
// finalization time.
type Coupling struct {
	To        int
	Stiffness float64
	Zeta      float64
	Damping   float64
}

// Body is a point mass in the system. Couplings are directional as declared;
// the assembler mirrors them. X0 and V0 are initial conditions relative to
// XLoc, the body's reference position in the global frame.
type Body struct {
	ID        int
	Mass      float64
	Couplings []Coupling
	X0        float64
	V0        float64
	XLoc      float64
	Force     ForceSpec
}

// FromArrays builds a body from the parallel stiffness/zeta/coupled-id lists
// of the input format. The three lists must have equal lengths.
func FromArrays(id int, mass float64, stiff, zeta []float64, coupled []int) (*Body, error) {
	if len(stiff) != len(coupled) || len(zeta) != len(coupled) {
		return nil, &BodyError{Body: id, Wrapped: ErrIncompleteCoupling}
	}
	b := &Body{ID: id, Mass: mass}
	for i := range coupled {
		b.Couplings = append(b.Couplings, Coupling{
			To:        coupled[i],
			Stiffness: stiff[i],
			Zeta:      zeta[i],
		})
	}
	return b, nil
}

// finalize validates the body and derives damping coefficients from ratios.
// Called by Registry.Add; the coefficient uses the owning body's mass:
// c = zeta * 2*sqrt(k*m).
func (b *Body) finalize() error {
	if b.Mass <= 0 {
		return &BodyError{Body: b.ID, Wrapped: ErrNonPositiveMass}
	}
	for i := range b.Couplings {
		if b.Couplings[i].To == b.ID {
			return &BodyError{Body: b.ID, Wrapped: ErrSelfCoupling}
		}
		c := &b.Couplings[i]
		c.Damping = c.Zeta * 2 * math.Sqrt(c.Stiffness*b.Mass)
	}
	return nil
}
