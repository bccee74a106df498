package model

// Registry holds the movable bodies of a system in declaration order.
// Ground (id 0) is implicit: immovable, massless for the solved system,
// and referenced only as a coupling target.
type Registry struct {
	bodies []*Body
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add finalizes and appends a body. Ids must arrive consecutively starting
// at 1; the first declaration error wins.
func (r *Registry) Add(b *Body) error {
	if b.ID == GroundID {
		return &BodyError{Body: b.ID, Wrapped: ErrDuplicateBody}
	}
	for _, have := range r.bodies {
		if have.ID == b.ID {
			return &BodyError{Body: b.ID, Wrapped: ErrDuplicateBody}
		}
	}
	if b.ID != len(r.bodies)+1 {
		return &BodyError{Body: b.ID, Wrapped: ErrBodyOrder}
	}
	if err := b.finalize(); err != nil {
		return err
	}
	r.bodies = append(r.bodies, b)
	return nil
}

// N is the number of movable bodies.
func (r *Registry) N() int { return len(r.bodies) }

// Bodies returns the movable bodies in declaration order. The slice is
// shared; callers must not mutate it.
func (r *Registry) Bodies() []*Body { return r.bodies }

// Body returns the movable body with the given id, or nil.
func (r *Registry) Body(id int) *Body {
	if id < 1 || id > len(r.bodies) {
		return nil
	}
	return r.bodies[id-1]
}

// Has reports whether id names ground or a declared body.
func (r *Registry) Has(id int) bool {
	return id == GroundID || (id >= 1 && id <= len(r.bodies))
}

// InitialConditions returns the v0 and x0 vectors indexed by body order.
func (r *Registry) InitialConditions() (v0, x0 []float64) {
	v0 = make([]float64, len(r.bodies))
	x0 = make([]float64, len(r.bodies))
	for i, b := range r.bodies {
		v0[i] = b.V0
		x0[i] = b.X0
	}
	return v0, x0
}

// Offsets returns the XLoc reference positions indexed by body order.
func (r *Registry) Offsets() []float64 {
	off := make([]float64, len(r.bodies))
	for i, b := range r.bodies {
		off[i] = b.XLoc
	}
	return off
}

// ForceSpecs returns each body's excitation spec indexed by body order.
func (r *Registry) ForceSpecs() []ForceSpec {
	specs := make([]ForceSpec, len(r.bodies))
	for i, b := range r.bodies {
		specs[i] = b.Force
	}
	return specs
}
