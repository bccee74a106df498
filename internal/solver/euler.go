package solver

// Euler is the explicit first-order scheme. It drifts on oscillatory
// systems and exists mainly as a comparison baseline for RK4.
type Euler struct {
	sys *System
	f   []float64
}

func NewEuler(sys *System) *Euler {
	return &Euler{sys: sys, f: make([]float64, sys.Dim())}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(v, x []float64, t, dt float64) (dv, dx []float64) {
	e.sys.accelInto(e.f, x, v, t)

	n := e.sys.n
	dv = make([]float64, n)
	dx = make([]float64, n)
	for i := 0; i < n; i++ {
		dx[i] = dt * v[i]
		dv[i] = dt * e.f[i]
	}
	return dv, dx
}
