package solver

// Verlet is the velocity Verlet scheme. Damping makes the acceleration
// velocity-dependent, so the corrector stage evaluates it at the advanced
// position with the pre-step velocity to stay explicit.
type Verlet struct {
	sys *System

	a0, a1 []float64
	xn     []float64
}

func NewVerlet(sys *System) *Verlet {
	n := sys.Dim()
	return &Verlet{
		sys: sys,
		a0:  make([]float64, n),
		a1:  make([]float64, n),
		xn:  make([]float64, n),
	}
}

func (vl *Verlet) Name() string { return "verlet" }

func (vl *Verlet) Step(v, x []float64, t, dt float64) (dv, dx []float64) {
	n := vl.sys.n

	vl.sys.accelInto(vl.a0, x, v, t)

	dx = make([]float64, n)
	dt2 := dt * dt
	for i := 0; i < n; i++ {
		dx[i] = v[i]*dt + 0.5*vl.a0[i]*dt2
		vl.xn[i] = x[i] + dx[i]
	}

	vl.sys.accelInto(vl.a1, vl.xn, v, t+dt)

	dv = make([]float64, n)
	halfDt := 0.5 * dt
	for i := 0; i < n; i++ {
		dv[i] = (vl.a0[i] + vl.a1[i]) * halfDt
	}
	return dv, dx
}
