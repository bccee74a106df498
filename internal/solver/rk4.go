package solver

// RK4 is the classical fourth-order Runge-Kutta scheme. Stage buffers are
// reused between steps; the returned increments are freshly allocated.
type RK4 struct {
	sys *System

	f1, f2, f3, f4 []float64
	y2, y3, y4     []float64
	xs             []float64
}

func NewRK4(sys *System) *RK4 {
	n := sys.Dim()
	return &RK4{
		sys: sys,
		f1:  make([]float64, n),
		f2:  make([]float64, n),
		f3:  make([]float64, n),
		f4:  make([]float64, n),
		y2:  make([]float64, n),
		y3:  make([]float64, n),
		y4:  make([]float64, n),
		xs:  make([]float64, n),
	}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(v, x []float64, t, dt float64) (dv, dx []float64) {
	n := r.sys.n
	half := dt * 0.5

	// Stage 1 at t; the velocity slope is v itself.
	r.sys.accelInto(r.f1, x, v, t)

	// Stage 2 at t + dt/2.
	for i := 0; i < n; i++ {
		r.xs[i] = x[i] + half*v[i]
		r.y2[i] = v[i] + half*r.f1[i]
	}
	r.sys.accelInto(r.f2, r.xs, r.y2, t+half)

	// Stage 3 at t + dt/2, from stage 2 slopes.
	for i := 0; i < n; i++ {
		r.xs[i] = x[i] + half*r.y2[i]
		r.y3[i] = v[i] + half*r.f2[i]
	}
	r.sys.accelInto(r.f3, r.xs, r.y3, t+half)

	// Stage 4 at t + dt.
	for i := 0; i < n; i++ {
		r.xs[i] = x[i] + dt*r.y3[i]
		r.y4[i] = v[i] + dt*r.f3[i]
	}
	r.sys.accelInto(r.f4, r.xs, r.y4, t+dt)

	dv = make([]float64, n)
	dx = make([]float64, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		dx[i] = dt6 * (v[i] + 2*r.y2[i] + 2*r.y3[i] + r.y4[i])
		dv[i] = dt6 * (r.f1[i] + 2*r.f2[i] + 2*r.f3[i] + r.f4[i])
	}
	return dv, dx
}
