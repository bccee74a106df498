package metrics

import "math"

// PeakDisplacement tracks the largest absolute displacement seen across
// all bodies.
type PeakDisplacement struct {
	name string
	max  float64
}

func NewPeakDisplacement() *PeakDisplacement {
	return &PeakDisplacement{name: "peak_displacement"}
}

func (p *PeakDisplacement) Name() string { return p.name }

func (p *PeakDisplacement) Observe(v, x []float64, t float64) {
	for _, xi := range x {
		p.max = math.Max(p.max, math.Abs(xi))
	}
}

func (p *PeakDisplacement) Value() float64 { return p.max }

func (p *PeakDisplacement) Reset() { p.max = 0 }
