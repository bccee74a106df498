package metrics

import "math"

// Settling reports the fraction of observed samples in which every body
// stays inside the displacement band. Displacements are relative to each
// body's reference position, so the band is centered on rest.
type Settling struct {
	name       string
	band       float64
	violations int
	samples    int
}

func NewSettling(band float64) *Settling {
	return &Settling{name: "settling", band: band}
}

func (s *Settling) Name() string { return s.name }

func (s *Settling) Observe(v, x []float64, t float64) {
	s.samples++
	for _, xi := range x {
		if math.Abs(xi) > s.band {
			s.violations++
			break
		}
	}
}

func (s *Settling) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Settling) Reset() {
	s.violations = 0
	s.samples = 0
}
