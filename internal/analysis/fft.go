package analysis

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrShortSeries indicates a series too short to analyze.
var ErrShortSeries = errors.New("analysis: series needs at least two samples")

// FFT computes the discrete Fourier transform by radix-2 recursion.
// Input length must be a power of two; Spectrum pads before calling.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// Spectrum is the single-sided amplitude spectrum of a uniformly sampled
// series.
type Spectrum struct {
	Frequencies []float64 // Hz, bin centers
	Amplitudes  []float64
}

// NewSpectrum zero-pads the series to the next power of two and computes
// its amplitude spectrum. dt is the sample spacing in seconds.
func NewSpectrum(series []float64, dt float64) (*Spectrum, error) {
	if len(series) < 2 {
		return nil, ErrShortSeries
	}
	if dt <= 0 {
		return nil, errors.New("analysis: sample spacing must be positive")
	}

	n := nextPow2(len(series))
	padded := make([]float64, n)
	copy(padded, series)

	coeffs := FFT(padded)
	half := n / 2

	s := &Spectrum{
		Frequencies: make([]float64, half),
		Amplitudes:  make([]float64, half),
	}
	df := 1.0 / (float64(n) * dt)
	for i := 0; i < half; i++ {
		s.Frequencies[i] = float64(i) * df
		s.Amplitudes[i] = cmplx.Abs(coeffs[i])
	}
	return s, nil
}

// Dominant returns the frequency bin with the largest amplitude, skipping
// the zero-frequency term so a constant offset does not win.
func (s *Spectrum) Dominant() (freqHz, amplitude float64) {
	best := 1
	for i := 2; i < len(s.Amplitudes); i++ {
		if s.Amplitudes[i] > s.Amplitudes[best] {
			best = i
		}
	}
	if best >= len(s.Amplitudes) {
		return 0, 0
	}
	return s.Frequencies[best], s.Amplitudes[best]
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
