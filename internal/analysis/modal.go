package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/pavshv/mdof/internal/assembly"
)

// ErrComplexModes indicates that the eigenproblem produced eigenvalues
// with a significant imaginary part, which an undamped symmetric system
// should never do.
var ErrComplexModes = errors.New("analysis: eigenvalues are not real")

// Modes holds the undamped natural frequencies of an assembled system,
// solved from the eigenproblem of M⁻¹K. Frequencies are sorted ascending;
// column j of Shapes is the mode shape belonging to OmegaN[j].
type Modes struct {
	OmegaN []float64 // rad/s
	Shapes *mat.Dense
}

// NaturalModes solves det(K - ω²M) = 0 via the standard eigenproblem of
// A = M⁻¹K. Damping is ignored; the frequencies are those of the
// undamped system.
func NaturalModes(mats *assembly.Matrices) (*Modes, error) {
	n := mats.N
	if n == 0 {
		return nil, assembly.ErrEmptySystem
	}

	var minv mat.Dense
	if err := minv.Inverse(mats.M); err != nil {
		return nil, fmt.Errorf("analysis: mass matrix is singular: %v", err)
	}
	var a mat.Dense
	a.Mul(&minv, mats.K)

	var eig mat.Eigen
	if ok := eig.Factorize(&a, mat.EigenRight); !ok {
		return nil, errors.New("analysis: eigendecomposition failed")
	}

	vals := eig.Values(nil)
	vecs := mat.NewCDense(n, n, nil)
	eig.VectorsTo(vecs)

	lambda := make([]float64, n)
	scale := 0.0
	for i, v := range vals {
		lambda[i] = real(v)
		if abs := math.Abs(real(v)); abs > scale {
			scale = abs
		}
	}
	if scale == 0 {
		scale = 1
	}
	for _, v := range vals {
		if math.Abs(imag(v)) > 1e-8*scale {
			return nil, fmt.Errorf("%w: found %v", ErrComplexModes, v)
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return lambda[order[i]] < lambda[order[j]] })

	m := &Modes{
		OmegaN: make([]float64, n),
		Shapes: mat.NewDense(n, n, nil),
	}
	for j, idx := range order {
		l := lambda[idx]
		if l < 0 {
			if l < -1e-8*scale {
				return nil, fmt.Errorf("analysis: negative eigenvalue %g", l)
			}
			l = 0 // rigid body mode, rounded below zero
		}
		m.OmegaN[j] = math.Sqrt(l)
		for i := 0; i < n; i++ {
			m.Shapes.Set(i, j, real(vecs.At(i, idx)))
		}
	}
	return m, nil
}

// FrequenciesHz converts the natural frequencies from rad/s to Hz.
func (m *Modes) FrequenciesHz() []float64 {
	out := make([]float64, len(m.OmegaN))
	for i, w := range m.OmegaN {
		out[i] = w / (2 * math.Pi)
	}
	return out
}
