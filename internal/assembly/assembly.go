// Package assembly builds the global mass, damping and stiffness matrices
// from a body registry. Matrices cover movable bodies only; ground enters
// the diagonal sums and is then removed.
package assembly

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/pavshv/mdof/internal/model"
)

// ErrEmptySystem indicates a registry with no movable bodies.
var ErrEmptySystem = errors.New("assembly: system has no movable bodies")

// Matrices is the assembled second-order system M·x″ + C·x′ + K·x = F(t),
// indexed by body order (body i maps to row i-1).
type Matrices struct {
	M *mat.Dense
	C *mat.Dense
	K *mat.Dense
	N int
}

// Assemble builds the system matrices. Couplings are treated as undirected:
// a declaration on either body produces the same symmetric relation, and a
// later declaration of the same pair overwrites the earlier coefficients.
// Ground contributes to diagonal sums only, never to off-diagonal terms.
func Assemble(reg *model.Registry) (*Matrices, error) {
	n := reg.N()
	if n == 0 {
		return nil, ErrEmptySystem
	}
	size := n + 1 // ground occupies row 0 until the final trim

	related := make([][]bool, size)
	stiff := make([][]float64, size)
	damp := make([][]float64, size)
	for i := range related {
		related[i] = make([]bool, size)
		stiff[i] = make([]float64, size)
		damp[i] = make([]float64, size)
	}

	for _, b := range reg.Bodies() {
		for _, c := range b.Couplings {
			if !reg.Has(c.To) {
				return nil, &model.BodyError{
					Body:    b.ID,
					Wrapped: fmt.Errorf("%w: id %d", model.ErrUnknownCoupling, c.To),
				}
			}
			i, k := b.ID, c.To
			related[i][k], related[k][i] = true, true
			stiff[i][k], stiff[k][i] = c.Stiffness, c.Stiffness
			damp[i][k], damp[k][i] = c.Damping, c.Damping
		}
	}

	for _, b := range reg.Bodies() {
		connected := false
		for k := 0; k < size; k++ {
			if related[b.ID][k] {
				connected = true
				break
			}
		}
		if !connected {
			return nil, &model.BodyError{Body: b.ID, Wrapped: model.ErrUnconnectedBody}
		}
	}

	gM := mat.NewDense(size, size, nil)
	gC := mat.NewDense(size, size, nil)
	gK := mat.NewDense(size, size, nil)

	for _, b := range reg.Bodies() {
		gM.Set(b.ID, b.ID, b.Mass)
	}

	for i := 1; i < size; i++ {
		var cSum, kSum float64
		for k := 0; k < size; k++ {
			if !related[i][k] {
				continue
			}
			cSum += damp[i][k]
			kSum += stiff[i][k]
			if k != model.GroundID {
				gC.Set(i, k, -damp[i][k])
				gK.Set(i, k, -stiff[i][k])
			}
		}
		gC.Set(i, i, cSum)
		gK.Set(i, i, kSum)
	}

	m := trimGround(gM, n)
	c := trimGround(gC, n)
	k := trimGround(gK, n)

	// Final matrices must be symmetric; rewrite the lower triangle from
	// the upper one.
	mirrorUpper(c)
	mirrorUpper(k)

	return &Matrices{M: m, C: c, K: k, N: n}, nil
}

// trimGround copies the movable-body submatrix, dropping row/column 0.
func trimGround(a *mat.Dense, n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	out.Copy(a.Slice(1, n+1, 1, n+1))
	return out
}

func mirrorUpper(a *mat.Dense) {
	r, _ := a.Dims()
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			a.Set(j, i, a.At(i, j))
		}
	}
}
