package assembly

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/pavshv/mdof/internal/model"
)

// twoBodyReg is a body anchored to ground (k=10) coupled to a second free
// body (k=5), both unit mass and undamped.
func twoBodyReg(t *testing.T) *model.Registry {
	t.Helper()
	reg := model.NewRegistry()

	b1, err := model.FromArrays(1, 1.0, []float64{10, 5}, []float64{0, 0}, []int{0, 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(b1); err != nil {
		t.Fatal(err)
	}

	b2, err := model.FromArrays(2, 1.0, []float64{5}, []float64{0}, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(b2); err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestAssembleTwoBody(t *testing.T) {
	mats, err := Assemble(twoBodyReg(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantK := [][]float64{{15, -5}, {-5, 5}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if got := mats.K.At(i, j); math.Abs(got-wantK[i][j]) > 1e-12 {
				t.Errorf("K[%d][%d] = %f, want %f", i, j, got, wantK[i][j])
			}
			if got := mats.C.At(i, j); got != 0 {
				t.Errorf("C[%d][%d] = %f, want 0", i, j, got)
			}
		}
	}

	if mats.M.At(0, 0) != 1 || mats.M.At(1, 1) != 1 {
		t.Errorf("M diagonal wrong: %v %v", mats.M.At(0, 0), mats.M.At(1, 1))
	}
	if mats.M.At(0, 1) != 0 || mats.M.At(1, 0) != 0 {
		t.Error("M must be diagonal")
	}
}

func TestAssembleOneSidedDeclaration(t *testing.T) {
	// Body 2 declares nothing itself; the mirrored relation from body 1
	// keeps it connected and the matrices identical to the mutual case.
	reg := model.NewRegistry()
	b1, _ := model.FromArrays(1, 1.0, []float64{10, 5}, []float64{0, 0}, []int{0, 2})
	if err := reg.Add(b1); err != nil {
		t.Fatal(err)
	}
	b2, _ := model.FromArrays(2, 1.0, nil, nil, nil)
	if err := reg.Add(b2); err != nil {
		t.Fatal(err)
	}

	mats, err := Assemble(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref, err := Assemble(twoBodyReg(t))
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(mats.K, ref.K) {
		t.Errorf("one-sided K differs from mutual K:\n%v\nvs\n%v",
			mat.Formatted(mats.K), mat.Formatted(ref.K))
	}
}

func TestAssembleSingleBodyToGround(t *testing.T) {
	reg := model.NewRegistry()
	// zeta=0.5, k=9, m=4 gives c = 0.5*2*sqrt(36) = 6
	b, _ := model.FromArrays(1, 4.0, []float64{9}, []float64{0.5}, []int{0})
	if err := reg.Add(b); err != nil {
		t.Fatal(err)
	}

	mats, err := Assemble(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mats.K.At(0, 0); got != 9 {
		t.Errorf("K[0][0] = %f, want 9", got)
	}
	if got := mats.C.At(0, 0); math.Abs(got-6) > 1e-12 {
		t.Errorf("C[0][0] = %f, want 6", got)
	}
	if got := mats.M.At(0, 0); got != 4 {
		t.Errorf("M[0][0] = %f, want 4", got)
	}
}

func TestAssembleSymmetry(t *testing.T) {
	reg := model.NewRegistry()
	b1, _ := model.FromArrays(1, 2.0, []float64{10, 3}, []float64{0.1, 0.2}, []int{0, 2})
	b2, _ := model.FromArrays(2, 1.5, []float64{7}, []float64{0.05}, []int{3})
	b3, _ := model.FromArrays(3, 3.0, []float64{4}, []float64{0}, []int{0})
	for _, b := range []*model.Body{b1, b2, b3} {
		if err := reg.Add(b); err != nil {
			t.Fatal(err)
		}
	}

	mats, err := Assemble(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if kij, kji := mats.K.At(i, j), mats.K.At(j, i); kij != kji {
				t.Errorf("K not symmetric at (%d,%d): %f vs %f", i, j, kij, kji)
			}
			if cij, cji := mats.C.At(i, j), mats.C.At(j, i); cij != cji {
				t.Errorf("C not symmetric at (%d,%d): %f vs %f", i, j, cij, cji)
			}
		}
	}

	// Ground never shows up off-diagonal: bodies 1 and 3 are not coupled
	// to each other, so their cross terms stay zero even though both
	// anchor to ground.
	if got := mats.K.At(0, 2); got != 0 {
		t.Errorf("K[0][2] = %f, want 0", got)
	}
}

func TestAssembleUnconnectedBody(t *testing.T) {
	reg := model.NewRegistry()
	b1, _ := model.FromArrays(1, 1.0, []float64{10, 5}, []float64{0, 0}, []int{0, 2})
	b2, _ := model.FromArrays(2, 1.0, nil, nil, nil)
	b3, _ := model.FromArrays(3, 1.0, nil, nil, nil)
	for _, b := range []*model.Body{b1, b2, b3} {
		if err := reg.Add(b); err != nil {
			t.Fatal(err)
		}
	}

	_, err := Assemble(reg)
	if !errors.Is(err, model.ErrUnconnectedBody) {
		t.Fatalf("expected ErrUnconnectedBody, got %v", err)
	}

	var be *model.BodyError
	if !errors.As(err, &be) || be.Body != 3 {
		t.Errorf("expected body 3 in error, got %v", err)
	}
}

func TestAssembleUnknownCoupling(t *testing.T) {
	reg := model.NewRegistry()
	b1, _ := model.FromArrays(1, 1.0, []float64{10}, []float64{0}, []int{7})
	if err := reg.Add(b1); err != nil {
		t.Fatal(err)
	}

	_, err := Assemble(reg)
	if !errors.Is(err, model.ErrUnknownCoupling) {
		t.Errorf("expected ErrUnknownCoupling, got %v", err)
	}
}

func TestAssembleEmpty(t *testing.T) {
	_, err := Assemble(model.NewRegistry())
	if !errors.Is(err, ErrEmptySystem) {
		t.Errorf("expected ErrEmptySystem, got %v", err)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	a, err := Assemble(twoBodyReg(t))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Assemble(twoBodyReg(t))
	if err != nil {
		t.Fatal(err)
	}

	if !mat.Equal(a.M, b.M) || !mat.Equal(a.C, b.C) || !mat.Equal(a.K, b.K) {
		t.Error("repeated assembly must produce identical matrices")
	}
}

func TestAssembleDuplicatePairLastWins(t *testing.T) {
	reg := model.NewRegistry()
	b1, _ := model.FromArrays(1, 1.0, []float64{10, 2, 5}, []float64{0, 0, 0}, []int{0, 2, 2})
	b2, _ := model.FromArrays(2, 1.0, nil, nil, nil)
	if err := reg.Add(b1); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(b2); err != nil {
		t.Fatal(err)
	}

	mats, err := Assemble(reg)
	if err != nil {
		t.Fatal(err)
	}
	// Pair (1,2) declared twice; the later k=5 replaces k=2.
	if got := mats.K.At(0, 1); got != -5 {
		t.Errorf("K[0][1] = %f, want -5", got)
	}
	if got := mats.K.At(0, 0); got != 15 {
		t.Errorf("K[0][0] = %f, want 15", got)
	}
}
