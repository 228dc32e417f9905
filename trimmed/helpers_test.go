package trimmed

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trimlasso/datasets"
)

// identityTieBreaker visits candidates in index order and always picks +1.
type identityTieBreaker struct{}

func (identityTieBreaker) Perm(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (identityTieBreaker) Sign() float64        { return 1 }
func (identityTieBreaker) NormFloat64() float64 { return 0 }

// sparseData returns a noiseless design with k true non-zeros.
func sparseData(t testing.TB, n, p, k int, seed uint64) (*mat.Dense, *mat.VecDense, *mat.VecDense) {
	t.Helper()
	ds, err := datasets.MakeSparseRegression(n, p, k, 0, seed)
	if err != nil {
		t.Fatalf("MakeSparseRegression: %v", err)
	}
	return ds.X, ds.Y, ds.Coef
}

func mustProblem(t testing.TB, X mat.Matrix, y mat.Vector, k int, mu, lambda float64) *Problem {
	t.Helper()
	_, p := X.Dims()
	prob, err := NewProblem(X, y, p, k, mu, lambda)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	return prob
}

func nonZero(v mat.Vector, tol float64) int {
	n := 0
	for i := 0; i < v.Len(); i++ {
		if a := v.AtVec(i); a > tol || a < -tol {
			n++
		}
	}
	return n
}
