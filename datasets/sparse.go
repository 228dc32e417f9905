// Package datasets generates synthetic regression problems with a known
// sparse ground truth.
package datasets

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

// Magnitude range of the non-zero ground-truth coefficients.
const (
	CoefMin = 1.0
	CoefMax = 3.0
)

// SparseRegression is a design matrix, its response and the coefficients
// that generated it.
type SparseRegression struct {
	X       *mat.Dense
	Y       *mat.VecDense
	Coef    *mat.VecDense
	Support []int // indices of the non-zero coefficients, ascending
}

// MakeSparseRegression draws X with i.i.d. standard normal entries, a
// k-sparse coefficient vector with magnitudes uniform in [CoefMin, CoefMax]
// and random signs, and y = X·coef + noise·ε with ε standard normal.
// The same seed always gives the same problem.
func MakeSparseRegression(n, p, k int, noise float64, seed uint64) (*SparseRegression, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "must be positive", n)
	}
	if p <= 0 {
		return nil, errors.NewValidationError("p", "must be positive", p)
	}
	if k < 0 || k > p {
		return nil, errors.NewValidationError("k", "must satisfy 0 <= k <= p", k)
	}
	if noise < 0 || !errors.IsFinite(noise) {
		return nil, errors.NewValidationError("noise", "must be finite and non-negative", noise)
	}

	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	magnitude := distuv.Uniform{Min: CoefMin, Max: CoefMax, Src: src}

	X := mat.NewDense(n, p, nil)
	data := X.RawMatrix().Data
	for i := range data {
		data[i] = normal.Rand()
	}

	support := rng.Perm(p)[:k]
	sort.Ints(support)
	coef := mat.NewVecDense(p, nil)
	for _, j := range support {
		v := magnitude.Rand()
		if rng.IntN(2) == 0 {
			v = -v
		}
		coef.SetVec(j, v)
	}

	y := mat.NewVecDense(n, nil)
	y.MulVec(X, coef)
	if noise > 0 {
		for i := 0; i < n; i++ {
			y.SetVec(i, y.AtVec(i)+noise*normal.Rand())
		}
	}
	return &SparseRegression{X: X, Y: y, Coef: coef, Support: support}, nil
}

// ColumnMatrix returns Y as an n×1 matrix for estimators that take
// mat.Matrix targets.
func (s *SparseRegression) ColumnMatrix() *mat.Dense {
	return mat.NewDense(s.Y.Len(), 1, s.Y.RawVector().Data)
}
