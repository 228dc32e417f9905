package trimmed

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trimlasso/core/parallel"
	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

// gramParallelThreshold is the feature count above which the Gram matrix rows
// are computed concurrently.
const gramParallelThreshold = 256

// Problem is an immutable trimmed Lasso instance.
type Problem struct {
	X      *mat.Dense
	Y      *mat.VecDense
	P      int
	K      int
	Mu     float64
	Lambda float64

	gram *mat.SymDense
	xty  *mat.VecDense
}

// NewProblem validates the inputs and precomputes X'X and X'y.
// p is the declared number of features and must equal the column count of X.
func NewProblem(X mat.Matrix, y mat.Vector, p, k int, mu, lambda float64) (*Problem, error) {
	n, cols := X.Dims()
	if n == 0 || cols == 0 {
		return nil, errors.NewModelError("NewProblem", "empty data", errors.ErrEmptyData)
	}
	if cols != p {
		return nil, errors.NewDimensionError("NewProblem", p, cols, 1)
	}
	if y.Len() != n {
		return nil, errors.NewDimensionError("NewProblem", n, y.Len(), 0)
	}
	if k <= 0 || k > p {
		return nil, errors.NewValidationError("k", "must satisfy 0 < k <= p", k)
	}
	if mu < 0 || !errors.IsFinite(mu) {
		return nil, errors.NewValidationError("mu", "must be finite and non-negative", mu)
	}
	if lambda < 0 || !errors.IsFinite(lambda) {
		return nil, errors.NewValidationError("lambda", "must be finite and non-negative", lambda)
	}

	Xd := mat.DenseCopyOf(X)
	if err := errors.CheckNumericalStability("NewProblem.X", Xd.RawMatrix().Data, 0); err != nil {
		return nil, err
	}
	yd := mat.VecDenseCopyOf(y)
	if err := errors.CheckVector("NewProblem.y", yd, 0); err != nil {
		return nil, err
	}

	prob := &Problem{X: Xd, Y: yd, P: p, K: k, Mu: mu, Lambda: lambda}
	prob.gram = gram(Xd)
	prob.xty = mat.NewVecDense(p, nil)
	prob.xty.MulVec(Xd.T(), yd)
	return prob, nil
}

// gram returns X'X. Rows are filled in parallel for wide designs.
func gram(X *mat.Dense) *mat.SymDense {
	_, p := X.Dims()
	g := mat.NewSymDense(p, nil)
	parallel.ParallelizeWithThreshold(p, gramParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			ci := X.ColView(i)
			for j := i; j < p; j++ {
				g.SetSym(i, j, mat.Dot(ci, X.ColView(j)))
			}
		}
	})
	return g
}

// Gram returns the precomputed X'X. Callers must not modify it.
func (prob *Problem) Gram() *mat.SymDense { return prob.gram }

// XTy returns the precomputed X'y. Callers must not modify it.
func (prob *Problem) XTy() *mat.VecDense { return prob.xty }

// Samples returns n.
func (prob *Problem) Samples() int {
	n, _ := prob.X.Dims()
	return n
}

// Residual returns X·beta − y.
func (prob *Problem) Residual(beta mat.Vector) *mat.VecDense {
	r := mat.NewVecDense(prob.Samples(), nil)
	r.MulVec(prob.X, beta)
	r.SubVec(r, prob.Y)
	return r
}

// Objective evaluates the trimmed Lasso objective at beta.
func (prob *Problem) Objective(beta mat.Vector) float64 {
	return Objective(beta, prob.X, prob.Y, prob.Mu, prob.Lambda, prob.K)
}

// augmentedGram returns X'X + sigma·I.
func (prob *Problem) augmentedGram(sigma float64) *mat.SymDense {
	a := mat.NewSymDense(prob.P, nil)
	a.CopySym(prob.gram)
	for i := 0; i < prob.P; i++ {
		a.SetSym(i, i, a.At(i, i)+sigma)
	}
	return a
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
