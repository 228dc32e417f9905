package trimmed

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Objective computes
//
//	0.5·‖y − X·beta‖² + mu·‖beta‖₁ + lambda·T_k(beta).
func Objective(beta mat.Vector, X mat.Matrix, y mat.Vector, mu, lambda float64, k int) float64 {
	n, _ := X.Dims()
	r := mat.NewVecDense(n, nil)
	r.MulVec(X, beta)
	r.SubVec(y, r)
	loss := 0.5 * mat.Dot(r, r)
	return loss + mu*mat.Norm(beta, 1) + lambda*TrimPenalty(beta, k)
}

// TrimPenalty returns T_k(beta), the sum of the p−k smallest |beta_i|.
// It is zero when k >= p.
func TrimPenalty(beta mat.Vector, k int) float64 {
	abs := sortedAbs(beta)
	p := len(abs)
	if k >= p {
		return 0
	}
	if k < 0 {
		k = 0
	}
	return floats.Sum(abs[:p-k])
}

// SumLargest returns the sum of the k largest |beta_i|.
// ‖beta‖₁ = SumLargest(beta, k) + TrimPenalty(beta, k).
func SumLargest(beta mat.Vector, k int) float64 {
	abs := sortedAbs(beta)
	p := len(abs)
	if k > p {
		k = p
	}
	if k <= 0 {
		return 0
	}
	return floats.Sum(abs[p-k:])
}

// sortedAbs returns |beta| in ascending order.
func sortedAbs(beta mat.Vector) []float64 {
	abs := make([]float64, beta.Len())
	for i := range abs {
		abs[i] = math.Abs(beta.AtVec(i))
	}
	sort.Float64s(abs)
	return abs
}

// kthLargestAbs returns the k-th largest |beta_i| (1-based k).
func kthLargestAbs(beta mat.Vector, k int) float64 {
	abs := sortedAbs(beta)
	return abs[len(abs)-k]
}
