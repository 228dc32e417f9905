package trimmed

import (
	"gonum.org/v1/gonum/mat"
)

// Result is the output of a heuristic solve.
type Result struct {
	// Coef is the returned estimate: beta for alternating minimization,
	// gamma for ADMM.
	Coef *mat.VecDense
	// Beta and Gamma are the final iterates of both blocks.
	Beta  *mat.VecDense
	Gamma *mat.VecDense
	// Objective is the trimmed Lasso objective at Coef.
	Objective float64
	// Iterations is the number of outer iterations performed.
	Iterations int
	// Converged is false when the iteration budget ran out first.
	Converged bool
	// PrimalResidual is ‖beta − gamma‖ at termination (ADMM only).
	PrimalResidual float64
}

// NonZero counts coefficients of Coef with magnitude above tol.
func (r *Result) NonZero(tol float64) int {
	n := 0
	for i := 0; i < r.Coef.Len(); i++ {
		v := r.Coef.AtVec(i)
		if v > tol || v < -tol {
			n++
		}
	}
	return n
}
