package trimmed

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

// LassoSolver solves
//
//	minimize_beta  0.5·beta'·A·beta + c'·beta + w·‖beta‖₁
//
// for positive-semidefinite A, starting from init.
type LassoSolver interface {
	Solve(A mat.Symmetric, c mat.Vector, w float64, init mat.Vector) (*mat.VecDense, error)
}

// Default proximal subsolver budget.
const (
	DefaultProxMaxIter = 10000
	DefaultProxTol     = 1e-3
)

// ProximalLasso is a fixed-step ISTA solver. It stops when the L2 change
// between consecutive iterates drops below Tol or after MaxIter steps and
// returns the last iterate either way.
type ProximalLasso struct {
	MaxIter int
	Tol     float64

	// iterations spent by the most recent Solve
	lastIter int
	// step for the *mat.SymDense it was computed from
	stepFor *mat.SymDense
	step    float64
}

// NewProximalLasso returns a ProximalLasso with the default budget.
func NewProximalLasso() *ProximalLasso {
	return &ProximalLasso{MaxIter: DefaultProxMaxIter, Tol: DefaultProxTol}
}

// LastIterations reports how many ISTA steps the previous Solve used.
func (pl *ProximalLasso) LastIterations() int { return pl.lastIter }

// Solve runs ISTA with step 1/‖A‖₂ (see SpectralNorm). A zero A has no
// curvature, in which case the step is 1. The step is reused while A is the
// same *mat.SymDense, so A must not be modified between calls.
func (pl *ProximalLasso) Solve(A mat.Symmetric, c mat.Vector, w float64, init mat.Vector) (*mat.VecDense, error) {
	p := A.SymmetricDim()
	if c.Len() != p {
		return nil, errors.NewDimensionError("ProximalLasso.Solve", p, c.Len(), 0)
	}
	if init.Len() != p {
		return nil, errors.NewDimensionError("ProximalLasso.Solve", p, init.Len(), 0)
	}
	if w < 0 {
		return nil, errors.NewValidationError("w", "must be non-negative", w)
	}
	maxIter, tol := pl.MaxIter, pl.Tol
	if maxIter <= 0 {
		maxIter = DefaultProxMaxIter
	}
	if tol <= 0 {
		tol = DefaultProxTol
	}

	step := pl.stepSize(A)
	thresh := step * w

	beta := mat.VecDenseCopyOf(init)
	next := mat.NewVecDense(p, nil)
	grad := mat.NewVecDense(p, nil)
	diff := mat.NewVecDense(p, nil)

	pl.lastIter = 0
	for it := 1; it <= maxIter; it++ {
		pl.lastIter = it
		grad.MulVec(A, beta)
		grad.AddVec(grad, c)
		next.AddScaledVec(beta, -step, grad)
		for i := 0; i < p; i++ {
			next.SetVec(i, SoftThreshold(next.AtVec(i), thresh))
		}

		diff.SubVec(next, beta)
		change := mat.Norm(diff, 2)
		beta.CopyVec(next)

		if err := errors.CheckScalar("ProximalLasso.Solve", change, it); err != nil {
			return nil, err
		}
		if change < tol {
			break
		}
	}
	return beta, nil
}

func (pl *ProximalLasso) stepSize(A mat.Symmetric) float64 {
	sym, ok := A.(*mat.SymDense)
	if ok && sym == pl.stepFor {
		return pl.step
	}
	step := 1.0
	if norm := SpectralNorm(A); norm > 0 {
		step = 1 / norm
	}
	if ok {
		pl.stepFor, pl.step = sym, step
	}
	return step
}

// SoftThreshold returns sign(v)·max(|v|−tau, 0).
func SoftThreshold(v, tau float64) float64 {
	if v > tau {
		return v - tau
	}
	if v < -tau {
		return v + tau
	}
	return 0
}

// SpectralNorm returns the operator norm ‖A‖₂ of a symmetric matrix, the
// largest eigenvalue magnitude. If the eigendecomposition fails the
// Frobenius norm, an upper bound, is returned instead.
func SpectralNorm(A mat.Symmetric) float64 {
	var es mat.EigenSym
	if !es.Factorize(A, false) {
		return mat.Norm(A, 2)
	}
	norm := 0.0
	for _, v := range es.Values(nil) {
		norm = math.Max(norm, math.Abs(v))
	}
	return norm
}
