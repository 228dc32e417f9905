package linear

import (
	"github.com/YuminosukeSato/trimlasso/pkg/log"
	"github.com/YuminosukeSato/trimlasso/solver"
)

// Option is a function that configures TrimmedLasso
type Option func(*TrimmedLasso)

// WithK sets the sparsity target: the number of coefficients left unpenalized
// by the trim term. Required; must satisfy 0 < k <= n_features.
func WithK(k int) Option {
	return func(tl *TrimmedLasso) {
		tl.k = k
	}
}

// WithMu sets the ordinary L1 weight (default 0)
func WithMu(mu float64) Option {
	return func(tl *TrimmedLasso) {
		tl.mu = mu
	}
}

// WithLambda sets the trim penalty weight (default DefaultLambda)
func WithLambda(lambda float64) Option {
	return func(tl *TrimmedLasso) {
		tl.lambda = lambda
	}
}

// WithMethod selects the solution method (default MethodAltMin)
func WithMethod(m Method) Option {
	return func(tl *TrimmedLasso) {
		tl.method = m
	}
}

// WithSigma sets the ADMM penalty parameter
func WithSigma(sigma float64) Option {
	return func(tl *TrimmedLasso) {
		tl.sigma = sigma
	}
}

// WithMaxIter sets the outer iteration budget of the heuristic methods.
// Zero keeps the method's default.
func WithMaxIter(n int) Option {
	return func(tl *TrimmedLasso) {
		tl.maxIter = n
	}
}

// WithTol sets the relative stopping tolerance of the heuristic methods.
// Zero keeps the method's default.
func WithTol(tol float64) Option {
	return func(tl *TrimmedLasso) {
		tl.tol = tol
	}
}

// WithRandomState seeds the initial point and tie-breaking
func WithRandomState(seed int64) Option {
	return func(tl *TrimmedLasso) {
		tl.randomState = seed
	}
}

// WithSolver sets the backend used by MethodSOS1 and MethodBigM.
// The default is the enumeration backend.
func WithSolver(s solver.Solver) Option {
	return func(tl *TrimmedLasso) {
		tl.backend = s
	}
}

// WithBigM sets the coefficient bound of MethodBigM. Required for that method.
func WithBigM(bigM float64) Option {
	return func(tl *TrimmedLasso) {
		tl.bigM = bigM
	}
}

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(tl *TrimmedLasso) {
		tl.fitIntercept = fit
	}
}

// WithLogger sets the logger. The default is the global logger.
func WithLogger(l log.Logger) Option {
	return func(tl *TrimmedLasso) {
		tl.logger = l
	}
}
