package trimmed

import (
	"github.com/YuminosukeSato/trimlasso/pkg/errors"
	"github.com/YuminosukeSato/trimlasso/pkg/log"
)

// Config holds the driver settings. Zero-valued Lasso, Tie and Logger fields
// are filled in at solve time.
type Config struct {
	MaxIter int         // outer iteration budget
	RelTol  float64     // relative tolerance of the stopping rule
	Sigma   float64     // ADMM penalty parameter (ADMM only)
	Seed    int64       // seed for the default tie-breaker
	Lasso   LassoSolver // beta-update subsolver
	Tie     TieBreaker  // source of every random choice
	Logger  log.Logger
}

// DefaultAltMinConfig returns the alternating-minimization defaults.
func DefaultAltMinConfig() Config {
	return Config{MaxIter: 10000, RelTol: 1e-6}
}

// DefaultADMMConfig returns the ADMM defaults.
func DefaultADMMConfig() Config {
	return Config{MaxIter: 2000, RelTol: 1e-6, Sigma: 1.0}
}

// Option is a functional option for the drivers.
type Option func(*Config)

// WithMaxIter sets the outer iteration budget.
func WithMaxIter(n int) Option {
	return func(c *Config) { c.MaxIter = n }
}

// WithRelTol sets the relative tolerance of the stopping rule.
func WithRelTol(tol float64) Option {
	return func(c *Config) { c.RelTol = tol }
}

// WithSigma sets the ADMM penalty parameter.
func WithSigma(sigma float64) Option {
	return func(c *Config) { c.Sigma = sigma }
}

// WithSeed seeds the default RandTieBreaker.
func WithSeed(seed int64) Option {
	return func(c *Config) { c.Seed = seed }
}

// WithLassoSolver replaces the proximal subsolver.
func WithLassoSolver(s LassoSolver) Option {
	return func(c *Config) { c.Lasso = s }
}

// WithTieBreaker supplies the random source directly; it overrides WithSeed.
func WithTieBreaker(t TieBreaker) Option {
	return func(c *Config) { c.Tie = t }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func (c *Config) validate(admm bool) error {
	if c.MaxIter <= 0 {
		return errors.NewValidationError("max_iter", "must be positive", c.MaxIter)
	}
	if c.RelTol <= 0 || !errors.IsFinite(c.RelTol) {
		return errors.NewValidationError("rel_tol", "must be finite and positive", c.RelTol)
	}
	if admm && (c.Sigma <= 0 || !errors.IsFinite(c.Sigma)) {
		return errors.NewValidationError("sigma", "must be finite and positive", c.Sigma)
	}
	return nil
}

// resolve fills the unset collaborators.
func (c *Config) resolve() {
	if c.Lasso == nil {
		c.Lasso = NewProximalLasso()
	}
	if c.Tie == nil {
		c.Tie = NewRandTieBreaker(c.Seed)
	}
	if c.Logger == nil {
		c.Logger = log.GetLogger()
	}
}
