package trimmed

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
	"github.com/YuminosukeSato/trimlasso/pkg/log"
)

// convergenceOffset keeps relative changes finite when the reference value is zero.
const convergenceOffset = 0.01

// AlternatingMinimizer solves the trimmed Lasso by alternating a gamma step
// (Selector) with a Lasso beta step. beta starts from a standard normal draw.
type AlternatingMinimizer struct {
	cfg Config
}

// NewAlternatingMinimizer builds a driver from DefaultAltMinConfig and opts.
func NewAlternatingMinimizer(opts ...Option) *AlternatingMinimizer {
	cfg := DefaultAltMinConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &AlternatingMinimizer{cfg: cfg}
}

// Config returns the driver configuration.
func (am *AlternatingMinimizer) Config() Config { return am.cfg }

// Solve runs until the relative objective change falls below RelTol or
// MaxIter iterations have been spent. Running out of iterations is not an
// error: a ConvergenceWarning is emitted and Result.Converged is false.
func (am *AlternatingMinimizer) Solve(prob *Problem) (*Result, error) {
	cfg := am.cfg
	if err := cfg.validate(false); err != nil {
		return nil, err
	}
	cfg.resolve()
	logger := cfg.Logger.With(log.SolverMethodKey, log.MethodAltMin)
	debug := logger.Enabled(context.Background(), log.LevelDebug)
	start := time.Now()

	p := prob.P
	beta := mat.NewVecDense(p, nil)
	for i := 0; i < p; i++ {
		beta.SetVec(i, cfg.Tie.NormFloat64())
	}
	sel := NewSelector(cfg.Tie)
	var gamma *mat.VecDense
	c := mat.NewVecDense(p, nil)
	w := prob.Mu + prob.Lambda

	prevObj := prob.Objective(beta)
	obj := prevObj
	converged := false
	iter := 0
	for iter < cfg.MaxIter {
		iter++
		gamma = sel.Select(prob, beta)

		// c = −X'y − gamma
		c.AddVec(prob.XTy(), gamma)
		c.ScaleVec(-1, c)

		next, err := cfg.Lasso.Solve(prob.Gram(), c, w, beta)
		if err != nil {
			return nil, errors.Wrapf(err, "alternating minimization iteration %d", iter)
		}
		beta = next

		obj = prob.Objective(beta)
		if err := errors.CheckScalar("AlternatingMinimizer.Solve", obj, iter); err != nil {
			return nil, err
		}
		if debug {
			logger.Debug("iteration", log.IterationKey, iter, log.ObjectiveKey, obj)
		}
		if math.Abs(obj-prevObj)/(prevObj+convergenceOffset) < cfg.RelTol {
			converged = true
			break
		}
		prevObj = obj
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("AlternatingMinimization", cfg.MaxIter,
			fmt.Sprintf("objective %.6g", obj)))
	}
	logger.Info("solve finished",
		log.IterationKey, iter,
		log.ObjectiveKey, obj,
		log.ConvergedKey, converged,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Result{
		Coef:       mat.VecDenseCopyOf(beta),
		Beta:       beta,
		Gamma:      gamma,
		Objective:  obj,
		Iterations: iter,
		Converged:  converged,
	}, nil
}
