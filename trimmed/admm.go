package trimmed

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	priorityqueue "gopkg.in/dnaeon/go-priorityqueue.v1"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
	"github.com/YuminosukeSato/trimlasso/pkg/log"
)

// ADMM solves the trimmed Lasso through the split beta = gamma, with the
// L1 term on beta and the trim term on gamma:
//
//	L(beta, gamma, q) = 0.5‖y − X·beta‖² + mu‖beta‖₁ + lambda·T_k(gamma)
//	                    + q'(beta − gamma) + sigma/2‖beta − gamma‖².
//
// The returned coefficient vector is gamma.
type ADMM struct {
	cfg Config
}

// NewADMM builds a driver from DefaultADMMConfig and opts.
func NewADMM(opts ...Option) *ADMM {
	cfg := DefaultADMMConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ADMM{cfg: cfg}
}

// Config returns the driver configuration.
func (a *ADMM) Config() Config { return a.cfg }

// Solve iterates from beta = gamma = q = 0 until the summed relative change
// of ‖beta − gamma‖ and of the objective at beta drops below RelTol.
func (a *ADMM) Solve(prob *Problem) (*Result, error) {
	cfg := a.cfg
	if err := cfg.validate(true); err != nil {
		return nil, err
	}
	cfg.resolve()
	logger := cfg.Logger.With(log.SolverMethodKey, log.MethodADMM, log.SigmaKey, cfg.Sigma)
	debug := logger.Enabled(context.Background(), log.LevelDebug)
	start := time.Now()

	p, sigma := prob.P, cfg.Sigma
	A := prob.augmentedGram(sigma)
	beta := mat.NewVecDense(p, nil)
	gamma := mat.NewVecDense(p, nil)
	q := mat.NewVecDense(p, nil)
	c := mat.NewVecDense(p, nil)
	diff := mat.NewVecDense(p, nil)

	prevNorm := 0.0
	prevObj := prob.Objective(beta)
	curNorm, curObj := prevNorm, prevObj
	converged := false
	iter := 0
	for iter < cfg.MaxIter {
		iter++

		// c = q − X'y − sigma·gamma
		c.SubVec(q, prob.XTy())
		c.AddScaledVec(c, -sigma, gamma)
		next, err := cfg.Lasso.Solve(A, c, prob.Mu, beta)
		if err != nil {
			return nil, errors.Wrapf(err, "ADMM iteration %d", iter)
		}
		beta = next

		gamma = updateGamma(beta, q, sigma, prob.Lambda, prob.K, cfg.Tie)

		diff.SubVec(beta, gamma)
		q.AddScaledVec(q, sigma, diff)

		curNorm = mat.Norm(diff, 2)
		curObj = prob.Objective(beta)
		if err := errors.CheckScalar("ADMM.Solve", curObj, iter); err != nil {
			return nil, err
		}
		if debug {
			logger.Debug("iteration",
				log.IterationKey, iter,
				log.ObjectiveKey, curObj,
				log.ResidualKey, curNorm,
			)
		}

		change := math.Abs(curNorm-prevNorm)/(prevNorm+convergenceOffset) +
			math.Abs(curObj-prevObj)/(prevObj+convergenceOffset)
		if change < cfg.RelTol {
			converged = true
			break
		}
		prevNorm, prevObj = curNorm, curObj
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("ADMM", cfg.MaxIter,
			fmt.Sprintf("primal residual %.3e", curNorm)))
	}
	logger.Info("solve finished",
		log.IterationKey, iter,
		log.ObjectiveKey, curObj,
		log.ResidualKey, curNorm,
		log.ConvergedKey, converged,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	coef := mat.VecDenseCopyOf(gamma)
	return &Result{
		Coef:           coef,
		Beta:           beta,
		Gamma:          gamma,
		Objective:      prob.Objective(coef),
		Iterations:     iter,
		Converged:      converged,
		PrimalResidual: curNorm,
	}, nil
}

// updateGamma minimizes the augmented Lagrangian over gamma with beta and q
// fixed. Writing v = beta + q/sigma, a free coordinate takes gamma_i = v_i at
// zero cost, while a trimmed coordinate minimizes
//
//	h_i(g) = lambda·|g| + sigma/2·(g − v_i)²
//
// whose minimum is attained at one of 0, v_i + lambda/sigma, v_i − lambda/sigma.
// The p−k coordinates with the smallest trimmed cost are trimmed; the queue is
// filled in the tie-breaker's order so equal costs are split reproducibly.
func updateGamma(beta, q mat.Vector, sigma, lambda float64, k int, tie TieBreaker) *mat.VecDense {
	p := beta.Len()
	gamma := mat.NewVecDense(p, nil)
	trimmed := make([]float64, p)
	base := lambda * lambda / (2 * sigma)

	pq := priorityqueue.New[int, float64](priorityqueue.MinHeap)
	for _, i := range tie.Perm(p) {
		b, qi := beta.AtVec(i), q.AtVec(i)
		v := b + qi/sigma
		up, down := v+lambda/sigma, v-lambda/sigma

		cost, val := sigma/2*b*b+qi*b+qi*qi/(2*sigma), 0.0
		if c := base + lambda*math.Abs(up); c < cost {
			cost, val = c, up
		}
		if c := base + lambda*math.Abs(down); c < cost {
			cost, val = c, down
		}

		trimmed[i] = val
		gamma.SetVec(i, v)
		pq.Put(i, cost)
	}

	// the p−k cheapest indices are trimmed, minimizing the summed trim cost
	for n := 0; n < p-k; n++ {
		i := pq.Get().Value
		gamma.SetVec(i, trimmed[i])
	}
	return gamma
}
