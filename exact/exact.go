// Package exact builds the mixed-integer formulations of the trimmed Lasso
// and hands them to a solver.Solver backend.
//
// SOS1 and BigM are exact: their optimum is the global minimizer of the
// trimmed Lasso objective. ConvexEnvelope is a convex relaxation whose optimal
// value is a lower bound. The heuristics in package trimmed give upper bounds.
package exact

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
	"github.com/YuminosukeSato/trimlasso/pkg/log"
	"github.com/YuminosukeSato/trimlasso/solver"
	"github.com/YuminosukeSato/trimlasso/trimmed"
)

// DefaultBindingTol is the binding-check slack relative to bigM.
const DefaultBindingTol = 1e-5

// Result is the outcome of an exact or relaxed solve.
type Result struct {
	Beta *mat.VecDense
	// Objective is the trimmed Lasso objective at Beta.
	Objective float64
	// SolverObjective is the optimal value of the model that was solved.
	// For ConvexEnvelope it is a lower bound on the trimmed Lasso optimum.
	SolverObjective float64
	Solver          string
	Nodes           int
}

type config struct {
	bindingCheck bool
	bindingTol   float64
	logger       log.Logger
}

// Option configures a solve.
type Option func(*config)

// WithBindingCheck enables or disables the big-M binding check (default on).
func WithBindingCheck(on bool) Option {
	return func(c *config) { c.bindingCheck = on }
}

// WithBindingTol sets the slack, relative to bigM, under which a coefficient
// counts as sitting on the bound.
func WithBindingTol(tol float64) Option {
	return func(c *config) { c.bindingTol = tol }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *config) { c.logger = l }
}

func newConfig(opts []Option) *config {
	c := &config{bindingCheck: true, bindingTol: DefaultBindingTol}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.GetLogger()
	}
	return c
}

// builder lays out the variables shared by every formulation.
type builder struct {
	prob  *trimmed.Problem
	m     *solver.Model
	beta  []int
	gamma []int
}

// newBuilder adds beta in [−bound, bound] and gamma in [0, bound] with
// gamma ≥ |beta|, and the objective 0.5‖y − X·beta‖² + mu·Σgamma.
func newBuilder(name string, prob *trimmed.Problem, bound float64) *builder {
	p := prob.P
	b := &builder{prob: prob, m: solver.NewModel(name), beta: make([]int, p), gamma: make([]int, p)}
	for i := 0; i < p; i++ {
		b.beta[i] = b.m.AddContinuous(fmt.Sprintf("beta[%d]", i), -bound, bound)
	}
	for i := 0; i < p; i++ {
		b.gamma[i] = b.m.AddContinuous(fmt.Sprintf("gamma[%d]", i), 0, bound)
		b.m.AddConstraint(fmt.Sprintf("abs_pos[%d]", i), 0, math.Inf(1),
			solver.Term{Var: b.gamma[i], Coef: 1}, solver.Term{Var: b.beta[i], Coef: -1})
		b.m.AddConstraint(fmt.Sprintf("abs_neg[%d]", i), 0, math.Inf(1),
			solver.Term{Var: b.gamma[i], Coef: 1}, solver.Term{Var: b.beta[i], Coef: 1})
		b.m.AddLinear(b.gamma[i], prob.Mu)
	}

	// 0.5‖y − Xβ‖² = 0.5β'(X'X)β − (X'y)'β + 0.5‖y‖²
	G, xty := prob.Gram(), prob.XTy()
	for i := 0; i < p; i++ {
		b.m.AddLinear(b.beta[i], -xty.AtVec(i))
		for j := i; j < p; j++ {
			if g := G.At(i, j); g != 0 {
				b.m.AddQuad(b.beta[i], b.beta[j], g)
			}
		}
	}
	b.m.Offset = 0.5 * mat.Dot(prob.Y, prob.Y)
	return b
}

// addCardinality adds binaries z with Σz = p − k and returns them.
func (b *builder) addCardinality() []int {
	p := b.prob.P
	z := make([]int, p)
	terms := make([]solver.Term, p)
	for i := 0; i < p; i++ {
		z[i] = b.m.AddBinary(fmt.Sprintf("z[%d]", i))
		terms[i] = solver.Term{Var: z[i], Coef: 1}
	}
	trim := float64(p - b.prob.K)
	b.m.AddConstraint("trimmed_count", trim, trim, terms...)
	return z
}

// solve runs the backend and assembles the Result.
func (b *builder) solve(ctx context.Context, s solver.Solver, method string, cfg *config) (*Result, error) {
	logger := cfg.logger.With(log.SolverMethodKey, method)
	start := time.Now()

	sol, err := solver.Solve(ctx, s, b.m)
	if err != nil {
		logger.Error("exact solve failed", log.ErrorCodeKey, log.ErrorSolver, "error", err)
		return nil, errors.Wrapf(err, "exact %s", method)
	}

	beta := mat.NewVecDense(b.prob.P, nil)
	for i, v := range b.beta {
		beta.SetVec(i, sol.X[v])
	}
	res := &Result{
		Beta:            beta,
		Objective:       b.prob.Objective(beta),
		SolverObjective: sol.Objective,
		Solver:          s.Name(),
		Nodes:           sol.Nodes,
	}
	logger.Info("exact solve finished",
		log.SolverBackendKey, s.Name(),
		log.ObjectiveKey, res.Objective,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}
