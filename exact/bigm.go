package exact

import (
	"context"
	"fmt"
	"math"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
	"github.com/YuminosukeSato/trimlasso/pkg/log"
	"github.com/YuminosukeSato/trimlasso/solver"
	"github.com/YuminosukeSato/trimlasso/trimmed"
)

// BigM solves the big-M formulation
//
//	min  0.5‖y − Xβ‖² + mu·Σγ + lambda·Σa
//	s.t. |β| ≤ bigM,  γ ≥ |β|,  a ≥ bigM·z + γ − bigM,  a ≥ 0,
//	     z binary,  Σz = p − k.
//
// The formulation is exact only if some optimum lies strictly inside the
// box. When a coefficient ends within bindingTol·bigM of the bound the result
// is withheld and a *errors.BindingWarning returned; WithBindingCheck(false)
// returns the result anyway.
func BigM(ctx context.Context, prob *trimmed.Problem, s solver.Solver, bigM float64, opts ...Option) (*Result, error) {
	if err := validateBigM(bigM); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	b := newBuilder("trimmed-lasso-bigm", prob, bigM)
	z := b.addCardinality()
	for i := 0; i < prob.P; i++ {
		a := b.m.AddContinuous(fmt.Sprintf("a[%d]", i), 0, math.Inf(1))
		b.m.AddLinear(a, prob.Lambda)
		b.m.AddConstraint(fmt.Sprintf("trim[%d]", i), -bigM, math.Inf(1),
			solver.Term{Var: a, Coef: 1},
			solver.Term{Var: z[i], Coef: -bigM},
			solver.Term{Var: b.gamma[i], Coef: -1},
		)
	}

	res, err := b.solve(ctx, s, log.MethodBigM, cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.bindingCheck {
		return res, nil
	}

	eps := cfg.bindingTol * bigM
	var idx []int
	var vals []float64
	for i := 0; i < prob.P; i++ {
		if v := res.Beta.AtVec(i); math.Abs(v) >= bigM-eps {
			idx = append(idx, i)
			vals = append(vals, v)
		}
	}
	if len(idx) > 0 {
		cfg.logger.Warn("bigM binding at optimum",
			log.BigMKey, bigM,
			log.ErrorCodeKey, log.ErrorBigMBinding,
			log.SuggestionKey, "increase bigM",
		)
		return nil, errors.NewBindingWarning(bigM, idx, vals)
	}
	return res, nil
}

// ConvexEnvelope solves the relaxation in which lambda·T_k(β) is replaced by
// its convex envelope on the box |β| ≤ bigM,
//
//	lambda·max(0, ‖β‖₁ − k·bigM),
//
// written with an epigraph variable t ≥ 0, t ≥ Σγ − k·bigM. The model is a
// continuous QP; Result.SolverObjective is a lower bound on the trimmed Lasso
// optimum over the box.
func ConvexEnvelope(ctx context.Context, prob *trimmed.Problem, s solver.Solver, bigM float64, opts ...Option) (*Result, error) {
	if err := validateBigM(bigM); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	b := newBuilder("trimmed-lasso-envelope", prob, bigM)

	t := b.m.AddContinuous("t", 0, math.Inf(1))
	b.m.AddLinear(t, prob.Lambda)
	terms := []solver.Term{{Var: t, Coef: 1}}
	for _, g := range b.gamma {
		terms = append(terms, solver.Term{Var: g, Coef: -1})
	}
	b.m.AddConstraint("envelope", -float64(prob.K)*bigM, math.Inf(1), terms...)

	return b.solve(ctx, s, log.MethodEnvelope, cfg)
}

func validateBigM(bigM float64) error {
	if !(bigM > 0) || math.IsInf(bigM, 0) {
		return errors.NewValidationError("bigM", "must be finite and positive", bigM)
	}
	return nil
}
