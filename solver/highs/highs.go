// Package highs adapts the HiGHS optimizer to solver.Solver.
//
// HiGHS solves linear programs, mixed-integer linear programs and continuous
// convex quadratic programs. It has no SOS1 constraints and no mixed-integer
// quadratic support, so models using either are refused by Supports rather
// than relaxed.
package highs

import (
	"context"
	"fmt"

	"github.com/lanl/highs"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
	"github.com/YuminosukeSato/trimlasso/pkg/log"
	"github.com/YuminosukeSato/trimlasso/solver"
)

// Name is the backend name used in errors and logs.
const Name = "highs"

// Solver calls HiGHS through cgo.
type Solver struct {
	logger log.Logger
}

// New returns a HiGHS backend logging through l, or the global logger when l is nil.
func New(l log.Logger) *Solver {
	if l == nil {
		l = log.GetLogger()
	}
	return &Solver{logger: l.With(log.SolverBackendKey, Name)}
}

func (s *Solver) Name() string { return Name }

// Supports refuses SOS1 sets and quadratic objectives over binaries.
func (s *Solver) Supports(m *solver.Model) error {
	f := m.Features()
	if f&solver.FeatureSOS1 != 0 {
		return solver.Unsupported(Name, solver.FeatureSOS1)
	}
	if f&solver.FeatureQuadratic != 0 && f&solver.FeatureBinary != 0 {
		return solver.Unsupported(Name, solver.FeatureQuadratic|solver.FeatureBinary)
	}
	return nil
}

// Solve runs HiGHS. The cgo call cannot be interrupted; when ctx ends first
// the result is abandoned and a SolverLimit error returned.
func (s *Solver) Solve(ctx context.Context, m *solver.Model) (*solver.Solution, error) {
	hm := toHighs(m)

	type outcome struct {
		sol highs.Solution
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		sol, err := hm.Solve()
		done <- outcome{sol, err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		return nil, errors.NewSolverError(Name, errors.SolverLimit, ctx.Err())
	case out = <-done:
	}
	if out.err != nil {
		return nil, errors.NewSolverError(Name, errors.SolverFailed, out.err)
	}

	switch out.sol.Status {
	case highs.Optimal:
	case highs.Infeasible:
		return nil, errors.NewSolverError(Name, errors.SolverInfeasible, fmt.Errorf("status: %v", out.sol.Status.String()))
	case highs.Unbounded, highs.UnboundedOrInfeasible:
		return nil, errors.NewSolverError(Name, errors.SolverUnbounded, fmt.Errorf("status: %v", out.sol.Status.String()))
	default:
		return nil, errors.NewSolverError(Name, errors.SolverLimit, fmt.Errorf("status: %v", out.sol.Status.String()))
	}

	x := make([]float64, m.NumVars())
	copy(x, out.sol.ColumnPrimal)
	s.logger.Debug("highs finished", log.ObjectiveKey, out.sol.Objective)
	return &solver.Solution{X: x, Objective: m.Objective(x), Nodes: 1}, nil
}

// toHighs translates m. Q is passed as its upper triangle.
func toHighs(m *solver.Model) *highs.Model {
	n := m.NumVars()
	hm := &highs.Model{
		ColCosts: append([]float64(nil), m.Linear...),
		Offset:   m.Offset,
		ColLower: make([]float64, n),
		ColUpper: make([]float64, n),
	}

	integer := false
	types := make([]highs.VariableType, n)
	for j, v := range m.Vars {
		hm.ColLower[j], hm.ColUpper[j] = v.Lower, v.Upper
		types[j] = highs.ContinuousType
		if v.Type == solver.Binary {
			types[j] = highs.IntegerType
			integer = true
		}
	}
	if integer {
		hm.VarTypes = types
	}

	for r, c := range m.Constraints {
		for _, t := range c.Terms {
			hm.ConstMatrix = append(hm.ConstMatrix, highs.Nonzero{Row: r, Col: t.Var, Val: t.Coef})
		}
		hm.RowLower = append(hm.RowLower, c.Lower)
		hm.RowUpper = append(hm.RowUpper, c.Upper)
	}

	for _, q := range m.Quad {
		hm.HessianMatrix = append(hm.HessianMatrix, highs.Nonzero{Row: q.I, Col: q.J, Val: q.Coef})
	}
	return hm
}
