// Package enum is a pure-Go exact backend for small mixed-integer quadratic
// programs. It enumerates every assignment of the binary variables and every
// admissible support of each SOS1 set, prunes assignments whose rows cannot
// be satisfied by interval arithmetic, and solves the remaining convex QPs
// with an operator-splitting method. The best feasible leaf is optimal
// provided the quadratic form is positive semidefinite.
package enum

import (
	"context"
	"fmt"
	"time"

	"github.com/YuminosukeSato/trimlasso/core/parallel"
	"github.com/YuminosukeSato/trimlasso/pkg/errors"
	"github.com/YuminosukeSato/trimlasso/pkg/log"
	"github.com/YuminosukeSato/trimlasso/solver"
)

// Name is the backend name used in errors and logs.
const Name = "enum"

// DefaultMaxBinaries bounds the enumeration at 2^20 assignments.
const DefaultMaxBinaries = 20

// feasTol is the slack allowed when checking rows by interval arithmetic.
const feasTol = 1e-9

// Solver enumerates binary assignments. It is safe for concurrent use.
type Solver struct {
	maxBinaries int
	qp          qpSettings
	leafSolver  solver.Solver
	logger      log.Logger
}

// Option configures a Solver.
type Option func(*Solver)

// WithMaxBinaries sets the largest number of binary variables accepted.
func WithMaxBinaries(n int) Option {
	return func(s *Solver) { s.maxBinaries = n }
}

// WithTolerance sets the absolute and relative QP termination tolerances.
func WithTolerance(abs, rel float64) Option {
	return func(s *Solver) {
		s.qp.EpsAbs = abs
		s.qp.EpsRel = rel
	}
}

// WithMaxIter sets the iteration budget of each QP subproblem.
func WithMaxIter(n int) Option {
	return func(s *Solver) { s.qp.MaxIter = n }
}

// WithLeafSolver hands each leaf to a continuous backend such as highs.New
// instead of the built-in QP routine. A leaf the backend reports infeasible is
// skipped; any other backend error aborts the solve.
func WithLeafSolver(leafSolver solver.Solver) Option {
	return func(s *Solver) { s.leafSolver = leafSolver }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

// New returns a Solver with the default limits.
func New(opts ...Option) *Solver {
	s := &Solver{maxBinaries: DefaultMaxBinaries, qp: defaultQPSettings()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLogger()
	}
	s.logger = s.logger.With(log.SolverBackendKey, Name)
	return s
}

func (s *Solver) Name() string { return Name }

// Supports accepts every model feature but refuses models with more than
// the configured number of binaries.
func (s *Solver) Supports(m *solver.Model) error {
	if nb := len(binaries(m)); nb > s.maxBinaries {
		return errors.NewSolverError(Name, errors.SolverLimit,
			fmt.Errorf("%d binary variables exceed the enumeration limit of %d", nb, s.maxBinaries))
	}
	return nil
}

// leaf is a fully fixed subproblem: binaries fixed and SOS1 supports chosen.
type leaf struct {
	lo, hi []float64
}

type leafResult struct {
	x      []float64
	obj    float64
	status qpStatus
	iter   int
	err    error
}

// Solve enumerates the leaves and returns the best one. A QP that fails to
// converge aborts the solve: skipping it could return a suboptimal point.
func (s *Solver) Solve(ctx context.Context, m *solver.Model) (*solver.Solution, error) {
	start := time.Now()
	leaves, err := s.leaves(ctx, m)
	if err != nil {
		return nil, err
	}
	if len(leaves) == 0 {
		return nil, errors.NewSolverError(Name, errors.SolverInfeasible,
			fmt.Errorf("no binary assignment satisfies the constraints"))
	}

	results := make([]leafResult, len(leaves))
	parallel.ParallelizeWithThreshold(len(leaves), 1, func(from, to int) {
		for i := from; i < to; i++ {
			results[i] = s.solveLeaf(ctx, m, leaves[i])
		}
	})

	best := -1
	for i, r := range results {
		if r.err != nil {
			if ctx.Err() != nil {
				return nil, errors.NewSolverError(Name, errors.SolverLimit, ctx.Err())
			}
			if errors.IsSolverError(r.err, errors.SolverLimit) {
				return nil, errors.NewSolverError(Name, errors.SolverLimit, r.err)
			}
			return nil, errors.NewSolverError(Name, errors.SolverFailed, r.err)
		}
		switch r.status {
		case qpMaxIter:
			return nil, errors.NewSolverError(Name, errors.SolverLimit,
				fmt.Errorf("QP subproblem %d did not converge in %d iterations", i, r.iter))
		case qpSolved:
			if best < 0 || r.obj < results[best].obj {
				best = i
			}
		}
	}
	if best < 0 {
		return nil, errors.NewSolverError(Name, errors.SolverInfeasible,
			fmt.Errorf("all %d subproblems are infeasible", len(leaves)))
	}

	s.logger.Debug("enumeration finished",
		log.ObjectiveKey, results[best].obj,
		"leaves", len(leaves),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return &solver.Solution{X: results[best].x, Objective: results[best].obj, Nodes: len(leaves)}, nil
}

// leaves expands binary assignments and SOS1 supports.
func (s *Solver) leaves(ctx context.Context, m *solver.Model) ([]leaf, error) {
	bins := binaries(m)
	if len(bins) > s.maxBinaries {
		return nil, s.Supports(m)
	}
	lo0 := make([]float64, m.NumVars())
	hi0 := make([]float64, m.NumVars())
	for i, v := range m.Vars {
		lo0[i], hi0[i] = v.Lower, v.Upper
	}

	var out []leaf
	total := 1 << len(bins)
assign:
	for mask := 0; mask < total; mask++ {
		if mask%1024 == 0 && ctx.Err() != nil {
			return nil, errors.NewSolverError(Name, errors.SolverLimit, ctx.Err())
		}
		lo, hi := clone(lo0), clone(hi0)
		for b, v := range bins {
			val := float64(mask >> b & 1)
			if val < lo[v] || val > hi[v] {
				continue assign
			}
			lo[v], hi[v] = val, val
		}
		if !rowsFeasible(m, lo, hi) {
			continue
		}
		expandSOS(m, lo, hi, 0, func(l, h []float64) {
			if rowsFeasible(m, l, h) {
				out = append(out, leaf{lo: clone(l), hi: clone(h)})
			}
		})
	}
	return out, nil
}

// expandSOS fixes all but one free member of each SOS1 set to zero, once for
// each choice of the surviving member.
func expandSOS(m *solver.Model, lo, hi []float64, idx int, emit func(lo, hi []float64)) {
	if idx == len(m.SOS) {
		emit(lo, hi)
		return
	}
	var forced, free []int
	for _, v := range m.SOS[idx].Vars {
		switch {
		case lo[v] == 0 && hi[v] == 0:
		case lo[v] > 0 || hi[v] < 0:
			forced = append(forced, v)
		default:
			free = append(free, v)
		}
	}

	switch {
	case len(forced) > 1:
		return
	case len(forced) == 1 || len(free) <= 1:
		l, h := clone(lo), clone(hi)
		if len(forced) == 1 {
			for _, v := range free {
				l[v], h[v] = 0, 0
			}
		}
		expandSOS(m, l, h, idx+1, emit)
	default:
		for _, keep := range free {
			l, h := clone(lo), clone(hi)
			for _, v := range free {
				if v != keep {
					l[v], h[v] = 0, 0
				}
			}
			expandSOS(m, l, h, idx+1, emit)
		}
	}
}

// rowsFeasible rejects bounds under which some row's activity range misses
// [lower, upper].
func rowsFeasible(m *solver.Model, lo, hi []float64) bool {
	for _, c := range m.Constraints {
		minAct, maxAct := 0.0, 0.0
		for _, t := range c.Terms {
			if t.Coef >= 0 {
				minAct += t.Coef * lo[t.Var]
				maxAct += t.Coef * hi[t.Var]
			} else {
				minAct += t.Coef * hi[t.Var]
				maxAct += t.Coef * lo[t.Var]
			}
		}
		if minAct > c.Upper+feasTol || maxAct < c.Lower-feasTol {
			return false
		}
	}
	return true
}

// solveLeaf solves the convex QP of one leaf. Variable bounds become rows.
func (s *Solver) solveLeaf(ctx context.Context, m *solver.Model, lf leaf) leafResult {
	if s.leafSolver != nil {
		return s.solveLeafWith(ctx, m, lf)
	}
	prob := buildQP(m, lf.lo, lf.hi)
	res, err := solveQP(ctx, prob, s.qp)
	if err != nil {
		return leafResult{err: err}
	}
	if res.status != qpSolved {
		return leafResult{status: res.status, iter: res.iter}
	}
	for j := range res.x {
		res.x[j] = clamp(res.x[j], lf.lo[j], lf.hi[j])
	}
	return leafResult{x: res.x, obj: m.Objective(res.x), status: qpSolved, iter: res.iter}
}

// solveLeafWith solves the leaf as a continuous model on the leaf backend.
func (s *Solver) solveLeafWith(ctx context.Context, m *solver.Model, lf leaf) leafResult {
	sol, err := solver.Solve(ctx, s.leafSolver, leafModel(m, lf))
	switch {
	case errors.IsSolverError(err, errors.SolverInfeasible):
		return leafResult{status: qpInfeasible}
	case err != nil:
		return leafResult{err: err}
	}
	x := clone(sol.X)
	for j := range x {
		x[j] = clamp(x[j], lf.lo[j], lf.hi[j])
	}
	return leafResult{x: x, obj: m.Objective(x), status: qpSolved, }
}

// leafModel copies m with the leaf bounds, every variable continuous and no
// SOS1 sets.
func leafModel(m *solver.Model, lf leaf) *solver.Model {
	out := &solver.Model{
		Name:        m.Name + "/leaf",
		Vars:        make([]solver.Variable, len(m.Vars)),
		Linear:      m.Linear,
		Quad:        m.Quad,
		Offset:      m.Offset,
		Constraints: m.Constraints,
	}
	for i, v := range m.Vars {
		out.Vars[i] = solver.Variable{Name: v.Name, Lower: lf.lo[i], Upper: lf.hi[i], Type: solver.Continuous}
	}
	return out
}

func binaries(m *solver.Model) []int {
	var out []int
	for i, v := range m.Vars {
		if v.Type == solver.Binary {
			out = append(out, i)
		}
	}
	return out
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
