package solver

import (
	"context"
	"fmt"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

// Solution is an optimal point of a Model.
type Solution struct {
	X         []float64
	Objective float64
	// Nodes counts the subproblems the backend solved, when it reports them.
	Nodes int
}

// Solver is a backend for Model.
type Solver interface {
	// Name identifies the backend in errors and logs.
	Name() string
	// Supports returns a *errors.SolverError of kind SolverUnsupported when
	// the backend cannot solve m exactly.
	Supports(m *Model) error
	// Solve returns an optimal solution or a *errors.SolverError.
	Solve(ctx context.Context, m *Model) (*Solution, error)
}

// Solve validates m, checks that s supports it and runs s.
func Solve(ctx context.Context, s Solver, m *Model) (*Solution, error) {
	if s == nil {
		return nil, errors.NewValueError("solver.Solve", "no solver configured")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.Supports(m); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewSolverError(s.Name(), errors.SolverLimit, err)
	}
	sol, err := s.Solve(ctx, m)
	if err != nil {
		return nil, err
	}
	if len(sol.X) != m.NumVars() {
		return nil, errors.NewSolverError(s.Name(), errors.SolverFailed,
			fmt.Errorf("solution has %d values for %d variables", len(sol.X), m.NumVars()))
	}
	return sol, nil
}

// Unsupported builds the error returned by Supports.
func Unsupported(backend string, missing Feature) error {
	return errors.NewSolverError(backend, errors.SolverUnsupported,
		fmt.Errorf("backend does not support %s models", missing))
}
