package exact

import (
	"context"
	"fmt"
	"math"

	"github.com/YuminosukeSato/trimlasso/pkg/log"
	"github.com/YuminosukeSato/trimlasso/solver"
	"github.com/YuminosukeSato/trimlasso/trimmed"
)

// SOS1 solves the SOS1 formulation
//
//	min  0.5‖y − Xβ‖² + mu·Σγ + lambda·Σa
//	s.t. γ ≥ |β|,  a ≥ γ − π,  a, π ≥ 0,
//	     SOS1(z_i, π_i),  z binary,  Σz = p − k.
//
// z_i = 1 pins π_i to zero so a_i pays for |β_i|; the other k coordinates
// absorb their magnitude into π. The backend must support SOS1 sets.
func SOS1(ctx context.Context, prob *trimmed.Problem, s solver.Solver, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	b := newBuilder("trimmed-lasso-sos1", prob, math.Inf(1))
	z := b.addCardinality()
	for i := 0; i < prob.P; i++ {
		a := b.m.AddContinuous(fmt.Sprintf("a[%d]", i), 0, math.Inf(1))
		pi := b.m.AddContinuous(fmt.Sprintf("pi[%d]", i), 0, math.Inf(1))
		b.m.AddLinear(a, prob.Lambda)
		b.m.AddConstraint(fmt.Sprintf("trim[%d]", i), 0, math.Inf(1),
			solver.Term{Var: a, Coef: 1},
			solver.Term{Var: b.gamma[i], Coef: -1},
			solver.Term{Var: pi, Coef: 1},
		)
		b.m.AddSOS1(fmt.Sprintf("sos[%d]", i), z[i], pi)
	}
	return b.solve(ctx, s, log.MethodSOS1, cfg)
}
