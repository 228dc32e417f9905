package trimmed

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
	"github.com/YuminosukeSato/trimlasso/pkg/log"
)

const recoveryThreshold = 0.05

func TestHeuristicsRecoverSparseSupport(t *testing.T) {
	X, y, truth := sparseData(t, 100, 20, 10, 1)
	prob := mustProblem(t, X, y, 10, 0.01, 0.01)

	am, err := NewAlternatingMinimizer(WithSeed(3)).Solve(prob)
	if err != nil {
		t.Fatalf("AlternatingMinimizer: %v", err)
	}
	ad, err := NewADMM(WithSeed(3)).Solve(prob)
	if err != nil {
		t.Fatalf("ADMM: %v", err)
	}

	for name, res := range map[string]*Result{"altmin": am, "admm": ad} {
		if n := res.NonZero(recoveryThreshold); n > 10 {
			t.Errorf("%s: %d coefficients above %v, want at most 10", name, n, recoveryThreshold)
		}
		for j := 0; j < truth.Len(); j++ {
			if truth.AtVec(j) != 0 && math.Abs(res.Coef.AtVec(j)-truth.AtVec(j)) > 0.1 {
				t.Errorf("%s: coef[%d] = %v, true value %v", name, j, res.Coef.AtVec(j), truth.AtVec(j))
			}
		}
		if math.Abs(res.Objective-prob.Objective(res.Coef)) > 1e-12 {
			t.Errorf("%s: reported objective does not match the coefficients", name)
		}
	}

	rel := math.Abs(am.Objective-ad.Objective) / math.Max(am.Objective, ad.Objective)
	if rel > 0.2 {
		t.Errorf("objectives differ by %.1f%%: altmin %v, admm %v", 100*rel, am.Objective, ad.Objective)
	}
}

func TestADMMConvergesOnSparseProblem(t *testing.T) {
	X, y, _ := sparseData(t, 100, 20, 10, 1)
	prob := mustProblem(t, X, y, 10, 0.01, 0.01)

	res, err := NewADMM(WithSeed(3)).Solve(prob)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged {
		t.Errorf("ADMM stopped after %d iterations without converging", res.Iterations)
	}
	if res.PrimalResidual >= 1e-3 {
		t.Errorf("PrimalResidual = %v, want below 1e-3", res.PrimalResidual)
	}
}

func TestAlternatingMinimizerReproducible(t *testing.T) {
	X, y, _ := sparseData(t, 40, 8, 3, 5)
	prob := mustProblem(t, X, y, 3, 0.05, 0.1)

	a, err := NewAlternatingMinimizer(WithSeed(11)).Solve(prob)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewAlternatingMinimizer(WithSeed(11)).Solve(prob)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(a.Coef, b.Coef) || a.Iterations != b.Iterations {
		t.Error("identical seeds produced different solutions")
	}
}

func TestADMMReturnsGamma(t *testing.T) {
	X, y, _ := sparseData(t, 30, 6, 2, 9)
	prob := mustProblem(t, X, y, 2, 0.01, 0.05)

	res, err := NewADMM().Solve(prob)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(res.Coef, res.Gamma) {
		t.Error("ADMM must return gamma as the coefficient vector")
	}
	diff := mat.NewVecDense(6, nil)
	diff.SubVec(res.Beta, res.Gamma)
	if math.Abs(mat.Norm(diff, 2)-res.PrimalResidual) > 1e-12 {
		t.Errorf("PrimalResidual %v does not match ‖beta−gamma‖ %v", res.PrimalResidual, mat.Norm(diff, 2))
	}
}

func TestUpdateGammaTrimsCheapest(t *testing.T) {
	// sigma = lambda = 1, q = 0: trim costs are 2.5, 0.02 and 1.5
	beta := mat.NewVecDense(3, []float64{3, 0.2, -2})
	q := mat.NewVecDense(3, nil)
	for seed := int64(0); seed < 5; seed++ {
		got := updateGamma(beta, q, 1, 1, 1, NewRandTieBreaker(seed))
		want := mat.NewVecDense(3, []float64{3, 0, -1})
		if !mat.EqualApprox(got, want, 1e-12) {
			t.Errorf("seed %d: got %v, want %v", seed, mat.Formatted(got.T()), mat.Formatted(want.T()))
		}
	}
}

func TestConvergenceWarning(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	X, y, _ := sparseData(t, 30, 6, 2, 2)
	prob := mustProblem(t, X, y, 2, 0.01, 0.01)

	solvers := map[string]interface {
		Solve(*Problem) (*Result, error)
	}{
		"altmin": NewAlternatingMinimizer(WithMaxIter(1), WithRelTol(1e-300)),
		"admm":   NewADMM(WithMaxIter(1), WithRelTol(1e-300)),
	}
	for name, s := range solvers {
		warnings = warnings[:0]
		res, err := s.Solve(prob)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if res.Converged || res.Iterations != 1 {
			t.Errorf("%s: converged=%v iterations=%d, want false/1", name, res.Converged, res.Iterations)
		}
		var cw *errors.ConvergenceWarning
		if len(warnings) != 1 || !errors.As(warnings[0], &cw) {
			t.Errorf("%s: expected one ConvergenceWarning, got %v", name, warnings)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	X, y, _ := sparseData(t, 10, 3, 1, 4)
	prob := mustProblem(t, X, y, 1, 0, 0)

	if _, err := NewAlternatingMinimizer(WithMaxIter(0)).Solve(prob); err == nil {
		t.Error("expected error for zero MaxIter")
	}
	if _, err := NewADMM(WithSigma(0)).Solve(prob); err == nil {
		t.Error("expected error for zero sigma")
	}
	if _, err := NewADMM(WithRelTol(math.NaN())).Solve(prob); err == nil {
		t.Error("expected error for NaN tolerance")
	}
}

func TestSolveLogging(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	X, y, _ := sparseData(t, 30, 6, 2, 8)
	prob := mustProblem(t, X, y, 2, 0.01, 0.01)

	if _, err := NewADMM(WithLogger(logger), WithMaxIter(5)).Solve(prob); err != nil {
		t.Fatal(err)
	}
	if !logger.ContainsMessage("solve finished") {
		t.Error("missing summary record")
	}
	if !logger.ContainsField(log.SolverMethodKey, log.MethodADMM) {
		t.Error("missing method field")
	}
	if logger.CountMessage("iteration") == 0 {
		t.Error("debug level should emit per-iteration records")
	}
}

type countingLasso struct {
	inner LassoSolver
	calls int
}

func (c *countingLasso) Solve(A mat.Symmetric, cv mat.Vector, w float64, init mat.Vector) (*mat.VecDense, error) {
	c.calls++
	return c.inner.Solve(A, cv, w, init)
}

func TestCustomLassoSolver(t *testing.T) {
	X, y, _ := sparseData(t, 30, 6, 2, 6)
	prob := mustProblem(t, X, y, 2, 0.01, 0.01)

	cl := &countingLasso{inner: NewProximalLasso()}
	res, err := NewAlternatingMinimizer(WithLassoSolver(cl), WithTieBreaker(NewRandTieBreaker(1))).Solve(prob)
	if err != nil {
		t.Fatal(err)
	}
	if cl.calls != res.Iterations {
		t.Errorf("subsolver called %d times for %d iterations", cl.calls, res.Iterations)
	}
}

func BenchmarkAlternatingMinimizer(b *testing.B) {
	X, y, _ := sparseData(b, 100, 20, 10, 1)
	prob := mustProblem(b, X, y, 10, 0.01, 0.01)
	errors.SetWarningHandler(func(error) {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewAlternatingMinimizer(WithSeed(int64(i))).Solve(prob); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkADMM(b *testing.B) {
	X, y, _ := sparseData(b, 100, 20, 10, 1)
	prob := mustProblem(b, X, y, 10, 0.01, 0.01)
	errors.SetWarningHandler(func(error) {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewADMM().Solve(prob); err != nil {
			b.Fatal(err)
		}
	}
}
