package trimmed

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func identity(p int) *mat.SymDense {
	A := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		A.SetSym(i, i, 1)
	}
	return A
}

func TestProximalLassoZeroProblem(t *testing.T) {
	init := mat.NewVecDense(3, []float64{1, -2, 3})
	got, err := NewProximalLasso().Solve(mat.NewSymDense(3, nil), mat.NewVecDense(3, nil), 0, init)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(got, init) {
		t.Errorf("zero problem moved the iterate: got %v", mat.Formatted(got.T()))
	}
}

func TestProximalLassoIdentity(t *testing.T) {
	tests := []struct {
		name string
		c    []float64
		w    float64
		want []float64
	}{
		{"unpenalized", []float64{0, 0, 0}, 0, []float64{0, 0, 0}},
		{"shift", []float64{-1, 2, 0.5}, 0, []float64{1, -2, -0.5}},
		{"soft threshold", []float64{-1, 2, 0.5}, 0.75, []float64{0.25, -1.25, 0}},
		{"all thresholded", []float64{0, 0, 0}, 1, []float64{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			init := mat.NewVecDense(3, []float64{5, -5, 5})
			got, err := NewProximalLasso().Solve(identity(3), mat.NewVecDense(3, tt.c), tt.w, init)
			if err != nil {
				t.Fatal(err)
			}
			want := mat.NewVecDense(3, tt.want)
			if !mat.EqualApprox(got, want, 1e-12) {
				t.Errorf("got %v, want %v", mat.Formatted(got.T()), mat.Formatted(want.T()))
			}
		})
	}
}

func TestProximalLassoOptimality(t *testing.T) {
	// A = [[2 1] [1 2]], c = (−3, −1), w = 0.5: the minimizer is (1.25, 0).
	A := mat.NewSymDense(2, []float64{2, 1, 1, 2})
	c := mat.NewVecDense(2, []float64{-3, -1})
	pl := &ProximalLasso{MaxIter: 100000, Tol: 1e-12}
	got, err := pl.Solve(A, c, 0.5, mat.NewVecDense(2, nil))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.AtVec(0)-1.25) > 1e-8 || got.AtVec(1) != 0 {
		t.Errorf("got %v, want (1.25, 0)", mat.Formatted(got.T()))
	}
	if pl.LastIterations() == 0 || pl.LastIterations() == pl.MaxIter {
		t.Errorf("unexpected iteration count %d", pl.LastIterations())
	}
}

func TestProximalLassoStepCache(t *testing.T) {
	// one ISTA step from 0 with w = 0 lands on −step·c
	c := mat.NewVecDense(3, []float64{-2, -2, -2})
	twoI := identity(3)
	twoI.ScaleSym(2, twoI)
	tests := []struct {
		name     string
		A        mat.Symmetric
		want     float64
		stepFor  *mat.SymDense
		wantStep float64
	}{
		{"first matrix", twoI, 1, twoI, 0.5},
		{"same matrix", twoI, 1, twoI, 0.5},
		{"new matrix", identity(3), 2, nil, 1},
		{"not a SymDense", mat.NewDiagDense(3, []float64{4, 4, 4}), 0.5, nil, 1},
	}
	pl := &ProximalLasso{MaxIter: 1, Tol: 1e-12}
	for _, tt := range tests {
		got, err := pl.Solve(tt.A, c, 0, mat.NewVecDense(3, nil))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		for i := 0; i < 3; i++ {
			if math.Abs(got.AtVec(i)-tt.want) > 1e-12 {
				t.Errorf("%s: got %v, want %g", tt.name, mat.Formatted(got.T()), tt.want)
				break
			}
		}
		if tt.stepFor != nil && pl.stepFor != tt.stepFor {
			t.Errorf("%s: step cached for the wrong matrix", tt.name)
		}
		if math.Abs(pl.step-tt.wantStep) > 1e-12 {
			t.Errorf("%s: cached step %g, want %g", tt.name, pl.step, tt.wantStep)
		}
	}
}

func TestProximalLassoDimensionErrors(t *testing.T) {
	pl := NewProximalLasso()
	if _, err := pl.Solve(identity(2), mat.NewVecDense(3, nil), 0, mat.NewVecDense(2, nil)); err == nil {
		t.Error("expected dimension error for c")
	}
	if _, err := pl.Solve(identity(2), mat.NewVecDense(2, nil), 0, mat.NewVecDense(3, nil)); err == nil {
		t.Error("expected dimension error for init")
	}
	if _, err := pl.Solve(identity(2), mat.NewVecDense(2, nil), -1, mat.NewVecDense(2, nil)); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestSpectralNorm(t *testing.T) {
	A := mat.NewSymDense(3, []float64{
		2, 0, 0,
		0, -5, 0,
		0, 0, 1,
	})
	if got := SpectralNorm(A); math.Abs(got-5) > 1e-12 {
		t.Errorf("SpectralNorm() = %v, want 5", got)
	}
	if got := SpectralNorm(mat.NewSymDense(2, nil)); got != 0 {
		t.Errorf("SpectralNorm(0) = %v, want 0", got)
	}
}

func TestSoftThreshold(t *testing.T) {
	tests := []struct{ v, tau, want float64 }{
		{3, 1, 2},
		{-3, 1, -2},
		{0.5, 1, 0},
		{-1, 1, 0},
		{2, 0, 2},
	}
	for _, tt := range tests {
		if got := SoftThreshold(tt.v, tt.tau); got != tt.want {
			t.Errorf("SoftThreshold(%v, %v) = %v, want %v", tt.v, tt.tau, got, tt.want)
		}
	}
}
