package datasets

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMakeSparseRegression(t *testing.T) {
	ds, err := MakeSparseRegression(50, 12, 4, 0, 7)
	if err != nil {
		t.Fatal(err)
	}

	r, c := ds.X.Dims()
	if r != 50 || c != 12 || ds.Y.Len() != 50 {
		t.Fatalf("unexpected shapes: X %dx%d, y %d", r, c, ds.Y.Len())
	}
	if len(ds.Support) != 4 {
		t.Fatalf("support size %d, want 4", len(ds.Support))
	}

	inSupport := map[int]bool{}
	for _, j := range ds.Support {
		inSupport[j] = true
	}
	for j := 0; j < 12; j++ {
		v := math.Abs(ds.Coef.AtVec(j))
		if inSupport[j] && (v < CoefMin || v > CoefMax) {
			t.Errorf("coef[%d] = %v outside [%v, %v]", j, ds.Coef.AtVec(j), CoefMin, CoefMax)
		}
		if !inSupport[j] && v != 0 {
			t.Errorf("coef[%d] = %v off the support", j, ds.Coef.AtVec(j))
		}
	}

	// noiseless: y = X·coef exactly
	want := mat.NewVecDense(50, nil)
	want.MulVec(ds.X, ds.Coef)
	if !mat.Equal(want, ds.Y) {
		t.Error("noiseless response does not equal X·coef")
	}
}

func TestMakeSparseRegressionSeeded(t *testing.T) {
	a, _ := MakeSparseRegression(20, 5, 2, 0.1, 3)
	b, _ := MakeSparseRegression(20, 5, 2, 0.1, 3)
	c, _ := MakeSparseRegression(20, 5, 2, 0.1, 4)

	if !mat.Equal(a.X, b.X) || !mat.Equal(a.Y, b.Y) {
		t.Error("same seed gave different data")
	}
	if mat.Equal(a.X, c.X) {
		t.Error("different seeds gave identical designs")
	}
	if got := a.ColumnMatrix().At(3, 0); got != a.Y.AtVec(3) {
		t.Errorf("ColumnMatrix()[3] = %v, want %v", got, a.Y.AtVec(3))
	}
}

func TestMakeSparseRegressionValidation(t *testing.T) {
	tests := []struct {
		name    string
		n, p, k int
		noise   float64
	}{
		{"zero samples", 0, 3, 1, 0},
		{"zero features", 3, 0, 0, 0},
		{"k above p", 3, 2, 3, 0},
		{"negative noise", 3, 2, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MakeSparseRegression(tt.n, tt.p, tt.k, tt.noise, 1); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
