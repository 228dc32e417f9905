package enum

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
	"github.com/YuminosukeSato/trimlasso/solver"
)

// qpProblem is minimize 0.5·x'Px + q'x subject to l ≤ Ax ≤ u.
type qpProblem struct {
	P *mat.SymDense
	q []float64
	A *mat.Dense
	l []float64
	u []float64
}

// buildQP turns a leaf into a qpProblem. Constraint rows come first, then
// one identity row per variable carrying [lo, hi].
func buildQP(m *solver.Model, lo, hi []float64) *qpProblem {
	n := m.NumVars()
	P := mat.NewSymDense(n, nil)
	for _, t := range m.Quad {
		P.SetSym(t.I, t.J, P.At(t.I, t.J)+t.Coef)
	}

	nc := len(m.Constraints)
	A := mat.NewDense(nc+n, n, nil)
	l := make([]float64, nc+n)
	u := make([]float64, nc+n)
	for r, c := range m.Constraints {
		for _, t := range c.Terms {
			A.Set(r, t.Var, A.At(r, t.Var)+t.Coef)
		}
		l[r], u[r] = c.Lower, c.Upper
	}
	for j := 0; j < n; j++ {
		A.Set(nc+j, j, 1)
		l[nc+j], u[nc+j] = lo[j], hi[j]
	}
	return &qpProblem{P: P, q: clone(m.Linear), A: A, l: l, u: u}
}

type qpSettings struct {
	MaxIter    int
	EpsAbs     float64
	EpsRel     float64
	EpsInf     float64
	Rho        float64
	Sigma      float64
	Alpha      float64
	CheckEvery int
	AdaptEvery int
}

func defaultQPSettings() qpSettings {
	return qpSettings{
		MaxIter:    50000,
		EpsAbs:     1e-7,
		EpsRel:     1e-7,
		EpsInf:     1e-6,
		Rho:        0.1,
		Sigma:      1e-6,
		Alpha:      1.6,
		CheckEvery: 10,
		AdaptEvery: 100,
	}
}

type qpStatus int

const (
	qpSolved qpStatus = iota
	qpInfeasible
	qpMaxIter
)

func (s qpStatus) String() string {
	switch s {
	case qpSolved:
		return "solved"
	case qpInfeasible:
		return "infeasible"
	default:
		return "max_iter"
	}
}

type qpResult struct {
	x      []float64
	status qpStatus
	iter   int
}

const (
	rhoMin      = 1e-6
	rhoMax      = 1e6
	rhoEqScale  = 1e3
	rhoAdaptTol = 5.0
)

// qpWorkspace carries the ADMM iterates of solveQP.
type qpWorkspace struct {
	prob *qpProblem
	set  qpSettings
	n, m int

	rho  []float64
	chol mat.Cholesky

	x, z, y *mat.VecDense
	yPrev   *mat.VecDense
	ax, px  *mat.VecDense
	aty     *mat.VecDense
}

// solveQP runs operator-splitting ADMM on prob:
//
//	x̃ = (P + σI + A'ρA)⁻¹ (σx − q + A'(ρz − y))
//	z̃ = Ax̃
//	x ← αx̃ + (1−α)x
//	z ← Π[l,u](αz̃ + (1−α)z + y/ρ)
//	y ← y + ρ(αz̃ + (1−α)z − z)
//
// Rows with l = u get a larger ρ. ρ is rescaled from the residual ratio
// every AdaptEvery iterations. Primal infeasibility is detected from the
// change in y between checks.
func solveQP(ctx context.Context, prob *qpProblem, set qpSettings) (*qpResult, error) {
	m, n := prob.A.Dims()
	ws := &qpWorkspace{
		prob:  prob,
		set:   set,
		n:     n,
		m:     m,
		rho:   make([]float64, m),
		x:     mat.NewVecDense(n, nil),
		z:     mat.NewVecDense(m, nil),
		y:     mat.NewVecDense(m, nil),
		yPrev: mat.NewVecDense(m, nil),
		ax:    mat.NewVecDense(m, nil),
		px:    mat.NewVecDense(n, nil),
		aty:   mat.NewVecDense(n, nil),
	}
	if !ws.setRho(set.Rho) {
		return nil, errSingularKKT
	}

	rhs := mat.NewVecDense(n, nil)
	xt := mat.NewVecDense(n, nil)
	zt := mat.NewVecDense(m, nil)
	rz := mat.NewVecDense(m, nil)
	base := set.Rho

	for it := 1; it <= set.MaxIter; it++ {
		// rhs = σx − q + A'(ρ∘z − y)
		for i := 0; i < m; i++ {
			rz.SetVec(i, ws.rho[i]*ws.z.AtVec(i)-ws.y.AtVec(i))
		}
		rhs.MulVec(prob.A.T(), rz)
		for j := 0; j < n; j++ {
			rhs.SetVec(j, rhs.AtVec(j)+set.Sigma*ws.x.AtVec(j)-prob.q[j])
		}
		if err := ws.chol.SolveVecTo(xt, rhs); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) {
				return nil, err
			}
		}
		zt.MulVec(prob.A, xt)

		for j := 0; j < n; j++ {
			ws.x.SetVec(j, set.Alpha*xt.AtVec(j)+(1-set.Alpha)*ws.x.AtVec(j))
		}
		for i := 0; i < m; i++ {
			zr := set.Alpha*zt.AtVec(i) + (1-set.Alpha)*ws.z.AtVec(i)
			zn := clamp(zr+ws.y.AtVec(i)/ws.rho[i], prob.l[i], prob.u[i])
			ws.y.SetVec(i, ws.y.AtVec(i)+ws.rho[i]*(zr-zn))
			ws.z.SetVec(i, zn)
		}

		if it%set.CheckEvery != 0 && it != set.MaxIter {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rPrim, ePrim, rDual, eDual := ws.residuals()
		if rPrim <= ePrim && rDual <= eDual {
			x := make([]float64, n)
			copy(x, ws.x.RawVector().Data)
			return &qpResult{x: x, status: qpSolved, iter: it}, nil
		}
		if ws.primalInfeasible() {
			return &qpResult{status: qpInfeasible, iter: it}, nil
		}
		ws.yPrev.CopyVec(ws.y)

		if it%set.AdaptEvery == 0 {
			if next := ws.adaptedRho(base, rPrim, ePrim, rDual, eDual); next != base {
				base = next
				if !ws.setRho(base) {
					return nil, errSingularKKT
				}
			}
		}
	}
	return &qpResult{status: qpMaxIter, iter: set.MaxIter}, nil
}

var errSingularKKT = errors.Wrap(errors.ErrSingularMatrix, "QP system factorization failed")

// setRho assigns per-row step sizes around base and refactors
// K = P + σI + A'·diag(ρ)·A.
func (ws *qpWorkspace) setRho(base float64) bool {
	p := ws.prob
	for i := range ws.rho {
		switch {
		case math.IsInf(p.l[i], -1) && math.IsInf(p.u[i], 1):
			ws.rho[i] = rhoMin
		case p.l[i] == p.u[i]:
			ws.rho[i] = rhoEqScale * base
		default:
			ws.rho[i] = base
		}
	}

	scaled := mat.NewDense(ws.m, ws.n, nil)
	scaled.Apply(func(i, j int, v float64) float64 {
		return math.Sqrt(ws.rho[i]) * v
	}, p.A)

	var K mat.SymDense
	K.SymOuterK(1, scaled.T())
	for i := 0; i < ws.n; i++ {
		K.SetSym(i, i, K.At(i, i)+p.P.At(i, i)+ws.set.Sigma)
		for j := i + 1; j < ws.n; j++ {
			K.SetSym(i, j, K.At(i, j)+p.P.At(i, j))
		}
	}
	return ws.chol.Factorize(&K)
}

// residuals returns the primal and dual residuals with their tolerances.
func (ws *qpWorkspace) residuals() (rPrim, ePrim, rDual, eDual float64) {
	p := ws.prob
	ws.ax.MulVec(p.A, ws.x)
	ws.px.MulVec(p.P, ws.x)
	ws.aty.MulVec(p.A.T(), ws.y)

	r := mat.NewVecDense(ws.m, nil)
	r.SubVec(ws.ax, ws.z)
	rPrim = mat.Norm(r, math.Inf(1))
	ePrim = ws.set.EpsAbs + ws.set.EpsRel*math.Max(mat.Norm(ws.ax, math.Inf(1)), mat.Norm(ws.z, math.Inf(1)))

	d := mat.NewVecDense(ws.n, nil)
	d.AddVec(ws.px, ws.aty)
	for j := 0; j < ws.n; j++ {
		d.SetVec(j, d.AtVec(j)+p.q[j])
	}
	rDual = mat.Norm(d, math.Inf(1))
	qNorm := floats.Norm(p.q, math.Inf(1))
	eDual = ws.set.EpsAbs + ws.set.EpsRel*math.Max(math.Max(mat.Norm(ws.px, math.Inf(1)), mat.Norm(ws.aty, math.Inf(1))), qNorm)
	return rPrim, ePrim, rDual, eDual
}

// primalInfeasible tests δy = y − yPrev as a certificate:
// A'δy ≈ 0 and u'max(δy, 0) + l'min(δy, 0) < 0.
func (ws *qpWorkspace) primalInfeasible() bool {
	p := ws.prob
	dy := mat.NewVecDense(ws.m, nil)
	dy.SubVec(ws.y, ws.yPrev)
	norm := mat.Norm(dy, math.Inf(1))
	if norm < ws.set.EpsInf {
		return false
	}
	eps := ws.set.EpsInf * norm

	atdy := mat.NewVecDense(ws.n, nil)
	atdy.MulVec(p.A.T(), dy)
	if mat.Norm(atdy, math.Inf(1)) > eps {
		return false
	}

	support := 0.0
	for i := 0; i < ws.m; i++ {
		v := dy.AtVec(i)
		switch {
		case v > eps:
			if math.IsInf(p.u[i], 1) {
				return false
			}
			support += p.u[i] * v
		case v < -eps:
			if math.IsInf(p.l[i], -1) {
				return false
			}
			support += p.l[i] * v
		}
	}
	return support < -eps
}

// adaptedRho rescales base by the square root of the normalized residual
// ratio. Small changes are ignored to avoid refactoring.
func (ws *qpWorkspace) adaptedRho(base, rPrim, ePrim, rDual, eDual float64) float64 {
	if rPrim == 0 || rDual == 0 {
		return base
	}
	// the tolerances carry the same normalization as the residuals
	primScale := math.Max(ePrim-ws.set.EpsAbs, 1e-12) / ws.set.EpsRel
	dualScale := math.Max(eDual-ws.set.EpsAbs, 1e-12) / ws.set.EpsRel
	ratio := (rPrim / primScale) / math.Max(rDual/dualScale, 1e-12)
	next := base * math.Sqrt(ratio)
	next = math.Min(math.Max(next, rhoMin), rhoMax)
	if next > rhoAdaptTol*base || next < base/rhoAdaptTol {
		return next
	}
	return base
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
