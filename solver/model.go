// Package solver describes mixed-integer quadratic programs independently of
// the backend that solves them.
//
// A Model minimizes
//
//	0.5·x'Qx + c'x + offset
//
// subject to row constraints lower ≤ a'x ≤ upper, variable bounds, binary
// variables and SOS1 sets. Backends implement Solver; a backend that cannot
// handle a feature the model uses reports it through Supports and the model is
// never silently relaxed.
package solver

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

// VarType distinguishes continuous from binary variables.
type VarType int

const (
	Continuous VarType = iota
	Binary
)

func (t VarType) String() string {
	switch t {
	case Continuous:
		return "continuous"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("VarType(%d)", int(t))
	}
}

// Variable is a decision variable with box bounds. Infinite bounds are
// expressed with math.Inf.
type Variable struct {
	Name  string
	Lower float64
	Upper float64
	Type  VarType
}

// Term is a coefficient on a variable index.
type Term struct {
	Var  int
	Coef float64
}

// QuadTerm is an entry of the symmetric matrix Q with I ≤ J. An off-diagonal
// entry stands for both Q_ij and Q_ji, so it contributes Coef·x_i·x_j to
// 0.5·x'Qx; a diagonal entry contributes 0.5·Coef·x_i².
type QuadTerm struct {
	I, J int
	Coef float64
}

// Constraint is lower ≤ Σ terms ≤ upper.
type Constraint struct {
	Name  string
	Terms []Term
	Lower float64
	Upper float64
}

// SOS1 requires at most one of Vars to be non-zero.
type SOS1 struct {
	Name string
	Vars []int
}

// Feature is a bit set of model features a backend may or may not support.
type Feature uint

const (
	FeatureQuadratic Feature = 1 << iota
	FeatureBinary
	FeatureSOS1
)

func (f Feature) String() string {
	if f == 0 {
		return "linear"
	}
	s := ""
	for _, named := range []struct {
		bit  Feature
		name string
	}{{FeatureQuadratic, "quadratic"}, {FeatureBinary, "binary"}, {FeatureSOS1, "sos1"}} {
		if f&named.bit != 0 {
			if s != "" {
				s += "+"
			}
			s += named.name
		}
	}
	return s
}

// Model is a mixed-integer quadratic program under construction.
type Model struct {
	Name        string
	Vars        []Variable
	Linear      []float64
	Quad        []QuadTerm
	Offset      float64
	Constraints []Constraint
	SOS         []SOS1
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.Vars) }

// AddVar appends a variable and returns its index.
func (m *Model) AddVar(name string, lower, upper float64, typ VarType) int {
	m.Vars = append(m.Vars, Variable{Name: name, Lower: lower, Upper: upper, Type: typ})
	m.Linear = append(m.Linear, 0)
	return len(m.Vars) - 1
}

// AddContinuous appends a continuous variable.
func (m *Model) AddContinuous(name string, lower, upper float64) int {
	return m.AddVar(name, lower, upper, Continuous)
}

// AddBinary appends a {0, 1} variable.
func (m *Model) AddBinary(name string) int {
	return m.AddVar(name, 0, 1, Binary)
}

// AddLinear adds coef·x_v to the objective.
func (m *Model) AddLinear(v int, coef float64) {
	m.Linear[v] += coef
}

// AddQuad adds an entry of Q; see QuadTerm. Indices are swapped if i > j.
func (m *Model) AddQuad(i, j int, coef float64) {
	if i > j {
		i, j = j, i
	}
	m.Quad = append(m.Quad, QuadTerm{I: i, J: j, Coef: coef})
}

// AddConstraint appends lower ≤ Σ terms ≤ upper and returns its index.
func (m *Model) AddConstraint(name string, lower, upper float64, terms ...Term) int {
	m.Constraints = append(m.Constraints, Constraint{Name: name, Terms: terms, Lower: lower, Upper: upper})
	return len(m.Constraints) - 1
}

// AddSOS1 appends an SOS1 set over vars.
func (m *Model) AddSOS1(name string, vars ...int) {
	m.SOS = append(m.SOS, SOS1{Name: name, Vars: vars})
}

// Features reports which non-linear features the model uses.
func (m *Model) Features() Feature {
	var f Feature
	for _, q := range m.Quad {
		if q.Coef != 0 {
			f |= FeatureQuadratic
			break
		}
	}
	for _, v := range m.Vars {
		if v.Type == Binary {
			f |= FeatureBinary
			break
		}
	}
	if len(m.SOS) > 0 {
		f |= FeatureSOS1
	}
	return f
}

// Objective evaluates 0.5·x'Qx + c'x + offset. It returns NaN when x does
// not have one entry per variable.
func (m *Model) Objective(x []float64) float64 {
	if len(x) != m.NumVars() {
		return math.NaN()
	}
	obj := m.Offset
	for i, c := range m.Linear {
		obj += c * x[i]
	}
	for _, q := range m.Quad {
		if q.I == q.J {
			obj += 0.5 * q.Coef * x[q.I] * x[q.I]
		} else {
			obj += q.Coef * x[q.I] * x[q.J]
		}
	}
	return obj
}

// Activity returns Σ terms evaluated at x.
func (c *Constraint) Activity(x []float64) float64 {
	s := 0.0
	for _, t := range c.Terms {
		s += t.Coef * x[t.Var]
	}
	return s
}

// Validate checks indices, bounds and coefficients.
func (m *Model) Validate() error {
	n := len(m.Vars)
	if n == 0 {
		return errors.NewValueError("Model.Validate", "model has no variables")
	}
	if len(m.Linear) != n {
		return errors.NewDimensionError("Model.Validate", n, len(m.Linear), 0)
	}
	for i, v := range m.Vars {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || v.Lower > v.Upper {
			return errors.NewValueError("Model.Validate",
				fmt.Sprintf("variable %d (%s) has invalid bounds [%g, %g]", i, v.Name, v.Lower, v.Upper))
		}
		if v.Type == Binary && (v.Lower < 0 || v.Upper > 1) {
			return errors.NewValueError("Model.Validate",
				fmt.Sprintf("binary variable %d (%s) has bounds outside [0, 1]", i, v.Name))
		}
		if !errors.IsFinite(m.Linear[i]) {
			return errors.NewValueError("Model.Validate", fmt.Sprintf("objective coefficient %d is not finite", i))
		}
	}
	if !errors.IsFinite(m.Offset) {
		return errors.NewValueError("Model.Validate", "objective offset is not finite")
	}
	for _, q := range m.Quad {
		if q.I < 0 || q.J >= n || q.I > q.J || !errors.IsFinite(q.Coef) {
			return errors.NewValueError("Model.Validate", fmt.Sprintf("invalid quadratic term %+v", q))
		}
	}
	for r, c := range m.Constraints {
		if math.IsNaN(c.Lower) || math.IsNaN(c.Upper) || c.Lower > c.Upper {
			return errors.NewValueError("Model.Validate",
				fmt.Sprintf("constraint %d (%s) has invalid bounds [%g, %g]", r, c.Name, c.Lower, c.Upper))
		}
		for _, t := range c.Terms {
			if t.Var < 0 || t.Var >= n || !errors.IsFinite(t.Coef) {
				return errors.NewValueError("Model.Validate",
					fmt.Sprintf("constraint %d (%s) has invalid term %+v", r, c.Name, t))
			}
		}
	}
	for _, s := range m.SOS {
		if len(s.Vars) < 2 {
			return errors.NewValueError("Model.Validate", fmt.Sprintf("SOS1 set %s needs at least two members", s.Name))
		}
		for _, v := range s.Vars {
			if v < 0 || v >= n {
				return errors.NewValueError("Model.Validate", fmt.Sprintf("SOS1 set %s references variable %d", s.Name, v))
			}
		}
	}
	return nil
}
