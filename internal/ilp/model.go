// Package ilp is a small integer linear program builder with pluggable
// backends. Variables are bounded integers, constraints are linear
// inequalities or equalities and the objective is always maximized.
package ilp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrInfeasible is returned by a Solver when no assignment satisfies the model
	ErrInfeasible   = eris.New("model is infeasible")
	ErrInvalidModel = eris.New("invalid model")
)

// Solver finds an assignment maximizing the model objective
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}

// IntVar is a handle to a model variable
type IntVar struct {
	index int
}

func (v IntVar) Index() int { return v.index }

// VarDef describes a variable's domain
type VarDef struct {
	Name string
	Lo   int
	Hi   int
}

// Relation is the comparison in a constraint
type Relation int

const (
	LessOrEqual Relation = iota
	GreaterOrEqual
	Equal
)

func (r Relation) String() string {
	switch r {
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	case Equal:
		return "=="
	}
	return fmt.Sprintf("Relation(%d)", int(r))
}

// Constraint is Expr Rel RHS, with the expression constant already moved to RHS
type Constraint struct {
	Terms []Term
	Rel   Relation
	RHS   int
}

// Holds reports whether values satisfy c
func (c Constraint) Holds(values []int) bool {
	lhs := 0
	for _, t := range c.Terms {
		lhs += t.Coeff * values[t.Var.index]
	}
	switch c.Rel {
	case LessOrEqual:
		return lhs <= c.RHS
	case GreaterOrEqual:
		return lhs >= c.RHS
	default:
		return lhs == c.RHS
	}
}

// Model collects variables, constraints and a maximization objective
type Model struct {
	vars        []VarDef
	constraints []Constraint
	objective   *LinearExpr
}

func NewModel() *Model {
	return &Model{}
}

// NewIntVar adds a variable with domain [lo, hi]
func (m *Model) NewIntVar(lo, hi int, name string) IntVar {
	m.vars = append(m.vars, VarDef{Name: name, Lo: lo, Hi: hi})
	return IntVar{index: len(m.vars) - 1}
}

// NewConstant adds a variable fixed to v
func (m *Model) NewConstant(v int, name string) IntVar {
	return m.NewIntVar(v, v, name)
}

func (m *Model) add(e *LinearExpr, rel Relation, rhs int) {
	m.constraints = append(m.constraints, Constraint{Terms: e.Terms(), Rel: rel, RHS: rhs - e.constant})
}

func (m *Model) AddLessOrEqual(e *LinearExpr, rhs int)    { m.add(e, LessOrEqual, rhs) }
func (m *Model) AddGreaterOrEqual(e *LinearExpr, rhs int) { m.add(e, GreaterOrEqual, rhs) }
func (m *Model) AddEquality(e *LinearExpr, rhs int)       { m.add(e, Equal, rhs) }

// Maximize sets the objective
func (m *Model) Maximize(e *LinearExpr) {
	m.objective = e.Clone()
}

func (m *Model) Vars() []VarDef {
	return append([]VarDef(nil), m.vars...)
}

func (m *Model) NumVars() int { return len(m.vars) }

func (m *Model) Constraints() []Constraint {
	return append([]Constraint(nil), m.constraints...)
}

// Objective returns the objective, or an empty expression when none is set
func (m *Model) Objective() *LinearExpr {
	if m.objective == nil {
		return NewLinearExpr()
	}
	return m.objective.Clone()
}

// Validate checks variable domains and that every term refers to a model variable
func (m *Model) Validate() error {
	for i, v := range m.vars {
		if v.Lo > v.Hi {
			return eris.Wrapf(ErrInfeasible, "variable %s has empty domain [%d, %d]", m.varName(i), v.Lo, v.Hi)
		}
	}
	check := func(terms []Term) error {
		for _, t := range terms {
			if t.Var.index < 0 || t.Var.index >= len(m.vars) {
				return eris.Wrapf(ErrInvalidModel, "term refers to unknown variable %d", t.Var.index)
			}
		}
		return nil
	}
	for _, c := range m.constraints {
		if err := check(c.Terms); err != nil {
			return err
		}
	}
	if m.objective != nil {
		return check(m.objective.Terms())
	}
	return nil
}

// Feasible reports whether values lie in every domain and satisfy every constraint
func (m *Model) Feasible(values []int) bool {
	if len(values) != len(m.vars) {
		return false
	}
	for i, v := range m.vars {
		if values[i] < v.Lo || values[i] > v.Hi {
			return false
		}
	}
	for _, c := range m.constraints {
		if !c.Holds(values) {
			return false
		}
	}
	return true
}

// Evaluate returns the objective value for values
func (m *Model) Evaluate(values []int) int {
	return m.Objective().Eval(values)
}

func (m *Model) varName(i int) string {
	if m.vars[i].Name != "" {
		return m.vars[i].Name
	}
	return fmt.Sprintf("x%d", i)
}

// String renders the model in an LP-like text form
func (m *Model) String() string {
	var b strings.Builder
	render := func(terms []Term) string {
		parts := make([]string, 0, len(terms))
		for _, t := range terms {
			parts = append(parts, fmt.Sprintf("%+d %s", t.Coeff, m.varName(t.Var.index)))
		}
		if len(parts) == 0 {
			return "0"
		}
		return strings.Join(parts, " ")
	}
	obj := m.Objective()
	fmt.Fprintf(&b, "maximize %s %+d\n", render(obj.Terms()), obj.constant)
	for _, c := range m.constraints {
		fmt.Fprintf(&b, "  %s %s %d\n", render(c.Terms), c.Rel, c.RHS)
	}
	for i, v := range m.vars {
		fmt.Fprintf(&b, "  %d <= %s <= %d\n", v.Lo, m.varName(i), v.Hi)
	}
	return b.String()
}

// Solution is a variable assignment with its objective value
type Solution struct {
	values    []int
	Objective int
}

// NewSolution evaluates the objective of m at values
func NewSolution(m *Model, values []int) *Solution {
	return &Solution{values: append([]int(nil), values...), Objective: m.Evaluate(values)}
}

func (s *Solution) Value(v IntVar) int {
	return s.values[v.index]
}

func (s *Solution) Values() []int {
	return append([]int(nil), s.values...)
}

// Term is a coefficient on a variable
type Term struct {
	Var   IntVar
	Coeff int
}

// LinearExpr is a sum of terms plus a constant
type LinearExpr struct {
	coeffs   map[int]int
	constant int
}

func NewLinearExpr() *LinearExpr {
	return &LinearExpr{coeffs: make(map[int]int)}
}

// AddTerm adds coeff*v
func (e *LinearExpr) AddTerm(v IntVar, coeff int) *LinearExpr {
	if coeff == 0 {
		return e
	}
	e.coeffs[v.index] += coeff
	if e.coeffs[v.index] == 0 {
		delete(e.coeffs, v.index)
	}
	return e
}

// Add adds v
func (e *LinearExpr) Add(v IntVar) *LinearExpr {
	return e.AddTerm(v, 1)
}

func (e *LinearExpr) AddConstant(c int) *LinearExpr {
	e.constant += c
	return e
}

// AddExpr adds every term and the constant of other
func (e *LinearExpr) AddExpr(other *LinearExpr) *LinearExpr {
	for i, c := range other.coeffs {
		e.AddTerm(IntVar{index: i}, c)
	}
	e.constant += other.constant
	return e
}

func (e *LinearExpr) Clone() *LinearExpr {
	return NewLinearExpr().AddExpr(e)
}

// Terms returns the non-zero terms ordered by variable
func (e *LinearExpr) Terms() []Term {
	out := make([]Term, 0, len(e.coeffs))
	for i, c := range e.coeffs {
		out = append(out, Term{Var: IntVar{index: i}, Coeff: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Var.index < out[j].Var.index })
	return out
}

func (e *LinearExpr) Constant() int { return e.constant }

// Eval returns the expression value for values indexed by variable
func (e *LinearExpr) Eval(values []int) int {
	total := e.constant
	for i, c := range e.coeffs {
		total += c * values[i]
	}
	return total
}
