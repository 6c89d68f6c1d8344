package ilp_test

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napolitain/lob-optimizer/internal/ilp"
	"github.com/napolitain/lob-optimizer/internal/ilp/ilptest"
)

func TestLinearExprCoalescesTerms(t *testing.T) {
	m := ilp.NewModel()
	x := m.NewIntVar(0, 10, "x")
	y := m.NewIntVar(0, 10, "y")

	e := ilp.NewLinearExpr().AddTerm(y, 3).AddTerm(x, 2).AddTerm(y, -3).Add(x).AddConstant(5)
	assert.Equal(t, []ilp.Term{{Var: x, Coeff: 3}}, e.Terms())
	assert.Equal(t, 5, e.Constant())
	assert.Equal(t, 3*4+5, e.Eval([]int{4, 9}))

	clone := e.Clone().AddTerm(y, 1)
	assert.Len(t, e.Terms(), 1)
	assert.Len(t, clone.Terms(), 2)
}

func TestConstantMovesToRightHandSide(t *testing.T) {
	m := ilp.NewModel()
	x := m.NewIntVar(0, 10, "x")
	m.AddLessOrEqual(ilp.NewLinearExpr().Add(x).AddConstant(3), 7)

	cons := m.Constraints()
	require.Len(t, cons, 1)
	assert.Equal(t, 4, cons[0].RHS)
	assert.True(t, m.Feasible([]int{4}))
	assert.False(t, m.Feasible([]int{5}))
	assert.False(t, m.Feasible([]int{11}), "outside domain")
	assert.False(t, m.Feasible([]int{1, 2}), "wrong arity")
}

func TestValidate(t *testing.T) {
	m := ilp.NewModel()
	m.NewIntVar(3, 2, "empty")
	assert.True(t, eris.Is(m.Validate(), ilp.ErrInfeasible))

	other := ilp.NewModel()
	other.NewIntVar(0, 1, "a")
	foreign := other.NewIntVar(0, 1, "b")

	m = ilp.NewModel()
	m.AddGreaterOrEqual(ilp.NewLinearExpr().Add(foreign), 0)
	assert.True(t, eris.Is(m.Validate(), ilp.ErrInvalidModel))
}

func TestString(t *testing.T) {
	m := ilp.NewModel()
	x := m.NewIntVar(0, 5, "x")
	y := m.NewIntVar(1, 2, "")
	m.AddEquality(ilp.NewLinearExpr().Add(x).AddTerm(y, -2), 0)
	m.Maximize(ilp.NewLinearExpr().AddTerm(x, 3))

	s := m.String()
	assert.Contains(t, s, "maximize +3 x +0")
	assert.Contains(t, s, "+1 x -2 x1 == 0")
	assert.Contains(t, s, "1 <= x1 <= 2")
}

func TestExhaustiveSolvesKnapsack(t *testing.T) {
	m := ilp.NewModel()
	a := m.NewIntVar(0, 10, "a")
	b := m.NewIntVar(0, 10, "b")
	m.AddLessOrEqual(ilp.NewLinearExpr().AddTerm(a, 5).AddTerm(b, 4), 23)
	m.AddGreaterOrEqual(ilp.NewLinearExpr().Add(b), 1)
	m.Maximize(ilp.NewLinearExpr().AddTerm(a, 7).AddTerm(b, 5))

	s := &ilptest.Exhaustive{}
	sol, err := s.Solve(context.Background(), m)
	require.NoError(t, err)
	// a=3,b=2 uses 23 and scores 31; a=1,b=4 scores 27
	assert.Equal(t, 31, sol.Objective)
	assert.Equal(t, 3, sol.Value(a))
	assert.Equal(t, 2, sol.Value(b))
	assert.Equal(t, 1, s.Calls)

	m.AddGreaterOrEqual(ilp.NewLinearExpr().Add(a), 5)
	_, err = s.Solve(context.Background(), m)
	assert.True(t, eris.Is(err, ilp.ErrInfeasible))
}

func TestExhaustiveFailAfter(t *testing.T) {
	boom := eris.New("backend exploded")
	s := &ilptest.Exhaustive{FailAfter: 1, Err: boom}
	m := ilp.NewModel()
	m.NewIntVar(0, 1, "x")

	_, err := s.Solve(context.Background(), m)
	require.NoError(t, err)
	_, err = s.Solve(context.Background(), m)
	assert.Equal(t, boom, err)
}
