// Package ilptest provides a reference ilp.Solver for tests: a depth-first
// branch and bound over every variable domain. It is exact and
// deterministic but only suitable for small models.
package ilptest

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/napolitain/lob-optimizer/internal/ilp"
)

// Exhaustive explores assignments in variable order, low values first, and
// keeps the first assignment reaching the best objective.
type Exhaustive struct {
	// Calls counts Solve invocations
	Calls int
	// FailAfter makes Solve return Err once Calls exceeds it; zero disables
	FailAfter int
	Err       error
}

var _ ilp.Solver = (*Exhaustive)(nil)

func (s *Exhaustive) Solve(ctx context.Context, m *ilp.Model) (*ilp.Solution, error) {
	s.Calls++
	if s.FailAfter > 0 && s.Calls > s.FailAfter {
		return nil, s.Err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	vars := m.Vars()
	cons := m.Constraints()
	obj := m.Objective()
	objTerms := obj.Terms()

	values := make([]int, len(vars))
	var best []int
	bestObj := 0
	nodes := 0

	// bounds returns the reachable [min, max] of terms with vars from `from` onward free
	bounds := func(terms []ilp.Term, from int) (int, int) {
		lo, hi := 0, 0
		for _, t := range terms {
			i := t.Var.Index()
			if i < from {
				lo += t.Coeff * values[i]
				hi += t.Coeff * values[i]
				continue
			}
			a, b := t.Coeff*vars[i].Lo, t.Coeff*vars[i].Hi
			if a > b {
				a, b = b, a
			}
			lo += a
			hi += b
		}
		return lo, hi
	}

	var search func(i int) error
	search = func(i int) error {
		nodes++
		if nodes%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "exhaustive search interrupted")
			}
		}
		for _, c := range cons {
			lo, hi := bounds(c.Terms, i)
			switch c.Rel {
			case ilp.LessOrEqual:
				if lo > c.RHS {
					return nil
				}
			case ilp.GreaterOrEqual:
				if hi < c.RHS {
					return nil
				}
			case ilp.Equal:
				if lo > c.RHS || hi < c.RHS {
					return nil
				}
			}
		}
		if best != nil {
			_, hi := bounds(objTerms, i)
			if hi+obj.Constant() <= bestObj {
				return nil
			}
		}
		if i == len(vars) {
			best = append(best[:0], values...)
			bestObj = m.Evaluate(values)
			return nil
		}
		for v := vars[i].Lo; v <= vars[i].Hi; v++ {
			values[i] = v
			if err := search(i + 1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := search(0); err != nil {
		return nil, err
	}
	if best == nil {
		return nil, ilp.ErrInfeasible
	}
	return ilp.NewSolution(m, best), nil
}
