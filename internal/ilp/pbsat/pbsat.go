// Package pbsat solves ilp models with the gophersat pseudo-boolean solver.
//
// Each bounded integer x in [lo, hi] becomes lo + sum(2^j * b_j) over
// ceil(log2(hi-lo+1)) boolean bits, with an extra constraint keeping the
// bits at or below hi-lo. Linear constraints map onto weighted
// pseudo-boolean constraints and the maximized objective becomes a cost on
// the bits it would like set.
//
// gophersat is not safe for concurrent use, so searches from every Solver
// run one at a time behind a package-level lock. Solve itself may be called
// from many goroutines. When its context ends, Solve returns at once and the
// abandoned search keeps the lock until gophersat observes the stop signal,
// which it only checks between improving models.
package pbsat

import (
	"context"
	"math/bits"
	"sync"

	"github.com/crillab/gophersat/solver"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/napolitain/lob-optimizer/internal/ilp"
)

// solveMu serializes every gophersat search in the process. gophersat keeps
// clause learning scratch buffers in package variables, so two solvers
// running at once corrupt each other.
var solveMu sync.Mutex

var errStopped = eris.New("search stopped before completion")

// anchor is a variable forced true; every bit is tied to it so the parsed
// problem registers each bit even when no constraint mentions it.
const anchor = 1

type Solver struct {
	logger zerolog.Logger
}

var _ ilp.Solver = (*Solver)(nil)

type Option func(*Solver)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Solver) { s.logger = logger }
}

func New(opts ...Option) *Solver {
	s := &Solver{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type bit struct {
	v      int // gophersat variable, 1-based
	weight int
}

type encoding struct {
	bits    [][]bit
	constrs []solver.PBConstr
}

func (s *Solver) Solve(ctx context.Context, m *ilp.Model) (*ilp.Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "solve cancelled")
	}

	enc, err := encode(m)
	if err != nil {
		return nil, err
	}

	pb := solver.ParsePBConstrs(enc.constrs)
	costLits, costWeights := objectiveCost(m.Objective(), enc.bits)
	hasCost := len(costLits) > 0
	if hasCost {
		pb.SetCostFunc(costLits, costWeights)
	}
	s.logger.Debug().
		Int("vars", m.NumVars()).
		Int("pb_vars", pb.NbVars).
		Int("pb_constraints", len(enc.constrs)).
		Bool("objective", hasCost).
		Msg("solving pseudo-boolean encoding")

	type outcome struct {
		model []bool
		err   error
	}
	stop := make(chan struct{})
	finished := make(chan outcome, 1)
	go func() {
		solveMu.Lock()
		defer solveMu.Unlock()
		select {
		case <-stop:
			finished <- outcome{err: errStopped}
			return
		default:
		}
		model, err := s.run(pb, hasCost, stop)
		finished <- outcome{model: model, err: err}
	}()

	var out outcome
	select {
	case out = <-finished:
	case <-ctx.Done():
		// the search goroutine keeps the lock until gophersat notices stop
		close(stop)
		return nil, eris.Wrap(ctx.Err(), "solve cancelled")
	}
	if out.err != nil {
		return nil, out.err
	}

	values := decode(m, enc.bits, out.model)
	if !m.Feasible(values) {
		return nil, eris.Errorf("decoded assignment violates the model: %v", values)
	}
	sol := ilp.NewSolution(m, values)
	s.logger.Debug().Int("objective", sol.Objective).Msg("solved")
	return sol, nil
}

// run searches pb and returns the model of the best solution found. It must
// be called with solveMu held.
func (s *Solver) run(pb *solver.Problem, hasCost bool, stop chan struct{}) ([]bool, error) {
	sat := solver.New(pb)
	if !hasCost {
		if sat.Solve() != solver.Sat {
			return nil, ilp.ErrInfeasible
		}
		return sat.Model(), nil
	}

	// Optimal reports each improving model on results and closes it on return
	results := make(chan solver.Result)
	improvements := make(chan int)
	go func() {
		n := 0
		for range results {
			n++
		}
		improvements <- n
	}()
	res := sat.Optimal(results, stop)
	n := <-improvements
	select {
	case <-stop:
		return nil, errStopped
	default:
	}
	if res.Status != solver.Sat {
		return nil, ilp.ErrInfeasible
	}
	s.logger.Debug().Int("improvements", n).Int("cost", res.Weight).Msg("optimum reached")
	return sat.Model(), nil
}

func encode(m *ilp.Model) (*encoding, error) {
	vars := m.Vars()
	enc := &encoding{
		bits:    make([][]bit, len(vars)),
		constrs: []solver.PBConstr{{Lits: []int{anchor}, Weights: []int{1}, AtLeast: 1}},
	}

	next := anchor + 1
	for i, v := range vars {
		width := v.Hi - v.Lo
		n := bits.Len(uint(width))
		lits := make([]int, 0, n)
		weights := make([]int, 0, n)
		for j := 0; j < n; j++ {
			b := bit{v: next, weight: 1 << j}
			next++
			enc.bits[i] = append(enc.bits[i], b)
			enc.constrs = append(enc.constrs, solver.PBConstr{Lits: []int{b.v, anchor}, Weights: []int{1, 1}, AtLeast: 1})
			lits = append(lits, b.v)
			weights = append(weights, b.weight)
		}
		if n > 0 && (1<<n)-1 > width {
			if err := enc.add(lits, negate(weights), -width); err != nil {
				return nil, eris.Wrapf(err, "domain of %s", v.Name)
			}
		}
	}

	for _, c := range m.Constraints() {
		lits, weights, rhs := enc.expand(vars, c.Terms, c.RHS)
		var err error
		switch c.Rel {
		case ilp.GreaterOrEqual:
			err = enc.add(lits, weights, rhs)
		case ilp.LessOrEqual:
			err = enc.add(lits, negate(weights), -rhs)
		case ilp.Equal:
			if err = enc.add(lits, weights, rhs); err == nil {
				err = enc.add(lits, negate(weights), -rhs)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return enc, nil
}

// expand rewrites sum(c*x) against rhs as a sum over bits, moving each
// variable's lower bound into the right-hand side.
func (e *encoding) expand(vars []ilp.VarDef, terms []ilp.Term, rhs int) ([]int, []int, int) {
	var lits, weights []int
	for _, t := range terms {
		i := t.Var.Index()
		rhs -= t.Coeff * vars[i].Lo
		for _, b := range e.bits[i] {
			lits = append(lits, b.v)
			weights = append(weights, t.Coeff*b.weight)
		}
	}
	return lits, weights, rhs
}

// add appends sum(w*l) >= atLeast after flipping negative weights onto
// negated literals. Trivially true constraints are dropped.
func (e *encoding) add(lits, weights []int, atLeast int) error {
	nl := make([]int, 0, len(lits))
	nw := make([]int, 0, len(weights))
	total := 0
	for i, w := range weights {
		switch {
		case w > 0:
			nl = append(nl, lits[i])
			nw = append(nw, w)
		case w < 0:
			nl = append(nl, -lits[i])
			nw = append(nw, -w)
			atLeast -= w
		default:
			continue
		}
		total += nw[len(nw)-1]
	}
	if atLeast <= 0 {
		return nil
	}
	if atLeast > total {
		return ilp.ErrInfeasible
	}
	e.constrs = append(e.constrs, solver.PBConstr{Lits: nl, Weights: nw, AtLeast: atLeast})
	return nil
}

func negate(ws []int) []int {
	out := make([]int, len(ws))
	for i, w := range ws {
		out[i] = -w
	}
	return out
}

// objectiveCost turns maximize sum(c*x) into a cost to minimize: a positive
// coefficient charges for each bit left false, a negative one for each bit set.
func objectiveCost(obj *ilp.LinearExpr, varBits [][]bit) ([]solver.Lit, []int) {
	var lits []solver.Lit
	var weights []int
	for _, t := range obj.Terms() {
		for _, b := range varBits[t.Var.Index()] {
			w := t.Coeff * b.weight
			lit := b.v
			if w > 0 {
				lit = -lit
			} else {
				w = -w
			}
			lits = append(lits, solver.IntToLit(int32(lit)))
			weights = append(weights, w)
		}
	}
	return lits, weights
}

func decode(m *ilp.Model, varBits [][]bit, model []bool) []int {
	vars := m.Vars()
	values := make([]int, len(vars))
	for i, v := range vars {
		values[i] = v.Lo
		for _, b := range varBits[i] {
			if b.v-1 < len(model) && model[b.v-1] {
				values[i] += b.weight
			}
		}
	}
	return values
}
