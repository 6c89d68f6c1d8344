package solver

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/constraint"
	"github.com/napolitain/lob-optimizer/internal/ilp"
	"github.com/napolitain/lob-optimizer/internal/units"
)

// Optimizer finds up to K compositions of strictly decreasing objective
// value, one integer program per composition. Each program after the first
// carries a cut forcing its objective below the previous optimum.
type Optimizer struct {
	backend ilp.Solver
	logger  zerolog.Logger
}

func NewOptimizer(backend ilp.Solver, logger zerolog.Logger) *Optimizer {
	return &Optimizer{backend: backend, logger: logger}
}

// Optimize runs the k-best loop. It stops early, without error, once the
// backend reports the model infeasible. Any other backend failure is
// returned along with the compositions found before it. Results include
// req.Preset when one is set.
func (o *Optimizer) Optimize(ctx context.Context, req Request) ([]*army.Composition, error) {
	if req.Constraint.Target == nil {
		return nil, eris.Wrap(ErrInvalidRequest, "optimizer needs a target")
	}
	work := req.adjusted()
	limits := req.limits()
	p := newPlan(work)

	var results []*army.Composition
	var cut *int
	for i := 1; i <= req.K; i++ {
		b := newProgram(work, p)
		if cut != nil {
			b.model.AddLessOrEqual(b.objective, *cut)
		}

		sol, err := o.backend.Solve(ctx, b.model)
		if eris.Is(err, ilp.ErrInfeasible) {
			o.logger.Debug().Int("iteration", i).Int("found", len(results)).Msg("no further composition")
			break
		}
		if err != nil {
			return results, eris.Wrapf(err, "iteration %d", i)
		}

		comp, err := b.composition(sol)
		if err != nil {
			return results, err
		}
		if !req.admits(comp, limits) {
			return results, eris.Errorf("composition %s breaks %v", comp, limits.Violations(comp))
		}
		o.logger.Debug().
			Int("iteration", i).
			Int("objective", sol.Objective).
			Int("units", comp.TotalUnits()).
			Str("target", req.Constraint.Target.String()).
			Msg("composition found")

		results = append(results, comp)
		next := sol.Objective - 1
		cut = &next
	}
	return results, nil
}

// program is one integer program over a plan. Its variables count only
// the units bought on top of base.
type program struct {
	req       Request
	plan      plan
	base      *army.Composition
	model     *ilp.Model
	vars      []ilp.IntVar
	escorts   *ilp.IntVar
	objective *ilp.LinearExpr
}

func newProgram(req Request, p plan) *program {
	b := &program{req: req, plan: p, base: req.base(), model: ilp.NewModel()}
	for i, u := range p.units {
		b.vars = append(b.vars, b.model.NewIntVar(0, p.upper[i], u.Name))
	}
	b.addEscortRule()
	b.addBounds()
	b.objective = b.sum(req.Constraint.Target.UnitScore)
	b.model.Maximize(b.objective)
	return b
}

// addEscortRule encodes escorts = num * floor(eligible / den) with an
// auxiliary multiplier m: den*m <= eligible <= den*m + den - 1. The base
// army's eligible units enter as a constant and its escorts are taken off,
// so escort_count is exactly the escorts the bought units add.
func (b *program) addEscortRule() {
	if b.plan.escort == nil {
		return
	}
	num, den := b.req.Mode.EscortRatio()

	eligible := ilp.NewLinearExpr()
	maxEligible := 0
	for i, u := range b.plan.units {
		if u.Stats.RequiresEscort {
			eligible.Add(b.vars[i])
			maxEligible += b.plan.upper[i]
		}
	}

	baseEligible, baseEscorts := b.base.EligibleCount(), b.base.EscortCount()
	top := (maxEligible + baseEligible) / den

	mult := b.model.NewIntVar(0, top, "escort_multiplier")
	escorts := b.model.NewIntVar(0, num*top, "escort_count")
	b.escorts = &escorts

	b.model.AddGreaterOrEqual(eligible.Clone().AddTerm(mult, -den), -baseEligible)
	b.model.AddLessOrEqual(eligible.Clone().AddTerm(mult, -den), den-1-baseEligible)
	b.model.AddEquality(ilp.NewLinearExpr().Add(escorts).AddTerm(mult, -num), -baseEscorts)
}

// sum is the linear expression of a per-unit score over the army, escorts included
func (b *program) sum(score func(units.Unit) int) *ilp.LinearExpr {
	e := ilp.NewLinearExpr()
	for i, u := range b.plan.units {
		e.AddTerm(b.vars[i], score(u))
	}
	if b.escorts != nil {
		e.AddTerm(*b.escorts, score(*b.plan.escort))
	}
	return e
}

func (b *program) addBounds() {
	c, m := b.req.Constraint, b.model

	m.AddLessOrEqual(b.sum(func(u units.Unit) int { return u.Stats.GoldCost }), b.req.Budget.Gold)
	m.AddLessOrEqual(b.sum(func(u units.Unit) int { return u.Stats.ManpowerCost }), b.req.Budget.Manpower)

	inCategory := func(cat units.Category) func(units.Unit) int {
		return func(u units.Unit) int { return indicator(u.Category == cat) }
	}
	for _, cat := range constraint.SortedCategories(c.MinCount) {
		m.AddGreaterOrEqual(b.sum(inCategory(cat)), c.MinCount[cat])
	}
	for _, cat := range constraint.SortedCategories(c.MaxCount) {
		m.AddLessOrEqual(b.sum(inCategory(cat)), c.MaxCount[cat])
	}
	for name, limit := range c.NamedCaps(b.req.Mode) {
		m.AddLessOrEqual(b.sum(func(u units.Unit) int { return indicator(u.Name == name) }), limit)
	}
	for i, u := range b.plan.units {
		if !c.Allows(u.Name) {
			m.AddEquality(ilp.NewLinearExpr().Add(b.vars[i]), 0)
		}
	}

	floor := func(bound *int, score func(units.Unit) int) {
		if bound != nil {
			m.AddGreaterOrEqual(b.sum(score), *bound)
		}
	}
	floor(c.MinHP, func(u units.Unit) int { return u.Stats.HP })
	floor(c.MinMeleeAttack, func(u units.Unit) int { return u.Stats.MeleeAttack })
	floor(c.MinMeleeDefense, func(u units.Unit) int { return u.Stats.MeleeDefense })
	floor(c.MinGold, func(u units.Unit) int { return u.Stats.GoldCost })
	floor(c.MinManpower, func(u units.Unit) int { return u.Stats.ManpowerCost })

	for _, f := range c.MinMeleeAttackFor {
		cats := f.Categories
		m.AddGreaterOrEqual(b.sum(func(u units.Unit) int {
			return indicator(u.InCategories(cats...)) * u.Stats.MeleeAttack
		}), f.Min)
	}
	for _, f := range c.MinMeleeDefenseFor {
		cats := f.Categories
		m.AddGreaterOrEqual(b.sum(func(u units.Unit) int {
			return indicator(u.InCategories(cats...)) * u.Stats.MeleeDefense
		}), f.Min)
	}
	for _, f := range c.MinDamageAt {
		r := f.Range
		m.AddGreaterOrEqual(b.sum(func(u units.Unit) int { return u.DamageAt(r) }), f.Min)
	}
	for _, f := range c.MinEHPVs {
		src := f.Source
		m.AddGreaterOrEqual(b.sum(func(u units.Unit) int { return u.EHPVs(src) }), f.Min)
	}
}

// composition rebuilds the finished army, base included, from a solution.
// Merging re-derives the escorts, which must agree with the solved count.
func (b *program) composition(sol *ilp.Solution) (*army.Composition, error) {
	bought := army.New(b.req.Mode, b.req.Catalog)
	for i, u := range b.plan.units {
		bought.AddN(u, sol.Value(b.vars[i]))
	}
	comp := b.base.Merge(bought)
	if b.escorts != nil {
		derived := comp.EscortCount() - b.base.EscortCount()
		if solved := sol.Value(*b.escorts); solved != derived {
			return nil, eris.Errorf("solved escort count %d disagrees with derived %d for %s", solved, derived, comp)
		}
	}
	target := b.req.Constraint.Target
	if got := target.Score(comp) - target.Score(b.base); got != sol.Objective {
		return nil, eris.Errorf("objective %d disagrees with composition score %d", sol.Objective, got)
	}
	return comp, nil
}

func indicator(b bool) int {
	if b {
		return 1
	}
	return 0
}
