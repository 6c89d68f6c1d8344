package solver

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/constraint"
)

// Enumerator lists feasible compositions by depth-first search when there is
// nothing to maximize. At each unit it first tries buying one more, then
// moves on to the next unit; every leaf that satisfies the constraint is
// kept until K are found. Worst case exponential. A preset is merged in
// before a leaf is judged, so escorts count the preset's units too.
type Enumerator struct {
	logger zerolog.Logger
}

func NewEnumerator(logger zerolog.Logger) *Enumerator {
	return &Enumerator{logger: logger}
}

type enumeration struct {
	req     Request
	orig    Request
	limits  constraint.Constraint
	plan    plan
	caps    map[string]int
	base    *army.Composition
	comp    *army.Composition
	results []*army.Composition
	nodes   int
}

func (e *Enumerator) Enumerate(ctx context.Context, req Request) ([]*army.Composition, error) {
	work := req.adjusted()
	run := &enumeration{
		req:    work,
		orig:   req,
		limits: req.limits(),
		plan:   newPlan(work),
		caps:   work.Constraint.NamedCaps(work.Mode),
		base:   work.base(),
		comp:   army.New(work.Mode, work.Catalog),
	}
	err := run.search(ctx, 0)
	e.logger.Debug().Int("nodes", run.nodes).Int("found", len(run.results)).Msg("enumeration finished")
	return run.results, err
}

func (r *enumeration) done() bool {
	return len(r.results) >= r.req.K
}

func (r *enumeration) search(ctx context.Context, i int) error {
	if r.done() {
		return nil
	}
	r.nodes++
	if r.nodes%1024 == 0 {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "enumeration interrupted")
		}
	}

	if i == len(r.plan.units) {
		if merged := r.base.Merge(r.comp); r.orig.admits(merged, r.limits) {
			r.results = append(r.results, merged)
		}
		return nil
	}

	u := r.plan.units[i]
	if r.canBuy(i) {
		r.comp.Add(u)
		if !exceedsMaxCount(r.comp, r.req.Constraint) {
			if err := r.search(ctx, i); err != nil {
				return err
			}
		}
		r.comp.Remove(u)
	}
	return r.search(ctx, i+1)
}

func (r *enumeration) canBuy(i int) bool {
	u := r.plan.units[i]
	if r.comp.NameCount(u.Name) >= r.plan.upper[i] {
		return false
	}
	if r.comp.GoldCost()+u.Stats.GoldCost > r.req.Budget.Gold ||
		r.comp.ManpowerCost()+u.Stats.ManpowerCost > r.req.Budget.Manpower {
		return false
	}
	if limit, ok := r.caps[u.Name]; ok && r.comp.NameCount(u.Name) >= limit {
		return false
	}
	return true
}

func withinBudget(c *army.Composition, b constraint.Budget) bool {
	return c.GoldCost() <= b.Gold && c.ManpowerCost() <= b.Manpower
}

// Category counts only grow along a branch, so a breached maximum prunes it.
// The bought units alone never bring more escorts than they add to a preset.
func exceedsMaxCount(c *army.Composition, con constraint.Constraint) bool {
	for cat, n := range con.MaxCount {
		if c.CategoryCount(cat) > n {
			return true
		}
	}
	return false
}
