package solver

import (
	"github.com/napolitain/lob-optimizer/internal/units"
)

// plan is the purchasable part of a catalog with an upper bound on how many
// of each unit could ever be bought
type plan struct {
	units  []units.Unit
	upper  []int
	escort *units.Unit
}

func newPlan(req Request) plan {
	var p plan
	for _, u := range req.Catalog.Units() {
		if u.Purchasable() && u.Name != units.EscortUnitName {
			p.units = append(p.units, u)
		}
	}
	if e, ok := req.Catalog.Escort(); ok {
		p.escort = &e
	}

	gold, manpower := max(req.Budget.Gold, 0), max(req.Budget.Manpower, 0)
	categoryCap := categoryUpperBounds(p.units, gold, manpower)
	caps := req.Constraint.NamedCaps(req.Mode)

	p.upper = make([]int, len(p.units))
	for i, u := range p.units {
		ub := categoryCap[u.Category]
		if u.Stats.GoldCost > 0 {
			ub = min(ub, gold/u.Stats.GoldCost)
		}
		if u.Stats.ManpowerCost > 0 {
			ub = min(ub, manpower/u.Stats.ManpowerCost)
		}
		if c, ok := caps[u.Name]; ok {
			ub = min(ub, c)
		}
		if c, ok := req.Constraint.MaxCount[u.Category]; ok {
			ub = min(ub, c)
		}
		if !req.Constraint.Allows(u.Name) {
			ub = 0
		}
		p.upper[i] = max(ub, 0)
	}
	return p
}

// categoryUpperBounds bounds each category by the budget spent entirely on
// its cheapest unit
func categoryUpperBounds(us []units.Unit, gold, manpower int) map[units.Category]int {
	cheapestGold := make(map[units.Category]int)
	cheapestManpower := make(map[units.Category]int)
	for _, u := range us {
		if g, ok := cheapestGold[u.Category]; !ok || u.Stats.GoldCost < g {
			cheapestGold[u.Category] = u.Stats.GoldCost
		}
		if m, ok := cheapestManpower[u.Category]; !ok || u.Stats.ManpowerCost < m {
			cheapestManpower[u.Category] = u.Stats.ManpowerCost
		}
	}

	out := make(map[units.Category]int, len(cheapestGold))
	for cat := range cheapestGold {
		// every purchasable unit costs something, so at least one bound applies
		ub := gold + manpower
		if g := cheapestGold[cat]; g > 0 {
			ub = min(ub, gold/g)
		}
		if m := cheapestManpower[cat]; m > 0 {
			ub = min(ub, manpower/m)
		}
		out[cat] = ub
	}
	return out
}
