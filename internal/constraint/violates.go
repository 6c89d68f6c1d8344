package constraint

import (
	"fmt"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/units"
)

// Violates reports whether c breaks any bound. It stops at the first breach.
func (c Constraint) Violates(comp *army.Composition) bool {
	violated := false
	c.check(comp, func(string) bool {
		violated = true
		return false
	})
	return violated
}

// Violations describes every bound c breaks, in a stable order
func (c Constraint) Violations(comp *army.Composition) []string {
	var out []string
	c.check(comp, func(msg string) bool {
		out = append(out, msg)
		return true
	})
	return out
}

// check calls report for each breach until report returns false
func (c Constraint) check(comp *army.Composition, report func(string) bool) {
	atLeast := func(what string, got, min int) bool {
		if got < min {
			return report(fmt.Sprintf("%s %d below minimum %d", what, got, min))
		}
		return true
	}
	atMost := func(what string, got, max int) bool {
		if got > max {
			return report(fmt.Sprintf("%s %d above maximum %d", what, got, max))
		}
		return true
	}

	for _, cat := range SortedCategories(c.MinCount) {
		if !atLeast(cat.String()+" count", comp.CategoryCount(cat), c.MinCount[cat]) {
			return
		}
	}
	for _, cat := range SortedCategories(c.MaxCount) {
		if !atMost(cat.String()+" count", comp.CategoryCount(cat), c.MaxCount[cat]) {
			return
		}
	}

	caps := c.NamedCaps(comp.Mode())
	for _, name := range []string{units.RifleUnitName, units.RocketUnitName} {
		if !atMost(name, comp.NameCount(name), caps[name]) {
			return
		}
	}

	if c.Allowed != nil {
		for _, e := range comp.Entries() {
			if e.Unit.Name == units.EscortUnitName || c.Allows(e.Unit.Name) {
				continue
			}
			if !report(fmt.Sprintf("%s is not allowed", e.Unit.Name)) {
				return
			}
		}
	}

	floors := []struct {
		what  string
		min   *int
		value func() int
	}{
		{"hp", c.MinHP, comp.TotalHP},
		{"melee attack", c.MinMeleeAttack, func() int { return comp.MeleeAttack() }},
		{"melee defense", c.MinMeleeDefense, func() int { return comp.MeleeDefense() }},
		{"gold", c.MinGold, comp.GoldCost},
		{"manpower", c.MinManpower, comp.ManpowerCost},
	}
	for _, f := range floors {
		if f.min != nil && !atLeast(f.what, f.value(), *f.min) {
			return
		}
	}

	for _, f := range c.MinMeleeAttackFor {
		if !atLeast(fmt.Sprintf("melee attack of %v", f.Categories), comp.MeleeAttack(f.Categories...), f.Min) {
			return
		}
	}
	for _, f := range c.MinMeleeDefenseFor {
		if !atLeast(fmt.Sprintf("melee defense of %v", f.Categories), comp.MeleeDefense(f.Categories...), f.Min) {
			return
		}
	}
	for _, f := range c.MinDamageAt {
		if !atLeast(fmt.Sprintf("damage at %d", f.Range), comp.RangedDamageAt(f.Range), f.Min) {
			return
		}
	}
	for _, f := range c.MinEHPVs {
		if !atLeast(fmt.Sprintf("ehp vs %s", f.Source), comp.EHPVs(f.Source), f.Min) {
			return
		}
	}
}
