package constraint

import (
	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/units"
)

// SubtractPreset returns the bounds left for the units still to be bought
// once preset is fixed. Floors shrink by what preset already provides and
// stop at zero. Maximums and caps shrink without a floor, so a preset that
// already exceeds one leaves a negative bound nothing can satisfy.
//
// Escorts are recomputed on the merged army, so the bounds are exact only
// when the search counts the preset's escort-eligible units towards the
// escorts of what it buys.
func (c Constraint) SubtractPreset(preset *army.Composition) Constraint {
	out := c.Clone()
	if preset == nil || preset.IsEmpty() {
		return out
	}

	for cat, n := range out.MinCount {
		out.MinCount[cat] = clampSub(n, preset.CategoryCount(cat))
	}
	for cat, n := range out.MaxCount {
		out.MaxCount[cat] = n - preset.CategoryCount(cat)
	}

	caps := c.NamedCaps(preset.Mode())
	out.MaxRifles = intPtr(caps[units.RifleUnitName] - preset.NameCount(units.RifleUnitName))
	out.MaxRockets = intPtr(caps[units.RocketUnitName] - preset.NameCount(units.RocketUnitName))

	out.MinHP = subFloor(out.MinHP, preset.TotalHP())
	out.MinMeleeAttack = subFloor(out.MinMeleeAttack, preset.MeleeAttack())
	out.MinMeleeDefense = subFloor(out.MinMeleeDefense, preset.MeleeDefense())
	out.MinGold = subFloor(out.MinGold, preset.GoldCost())
	out.MinManpower = subFloor(out.MinManpower, preset.ManpowerCost())

	for i, f := range out.MinMeleeAttackFor {
		out.MinMeleeAttackFor[i].Min = clampSub(f.Min, preset.MeleeAttack(f.Categories...))
	}
	for i, f := range out.MinMeleeDefenseFor {
		out.MinMeleeDefenseFor[i].Min = clampSub(f.Min, preset.MeleeDefense(f.Categories...))
	}
	for i, f := range out.MinDamageAt {
		out.MinDamageAt[i].Min = clampSub(f.Min, preset.RangedDamageAt(f.Range))
	}
	for i, f := range out.MinEHPVs {
		out.MinEHPVs[i].Min = clampSub(f.Min, preset.EHPVs(f.Source))
	}
	return out
}

func clampSub(a, b int) int {
	if a-b < 0 {
		return 0
	}
	return a - b
}

func subFloor(p *int, v int) *int {
	if p == nil {
		return nil
	}
	return intPtr(clampSub(*p, v))
}
