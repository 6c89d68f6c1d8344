package constraint

import (
	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/units"
)

// FloorsFrom derives minimum bounds from a reference army: percent of its
// total melee attack, of its cavalry melee attack and defense, of its ranged
// damage every rangeStep up to its max range, and of its ehp against each
// damage source in its catalog. Zero floors are skipped.
func FloorsFrom(ref *army.Composition, percent, rangeStep int) []Option {
	if rangeStep <= 0 {
		rangeStep = 1
	}
	scale := func(v int) int { return v * percent / 100 }

	var opts []Option
	if v := scale(ref.MeleeAttack()); v > 0 {
		opts = append(opts, WithMinMeleeAttack(v))
	}
	if v := scale(ref.MeleeAttack(units.Cavalry)); v > 0 {
		opts = append(opts, WithMinMeleeAttack(v, units.Cavalry))
	}
	if v := scale(ref.MeleeDefense(units.Cavalry)); v > 0 {
		opts = append(opts, WithMinMeleeDefense(v, units.Cavalry))
	}
	for r := 0; r < ref.MaxRange(); r += rangeStep {
		if v := scale(ref.RangedDamageAt(r)); v > 0 {
			opts = append(opts, WithMinDamageAt(r, v))
		}
	}
	for _, src := range ref.Catalog().DamageSources() {
		if v := scale(ref.EHPVs(src)); v > 0 {
			opts = append(opts, WithMinEHPVs(src, v))
		}
	}
	return opts
}
