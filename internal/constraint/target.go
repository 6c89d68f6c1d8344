package constraint

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/units"
)

// Target is the quantity an optimizer maximizes. Every target is linear in
// unit counts: Score(c) equals the count-weighted sum of UnitScore, escorts
// included.
type Target interface {
	UnitScore(u units.Unit) int
	Score(c *army.Composition) int
	String() string

	validate(cat *units.Catalog) error
}

type (
	HP           struct{}
	Organization struct{}
	MeleeAttack  struct{}
	MeleeDefense struct{}

	// DamageAt is ranged damage at one distance
	DamageAt struct{ Range int }
	// ODPAt is organization damage at one distance
	ODPAt struct{ Range int }
	// DamageOverBand is the truncated mean of ranged damage over [From, To)
	DamageOverBand struct{ From, To int }
	// ODPOverBand is the truncated mean of organization damage over [From, To)
	ODPOverBand struct{ From, To int }
	// EHPVs is effective hit points against one damage source
	EHPVs struct{ Source string }
)

var (
	_ Target = HP{}
	_ Target = Organization{}
	_ Target = MeleeAttack{}
	_ Target = MeleeDefense{}
	_ Target = DamageAt{}
	_ Target = ODPAt{}
	_ Target = DamageOverBand{}
	_ Target = ODPOverBand{}
	_ Target = EHPVs{}
)

func (HP) UnitScore(u units.Unit) int    { return u.Stats.HP }
func (HP) Score(c *army.Composition) int { return c.TotalHP() }
func (HP) String() string                { return "hp" }
func (HP) validate(*units.Catalog) error { return nil }

func (Organization) UnitScore(u units.Unit) int    { return u.Stats.Organization }
func (Organization) Score(c *army.Composition) int { return c.TotalOrganization() }
func (Organization) String() string                { return "organization" }
func (Organization) validate(*units.Catalog) error { return nil }

func (MeleeAttack) UnitScore(u units.Unit) int    { return u.Stats.MeleeAttack }
func (MeleeAttack) Score(c *army.Composition) int { return c.MeleeAttack() }
func (MeleeAttack) String() string                { return "melee_attack" }
func (MeleeAttack) validate(*units.Catalog) error { return nil }

func (MeleeDefense) UnitScore(u units.Unit) int    { return u.Stats.MeleeDefense }
func (MeleeDefense) Score(c *army.Composition) int { return c.MeleeDefense() }
func (MeleeDefense) String() string                { return "melee_defense" }
func (MeleeDefense) validate(*units.Catalog) error { return nil }

func (t DamageAt) UnitScore(u units.Unit) int    { return u.DamageAt(t.Range) }
func (t DamageAt) Score(c *army.Composition) int { return c.RangedDamageAt(t.Range) }
func (t DamageAt) String() string                { return fmt.Sprintf("damage@%d", t.Range) }
func (t DamageAt) validate(*units.Catalog) error { return checkRange(t.Range) }

func (t ODPAt) UnitScore(u units.Unit) int    { return u.ODPAt(t.Range) }
func (t ODPAt) Score(c *army.Composition) int { return c.ODPAt(t.Range) }
func (t ODPAt) String() string                { return fmt.Sprintf("odp@%d", t.Range) }
func (t ODPAt) validate(*units.Catalog) error { return checkRange(t.Range) }

func (t DamageOverBand) UnitScore(u units.Unit) int { return u.AverageDamage(t.From, t.To) }
func (t DamageOverBand) Score(c *army.Composition) int {
	return c.AverageDamage(t.From, t.To)
}
func (t DamageOverBand) String() string                { return fmt.Sprintf("avg_damage[%d:%d]", t.From, t.To) }
func (t DamageOverBand) validate(*units.Catalog) error { return checkBand(t.From, t.To) }

func (t ODPOverBand) UnitScore(u units.Unit) int    { return u.AverageODP(t.From, t.To) }
func (t ODPOverBand) Score(c *army.Composition) int { return c.AverageODP(t.From, t.To) }
func (t ODPOverBand) String() string                { return fmt.Sprintf("avg_odp[%d:%d]", t.From, t.To) }
func (t ODPOverBand) validate(*units.Catalog) error { return checkBand(t.From, t.To) }

func (t EHPVs) UnitScore(u units.Unit) int    { return u.EHPVs(t.Source) }
func (t EHPVs) Score(c *army.Composition) int { return c.EHPVs(t.Source) }
func (t EHPVs) String() string                { return fmt.Sprintf("ehp(%q)", t.Source) }
func (t EHPVs) validate(cat *units.Catalog) error {
	if !cat.HasDamageSource(t.Source) {
		return eris.Wrapf(ErrInvalidReference, "damage source %q", t.Source)
	}
	return nil
}

func checkRange(r int) error {
	if r < 0 {
		return eris.Wrapf(ErrInvalidBound, "negative range %d", r)
	}
	return nil
}

// A reversed band is allowed and scores zero; only negative ends are rejected.
func checkBand(from, to int) error {
	if from < 0 || to < 0 {
		return eris.Wrapf(ErrInvalidBound, "negative band [%d:%d]", from, to)
	}
	return nil
}
