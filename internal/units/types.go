package units

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Reserved unit names with game-wide rules attached.
const (
	EscortUnitName = "Skirmishers" // derived from escort-eligible units, never purchased
	RifleUnitName  = "Rifles"      // capped per game mode
	RocketUnitName = "Rockets"     // capped per game mode
)

// Category is the battlefield role of a unit
type Category int

const (
	SkirmishInfantry Category = iota
	Infantry
	Cavalry
	Artillery
)

// AllCategories lists categories in display order
func AllCategories() []Category {
	return []Category{SkirmishInfantry, Infantry, Cavalry, Artillery}
}

var categoryNames = map[Category]string{
	SkirmishInfantry: "SkirmishInfantry",
	Infantry:         "Infantry",
	Cavalry:          "Cavalry",
	Artillery:        "Artillery",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory accepts the display name or a snake_case form, case-insensitively.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	for c, name := range categoryNames {
		if strings.ToLower(name) == key {
			return c, nil
		}
	}
	return 0, eris.Errorf("unknown unit category %q", s)
}

// MarshalText encodes the category by its name
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a category name
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Stats holds the per-unit numbers used by the optimizer
type Stats struct {
	GoldCost          int
	ManpowerCost      int
	HP                int
	Organization      int
	Stamina           *int // not every template has one
	MeleeAttack       int
	MeleeDefense      int
	ChargePenetration int
	ChargeResistance  int
	Ranged            *RangedProfile
	RequiresEscort    bool
}

// Unit is an immutable template from the catalog
type Unit struct {
	Name        string
	Category    Category
	Stats       Stats
	Resistances map[string]int // damage source -> percent reduction, 0..99
}

// Purchasable reports whether the unit can be bought directly.
// Zero-cost templates (the escort unit) are only ever derived.
func (u Unit) Purchasable() bool {
	return u.Stats.GoldCost != 0 || u.Stats.ManpowerCost != 0
}

// InCategories reports whether the unit belongs to any of cats.
// An empty list matches every unit.
func (u Unit) InCategories(cats ...Category) bool {
	if len(cats) == 0 {
		return true
	}
	for _, c := range cats {
		if u.Category == c {
			return true
		}
	}
	return false
}

// Resistance returns the percent reduction against src, 0 when absent
func (u Unit) Resistance(src string) int {
	return u.Resistances[src]
}

// EHPVs returns hit points scaled by the resistance against src.
func (u Unit) EHPVs(src string) int {
	res := u.Resistance(src)
	if res >= 100 {
		panic(fmt.Sprintf("units: %s has %d%% resistance to %q; effective hp is undefined", u.Name, res, src))
	}
	return u.Stats.HP * 100 / (100 - res)
}

// DamageAt returns ranged damage at the given distance, 0 for melee-only units
func (u Unit) DamageAt(r int) int {
	if u.Stats.Ranged == nil {
		return 0
	}
	return u.Stats.Ranged.DamageAt(r)
}

// ODPAt returns organization-damage potential at the given distance
func (u Unit) ODPAt(r int) int {
	if u.Stats.Ranged == nil {
		return 0
	}
	return u.Stats.Ranged.ODPAt(r)
}

// AverageDamage returns mean ranged damage over [from, to)
func (u Unit) AverageDamage(from, to int) int {
	if u.Stats.Ranged == nil {
		return 0
	}
	return u.Stats.Ranged.AverageDamage(from, to)
}

// AverageODP returns mean organization-damage potential over [from, to)
func (u Unit) AverageODP(from, to int) int {
	if u.Stats.Ranged == nil {
		return 0
	}
	return u.Stats.Ranged.AverageODP(from, to)
}

// MaxRange returns the furthest distance covered by any band
func (u Unit) MaxRange() int {
	if u.Stats.Ranged == nil {
		return 0
	}
	return u.Stats.Ranged.MaxRange()
}

// Clone returns a deep copy so callers never alias catalog data
func (u Unit) Clone() Unit {
	out := u
	if u.Stats.Stamina != nil {
		stamina := *u.Stats.Stamina
		out.Stats.Stamina = &stamina
	}
	if u.Stats.Ranged != nil {
		out.Stats.Ranged = &RangedProfile{Bands: append([]RangedBand(nil), u.Stats.Ranged.Bands...)}
	}
	if u.Resistances != nil {
		out.Resistances = make(map[string]int, len(u.Resistances))
		for k, v := range u.Resistances {
			out.Resistances[k] = v
		}
	}
	return out
}
