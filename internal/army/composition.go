package army

import (
	"fmt"
	"strings"

	"github.com/napolitain/lob-optimizer/internal/units"
)

// Entry is one roster line
type Entry struct {
	Unit  units.Unit
	Count int
}

// Composition is a multiset of units for one game mode.
//
// The roster is keyed by unit name, so each unit appears at most once and
// never with a zero count. The escort unit lives under its reserved name and
// its count is always EscortsFor(eligible units); every mutator ends by
// restoring that.
type Composition struct {
	mode    GameMode
	catalog *units.Catalog
	roster  map[string]*Entry
	order   []string
}

// New creates an empty composition. The catalog resolves names and the escort template.
func New(mode GameMode, catalog *units.Catalog) *Composition {
	if catalog == nil {
		panic("army: composition needs a catalog")
	}
	return &Composition{
		mode:    mode,
		catalog: catalog,
		roster:  make(map[string]*Entry),
	}
}

// Mode returns the game mode fixed at creation
func (c *Composition) Mode() GameMode {
	return c.mode
}

// Catalog returns the catalog used to resolve names
func (c *Composition) Catalog() *units.Catalog {
	return c.catalog
}

// Add adds one unit
func (c *Composition) Add(u units.Unit) {
	c.AddN(u, 1)
}

// AddN adds n copies of u. The escort unit is derived, so adding it
// directly has no lasting effect.
func (c *Composition) AddN(u units.Unit, n int) {
	if n <= 0 {
		return
	}
	c.put(u, n)
	if affectsEscort(u) {
		c.restoreEscortInvariant()
	}
}

// AddByName adds one unit looked up in the catalog; unknown names panic
func (c *Composition) AddByName(name string) {
	c.AddN(c.catalog.MustGet(name), 1)
}

// AddNByName adds n units looked up in the catalog; unknown names panic
func (c *Composition) AddNByName(name string, n int) {
	c.AddN(c.catalog.MustGet(name), n)
}

// Remove removes one unit. Removing a unit that is not present does nothing.
func (c *Composition) Remove(u units.Unit) {
	e, ok := c.roster[u.Name]
	if !ok {
		return
	}
	e.Count--
	if e.Count <= 0 {
		c.drop(u.Name)
	}
	if affectsEscort(u) || affectsEscort(e.Unit) {
		c.restoreEscortInvariant()
	}
}

// RemoveByName removes one unit by name; unknown names panic
func (c *Composition) RemoveByName(name string) {
	c.Remove(c.catalog.MustGet(name))
}

// Merge returns a new composition holding the name-wise union of both
// rosters. The escort count is recomputed once over the union rather than
// summed.
func (c *Composition) Merge(other *Composition) *Composition {
	out := c.Clone()
	for _, e := range other.Entries() {
		if e.Unit.Name == units.EscortUnitName {
			continue
		}
		out.put(e.Unit, e.Count)
	}
	out.restoreEscortInvariant()
	return out
}

// Clone returns an independent copy
func (c *Composition) Clone() *Composition {
	out := New(c.mode, c.catalog)
	for _, name := range c.order {
		e := c.roster[name]
		out.roster[name] = &Entry{Unit: e.Unit, Count: e.Count}
		out.order = append(out.order, name)
	}
	return out
}

// Entries returns the roster in insertion order, escort last
func (c *Composition) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, *c.roster[name])
	}
	return out
}

// Counts returns unit name -> count
func (c *Composition) Counts() map[string]int {
	out := make(map[string]int, len(c.roster))
	for name, e := range c.roster {
		out[name] = e.Count
	}
	return out
}

func affectsEscort(u units.Unit) bool {
	return u.Stats.RequiresEscort || u.Name == units.EscortUnitName
}

func (c *Composition) put(u units.Unit, n int) {
	if e, ok := c.roster[u.Name]; ok {
		e.Count += n
		return
	}
	c.roster[u.Name] = &Entry{Unit: u, Count: n}
	c.order = append(c.order, u.Name)
}

func (c *Composition) drop(name string) {
	if _, ok := c.roster[name]; !ok {
		return
	}
	delete(c.roster, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// restoreEscortInvariant replaces the escort entry with the count implied
// by the current escort-eligible units.
func (c *Composition) restoreEscortInvariant() {
	c.drop(units.EscortUnitName)
	count := c.mode.EscortsFor(c.EligibleCount())
	if count == 0 {
		return
	}
	c.put(c.catalog.MustGet(units.EscortUnitName), count)
}

// Sum folds score over the roster weighted by counts. Every aggregate below
// is a Sum.
func (c *Composition) Sum(score func(units.Unit) int) int {
	total := 0
	for _, e := range c.roster {
		total += score(e.Unit) * e.Count
	}
	return total
}

// GoldCost returns total gold spent
func (c *Composition) GoldCost() int {
	return c.Sum(func(u units.Unit) int { return u.Stats.GoldCost })
}

// ManpowerCost returns total manpower spent
func (c *Composition) ManpowerCost() int {
	return c.Sum(func(u units.Unit) int { return u.Stats.ManpowerCost })
}

// CategoryCount returns the number of units in category cat
func (c *Composition) CategoryCount(cat units.Category) int {
	return c.Sum(func(u units.Unit) int { return indicator(u.Category == cat) })
}

// NameCount returns how many units named name are present
func (c *Composition) NameCount(name string) int {
	if e, ok := c.roster[name]; ok {
		return e.Count
	}
	return 0
}

// EligibleCount returns the number of units that bring escorts
func (c *Composition) EligibleCount() int {
	return c.Sum(func(u units.Unit) int { return indicator(u.Stats.RequiresEscort) })
}

// EscortCount returns the derived escort count
func (c *Composition) EscortCount() int {
	return c.NameCount(units.EscortUnitName)
}

// TotalUnits returns the number of units including escorts
func (c *Composition) TotalUnits() int {
	return c.Sum(func(units.Unit) int { return 1 })
}

// IsEmpty returns true if the roster has no units
func (c *Composition) IsEmpty() bool {
	return len(c.roster) == 0
}

// TotalHP sums hit points over every unit, escorts included
func (c *Composition) TotalHP() int {
	return c.Sum(func(u units.Unit) int { return u.Stats.HP })
}

// TotalOrganization sums organization over every unit
func (c *Composition) TotalOrganization() int {
	return c.Sum(func(u units.Unit) int { return u.Stats.Organization })
}

// MeleeAttack sums melee attack over units in cats, or over all units when cats is empty
func (c *Composition) MeleeAttack(cats ...units.Category) int {
	return c.Sum(func(u units.Unit) int {
		if !u.InCategories(cats...) {
			return 0
		}
		return u.Stats.MeleeAttack
	})
}

// MeleeDefense sums melee defense over units in cats, or over all units when cats is empty
func (c *Composition) MeleeDefense(cats ...units.Category) int {
	return c.Sum(func(u units.Unit) int {
		if !u.InCategories(cats...) {
			return 0
		}
		return u.Stats.MeleeDefense
	})
}

// RangedDamageAt sums the damage every unit deals at range r
func (c *Composition) RangedDamageAt(r int) int {
	return c.Sum(func(u units.Unit) int { return u.DamageAt(r) })
}

// AverageDamage sums each unit's mean damage over the ranges from..to
func (c *Composition) AverageDamage(from, to int) int {
	return c.Sum(func(u units.Unit) int { return u.AverageDamage(from, to) })
}

// ODPAt sums organization damage at range r
func (c *Composition) ODPAt(r int) int {
	return c.Sum(func(u units.Unit) int { return u.ODPAt(r) })
}

// AverageODP sums each unit's mean organization damage over the ranges from..to
func (c *Composition) AverageODP(from, to int) int {
	return c.Sum(func(u units.Unit) int { return u.AverageODP(from, to) })
}

// EHPVs returns effective hit points against src
func (c *Composition) EHPVs(src string) int {
	return c.Sum(func(u units.Unit) int { return u.EHPVs(src) })
}

// MaxRange returns the furthest distance any unit can fire
func (c *Composition) MaxRange() int {
	max := 0
	for _, e := range c.roster {
		if r := e.Unit.MaxRange(); r > max {
			max = r
		}
	}
	return max
}

func (c *Composition) String() string {
	parts := make([]string, 0, len(c.order))
	for _, e := range c.Entries() {
		parts = append(parts, fmt.Sprintf("%s x%d", e.Unit.Name, e.Count))
	}
	return fmt.Sprintf("%s[%s]", c.mode, strings.Join(parts, ", "))
}

func indicator(b bool) int {
	if b {
		return 1
	}
	return 0
}
