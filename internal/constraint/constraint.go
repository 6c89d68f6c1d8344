package constraint

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/units"
)

var (
	ErrInvalidReference = eris.New("constraint references an unknown name")
	ErrInvalidBound     = eris.New("invalid constraint bound")
)

// Budget is the gold and manpower available for purchases
type Budget struct {
	Gold     int
	Manpower int
}

// Subtract returns the budget left after paying for c
func (b Budget) Subtract(c *army.Composition) Budget {
	return Budget{Gold: b.Gold - c.GoldCost(), Manpower: b.Manpower - c.ManpowerCost()}
}

// CategoryFloor is a minimum over the units of some categories
type CategoryFloor struct {
	Categories []units.Category
	Min        int
}

// RangeFloor is a minimum ranged damage at one distance
type RangeFloor struct {
	Range int
	Min   int
}

// SourceFloor is a minimum effective hp against one damage source
type SourceFloor struct {
	Source string
	Min    int
}

// Constraint is a set of independent optional bounds plus an optional
// objective. Build it with New so names are checked against the catalog.
// Nil pointers, nil maps and empty slices mean "no bound".
type Constraint struct {
	MinCount map[units.Category]int
	MaxCount map[units.Category]int

	MaxRifles  *int
	MaxRockets *int

	MinHP              *int
	MinMeleeAttack     *int
	MinMeleeDefense    *int
	MinMeleeAttackFor  []CategoryFloor
	MinMeleeDefenseFor []CategoryFloor
	MinDamageAt        []RangeFloor
	MinEHPVs           []SourceFloor
	MinGold            *int
	MinManpower        *int

	// Allowed restricts purchasable units by name; nil allows every unit.
	Allowed []string

	Target Target
}

// Option sets one bound
type Option func(*Constraint)

// New applies opts and validates the result against the catalog
func New(cat *units.Catalog, opts ...Option) (Constraint, error) {
	var c Constraint
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(cat); err != nil {
		return Constraint{}, err
	}
	return c, nil
}

func intPtr(v int) *int { return &v }

// WithMinCount requires at least n units of cat
func WithMinCount(cat units.Category, n int) Option {
	return func(c *Constraint) {
		if c.MinCount == nil {
			c.MinCount = make(map[units.Category]int)
		}
		c.MinCount[cat] = n
	}
}

// WithMaxCount allows at most n units of cat, escorts included
func WithMaxCount(cat units.Category, n int) Option {
	return func(c *Constraint) {
		if c.MaxCount == nil {
			c.MaxCount = make(map[units.Category]int)
		}
		c.MaxCount[cat] = n
	}
}

func WithMaxRifles(n int) Option  { return func(c *Constraint) { c.MaxRifles = intPtr(n) } }
func WithMaxRockets(n int) Option { return func(c *Constraint) { c.MaxRockets = intPtr(n) } }
func WithMinHP(n int) Option      { return func(c *Constraint) { c.MinHP = intPtr(n) } }
func WithMinGold(n int) Option    { return func(c *Constraint) { c.MinGold = intPtr(n) } }

func WithMinManpower(n int) Option {
	return func(c *Constraint) { c.MinManpower = intPtr(n) }
}

// WithMinMeleeAttack bounds melee attack over cats, or over the whole army when cats is empty
func WithMinMeleeAttack(n int, cats ...units.Category) Option {
	return func(c *Constraint) {
		if len(cats) == 0 {
			c.MinMeleeAttack = intPtr(n)
			return
		}
		c.MinMeleeAttackFor = append(c.MinMeleeAttackFor, CategoryFloor{Categories: cats, Min: n})
	}
}

// WithMinMeleeDefense bounds melee defense over cats, or over the whole army when cats is empty
func WithMinMeleeDefense(n int, cats ...units.Category) Option {
	return func(c *Constraint) {
		if len(cats) == 0 {
			c.MinMeleeDefense = intPtr(n)
			return
		}
		c.MinMeleeDefenseFor = append(c.MinMeleeDefenseFor, CategoryFloor{Categories: cats, Min: n})
	}
}

// WithMinDamageAt requires at least n ranged damage at range r
func WithMinDamageAt(r, n int) Option {
	return func(c *Constraint) { c.MinDamageAt = append(c.MinDamageAt, RangeFloor{Range: r, Min: n}) }
}

// WithMinEHPVs requires at least n effective hit points against src
func WithMinEHPVs(src string, n int) Option {
	return func(c *Constraint) { c.MinEHPVs = append(c.MinEHPVs, SourceFloor{Source: src, Min: n}) }
}

// WithAllowed restricts purchases to the named units. Repeated use accumulates.
func WithAllowed(names ...string) Option {
	return func(c *Constraint) {
		if c.Allowed == nil {
			c.Allowed = []string{}
		}
		c.Allowed = append(c.Allowed, names...)
	}
}

// WithTarget sets the quantity being maximized
func WithTarget(t Target) Option {
	return func(c *Constraint) { c.Target = t }
}

// Validate checks bounds for sanity and every referenced name against the catalog
func (c Constraint) Validate(cat *units.Catalog) error {
	for category, n := range c.MinCount {
		if n < 0 {
			return eris.Wrapf(ErrInvalidBound, "minimum %s count %d is negative", category, n)
		}
		if max, ok := c.MaxCount[category]; ok && max < n {
			return eris.Wrapf(ErrInvalidBound, "minimum %s count %d exceeds maximum %d", category, n, max)
		}
	}
	for category, n := range c.MaxCount {
		if n < 0 {
			return eris.Wrapf(ErrInvalidBound, "maximum %s count %d is negative", category, n)
		}
	}
	if c.MaxRifles != nil && *c.MaxRifles < 0 {
		return eris.Wrapf(ErrInvalidBound, "rifle cap %d is negative", *c.MaxRifles)
	}
	if c.MaxRockets != nil && *c.MaxRockets < 0 {
		return eris.Wrapf(ErrInvalidBound, "rocket cap %d is negative", *c.MaxRockets)
	}
	for _, f := range append(append([]CategoryFloor(nil), c.MinMeleeAttackFor...), c.MinMeleeDefenseFor...) {
		if len(f.Categories) == 0 {
			return eris.Wrap(ErrInvalidBound, "category melee floor without categories")
		}
	}
	for _, f := range c.MinDamageAt {
		if f.Range < 0 {
			return eris.Wrapf(ErrInvalidBound, "damage floor at negative range %d", f.Range)
		}
	}
	for _, f := range c.MinEHPVs {
		if !cat.HasDamageSource(f.Source) {
			return eris.Wrapf(ErrInvalidReference, "damage source %q", f.Source)
		}
	}
	for _, name := range c.Allowed {
		if !cat.HasUnit(name) {
			return eris.Wrapf(ErrInvalidReference, "unit %q", name)
		}
	}
	if c.Target != nil {
		if err := c.Target.validate(cat); err != nil {
			return err
		}
	}
	return nil
}

// Allows reports whether the allow-list permits buying name
func (c Constraint) Allows(name string) bool {
	if c.Allowed == nil {
		return true
	}
	for _, n := range c.Allowed {
		if n == name {
			return true
		}
	}
	return false
}

// NamedCaps returns the effective caps on the specially named units: the
// game mode cap, tightened by any cap set here.
func (c Constraint) NamedCaps(mode army.GameMode) map[string]int {
	rifles, rockets := mode.MaxRifles(), mode.MaxRockets()
	if c.MaxRifles != nil && *c.MaxRifles < rifles {
		rifles = *c.MaxRifles
	}
	if c.MaxRockets != nil && *c.MaxRockets < rockets {
		rockets = *c.MaxRockets
	}
	return map[string]int{units.RifleUnitName: rifles, units.RocketUnitName: rockets}
}

// SortedCategories returns the keys of m in category order
func SortedCategories(m map[units.Category]int) []units.Category {
	out := make([]units.Category, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns a deep copy
func (c Constraint) Clone() Constraint {
	out := c
	out.MinCount = cloneCounts(c.MinCount)
	out.MaxCount = cloneCounts(c.MaxCount)
	out.MaxRifles = clonePtr(c.MaxRifles)
	out.MaxRockets = clonePtr(c.MaxRockets)
	out.MinHP = clonePtr(c.MinHP)
	out.MinMeleeAttack = clonePtr(c.MinMeleeAttack)
	out.MinMeleeDefense = clonePtr(c.MinMeleeDefense)
	out.MinGold = clonePtr(c.MinGold)
	out.MinManpower = clonePtr(c.MinManpower)
	out.MinMeleeAttackFor = cloneCategoryFloors(c.MinMeleeAttackFor)
	out.MinMeleeDefenseFor = cloneCategoryFloors(c.MinMeleeDefenseFor)
	out.MinDamageAt = append([]RangeFloor(nil), c.MinDamageAt...)
	out.MinEHPVs = append([]SourceFloor(nil), c.MinEHPVs...)
	if c.Allowed != nil {
		out.Allowed = append([]string{}, c.Allowed...)
	}
	return out
}

func cloneCounts(m map[units.Category]int) map[units.Category]int {
	if m == nil {
		return nil
	}
	out := make(map[units.Category]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clonePtr(p *int) *int {
	if p == nil {
		return nil
	}
	return intPtr(*p)
}

func cloneCategoryFloors(fs []CategoryFloor) []CategoryFloor {
	if fs == nil {
		return nil
	}
	out := make([]CategoryFloor, len(fs))
	for i, f := range fs {
		out[i] = CategoryFloor{Categories: append([]units.Category(nil), f.Categories...), Min: f.Min}
	}
	return out
}
