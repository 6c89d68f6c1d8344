package units

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
)

var (
	ErrInvalidCatalog = eris.New("invalid unit catalog")
	ErrUnknownUnit    = eris.New("unknown unit")
)

// Catalog is the read-only set of unit templates for a game.
// Every accessor hands out copies.
type Catalog struct {
	units   []Unit
	byName  map[string]int
	sources map[string]bool
}

// NewCatalog validates the templates and builds a catalog.
// extraSources registers damage sources no unit resists.
func NewCatalog(templates []Unit, extraSources ...string) (*Catalog, error) {
	c := &Catalog{
		units:   make([]Unit, 0, len(templates)),
		byName:  make(map[string]int, len(templates)),
		sources: make(map[string]bool),
	}

	needsEscort := false
	for _, u := range templates {
		if u.Name == "" {
			return nil, eris.Wrap(ErrInvalidCatalog, "unit with empty name")
		}
		if _, dup := c.byName[u.Name]; dup {
			return nil, eris.Wrapf(ErrInvalidCatalog, "duplicate unit %q", u.Name)
		}
		if err := validateUnit(u); err != nil {
			return nil, err
		}
		for src := range u.Resistances {
			c.sources[src] = true
		}
		if u.Stats.RequiresEscort {
			needsEscort = true
		}
		c.byName[u.Name] = len(c.units)
		c.units = append(c.units, u.Clone())
	}
	for _, src := range extraSources {
		c.sources[src] = true
	}

	if needsEscort {
		escort, ok := c.Lookup(EscortUnitName)
		if !ok {
			return nil, eris.Wrapf(ErrInvalidCatalog, "units require escort but %q is missing", EscortUnitName)
		}
		if escort.Purchasable() {
			return nil, eris.Wrapf(ErrInvalidCatalog, "escort unit %q must have zero cost", EscortUnitName)
		}
		if escort.Stats.RequiresEscort {
			return nil, eris.Wrapf(ErrInvalidCatalog, "escort unit %q cannot require escort", EscortUnitName)
		}
	}
	return c, nil
}

func validateUnit(u Unit) error {
	s := u.Stats
	if s.GoldCost < 0 || s.ManpowerCost < 0 {
		return eris.Wrapf(ErrInvalidCatalog, "%s: negative cost", u.Name)
	}
	for src, res := range u.Resistances {
		if res < 0 || res > 99 {
			return eris.Wrapf(ErrInvalidCatalog, "%s: resistance %d%% to %q outside 0..99", u.Name, res, src)
		}
	}
	if s.Ranged != nil {
		for i, b := range s.Ranged.Bands {
			if b.Start >= b.End {
				return eris.Wrapf(ErrInvalidCatalog, "%s: band %d [%d,%d] must have start < end", u.Name, i, b.Start, b.End)
			}
		}
	}
	return nil
}

// Units returns a copy of every template in catalog order
func (c *Catalog) Units() []Unit {
	out := make([]Unit, len(c.units))
	for i, u := range c.units {
		out[i] = u.Clone()
	}
	return out
}

// Len returns the number of templates
func (c *Catalog) Len() int {
	return len(c.units)
}

// Lookup returns the template named name
func (c *Catalog) Lookup(name string) (Unit, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Unit{}, false
	}
	return c.units[i].Clone(), true
}

// Get is Lookup with an error for callers handling external input
func (c *Catalog) Get(name string) (Unit, error) {
	u, ok := c.Lookup(name)
	if !ok {
		return Unit{}, eris.Wrapf(ErrUnknownUnit, "%q", name)
	}
	return u, nil
}

// MustGet returns the template named name and panics if it does not exist.
// Names are expected to come from the catalog itself.
func (c *Catalog) MustGet(name string) Unit {
	u, ok := c.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("units: no template named %q in catalog", name))
	}
	return u
}

// Escort returns the escort template if the catalog has one
func (c *Catalog) Escort() (Unit, bool) {
	return c.Lookup(EscortUnitName)
}

// HasUnit reports whether name is a catalog unit
func (c *Catalog) HasUnit(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// HasDamageSource reports whether src is a known damage source
func (c *Catalog) HasDamageSource(src string) bool {
	return c.sources[src]
}

// DamageSources returns every known damage source, sorted
func (c *Catalog) DamageSources() []string {
	out := make([]string, 0, len(c.sources))
	for src := range c.sources {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}
