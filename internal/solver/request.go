package solver

import (
	"github.com/rotisserie/eris"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/constraint"
	"github.com/napolitain/lob-optimizer/internal/units"
)

var ErrInvalidRequest = eris.New("invalid search request")

// Request is one army search
type Request struct {
	Catalog    *units.Catalog
	Mode       army.GameMode
	Budget     constraint.Budget
	Constraint constraint.Constraint
	// K is the number of compositions wanted
	K int
	// Preset, when set, is kept as is and extended with the units found
	Preset *army.Composition
}

// Validate rejects a request before any solving happens
func (r Request) Validate() error {
	if r.Catalog == nil {
		return eris.Wrap(ErrInvalidRequest, "no unit catalog")
	}
	if r.K < 1 {
		return eris.Wrapf(ErrInvalidRequest, "asked for %d compositions", r.K)
	}
	known := false
	for _, m := range army.AllModes() {
		known = known || m == r.Mode
	}
	if !known {
		return eris.Wrapf(ErrInvalidRequest, "unknown game mode %d", int(r.Mode))
	}
	if r.Budget.Gold < 0 || r.Budget.Manpower < 0 {
		return eris.Wrapf(ErrInvalidRequest, "negative budget %+v", r.Budget)
	}
	if r.Preset != nil {
		if r.Preset.Mode() != r.Mode {
			return eris.Wrapf(ErrInvalidRequest, "preset is for %s, search is for %s", r.Preset.Mode(), r.Mode)
		}
		if r.Preset.Catalog() != r.Catalog {
			return eris.Wrap(ErrInvalidRequest, "preset uses a different catalog")
		}
	}
	if err := r.Constraint.Validate(r.Catalog); err != nil {
		return eris.Wrap(err, "invalid constraint")
	}
	return nil
}

// adjusted returns the request for the units still to buy once the preset
// is fixed. The preset stays attached: its escort-eligible units still count
// towards the escorts of whatever is bought.
func (r Request) adjusted() Request {
	if r.Preset == nil || r.Preset.IsEmpty() {
		r.Preset = nil
		return r
	}
	r.Budget = r.Budget.Subtract(r.Preset)
	r.Constraint = r.Constraint.SubtractPreset(r.Preset)
	return r
}

// base is the army every result starts from
func (r Request) base() *army.Composition {
	if r.Preset == nil {
		return army.New(r.Mode, r.Catalog)
	}
	return r.Preset
}

// limits is the constraint a finished army, preset included, must satisfy.
// Preset units are exempt from the allowed list, which only governs purchases.
func (r Request) limits() constraint.Constraint {
	if r.Constraint.Allowed == nil || r.Preset == nil {
		return r.Constraint
	}
	c := r.Constraint.Clone()
	for _, e := range r.Preset.Entries() {
		c.Allowed = append(c.Allowed, e.Unit.Name)
	}
	return c
}

// admits reports whether a finished army fits the budget and limits
func (r Request) admits(comp *army.Composition, limits constraint.Constraint) bool {
	return withinBudget(comp, r.Budget) && !limits.Violates(comp)
}
