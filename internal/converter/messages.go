package converter

import (
	"github.com/rotisserie/eris"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/constraint"
	"github.com/napolitain/lob-optimizer/internal/loader"
	"github.com/napolitain/lob-optimizer/internal/solver"
	"github.com/napolitain/lob-optimizer/internal/units"
)

// ToRequest resolves a wire request against the catalog
func ToRequest(in SearchRequest, cat *units.Catalog) (solver.Request, error) {
	mode, err := army.ParseGameMode(in.Mode)
	if err != nil {
		return solver.Request{}, eris.Wrapf(solver.ErrInvalidRequest, "%v", err)
	}

	opts := make([]constraint.Option, 0, len(in.Bounds)+2)
	for _, b := range in.Bounds {
		opt, err := constraint.ParseBound(b)
		if err != nil {
			return solver.Request{}, err
		}
		opts = append(opts, opt)
	}
	if in.Target != "" {
		target, err := constraint.ParseTarget(in.Target)
		if err != nil {
			return solver.Request{}, err
		}
		opts = append(opts, constraint.WithTarget(target))
	}
	if len(in.Allowed) > 0 {
		opts = append(opts, constraint.WithAllowed(in.Allowed...))
	}
	con, err := constraint.New(cat, opts...)
	if err != nil {
		return solver.Request{}, err
	}

	req := solver.Request{
		Catalog:    cat,
		Mode:       mode,
		Budget:     constraint.Budget{Gold: in.Gold, Manpower: in.Manpower},
		Constraint: con,
		K:          in.K,
	}
	if req.K == 0 {
		req.K = DefaultK
	}
	if len(in.Preset) > 0 {
		counts := make(map[string]int, len(in.Preset))
		for _, uc := range in.Preset {
			counts[uc.Name] += uc.Count
		}
		preset, err := loader.Compose(mode, cat, counts)
		if err != nil {
			return solver.Request{}, eris.Wrap(err, "preset")
		}
		req.Preset = preset
	}
	return req, nil
}

// FromRequest is the inverse of ToRequest, up to expression spelling
func FromRequest(req solver.Request) SearchRequest {
	out := SearchRequest{
		Mode:     req.Mode.String(),
		Gold:     req.Budget.Gold,
		Manpower: req.Budget.Manpower,
		K:        req.K,
		Bounds:   req.Constraint.Expressions(),
		Allowed:  req.Constraint.Allowed,
	}
	if req.Constraint.Target != nil {
		out.Target = req.Constraint.Target.String()
	}
	if req.Preset != nil && !req.Preset.IsEmpty() {
		for _, e := range req.Preset.Entries() {
			if e.Unit.Name != units.EscortUnitName {
				out.Preset = append(out.Preset, UnitCount{Name: e.Unit.Name, Count: e.Count})
			}
		}
	}
	return out
}

// FromComposition converts a composition, scoring it against target when set
func FromComposition(c *army.Composition, target constraint.Target) Composition {
	out := Composition{
		Units:        make([]UnitCount, 0, len(c.Entries())),
		Escorts:      c.EscortCount(),
		TotalUnits:   c.TotalUnits(),
		Gold:         c.GoldCost(),
		Manpower:     c.ManpowerCost(),
		HP:           c.TotalHP(),
		Organization: c.TotalOrganization(),
		MeleeAttack:  c.MeleeAttack(),
		MeleeDefense: c.MeleeDefense(),
	}
	for _, e := range c.Entries() {
		out.Units = append(out.Units, UnitCount{Name: e.Unit.Name, Count: e.Count})
	}
	if target != nil {
		score := target.Score(c)
		out.Objective = &score
	}
	return out
}

// ToResponse packs search results. A non-nil err is reported alongside the
// partial results rather than replacing them.
func ToResponse(req solver.Request, found []*army.Composition, err error) *SearchResponse {
	resp := &SearchResponse{
		Mode:         req.Mode.String(),
		Compositions: make([]Composition, 0, len(found)),
	}
	if req.Constraint.Target != nil {
		resp.Target = req.Constraint.Target.String()
	}
	for _, c := range found {
		resp.Compositions = append(resp.Compositions, FromComposition(c, req.Constraint.Target))
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// FromCatalog lists every template in catalog order
func FromCatalog(cat *units.Catalog) *UnitsResponse {
	resp := &UnitsResponse{DamageSources: cat.DamageSources()}
	for _, u := range cat.Units() {
		resp.Units = append(resp.Units, FromUnit(u))
	}
	return resp
}

func FromUnit(u units.Unit) Unit {
	out := Unit{
		Name:           u.Name,
		Category:       u.Category.String(),
		GoldCost:       u.Stats.GoldCost,
		ManpowerCost:   u.Stats.ManpowerCost,
		HP:             u.Stats.HP,
		Organization:   u.Stats.Organization,
		Stamina:        u.Stats.Stamina,
		MeleeAttack:    u.Stats.MeleeAttack,
		MeleeDefense:   u.Stats.MeleeDefense,
		MaxRange:       u.MaxRange(),
		RequiresEscort: u.Stats.RequiresEscort,
	}
	if len(u.Resistances) > 0 {
		out.Resistances = u.Resistances
	}
	return out
}
