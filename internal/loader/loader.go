package loader

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/units"
)

const (
	UnitsFile       = "units.json"
	ResistancesFile = "resistances.json"
	ReferencesFile  = "references.json"
)

// CatalogJSON is the layout of units.json
type CatalogJSON struct {
	DamageSources []string   `json:"damage_sources,omitempty"`
	Units         []UnitJSON `json:"units"`
}

// UnitJSON represents one unit template
type UnitJSON struct {
	Name     string         `json:"name"`
	Category units.Category `json:"category"`
	Stats    StatsJSON      `json:"stats"`
}

// StatsJSON represents the stats block of a unit template
type StatsJSON struct {
	GoldCost          int        `json:"gold_cost"`
	ManpowerCost      int        `json:"manpower_cost"`
	HP                int        `json:"hp"`
	Organization      int        `json:"organization"`
	Stamina           *int       `json:"stamina,omitempty"`
	MeleeAttack       int        `json:"melee_attack"`
	MeleeDefense      int        `json:"melee_defense"`
	ChargePenetration int        `json:"charge_penetration"`
	ChargeResistance  int        `json:"charge_resistance"`
	RequiresEscort    bool       `json:"requires_escort"`
	Ranged            []BandJSON `json:"ranged,omitempty"`
}

// BandJSON represents one ranged band
type BandJSON struct {
	RangedAttack   int `json:"ranged_attack"`
	Start          int `json:"start"`
	End            int `json:"end"`
	StartModifier  int `json:"start_modifier"`
	EndModifier    int `json:"end_modifier"`
	OrgDamageRatio int `json:"org_damage_ratio"`
}

// ResistanceJSON is one (damage source, percent) pair from resistances.json
type ResistanceJSON struct {
	Source  string `json:"source"`
	Percent int    `json:"percent"`
}

func readJSON(dataDir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dataDir, name))
	if err != nil {
		return eris.Wrapf(err, "failed to read %s", name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "failed to parse %s", name)
	}
	return nil
}

// LoadCatalog builds the unit catalog from units.json and resistances.json.
// A missing resistances.json means no unit resists anything.
func LoadCatalog(dataDir string) (*units.Catalog, error) {
	var raw CatalogJSON
	if err := readJSON(dataDir, UnitsFile, &raw); err != nil {
		return nil, err
	}

	resistances := map[string][]ResistanceJSON{}
	if err := readJSON(dataDir, ResistancesFile, &resistances); err != nil && !os.IsNotExist(eris.Cause(err)) {
		return nil, err
	}
	for name := range resistances {
		if !hasUnit(raw.Units, name) {
			return nil, eris.Wrapf(units.ErrUnknownUnit, "%s lists resistances for %q", ResistancesFile, name)
		}
	}

	templates := make([]units.Unit, 0, len(raw.Units))
	for _, u := range raw.Units {
		templates = append(templates, u.toUnit(resistances[u.Name]))
	}
	return units.NewCatalog(templates, raw.DamageSources...)
}

func hasUnit(us []UnitJSON, name string) bool {
	for _, u := range us {
		if u.Name == name {
			return true
		}
	}
	return false
}

func (u UnitJSON) toUnit(res []ResistanceJSON) units.Unit {
	out := units.Unit{
		Name:     u.Name,
		Category: u.Category,
		Stats: units.Stats{
			GoldCost:          u.Stats.GoldCost,
			ManpowerCost:      u.Stats.ManpowerCost,
			HP:                u.Stats.HP,
			Organization:      u.Stats.Organization,
			Stamina:           u.Stats.Stamina,
			MeleeAttack:       u.Stats.MeleeAttack,
			MeleeDefense:      u.Stats.MeleeDefense,
			ChargePenetration: u.Stats.ChargePenetration,
			ChargeResistance:  u.Stats.ChargeResistance,
			RequiresEscort:    u.Stats.RequiresEscort,
		},
		Resistances: make(map[string]int, len(res)),
	}
	if len(u.Stats.Ranged) > 0 {
		out.Stats.Ranged = &units.RangedProfile{}
		for _, b := range u.Stats.Ranged {
			out.Stats.Ranged.Bands = append(out.Stats.Ranged.Bands, units.RangedBand(b))
		}
	}
	for _, r := range res {
		out.Resistances[r.Source] = r.Percent
	}
	return out
}

// LoadReferences reads the reference army of each game mode from
// references.json, a map of mode name to unit name to count.
func LoadReferences(dataDir string, cat *units.Catalog) (map[army.GameMode]*army.Composition, error) {
	var raw map[string]map[string]int
	if err := readJSON(dataDir, ReferencesFile, &raw); err != nil {
		return nil, err
	}

	out := make(map[army.GameMode]*army.Composition, len(raw))
	for modeName, counts := range raw {
		mode, err := army.ParseGameMode(modeName)
		if err != nil {
			return nil, eris.Wrapf(err, "%s", ReferencesFile)
		}
		comp, err := Compose(mode, cat, counts)
		if err != nil {
			return nil, eris.Wrapf(err, "%s: %s", ReferencesFile, modeName)
		}
		out[mode] = comp
	}
	return out, nil
}

// Compose builds a composition from unit name counts, in name order.
// Escort counts are ignored and re-derived.
func Compose(mode army.GameMode, cat *units.Catalog, counts map[string]int) (*army.Composition, error) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	comp := army.New(mode, cat)
	for _, name := range names {
		u, err := cat.Get(name)
		if err != nil {
			return nil, err
		}
		if counts[name] < 0 {
			return nil, eris.Errorf("negative count %d for %q", counts[name], name)
		}
		comp.AddN(u, counts[name])
	}
	return comp, nil
}
