// Package unitstest provides small catalogs shared by tests across packages.
package unitstest

import (
	"testing"

	"github.com/napolitain/lob-optimizer/internal/units"
)

// Names used by Catalog.
const (
	LineInfantry = "Line Infantry"
	Grenadiers   = "Grenadiers"
	Hussars      = "Hussars"
	Artillery6lb = "6-lb Foot Artillery"
)

// Templates returns the fixture units: two escort-eligible infantry lines,
// cavalry, rifles, artillery, rockets and the escort unit.
func Templates() []units.Unit {
	return []units.Unit{
		{
			Name:     LineInfantry,
			Category: units.Infantry,
			Stats: units.Stats{
				GoldCost: 50, ManpowerCost: 125, HP: 1000, Organization: 100,
				MeleeAttack: 10, MeleeDefense: 12, RequiresEscort: true,
				Ranged: &units.RangedProfile{Bands: []units.RangedBand{
					{RangedAttack: 10, Start: 0, End: 100, StartModifier: 0, EndModifier: -50, OrgDamageRatio: 2},
				}},
			},
			Resistances: map[string]int{"Musket": 10},
		},
		{
			Name:     Grenadiers,
			Category: units.Infantry,
			Stats: units.Stats{
				GoldCost: 80, ManpowerCost: 125, HP: 1200, Organization: 120,
				MeleeAttack: 16, MeleeDefense: 14, RequiresEscort: true,
				Ranged: &units.RangedProfile{Bands: []units.RangedBand{
					{RangedAttack: 12, Start: 0, End: 80, StartModifier: 10, EndModifier: -40, OrgDamageRatio: 2},
				}},
			},
			Resistances: map[string]int{"Musket": 20, "Cavalry Sabre": 10},
		},
		{
			Name:     Hussars,
			Category: units.Cavalry,
			Stats: units.Stats{
				GoldCost: 60, ManpowerCost: 125, HP: 800, Organization: 90,
				MeleeAttack: 20, MeleeDefense: 8,
			},
			Resistances: map[string]int{"Cavalry Sabre": 20},
		},
		{
			Name:     units.RifleUnitName,
			Category: units.Infantry,
			Stats: units.Stats{
				GoldCost: 90, ManpowerCost: 100, HP: 700, Organization: 80,
				MeleeAttack: 6, MeleeDefense: 6,
				Ranged: &units.RangedProfile{Bands: []units.RangedBand{
					{RangedAttack: 14, Start: 0, End: 200, StartModifier: 20, EndModifier: -20, OrgDamageRatio: 1},
				}},
			},
		},
		{
			Name:     Artillery6lb,
			Category: units.Artillery,
			Stats: units.Stats{
				GoldCost: 125, ManpowerCost: 25, HP: 400, Organization: 60,
				MeleeAttack: 2, MeleeDefense: 2,
				Ranged: &units.RangedProfile{Bands: []units.RangedBand{
					{RangedAttack: 40, Start: 0, End: 300, StartModifier: 0, EndModifier: -50, OrgDamageRatio: 3},
				}},
			},
			Resistances: map[string]int{"Musket": 50},
		},
		{
			Name:     units.RocketUnitName,
			Category: units.Artillery,
			Stats: units.Stats{
				GoldCost: 150, ManpowerCost: 30, HP: 300, Organization: 50,
				Ranged: &units.RangedProfile{Bands: []units.RangedBand{
					{RangedAttack: 60, Start: 100, End: 400, OrgDamageRatio: 1},
				}},
			},
		},
		{
			Name:     units.EscortUnitName,
			Category: units.SkirmishInfantry,
			Stats: units.Stats{
				HP: 300, Organization: 40, MeleeAttack: 4, MeleeDefense: 4,
				Ranged: &units.RangedProfile{Bands: []units.RangedBand{
					{RangedAttack: 6, Start: 0, End: 60, StartModifier: 0, EndModifier: -30, OrgDamageRatio: 1},
				}},
			},
			Resistances: map[string]int{"Musket": 30},
		},
	}
}

// Catalog builds the fixture catalog and fails the test on error.
func Catalog(t testing.TB) *units.Catalog {
	t.Helper()
	cat, err := units.NewCatalog(Templates())
	if err != nil {
		t.Fatalf("fixture catalog: %v", err)
	}
	return cat
}
