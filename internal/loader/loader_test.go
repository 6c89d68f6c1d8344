package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/units"
)

const dataDir = "../../data"

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

const minimalUnits = `{"units": [
  {"name": "Militia", "category": "Infantry", "stats": {"gold_cost": 20, "manpower_cost": 100, "hp": 600, "requires_escort": true,
    "ranged": [{"ranged_attack": 5, "start": 0, "end": 50, "start_modifier": 0, "end_modifier": -50, "org_damage_ratio": 1}]}},
  {"name": "Skirmishers", "category": "skirmish_infantry", "stats": {"hp": 300}}
]}`

func TestLoadCatalog(t *testing.T) {
	cat, err := LoadCatalog(dataDir)
	require.NoError(t, err)

	assert.Equal(t, 13, cat.Len())
	escort, ok := cat.Escort()
	require.True(t, ok)
	assert.Equal(t, units.SkirmishInfantry, escort.Category)
	assert.False(t, escort.Purchasable())

	line := cat.MustGet("Line Infantry")
	assert.True(t, line.Stats.RequiresEscort)
	assert.Equal(t, 10, line.Resistance("Musket"))
	assert.Equal(t, 100, line.MaxRange())
	require.NotNil(t, line.Stats.Stamina)
	assert.Equal(t, 100, *line.Stats.Stamina)

	hussars := cat.MustGet("Hussars")
	assert.Nil(t, hussars.Stats.Ranged)
	assert.Nil(t, cat.MustGet("Rockets").Stats.Stamina)

	assert.Equal(t, []string{"Bayonet", "Canister", "Cavalry Sabre", "Musket"}, cat.DamageSources())
}

func TestLoadCatalogWithoutResistances(t *testing.T) {
	dir := writeFiles(t, map[string]string{UnitsFile: minimalUnits})

	cat, err := LoadCatalog(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
	assert.Zero(t, cat.MustGet("Militia").Resistance("Musket"))
	assert.Equal(t, 5, cat.MustGet("Militia").DamageAt(0))
}

func TestLoadCatalogErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  error
	}{
		{"missing units", map[string]string{}, nil},
		{"malformed units", map[string]string{UnitsFile: `{"units": [`}, nil},
		{"unknown category", map[string]string{
			UnitsFile: `{"units": [{"name": "Marines", "category": "Navy", "stats": {"gold_cost": 1}}]}`,
		}, nil},
		{"resistance for unknown unit", map[string]string{
			UnitsFile:       minimalUnits,
			ResistancesFile: `{"Old Guard": [{"source": "Musket", "percent": 40}]}`,
		}, units.ErrUnknownUnit},
		{"full resistance", map[string]string{
			UnitsFile:       minimalUnits,
			ResistancesFile: `{"Militia": [{"source": "Musket", "percent": 100}]}`,
		}, units.ErrInvalidCatalog},
		{"missing escort", map[string]string{
			UnitsFile: `{"units": [{"name": "Militia", "category": "Infantry", "stats": {"gold_cost": 20, "requires_escort": true}}]}`,
		}, units.ErrInvalidCatalog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(writeFiles(t, tt.files))
			require.Error(t, err)
			if tt.want != nil {
				assert.True(t, eris.Is(err, tt.want), "got %v", err)
			}
		})
	}
}

func TestLoadReferences(t *testing.T) {
	cat, err := LoadCatalog(dataDir)
	require.NoError(t, err)

	refs, err := LoadReferences(dataDir, cat)
	require.NoError(t, err)
	require.Len(t, refs, len(army.AllModes()))

	combat := refs[army.Combat]
	require.NotNil(t, combat)
	assert.Equal(t, army.Combat, combat.Mode())
	assert.Equal(t, 18, combat.NameCount("Line Infantry"))
	// 22 eligible infantry, 4 skirmishers per 8
	assert.Equal(t, 8, combat.EscortCount())

	clash := refs[army.Clash]
	assert.Equal(t, 2, clash.EscortCount())
	assert.LessOrEqual(t, clash.NameCount(units.RifleUnitName), army.Clash.MaxRifles())
}

func TestLoadReferencesErrors(t *testing.T) {
	cat, err := LoadCatalog(dataDir)
	require.NoError(t, err)

	for name, body := range map[string]string{
		"unknown mode": `{"Skirmish": {"Hussars": 1}}`,
		"unknown unit": `{"Clash": {"Old Guard": 1}}`,
		"negative":     `{"Clash": {"Hussars": -1}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadReferences(writeFiles(t, map[string]string{ReferencesFile: body}), cat)
			assert.Error(t, err)
		})
	}
}

func TestComposeIgnoresEscortCounts(t *testing.T) {
	cat, err := LoadCatalog(dataDir)
	require.NoError(t, err)

	comp, err := Compose(army.Clash, cat, map[string]int{"Line Infantry": 4, units.EscortUnitName: 9})
	require.NoError(t, err)
	assert.Equal(t, 1, comp.EscortCount())
}
