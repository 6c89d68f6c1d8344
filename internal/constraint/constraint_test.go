package constraint_test

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/constraint"
	"github.com/napolitain/lob-optimizer/internal/units"
	"github.com/napolitain/lob-optimizer/internal/units/unitstest"
)

func lineAndHussars(t *testing.T, line, hussars int) *army.Composition {
	t.Helper()
	c := army.New(army.Clash, unitstest.Catalog(t))
	c.AddNByName(unitstest.LineInfantry, line)
	c.AddNByName(unitstest.Hussars, hussars)
	return c
}

func TestNewValidates(t *testing.T) {
	cat := unitstest.Catalog(t)
	tests := []struct {
		name string
		opts []constraint.Option
		want error
	}{
		{"unknown damage source", []constraint.Option{constraint.WithMinEHPVs("Bayonet", 10)}, constraint.ErrInvalidReference},
		{"unknown allowed unit", []constraint.Option{constraint.WithAllowed("Old Guard")}, constraint.ErrInvalidReference},
		{"target source", []constraint.Option{constraint.WithTarget(constraint.EHPVs{Source: "Lance"})}, constraint.ErrInvalidReference},
		{"min above max", []constraint.Option{
			constraint.WithMinCount(units.Cavalry, 5),
			constraint.WithMaxCount(units.Cavalry, 2),
		}, constraint.ErrInvalidBound},
		{"negative cap", []constraint.Option{constraint.WithMaxRifles(-1)}, constraint.ErrInvalidBound},
		{"negative range", []constraint.Option{constraint.WithMinDamageAt(-5, 10)}, constraint.ErrInvalidBound},
		{"negative band", []constraint.Option{constraint.WithTarget(constraint.ODPOverBand{From: -1, To: 4})}, constraint.ErrInvalidBound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := constraint.New(cat, tt.opts...)
			require.Error(t, err)
			assert.True(t, eris.Is(err, tt.want), "got %v", err)
		})
	}

	c, err := constraint.New(cat,
		constraint.WithMinEHPVs("Musket", 100),
		constraint.WithAllowed(unitstest.Hussars),
		constraint.WithTarget(constraint.DamageOverBand{From: 40, To: 20}),
	)
	require.NoError(t, err)
	assert.True(t, c.Allows(unitstest.Hussars))
	assert.False(t, c.Allows(unitstest.LineInfantry))
}

func TestViolates(t *testing.T) {
	cat := unitstest.Catalog(t)
	comp := lineAndHussars(t, 4, 2)

	tests := []struct {
		name     string
		opt      constraint.Option
		violated bool
	}{
		{"min infantry met", constraint.WithMinCount(units.Infantry, 4), false},
		{"min infantry missed", constraint.WithMinCount(units.Infantry, 5), true},
		{"max cavalry met", constraint.WithMaxCount(units.Cavalry, 2), false},
		{"max cavalry exceeded", constraint.WithMaxCount(units.Cavalry, 1), true},
		{"hp includes escort", constraint.WithMinHP(4*1000 + 2*800 + 300), false},
		{"hp missed", constraint.WithMinHP(6000), true},
		{"cavalry attack", constraint.WithMinMeleeAttack(41, units.Cavalry), true},
		{"infantry attack", constraint.WithMinMeleeAttack(40, units.Infantry), false},
		{"ehp", constraint.WithMinEHPVs("Musket", 4*1111+2*800+428), false},
		{"ehp missed", constraint.WithMinEHPVs("Musket", 4*1111+2*800+429), true},
		{"gold", constraint.WithMinGold(4*50 + 2*60 + 1), true},
		{"allow-list ignores escort", constraint.WithAllowed(unitstest.LineInfantry, unitstest.Hussars), false},
		{"allow-list", constraint.WithAllowed(unitstest.LineInfantry), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := constraint.New(cat, tt.opt)
			require.NoError(t, err)
			assert.Equal(t, tt.violated, c.Violates(comp))
			assert.Equal(t, tt.violated, len(c.Violations(comp)) > 0)
		})
	}
}

func TestViolatesModeCaps(t *testing.T) {
	cat := unitstest.Catalog(t)
	comp := army.New(army.Clash, cat)
	comp.AddNByName(units.RifleUnitName, 3)

	var none constraint.Constraint
	assert.False(t, none.Violates(comp))

	comp.AddByName(units.RifleUnitName)
	assert.True(t, none.Violates(comp), "Clash allows three rifles")

	tighter, err := constraint.New(cat, constraint.WithMaxRifles(2))
	require.NoError(t, err)
	comp.RemoveByName(units.RifleUnitName)
	assert.True(t, tighter.Violates(comp))

	looser, err := constraint.New(cat, constraint.WithMaxRifles(10))
	require.NoError(t, err)
	assert.Equal(t, 3, looser.NamedCaps(army.Clash)[units.RifleUnitName])
}

func TestViolationsListsEveryBreach(t *testing.T) {
	cat := unitstest.Catalog(t)
	c, err := constraint.New(cat,
		constraint.WithMinCount(units.Artillery, 1),
		constraint.WithMinHP(1_000_000),
		constraint.WithMinDamageAt(50, 1_000_000),
	)
	require.NoError(t, err)
	assert.Len(t, c.Violations(lineAndHussars(t, 4, 2)), 3)
}

func TestTargetsAreLinear(t *testing.T) {
	comp := lineAndHussars(t, 5, 3)
	comp.AddNByName(unitstest.Artillery6lb, 2)

	targets := []constraint.Target{
		constraint.HP{},
		constraint.Organization{},
		constraint.MeleeAttack{},
		constraint.MeleeDefense{},
		constraint.DamageAt{Range: 40},
		constraint.ODPAt{Range: 40},
		constraint.DamageOverBand{From: 20, To: 80},
		constraint.ODPOverBand{From: 20, To: 80},
		constraint.EHPVs{Source: "Musket"},
	}
	for _, target := range targets {
		t.Run(target.String(), func(t *testing.T) {
			sum := 0
			for _, e := range comp.Entries() {
				sum += target.UnitScore(e.Unit) * e.Count
			}
			assert.Equal(t, sum, target.Score(comp))
		})
	}
}

func TestSubtractPreset(t *testing.T) {
	cat := unitstest.Catalog(t)
	preset := army.New(army.Clash, cat)
	preset.AddNByName(units.RifleUnitName, 2)
	preset.AddNByName(unitstest.LineInfantry, 3)
	preset.AddByName(unitstest.Hussars)

	c, err := constraint.New(cat,
		constraint.WithMinCount(units.Infantry, 4),
		constraint.WithMinCount(units.Artillery, 2),
		constraint.WithMaxCount(units.Cavalry, 0),
		constraint.WithMinHP(5000),
		constraint.WithMinMeleeAttack(500),
		constraint.WithMinDamageAt(50, 100),
		constraint.WithTarget(constraint.HP{}),
	)
	require.NoError(t, err)

	rest := c.SubtractPreset(preset)

	assert.Equal(t, 0, rest.MinCount[units.Infantry], "rifles count as infantry")
	assert.Equal(t, 2, rest.MinCount[units.Artillery])
	assert.Equal(t, -1, rest.MaxCount[units.Cavalry], "exceeded maximum stays negative")
	require.NotNil(t, rest.MaxRifles)
	assert.Equal(t, 1, *rest.MaxRifles)
	require.NotNil(t, rest.MaxRockets)
	assert.Equal(t, 1, *rest.MaxRockets)
	assert.Equal(t, 0, *rest.MinHP)
	assert.Equal(t, 500-preset.MeleeAttack(), *rest.MinMeleeAttack)
	assert.Equal(t, max(0, 100-preset.RangedDamageAt(50)), rest.MinDamageAt[0].Min)
	assert.Equal(t, constraint.HP{}, rest.Target)

	// the input is untouched
	assert.Equal(t, 4, c.MinCount[units.Infantry])
	assert.Equal(t, 5000, *c.MinHP)
	assert.Nil(t, c.MaxRifles)

	budget := constraint.Budget{Gold: 1000, Manpower: 2000}.Subtract(preset)
	assert.Equal(t, constraint.Budget{Gold: 1000 - 390, Manpower: 2000 - 700}, budget)
}

func TestSubtractEmptyPreset(t *testing.T) {
	cat := unitstest.Catalog(t)
	c, err := constraint.New(cat, constraint.WithMinHP(10))
	require.NoError(t, err)

	rest := c.SubtractPreset(army.New(army.Battle, cat))
	assert.Equal(t, c, rest)
}

func TestFloorsFrom(t *testing.T) {
	cat := unitstest.Catalog(t)
	ref := lineAndHussars(t, 4, 2)

	c, err := constraint.New(cat, constraint.FloorsFrom(ref, 50, 50)...)
	require.NoError(t, err)

	require.NotNil(t, c.MinMeleeAttack)
	assert.Equal(t, (40+40+4)/2, *c.MinMeleeAttack)
	require.Len(t, c.MinMeleeAttackFor, 1)
	assert.Equal(t, 20, c.MinMeleeAttackFor[0].Min)
	assert.Equal(t, []units.Category{units.Cavalry}, c.MinMeleeAttackFor[0].Categories)

	ranges := []int{}
	for _, f := range c.MinDamageAt {
		ranges = append(ranges, f.Range)
	}
	assert.Equal(t, []int{0, 50}, ranges)
	assert.Len(t, c.MinEHPVs, len(cat.DamageSources()))

	assert.False(t, c.Violates(ref))
	assert.True(t, c.Violates(army.New(army.Clash, cat)))
}
