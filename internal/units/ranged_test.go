package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func musketBand() RangedBand {
	return RangedBand{RangedAttack: 10, Start: 0, End: 100, StartModifier: 0, EndModifier: -50, OrgDamageRatio: 2}
}

func TestBandInterpolation(t *testing.T) {
	b := musketBand()

	assert.Equal(t, 10, b.DamageAt(0))
	assert.Equal(t, 5, b.DamageAt(100))
	assert.Equal(t, 7, b.DamageAt(50)) // 7.5 truncated
	assert.Equal(t, 0, b.DamageAt(101))
	assert.Equal(t, 0, b.DamageAt(-1))
}

func TestBandPositiveModifier(t *testing.T) {
	b := RangedBand{RangedAttack: 20, Start: 50, End: 150, StartModifier: 50, EndModifier: 0}

	assert.Equal(t, 30, b.DamageAt(50))
	assert.Equal(t, 25, b.DamageAt(100))
	assert.Equal(t, 20, b.DamageAt(150))
}

func TestZeroWidthBandPanics(t *testing.T) {
	b := RangedBand{RangedAttack: 10, Start: 40, End: 40}
	assert.Panics(t, func() { b.DamageAt(40) })
	// outside the band the degenerate width is never touched
	assert.Equal(t, 0, b.DamageAt(41))
}

func TestProfileFirstBandWins(t *testing.T) {
	p := &RangedProfile{Bands: []RangedBand{
		{RangedAttack: 10, Start: 0, End: 50, OrgDamageRatio: 3},
		{RangedAttack: 4, Start: 50, End: 200, OrgDamageRatio: 1},
	}}

	assert.Equal(t, 10, p.DamageAt(50))
	assert.Equal(t, 3, p.OrgRatioAt(50))
	assert.Equal(t, 4, p.DamageAt(51))
	assert.Equal(t, 4, p.ODPAt(51))
	assert.Equal(t, 0, p.DamageAt(201))
	assert.Equal(t, 200, p.MaxRange())
}

func TestAverageOverBand(t *testing.T) {
	p := &RangedProfile{Bands: []RangedBand{musketBand()}}

	for _, r := range []int{0, 13, 50, 100} {
		assert.Equal(t, p.DamageAt(r), p.AverageDamage(r, r), "point band at %d", r)
		assert.Equal(t, p.ODPAt(r), p.AverageODP(r, r), "point odp band at %d", r)
	}
	assert.Equal(t, 0, p.AverageDamage(60, 20))
	assert.Equal(t, 0, p.AverageODP(60, 20))

	sum := 0
	for r := 0; r < 10; r++ {
		sum += p.DamageAt(r)
	}
	assert.Equal(t, sum/10, p.AverageDamage(0, 10))
}

func TestAverageIncludesOutOfRangeAsZero(t *testing.T) {
	p := &RangedProfile{Bands: []RangedBand{{RangedAttack: 10, Start: 0, End: 9}}}

	// ten points in range at 10 damage, ten points past the band at 0
	require.Equal(t, 5, p.AverageDamage(0, 20))
}

func FuzzBandWithinModifierRange(f *testing.F) {
	f.Add(10, 0, 100, 0, -50, 50)
	f.Add(40, 20, 300, 25, -25, 120)
	f.Add(1, 0, 1, 99, -99, 1)

	f.Fuzz(func(t *testing.T, attack, start, width, startMod, endMod, offset int) {
		if attack < 0 || attack > 10000 || width <= 0 || width > 10000 || start < -10000 || start > 10000 {
			return
		}
		if startMod < -100 || startMod > 1000 || endMod < -100 || endMod > 1000 {
			return
		}
		if offset < 0 || offset > width {
			return
		}
		b := RangedBand{RangedAttack: attack, Start: start, End: start + width, StartModifier: startMod, EndModifier: endMod}
		got := b.DamageAt(start + offset)

		lo, hi := startMod, endMod
		if lo > hi {
			lo, hi = hi, lo
		}
		minDamage := attack*(100+lo)/100 - 1
		maxDamage := attack*(100+hi)/100 + 1
		if got < minDamage || got > maxDamage {
			t.Errorf("damage %d outside [%d,%d] for %+v at %d", got, minDamage, maxDamage, b, start+offset)
		}
	})
}
