package units

import "fmt"

// RangedBand is a distance interval [Start, End] over which the damage
// modifier moves linearly from StartModifier to EndModifier (percent).
type RangedBand struct {
	RangedAttack   int
	Start          int
	End            int
	StartModifier  int
	EndModifier    int
	OrgDamageRatio int
}

// Contains reports whether r lies inside the band, both ends inclusive
func (b RangedBand) Contains(r int) bool {
	return r >= b.Start && r <= b.End
}

// DamageAt returns the interpolated damage at r, truncated toward zero.
// A zero-width band is malformed data and panics.
func (b RangedBand) DamageAt(r int) int {
	if !b.Contains(r) {
		return 0
	}
	width := int64(b.End - b.Start)
	if width == 0 {
		panic(fmt.Sprintf("units: ranged band [%d,%d] has zero width", b.Start, b.End))
	}
	// attack * (1 + modifier/100) with modifier = start - (start-end) * (r-start)/width
	num := int64(b.RangedAttack) * (100*width + int64(b.StartModifier)*width -
		int64(b.StartModifier-b.EndModifier)*int64(r-b.Start))
	return int(num / (100 * width))
}

// RangedProfile is an ordered list of bands; the first band containing a
// distance wins.
type RangedProfile struct {
	Bands []RangedBand
}

func (p *RangedProfile) bandAt(r int) (RangedBand, bool) {
	for _, b := range p.Bands {
		if b.Contains(r) {
			return b, true
		}
	}
	return RangedBand{}, false
}

// DamageAt returns damage at r, 0 outside every band
func (p *RangedProfile) DamageAt(r int) int {
	b, ok := p.bandAt(r)
	if !ok {
		return 0
	}
	return b.DamageAt(r)
}

// OrgRatioAt returns the organization-damage ratio of the band covering r
func (p *RangedProfile) OrgRatioAt(r int) int {
	b, ok := p.bandAt(r)
	if !ok {
		return 0
	}
	return b.OrgDamageRatio
}

// ODPAt returns organization-damage potential at r
func (p *RangedProfile) ODPAt(r int) int {
	return p.OrgRatioAt(r) * p.DamageAt(r)
}

// AverageDamage returns the mean of DamageAt over [from, to).
// from == to yields the point value; from > to yields 0.
func (p *RangedProfile) AverageDamage(from, to int) int {
	return p.average(from, to, p.DamageAt)
}

// AverageODP returns the mean of ODPAt over [from, to) with the same
// degenerate-band policy as AverageDamage.
func (p *RangedProfile) AverageODP(from, to int) int {
	return p.average(from, to, p.ODPAt)
}

func (p *RangedProfile) average(from, to int, value func(int) int) int {
	switch {
	case from == to:
		return value(from)
	case from > to:
		return 0
	}
	total := 0
	for r := from; r < to; r++ {
		total += value(r)
	}
	return total / (to - from)
}

// MaxRange returns the largest band end
func (p *RangedProfile) MaxRange() int {
	max := 0
	for _, b := range p.Bands {
		if b.End > max {
			max = b.End
		}
	}
	return max
}
