package army

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// GameMode selects the ruleset a composition is built for
type GameMode int

const (
	Clash GameMode = iota
	Combat
	Battle
	GrandBattle
)

type modeRules struct {
	name        string
	maxRifles   int
	maxRockets  int
	escortNum   int
	escortDenom int
}

var rules = map[GameMode]modeRules{
	Clash:       {name: "Clash", maxRifles: 3, maxRockets: 1, escortNum: 1, escortDenom: 4},
	Combat:      {name: "Combat", maxRifles: 4, maxRockets: 1, escortNum: 4, escortDenom: 8},
	Battle:      {name: "Battle", maxRifles: 6, maxRockets: 2, escortNum: 2, escortDenom: 5},
	GrandBattle: {name: "GrandBattle", maxRifles: 8, maxRockets: 2, escortNum: 1, escortDenom: 3},
}

// AllModes lists every game mode
func AllModes() []GameMode {
	return []GameMode{Clash, Combat, Battle, GrandBattle}
}

func (m GameMode) rules() modeRules {
	r, ok := rules[m]
	if !ok {
		panic(fmt.Sprintf("army: unknown game mode %d", int(m)))
	}
	return r
}

// MaxRifles returns the rifle cap
func (m GameMode) MaxRifles() int { return m.rules().maxRifles }

// MaxRockets returns the rocket cap
func (m GameMode) MaxRockets() int { return m.rules().maxRockets }

// EscortRatio returns (numerator, denominator): every denominator
// escort-eligible units bring numerator escort units.
func (m GameMode) EscortRatio() (int, int) {
	r := m.rules()
	return r.escortNum, r.escortDenom
}

// EscortsFor applies the ratio to an eligible unit count, rounding down
func (m GameMode) EscortsFor(eligible int) int {
	num, den := m.EscortRatio()
	return (eligible / den) * num
}

func (m GameMode) String() string {
	if r, ok := rules[m]; ok {
		return r.name
	}
	return fmt.Sprintf("GameMode(%d)", int(m))
}

// ParseGameMode accepts names like "combat", "GrandBattle" or "grand_battle"
func ParseGameMode(s string) (GameMode, error) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
	for m, r := range rules {
		if strings.ToLower(r.name) == key {
			return m, nil
		}
	}
	return 0, eris.Errorf("unknown game mode %q", s)
}

// MarshalText encodes the mode by its name
func (m GameMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a mode name, case-insensitively
func (m *GameMode) UnmarshalText(text []byte) error {
	parsed, err := ParseGameMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
