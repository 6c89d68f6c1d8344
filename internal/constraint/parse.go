package constraint

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"

	"github.com/napolitain/lob-optimizer/internal/units"
)

var ErrParse = eris.New("cannot parse expression")

// Grammar for bound and target expressions:
//
//	min infantry 5
//	max rifles 2
//	min damage@120 400
//	min melee_attack(Cavalry) 300
//	min ehp("Musket") 9000
//	avg_odp[20:40]

type bandExpr struct {
	From int `parser:"@Int \":\""`
	To   int `parser:"@Int"`
}

type qualifierExpr struct {
	At   *int      `parser:"  \"@\" @Int"`
	Band *bandExpr `parser:"| \"[\" @@ \"]\""`
	Args []string  `parser:"| \"(\" @(String | Ident) (\",\" @(String | Ident))* \")\""`
}

type metricExpr struct {
	Name      string         `parser:"@Ident"`
	Qualifier *qualifierExpr `parser:"@@?"`
}

type boundExpr struct {
	Kind   string      `parser:"@(\"min\" | \"max\")"`
	Metric *metricExpr `parser:"@@"`
	Value  int         `parser:"@Int"`
}

var (
	boundParser  = participle.MustBuild[boundExpr](participle.Unquote("String"))
	targetParser = participle.MustBuild[metricExpr](participle.Unquote("String"))
)

func (m *metricExpr) at() (int, bool) {
	if m.Qualifier == nil || m.Qualifier.At == nil {
		return 0, false
	}
	return *m.Qualifier.At, true
}

func (m *metricExpr) band() (*bandExpr, bool) {
	if m.Qualifier == nil || m.Qualifier.Band == nil {
		return nil, false
	}
	return m.Qualifier.Band, true
}

func (m *metricExpr) args() []string {
	if m.Qualifier == nil {
		return nil
	}
	return m.Qualifier.Args
}

func (m *metricExpr) plain() bool {
	return m.Qualifier == nil
}

// ParseBound parses one "min|max metric value" expression into an Option
func ParseBound(s string) (Option, error) {
	expr, err := boundParser.ParseString("", s)
	if err != nil {
		return nil, eris.Wrapf(ErrParse, "%q: %v", s, err)
	}
	m, n := expr.Metric, expr.Value
	name := strings.ToLower(m.Name)
	isMin := expr.Kind == "min"

	if cat, err := units.ParseCategory(name); err == nil && m.plain() {
		if isMin {
			return WithMinCount(cat, n), nil
		}
		return WithMaxCount(cat, n), nil
	}

	if !isMin {
		switch {
		case name == "rifles" && m.plain():
			return WithMaxRifles(n), nil
		case name == "rockets" && m.plain():
			return WithMaxRockets(n), nil
		}
		return nil, eris.Wrapf(ErrParse, "%q: no maximum bound on %s", s, m.Name)
	}

	switch name {
	case "hp":
		if m.plain() {
			return WithMinHP(n), nil
		}
	case "gold":
		if m.plain() {
			return WithMinGold(n), nil
		}
	case "manpower":
		if m.plain() {
			return WithMinManpower(n), nil
		}
	case "melee_attack", "melee_defense":
		if _, ok := m.at(); ok {
			break
		}
		if _, ok := m.band(); ok {
			break
		}
		cats, err := parseCategories(m.args())
		if err != nil {
			return nil, eris.Wrapf(ErrParse, "%q: %v", s, err)
		}
		if name == "melee_attack" {
			return WithMinMeleeAttack(n, cats...), nil
		}
		return WithMinMeleeDefense(n, cats...), nil
	case "damage":
		if r, ok := m.at(); ok {
			return WithMinDamageAt(r, n), nil
		}
	case "ehp":
		if args := m.args(); len(args) == 1 {
			return WithMinEHPVs(args[0], n), nil
		}
	}
	return nil, eris.Wrapf(ErrParse, "%q: unsupported bound", s)
}

// ParseTarget parses an objective such as "hp", "damage@120" or "avg_odp[20:40]"
func ParseTarget(s string) (Target, error) {
	m, err := targetParser.ParseString("", s)
	if err != nil {
		return nil, eris.Wrapf(ErrParse, "%q: %v", s, err)
	}
	name := strings.ToLower(m.Name)

	switch name {
	case "hp":
		if m.plain() {
			return HP{}, nil
		}
	case "organization", "org":
		if m.plain() {
			return Organization{}, nil
		}
	case "melee_attack":
		if m.plain() {
			return MeleeAttack{}, nil
		}
	case "melee_defense":
		if m.plain() {
			return MeleeDefense{}, nil
		}
	case "damage":
		if r, ok := m.at(); ok {
			return DamageAt{Range: r}, nil
		}
	case "odp":
		if r, ok := m.at(); ok {
			return ODPAt{Range: r}, nil
		}
	case "avg_damage":
		if b, ok := m.band(); ok {
			return DamageOverBand{From: b.From, To: b.To}, nil
		}
	case "avg_odp":
		if b, ok := m.band(); ok {
			return ODPOverBand{From: b.From, To: b.To}, nil
		}
	case "ehp":
		if args := m.args(); len(args) == 1 {
			return EHPVs{Source: args[0]}, nil
		}
	}
	return nil, eris.Wrapf(ErrParse, "%q: unsupported target", s)
}

func parseCategories(names []string) ([]units.Category, error) {
	cats := make([]units.Category, 0, len(names))
	for _, n := range names {
		c, err := units.ParseCategory(n)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// Expressions renders every bound as a parseable expression, in a stable order
func (c Constraint) Expressions() []string {
	var out []string
	add := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }

	for _, cat := range SortedCategories(c.MinCount) {
		add("min %s %d", categoryToken(cat), c.MinCount[cat])
	}
	for _, cat := range SortedCategories(c.MaxCount) {
		add("max %s %d", categoryToken(cat), c.MaxCount[cat])
	}
	if c.MaxRifles != nil {
		add("max rifles %d", *c.MaxRifles)
	}
	if c.MaxRockets != nil {
		add("max rockets %d", *c.MaxRockets)
	}
	if c.MinHP != nil {
		add("min hp %d", *c.MinHP)
	}
	if c.MinMeleeAttack != nil {
		add("min melee_attack %d", *c.MinMeleeAttack)
	}
	if c.MinMeleeDefense != nil {
		add("min melee_defense %d", *c.MinMeleeDefense)
	}
	for _, f := range c.MinMeleeAttackFor {
		add("min melee_attack(%s) %d", categoryList(f.Categories), f.Min)
	}
	for _, f := range c.MinMeleeDefenseFor {
		add("min melee_defense(%s) %d", categoryList(f.Categories), f.Min)
	}
	for _, f := range c.MinDamageAt {
		add("min damage@%d %d", f.Range, f.Min)
	}
	for _, f := range c.MinEHPVs {
		add("min ehp(%q) %d", f.Source, f.Min)
	}
	if c.MinGold != nil {
		add("min gold %d", *c.MinGold)
	}
	if c.MinManpower != nil {
		add("min manpower %d", *c.MinManpower)
	}
	return out
}

func categoryToken(c units.Category) string {
	if c == units.SkirmishInfantry {
		return "skirmish_infantry"
	}
	return strings.ToLower(c.String())
}

func categoryList(cats []units.Category) string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
