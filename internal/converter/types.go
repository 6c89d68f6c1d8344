// Package converter maps wire DTOs to domain values and back. The DTOs are
// shared by the CLI request files and the gRPC service.
package converter

// DefaultK is used when a request leaves K unset
const DefaultK = 3

// SearchRequest is the wire form of solver.Request. Bounds and Target use
// the expression syntax of constraint.ParseBound and constraint.ParseTarget.
type SearchRequest struct {
	Mode     string      `json:"mode" mapstructure:"mode"`
	Gold     int         `json:"gold" mapstructure:"gold"`
	Manpower int         `json:"manpower" mapstructure:"manpower"`
	K        int         `json:"k,omitempty" mapstructure:"k"`
	Bounds   []string    `json:"bounds,omitempty" mapstructure:"bounds"`
	Target   string      `json:"target,omitempty" mapstructure:"target"`
	Allowed  []string    `json:"allowed,omitempty" mapstructure:"allowed"`
	// a list, not a map: config loaders fold map key case
	Preset   []UnitCount `json:"preset,omitempty" mapstructure:"preset"`
}

// UnitCount is one roster line
type UnitCount struct {
	Name  string `json:"name" mapstructure:"name"`
	Count int    `json:"count" mapstructure:"count"`
}

// Composition is the wire form of army.Composition with its headline aggregates
type Composition struct {
	Units        []UnitCount `json:"units"`
	Escorts      int         `json:"escorts"`
	TotalUnits   int         `json:"total_units"`
	Gold         int         `json:"gold"`
	Manpower     int         `json:"manpower"`
	HP           int         `json:"hp"`
	Organization int         `json:"organization"`
	MeleeAttack  int         `json:"melee_attack"`
	MeleeDefense int         `json:"melee_defense"`
	// Objective is the target score, absent for enumerated results
	Objective *int `json:"objective,omitempty"`
}

// SearchResponse carries the compositions found. Error is set when the
// search failed part way; Compositions then holds what was found before.
type SearchResponse struct {
	Mode         string        `json:"mode"`
	Target       string        `json:"target,omitempty"`
	Compositions []Composition `json:"compositions"`
	Error        string        `json:"error,omitempty"`
}

type UnitsRequest struct{}

// Unit is the wire form of a catalog template
type Unit struct {
	Name           string         `json:"name"`
	Category       string         `json:"category"`
	GoldCost       int            `json:"gold_cost"`
	ManpowerCost   int            `json:"manpower_cost"`
	HP             int            `json:"hp"`
	Organization   int            `json:"organization"`
	Stamina        *int           `json:"stamina,omitempty"`
	MeleeAttack    int            `json:"melee_attack"`
	MeleeDefense   int            `json:"melee_defense"`
	MaxRange       int            `json:"max_range"`
	RequiresEscort bool           `json:"requires_escort"`
	Resistances    map[string]int `json:"resistances,omitempty"`
}

type UnitsResponse struct {
	Units         []Unit   `json:"units"`
	DamageSources []string `json:"damage_sources"`
}
