package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/converter"
	"github.com/napolitain/lob-optimizer/internal/solver"
	"github.com/napolitain/lob-optimizer/internal/units"
)

func printCatalog(cat *units.Catalog) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Unit", "Category", "Gold", "Manpower", "HP", "Org", "Stamina", "Melee Atk", "Melee Def", "Range", "Escort"}),
	)
	for _, u := range cat.Units() {
		stamina := "-"
		if u.Stats.Stamina != nil {
			stamina = strconv.Itoa(*u.Stats.Stamina)
		}
		escort := ""
		if u.Stats.RequiresEscort {
			escort = "yes"
		}
		table.Append([]string{
			u.Name,
			u.Category.String(),
			strconv.Itoa(u.Stats.GoldCost),
			strconv.Itoa(u.Stats.ManpowerCost),
			strconv.Itoa(u.Stats.HP),
			strconv.Itoa(u.Stats.Organization),
			stamina,
			strconv.Itoa(u.Stats.MeleeAttack),
			strconv.Itoa(u.Stats.MeleeDefense),
			strconv.Itoa(u.MaxRange()),
			escort,
		})
	}
	table.Render()

	fmt.Printf("\nDamage sources: %s\n", strings.Join(cat.DamageSources(), ", "))
}

func printRequest(req solver.Request) {
	fmt.Printf("Mode:     %s (rifles ≤ %d, rockets ≤ %d)\n", req.Mode, req.Mode.MaxRifles(), req.Mode.MaxRockets())
	fmt.Printf("Budget:   %d gold, %d manpower\n", req.Budget.Gold, req.Budget.Manpower)
	if req.Constraint.Target != nil {
		fmt.Printf("Target:   maximize %s, best %d\n", req.Constraint.Target, req.K)
	} else {
		fmt.Printf("Target:   none, first %d feasible\n", req.K)
	}
	for _, b := range req.Constraint.Expressions() {
		fmt.Printf("Bound:    %s\n", b)
	}
	if req.Preset != nil && !req.Preset.IsEmpty() {
		fmt.Printf("Preset:   %s\n", req.Preset)
	}
	fmt.Println()
}

func printResponse(resp *converter.SearchResponse) {
	if len(resp.Compositions) == 0 {
		warnColor.Println("No composition satisfies the constraints.")
	}
	for i, c := range resp.Compositions {
		header := fmt.Sprintf("#%d", i+1)
		if c.Objective != nil {
			header += fmt.Sprintf("  %s = %d", resp.Target, *c.Objective)
		}
		successColor.Println(header)
		printComposition(c)
		fmt.Println()
	}
	if resp.Error != "" {
		warnColor.Printf("Stopped after %d compositions: %s\n", len(resp.Compositions), resp.Error)
	}
}

func printComposition(c converter.Composition) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Unit", "Count"}),
	)
	for _, u := range c.Units {
		table.Append([]string{u.Name, strconv.Itoa(u.Count)})
	}
	table.Render()

	fmt.Printf("   Units: %d (%d escorts)  Gold: %d  Manpower: %d\n", c.TotalUnits, c.Escorts, c.Gold, c.Manpower)
	fmt.Printf("   HP: %d  Org: %d  Melee: %d/%d\n", c.HP, c.Organization, c.MeleeAttack, c.MeleeDefense)
}

// printAggregates shows the per-range and per-source profile of an army
func printAggregates(c *army.Composition, rangeStep int) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Range", "Damage", "ODP"}),
	)
	for r := 0; r < c.MaxRange(); r += rangeStep {
		table.Append([]string{strconv.Itoa(r), strconv.Itoa(c.RangedDamageAt(r)), strconv.Itoa(c.ODPAt(r))})
	}
	table.Render()

	for _, src := range c.Catalog().DamageSources() {
		fmt.Printf("   EHP vs %-14s %d\n", src+":", c.EHPVs(src))
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
