package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/converter"
	"github.com/napolitain/lob-optimizer/internal/loader"
)

func newReferenceCmd(g *globalFlags) *cobra.Command {
	var rangeStep int
	cmd := &cobra.Command{
		Use:   "reference [mode]",
		Short: "Show the reference army of a game mode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rangeStep <= 0 {
				return eris.Errorf("range step must be positive, got %d", rangeStep)
			}
			cat, err := g.catalog()
			if err != nil {
				return err
			}
			refs, err := loader.LoadReferences(g.dataDir, cat)
			if err != nil {
				return err
			}

			modes := army.AllModes()
			if len(args) == 1 {
				mode, err := army.ParseGameMode(args[0])
				if err != nil {
					return err
				}
				modes = []army.GameMode{mode}
			}

			g.banner("Reference Armies")
			for _, mode := range modes {
				ref, ok := refs[mode]
				if !ok {
					warnColor.Printf("No reference army for %s\n", mode)
					continue
				}
				successColor.Printf("== %s ==\n", mode)
				printComposition(converter.FromComposition(ref, nil))
				printAggregates(ref, rangeStep)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&rangeStep, "range-step", 50, "Distance between damage rows")
	return cmd
}
