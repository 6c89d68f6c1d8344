package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/napolitain/lob-optimizer/internal/loader"
	"github.com/napolitain/lob-optimizer/internal/logging"
	"github.com/napolitain/lob-optimizer/internal/units"
)

type globalFlags struct {
	dataDir  string
	logLevel string
	pretty   bool
	quiet    bool
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("14")).
			Padding(0, 2)

	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorColor.Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "lob",
		Short: "Lines of Battle army optimizer",
		Long: `Finds the best army compositions for a Lines of Battle game mode under
a gold and manpower budget, optionally extending a preset army.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.dataDir, "data", "data", "Path to data directory")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&g.pretty, "pretty", true, "Human-readable logs")
	rootCmd.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "Do not print the banner")

	rootCmd.AddCommand(
		newUnitsCmd(g),
		newSearchCmd(g),
		newBatchCmd(g),
		newReferenceCmd(g),
	)
	return rootCmd
}

func (g *globalFlags) logger() (zerolog.Logger, error) {
	logger, err := logging.New(g.logLevel, g.pretty)
	if err != nil {
		return logger, err
	}
	return logger.With().Str("run_id", uuid.NewString()).Logger(), nil
}

func (g *globalFlags) catalog() (*units.Catalog, error) {
	return loader.LoadCatalog(g.dataDir)
}

func (g *globalFlags) banner(subtitle string) {
	if g.quiet {
		return
	}
	fmt.Println(titleStyle.Render("Lines of Battle\n" + subtitle))
	fmt.Println()
}

func newUnitsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "List the unit catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := g.catalog()
			if err != nil {
				return err
			}
			g.banner("Unit Catalog")
			printCatalog(cat)
			return nil
		},
	}
}
