package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/napolitain/lob-optimizer/internal/army"
	"github.com/napolitain/lob-optimizer/internal/constraint"
	"github.com/napolitain/lob-optimizer/internal/converter"
	"github.com/napolitain/lob-optimizer/internal/loader"
	"github.com/napolitain/lob-optimizer/internal/solver"
	"github.com/napolitain/lob-optimizer/internal/units"
)

type batchOptions struct {
	target    string
	percent   int
	rangeStep int
	k         int
	jobs      int
	timeout   time.Duration
}

func newBatchCmd(g *globalFlags) *cobra.Command {
	var (
		opts   batchOptions
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Beat the reference army of every game mode",
		Long: `Batch searches, for every game mode, an army that costs no more than the
mode's reference army and keeps at least --percent of its melee, ranged
and effective HP profile, maximizing --target. Modes run concurrently, but
the solver works through one model at a time, so with several jobs a
mode's --timeout also covers time spent waiting for it. A mode that runs
out of time reports the compositions it found so far.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := g.catalog()
			if err != nil {
				return err
			}
			refs, err := loader.LoadReferences(g.dataDir, cat)
			if err != nil {
				return err
			}
			logger, err := g.logger()
			if err != nil {
				return err
			}

			responses, err := runBatch(cmd.Context(), cat, refs, opts, logger)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(responses)
			}
			g.banner("Reference Batch")
			for _, resp := range responses {
				successColor.Printf("== %s ==\n", resp.Mode)
				printResponse(resp)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.target, "target", "hp", "Objective to maximize")
	f.IntVar(&opts.percent, "percent", 100, "Share of the reference profile to keep")
	f.IntVar(&opts.rangeStep, "range-step", 50, "Distance between ranged damage floors")
	f.IntVarP(&opts.k, "k", "k", 1, "Compositions per mode")
	f.IntVar(&opts.jobs, "jobs", 0, "Concurrent searches, 0 for one per mode")
	f.DurationVar(&opts.timeout, "timeout", time.Minute, "Time limit per mode, 0 for none")
	f.BoolVar(&asJSON, "json", false, "Print the responses as JSON")
	return cmd
}

// referenceRequest builds the search that beats ref within its own cost
func referenceRequest(cat *units.Catalog, ref *army.Composition, opts batchOptions) (solver.Request, error) {
	target, err := constraint.ParseTarget(opts.target)
	if err != nil {
		return solver.Request{}, err
	}
	floors := constraint.FloorsFrom(ref, opts.percent, opts.rangeStep)
	con, err := constraint.New(cat, append(floors, constraint.WithTarget(target))...)
	if err != nil {
		return solver.Request{}, err
	}
	return solver.Request{
		Catalog:    cat,
		Mode:       ref.Mode(),
		Budget:     constraint.Budget{Gold: ref.GoldCost(), Manpower: ref.ManpowerCost()},
		Constraint: con,
		K:          opts.k,
	}, nil
}

// runBatch searches every mode that has a reference army. Each search owns
// its request, so they share nothing but the read-only catalog.
func runBatch(ctx context.Context, cat *units.Catalog, refs map[army.GameMode]*army.Composition, opts batchOptions, logger zerolog.Logger) ([]*converter.SearchResponse, error) {
	if opts.rangeStep <= 0 {
		return nil, eris.Errorf("range step must be positive, got %d", opts.rangeStep)
	}

	var modes []army.GameMode
	for _, m := range army.AllModes() {
		if refs[m] != nil {
			modes = append(modes, m)
		}
	}

	responses := make([]*converter.SearchResponse, len(modes))
	eg, ctx := errgroup.WithContext(ctx)
	if opts.jobs > 0 {
		eg.SetLimit(opts.jobs)
	}
	for i, mode := range modes {
		i, mode := i, mode
		eg.Go(func() error {
			req, err := referenceRequest(cat, refs[mode], opts)
			if err != nil {
				return eris.Wrapf(err, "%s", mode)
			}
			log := logger.With().Str("mode", mode.String()).Logger()
			sctx, cancel := ctx, context.CancelFunc(func() {})
			if opts.timeout > 0 {
				sctx, cancel = context.WithTimeout(ctx, opts.timeout)
			}
			defer cancel()
			found, err := solver.Search(sctx, req, solver.WithLogger(log))
			if err != nil {
				log.Warn().Err(err).Int("found", len(found)).Msg("search stopped early")
			}
			responses[i] = converter.ToResponse(req, found, err)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}
