package main

import (
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/napolitain/lob-optimizer/internal/converter"
	"github.com/napolitain/lob-optimizer/internal/solver"
)

// EnvPrefix scopes the environment overrides, e.g. LOB_GOLD=800
const EnvPrefix = "LOB"

func newSearchCmd(g *globalFlags) *cobra.Command {
	var (
		configFile string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the best compositions for one game mode",
		Long: `Search runs the integer-program optimizer when a target is given and the
enumerator otherwise. Settings come from flags, a request file (--config,
YAML or JSON) and LOB_ environment variables, flags taking precedence.

Bounds use the expression syntax, one per --bounds flag:
  min infantry 6 | max rifles 2 | min hp 20000 | min melee_attack(Cavalry) 80
  min damage@100 300 | min ehp("Musket") 30000
Targets: hp, org, melee_attack, melee_defense, damage@R, odp@R,
  avg_damage[a:b], avg_odp[a:b], ehp("Source")`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadSearchRequest(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			cat, err := g.catalog()
			if err != nil {
				return err
			}
			req, err := converter.ToRequest(in, cat)
			if err != nil {
				return err
			}
			logger, err := g.logger()
			if err != nil {
				return err
			}

			if !asJSON {
				g.banner("Army Search")
				printRequest(req)
			}
			found, searchErr := solver.Search(cmd.Context(), req, solver.WithLogger(logger))
			resp := converter.ToResponse(req, found, searchErr)
			if asJSON {
				return printJSON(resp)
			}
			printResponse(resp)
			return searchErr
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "Search request file (yaml, json, toml)")
	f.BoolVar(&asJSON, "json", false, "Print the response as JSON")
	f.String("mode", "clash", "Game mode: clash, combat, battle, grand_battle")
	f.Int("gold", 0, "Gold budget")
	f.Int("manpower", 0, "Manpower budget")
	f.IntP("k", "k", converter.DefaultK, "Number of compositions")
	f.StringArray("bounds", nil, "Bound expression (repeatable)")
	f.String("target", "", "Objective to maximize; empty enumerates feasible armies")
	f.StringSlice("allowed", nil, "Restrict purchases to these units")
	f.StringToInt("preset", nil, "Units already in the army, e.g. \"Line Infantry=4\"")
	return cmd
}

// loadSearchRequest layers the request file, LOB_ environment variables and
// explicitly set flags, in increasing precedence.
func loadSearchRequest(flags *pflag.FlagSet, configFile string) (converter.SearchRequest, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"mode", "gold", "manpower", "k", "bounds", "target", "allowed"} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return converter.SearchRequest{}, eris.Wrapf(err, "binding flag %s", key)
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return converter.SearchRequest{}, eris.Wrapf(err, "reading %s", configFile)
		}
	}

	var in converter.SearchRequest
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		// bounds may contain commas, so list env values are split on ';'
		mapstructure.StringToSliceHookFunc(";"),
	))
	if err := v.Unmarshal(&in, hook); err != nil {
		return converter.SearchRequest{}, eris.Wrap(err, "decoding search request")
	}

	if flags.Changed("preset") {
		preset, err := flags.GetStringToInt("preset")
		if err != nil {
			return converter.SearchRequest{}, eris.Wrap(err, "preset flag")
		}
		in.Preset = presetList(preset)
	}
	return in, nil
}

func presetList(counts map[string]int) []converter.UnitCount {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]converter.UnitCount, 0, len(names))
	for _, name := range names {
		out = append(out, converter.UnitCount{Name: name, Count: counts[name]})
	}
	return out
}
