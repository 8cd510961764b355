package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/dungeonwave/cmd/dungeonwave/internal/display"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/rng"
	"github.com/nfrund/dungeonwave/internal/game/sim"
	"github.com/nfrund/dungeonwave/internal/logging"
)

func newSimulateCmd() *cobra.Command {
	var (
		cfg        sim.Config
		difficulty string
		catalogDir string
		format     string
		logLevel   string
		verbose    bool
	)
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play bot matches and report the results",
		Long: `Play a batch of matches with greedy bots on an in-memory game service and
report how many ended in victory or defeat. Match i is seeded with seed+i,
so a run with a fixed seed is reproducible.

Examples:
  dungeonwave simulate --matches 100 --players 3 --difficulty hard
  dungeonwave simulate --seed 42 --verbose
  dungeonwave simulate --catalog ./catalog --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Difficulty = match.Difficulty(difficulty)
			if !cfg.Difficulty.Valid() {
				return fmt.Errorf("unknown difficulty %q", difficulty)
			}
			if cfg.Seed == 0 {
				cfg.Seed = rng.NewSeed()
			}
			cfg.Logger = logging.NewWithOptions(logging.Options{Level: logLevel, Output: cmd.ErrOrStderr()})

			var dirArgs []string
			if catalogDir != "" {
				dirArgs = []string{catalogDir}
			}
			cat, _, err := loadCatalog(cmd.Context(), dirArgs)
			if err != nil {
				return err
			}

			report, err := sim.Run(cmd.Context(), cat, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return display.JSON(out, report)
			case "table":
				fmt.Fprintf(out, "Seed:       %d\n", cfg.Seed)
				display.Report(out, report, verbose)
				return nil
			default:
				return fmt.Errorf("unsupported output format '%s'. Use 'table' or 'json'", format)
			}
		},
	}
	f := simulateCmd.Flags()
	f.IntVarP(&cfg.Matches, "matches", "n", 10, "Number of matches to play")
	f.IntVarP(&cfg.Workers, "workers", "w", 4, "Matches played in parallel")
	f.IntVarP(&cfg.Players, "players", "p", 2, "Bots per match")
	f.Int64Var(&cfg.Seed, "seed", 0, "Seed of the first match (0 picks one)")
	f.IntVar(&cfg.MaxTurns, "max-turns", 50, "Abandon a match after this many turns")
	f.StringVarP(&difficulty, "difficulty", "d", string(match.DifficultyFamily), "Difficulty (family, problem, hard)")
	f.StringVar(&catalogDir, "catalog", "", "Catalog directory (defaults to the embedded catalog)")
	f.StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	f.StringVar(&logLevel, "log-level", "warn", "Log level for match logs")
	f.BoolVarP(&verbose, "verbose", "v", false, "List every match")
	return simulateCmd
}
