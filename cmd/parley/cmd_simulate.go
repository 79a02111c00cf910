package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/game"
	"github.com/samdwyer/parley/internal/ledger"
	"github.com/samdwyer/parley/internal/logging"
	"github.com/samdwyer/parley/internal/save"
)

var simulateFlags struct {
	script  string
	runs    int
	seed    int64
	persist bool
	verbose bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a case headlessly with a built-in script",
	Long:  "Runs a scripted episode at a fixed frame rate. Consecutive runs share the carryover ledger.",
	RunE:  runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simulateFlags.script, "script", "negotiate", fmt.Sprintf("Script to run %v", game.ScriptNames()))
	f.IntVar(&simulateFlags.runs, "runs", 1, "Number of consecutive episodes")
	f.Int64Var(&simulateFlags.seed, "seed", 0, "Seed for the first run (default from PARLEY_SEED, else random)")
	f.BoolVar(&simulateFlags.persist, "persist", false, "Save checkpoints and the ledger to the SQLite file")
	f.BoolVarP(&simulateFlags.verbose, "verbose", "v", false, "Echo game events")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if simulateFlags.runs < 1 {
		return fmt.Errorf("--runs must be at least 1")
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	defer startTelemetry(ctx, cfg, logger)()

	def, err := resolveCase(cfg)
	if err != nil {
		return err
	}

	var store save.Store = save.NewMemoryStore()
	if simulateFlags.persist {
		sqlite, err := save.OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		store = sqlite
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	bus := events.NewBus()
	if simulateFlags.verbose {
		bus.Subscribe(func(e events.Event) {
			if line, ok := eventLine(e); ok {
				fmt.Fprintf(out, "    %s\n", line)
			}
		})
	}

	seed := simulateFlags.seed
	if seed == 0 {
		seed = seedOrRandom(cfg.Seed)
	}
	meta := ledger.NewMeta()
	for i := 0; i < simulateFlags.runs; i++ {
		session := game.NewSession(ctx, game.Options{
			Case:   def,
			Meta:   meta,
			Store:  store,
			Seed:   seed + int64(i),
			Logger: logger,
			Sink:   bus,
		})
		session.SetTimeScale(cfg.TimeScale)

		rep, err := game.RunScript(ctx, session, simulateFlags.script)
		if err != nil {
			logger.Error("simulation failed", zap.Int("run", i+1), zap.Error(err))
			return err
		}
		printReport(out, i+1, seed+int64(i), rep)
	}
	return nil
}

func printReport(out io.Writer, n int, seed int64, rep game.Report) {
	fmt.Fprintf(out, "Run %d (seed %d, %s on %s)\n", n, seed, rep.Script, rep.CaseID)
	fmt.Fprintf(out, "  Outcome:    %s (completed: %v)\n", rep.Outcome, rep.Completed)
	fmt.Fprintf(out, "  Elapsed:    %s\n", rep.Elapsed)
	fmt.Fprintf(out, "  Admin cost: %.2f\n", rep.AdminCost)
	fmt.Fprintf(out, "  Insight:    %d\n", rep.Insight)
	fmt.Fprintf(out, "  Violations: %d\n", rep.Violations)
	fmt.Fprintf(out, "  Damage:     %.0f\n", rep.DamageTaken)
	fmt.Fprintf(out, "  Attempts:   %d\n", rep.Attempts)
	fmt.Fprintf(out, "  Ledger:     boon=%v debt=%d passes=%d distortion=%d\n",
		rep.Meta.ContractBoon, rep.Meta.TruceDebt, rep.Meta.ArbitrationPasses, rep.Meta.Distortion)
}
