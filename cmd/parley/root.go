package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samdwyer/parley/internal/config"
	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	caseID   string
	caseFile string
	dbPath   string
}

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Investigate, break and negotiate with the things that haunt the river",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.caseID, "case", "", "Case id from the built-in catalog (default: first case)")
	f.StringVar(&rootFlags.caseFile, "case-file", "", "Load the case from a JSON or YAML file instead")
	f.StringVar(&rootFlags.dbPath, "db", "", "SQLite save file (default from PARLEY_DB_PATH)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(checkpointCmd)
	rootCmd.AddCommand(casesCmd)
	rootCmd.Version = version
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if rootFlags.caseID != "" {
		cfg.CaseID = rootFlags.caseID
	}
	if rootFlags.caseFile != "" {
		cfg.CaseFile = rootFlags.caseFile
	}
	if rootFlags.dbPath != "" {
		cfg.DBPath = rootFlags.dbPath
	}
	return cfg, nil
}

// resolveCase picks the case named by cfg: a file, a catalog id, or the
// catalog default.
func resolveCase(cfg config.Config) (gamedata.CaseDef, error) {
	if cfg.CaseFile != "" {
		return gamedata.LoadCaseFile(cfg.CaseFile)
	}
	registry, err := gamedata.LoadCaseRegistry()
	if err != nil {
		return gamedata.CaseDef{}, err
	}
	if cfg.CaseID == "" {
		return registry.Default(), nil
	}
	def, ok := registry.GetByID(cfg.CaseID)
	if !ok {
		return gamedata.CaseDef{}, fmt.Errorf("unknown case %q (have %v)", cfg.CaseID, registry.IDs())
	}
	return def, nil
}

// startTelemetry installs tracing. Failure is logged and play continues
// without spans.
func startTelemetry(ctx context.Context, cfg config.Config, logger *zap.Logger) func() {
	shutdown, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:  cfg.TelemetryEnabled,
		Endpoint: cfg.OTelEndpoint,
		Headers:  cfg.TelemetryHeaders(),
	})
	if err != nil {
		logger.Warn("telemetry setup failed; continuing without tracing", zap.Error(err))
		return func() {}
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}
}

func seedOrRandom(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return rand.Int63()
}
