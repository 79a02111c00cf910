package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/game"
	"github.com/samdwyer/parley/internal/ledger"
	"github.com/samdwyer/parley/internal/logging"
	"github.com/samdwyer/parley/internal/save"
	"github.com/samdwyer/parley/internal/ui"
)

var playFlags struct {
	fresh   bool
	logPath string
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a case in the terminal, resuming an interrupted checkpoint",
	RunE:  runPlay,
}

func init() {
	f := playCmd.Flags()
	f.BoolVar(&playFlags.fresh, "new", false, "Ignore any saved checkpoint and start the case over")
	f.StringVar(&playFlags.logPath, "log", filepath.Join(".parley", "parley.log"), "Log file (the terminal is in use while playing)")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(playFlags.logPath), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logger, err := logging.ToFile(cfg.LogLevel, cfg.LogFormat, playFlags.logPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	defer startTelemetry(ctx, cfg, logger)()

	def, err := resolveCase(cfg)
	if err != nil {
		return err
	}

	store, err := save.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	meta := ledger.NewMeta()
	if snap, err := store.LoadMeta(ctx); err == nil {
		meta.Restore(snap)
	} else if !errors.Is(err, save.ErrNotFound) {
		logger.Warn("load meta failed; starting fresh", zap.Error(err))
	}

	bus := events.NewBus()
	session := game.NewSession(ctx, game.Options{
		Case:   def,
		Meta:   meta,
		Store:  store,
		Seed:   seedOrRandom(cfg.Seed),
		Logger: logger,
		Sink:   bus,
	})
	session.SetTimeScale(cfg.TimeScale)

	if !playFlags.fresh {
		if err := resume(ctx, session, store, logger); err != nil {
			return err
		}
	}

	screen, err := ui.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	g := game.NewGame(session, screen, cfg.FrameDuration(), logger)
	bus.Subscribe(g.Publish)
	return g.Run(ctx)
}
