package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/aevon-lab/event-replay/internal/core/config"
	"github.com/aevon-lab/event-replay/internal/core/storage/filesystem"
	"github.com/aevon-lab/event-replay/internal/projection"
	"github.com/aevon-lab/event-replay/internal/report"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	dataDir := flag.String("data", "", "Event data directory; overrides data.dir and disables fallback probing")
	flag.Parse()

	// 0. Initialize Logger. Stdout carries the reports.
	slog.SetDefault(newLogger(os.Stderr, corecfg.LogConfig{Level: "info", Format: "text"}))

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
		cfg.Data.FallbackDirs = nil
	}
	slog.SetDefault(newLogger(os.Stderr, cfg.Log))
	slog.Debug("Loaded config", "config", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, aborting run...")
		cancel()
	}()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		slog.Error("Replay failed", "error", err)
		os.Exit(1)
	}
}

// run replays every configured table and renders the reports to out.
// Nothing is written to out unless the whole pipeline succeeds.
func run(ctx context.Context, cfg *corecfg.Config, out io.Writer) error {
	// 2. Initialize Event Source
	root := filesystem.ResolveDataDir(cfg.Data.Dir, cfg.Data.FallbackDirs...)
	source := filesystem.NewSource(root, cfg.Data.Extension)
	slog.Info("Using data directory", "path", source.RootDir())

	// 3. Run Pipeline
	svc := projection.NewService(source, projection.Options{
		Tables:       cfg.Data.Tables,
		PrimaryTable: cfg.Linkage.PrimaryTable,
		LinkRules:    cfg.LinkRules,
		LedgerRules:  cfg.Ledger.Rules,
	})
	result, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	// 4. Render Reports
	loc, err := cfg.Report.Location()
	if err != nil {
		return err
	}
	tag, err := cfg.Report.Tag()
	if err != nil {
		return err
	}
	w := report.NewWriter(out, report.Options{
		Language:   tag,
		Location:   loc,
		TimeLayout: cfg.Report.TimeFormat,
	})
	return w.All(result)
}

func newLogger(out io.Writer, cfg corecfg.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}
