// Package main is the entry point for the offline training job.
//
// It loads the full choice history from PostgreSQL, re-derives the
// inference-time feature representation through the shared encoder, fits
// one classification pipeline per clothing category, and persists the
// artifacts where the API server's model registry loads them. Run it on a
// schedule or by hand after enough new choices have accumulated; the API
// picks up new artifacts on its next restart.
//
// With -export-csv the training dataset is also written as CSV for offline
// inspection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"aitendule/internal/config"
	"aitendule/internal/db"
	"aitendule/internal/feature"
	"aitendule/internal/training"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	exportCSV := flag.String("export-csv", "", "also write the training dataset to this CSV file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("trainer starting",
		"environment", cfg.Environment,
		"model_dir", cfg.Model.Dir,
		"trees", cfg.Model.Trees,
		"seed", cfg.Model.Seed,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx,
		cfg.Database.URL.Unmask(),
		cfg.Database.MaxConns,
		cfg.Database.MinConns,
		cfg.Database.MaxConnLifetime,
	)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	records, err := db.NewClothingRepository(pool).ListHistory(ctx)
	if err != nil {
		return fmt.Errorf("loading choice history: %w", err)
	}
	logger.Info("choice history loaded", "records", len(records))

	encoder, err := feature.NewEncoder(cfg.Model.TempBinWidth)
	if err != nil {
		return fmt.Errorf("creating feature encoder: %w", err)
	}

	trainer, err := training.NewTrainer(encoder, cfg.Model.Dir, cfg.Model.Trees, cfg.Model.Seed, logger)
	if err != nil {
		return fmt.Errorf("creating trainer: %w", err)
	}

	if *exportCSV != "" {
		f, err := os.Create(*exportCSV)
		if err != nil {
			return fmt.Errorf("creating CSV file: %w", err)
		}
		rows, err := trainer.ExportCSV(f, records)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("exporting CSV: %w", err)
		}
		logger.Info("training dataset exported", "path", *exportCSV, "rows", rows)
	}

	report, err := trainer.Run(ctx, records)
	if err != nil {
		return fmt.Errorf("training run: %w", err)
	}

	for _, stats := range report.Trained {
		logger.Info("artifact written",
			"category", string(stats.Category),
			"samples", stats.Samples,
			"classes", stats.Classes,
			"full_fit", stats.FullFit,
			"holdout_accuracy", stats.HoldoutAccuracy,
		)
	}
	for category, reason := range report.Skipped {
		logger.Warn("category skipped", "category", string(category), "reason", reason)
	}
	if report.DroppedRecords > 0 {
		logger.Warn("records dropped during preparation", "count", report.DroppedRecords)
	}

	return nil
}

// newLogger creates a structured slog.Logger for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
