package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bizlens-lab/bizlens/internal/analysis"
	"github.com/bizlens-lab/bizlens/internal/core/config"
	"github.com/bizlens-lab/bizlens/internal/core/storage/postgres"
	"github.com/bizlens-lab/bizlens/internal/engine"
	"github.com/bizlens-lab/bizlens/internal/migrations"
	"github.com/bizlens-lab/bizlens/internal/readapi"
	"github.com/bizlens-lab/bizlens/internal/server"
)

func main() {
	configPath := flag.String("config", "bizlens.yaml", "Path to configuration file")
	runOnce := flag.Bool("once", false, "Run one analysis pass and exit (cron-job mode)")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 3. Initialize the refund-reason normalizer
	normalizer := analysis.NewReasonNormalizer()
	if cfg.Analysis.TaxonomyFile != "" {
		normalizer, err = analysis.NewReasonNormalizerFromFile(cfg.Analysis.TaxonomyFile)
		if err != nil {
			slog.Error("Failed to load refund-reason taxonomy", "path", cfg.Analysis.TaxonomyFile, "error", err)
			os.Exit(1)
		}
	}

	// 4. Initialize the analysis engine
	snapshotStore := postgres.NewSnapshotAdapter(dbAdapter.DB())
	summaryStore := postgres.NewSummaryAdapter(dbAdapter.DB())
	eng := engine.New(snapshotStore, summaryStore, normalizer, engine.Options{
		TopLimit:        cfg.Analysis.TopLimit,
		SlowMovingLimit: cfg.Analysis.SlowMovingLimit,
	})

	// One-shot mode: run a single pass and exit, no HTTP server.
	if *runOnce {
		result, err := eng.Run(context.Background(), time.Now().UTC())
		if err != nil {
			slog.Error("Analysis run failed", "error", err)
			os.Exit(1)
		}
		if len(result.Failures) > 0 {
			slog.Error("Analysis run finished with failed partitions",
				"run_id", result.RunID, "failed", len(result.Failures))
			os.Exit(1)
		}
		slog.Info("Analysis run complete", "run_id", result.RunID, "partitions", result.Partitions)
		return
	}

	scheduler := engine.NewScheduler(cfg.Analysis.Interval(), eng, nil)

	// 5. Initialize the read API server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode)
	readapi.NewHandler(summaryStore).Register(srv.Engine)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Analysis.Enabled {
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				slog.Error("Scheduler stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Analysis scheduler disabled by config")
	}

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
