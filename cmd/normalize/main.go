package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"solar-catalog-api/internal/catalog"
	"solar-catalog-api/internal/config"
	"solar-catalog-api/internal/database"
	"solar-catalog-api/internal/dedup"
	"solar-catalog-api/internal/observability"
	"solar-catalog-api/internal/pipeline"
	"solar-catalog-api/internal/repository"
)

func main() {
	cfg := config.Load()
	defaults := pipeline.DefaultConfig()

	// Parse command line flags
	var (
		inputDir     = flag.String("input", getEnv("INPUT_DIR", defaults.InputDir), "Directory with distributor exports")
		outputDir    = flag.String("output", cfg.CatalogDir, "Directory for normalized outputs")
		workers      = flag.Int("workers", defaults.Workers, "Number of categories deduplicated in parallel")
		registryFile = flag.String("registry", "", "SKU registry file (default: database registry with -persist, none otherwise)")
		writeXLSX    = flag.Bool("xlsx", false, "Also write the price report as an XLSX workbook")
		persist      = flag.Bool("persist", false, "Persist the run to PostgreSQL")
		dryRun       = flag.Bool("dry-run", false, "Dry run mode (don't write outputs)")
		monitorPort  = flag.Int("monitor-port", defaults.HTTPMonitorPort, "HTTP monitoring server port")
		monitor      = flag.Bool("monitor", false, "Serve /status, /health and /metrics while running")
		logLevel     = flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	)

	flag.Parse()

	if *persist && cfg.Database.Password == "" {
		fmt.Fprintln(os.Stderr, "Error: database password is required with -persist (set DB_PASSWORD)")
		os.Exit(1)
	}

	logger := observability.NewLogger(*logLevel)
	observability.Register()

	logger.Info("starting catalog normalization",
		"input_dir", *inputDir,
		"output_dir", *outputDir,
		"workers", *workers,
		"persist", *persist,
		"dry_run", *dryRun,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down gracefully", "signal", sig)
		cancel()
	}()

	pipelineConfig := pipeline.Config{
		InputDir:  *inputDir,
		OutputDir: *outputDir,
		Workers:   *workers,
		Dedup: dedup.Config{
			ConfidenceThreshold: cfg.Pipeline.DedupConfidenceThreshold,
			SpecTolerance:       cfg.Pipeline.DedupSpecTolerance,
		},
		ExtraAliases:     cfg.Pipeline.ManufacturerAliases,
		WriteXLSX:        *writeXLSX,
		DryRun:           *dryRun,
		HTTPMonitorPort:  *monitorPort,
		EnableMonitoring: *monitor,
	}

	var registry pipeline.RegistryStore
	if *registryFile != "" {
		registry = catalog.NewRegistryStore(*registryFile)
	}

	var sink pipeline.Sink
	var rejectRepo *repository.RejectRepo
	if *persist {
		dbPool, err := database.Connect(ctx, database.FromConfig(cfg.Database))
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		logger.Info("connected to database")

		if err := database.RunMigrations(ctx, dbPool); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database migrations completed")

		sink = repository.NewRunRepo(dbPool)
		rejectRepo = repository.NewRejectRepo(dbPool)
		if registry == nil {
			registry = repository.NewRegistryRepo(dbPool).Bind(ctx)
		}
	}

	svc := pipeline.NewService(pipelineConfig, registry, logger)
	if sink != nil {
		svc.SetSink(sink)
	}

	out, err := svc.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("normalization cancelled")
			os.Exit(0)
		}
		logger.Error("normalization failed", "error", err)
		os.Exit(1)
	}

	if rejectRepo != nil && !*dryRun {
		counts, err := rejectRepo.CountByReason(ctx, out.RunID)
		if err != nil {
			logger.Warn("failed to read persisted rejects", "error", err)
		} else {
			logger.Info("persisted rejects", "run_id", out.RunID, "by_reason", counts)
		}
	}

	logger.Info("normalization completed successfully")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
