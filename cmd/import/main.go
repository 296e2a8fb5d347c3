package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"coupon-service/internal/config"
	"coupon-service/internal/database"
	"coupon-service/internal/importer"
	"coupon-service/internal/metrics"
	"coupon-service/internal/repository"
	"coupon-service/internal/service"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	path := flag.String("file", cfg.Import.FilePath, "gzipped JSON-lines file (local path, or key relative to S3_PREFIX)")
	workers := flag.Int("workers", cfg.Import.Workers, "concurrent coupon creations")
	flag.Parse()

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize loader with S3 and local fallback
	var s3Loader importer.Loader
	if cfg.S3.Enabled {
		s3Loader, err = importer.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	} else {
		logger.Info().Msg("using local file system for import files (S3 disabled)")
	}
	loader := importer.NewFallbackLoader(s3Loader, importer.NewFileLoader(logger), cfg.S3.Prefix, logger)

	repo := repository.NewCouponRepository(pool, logger)
	svc := service.NewCouponService(repo, metrics.New(prometheus.NewRegistry()), logger)

	report, err := importer.New(loader, svc, *workers, logger).Run(ctx, *path)
	if report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			logger.Error().Err(encErr).Msg("failed to write import report")
		}
	}
	return err
}
