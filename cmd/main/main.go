package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/config"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/country"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/healthcheck"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/notifier"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/observer"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/runctx"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/storage"
	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/usecase"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/logger"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/utils"
)

func main() {
	// Set timezone to UTC
	time.Local = time.UTC

	// Load configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	observer.InitMetrics(cfg.Metrics.Enabled)

	logger.Log.Info("Starting customer country pipeline",
		zap.String("environment", cfg.Environment),
		zap.String("input_file", cfg.Input.FilePath),
		zap.Duration("schedule_interval", cfg.Schedule.Interval),
	)

	// Initialize the repository layer
	postgresRepo, err := storage.NewPostgresRepo(cfg.Database.PostgresDSN, cfg.Database.PostgresAutoMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Postgres repository", zap.Error(err))
	}

	stagingRepo := storage.NewStagingRepoAdapter(postgresRepo)
	countryRepo := storage.NewCountryTableRepoAdapter(postgresRepo)
	currentRepo := storage.NewCurrentCountryRepoAdapter(postgresRepo)
	batchRepo := storage.NewLoadBatchRepoAdapter(postgresRepo)
	defer func() {
		if err := stagingRepo.Close(context.Background()); err != nil {
			logger.Log.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	service := usecase.NewService(
		stagingRepo,
		countryRepo,
		currentRepo,
		batchRepo,
		country.NewDirectory(),
		usecase.Options{
			InputPath:     cfg.Input.FilePath,
			SnapshotPath:  cfg.Input.SnapshotPath,
			DedupeBatches: cfg.Input.DedupeBatches,
		},
	)

	// Run-summary notifier
	var runNotifier notifier.Notifier = notifier.NoopNotifier{}
	if cfg.NATS.Enabled {
		natsNotifier, err := notifier.NewNatsNotifier(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			logger.Log.Fatal("Failed to initialize NATS notifier", zap.Error(err))
		}
		runNotifier = natsNotifier
	}
	defer runNotifier.Close()

	// One-shot mode: run the pipeline once and exit with its outcome.
	if cfg.Schedule.Interval <= 0 {
		if err := runOnce(context.Background(), service, runNotifier); err != nil {
			logger.Log.Error("Pipeline run failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	// Scheduled mode: serve health and metrics endpoints and run on a ticker
	// until a shutdown signal arrives.
	healthServer := healthcheck.NewServer(strconv.Itoa(cfg.Server.Port), logger.Log)
	if cfg.Metrics.Enabled {
		healthServer.RegisterMetricsHandler(promhttp.Handler())
		logger.Log.Info("Metrics endpoint enabled", zap.String("path", "/metrics"), zap.Int("port", cfg.Server.Port))
	}
	healthServer.Start()
	healthServer.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Schedule.Interval)
	defer ticker.Stop()

	// First run immediately, then on every tick. A failed scheduled run is
	// logged and counted but does not stop the schedule.
	if err := runOnce(ctx, service, runNotifier); err != nil {
		logger.Log.Error("Pipeline run failed", zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if err := runOnce(ctx, service, runNotifier); err != nil {
				logger.Log.Error("Pipeline run failed", zap.Error(err))
			}
		case sig := <-sigChan:
			logger.Log.Info("Received shutdown signal", zap.String("signal", sig.String()))
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := healthServer.Stop(shutdownCtx); err != nil {
				logger.Log.Warn("Failed to stop health check server", zap.Error(err))
			}
			return
		}
	}
}

// runOnce executes one pipeline pass under a fresh run id and publishes the
// summary. Notifier failures are logged, not fatal: the database already
// holds the run's results.
func runOnce(ctx context.Context, service *usecase.Service, runNotifier notifier.Notifier) error {
	runCtx := runctx.WithRunID(ctx, uuid.NewString())

	summary, err := service.Run(runCtx, utils.Now())
	if err != nil {
		return err
	}

	if err := runNotifier.PublishRunSummary(runCtx, summary); err != nil {
		logger.FromContext(runCtx).Warn("Failed to publish run summary", zap.Error(err))
	}
	return nil
}
