package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

// recurring-worker materializes due recurring transactions on a cron
// schedule. Created transactions go through the transaction service, so
// they are published like any other.
func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentRecurring, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	transactions := services.NewTransactionService(result.Store, result.Publisher)
	processor := services.NewRecurringProcessor(result.Store, transactions, core.SystemClock{})

	scheduler, err := worker.NewScheduler("recurring", cfg.RecurringSchedule, processor.ProcessDue)
	if err != nil {
		logger.Error("Invalid recurring schedule", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Warn("Scheduler stop error", applog.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	logger.Info("Starting recurring-worker", "schedule", cfg.RecurringSchedule, "backend", cfg.DataBackend)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("Failed to start scheduler", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker stopped gracefully")
}
