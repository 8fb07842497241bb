package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	applog "fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

// fintrack-worker consumes transaction events and mirrors them into the
// configured Google Sheet.
func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentWorker, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the mirror worker")
		os.Exit(1)
	}

	sheets, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	mirror := worker.NewMirrorWorker(sheets)

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(context.Context) {
		if err := client.Close(); err != nil {
			logger.Error("AMQP close error", applog.FieldError, err)
		}
	})

	logger.Info("Starting fintrack-worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := client.ConsumeWithReconnect(ctx, mirror.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
