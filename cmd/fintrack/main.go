package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/dashboard"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentApp, os.Getenv("LOG_LEVEL"))
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

	store := result.Store
	transactions := services.NewTransactionService(store, result.Publisher)
	clock := core.SystemClock{}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		PageSize:       cfg.PageSize,
		SearchDelay:    cfg.SearchDebounce,
		CacheTTL:       cfg.CacheTTL,
		Location:       cfg.Location(),
		TrustedProxies: cfg.TrustedProxies,
	}, apphttp.Deps{
		Transactions: transactions,
		Accounts:     store,
		Dashboard:    dashboard.NewService(store, transactions, clock, cfg.MonthlyBudget),
		Health:       store,
		Clock:        clock,
		Logger:       logger,
	})
	srv.ReadTimeout = 15 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend, "timezone", cfg.Timezone)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
