package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"field-dash/internal/api"
	"field-dash/internal/app"
	"field-dash/internal/config"
	"field-dash/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load environment", "error", err)
		os.Exit(1)
	}
	configPath := flag.String("config", env.ConfigPath, "dashboard YAML config (DASH_CONFIG)")
	flag.Parse()

	logger := observability.NewLogger(env.LogLevel, env.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	cfg := config.Default()
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}

	clock := clockwork.NewRealClock()
	provider, closeProvider, err := app.NewProvider(cfg.Stock, app.ProviderOptions{
		Timeout:      env.ProviderTimeout,
		CacheEnabled: env.HistoryCacheEnabled,
		CacheTTL:     env.HistoryCacheTTL,
		Clock:        clock,
	}, logger, metrics)
	if err != nil {
		logger.Error("failed to create history provider", "error", err)
		os.Exit(1)
	}
	defer closeProvider()

	crop, err := app.NewCropDashboard(cfg.Crop, metrics)
	if err != nil {
		logger.Error("failed to load crop data", "error", err)
		os.Exit(1)
	}
	logger.Info("crop data loaded", "path", cfg.Crop.DataFile, "rows", len(crop.Dataset().Records))

	stock, err := app.NewStockDashboard(cfg.Stock, provider, clock, logger)
	if err != nil {
		logger.Error("failed to load company list", "error", err)
		os.Exit(1)
	}

	if env.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(api.Deps{
		Crop:        crop,
		Stock:       stock,
		Logger:      logger,
		Metrics:     metrics,
		CORSOrigins: env.CORSOrigins,
		StaticDir:   env.StaticDir,
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              env.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting API server", "addr", env.HTTPAddr, "provider", provider.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
