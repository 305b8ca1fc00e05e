// Package app builds the dashboards from configuration. It is shared by the
// server and the command line tools.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"field-dash/internal/config"
	"field-dash/internal/dashboard"
	"field-dash/internal/data"
	"field-dash/internal/observability"

	"github.com/jonboulle/clockwork"
)

// ProviderOptions tune the history provider beyond the YAML config.
type ProviderOptions struct {
	Timeout      time.Duration
	CacheEnabled bool
	CacheTTL     time.Duration
	Clock        clockwork.Clock
}

// NewProvider selects the configured history provider and wraps it in a
// cache when enabled. The returned close func releases the cache.
func NewProvider(cfg config.StockConfig, opts ProviderOptions, logger *slog.Logger, metrics *observability.Metrics) (data.HistoryProvider, func(), error) {
	var p data.HistoryProvider
	switch cfg.Provider {
	case "", "yahoo":
		p = data.NewYahooClient(cfg.BaseURL, opts.Timeout, logger, metrics)
	case "financego":
		p = data.NewFinanceGoProvider(logger, metrics)
	case "snapshot":
		sp, err := data.NewSnapshotProvider(cfg.SnapshotDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load snapshots: %w", err)
		}
		logger.Info("serving history from snapshots", "dir", cfg.SnapshotDir, "symbols", len(sp.Symbols()))
		p = sp
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if !opts.CacheEnabled {
		return p, func() {}, nil
	}
	cache := data.NewHistoryCache(opts.CacheTTL, opts.Clock)
	logger.Info("history cache enabled", "ttl", opts.CacheTTL)
	return data.NewCachedProvider(p, cache, metrics), cache.Close, nil
}

// NewCropDashboard loads the crop CSV named by cfg.
func NewCropDashboard(cfg config.CropConfig, metrics *observability.Metrics) (*dashboard.CropDashboard, error) {
	if cfg.DataFile == "" {
		return nil, errors.New("crop.data_file is not set")
	}
	ds, err := data.LoadCropCSV(cfg.DataFile, cfg.CalendarYear)
	if err != nil {
		return nil, err
	}
	return dashboard.NewCropDashboard(ds, metrics), nil
}

// NewStockDashboard loads the company list (optional) and binds the stock
// defaults from cfg.
func NewStockDashboard(cfg config.StockConfig, provider data.HistoryProvider, clock clockwork.Clock, logger *slog.Logger) (*dashboard.StockDashboard, error) {
	var companies *data.CompanyList
	if cfg.CompanyFile != "" {
		var err error
		companies, err = data.LoadCompanies(cfg.CompanyFile)
		if err != nil {
			return nil, err
		}
	}
	return dashboard.NewStockDashboard(provider, companies, clock, dashboard.StockDefaults{
		Tickers:     cfg.DefaultTickers,
		MinDate:     cfg.MinDateTime(),
		Start:       cfg.DefaultStartTime(),
		Concurrency: cfg.Concurrency,
	}, logger), nil
}
