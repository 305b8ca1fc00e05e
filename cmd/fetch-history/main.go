package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"field-dash/internal/app"
	"field-dash/internal/config"
	"field-dash/internal/dashboard"
	"field-dash/internal/data"
	"field-dash/internal/observability"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv("DASH_CONFIG"), "dashboard YAML config (DASH_CONFIG)")
		tickers    = flag.String("tickers", "", "comma-separated symbols (default: stock.default_tickers)")
		start      = flag.String("start", "", "start date, YYYY-MM-DD (default: stock.min_date)")
		end        = flag.String("end", "", "end date, exclusive, YYYY-MM-DD (default: today)")
		outDir     = flag.String("out", "", "snapshot directory (default: stock.snapshot_dir or data/history)")
		provider   = flag.String("provider", "", "yahoo or financego (default: stock.provider)")
	)
	flag.Parse()

	logger := observability.NewLogger(os.Getenv("LOG_LEVEL"), "text")

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	if *provider != "" {
		cfg.Stock.Provider = *provider
	}
	if cfg.Stock.Provider == "snapshot" {
		logger.Error("fetch-history needs a network provider")
		os.Exit(2)
	}
	dir := *outDir
	if dir == "" {
		dir = cfg.Stock.SnapshotDir
	}
	if dir == "" {
		dir = "data/history"
	}

	clock := clockwork.NewRealClock()
	p, closeProvider, err := app.NewProvider(cfg.Stock, app.ProviderOptions{Timeout: 30 * time.Second}, logger, nil)
	if err != nil {
		logger.Error("failed to create provider", "error", err)
		os.Exit(1)
	}
	defer closeProvider()
	dash, err := app.NewStockDashboard(cfg.Stock, p, clock, logger)
	if err != nil {
		logger.Error("failed to create stock dashboard", "error", err)
		os.Exit(1)
	}

	symbols := cfg.Stock.DefaultTickers
	if *tickers != "" {
		symbols = strings.Split(*tickers, ",")
	}
	if *start == "" {
		*start = cfg.Stock.MinDate
	}
	if *end == "" {
		*end = dash.Defaults().End
	}
	syms, from, to, err := dash.ParseRequest(dashboard.GraphRequest{Tickers: symbols, Start: *start, End: *end})
	if err != nil {
		logger.Error("invalid request", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("fetching history",
		"provider", p.Name(),
		"symbols", strings.Join(syms, ","),
		"start", from.Format("2006-01-02"),
		"end", to.Format("2006-01-02"),
	)
	histories, err := dash.Fetch(ctx, syms, from, to)
	if err != nil {
		logger.Error("failed to fetch history", "error", err)
		os.Exit(1)
	}

	for _, h := range histories {
		path := data.SnapshotPath(dir, h.Symbol)
		if err := data.SaveHistoryJSON(h, path); err != nil {
			logger.Error("failed to save snapshot", "symbol", h.Symbol, "error", err)
			os.Exit(1)
		}
		logger.Info("saved snapshot", "symbol", h.Symbol, "bars", len(h.Bars), "path", path)
	}
	logger.Info("done", "snapshots", len(histories), "dir", dir)
}
