package app

import (
	"testing"
	"time"

	"field-dash/internal/config"
	"field-dash/internal/data"
	"field-dash/internal/model"
	"field-dash/internal/observability"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	logger := observability.DiscardLogger()
	cfg := config.Default().Stock

	p, closeFn, err := NewProvider(cfg, ProviderOptions{Timeout: time.Second}, logger, nil)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &data.YahooClient{}, p)

	cfg.Provider = "financego"
	p, closeFn, err = NewProvider(cfg, ProviderOptions{CacheEnabled: true, CacheTTL: time.Minute, Clock: clockwork.NewFakeClock()}, logger, nil)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &data.CachedProvider{}, p)
	assert.Equal(t, "financego", p.Name())

	cfg.Provider = "bloomberg"
	_, _, err = NewProvider(cfg, ProviderOptions{}, logger, nil)
	assert.Error(t, err)
}

func TestNewProvider_Snapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, data.SaveHistoryJSON(&model.PriceHistory{Symbol: "AAPL"}, data.SnapshotPath(dir, "AAPL")))

	cfg := config.Default().Stock
	cfg.Provider = "snapshot"
	cfg.SnapshotDir = dir
	p, closeFn, err := NewProvider(cfg, ProviderOptions{}, observability.DiscardLogger(), nil)
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "snapshot", p.Name())
}

func TestNewDashboards(t *testing.T) {
	cfg := config.Default()
	_, err := NewCropDashboard(cfg.Crop, nil)
	assert.Error(t, err, "data file is required")

	cfg.Crop.DataFile = "../data/testdata/crops.csv"
	crop, err := NewCropDashboard(cfg.Crop, nil)
	require.NoError(t, err)
	assert.Len(t, crop.Dataset().Records, 7)

	cfg.Stock.CompanyFile = "../data/testdata/companies.csv"
	stock, err := NewStockDashboard(cfg.Stock, nil, clockwork.NewFakeClock(), observability.DiscardLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, stock.Defaults().Tickers)
	assert.Equal(t, "2018-01-01", stock.Defaults().Start)
	assert.Len(t, stock.Companies().Companies, 3)
}
