package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "dash.yaml", "crop:\n  data_file: crops.csv\n")

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 2004, cfg.Crop.CalendarYear)
	assert.Equal(t, "yahoo", cfg.Stock.Provider)
	assert.Equal(t, []string{"AAPL"}, cfg.Stock.DefaultTickers)
	assert.Equal(t, "2015-01-01", cfg.Stock.MinDate)
	assert.Equal(t, "2018-01-01", cfg.Stock.DefaultStart)
	assert.Equal(t, 4, cfg.Stock.Concurrency)
	assert.Equal(t, 2018, cfg.Stock.DefaultStartTime().Year())
	assert.Equal(t, 2015, cfg.Stock.MinDateTime().Year())
}

func TestLoad_RelativePathsResolveAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "crops.csv", "Crop\n")
	writeFile(t, dir, "companies.csv", "Symbol,Name\n")
	p := writeFile(t, dir, "dash.yaml", `
crop:
  data_file: crops.csv
stock:
  company_file: companies.csv
  snapshot_dir: missing-dir
`)

	cfg, err := LoadUnchecked(p)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "crops.csv"), cfg.Crop.DataFile)
	assert.Equal(t, filepath.Join(dir, "companies.csv"), cfg.Stock.CompanyFile)
	assert.Equal(t, "missing-dir", cfg.Stock.SnapshotDir, "nonexistent paths stay cwd-relative")
}

func TestLoad_InvalidProvider(t *testing.T) {
	p := writeFile(t, t.TempDir(), "dash.yaml", "stock:\n  provider: bloomberg\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stock.provider")
}

func TestLoad_StartBeforeMinDate(t *testing.T) {
	p := writeFile(t, t.TempDir(), "dash.yaml", "stock:\n  min_date: 2019-01-01\n  default_start: 2018-01-01\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_start")
}

func TestLoad_BadDate(t *testing.T) {
	p := writeFile(t, t.TempDir(), "dash.yaml", "stock:\n  min_date: 01/01/2015\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stock.min_date")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_Nil(t *testing.T) {
	var c *Config
	require.Error(t, c.Validate())
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_SnapshotProviderNeedsDir(t *testing.T) {
	p := writeFile(t, t.TempDir(), "dash.yaml", "stock:\n  provider: snapshot\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot_dir")

	dir := t.TempDir()
	p = writeFile(t, dir, "dash.yaml", "stock:\n  provider: snapshot\n  snapshot_dir: history\n")
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "snapshot", cfg.Stock.Provider)
}

func TestLoad_ShippedConfig(t *testing.T) {
	c, err := Load("../../configs/dashboard.yaml")
	require.NoError(t, err)

	assert.Equal(t, 2004, c.Crop.CalendarYear)
	assert.FileExists(t, c.Crop.DataFile)
	assert.FileExists(t, c.Stock.CompanyFile)
	assert.Equal(t, []string{"AAPL"}, c.Stock.DefaultTickers)
}
