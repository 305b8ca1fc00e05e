package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config is the on-disk dashboard configuration shape (YAML).
type Config struct {
	Crop  CropConfig  `yaml:"crop"`
	Stock StockConfig `yaml:"stock"`
}

type CropConfig struct {
	// CSV with the crop calendar and climate columns.
	DataFile string `yaml:"data_file"`
	// The source dates are "M/D" only; this year is stamped onto them.
	CalendarYear int `yaml:"calendar_year"`
}

type StockConfig struct {
	// NASDAQ-style company list with Symbol and Name columns.
	CompanyFile string `yaml:"company_file"`
	// "yahoo" (default), "financego" or "snapshot" (offline, reads SnapshotDir).
	Provider       string   `yaml:"provider"`
	BaseURL        string   `yaml:"base_url"`
	DefaultTickers []string `yaml:"default_tickers"`
	MinDate        string   `yaml:"min_date"`      // YYYY-MM-DD
	DefaultStart   string   `yaml:"default_start"` // YYYY-MM-DD
	Concurrency    int      `yaml:"concurrency"`
	// Directory of JSON history snapshots written by cmd/fetch-history.
	SnapshotDir string `yaml:"snapshot_dir"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the file and resolves relative paths, but does not
// apply defaults or validate.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	c.Crop.DataFile = resolve(dir, c.Crop.DataFile)
	c.Stock.CompanyFile = resolve(dir, c.Stock.CompanyFile)
	c.Stock.SnapshotDir = resolve(dir, c.Stock.SnapshotDir)
	return &c, nil
}

// resolve prefers interpreting relative paths as relative to the config file
// directory, but falls back to the provided path (relative to cwd) if that
// doesn't exist.
func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func (c *Config) applyDefaults() {
	if c.Crop.CalendarYear == 0 {
		c.Crop.CalendarYear = 2004
	}
	if c.Stock.Provider == "" {
		c.Stock.Provider = "yahoo"
	}
	if len(c.Stock.DefaultTickers) == 0 {
		c.Stock.DefaultTickers = []string{"AAPL"}
	}
	if c.Stock.MinDate == "" {
		c.Stock.MinDate = "2015-01-01"
	}
	if c.Stock.DefaultStart == "" {
		c.Stock.DefaultStart = "2018-01-01"
	}
	if c.Stock.Concurrency == 0 {
		c.Stock.Concurrency = 4
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Crop.CalendarYear < 1 || c.Crop.CalendarYear > 9999 {
		return fmt.Errorf("crop.calendar_year out of range: %d", c.Crop.CalendarYear)
	}
	switch c.Stock.Provider {
	case "yahoo", "financego":
	case "snapshot":
		if c.Stock.SnapshotDir == "" {
			return errors.New("stock.snapshot_dir is required for the snapshot provider")
		}
	default:
		return fmt.Errorf("stock.provider must be yahoo, financego or snapshot, got %q", c.Stock.Provider)
	}
	minDate, err := time.Parse(dateLayout, c.Stock.MinDate)
	if err != nil {
		return fmt.Errorf("stock.min_date: %w", err)
	}
	start, err := time.Parse(dateLayout, c.Stock.DefaultStart)
	if err != nil {
		return fmt.Errorf("stock.default_start: %w", err)
	}
	if start.Before(minDate) {
		return errors.New("stock.default_start is before stock.min_date")
	}
	if c.Stock.Concurrency < 1 {
		return errors.New("stock.concurrency must be positive")
	}
	for _, t := range c.Stock.DefaultTickers {
		if strings.TrimSpace(t) == "" {
			return errors.New("stock.default_tickers contains an empty symbol")
		}
	}
	return nil
}

// MinDateTime returns the parsed earliest selectable date. Valid after Load.
func (s StockConfig) MinDateTime() time.Time {
	t, _ := time.Parse(dateLayout, s.MinDate)
	return t
}

// DefaultStartTime returns the parsed default range start. Valid after Load.
func (s StockConfig) DefaultStartTime() time.Time {
	t, _ := time.Parse(dateLayout, s.DefaultStart)
	return t
}
