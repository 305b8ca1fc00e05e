package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Env holds process settings, populated from environment variables.
type Env struct {
	HTTPAddr        string
	APIEnv          string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	ProviderTimeout time.Duration
	ConfigPath      string
	StaticDir       string
	CORSOrigins     []string

	// History cache (development convenience; off by default).
	HistoryCacheEnabled bool
	HistoryCacheTTL     time.Duration
}

// LoadEnv reads process settings from the environment, applying defaults where unset.
func LoadEnv() (*Env, error) {
	shutdown, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	providerTimeout, err := parseDuration("PROVIDER_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("HISTORY_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	e := &Env{
		HTTPAddr:            envOrDefault("HTTP_ADDR", ":8080"),
		APIEnv:              envOrDefault("API_ENV", "development"),
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdown,
		ProviderTimeout:     providerTimeout,
		ConfigPath:          envOrDefault("DASH_CONFIG", "configs/dashboard.yaml"),
		StaticDir:           os.Getenv("STATIC_DIR"),
		CORSOrigins:         splitList(envOrDefault("CORS_ORIGINS", "*")),
		HistoryCacheEnabled: os.Getenv("ENABLE_HISTORY_CACHE") == "true",
		HistoryCacheTTL:     cacheTTL,
	}

	// The cache is never enabled in production.
	if e.Production() {
		e.HistoryCacheEnabled = false
	}
	return e, nil
}

func (e *Env) Production() bool { return e.APIEnv == "production" }

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
