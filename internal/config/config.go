package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFile         string
	SessionTTL      time.Duration
	SweepInterval   time.Duration
	SearchCacheSize int
	RequestTimeout  time.Duration
	CatalogDBPath   string
	OpenRouter      OpenRouterConfig
}

type OpenRouterConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

func Load() (Config, error) {
	var cfg Config

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFile = getEnv("LOG_FILE", "")
	cfg.CatalogDBPath = getEnv("CATALOG_DB_PATH", "catalog.db")

	sessionTTL, err := parseDuration(getEnv("SESSION_TTL", "4h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = sessionTTL

	sweepInterval, err := parseDuration(getEnv("SWEEP_INTERVAL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWEEP_INTERVAL: %w", err)
	}
	cfg.SweepInterval = sweepInterval

	cacheSize, err := strconv.Atoi(getEnv("SEARCH_CACHE_SIZE", "256"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SEARCH_CACHE_SIZE: %w", err)
	}
	if cacheSize <= 0 {
		return Config{}, fmt.Errorf("SEARCH_CACHE_SIZE must be positive, got %d", cacheSize)
	}
	cfg.SearchCacheSize = cacheSize

	reqTimeout, err := parseDuration(getEnv("HTTP_CLIENT_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_CLIENT_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = reqTimeout

	cfg.OpenRouter = OpenRouterConfig{
		APIKey:       getEnv("OPENROUTER_API_KEY", ""),
		BaseURL:      getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		DefaultModel: getEnv("OPENROUTER_DEFAULT_MODEL", ""),
	}

	return cfg, nil
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, fmt.Errorf("duration is empty")
	}
	return time.ParseDuration(value)
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}
