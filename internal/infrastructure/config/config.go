package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverOracle   = "oracle"
	DBDriverMemory   = "memory"
)

type Config struct {
	ServerPort            string
	ServerHost            string
	LogLevel              string
	DBDriver              string
	DBDSN                 string
	CatalogReloadInterval time.Duration
	Search                SearchConfig
}

// SearchConfig carries the engine floors and the HTTP defaults applied when a
// request omits threshold or limit.
type SearchConfig struct {
	NameThreshold       int
	TickerThreshold     int
	IdentifierThreshold int
	DefaultThreshold    int
	DefaultMaxResults   int
	ParallelMinRecords  int
}

func Load() (*Config, error) {
	port := getEnvOrDefault("SERVER_PORT", "8080")
	host := getEnvOrDefault("SERVER_HOST", "localhost")
	logLevel := getEnvOrDefault("LOG_LEVEL", "info")

	dbDriver := getEnvOrDefault("DB_DRIVER", DBDriverPostgres)
	dbDSN := os.Getenv("DB_DSN")
	switch dbDriver {
	case DBDriverPostgres, DBDriverOracle:
		if dbDSN == "" {
			return nil, fmt.Errorf("DB_DSN environment variable is required for %s driver", dbDriver)
		}
	case DBDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s (supported: postgres, oracle, memory)", dbDriver)
	}

	reloadInterval, err := time.ParseDuration(getEnvOrDefault("CATALOG_RELOAD_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_RELOAD_INTERVAL: %w", err)
	}
	if reloadInterval < 0 {
		return nil, fmt.Errorf("invalid CATALOG_RELOAD_INTERVAL: must not be negative, got %s", reloadInterval)
	}

	search, err := loadSearchConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:            port,
		ServerHost:            host,
		LogLevel:              logLevel,
		DBDriver:              dbDriver,
		DBDSN:                 dbDSN,
		CatalogReloadInterval: reloadInterval,
		Search:                search,
	}, nil
}

func loadSearchConfig() (SearchConfig, error) {
	var (
		cfg SearchConfig
		err error
	)
	if cfg.NameThreshold, err = getScoreEnv("SEARCH_NAME_THRESHOLD", 60); err != nil {
		return cfg, err
	}
	if cfg.TickerThreshold, err = getScoreEnv("SEARCH_TICKER_THRESHOLD", 80); err != nil {
		return cfg, err
	}
	if cfg.IdentifierThreshold, err = getScoreEnv("SEARCH_IDENTIFIER_THRESHOLD", 80); err != nil {
		return cfg, err
	}
	if cfg.DefaultThreshold, err = getScoreEnv("SEARCH_DEFAULT_THRESHOLD", 70); err != nil {
		return cfg, err
	}
	if cfg.DefaultMaxResults, err = getIntEnv("SEARCH_DEFAULT_MAX_RESULTS", 20); err != nil {
		return cfg, err
	}
	if cfg.DefaultMaxResults <= 0 {
		return cfg, fmt.Errorf("invalid SEARCH_DEFAULT_MAX_RESULTS: must be positive, got %d", cfg.DefaultMaxResults)
	}
	if cfg.ParallelMinRecords, err = getIntEnv("SEARCH_PARALLEL_MIN_RECORDS", 2048); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// getScoreEnv reads an integer that must lie within 0-100.
func getScoreEnv(key string, defaultValue int) (int, error) {
	v, err := getIntEnv(key, defaultValue)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("invalid %s: must be within 0-100, got %d", key, v)
	}
	return v, nil
}
