package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// Storage modes for batch results.
const (
	StorageModeRedis    = "redis"
	StorageModePostgres = "postgres"
	StorageModeConsole  = "console"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel      string
	HTTPPort      string
	StaticDataDir string

	// Redis (quotes and batch results)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Quotes
	QuoteTTL      time.Duration
	QuoteCacheTTL time.Duration

	// Engine
	EngineWorkers   int
	OnDemandTimeout time.Duration
	BatchEnabled    bool
	BatchInterval   time.Duration
	OpportunityTTL  time.Duration

	// Price loader
	PriceLoaderEnabled   bool
	PriceRefreshInterval time.Duration
	ESIBaseURL           string
	ESIUserAgent         string
	ESIRateLimit         float64

	// Storage
	StorageMode  string // "redis", "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort:      getEnvOrDefault("HTTP_PORT", "8001"),
		StaticDataDir: getEnvOrDefault("STATIC_DATA_DIR", "shared/static_data"),

		// Redis defaults
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getIntOrDefault("REDIS_DB", 0),

		// Quote defaults
		QuoteTTL:      getDurationOrDefault("QUOTE_TTL", 1*time.Hour),
		QuoteCacheTTL: getDurationOrDefault("QUOTE_CACHE_TTL", 30*time.Second),

		// Engine defaults
		EngineWorkers:   getIntOrDefault("ENGINE_WORKERS", 32),
		OnDemandTimeout: getDurationOrDefault("ON_DEMAND_TIMEOUT", 20*time.Second),
		BatchEnabled:    getBoolOrDefault("BATCH_ENABLED", true),
		BatchInterval:   getDurationOrDefault("BATCH_INTERVAL", 15*time.Minute),
		OpportunityTTL:  getDurationOrDefault("OPPORTUNITY_TTL", 2*time.Hour),

		// Price loader defaults
		PriceLoaderEnabled:   getBoolOrDefault("PRICE_LOADER_ENABLED", true),
		PriceRefreshInterval: getDurationOrDefault("PRICE_REFRESH_INTERVAL", 15*time.Minute),
		ESIBaseURL:           getEnvOrDefault("ESI_BASE_URL", "https://esi.evetech.net/latest"),
		ESIUserAgent:         getEnvOrDefault("ESI_USER_AGENT", "eve-trade-arb/1.0"),
		ESIRateLimit:         getFloat64OrDefault("ESI_RATE_LIMIT", 20),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", StorageModeRedis),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "evetrade"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "evetrade"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "eve_trade"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.StaticDataDir == "" {
		return fmt.Errorf("STATIC_DATA_DIR cannot be empty")
	}

	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST cannot be empty")
	}

	if c.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must be non-negative, got %d", c.RedisDB)
	}

	if c.EngineWorkers <= 0 {
		return fmt.Errorf("ENGINE_WORKERS must be positive, got %d", c.EngineWorkers)
	}

	if c.OnDemandTimeout <= 0 {
		return fmt.Errorf("ON_DEMAND_TIMEOUT must be positive, got %s", c.OnDemandTimeout)
	}

	if c.QuoteTTL <= 0 {
		return fmt.Errorf("QUOTE_TTL must be positive, got %s", c.QuoteTTL)
	}

	if c.QuoteCacheTTL < 0 {
		return fmt.Errorf("QUOTE_CACHE_TTL must be non-negative, got %s", c.QuoteCacheTTL)
	}

	if c.OpportunityTTL <= 0 {
		return fmt.Errorf("OPPORTUNITY_TTL must be positive, got %s", c.OpportunityTTL)
	}

	if c.BatchEnabled && c.BatchInterval <= 0 {
		return fmt.Errorf("BATCH_INTERVAL must be positive, got %s", c.BatchInterval)
	}

	if c.PriceLoaderEnabled {
		if c.PriceRefreshInterval <= 0 {
			return fmt.Errorf("PRICE_REFRESH_INTERVAL must be positive, got %s", c.PriceRefreshInterval)
		}

		if c.ESIBaseURL == "" {
			return fmt.Errorf("ESI_BASE_URL cannot be empty")
		}

		if c.ESIRateLimit <= 0 {
			return fmt.Errorf("ESI_RATE_LIMIT must be positive, got %f", c.ESIRateLimit)
		}
	}

	switch c.StorageMode {
	case StorageModeRedis, StorageModePostgres, StorageModeConsole:
	default:
		return fmt.Errorf("STORAGE_MODE must be 'redis', 'postgres' or 'console', got %q", c.StorageMode)
	}

	return nil
}

// RedisAddr returns the host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, c.RedisPort)
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}
