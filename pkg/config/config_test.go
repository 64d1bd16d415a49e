package config

import (
	"os"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		HTTPPort:             "8001",
		StaticDataDir:        "shared/static_data",
		RedisHost:            "localhost",
		RedisPort:            "6379",
		QuoteTTL:             time.Hour,
		QuoteCacheTTL:        30 * time.Second,
		EngineWorkers:        32,
		OnDemandTimeout:      20 * time.Second,
		BatchEnabled:         true,
		BatchInterval:        15 * time.Minute,
		OpportunityTTL:       2 * time.Hour,
		PriceLoaderEnabled:   true,
		PriceRefreshInterval: 15 * time.Minute,
		ESIBaseURL:           "https://esi.evetech.net/latest",
		ESIRateLimit:         20,
		StorageMode:          StorageModeRedis,
	}
}

// TestLoadFromEnv_Defaults tests the documented defaults
func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "STORAGE_MODE", "ENGINE_WORKERS", "BATCH_ENABLED", "REDIS_HOST", "STATIC_DATA_DIR"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPPort != "8001" {
		t.Errorf("expected HTTPPort=8001, got %s", cfg.HTTPPort)
	}
	if cfg.StorageMode != StorageModeRedis {
		t.Errorf("expected StorageMode=redis, got %s", cfg.StorageMode)
	}
	if cfg.EngineWorkers != 32 {
		t.Errorf("expected EngineWorkers=32, got %d", cfg.EngineWorkers)
	}
	if !cfg.BatchEnabled {
		t.Error("expected batch enabled by default")
	}
	if cfg.QuoteTTL != time.Hour {
		t.Errorf("expected QuoteTTL=1h, got %s", cfg.QuoteTTL)
	}
	if cfg.RedisAddr() != "localhost:6379" {
		t.Errorf("expected redis addr localhost:6379, got %s", cfg.RedisAddr())
	}
}

// TestLoadFromEnv_Overrides tests environment overrides
func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("ENGINE_WORKERS", "8")
	t.Setenv("BATCH_ENABLED", "false")
	t.Setenv("ON_DEMAND_TIMEOUT", "5s")
	t.Setenv("STORAGE_MODE", "postgres")
	t.Setenv("ESI_RATE_LIMIT", "7.5")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPPort != "9000" || cfg.EngineWorkers != 8 || cfg.BatchEnabled {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.OnDemandTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.OnDemandTimeout)
	}
	if cfg.StorageMode != StorageModePostgres {
		t.Errorf("expected postgres storage, got %s", cfg.StorageMode)
	}
	if cfg.ESIRateLimit != 7.5 {
		t.Errorf("expected rate limit 7.5, got %f", cfg.ESIRateLimit)
	}
}

// TestLoadFromEnv_InvalidStorageMode tests that validation runs on load
func TestLoadFromEnv_InvalidStorageMode(t *testing.T) {
	t.Setenv("STORAGE_MODE", "s3")

	_, err := LoadFromEnv()
	if err == nil {
		t.Fatal("expected error for invalid storage mode")
	}
}

// TestValidate tests each validation rule
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "all-valid", mutate: func(*Config) {}},
		{
			name:   "empty-port",
			mutate: func(c *Config) { c.HTTPPort = "" },
			errMsg: "HTTP_PORT cannot be empty",
		},
		{
			name:   "zero-workers",
			mutate: func(c *Config) { c.EngineWorkers = 0 },
			errMsg: "ENGINE_WORKERS must be positive, got 0",
		},
		{
			name:   "negative-redis-db",
			mutate: func(c *Config) { c.RedisDB = -1 },
			errMsg: "REDIS_DB must be non-negative, got -1",
		},
		{
			name:   "zero-timeout",
			mutate: func(c *Config) { c.OnDemandTimeout = 0 },
			errMsg: "ON_DEMAND_TIMEOUT must be positive, got 0s",
		},
		{
			name:   "zero-batch-interval",
			mutate: func(c *Config) { c.BatchInterval = 0 },
			errMsg: "BATCH_INTERVAL must be positive, got 0s",
		},
		{
			name:   "zero-batch-interval-when-disabled",
			mutate: func(c *Config) { c.BatchEnabled = false; c.BatchInterval = 0 },
		},
		{
			name:   "zero-rate-limit",
			mutate: func(c *Config) { c.ESIRateLimit = 0 },
			errMsg: "ESI_RATE_LIMIT must be positive, got 0.000000",
		},
		{
			name:   "loader-disabled-skips-esi-checks",
			mutate: func(c *Config) { c.PriceLoaderEnabled = false; c.ESIBaseURL = "" },
		},
		{
			name:   "unknown-storage-mode",
			mutate: func(c *Config) { c.StorageMode = "file" },
			errMsg: `STORAGE_MODE must be 'redis', 'postgres' or 'console', got "file"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}

			if err == nil {
				t.Errorf("expected error %q, got nil", tt.errMsg)
			} else if err.Error() != tt.errMsg {
				t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

// TestGetIntOrDefault tests int parsing with fallback
func TestGetIntOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected int
	}{
		{name: "parse-100", envValue: "100", expected: 100},
		{name: "parse-negative", envValue: "-10", expected: -10},
		{name: "non-numeric", envValue: "abc", expected: 42},
		{name: "float", envValue: "3.14", expected: 42},
		{name: "empty-string", envValue: "", expected: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_INT_VAR", tt.envValue)
			t.Cleanup(func() { os.Unsetenv("TEST_INT_VAR") })

			result := getIntOrDefault("TEST_INT_VAR", 42)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

// TestGetDurationOrDefault tests duration parsing with fallback
func TestGetDurationOrDefault(t *testing.T) {
	t.Setenv("TEST_DURATION_VAR", "90s")
	if got := getDurationOrDefault("TEST_DURATION_VAR", time.Minute); got != 90*time.Second {
		t.Errorf("expected 90s, got %s", got)
	}

	t.Setenv("TEST_DURATION_VAR", "soon")
	if got := getDurationOrDefault("TEST_DURATION_VAR", time.Minute); got != time.Minute {
		t.Errorf("expected fallback 1m, got %s", got)
	}
}

// TestGetFloat64OrDefault tests float parsing with fallback
func TestGetFloat64OrDefault(t *testing.T) {
	t.Setenv("TEST_FLOAT_VAR", "2.5")
	if got := getFloat64OrDefault("TEST_FLOAT_VAR", 1); got != 2.5 {
		t.Errorf("expected 2.5, got %f", got)
	}

	t.Setenv("TEST_FLOAT_VAR", "x")
	if got := getFloat64OrDefault("TEST_FLOAT_VAR", 1); got != 1 {
		t.Errorf("expected fallback 1, got %f", got)
	}
}

// TestGetBoolOrDefault_Valid tests successful bool parsing
func TestGetBoolOrDefault_Valid(t *testing.T) {
	tests := []struct {
		name          string
		envValue      string
		defaultValue  bool
		expectedValue bool
	}{
		{name: "parse-true", envValue: "true", defaultValue: false, expectedValue: true},
		{name: "parse-false", envValue: "false", defaultValue: true, expectedValue: false},
		{name: "parse-1", envValue: "1", defaultValue: false, expectedValue: true},
		{name: "parse-0", envValue: "0", defaultValue: true, expectedValue: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_BOOL_VAR", tt.envValue)
			t.Cleanup(func() { os.Unsetenv("TEST_BOOL_VAR") })

			result := getBoolOrDefault("TEST_BOOL_VAR", tt.defaultValue)
			if result != tt.expectedValue {
				t.Errorf("expected %v, got %v", tt.expectedValue, result)
			}
		})
	}
}

// TestGetBoolOrDefault_Invalid tests fallback on parse failure
func TestGetBoolOrDefault_Invalid(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
	}{
		{name: "invalid-value", envValue: "yes", defaultValue: false},
		{name: "empty-string", envValue: "", defaultValue: true},
		{name: "numeric-2", envValue: "2", defaultValue: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_BOOL_VAR", tt.envValue)
			t.Cleanup(func() { os.Unsetenv("TEST_BOOL_VAR") })

			result := getBoolOrDefault("TEST_BOOL_VAR", tt.defaultValue)
			if result != tt.defaultValue {
				t.Errorf("expected default %v, got %v", tt.defaultValue, result)
			}
		})
	}
}

// TestNewLogger tests logger construction by level
func TestNewLogger(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		logger, err := NewLogger(level)
		if err != nil {
			t.Errorf("level %q: expected no error, got %v", level, err)
			continue
		}
		_ = logger.Sync()
	}

	if _, err := NewLogger("loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}
