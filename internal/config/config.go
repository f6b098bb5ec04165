package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port            int           `validate:"min=1,max=65535"`
	DBPath          string        `validate:"required"`
	LogLevel        string        `validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	LogFormat       string        `validate:"oneof=json console text"`
	CacheSize       int           `validate:"min=1"`
	CacheTTL        time.Duration `validate:"gt=0"`
	MaxMessageBytes int64         `validate:"min=256"`
}

// Load loads the configuration from an optional .env file and the environment
func Load() (*Config, error) {
	// A missing .env is fine; real env vars may be set instead
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:    getEnv("DB_PATH", "confirm.db"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8005")); err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	if cfg.CacheSize, err = strconv.Atoi(getEnv("CACHE_SIZE", "1024")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_SIZE value: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL value: %w", err)
	}
	if cfg.MaxMessageBytes, err = strconv.ParseInt(getEnv("MAX_MESSAGE_BYTES", "65536"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid MAX_MESSAGE_BYTES value: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value.
// An empty variable counts as unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
