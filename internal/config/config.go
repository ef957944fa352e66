// Package config loads daemon configuration from the environment, with an
// optional .env file for development.
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the daemon configuration.
type Config struct {
	// DBPath is the path of the local SQLite ledger file.
	DBPath string

	// SyncInterval is the periodic background sync cadence.
	SyncInterval time.Duration

	// ReminderInterval is the daily reminder cadence.
	ReminderInterval time.Duration

	// TokenSecret signs and verifies identity tokens.
	TokenSecret string

	// TokenDuration is how long a minted identity token stays valid.
	TokenDuration time.Duration

	// MetricsAddr is the listen address of the Prometheus metrics endpoint.
	// Empty disables it.
	MetricsAddr string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from environment variables, falling back to
// development defaults. A missing .env file is not an error.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment only")
	}

	return &Config{
		DBPath:           getEnv("MESSMATE_DB_PATH", "data/messmate.db"),
		SyncInterval:     getDuration("MESSMATE_SYNC_INTERVAL", 15*time.Minute),
		ReminderInterval: getDuration("MESSMATE_REMINDER_INTERVAL", 24*time.Hour),
		TokenSecret:      getEnv("MESSMATE_TOKEN_SECRET", "dev-secret-do-not-use-in-production"),
		TokenDuration:    getDuration("MESSMATE_TOKEN_DURATION", 24*time.Hour),
		MetricsAddr:      getEnv("MESSMATE_METRICS_ADDR", ":9090"),
		LogLevel:         getEnv("MESSMATE_LOG_LEVEL", "info"),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a duration-valued environment variable, warning and
// falling back on bad input.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}
