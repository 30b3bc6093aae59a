package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout = 10 * time.Second
	DefaultLogLevel       = "warn"
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxBackups  = 3
)

// Environment variable names.
const (
	EnvLogLevel     = "GCSTW_LOG_LEVEL"
	EnvHistoryPath  = "GCSTW_HISTORY_PATH"
	EnvSTWThreshold = "GCSTW_STW_THRESHOLD"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogSources: []string{},
		Logging: LoggingConfig{
			Level:      DefaultLogLevel,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	c.Logging.Level = getenv(EnvLogLevel, c.Logging.Level)
	c.History.Path = getenv(EnvHistoryPath, c.History.Path)
	c.STWThreshold = getenvFloat(EnvSTWThreshold, c.STWThreshold)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
