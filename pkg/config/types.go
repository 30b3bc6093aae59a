// Package config provides configuration loading and validation for gcstw.
package config

import (
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	LogSources []string `yaml:"log_sources"`

	// Exclude drops matching paths after glob expansion (e.g. "*.gz").
	Exclude []string `yaml:"exclude,omitempty"`

	// STWThreshold is the total pause time in seconds above which a run is
	// reported as over threshold. Zero disables the check.
	STWThreshold float64 `yaml:"stw_threshold,omitempty"`

	Detection DetectionConfig `yaml:"detection,omitempty"`
	History   HistoryConfig   `yaml:"history,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Webhooks  []WebhookConfig `yaml:"webhooks,omitempty"`
}

// DetectionConfig tunes the collector detection pass.
type DetectionConfig struct {
	// MaxLines bounds the detection scan. Zero scans until a decision.
	MaxLines int `yaml:"max_lines,omitempty"`
}

// HistoryConfig enables recording of runs in a SQLite database.
type HistoryConfig struct {
	// Path is the database file. Empty disables history.
	Path string `yaml:"path,omitempty"`
}

// Enabled returns true if a history database is configured.
func (h HistoryConfig) Enabled() bool {
	return h.Path != ""
}

// LoggingConfig controls diagnostic logging. Results always go to stdout;
// diagnostics go to stderr and, if File is set, to a rotating log file.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
	Compress   bool   `yaml:"compress,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOverThreshold fires only when the total exceeds stw_threshold (default).
	WebhookTriggerOverThreshold WebhookTrigger = "over_threshold"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis results.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "over_threshold" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
