// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

// Package config provides layered configuration for the telemetry analytics
// pipeline using Koanf v2.
//
// Configuration is loaded from three sources (highest priority wins):
//
//  1. Environment variables (POSTHOG_API_KEY, CACHE_PATH, ...)
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Built-in defaults
//
// The resulting Config is validated before use; a config that fails
// validation never reaches the pipeline.
package config

import "time"

// Config is the root configuration for the analytics pipeline.
type Config struct {
	PostHog   PostHogConfig   `koanf:"posthog"`
	Cache     CacheConfig     `koanf:"cache"`
	Reconcile ReconcileConfig `koanf:"reconcile"`
	Reports   ReportsConfig   `koanf:"reports"`
	Discord   DiscordConfig   `koanf:"discord"`
	Ops       OpsConfig       `koanf:"ops"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// PostHogConfig configures access to the remote event API.
type PostHogConfig struct {
	// APIURL is the base URL of the PostHog instance.
	APIURL string `koanf:"api_url" validate:"required,url"`

	// APIKey is the project API key passed as the "token" query parameter.
	APIKey string `koanf:"api_key" validate:"required"`

	// EventType optionally restricts fetches to a single event name.
	// Empty fetches all events.
	EventType string `koanf:"event_type"`

	// PageSize is the vendor page size. The API caps pages at 100 events.
	PageSize int `koanf:"page_size" validate:"min=1,max=100"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond paces outgoing requests to stay under the vendor
	// rate limit. Zero disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"min=0"`
}

// CacheConfig configures the persisted event cache.
type CacheConfig struct {
	// Path is the location of the event cache snapshot file.
	Path string `koanf:"path" validate:"required"`
}

// ReconcileConfig tunes the reconciliation algorithm.
type ReconcileConfig struct {
	// ForwardWindow is the fixed duration of a forward-fill batch window.
	// Short enough that most windows hold fewer events than a vendor page,
	// long enough to keep the request count reasonable.
	ForwardWindow time.Duration `koanf:"forward_window"`

	// RetryAttempts bounds the retry wrapper around each fetch call.
	RetryAttempts int `koanf:"retry_attempts" validate:"min=1,max=20"`

	// RetryInitialDelay is the first backoff delay; it grows exponentially
	// up to RetryMaxDelay.
	RetryInitialDelay time.Duration `koanf:"retry_initial_delay"`
	RetryMaxDelay     time.Duration `koanf:"retry_max_delay"`
}

// ReportsConfig sets how many trailing periods each report covers.
type ReportsConfig struct {
	DailyPeriods   int `koanf:"daily_periods" validate:"min=1"`
	WeeklyPeriods  int `koanf:"weekly_periods" validate:"min=1"`
	MonthlyPeriods int `koanf:"monthly_periods" validate:"min=1"`
}

// DiscordConfig configures the outbound report webhook.
type DiscordConfig struct {
	Enabled    bool   `koanf:"enabled"`
	WebhookURL string `koanf:"webhook_url"`
}

// OpsConfig configures the operational HTTP server (/healthz, /metrics).
type OpsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port" validate:"min=0,max=65535"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		PostHog: PostHogConfig{
			APIURL:            "https://app.posthog.com",
			APIKey:            "",
			EventType:         "",
			PageSize:          100,
			Timeout:           30 * time.Second,
			RequestsPerSecond: 4,
		},
		Cache: CacheConfig{
			Path: "data/events.json",
		},
		Reconcile: ReconcileConfig{
			ForwardWindow:     6 * time.Hour,
			RetryAttempts:     10,
			RetryInitialDelay: 2 * time.Second,
			RetryMaxDelay:     5 * time.Minute,
		},
		Reports: ReportsConfig{
			DailyPeriods:   14,
			WeeklyPeriods:  12,
			MonthlyPeriods: 12,
		},
		Discord: DiscordConfig{
			Enabled:    false,
			WebhookURL: "",
		},
		Ops: OpsConfig{
			Enabled: false,
			Host:    "0.0.0.0",
			Port:    9187,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
