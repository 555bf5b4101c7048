// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/waspbot/config.yaml",
	"/etc/waspbot/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration using Koanf v2 with layered sources:
//
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML config file (if present)
//  3. Environment variables: override any setting
//
// The loaded configuration is validated before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names to config paths. Only mapped
// variables are honored; unrelated environment noise is ignored.
var envMappings = map[string]string{
	"posthog_api_url":             "posthog.api_url",
	"posthog_api_key":             "posthog.api_key",
	"posthog_event_type":          "posthog.event_type",
	"posthog_page_size":           "posthog.page_size",
	"posthog_timeout":             "posthog.timeout",
	"posthog_requests_per_second": "posthog.requests_per_second",

	"cache_path": "cache.path",

	"reconcile_forward_window":      "reconcile.forward_window",
	"reconcile_retry_attempts":      "reconcile.retry_attempts",
	"reconcile_retry_initial_delay": "reconcile.retry_initial_delay",
	"reconcile_retry_max_delay":     "reconcile.retry_max_delay",

	"reports_daily_periods":   "reports.daily_periods",
	"reports_weekly_periods":  "reports.weekly_periods",
	"reports_monthly_periods": "reports.monthly_periods",

	"discord_enabled":     "discord.enabled",
	"discord_webhook_url": "discord.webhook_url",

	"ops_enabled": "ops.enabled",
	"ops_host":    "ops.host",
	"ops_port":    "ops.port",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - POSTHOG_API_KEY -> posthog.api_key
//   - CACHE_PATH -> cache.path
//   - REPORTS_WEEKLY_PERIODS -> reports.weekly_periods
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
