// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validTestConfig returns a config that passes validation, for mutation in tests.
func validTestConfig() *Config {
	cfg := defaultConfig()
	cfg.PostHog.APIKey = "phc_test_key"
	return cfg
}

func TestDefaultConfigMissingAPIKey(t *testing.T) {
	cfg := defaultConfig()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing API key")
	}
	if !strings.Contains(err.Error(), "APIKey") {
		t.Errorf("expected error to name the API key field, got %q", err.Error())
	}
}

func TestValidateValidConfig(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidatePageSizeBounds(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		wantErr  bool
	}{
		{"minimum", 1, false},
		{"vendor cap", 100, false},
		{"zero", 0, true},
		{"above cap", 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			cfg.PostHog.PageSize = tt.pageSize
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("page_size=%d: expected error, got nil", tt.pageSize)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("page_size=%d: unexpected error: %v", tt.pageSize, err)
			}
		})
	}
}

func TestValidateReconcileTimings(t *testing.T) {
	cfg := validTestConfig()
	cfg.Reconcile.ForwardWindow = 10 * time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sub-minute forward window")
	}

	cfg = validTestConfig()
	cfg.Reconcile.RetryMaxDelay = time.Second
	cfg.Reconcile.RetryInitialDelay = time.Minute
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for max delay below initial delay")
	}
}

func TestValidateDiscord(t *testing.T) {
	cfg := validTestConfig()
	cfg.Discord.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for enabled discord without webhook URL")
	}

	cfg.Discord.WebhookURL = "http://insecure.example.com/hook"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-https webhook URL")
	}

	cfg.Discord.WebhookURL = "https://discord.com/api/webhooks/1/abc"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error for valid webhook URL: %v", err)
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yaml := `
posthog:
  api_key: file-key
  page_size: 50
reports:
  weekly_periods: 8
`
	if err := os.WriteFile(configPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("POSTHOG_PAGE_SIZE", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// env beats file
	if cfg.PostHog.PageSize != 25 {
		t.Errorf("page_size: expected env override 25, got %d", cfg.PostHog.PageSize)
	}
	// file beats defaults
	if cfg.PostHog.APIKey != "file-key" {
		t.Errorf("api_key: expected file value, got %q", cfg.PostHog.APIKey)
	}
	if cfg.Reports.WeeklyPeriods != 8 {
		t.Errorf("weekly_periods: expected file value 8, got %d", cfg.Reports.WeeklyPeriods)
	}
	// defaults survive where not overridden
	if cfg.Reconcile.ForwardWindow != 6*time.Hour {
		t.Errorf("forward_window: expected default 6h, got %s", cfg.Reconcile.ForwardWindow)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"POSTHOG_API_KEY", "posthog.api_key"},
		{"CACHE_PATH", "cache.path"},
		{"REPORTS_WEEKLY_PERIODS", "reports.weekly_periods"},
		{"LOG_LEVEL", "logging.level"},
		{"UNRELATED_VAR", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}
