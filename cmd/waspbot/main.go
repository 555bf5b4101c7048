// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

// Package main is the entry point for the Wasp telemetry analytics job.
//
// One run performs a full pipeline pass:
//
//  1. Configuration: load settings from environment variables and an
//     optional config file (Koanf v2)
//  2. Reconciliation: sync the local event cache with the remote PostHog
//     event API until the history is provably complete
//  3. Classification: filter internal traffic and tag CI-burst events
//  4. Reports: daily, weekly and monthly active-user, cohort-retention
//     and project-funnel reports, printed to stdout and optionally posted
//     to a Discord webhook
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (POSTHOG_API_KEY, CACHE_PATH, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// The only required setting is POSTHOG_API_KEY.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the run: in-flight fetches stop at the next
// request boundary and the cache keeps whatever batches were already
// persisted. A later run resumes from there.
//
// # Exit Codes
//
// The process exits non-zero on any error, including an incomplete event
// history after retries are exhausted. Partial history is never reported
// silently.
//
// # Concurrency
//
// Reconciliation owns the cache file for the duration of a run.
// Concurrent runs against the same cache file are not supported and must
// be serialized by the scheduler.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wasp-lang/wasp-bot-sub000/internal/analytics"
	"github.com/wasp-lang/wasp-bot-sub000/internal/classify"
	"github.com/wasp-lang/wasp-bot-sub000/internal/config"
	"github.com/wasp-lang/wasp-bot-sub000/internal/logging"
	"github.com/wasp-lang/wasp-bot-sub000/internal/metrics"
	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
	"github.com/wasp-lang/wasp-bot-sub000/internal/notify"
	"github.com/wasp-lang/wasp-bot-sub000/internal/ops"
	"github.com/wasp-lang/wasp-bot-sub000/internal/store"
	eventsync "github.com/wasp-lang/wasp-bot-sub000/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// default logger: config (and its logging section) not yet available
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("api_url", cfg.PostHog.APIURL).
		Str("cache_path", cfg.Cache.Path).
		Bool("discord_enabled", cfg.Discord.Enabled).
		Msg("Starting telemetry analytics run")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opsServer *ops.Server
	if cfg.Ops.Enabled {
		opsServer = ops.NewServer(cfg.Ops.Host, cfg.Ops.Port)
		go func() {
			if err := opsServer.Start(); err != nil {
				logging.Error().Err(err).Msg("Ops server failed")
			}
		}()
	}

	err = run(ctx, cfg)

	if opsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if shutdownErr := opsServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logging.Error().Err(shutdownErr).Msg("Ops server shutdown failed")
		}
		cancel()
	}

	if err != nil {
		if errors.Is(err, eventsync.ErrIncompleteHistory) {
			logging.Error().Err(err).Msg("Aborting: refusing to report on partial history")
		} else {
			logging.Error().Err(err).Msg("Analytics run failed")
		}
		os.Exit(1)
	}
	logging.Info().Msg("Analytics run complete")
}

func run(ctx context.Context, cfg *config.Config) error {
	client := eventsync.NewClient(&cfg.PostHog)
	fetcher := eventsync.NewBreakerFetcher(client)
	cache := store.NewFileStore(cfg.Cache.Path)

	reconciler := eventsync.NewReconciler(fetcher, cache, eventsync.ReconcilerConfig{
		EventType:         cfg.PostHog.EventType,
		ForwardWindow:     cfg.Reconcile.ForwardWindow,
		RetryAttempts:     cfg.Reconcile.RetryAttempts,
		RetryInitialDelay: cfg.Reconcile.RetryInitialDelay,
		RetryMaxDelay:     cfg.Reconcile.RetryMaxDelay,
	})

	events, err := reconciler.Run(ctx)
	if err != nil {
		return err
	}
	logging.Info().Int("events", len(events)).Msg("Event history reconciled")

	models.SortAscending(events)
	events = classify.Prepare(events)
	grouped := classify.GroupByExecutionEnv(events)
	logging.Info().
		Int("local", len(grouped.Local)).
		Int("total", len(events)).
		Msg("Events classified")

	var notifier *notify.Discord
	if cfg.Discord.Enabled {
		notifier = notify.NewDiscord(cfg.Discord.WebhookURL)
	}

	now := time.Now().UTC()
	jobs := []struct {
		granularity analytics.Granularity
		periods     int
	}{
		{analytics.GranularityDay, cfg.Reports.DailyPeriods},
		{analytics.GranularityWeek, cfg.Reports.WeeklyPeriods},
		{analytics.GranularityMonth, cfg.Reports.MonthlyPeriods},
	}
	for _, job := range jobs {
		if err := runReports(ctx, grouped, now, job.granularity, job.periods, notifier); err != nil {
			return fmt.Errorf("%s reports: %w", job.granularity, err)
		}
	}
	return nil
}

// runReports computes and emits the three reports for one granularity.
func runReports(ctx context.Context, grouped classify.Grouped, now time.Time, g analytics.Granularity, n int, notifier *notify.Discord) error {
	periods, err := analytics.CalcLastNPeriods(now, n, g)
	if err != nil {
		return err
	}

	reports := make([]*analytics.Report, 0, 3)

	start := time.Now()
	activity, err := analytics.ComputeUserActivity(grouped.Local, grouped.ByEnv, periods)
	if err != nil {
		return fmt.Errorf("user activity: %w", err)
	}
	metrics.ReportDuration.WithLabelValues("user_activity", string(g)).Observe(time.Since(start).Seconds())
	reports = append(reports, activity.Report(g))

	start = time.Now()
	retention, err := analytics.ComputeCohortRetention(grouped.Local, periods)
	if err != nil {
		return fmt.Errorf("cohort retention: %w", err)
	}
	metrics.ReportDuration.WithLabelValues("cohort_retention", string(g)).Observe(time.Since(start).Seconds())
	reports = append(reports, retention.Report(g))

	start = time.Now()
	funnel, err := analytics.ComputeProjectFunnel(grouped.Local, periods)
	if err != nil {
		return fmt.Errorf("project funnel: %w", err)
	}
	metrics.ReportDuration.WithLabelValues("project_funnel", string(g)).Observe(time.Since(start).Seconds())
	reports = append(reports, funnel.Report(g))

	for _, r := range reports {
		fmt.Println()
		fmt.Println(r.Title)
		for _, line := range r.Text {
			fmt.Println(line)
		}
		if notifier != nil {
			if err := notifier.SendReport(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}
