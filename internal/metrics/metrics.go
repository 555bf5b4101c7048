// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

// Package metrics provides Prometheus instrumentation for the telemetry
// pipeline. Collectors are registered via promauto on the default registry
// and exposed by the ops server at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Fetch metrics

	FetchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waspbot_fetch_requests_total",
			Help: "Total number of event API page requests",
		},
		[]string{"outcome"}, // "success", "error", "rate_limited"
	)

	FetchPageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waspbot_fetch_page_duration_seconds",
			Help:    "Duration of a single event API page request in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FetchEventsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waspbot_fetch_events_returned",
			Help:    "Number of events returned per page request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	// Reconciliation metrics

	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waspbot_reconcile_duration_seconds",
			Help:    "Duration of a full reconciliation run in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	ReconcileEventsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waspbot_reconcile_events_fetched_total",
			Help: "Total number of new events fetched during reconciliation",
		},
	)

	ReconcileErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waspbot_reconcile_errors_total",
			Help: "Total number of failed reconciliation runs",
		},
		[]string{"error_type"}, // "fetch", "store", "incomplete_history"
	)

	ReconcileLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waspbot_reconcile_last_success_timestamp",
			Help: "Unix timestamp of the last successful reconciliation",
		},
	)

	CacheEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waspbot_cache_events",
			Help: "Number of events currently held in the event cache",
		},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "waspbot_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waspbot_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Report metrics

	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waspbot_report_duration_seconds",
			Help:    "Duration of report generation in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"report", "granularity"},
	)
)

// RecordReconcile records the outcome of a reconciliation run.
// On success it updates the last-success timestamp; on failure it counts the
// error under the given type.
func RecordReconcile(duration time.Duration, fetched int, errType string) {
	ReconcileDuration.Observe(duration.Seconds())
	ReconcileEventsFetched.Add(float64(fetched))
	if errType == "" {
		ReconcileLastSuccess.SetToCurrentTime()
		return
	}
	ReconcileErrors.WithLabelValues(errType).Inc()
}
