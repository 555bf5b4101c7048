// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/wasp-lang/wasp-bot-sub000/internal/logging"
	"github.com/wasp-lang/wasp-bot-sub000/internal/metrics"
	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
	"github.com/wasp-lang/wasp-bot-sub000/internal/store"
)

// ErrIncompleteHistory reports that reconciliation finished without the
// cache reaching the known history floor. Callers must surface this rather
// than fall back to partial analytics.
var ErrIncompleteHistory = errors.New("event history incomplete")

// DefaultHistoryFloor is the earliest possible telemetry event: the day the
// Wasp CLI first shipped usage reporting. Any complete cache reaches at or
// before this instant.
var DefaultHistoryFloor = time.Date(2021, time.January, 25, 0, 0, 0, 0, time.UTC)

// ReconcilerConfig tunes a Reconciler.
type ReconcilerConfig struct {
	// EventType restricts fetches to one event name. Empty fetches all.
	EventType string

	// Floor is the oldest possible event timestamp. Defaults to
	// DefaultHistoryFloor.
	Floor time.Time

	// ForwardWindow is the fixed duration of one forward-fill batch window.
	// Defaults to 6 hours.
	ForwardWindow time.Duration

	// RetryAttempts bounds the retry wrapper around each fetch call.
	// Defaults to 10.
	RetryAttempts int

	// RetryInitialDelay and RetryMaxDelay bound the exponential backoff
	// between fetch attempts. Default 2s growing to 5m.
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration

	// Now supplies the current time; injectable for tests. Defaults to
	// time.Now.
	Now func() time.Time
}

// Reconciler merges the local event cache with the remote paginated source
// until the cache is provably complete over the history floor.
//
// The Reconciler is the only writer of the cache for the duration of a run.
// Runs against the same store must be serialized by the caller.
type Reconciler struct {
	fetcher Fetcher
	store   store.Store
	cfg     ReconcilerConfig
}

// NewReconciler creates a Reconciler over the given fetcher and store.
// Zero-valued config fields take their documented defaults.
func NewReconciler(fetcher Fetcher, st store.Store, cfg ReconcilerConfig) *Reconciler {
	if cfg.Floor.IsZero() {
		cfg.Floor = DefaultHistoryFloor
	}
	if cfg.ForwardWindow <= 0 {
		cfg.ForwardWindow = 6 * time.Hour
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 10
	}
	if cfg.RetryInitialDelay <= 0 {
		cfg.RetryInitialDelay = 2 * time.Second
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Reconciler{fetcher: fetcher, store: st, cfg: cfg}
}

// Run reconciles the cache and returns the complete event list, newest
// first. It persists incremental progress after every fetched batch, so an
// interrupted run resumes where it left off.
func (r *Reconciler) Run(ctx context.Context) ([]models.Event, error) {
	started := time.Now()
	now := r.cfg.Now()

	cache, err := r.store.Load(ctx)
	if err != nil {
		metrics.RecordReconcile(time.Since(started), 0, "store")
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	models.SortNewestFirst(cache)
	cache = models.DedupByKey(cache)
	cachedBefore := len(cache)

	seen := make(map[string]struct{}, len(cache))
	for i := range cache {
		seen[cache[i].Key()] = struct{}{}
	}

	logging.Info().
		Int("cached", len(cache)).
		Time("now", now).
		Msg("Starting reconciliation")

	// Phase A: fill backward until the API reports no more data. Skipped
	// when the cache already reaches the floor, so a fully reconciled cache
	// costs no calls beyond the forward-fill boundary check.
	if len(cache) == 0 || oldestTimestamp(cache).After(r.cfg.Floor) {
		cache, err = r.fillBackward(ctx, cache, seen)
		if err != nil {
			metrics.RecordReconcile(time.Since(started), len(cache)-cachedBefore, "fetch")
			return nil, err
		}
	}

	// Phase B: fill forward to "now" in fixed time-boxed windows.
	cache, err = r.fillForward(ctx, cache, seen, now)
	if err != nil {
		metrics.RecordReconcile(time.Since(started), len(cache)-cachedBefore, "fetch")
		return nil, err
	}

	// Phase C: completeness check. The hasMore signal can lie under vendor
	// rate limiting; the floor is the authoritative proof.
	if len(cache) == 0 || oldestTimestamp(cache).After(r.cfg.Floor) {
		oldest := "none"
		if len(cache) > 0 {
			oldest = oldestTimestamp(cache).Format(time.RFC3339)
		}
		metrics.RecordReconcile(time.Since(started), len(cache)-cachedBefore, "incomplete_history")
		return nil, fmt.Errorf(
			"%w: oldest cached event (%s) has not reached the history floor (%s); the event API likely rate-limited the fetch",
			ErrIncompleteHistory, oldest, r.cfg.Floor.Format(time.RFC3339))
	}

	fetched := len(cache) - cachedBefore
	metrics.RecordReconcile(time.Since(started), fetched, "")
	metrics.CacheEvents.Set(float64(len(cache)))
	logging.Info().
		Int("events", len(cache)).
		Int("fetched", fetched).
		Dur("duration", time.Since(started)).
		Msg("Reconciliation completed")

	return cache, nil
}

// fillBackward repeatedly fetches pages older than the current oldest cached
// event, appending each batch to the cache tail and persisting after every
// batch.
func (r *Reconciler) fillBackward(ctx context.Context, cache []models.Event, seen map[string]struct{}) ([]models.Event, error) {
	for {
		filters := PageFilters{EventType: r.cfg.EventType}
		if len(cache) > 0 {
			filters.Before = oldestTimestamp(cache)
		}

		page, err := r.fetchPageWithRetry(ctx, filters)
		if err != nil {
			return cache, fmt.Errorf("backward fill: %w", err)
		}

		fresh := filterNew(seen, page.Events)
		if len(fresh) > 0 {
			cache = append(cache, fresh...)
			if err := r.store.Save(ctx, cache); err != nil {
				return cache, fmt.Errorf("backward fill: failed to persist cache: %w", err)
			}
		}

		logging.Debug().
			Int("fetched", len(page.Events)).
			Int("new", len(fresh)).
			Int("cached", len(cache)).
			Bool("has_more", page.HasMore).
			Msg("Backward fill batch")

		if !page.HasMore {
			return cache, nil
		}
		if len(fresh) == 0 {
			// hasMore claims more data but the page brought nothing new.
			// Stop rather than refetch the same page forever; Phase C
			// decides whether the history is actually complete.
			logging.Warn().Msg("Backward fill made no progress despite has_more, stopping")
			return cache, nil
		}
	}
}

// fillForward advances from the newest cached event towards "now" in fixed
// time-boxed windows, paging inside each window by offset. Windows are
// time-boxed (rather than trusting vendor pages) so that progress persisted
// after each window makes an interrupted run resumable.
func (r *Reconciler) fillForward(ctx context.Context, cache []models.Event, seen map[string]struct{}, now time.Time) ([]models.Event, error) {
	windowStart := r.cfg.Floor
	if len(cache) > 0 {
		windowStart = newestTimestamp(cache)
	}

	for {
		windowEnd := windowStart.Add(r.cfg.ForwardWindow)

		collected, err := r.fetchWindow(ctx, windowStart, windowEnd)
		if err != nil {
			return cache, err
		}

		fresh := filterNew(seen, collected)
		if len(fresh) > 0 {
			models.SortNewestFirst(fresh)
			cache = append(fresh, cache...)
			if err := r.store.Save(ctx, cache); err != nil {
				return cache, fmt.Errorf("forward fill: failed to persist cache: %w", err)
			}
		}

		logging.Debug().
			Time("window_start", windowStart).
			Time("window_end", windowEnd).
			Int("fetched", len(collected)).
			Int("new", len(fresh)).
			Msg("Forward fill window")

		// An empty window does not by itself prove completeness: the
		// window must also extend past "now".
		if len(collected) == 0 && !windowEnd.Before(now) {
			return cache, nil
		}

		switch {
		case len(fresh) > 0:
			windowStart = newestTimestamp(cache)
		default:
			windowStart = windowEnd
		}
	}
}

// fetchWindow pages through a fixed (after, before] window with increasing
// offset until the API reports no more data for that window.
func (r *Reconciler) fetchWindow(ctx context.Context, after, before time.Time) ([]models.Event, error) {
	var out []models.Event
	offset := 0

	for {
		page, err := r.fetchPageWithRetry(ctx, PageFilters{
			EventType: r.cfg.EventType,
			After:     after,
			Before:    before,
			Offset:    offset,
		})
		if err != nil {
			return nil, fmt.Errorf("forward fill window (%s, %s]: %w",
				after.Format(time.RFC3339), before.Format(time.RFC3339), err)
		}

		out = append(out, page.Events...)
		if !page.HasMore || len(page.Events) == 0 {
			return out, nil
		}
		offset += len(page.Events)
	}
}

// fetchPageWithRetry wraps a single fetch in bounded exponential backoff.
// Every fetch error is treated as transient until attempts are exhausted.
func (r *Reconciler) fetchPageWithRetry(ctx context.Context, filters PageFilters) (Page, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.RetryInitialDelay
	bo.MaxInterval = r.cfg.RetryMaxDelay
	bo.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	var page Page
	attempt := 0
	operation := func() error {
		attempt++
		p, err := r.fetcher.FetchPage(ctx, filters)
		if err != nil {
			logging.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", r.cfg.RetryAttempts).
				Msg("Event page fetch failed")
			return err
		}
		page = p
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(r.cfg.RetryAttempts-1)), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return Page{}, fmt.Errorf("fetch failed after %d attempts: %w", attempt, err)
	}
	return page, nil
}

// filterNew returns the events not yet seen, marking them seen.
func filterNew(seen map[string]struct{}, events []models.Event) []models.Event {
	var fresh []models.Event
	for i := range events {
		k := events[i].Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		fresh = append(fresh, events[i])
	}
	return fresh
}

// newestTimestamp returns the timestamp of the newest event.
// The cache invariant is newest-first order.
func newestTimestamp(cache []models.Event) time.Time {
	return cache[0].Timestamp
}

// oldestTimestamp returns the timestamp of the oldest event.
func oldestTimestamp(cache []models.Event) time.Time {
	return cache[len(cache)-1].Timestamp
}
