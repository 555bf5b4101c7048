// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

/*
Package sync acquires the telemetry event history from the remote paginated
event API and reconciles it with the local event cache.

Key Components:

  - Fetcher: abstract page-fetching capability (FetchPage(filters) ->
    events + hasMore), implemented by Client for PostHog and by fakes in tests
  - Client: HTTP client with request pacing, HTTP 429 backoff and
    Retry-After support
  - BreakerFetcher: circuit breaker wrapper around any Fetcher
  - Reconciler: rebuilds a complete, contiguous, deduplicated event history

Reconciliation runs in three phases:

 1. Backward fill: page backwards from the oldest cached event until the API
    reports no more data, persisting after every page.
 2. Forward fill: advance from the newest cached event to "now" in fixed
    time-boxed windows, paging inside each window by offset, persisting after
    every window.
 3. Completeness check: fail loudly if the oldest cached event is still newer
    than the known history floor. The API's hasMore signal can be a false
    negative under vendor rate limiting, so this floor check is the
    authoritative proof of completeness.

Concurrent reconciliation runs against the same cache file are not supported;
callers must serialize runs (one scheduled job at a time).
*/
package sync
