// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package sync

import (
	"context"
	"time"

	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
)

// PageFilters bound a single page request against the remote event API.
type PageFilters struct {
	// EventType restricts results to one event name. Empty fetches all.
	EventType string

	// After is the exclusive lower timestamp bound. Zero means unset.
	After time.Time

	// Before is the inclusive upper timestamp bound. Zero means unset.
	Before time.Time

	// Offset skips the N newest events within the bounded range. The API
	// always returns the newest events first within any range, so offset
	// paging walks a fixed window without advancing the window itself.
	Offset int
}

// Page is one page of fetched events.
type Page struct {
	// Events, newest first, at most the vendor page size (100).
	Events []models.Event

	// HasMore reports whether the API claims more data exists in range.
	// Known vendor defect: under heavy request volume this can be a false
	// negative, so a single false is not proof of completeness.
	HasMore bool
}

// Fetcher is the abstract page-fetching capability the reconciler depends
// on. Production uses Client (optionally wrapped in BreakerFetcher); tests
// substitute in-memory fakes.
type Fetcher interface {
	FetchPage(ctx context.Context, filters PageFilters) (Page, error)
}
