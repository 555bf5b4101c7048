// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

/*
client.go - PostHog Event API Client

HTTP client for the PostHog event endpoint
(GET {base}/api/event/?token=&event=&after=&before=&offset=).

Resilience Mechanisms:
  - Request pacing via a token-bucket rate limiter
  - Exponential backoff on HTTP 429 with Retry-After support
  - 30-second request timeout (configurable)
  - Context support for cancellation during backoff waits

The response wrapper is {next: string|null, results: [...]}; next non-null is
advisory-only proof of more data. The reconciler never trusts a single null
next as proof of completeness (see doc.go).
*/
package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/wasp-lang/wasp-bot-sub000/internal/config"
	"github.com/wasp-lang/wasp-bot-sub000/internal/metrics"
	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
)

// maxErrorBodySize limits how much of a response body is read for error
// reporting, preventing unbounded allocation on large error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// apiTimeFormat is the timestamp format the event API accepts in the
// after/before query parameters.
const apiTimeFormat = time.RFC3339

// readBodyForError reads the response body for error reporting (max 64KB).
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// eventsResponse is the wire shape of the event endpoint.
type eventsResponse struct {
	Next    *string        `json:"next"`
	Results []models.Event `json:"results"`
}

// Client implements Fetcher against a PostHog-compatible event API.
//
// Thread Safety: safe for concurrent use; each request creates its own HTTP
// request and the rate limiter is internally synchronized.
type Client struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int           // maximum retries on HTTP 429
	retryBaseDelay time.Duration // base delay for 429 exponential backoff
}

// NewClient creates an event API client from configuration.
func NewClient(cfg *config.PostHogConfig) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:        cfg.APIURL,
		apiKey:         cfg.APIKey,
		client:         &http.Client{Timeout: timeout},
		limiter:        limiter,
		maxRetries:     5,
		retryBaseDelay: time.Second,
	}
}

// FetchPage fetches one page of events matching the filters, newest first.
func (c *Client) FetchPage(ctx context.Context, filters PageFilters) (Page, error) {
	params := url.Values{}
	params.Set("token", c.apiKey)
	if filters.EventType != "" {
		params.Set("event", filters.EventType)
	}
	if !filters.After.IsZero() {
		params.Set("after", filters.After.UTC().Format(apiTimeFormat))
	}
	if !filters.Before.IsZero() {
		params.Set("before", filters.Before.UTC().Format(apiTimeFormat))
	}
	if filters.Offset > 0 {
		params.Set("offset", strconv.Itoa(filters.Offset))
	}

	reqURL := fmt.Sprintf("%s/api/event/?%s", c.baseURL, params.Encode())

	start := time.Now()
	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	metrics.FetchPageDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchRequests.WithLabelValues("error").Inc()
		return Page{}, fmt.Errorf("failed to fetch event page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchRequests.WithLabelValues("error").Inc()
		body := readBodyForError(resp.Body)
		return Page{}, fmt.Errorf("event page request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var decoded eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.FetchRequests.WithLabelValues("error").Inc()
		return Page{}, fmt.Errorf("failed to decode event page response: %w", err)
	}

	metrics.FetchRequests.WithLabelValues("success").Inc()
	metrics.FetchEventsReturned.Observe(float64(len(decoded.Results)))

	return Page{
		Events:  decoded.Results,
		HasMore: decoded.Next != nil,
	}, nil
}

// doRequestWithRateLimit performs a GET with client-side pacing and automatic
// HTTP 429 handling. Backoff doubles each retry (1s, 2s, 4s, 8s, 16s) unless
// the response carries a Retry-After header.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		metrics.FetchRequests.WithLabelValues("rate_limited").Inc()
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}
