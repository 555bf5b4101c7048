// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

// Package notify delivers finished reports to outbound collaborators.
// Currently that is a single Discord webhook.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/wasp-lang/wasp-bot-sub000/internal/analytics"
	"github.com/wasp-lang/wasp-bot-sub000/internal/logging"
)

// maxMessageLen is Discord's hard limit on message content length.
const maxMessageLen = 2000

// discordMaxRetries bounds 429 retries per chunk.
const discordMaxRetries = 3

// Discord posts report text to a Discord webhook, splitting long reports
// into multiple messages under the platform's length limit.
type Discord struct {
	webhookURL string
	httpClient *http.Client

	// retryBaseDelay grows per attempt when Discord rate-limits us and
	// does not send a Retry-After header.
	retryBaseDelay time.Duration
}

// NewDiscord returns a notifier aimed at the given webhook URL.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		webhookURL:     webhookURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		retryBaseDelay: time.Second,
	}
}

// SendReport posts a report's title and text lines as one or more webhook
// messages. Chunks are sent in order; a failed chunk aborts the rest so
// the channel never shows a report with a hole in the middle.
func (d *Discord) SendReport(ctx context.Context, r *analytics.Report) error {
	content := "**" + r.Title + "**\n" + strings.Join(r.Text, "\n")
	for i, chunk := range splitMessage(content, maxMessageLen) {
		if err := d.sendMessage(ctx, chunk); err != nil {
			return fmt.Errorf("send report %q chunk %d: %w", r.Title, i+1, err)
		}
	}
	logging.Debug().Str("report", r.Title).Msg("Report delivered to Discord")
	return nil
}

func (d *Discord) sendMessage(ctx context.Context, content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	for attempt := 0; attempt <= discordMaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("post webhook: %w", err)
		}
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests && attempt < discordMaxRetries:
			delay := d.retryBaseDelay * time.Duration(attempt+1)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, perr := strconv.Atoi(ra); perr == nil && secs > 0 {
					delay = time.Duration(secs) * time.Second
				}
			}
			logging.Warn().
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("Discord rate limited webhook, backing off")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		default:
			return fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
	}
	return fmt.Errorf("webhook rate limited after %d attempts", discordMaxRetries+1)
}

// splitMessage splits content into chunks of at most limit characters,
// preferring to break at line boundaries. A single line longer than the
// limit is split mid-line.
func splitMessage(content string, limit int) []string {
	if len(content) <= limit {
		return []string{content}
	}

	var chunks []string
	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		for len(line) > limit {
			if b.Len() > 0 {
				chunks = append(chunks, b.String())
				b.Reset()
			}
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		need := len(line)
		if b.Len() > 0 {
			need++ // newline separator
		}
		if b.Len()+need > limit {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}
