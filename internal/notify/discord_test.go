// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/wasp-lang/wasp-bot-sub000/internal/analytics"
)

func newTestDiscord(url string) *Discord {
	d := NewDiscord(url)
	d.retryBaseDelay = time.Millisecond
	return d
}

func decodeContent(t *testing.T, body io.Reader) string {
	t.Helper()
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		t.Fatalf("decode webhook payload: %v", err)
	}
	return payload.Content
}

func TestSendReportSingleMessage(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}
		got = append(got, decodeContent(t, r.Body))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	report := &analytics.Report{
		Title: "Weekly usage",
		Text:  []string{"line one", "line two"},
	}
	if err := newTestDiscord(srv.URL).SendReport(context.Background(), report); err != nil {
		t.Fatalf("SendReport: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if !strings.Contains(got[0], "**Weekly usage**") {
		t.Errorf("message missing title: %q", got[0])
	}
	if !strings.Contains(got[0], "line two") {
		t.Errorf("message missing body: %q", got[0])
	}
}

func TestSendReportChunksLongReport(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, decodeContent(t, r.Body))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var lines []string
	for i := 0; i < 60; i++ {
		lines = append(lines, strings.Repeat("x", 90))
	}
	report := &analytics.Report{Title: "Big report", Text: lines}

	if err := newTestDiscord(srv.URL).SendReport(context.Background(), report); err != nil {
		t.Fatalf("SendReport: %v", err)
	}

	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}
	for i, chunk := range got {
		if len(chunk) > maxMessageLen {
			t.Errorf("chunk %d is %d chars, exceeds limit", i, len(chunk))
		}
	}
	joined := strings.Join(got, "\n")
	want := "**Big report**\n" + strings.Join(lines, "\n")
	if joined != want {
		t.Error("chunk concatenation does not reproduce the report text")
	}
}

func TestSendReportRetriesRateLimit(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	report := &analytics.Report{Title: "Retry me", Text: []string{"body"}}
	if err := newTestDiscord(srv.URL).SendReport(context.Background(), report); err != nil {
		t.Fatalf("SendReport: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestSendReportSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	report := &analytics.Report{Title: "Broken", Text: []string{"body"}}
	err := newTestDiscord(srv.URL).SendReport(context.Background(), report)
	if err == nil {
		t.Fatal("expected error on 400 response")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Errorf("error should name the status: %v", err)
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name    string
		content string
		limit   int
		want    int
	}{
		{"short stays whole", "hello\nworld", 100, 1},
		{"splits at lines", "aaaa\nbbbb\ncccc", 9, 2},
		{"splits long single line", strings.Repeat("z", 25), 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := splitMessage(tt.content, tt.limit)
			if len(chunks) != tt.want {
				t.Fatalf("got %d chunks, want %d: %q", len(chunks), tt.want, chunks)
			}
			for i, c := range chunks {
				if len(c) > tt.limit {
					t.Errorf("chunk %d exceeds limit: %d > %d", i, len(c), tt.limit)
				}
			}
		})
	}
}
