// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package models

import (
	"sort"
	"strings"
	"time"
)

// Event is a single telemetry event as reported by the remote event API.
//
// Events are created only by the remote API and are immutable once fetched,
// with one exception: the classifier may rewrite the Context property once to
// add a synthetic execution-environment tag (see AddContextTag).
type Event struct {
	DistinctID string     `json:"distinct_id"`
	Timestamp  time.Time  `json:"timestamp"`
	Name       string     `json:"event,omitempty"`
	Properties Properties `json:"properties"`
}

// Properties is the typed optional-field bag attached to every event.
// Missing fields keep their zero values; a missing Context means an empty
// tag set.
type Properties struct {
	OS          string `json:"os,omitempty"`
	IsBuild     bool   `json:"is_build,omitempty"`
	WaspVersion string `json:"wasp_version,omitempty"`
	ProjectHash string `json:"project_hash,omitempty"`
	// Context is a space-separated set of execution-context tags
	// (e.g. "ci", "codespaces"). Matching is case-insensitive.
	Context  string `json:"context,omitempty"`
	ClientIP string `json:"$ip,omitempty"`
}

// Key returns the identity used for deduplication across fetches.
// Two events with the same distinct_id and timestamp are the same event.
func (e *Event) Key() string {
	return e.DistinctID + "|" + e.Timestamp.UTC().Format(time.RFC3339Nano)
}

// ContextTags returns the context tags of the event, lowercased.
func (e *Event) ContextTags() []string {
	return strings.Fields(strings.ToLower(e.Properties.Context))
}

// HasContextTag reports whether the event carries the given context tag.
// Matching is case-insensitive.
func (e *Event) HasContextTag(tag string) bool {
	tag = strings.ToLower(tag)
	for _, t := range e.ContextTags() {
		if t == tag {
			return true
		}
	}
	return false
}

// AddContextTag appends a tag to the event's context property.
// Adding a tag that is already present is a no-op, so repeated application
// never duplicates tags. This is the only mutation an Event supports.
func (e *Event) AddContextTag(tag string) {
	if e.HasContextTag(tag) {
		return
	}
	if e.Properties.Context == "" {
		e.Properties.Context = tag
		return
	}
	e.Properties.Context += " " + tag
}

// SortAscending sorts events oldest-first, in place.
// The classifier and the period engine require this order.
func SortAscending(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// SortNewestFirst sorts events newest-first, in place.
// The event cache is persisted in this order.
func SortNewestFirst(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
}

// DedupByKey removes duplicate events (same distinct_id and timestamp),
// keeping the first occurrence and preserving relative order.
func DedupByKey(events []Event) []Event {
	seen := make(map[string]struct{}, len(events))
	out := events[:0:0]
	for i := range events {
		k := events[i].Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, events[i])
	}
	return out
}
