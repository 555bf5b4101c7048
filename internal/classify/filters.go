// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package classify

import (
	"time"

	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
)

// internalTeamIDs lists distinct_ids of team members whose usage must not
// count towards adoption numbers.
var internalTeamIDs = map[string]struct{}{
	"2f1f6b61bb6d2db9a1c7c82ee3f8e1a4": {},
	"8a0db9b2f1a34c4d9a3d5af0e6b7c1d2": {},
	"c3d1a9e4f6b24f7c8e9d0a1b2c3d4e5f": {},
	"5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b": {},
}

// excludedTraffic is a fixed IP + time-window exclusion covering a known
// load-test run that produced garbage events.
var excludedTraffic = struct {
	ip    string
	start time.Time
	end   time.Time
}{
	ip:    "35.176.148.13",
	start: time.Date(2023, 7, 12, 0, 0, 0, 0, time.UTC),
	end:   time.Date(2023, 7, 14, 0, 0, 0, 0, time.UTC),
}

// Prepare applies the full pre-aggregation pipeline: static filters first,
// then the CI-burst pass. Input must be sorted oldest to newest; the
// returned slice keeps that order.
func Prepare(events []models.Event) []models.Event {
	events = FilterOutInternalTeam(events)
	events = FilterOutExcludedTraffic(events)
	TagCIBursts(events)
	return events
}

// FilterOutInternalTeam drops events whose distinct_id belongs to the
// internal team denylist. Order is preserved.
func FilterOutInternalTeam(events []models.Event) []models.Event {
	out := events[:0:0]
	for i := range events {
		if _, internal := internalTeamIDs[events[i].DistinctID]; internal {
			continue
		}
		out = append(out, events[i])
	}
	return out
}

// FilterOutExcludedTraffic drops events from the known bad-traffic IP
// within its exclusion window. Order is preserved.
func FilterOutExcludedTraffic(events []models.Event) []models.Event {
	out := events[:0:0]
	for i := range events {
		e := &events[i]
		if e.Properties.ClientIP == excludedTraffic.ip &&
			e.Timestamp.After(excludedTraffic.start) &&
			e.Timestamp.Before(excludedTraffic.end) {
			continue
		}
		out = append(out, events[i])
	}
	return out
}
