// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

// Package analytics buckets a sorted event history into calendar periods
// and computes the three usage reports: active users by age cohort, cohort
// retention, and the project creation/build funnel.
//
// Everything here is pure computation over in-memory event slices: no
// network, no persistence. All functions expect input events sorted oldest
// to newest, and all aggregators treat an empty event list as a valid
// input producing a zero-valued (not nil) result. Report generation is
// stateless and safe to run concurrently against a shared event snapshot.
package analytics
