// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

// Package classify tags telemetry events with an execution environment and
// filters out traffic that must not reach the analytics.
//
// Classification happens in a fixed order, because the CI-burst heuristic is
// order- and content-sensitive:
//
//  1. Static filters: drop internal-team events and known bad test traffic.
//  2. CI-burst pass: rewrite context on suspected CI events (sorted input).
//  3. Environment grouping: split events into local vs. known non-local
//     environments.
package classify

import (
	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
)

// ExecutionEnv classifies where an event originated. Exactly one
// environment applies per event; EnvLocal is the default when no known tag
// matches.
type ExecutionEnv string

const (
	EnvLocal      ExecutionEnv = "local"
	EnvCI         ExecutionEnv = "ci"
	EnvCodespaces ExecutionEnv = "codespaces"
	EnvGitpod     ExecutionEnv = "gitpod"
	EnvReplit     ExecutionEnv = "replit"
)

// nonLocalEnvs maps known context tags to non-local environments, in match
// priority order. First match wins.
var nonLocalEnvs = []struct {
	tag string
	env ExecutionEnv
}{
	{"ci", EnvCI},
	{"codespaces", EnvCodespaces},
	{"gitpod", EnvGitpod},
	{"replit", EnvReplit},
}

// NonLocalEnvs returns the fixed set of known non-local environments.
func NonLocalEnvs() []ExecutionEnv {
	out := make([]ExecutionEnv, 0, len(nonLocalEnvs))
	for _, e := range nonLocalEnvs {
		out = append(out, e.env)
	}
	return out
}

// ClassifyEnv returns the execution environment of a single event: the
// first known non-local tag found in its context property
// (case-insensitive), or EnvLocal when none matches.
func ClassifyEnv(e *models.Event) ExecutionEnv {
	for _, candidate := range nonLocalEnvs {
		if e.HasContextTag(candidate.tag) {
			return candidate.env
		}
	}
	return EnvLocal
}

// Grouped is the result of splitting events by execution environment.
type Grouped struct {
	// Local holds events from developer machines.
	Local []models.Event

	// ByEnv holds events per known non-local environment. Environments
	// with no events are present with an empty slice, so consumers can
	// range over the full environment table.
	ByEnv map[ExecutionEnv][]models.Event
}

// GroupByExecutionEnv splits events into local events and per-environment
// buckets. Relative event order is preserved within each bucket.
func GroupByExecutionEnv(events []models.Event) Grouped {
	g := Grouped{
		ByEnv: make(map[ExecutionEnv][]models.Event, len(nonLocalEnvs)),
	}
	for _, e := range nonLocalEnvs {
		g.ByEnv[e.env] = []models.Event{}
	}

	for i := range events {
		env := ClassifyEnv(&events[i])
		if env == EnvLocal {
			g.Local = append(g.Local, events[i])
			continue
		}
		g.ByEnv[env] = append(g.ByEnv[env], events[i])
	}
	return g
}
