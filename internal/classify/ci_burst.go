// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package classify

import (
	"time"

	"github.com/wasp-lang/wasp-bot-sub000/internal/logging"
	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
)

// ciBurstWindow is how far back a same-IP event counts as "recent" for the
// CI-burst heuristic. A day plus an hour of slack, so daily scheduled CI
// runs from the same address are still caught.
const ciBurstWindow = 25 * time.Hour

// TagCIBursts predates likely-CI events that the remote environment failed
// to self-report: ephemeral CI containers get a fresh user id on every run,
// so a burst of distinct user ids from one IP inside a short window is
// almost certainly a CI machine, not real new users.
//
// For each event in time order, the event is tagged as CI when the same IP
// was seen recently (within ciBurstWindow) but the same (IP, user) pair was
// not. Both last-seen maps are updated with the current event after the
// check, regardless of outcome.
//
// The heuristic is order-dependent: events must be sorted oldest to newest,
// and the pass must run exactly once, before environment grouping. Context
// is mutated in place; tagging an already tagged event is a no-op.
func TagCIBursts(events []models.Event) {
	lastSeenByIP := make(map[string]time.Time)
	lastSeenByIPUser := make(map[string]time.Time)

	tagged := 0
	for i := range events {
		e := &events[i]
		ip := e.Properties.ClientIP
		if ip == "" {
			continue
		}
		pairKey := ip + "\x00" + e.DistinctID

		ipSeen, ipRecent := lastSeenByIP[ip]
		pairSeen, pairKnown := lastSeenByIPUser[pairKey]

		sameIPRecent := ipRecent && e.Timestamp.Sub(ipSeen) <= ciBurstWindow
		samePairRecent := pairKnown && e.Timestamp.Sub(pairSeen) <= ciBurstWindow

		if sameIPRecent && !samePairRecent {
			if !e.HasContextTag(string(EnvCI)) {
				e.AddContextTag(string(EnvCI))
				tagged++
			}
		}

		lastSeenByIP[ip] = e.Timestamp
		lastSeenByIPUser[pairKey] = e.Timestamp
	}

	if tagged > 0 {
		logging.Debug().Int("tagged", tagged).Msg("Tagged suspected CI-burst events")
	}
}
