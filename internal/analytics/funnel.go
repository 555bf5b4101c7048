// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package analytics

import (
	"sort"
	"time"

	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
)

// ProjectFunnel is the cumulative project creation/build funnel over a
// period range.
type ProjectFunnel struct {
	Periods []Period

	// Created[i] is the number of projects created at or before the end
	// of period i; Built[i] counts projects with at least one build by
	// then. Both series are non-decreasing by construction.
	Created []int
	Built   []int
}

// ComputeProjectFunnel derives project identities from user id plus
// project hash, takes each project's creation time as its earliest event
// and its build time as its earliest event with is_build set, and reports
// cumulative counts per period end. Events without a project hash carry no
// project identity and are skipped. The full event history should be
// passed so creation times predating the period range still count.
func ComputeProjectFunnel(events []models.Event, periods []Period) (*ProjectFunnel, error) {
	if len(periods) == 0 {
		return nil, ErrNoPeriods
	}

	type project struct {
		createdAt time.Time
		builtAt   time.Time
		built     bool
	}
	projects := make(map[string]*project)

	for i := range events {
		e := &events[i]
		if e.Properties.ProjectHash == "" {
			continue
		}
		key := e.DistinctID + "\x00" + e.Properties.ProjectHash
		p, ok := projects[key]
		if !ok {
			p = &project{createdAt: e.Timestamp}
			projects[key] = p
		}
		if e.Timestamp.Before(p.createdAt) {
			p.createdAt = e.Timestamp
		}
		if e.Properties.IsBuild && (!p.built || e.Timestamp.Before(p.builtAt)) {
			p.builtAt = e.Timestamp
			p.built = true
		}
	}

	createdTimes := make([]time.Time, 0, len(projects))
	builtTimes := make([]time.Time, 0, len(projects))
	for _, p := range projects {
		createdTimes = append(createdTimes, p.createdAt)
		if p.built {
			builtTimes = append(builtTimes, p.builtAt)
		}
	}
	sort.Slice(createdTimes, func(i, j int) bool { return createdTimes[i].Before(createdTimes[j]) })
	sort.Slice(builtTimes, func(i, j int) bool { return builtTimes[i].Before(builtTimes[j]) })

	pf := &ProjectFunnel{
		Periods: periods,
		Created: make([]int, len(periods)),
		Built:   make([]int, len(periods)),
	}
	ci, bi := 0, 0
	for i, p := range periods {
		for ci < len(createdTimes) && !createdTimes[ci].After(p.End) {
			ci++
		}
		for bi < len(builtTimes) && !builtTimes[bi].After(p.End) {
			bi++
		}
		pf.Created[i] = ci
		pf.Built[i] = bi
	}

	return pf, nil
}
