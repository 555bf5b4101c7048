// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package analytics

import (
	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
)

// CohortRetention is the new-user retention matrix over a period range.
type CohortRetention struct {
	Periods []Period

	// Rows[i] describes the cohort of users whose first-ever event falls
	// in period i. Rows[i][0] is the cohort size; Rows[i][k] for k > 0 is
	// how many cohort members were active in period i+k. Row i has
	// len(Periods)-i entries. Values along a row are not monotonic: users
	// churn and return, and that signal is preserved as-is.
	Rows [][]int
}

// ComputeCohortRetention assigns each user to the period containing their
// globally first event and counts, for every later period, how many cohort
// members were active in it. Users whose first event predates the observed
// range belong to no cohort; their later activity is ignored here.
// Events must be sorted oldest to newest and cover the full history, so
// that first-event assignment is global rather than window-relative.
func ComputeCohortRetention(events []models.Event, periods []Period) (*CohortRetention, error) {
	if len(periods) == 0 {
		return nil, ErrNoPeriods
	}

	firstEver := firstEventTimes(events)

	// cohort index per user, -1 when the first event is outside the range
	cohortOf := make(map[string]int, len(firstEver))
	for user, ts := range firstEver {
		cohortOf[user] = -1
		for i, p := range periods {
			if p.Contains(ts) {
				cohortOf[user] = i
				break
			}
		}
	}

	buckets, err := GroupEventsByPeriods(events, periods)
	if err != nil {
		return nil, err
	}
	activeByPeriod := make([]map[string]struct{}, len(periods))
	for i, bucket := range buckets {
		activeByPeriod[i] = make(map[string]struct{})
		for j := range bucket {
			activeByPeriod[i][bucket[j].DistinctID] = struct{}{}
		}
	}

	cr := &CohortRetention{
		Periods: periods,
		Rows:    make([][]int, len(periods)),
	}
	for i := range periods {
		cr.Rows[i] = make([]int, len(periods)-i)
	}

	for user, cohort := range cohortOf {
		if cohort < 0 {
			continue
		}
		cr.Rows[cohort][0]++
		for j := cohort + 1; j < len(periods); j++ {
			if _, active := activeByPeriod[j][user]; active {
				cr.Rows[cohort][j-cohort]++
			}
		}
	}

	return cr, nil
}
