// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package analytics

import (
	"time"

	"github.com/wasp-lang/wasp-bot-sub000/internal/classify"
	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
)

// Age buckets for active users, by days since their first-ever event.
const (
	AgeBucketDay     = iota // <= 1 day
	AgeBucketWeek           // (1, 7] days
	AgeBucketMonth          // (7, 30] days
	AgeBucketOlder          // > 30 days
	numAgeBuckets
)

// AgeBucketLabels names the buckets in report order.
var AgeBucketLabels = [numAgeBuckets]string{"<=1d", "(1,7]d", "(7,30]d", ">30d"}

// UserActivity is the active-users-by-age series over a period range.
type UserActivity struct {
	Periods []Period

	// Counts[b][i] is the number of users active in period i whose age at
	// that time falls in bucket b.
	Counts [numAgeBuckets][]int

	// Averages[b] is the mean of Counts[b] across all periods.
	Averages [numAgeBuckets]float64

	// EnvUsers counts unique active users per non-local execution
	// environment in the most recent period only.
	EnvUsers map[classify.ExecutionEnv]int
}

// ComputeUserActivity buckets local users active in each period by their
// age: whole days between their first-ever event and their newest event
// within the period, plus one, minimum one. Non-local events contribute
// only to the per-environment unique-user counts for the newest period.
//
// Both event slices must be sorted oldest to newest. The full local
// history should be passed, not just events inside the periods, so that
// first-ever timestamps are correct.
func ComputeUserActivity(local []models.Event, byEnv map[classify.ExecutionEnv][]models.Event, periods []Period) (*UserActivity, error) {
	if len(periods) == 0 {
		return nil, ErrNoPeriods
	}

	ua := &UserActivity{
		Periods:  periods,
		EnvUsers: make(map[classify.ExecutionEnv]int, len(byEnv)),
	}
	for b := range ua.Counts {
		ua.Counts[b] = make([]int, len(periods))
	}

	firstEver := firstEventTimes(local)

	buckets, err := GroupEventsByPeriods(local, periods)
	if err != nil {
		return nil, err
	}

	for i, bucket := range buckets {
		// newest in-period event per user; events arrive oldest first, so
		// the last write wins
		newest := make(map[string]time.Time)
		for j := range bucket {
			newest[bucket[j].DistinctID] = bucket[j].Timestamp
		}
		for user, ts := range newest {
			age := userAgeDays(firstEver[user], ts)
			ua.Counts[ageBucketFor(age)][i]++
		}
	}

	for b := range ua.Counts {
		total := 0
		for _, c := range ua.Counts[b] {
			total += c
		}
		ua.Averages[b] = float64(total) / float64(len(periods))
	}

	last := periods[len(periods)-1]
	for env, events := range byEnv {
		users := make(map[string]struct{})
		for i := range events {
			if last.Contains(events[i].Timestamp) {
				users[events[i].DistinctID] = struct{}{}
			}
		}
		ua.EnvUsers[env] = len(users)
	}

	return ua, nil
}

// firstEventTimes maps each user to the timestamp of their first-ever
// event. Input must be sorted oldest to newest.
func firstEventTimes(events []models.Event) map[string]time.Time {
	first := make(map[string]time.Time)
	for i := range events {
		if _, seen := first[events[i].DistinctID]; !seen {
			first[events[i].DistinctID] = events[i].Timestamp
		}
	}
	return first
}

// userAgeDays is the age of a user at a reference time: whole days since
// their first event, plus one, never below one.
func userAgeDays(first, at time.Time) int {
	days := int(at.Sub(first).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func ageBucketFor(days int) int {
	switch {
	case days <= 1:
		return AgeBucketDay
	case days <= 7:
		return AgeBucketWeek
	case days <= 30:
		return AgeBucketMonth
	default:
		return AgeBucketOlder
	}
}
