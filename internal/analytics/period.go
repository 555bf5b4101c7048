// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
)

// Granularity is the calendar unit a report is bucketed by.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ErrNoPeriods is returned when a report is requested over zero periods or
// an unknown granularity. It signals a caller bug, never a transient
// condition.
var ErrNoPeriods = errors.New("no periods to aggregate over")

// Period is a calendar window. Membership is exclusive on the start and
// inclusive on the end: an event belongs to the period when
// start < timestamp <= end.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls inside the period.
func (p Period) Contains(ts time.Time) bool {
	return ts.After(p.Start) && !ts.After(p.End)
}

// Label renders the period for report output: the day it covers, the
// Monday of its week, or its calendar month.
func (p Period) Label(g Granularity) string {
	switch g {
	case GranularityWeek:
		return p.Start.Format("2006-01-02") + " wk"
	case GranularityMonth:
		return p.Start.Format("2006-01")
	default:
		return p.Start.Format("2006-01-02")
	}
}

// CalcLastNPeriods returns the last n complete periods of the given
// granularity ending at or before now: consecutive, non-overlapping and
// ascending. Weeks start on Monday. All boundaries are computed in UTC.
func CalcLastNPeriods(now time.Time, n int, g Granularity) ([]Period, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: requested %d %s periods", ErrNoPeriods, n, g)
	}
	now = now.UTC()

	periods := make([]Period, 0, n)
	switch g {
	case GranularityDay:
		start := truncateToDay(now).AddDate(0, 0, -n)
		for i := 0; i < n; i++ {
			end := start.AddDate(0, 0, 1)
			periods = append(periods, Period{Start: start, End: end})
			start = end
		}
	case GranularityWeek:
		start := truncateToWeek(now).AddDate(0, 0, -7*n)
		for i := 0; i < n; i++ {
			end := start.AddDate(0, 0, 7)
			periods = append(periods, Period{Start: start, End: end})
			start = end
		}
	case GranularityMonth:
		start := monthsBack(now, n)
		for i := 0; i < n; i++ {
			end := start.AddDate(0, 1, 0)
			periods = append(periods, Period{Start: start, End: end})
			start = end
		}
	default:
		return nil, fmt.Errorf("%w: unknown granularity %q", ErrNoPeriods, g)
	}
	return periods, nil
}

// GroupEventsByPeriods buckets events into the given periods in a single
// linear pass. Events outside the overall range are dropped; the output
// has exactly len(periods) buckets preserving relative event order.
// Events must be pre-sorted ascending by timestamp; this is a documented
// precondition and is not re-validated.
func GroupEventsByPeriods(events []models.Event, periods []Period) ([][]models.Event, error) {
	if len(periods) == 0 {
		return nil, ErrNoPeriods
	}

	buckets := make([][]models.Event, len(periods))
	for i := range buckets {
		buckets[i] = []models.Event{}
	}

	idx := 0
	for i := range events {
		ts := events[i].Timestamp
		if !ts.After(periods[0].Start) {
			continue
		}
		for idx < len(periods) && ts.After(periods[idx].End) {
			idx++
		}
		if idx == len(periods) {
			break
		}
		buckets[idx] = append(buckets[idx], events[i])
	}
	return buckets, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// truncateToWeek returns midnight of the Monday of t's ISO week.
func truncateToWeek(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	return truncateToDay(t).AddDate(0, 0, -daysSinceMonday)
}

// monthsBack returns the first instant of the month n months before t.
// Plain AddDate is avoided here: subtracting months from a late day of
// the month normalizes past the intended month boundary.
func monthsBack(t time.Time, n int) time.Time {
	total := t.Year()*12 + int(t.Month()) - 1 - n
	return time.Date(total/12, time.Month(total%12+1), 1, 0, 0, 0, 0, time.UTC)
}
