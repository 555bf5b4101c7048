// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
)

func TestComputeCohortRetentionShape(t *testing.T) {
	periods, err := CalcLastNPeriods(testNow, 4, GranularityWeek)
	if err != nil {
		t.Fatal(err)
	}

	cr, err := ComputeCohortRetention(nil, periods)
	if err != nil {
		t.Fatal(err)
	}

	if len(cr.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(cr.Rows))
	}
	for i, row := range cr.Rows {
		if len(row) != 4-i {
			t.Errorf("row %d has %d entries, want %d", i, len(row), 4-i)
		}
		for k, v := range row {
			if v != 0 {
				t.Errorf("row %d entry %d: got %d, want 0", i, k, v)
			}
		}
	}
}

func TestComputeCohortRetentionReturningUser(t *testing.T) {
	periods, err := CalcLastNPeriods(testNow, 5, GranularityWeek)
	if err != nil {
		t.Fatal(err)
	}

	// u1 appears in weeks 1, 3 and 5; u2 only in week 3
	events := []models.Event{
		mkEvent("u1", periods[0].Start.Add(time.Hour)),
		mkEvent("u1", periods[2].Start.Add(time.Hour)),
		mkEvent("u2", periods[2].Start.Add(2*time.Hour)),
		mkEvent("u1", periods[4].Start.Add(time.Hour)),
	}

	cr, err := ComputeCohortRetention(events, periods)
	if err != nil {
		t.Fatal(err)
	}

	week1 := cr.Rows[0]
	if week1[0] != 1 {
		t.Errorf("week 1 cohort size: got %d, want 1", week1[0])
	}
	if week1[1] != 0 || week1[3] != 0 {
		t.Errorf("week 1 cohort must show churn in weeks 2 and 4: %v", week1)
	}
	if week1[2] != 1 || week1[4] != 1 {
		t.Errorf("week 1 cohort must show u1 returning in weeks 3 and 5: %v", week1)
	}

	// u1's first event was week 1, so week 3's cohort is u2 alone
	week3 := cr.Rows[2]
	if week3[0] != 1 {
		t.Errorf("week 3 cohort size: got %d, want 1", week3[0])
	}
	if week3[2] != 0 {
		t.Errorf("week 3 cohort must show 0 retained in week 5: %v", week3)
	}
}

func TestComputeCohortRetentionPreWindowUsersExcluded(t *testing.T) {
	periods, err := CalcLastNPeriods(testNow, 2, GranularityWeek)
	if err != nil {
		t.Fatal(err)
	}

	events := []models.Event{
		mkEvent("old-timer", periods[0].Start.AddDate(0, 0, -30)),
		mkEvent("old-timer", periods[0].Start.Add(time.Hour)),
		mkEvent("fresh", periods[0].Start.Add(2*time.Hour)),
	}

	cr, err := ComputeCohortRetention(events, periods)
	if err != nil {
		t.Fatal(err)
	}

	// only fresh's first event lies in the window
	if cr.Rows[0][0] != 1 {
		t.Errorf("week 1 cohort size: got %d, want 1 (old-timer predates the window)", cr.Rows[0][0])
	}
}

func TestComputeCohortRetentionBoundedByActiveUsers(t *testing.T) {
	periods, err := CalcLastNPeriods(testNow, 3, GranularityDay)
	if err != nil {
		t.Fatal(err)
	}

	var events []models.Event
	users := []string{"a", "b", "c", "d"}
	for i, u := range users {
		events = append(events, mkEvent(u, periods[0].Start.Add(time.Duration(i+1)*time.Minute)))
	}
	// two of them return on day 3
	events = append(events,
		mkEvent("a", periods[2].Start.Add(time.Minute)),
		mkEvent("c", periods[2].Start.Add(2*time.Minute)),
	)

	cr, err := ComputeCohortRetention(events, periods)
	if err != nil {
		t.Fatal(err)
	}

	if cr.Rows[0][0] != 4 {
		t.Errorf("day 1 cohort size: got %d, want 4", cr.Rows[0][0])
	}
	if cr.Rows[0][2] != 2 {
		t.Errorf("day 1 retained at day 3: got %d, want 2", cr.Rows[0][2])
	}
	// retained in a later period can never exceed the users active then
	buckets, err := GroupEventsByPeriods(events, periods)
	if err != nil {
		t.Fatal(err)
	}
	active := make(map[string]struct{})
	for i := range buckets[2] {
		active[buckets[2][i].DistinctID] = struct{}{}
	}
	if cr.Rows[0][2] > len(active) {
		t.Errorf("retained count %d exceeds active users %d", cr.Rows[0][2], len(active))
	}
}

func TestCohortRetentionReportNA(t *testing.T) {
	periods, err := CalcLastNPeriods(testNow, 2, GranularityWeek)
	if err != nil {
		t.Fatal(err)
	}

	cr, err := ComputeCohortRetention(nil, periods)
	if err != nil {
		t.Fatal(err)
	}

	r := cr.Report(GranularityWeek)
	// header + 2 cohort rows
	if len(r.CSV) != 3 {
		t.Fatalf("expected 3 CSV rows, got %d", len(r.CSV))
	}
	// empty cohort renders retention as N/A
	if r.CSV[1][2] != "N/A" {
		t.Errorf("empty cohort cell: got %q, want N/A", r.CSV[1][2])
	}
}

func TestComputeCohortRetentionNoPeriods(t *testing.T) {
	if _, err := ComputeCohortRetention(nil, nil); !errors.Is(err, ErrNoPeriods) {
		t.Errorf("got %v, want ErrNoPeriods", err)
	}
}
