// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wasp-lang/wasp-bot-sub000/internal/classify"
)

// Report is the formatter-facing output of one aggregator: a title, plain
// text lines and the same data as CSV rows. Chart rendering is left to
// downstream consumers.
type Report struct {
	Title string
	Text  []string
	CSV   [][]string
}

// Report renders the activity series as a period-by-bucket table plus the
// cross-period averages and the latest-period non-local environment
// counts.
func (ua *UserActivity) Report(g Granularity) *Report {
	r := &Report{Title: fmt.Sprintf("Active users by age (%s)", g)}

	header := append([]string{"period"}, AgeBucketLabels[:]...)
	r.CSV = append(r.CSV, header)
	r.Text = append(r.Text, strings.Join(header, "  "))

	for i, p := range ua.Periods {
		row := []string{p.Label(g)}
		for b := 0; b < numAgeBuckets; b++ {
			row = append(row, strconv.Itoa(ua.Counts[b][i]))
		}
		r.CSV = append(r.CSV, row)
		r.Text = append(r.Text, strings.Join(row, "  "))
	}

	avg := []string{"average"}
	for b := 0; b < numAgeBuckets; b++ {
		avg = append(avg, fmt.Sprintf("%.1f", ua.Averages[b]))
	}
	r.CSV = append(r.CSV, avg)
	r.Text = append(r.Text, strings.Join(avg, "  "))

	r.Text = append(r.Text, "", "Non-local environments (latest period):")
	for _, env := range classify.NonLocalEnvs() {
		r.Text = append(r.Text, fmt.Sprintf("  %s: %d", env, ua.EnvUsers[env]))
	}

	return r
}

// Report renders the retention matrix with cohort sizes in the first
// column and retained counts with percentages after. Empty cohorts render
// their retention cells as N/A.
func (cr *CohortRetention) Report(g Granularity) *Report {
	r := &Report{Title: fmt.Sprintf("Cohort retention (%s)", g)}

	header := []string{"cohort", "size"}
	for k := 1; k < len(cr.Periods); k++ {
		header = append(header, "+"+strconv.Itoa(k))
	}
	r.CSV = append(r.CSV, header)
	r.Text = append(r.Text, strings.Join(header, "  "))

	for i, row := range cr.Rows {
		size := row[0]
		cells := []string{cr.Periods[i].Label(g), strconv.Itoa(size)}
		for k := 1; k < len(row); k++ {
			cells = append(cells, retentionCell(row[k], size))
		}
		r.CSV = append(r.CSV, cells)
		r.Text = append(r.Text, strings.Join(cells, "  "))
	}

	return r
}

// retentionCell formats one retained-count cell: the count with its share
// of the cohort, or N/A when the cohort is empty.
func retentionCell(retained, size int) string {
	if size == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d (%.0f%%)", retained, float64(retained)/float64(size)*100)
}

// Report renders the cumulative created/built series per period end.
func (pf *ProjectFunnel) Report(g Granularity) *Report {
	r := &Report{Title: fmt.Sprintf("Projects created and built (%s)", g)}

	header := []string{"period", "created", "built"}
	r.CSV = append(r.CSV, header)
	r.Text = append(r.Text, strings.Join(header, "  "))

	for i, p := range pf.Periods {
		row := []string{p.Label(g), strconv.Itoa(pf.Created[i]), strconv.Itoa(pf.Built[i])}
		r.CSV = append(r.CSV, row)
		r.Text = append(r.Text, strings.Join(row, "  "))
	}

	return r
}
