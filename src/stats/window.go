// Package stats computes rolling spending and income summaries over the
// reconciled, categorized transaction set.
package stats

import (
	"fmt"
	"time"
)

type Mode string

const (
	ModeMonth Mode = "month"
	ModeWeek  Mode = "week"
)

// ReimbursementCategory marks transactions credited back against spending.
const ReimbursementCategory = "reimbursement"

type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ClampOffset keeps period navigation from advancing into the future.
func ClampOffset(offset int) int {
	if offset > 0 {
		return 0
	}
	return offset
}

// DateRange returns the calendar window for a signed period offset from now:
// offset 0 is the current month/week, -1 the previous one. Weeks start on
// Sunday.
func DateRange(mode Mode, offset int, now time.Time) Range {
	if mode == ModeWeek {
		weekday := int(now.Weekday())
		start := time.Date(now.Year(), now.Month(), now.Day()-weekday+offset*7, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 6).Add(24*time.Hour - time.Millisecond)
		return Range{Start: start, End: end}
	}

	start := time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return Range{Start: start, End: end}
}

// FormatRangeLabel renders a window label for display, e.g. "March 2024" or
// "3 Mar – 9 Mar".
func FormatRangeLabel(mode Mode, r Range) string {
	if mode == ModeWeek {
		return fmt.Sprintf("%s – %s", r.Start.Format("2 Jan"), r.End.Format("2 Jan"))
	}
	return r.Start.Format("January 2006")
}
