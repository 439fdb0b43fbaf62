package domain

import (
	"fmt"
	"time"
)

// Period is the reporting granularity of a job.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a raw period string coming from the job queue.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeek, PeriodMonth:
		return Period(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

// Label returns the canonical label identifying the period instance that
// contains t. Weeks use ISO year+week ("202635"), months year+month ("202608").
// Labels double as report document IDs, so regenerating a report for the same
// period overwrites the previous document.
func (p Period) Label(t time.Time) string {
	switch p {
	case PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d%02d", year, week)
	case PeriodMonth:
		return t.Format("200601")
	}
	return ""
}

// MonthStart returns the first day of the month containing t, preserving the
// location. Used as the anchor for historical month backfill.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// PrevMonthStart walks back to the first day of the month before t's month.
func PrevMonthStart(t time.Time) time.Time {
	return MonthStart(MonthStart(t).AddDate(0, 0, -1))
}
