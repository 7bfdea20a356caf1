package view

import (
	"time"
)

// Period is a predefined issue-date range used to filter invoices.
type Period int

const (
	PeriodAll       Period = 0
	PeriodThisMonth Period = 1
	PeriodLastMonth Period = 2
	PeriodThisYear  Period = 3
	PeriodLastYear  Period = 4
)

var periods = []Period{PeriodAll, PeriodThisMonth, PeriodLastMonth, PeriodThisYear, PeriodLastYear}

func (p Period) String() string {
	switch p {
	case PeriodAll:
		return "All Time"
	case PeriodThisMonth:
		return "This Month"
	case PeriodLastMonth:
		return "Last Month"
	case PeriodThisYear:
		return "This Year"
	case PeriodLastYear:
		return "Last Year"
	}

	return "Unknown"
}

// Next cycles through the predefined periods.
func (p Period) Next() Period {
	return periods[(int(p)+1)%len(periods)]
}

// Range returns the first and last instant of the period relative to now.
// ok is false for PeriodAll, which has no bounds.
func (p Period) Range(now time.Time) (start, end time.Time, ok bool) {
	loc := now.Location()

	switch p {
	case PeriodThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case PeriodLastMonth:
		start = time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case PeriodThisYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	case PeriodLastYear:
		start = time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	default:
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}
