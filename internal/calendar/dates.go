// Package calendar implements the billing-cycle computation engine: cycle
// boundary resolution from a card's closing day, per-day and per-cycle
// aggregation with a cross-cycle running balance, and the Monday-first
// day-by-week grid consumed by calendar views.
package calendar

import (
	"time"

	"tracky/internal/core"
)

// All calendar math is timezone-naive: dates are UTC midnights standing for
// local calendar days, never converted through wall-clock time.

// NewDate returns the UTC midnight for year/month/day.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay zeroes out the time-of-day component.
func StartOfDay(t time.Time) time.Time {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// AddDays shifts t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay returns the date for year/month/day with day clamped to the
// month's actual length, so day 31 in February lands on Feb 28 or 29.
func ClampDay(year int, month time.Month, day int) time.Time {
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	return NewDate(year, month, day)
}

// AddMonths shifts t by n months, clamping the day-of-month to the target
// month's length: Jan 31 + 1 month is Feb 28/29, never Mar 3.
func AddMonths(t time.Time, n int) time.Time {
	return shiftMonths(t, n, t.Day())
}

// shiftMonths moves to t's month + n and resolves the given day-of-month
// there, clamped. The anchor day travels unchanged across short months,
// which is what keeps repeated closing dates from drifting.
func shiftMonths(t time.Time, n, day int) time.Time {
	target := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return ClampDay(target.Year(), target.Month(), day)
}

// FormatISODate renders the calendar day as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(core.ISODateLayout)
}

// ParseISODate parses a YYYY-MM-DD string into a UTC midnight.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(core.ISODateLayout, s)
	if err != nil {
		return time.Time{}, core.ErrInvalidDate
	}
	return t, nil
}

// StartOfWeek returns the Monday bracketing t from below (or t itself).
func StartOfWeek(t time.Time) time.Time {
	t = StartOfDay(t)
	offset := (int(t.Weekday()) + 6) % 7
	return AddDays(t, -offset)
}

// EndOfWeek returns the Sunday bracketing t from above (or t itself).
func EndOfWeek(t time.Time) time.Time {
	return AddDays(StartOfWeek(t), 6)
}

// GroupByDay indexes transactions by their ISO calendar day, preserving
// insertion order within each day's list.
func GroupByDay(transactions []core.Transaction) map[string][]core.Transaction {
	grouped := make(map[string][]core.Transaction)
	for _, tx := range transactions {
		grouped[tx.Date] = append(grouped[tx.Date], tx)
	}
	return grouped
}
