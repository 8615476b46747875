package calendar

import (
	"time"

	"tracky/internal/core"
)

// CycleBounds is a resolved cycle span, inclusive on both ends.
type CycleBounds struct {
	Start time.Time
	End   time.Time
}

// ResolveCycleBounds computes the cycle containing the reference date for
// the given closing day. The cycle ends on the closing-day date of the
// reference month when the reference has not yet passed it, otherwise on
// the closing-day date of the next month; the start is the day after the
// previous closing. All closing dates are clamped to real month lengths.
func ResolveCycleBounds(reference time.Time, closingDay int) CycleBounds {
	ref := StartOfDay(reference)
	closingThisMonth := ClampDay(ref.Year(), ref.Month(), closingDay)

	end := closingThisMonth
	if ref.After(closingThisMonth) {
		end = shiftMonths(closingThisMonth, 1, closingDay)
	}
	previousClosing := shiftMonths(end, -1, closingDay)
	return CycleBounds{Start: AddDays(previousClosing, 1), End: end}
}

// ResolveDueDate places the statement due date relative to the cycle end.
// The due date falls in the month after the cycle end when dueDay <=
// closingDay (due logically follows closing in cycle order), otherwise in
// the cycle end's own month. The comparison is against the configured
// closing day, not the clamped end date's day-of-month: a February cycle
// closing on the 28th because closingDay is 31 still treats dueDay 30 as
// preceding the closing.
func ResolveDueDate(cycleEnd time.Time, closingDay, dueDay int) time.Time {
	if dueDay <= closingDay {
		return shiftMonths(cycleEnd, 1, dueDay)
	}
	return ClampDay(cycleEnd.Year(), cycleEnd.Month(), dueDay)
}

// CycleID derives the stable identifier a settling transaction references
// through its invoiceCycleId.
func CycleID(card core.Card, cycleEnd time.Time) string {
	return card.ID + "-" + FormatISODate(cycleEnd)
}
