package calendar

import (
	"time"

	"tracky/internal/core"
)

// CycleStatus is computed on every build, never stored.
type CycleStatus string

const (
	StatusOpen   CycleStatus = "open"
	StatusClosed CycleStatus = "closed"
	StatusPaid   CycleStatus = "paid"
)

// Layout selects how the aggregator frames a cycle's grid.
type Layout string

const (
	// LayoutCycle renders exactly [cycleStart, cycleEnd], padded with
	// placeholder cells for Monday-first week alignment.
	LayoutCycle Layout = "cycle"
	// LayoutMonth renders the week-aligned superset
	// [startOfWeek(cycleStart), endOfWeek(cycleEnd)]; out-of-cycle days are
	// real cells flagged InCycle=false and contribute nothing to totals.
	LayoutMonth Layout = "month"
)

// Valid reports whether l names a known layout.
func (l Layout) Valid() bool {
	return l == LayoutCycle || l == LayoutMonth
}

// CalendarDay is the per-day aggregate. Ephemeral: rebuilt on every cycle
// build, never persisted. Balance is the running ledger balance after this
// day, carried across cycle boundaries.
type CalendarDay struct {
	Date         time.Time          `json:"date"`
	ISODate      string             `json:"isoDate"`
	Income       core.Money         `json:"income"`
	Expenses     core.Money         `json:"expenses"`
	Balance      core.Money         `json:"balance"`
	Transactions []core.Transaction `json:"transactions"`
	IncomeCount  int                `json:"incomeCount"`
	ExpenseCount int                `json:"expenseCount"`
	IsToday      bool               `json:"isToday"`
}

// CalendarCell is one grid slot: either a placeholder used purely for
// 7-column alignment, or a day. InCycle marks days inside the active cycle
// when the grid is week-aligned and overruns cycle boundaries.
type CalendarCell struct {
	Day           *CalendarDay `json:"day,omitempty"`
	IsPlaceholder bool         `json:"isPlaceholder"`
	InCycle       bool         `json:"inCycle"`
}

// BillingCycle is the span of days between two consecutive closing dates,
// with its aggregates and grid. A cycle owns its cells; cells reference
// transactions owned by the ledger.
type BillingCycle struct {
	ID            string         `json:"id"`
	Label         string         `json:"label"`
	PeriodLabel   string         `json:"periodLabel"`
	CycleStart    time.Time      `json:"cycleStart"`
	CycleEnd      time.Time      `json:"cycleEnd"`
	DueDate       time.Time      `json:"dueDate"`
	StartBalance  core.Money     `json:"startBalance"`
	EndBalance    core.Money     `json:"endBalance"`
	IncomeTotal   core.Money     `json:"incomeTotal"`
	ExpensesTotal core.Money     `json:"expensesTotal"`
	CreditTotal   core.Money     `json:"creditTotal"`
	CreditCount   int            `json:"creditCount"`
	Status        CycleStatus    `json:"status"`
	Cells         []CalendarCell `json:"cells"`
}

// ContainsISODate reports whether the cycle's in-cycle day cells include the
// given ISO day.
func (c BillingCycle) ContainsISODate(iso string) bool {
	for _, cell := range c.Cells {
		if cell.Day != nil && cell.InCycle && cell.Day.ISODate == iso {
			return true
		}
	}
	return false
}
