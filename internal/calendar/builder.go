package calendar

import (
	"fmt"
	"time"

	"tracky/internal/core"
)

// BuildBillingCycles builds n cycles for the card centered near today, in
// the strict cycle layout. This is the entry point UI consumers call after
// every ledger mutation.
func BuildBillingCycles(n int, card core.Card, transactions []core.Transaction) []BillingCycle {
	return BuildBillingCyclesAt(n, card, transactions, time.Now(), LayoutCycle)
}

// BuildBillingCyclesAt is BuildBillingCycles with an explicit clock and
// layout. Cycles are ordered by date range; roughly half lie before the
// cycle containing today. Each cycle's boundaries are re-resolved from the
// anchor end shifted by whole months rather than chained, so variable month
// lengths cannot accumulate drift. The running balance is seeded with the
// sum of every transaction dated strictly before the first cycle's start (a
// full historical replay) and carried forward cycle to cycle.
func BuildBillingCyclesAt(n int, card core.Card, transactions []core.Transaction, now time.Time, layout Layout) []BillingCycle {
	if n <= 0 {
		return nil
	}
	if !layout.Valid() {
		layout = LayoutCycle
	}

	today := StartOfDay(now)
	grouped := GroupByDay(transactions)
	anchor := ResolveCycleBounds(today, card.ClosingDay)
	pastCycles := n / 2

	firstEnd := shiftMonths(anchor.End, -pastCycles, card.ClosingDay)
	firstStart := AddDays(shiftMonths(firstEnd, -1, card.ClosingDay), 1)
	runningBalance := seedBalance(transactions, firstStart)

	cycles := make([]BillingCycle, 0, n)
	for offset := -pastCycles; offset < n-pastCycles; offset++ {
		end := shiftMonths(anchor.End, offset, card.ClosingDay)
		start := AddDays(shiftMonths(end, -1, card.ClosingDay), 1)
		bounds := CycleBounds{Start: start, End: end}
		dueDate := ResolveDueDate(end, card.ClosingDay, card.DueDay)
		id := CycleID(card, end)

		res := aggregateCycle(aggregateInput{
			bounds:       bounds,
			grouped:      grouped,
			cardID:       card.ID,
			startBalance: runningBalance,
			today:        today,
			layout:       layout,
		})

		cycles = append(cycles, BillingCycle{
			ID:            id,
			Label:         cycleLabel(dueDate),
			PeriodLabel:   periodLabel(bounds),
			CycleStart:    start,
			CycleEnd:      end,
			DueDate:       dueDate,
			StartBalance:  core.NewMoney(runningBalance),
			EndBalance:    core.NewMoney(res.endBalance),
			IncomeTotal:   core.NewMoney(res.incomeTotal),
			ExpensesTotal: core.NewMoney(res.expensesTotal),
			CreditTotal:   core.NewMoney(res.creditTotal),
			CreditCount:   res.creditCount,
			Status:        cycleStatus(id, end, today, transactions),
			Cells:         res.cells,
		})
		runningBalance = res.endBalance
	}

	return cycles
}

// seedBalance replays every transaction dated strictly before the first
// cycle start. ISO dates compare lexicographically.
func seedBalance(transactions []core.Transaction, firstStart time.Time) int64 {
	startISO := FormatISODate(firstStart)
	var balance int64
	for _, tx := range transactions {
		if tx.Date < startISO {
			balance += tx.Amount.Cents
		}
	}
	return balance
}

// cycleStatus: paid when a settling transaction references this cycle,
// closed once today has passed the cycle end, open otherwise.
func cycleStatus(cycleID string, cycleEnd, today time.Time, transactions []core.Transaction) CycleStatus {
	for _, tx := range transactions {
		if tx.IsInvoicePayment && tx.InvoiceCycleID == cycleID {
			return StatusPaid
		}
	}
	if today.After(cycleEnd) {
		return StatusClosed
	}
	return StatusOpen
}

func cycleLabel(dueDate time.Time) string {
	return fmt.Sprintf("Fatura • %s/%d", dueDate.Format("Jan"), dueDate.Year())
}

func periodLabel(bounds CycleBounds) string {
	return fmt.Sprintf("%s → %s", bounds.Start.Format("02 Jan"), bounds.End.Format("02 Jan"))
}

// CurrentCycle returns the cycle whose day cells contain today, or the
// first cycle when none matches.
func CurrentCycle(cycles []BillingCycle) *BillingCycle {
	return CurrentCycleAt(cycles, time.Now())
}

// CurrentCycleAt is CurrentCycle with an explicit clock.
func CurrentCycleAt(cycles []BillingCycle, now time.Time) *BillingCycle {
	if len(cycles) == 0 {
		return nil
	}
	todayISO := FormatISODate(StartOfDay(now))
	for i := range cycles {
		if cycles[i].ContainsISODate(todayISO) {
			return &cycles[i]
		}
	}
	return &cycles[0]
}
