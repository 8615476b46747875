package calendar

import (
	"time"

	"tracky/internal/core"
)

// aggregateInput carries everything one cycle aggregation needs. The grouped
// index and today are shared across the whole build; the balance is the
// running ledger balance carried in from the prior cycle.
type aggregateInput struct {
	bounds       CycleBounds
	grouped      map[string][]core.Transaction
	cardID       string
	startBalance int64
	today        time.Time
	layout       Layout
}

// aggregateResult is one aggregated cycle grid plus the balance to carry
// into the next cycle.
type aggregateResult struct {
	cells         []CalendarCell
	incomeTotal   int64
	expensesTotal int64
	creditTotal   int64
	creditCount   int
	endBalance    int64
}

// aggregateCycle walks every day of the cycle's visible range, computing
// per-day income/expense splits, the card's credit spend and the running
// balance. Both grid variants run through here: the strict cycle layout pads
// with placeholders, the month layout widens to whole weeks and marks
// out-of-cycle days instead.
func aggregateCycle(in aggregateInput) aggregateResult {
	visibleStart, visibleEnd := in.bounds.Start, in.bounds.End
	if in.layout == LayoutMonth {
		visibleStart = StartOfWeek(in.bounds.Start)
		visibleEnd = EndOfWeek(in.bounds.End)
	}

	res := aggregateResult{endBalance: in.startBalance}

	if in.layout == LayoutCycle {
		leading := (int(in.bounds.Start.Weekday()) + 6) % 7
		for i := 0; i < leading; i++ {
			res.cells = append(res.cells, CalendarCell{IsPlaceholder: true})
		}
	}

	for date := visibleStart; !date.After(visibleEnd); date = AddDays(date, 1) {
		iso := FormatISODate(date)
		dayTxs := in.grouped[iso]
		inCycle := !date.Before(in.bounds.Start) && !date.After(in.bounds.End)

		var income, expenses int64
		var incomeCount, expenseCount int
		var dailyCredit int64
		var dailyCreditCount int
		for _, tx := range dayTxs {
			switch {
			case tx.Amount.Cents > 0:
				income += tx.Amount.Cents
				incomeCount++
			case tx.Amount.Cents < 0:
				expenses += tx.Amount.Cents
				expenseCount++
			}
			if tx.PaymentMethod == core.MethodCredit && tx.CardID == in.cardID &&
				tx.Amount.Cents < 0 && !tx.IsInvoicePayment {
				dailyCredit += -tx.Amount.Cents
				dailyCreditCount++
			}
		}

		// Out-of-cycle days are rendered but never move the cycle totals
		// or the running balance.
		if inCycle {
			res.incomeTotal += income
			res.expensesTotal += expenses
			res.creditTotal += dailyCredit
			res.creditCount += dailyCreditCount
			res.endBalance += income + expenses
		}

		res.cells = append(res.cells, CalendarCell{
			InCycle: inCycle,
			Day: &CalendarDay{
				Date:         date,
				ISODate:      iso,
				Income:       core.NewMoney(income),
				Expenses:     core.NewMoney(expenses),
				Balance:      core.NewMoney(res.endBalance),
				Transactions: dayTxs,
				IncomeCount:  incomeCount,
				ExpenseCount: expenseCount,
				IsToday:      date.Equal(in.today),
			},
		})
	}

	if in.layout == LayoutCycle {
		trailing := (7 - len(res.cells)%7) % 7
		for i := 0; i < trailing; i++ {
			res.cells = append(res.cells, CalendarCell{IsPlaceholder: true})
		}
	}

	return res
}
