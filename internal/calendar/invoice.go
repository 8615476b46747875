package calendar

import (
	"sort"

	"tracky/internal/core"
)

// CreditTransactions lists the purchases that make up a cycle's statement:
// the card's credit expenses inside [cycleStart, cycleEnd], excluding the
// settling payment itself, newest first.
func CreditTransactions(cycle BillingCycle, card core.Card, transactions []core.Transaction) []core.Transaction {
	startISO := FormatISODate(cycle.CycleStart)
	endISO := FormatISODate(cycle.CycleEnd)

	var out []core.Transaction
	for _, tx := range transactions {
		if tx.PaymentMethod != core.MethodCredit || tx.CardID != card.ID {
			continue
		}
		if tx.Amount.Cents >= 0 || tx.IsInvoicePayment {
			continue
		}
		if tx.Date < startISO || tx.Date > endISO {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// UsedLimitPercent reports how much of the card's limit the cycle's credit
// total consumes, capped at 100.
func UsedLimitPercent(cycle BillingCycle, card core.Card) float64 {
	if card.Limit.Cents <= 0 {
		return 0
	}
	pct := float64(cycle.CreditTotal.Cents) / float64(card.Limit.Cents) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
