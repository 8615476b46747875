package ledger

import (
	"sort"
	"strings"

	"tracky/internal/core"
)

// Filter narrows a ledger snapshot. Zero values match everything.
type Filter struct {
	StartDate string // inclusive ISO day
	EndDate   string // inclusive ISO day
	Category  string // substring, case-insensitive
	CardID    string // exact
	Text      string // substring of title or category, case-insensitive
}

// FilterTransactions returns the matching transactions, newest first.
func (s *Service) FilterTransactions(f Filter) []core.Transaction {
	snapshot := s.Transactions()

	matched := snapshot[:0]
	for _, tx := range snapshot {
		if f.StartDate != "" && tx.Date < f.StartDate {
			continue
		}
		if f.EndDate != "" && tx.Date > f.EndDate {
			continue
		}
		if f.CardID != "" && tx.CardID != f.CardID {
			continue
		}
		if f.Category != "" && !containsFold(tx.Category, f.Category) {
			continue
		}
		if f.Text != "" && !containsFold(tx.Title, f.Text) && !containsFold(tx.Category, f.Text) {
			continue
		}
		matched = append(matched, tx)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date > matched[j].Date
	})
	return matched
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
