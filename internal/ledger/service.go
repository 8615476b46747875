// Package ledger owns the mutable transaction and card collections. It is
// the single logical writer: every mutation is applied under the lock,
// persisted as a whole snapshot, and followed by a change notification so
// consumers rebuild derived cycles from scratch.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tracky/internal/amqp"
	"tracky/internal/calendar"
	"tracky/internal/core"
	"tracky/internal/log"
	"tracky/internal/store"
)

// Seed card used when card storage is empty or unparsable.
var seedCard = core.Card{
	Name:       "Cartão principal",
	Limit:      core.NewMoney(600000),
	ClosingDay: 8,
	DueDay:     15,
}

// Service orchestrates ledger mutations across the blob store and AMQP.
type Service struct {
	mu           sync.Mutex
	store        store.BlobStore
	amqpClient   *amqp.Client
	logger       *log.Logger
	transactions []core.Transaction
	cards        []core.Card
}

// NewService loads both collections from the store. Malformed or missing
// snapshots never fail the load: transactions fall back to an empty list
// and cards to the seed card.
func NewService(ctx context.Context, blobs store.BlobStore, amqpClient *amqp.Client) (*Service, error) {
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger)
	s := &Service{
		store:      blobs,
		amqpClient: amqpClient,
		logger:     logger,
	}

	s.transactions = loadTransactions(ctx, blobs, logger)

	cards, seeded := loadCards(ctx, blobs, logger)
	s.cards = cards

	// Only a freshly generated seed card is written back, so its id stays
	// stable across restarts. A store that already holds cards is left
	// untouched; read-side processes over a shared store must not write.
	if seeded {
		if err := s.saveCards(ctx); err != nil {
			return nil, fmt.Errorf("persist seed card: %w", err)
		}
	}

	return s, nil
}

// Reload replaces both collections with the store's current contents. A
// process that shares the blob store with another writer calls this before
// reading, otherwise it only ever sees its startup snapshot. When the card
// snapshot is missing the in-memory list is kept, so the seed card id does
// not churn between reloads.
func (s *Service) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = loadTransactions(ctx, s.store, s.logger)
	if cards, seeded := loadCards(ctx, s.store, s.logger); !seeded {
		s.cards = cards
	}
}

func loadTransactions(ctx context.Context, blobs store.BlobReader, logger *log.Logger) []core.Transaction {
	raw, ok, err := blobs.Get(ctx, store.KeyTransactions)
	if err != nil {
		logger.WarnContext(ctx, "Failed to read transactions, starting empty", log.FieldError, err)
		return nil
	}
	if !ok {
		return nil
	}

	var parsed []core.Transaction
	if err := json.Unmarshal(raw, &parsed); err != nil {
		logger.WarnContext(ctx, "Unparsable transactions snapshot, starting empty", log.FieldError, err)
		return nil
	}

	repaired := make([]core.Transaction, len(parsed))
	for i, tx := range parsed {
		repaired[i] = tx.Repair()
	}
	return repaired
}

// loadCards returns the stored card list, or a freshly generated seed card
// when the snapshot is missing, empty or unparsable. seeded reports which.
func loadCards(ctx context.Context, blobs store.BlobReader, logger *log.Logger) (cards []core.Card, seeded bool) {
	seed := seedCard
	seed.ID = uuid.NewString()

	raw, ok, err := blobs.Get(ctx, store.KeyCards)
	if err != nil {
		logger.WarnContext(ctx, "Failed to read cards, seeding default", log.FieldError, err)
		return []core.Card{seed}, true
	}
	if !ok {
		return []core.Card{seed}, true
	}

	var parsed []core.Card
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed) == 0 {
		logger.WarnContext(ctx, "Unparsable or empty cards snapshot, seeding default", log.FieldError, err)
		return []core.Card{seed}, true
	}
	return parsed, false
}

// Transactions returns a snapshot copy of the collection.
func (s *Service) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...)
}

// Cards returns a snapshot copy of the card list.
func (s *Service) Cards() []core.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Card(nil), s.cards...)
}

// CardByID looks up a card.
func (s *Service) CardByID(id string) (core.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.ID == id {
			return c, true
		}
	}
	return core.Card{}, false
}

// BuildCycles rebuilds the derived cycle list from the current snapshot.
func (s *Service) BuildCycles(n int, card core.Card, layout calendar.Layout) []calendar.BillingCycle {
	return calendar.BuildBillingCyclesAt(n, card, s.Transactions(), time.Now(), layout)
}

// AddTransaction assigns an id, settles recurrence-group membership and
// appends the entry. A recurring entry without a group id starts a new
// group; a non-recurring entry carries none.
func (s *Service) AddTransaction(ctx context.Context, entry core.Transaction) (core.Transaction, error) {
	entry.ID = uuid.NewString()
	entry = settleRecurrenceGroup(entry, "")
	if err := entry.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	s.mu.Lock()
	s.transactions = append(s.transactions, entry)
	err := s.saveTransactions(ctx)
	s.mu.Unlock()
	if err != nil {
		return core.Transaction{}, err
	}

	s.notify(ctx, amqp.NewLedgerChangedMessage(amqp.ChangeTransactionAdded, entry.ID, entry.CardID))
	return entry, nil
}

// UpdateTransaction rewrites the transaction with the given id, applying
// the recurrence scope: single touches one row, forward every group member
// dated on or after the anchor, all the entire group. Cancel and unknown
// ids are silent no-ops.
func (s *Service) UpdateTransaction(ctx context.Context, id string, entry core.Transaction, scope core.RecurrenceScope) error {
	if scope == core.ScopeCancel {
		return nil
	}
	if !scope.Valid() {
		return core.ErrInvalidScope
	}

	s.mu.Lock()
	anchor, idx := s.findLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	entry.ID = id
	entry = settleRecurrenceGroup(entry, anchor.RecurrenceGroupID)
	if err := entry.Validate(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("validate transaction: %w", err)
	}

	if scope == core.ScopeSingle || anchor.RecurrenceGroupID == "" {
		s.transactions[idx] = entry
	} else {
		for i, tx := range s.transactions {
			if !inScope(tx, anchor, scope) {
				continue
			}
			if tx.ID == id {
				s.transactions[i] = entry
				continue
			}
			// Other group members keep their own id and date.
			next := entry
			next.ID = tx.ID
			next.Date = tx.Date
			s.transactions[i] = next
		}
	}

	err := s.saveTransactions(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(ctx, amqp.NewLedgerChangedMessage(amqp.ChangeTransactionUpdated, id, entry.CardID))
	return nil
}

// DeleteTransaction removes the transaction with the given id, applying
// the recurrence scope like UpdateTransaction. Cancel and unknown ids are
// silent no-ops.
func (s *Service) DeleteTransaction(ctx context.Context, id string, scope core.RecurrenceScope) error {
	if scope == core.ScopeCancel {
		return nil
	}
	if !scope.Valid() {
		return core.ErrInvalidScope
	}

	s.mu.Lock()
	anchor, idx := s.findLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	kept := s.transactions[:0]
	for _, tx := range s.transactions {
		if tx.ID == id {
			continue
		}
		if scope != core.ScopeSingle && anchor.RecurrenceGroupID != "" && inScope(tx, anchor, scope) {
			continue
		}
		kept = append(kept, tx)
	}
	s.transactions = kept

	err := s.saveTransactions(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(ctx, amqp.NewLedgerChangedMessage(amqp.ChangeTransactionDeleted, id, anchor.CardID))
	return nil
}

// MarkCyclePaid records the settling transaction for a cycle's statement:
// a negative debit entry for the full credit total, flagged as an invoice
// payment and linked to the cycle id so the next rebuild reports the cycle
// as paid without counting the payment toward its own invoice.
func (s *Service) MarkCyclePaid(ctx context.Context, cycle calendar.BillingCycle, card core.Card) (core.Transaction, error) {
	payment := core.Transaction{
		ID:               uuid.NewString(),
		Date:             calendar.FormatISODate(calendar.StartOfDay(time.Now())),
		Title:            fmt.Sprintf("Pagamento %s", cycle.Label),
		Amount:           cycle.CreditTotal.Abs().Neg(),
		Category:         "Fatura",
		Recurrence:       core.RecurrenceNone,
		Type:             core.TypeExpense,
		PaymentMethod:    core.MethodDebit,
		CardID:           card.ID,
		InvoiceCycleID:   cycle.ID,
		IsInvoicePayment: true,
	}
	if err := payment.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate invoice payment: %w", err)
	}

	s.mu.Lock()
	s.transactions = append(s.transactions, payment)
	err := s.saveTransactions(ctx)
	s.mu.Unlock()
	if err != nil {
		return core.Transaction{}, err
	}

	msg := amqp.NewLedgerChangedMessage(amqp.ChangeCyclePaid, payment.ID, card.ID)
	msg.CycleID = cycle.ID
	s.notify(ctx, msg)
	return payment, nil
}

// AddCard stores a new card.
func (s *Service) AddCard(ctx context.Context, entry core.Card) (core.Card, error) {
	entry.ID = uuid.NewString()
	if err := entry.Validate(); err != nil {
		return core.Card{}, fmt.Errorf("validate card: %w", err)
	}

	s.mu.Lock()
	s.cards = append(s.cards, entry)
	err := s.saveCards(ctx)
	s.mu.Unlock()
	if err != nil {
		return core.Card{}, err
	}

	s.notify(ctx, amqp.NewLedgerChangedMessage(amqp.ChangeCardChanged, "", entry.ID))
	return entry, nil
}

// UpdateCard rewrites an existing card. Unknown ids are silent no-ops.
func (s *Service) UpdateCard(ctx context.Context, id string, entry core.Card) error {
	entry.ID = id
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validate card: %w", err)
	}

	s.mu.Lock()
	found := false
	for i, c := range s.cards {
		if c.ID == id {
			s.cards[i] = entry
			found = true
			break
		}
	}
	var err error
	if found {
		err = s.saveCards(ctx)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	s.notify(ctx, amqp.NewLedgerChangedMessage(amqp.ChangeCardChanged, "", id))
	return nil
}

// Close releases the store and AMQP connections.
func (s *Service) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}

func (s *Service) findLocked(id string) (core.Transaction, int) {
	for i, tx := range s.transactions {
		if tx.ID == id {
			return tx, i
		}
	}
	return core.Transaction{}, -1
}

// settleRecurrenceGroup enforces the group-id rules: a recurring entry
// keeps its supplied group, inherits the previous one, or starts a new
// group; dropping the recurrence detaches the entry from its series.
func settleRecurrenceGroup(entry core.Transaction, previousGroup string) core.Transaction {
	if entry.Recurrence == core.RecurrenceNone {
		entry.RecurrenceGroupID = ""
		return entry
	}
	if entry.RecurrenceGroupID == "" {
		if previousGroup != "" {
			entry.RecurrenceGroupID = previousGroup
		} else {
			entry.RecurrenceGroupID = uuid.NewString()
		}
	}
	return entry
}

// inScope reports whether tx belongs to the anchor's group under the given
// scope. ISO dates compare lexicographically.
func inScope(tx, anchor core.Transaction, scope core.RecurrenceScope) bool {
	if tx.RecurrenceGroupID == "" || tx.RecurrenceGroupID != anchor.RecurrenceGroupID {
		return false
	}
	switch scope {
	case core.ScopeAll:
		return true
	case core.ScopeForward:
		return tx.Date >= anchor.Date
	}
	return false
}

func (s *Service) saveTransactions(ctx context.Context) error {
	raw, err := json.Marshal(s.transactions)
	if err != nil {
		return fmt.Errorf("marshal transactions: %w", err)
	}
	if err := s.store.Put(ctx, store.KeyTransactions, raw); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	return nil
}

func (s *Service) saveCards(ctx context.Context) error {
	raw, err := json.Marshal(s.cards)
	if err != nil {
		return fmt.Errorf("marshal cards: %w", err)
	}
	if err := s.store.Put(ctx, store.KeyCards, raw); err != nil {
		return fmt.Errorf("save cards: %w", err)
	}
	return nil
}

// notify publishes a change notification. Best effort: the mutation is
// already persisted, so publish failures are logged and swallowed.
func (s *Service) notify(ctx context.Context, msg *amqp.LedgerChangedMessage) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishLedgerChanged(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger change",
			"change", msg.Change,
			log.FieldTransactionID, msg.TransactionID,
			log.FieldError, err)
	}
}
