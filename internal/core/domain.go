package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	RecurrenceNone      Recurrence = "none"
	RecurrenceWeekly    Recurrence = "weekly"
	RecurrenceBiweekly  Recurrence = "biweekly"
	RecurrenceMonthly   Recurrence = "monthly"
	RecurrenceQuarterly Recurrence = "quarterly"
	RecurrenceYearly    Recurrence = "yearly"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

const (
	MethodCredit PaymentMethod = "credit"
	MethodDebit  PaymentMethod = "debit"
	MethodPix    PaymentMethod = "pix"
)

// Recurrence-edit scopes. The decision is made by the caller (a UI prompt,
// an API query parameter); the ledger only applies it.
const (
	ScopeSingle  RecurrenceScope = "single"
	ScopeForward RecurrenceScope = "forward"
	ScopeAll     RecurrenceScope = "all"
	ScopeCancel  RecurrenceScope = "cancel"
)

type (
	Recurrence      string
	TransactionType string
	PaymentMethod   string
	RecurrenceScope string

	// Installment tracks a credit purchase split across statements.
	Installment struct {
		Current int `json:"current"`
		Total   int `json:"total"`
	}

	// Transaction is a single ledger entry. Date is a local calendar day in
	// ISO form (YYYY-MM-DD); Amount is signed cents, positive for income.
	Transaction struct {
		ID                string          `json:"id"`
		Date              string          `json:"date"`
		Title             string          `json:"title"`
		Amount            Money           `json:"amount"`
		Category          string          `json:"category"`
		Recurrence        Recurrence      `json:"recurrence"`
		RecurrenceGroupID string          `json:"recurrenceGroupId,omitempty"`
		Type              TransactionType `json:"type"`
		PaymentMethod     PaymentMethod   `json:"paymentMethod"`
		CardID            string          `json:"cardId,omitempty"`
		Installment       *Installment    `json:"installment,omitempty"`
		InvoiceCycleID    string          `json:"invoiceCycleId,omitempty"`
		IsInvoicePayment  bool            `json:"isInvoicePayment,omitempty"`
	}

	// Card holds the billing configuration driving cycle boundary math.
	// ClosingDay and DueDay are days of month, clamped against the actual
	// month length when resolved into concrete dates.
	Card struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Limit      Money  `json:"limit"`
		ClosingDay int    `json:"closingDay"`
		DueDay     int    `json:"dueDay"`
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyTitle    = errors.New("empty title")
	ErrInvalidDay    = errors.New("day of month must be between 1 and 31")
	ErrEmptyCardName = errors.New("empty card name")
	ErrMissingCard   = errors.New("credit transaction requires a card")
	ErrInvalidScope  = errors.New("invalid recurrence scope")
	ErrSignMismatch  = errors.New("amount sign disagrees with transaction type")
)

// ISODateLayout is the wire and storage format for calendar days.
const ISODateLayout = "2006-01-02"

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceWeekly, RecurrenceBiweekly,
		RecurrenceMonthly, RecurrenceQuarterly, RecurrenceYearly:
		return true
	}
	return false
}

func (s RecurrenceScope) Valid() bool {
	switch s {
	case ScopeSingle, ScopeForward, ScopeAll, ScopeCancel:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCredit, MethodDebit, MethodPix:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if _, err := time.Parse(ISODateLayout, t.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	switch t.Type {
	case TypeIncome:
		if t.Amount.Cents < 0 {
			return ErrSignMismatch
		}
	case TypeExpense:
		if t.Amount.Cents > 0 {
			return ErrSignMismatch
		}
	default:
		return errors.New("invalid transaction type")
	}
	if !t.Recurrence.Valid() {
		return errors.New("invalid recurrence")
	}
	if !t.PaymentMethod.Valid() {
		return errors.New("invalid payment method")
	}
	if t.PaymentMethod == MethodCredit && t.CardID == "" {
		return ErrMissingCard
	}
	return nil
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCardName
	}
	if c.Limit.Cents <= 0 {
		return ErrInvalidAmount
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return ErrInvalidDay
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDay
	}
	return nil
}

// Repair fills in fields dropped or corrupted by older persisted snapshots.
// The type is inferred from the amount sign when missing, an unknown
// recurrence collapses to none, and the payment method defaults to debit.
func (t Transaction) Repair() Transaction {
	if t.Type != TypeIncome && t.Type != TypeExpense {
		if t.Amount.Cents >= 0 {
			t.Type = TypeIncome
		} else {
			t.Type = TypeExpense
		}
	}
	if !t.Recurrence.Valid() {
		t.Recurrence = RecurrenceNone
	}
	if !t.PaymentMethod.Valid() {
		t.PaymentMethod = MethodDebit
	}
	if t.Recurrence == RecurrenceNone {
		t.RecurrenceGroupID = ""
	}
	return t
}

// InstallmentLabel renders "current/total" for credit purchases split across
// statements, or an empty string when the transaction has no installments.
func (t Transaction) InstallmentLabel() string {
	if t.Installment == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", t.Installment.Current, t.Installment.Total)
}
