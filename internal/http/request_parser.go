// Package http provides HTTP server and handler implementations.
//
// This file implements parsing and validation of request payloads and
// query parameters, keeping handlers free of the repetitive plumbing.
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"tracky/internal/calendar"
	"tracky/internal/core"
)

// CycleParams holds the parsed parameters of a cycle-building request.
type CycleParams struct {
	CardID string
	Count  int
	Layout calendar.Layout
}

// ParseCycleParams extracts card/count/layout from query parameters with
// server defaults. An absent card means "the first card".
func (s *Server) parseCycleParams(query url.Values) CycleParams {
	params := CycleParams{
		CardID: query.Get("card"),
		Count:  s.cycleCount,
		Layout: s.defaultLayout,
	}

	if v := query.Get("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 120 {
			params.Count = n
		}
	}
	if v := calendar.Layout(query.Get("layout")); v.Valid() {
		params.Layout = v
	}

	return params
}

// parseScope reads the recurrence scope parameter, defaulting to single.
func parseScope(query url.Values) (core.RecurrenceScope, error) {
	raw := query.Get("scope")
	if raw == "" {
		return core.ScopeSingle, nil
	}
	scope := core.RecurrenceScope(raw)
	if !scope.Valid() {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidScope, raw)
	}
	return scope, nil
}

// transactionRequest is the JSON payload for creating or updating a
// transaction. Amount is a positive decimal string; the sign is derived
// from the type, which keeps the sign/type invariant at the entry boundary
// instead of in the aggregator.
type transactionRequest struct {
	Date               string `json:"date"`
	Title              string `json:"title"`
	Amount             string `json:"amount"`
	Category           string `json:"category"`
	Type               string `json:"type"`
	PaymentMethod      string `json:"paymentMethod"`
	CardID             string `json:"cardId"`
	Recurrence         string `json:"recurrence"`
	RecurrenceGroupID  string `json:"recurrenceGroupId"`
	InstallmentCurrent int    `json:"installmentCurrent"`
	InstallmentTotal   int    `json:"installmentTotal"`
}

// decodeTransactionRequest reads and normalizes a transaction payload.
func decodeTransactionRequest(body io.Reader) (core.Transaction, error) {
	var req transactionRequest
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&req); err != nil {
		return core.Transaction{}, fmt.Errorf("decode transaction: %w", err)
	}

	cents, err := core.ParseSignedDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", req.Amount, err)
	}

	txType := core.TransactionType(req.Type)
	if txType != core.TypeIncome && txType != core.TypeExpense {
		if cents >= 0 {
			txType = core.TypeIncome
		} else {
			txType = core.TypeExpense
		}
	}
	// Normalize the sign to agree with the type.
	if cents < 0 {
		cents = -cents
	}
	if txType == core.TypeExpense {
		cents = -cents
	}

	method := core.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		method = core.MethodDebit
	}

	recurrence := core.Recurrence(req.Recurrence)
	if !recurrence.Valid() {
		recurrence = core.RecurrenceNone
	}

	tx := core.Transaction{
		Date:              req.Date,
		Title:             req.Title,
		Amount:            core.NewMoney(cents),
		Category:          req.Category,
		Recurrence:        recurrence,
		RecurrenceGroupID: req.RecurrenceGroupID,
		Type:              txType,
		PaymentMethod:     method,
		CardID:            req.CardID,
	}
	if method != core.MethodCredit {
		tx.CardID = ""
	}
	if method == core.MethodCredit && req.InstallmentTotal > 1 {
		current := req.InstallmentCurrent
		if current < 1 {
			current = 1
		}
		if current > req.InstallmentTotal {
			current = req.InstallmentTotal
		}
		tx.Installment = &core.Installment{Current: current, Total: req.InstallmentTotal}
	}

	return tx, nil
}

// cardRequest is the JSON payload for creating or updating a card.
type cardRequest struct {
	Name       string `json:"name"`
	Limit      string `json:"limit"`
	ClosingDay int    `json:"closingDay"`
	DueDay     int    `json:"dueDay"`
}

func decodeCardRequest(body io.Reader) (core.Card, error) {
	var req cardRequest
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&req); err != nil {
		return core.Card{}, fmt.Errorf("decode card: %w", err)
	}

	cents, err := core.ParseSignedDecimalToCents(req.Limit)
	if err != nil {
		return core.Card{}, fmt.Errorf("parse limit %q: %w", req.Limit, err)
	}
	if cents < 0 {
		return core.Card{}, core.ErrInvalidAmount
	}

	return core.Card{
		Name:       req.Name,
		Limit:      core.NewMoney(cents),
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	}, nil
}
