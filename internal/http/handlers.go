package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"tracky/internal/calendar"
	"tracky/internal/charts"
	"tracky/internal/core"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.ledger == nil {
		checks["ledger"] = "failed: not configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if len(s.ledger.Cards()) == 0 {
		checks["ledger"] = "failed: no cards available"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["ledger"] = "ok"
	}

	checks["cache"] = map[string]any{
		"cycle_entries": s.cyclesCache.Size(),
		"status":        "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

var errUnknownCard = errors.New("unknown card")

// resolveCard picks the requested card, defaulting to the first one.
func (s *Server) resolveCard(cardID string) (core.Card, error) {
	if cardID == "" {
		cards := s.ledger.Cards()
		if len(cards) == 0 {
			return core.Card{}, errUnknownCard
		}
		return cards[0], nil
	}
	card, ok := s.ledger.CardByID(cardID)
	if !ok {
		return core.Card{}, errUnknownCard
	}
	return card, nil
}

// cyclesFor builds (or serves from cache) the cycle list for the params.
func (s *Server) cyclesFor(params CycleParams) (core.Card, []calendar.BillingCycle, error) {
	card, err := s.resolveCard(params.CardID)
	if err != nil {
		return core.Card{}, nil, err
	}

	key := fmt.Sprintf("%s|%d|%s", card.ID, params.Count, params.Layout)
	if cycles, ok := s.cyclesCache.Get(key); ok {
		return card, cycles, nil
	}

	cycles := s.ledger.BuildCycles(params.Count, card, params.Layout)
	s.cyclesCache.Set(key, cycles)
	return card, cycles, nil
}

func (s *Server) handleListCycles(w http.ResponseWriter, r *http.Request) {
	params := s.parseCycleParams(r.URL.Query())
	card, cycles, err := s.cyclesFor(params)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"card":   card,
		"cycles": cycles,
	})
}

func (s *Server) handleCurrentCycle(w http.ResponseWriter, r *http.Request) {
	params := s.parseCycleParams(r.URL.Query())
	card, cycles, err := s.cyclesFor(params)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	current := calendar.CurrentCycle(cycles)
	if current == nil {
		writeError(w, http.StatusNotFound, "no cycles built")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"card":  card,
		"cycle": current,
	})
}

// handleInvoiceDetail lists a cycle's credit transactions and limit usage.
func (s *Server) handleInvoiceDetail(w http.ResponseWriter, r *http.Request) {
	params := s.parseCycleParams(r.URL.Query())
	card, cycles, err := s.cyclesFor(params)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	cycle, ok := findCycle(cycles, r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown cycle")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cycle":            cycle,
		"transactions":     calendar.CreditTransactions(cycle, card, s.ledger.Transactions()),
		"usedLimitPercent": calendar.UsedLimitPercent(cycle, card),
	})
}

// handleMarkCyclePaid records the settling transaction for a cycle.
func (s *Server) handleMarkCyclePaid(w http.ResponseWriter, r *http.Request) {
	params := s.parseCycleParams(r.URL.Query())
	card, cycles, err := s.cyclesFor(params)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	cycle, ok := findCycle(cycles, r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown cycle")
		return
	}
	if cycle.Status == calendar.StatusPaid {
		writeError(w, http.StatusConflict, "cycle already paid")
		return
	}
	if cycle.CreditTotal.Cents == 0 {
		writeError(w, http.StatusConflict, "cycle has no credit spend to settle")
		return
	}

	payment, err := s.ledger.MarkCyclePaid(r.Context(), cycle, card)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.cyclesCache.Purge()
	writeJSON(w, http.StatusCreated, map[string]any{"payment": payment})
}

// handleCyclesChart renders the balance chart for the built cycles.
func (s *Server) handleCyclesChart(w http.ResponseWriter, r *http.Request) {
	params := s.parseCycleParams(r.URL.Query())
	_, cycles, err := s.cyclesFor(params)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	png, err := charts.CycleBalanceChart(cycles)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render chart failed")
		return
	}
	if len(png) == 0 {
		writeError(w, http.StatusNotFound, "no data to chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func findCycle(cycles []calendar.BillingCycle, id string) (calendar.BillingCycle, bool) {
	for _, cycle := range cycles {
		if cycle.ID == id {
			return cycle, true
		}
	}
	return calendar.BillingCycle{}, false
}
