package http

import (
	"net/http"

	"tracky/internal/ledger"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := ledger.Filter{
		StartDate: query.Get("start"),
		EndDate:   query.Get("end"),
		Category:  query.Get("category"),
		CardID:    query.Get("card"),
		Text:      query.Get("q"),
	}

	transactions := s.ledger.FilterTransactions(filter)
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	entry, err := decodeTransactionRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.ledger.AddTransaction(r.Context(), entry)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.cyclesCache.Purge()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := decodeTransactionRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.UpdateTransaction(r.Context(), r.PathValue("id"), entry, scope); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.cyclesCache.Purge()
	writeJSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id"), scope); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.cyclesCache.Purge()
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}
