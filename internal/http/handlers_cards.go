package http

import "net/http"

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards := s.ledger.Cards()
	writeJSON(w, http.StatusOK, map[string]any{
		"cards": cards,
		"count": len(cards),
	})
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	entry, err := decodeCardRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.ledger.AddCard(r.Context(), entry)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.cyclesCache.Purge()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	entry, err := decodeCardRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.UpdateCard(r.Context(), r.PathValue("id"), entry); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.cyclesCache.Purge()
	writeJSON(w, http.StatusOK, map[string]any{"status": "updated"})
}
