package server

import (
	"net/http"
	"strconv"

	"github.com/courtlab/gavel/internal/model"
)

// handleGetEvents handles GET /v1/sessions/{id}/events. The optional
// "after" query parameter returns only entries with a higher sequence,
// letting reconnecting viewers catch up from their last seen event.
func (s *GavelServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	var afterSeq uint64
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "after must be a non-negative integer")
			return
		}
		afterSeq = n
	}

	entries, err := s.engine.EventsAfter(r.Context(), r.PathValue("id"), afterSeq)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if entries == nil {
		entries = []*model.EventLedgerEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": entries,
		"total":  len(entries),
	})
}

// handleGetHashes handles GET /v1/sessions/{id}/hashes, serving every
// event hash in sequence order for the tournament audit export.
func (s *GavelServer) handleGetHashes(w http.ResponseWriter, r *http.Request) {
	hashes, err := s.engine.EventHashes(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if hashes == nil {
		hashes = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": r.PathValue("id"),
		"hashes":     hashes,
	})
}
