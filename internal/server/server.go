// Package server exposes the session engine over HTTP: REST endpoints
// for every courtroom operation plus an SSE stream of committed ledger
// entries.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/courtlab/gavel/internal/courtroom"
	"github.com/courtlab/gavel/internal/events"
	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/viewers"
)

// GavelServer serves the HTTP API for one engine instance.
type GavelServer struct {
	engine  *courtroom.Engine
	viewers *viewers.Registry
	sseHub  *sseHub
}

// NewGavelServer returns a server wired to the engine. It installs
// itself as the engine's event hook so every committed ledger entry is
// fanned out to connected SSE clients.
func NewGavelServer(engine *courtroom.Engine, reg *viewers.Registry) *GavelServer {
	s := &GavelServer{
		engine:  engine,
		viewers: reg,
		sseHub:  newSSEHub(),
	}
	engine.OnEvent = s.broadcastEntry
	return s
}

// broadcastEntry fans a committed ledger entry out to SSE clients.
func (s *GavelServer) broadcastEntry(entry *model.EventLedgerEntry) {
	if s.sseHub == nil || entry == nil {
		return
	}
	topic := events.TopicFor(entry.Type)
	payload, err := json.Marshal(events.SessionEvent{Entry: entry})
	if err != nil {
		slog.Warn("failed to marshal entry for SSE broadcast",
			"topic", topic, "session_id", entry.SessionID, "error", err)
		return
	}
	s.sseHub.broadcast(topic, payload)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeEngineError maps engine errors onto HTTP status codes: bad input
// is 400, missing entities 404, authorization failures 403, and state
// precondition failures 409.
func writeEngineError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, model.ErrInvalidFile):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrNotPresidingJudge):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrInvalidStateTransition),
		errors.Is(err, model.ErrActiveTurnExists),
		errors.Is(err, model.ErrTurnNotActive),
		errors.Is(err, model.ErrObjectionAlreadyPending),
		errors.Is(err, model.ErrObjectionAlreadyRuled),
		errors.Is(err, model.ErrExhibitAlreadyRuled),
		errors.Is(err, model.ErrIncompleteSession):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
