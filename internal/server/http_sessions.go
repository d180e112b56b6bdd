package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/courtlab/gavel/internal/courtroom"
	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/viewers"
)

// handleScheduleSession handles POST /v1/sessions.
func (s *GavelServer) handleScheduleSession(w http.ResponseWriter, r *http.Request) {
	var in courtroom.ScheduleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := s.engine.ScheduleSession(r.Context(), in)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// handleListSessions handles GET /v1/sessions.
func (s *GavelServer) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.SessionFilter{
		TournamentID: q.Get("tournament_id"),
	}

	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.SessionStatus(st))
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	sessions, err := s.engine.ListSessions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	// Ensure sessions is never null in JSON output.
	if sessions == nil {
		sessions = []*model.Session{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

// handleGetSession handles GET /v1/sessions/{id}.
func (s *GavelServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.engine.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleGetSnapshot handles GET /v1/sessions/{id}/snapshot.
func (s *GavelServer) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.engine.GetSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// handleStartSession handles POST /v1/sessions/{id}/start.
func (s *GavelServer) handleStartSession(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.StartSession)
}

// handlePauseSession handles POST /v1/sessions/{id}/pause.
func (s *GavelServer) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.PauseSession)
}

// handleResumeSession handles POST /v1/sessions/{id}/resume.
func (s *GavelServer) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.ResumeSession)
}

// handleCompleteSession handles POST /v1/sessions/{id}/complete.
func (s *GavelServer) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.CompleteSession)
}

// transition runs a session lifecycle operation and writes the updated
// session.
func (s *GavelServer) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sessionID string) (*model.Session, error)) {
	session, err := op(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleTick handles POST /v1/sessions/{id}/tick.
func (s *GavelServer) handleTick(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Tick(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleVerifySession handles POST /v1/sessions/{id}/verify.
func (s *GavelServer) handleVerifySession(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.VerifySession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleVerifyAll handles POST /v1/verify.
func (s *GavelServer) handleVerifyAll(w http.ResponseWriter, r *http.Request) {
	reports, err := s.engine.VerifyAllSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "verification failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// handleListViewers handles GET /v1/sessions/{id}/viewers.
func (s *GavelServer) handleListViewers(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	entries := s.viewers.Viewers(sessionID)
	if entries == nil {
		entries = []viewers.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"viewers": entries,
		"count":   len(entries),
	})
}
