package server

import (
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *GavelServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", s.handleScheduleSession)
	mux.HandleFunc("GET /v1/sessions", s.handleListSessions)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /v1/sessions/{id}/snapshot", s.handleGetSnapshot)
	mux.HandleFunc("POST /v1/sessions/{id}/start", s.handleStartSession)
	mux.HandleFunc("POST /v1/sessions/{id}/pause", s.handlePauseSession)
	mux.HandleFunc("POST /v1/sessions/{id}/resume", s.handleResumeSession)
	mux.HandleFunc("POST /v1/sessions/{id}/complete", s.handleCompleteSession)
	mux.HandleFunc("POST /v1/sessions/{id}/tick", s.handleTick)
	mux.HandleFunc("POST /v1/sessions/{id}/turns", s.handleStartTurn)
	mux.HandleFunc("POST /v1/turns/{id}/end", s.handleEndTurn)
	mux.HandleFunc("POST /v1/turns/{id}/objections", s.handleRaiseObjection)
	mux.HandleFunc("POST /v1/objections/{id}/rule", s.handleRuleObjection)
	mux.HandleFunc("POST /v1/sessions/{id}/exhibits", s.handleUploadExhibit)
	mux.HandleFunc("GET /v1/sessions/{id}/exhibits", s.handleListExhibits)
	mux.HandleFunc("POST /v1/exhibits/{id}/mark", s.handleMarkExhibit)
	mux.HandleFunc("POST /v1/exhibits/{id}/tender", s.handleTenderExhibit)
	mux.HandleFunc("POST /v1/exhibits/{id}/rule", s.handleRuleExhibit)
	mux.HandleFunc("GET /v1/exhibits/{id}/content", s.handleExhibitContent)
	mux.HandleFunc("GET /v1/sessions/{id}/events", s.handleGetEvents)
	mux.HandleFunc("GET /v1/sessions/{id}/hashes", s.handleGetHashes)
	mux.HandleFunc("POST /v1/sessions/{id}/verify", s.handleVerifySession)
	mux.HandleFunc("POST /v1/verify", s.handleVerifyAll)
	mux.HandleFunc("GET /v1/sessions/{id}/viewers", s.handleListViewers)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	var handler http.Handler = mux
	handler = AuthMiddleware(authToken, handler)
	handler = LoggingMiddleware(handler)
	handler = RecoveryMiddleware(handler)
	return handler
}

// handleHealth handles GET /v1/health.
func (s *GavelServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
