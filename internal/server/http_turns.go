package server

import (
	"encoding/json"
	"net/http"

	"github.com/courtlab/gavel/internal/model"
)

type startTurnInput struct {
	Side             model.Side     `json:"side"`
	Type             model.TurnType `json:"type"`
	AllocatedSeconds int            `json:"allocated_seconds"`
}

// handleStartTurn handles POST /v1/sessions/{id}/turns.
func (s *GavelServer) handleStartTurn(w http.ResponseWriter, r *http.Request) {
	var in startTurnInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	turn, err := s.engine.StartTurn(r.Context(), r.PathValue("id"), in.Side, in.Type, in.AllocatedSeconds)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, turn)
}

type endTurnInput struct {
	Reason string   `json:"reason"`
	Score  *float64 `json:"score,omitempty"`
}

// handleEndTurn handles POST /v1/turns/{id}/end.
func (s *GavelServer) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	var in endTurnInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	turn, err := s.engine.EndTurn(r.Context(), r.PathValue("id"), in.Reason, in.Score)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, turn)
}

type raiseObjectionInput struct {
	Type     model.ObjectionType `json:"type"`
	RaisedBy string              `json:"raised_by"`
}

// handleRaiseObjection handles POST /v1/turns/{id}/objections.
func (s *GavelServer) handleRaiseObjection(w http.ResponseWriter, r *http.Request) {
	var in raiseObjectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	objection, err := s.engine.RaiseObjection(r.Context(), r.PathValue("id"), in.Type, in.RaisedBy)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, objection)
}

type ruleObjectionInput struct {
	Decision model.ObjectionState `json:"decision"`
	RuledBy  string               `json:"ruled_by"`
}

// handleRuleObjection handles POST /v1/objections/{id}/rule.
func (s *GavelServer) handleRuleObjection(w http.ResponseWriter, r *http.Request) {
	var in ruleObjectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	objection, err := s.engine.RuleObjection(r.Context(), r.PathValue("id"), in.Decision, in.RuledBy)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, objection)
}
