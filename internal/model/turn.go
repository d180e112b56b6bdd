package model

import "time"

// TurnState represents the lifecycle state of a speaking turn.
type TurnState string

const (
	TurnPending   TurnState = "pending"
	TurnActive    TurnState = "active"
	TurnCompleted TurnState = "completed"
	TurnExpired   TurnState = "expired"
)

// String returns the string representation of the state.
func (s TurnState) String() string {
	return string(s)
}

// IsValid checks whether the state is a known value.
func (s TurnState) IsValid() bool {
	switch s {
	case TurnPending, TurnActive, TurnCompleted, TurnExpired:
		return true
	}
	return false
}

// TurnType categorizes a speaking slot.
// Well-known constants are provided below, but turn types are
// extensible; competition formats define their own (e.g. "surrebuttal").
type TurnType string

const (
	TurnOpening  TurnType = "opening"
	TurnRebuttal TurnType = "rebuttal"
	TurnClosing  TurnType = "closing"
)

// String returns the string representation of the turn type.
func (t TurnType) String() string {
	return string(t)
}

// IsValid reports whether the turn type is a non-empty string.
// Turn types are extensible, so any non-empty value is accepted.
func (t TurnType) IsValid() bool {
	return t != ""
}

// Turn is one side's speaking slot within a session. At most one turn
// per session is active at any instant; the session row lock enforces
// this, not just the application check.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Side      Side      `json:"side"`
	Type      TurnType  `json:"type"`
	State     TurnState `json:"state"`

	AllocatedSeconds int        `json:"allocated_seconds"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	EndReason        string     `json:"end_reason,omitempty"`

	// Score is the optional speaker score recorded when the turn ends.
	Score *float64 `json:"score,omitempty"`
}
