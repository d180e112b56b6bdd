package model

import "time"

// ObjectionState represents the lifecycle state of a procedural objection.
type ObjectionState string

const (
	ObjectionPending   ObjectionState = "pending"
	ObjectionSustained ObjectionState = "sustained"
	ObjectionOverruled ObjectionState = "overruled"
)

// String returns the string representation of the state.
func (s ObjectionState) String() string {
	return string(s)
}

// IsValid checks whether the state is a known value.
func (s ObjectionState) IsValid() bool {
	switch s {
	case ObjectionPending, ObjectionSustained, ObjectionOverruled:
		return true
	}
	return false
}

// IsRuling reports whether the state is a valid ruling decision.
func (s ObjectionState) IsRuling() bool {
	return s == ObjectionSustained || s == ObjectionOverruled
}

// ObjectionType categorizes an objection. Types are extensible;
// well-known constants cover the common procedural grounds.
type ObjectionType string

const (
	ObjectionRelevance     ObjectionType = "relevance"
	ObjectionFoundation    ObjectionType = "foundation"
	ObjectionScope         ObjectionType = "scope"
	ObjectionMisstatement  ObjectionType = "misstatement"
	ObjectionTimeViolation ObjectionType = "time_violation"
)

// String returns the string representation of the objection type.
func (t ObjectionType) String() string {
	return string(t)
}

// IsValid reports whether the objection type is a non-empty string.
func (t ObjectionType) IsValid() bool {
	return t != ""
}

// Objection is a procedural dispute raised during a turn. At most one
// objection per turn may be pending at any instant. Once ruled, an
// objection is immutable.
type Objection struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	TurnID    string         `json:"turn_id"`
	Type      ObjectionType  `json:"type"`
	State     ObjectionState `json:"state"`

	RaisedBy string     `json:"raised_by"`
	RaisedAt time.Time  `json:"raised_at"`
	RuledBy  string     `json:"ruled_by,omitempty"`
	RuledAt  *time.Time `json:"ruled_at,omitempty"`
}
