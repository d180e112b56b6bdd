package model

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of ledger entry.
type EventType string

const (
	EventSessionScheduled EventType = "SESSION_SCHEDULED"
	EventSessionStarted   EventType = "SESSION_STARTED"
	EventSessionPaused    EventType = "SESSION_PAUSED"
	EventSessionResumed   EventType = "SESSION_RESUMED"
	EventSessionCompleted EventType = "SESSION_COMPLETED"
	EventTurnStarted      EventType = "TURN_STARTED"
	EventTurnEnded        EventType = "TURN_ENDED"
	EventTurnExpired      EventType = "TURN_EXPIRED"
	EventObjectionRaised  EventType = "OBJECTION_RAISED"
	EventObjectionRuled   EventType = "OBJECTION_RULED"
	EventExhibitUploaded  EventType = "EXHIBIT_UPLOADED"
	EventExhibitMarked    EventType = "EXHIBIT_MARKED"
	EventExhibitTendered  EventType = "EXHIBIT_TENDERED"
	EventExhibitRuled     EventType = "EXHIBIT_RULED"
)

// AllEventTypes lists every known event type in lifecycle order.
var AllEventTypes = []EventType{
	EventSessionScheduled, EventSessionStarted, EventSessionPaused,
	EventSessionResumed, EventSessionCompleted,
	EventTurnStarted, EventTurnEnded, EventTurnExpired,
	EventObjectionRaised, EventObjectionRuled,
	EventExhibitUploaded, EventExhibitMarked, EventExhibitTendered,
	EventExhibitRuled,
}

// String returns the string representation of the event type.
func (t EventType) String() string {
	return string(t)
}

// IsValid checks whether the event type is a known value.
func (t EventType) IsValid() bool {
	switch t {
	case EventSessionScheduled, EventSessionStarted, EventSessionPaused,
		EventSessionResumed, EventSessionCompleted,
		EventTurnStarted, EventTurnEnded, EventTurnExpired,
		EventObjectionRaised, EventObjectionRuled,
		EventExhibitUploaded, EventExhibitMarked, EventExhibitTendered,
		EventExhibitRuled:
		return true
	}
	return false
}

// EventLedgerEntry is one immutable fact about a session. Entries are
// appended exactly once per accepted mutation and never updated or
// deleted. Seq is strictly increasing per session starting at 1 with no
// gaps; the session row lock held during append guarantees both.
//
// Hash covers the entry's own content only (session id, event type,
// canonical payload, created-at); it does not chain to the previous
// entry. Consistent rewrites of history are therefore detectable only
// through external corroboration such as the tournament-level Merkle
// export.
type EventLedgerEntry struct {
	SessionID string          `json:"session_id"`
	Seq       uint64          `json:"event_sequence"`
	Type      EventType       `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Hash      string          `json:"event_hash"`
	CreatedAt time.Time       `json:"created_at"`
}
