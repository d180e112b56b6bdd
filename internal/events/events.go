package events

import (
	"context"

	"github.com/courtlab/gavel/internal/model"
)

// Event topic constants
const (
	TopicSessionScheduled = "gavel.session.scheduled"
	TopicSessionStarted   = "gavel.session.started"
	TopicSessionPaused    = "gavel.session.paused"
	TopicSessionResumed   = "gavel.session.resumed"
	TopicSessionCompleted = "gavel.session.completed"

	TopicTurnStarted = "gavel.turn.started"
	TopicTurnEnded   = "gavel.turn.ended"
	TopicTurnExpired = "gavel.turn.expired"

	TopicObjectionRaised = "gavel.objection.raised"
	TopicObjectionRuled  = "gavel.objection.ruled"

	TopicExhibitUploaded = "gavel.exhibit.uploaded"
	TopicExhibitMarked   = "gavel.exhibit.marked"
	TopicExhibitTendered = "gavel.exhibit.tendered"
	TopicExhibitRuled    = "gavel.exhibit.ruled"
)

// topicByEventType maps ledger event types to bus subjects.
var topicByEventType = map[model.EventType]string{
	model.EventSessionScheduled: TopicSessionScheduled,
	model.EventSessionStarted:   TopicSessionStarted,
	model.EventSessionPaused:    TopicSessionPaused,
	model.EventSessionResumed:   TopicSessionResumed,
	model.EventSessionCompleted: TopicSessionCompleted,
	model.EventTurnStarted:      TopicTurnStarted,
	model.EventTurnEnded:        TopicTurnEnded,
	model.EventTurnExpired:      TopicTurnExpired,
	model.EventObjectionRaised:  TopicObjectionRaised,
	model.EventObjectionRuled:   TopicObjectionRuled,
	model.EventExhibitUploaded:  TopicExhibitUploaded,
	model.EventExhibitMarked:    TopicExhibitMarked,
	model.EventExhibitTendered:  TopicExhibitTendered,
	model.EventExhibitRuled:     TopicExhibitRuled,
}

// TopicFor returns the bus subject for a ledger event type, or "" if the
// type is unknown.
func TopicFor(t model.EventType) string {
	return topicByEventType[t]
}

// SessionEvent is the envelope published for every committed ledger entry.
// Subscribers receive the entry exactly as it was recorded, so they can
// re-verify its hash independently.
type SessionEvent struct {
	Entry *model.EventLedgerEntry `json:"entry"`
}

// Topic returns the bus subject for the envelope's entry, or "" when the
// envelope carries no entry.
func (e *SessionEvent) Topic() string {
	if e == nil || e.Entry == nil {
		return ""
	}
	return TopicFor(e.Entry.Type)
}

// Publisher delivers committed ledger entries to the event bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *SessionEvent) error
	Close() error
}
