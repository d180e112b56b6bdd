// Package client provides a transport-agnostic interface for the gavel
// service and an HTTP/JSON implementation that talks to the gavel REST API.
package client

import (
	"context"

	"github.com/courtlab/gavel/internal/courtroom"
	"github.com/courtlab/gavel/internal/ledger"
	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/viewers"
)

// GavelClient is the interface that all gavel CLI commands use to
// communicate with the server. It is implemented by HTTPClient (default)
// and can be backed by any transport.
type GavelClient interface {
	// Session lifecycle
	ScheduleSession(ctx context.Context, req *courtroom.ScheduleInput) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context, req *ListSessionsRequest) (*ListSessionsResponse, error)
	GetSnapshot(ctx context.Context, id string) (*courtroom.Snapshot, error)
	StartSession(ctx context.Context, id string) (*model.Session, error)
	PauseSession(ctx context.Context, id string) (*model.Session, error)
	ResumeSession(ctx context.Context, id string) (*model.Session, error)
	CompleteSession(ctx context.Context, id string) (*model.Session, error)

	// Turns and the countdown
	StartTurn(ctx context.Context, sessionID string, req *StartTurnRequest) (*model.Turn, error)
	EndTurn(ctx context.Context, turnID, reason string, score *float64) (*model.Turn, error)
	Tick(ctx context.Context, sessionID string) (*courtroom.TickResult, error)

	// Objections
	RaiseObjection(ctx context.Context, turnID string, objType model.ObjectionType, raisedBy string) (*model.Objection, error)
	RuleObjection(ctx context.Context, objectionID string, decision model.ObjectionState, ruledBy string) (*model.Objection, error)

	// Exhibits
	UploadExhibit(ctx context.Context, sessionID string, req *UploadExhibitRequest) (*model.Exhibit, error)
	ListExhibits(ctx context.Context, sessionID string) ([]*model.Exhibit, error)
	MarkExhibit(ctx context.Context, exhibitID string) (*model.Exhibit, error)
	TenderExhibit(ctx context.Context, exhibitID string) (*model.Exhibit, error)
	RuleExhibit(ctx context.Context, exhibitID string, decision model.ExhibitState, ruledBy string) (*model.Exhibit, error)
	ExhibitContent(ctx context.Context, exhibitID string) (data []byte, contentType string, err error)

	// Ledger and integrity
	Events(ctx context.Context, sessionID string, afterSeq uint64) ([]*model.EventLedgerEntry, error)
	Hashes(ctx context.Context, sessionID string) ([]string, error)
	VerifySession(ctx context.Context, sessionID string) (*ledger.Report, error)
	VerifyAll(ctx context.Context) ([]*ledger.Report, error)

	// Presence
	Viewers(ctx context.Context, sessionID string) (*ViewersResponse, error)

	// StreamEvents subscribes to the server's SSE stream. The returned
	// channel closes when the context is cancelled or the stream ends.
	StreamEvents(ctx context.Context, req *StreamRequest) (<-chan StreamEvent, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// ListSessionsRequest holds parameters for listing sessions.
type ListSessionsRequest struct {
	Status       []string `json:"status,omitempty"`
	TournamentID string   `json:"tournament_id,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	Offset       int      `json:"offset,omitempty"`
}

// ListSessionsResponse is the response from ListSessions.
type ListSessionsResponse struct {
	Sessions []*model.Session `json:"sessions"`
	Total    int              `json:"total"`
}

// StartTurnRequest holds parameters for starting a speaking turn.
type StartTurnRequest struct {
	Side             model.Side     `json:"side"`
	Type             model.TurnType `json:"type"`
	AllocatedSeconds int            `json:"allocated_seconds"`
}

// UploadExhibitRequest holds parameters for uploading an exhibit
// artifact.
type UploadExhibitRequest struct {
	Side       model.Side
	Filename   string
	Data       []byte
	UploadedBy string
}

// ViewersResponse is the response from Viewers.
type ViewersResponse struct {
	Viewers []viewers.Entry `json:"viewers"`
	Count   int             `json:"count"`
}

// StreamRequest holds parameters for subscribing to the event stream.
type StreamRequest struct {
	// Topics filters the stream with NATS-style patterns; empty means all.
	Topics []string
	// SessionID and Viewer, when both set, register the caller in the
	// server's presence registry for the lifetime of the stream.
	SessionID string
	Viewer    string
	// LastEventID resumes the stream after a previously seen event.
	LastEventID uint64
}

// StreamEvent is one event received from the SSE stream.
type StreamEvent struct {
	ID    uint64
	Topic string
	Data  []byte
}
