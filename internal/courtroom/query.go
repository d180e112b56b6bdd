package courtroom

import (
	"context"

	"github.com/courtlab/gavel/internal/model"
)

// Snapshot is the full state of one session, served to the delivery
// layer when a viewer first connects.
type Snapshot struct {
	Session      *model.Session     `json:"session"`
	Turns        []*model.Turn      `json:"turns"`
	Objections   []*model.Objection `json:"objections"`
	Exhibits     []*model.Exhibit   `json:"exhibits"`
	LastSequence uint64             `json:"last_sequence"`
}

// GetSession returns a single session by id.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return e.store.GetSession(ctx, sessionID)
}

// ListSessions returns sessions matching the filter.
func (e *Engine) ListSessions(ctx context.Context, filter model.SessionFilter) ([]*model.Session, error) {
	return e.store.ListSessions(ctx, filter)
}

// GetSnapshot assembles the full state of a session. The reads are not
// transactional with each other; the delivery layer reconciles via the
// event delta after connecting.
func (e *Engine) GetSnapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	turns, err := e.store.ListTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	objections, err := e.store.ListObjections(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	exhibits, err := e.store.ListExhibits(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	hashes, err := e.store.ListEventHashes(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Session:      session,
		Turns:        turns,
		Objections:   objections,
		Exhibits:     exhibits,
		LastSequence: uint64(len(hashes)),
	}, nil
}

// ListExhibits returns the session's exhibits in upload order.
func (e *Engine) ListExhibits(ctx context.Context, sessionID string) ([]*model.Exhibit, error) {
	if _, err := e.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return e.store.ListExhibits(ctx, sessionID)
}

// EventsAfter returns the session's ledger entries with sequence greater
// than afterSeq, in order. afterSeq 0 returns the full ledger.
func (e *Engine) EventsAfter(ctx context.Context, sessionID string, afterSeq uint64) ([]*model.EventLedgerEntry, error) {
	if _, err := e.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return e.store.ListEvents(ctx, sessionID, afterSeq)
}

// EventHashes returns all event hashes for a session in sequence order,
// for the tournament-level audit engine.
func (e *Engine) EventHashes(ctx context.Context, sessionID string) ([]string, error) {
	if _, err := e.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return e.store.ListEventHashes(ctx, sessionID)
}
