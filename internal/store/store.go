package store

import (
	"context"

	"github.com/courtlab/gavel/internal/model"
)

// Store defines the persistence interface for sessions and everything
// they own. Not-found reads return sql.ErrNoRows.
//
// Mutating operations are expected to run inside RunInTransaction with
// the owning session's row locked via GetSessionForUpdate; the lock
// serializes all mutation for a session, which is what makes ledger
// sequences gap-free and the single-active-turn / single-pending-
// objection invariants hold under concurrency.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	// GetSessionForUpdate reads the session row under an exclusive row
	// lock held until the surrounding transaction ends.
	GetSessionForUpdate(ctx context.Context, id string) (*model.Session, error)
	UpdateSession(ctx context.Context, session *model.Session) error
	ListSessions(ctx context.Context, filter model.SessionFilter) ([]*model.Session, error)
	SetIntegrityCheckedAt(ctx context.Context, id string) error

	// Turns
	CreateTurn(ctx context.Context, turn *model.Turn) error
	GetTurn(ctx context.Context, id string) (*model.Turn, error)
	UpdateTurn(ctx context.Context, turn *model.Turn) error
	ListTurns(ctx context.Context, sessionID string) ([]*model.Turn, error)
	HasActiveTurn(ctx context.Context, sessionID string) (bool, error)

	// Objections
	CreateObjection(ctx context.Context, objection *model.Objection) error
	GetObjection(ctx context.Context, id string) (*model.Objection, error)
	UpdateObjection(ctx context.Context, objection *model.Objection) error
	ListObjections(ctx context.Context, sessionID string) ([]*model.Objection, error)
	// GetPendingObjection returns the turn's pending objection, or
	// sql.ErrNoRows when there is none.
	GetPendingObjection(ctx context.Context, turnID string) (*model.Objection, error)
	HasPendingObjection(ctx context.Context, sessionID string) (bool, error)

	// Exhibits
	CreateExhibit(ctx context.Context, exhibit *model.Exhibit) error
	GetExhibit(ctx context.Context, id string) (*model.Exhibit, error)
	UpdateExhibit(ctx context.Context, exhibit *model.Exhibit) error
	ListExhibits(ctx context.Context, sessionID string) ([]*model.Exhibit, error)
	// MaxExhibitNumber returns the highest number assigned for
	// (session, side), or 0 when none have been marked.
	MaxExhibitNumber(ctx context.Context, sessionID string, side model.Side) (int, error)

	// Event ledger
	// AppendEvent assigns entry.Seq = previous max + 1 for the session
	// and inserts the entry. Callers must hold the session row lock.
	AppendEvent(ctx context.Context, entry *model.EventLedgerEntry) error
	// ListEvents returns entries with Seq > afterSeq, ordered by Seq.
	// afterSeq 0 returns the full ledger.
	ListEvents(ctx context.Context, sessionID string, afterSeq uint64) ([]*model.EventLedgerEntry, error)
	// ListEventHashes returns all event hashes in sequence order, for
	// the tournament-level audit export.
	ListEventHashes(ctx context.Context, sessionID string) ([]string, error)

	// Transaction support. RunSerializable uses the strongest isolation
	// level; session completion requires it because its precondition
	// must not be invalidated between check and commit.
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error
	RunSerializable(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
