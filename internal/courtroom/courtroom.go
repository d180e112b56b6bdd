// Package courtroom implements the session engine: lifecycle control,
// the turn timer, objection and exhibit workflows, and ledger appends.
//
// Every mutation follows the same shape: open a transaction, lock the
// owning session row, check preconditions, mutate, append exactly one
// ledger entry, commit. Committed entries are then published and
// broadcast best-effort.
package courtroom

import (
	"context"
	"log/slog"
	"time"

	"github.com/courtlab/gavel/internal/artifacts"
	"github.com/courtlab/gavel/internal/authz"
	"github.com/courtlab/gavel/internal/events"
	"github.com/courtlab/gavel/internal/idgen"
	"github.com/courtlab/gavel/internal/ledger"
	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/store"
)

// Engine coordinates all mutation of session state.
type Engine struct {
	store     store.Store
	publisher events.Publisher
	blobs     artifacts.Store

	// OnEvent, when set, receives every committed ledger entry after
	// publication (used by the SSE hub).
	OnEvent func(entry *model.EventLedgerEntry)

	// ExhibitMaxBytes caps exhibit uploads; 0 applies the model default.
	ExhibitMaxBytes int64

	// Authz authorizes ruling principals. NewEngine installs a
	// store-backed resolver; replace it to delegate rulings to an
	// external directory. Consulted before the ruling transaction
	// opens, since the presiding judge is fixed at scheduling.
	Authz authz.Resolver

	now   func() time.Time
	newID func(prefix string) (string, error)
}

// NewEngine returns an engine backed by the given store, publisher, and
// artifact store. The publisher may be a NoopPublisher; blobs may be nil
// when exhibit uploads are disabled.
func NewEngine(s store.Store, p events.Publisher, blobs artifacts.Store) *Engine {
	return &Engine{
		store:     s,
		publisher: p,
		blobs:     blobs,
		Authz:     authz.NewStoreResolver(s),
		now:       time.Now,
		newID:     idgen.GenerateWithPrefix,
	}
}

// appendEvent builds a hashed ledger entry and appends it inside the
// current transaction. The store assigns the sequence number under the
// session row lock.
func (e *Engine) appendEvent(ctx context.Context, tx store.Store, sessionID string, eventType model.EventType, payload any) (*model.EventLedgerEntry, error) {
	entry, err := ledger.NewEntry(sessionID, eventType, payload, e.now())
	if err != nil {
		return nil, err
	}
	if err := tx.AppendEvent(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// emit publishes committed ledger entries to the event bus and the
// broadcast hook. Both are best-effort; failures are logged and never
// fail the mutation that produced the entries.
func (e *Engine) emit(ctx context.Context, entries ...*model.EventLedgerEntry) {
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		topic := events.TopicFor(entry.Type)
		if topic == "" {
			slog.Warn("no topic for event type", "event_type", entry.Type)
			continue
		}
		if err := e.publisher.Publish(ctx, topic, &events.SessionEvent{Entry: entry}); err != nil {
			slog.Warn("failed to publish event",
				"topic", topic, "session_id", entry.SessionID, "seq", entry.Seq, "error", err)
		}
		if e.OnEvent != nil {
			e.OnEvent(entry)
		}
	}
}
