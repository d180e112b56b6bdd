package courtroom

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/store"
)

// memState holds in-memory session state. Its methods implement
// store.Store without locking; memStore wraps each call with the mutex
// that stands in for the session row lock.
type memState struct {
	sessions   map[string]*model.Session
	turns      map[string]*model.Turn
	objections map[string]*model.Objection
	exhibits   map[string]*model.Exhibit
	events     map[string][]*model.EventLedgerEntry
}

// memStore is the engine test double: a store whose transactions are
// serialized by a single mutex, giving the same mutual-exclusion
// guarantee the Postgres row lock provides per session.
type memStore struct {
	mu    sync.Mutex
	state *memState
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		sessions:   make(map[string]*model.Session),
		turns:      make(map[string]*model.Turn),
		objections: make(map[string]*model.Objection),
		exhibits:   make(map[string]*model.Exhibit),
		events:     make(map[string][]*model.EventLedgerEntry),
	}}
}

func copySession(s *model.Session) *model.Session       { c := *s; return &c }
func copyTurn(t *model.Turn) *model.Turn                { c := *t; return &c }
func copyObjection(o *model.Objection) *model.Objection { c := *o; return &c }
func copyExhibit(e *model.Exhibit) *model.Exhibit       { c := *e; return &c }

func (m *memState) CreateSession(_ context.Context, s *model.Session) error {
	m.sessions[s.ID] = copySession(s)
	return nil
}

func (m *memState) GetSession(_ context.Context, id string) (*model.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copySession(s), nil
}

func (m *memState) GetSessionForUpdate(ctx context.Context, id string) (*model.Session, error) {
	return m.GetSession(ctx, id)
}

func (m *memState) UpdateSession(_ context.Context, s *model.Session) error {
	if _, ok := m.sessions[s.ID]; !ok {
		return sql.ErrNoRows
	}
	m.sessions[s.ID] = copySession(s)
	return nil
}

func (m *memState) ListSessions(_ context.Context, filter model.SessionFilter) ([]*model.Session, error) {
	var out []*model.Session
	for _, s := range m.sessions {
		if filter.TournamentID != "" && s.TournamentID != filter.TournamentID {
			continue
		}
		if len(filter.Status) > 0 && !statusIn(s.Status, filter.Status) {
			continue
		}
		out = append(out, copySession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memState) SetIntegrityCheckedAt(_ context.Context, id string) error {
	s, ok := m.sessions[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := s.UpdatedAt
	s.IntegrityCheckedAt = &now
	return nil
}

func (m *memState) CreateTurn(_ context.Context, t *model.Turn) error {
	m.turns[t.ID] = copyTurn(t)
	return nil
}

func (m *memState) GetTurn(_ context.Context, id string) (*model.Turn, error) {
	t, ok := m.turns[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyTurn(t), nil
}

func (m *memState) UpdateTurn(_ context.Context, t *model.Turn) error {
	if _, ok := m.turns[t.ID]; !ok {
		return sql.ErrNoRows
	}
	m.turns[t.ID] = copyTurn(t)
	return nil
}

func (m *memState) ListTurns(_ context.Context, sessionID string) ([]*model.Turn, error) {
	var out []*model.Turn
	for _, t := range m.turns {
		if t.SessionID == sessionID {
			out = append(out, copyTurn(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (m *memState) HasActiveTurn(_ context.Context, sessionID string) (bool, error) {
	for _, t := range m.turns {
		if t.SessionID == sessionID && t.State == model.TurnActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *memState) CreateObjection(_ context.Context, o *model.Objection) error {
	m.objections[o.ID] = copyObjection(o)
	return nil
}

func (m *memState) GetObjection(_ context.Context, id string) (*model.Objection, error) {
	o, ok := m.objections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyObjection(o), nil
}

func (m *memState) UpdateObjection(_ context.Context, o *model.Objection) error {
	if _, ok := m.objections[o.ID]; !ok {
		return sql.ErrNoRows
	}
	m.objections[o.ID] = copyObjection(o)
	return nil
}

func (m *memState) ListObjections(_ context.Context, sessionID string) ([]*model.Objection, error) {
	var out []*model.Objection
	for _, o := range m.objections {
		if o.SessionID == sessionID {
			out = append(out, copyObjection(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RaisedAt.Before(out[j].RaisedAt) })
	return out, nil
}

func (m *memState) GetPendingObjection(_ context.Context, turnID string) (*model.Objection, error) {
	for _, o := range m.objections {
		if o.TurnID == turnID && o.State == model.ObjectionPending {
			return copyObjection(o), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memState) HasPendingObjection(_ context.Context, sessionID string) (bool, error) {
	for _, o := range m.objections {
		if o.SessionID == sessionID && o.State == model.ObjectionPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *memState) CreateExhibit(_ context.Context, e *model.Exhibit) error {
	m.exhibits[e.ID] = copyExhibit(e)
	return nil
}

func (m *memState) GetExhibit(_ context.Context, id string) (*model.Exhibit, error) {
	e, ok := m.exhibits[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyExhibit(e), nil
}

func (m *memState) UpdateExhibit(_ context.Context, e *model.Exhibit) error {
	if _, ok := m.exhibits[e.ID]; !ok {
		return sql.ErrNoRows
	}
	m.exhibits[e.ID] = copyExhibit(e)
	return nil
}

func (m *memState) ListExhibits(_ context.Context, sessionID string) ([]*model.Exhibit, error) {
	var out []*model.Exhibit
	for _, e := range m.exhibits {
		if e.SessionID == sessionID {
			out = append(out, copyExhibit(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (m *memState) MaxExhibitNumber(_ context.Context, sessionID string, side model.Side) (int, error) {
	max := 0
	for _, e := range m.exhibits {
		if e.SessionID == sessionID && e.Side == side && e.Number > max {
			max = e.Number
		}
	}
	return max, nil
}

func (m *memState) AppendEvent(_ context.Context, entry *model.EventLedgerEntry) error {
	entry.Seq = uint64(len(m.events[entry.SessionID]) + 1)
	stored := *entry
	m.events[entry.SessionID] = append(m.events[entry.SessionID], &stored)
	return nil
}

func (m *memState) ListEvents(_ context.Context, sessionID string, afterSeq uint64) ([]*model.EventLedgerEntry, error) {
	var out []*model.EventLedgerEntry
	for _, e := range m.events[sessionID] {
		if e.Seq > afterSeq {
			stored := *e
			out = append(out, &stored)
		}
	}
	return out, nil
}

func (m *memState) ListEventHashes(_ context.Context, sessionID string) ([]string, error) {
	var out []string
	for _, e := range m.events[sessionID] {
		out = append(out, e.Hash)
	}
	return out, nil
}

// Nested transactions reuse the already-held lock.
func (m *memState) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *memState) RunSerializable(ctx context.Context, fn func(tx store.Store) error) error {
	return m.RunInTransaction(ctx, fn)
}

func (m *memState) Close() error { return nil }

// memStore delegates to memState under the mutex.

func (m *memStore) CreateSession(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CreateSession(ctx, s)
}

func (m *memStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetSession(ctx, id)
}

func (m *memStore) GetSessionForUpdate(ctx context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetSessionForUpdate(ctx, id)
}

func (m *memStore) UpdateSession(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UpdateSession(ctx, s)
}

func (m *memStore) ListSessions(ctx context.Context, filter model.SessionFilter) ([]*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ListSessions(ctx, filter)
}

func (m *memStore) SetIntegrityCheckedAt(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.SetIntegrityCheckedAt(ctx, id)
}

func (m *memStore) CreateTurn(ctx context.Context, t *model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CreateTurn(ctx, t)
}

func (m *memStore) GetTurn(ctx context.Context, id string) (*model.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetTurn(ctx, id)
}

func (m *memStore) UpdateTurn(ctx context.Context, t *model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UpdateTurn(ctx, t)
}

func (m *memStore) ListTurns(ctx context.Context, sessionID string) ([]*model.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ListTurns(ctx, sessionID)
}

func (m *memStore) HasActiveTurn(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.HasActiveTurn(ctx, sessionID)
}

func (m *memStore) CreateObjection(ctx context.Context, o *model.Objection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CreateObjection(ctx, o)
}

func (m *memStore) GetObjection(ctx context.Context, id string) (*model.Objection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetObjection(ctx, id)
}

func (m *memStore) UpdateObjection(ctx context.Context, o *model.Objection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UpdateObjection(ctx, o)
}

func (m *memStore) ListObjections(ctx context.Context, sessionID string) ([]*model.Objection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ListObjections(ctx, sessionID)
}

func (m *memStore) GetPendingObjection(ctx context.Context, turnID string) (*model.Objection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetPendingObjection(ctx, turnID)
}

func (m *memStore) HasPendingObjection(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.HasPendingObjection(ctx, sessionID)
}

func (m *memStore) CreateExhibit(ctx context.Context, e *model.Exhibit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CreateExhibit(ctx, e)
}

func (m *memStore) GetExhibit(ctx context.Context, id string) (*model.Exhibit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetExhibit(ctx, id)
}

func (m *memStore) UpdateExhibit(ctx context.Context, e *model.Exhibit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UpdateExhibit(ctx, e)
}

func (m *memStore) ListExhibits(ctx context.Context, sessionID string) ([]*model.Exhibit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ListExhibits(ctx, sessionID)
}

func (m *memStore) MaxExhibitNumber(ctx context.Context, sessionID string, side model.Side) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.MaxExhibitNumber(ctx, sessionID, side)
}

func (m *memStore) AppendEvent(ctx context.Context, entry *model.EventLedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.AppendEvent(ctx, entry)
}

func (m *memStore) ListEvents(ctx context.Context, sessionID string, afterSeq uint64) ([]*model.EventLedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ListEvents(ctx, sessionID, afterSeq)
}

func (m *memStore) ListEventHashes(ctx context.Context, sessionID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ListEventHashes(ctx, sessionID)
}

func (m *memStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.state)
}

func (m *memStore) RunSerializable(ctx context.Context, fn func(tx store.Store) error) error {
	return m.RunInTransaction(ctx, fn)
}

func (m *memStore) Close() error { return nil }

var _ store.Store = (*memStore)(nil)
var _ store.Store = (*memState)(nil)
