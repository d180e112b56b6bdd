package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/courtlab/gavel/internal/courtroom"
	"github.com/courtlab/gavel/internal/events"
	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/store"
	"github.com/courtlab/gavel/internal/viewers"
)

// mockStore is an unlocked in-memory store. Handler tests drive the
// server sequentially, so no locking is needed; transactions simply run
// the callback against the same state.
type mockStore struct {
	sessions   map[string]*model.Session
	turns      map[string]*model.Turn
	objections map[string]*model.Objection
	exhibits   map[string]*model.Exhibit
	events     map[string][]*model.EventLedgerEntry
}

func newMockStore() *mockStore {
	return &mockStore{
		sessions:   make(map[string]*model.Session),
		turns:      make(map[string]*model.Turn),
		objections: make(map[string]*model.Objection),
		exhibits:   make(map[string]*model.Exhibit),
		events:     make(map[string][]*model.EventLedgerEntry),
	}
}

func (m *mockStore) CreateSession(_ context.Context, s *model.Session) error {
	c := *s
	m.sessions[s.ID] = &c
	return nil
}

func (m *mockStore) GetSession(_ context.Context, id string) (*model.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *s
	return &c, nil
}

func (m *mockStore) GetSessionForUpdate(ctx context.Context, id string) (*model.Session, error) {
	return m.GetSession(ctx, id)
}

func (m *mockStore) UpdateSession(_ context.Context, s *model.Session) error {
	if _, ok := m.sessions[s.ID]; !ok {
		return sql.ErrNoRows
	}
	c := *s
	m.sessions[s.ID] = &c
	return nil
}

func (m *mockStore) ListSessions(_ context.Context, filter model.SessionFilter) ([]*model.Session, error) {
	var out []*model.Session
	for _, s := range m.sessions {
		if filter.TournamentID != "" && s.TournamentID != filter.TournamentID {
			continue
		}
		if len(filter.Status) > 0 {
			match := false
			for _, st := range filter.Status {
				if s.Status == st {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) SetIntegrityCheckedAt(_ context.Context, id string) error {
	s, ok := m.sessions[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := s.UpdatedAt
	s.IntegrityCheckedAt = &now
	return nil
}

func (m *mockStore) CreateTurn(_ context.Context, t *model.Turn) error {
	c := *t
	m.turns[t.ID] = &c
	return nil
}

func (m *mockStore) GetTurn(_ context.Context, id string) (*model.Turn, error) {
	t, ok := m.turns[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *t
	return &c, nil
}

func (m *mockStore) UpdateTurn(_ context.Context, t *model.Turn) error {
	if _, ok := m.turns[t.ID]; !ok {
		return sql.ErrNoRows
	}
	c := *t
	m.turns[t.ID] = &c
	return nil
}

func (m *mockStore) ListTurns(_ context.Context, sessionID string) ([]*model.Turn, error) {
	var out []*model.Turn
	for _, t := range m.turns {
		if t.SessionID == sessionID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (m *mockStore) HasActiveTurn(_ context.Context, sessionID string) (bool, error) {
	for _, t := range m.turns {
		if t.SessionID == sessionID && t.State == model.TurnActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) CreateObjection(_ context.Context, o *model.Objection) error {
	c := *o
	m.objections[o.ID] = &c
	return nil
}

func (m *mockStore) GetObjection(_ context.Context, id string) (*model.Objection, error) {
	o, ok := m.objections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *o
	return &c, nil
}

func (m *mockStore) UpdateObjection(_ context.Context, o *model.Objection) error {
	if _, ok := m.objections[o.ID]; !ok {
		return sql.ErrNoRows
	}
	c := *o
	m.objections[o.ID] = &c
	return nil
}

func (m *mockStore) ListObjections(_ context.Context, sessionID string) ([]*model.Objection, error) {
	var out []*model.Objection
	for _, o := range m.objections {
		if o.SessionID == sessionID {
			c := *o
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RaisedAt.Before(out[j].RaisedAt) })
	return out, nil
}

func (m *mockStore) GetPendingObjection(_ context.Context, turnID string) (*model.Objection, error) {
	for _, o := range m.objections {
		if o.TurnID == turnID && o.State == model.ObjectionPending {
			c := *o
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) HasPendingObjection(_ context.Context, sessionID string) (bool, error) {
	for _, o := range m.objections {
		if o.SessionID == sessionID && o.State == model.ObjectionPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) CreateExhibit(_ context.Context, e *model.Exhibit) error {
	c := *e
	m.exhibits[e.ID] = &c
	return nil
}

func (m *mockStore) GetExhibit(_ context.Context, id string) (*model.Exhibit, error) {
	e, ok := m.exhibits[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *e
	return &c, nil
}

func (m *mockStore) UpdateExhibit(_ context.Context, e *model.Exhibit) error {
	if _, ok := m.exhibits[e.ID]; !ok {
		return sql.ErrNoRows
	}
	c := *e
	m.exhibits[e.ID] = &c
	return nil
}

func (m *mockStore) ListExhibits(_ context.Context, sessionID string) ([]*model.Exhibit, error) {
	var out []*model.Exhibit
	for _, e := range m.exhibits {
		if e.SessionID == sessionID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (m *mockStore) MaxExhibitNumber(_ context.Context, sessionID string, side model.Side) (int, error) {
	max := 0
	for _, e := range m.exhibits {
		if e.SessionID == sessionID && e.Side == side && e.Number > max {
			max = e.Number
		}
	}
	return max, nil
}

func (m *mockStore) AppendEvent(_ context.Context, entry *model.EventLedgerEntry) error {
	entry.Seq = uint64(len(m.events[entry.SessionID]) + 1)
	c := *entry
	m.events[entry.SessionID] = append(m.events[entry.SessionID], &c)
	return nil
}

func (m *mockStore) ListEvents(_ context.Context, sessionID string, afterSeq uint64) ([]*model.EventLedgerEntry, error) {
	var out []*model.EventLedgerEntry
	for _, e := range m.events[sessionID] {
		if e.Seq > afterSeq {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *mockStore) ListEventHashes(_ context.Context, sessionID string) ([]string, error) {
	var out []string
	for _, e := range m.events[sessionID] {
		out = append(out, e.Hash)
	}
	return out, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) RunSerializable(ctx context.Context, fn func(tx store.Store) error) error {
	return m.RunInTransaction(ctx, fn)
}

func (m *mockStore) Close() error { return nil }

var _ store.Store = (*mockStore)(nil)

// mockBlobs is an in-memory artifact store.
type mockBlobs struct {
	blobs map[string][]byte
}

func newMockBlobs() *mockBlobs {
	return &mockBlobs{blobs: make(map[string][]byte)}
}

func (b *mockBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	b.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (b *mockBlobs) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := b.blobs[key]
	if !ok {
		return nil, fmt.Errorf("no blob under %q", key)
	}
	return append([]byte(nil), data...), nil
}

// newTestHandler wires a server over the in-memory store and returns the
// server together with its fully assembled handler.
func newTestHandler(t *testing.T) (*GavelServer, http.Handler) {
	t.Helper()
	engine := courtroom.NewEngine(newMockStore(), &events.NoopPublisher{}, newMockBlobs())
	srv := NewGavelServer(engine, viewers.New())
	return srv, srv.NewHTTPHandler("")
}

// doJSON issues a request with an optional JSON body and decodes the
// JSON response into out (when out is non-nil).
func doJSON(t *testing.T, handler http.Handler, method, path string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if out != nil && rec.Code < http.StatusMultipleChoices {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec
}

// scheduleSession creates a session over HTTP and returns it.
func scheduleSession(t *testing.T, handler http.Handler) *model.Session {
	t.Helper()
	var session model.Session
	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions", courtroom.ScheduleInput{
		TournamentID:   "tourn-1",
		Round:          "quarterfinal",
		Institution:    "inst-1",
		PresidingJudge: "hon-alvarez",
	}, &session)
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule: status %d, body %s", rec.Code, rec.Body.String())
	}
	return &session
}

// liveSession schedules and starts a session.
func liveSession(t *testing.T, handler http.Handler) *model.Session {
	t.Helper()
	session := scheduleSession(t, handler)
	var started model.Session
	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions/"+session.ID+"/start", nil, &started)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: status %d, body %s", rec.Code, rec.Body.String())
	}
	return &started
}

// startTurn starts a petitioner opening turn over HTTP.
func startTurn(t *testing.T, handler http.Handler, sessionID string) *model.Turn {
	t.Helper()
	var turn model.Turn
	rec := doJSON(t, handler, http.MethodPost, "/v1/sessions/"+sessionID+"/turns", startTurnInput{
		Side:             model.SidePetitioner,
		Type:             model.TurnOpening,
		AllocatedSeconds: 300,
	}, &turn)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start turn: status %d, body %s", rec.Code, rec.Body.String())
	}
	return &turn
}
