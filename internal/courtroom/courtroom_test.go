package courtroom

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/courtlab/gavel/internal/events"
	"github.com/courtlab/gavel/internal/model"
)

// fakeClock is a manually advanced clock so timer tests are deterministic.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// capturePublisher records published topics for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event *events.SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event == nil || event.Entry == nil {
		return fmt.Errorf("published envelope for %s has no entry", topic)
	}
	p.topics = append(p.topics, topic)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

// memBlobs is an in-memory artifact store.
type memBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: make(map[string][]byte)}
}

func (b *memBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (b *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[key]
	if !ok {
		return nil, fmt.Errorf("no blob under %q", key)
	}
	return append([]byte(nil), data...), nil
}

// newTestEngine wires an engine to the in-memory store, a deterministic
// clock, sequential IDs, and a capturing publisher.
func newTestEngine(t *testing.T) (*Engine, *memStore, *fakeClock, *capturePublisher) {
	t.Helper()
	ms := newMemStore()
	clock := newFakeClock()
	pub := &capturePublisher{}

	e := NewEngine(ms, pub, newMemBlobs())
	e.now = clock.Now

	var mu sync.Mutex
	var n int
	e.newID = func(prefix string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%04d", prefix, n), nil
	}
	return e, ms, clock, pub
}

// scheduleSession creates a SCHEDULED session with a fixed judge.
func scheduleSession(t *testing.T, e *Engine) *model.Session {
	t.Helper()
	session, err := e.ScheduleSession(context.Background(), ScheduleInput{
		TournamentID:   "tourn-1",
		Round:          "quarterfinal",
		Institution:    "inst-1",
		PresidingJudge: "hon-alvarez",
	})
	if err != nil {
		t.Fatalf("ScheduleSession: %v", err)
	}
	return session
}

// liveSession creates a session and moves it to LIVE.
func liveSession(t *testing.T, e *Engine) *model.Session {
	t.Helper()
	session := scheduleSession(t, e)
	live, err := e.StartSession(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return live
}

// eventTypes returns the session's ledger event types in sequence order.
func eventTypes(t *testing.T, e *Engine, sessionID string) []model.EventType {
	t.Helper()
	entries, err := e.EventsAfter(context.Background(), sessionID, 0)
	if err != nil {
		t.Fatalf("EventsAfter: %v", err)
	}
	types := make([]model.EventType, len(entries))
	for i, entry := range entries {
		types[i] = entry.Type
	}
	return types
}

// pdfBytes is a minimal artifact that passes exhibit validation.
func pdfBytes() []byte {
	return []byte("%PDF-1.7\n1 0 obj\nendobj\n%%EOF\n")
}
