package courtroom

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/courtlab/gavel/internal/ledger"
	"github.com/courtlab/gavel/internal/model"
)

// runFullSession drives a session through a complete round and returns it.
func runFullSession(t *testing.T, e *Engine) *model.Session {
	t.Helper()
	ctx := context.Background()
	session := liveSession(t, e)

	turn, err := e.StartTurn(ctx, session.ID, model.SidePetitioner, model.TurnOpening, 300)
	if err != nil {
		t.Fatalf("StartTurn: %v", err)
	}
	objection, err := e.RaiseObjection(ctx, turn.ID, model.ObjectionRelevance, "counsel-kim")
	if err != nil {
		t.Fatalf("RaiseObjection: %v", err)
	}
	if _, err := e.RuleObjection(ctx, objection.ID, model.ObjectionOverruled, "hon-alvarez"); err != nil {
		t.Fatalf("RuleObjection: %v", err)
	}
	if _, err := e.EndTurn(ctx, turn.ID, "argument concluded", nil); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	if _, err := e.CompleteSession(ctx, session.ID); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	return session
}

func TestVerifySession_Clean(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	session := runFullSession(t, e)

	report, err := e.VerifySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if !report.OK() {
		t.Errorf("findings on a clean ledger: %v", report.Findings)
	}
	if report.Checked != 7 {
		t.Errorf("checked = %d, want 7 entries", report.Checked)
	}

	got, err := e.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.IntegrityCheckedAt == nil {
		t.Error("IntegrityCheckedAt not recorded")
	}
}

func TestVerifySession_DetectsTampering(t *testing.T) {
	e, ms, _, _ := newTestEngine(t)
	ctx := context.Background()
	session := runFullSession(t, e)

	// Rewrite one stored payload behind the engine's back.
	ms.mu.Lock()
	ms.state.events[session.ID][2].Payload = json.RawMessage(`{"forged":true}`)
	ms.mu.Unlock()

	report, err := e.VerifySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if report.OK() {
		t.Fatal("tampered payload not detected")
	}
	found := false
	for _, verr := range report.Errors() {
		var mismatch *ledger.HashMismatchError
		if errors.As(verr, &mismatch) && mismatch.Seq == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected HashMismatchError at seq 3, got %v", report.Findings)
	}
}

func TestVerifySession_DetectsSequenceGap(t *testing.T) {
	e, ms, _, _ := newTestEngine(t)
	ctx := context.Background()
	session := runFullSession(t, e)

	// Delete an entry from the middle of the ledger.
	ms.mu.Lock()
	evts := ms.state.events[session.ID]
	ms.state.events[session.ID] = append(evts[:1], evts[2:]...)
	ms.mu.Unlock()

	report, err := e.VerifySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if report.OK() {
		t.Fatal("sequence gap not detected")
	}
	var gap *ledger.SequenceGapError
	if !errors.As(report.Errors()[0], &gap) {
		t.Errorf("first finding = %v, want SequenceGapError", report.Errors()[0])
	}
}

func TestVerifyAllSessions(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	runFullSession(t, e)
	runFullSession(t, e)

	reports, err := e.VerifyAllSessions(ctx)
	if err != nil {
		t.Fatalf("VerifyAllSessions: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	for _, report := range reports {
		if !report.OK() {
			t.Errorf("session %s: findings %v", report.SessionID, report.Findings)
		}
	}
}

func TestGetSnapshot(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	session := runFullSession(t, e)

	snapshot, err := e.GetSnapshot(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if snapshot.Session.ID != session.ID {
		t.Errorf("session id = %q", snapshot.Session.ID)
	}
	if len(snapshot.Turns) != 1 || len(snapshot.Objections) != 1 {
		t.Errorf("turns=%d objections=%d, want 1 each", len(snapshot.Turns), len(snapshot.Objections))
	}
	if snapshot.LastSequence != 7 {
		t.Errorf("last sequence = %d, want 7", snapshot.LastSequence)
	}
}

func TestEventsAfter_Delta(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	session := runFullSession(t, e)

	delta, err := e.EventsAfter(ctx, session.ID, 5)
	if err != nil {
		t.Fatalf("EventsAfter: %v", err)
	}
	if len(delta) != 2 {
		t.Fatalf("delta = %d entries, want 2", len(delta))
	}
	if delta[0].Seq != 6 || delta[1].Seq != 7 {
		t.Errorf("delta sequences = %d,%d, want 6,7", delta[0].Seq, delta[1].Seq)
	}
}

func TestEventHashes(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	session := runFullSession(t, e)

	hashes, err := e.EventHashes(ctx, session.ID)
	if err != nil {
		t.Fatalf("EventHashes: %v", err)
	}
	if len(hashes) != 7 {
		t.Fatalf("hashes = %d, want 7", len(hashes))
	}
	for i, h := range hashes {
		if len(h) != 64 {
			t.Errorf("hash %d = %q, want 64 hex chars", i, h)
		}
	}
}
