package viewers

import (
	"sync"
	"testing"
	"time"
)

func TestTouchAndCount(t *testing.T) {
	r := New()

	r.Touch("ses-1", "viewer-a")
	r.Touch("ses-1", "viewer-b")
	r.Touch("ses-2", "viewer-a")

	if got := r.Count("ses-1"); got != 2 {
		t.Errorf("Count(ses-1) = %d, want 2", got)
	}
	if got := r.Count("ses-2"); got != 1 {
		t.Errorf("Count(ses-2) = %d, want 1", got)
	}
	if got := r.Count("ses-3"); got != 0 {
		t.Errorf("Count(ses-3) = %d, want 0", got)
	}
}

func TestTouch_IgnoresEmpty(t *testing.T) {
	r := New()
	r.Touch("", "viewer-a")
	r.Touch("ses-1", "")
	if got := r.Count("ses-1"); got != 0 {
		t.Errorf("Count = %d, want 0", got)
	}
}

func TestTouch_RefreshesExisting(t *testing.T) {
	r := New()
	r.Touch("ses-1", "viewer-a")
	first := r.Viewers("ses-1")[0]

	r.Touch("ses-1", "viewer-a")
	if got := r.Count("ses-1"); got != 1 {
		t.Fatalf("Count = %d, want 1 after re-touch", got)
	}
	second := r.Viewers("ses-1")[0]
	if second.ConnectedAt != first.ConnectedAt {
		t.Error("re-touch must not reset ConnectedAt")
	}
	if second.LastSeen.Before(first.LastSeen) {
		t.Error("re-touch must refresh LastSeen")
	}
}

func TestDisconnect(t *testing.T) {
	r := New()
	r.Touch("ses-1", "viewer-a")
	r.Touch("ses-1", "viewer-b")

	r.Disconnect("ses-1", "viewer-a")
	if got := r.Count("ses-1"); got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}

	entries := r.Viewers("ses-1")
	if len(entries) != 1 || entries[0].Viewer != "viewer-b" {
		t.Errorf("viewers = %+v, want only viewer-b", entries)
	}

	// Disconnecting unknown entries is a no-op.
	r.Disconnect("ses-1", "viewer-x")
	r.Disconnect("ses-9", "viewer-a")
}

func TestViewers_SortedByLastSeen(t *testing.T) {
	r := New()
	r.Touch("ses-1", "viewer-a")
	time.Sleep(2 * time.Millisecond)
	r.Touch("ses-1", "viewer-b")

	entries := r.Viewers("ses-1")
	if len(entries) != 2 {
		t.Fatalf("viewers = %d, want 2", len(entries))
	}
	if entries[0].Viewer != "viewer-b" {
		t.Errorf("first = %s, want most recently seen viewer-b", entries[0].Viewer)
	}
}

func TestSweep_DropsIdleViewers(t *testing.T) {
	r := New()
	r.Touch("ses-1", "viewer-a")
	time.Sleep(5 * time.Millisecond)
	r.Touch("ses-1", "viewer-b")

	// viewer-a has been idle longer than the threshold; viewer-b has not.
	r.sweep(4 * time.Millisecond)

	entries := r.Viewers("ses-1")
	if len(entries) != 1 || entries[0].Viewer != "viewer-b" {
		t.Errorf("after sweep: %+v, want only viewer-b", entries)
	}
}

func TestSweep_RemovesEmptySessions(t *testing.T) {
	r := New()
	r.Touch("ses-1", "viewer-a")
	time.Sleep(2 * time.Millisecond)

	r.sweep(time.Millisecond)

	r.mu.RLock()
	_, exists := r.sessions["ses-1"]
	r.mu.RUnlock()
	if exists {
		t.Error("empty session not removed from registry")
	}
}

func TestStartStopReaper(t *testing.T) {
	r := New()
	r.StartReaper(&ReaperConfig{
		IdleThreshold: 10 * time.Millisecond,
		SweepInterval: 5 * time.Millisecond,
	})
	r.Touch("ses-1", "viewer-a")

	deadline := time.After(time.Second)
	for r.Count("ses-1") != 0 {
		select {
		case <-deadline:
			t.Fatal("reaper did not drop idle viewer")
		case <-time.After(5 * time.Millisecond):
		}
	}

	r.Stop()
	// Stop is idempotent on an already-stopped registry.
	r.Stop()
}

func TestConcurrentTouches(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			viewer := string(rune('a' + n%10))
			r.Touch("ses-1", "viewer-"+viewer)
			r.Viewers("ses-1")
		}(i)
	}
	wg.Wait()

	if got := r.Count("ses-1"); got != 10 {
		t.Errorf("Count = %d, want 10 distinct viewers", got)
	}
}
