// Package viewers tracks which spectators are connected to each live
// session.
//
// The registry is an explicit object constructed at server startup and
// injected into the delivery layer; it is never ambient global state. A
// background reaper drops viewers that have gone idle, so a dropped SSE
// connection cannot pin a viewer entry forever.
package viewers

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Entry is a snapshot of one connected viewer.
type Entry struct {
	Viewer      string    `json:"viewer"`
	SessionID   string    `json:"session_id"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`
	IdleSecs    float64   `json:"idle_secs"`
}

// ReaperConfig configures the background idle-viewer reaper.
type ReaperConfig struct {
	// IdleThreshold is how long a viewer may go without a touch before
	// being dropped. Default: 2 minutes.
	IdleThreshold time.Duration

	// SweepInterval is how often the reaper scans. Default: 30 seconds.
	SweepInterval time.Duration
}

// Registry maintains the in-memory map of connected viewers per session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*viewerState

	reaperStop chan struct{}
	reaperDone chan struct{}
}

type viewerState struct {
	connectedAt time.Time
	lastSeen    time.Time
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		sessions: make(map[string]map[string]*viewerState),
	}
}

// Touch records that a viewer is connected to a session, creating the
// entry on first touch and refreshing its last-seen time otherwise.
func (r *Registry) Touch(sessionID, viewer string) {
	if sessionID == "" || viewer == "" {
		return
	}

	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	byViewer, ok := r.sessions[sessionID]
	if !ok {
		byViewer = make(map[string]*viewerState)
		r.sessions[sessionID] = byViewer
	}
	state, ok := byViewer[viewer]
	if !ok {
		state = &viewerState{connectedAt: now}
		byViewer[viewer] = state
	}
	state.lastSeen = now
}

// Disconnect removes a viewer from a session.
func (r *Registry) Disconnect(sessionID, viewer string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if byViewer, ok := r.sessions[sessionID]; ok {
		delete(byViewer, viewer)
		if len(byViewer) == 0 {
			delete(r.sessions, sessionID)
		}
	}
}

// Viewers returns a snapshot of the session's viewers, most recently
// active first.
func (r *Registry) Viewers(sessionID string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	byViewer := r.sessions[sessionID]
	entries := make([]Entry, 0, len(byViewer))
	for viewer, state := range byViewer {
		entries = append(entries, Entry{
			Viewer:      viewer,
			SessionID:   sessionID,
			ConnectedAt: state.connectedAt,
			LastSeen:    state.lastSeen,
			IdleSecs:    now.Sub(state.lastSeen).Seconds(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})
	return entries
}

// Count returns the number of viewers connected to a session.
func (r *Registry) Count(sessionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[sessionID])
}

// StartReaper launches a background goroutine that drops idle viewers.
// Call Stop to shut it down.
func (r *Registry) StartReaper(cfg *ReaperConfig) {
	if cfg == nil {
		cfg = &ReaperConfig{}
	}
	if cfg.IdleThreshold == 0 {
		cfg.IdleThreshold = 2 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 30 * time.Second
	}

	r.reaperStop = make(chan struct{})
	r.reaperDone = make(chan struct{})

	go r.reapLoop(cfg)
	slog.Info("viewers: reaper started",
		"idle_threshold", cfg.IdleThreshold,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (r *Registry) Stop() {
	if r.reaperStop != nil {
		close(r.reaperStop)
		<-r.reaperDone
		r.reaperStop = nil
		r.reaperDone = nil
	}
}

func (r *Registry) reapLoop(cfg *ReaperConfig) {
	defer close(r.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.reaperStop:
			return
		case <-ticker.C:
			r.sweep(cfg.IdleThreshold)
		}
	}
}

func (r *Registry) sweep(idleThreshold time.Duration) {
	now := time.Now()
	dropped := 0

	r.mu.Lock()
	for sessionID, byViewer := range r.sessions {
		for viewer, state := range byViewer {
			if now.Sub(state.lastSeen) > idleThreshold {
				delete(byViewer, viewer)
				dropped++
			}
		}
		if len(byViewer) == 0 {
			delete(r.sessions, sessionID)
		}
	}
	r.mu.Unlock()

	if dropped > 0 {
		slog.Info("viewers: reaped idle viewers", "dropped", dropped)
	}
}
