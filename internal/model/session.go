package model

import "time"

// SessionStatus represents the lifecycle state of an argument session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionLive      SessionStatus = "live"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
)

// String returns the string representation of the status.
func (s SessionStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionScheduled, SessionLive, SessionPaused, SessionCompleted:
		return true
	}
	return false
}

// Side identifies which team a turn, exhibit, or counsel belongs to.
type Side string

const (
	SidePetitioner Side = "petitioner"
	SideRespondent Side = "respondent"
)

// String returns the string representation of the side.
func (s Side) String() string {
	return string(s)
}

// IsValid checks whether the side is a known value.
func (s Side) IsValid() bool {
	switch s {
	case SidePetitioner, SideRespondent:
		return true
	}
	return false
}

// Session is one scheduled oral-argument round. Sessions are never
// deleted; they are retained for audit after completion.
//
// The timer bookkeeping fields (RemainingSeconds, LastTickAt,
// TimerPausedAt) describe the currently active turn's countdown and are
// meaningful only while ActiveTurnID is set. Keeping the countdown as
// stored state rather than a running clock is what makes timer ticks
// idempotent and safe to invoke concurrently.
type Session struct {
	ID             string `json:"id"`
	TournamentID   string `json:"tournament_id"`
	Round          string `json:"round,omitempty"`
	Institution    string `json:"institution,omitempty"`
	PresidingJudge string `json:"presiding_judge"`

	Status       SessionStatus `json:"status"`
	ActiveTurnID string        `json:"active_turn_id,omitempty"`

	RemainingSeconds float64    `json:"remaining_seconds"`
	LastTickAt       *time.Time `json:"last_tick_at,omitempty"`
	TimerPausedAt    *time.Time `json:"timer_paused_at,omitempty"`

	IntegrityCheckedAt *time.Time `json:"integrity_checked_at,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TimerRunning reports whether the active turn's countdown is currently
// consuming time. The countdown is frozen while an objection is pending
// or the session itself is paused.
func (s *Session) TimerRunning() bool {
	return s.Status == SessionLive && s.ActiveTurnID != "" && s.TimerPausedAt == nil
}

// SessionFilter narrows ListSessions results.
type SessionFilter struct {
	Status       []SessionStatus
	TournamentID string
	Limit        int
	Offset       int
}
