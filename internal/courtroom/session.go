package courtroom

import (
	"context"
	"fmt"

	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/store"
)

// ScheduleInput holds transport-agnostic parameters for scheduling a session.
type ScheduleInput struct {
	TournamentID   string `json:"tournament_id"`
	Round          string `json:"round"`
	Institution    string `json:"institution"`
	PresidingJudge string `json:"presiding_judge"`
}

// sessionScheduledPayload is the SESSION_SCHEDULED ledger payload.
type sessionScheduledPayload struct {
	SessionID      string `json:"session_id"`
	TournamentID   string `json:"tournament_id"`
	Round          string `json:"round,omitempty"`
	Institution    string `json:"institution,omitempty"`
	PresidingJudge string `json:"presiding_judge"`
}

// sessionTransitionPayload is the payload for session lifecycle events
// after scheduling (started, paused, resumed, completed).
type sessionTransitionPayload struct {
	SessionID string              `json:"session_id"`
	From      model.SessionStatus `json:"from"`
	To        model.SessionStatus `json:"to"`
}

// ScheduleSession creates a new SCHEDULED session and appends
// SESSION_SCHEDULED as the first ledger entry.
func (e *Engine) ScheduleSession(ctx context.Context, in ScheduleInput) (*model.Session, error) {
	if err := model.ValidateScheduleInput(in.TournamentID, in.PresidingJudge); err != nil {
		return nil, err
	}

	id, err := e.newID("ses-")
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := e.now().UTC()
	session := &model.Session{
		ID:             id,
		TournamentID:   in.TournamentID,
		Round:          in.Round,
		Institution:    in.Institution,
		PresidingJudge: in.PresidingJudge,
		Status:         model.SessionScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var entry *model.EventLedgerEntry
	err = e.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateSession(ctx, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		entry, err = e.appendEvent(ctx, tx, session.ID, model.EventSessionScheduled, sessionScheduledPayload{
			SessionID:      session.ID,
			TournamentID:   session.TournamentID,
			Round:          session.Round,
			Institution:    session.Institution,
			PresidingJudge: session.PresidingJudge,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return session, nil
}

// StartSession moves a SCHEDULED session to LIVE.
func (e *Engine) StartSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return e.transition(ctx, sessionID, model.SessionLive, model.EventSessionStarted,
		model.SessionScheduled)
}

// PauseSession moves a LIVE session to PAUSED. The active turn's
// countdown, if any, is frozen until the session resumes.
func (e *Engine) PauseSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return e.transition(ctx, sessionID, model.SessionPaused, model.EventSessionPaused,
		model.SessionLive)
}

// ResumeSession moves a PAUSED session back to LIVE.
func (e *Engine) ResumeSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return e.transition(ctx, sessionID, model.SessionLive, model.EventSessionResumed,
		model.SessionPaused)
}

// transition performs a locked lifecycle transition. The target state is
// reachable only from the listed states; anything else is a conflict.
func (e *Engine) transition(ctx context.Context, sessionID string, to model.SessionStatus, eventType model.EventType, from ...model.SessionStatus) (*model.Session, error) {
	var (
		session *model.Session
		entry   *model.EventLedgerEntry
	)
	err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
		var err error
		session, err = tx.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if !statusIn(session.Status, from) {
			return fmt.Errorf("%w: session %s is %s, cannot move to %s",
				model.ErrInvalidStateTransition, session.ID, session.Status, to)
		}

		prev := session.Status
		now := e.now().UTC()
		switch eventType {
		case model.EventSessionStarted:
			session.StartedAt = &now
		case model.EventSessionPaused:
			// Charge the interval since the last tick before freezing, so
			// pausing cannot erase time already spoken.
			settleClock(session, now)
		case model.EventSessionResumed:
			// Credit the paused interval back to the active turn, if the
			// countdown was running when the session paused.
			if session.ActiveTurnID != "" && session.TimerPausedAt == nil {
				session.LastTickAt = &now
			}
		}
		session.Status = to
		session.UpdatedAt = now
		if err := tx.UpdateSession(ctx, session); err != nil {
			return err
		}

		entry, err = e.appendEvent(ctx, tx, session.ID, eventType, sessionTransitionPayload{
			SessionID: session.ID,
			From:      prev,
			To:        to,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return session, nil
}

// CompleteSession moves a LIVE or PAUSED session to COMPLETED. It runs
// under serializable isolation because its precondition (no active turn,
// no pending objection) races with turn and objection mutation.
func (e *Engine) CompleteSession(ctx context.Context, sessionID string) (*model.Session, error) {
	var (
		session *model.Session
		entry   *model.EventLedgerEntry
	)
	err := e.store.RunSerializable(ctx, func(tx store.Store) error {
		var err error
		session, err = tx.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status != model.SessionLive && session.Status != model.SessionPaused {
			return fmt.Errorf("%w: session %s is %s, cannot complete",
				model.ErrInvalidStateTransition, session.ID, session.Status)
		}

		active, err := tx.HasActiveTurn(ctx, session.ID)
		if err != nil {
			return err
		}
		if active {
			return fmt.Errorf("%w: session %s has an active turn",
				model.ErrIncompleteSession, session.ID)
		}
		pending, err := tx.HasPendingObjection(ctx, session.ID)
		if err != nil {
			return err
		}
		if pending {
			return fmt.Errorf("%w: session %s has a pending objection",
				model.ErrIncompleteSession, session.ID)
		}

		prev := session.Status
		now := e.now().UTC()
		session.Status = model.SessionCompleted
		session.CompletedAt = &now
		session.UpdatedAt = now
		if err := tx.UpdateSession(ctx, session); err != nil {
			return err
		}

		entry, err = e.appendEvent(ctx, tx, session.ID, model.EventSessionCompleted, sessionTransitionPayload{
			SessionID: session.ID,
			From:      prev,
			To:        model.SessionCompleted,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return session, nil
}

func statusIn(s model.SessionStatus, set []model.SessionStatus) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}
