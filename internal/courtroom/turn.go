package courtroom

import (
	"context"
	"fmt"
	"time"

	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/store"
)

// ExpiredReason is recorded on turns ended by the timer.
const ExpiredReason = "time expired"

// turnStartedPayload is the TURN_STARTED ledger payload.
type turnStartedPayload struct {
	TurnID           string         `json:"turn_id"`
	Side             model.Side     `json:"side"`
	TurnType         model.TurnType `json:"turn_type"`
	AllocatedSeconds int            `json:"allocated_seconds"`
}

// turnEndedPayload is the payload for TURN_ENDED and TURN_EXPIRED.
type turnEndedPayload struct {
	TurnID           string   `json:"turn_id"`
	Reason           string   `json:"reason"`
	RemainingSeconds float64  `json:"remaining_seconds"`
	Score            *float64 `json:"score,omitempty"`
}

// StartTurn activates a speaking slot on a LIVE session and arms its
// countdown. Fails with ErrActiveTurnExists when another turn is active.
func (e *Engine) StartTurn(ctx context.Context, sessionID string, side model.Side, turnType model.TurnType, allocatedSeconds int) (*model.Turn, error) {
	if err := model.ValidateStartTurnInput(side, turnType, allocatedSeconds); err != nil {
		return nil, err
	}

	id, err := e.newID("trn-")
	if err != nil {
		return nil, fmt.Errorf("failed to generate turn ID: %w", err)
	}

	var (
		turn  *model.Turn
		entry *model.EventLedgerEntry
	)
	err = e.store.RunInTransaction(ctx, func(tx store.Store) error {
		session, err := tx.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status != model.SessionLive {
			return fmt.Errorf("%w: session %s is %s, turns require a live session",
				model.ErrInvalidStateTransition, session.ID, session.Status)
		}
		active, err := tx.HasActiveTurn(ctx, session.ID)
		if err != nil {
			return err
		}
		if active {
			return fmt.Errorf("%w: session %s", model.ErrActiveTurnExists, session.ID)
		}

		now := e.now().UTC()
		turn = &model.Turn{
			ID:               id,
			SessionID:        session.ID,
			Side:             side,
			Type:             turnType,
			State:            model.TurnActive,
			AllocatedSeconds: allocatedSeconds,
			StartedAt:        now,
		}
		if err := tx.CreateTurn(ctx, turn); err != nil {
			return fmt.Errorf("failed to create turn: %w", err)
		}

		session.ActiveTurnID = turn.ID
		session.RemainingSeconds = float64(allocatedSeconds)
		session.LastTickAt = &now
		session.TimerPausedAt = nil
		session.UpdatedAt = now
		if err := tx.UpdateSession(ctx, session); err != nil {
			return err
		}

		entry, err = e.appendEvent(ctx, tx, session.ID, model.EventTurnStarted, turnStartedPayload{
			TurnID:           turn.ID,
			Side:             turn.Side,
			TurnType:         turn.Type,
			AllocatedSeconds: turn.AllocatedSeconds,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return turn, nil
}

// EndTurn completes an active turn. An optional speaker score may be
// recorded with the turn's end.
func (e *Engine) EndTurn(ctx context.Context, turnID, reason string, score *float64) (*model.Turn, error) {
	var (
		turn  *model.Turn
		entry *model.EventLedgerEntry
	)
	err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
		// First read resolves the owning session; state is re-read under
		// the session lock before it is trusted.
		unlocked, err := tx.GetTurn(ctx, turnID)
		if err != nil {
			return err
		}
		session, err := tx.GetSessionForUpdate(ctx, unlocked.SessionID)
		if err != nil {
			return err
		}
		turn, err = tx.GetTurn(ctx, turnID)
		if err != nil {
			return err
		}
		if turn.State != model.TurnActive {
			return fmt.Errorf("%w: turn %s is %s", model.ErrTurnNotActive, turn.ID, turn.State)
		}

		now := e.now().UTC()
		settleClock(session, now)

		turn.State = model.TurnCompleted
		turn.EndedAt = &now
		turn.EndReason = reason
		turn.Score = score
		if err := tx.UpdateTurn(ctx, turn); err != nil {
			return err
		}

		remaining := session.RemainingSeconds
		clearTimer(session, now)
		if err := tx.UpdateSession(ctx, session); err != nil {
			return err
		}

		entry, err = e.appendEvent(ctx, tx, session.ID, model.EventTurnEnded, turnEndedPayload{
			TurnID:           turn.ID,
			Reason:           reason,
			RemainingSeconds: remaining,
			Score:            score,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return turn, nil
}

// TickResult reports the outcome of one timer tick.
type TickResult struct {
	SessionID        string  `json:"session_id"`
	TurnID           string  `json:"turn_id,omitempty"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	Expired          bool    `json:"expired"`
}

// Tick advances the active turn's countdown by the wall-clock time since
// the previous tick. It is idempotent and safe to invoke concurrently:
// all accounting is a function of stored state mutated under the session
// lock, and expiry fires exactly once because only the tick that observes
// the turn still active at zero performs the transition.
func (e *Engine) Tick(ctx context.Context, sessionID string) (*TickResult, error) {
	var (
		result TickResult
		entry  *model.EventLedgerEntry
	)
	err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
		session, err := tx.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		result = TickResult{
			SessionID:        session.ID,
			TurnID:           session.ActiveTurnID,
			RemainingSeconds: session.RemainingSeconds,
		}
		if !session.TimerRunning() {
			return nil
		}

		now := e.now().UTC()
		settleClock(session, now)
		session.UpdatedAt = now
		result.RemainingSeconds = session.RemainingSeconds

		if session.RemainingSeconds > 0 {
			return tx.UpdateSession(ctx, session)
		}

		// Time is up. Expire the turn exactly once: this tick holds the
		// lock and still observes the turn active.
		turn, err := tx.GetTurn(ctx, session.ActiveTurnID)
		if err != nil {
			return err
		}
		if turn.State != model.TurnActive {
			return tx.UpdateSession(ctx, session)
		}

		turn.State = model.TurnExpired
		turn.EndedAt = &now
		turn.EndReason = ExpiredReason
		if err := tx.UpdateTurn(ctx, turn); err != nil {
			return err
		}

		clearTimer(session, now)
		if err := tx.UpdateSession(ctx, session); err != nil {
			return err
		}

		result.Expired = true
		entry, err = e.appendEvent(ctx, tx, session.ID, model.EventTurnExpired, turnEndedPayload{
			TurnID:           turn.ID,
			Reason:           ExpiredReason,
			RemainingSeconds: 0,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return &result, nil
}

// settleClock charges the wall-clock time since the last tick against
// the remaining allocation, flooring at zero. No-op unless the countdown
// is currently running.
func settleClock(session *model.Session, now time.Time) {
	if !session.TimerRunning() || session.LastTickAt == nil {
		return
	}
	elapsed := now.Sub(*session.LastTickAt).Seconds()
	if elapsed > 0 {
		session.RemainingSeconds -= elapsed
		if session.RemainingSeconds < 0 {
			session.RemainingSeconds = 0
		}
	}
	session.LastTickAt = &now
}

// clearTimer detaches the session from its active turn and resets the
// countdown bookkeeping.
func clearTimer(session *model.Session, now time.Time) {
	session.ActiveTurnID = ""
	session.RemainingSeconds = 0
	session.LastTickAt = nil
	session.TimerPausedAt = nil
	session.UpdatedAt = now
}
