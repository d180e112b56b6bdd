package courtroom

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/store"
)

// objectionRaisedPayload is the OBJECTION_RAISED ledger payload.
type objectionRaisedPayload struct {
	ObjectionID string              `json:"objection_id"`
	TurnID      string              `json:"turn_id"`
	Type        model.ObjectionType `json:"type"`
	RaisedBy    string              `json:"raised_by"`
}

// objectionRuledPayload is the OBJECTION_RULED ledger payload.
type objectionRuledPayload struct {
	ObjectionID string               `json:"objection_id"`
	TurnID      string               `json:"turn_id"`
	Decision    model.ObjectionState `json:"decision"`
	RuledBy     string               `json:"ruled_by"`
}

// RaiseObjection opens a procedural dispute on an active turn and
// freezes the turn's countdown until the presiding judge rules.
func (e *Engine) RaiseObjection(ctx context.Context, turnID string, objType model.ObjectionType, raisedBy string) (*model.Objection, error) {
	if !objType.IsValid() {
		return nil, &model.ValidationError{Errors: []model.FieldError{
			{Field: "type", Message: "is required"},
		}}
	}

	id, err := e.newID("obj-")
	if err != nil {
		return nil, fmt.Errorf("failed to generate objection ID: %w", err)
	}

	var (
		objection *model.Objection
		entry     *model.EventLedgerEntry
	)
	err = e.store.RunInTransaction(ctx, func(tx store.Store) error {
		unlocked, err := tx.GetTurn(ctx, turnID)
		if err != nil {
			return err
		}
		session, err := tx.GetSessionForUpdate(ctx, unlocked.SessionID)
		if err != nil {
			return err
		}
		if session.Status != model.SessionLive {
			return fmt.Errorf("%w: session %s is %s, objections require a live session",
				model.ErrInvalidStateTransition, session.ID, session.Status)
		}
		turn, err := tx.GetTurn(ctx, turnID)
		if err != nil {
			return err
		}
		if turn.State != model.TurnActive {
			return fmt.Errorf("%w: turn %s is %s", model.ErrTurnNotActive, turn.ID, turn.State)
		}

		_, err = tx.GetPendingObjection(ctx, turn.ID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: turn %s", model.ErrObjectionAlreadyPending, turn.ID)
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		now := e.now().UTC()
		objection = &model.Objection{
			ID:        id,
			SessionID: session.ID,
			TurnID:    turn.ID,
			Type:      objType,
			State:     model.ObjectionPending,
			RaisedBy:  raisedBy,
			RaisedAt:  now,
		}
		if err := tx.CreateObjection(ctx, objection); err != nil {
			return fmt.Errorf("failed to create objection: %w", err)
		}

		// Charge time up to this instant, then freeze the countdown.
		settleClock(session, now)
		session.TimerPausedAt = &now
		session.UpdatedAt = now
		if err := tx.UpdateSession(ctx, session); err != nil {
			return err
		}

		entry, err = e.appendEvent(ctx, tx, session.ID, model.EventObjectionRaised, objectionRaisedPayload{
			ObjectionID: objection.ID,
			TurnID:      objection.TurnID,
			Type:        objection.Type,
			RaisedBy:    objection.RaisedBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return objection, nil
}

// RuleObjection records the presiding judge's decision on a pending
// objection and unfreezes the turn's countdown, crediting back the time
// spent paused.
func (e *Engine) RuleObjection(ctx context.Context, objectionID string, decision model.ObjectionState, ruledBy string) (*model.Objection, error) {
	if !decision.IsRuling() {
		return nil, &model.ValidationError{Errors: []model.FieldError{
			{Field: "decision", Message: fmt.Sprintf("must be %s or %s, got %q",
				model.ObjectionSustained, model.ObjectionOverruled, decision)},
		}}
	}

	// Rulings are reserved to the presiding judge. The judge is fixed
	// at scheduling, so the resolver is consulted before the session
	// lock is taken.
	pending, err := e.store.GetObjection(ctx, objectionID)
	if err != nil {
		return nil, err
	}
	if err := e.Authz.RequirePresidingJudge(ctx, pending.SessionID, ruledBy); err != nil {
		return nil, err
	}

	var (
		objection *model.Objection
		entry     *model.EventLedgerEntry
	)
	err = e.store.RunInTransaction(ctx, func(tx store.Store) error {
		unlocked, err := tx.GetObjection(ctx, objectionID)
		if err != nil {
			return err
		}
		session, err := tx.GetSessionForUpdate(ctx, unlocked.SessionID)
		if err != nil {
			return err
		}
		objection, err = tx.GetObjection(ctx, objectionID)
		if err != nil {
			return err
		}
		if objection.State != model.ObjectionPending {
			return fmt.Errorf("%w: objection %s is %s",
				model.ErrObjectionAlreadyRuled, objection.ID, objection.State)
		}

		now := e.now().UTC()
		objection.State = decision
		objection.RuledBy = ruledBy
		objection.RuledAt = &now
		if err := tx.UpdateObjection(ctx, objection); err != nil {
			return err
		}

		// Resume the countdown for the objected turn. Resetting the last
		// tick to now credits the paused interval back to the speaker.
		if session.ActiveTurnID == objection.TurnID && session.TimerPausedAt != nil {
			session.TimerPausedAt = nil
			session.LastTickAt = &now
		}
		session.UpdatedAt = now
		if err := tx.UpdateSession(ctx, session); err != nil {
			return err
		}

		entry, err = e.appendEvent(ctx, tx, session.ID, model.EventObjectionRuled, objectionRuledPayload{
			ObjectionID: objection.ID,
			TurnID:      objection.TurnID,
			Decision:    decision,
			RuledBy:     ruledBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return objection, nil
}
