package courtroom

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/courtlab/gavel/internal/artifacts"
	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/store"
)

// exhibitUploadedPayload is the EXHIBIT_UPLOADED ledger payload.
type exhibitUploadedPayload struct {
	ExhibitID   string     `json:"exhibit_id"`
	Side        model.Side `json:"side"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	ContentHash string     `json:"content_hash"`
	UploadedBy  string     `json:"uploaded_by,omitempty"`
}

// exhibitMarkedPayload is the EXHIBIT_MARKED ledger payload.
type exhibitMarkedPayload struct {
	ExhibitID     string     `json:"exhibit_id"`
	Side          model.Side `json:"side"`
	ExhibitNumber int        `json:"exhibit_number"`
}

// exhibitTenderedPayload is the EXHIBIT_TENDERED ledger payload.
type exhibitTenderedPayload struct {
	ExhibitID string     `json:"exhibit_id"`
	Side      model.Side `json:"side"`
	TurnID    string     `json:"turn_id"`
}

// exhibitRuledPayload is the EXHIBIT_RULED ledger payload.
type exhibitRuledPayload struct {
	ExhibitID string             `json:"exhibit_id"`
	Decision  model.ExhibitState `json:"decision"`
	RuledBy   string             `json:"ruled_by"`
}

// UploadExhibit validates and stores an exhibit artifact and creates the
// exhibit record in UPLOADED state. The blob is written before the
// transaction opens; a failed transaction can leave an orphaned blob,
// which is harmless because storage keys embed the content hash.
func (e *Engine) UploadExhibit(ctx context.Context, sessionID string, side model.Side, data []byte, filename, uploadedBy string) (*model.Exhibit, error) {
	if !side.IsValid() {
		return nil, &model.ValidationError{Errors: []model.FieldError{
			{Field: "side", Message: fmt.Sprintf("invalid value %q", side)},
		}}
	}
	contentType, err := model.ValidateExhibitFile(data, filename, e.ExhibitMaxBytes)
	if err != nil {
		return nil, err
	}

	id, err := e.newID("exh-")
	if err != nil {
		return nil, fmt.Errorf("failed to generate exhibit ID: %w", err)
	}

	sum := sha256.Sum256(data)
	contentHash := hex.EncodeToString(sum[:])

	storageKey := ""
	if e.blobs != nil {
		storageKey = artifacts.ObjectKey(sessionID, id, contentHash, filename)
		if err := e.blobs.Put(ctx, storageKey, data, contentType); err != nil {
			return nil, fmt.Errorf("failed to store exhibit artifact: %w", err)
		}
	}

	var (
		exhibit *model.Exhibit
		entry   *model.EventLedgerEntry
	)
	err = e.store.RunInTransaction(ctx, func(tx store.Store) error {
		session, err := tx.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status == model.SessionCompleted {
			return fmt.Errorf("%w: session %s is completed, exhibits are closed",
				model.ErrInvalidStateTransition, session.ID)
		}

		now := e.now().UTC()
		exhibit = &model.Exhibit{
			ID:          id,
			SessionID:   session.ID,
			Side:        side,
			State:       model.ExhibitUploaded,
			Filename:    filename,
			ContentType: contentType,
			SizeBytes:   int64(len(data)),
			ContentHash: contentHash,
			StorageKey:  storageKey,
			UploadedBy:  uploadedBy,
			UploadedAt:  now,
		}
		if err := tx.CreateExhibit(ctx, exhibit); err != nil {
			return fmt.Errorf("failed to create exhibit: %w", err)
		}

		entry, err = e.appendEvent(ctx, tx, session.ID, model.EventExhibitUploaded, exhibitUploadedPayload{
			ExhibitID:   exhibit.ID,
			Side:        exhibit.Side,
			Filename:    exhibit.Filename,
			ContentType: exhibit.ContentType,
			SizeBytes:   exhibit.SizeBytes,
			ContentHash: exhibit.ContentHash,
			UploadedBy:  exhibit.UploadedBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return exhibit, nil
}

// MarkExhibit assigns the next unused exhibit number for the exhibit's
// (session, side) pair. Assignment happens under the session lock, so
// concurrent marks for the same side cannot receive the same number.
func (e *Engine) MarkExhibit(ctx context.Context, exhibitID string) (*model.Exhibit, error) {
	var (
		exhibit *model.Exhibit
		entry   *model.EventLedgerEntry
	)
	err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
		session, exh, err := e.lockExhibit(ctx, tx, exhibitID)
		if err != nil {
			return err
		}
		if exh.State != model.ExhibitUploaded {
			return fmt.Errorf("%w: exhibit %s is %s, only uploaded exhibits can be marked",
				model.ErrInvalidStateTransition, exh.ID, exh.State)
		}

		maxNumber, err := tx.MaxExhibitNumber(ctx, session.ID, exh.Side)
		if err != nil {
			return err
		}

		exh.Number = maxNumber + 1
		exh.State = model.ExhibitMarked
		if err := tx.UpdateExhibit(ctx, exh); err != nil {
			return err
		}
		exhibit = exh

		entry, err = e.appendEvent(ctx, tx, session.ID, model.EventExhibitMarked, exhibitMarkedPayload{
			ExhibitID:     exh.ID,
			Side:          exh.Side,
			ExhibitNumber: exh.Number,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return exhibit, nil
}

// TenderExhibit offers a marked exhibit for a ruling. The exhibit's side
// must hold the active turn.
func (e *Engine) TenderExhibit(ctx context.Context, exhibitID string) (*model.Exhibit, error) {
	var (
		exhibit *model.Exhibit
		entry   *model.EventLedgerEntry
	)
	err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
		session, exh, err := e.lockExhibit(ctx, tx, exhibitID)
		if err != nil {
			return err
		}
		if exh.State != model.ExhibitMarked {
			return fmt.Errorf("%w: exhibit %s is %s, only marked exhibits can be tendered",
				model.ErrInvalidStateTransition, exh.ID, exh.State)
		}
		if session.ActiveTurnID == "" {
			return fmt.Errorf("%w: session %s has no active turn",
				model.ErrTurnNotActive, session.ID)
		}
		turn, err := tx.GetTurn(ctx, session.ActiveTurnID)
		if err != nil {
			return err
		}
		if turn.Side != exh.Side {
			return fmt.Errorf("%w: active turn belongs to %s, exhibit to %s",
				model.ErrTurnNotActive, turn.Side, exh.Side)
		}

		exh.State = model.ExhibitTendered
		if err := tx.UpdateExhibit(ctx, exh); err != nil {
			return err
		}
		exhibit = exh

		entry, err = e.appendEvent(ctx, tx, session.ID, model.EventExhibitTendered, exhibitTenderedPayload{
			ExhibitID: exh.ID,
			Side:      exh.Side,
			TurnID:    turn.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return exhibit, nil
}

// RuleExhibit records the presiding judge's admission decision on a
// tendered exhibit. Ruled exhibits are immutable.
func (e *Engine) RuleExhibit(ctx context.Context, exhibitID string, decision model.ExhibitState, ruledBy string) (*model.Exhibit, error) {
	if !decision.IsRuling() {
		return nil, &model.ValidationError{Errors: []model.FieldError{
			{Field: "decision", Message: fmt.Sprintf("must be %s or %s, got %q",
				model.ExhibitAdmitted, model.ExhibitRejected, decision)},
		}}
	}

	// As with objection rulings, the admitting principal is resolved
	// before the session lock is taken.
	tendered, err := e.store.GetExhibit(ctx, exhibitID)
	if err != nil {
		return nil, err
	}
	if err := e.Authz.RequirePresidingJudge(ctx, tendered.SessionID, ruledBy); err != nil {
		return nil, err
	}

	var (
		exhibit *model.Exhibit
		entry   *model.EventLedgerEntry
	)
	err = e.store.RunInTransaction(ctx, func(tx store.Store) error {
		session, exh, err := e.lockExhibit(ctx, tx, exhibitID)
		if err != nil {
			return err
		}
		if exh.State != model.ExhibitTendered {
			return fmt.Errorf("%w: exhibit %s is %s, only tendered exhibits can be ruled",
				model.ErrInvalidStateTransition, exh.ID, exh.State)
		}

		now := e.now().UTC()
		exh.State = decision
		exh.RuledBy = ruledBy
		exh.RuledAt = &now
		if err := tx.UpdateExhibit(ctx, exh); err != nil {
			return err
		}
		exhibit = exh

		entry, err = e.appendEvent(ctx, tx, session.ID, model.EventExhibitRuled, exhibitRuledPayload{
			ExhibitID: exh.ID,
			Decision:  decision,
			RuledBy:   ruledBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, entry)
	return exhibit, nil
}

// ExhibitContent fetches the stored artifact bytes for an exhibit.
func (e *Engine) ExhibitContent(ctx context.Context, exhibitID string) (*model.Exhibit, []byte, error) {
	exhibit, err := e.store.GetExhibit(ctx, exhibitID)
	if err != nil {
		return nil, nil, err
	}
	if e.blobs == nil || exhibit.StorageKey == "" {
		return exhibit, nil, fmt.Errorf("exhibit %s has no stored artifact", exhibitID)
	}
	data, err := e.blobs.Get(ctx, exhibit.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return exhibit, data, nil
}

// lockExhibit resolves an exhibit's session, locks it, and re-reads the
// exhibit under the lock. Already-ruled exhibits are rejected here since
// every caller requires a non-terminal state.
func (e *Engine) lockExhibit(ctx context.Context, tx store.Store, exhibitID string) (*model.Session, *model.Exhibit, error) {
	unlocked, err := tx.GetExhibit(ctx, exhibitID)
	if err != nil {
		return nil, nil, err
	}
	session, err := tx.GetSessionForUpdate(ctx, unlocked.SessionID)
	if err != nil {
		return nil, nil, err
	}
	exhibit, err := tx.GetExhibit(ctx, exhibitID)
	if err != nil {
		return nil, nil, err
	}
	if exhibit.State.IsTerminal() {
		return nil, nil, fmt.Errorf("%w: exhibit %s is %s",
			model.ErrExhibitAlreadyRuled, exhibit.ID, exhibit.State)
	}
	return session, exhibit, nil
}
