package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/courtlab/gavel/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanSession scans a single row into a model.Session.
// The row must contain columns in the order defined by sessionColumns.
func scanSession(row scannable) (*model.Session, error) {
	var s model.Session
	var (
		activeTurnID       sql.NullString
		lastTickAt         sql.NullTime
		timerPausedAt      sql.NullTime
		integrityCheckedAt sql.NullTime
		startedAt          sql.NullTime
		completedAt        sql.NullTime
	)

	err := row.Scan(
		&s.ID,
		&s.TournamentID,
		&s.Round,
		&s.Institution,
		&s.PresidingJudge,
		&s.Status,
		&activeTurnID,
		&s.RemainingSeconds,
		&lastTickAt,
		&timerPausedAt,
		&integrityCheckedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	s.ActiveTurnID = activeTurnID.String
	s.LastTickAt = timePtr(lastTickAt)
	s.TimerPausedAt = timePtr(timerPausedAt)
	s.IntegrityCheckedAt = timePtr(integrityCheckedAt)
	s.StartedAt = timePtr(startedAt)
	s.CompletedAt = timePtr(completedAt)

	return &s, nil
}

func scanSessions(rows *sql.Rows) ([]*model.Session, error) {
	var sessions []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanTurn(row scannable) (*model.Turn, error) {
	var t model.Turn
	var (
		endedAt sql.NullTime
		score   sql.NullFloat64
	)

	err := row.Scan(
		&t.ID,
		&t.SessionID,
		&t.Side,
		&t.Type,
		&t.State,
		&t.AllocatedSeconds,
		&t.StartedAt,
		&endedAt,
		&t.EndReason,
		&score,
	)
	if err != nil {
		return nil, err
	}

	t.EndedAt = timePtr(endedAt)
	if score.Valid {
		v := score.Float64
		t.Score = &v
	}

	return &t, nil
}

func scanTurns(rows *sql.Rows) ([]*model.Turn, error) {
	var turns []*model.Turn
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func scanObjection(row scannable) (*model.Objection, error) {
	var o model.Objection
	var ruledAt sql.NullTime

	err := row.Scan(
		&o.ID,
		&o.SessionID,
		&o.TurnID,
		&o.Type,
		&o.State,
		&o.RaisedBy,
		&o.RaisedAt,
		&o.RuledBy,
		&ruledAt,
	)
	if err != nil {
		return nil, err
	}

	o.RuledAt = timePtr(ruledAt)
	return &o, nil
}

func scanObjections(rows *sql.Rows) ([]*model.Objection, error) {
	var objections []*model.Objection
	for rows.Next() {
		o, err := scanObjection(rows)
		if err != nil {
			return nil, err
		}
		objections = append(objections, o)
	}
	return objections, rows.Err()
}

func scanExhibit(row scannable) (*model.Exhibit, error) {
	var e model.Exhibit
	var ruledAt sql.NullTime

	err := row.Scan(
		&e.ID,
		&e.SessionID,
		&e.Side,
		&e.State,
		&e.Number,
		&e.Filename,
		&e.ContentType,
		&e.SizeBytes,
		&e.ContentHash,
		&e.StorageKey,
		&e.UploadedBy,
		&e.UploadedAt,
		&e.RuledBy,
		&ruledAt,
	)
	if err != nil {
		return nil, err
	}

	e.RuledAt = timePtr(ruledAt)
	return &e, nil
}

func scanExhibits(rows *sql.Rows) ([]*model.Exhibit, error) {
	var exhibits []*model.Exhibit
	for rows.Next() {
		e, err := scanExhibit(rows)
		if err != nil {
			return nil, err
		}
		exhibits = append(exhibits, e)
	}
	return exhibits, rows.Err()
}

func scanEvent(row scannable) (*model.EventLedgerEntry, error) {
	var e model.EventLedgerEntry
	var payload []byte

	err := row.Scan(
		&e.SessionID,
		&e.Seq,
		&e.Type,
		&payload,
		&e.Hash,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Payload = json.RawMessage(payload)
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*model.EventLedgerEntry, error) {
	var events []*model.EventLedgerEntry
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// nullString converts "" to NULL for columns where empty means absent.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullTimePtr converts a nil *time.Time to NULL.
func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// nullFloatPtr converts a nil *float64 to NULL.
func nullFloatPtr(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// timePtr converts a sql.NullTime to a *time.Time.
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
