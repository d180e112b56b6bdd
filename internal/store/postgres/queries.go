package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/courtlab/gavel/internal/model"
)

// sessionColumns is the column list used for SELECT statements on the
// sessions table.
const sessionColumns = `id, tournament_id, round, institution, presiding_judge,
	status, active_turn_id, remaining_seconds, last_tick_at, timer_paused_at,
	integrity_checked_at, created_at, updated_at, started_at, completed_at`

const turnColumns = `id, session_id, side, type, state, allocated_seconds,
	started_at, ended_at, end_reason, score`

const objectionColumns = `id, session_id, turn_id, type, state,
	raised_by, raised_at, ruled_by, ruled_at`

const exhibitColumns = `id, session_id, side, state, exhibit_number,
	filename, content_type, size_bytes, content_hash, storage_key,
	uploaded_by, uploaded_at, ruled_by, ruled_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateSession(ctx context.Context, db executor, s *model.Session) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, tournament_id, round, institution, presiding_judge,
			status, active_turn_id, remaining_seconds, last_tick_at, timer_paused_at,
			integrity_checked_at, created_at, updated_at, started_at, completed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15
		)`,
		s.ID,
		s.TournamentID,
		s.Round,
		s.Institution,
		s.PresidingJudge,
		string(s.Status),
		nullString(s.ActiveTurnID),
		s.RemainingSeconds,
		nullTimePtr(s.LastTickAt),
		nullTimePtr(s.TimerPausedAt),
		nullTimePtr(s.IntegrityCheckedAt),
		s.CreatedAt,
		s.UpdatedAt,
		nullTimePtr(s.StartedAt),
		nullTimePtr(s.CompletedAt),
	)
	return err
}

func queryGetSession(ctx context.Context, db executor, id string, forUpdate bool) (*model.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	return scanSession(db.QueryRowContext(ctx, q, id))
}

func queryUpdateSession(ctx context.Context, db executor, s *model.Session) error {
	res, err := db.ExecContext(ctx, `
		UPDATE sessions SET
			status = $2,
			active_turn_id = $3,
			remaining_seconds = $4,
			last_tick_at = $5,
			timer_paused_at = $6,
			updated_at = $7,
			started_at = $8,
			completed_at = $9
		WHERE id = $1`,
		s.ID,
		string(s.Status),
		nullString(s.ActiveTurnID),
		s.RemainingSeconds,
		nullTimePtr(s.LastTickAt),
		nullTimePtr(s.TimerPausedAt),
		s.UpdatedAt,
		nullTimePtr(s.StartedAt),
		nullTimePtr(s.CompletedAt),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryListSessions(ctx context.Context, db executor, filter model.SessionFilter) ([]*model.Session, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, st := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(st))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.TournamentID != "" {
		whereClauses = append(whereClauses, "tournament_id = "+nextArg())
		args = append(args, filter.TournamentID)
	}

	q := `SELECT ` + sessionColumns + ` FROM sessions`
	if len(whereClauses) > 0 {
		q += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	q += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		q += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		q += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func querySetIntegrityCheckedAt(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE sessions SET integrity_checked_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryCreateTurn(ctx context.Context, db executor, t *model.Turn) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO turns (
			id, session_id, side, type, state, allocated_seconds,
			started_at, ended_at, end_reason, score
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10
		)`,
		t.ID,
		t.SessionID,
		string(t.Side),
		string(t.Type),
		string(t.State),
		t.AllocatedSeconds,
		t.StartedAt,
		nullTimePtr(t.EndedAt),
		t.EndReason,
		nullFloatPtr(t.Score),
	)
	return err
}

func queryGetTurn(ctx context.Context, db executor, id string) (*model.Turn, error) {
	return scanTurn(db.QueryRowContext(ctx, `SELECT `+turnColumns+` FROM turns WHERE id = $1`, id))
}

func queryUpdateTurn(ctx context.Context, db executor, t *model.Turn) error {
	res, err := db.ExecContext(ctx, `
		UPDATE turns SET
			state = $2,
			ended_at = $3,
			end_reason = $4,
			score = $5
		WHERE id = $1`,
		t.ID,
		string(t.State),
		nullTimePtr(t.EndedAt),
		t.EndReason,
		nullFloatPtr(t.Score),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryListTurns(ctx context.Context, db executor, sessionID string) ([]*model.Turn, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+turnColumns+` FROM turns
		WHERE session_id = $1
		ORDER BY started_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTurns(rows)
}

func queryHasActiveTurn(ctx context.Context, db executor, sessionID string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM turns WHERE session_id = $1 AND state = 'active')`,
		sessionID,
	).Scan(&exists)
	return exists, err
}

func queryCreateObjection(ctx context.Context, db executor, o *model.Objection) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO objections (
			id, session_id, turn_id, type, state,
			raised_by, raised_at, ruled_by, ruled_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)`,
		o.ID,
		o.SessionID,
		o.TurnID,
		string(o.Type),
		string(o.State),
		o.RaisedBy,
		o.RaisedAt,
		o.RuledBy,
		nullTimePtr(o.RuledAt),
	)
	return err
}

func queryGetObjection(ctx context.Context, db executor, id string) (*model.Objection, error) {
	return scanObjection(db.QueryRowContext(ctx, `SELECT `+objectionColumns+` FROM objections WHERE id = $1`, id))
}

func queryUpdateObjection(ctx context.Context, db executor, o *model.Objection) error {
	res, err := db.ExecContext(ctx, `
		UPDATE objections SET
			state = $2,
			ruled_by = $3,
			ruled_at = $4
		WHERE id = $1`,
		o.ID,
		string(o.State),
		o.RuledBy,
		nullTimePtr(o.RuledAt),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryListObjections(ctx context.Context, db executor, sessionID string) ([]*model.Objection, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+objectionColumns+` FROM objections
		WHERE session_id = $1
		ORDER BY raised_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObjections(rows)
}

func queryGetPendingObjection(ctx context.Context, db executor, turnID string) (*model.Objection, error) {
	return scanObjection(db.QueryRowContext(ctx, `
		SELECT `+objectionColumns+` FROM objections
		WHERE turn_id = $1 AND state = 'pending'`,
		turnID,
	))
}

func queryHasPendingObjection(ctx context.Context, db executor, sessionID string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM objections WHERE session_id = $1 AND state = 'pending')`,
		sessionID,
	).Scan(&exists)
	return exists, err
}

func queryCreateExhibit(ctx context.Context, db executor, e *model.Exhibit) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO exhibits (
			id, session_id, side, state, exhibit_number,
			filename, content_type, size_bytes, content_hash, storage_key,
			uploaded_by, uploaded_at, ruled_by, ruled_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14
		)`,
		e.ID,
		e.SessionID,
		string(e.Side),
		string(e.State),
		e.Number,
		e.Filename,
		e.ContentType,
		e.SizeBytes,
		e.ContentHash,
		e.StorageKey,
		e.UploadedBy,
		e.UploadedAt,
		e.RuledBy,
		nullTimePtr(e.RuledAt),
	)
	return err
}

func queryGetExhibit(ctx context.Context, db executor, id string) (*model.Exhibit, error) {
	return scanExhibit(db.QueryRowContext(ctx, `SELECT `+exhibitColumns+` FROM exhibits WHERE id = $1`, id))
}

func queryUpdateExhibit(ctx context.Context, db executor, e *model.Exhibit) error {
	res, err := db.ExecContext(ctx, `
		UPDATE exhibits SET
			state = $2,
			exhibit_number = $3,
			ruled_by = $4,
			ruled_at = $5
		WHERE id = $1`,
		e.ID,
		string(e.State),
		e.Number,
		e.RuledBy,
		nullTimePtr(e.RuledAt),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryListExhibits(ctx context.Context, db executor, sessionID string) ([]*model.Exhibit, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+exhibitColumns+` FROM exhibits
		WHERE session_id = $1
		ORDER BY uploaded_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExhibits(rows)
}

func queryMaxExhibitNumber(ctx context.Context, db executor, sessionID string, side model.Side) (int, error) {
	var max int
	err := db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(exhibit_number), 0) FROM exhibits
		WHERE session_id = $1 AND side = $2`,
		sessionID, string(side),
	).Scan(&max)
	return max, err
}

// queryAppendEvent assigns the next per-session sequence number and
// inserts the entry in one statement. Gap-freedom relies on the caller
// holding the session row lock, which serializes appends per session.
func queryAppendEvent(ctx context.Context, db executor, e *model.EventLedgerEntry) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO session_events (session_id, event_sequence, event_type, payload, event_hash, created_at)
		SELECT $1, COALESCE(MAX(event_sequence), 0) + 1, $2, $3, $4, $5
		FROM session_events WHERE session_id = $1
		RETURNING event_sequence`,
		e.SessionID,
		string(e.Type),
		string(e.Payload),
		e.Hash,
		e.CreatedAt,
	).Scan(&e.Seq)
}

func queryListEvents(ctx context.Context, db executor, sessionID string, afterSeq uint64) ([]*model.EventLedgerEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT session_id, event_sequence, event_type, payload, event_hash, created_at
		FROM session_events
		WHERE session_id = $1 AND event_sequence > $2
		ORDER BY event_sequence ASC`,
		sessionID, afterSeq,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func queryListEventHashes(ctx context.Context, db executor, sessionID string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT event_hash FROM session_events
		WHERE session_id = $1
		ORDER BY event_sequence ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}
