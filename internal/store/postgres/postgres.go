// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateSession(ctx context.Context, session *model.Session) error {
	return queryCreateSession(ctx, s.db, session)
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return queryGetSession(ctx, s.db, id, false)
}

// GetSessionForUpdate outside a transaction degrades to a plain read;
// the lock would be released immediately at statement end. Engine code
// always calls it through a txStore.
func (s *PostgresStore) GetSessionForUpdate(ctx context.Context, id string) (*model.Session, error) {
	return queryGetSession(ctx, s.db, id, false)
}

func (s *PostgresStore) UpdateSession(ctx context.Context, session *model.Session) error {
	return queryUpdateSession(ctx, s.db, session)
}

func (s *PostgresStore) ListSessions(ctx context.Context, filter model.SessionFilter) ([]*model.Session, error) {
	return queryListSessions(ctx, s.db, filter)
}

func (s *PostgresStore) SetIntegrityCheckedAt(ctx context.Context, id string) error {
	return querySetIntegrityCheckedAt(ctx, s.db, id)
}

func (s *PostgresStore) CreateTurn(ctx context.Context, turn *model.Turn) error {
	return queryCreateTurn(ctx, s.db, turn)
}

func (s *PostgresStore) GetTurn(ctx context.Context, id string) (*model.Turn, error) {
	return queryGetTurn(ctx, s.db, id)
}

func (s *PostgresStore) UpdateTurn(ctx context.Context, turn *model.Turn) error {
	return queryUpdateTurn(ctx, s.db, turn)
}

func (s *PostgresStore) ListTurns(ctx context.Context, sessionID string) ([]*model.Turn, error) {
	return queryListTurns(ctx, s.db, sessionID)
}

func (s *PostgresStore) HasActiveTurn(ctx context.Context, sessionID string) (bool, error) {
	return queryHasActiveTurn(ctx, s.db, sessionID)
}

func (s *PostgresStore) CreateObjection(ctx context.Context, objection *model.Objection) error {
	return queryCreateObjection(ctx, s.db, objection)
}

func (s *PostgresStore) GetObjection(ctx context.Context, id string) (*model.Objection, error) {
	return queryGetObjection(ctx, s.db, id)
}

func (s *PostgresStore) UpdateObjection(ctx context.Context, objection *model.Objection) error {
	return queryUpdateObjection(ctx, s.db, objection)
}

func (s *PostgresStore) ListObjections(ctx context.Context, sessionID string) ([]*model.Objection, error) {
	return queryListObjections(ctx, s.db, sessionID)
}

func (s *PostgresStore) GetPendingObjection(ctx context.Context, turnID string) (*model.Objection, error) {
	return queryGetPendingObjection(ctx, s.db, turnID)
}

func (s *PostgresStore) HasPendingObjection(ctx context.Context, sessionID string) (bool, error) {
	return queryHasPendingObjection(ctx, s.db, sessionID)
}

func (s *PostgresStore) CreateExhibit(ctx context.Context, exhibit *model.Exhibit) error {
	return queryCreateExhibit(ctx, s.db, exhibit)
}

func (s *PostgresStore) GetExhibit(ctx context.Context, id string) (*model.Exhibit, error) {
	return queryGetExhibit(ctx, s.db, id)
}

func (s *PostgresStore) UpdateExhibit(ctx context.Context, exhibit *model.Exhibit) error {
	return queryUpdateExhibit(ctx, s.db, exhibit)
}

func (s *PostgresStore) ListExhibits(ctx context.Context, sessionID string) ([]*model.Exhibit, error) {
	return queryListExhibits(ctx, s.db, sessionID)
}

func (s *PostgresStore) MaxExhibitNumber(ctx context.Context, sessionID string, side model.Side) (int, error) {
	return queryMaxExhibitNumber(ctx, s.db, sessionID, side)
}

func (s *PostgresStore) AppendEvent(ctx context.Context, entry *model.EventLedgerEntry) error {
	return queryAppendEvent(ctx, s.db, entry)
}

func (s *PostgresStore) ListEvents(ctx context.Context, sessionID string, afterSeq uint64) ([]*model.EventLedgerEntry, error) {
	return queryListEvents(ctx, s.db, sessionID, afterSeq)
}

func (s *PostgresStore) ListEventHashes(ctx context.Context, sessionID string) ([]string, error) {
	return queryListEventHashes(ctx, s.db, sessionID)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return s.runTx(ctx, nil, fn)
}

// RunSerializable is RunInTransaction at the serializable isolation
// level. Session completion runs here because its precondition (no
// active turn, no pending objection) must hold at commit, not merely at
// check time.
func (s *PostgresStore) RunSerializable(ctx context.Context, fn func(tx store.Store) error) error {
	return s.runTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

func (s *PostgresStore) runTx(ctx context.Context, opts *sql.TxOptions, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateSession(ctx context.Context, session *model.Session) error {
	return queryCreateSession(ctx, s.tx, session)
}

func (s *txStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return queryGetSession(ctx, s.tx, id, false)
}

func (s *txStore) GetSessionForUpdate(ctx context.Context, id string) (*model.Session, error) {
	return queryGetSession(ctx, s.tx, id, true)
}

func (s *txStore) UpdateSession(ctx context.Context, session *model.Session) error {
	return queryUpdateSession(ctx, s.tx, session)
}

func (s *txStore) ListSessions(ctx context.Context, filter model.SessionFilter) ([]*model.Session, error) {
	return queryListSessions(ctx, s.tx, filter)
}

func (s *txStore) SetIntegrityCheckedAt(ctx context.Context, id string) error {
	return querySetIntegrityCheckedAt(ctx, s.tx, id)
}

func (s *txStore) CreateTurn(ctx context.Context, turn *model.Turn) error {
	return queryCreateTurn(ctx, s.tx, turn)
}

func (s *txStore) GetTurn(ctx context.Context, id string) (*model.Turn, error) {
	return queryGetTurn(ctx, s.tx, id)
}

func (s *txStore) UpdateTurn(ctx context.Context, turn *model.Turn) error {
	return queryUpdateTurn(ctx, s.tx, turn)
}

func (s *txStore) ListTurns(ctx context.Context, sessionID string) ([]*model.Turn, error) {
	return queryListTurns(ctx, s.tx, sessionID)
}

func (s *txStore) HasActiveTurn(ctx context.Context, sessionID string) (bool, error) {
	return queryHasActiveTurn(ctx, s.tx, sessionID)
}

func (s *txStore) CreateObjection(ctx context.Context, objection *model.Objection) error {
	return queryCreateObjection(ctx, s.tx, objection)
}

func (s *txStore) GetObjection(ctx context.Context, id string) (*model.Objection, error) {
	return queryGetObjection(ctx, s.tx, id)
}

func (s *txStore) UpdateObjection(ctx context.Context, objection *model.Objection) error {
	return queryUpdateObjection(ctx, s.tx, objection)
}

func (s *txStore) ListObjections(ctx context.Context, sessionID string) ([]*model.Objection, error) {
	return queryListObjections(ctx, s.tx, sessionID)
}

func (s *txStore) GetPendingObjection(ctx context.Context, turnID string) (*model.Objection, error) {
	return queryGetPendingObjection(ctx, s.tx, turnID)
}

func (s *txStore) HasPendingObjection(ctx context.Context, sessionID string) (bool, error) {
	return queryHasPendingObjection(ctx, s.tx, sessionID)
}

func (s *txStore) CreateExhibit(ctx context.Context, exhibit *model.Exhibit) error {
	return queryCreateExhibit(ctx, s.tx, exhibit)
}

func (s *txStore) GetExhibit(ctx context.Context, id string) (*model.Exhibit, error) {
	return queryGetExhibit(ctx, s.tx, id)
}

func (s *txStore) UpdateExhibit(ctx context.Context, exhibit *model.Exhibit) error {
	return queryUpdateExhibit(ctx, s.tx, exhibit)
}

func (s *txStore) ListExhibits(ctx context.Context, sessionID string) ([]*model.Exhibit, error) {
	return queryListExhibits(ctx, s.tx, sessionID)
}

func (s *txStore) MaxExhibitNumber(ctx context.Context, sessionID string, side model.Side) (int, error) {
	return queryMaxExhibitNumber(ctx, s.tx, sessionID, side)
}

func (s *txStore) AppendEvent(ctx context.Context, entry *model.EventLedgerEntry) error {
	return queryAppendEvent(ctx, s.tx, entry)
}

func (s *txStore) ListEvents(ctx context.Context, sessionID string, afterSeq uint64) ([]*model.EventLedgerEntry, error) {
	return queryListEvents(ctx, s.tx, sessionID, afterSeq)
}

func (s *txStore) ListEventHashes(ctx context.Context, sessionID string) ([]string, error) {
	return queryListEventHashes(ctx, s.tx, sessionID)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// RunSerializable on a txStore reuses the existing transaction; the
// isolation level was fixed when the outer transaction began.
func (s *txStore) RunSerializable(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
