// Package store persists the ledger in SQLite.
//
// A Store owns a single database connection. Every read or write happens
// inside a unit of work (Update or View) that holds the store lock for its
// whole duration, so at most one ledger operation is in flight at a time.
// Writes performed through a Tx commit together or not at all.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/model"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store is the durable ledger store.
type Store struct {
	db  *sql.DB
	sem *semaphore.Weighted
	log *zap.Logger
}

// Open opens (creating if needed) the SQLite database at path and applies
// pending schema migrations. Use MemoryPath for a throwaway database.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", model.ErrStoreFailure, err)
	}
	// One connection: an in-memory database lives and dies with it, and the
	// ledger is serialized anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := migrateUp(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", model.ErrStoreFailure, err)
	}

	return &Store{db: db, sem: semaphore.NewWeighted(1), log: logger}, nil
}

func dsn(path string) string {
	if path == MemoryPath {
		return "file::memory:?_foreign_keys=on"
	}
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Update runs fn inside a read-write unit of work. The changes made through
// tx are committed if fn returns nil and rolled back otherwise.
//
// Waiting for the store lock honours ctx and fails with
// model.ErrConcurrencyFailure; once acquired the unit of work is not
// cancellable.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	return s.run(ctx, true, fn)
}

// View runs fn inside a unit of work that is always rolled back.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	return s.run(ctx, false, fn)
}

func (s *Store) run(ctx context.Context, commit bool, fn func(tx *Tx) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: acquiring store lock: %w", model.ErrConcurrencyFailure, err)
	}
	defer s.sem.Release(1)

	ctx = context.WithoutCancel(ctx)
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translate(err, "beginning transaction")
	}
	defer sqlTx.Rollback() //nolint:errcheck // no-op after Commit

	if err := fn(&Tx{ctx: ctx, tx: sqlTx}); err != nil {
		return err
	}
	if !commit {
		return nil
	}
	if err := sqlTx.Commit(); err != nil {
		s.log.Error("commit failed", zap.Error(err))
		return translate(err, "committing transaction")
	}
	return nil
}

// Tx is a unit of work. It is only valid inside the Update or View callback
// that received it.
type Tx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *Tx) exec(query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(t.ctx, query, args...)
}

func (t *Tx) query(query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(t.ctx, query, args...)
}

func (t *Tx) queryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(t.ctx, query, args...)
}

func newID() string { return uuid.NewString() }

// translate maps driver errors onto the ledger error kinds.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.ExtendedCode {
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return fmt.Errorf("%w: %s: %w", model.ErrInvalidInput, op, err)
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s: duplicate: %w", model.ErrInvalidInput, op, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s: referenced record does not exist: %w", model.ErrNotFound, op, err)
		}
		if serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked {
			return fmt.Errorf("%w: %s: %w", model.ErrConcurrencyFailure, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", model.ErrStoreFailure, op, err)
}

func isCheckViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintCheck
}

type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string { return calendar.FormatTimestamp(t) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: corrupt timestamp %q: %w", model.ErrStoreFailure, s, err)
	}
	return t.UTC(), nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
