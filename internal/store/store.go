package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// logVersion is stamped into PRAGMA user_version. It tracks the action
// encoding kept in actions.action and moves with ir.PlanVersion.
const logVersion = 1

// ErrNewerLog is returned by Open for a plan log written by a newer ctmigrate.
var ErrNewerLog = errors.New("plan log was written by a newer ctmigrate")

// connParams are applied by the driver on every connection: WAL so history
// can be read while a plan is appended, a busy timeout for concurrent CLI
// runs, and enforced references from actions and errors to their plan.
var connParams = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

// Store is the append-only plan log.
type Store struct {
	db *sql.DB
}

// Open opens the plan log at path, creating it when missing. ":memory:"
// gives a throwaway log. Opening an existing log is idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?"+connParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open plan log: %w", err)
	}

	// One connection: SQLite has a single writer, and ":memory:" is per
	// connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := ensureSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// ensureSchema creates the tables of a fresh log and refuses a log stamped
// with a newer version.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to plan log: %w", err)
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read log version: %w", err)
	}
	if version > logVersion {
		return fmt.Errorf("%w: version %d, this build reads %d", ErrNewerLog, version, logVersion)
	}

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	if version < logVersion {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", logVersion)); err != nil {
			return fmt.Errorf("stamp log version: %w", err)
		}
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for ad hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}
