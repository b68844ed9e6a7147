// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/testdeck/internal/ports/secondary"
)

// DBTX is the subset of database/sql satisfied by both *sql.DB and *sql.Tx.
// Every repository is constructed against it so the same code serves plain
// connections and transactions.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles the repository set and implements secondary.TxRunner.
// Undo, redo, and write-log undo each run inside one transaction via InTx,
// so a failed reversal leaves both ledgers and the entities untouched.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Repos returns repositories bound to the plain connection.
func (s *Store) Repos() secondary.Repositories {
	return newRepositories(s.db)
}

// InTx runs fn with repositories bound to a single transaction, committing
// on nil and rolling back on error.
func (s *Store) InTx(ctx context.Context, fn func(secondary.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(newRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func newRepositories(q DBTX) secondary.Repositories {
	return secondary.Repositories{
		Organizations:  NewOrganizationRepository(q),
		Folders:        NewFolderRepository(q),
		TestCases:      NewTestCaseRepository(q),
		Scenarios:      NewScenarioRepository(q),
		TestRuns:       NewTestRunRepository(q),
		TestRunResults: NewTestRunResultRepository(q),
		UndoStack:      NewUndoStackRepository(q),
		WriteLog:       NewWriteLogRepository(q),
	}
}

// Ensure Store implements the interface
var _ secondary.TxRunner = (*Store)(nil)

// nullInt64 maps a zero id to SQL NULL for nullable foreign keys.
func nullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

// nullString maps an empty string to SQL NULL.
func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
