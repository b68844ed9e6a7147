package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/testdeck/internal/ports/secondary"
)

// UndoStackRepository implements secondary.UndoStackRepository with SQLite.
// Both stacks share the undo_stack table, split by the is_redo flag.
type UndoStackRepository struct {
	q DBTX
}

// NewUndoStackRepository creates a new SQLite undo stack repository.
func NewUndoStackRepository(q DBTX) *UndoStackRepository {
	return &UndoStackRepository{q: q}
}

const undoSelectCols = "id, action_type, description, undo_data, is_redo, organization_id, created_at"

// scanUndoEntry scans a stack row into an UndoStackRecord.
func scanUndoEntry(scanner interface {
	Scan(dest ...any) error
}) (*secondary.UndoStackRecord, error) {
	record := &secondary.UndoStackRecord{}
	err := scanner.Scan(
		&record.ID, &record.ActionType, &record.Description, &record.UndoData,
		&record.IsRedo, &record.OrganizationID, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Push inserts a new stack entry.
func (r *UndoStackRepository) Push(ctx context.Context, entry *secondary.UndoStackRecord) error {
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO undo_stack (action_type, description, undo_data, is_redo, organization_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		entry.ActionType, entry.Description, entry.UndoData, entry.IsRedo,
		entry.OrganizationID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to push undo entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read undo entry id: %w", err)
	}
	entry.ID = id
	return nil
}

// Pop atomically removes and returns the most recent entry of one stack.
// The delete-and-return is a single statement, so two concurrent pops for
// the same organization can never claim the same entry. Returns (nil, nil)
// when the stack is empty — a normal steady-state condition, not an error.
func (r *UndoStackRepository) Pop(ctx context.Context, orgID int64, redo bool) (*secondary.UndoStackRecord, error) {
	row := r.q.QueryRowContext(ctx,
		`DELETE FROM undo_stack WHERE id = (
			SELECT id FROM undo_stack
			WHERE organization_id = ? AND is_redo = ?
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) RETURNING `+undoSelectCols,
		orgID, redo,
	)
	record, err := scanUndoEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop undo entry: %w", err)
	}
	return record, nil
}

// ClearRedo deletes every redo entry for an organization.
func (r *UndoStackRepository) ClearRedo(ctx context.Context, orgID int64) error {
	_, err := r.q.ExecContext(ctx,
		"DELETE FROM undo_stack WHERE organization_id = ? AND is_redo = 1", orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear redo stack: %w", err)
	}
	return nil
}

// CountUndo returns the number of undo entries for an organization.
func (r *UndoStackRepository) CountUndo(ctx context.Context, orgID int64) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM undo_stack WHERE organization_id = ? AND is_redo = 0", orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count undo entries: %w", err)
	}
	return count, nil
}

// TrimUndo deletes the oldest undo entries beyond the keep most recent.
func (r *UndoStackRepository) TrimUndo(ctx context.Context, orgID int64, keep int) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM undo_stack
		 WHERE organization_id = ? AND is_redo = 0 AND id NOT IN (
			SELECT id FROM undo_stack
			WHERE organization_id = ? AND is_redo = 0
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		 )`,
		orgID, orgID, keep,
	)
	if err != nil {
		return fmt.Errorf("failed to trim undo stack: %w", err)
	}
	return nil
}

// List retrieves the top entries of one stack, most recent first.
func (r *UndoStackRepository) List(ctx context.Context, orgID int64, redo bool, limit int) ([]*secondary.UndoStackRecord, error) {
	query := "SELECT " + undoSelectCols + ` FROM undo_stack
		WHERE organization_id = ? AND is_redo = ?
		ORDER BY created_at DESC, id DESC`
	args := []any{orgID, redo}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list undo entries: %w", err)
	}
	defer rows.Close()

	var records []*secondary.UndoStackRecord
	for rows.Next() {
		record, err := scanUndoEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan undo entry: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
