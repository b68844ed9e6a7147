package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/testdeck/internal/ports/secondary"
)

// WriteLogRepository implements secondary.WriteLogRepository with SQLite.
// The table is append-only: no method here deletes rows.
type WriteLogRepository struct {
	q DBTX
}

// NewWriteLogRepository creates a new SQLite write log repository.
func NewWriteLogRepository(q DBTX) *WriteLogRepository {
	return &WriteLogRepository{q: q}
}

const writeLogSelectCols = "id, organization_id, user_id, client_id, session_id, tool_name, tool_args, entity_type, entity_id, before_state, after_state, status, error_message, undone_at, undone_by, created_at"

// scanWriteLog scans a log row into a WriteLogRecord.
func scanWriteLog(scanner interface {
	Scan(dest ...any) error
}) (*secondary.WriteLogRecord, error) {
	var (
		sessionID    sql.NullString
		entityID     sql.NullInt64
		beforeState  []byte
		afterState   []byte
		errorMessage sql.NullString
		undoneAt     sql.NullInt64
		undoneBy     sql.NullString
	)

	record := &secondary.WriteLogRecord{}
	err := scanner.Scan(
		&record.ID, &record.OrganizationID, &record.UserID, &record.ClientID,
		&sessionID, &record.ToolName, &record.ToolArgs, &record.EntityType,
		&entityID, &beforeState, &afterState, &record.Status,
		&errorMessage, &undoneAt, &undoneBy, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.SessionID = sessionID.String
	record.EntityID = entityID.Int64
	record.BeforeState = beforeState
	record.AfterState = afterState
	record.ErrorMessage = errorMessage.String
	record.UndoneAt = undoneAt.Int64
	record.UndoneBy = undoneBy.String
	return record, nil
}

// Append inserts a new log entry and returns its id.
func (r *WriteLogRepository) Append(ctx context.Context, entry *secondary.WriteLogRecord) (int64, error) {
	var before, after any
	if len(entry.BeforeState) > 0 {
		before = entry.BeforeState
	}
	if len(entry.AfterState) > 0 {
		after = entry.AfterState
	}

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO mcp_write_log (organization_id, user_id, client_id, session_id, tool_name, tool_args, entity_type, entity_id, before_state, after_state, status, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.OrganizationID, entry.UserID, entry.ClientID, nullString(entry.SessionID),
		entry.ToolName, string(entry.ToolArgs), entry.EntityType, nullInt64(entry.EntityID),
		before, after, entry.Status, nullString(entry.ErrorMessage), entry.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append write log entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read write log id: %w", err)
	}
	entry.ID = id
	return id, nil
}

// GetByID retrieves a log entry by id within an organization.
func (r *WriteLogRepository) GetByID(ctx context.Context, id, orgID int64) (*secondary.WriteLogRecord, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+writeLogSelectCols+" FROM mcp_write_log WHERE id = ? AND organization_id = ?",
		id, orgID,
	)
	record, err := scanWriteLog(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("write log entry %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get write log entry: %w", err)
	}
	return record, nil
}

// MarkUndone sets undone_at/undone_by exactly once; the undone_at IS NULL
// guard makes a double mark fail with ErrNotFound.
func (r *WriteLogRepository) MarkUndone(ctx context.Context, id, orgID int64, undoneBy string, undoneAt int64) error {
	res, err := r.q.ExecContext(ctx,
		"UPDATE mcp_write_log SET undone_at = ?, undone_by = ? WHERE id = ? AND organization_id = ? AND undone_at IS NULL",
		undoneAt, undoneBy, id, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark write log entry undone: %w", err)
	}
	return requireAffected(res, "write log entry", id)
}

// List retrieves log entries for an organization, newest first.
func (r *WriteLogRepository) List(ctx context.Context, orgID int64, filters secondary.WriteLogFilters) ([]*secondary.WriteLogRecord, error) {
	query := "SELECT " + writeLogSelectCols + " FROM mcp_write_log WHERE organization_id = ?"
	args := []any{orgID}
	if filters.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filters.UserID)
	}
	if filters.ToolName != "" {
		query += " AND tool_name = ?"
		args = append(args, filters.ToolName)
	}
	if filters.EntityType != "" {
		query += " AND entity_type = ?"
		args = append(args, filters.EntityType)
	}
	if !filters.IncludeUndone {
		query += " AND undone_at IS NULL"
	}
	query += " ORDER BY created_at DESC, id DESC"
	switch {
	case filters.Limit > 0 && filters.Offset > 0:
		query += " LIMIT ? OFFSET ?"
		args = append(args, filters.Limit, filters.Offset)
	case filters.Limit > 0:
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	case filters.Offset > 0:
		// sqlite requires a LIMIT clause before OFFSET; -1 means unbounded
		query += " LIMIT -1 OFFSET ?"
		args = append(args, filters.Offset)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list write log entries: %w", err)
	}
	defer rows.Close()

	var records []*secondary.WriteLogRecord
	for rows.Next() {
		record, err := scanWriteLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan write log entry: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
