package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/testdeck/internal/ports/secondary"
)

// TestCaseRepository implements secondary.TestCaseRepository with SQLite.
type TestCaseRepository struct {
	q DBTX
}

// NewTestCaseRepository creates a new SQLite test case repository.
func NewTestCaseRepository(q DBTX) *TestCaseRepository {
	return &TestCaseRepository{q: q}
}

const testCaseSelectCols = "id, legacy_id, title, folder_id, position, template, state, priority, organization_id, created_at, updated_at, created_by, updated_by"

// scanTestCase scans a test case row into a TestCaseRecord.
func scanTestCase(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TestCaseRecord, error) {
	var (
		legacyID sql.NullString
		folderID sql.NullInt64
	)

	record := &secondary.TestCaseRecord{}
	err := scanner.Scan(
		&record.ID, &legacyID, &record.Title, &folderID, &record.Position,
		&record.Template, &record.State, &record.Priority, &record.OrganizationID,
		&record.CreatedAt, &record.UpdatedAt, &record.CreatedBy, &record.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	record.LegacyID = legacyID.String
	record.FolderID = folderID.Int64
	return record, nil
}

// Create persists a new test case, honoring an explicit id when set.
func (r *TestCaseRepository) Create(ctx context.Context, tc *secondary.TestCaseRecord) error {
	if tc.ID != 0 {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO test_cases (id, legacy_id, title, folder_id, position, template, state, priority, organization_id, created_at, updated_at, created_by, updated_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tc.ID, nullString(tc.LegacyID), tc.Title, nullInt64(tc.FolderID), tc.Position,
			tc.Template, tc.State, tc.Priority, tc.OrganizationID,
			tc.CreatedAt, tc.UpdatedAt, tc.CreatedBy, tc.UpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to create test case: %w", err)
		}
		return nil
	}

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO test_cases (legacy_id, title, folder_id, position, template, state, priority, organization_id, created_at, updated_at, created_by, updated_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(tc.LegacyID), tc.Title, nullInt64(tc.FolderID), tc.Position,
		tc.Template, tc.State, tc.Priority, tc.OrganizationID,
		tc.CreatedAt, tc.UpdatedAt, tc.CreatedBy, tc.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create test case: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read test case id: %w", err)
	}
	tc.ID = id
	return nil
}

// GetByID retrieves a test case by id within an organization.
func (r *TestCaseRepository) GetByID(ctx context.Context, id, orgID int64) (*secondary.TestCaseRecord, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+testCaseSelectCols+" FROM test_cases WHERE id = ? AND organization_id = ?",
		id, orgID,
	)
	record, err := scanTestCase(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("test case %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}
	return record, nil
}

// Update writes all mutable fields, scoped by id and organization.
func (r *TestCaseRepository) Update(ctx context.Context, tc *secondary.TestCaseRecord) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE test_cases SET legacy_id = ?, title = ?, folder_id = ?, position = ?, template = ?, state = ?, priority = ?, updated_at = ?, updated_by = ?
		 WHERE id = ? AND organization_id = ?`,
		nullString(tc.LegacyID), tc.Title, nullInt64(tc.FolderID), tc.Position,
		tc.Template, tc.State, tc.Priority, tc.UpdatedAt, tc.UpdatedBy,
		tc.ID, tc.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update test case: %w", err)
	}
	return requireAffected(res, "test case", tc.ID)
}

// Delete removes a test case; owned scenarios cascade via the schema.
func (r *TestCaseRepository) Delete(ctx context.Context, id, orgID int64) error {
	res, err := r.q.ExecContext(ctx,
		"DELETE FROM test_cases WHERE id = ? AND organization_id = ?", id, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete test case: %w", err)
	}
	return requireAffected(res, "test case", id)
}

// List retrieves test cases matching the given filters.
func (r *TestCaseRepository) List(ctx context.Context, orgID int64, filters secondary.TestCaseFilters) ([]*secondary.TestCaseRecord, error) {
	query := "SELECT " + testCaseSelectCols + " FROM test_cases WHERE organization_id = ?"
	args := []any{orgID}
	if filters.FolderID != 0 {
		query += " AND folder_id = ?"
		args = append(args, filters.FolderID)
	}
	if filters.State != "" {
		query += " AND state = ?"
		args = append(args, filters.State)
	}
	if filters.Priority != "" {
		query += " AND priority = ?"
		args = append(args, filters.Priority)
	}
	query += " ORDER BY position, id"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	defer rows.Close()

	var records []*secondary.TestCaseRecord
	for rows.Next() {
		record, err := scanTestCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test case: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
