package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/testdeck/internal/ports/secondary"
)

// TestRunRepository implements secondary.TestRunRepository with SQLite.
type TestRunRepository struct {
	q DBTX
}

// NewTestRunRepository creates a new SQLite test run repository.
func NewTestRunRepository(q DBTX) *TestRunRepository {
	return &TestRunRepository{q: q}
}

const testRunSelectCols = "id, name, organization_id, status, created_at, created_by, linear_issue_id, linear_project_id, linear_milestone_id"

// scanTestRun scans a test run row into a TestRunRecord.
func scanTestRun(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TestRunRecord, error) {
	var issueID, projectID, milestoneID sql.NullString

	record := &secondary.TestRunRecord{}
	err := scanner.Scan(
		&record.ID, &record.Name, &record.OrganizationID, &record.Status,
		&record.CreatedAt, &record.CreatedBy, &issueID, &projectID, &milestoneID,
	)
	if err != nil {
		return nil, err
	}
	record.LinearIssueID = issueID.String
	record.LinearProjectID = projectID.String
	record.LinearMilestoneID = milestoneID.String
	return record, nil
}

// Create persists a new test run, honoring an explicit id when set.
func (r *TestRunRepository) Create(ctx context.Context, run *secondary.TestRunRecord) error {
	if run.ID != 0 {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO test_runs (id, name, organization_id, status, created_at, created_by, linear_issue_id, linear_project_id, linear_milestone_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.Name, run.OrganizationID, run.Status, run.CreatedAt, run.CreatedBy,
			nullString(run.LinearIssueID), nullString(run.LinearProjectID), nullString(run.LinearMilestoneID),
		)
		if err != nil {
			return fmt.Errorf("failed to create test run: %w", err)
		}
		return nil
	}

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO test_runs (name, organization_id, status, created_at, created_by, linear_issue_id, linear_project_id, linear_milestone_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Name, run.OrganizationID, run.Status, run.CreatedAt, run.CreatedBy,
		nullString(run.LinearIssueID), nullString(run.LinearProjectID), nullString(run.LinearMilestoneID),
	)
	if err != nil {
		return fmt.Errorf("failed to create test run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read test run id: %w", err)
	}
	run.ID = id
	return nil
}

// GetByID retrieves a test run by id within an organization.
func (r *TestRunRepository) GetByID(ctx context.Context, id, orgID int64) (*secondary.TestRunRecord, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+testRunSelectCols+" FROM test_runs WHERE id = ? AND organization_id = ?",
		id, orgID,
	)
	record, err := scanTestRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("test run %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get test run: %w", err)
	}
	return record, nil
}

// Update writes all mutable fields, scoped by id and organization.
func (r *TestRunRepository) Update(ctx context.Context, run *secondary.TestRunRecord) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE test_runs SET name = ?, status = ?, linear_issue_id = ?, linear_project_id = ?, linear_milestone_id = ?
		 WHERE id = ? AND organization_id = ?`,
		run.Name, run.Status,
		nullString(run.LinearIssueID), nullString(run.LinearProjectID), nullString(run.LinearMilestoneID),
		run.ID, run.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update test run: %w", err)
	}
	return requireAffected(res, "test run", run.ID)
}

// Delete removes a test run; owned results cascade via the schema.
func (r *TestRunRepository) Delete(ctx context.Context, id, orgID int64) error {
	res, err := r.q.ExecContext(ctx,
		"DELETE FROM test_runs WHERE id = ? AND organization_id = ?", id, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete test run: %w", err)
	}
	return requireAffected(res, "test run", id)
}

// List retrieves test runs for an organization, newest first.
func (r *TestRunRepository) List(ctx context.Context, orgID int64, filters secondary.TestRunFilters) ([]*secondary.TestRunRecord, error) {
	query := "SELECT " + testRunSelectCols + " FROM test_runs WHERE organization_id = ?"
	args := []any{orgID}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list test runs: %w", err)
	}
	defer rows.Close()

	var records []*secondary.TestRunRecord
	for rows.Next() {
		record, err := scanTestRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test run: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
