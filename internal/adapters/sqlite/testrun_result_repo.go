package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/testdeck/internal/ports/secondary"
)

// TestRunResultRepository implements secondary.TestRunResultRepository with
// SQLite. Tenant checks go through the owning test run.
type TestRunResultRepository struct {
	q DBTX
}

// NewTestRunResultRepository creates a new SQLite test run result repository.
func NewTestRunResultRepository(q DBTX) *TestRunResultRepository {
	return &TestRunResultRepository{q: q}
}

const resultSelectCols = "r.id, r.test_run_id, r.scenario_id, r.status, r.notes, r.executed_at, r.executed_by"

// scanResult scans a result row into a TestRunResultRecord.
func scanResult(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TestRunResultRecord, error) {
	var (
		notes      sql.NullString
		executedAt sql.NullInt64
		executedBy sql.NullString
	)

	record := &secondary.TestRunResultRecord{}
	err := scanner.Scan(
		&record.ID, &record.TestRunID, &record.ScenarioID, &record.Status,
		&notes, &executedAt, &executedBy,
	)
	if err != nil {
		return nil, err
	}
	record.Notes = notes.String
	record.ExecutedAt = executedAt.Int64
	record.ExecutedBy = executedBy.String
	return record, nil
}

// Create persists a new result row, honoring an explicit id when set.
func (r *TestRunResultRepository) Create(ctx context.Context, res *secondary.TestRunResultRecord) error {
	if res.ID != 0 {
		_, err := r.q.ExecContext(ctx,
			"INSERT INTO test_run_results (id, test_run_id, scenario_id, status, notes, executed_at, executed_by) VALUES (?, ?, ?, ?, ?, ?, ?)",
			res.ID, res.TestRunID, res.ScenarioID, res.Status,
			nullString(res.Notes), nullInt64(res.ExecutedAt), nullString(res.ExecutedBy),
		)
		if err != nil {
			return fmt.Errorf("failed to create test run result: %w", err)
		}
		return nil
	}

	result, err := r.q.ExecContext(ctx,
		"INSERT INTO test_run_results (test_run_id, scenario_id, status, notes, executed_at, executed_by) VALUES (?, ?, ?, ?, ?, ?)",
		res.TestRunID, res.ScenarioID, res.Status,
		nullString(res.Notes), nullInt64(res.ExecutedAt), nullString(res.ExecutedBy),
	)
	if err != nil {
		return fmt.Errorf("failed to create test run result: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read test run result id: %w", err)
	}
	res.ID = id
	return nil
}

// GetByID retrieves a result whose owning run belongs to orgID.
func (r *TestRunResultRepository) GetByID(ctx context.Context, id, orgID int64) (*secondary.TestRunResultRecord, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+resultSelectCols+` FROM test_run_results r
		 JOIN test_runs tr ON tr.id = r.test_run_id
		 WHERE r.id = ? AND tr.organization_id = ?`,
		id, orgID,
	)
	record, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("test run result %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get test run result: %w", err)
	}
	return record, nil
}

// Update writes all mutable fields, tenant-checked via the owning run.
func (r *TestRunResultRepository) Update(ctx context.Context, res *secondary.TestRunResultRecord, orgID int64) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE test_run_results SET status = ?, notes = ?, executed_at = ?, executed_by = ?
		 WHERE id = ? AND test_run_id IN (SELECT id FROM test_runs WHERE organization_id = ?)`,
		res.Status, nullString(res.Notes), nullInt64(res.ExecutedAt), nullString(res.ExecutedBy),
		res.ID, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to update test run result: %w", err)
	}
	return requireAffected(result, "test run result", res.ID)
}

// Delete removes a result, tenant-checked via the owning run.
func (r *TestRunResultRepository) Delete(ctx context.Context, id, orgID int64) error {
	result, err := r.q.ExecContext(ctx,
		`DELETE FROM test_run_results
		 WHERE id = ? AND test_run_id IN (SELECT id FROM test_runs WHERE organization_id = ?)`,
		id, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete test run result: %w", err)
	}
	return requireAffected(result, "test run result", id)
}

// ListByRun retrieves a run's results ordered by id.
func (r *TestRunResultRepository) ListByRun(ctx context.Context, runID int64) ([]*secondary.TestRunResultRecord, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+resultSelectCols+" FROM test_run_results r WHERE r.test_run_id = ? ORDER BY r.id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list test run results: %w", err)
	}
	defer rows.Close()

	var records []*secondary.TestRunResultRecord
	for rows.Next() {
		record, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test run result: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
