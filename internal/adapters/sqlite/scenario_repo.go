package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/testdeck/internal/ports/secondary"
)

// ScenarioRepository implements secondary.ScenarioRepository with SQLite.
// Scenarios have no organization column; every tenant check goes through
// the owning test case.
type ScenarioRepository struct {
	q DBTX
}

// NewScenarioRepository creates a new SQLite scenario repository.
func NewScenarioRepository(q DBTX) *ScenarioRepository {
	return &ScenarioRepository{q: q}
}

const scenarioSelectCols = "s.id, s.test_case_id, s.title, s.gherkin, s.position, s.created_at, s.updated_at"

// scanScenario scans a scenario row into a ScenarioRecord.
func scanScenario(scanner interface {
	Scan(dest ...any) error
}) (*secondary.ScenarioRecord, error) {
	record := &secondary.ScenarioRecord{}
	err := scanner.Scan(
		&record.ID, &record.TestCaseID, &record.Title, &record.Gherkin,
		&record.Position, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Create persists a new scenario, honoring an explicit id when set.
func (r *ScenarioRepository) Create(ctx context.Context, sc *secondary.ScenarioRecord) error {
	if sc.ID != 0 {
		_, err := r.q.ExecContext(ctx,
			"INSERT INTO scenarios (id, test_case_id, title, gherkin, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			sc.ID, sc.TestCaseID, sc.Title, sc.Gherkin, sc.Position, sc.CreatedAt, sc.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create scenario: %w", err)
		}
		return nil
	}

	res, err := r.q.ExecContext(ctx,
		"INSERT INTO scenarios (test_case_id, title, gherkin, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		sc.TestCaseID, sc.Title, sc.Gherkin, sc.Position, sc.CreatedAt, sc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scenario: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read scenario id: %w", err)
	}
	sc.ID = id
	return nil
}

// GetByID retrieves a scenario whose owning test case belongs to orgID.
func (r *ScenarioRepository) GetByID(ctx context.Context, id, orgID int64) (*secondary.ScenarioRecord, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+scenarioSelectCols+` FROM scenarios s
		 JOIN test_cases tc ON tc.id = s.test_case_id
		 WHERE s.id = ? AND tc.organization_id = ?`,
		id, orgID,
	)
	record, err := scanScenario(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scenario %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	return record, nil
}

// Update writes all mutable fields, tenant-checked via the owning case.
func (r *ScenarioRepository) Update(ctx context.Context, sc *secondary.ScenarioRecord, orgID int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE scenarios SET title = ?, gherkin = ?, position = ?, updated_at = ?
		 WHERE id = ? AND test_case_id IN (SELECT id FROM test_cases WHERE organization_id = ?)`,
		sc.Title, sc.Gherkin, sc.Position, sc.UpdatedAt, sc.ID, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to update scenario: %w", err)
	}
	return requireAffected(res, "scenario", sc.ID)
}

// Delete removes a scenario, tenant-checked via the owning case.
func (r *ScenarioRepository) Delete(ctx context.Context, id, orgID int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM scenarios
		 WHERE id = ? AND test_case_id IN (SELECT id FROM test_cases WHERE organization_id = ?)`,
		id, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	return requireAffected(res, "scenario", id)
}

// ListByTestCase retrieves a case's scenarios ordered by position.
func (r *ScenarioRepository) ListByTestCase(ctx context.Context, testCaseID int64) ([]*secondary.ScenarioRecord, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+scenarioSelectCols+" FROM scenarios s WHERE s.test_case_id = ? ORDER BY s.position, s.id",
		testCaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var records []*secondary.ScenarioRecord
	for rows.Next() {
		record, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
