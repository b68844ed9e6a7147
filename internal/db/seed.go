package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures: one
// organization with a small folder tree, a few test cases with scenarios,
// and an in-progress run. Intended for `testdeck init --seed`.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UnixMilli()

	if _, err := database.Exec(
		"INSERT INTO organizations (id, name, created_at) VALUES (1, 'acme', ?)", now,
	); err != nil {
		return fmt.Errorf("seed organization: %w", err)
	}

	folders := []struct {
		id       int64
		name     string
		parent   any
		position int
	}{
		{1, "Checkout", nil, 0},
		{2, "Payments", int64(1), 0},
		{3, "Refunds", int64(1), 1},
	}
	for _, f := range folders {
		if _, err := database.Exec(
			"INSERT INTO folders (id, name, parent_id, position, organization_id) VALUES (?, ?, ?, ?, 1)",
			f.id, f.name, f.parent, f.position,
		); err != nil {
			return fmt.Errorf("seed folders: %w", err)
		}
	}

	cases := []struct {
		id       int64
		title    string
		folderID int64
		state    string
		priority string
	}{
		{1, "Card payment succeeds", 2, "active", "critical"},
		{2, "Declined card shows error", 2, "active", "high"},
		{3, "Partial refund", 3, "draft", "normal"},
	}
	for _, c := range cases {
		if _, err := database.Exec(
			`INSERT INTO test_cases (id, title, folder_id, position, state, priority, organization_id, created_at, updated_at, created_by, updated_by)
			 VALUES (?, ?, ?, 0, ?, ?, 1, ?, ?, 'seed', 'seed')`,
			c.id, c.title, c.folderID, c.state, c.priority, now, now,
		); err != nil {
			return fmt.Errorf("seed test cases: %w", err)
		}
	}

	scenarios := []struct {
		id      int64
		caseID  int64
		title   string
		gherkin string
	}{
		{1, 1, "Happy path", "Given a valid card\nWhen the customer pays\nThen the order is confirmed"},
		{2, 1, "3DS challenge", "Given a card requiring 3DS\nWhen the customer pays\nThen the challenge is shown"},
		{3, 2, "Declined card", "Given a declined card\nWhen the customer pays\nThen an error is shown"},
	}
	for _, s := range scenarios {
		if _, err := database.Exec(
			"INSERT INTO scenarios (id, test_case_id, title, gherkin, position, created_at, updated_at) VALUES (?, ?, ?, ?, 0, ?, ?)",
			s.id, s.caseID, s.title, s.gherkin, now, now,
		); err != nil {
			return fmt.Errorf("seed scenarios: %w", err)
		}
	}

	if _, err := database.Exec(
		"INSERT INTO test_runs (id, name, organization_id, status, created_at, created_by) VALUES (1, 'Release 1.4 smoke', 1, 'in_progress', ?, 'seed')", now,
	); err != nil {
		return fmt.Errorf("seed test run: %w", err)
	}
	for i, scenarioID := range []int64{1, 2, 3} {
		if _, err := database.Exec(
			"INSERT INTO test_run_results (id, test_run_id, scenario_id, status) VALUES (?, 1, ?, 'pending')",
			int64(i+1), scenarioID,
		); err != nil {
			return fmt.Errorf("seed test run results: %w", err)
		}
	}

	return nil
}
