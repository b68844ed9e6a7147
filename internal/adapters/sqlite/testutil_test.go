// Package sqlite_test contains integration tests for the SQLite repositories.
//
// All test setup uses db.GetSchemaSQL() so tests always run against the
// authoritative schema. Do not hardcode CREATE TABLE statements in test
// files; use newTestStore() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/testdeck/internal/adapters/sqlite"
	"github.com/example/testdeck/internal/db"
	"github.com/example/testdeck/internal/ports/secondary"
)

// newTestStore creates a store over an in-memory database carrying the
// authoritative schema, with foreign keys enforced.
func newTestStore(t *testing.T) (*sqlite.Store, *sql.DB) {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return sqlite.NewStore(testDB), testDB
}

// seedOrg inserts a test organization and returns its id.
func seedOrg(t *testing.T, database *sql.DB, name string) int64 {
	t.Helper()
	if name == "" {
		name = "Test Org"
	}
	res, err := database.Exec("INSERT INTO organizations (name, created_at) VALUES (?, 1000)", name)
	if err != nil {
		t.Fatalf("failed to seed organization: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedFolder inserts a test folder and returns its id.
func seedFolder(t *testing.T, database *sql.DB, orgID int64, name string) int64 {
	t.Helper()
	if name == "" {
		name = "Test Folder"
	}
	res, err := database.Exec(
		"INSERT INTO folders (name, parent_id, position, organization_id) VALUES (?, NULL, 0, ?)",
		name, orgID)
	if err != nil {
		t.Fatalf("failed to seed folder: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedTestCase inserts a test case and returns its id.
func seedTestCase(t *testing.T, database *sql.DB, orgID int64, title string) int64 {
	t.Helper()
	if title == "" {
		title = "Test Case"
	}
	res, err := database.Exec(`
		INSERT INTO test_cases (title, folder_id, position, template, state, priority, organization_id,
			created_at, updated_at, created_by, updated_by)
		VALUES (?, NULL, 0, 'gherkin', 'draft', 'normal', ?, 1000, 1000, 'seed', 'seed')`,
		title, orgID)
	if err != nil {
		t.Fatalf("failed to seed test case: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedScenario inserts a scenario under a test case and returns its id.
func seedScenario(t *testing.T, database *sql.DB, caseID int64, title string) int64 {
	t.Helper()
	if title == "" {
		title = "Test Scenario"
	}
	res, err := database.Exec(`
		INSERT INTO scenarios (test_case_id, title, gherkin, position, created_at, updated_at)
		VALUES (?, ?, 'Given a thing', 0, 1000, 1000)`,
		caseID, title)
	if err != nil {
		t.Fatalf("failed to seed scenario: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedTestRun inserts a test run and returns its id.
func seedTestRun(t *testing.T, database *sql.DB, orgID int64, name string) int64 {
	t.Helper()
	if name == "" {
		name = "Test Run"
	}
	res, err := database.Exec(`
		INSERT INTO test_runs (name, organization_id, status, created_at, created_by)
		VALUES (?, ?, 'in_progress', 1000, 'seed')`,
		name, orgID)
	if err != nil {
		t.Fatalf("failed to seed test run: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedResult inserts a pending result row and returns its id.
func seedResult(t *testing.T, database *sql.DB, runID, scenarioID int64) int64 {
	t.Helper()
	res, err := database.Exec(`
		INSERT INTO test_run_results (test_run_id, scenario_id, status) VALUES (?, ?, 'pending')`,
		runID, scenarioID)
	if err != nil {
		t.Fatalf("failed to seed result: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// repos is shorthand for the plain (non-transactional) repositories.
func repos(store *sqlite.Store) secondary.Repositories {
	return store.Repos()
}
