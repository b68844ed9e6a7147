package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_legacy_id_to_test_cases",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_linear_references_to_test_runs",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_session_id_to_write_log",
		Up:      migrationV3,
	},
}

// RunMigrations applies any migrations not yet recorded in schema_version.
func RunMigrations(database *sql.DB) error {
	if _, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	for _, m := range migrations {
		var applied int
		err := database.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", m.Version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.Version, err)
		}
		if applied > 0 {
			continue
		}

		if err := m.Up(database); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := database.Exec("INSERT INTO schema_version (version, applied_at) VALUES (?, strftime('%s','now') * 1000)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}

	return nil
}

func migrationV1(database *sql.DB) error {
	_, err := database.Exec("ALTER TABLE test_cases ADD COLUMN legacy_id TEXT")
	return err
}

func migrationV2(database *sql.DB) error {
	for _, col := range []string{"linear_issue_id", "linear_project_id", "linear_milestone_id"} {
		if _, err := database.Exec(fmt.Sprintf("ALTER TABLE test_runs ADD COLUMN %s TEXT", col)); err != nil {
			return err
		}
	}
	return nil
}

func migrationV3(database *sql.DB) error {
	_, err := database.Exec("ALTER TABLE mcp_write_log ADD COLUMN session_id TEXT")
	return err
}
