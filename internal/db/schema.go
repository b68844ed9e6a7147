package db

// SchemaSQL is the complete schema for fresh testdeck installs.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(). If repository code references a column that
// doesn't exist here, tests fail immediately with "no such column" instead of
// drifting silently.
//
// All timestamps are stored as INTEGER epoch milliseconds so that history
// snapshots survive the JSON round-trip without precision loss or timezone
// ambiguity. All entity ids are INTEGER PRIMARY KEY, which sqlite lets us
// reinsert at explicit values — the delete-undo path depends on that to keep
// foreign-key references (test_run_results → scenarios) valid after a restore.
const SchemaSQL = `
-- Organizations (tenant boundary; every other table is scoped by it)
CREATE TABLE IF NOT EXISTS organizations (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL
);

-- Folders (self-referential tree, unbounded depth)
CREATE TABLE IF NOT EXISTS folders (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	parent_id INTEGER REFERENCES folders(id),
	position INTEGER NOT NULL DEFAULT 0,
	organization_id INTEGER NOT NULL REFERENCES organizations(id)
);

CREATE INDEX IF NOT EXISTS idx_folders_org ON folders(organization_id);
CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(parent_id);

-- Test cases
CREATE TABLE IF NOT EXISTS test_cases (
	id INTEGER PRIMARY KEY,
	legacy_id TEXT,
	title TEXT NOT NULL,
	folder_id INTEGER REFERENCES folders(id),
	position INTEGER NOT NULL DEFAULT 0,
	template TEXT NOT NULL DEFAULT 'gherkin',
	state TEXT NOT NULL CHECK(state IN ('active', 'draft', 'upcoming', 'retired', 'rejected')) DEFAULT 'draft',
	priority TEXT NOT NULL CHECK(priority IN ('normal', 'high', 'critical')) DEFAULT 'normal',
	organization_id INTEGER NOT NULL REFERENCES organizations(id),
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	updated_by TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_test_cases_org ON test_cases(organization_id);
CREATE INDEX IF NOT EXISTS idx_test_cases_folder ON test_cases(folder_id);

-- Scenarios (owned by a test case; gherkin body is opaque text)
CREATE TABLE IF NOT EXISTS scenarios (
	id INTEGER PRIMARY KEY,
	test_case_id INTEGER NOT NULL REFERENCES test_cases(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	gherkin TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scenarios_case ON scenarios(test_case_id);

-- Test runs
CREATE TABLE IF NOT EXISTS test_runs (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	organization_id INTEGER NOT NULL REFERENCES organizations(id),
	status TEXT NOT NULL CHECK(status IN ('in_progress', 'completed')) DEFAULT 'in_progress',
	created_at INTEGER NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	linear_issue_id TEXT,
	linear_project_id TEXT,
	linear_milestone_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_test_runs_org ON test_runs(organization_id);

-- Test run results (one per selected scenario at run creation)
CREATE TABLE IF NOT EXISTS test_run_results (
	id INTEGER PRIMARY KEY,
	test_run_id INTEGER NOT NULL REFERENCES test_runs(id) ON DELETE CASCADE,
	scenario_id INTEGER NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'passed', 'failed', 'blocked', 'skipped')) DEFAULT 'pending',
	notes TEXT,
	executed_at INTEGER,
	executed_by TEXT
);

CREATE INDEX IF NOT EXISTS idx_test_run_results_run ON test_run_results(test_run_id);

-- Undo/redo ledger for UI-driven actions. Two stacks in one table,
-- distinguished by is_redo and ordered by created_at (top = most recent).
CREATE TABLE IF NOT EXISTS undo_stack (
	id INTEGER PRIMARY KEY,
	action_type TEXT NOT NULL,
	description TEXT NOT NULL,
	undo_data TEXT NOT NULL,
	is_redo INTEGER NOT NULL DEFAULT 0,
	organization_id INTEGER NOT NULL REFERENCES organizations(id),
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_undo_stack_org ON undo_stack(organization_id, is_redo, created_at);

-- Append-only audit trail of MCP tool-call writes. Rows are never deleted;
-- undone_at/undone_by are set exactly once when an entry is undone.
CREATE TABLE IF NOT EXISTS mcp_write_log (
	id INTEGER PRIMARY KEY,
	organization_id INTEGER NOT NULL REFERENCES organizations(id),
	user_id TEXT NOT NULL,
	client_id TEXT NOT NULL,
	session_id TEXT,
	tool_name TEXT NOT NULL,
	tool_args TEXT NOT NULL DEFAULT '{}',
	entity_type TEXT NOT NULL CHECK(entity_type IN ('folder', 'test_case', 'scenario', 'test_run', 'test_result')),
	entity_id INTEGER,
	before_state TEXT,
	after_state TEXT,
	status TEXT NOT NULL CHECK(status IN ('success', 'failed')),
	error_message TEXT,
	undone_at INTEGER,
	undone_by TEXT,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_write_log_org ON mcp_write_log(organization_id);
CREATE INDEX IF NOT EXISTS idx_write_log_user ON mcp_write_log(user_id);
CREATE INDEX IF NOT EXISTS idx_write_log_created ON mcp_write_log(created_at);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
