// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// the entity store; every read and write on them is scoped by organization.
package secondary

import (
	"context"
	"errors"
)

// ErrNotFound reports that a row is absent or belongs to another organization.
// The two cases are indistinguishable on purpose: repositories never leak
// whether a guessed id exists in a different tenant.
var ErrNotFound = errors.New("not found")

// FolderRepository defines the secondary port for folder persistence.
type FolderRepository interface {
	// Create persists a new folder. A non-zero record ID is inserted
	// explicitly (history restores depend on this); zero lets the store
	// assign one and sets it on the record.
	Create(ctx context.Context, folder *FolderRecord) error

	// GetByID retrieves a folder by id within an organization.
	GetByID(ctx context.Context, id, orgID int64) (*FolderRecord, error)

	// Update writes all mutable fields of the record, scoped by id and
	// organization.
	Update(ctx context.Context, folder *FolderRecord) error

	// Delete removes a folder. Fails with ErrNotFound if no row matched.
	Delete(ctx context.Context, id, orgID int64) error

	// List retrieves folders for an organization ordered by position.
	List(ctx context.Context, orgID int64, filters FolderFilters) ([]*FolderRecord, error)

	// CountChildren returns the number of child folders and test cases
	// still referencing the folder.
	CountChildren(ctx context.Context, id, orgID int64) (int, error)
}

// FolderRecord represents a folder as stored in persistence.
// ParentID zero means the folder is a root.
type FolderRecord struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	ParentID       int64  `json:"parentId,omitempty"`
	Position       int    `json:"position"`
	OrganizationID int64  `json:"organizationId"`
}

// FolderFilters contains filter options for querying folders.
type FolderFilters struct {
	ParentID int64 // 0 = all folders
	Limit    int
}

// TestCaseRepository defines the secondary port for test case persistence.
type TestCaseRepository interface {
	// Create persists a new test case, honoring an explicit id when set.
	Create(ctx context.Context, tc *TestCaseRecord) error

	// GetByID retrieves a test case by id within an organization.
	GetByID(ctx context.Context, id, orgID int64) (*TestCaseRecord, error)

	// Update writes all mutable fields, scoped by id and organization.
	Update(ctx context.Context, tc *TestCaseRecord) error

	// Delete removes a test case; owned scenarios cascade.
	Delete(ctx context.Context, id, orgID int64) error

	// List retrieves test cases matching the given filters.
	List(ctx context.Context, orgID int64, filters TestCaseFilters) ([]*TestCaseRecord, error)
}

// TestCaseRecord represents a test case as stored in persistence.
// FolderID zero means the case lives outside any folder. Timestamps are
// epoch milliseconds.
type TestCaseRecord struct {
	ID             int64  `json:"id"`
	LegacyID       string `json:"legacyId,omitempty"`
	Title          string `json:"title"`
	FolderID       int64  `json:"folderId,omitempty"`
	Position       int    `json:"position"`
	Template       string `json:"template"`
	State          string `json:"state"`
	Priority       string `json:"priority"`
	OrganizationID int64  `json:"organizationId"`
	CreatedAt      int64  `json:"createdAt"`
	UpdatedAt      int64  `json:"updatedAt"`
	CreatedBy      string `json:"createdBy"`
	UpdatedBy      string `json:"updatedBy"`
}

// TestCaseFilters contains filter options for querying test cases.
type TestCaseFilters struct {
	FolderID int64
	State    string
	Priority string
	Limit    int
}

// ScenarioRepository defines the secondary port for scenario persistence.
// Scenarios carry no organization column of their own; tenancy is enforced
// through the owning test case on every operation.
type ScenarioRepository interface {
	// Create persists a new scenario, honoring an explicit id when set.
	Create(ctx context.Context, sc *ScenarioRecord) error

	// GetByID retrieves a scenario whose owning test case belongs to orgID.
	GetByID(ctx context.Context, id, orgID int64) (*ScenarioRecord, error)

	// Update writes all mutable fields, tenant-checked via the owning case.
	Update(ctx context.Context, sc *ScenarioRecord, orgID int64) error

	// Delete removes a scenario, tenant-checked via the owning case.
	Delete(ctx context.Context, id, orgID int64) error

	// ListByTestCase retrieves a case's scenarios ordered by position.
	ListByTestCase(ctx context.Context, testCaseID int64) ([]*ScenarioRecord, error)
}

// ScenarioRecord represents a scenario as stored in persistence.
// The gherkin body is opaque text.
type ScenarioRecord struct {
	ID         int64  `json:"id"`
	TestCaseID int64  `json:"testCaseId"`
	Title      string `json:"title"`
	Gherkin    string `json:"gherkin"`
	Position   int    `json:"position"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

// TestRunRepository defines the secondary port for test run persistence.
type TestRunRepository interface {
	// Create persists a new test run, honoring an explicit id when set.
	Create(ctx context.Context, run *TestRunRecord) error

	// GetByID retrieves a test run by id within an organization.
	GetByID(ctx context.Context, id, orgID int64) (*TestRunRecord, error)

	// Update writes all mutable fields, scoped by id and organization.
	Update(ctx context.Context, run *TestRunRecord) error

	// Delete removes a test run; owned results cascade.
	Delete(ctx context.Context, id, orgID int64) error

	// List retrieves test runs for an organization, newest first.
	List(ctx context.Context, orgID int64, filters TestRunFilters) ([]*TestRunRecord, error)
}

// TestRunRecord represents a test run as stored in persistence.
type TestRunRecord struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	OrganizationID    int64  `json:"organizationId"`
	Status            string `json:"status"`
	CreatedAt         int64  `json:"createdAt"`
	CreatedBy         string `json:"createdBy"`
	LinearIssueID     string `json:"linearIssueId,omitempty"`
	LinearProjectID   string `json:"linearProjectId,omitempty"`
	LinearMilestoneID string `json:"linearMilestoneId,omitempty"`
}

// TestRunFilters contains filter options for querying test runs.
type TestRunFilters struct {
	Status string
	Limit  int
}

// TestRunResultRepository defines the secondary port for per-scenario
// results, tenant-checked through the owning run.
type TestRunResultRepository interface {
	// Create persists a new result row, honoring an explicit id when set.
	Create(ctx context.Context, res *TestRunResultRecord) error

	// GetByID retrieves a result whose owning run belongs to orgID.
	GetByID(ctx context.Context, id, orgID int64) (*TestRunResultRecord, error)

	// Update writes all mutable fields, tenant-checked via the owning run.
	Update(ctx context.Context, res *TestRunResultRecord, orgID int64) error

	// Delete removes a result, tenant-checked via the owning run.
	Delete(ctx context.Context, id, orgID int64) error

	// ListByRun retrieves a run's results ordered by id.
	ListByRun(ctx context.Context, runID int64) ([]*TestRunResultRecord, error)
}

// TestRunResultRecord represents a test run result as stored in persistence.
// ExecutedAt zero means the scenario has not been executed yet.
type TestRunResultRecord struct {
	ID         int64  `json:"id"`
	TestRunID  int64  `json:"testRunId"`
	ScenarioID int64  `json:"scenarioId"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
	ExecutedAt int64  `json:"executedAt,omitempty"`
	ExecutedBy string `json:"executedBy,omitempty"`
}

// OrganizationRepository defines the secondary port for tenants.
type OrganizationRepository interface {
	// Create persists a new organization.
	Create(ctx context.Context, org *OrganizationRecord) error

	// GetByID retrieves an organization.
	GetByID(ctx context.Context, id int64) (*OrganizationRecord, error)

	// GetByName retrieves an organization by its unique name.
	GetByName(ctx context.Context, name string) (*OrganizationRecord, error)
}

// OrganizationRecord represents a tenant as stored in persistence.
type OrganizationRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}
