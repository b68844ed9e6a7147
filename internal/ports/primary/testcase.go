package primary

import "context"

// TestCaseService defines the primary port for test case and scenario
// operations, including the bulk operations the UI drives.
type TestCaseService interface {
	// CreateTestCase creates a new test case.
	CreateTestCase(ctx context.Context, req CreateTestCaseRequest) (*TestCase, error)

	// GetTestCase retrieves a test case with its ordered scenarios.
	GetTestCase(ctx context.Context, id, orgID int64) (*TestCase, error)

	// ListTestCases lists test cases matching the filters.
	ListTestCases(ctx context.Context, orgID int64, filters TestCaseFilters) ([]*TestCase, error)

	// UpdateTestCase updates a test case's fields. A no-op update records
	// nothing on the undo stack.
	UpdateTestCase(ctx context.Context, req UpdateTestCaseRequest) (*TestCase, error)

	// DeleteTestCase deletes a test case and its scenarios.
	DeleteTestCase(ctx context.Context, id, orgID int64, actor string) error

	// BulkDeleteTestCases deletes several test cases as one reversible
	// action. Missing ids are skipped and reported, not fatal.
	BulkDeleteTestCases(ctx context.Context, req BulkTestCaseRequest) (*BulkResult, error)

	// BulkUpdateTestCases applies the same field changes to several test
	// cases as one reversible action.
	BulkUpdateTestCases(ctx context.Context, req BulkUpdateTestCasesRequest) (*BulkResult, error)

	// BulkMoveTestCases moves several test cases to a folder as one
	// reversible action.
	BulkMoveTestCases(ctx context.Context, req BulkMoveTestCasesRequest) (*BulkResult, error)

	// ReorderTestCases rewrites the position of each listed test case to
	// its index in the list, as one reversible action.
	ReorderTestCases(ctx context.Context, req ReorderTestCasesRequest) error

	// CreateScenario adds a scenario to a test case.
	CreateScenario(ctx context.Context, req CreateScenarioRequest) (*Scenario, error)

	// UpdateScenario updates a scenario's title, gherkin, or position.
	UpdateScenario(ctx context.Context, req UpdateScenarioRequest) (*Scenario, error)

	// DeleteScenario deletes a scenario.
	DeleteScenario(ctx context.Context, id, orgID int64, actor string) error
}

// TestCase is a Gherkin-style test case. Scenarios is populated on detail
// reads, ordered by position.
type TestCase struct {
	ID             int64
	LegacyID       string
	Title          string
	FolderID       int64
	Position       int
	Template       string
	State          string
	Priority       string
	OrganizationID int64
	CreatedAt      int64
	UpdatedAt      int64
	CreatedBy      string
	UpdatedBy      string
	Scenarios      []*Scenario
}

// Scenario is one given/when/then scenario owned by a test case. The
// gherkin body is opaque text.
type Scenario struct {
	ID         int64
	TestCaseID int64
	Title      string
	Gherkin    string
	Position   int
	CreatedAt  int64
	UpdatedAt  int64
}

// TestCaseFilters contains filter options for listing test cases.
type TestCaseFilters struct {
	FolderID int64
	State    string
	Priority string
	Limit    int
}

// CreateTestCaseRequest contains parameters for creating a test case.
type CreateTestCaseRequest struct {
	OrganizationID int64
	Actor          string
	Title          string
	FolderID       int64
	Position       int
	Template       string
	State          string
	Priority       string
	LegacyID       string
}

// UpdateTestCaseRequest contains parameters for updating a test case.
// Nil fields are left unchanged.
type UpdateTestCaseRequest struct {
	OrganizationID int64
	Actor          string
	TestCaseID     int64
	Title          *string
	FolderID       *int64
	Position       *int
	Template       *string
	State          *string
	Priority       *string
}

// BulkTestCaseRequest names a set of test cases for a bulk action.
type BulkTestCaseRequest struct {
	OrganizationID int64
	Actor          string
	TestCaseIDs    []int64
}

// BulkUpdateTestCasesRequest contains parameters for a bulk field update.
// Nil fields are left unchanged on every case.
type BulkUpdateTestCasesRequest struct {
	OrganizationID int64
	Actor          string
	TestCaseIDs    []int64
	State          *string
	Priority       *string
}

// BulkMoveTestCasesRequest contains parameters for a bulk folder move.
// FolderID zero moves the cases out of any folder.
type BulkMoveTestCasesRequest struct {
	OrganizationID int64
	Actor          string
	TestCaseIDs    []int64
	FolderID       int64
}

// ReorderTestCasesRequest lists test cases in their new order.
type ReorderTestCasesRequest struct {
	OrganizationID int64
	Actor          string
	TestCaseIDs    []int64
}

// BulkResult reports how a bulk action fared per item.
type BulkResult struct {
	Affected int
	Skipped  []int64 // ids that were missing or unchanged
}

// CreateScenarioRequest contains parameters for adding a scenario.
type CreateScenarioRequest struct {
	OrganizationID int64
	Actor          string
	TestCaseID     int64
	Title          string
	Gherkin        string
	Position       int
}

// UpdateScenarioRequest contains parameters for updating a scenario.
// Nil fields are left unchanged.
type UpdateScenarioRequest struct {
	OrganizationID int64
	Actor          string
	ScenarioID     int64
	Title          *string
	Gherkin        *string
	Position       *int
}
