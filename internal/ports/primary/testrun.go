package primary

import "context"

// TestRunService defines the primary port for test run operations.
type TestRunService interface {
	// CreateTestRun creates a run with one pending result per selected
	// scenario.
	CreateTestRun(ctx context.Context, req CreateTestRunRequest) (*TestRun, error)

	// GetTestRun retrieves a run with its results.
	GetTestRun(ctx context.Context, id, orgID int64) (*TestRun, error)

	// ListTestRuns lists an organization's runs, newest first.
	ListTestRuns(ctx context.Context, orgID int64, filters TestRunFilters) ([]*TestRun, error)

	// RecordResult sets the status/notes of one result row. A no-op
	// (status and notes unchanged) records nothing on the undo stack.
	RecordResult(ctx context.Context, req RecordResultRequest) (*TestRunResult, error)

	// CloseTestRun marks a run completed. Closing is terminal and is not
	// tracked on the undo stack.
	CloseTestRun(ctx context.Context, id, orgID int64) error

	// DeleteTestRun deletes a run and its results.
	DeleteTestRun(ctx context.Context, id, orgID int64, actor string) error
}

// TestRun is an execution of a selected set of scenarios. Results is
// populated on detail reads.
type TestRun struct {
	ID                int64
	Name              string
	OrganizationID    int64
	Status            string
	CreatedAt         int64
	CreatedBy         string
	LinearIssueID     string
	LinearProjectID   string
	LinearMilestoneID string
	Results           []*TestRunResult
}

// TestRunResult is the outcome of one scenario within a run.
type TestRunResult struct {
	ID         int64
	TestRunID  int64
	ScenarioID int64
	Status     string
	Notes      string
	ExecutedAt int64
	ExecutedBy string
}

// TestRunFilters contains filter options for listing runs.
type TestRunFilters struct {
	Status string
	Limit  int
}

// CreateTestRunRequest contains parameters for creating a run.
type CreateTestRunRequest struct {
	OrganizationID    int64
	Actor             string
	Name              string
	ScenarioIDs       []int64
	LinearIssueID     string
	LinearProjectID   string
	LinearMilestoneID string
}

// RecordResultRequest contains parameters for recording a result.
type RecordResultRequest struct {
	OrganizationID int64
	Actor          string
	ResultID       int64
	Status         string
	Notes          string
}
