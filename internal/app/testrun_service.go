package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/testdeck/internal/ports/primary"
	"github.com/example/testdeck/internal/ports/secondary"
)

// TestRunServiceImpl implements test run operations. Creating a run seeds
// one pending result per selected scenario; the run and its results are one
// reversible action.
type TestRunServiceImpl struct {
	tx    secondary.TxRunner
	repos secondary.Repositories
	now   func() int64
}

// NewTestRunService creates a new test run service.
func NewTestRunService(tx secondary.TxRunner, repos secondary.Repositories) *TestRunServiceImpl {
	return &TestRunServiceImpl{
		tx:    tx,
		repos: repos,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// CreateTestRun creates a run with a pending result for each scenario and
// records the creation as one reversible action. Every scenario id must
// resolve within the organization.
func (s *TestRunServiceImpl) CreateTestRun(ctx context.Context, req primary.CreateTestRunRequest) (*primary.TestRun, error) {
	run := &secondary.TestRunRecord{
		Name:              req.Name,
		OrganizationID:    req.OrganizationID,
		Status:            "in_progress",
		CreatedAt:         s.now(),
		CreatedBy:         req.Actor,
		LinearIssueID:     req.LinearIssueID,
		LinearProjectID:   req.LinearProjectID,
		LinearMilestoneID: req.LinearMilestoneID,
	}
	var results []*secondary.TestRunResultRecord

	err := s.tx.InTx(ctx, func(r secondary.Repositories) error {
		for _, scID := range req.ScenarioIDs {
			if _, err := r.Scenarios.GetByID(ctx, scID, req.OrganizationID); err != nil {
				return fmt.Errorf("scenario %d: %w", scID, err)
			}
		}

		if err := r.TestRuns.Create(ctx, run); err != nil {
			return err
		}
		for _, scID := range req.ScenarioIDs {
			res := &secondary.TestRunResultRecord{
				TestRunID:  run.ID,
				ScenarioID: scID,
				Status:     "pending",
			}
			if err := r.TestRunResults.Create(ctx, res); err != nil {
				return err
			}
			results = append(results, res)
		}

		return recordEntry(ctx, r, req.OrganizationID, ActionCreateTestRun,
			fmt.Sprintf("Created test run %q", run.Name),
			testRunPayload{EntityID: run.ID}, s.now())
	})
	if err != nil {
		return nil, err
	}
	return testRunFromRecord(run, results), nil
}

// GetTestRun retrieves a run with its results.
func (s *TestRunServiceImpl) GetTestRun(ctx context.Context, id, orgID int64) (*primary.TestRun, error) {
	run, err := s.repos.TestRuns.GetByID(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	results, err := s.repos.TestRunResults.ListByRun(ctx, id)
	if err != nil {
		return nil, err
	}
	return testRunFromRecord(run, results), nil
}

// ListTestRuns lists an organization's runs, newest first, without results.
func (s *TestRunServiceImpl) ListTestRuns(ctx context.Context, orgID int64, filters primary.TestRunFilters) ([]*primary.TestRun, error) {
	records, err := s.repos.TestRuns.List(ctx, orgID, secondary.TestRunFilters{
		Status: filters.Status,
		Limit:  filters.Limit,
	})
	if err != nil {
		return nil, err
	}
	runs := make([]*primary.TestRun, len(records))
	for i, rec := range records {
		runs[i] = testRunFromRecord(rec, nil)
	}
	return runs, nil
}

// RecordResult sets one result row's status and notes. The displaced values
// go on the undo stack; recording the same status and notes again is a
// no-op.
func (s *TestRunServiceImpl) RecordResult(ctx context.Context, req primary.RecordResultRequest) (*primary.TestRunResult, error) {
	var updated *secondary.TestRunResultRecord

	err := s.tx.InTx(ctx, func(r secondary.Repositories) error {
		before, err := r.TestRunResults.GetByID(ctx, req.ResultID, req.OrganizationID)
		if err != nil {
			return err
		}

		run, err := r.TestRuns.GetByID(ctx, before.TestRunID, req.OrganizationID)
		if err != nil {
			return err
		}
		if run.Status != "in_progress" {
			return fmt.Errorf("test run %q is closed: %w", run.Name, ErrInvalidState)
		}

		after := *before
		after.Status = req.Status
		after.Notes = req.Notes

		changes, err := diffRecords(before, &after)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			updated = before
			return nil
		}

		after.ExecutedAt = s.now()
		after.ExecutedBy = req.Actor
		if err := r.TestRunResults.Update(ctx, &after, req.OrganizationID); err != nil {
			return err
		}
		updated = &after

		return recordEntry(ctx, r, req.OrganizationID, ActionUpdateTestResult,
			fmt.Sprintf("Recorded result %s for scenario %d", req.Status, after.ScenarioID),
			valuesPayload{EntityID: after.ID, Values: changedValues(changes)}, s.now())
	})
	if err != nil {
		return nil, err
	}
	return resultFromRecord(updated), nil
}

// CloseTestRun marks a run completed. Closing is terminal: it is not put on
// the undo stack, and a closed run accepts no further results.
func (s *TestRunServiceImpl) CloseTestRun(ctx context.Context, id, orgID int64) error {
	return s.tx.InTx(ctx, func(r secondary.Repositories) error {
		run, err := r.TestRuns.GetByID(ctx, id, orgID)
		if err != nil {
			return err
		}
		if run.Status == "completed" {
			return fmt.Errorf("test run %q already completed: %w", run.Name, ErrInvalidState)
		}
		run.Status = "completed"
		return r.TestRuns.Update(ctx, run)
	})
}

// DeleteTestRun deletes a run with its results and records the deletion
// with a full snapshot.
func (s *TestRunServiceImpl) DeleteTestRun(ctx context.Context, id, orgID int64, actor string) error {
	return s.tx.InTx(ctx, func(r secondary.Repositories) error {
		snap, err := NewCodec(r).CaptureTestRun(ctx, id, orgID)
		if err != nil {
			return err
		}
		if err := r.TestRuns.Delete(ctx, id, orgID); err != nil {
			return err
		}
		return recordEntry(ctx, r, orgID, ActionDeleteTestRun,
			fmt.Sprintf("Deleted test run %q", snap.Name),
			testRunPayload{Snapshot: snap}, s.now())
	})
}

func testRunFromRecord(rec *secondary.TestRunRecord, results []*secondary.TestRunResultRecord) *primary.TestRun {
	run := &primary.TestRun{
		ID:                rec.ID,
		Name:              rec.Name,
		OrganizationID:    rec.OrganizationID,
		Status:            rec.Status,
		CreatedAt:         rec.CreatedAt,
		CreatedBy:         rec.CreatedBy,
		LinearIssueID:     rec.LinearIssueID,
		LinearProjectID:   rec.LinearProjectID,
		LinearMilestoneID: rec.LinearMilestoneID,
	}
	for _, res := range results {
		run.Results = append(run.Results, resultFromRecord(res))
	}
	return run
}

func resultFromRecord(rec *secondary.TestRunResultRecord) *primary.TestRunResult {
	return &primary.TestRunResult{
		ID:         rec.ID,
		TestRunID:  rec.TestRunID,
		ScenarioID: rec.ScenarioID,
		Status:     rec.Status,
		Notes:      rec.Notes,
		ExecutedAt: rec.ExecutedAt,
		ExecutedBy: rec.ExecutedBy,
	}
}

// Ensure TestRunServiceImpl implements the interface
var _ primary.TestRunService = (*TestRunServiceImpl)(nil)
