package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/testdeck/internal/ports/primary"
	"github.com/example/testdeck/internal/ports/secondary"
)

// Defaults applied when a create request leaves the field empty.
const (
	defaultTemplate = "gherkin"
	defaultState    = "draft"
	defaultPriority = "normal"
)

// TestCaseServiceImpl implements test case and scenario operations,
// including the bulk actions. Each operation commits its mutation and its
// undo-stack entry in one transaction.
type TestCaseServiceImpl struct {
	tx    secondary.TxRunner
	repos secondary.Repositories
	now   func() int64
}

// NewTestCaseService creates a new test case service.
func NewTestCaseService(tx secondary.TxRunner, repos secondary.Repositories) *TestCaseServiceImpl {
	return &TestCaseServiceImpl{
		tx:    tx,
		repos: repos,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// CreateTestCase creates a test case and records the creation as reversible.
func (s *TestCaseServiceImpl) CreateTestCase(ctx context.Context, req primary.CreateTestCaseRequest) (*primary.TestCase, error) {
	now := s.now()
	rec := &secondary.TestCaseRecord{
		LegacyID:       req.LegacyID,
		Title:          req.Title,
		FolderID:       req.FolderID,
		Position:       req.Position,
		Template:       req.Template,
		State:          req.State,
		Priority:       req.Priority,
		OrganizationID: req.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      req.Actor,
		UpdatedBy:      req.Actor,
	}
	if rec.Template == "" {
		rec.Template = defaultTemplate
	}
	if rec.State == "" {
		rec.State = defaultState
	}
	if rec.Priority == "" {
		rec.Priority = defaultPriority
	}

	err := s.tx.InTx(ctx, func(r secondary.Repositories) error {
		if req.FolderID != 0 {
			if _, err := r.Folders.GetByID(ctx, req.FolderID, req.OrganizationID); err != nil {
				return fmt.Errorf("folder %d: %w", req.FolderID, err)
			}
		}
		if err := r.TestCases.Create(ctx, rec); err != nil {
			return err
		}
		return recordEntry(ctx, r, req.OrganizationID, ActionCreateTestCase,
			fmt.Sprintf("Created test case %q", rec.Title),
			testCasePayload{EntityID: rec.ID}, s.now())
	})
	if err != nil {
		return nil, err
	}
	return testCaseFromRecord(rec, nil), nil
}

// GetTestCase retrieves a test case with its scenarios ordered by position.
func (s *TestCaseServiceImpl) GetTestCase(ctx context.Context, id, orgID int64) (*primary.TestCase, error) {
	rec, err := s.repos.TestCases.GetByID(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	scenarios, err := s.repos.Scenarios.ListByTestCase(ctx, id)
	if err != nil {
		return nil, err
	}
	return testCaseFromRecord(rec, scenarios), nil
}

// ListTestCases lists test cases matching the filters, without scenarios.
func (s *TestCaseServiceImpl) ListTestCases(ctx context.Context, orgID int64, filters primary.TestCaseFilters) ([]*primary.TestCase, error) {
	records, err := s.repos.TestCases.List(ctx, orgID, secondary.TestCaseFilters{
		FolderID: filters.FolderID,
		State:    filters.State,
		Priority: filters.Priority,
		Limit:    filters.Limit,
	})
	if err != nil {
		return nil, err
	}
	cases := make([]*primary.TestCase, len(records))
	for i, rec := range records {
		cases[i] = testCaseFromRecord(rec, nil)
	}
	return cases, nil
}

// UpdateTestCase applies the non-nil fields of the request. When nothing
// actually changes the update is a no-op: nothing is written and nothing is
// recorded.
func (s *TestCaseServiceImpl) UpdateTestCase(ctx context.Context, req primary.UpdateTestCaseRequest) (*primary.TestCase, error) {
	var updated *secondary.TestCaseRecord

	err := s.tx.InTx(ctx, func(r secondary.Repositories) error {
		before, err := r.TestCases.GetByID(ctx, req.TestCaseID, req.OrganizationID)
		if err != nil {
			return err
		}

		after := *before
		if req.Title != nil {
			after.Title = *req.Title
		}
		if req.FolderID != nil {
			if *req.FolderID != 0 {
				if _, err := r.Folders.GetByID(ctx, *req.FolderID, req.OrganizationID); err != nil {
					return fmt.Errorf("folder %d: %w", *req.FolderID, err)
				}
			}
			after.FolderID = *req.FolderID
		}
		if req.Position != nil {
			after.Position = *req.Position
		}
		if req.Template != nil {
			after.Template = *req.Template
		}
		if req.State != nil {
			after.State = *req.State
		}
		if req.Priority != nil {
			after.Priority = *req.Priority
		}

		changes, err := diffRecords(before, &after)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			updated = before
			return nil
		}

		after.UpdatedAt = s.now()
		after.UpdatedBy = req.Actor
		if err := r.TestCases.Update(ctx, &after); err != nil {
			return err
		}
		updated = &after

		// The audit timestamp columns are not part of the reversible state;
		// changes carries only the semantic fields.
		return recordEntry(ctx, r, req.OrganizationID, ActionUpdateTestCase,
			fmt.Sprintf("Updated test case %q", after.Title),
			valuesPayload{EntityID: after.ID, Values: changedValues(changes)}, s.now())
	})
	if err != nil {
		return nil, err
	}
	return testCaseFromRecord(updated, nil), nil
}

// DeleteTestCase deletes a test case with its scenarios and records the
// deletion with a full snapshot, so undo can reinsert every row at its
// original id.
func (s *TestCaseServiceImpl) DeleteTestCase(ctx context.Context, id, orgID int64, actor string) error {
	return s.tx.InTx(ctx, func(r secondary.Repositories) error {
		snap, err := NewCodec(r).CaptureTestCase(ctx, id, orgID)
		if err != nil {
			return err
		}
		if err := r.TestCases.Delete(ctx, id, orgID); err != nil {
			return err
		}
		return recordEntry(ctx, r, orgID, ActionDeleteTestCase,
			fmt.Sprintf("Deleted test case %q", snap.Title),
			testCasePayload{Snapshot: snap}, s.now())
	})
}

// BulkDeleteTestCases deletes several test cases as one reversible action.
// Ids that resolve to nothing are skipped and reported, so one stale id
// doesn't fail the whole batch.
func (s *TestCaseServiceImpl) BulkDeleteTestCases(ctx context.Context, req primary.BulkTestCaseRequest) (*primary.BulkResult, error) {
	result := &primary.BulkResult{}

	err := s.tx.InTx(ctx, func(r secondary.Repositories) error {
		codec := NewCodec(r)
		payload := bulkSnapshotPayload{}

		for _, id := range req.TestCaseIDs {
			snap, err := codec.CaptureTestCase(ctx, id, req.OrganizationID)
			if errors.Is(err, ErrNotFound) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			if err != nil {
				return err
			}
			if err := r.TestCases.Delete(ctx, id, req.OrganizationID); err != nil {
				return err
			}
			payload.Snapshots = append(payload.Snapshots, *snap)
			result.Affected++
		}

		if result.Affected == 0 {
			return nil
		}
		return recordEntry(ctx, r, req.OrganizationID, ActionBulkDeleteTestCases,
			fmt.Sprintf("Bulk deleted %d test cases", result.Affected),
			payload, s.now())
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BulkUpdateTestCases applies the same field changes to several test cases
// as one reversible action. Missing and unchanged cases are skipped.
func (s *TestCaseServiceImpl) BulkUpdateTestCases(ctx context.Context, req primary.BulkUpdateTestCasesRequest) (*primary.BulkResult, error) {
	return s.bulkApply(ctx, req.OrganizationID, req.Actor, req.TestCaseIDs, ActionBulkUpdateTestCases,
		fmt.Sprintf("Bulk updated %d test cases", len(req.TestCaseIDs)),
		func(rec *secondary.TestCaseRecord, _ int) {
			if req.State != nil {
				rec.State = *req.State
			}
			if req.Priority != nil {
				rec.Priority = *req.Priority
			}
		})
}

// BulkMoveTestCases moves several test cases into a folder (or out of any,
// with folder id zero) as one reversible action.
func (s *TestCaseServiceImpl) BulkMoveTestCases(ctx context.Context, req primary.BulkMoveTestCasesRequest) (*primary.BulkResult, error) {
	if req.FolderID != 0 {
		if _, err := s.repos.Folders.GetByID(ctx, req.FolderID, req.OrganizationID); err != nil {
			return nil, fmt.Errorf("folder %d: %w", req.FolderID, err)
		}
	}
	return s.bulkApply(ctx, req.OrganizationID, req.Actor, req.TestCaseIDs, ActionBulkMoveTestCases,
		fmt.Sprintf("Moved %d test cases", len(req.TestCaseIDs)),
		func(rec *secondary.TestCaseRecord, _ int) {
			rec.FolderID = req.FolderID
		})
}

// ReorderTestCases rewrites each listed case's position to its index in the
// list, as one reversible action.
func (s *TestCaseServiceImpl) ReorderTestCases(ctx context.Context, req primary.ReorderTestCasesRequest) error {
	_, err := s.bulkApply(ctx, req.OrganizationID, req.Actor, req.TestCaseIDs, ActionReorderTestCases,
		fmt.Sprintf("Reordered %d test cases", len(req.TestCaseIDs)),
		func(rec *secondary.TestCaseRecord, idx int) {
			rec.Position = idx
		})
	return err
}

// bulkApply runs mutate over each listed case, collecting the displaced
// values of every case that actually changed into one undo entry. The whole
// batch is one transaction and one reversible action. mutate touches only
// the semantic fields; the audit stamps are applied here after the diff.
func (s *TestCaseServiceImpl) bulkApply(ctx context.Context, orgID int64, actor string, ids []int64, action ActionType, description string, mutate func(rec *secondary.TestCaseRecord, idx int)) (*primary.BulkResult, error) {
	result := &primary.BulkResult{}

	err := s.tx.InTx(ctx, func(r secondary.Repositories) error {
		payload := bulkValuesPayload{}
		now := s.now()

		for idx, id := range ids {
			before, err := r.TestCases.GetByID(ctx, id, orgID)
			if errors.Is(err, ErrNotFound) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			if err != nil {
				return err
			}

			after := *before
			mutate(&after, idx)
			changes, err := diffRecords(before, &after)
			if err != nil {
				return err
			}
			if len(changes) == 0 {
				result.Skipped = append(result.Skipped, id)
				continue
			}

			after.UpdatedAt = now
			after.UpdatedBy = actor
			if err := r.TestCases.Update(ctx, &after); err != nil {
				return err
			}
			payload.Items = append(payload.Items, valuesPayload{EntityID: id, Values: changedValues(changes)})
			result.Affected++
		}

		if result.Affected == 0 {
			return nil
		}
		return recordEntry(ctx, r, orgID, action, description, payload, s.now())
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateScenario adds a scenario to a test case and records the creation.
func (s *TestCaseServiceImpl) CreateScenario(ctx context.Context, req primary.CreateScenarioRequest) (*primary.Scenario, error) {
	now := s.now()
	rec := &secondary.ScenarioRecord{
		TestCaseID: req.TestCaseID,
		Title:      req.Title,
		Gherkin:    req.Gherkin,
		Position:   req.Position,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.tx.InTx(ctx, func(r secondary.Repositories) error {
		if _, err := r.TestCases.GetByID(ctx, req.TestCaseID, req.OrganizationID); err != nil {
			return fmt.Errorf("test case %d: %w", req.TestCaseID, err)
		}
		if err := r.Scenarios.Create(ctx, rec); err != nil {
			return err
		}
		return recordEntry(ctx, r, req.OrganizationID, ActionCreateScenario,
			fmt.Sprintf("Created scenario %q", req.Title),
			scenarioPayload{EntityID: rec.ID}, s.now())
	})
	if err != nil {
		return nil, err
	}
	return scenarioFromRecord(rec), nil
}

// UpdateScenario applies the non-nil fields of the request; a no-op records
// nothing.
func (s *TestCaseServiceImpl) UpdateScenario(ctx context.Context, req primary.UpdateScenarioRequest) (*primary.Scenario, error) {
	var updated *secondary.ScenarioRecord

	err := s.tx.InTx(ctx, func(r secondary.Repositories) error {
		before, err := r.Scenarios.GetByID(ctx, req.ScenarioID, req.OrganizationID)
		if err != nil {
			return err
		}

		after := *before
		if req.Title != nil {
			after.Title = *req.Title
		}
		if req.Gherkin != nil {
			after.Gherkin = *req.Gherkin
		}
		if req.Position != nil {
			after.Position = *req.Position
		}

		changes, err := diffRecords(before, &after)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			updated = before
			return nil
		}

		after.UpdatedAt = s.now()
		if err := r.Scenarios.Update(ctx, &after, req.OrganizationID); err != nil {
			return err
		}
		updated = &after

		return recordEntry(ctx, r, req.OrganizationID, ActionUpdateScenario,
			fmt.Sprintf("Updated scenario %q", after.Title),
			valuesPayload{EntityID: after.ID, Values: changedValues(changes)}, s.now())
	})
	if err != nil {
		return nil, err
	}
	return scenarioFromRecord(updated), nil
}

// DeleteScenario deletes a scenario and records the deletion.
func (s *TestCaseServiceImpl) DeleteScenario(ctx context.Context, id, orgID int64, actor string) error {
	return s.tx.InTx(ctx, func(r secondary.Repositories) error {
		rec, err := r.Scenarios.GetByID(ctx, id, orgID)
		if err != nil {
			return err
		}
		if err := r.Scenarios.Delete(ctx, id, orgID); err != nil {
			return err
		}
		return recordEntry(ctx, r, orgID, ActionDeleteScenario,
			fmt.Sprintf("Deleted scenario %q", rec.Title),
			scenarioPayload{Snapshot: rec}, s.now())
	})
}

func testCaseFromRecord(rec *secondary.TestCaseRecord, scenarios []*secondary.ScenarioRecord) *primary.TestCase {
	tc := &primary.TestCase{
		ID:             rec.ID,
		LegacyID:       rec.LegacyID,
		Title:          rec.Title,
		FolderID:       rec.FolderID,
		Position:       rec.Position,
		Template:       rec.Template,
		State:          rec.State,
		Priority:       rec.Priority,
		OrganizationID: rec.OrganizationID,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
		CreatedBy:      rec.CreatedBy,
		UpdatedBy:      rec.UpdatedBy,
	}
	for _, sc := range scenarios {
		tc.Scenarios = append(tc.Scenarios, scenarioFromRecord(sc))
	}
	return tc
}

func scenarioFromRecord(rec *secondary.ScenarioRecord) *primary.Scenario {
	return &primary.Scenario{
		ID:         rec.ID,
		TestCaseID: rec.TestCaseID,
		Title:      rec.Title,
		Gherkin:    rec.Gherkin,
		Position:   rec.Position,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

// Ensure TestCaseServiceImpl implements the interface
var _ primary.TestCaseService = (*TestCaseServiceImpl)(nil)
