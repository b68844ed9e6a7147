package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/testdeck/internal/ports/secondary"
)

// Entity type names shared by the snapshot codec, the write log, and the
// MCP tool surface.
const (
	EntityFolder     = "folder"
	EntityTestCase   = "test_case"
	EntityScenario   = "scenario"
	EntityTestRun    = "test_run"
	EntityTestResult = "test_result"
)

// TestCaseSnapshot captures a test case together with its owned scenarios,
// in position order. Marshals flat: the case fields inline plus a
// "scenarios" list.
type TestCaseSnapshot struct {
	secondary.TestCaseRecord
	Scenarios []secondary.ScenarioRecord `json:"scenarios,omitempty"`
}

// TestRunSnapshot captures a run together with its result rows.
type TestRunSnapshot struct {
	secondary.TestRunRecord
	Results []secondary.TestRunResultRecord `json:"results,omitempty"`
}

// Codec captures serializable snapshots of entities and writes them back.
// Construct one over the repository set in scope — plain repositories for
// reads, transaction-bound ones inside an undo.
type Codec struct {
	repos secondary.Repositories
}

// NewCodec creates a codec over the given repositories.
func NewCodec(repos secondary.Repositories) *Codec {
	return &Codec{repos: repos}
}

// CaptureTestCase reads a test case and its scenarios. Foreign keys are
// captured as-is without validation; a folder deleted out-of-band leaves a
// dangling folderId in the snapshot (accepted limitation).
func (c *Codec) CaptureTestCase(ctx context.Context, id, orgID int64) (*TestCaseSnapshot, error) {
	tc, err := c.repos.TestCases.GetByID(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	scenarios, err := c.repos.Scenarios.ListByTestCase(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := &TestCaseSnapshot{TestCaseRecord: *tc}
	for _, sc := range scenarios {
		snap.Scenarios = append(snap.Scenarios, *sc)
	}
	return snap, nil
}

// CaptureTestRun reads a run and its result rows.
func (c *Codec) CaptureTestRun(ctx context.Context, id, orgID int64) (*TestRunSnapshot, error) {
	run, err := c.repos.TestRuns.GetByID(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	results, err := c.repos.TestRunResults.ListByRun(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := &TestRunSnapshot{TestRunRecord: *run}
	for _, res := range results {
		snap.Results = append(snap.Results, *res)
	}
	return snap, nil
}

// Capture reads an entity's current state as a flat value map, filtered by
// id AND organization — a missing row and a cross-tenant row are the same
// ErrNotFound. For test_case and test_run the map includes the owned
// children under "scenarios"/"results".
func (c *Codec) Capture(ctx context.Context, entityType string, id, orgID int64) (map[string]any, error) {
	var v any
	var err error
	switch entityType {
	case EntityFolder:
		v, err = c.repos.Folders.GetByID(ctx, id, orgID)
	case EntityTestCase:
		v, err = c.CaptureTestCase(ctx, id, orgID)
	case EntityScenario:
		v, err = c.repos.Scenarios.GetByID(ctx, id, orgID)
	case EntityTestRun:
		v, err = c.CaptureTestRun(ctx, id, orgID)
	case EntityTestResult:
		v, err = c.repos.TestRunResults.GetByID(ctx, id, orgID)
	default:
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}
	if err != nil {
		return nil, err
	}
	return toValueMap(v)
}

// Restore writes a captured state's fields back onto the existing row via
// update. It does not recreate rows and does not touch owned children —
// recreation is the job of RecreateTestCase/RecreateTestRun on the
// delete-undo path.
func (c *Codec) Restore(ctx context.Context, entityType string, id, orgID int64, state map[string]any) error {
	switch entityType {
	case EntityFolder:
		rec := &secondary.FolderRecord{}
		if err := fromValueMap(state, rec); err != nil {
			return err
		}
		rec.ID, rec.OrganizationID = id, orgID
		return c.repos.Folders.Update(ctx, rec)
	case EntityTestCase:
		rec := &secondary.TestCaseRecord{}
		if err := fromValueMap(state, rec); err != nil {
			return err
		}
		rec.ID, rec.OrganizationID = id, orgID
		return c.repos.TestCases.Update(ctx, rec)
	case EntityScenario:
		rec := &secondary.ScenarioRecord{}
		if err := fromValueMap(state, rec); err != nil {
			return err
		}
		rec.ID = id
		return c.repos.Scenarios.Update(ctx, rec, orgID)
	case EntityTestRun:
		rec := &secondary.TestRunRecord{}
		if err := fromValueMap(state, rec); err != nil {
			return err
		}
		rec.ID, rec.OrganizationID = id, orgID
		return c.repos.TestRuns.Update(ctx, rec)
	case EntityTestResult:
		rec := &secondary.TestRunResultRecord{}
		if err := fromValueMap(state, rec); err != nil {
			return err
		}
		rec.ID = id
		return c.repos.TestRunResults.Update(ctx, rec, orgID)
	default:
		return fmt.Errorf("unknown entity type %q", entityType)
	}
}

// RecreateTestCase reinserts a deleted test case and its scenarios at their
// original ids, so rows still referencing them (test_run_results →
// scenarios) stay valid.
func (c *Codec) RecreateTestCase(ctx context.Context, snap *TestCaseSnapshot) error {
	tc := snap.TestCaseRecord
	if err := c.repos.TestCases.Create(ctx, &tc); err != nil {
		return err
	}
	for i := range snap.Scenarios {
		sc := snap.Scenarios[i]
		if err := c.repos.Scenarios.Create(ctx, &sc); err != nil {
			return err
		}
	}
	return nil
}

// RecreateTestRun reinserts a deleted run and its results at original ids.
func (c *Codec) RecreateTestRun(ctx context.Context, snap *TestRunSnapshot) error {
	run := snap.TestRunRecord
	if err := c.repos.TestRuns.Create(ctx, &run); err != nil {
		return err
	}
	for i := range snap.Results {
		res := snap.Results[i]
		if err := c.repos.TestRunResults.Create(ctx, &res); err != nil {
			return err
		}
	}
	return nil
}

// toValueMap flattens a record to its JSON field map. Timestamps stay
// epoch-millis integers, so the round-trip is lossless.
func toValueMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to flatten snapshot: %w", err)
	}
	return m, nil
}

// fromValueMap writes a flat field map onto a record struct.
func fromValueMap(m map[string]any, out any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to restore state: %w", err)
	}
	return nil
}
