package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/testdeck/internal/ports/secondary"
)

// ActionType is the closed enum of reversible UI actions.
type ActionType string

const (
	ActionCreateFolder ActionType = "create_folder"
	ActionUpdateFolder ActionType = "update_folder"
	ActionDeleteFolder ActionType = "delete_folder"

	ActionCreateTestCase ActionType = "create_test_case"
	ActionUpdateTestCase ActionType = "update_test_case"
	ActionDeleteTestCase ActionType = "delete_test_case"

	ActionCreateScenario ActionType = "create_scenario"
	ActionUpdateScenario ActionType = "update_scenario"
	ActionDeleteScenario ActionType = "delete_scenario"

	ActionBulkDeleteTestCases ActionType = "bulk_delete_test_cases"
	ActionBulkUpdateTestCases ActionType = "bulk_update_test_cases"
	ActionBulkMoveTestCases   ActionType = "bulk_move_test_cases"
	ActionReorderTestCases    ActionType = "reorder_test_cases"

	ActionCreateTestRun    ActionType = "create_test_run"
	ActionDeleteTestRun    ActionType = "delete_test_run"
	ActionUpdateTestResult ActionType = "update_test_result"
)

// Typed payloads, one shape per action family. A create entry recorded
// forward carries only the new entity's id; once undone, the redo entry
// additionally carries the snapshot captured at undo time so redo can
// recreate the rows at their original ids. Delete entries carry the
// snapshot in both directions. Update-style entries carry the displaced
// field values, which swap sides on every undo/redo.

type folderPayload struct {
	EntityID int64                   `json:"entityId,omitempty"`
	Snapshot *secondary.FolderRecord `json:"snapshot,omitempty"`
}

type testCasePayload struct {
	EntityID int64             `json:"entityId,omitempty"`
	Snapshot *TestCaseSnapshot `json:"snapshot,omitempty"`
}

type scenarioPayload struct {
	EntityID int64                     `json:"entityId,omitempty"`
	Snapshot *secondary.ScenarioRecord `json:"snapshot,omitempty"`
}

type testRunPayload struct {
	EntityID int64            `json:"entityId,omitempty"`
	Snapshot *TestRunSnapshot `json:"snapshot,omitempty"`
}

type valuesPayload struct {
	EntityID int64          `json:"entityId"`
	Values   map[string]any `json:"values"`
}

type bulkValuesPayload struct {
	Items []valuesPayload `json:"items"`
}

type bulkSnapshotPayload struct {
	Snapshots []TestCaseSnapshot `json:"snapshots"`
}

// inverter applies the inverse of one ledger entry against
// transaction-bound repositories and produces the complementary payload
// for the opposite stack. The same dispatch serves undo and redo: an
// entry's IsRedo flag says which direction it replays in.
type inverter struct {
	repos secondary.Repositories
	codec *Codec
}

func newInverter(repos secondary.Repositories) *inverter {
	return &inverter{repos: repos, codec: NewCodec(repos)}
}

// apply mutates the store to reverse (or replay) the entry and returns the
// complement payload. Errors roll back the surrounding transaction, which
// also restores the popped entry.
func (iv *inverter) apply(ctx context.Context, entry *secondary.UndoStackRecord) ([]byte, error) {
	orgID := entry.OrganizationID

	switch ActionType(entry.ActionType) {
	case ActionCreateFolder:
		return iv.applyCreateFolder(ctx, entry, orgID)
	case ActionDeleteFolder:
		return iv.applyDeleteFolder(ctx, entry, orgID)
	case ActionCreateTestCase:
		return iv.applyCreateTestCase(ctx, entry, orgID)
	case ActionDeleteTestCase:
		return iv.applyDeleteTestCase(ctx, entry, orgID)
	case ActionCreateScenario:
		return iv.applyCreateScenario(ctx, entry, orgID)
	case ActionDeleteScenario:
		return iv.applyDeleteScenario(ctx, entry, orgID)
	case ActionCreateTestRun:
		return iv.applyCreateTestRun(ctx, entry, orgID)
	case ActionDeleteTestRun:
		return iv.applyDeleteTestRun(ctx, entry, orgID)
	case ActionUpdateFolder:
		return iv.applyValues(ctx, entry, orgID, EntityFolder)
	case ActionUpdateTestCase:
		return iv.applyValues(ctx, entry, orgID, EntityTestCase)
	case ActionUpdateScenario:
		return iv.applyValues(ctx, entry, orgID, EntityScenario)
	case ActionUpdateTestResult:
		return iv.applyValues(ctx, entry, orgID, EntityTestResult)
	case ActionBulkUpdateTestCases, ActionBulkMoveTestCases, ActionReorderTestCases:
		return iv.applyBulkValues(ctx, entry, orgID)
	case ActionBulkDeleteTestCases:
		return iv.applyBulkDelete(ctx, entry, orgID)
	default:
		return nil, fmt.Errorf("unknown action type %q", entry.ActionType)
	}
}

// --- create/delete pairs -------------------------------------------------

func (iv *inverter) applyCreateFolder(ctx context.Context, entry *secondary.UndoStackRecord, orgID int64) ([]byte, error) {
	var p folderPayload
	if err := json.Unmarshal(entry.UndoData, &p); err != nil {
		return nil, fmt.Errorf("bad %s payload: %w", entry.ActionType, err)
	}

	if entry.IsRedo {
		// Replay the creation at the original id.
		snap := *p.Snapshot
		if err := iv.repos.Folders.Create(ctx, &snap); err != nil {
			return nil, err
		}
		return json.Marshal(folderPayload{EntityID: snap.ID})
	}

	// Reverse the creation: capture current state first so redo can put
	// it back exactly.
	rec, err := iv.repos.Folders.GetByID(ctx, p.EntityID, orgID)
	if err != nil {
		return nil, err
	}
	if err := iv.repos.Folders.Delete(ctx, p.EntityID, orgID); err != nil {
		return nil, err
	}
	return json.Marshal(folderPayload{EntityID: p.EntityID, Snapshot: rec})
}

func (iv *inverter) applyDeleteFolder(ctx context.Context, entry *secondary.UndoStackRecord, orgID int64) ([]byte, error) {
	var p folderPayload
	if err := json.Unmarshal(entry.UndoData, &p); err != nil {
		return nil, fmt.Errorf("bad %s payload: %w", entry.ActionType, err)
	}

	if entry.IsRedo {
		// Delete again, preserving whatever state the row has now.
		snap, err := iv.repos.Folders.GetByID(ctx, p.Snapshot.ID, orgID)
		if errors.Is(err, ErrNotFound) {
			snap = p.Snapshot // row vanished out-of-band; keep the stored state
		} else if err != nil {
			return nil, err
		} else if err := iv.repos.Folders.Delete(ctx, snap.ID, orgID); err != nil {
			return nil, err
		}
		return json.Marshal(folderPayload{Snapshot: snap})
	}

	// Reverse the deletion: reinsert at the original id regardless of
	// what else happened since.
	snap := *p.Snapshot
	if err := iv.repos.Folders.Create(ctx, &snap); err != nil {
		return nil, err
	}
	return json.Marshal(folderPayload{Snapshot: p.Snapshot})
}

func (iv *inverter) applyCreateTestCase(ctx context.Context, entry *secondary.UndoStackRecord, orgID int64) ([]byte, error) {
	var p testCasePayload
	if err := json.Unmarshal(entry.UndoData, &p); err != nil {
		return nil, fmt.Errorf("bad %s payload: %w", entry.ActionType, err)
	}

	if entry.IsRedo {
		if err := iv.codec.RecreateTestCase(ctx, p.Snapshot); err != nil {
			return nil, err
		}
		return json.Marshal(testCasePayload{EntityID: p.Snapshot.ID})
	}

	snap, err := iv.codec.CaptureTestCase(ctx, p.EntityID, orgID)
	if err != nil {
		return nil, err
	}
	if err := iv.repos.TestCases.Delete(ctx, p.EntityID, orgID); err != nil {
		return nil, err
	}
	return json.Marshal(testCasePayload{EntityID: p.EntityID, Snapshot: snap})
}

func (iv *inverter) applyDeleteTestCase(ctx context.Context, entry *secondary.UndoStackRecord, orgID int64) ([]byte, error) {
	var p testCasePayload
	if err := json.Unmarshal(entry.UndoData, &p); err != nil {
		return nil, fmt.Errorf("bad %s payload: %w", entry.ActionType, err)
	}

	if entry.IsRedo {
		snap, err := iv.codec.CaptureTestCase(ctx, p.Snapshot.ID, orgID)
		if errors.Is(err, ErrNotFound) {
			snap = p.Snapshot
		} else if err != nil {
			return nil, err
		} else if err := iv.repos.TestCases.Delete(ctx, snap.ID, orgID); err != nil {
			return nil, err
		}
		return json.Marshal(testCasePayload{Snapshot: snap})
	}

	if err := iv.codec.RecreateTestCase(ctx, p.Snapshot); err != nil {
		return nil, err
	}
	return json.Marshal(testCasePayload{Snapshot: p.Snapshot})
}

func (iv *inverter) applyCreateScenario(ctx context.Context, entry *secondary.UndoStackRecord, orgID int64) ([]byte, error) {
	var p scenarioPayload
	if err := json.Unmarshal(entry.UndoData, &p); err != nil {
		return nil, fmt.Errorf("bad %s payload: %w", entry.ActionType, err)
	}

	if entry.IsRedo {
		snap := *p.Snapshot
		if err := iv.repos.Scenarios.Create(ctx, &snap); err != nil {
			return nil, err
		}
		return json.Marshal(scenarioPayload{EntityID: snap.ID})
	}

	rec, err := iv.repos.Scenarios.GetByID(ctx, p.EntityID, orgID)
	if err != nil {
		return nil, err
	}
	if err := iv.repos.Scenarios.Delete(ctx, p.EntityID, orgID); err != nil {
		return nil, err
	}
	return json.Marshal(scenarioPayload{EntityID: p.EntityID, Snapshot: rec})
}

func (iv *inverter) applyDeleteScenario(ctx context.Context, entry *secondary.UndoStackRecord, orgID int64) ([]byte, error) {
	var p scenarioPayload
	if err := json.Unmarshal(entry.UndoData, &p); err != nil {
		return nil, fmt.Errorf("bad %s payload: %w", entry.ActionType, err)
	}

	if entry.IsRedo {
		snap, err := iv.repos.Scenarios.GetByID(ctx, p.Snapshot.ID, orgID)
		if errors.Is(err, ErrNotFound) {
			snap = p.Snapshot
		} else if err != nil {
			return nil, err
		} else if err := iv.repos.Scenarios.Delete(ctx, snap.ID, orgID); err != nil {
			return nil, err
		}
		return json.Marshal(scenarioPayload{Snapshot: snap})
	}

	snap := *p.Snapshot
	if err := iv.repos.Scenarios.Create(ctx, &snap); err != nil {
		return nil, err
	}
	return json.Marshal(scenarioPayload{Snapshot: p.Snapshot})
}

func (iv *inverter) applyCreateTestRun(ctx context.Context, entry *secondary.UndoStackRecord, orgID int64) ([]byte, error) {
	var p testRunPayload
	if err := json.Unmarshal(entry.UndoData, &p); err != nil {
		return nil, fmt.Errorf("bad %s payload: %w", entry.ActionType, err)
	}

	if entry.IsRedo {
		if err := iv.codec.RecreateTestRun(ctx, p.Snapshot); err != nil {
			return nil, err
		}
		return json.Marshal(testRunPayload{EntityID: p.Snapshot.ID})
	}

	snap, err := iv.codec.CaptureTestRun(ctx, p.EntityID, orgID)
	if err != nil {
		return nil, err
	}
	if err := iv.repos.TestRuns.Delete(ctx, p.EntityID, orgID); err != nil {
		return nil, err
	}
	return json.Marshal(testRunPayload{EntityID: p.EntityID, Snapshot: snap})
}

func (iv *inverter) applyDeleteTestRun(ctx context.Context, entry *secondary.UndoStackRecord, orgID int64) ([]byte, error) {
	var p testRunPayload
	if err := json.Unmarshal(entry.UndoData, &p); err != nil {
		return nil, fmt.Errorf("bad %s payload: %w", entry.ActionType, err)
	}

	if entry.IsRedo {
		snap, err := iv.codec.CaptureTestRun(ctx, p.Snapshot.ID, orgID)
		if errors.Is(err, ErrNotFound) {
			snap = p.Snapshot
		} else if err != nil {
			return nil, err
		} else if err := iv.repos.TestRuns.Delete(ctx, snap.ID, orgID); err != nil {
			return nil, err
		}
		return json.Marshal(testRunPayload{Snapshot: snap})
	}

	if err := iv.codec.RecreateTestRun(ctx, p.Snapshot); err != nil {
		return nil, err
	}
	return json.Marshal(testRunPayload{Snapshot: p.Snapshot})
}

// --- value restores ------------------------------------------------------

// applyValues restores stored field values onto one row and returns the
// displaced values as the complement. The same code runs both directions:
// undo restores previousValues, redo restores what undo displaced.
func (iv *inverter) applyValues(ctx context.Context, entry *secondary.UndoStackRecord, orgID int64, entityType string) ([]byte, error) {
	var p valuesPayload
	if err := json.Unmarshal(entry.UndoData, &p); err != nil {
		return nil, fmt.Errorf("bad %s payload: %w", entry.ActionType, err)
	}

	displaced, err := iv.restoreValues(ctx, orgID, entityType, p.EntityID, p.Values)
	if err != nil {
		return nil, err
	}
	return json.Marshal(valuesPayload{EntityID: p.EntityID, Values: displaced})
}

// applyBulkValues is applyValues over a set of test cases. Rows deleted
// out-of-band are skipped rather than failing the whole replay; the
// complement carries only the rows actually touched.
func (iv *inverter) applyBulkValues(ctx context.Context, entry *secondary.UndoStackRecord, orgID int64) ([]byte, error) {
	var p bulkValuesPayload
	if err := json.Unmarshal(entry.UndoData, &p); err != nil {
		return nil, fmt.Errorf("bad %s payload: %w", entry.ActionType, err)
	}

	complement := bulkValuesPayload{}
	for _, item := range p.Items {
		displaced, err := iv.restoreValues(ctx, orgID, EntityTestCase, item.EntityID, item.Values)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		complement.Items = append(complement.Items, valuesPayload{EntityID: item.EntityID, Values: displaced})
	}
	return json.Marshal(complement)
}

// applyBulkDelete flips a bulk deletion: recreate every captured case on
// undo, delete them all again on redo. Individual conflicts (a row already
// present on recreate, already gone on redo) are skipped.
func (iv *inverter) applyBulkDelete(ctx context.Context, entry *secondary.UndoStackRecord, orgID int64) ([]byte, error) {
	var p bulkSnapshotPayload
	if err := json.Unmarshal(entry.UndoData, &p); err != nil {
		return nil, fmt.Errorf("bad %s payload: %w", entry.ActionType, err)
	}

	if entry.IsRedo {
		complement := bulkSnapshotPayload{}
		for i := range p.Snapshots {
			snap, err := iv.codec.CaptureTestCase(ctx, p.Snapshots[i].ID, orgID)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if err := iv.repos.TestCases.Delete(ctx, snap.ID, orgID); err != nil {
				return nil, err
			}
			complement.Snapshots = append(complement.Snapshots, *snap)
		}
		return json.Marshal(complement)
	}

	for i := range p.Snapshots {
		if _, err := iv.repos.TestCases.GetByID(ctx, p.Snapshots[i].ID, orgID); err == nil {
			// Already present (recreated by another path); leave it.
			continue
		}
		if err := iv.codec.RecreateTestCase(ctx, &p.Snapshots[i]); err != nil {
			return nil, err
		}
	}
	return json.Marshal(bulkSnapshotPayload{Snapshots: p.Snapshots})
}

// restoreValues overlays values onto the entity's row and returns the
// displaced values for the same keys.
func (iv *inverter) restoreValues(ctx context.Context, orgID int64, entityType string, entityID int64, values map[string]any) (map[string]any, error) {
	current, err := iv.codec.Capture(ctx, entityType, entityID, orgID)
	if err != nil {
		return nil, err
	}

	displaced := make(map[string]any, len(values))
	restored := make(map[string]any, len(current))
	for k, v := range current {
		restored[k] = v
	}
	for k, v := range values {
		displaced[k] = current[k]
		restored[k] = v
	}

	if err := iv.codec.Restore(ctx, entityType, entityID, orgID, restored); err != nil {
		return nil, err
	}
	return displaced, nil
}
