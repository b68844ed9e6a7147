package sqlite_test

import (
	"context"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/testdeck/internal/ports/secondary"
)

func TestTestRunRepository_CreateAndGet(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	run := &secondary.TestRunRecord{
		Name:           "Release 1.2",
		OrganizationID: orgID,
		Status:         "in_progress",
		CreatedAt:      1000,
		CreatedBy:      "alice",
		LinearIssueID:  "ENG-42",
	}
	if err := repos(store).TestRuns.Create(ctx, run); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repos(store).TestRuns.GetByID(ctx, run.ID, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Release 1.2" || got.LinearIssueID != "ENG-42" || got.LinearProjectID != "" {
		t.Errorf("unexpected test run: %+v", got)
	}
}

func TestTestRunRepository_Update(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	runID := seedTestRun(t, database, orgID, "")
	ctx := context.Background()

	run, err := repos(store).TestRuns.GetByID(ctx, runID, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	run.Status = "completed"

	if err := repos(store).TestRuns.Update(ctx, run); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repos(store).TestRuns.GetByID(ctx, runID, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != "completed" {
		t.Errorf("expected status completed, got %s", got.Status)
	}
}

func TestTestRunRepository_Delete_CascadesResults(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	caseID := seedTestCase(t, database, orgID, "")
	scenarioID := seedScenario(t, database, caseID, "")
	runID := seedTestRun(t, database, orgID, "")
	seedResult(t, database, runID, scenarioID)
	ctx := context.Background()

	if err := repos(store).TestRuns.Delete(ctx, runID, orgID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int
	if err := database.QueryRow(
		"SELECT COUNT(*) FROM test_run_results WHERE test_run_id = ?", runID).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected results cascaded, %d remain", count)
	}
}

func TestTestRunRepository_List(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	firstID := seedTestRun(t, database, orgID, "first")
	secondID := seedTestRun(t, database, orgID, "second")
	if _, err := database.Exec(
		"UPDATE test_runs SET status = 'completed', created_at = 2000 WHERE id = ?", secondID); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	runs, err := repos(store).TestRuns.List(ctx, orgID, secondary.TestRunFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != secondID {
		t.Errorf("expected newest first, got %+v", runs)
	}

	runs, err = repos(store).TestRuns.List(ctx, orgID, secondary.TestRunFilters{Status: "in_progress"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != firstID {
		t.Errorf("unexpected status filter result: %+v", runs)
	}
}

func TestTestRunResultRepository_Update(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	caseID := seedTestCase(t, database, orgID, "")
	scenarioID := seedScenario(t, database, caseID, "")
	runID := seedTestRun(t, database, orgID, "")
	resultID := seedResult(t, database, runID, scenarioID)
	ctx := context.Background()

	err := repos(store).TestRunResults.Update(ctx, &secondary.TestRunResultRecord{
		ID:         resultID,
		Status:     "passed",
		Notes:      "clean pass",
		ExecutedAt: 2000,
		ExecutedBy: "alice",
	}, orgID)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repos(store).TestRunResults.GetByID(ctx, resultID, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != "passed" || got.Notes != "clean pass" || got.ExecutedBy != "alice" {
		t.Errorf("unexpected result after update: %+v", got)
	}
}

func TestTestRunResultRepository_Update_CrossTenant(t *testing.T) {
	store, database := newTestStore(t)
	orgA := seedOrg(t, database, "org-a")
	orgB := seedOrg(t, database, "org-b")
	caseID := seedTestCase(t, database, orgA, "")
	scenarioID := seedScenario(t, database, caseID, "")
	runID := seedTestRun(t, database, orgA, "")
	resultID := seedResult(t, database, runID, scenarioID)
	ctx := context.Background()

	err := repos(store).TestRunResults.Update(ctx, &secondary.TestRunResultRecord{
		ID:     resultID,
		Status: "passed",
	}, orgB)
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound for cross-tenant update, got %v", err)
	}
}

func TestTestRunResultRepository_ListByRun(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	caseID := seedTestCase(t, database, orgID, "")
	first := seedScenario(t, database, caseID, "first")
	second := seedScenario(t, database, caseID, "second")
	runID := seedTestRun(t, database, orgID, "")
	seedResult(t, database, runID, first)
	seedResult(t, database, runID, second)
	ctx := context.Background()

	results, err := repos(store).TestRunResults.ListByRun(ctx, runID)
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ScenarioID != first || results[1].ScenarioID != second {
		t.Errorf("unexpected order: %+v", results)
	}
}
