package sqlite_test

import (
	"context"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/testdeck/internal/ports/secondary"
)

func TestScenarioRepository_CreateAndGet(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	caseID := seedTestCase(t, database, orgID, "")
	ctx := context.Background()

	sc := &secondary.ScenarioRecord{
		TestCaseID: caseID,
		Title:      "Happy path",
		Gherkin:    "Given a user\nWhen they log in\nThen it works",
		CreatedAt:  1000,
		UpdatedAt:  1000,
	}
	if err := repos(store).Scenarios.Create(ctx, sc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sc.ID == 0 {
		t.Error("expected scenario ID to be set")
	}

	got, err := repos(store).Scenarios.GetByID(ctx, sc.ID, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Happy path" || got.TestCaseID != caseID {
		t.Errorf("unexpected scenario: %+v", got)
	}
}

func TestScenarioRepository_GetByID_CrossTenant(t *testing.T) {
	store, database := newTestStore(t)
	orgA := seedOrg(t, database, "org-a")
	orgB := seedOrg(t, database, "org-b")
	caseID := seedTestCase(t, database, orgA, "")
	scenarioID := seedScenario(t, database, caseID, "")
	ctx := context.Background()

	_, err := repos(store).Scenarios.GetByID(ctx, scenarioID, orgB)
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound for cross-tenant read, got %v", err)
	}
}

func TestScenarioRepository_Update(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	caseID := seedTestCase(t, database, orgID, "")
	scenarioID := seedScenario(t, database, caseID, "")
	ctx := context.Background()

	err := repos(store).Scenarios.Update(ctx, &secondary.ScenarioRecord{
		ID:        scenarioID,
		Title:     "edited",
		Gherkin:   "Given something else",
		Position:  2,
		UpdatedAt: 2000,
	}, orgID)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repos(store).Scenarios.GetByID(ctx, scenarioID, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "edited" || got.Position != 2 {
		t.Errorf("unexpected scenario after update: %+v", got)
	}
}

func TestScenarioRepository_Update_CrossTenant(t *testing.T) {
	store, database := newTestStore(t)
	orgA := seedOrg(t, database, "org-a")
	orgB := seedOrg(t, database, "org-b")
	caseID := seedTestCase(t, database, orgA, "")
	scenarioID := seedScenario(t, database, caseID, "")
	ctx := context.Background()

	err := repos(store).Scenarios.Update(ctx, &secondary.ScenarioRecord{
		ID:    scenarioID,
		Title: "hijacked",
	}, orgB)
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound for cross-tenant update, got %v", err)
	}
}

func TestScenarioRepository_Delete(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	caseID := seedTestCase(t, database, orgID, "")
	scenarioID := seedScenario(t, database, caseID, "")
	ctx := context.Background()

	if err := repos(store).Scenarios.Delete(ctx, scenarioID, orgID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repos(store).Scenarios.Delete(ctx, scenarioID, orgID); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestScenarioRepository_ListByTestCase(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	caseID := seedTestCase(t, database, orgID, "")
	otherCase := seedTestCase(t, database, orgID, "other")
	firstID := seedScenario(t, database, caseID, "first")
	secondID := seedScenario(t, database, caseID, "second")
	seedScenario(t, database, otherCase, "elsewhere")
	ctx := context.Background()

	// Positions reversed relative to insertion order.
	if _, err := database.Exec("UPDATE scenarios SET position = 1 WHERE id = ?", firstID); err != nil {
		t.Fatalf("failed to reposition scenario: %v", err)
	}

	scenarios, err := repos(store).Scenarios.ListByTestCase(ctx, caseID)
	if err != nil {
		t.Fatalf("ListByTestCase failed: %v", err)
	}
	if len(scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(scenarios))
	}
	if scenarios[0].ID != secondID || scenarios[1].ID != firstID {
		t.Errorf("expected position ordering, got %d then %d", scenarios[0].ID, scenarios[1].ID)
	}
}
