package sqlite_test

import (
	"context"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/testdeck/internal/ports/secondary"
)

func TestTestCaseRepository_Create(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	tc := &secondary.TestCaseRecord{
		Title:          "Login works",
		Template:       "gherkin",
		State:          "draft",
		Priority:       "normal",
		OrganizationID: orgID,
		CreatedAt:      1000,
		UpdatedAt:      1000,
		CreatedBy:      "alice",
		UpdatedBy:      "alice",
	}
	if err := repos(store).TestCases.Create(ctx, tc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if tc.ID == 0 {
		t.Error("expected test case ID to be set")
	}

	got, err := repos(store).TestCases.GetByID(ctx, tc.ID, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Login works" || got.FolderID != 0 {
		t.Errorf("unexpected test case: %+v", got)
	}
}

func TestTestCaseRepository_Create_ExplicitID(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	tc := &secondary.TestCaseRecord{
		ID:             77,
		Title:          "Restored",
		Template:       "gherkin",
		State:          "active",
		Priority:       "high",
		OrganizationID: orgID,
		CreatedAt:      1000,
		UpdatedAt:      1000,
		CreatedBy:      "alice",
		UpdatedBy:      "alice",
	}
	if err := repos(store).TestCases.Create(ctx, tc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repos(store).TestCases.GetByID(ctx, 77, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.State != "active" || got.Priority != "high" {
		t.Errorf("unexpected test case: %+v", got)
	}
}

func TestTestCaseRepository_Update(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	caseID := seedTestCase(t, database, orgID, "")
	folderID := seedFolder(t, database, orgID, "")
	ctx := context.Background()

	tc, err := repos(store).TestCases.GetByID(ctx, caseID, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	tc.Title = "renamed"
	tc.FolderID = folderID
	tc.State = "active"
	tc.UpdatedAt = 2000
	tc.UpdatedBy = "bob"

	if err := repos(store).TestCases.Update(ctx, tc); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repos(store).TestCases.GetByID(ctx, caseID, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "renamed" || got.FolderID != folderID || got.UpdatedBy != "bob" {
		t.Errorf("unexpected test case after update: %+v", got)
	}
}

func TestTestCaseRepository_Update_CrossTenant(t *testing.T) {
	store, database := newTestStore(t)
	orgA := seedOrg(t, database, "org-a")
	orgB := seedOrg(t, database, "org-b")
	caseID := seedTestCase(t, database, orgA, "")
	ctx := context.Background()

	err := repos(store).TestCases.Update(ctx, &secondary.TestCaseRecord{
		ID:             caseID,
		Title:          "hijacked",
		Template:       "gherkin",
		State:          "draft",
		Priority:       "normal",
		OrganizationID: orgB,
	})
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound for cross-tenant update, got %v", err)
	}
}

func TestTestCaseRepository_Delete_CascadesScenarios(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	caseID := seedTestCase(t, database, orgID, "")
	seedScenario(t, database, caseID, "one")
	seedScenario(t, database, caseID, "two")
	ctx := context.Background()

	if err := repos(store).TestCases.Delete(ctx, caseID, orgID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int
	if err := database.QueryRow(
		"SELECT COUNT(*) FROM scenarios WHERE test_case_id = ?", caseID).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected scenarios cascaded, %d remain", count)
	}
}

func TestTestCaseRepository_List_Filters(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	folderID := seedFolder(t, database, orgID, "")
	ctx := context.Background()

	inFolder := seedTestCase(t, database, orgID, "in folder")
	if _, err := database.Exec(
		"UPDATE test_cases SET folder_id = ?, state = 'active' WHERE id = ?", folderID, inFolder); err != nil {
		t.Fatalf("failed to move case: %v", err)
	}
	seedTestCase(t, database, orgID, "loose draft")

	cases, err := repos(store).TestCases.List(ctx, orgID, secondary.TestCaseFilters{FolderID: folderID})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(cases) != 1 || cases[0].ID != inFolder {
		t.Errorf("unexpected folder filter result: %+v", cases)
	}

	cases, err = repos(store).TestCases.List(ctx, orgID, secondary.TestCaseFilters{State: "draft"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(cases) != 1 || cases[0].Title != "loose draft" {
		t.Errorf("unexpected state filter result: %+v", cases)
	}

	cases, err = repos(store).TestCases.List(ctx, orgID, secondary.TestCaseFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(cases) != 2 {
		t.Errorf("expected 2 cases, got %d", len(cases))
	}
}
