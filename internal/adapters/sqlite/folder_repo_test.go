package sqlite_test

import (
	"context"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/testdeck/internal/ports/secondary"
)

func TestFolderRepository_Create(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	folder := &secondary.FolderRecord{
		Name:           "Regression",
		OrganizationID: orgID,
	}

	if err := repos(store).Folders.Create(ctx, folder); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if folder.ID == 0 {
		t.Error("expected folder ID to be set")
	}
}

func TestFolderRepository_Create_ExplicitID(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	folder := &secondary.FolderRecord{
		ID:             42,
		Name:           "Restored",
		OrganizationID: orgID,
	}

	if err := repos(store).Folders.Create(ctx, folder); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repos(store).Folders.GetByID(ctx, 42, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Restored" {
		t.Errorf("expected name Restored, got %s", got.Name)
	}
}

func TestFolderRepository_GetByID_CrossTenant(t *testing.T) {
	store, database := newTestStore(t)
	orgA := seedOrg(t, database, "org-a")
	orgB := seedOrg(t, database, "org-b")
	folderID := seedFolder(t, database, orgA, "")
	ctx := context.Background()

	_, err := repos(store).Folders.GetByID(ctx, folderID, orgB)
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound for cross-tenant read, got %v", err)
	}
}

func TestFolderRepository_Update(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	parentID := seedFolder(t, database, orgID, "parent")
	folderID := seedFolder(t, database, orgID, "child")
	ctx := context.Background()

	err := repos(store).Folders.Update(ctx, &secondary.FolderRecord{
		ID:             folderID,
		Name:           "renamed",
		ParentID:       parentID,
		Position:       3,
		OrganizationID: orgID,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repos(store).Folders.GetByID(ctx, folderID, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "renamed" || got.ParentID != parentID || got.Position != 3 {
		t.Errorf("unexpected folder after update: %+v", got)
	}
}

func TestFolderRepository_Update_Missing(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	err := repos(store).Folders.Update(ctx, &secondary.FolderRecord{
		ID:             999,
		Name:           "ghost",
		OrganizationID: orgID,
	})
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFolderRepository_Delete(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	folderID := seedFolder(t, database, orgID, "")
	ctx := context.Background()

	if err := repos(store).Folders.Delete(ctx, folderID, orgID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repos(store).Folders.Delete(ctx, folderID, orgID); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestFolderRepository_List(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	other := seedOrg(t, database, "other")
	seedFolder(t, database, orgID, "one")
	seedFolder(t, database, orgID, "two")
	seedFolder(t, database, other, "elsewhere")
	ctx := context.Background()

	folders, err := repos(store).Folders.List(ctx, orgID, secondary.FolderFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(folders) != 2 {
		t.Errorf("expected 2 folders, got %d", len(folders))
	}
}

func TestFolderRepository_CountChildren(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	parentID := seedFolder(t, database, orgID, "parent")
	ctx := context.Background()

	if _, err := database.Exec(
		"UPDATE folders SET parent_id = ? WHERE id = ?", parentID, seedFolder(t, database, orgID, "sub")); err != nil {
		t.Fatalf("failed to reparent folder: %v", err)
	}
	caseID := seedTestCase(t, database, orgID, "")
	if _, err := database.Exec("UPDATE test_cases SET folder_id = ? WHERE id = ?", parentID, caseID); err != nil {
		t.Fatalf("failed to move case: %v", err)
	}

	count, err := repos(store).Folders.CountChildren(ctx, parentID, orgID)
	if err != nil {
		t.Fatalf("CountChildren failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 children, got %d", count)
	}
}
