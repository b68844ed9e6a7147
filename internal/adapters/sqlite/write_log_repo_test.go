package sqlite_test

import (
	"context"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/testdeck/internal/ports/secondary"
)

func appendLog(t *testing.T, r secondary.Repositories, entry *secondary.WriteLogRecord) int64 {
	t.Helper()
	if entry.UserID == "" {
		entry.UserID = "user-1"
	}
	if entry.ClientID == "" {
		entry.ClientID = "claude"
	}
	if entry.ToolName == "" {
		entry.ToolName = "create_test_case"
	}
	if entry.EntityType == "" {
		entry.EntityType = "test_case"
	}
	if entry.Status == "" {
		entry.Status = "success"
	}
	if entry.ToolArgs == nil {
		entry.ToolArgs = []byte(`{}`)
	}
	id, err := r.WriteLog.Append(context.Background(), entry)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	return id
}

func TestWriteLogRepository_AppendAndGet(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	id := appendLog(t, repos(store), &secondary.WriteLogRecord{
		OrganizationID: orgID,
		SessionID:      "session-1",
		ToolName:       "update_test_case",
		ToolArgs:       []byte(`{"id":7,"title":"new"}`),
		EntityID:       7,
		BeforeState:    []byte(`{"title":"old"}`),
		AfterState:     []byte(`{"title":"new"}`),
		CreatedAt:      1000,
	})

	got, err := repos(store).WriteLog.GetByID(ctx, id, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ToolName != "update_test_case" || got.EntityID != 7 {
		t.Errorf("unexpected entry: %+v", got)
	}
	if string(got.BeforeState) != `{"title":"old"}` {
		t.Errorf("unexpected before state: %s", got.BeforeState)
	}
	if got.UndoneAt != 0 || got.UndoneBy != "" {
		t.Errorf("expected fresh entry not undone, got %+v", got)
	}
}

func TestWriteLogRepository_GetByID_CrossTenant(t *testing.T) {
	store, database := newTestStore(t)
	orgA := seedOrg(t, database, "org-a")
	orgB := seedOrg(t, database, "org-b")

	id := appendLog(t, repos(store), &secondary.WriteLogRecord{OrganizationID: orgA, CreatedAt: 1000})

	_, err := repos(store).WriteLog.GetByID(context.Background(), id, orgB)
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound for cross-tenant read, got %v", err)
	}
}

func TestWriteLogRepository_MarkUndone(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	id := appendLog(t, repos(store), &secondary.WriteLogRecord{OrganizationID: orgID, CreatedAt: 1000})

	if err := repos(store).WriteLog.MarkUndone(ctx, id, orgID, "reviewer", 2000); err != nil {
		t.Fatalf("MarkUndone failed: %v", err)
	}

	got, err := repos(store).WriteLog.GetByID(ctx, id, orgID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.UndoneAt != 2000 || got.UndoneBy != "reviewer" {
		t.Errorf("unexpected undo marker: %+v", got)
	}

	// Second mark hits the undone_at IS NULL guard.
	err = repos(store).WriteLog.MarkUndone(ctx, id, orgID, "reviewer", 3000)
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double mark, got %v", err)
	}
}

func TestWriteLogRepository_List(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	other := seedOrg(t, database, "other")
	ctx := context.Background()

	appendLog(t, repos(store), &secondary.WriteLogRecord{
		OrganizationID: orgID, UserID: "alice", ToolName: "create_folder",
		EntityType: "folder", CreatedAt: 1000,
	})
	appendLog(t, repos(store), &secondary.WriteLogRecord{
		OrganizationID: orgID, UserID: "bob", CreatedAt: 2000,
	})
	undoneID := appendLog(t, repos(store), &secondary.WriteLogRecord{
		OrganizationID: orgID, UserID: "alice", CreatedAt: 3000,
	})
	appendLog(t, repos(store), &secondary.WriteLogRecord{
		OrganizationID: other, UserID: "alice", CreatedAt: 4000,
	})
	if err := repos(store).WriteLog.MarkUndone(ctx, undoneID, orgID, "alice", 5000); err != nil {
		t.Fatalf("MarkUndone failed: %v", err)
	}

	entries, err := repos(store).WriteLog.List(ctx, orgID, secondary.WriteLogFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected undone entry excluded by default, got %d entries", len(entries))
	}
	if entries[0].CreatedAt != 2000 {
		t.Errorf("expected newest first, got created_at %d", entries[0].CreatedAt)
	}

	entries, err = repos(store).WriteLog.List(ctx, orgID, secondary.WriteLogFilters{IncludeUndone: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries with IncludeUndone, got %d", len(entries))
	}

	entries, err = repos(store).WriteLog.List(ctx, orgID, secondary.WriteLogFilters{UserID: "bob"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != "bob" {
		t.Errorf("unexpected user filter result: %+v", entries)
	}

	entries, err = repos(store).WriteLog.List(ctx, orgID, secondary.WriteLogFilters{ToolName: "create_folder"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].EntityType != "folder" {
		t.Errorf("unexpected tool filter result: %+v", entries)
	}
}

func TestWriteLogRepository_ListPagination(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		appendLog(t, repos(store), &secondary.WriteLogRecord{
			OrganizationID: orgID, CreatedAt: int64(1000 + i),
		})
	}

	entries, err := repos(store).WriteLog.List(ctx, orgID, secondary.WriteLogFilters{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].CreatedAt != 1003 || entries[1].CreatedAt != 1002 {
		t.Errorf("unexpected page: %d, %d", entries[0].CreatedAt, entries[1].CreatedAt)
	}

	entries, err = repos(store).WriteLog.List(ctx, orgID, secondary.WriteLogFilters{Offset: 4})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].CreatedAt != 1000 {
		t.Errorf("unexpected offset-only page: %+v", entries)
	}
}
