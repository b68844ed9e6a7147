package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/testdeck/internal/ports/secondary"
)

func pushEntry(t *testing.T, r secondary.Repositories, orgID int64, action string, at int64, redo bool) {
	t.Helper()
	err := r.UndoStack.Push(context.Background(), &secondary.UndoStackRecord{
		ActionType:     action,
		Description:    action,
		UndoData:       []byte(`{}`),
		IsRedo:         redo,
		OrganizationID: orgID,
		CreatedAt:      at,
	})
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
}

func TestUndoStackRepository_PopIsLIFO(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	pushEntry(t, repos(store), orgID, "first", 1000, false)
	pushEntry(t, repos(store), orgID, "second", 2000, false)

	entry, err := repos(store).UndoStack.Pop(ctx, orgID, false)
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if entry.ActionType != "second" {
		t.Errorf("expected second entry popped first, got %s", entry.ActionType)
	}

	entry, err = repos(store).UndoStack.Pop(ctx, orgID, false)
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if entry.ActionType != "first" {
		t.Errorf("expected first entry, got %s", entry.ActionType)
	}
}

func TestUndoStackRepository_PopTieBreaksOnID(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	// Same timestamp; the higher id is the newer entry.
	pushEntry(t, repos(store), orgID, "older", 1000, false)
	pushEntry(t, repos(store), orgID, "newer", 1000, false)

	entry, err := repos(store).UndoStack.Pop(ctx, orgID, false)
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if entry.ActionType != "newer" {
		t.Errorf("expected newer entry, got %s", entry.ActionType)
	}
}

func TestUndoStackRepository_PopEmpty(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")

	entry, err := repos(store).UndoStack.Pop(context.Background(), orgID, false)
	if err != nil {
		t.Fatalf("Pop on empty stack failed: %v", err)
	}
	if entry != nil {
		t.Errorf("expected nil entry on empty stack, got %+v", entry)
	}
}

func TestUndoStackRepository_PopRespectsDirection(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	pushEntry(t, repos(store), orgID, "undoable", 1000, false)

	entry, err := repos(store).UndoStack.Pop(ctx, orgID, true)
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if entry != nil {
		t.Errorf("expected empty redo stack, got %+v", entry)
	}
}

func TestUndoStackRepository_PopRespectsTenant(t *testing.T) {
	store, database := newTestStore(t)
	orgA := seedOrg(t, database, "org-a")
	orgB := seedOrg(t, database, "org-b")
	ctx := context.Background()

	pushEntry(t, repos(store), orgA, "a-only", 1000, false)

	entry, err := repos(store).UndoStack.Pop(ctx, orgB, false)
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if entry != nil {
		t.Errorf("expected empty stack for other org, got %+v", entry)
	}
}

func TestUndoStackRepository_ClearRedo(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	pushEntry(t, repos(store), orgID, "redoable", 1000, true)
	pushEntry(t, repos(store), orgID, "undoable", 1000, false)

	if err := repos(store).UndoStack.ClearRedo(ctx, orgID); err != nil {
		t.Fatalf("ClearRedo failed: %v", err)
	}

	entry, err := repos(store).UndoStack.Pop(ctx, orgID, true)
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if entry != nil {
		t.Errorf("expected redo stack cleared, got %+v", entry)
	}

	count, err := repos(store).UndoStack.CountUndo(ctx, orgID)
	if err != nil {
		t.Fatalf("CountUndo failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected undo stack untouched, got %d entries", count)
	}
}

func TestUndoStackRepository_TrimUndo(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		pushEntry(t, repos(store), orgID, fmt.Sprintf("entry-%d", i), int64(1000+i), false)
	}

	if err := repos(store).UndoStack.TrimUndo(ctx, orgID, 2); err != nil {
		t.Fatalf("TrimUndo failed: %v", err)
	}

	entries, err := repos(store).UndoStack.List(ctx, orgID, false, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries kept, got %d", len(entries))
	}
	if entries[0].ActionType != "entry-4" || entries[1].ActionType != "entry-3" {
		t.Errorf("expected newest entries kept, got %s and %s",
			entries[0].ActionType, entries[1].ActionType)
	}
}

func TestUndoStackRepository_List(t *testing.T) {
	store, database := newTestStore(t)
	orgID := seedOrg(t, database, "")
	ctx := context.Background()

	pushEntry(t, repos(store), orgID, "old", 1000, false)
	pushEntry(t, repos(store), orgID, "new", 2000, false)
	pushEntry(t, repos(store), orgID, "redoable", 3000, true)

	entries, err := repos(store).UndoStack.List(ctx, orgID, false, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 undo entries, got %d", len(entries))
	}
	if entries[0].ActionType != "new" {
		t.Errorf("expected newest first, got %s", entries[0].ActionType)
	}

	entries, err = repos(store).UndoStack.List(ctx, orgID, false, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected limit applied, got %d entries", len(entries))
	}
}
