package app_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/example/testdeck/internal/adapters/sqlite"
	"github.com/example/testdeck/internal/app"
	"github.com/example/testdeck/internal/db"
	"github.com/example/testdeck/internal/ports/secondary"
)

// env wires every service against one in-memory store, the same way the
// wire package does for the binary.
type env struct {
	store   *sqlite.Store
	db      *sql.DB
	folders *app.FolderServiceImpl
	cases   *app.TestCaseServiceImpl
	runs    *app.TestRunServiceImpl
	undo    *app.UndoServiceImpl
	writes  *app.WriteLogServiceImpl
	orgID   int64
}

func newEnv(t *testing.T) *env {
	t.Helper()

	database, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	_, err = database.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = database.Exec(db.GetSchemaSQL())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	store := sqlite.NewStore(database)
	e := &env{
		store:   store,
		db:      database,
		folders: app.NewFolderService(store, store.Repos()),
		cases:   app.NewTestCaseService(store, store.Repos()),
		runs:    app.NewTestRunService(store, store.Repos()),
		undo:    app.NewUndoService(store, store.Repos()),
		writes:  app.NewWriteLogService(store, store.Repos()),
	}
	e.orgID = e.newOrg(t, "Test Org")
	return e
}

func (e *env) newOrg(t *testing.T, name string) int64 {
	t.Helper()
	org := &secondary.OrganizationRecord{Name: name, CreatedAt: 1000}
	require.NoError(t, e.store.Repos().Organizations.Create(context.Background(), org))
	return org.ID
}

// undoDepth counts the undo entries currently stored for an organization.
func (e *env) undoDepth(t *testing.T, orgID int64) int {
	t.Helper()
	count, err := e.store.Repos().UndoStack.CountUndo(context.Background(), orgID)
	require.NoError(t, err)
	return count
}

// redoEntries lists the redo stack, newest first.
func (e *env) redoEntries(t *testing.T, orgID int64) []*secondary.UndoStackRecord {
	t.Helper()
	entries, err := e.store.Repos().UndoStack.List(context.Background(), orgID, true, 100)
	require.NoError(t, err)
	return entries
}
