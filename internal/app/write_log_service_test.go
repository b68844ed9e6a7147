package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/testdeck/internal/app"
	"github.com/example/testdeck/internal/ports/primary"
)

func testAuth(orgID int64) primary.Auth {
	return primary.Auth{
		OrganizationID: orgID,
		UserID:         "user-1",
		ClientID:       "claude",
		SessionID:      "session-1",
	}
}

func TestWriteLog_LogWrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	id, err := e.writes.LogWrite(ctx, testAuth(e.orgID), primary.WriteLogRequest{
		ToolName:   "create_folder",
		ToolArgs:   map[string]any{"name": "Suites"},
		EntityType: "folder",
		EntityID:   5,
		AfterState: map[string]any{"id": float64(5), "name": "Suites"},
		Status:     "success",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	entries, err := e.writes.ListWrites(ctx, e.orgID, primary.WriteLogFilters{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "create_folder", entries[0].ToolName)
	assert.Equal(t, "user-1", entries[0].UserID)
	assert.Equal(t, "claude", entries[0].ClientID)
	assert.Equal(t, map[string]any{"name": "Suites"}, entries[0].ToolArgs)
}

func TestWriteLog_LogWrite_RecordsFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	id, err := e.writes.LogWrite(ctx, testAuth(e.orgID), primary.WriteLogRequest{
		ToolName:     "update_test_case",
		ToolArgs:     map[string]any{"id": float64(999)},
		EntityType:   "test_case",
		Status:       "failed",
		ErrorMessage: "test case 999: not found",
	})
	require.NoError(t, err)

	entries, err := e.writes.ListWrites(ctx, e.orgID, primary.WriteLogFilters{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Status)
	assert.Equal(t, "test case 999: not found", entries[0].ErrorMessage)

	// Failed entries cannot be undone.
	err = e.writes.UndoWrite(ctx, id, "reviewer", e.orgID)
	assert.ErrorIs(t, err, app.ErrInvalidState)
}

func TestWriteLog_GetEntityState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tc := mkCase(t, e, "Observed")

	state, err := e.writes.GetEntityState(ctx, "test_case", tc.ID, e.orgID)
	require.NoError(t, err)
	assert.Equal(t, "Observed", state["title"])
	assert.Equal(t, "draft", state["state"])

	_, err = e.writes.GetEntityState(ctx, "test_case", 999, e.orgID)
	assert.ErrorIs(t, err, app.ErrNotFound)
}

func TestWriteLog_UndoCreate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tc := mkCase(t, e, "Via MCP")

	id, err := e.writes.LogWrite(ctx, testAuth(e.orgID), primary.WriteLogRequest{
		ToolName:   "create_test_case",
		EntityType: "test_case",
		EntityID:   tc.ID,
		Status:     "success",
	})
	require.NoError(t, err)

	require.NoError(t, e.writes.UndoWrite(ctx, id, "user-1", e.orgID))

	_, err = e.cases.GetTestCase(ctx, tc.ID, e.orgID)
	assert.ErrorIs(t, err, app.ErrNotFound)

	// Undone entries leave the default listing but keep their mark.
	entries, err := e.writes.ListWrites(ctx, e.orgID, primary.WriteLogFilters{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	entries, err = e.writes.ListWrites(ctx, e.orgID, primary.WriteLogFilters{IncludeUndone: true})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user-1", entries[0].UndoneBy)
	assert.NotZero(t, entries[0].UndoneAt)
}

func TestWriteLog_UndoUpdate_RestoresBeforeState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tc := mkCase(t, e, "Before")

	before, err := e.writes.GetEntityState(ctx, "test_case", tc.ID, e.orgID)
	require.NoError(t, err)

	title := "After"
	_, err = e.cases.UpdateTestCase(ctx, primary.UpdateTestCaseRequest{
		OrganizationID: e.orgID, Actor: "user-1", TestCaseID: tc.ID, Title: &title,
	})
	require.NoError(t, err)
	after, err := e.writes.GetEntityState(ctx, "test_case", tc.ID, e.orgID)
	require.NoError(t, err)

	id, err := e.writes.LogWrite(ctx, testAuth(e.orgID), primary.WriteLogRequest{
		ToolName:    "update_test_case",
		EntityType:  "test_case",
		EntityID:    tc.ID,
		BeforeState: before,
		AfterState:  after,
		Status:      "success",
	})
	require.NoError(t, err)

	require.NoError(t, e.writes.UndoWrite(ctx, id, "user-1", e.orgID))

	got, err := e.cases.GetTestCase(ctx, tc.ID, e.orgID)
	require.NoError(t, err)
	assert.Equal(t, "Before", got.Title)
}

func TestWriteLog_UndoTwice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tc := mkCase(t, e, "Once only")

	id, err := e.writes.LogWrite(ctx, testAuth(e.orgID), primary.WriteLogRequest{
		ToolName:   "create_test_case",
		EntityType: "test_case",
		EntityID:   tc.ID,
		Status:     "success",
	})
	require.NoError(t, err)

	require.NoError(t, e.writes.UndoWrite(ctx, id, "user-1", e.orgID))
	err = e.writes.UndoWrite(ctx, id, "user-1", e.orgID)
	assert.ErrorIs(t, err, app.ErrInvalidState)
}

func TestWriteLog_UndoDelete_NotUndoable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	id, err := e.writes.LogWrite(ctx, testAuth(e.orgID), primary.WriteLogRequest{
		ToolName:   "delete_test_case",
		EntityType: "test_case",
		EntityID:   7,
		Status:     "success",
	})
	require.NoError(t, err)

	err = e.writes.UndoWrite(ctx, id, "user-1", e.orgID)
	assert.ErrorIs(t, err, app.ErrNotUndoable)

	// The refusal leaves the entry unmarked.
	entries, err := e.writes.ListWrites(ctx, e.orgID, primary.WriteLogFilters{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Zero(t, entries[0].UndoneAt)
}

func TestWriteLog_Undo_MissingEntityReference(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	id, err := e.writes.LogWrite(ctx, testAuth(e.orgID), primary.WriteLogRequest{
		ToolName:   "create_folder",
		EntityType: "folder",
		Status:     "success",
	})
	require.NoError(t, err)

	err = e.writes.UndoWrite(ctx, id, "user-1", e.orgID)
	assert.ErrorIs(t, err, app.ErrMissingEntityReference)
}

func TestWriteLog_UndoFailure_KeepsEntryRetryable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// The recorded entity never existed, so the reversal's delete fails.
	id, err := e.writes.LogWrite(ctx, testAuth(e.orgID), primary.WriteLogRequest{
		ToolName:   "create_folder",
		EntityType: "folder",
		EntityID:   999,
		Status:     "success",
	})
	require.NoError(t, err)

	err = e.writes.UndoWrite(ctx, id, "user-1", e.orgID)
	assert.ErrorIs(t, err, app.ErrUndoFailed)

	// The transaction rolled back: the entry is not marked undone.
	entries, err := e.writes.ListWrites(ctx, e.orgID, primary.WriteLogFilters{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Zero(t, entries[0].UndoneAt)
}

func TestWriteLog_TenantIsolation(t *testing.T) {
	e := newEnv(t)
	other := e.newOrg(t, "Other Org")
	ctx := context.Background()

	id, err := e.writes.LogWrite(ctx, testAuth(e.orgID), primary.WriteLogRequest{
		ToolName:   "create_folder",
		EntityType: "folder",
		EntityID:   1,
		Status:     "success",
	})
	require.NoError(t, err)

	err = e.writes.UndoWrite(ctx, id, "user-1", other)
	assert.ErrorIs(t, err, app.ErrNotFound)

	entries, err := e.writes.ListWrites(ctx, other, primary.WriteLogFilters{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
