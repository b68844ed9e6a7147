package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/testdeck/internal/app"
	"github.com/example/testdeck/internal/ports/primary"
)

func TestFolderService_Create(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	parent, err := e.folders.CreateFolder(ctx, primary.CreateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", Name: "Suites",
	})
	require.NoError(t, err)

	child, err := e.folders.CreateFolder(ctx, primary.CreateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", Name: "Login", ParentID: parent.ID, Position: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, child.ParentID)
	assert.Equal(t, 1, child.Position)

	assert.Equal(t, 2, e.undoDepth(t, e.orgID))
}

func TestFolderService_Create_MissingParent(t *testing.T) {
	e := newEnv(t)

	_, err := e.folders.CreateFolder(context.Background(), primary.CreateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", Name: "Orphan", ParentID: 999,
	})
	assert.ErrorIs(t, err, app.ErrNotFound)
	assert.Equal(t, 0, e.undoDepth(t, e.orgID))
}

func TestFolderService_Update(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	folder, err := e.folders.CreateFolder(ctx, primary.CreateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", Name: "Old Name",
	})
	require.NoError(t, err)

	name := "New Name"
	updated, err := e.folders.UpdateFolder(ctx, primary.UpdateFolderRequest{
		OrganizationID: e.orgID, Actor: "bob", FolderID: folder.ID, Name: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	// Undo restores the displaced name.
	_, err = e.undo.Undo(ctx, e.orgID)
	require.NoError(t, err)
	got, err := e.folders.GetFolder(ctx, folder.ID, e.orgID)
	require.NoError(t, err)
	assert.Equal(t, "Old Name", got.Name)

	// Redo reapplies it.
	_, err = e.undo.Redo(ctx, e.orgID)
	require.NoError(t, err)
	got, err = e.folders.GetFolder(ctx, folder.ID, e.orgID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
}

func TestFolderService_Update_NoOpRecordsNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	folder, err := e.folders.CreateFolder(ctx, primary.CreateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", Name: "Same",
	})
	require.NoError(t, err)
	depth := e.undoDepth(t, e.orgID)

	same := "Same"
	_, err = e.folders.UpdateFolder(ctx, primary.UpdateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", FolderID: folder.ID, Name: &same,
	})
	require.NoError(t, err)

	assert.Equal(t, depth, e.undoDepth(t, e.orgID))
}

func TestFolderService_Update_SelfParent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	folder, err := e.folders.CreateFolder(ctx, primary.CreateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", Name: "Loop",
	})
	require.NoError(t, err)

	_, err = e.folders.UpdateFolder(ctx, primary.UpdateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", FolderID: folder.ID, ParentID: &folder.ID,
	})
	assert.ErrorIs(t, err, app.ErrInvalidState)
}

func TestFolderService_Delete_RefusesNonEmpty(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	folder, err := e.folders.CreateFolder(ctx, primary.CreateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", Name: "Full",
	})
	require.NoError(t, err)
	_, err = e.cases.CreateTestCase(ctx, primary.CreateTestCaseRequest{
		OrganizationID: e.orgID, Actor: "alice", Title: "Occupant", FolderID: folder.ID,
	})
	require.NoError(t, err)

	err = e.folders.DeleteFolder(ctx, folder.ID, e.orgID)
	assert.ErrorIs(t, err, app.ErrFolderNotEmpty)
}

func TestFolderService_Delete_UndoRestores(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	folder, err := e.folders.CreateFolder(ctx, primary.CreateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", Name: "Ephemeral", Position: 4,
	})
	require.NoError(t, err)
	require.NoError(t, e.folders.DeleteFolder(ctx, folder.ID, e.orgID))

	desc, err := e.undo.Undo(ctx, e.orgID)
	require.NoError(t, err)
	assert.Equal(t, `Deleted folder "Ephemeral"`, desc)

	restored, err := e.folders.GetFolder(ctx, folder.ID, e.orgID)
	require.NoError(t, err)
	assert.Equal(t, "Ephemeral", restored.Name)
	assert.Equal(t, 4, restored.Position)
}

func TestFolderService_TenantIsolation(t *testing.T) {
	e := newEnv(t)
	other := e.newOrg(t, "Other Org")
	ctx := context.Background()

	folder, err := e.folders.CreateFolder(ctx, primary.CreateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", Name: "Private",
	})
	require.NoError(t, err)

	_, err = e.folders.GetFolder(ctx, folder.ID, other)
	assert.ErrorIs(t, err, app.ErrNotFound)
	err = e.folders.DeleteFolder(ctx, folder.ID, other)
	assert.ErrorIs(t, err, app.ErrNotFound)
}
