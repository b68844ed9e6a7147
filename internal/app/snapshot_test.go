package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/testdeck/internal/app"
	"github.com/example/testdeck/internal/ports/primary"
)

func TestCodec_CaptureRestoreRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	codec := app.NewCodec(e.store.Repos())
	tc := mkCase(t, e, "Original title")

	state, err := codec.Capture(ctx, "test_case", tc.ID, e.orgID)
	require.NoError(t, err)
	assert.Equal(t, "Original title", state["title"])

	title := "Mutated"
	_, err = e.cases.UpdateTestCase(ctx, primary.UpdateTestCaseRequest{
		OrganizationID: e.orgID, Actor: "alice", TestCaseID: tc.ID, Title: &title,
	})
	require.NoError(t, err)

	require.NoError(t, codec.Restore(ctx, "test_case", tc.ID, e.orgID, state))

	got, err := e.cases.GetTestCase(ctx, tc.ID, e.orgID)
	require.NoError(t, err)
	assert.Equal(t, "Original title", got.Title)
}

func TestCodec_Restore_MissingKeysZeroFields(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	codec := app.NewCodec(e.store.Repos())

	folder, err := e.folders.CreateFolder(ctx, primary.CreateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", Name: "Root",
	})
	require.NoError(t, err)
	child, err := e.folders.CreateFolder(ctx, primary.CreateFolderRequest{
		OrganizationID: e.orgID, Actor: "alice", Name: "Child", ParentID: folder.ID,
	})
	require.NoError(t, err)

	// A state captured before the folder was nested has no parentId key;
	// restoring it must clear the parent, not keep it.
	require.NoError(t, codec.Restore(ctx, "folder", child.ID, e.orgID, map[string]any{
		"name":     "Child",
		"position": float64(0),
	}))

	got, err := e.folders.GetFolder(ctx, child.ID, e.orgID)
	require.NoError(t, err)
	assert.Zero(t, got.ParentID)
}

func TestCodec_Capture_UnknownEntityType(t *testing.T) {
	e := newEnv(t)
	codec := app.NewCodec(e.store.Repos())

	_, err := codec.Capture(context.Background(), "widget", 1, e.orgID)
	assert.Error(t, err)
}
