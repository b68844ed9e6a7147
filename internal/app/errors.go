// Package app implements the application services behind the primary ports:
// the snapshot codec, the diff engine, the undo/redo stack manager, the MCP
// write-audit log manager, and the CRUD services that feed them.
package app

import (
	"errors"

	"github.com/example/testdeck/internal/ports/secondary"
)

// Sentinel errors for the history core. Services return these wrapped with
// fmt.Errorf("...: %w", err); callers match with errors.Is and own all
// user-facing messaging.
var (
	// ErrNotFound reports an absent row — or a row in another
	// organization, which looks identical by design.
	ErrNotFound = secondary.ErrNotFound

	// ErrNothingToUndo reports an empty undo stack. A benign steady-state
	// condition, not a failure.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo reports an empty redo stack.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrInvalidState reports an attempt to undo a failed or
	// already-undone write log entry.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotUndoable reports a write log entry whose tool name maps to no
	// reversal (delete_* and read tools, by design).
	ErrNotUndoable = errors.New("not undoable")

	// ErrMissingEntityReference reports a create_*/update_* log entry
	// recorded without the entity id or before state needed to reverse
	// it — an invariant violation by the recording tool handler.
	ErrMissingEntityReference = errors.New("missing entity reference")

	// ErrUndoFailed reports that the store mutation during a reversal
	// failed. The log entry is left unmarked so the same undo call can
	// be retried.
	ErrUndoFailed = errors.New("undo failed")

	// ErrFolderNotEmpty reports a delete of a folder that still contains
	// child folders or test cases.
	ErrFolderNotEmpty = errors.New("folder not empty")
)
