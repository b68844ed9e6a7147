package primary

import "context"

// UndoService defines the primary port for the per-organization undo/redo
// stacks over UI-driven actions.
type UndoService interface {
	// Undo reverses the most recent action and moves it to the redo
	// stack. Returns the action's description for user feedback, or
	// ErrNothingToUndo when the stack is empty.
	Undo(ctx context.Context, orgID int64) (string, error)

	// Redo replays the most recently undone action and moves it back to
	// the undo stack. Returns ErrNothingToRedo when the stack is empty.
	Redo(ctx context.Context, orgID int64) (string, error)

	// UndoStack returns the most recent undo entries for display.
	UndoStack(ctx context.Context, orgID int64, limit int) ([]*UndoEntry, error)

	// RedoStack returns the most recent redo entries for display.
	RedoStack(ctx context.Context, orgID int64, limit int) ([]*UndoEntry, error)
}

// UndoEntry is a display view of one stack entry; the reversal payload
// itself stays internal to the manager.
type UndoEntry struct {
	ID          int64
	ActionType  string
	Description string
	IsRedo      bool
	CreatedAt   int64
}
