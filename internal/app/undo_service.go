package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/testdeck/internal/ports/primary"
	"github.com/example/testdeck/internal/ports/secondary"
)

// maxUndoDepth bounds the per-organization undo stack. Recording the 51st
// action drops the oldest entry.
const maxUndoDepth = 50

// defaultStackView is how many entries UndoStack/RedoStack return when the
// caller doesn't say.
const defaultStackView = 10

// UndoServiceImpl implements the per-organization undo/redo stacks. The
// store is the single source of truth; no stack state is cached in memory.
type UndoServiceImpl struct {
	tx    secondary.TxRunner
	repos secondary.Repositories
	now   func() int64
}

// NewUndoService creates the stack manager. tx binds each undo/redo to one
// store transaction; repos serves plain reads.
func NewUndoService(tx secondary.TxRunner, repos secondary.Repositories) *UndoServiceImpl {
	return &UndoServiceImpl{
		tx:    tx,
		repos: repos,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// Record pushes a new reversible action in its own transaction. The CRUD
// services record inside the transaction that performed the mutation via
// recordEntry instead; this entry point serves callers with no transaction
// of their own.
func (s *UndoServiceImpl) Record(ctx context.Context, orgID int64, action ActionType, description string, payload any) error {
	return s.tx.InTx(ctx, func(r secondary.Repositories) error {
		return recordEntry(ctx, r, orgID, action, description, payload, s.now())
	})
}

// recordEntry pushes a reversible action onto the undo stack through
// transaction-bound repositories. In order: the redo stack is cleared (a new
// forward action invalidates redo history), the undo stack is trimmed to
// make room under the cap, then the entry is inserted.
func recordEntry(ctx context.Context, r secondary.Repositories, orgID int64, action ActionType, description string, payload any, at int64) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", action, err)
	}

	if err := r.UndoStack.ClearRedo(ctx, orgID); err != nil {
		return err
	}

	count, err := r.UndoStack.CountUndo(ctx, orgID)
	if err != nil {
		return err
	}
	if count >= maxUndoDepth {
		if err := r.UndoStack.TrimUndo(ctx, orgID, maxUndoDepth-1); err != nil {
			return err
		}
	}

	return r.UndoStack.Push(ctx, &secondary.UndoStackRecord{
		ActionType:     string(action),
		Description:    description,
		UndoData:       data,
		IsRedo:         false,
		OrganizationID: orgID,
		CreatedAt:      at,
	})
}

// Undo pops the most recent undo entry, applies its inverse, and pushes the
// complement onto the redo stack. The whole exchange is one transaction, so
// a failed inverse leaves the entry where it was.
func (s *UndoServiceImpl) Undo(ctx context.Context, orgID int64) (string, error) {
	return s.flip(ctx, orgID, false)
}

// Redo pops the most recent redo entry, replays it, and pushes the
// complement back onto the undo stack.
func (s *UndoServiceImpl) Redo(ctx context.Context, orgID int64) (string, error) {
	return s.flip(ctx, orgID, true)
}

// flip moves the top entry of one stack to the other, applying its
// mutation on the way.
func (s *UndoServiceImpl) flip(ctx context.Context, orgID int64, redo bool) (string, error) {
	var description string

	err := s.tx.InTx(ctx, func(r secondary.Repositories) error {
		entry, err := r.UndoStack.Pop(ctx, orgID, redo)
		if err != nil {
			return err
		}
		if entry == nil {
			if redo {
				return ErrNothingToRedo
			}
			return ErrNothingToUndo
		}

		complement, err := newInverter(r).apply(ctx, entry)
		if err != nil {
			return fmt.Errorf("failed to reverse %q: %w", entry.Description, err)
		}

		if err := r.UndoStack.Push(ctx, &secondary.UndoStackRecord{
			ActionType:     entry.ActionType,
			Description:    entry.Description,
			UndoData:       complement,
			IsRedo:         !redo,
			OrganizationID: orgID,
			CreatedAt:      s.now(),
		}); err != nil {
			return err
		}

		description = entry.Description
		return nil
	})
	if err != nil {
		return "", err
	}
	return description, nil
}

// UndoStack returns the most recent undo entries for display.
func (s *UndoServiceImpl) UndoStack(ctx context.Context, orgID int64, limit int) ([]*primary.UndoEntry, error) {
	return s.list(ctx, orgID, false, limit)
}

// RedoStack returns the most recent redo entries for display.
func (s *UndoServiceImpl) RedoStack(ctx context.Context, orgID int64, limit int) ([]*primary.UndoEntry, error) {
	return s.list(ctx, orgID, true, limit)
}

func (s *UndoServiceImpl) list(ctx context.Context, orgID int64, redo bool, limit int) ([]*primary.UndoEntry, error) {
	if limit <= 0 {
		limit = defaultStackView
	}
	records, err := s.repos.UndoStack.List(ctx, orgID, redo, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]*primary.UndoEntry, len(records))
	for i, rec := range records {
		entries[i] = &primary.UndoEntry{
			ID:          rec.ID,
			ActionType:  rec.ActionType,
			Description: rec.Description,
			IsRedo:      rec.IsRedo,
			CreatedAt:   rec.CreatedAt,
		}
	}
	return entries, nil
}

// Ensure UndoServiceImpl implements the interface
var _ primary.UndoService = (*UndoServiceImpl)(nil)
