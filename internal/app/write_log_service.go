package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/testdeck/internal/ports/primary"
	"github.com/example/testdeck/internal/ports/secondary"
)

// WriteLogServiceImpl implements the append-only MCP write-audit log with
// single-step, at-most-once undo per entry. Unlike the UI stack this is a
// lossy history: no redo, and failures are recorded too (for observability)
// but can never be undone.
type WriteLogServiceImpl struct {
	tx    secondary.TxRunner
	repos secondary.Repositories
	now   func() int64
}

// NewWriteLogService creates the write-audit log manager.
func NewWriteLogService(tx secondary.TxRunner, repos secondary.Repositories) *WriteLogServiceImpl {
	return &WriteLogServiceImpl{
		tx:    tx,
		repos: repos,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// LogWrite appends one entry per tool invocation and returns its id, which
// tool handlers surface so the caller can offer an immediate undo.
func (s *WriteLogServiceImpl) LogWrite(ctx context.Context, auth primary.Auth, req primary.WriteLogRequest) (int64, error) {
	args, err := json.Marshal(req.ToolArgs)
	if err != nil {
		return 0, fmt.Errorf("failed to encode tool args: %w", err)
	}

	entry := &secondary.WriteLogRecord{
		OrganizationID: auth.OrganizationID,
		UserID:         auth.UserID,
		ClientID:       auth.ClientID,
		SessionID:      auth.SessionID,
		ToolName:       req.ToolName,
		ToolArgs:       args,
		EntityType:     req.EntityType,
		EntityID:       req.EntityID,
		Status:         req.Status,
		ErrorMessage:   req.ErrorMessage,
		CreatedAt:      s.now(),
	}

	if req.BeforeState != nil {
		if entry.BeforeState, err = json.Marshal(req.BeforeState); err != nil {
			return 0, fmt.Errorf("failed to encode before state: %w", err)
		}
	}
	if req.AfterState != nil {
		if entry.AfterState, err = json.Marshal(req.AfterState); err != nil {
			return 0, fmt.Errorf("failed to encode after state: %w", err)
		}
	}

	id, err := s.repos.WriteLog.Append(ctx, entry)
	if err != nil {
		return 0, fmt.Errorf("failed to append write log entry: %w", err)
	}
	return id, nil
}

// GetEntityState captures the current flat state of an entity, for tool
// handlers to call before and after mutating.
func (s *WriteLogServiceImpl) GetEntityState(ctx context.Context, entityType string, entityID, orgID int64) (map[string]any, error) {
	return NewCodec(s.repos).Capture(ctx, entityType, entityID, orgID)
}

// UndoWrite reverses one log entry, dispatching purely on the tool-name
// prefix convention: create_* deletes the recorded entity, update_*
// restores beforeState, and every other prefix (delete_*, list_*, …) is
// ErrNotUndoable by design — the UI undo stack is the mechanism for delete
// reversal. The reversal and the undone_at mark commit atomically; a store
// failure rolls both back so the entry stays eligible for retry.
func (s *WriteLogServiceImpl) UndoWrite(ctx context.Context, logID int64, undoneBy string, orgID int64) error {
	return s.tx.InTx(ctx, func(r secondary.Repositories) error {
		entry, err := r.WriteLog.GetByID(ctx, logID, orgID)
		if err != nil {
			return err
		}
		if entry.Status != "success" {
			return fmt.Errorf("entry %d recorded a failed call: %w", logID, ErrInvalidState)
		}
		if entry.UndoneAt != 0 {
			return fmt.Errorf("entry %d already undone: %w", logID, ErrInvalidState)
		}

		if err := s.reverse(ctx, r, entry); err != nil {
			return err
		}

		return r.WriteLog.MarkUndone(ctx, logID, orgID, undoneBy, s.now())
	})
}

// reverse applies the inverse mutation for one entry.
func (s *WriteLogServiceImpl) reverse(ctx context.Context, r secondary.Repositories, entry *secondary.WriteLogRecord) error {
	switch {
	case strings.HasPrefix(entry.ToolName, "create_"):
		if entry.EntityID == 0 {
			return fmt.Errorf("create entry %d has no entity id: %w", entry.ID, ErrMissingEntityReference)
		}
		if err := s.deleteEntity(ctx, r, entry.EntityType, entry.EntityID, entry.OrganizationID); err != nil {
			return fmt.Errorf("%w: %v", ErrUndoFailed, err)
		}
		return nil

	case strings.HasPrefix(entry.ToolName, "update_"):
		if entry.EntityID == 0 || len(entry.BeforeState) == 0 {
			return fmt.Errorf("update entry %d has no before state: %w", entry.ID, ErrMissingEntityReference)
		}
		var state map[string]any
		if err := json.Unmarshal(entry.BeforeState, &state); err != nil {
			return fmt.Errorf("entry %d before state unreadable: %w", entry.ID, err)
		}
		if err := NewCodec(r).Restore(ctx, entry.EntityType, entry.EntityID, entry.OrganizationID, state); err != nil {
			return fmt.Errorf("%w: %v", ErrUndoFailed, err)
		}
		return nil

	default:
		return fmt.Errorf("tool %q: %w", entry.ToolName, ErrNotUndoable)
	}
}

// deleteEntity removes the entity a create_* tool produced; owned children
// (scenarios, results) cascade with their parent.
func (s *WriteLogServiceImpl) deleteEntity(ctx context.Context, r secondary.Repositories, entityType string, id, orgID int64) error {
	switch entityType {
	case EntityFolder:
		return r.Folders.Delete(ctx, id, orgID)
	case EntityTestCase:
		return r.TestCases.Delete(ctx, id, orgID)
	case EntityScenario:
		return r.Scenarios.Delete(ctx, id, orgID)
	case EntityTestRun:
		return r.TestRuns.Delete(ctx, id, orgID)
	case EntityTestResult:
		return r.TestRunResults.Delete(ctx, id, orgID)
	default:
		return fmt.Errorf("unknown entity type %q", entityType)
	}
}

// ListWrites returns a filtered page of entries, newest first. Undone
// entries are hidden unless IncludeUndone is set.
func (s *WriteLogServiceImpl) ListWrites(ctx context.Context, orgID int64, filters primary.WriteLogFilters) ([]*primary.WriteLogEntry, error) {
	records, err := s.repos.WriteLog.List(ctx, orgID, secondary.WriteLogFilters{
		Limit:         filters.Limit,
		Offset:        filters.Offset,
		UserID:        filters.UserID,
		ToolName:      filters.ToolName,
		EntityType:    filters.EntityType,
		IncludeUndone: filters.IncludeUndone,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*primary.WriteLogEntry, len(records))
	for i, rec := range records {
		entry := &primary.WriteLogEntry{
			ID:           rec.ID,
			UserID:       rec.UserID,
			ClientID:     rec.ClientID,
			SessionID:    rec.SessionID,
			ToolName:     rec.ToolName,
			EntityType:   rec.EntityType,
			EntityID:     rec.EntityID,
			Status:       rec.Status,
			ErrorMessage: rec.ErrorMessage,
			UndoneAt:     rec.UndoneAt,
			UndoneBy:     rec.UndoneBy,
			CreatedAt:    rec.CreatedAt,
		}
		if len(rec.ToolArgs) > 0 {
			// Tolerate malformed stored args; the entry is still useful.
			var args map[string]any
			if err := json.Unmarshal(rec.ToolArgs, &args); err == nil {
				entry.ToolArgs = args
			}
		}
		entries[i] = entry
	}
	return entries, nil
}

// Ensure WriteLogServiceImpl implements the interface
var _ primary.WriteLogService = (*WriteLogServiceImpl)(nil)
