package primary

import "context"

// Auth identifies the caller of a protocol-driven operation: the tenant it
// acts within, the user the token resolves to, and the MCP client/session
// the call arrived on. ReadOnly tokens are refused on write tools.
type Auth struct {
	OrganizationID int64
	UserID         string
	ClientID       string
	SessionID      string
	ReadOnly       bool
}

// WriteLogService defines the primary port for the append-only write-audit
// log over MCP tool calls, with single-step undo per entry.
type WriteLogService interface {
	// LogWrite appends one entry per tool invocation, success or failure,
	// and returns the new entry's id.
	LogWrite(ctx context.Context, auth Auth, req WriteLogRequest) (int64, error)

	// GetEntityState captures the current flat state of an entity, for
	// use as beforeState/afterState around a mutation. Returns
	// ErrNotFound for absent or cross-tenant ids.
	GetEntityState(ctx context.Context, entityType string, entityID, orgID int64) (map[string]any, error)

	// UndoWrite reverses one successful, not-yet-undone entry according
	// to its tool-name prefix: create_* deletes the entity, update_*
	// restores beforeState, everything else is ErrNotUndoable.
	UndoWrite(ctx context.Context, logID int64, undoneBy string, orgID int64) error

	// ListWrites returns a filtered, paginated page of entries, newest
	// first.
	ListWrites(ctx context.Context, orgID int64, filters WriteLogFilters) ([]*WriteLogEntry, error)
}

// WriteLogRequest describes one tool invocation to record.
type WriteLogRequest struct {
	ToolName     string
	ToolArgs     map[string]any
	EntityType   string
	EntityID     int64
	BeforeState  map[string]any
	AfterState   map[string]any
	Status       string // "success" or "failed"
	ErrorMessage string
}

// WriteLogEntry is a display view of one audit entry.
type WriteLogEntry struct {
	ID           int64
	UserID       string
	ClientID     string
	SessionID    string
	ToolName     string
	ToolArgs     map[string]any
	EntityType   string
	EntityID     int64
	Status       string
	ErrorMessage string
	UndoneAt     int64
	UndoneBy     string
	CreatedAt    int64
}

// WriteLogFilters contains filter and pagination options for ListWrites.
type WriteLogFilters struct {
	Limit         int
	Offset        int
	UserID        string
	ToolName      string
	EntityType    string
	IncludeUndone bool
}
