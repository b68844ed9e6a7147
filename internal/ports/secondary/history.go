package secondary

import "context"

// UndoStackRepository defines the secondary port for the two-stack undo/redo
// ledger. Both stacks live in one table distinguished by the IsRedo flag;
// this interface keeps the flag semantics out of call sites.
type UndoStackRepository interface {
	// Push inserts a new stack entry and sets its id on the record.
	Push(ctx context.Context, entry *UndoStackRecord) error

	// Pop atomically removes and returns the most recent entry of one
	// stack for an organization (single conditional delete-and-return,
	// so two concurrent pops can never claim the same entry). Returns
	// (nil, nil) when the stack is empty.
	Pop(ctx context.Context, orgID int64, redo bool) (*UndoStackRecord, error)

	// ClearRedo deletes every redo entry for an organization. Called on
	// each new forward action: you cannot redo after taking a new action.
	ClearRedo(ctx context.Context, orgID int64) error

	// CountUndo returns the number of undo entries for an organization.
	CountUndo(ctx context.Context, orgID int64) (int, error)

	// TrimUndo deletes the oldest undo entries beyond the keep most
	// recent for an organization.
	TrimUndo(ctx context.Context, orgID int64, keep int) error

	// List retrieves the top entries of one stack, most recent first.
	List(ctx context.Context, orgID int64, redo bool, limit int) ([]*UndoStackRecord, error)
}

// UndoStackRecord represents a reversible action as stored in the ledger.
// UndoData is the JSON payload whose shape depends on ActionType.
type UndoStackRecord struct {
	ID             int64
	ActionType     string
	Description    string
	UndoData       []byte
	IsRedo         bool
	OrganizationID int64
	CreatedAt      int64
}

// WriteLogRepository defines the secondary port for the append-only MCP
// write-audit ledger. Rows are never deleted.
type WriteLogRepository interface {
	// Append inserts a new log entry and returns its id.
	Append(ctx context.Context, entry *WriteLogRecord) (int64, error)

	// GetByID retrieves a log entry by id within an organization.
	GetByID(ctx context.Context, id, orgID int64) (*WriteLogRecord, error)

	// MarkUndone sets undone_at/undone_by on a log entry. Fails with
	// ErrNotFound if the entry is absent or already marked.
	MarkUndone(ctx context.Context, id, orgID int64, undoneBy string, undoneAt int64) error

	// List retrieves log entries for an organization, newest first.
	List(ctx context.Context, orgID int64, filters WriteLogFilters) ([]*WriteLogRecord, error)
}

// WriteLogRecord represents one MCP tool invocation as stored in the ledger.
// UndoneAt zero means the entry has not been undone.
type WriteLogRecord struct {
	ID             int64
	OrganizationID int64
	UserID         string
	ClientID       string
	SessionID      string
	ToolName       string
	ToolArgs       []byte
	EntityType     string
	EntityID       int64
	BeforeState    []byte
	AfterState     []byte
	Status         string
	ErrorMessage   string
	UndoneAt       int64
	UndoneBy       string
	CreatedAt      int64
}

// WriteLogFilters contains filter and pagination options for listing the
// write log.
type WriteLogFilters struct {
	Limit         int
	Offset        int
	UserID        string
	ToolName      string
	EntityType    string
	IncludeUndone bool
}

// Repositories bundles every repository bound to one connection or one
// transaction.
type Repositories struct {
	Organizations  OrganizationRepository
	Folders        FolderRepository
	TestCases      TestCaseRepository
	Scenarios      ScenarioRepository
	TestRuns       TestRunRepository
	TestRunResults TestRunResultRepository
	UndoStack      UndoStackRepository
	WriteLog       WriteLogRepository
}

// TxRunner executes a function with repositories bound to a single store
// transaction. The transaction commits if fn returns nil and rolls back
// otherwise, so a failed undo leaves both ledgers untouched.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Repositories) error) error
}
