// Package primary defines the primary ports (driving adapters) for the
// application: service interfaces and their request/response types. The CLI
// and the MCP server both speak to the application through these.
package primary

import "context"

// FolderService defines the primary port for folder operations.
// Every mutation records a reversible entry on the organization's undo stack.
type FolderService interface {
	// CreateFolder creates a new folder.
	CreateFolder(ctx context.Context, req CreateFolderRequest) (*Folder, error)

	// GetFolder retrieves a folder by id.
	GetFolder(ctx context.Context, id, orgID int64) (*Folder, error)

	// ListFolders lists an organization's folders ordered by position.
	ListFolders(ctx context.Context, orgID int64, parentID int64) ([]*Folder, error)

	// UpdateFolder updates a folder's name, parent, or position. A no-op
	// update (nothing actually changed) records nothing.
	UpdateFolder(ctx context.Context, req UpdateFolderRequest) (*Folder, error)

	// DeleteFolder deletes an empty folder. Folders still containing
	// child folders or test cases are refused.
	DeleteFolder(ctx context.Context, id, orgID int64) error
}

// Folder is a node in an organization's folder tree. ParentID zero means
// the folder is a root.
type Folder struct {
	ID             int64
	Name           string
	ParentID       int64
	Position       int
	OrganizationID int64
}

// CreateFolderRequest contains parameters for creating a folder.
type CreateFolderRequest struct {
	OrganizationID int64
	Actor          string
	Name           string
	ParentID       int64
	Position       int
}

// UpdateFolderRequest contains parameters for updating a folder.
// Nil fields are left unchanged.
type UpdateFolderRequest struct {
	OrganizationID int64
	Actor          string
	FolderID       int64
	Name           *string
	ParentID       *int64
	Position       *int
}
