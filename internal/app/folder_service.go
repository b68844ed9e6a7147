package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/testdeck/internal/ports/primary"
	"github.com/example/testdeck/internal/ports/secondary"
)

// FolderServiceImpl implements folder operations. Every mutation and its
// undo-stack entry commit in one transaction.
type FolderServiceImpl struct {
	tx    secondary.TxRunner
	repos secondary.Repositories
	now   func() int64
}

// NewFolderService creates a new folder service.
func NewFolderService(tx secondary.TxRunner, repos secondary.Repositories) *FolderServiceImpl {
	return &FolderServiceImpl{
		tx:    tx,
		repos: repos,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// CreateFolder creates a folder and records the creation as reversible.
func (s *FolderServiceImpl) CreateFolder(ctx context.Context, req primary.CreateFolderRequest) (*primary.Folder, error) {
	rec := &secondary.FolderRecord{
		Name:           req.Name,
		ParentID:       req.ParentID,
		Position:       req.Position,
		OrganizationID: req.OrganizationID,
	}

	err := s.tx.InTx(ctx, func(r secondary.Repositories) error {
		if req.ParentID != 0 {
			if _, err := r.Folders.GetByID(ctx, req.ParentID, req.OrganizationID); err != nil {
				return fmt.Errorf("parent folder %d: %w", req.ParentID, err)
			}
		}
		if err := r.Folders.Create(ctx, rec); err != nil {
			return err
		}
		return recordEntry(ctx, r, req.OrganizationID, ActionCreateFolder,
			fmt.Sprintf("Created folder %q", req.Name),
			folderPayload{EntityID: rec.ID}, s.now())
	})
	if err != nil {
		return nil, err
	}
	return folderFromRecord(rec), nil
}

// GetFolder retrieves a folder by id.
func (s *FolderServiceImpl) GetFolder(ctx context.Context, id, orgID int64) (*primary.Folder, error) {
	rec, err := s.repos.Folders.GetByID(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	return folderFromRecord(rec), nil
}

// ListFolders lists an organization's folders ordered by position.
// parentID zero lists all folders.
func (s *FolderServiceImpl) ListFolders(ctx context.Context, orgID int64, parentID int64) ([]*primary.Folder, error) {
	records, err := s.repos.Folders.List(ctx, orgID, secondary.FolderFilters{ParentID: parentID})
	if err != nil {
		return nil, err
	}
	folders := make([]*primary.Folder, len(records))
	for i, rec := range records {
		folders[i] = folderFromRecord(rec)
	}
	return folders, nil
}

// UpdateFolder applies the non-nil fields of the request. When nothing
// actually changes the update is a no-op and records nothing.
func (s *FolderServiceImpl) UpdateFolder(ctx context.Context, req primary.UpdateFolderRequest) (*primary.Folder, error) {
	var updated *secondary.FolderRecord

	err := s.tx.InTx(ctx, func(r secondary.Repositories) error {
		before, err := r.Folders.GetByID(ctx, req.FolderID, req.OrganizationID)
		if err != nil {
			return err
		}

		after := *before
		if req.Name != nil {
			after.Name = *req.Name
		}
		if req.ParentID != nil {
			if *req.ParentID == req.FolderID {
				return fmt.Errorf("folder %d cannot be its own parent: %w", req.FolderID, ErrInvalidState)
			}
			after.ParentID = *req.ParentID
		}
		if req.Position != nil {
			after.Position = *req.Position
		}

		changes, err := diffRecords(before, &after)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			updated = before
			return nil
		}

		if err := r.Folders.Update(ctx, &after); err != nil {
			return err
		}
		updated = &after

		return recordEntry(ctx, r, req.OrganizationID, ActionUpdateFolder,
			fmt.Sprintf("Updated folder %q", after.Name),
			valuesPayload{EntityID: after.ID, Values: changedValues(changes)}, s.now())
	})
	if err != nil {
		return nil, err
	}
	return folderFromRecord(updated), nil
}

// DeleteFolder deletes an empty folder and records the deletion. A folder
// still holding child folders or test cases is refused so the tree never
// loses rows implicitly.
func (s *FolderServiceImpl) DeleteFolder(ctx context.Context, id, orgID int64) error {
	return s.tx.InTx(ctx, func(r secondary.Repositories) error {
		rec, err := r.Folders.GetByID(ctx, id, orgID)
		if err != nil {
			return err
		}

		children, err := r.Folders.CountChildren(ctx, id, orgID)
		if err != nil {
			return err
		}
		if children > 0 {
			return fmt.Errorf("folder %q holds %d items: %w", rec.Name, children, ErrFolderNotEmpty)
		}

		if err := r.Folders.Delete(ctx, id, orgID); err != nil {
			return err
		}
		return recordEntry(ctx, r, orgID, ActionDeleteFolder,
			fmt.Sprintf("Deleted folder %q", rec.Name),
			folderPayload{Snapshot: rec}, s.now())
	})
}

func folderFromRecord(rec *secondary.FolderRecord) *primary.Folder {
	return &primary.Folder{
		ID:             rec.ID,
		Name:           rec.Name,
		ParentID:       rec.ParentID,
		Position:       rec.Position,
		OrganizationID: rec.OrganizationID,
	}
}

// diffRecords diffs two records of the same shape through their JSON field
// names, which is also the vocabulary the undo payloads store.
func diffRecords(before, after any) ([]FieldChange, error) {
	bm, err := toValueMap(before)
	if err != nil {
		return nil, err
	}
	am, err := toValueMap(after)
	if err != nil {
		return nil, err
	}
	return Diff(bm, am), nil
}

// Ensure FolderServiceImpl implements the interface
var _ primary.FolderService = (*FolderServiceImpl)(nil)
