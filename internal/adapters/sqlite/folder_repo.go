package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/testdeck/internal/ports/secondary"
)

// FolderRepository implements secondary.FolderRepository with SQLite.
type FolderRepository struct {
	q DBTX
}

// NewFolderRepository creates a new SQLite folder repository.
func NewFolderRepository(q DBTX) *FolderRepository {
	return &FolderRepository{q: q}
}

const folderSelectCols = "id, name, parent_id, position, organization_id"

// scanFolder scans a folder row into a FolderRecord.
func scanFolder(scanner interface {
	Scan(dest ...any) error
}) (*secondary.FolderRecord, error) {
	var parentID sql.NullInt64

	record := &secondary.FolderRecord{}
	err := scanner.Scan(&record.ID, &record.Name, &parentID, &record.Position, &record.OrganizationID)
	if err != nil {
		return nil, err
	}
	record.ParentID = parentID.Int64
	return record, nil
}

// Create persists a new folder, honoring an explicit id when set.
func (r *FolderRepository) Create(ctx context.Context, folder *secondary.FolderRecord) error {
	if folder.ID != 0 {
		_, err := r.q.ExecContext(ctx,
			"INSERT INTO folders (id, name, parent_id, position, organization_id) VALUES (?, ?, ?, ?, ?)",
			folder.ID, folder.Name, nullInt64(folder.ParentID), folder.Position, folder.OrganizationID,
		)
		if err != nil {
			return fmt.Errorf("failed to create folder: %w", err)
		}
		return nil
	}

	res, err := r.q.ExecContext(ctx,
		"INSERT INTO folders (name, parent_id, position, organization_id) VALUES (?, ?, ?, ?)",
		folder.Name, nullInt64(folder.ParentID), folder.Position, folder.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read folder id: %w", err)
	}
	folder.ID = id
	return nil
}

// GetByID retrieves a folder by id within an organization.
func (r *FolderRepository) GetByID(ctx context.Context, id, orgID int64) (*secondary.FolderRecord, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+folderSelectCols+" FROM folders WHERE id = ? AND organization_id = ?",
		id, orgID,
	)
	record, err := scanFolder(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("folder %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return record, nil
}

// Update writes all mutable fields, scoped by id and organization.
func (r *FolderRepository) Update(ctx context.Context, folder *secondary.FolderRecord) error {
	res, err := r.q.ExecContext(ctx,
		"UPDATE folders SET name = ?, parent_id = ?, position = ? WHERE id = ? AND organization_id = ?",
		folder.Name, nullInt64(folder.ParentID), folder.Position, folder.ID, folder.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}
	return requireAffected(res, "folder", folder.ID)
}

// Delete removes a folder.
func (r *FolderRepository) Delete(ctx context.Context, id, orgID int64) error {
	res, err := r.q.ExecContext(ctx,
		"DELETE FROM folders WHERE id = ? AND organization_id = ?", id, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return requireAffected(res, "folder", id)
}

// List retrieves folders for an organization ordered by position.
func (r *FolderRepository) List(ctx context.Context, orgID int64, filters secondary.FolderFilters) ([]*secondary.FolderRecord, error) {
	query := "SELECT " + folderSelectCols + " FROM folders WHERE organization_id = ?"
	args := []any{orgID}
	if filters.ParentID != 0 {
		query += " AND parent_id = ?"
		args = append(args, filters.ParentID)
	}
	query += " ORDER BY position, id"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var records []*secondary.FolderRecord
	for rows.Next() {
		record, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// CountChildren returns the number of child folders and test cases still
// referencing the folder.
func (r *FolderRepository) CountChildren(ctx context.Context, id, orgID int64) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM folders WHERE parent_id = ? AND organization_id = ?)
		      + (SELECT COUNT(*) FROM test_cases WHERE folder_id = ? AND organization_id = ?)`,
		id, orgID, id, orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count folder children: %w", err)
	}
	return count, nil
}

// requireAffected converts a zero-row write into ErrNotFound so callers can
// tell a missing (or cross-tenant) row from a successful write.
func requireAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, secondary.ErrNotFound)
	}
	return nil
}
