package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/testdeck/internal/ports/secondary"
)

// OrganizationRepository implements secondary.OrganizationRepository with SQLite.
type OrganizationRepository struct {
	q DBTX
}

// NewOrganizationRepository creates a new SQLite organization repository.
func NewOrganizationRepository(q DBTX) *OrganizationRepository {
	return &OrganizationRepository{q: q}
}

// Create persists a new organization.
func (r *OrganizationRepository) Create(ctx context.Context, org *secondary.OrganizationRecord) error {
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO organizations (name, created_at) VALUES (?, ?)",
		org.Name, org.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read organization id: %w", err)
	}
	org.ID = id
	return nil
}

// GetByID retrieves an organization.
func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*secondary.OrganizationRecord, error) {
	return r.get(ctx, "id = ?", id)
}

// GetByName retrieves an organization by its unique name.
func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*secondary.OrganizationRecord, error) {
	return r.get(ctx, "name = ?", name)
}

func (r *OrganizationRepository) get(ctx context.Context, where string, arg any) (*secondary.OrganizationRecord, error) {
	record := &secondary.OrganizationRecord{}
	err := r.q.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM organizations WHERE "+where, arg,
	).Scan(&record.ID, &record.Name, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("organization %v: %w", arg, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return record, nil
}
