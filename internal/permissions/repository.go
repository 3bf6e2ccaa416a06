package permissions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mowems/rbac-system/internal/platform/db"
	"github.com/mowems/rbac-system/internal/shared"
)

// Repository defines persistence operations for permissions.
type Repository interface {
	List(ctx context.Context) ([]Permission, error)
	GetByID(ctx context.Context, id string) (Permission, error)
	Create(ctx context.Context, action string) (Permission, error)
	Update(ctx context.Context, id, action string) (Permission, error)
	Delete(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns all permissions ordered by action.
func (r *PGRepository) List(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, action FROM permissions ORDER BY action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	perms := []Permission{}
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Action); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

// GetByID fetches a permission by id.
func (r *PGRepository) GetByID(ctx context.Context, id string) (Permission, error) {
	var perm Permission
	err := r.pool.QueryRow(ctx, `SELECT id, action FROM permissions WHERE id = $1`, id).Scan(&perm.ID, &perm.Action)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, shared.ErrNotFound
		}
		return Permission{}, err
	}
	return perm, nil
}

// Create inserts a new permission.
func (r *PGRepository) Create(ctx context.Context, action string) (Permission, error) {
	perm := Permission{ID: uuid.NewString(), Action: action}
	_, err := r.pool.Exec(ctx, `INSERT INTO permissions (id, action) VALUES ($1, $2)`, perm.ID, perm.Action)
	if db.IsUniqueViolation(err) {
		return Permission{}, shared.ErrAlreadyExists
	}
	if err != nil {
		return Permission{}, err
	}
	return perm, nil
}

// Update changes a permission's action token.
func (r *PGRepository) Update(ctx context.Context, id, action string) (Permission, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE permissions SET action = $2 WHERE id = $1`, id, action)
	if db.IsUniqueViolation(err) {
		return Permission{}, shared.ErrAlreadyExists
	}
	if err != nil {
		return Permission{}, err
	}
	if tag.RowsAffected() == 0 {
		return Permission{}, shared.ErrNotFound
	}
	return Permission{ID: id, Action: action}, nil
}

// Delete removes a permission; role_permissions rows cascade.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
