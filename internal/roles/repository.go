package roles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mowems/rbac-system/internal/platform/db"
	"github.com/mowems/rbac-system/internal/shared"
)

// Repository defines persistence operations for roles.
type Repository interface {
	List(ctx context.Context) ([]Role, error)
	GetByID(ctx context.Context, id string) (Role, error)
	Create(ctx context.Context, name string) (Role, error)
	Update(ctx context.Context, id, name string) (Role, error)
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

// List returns all roles ordered by name.
func (r *PGRepository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	roles := []Role{}
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetByID fetches a role by id.
func (r *PGRepository) GetByID(ctx context.Context, id string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE id = $1`, id).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// Create inserts a new role.
func (r *PGRepository) Create(ctx context.Context, name string) (Role, error) {
	role := Role{ID: uuid.NewString(), Name: name}
	_, err := r.pool.Exec(ctx, `INSERT INTO roles (id, name) VALUES ($1, $2)`, role.ID, role.Name)
	if db.IsUniqueViolation(err) {
		return Role{}, shared.ErrAlreadyExists
	}
	if err != nil {
		return Role{}, err
	}
	return role, nil
}

// Update renames an existing role.
func (r *PGRepository) Update(ctx context.Context, id, name string) (Role, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE roles SET name = $2 WHERE id = $1`, id, name)
	if db.IsUniqueViolation(err) {
		return Role{}, shared.ErrAlreadyExists
	}
	if err != nil {
		return Role{}, err
	}
	if tag.RowsAffected() == 0 {
		return Role{}, shared.ErrNotFound
	}
	return Role{ID: id, Name: name}, nil
}

// Delete removes a role; user_roles and role_permissions rows cascade.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
