package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mowems/rbac-system/internal/platform/db"
	"github.com/mowems/rbac-system/internal/shared"
)

// Repository defines persistence operations for user management.
type Repository interface {
	List(ctx context.Context, scope ScopeFilter) ([]User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, name, email, passwordHash string) (User, error)
	Update(ctx context.Context, user User, passwordHash string) (User, error)
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

// List returns users visible under the scope, location names resolved.
func (r *PGRepository) List(ctx context.Context, scope ScopeFilter) ([]User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.location_id, l.name
		FROM users u
		LEFT JOIN locations l ON l.id = u.location_id`
	var args []any
	switch scope.Kind {
	case ScopeCity:
		query += ` WHERE u.location_id = $1
			OR u.location_id IN (SELECT id FROM locations WHERE parent_id = $1)`
		args = append(args, scope.LocationID)
	case ScopeSuburb:
		query += ` WHERE u.location_id = $1`
		args = append(args, scope.LocationID)
	}
	query += ` ORDER BY u.name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.LocationID, &user.Location); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetByID fetches a user by id.
func (r *PGRepository) GetByID(ctx context.Context, id string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, location_id FROM users WHERE id = $1`,
		id).Scan(&user.ID, &user.Name, &user.Email, &user.LocationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// Create inserts a user without role assignments; registration handles the
// default role separately in the auth module.
func (r *PGRepository) Create(ctx context.Context, name, email, passwordHash string) (User, error) {
	user := User{ID: uuid.NewString(), Name: name, Email: email}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Name, user.Email, passwordHash)
	if db.IsUniqueViolation(err) {
		return User{}, shared.ErrAlreadyExists
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Update persists profile fields; the password hash is only touched when one
// is supplied.
func (r *PGRepository) Update(ctx context.Context, user User, passwordHash string) (User, error) {
	var err error
	var tag pgconn.CommandTag
	if passwordHash != "" {
		tag, err = r.pool.Exec(ctx,
			`UPDATE users SET name = $2, email = $3, password_hash = $4 WHERE id = $1`,
			user.ID, user.Name, user.Email, passwordHash)
	} else {
		tag, err = r.pool.Exec(ctx,
			`UPDATE users SET name = $2, email = $3 WHERE id = $1`,
			user.ID, user.Name, user.Email)
	}
	if db.IsUniqueViolation(err) {
		return User{}, shared.ErrAlreadyExists
	}
	if err != nil {
		return User{}, err
	}
	if tag.RowsAffected() == 0 {
		return User{}, shared.ErrNotFound
	}
	return user, nil
}

// Delete removes a user; user_roles rows cascade.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
