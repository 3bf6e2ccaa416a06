package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mowems/rbac-system/internal/platform/db"
	"github.com/mowems/rbac-system/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	// FindByEmail performs an exact, case-sensitive match on the stored email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// CreateWithDefaultRole creates the user and attaches the default "User"
	// role in one transaction.
	CreateWithDefaultRole(ctx context.Context, name, email, passwordHash string) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches a user by email, password hash included.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, location_id FROM users WHERE email = $1`,
		email).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.LocationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateWithDefaultRole inserts the user and its default role link. An absent
// "User" role is a fatal misconfiguration, not a per-request condition.
func (r *PGRepository) CreateWithDefaultRole(ctx context.Context, name, email, passwordHash string) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash) VALUES ($1, $2, $3, $4)`,
			user.ID, user.Name, user.Email, user.PasswordHash); err != nil {
			if db.IsUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return err
		}

		var roleID string
		err := tx.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, shared.DefaultRoleName).Scan(&roleID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrMissingDefaultRole
			}
			return err
		}

		_, err = tx.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`, user.ID, roleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

var _ Repository = (*PGRepository)(nil)
