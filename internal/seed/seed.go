package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/mowems/rbac-system/internal/shared"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		parent_id TEXT REFERENCES locations(id)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		location_id TEXT REFERENCES locations(id)
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS permissions (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, role_id)
	)`,
	`CREATE TABLE IF NOT EXISTS role_permissions (
		role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		permission_id TEXT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
		PRIMARY KEY (role_id, permission_id)
	)`,
}

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed: schema: %w", err)
		}
	}
	return nil
}

type account struct {
	name     string
	email    string
	password string
	role     string
}

// Run seeds the baseline roles, the permission catalog, three accounts and
// their grants. Every statement is idempotent so re-runs are safe.
func Run(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, role := range []string{"Admin", "Manager", shared.DefaultRoleName} {
		if _, err := tx.Exec(ctx, `
			INSERT INTO roles (id, name)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING`, uuid.NewString(), role); err != nil {
			return fmt.Errorf("seed: role %s: %w", role, err)
		}
	}

	for _, action := range shared.Catalog() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO permissions (id, action)
			VALUES ($1, $2)
			ON CONFLICT (action) DO NOTHING`, uuid.NewString(), action); err != nil {
			return fmt.Errorf("seed: permission %s: %w", action, err)
		}
	}

	accounts := []account{
		{"Admin", "admin@example.com", "admin123", "Admin"},
		{"Manager", "manager@example.com", "manager123", "Manager"},
		{"User", "user@example.com", "user1234", shared.DefaultRoleName},
	}
	for _, acct := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(acct.password), 10)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO users (id, name, email, password_hash)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO NOTHING`, uuid.NewString(), acct.name, acct.email, string(hash)); err != nil {
			return fmt.Errorf("seed: user %s: %w", acct.email, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT u.id, r.id FROM users u, roles r
			WHERE u.email = $1 AND r.name = $2
			ON CONFLICT DO NOTHING`, acct.email, acct.role); err != nil {
			return fmt.Errorf("seed: assign %s: %w", acct.email, err)
		}
	}

	// Admin gets every permission, the default role only READ_USER.
	if _, err := tx.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT r.id, p.id FROM roles r, permissions p
		WHERE r.name = 'Admin'
		ON CONFLICT DO NOTHING`); err != nil {
		return fmt.Errorf("seed: admin grants: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT r.id, p.id FROM roles r, permissions p
		WHERE r.name = $1 AND p.action = $2
		ON CONFLICT DO NOTHING`, shared.DefaultRoleName, shared.PermReadUser); err != nil {
		return fmt.Errorf("seed: default role grants: %w", err)
	}

	return tx.Commit(ctx)
}
