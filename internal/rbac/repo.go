package rbac

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mowems/rbac-system/internal/platform/db"
	"github.com/mowems/rbac-system/internal/shared"
)

// Repository defines persistence operations for grants and assignments.
type Repository interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	RoleExists(ctx context.Context, roleID string) (bool, error)
	PermissionExists(ctx context.Context, permissionID string) (bool, error)
	UserGrants(ctx context.Context, userID string) (Grants, error)
	AssignRole(ctx context.Context, userID, roleID string) error
	AssignPermission(ctx context.Context, roleID, permissionID string) error
	UserRoles(ctx context.Context, userID string) ([]Role, error)
	RolePermissions(ctx context.Context, roleID string) ([]Permission, error)
	RoleMemberIDs(ctx context.Context, roleID string) ([]string, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// UserExists reports whether the user id is present.
func (r *PGRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	return exists, err
}

// RoleExists reports whether the role id is present.
func (r *PGRepository) RoleExists(ctx context.Context, roleID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, roleID).Scan(&exists)
	return exists, err
}

// PermissionExists reports whether the permission id is present.
func (r *PGRepository) PermissionExists(ctx context.Context, permissionID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM permissions WHERE id = $1)`, permissionID).Scan(&exists)
	return exists, err
}

// UserGrants walks the role/permission graph for the user. A permission
// reachable through two roles appears once.
func (r *PGRepository) UserGrants(ctx context.Context, userID string) (Grants, error) {
	grants := Grants{Roles: []string{}, Permissions: []string{}}

	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1`, userID)
	if err != nil {
		return Grants{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Grants{}, err
		}
		grants.Roles = append(grants.Roles, name)
	}
	if err := rows.Err(); err != nil {
		return Grants{}, err
	}

	permRows, err := r.pool.Query(ctx, `
		SELECT DISTINCT p.action
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = $1`, userID)
	if err != nil {
		return Grants{}, err
	}
	defer permRows.Close()
	for permRows.Next() {
		var action string
		if err := permRows.Scan(&action); err != nil {
			return Grants{}, err
		}
		grants.Permissions = append(grants.Permissions, action)
	}
	if err := permRows.Err(); err != nil {
		return Grants{}, err
	}

	return grants, nil
}

// AssignRole inserts a user-role link. The unique index on (user_id, role_id)
// is authoritative for duplicates, including concurrent writers.
func (r *PGRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`, userID, roleID)
	if db.IsUniqueViolation(err) {
		return shared.ErrAlreadyAssigned
	}
	return err
}

// AssignPermission inserts a role-permission link under the same uniqueness
// discipline as AssignRole.
func (r *PGRepository) AssignPermission(ctx context.Context, roleID, permissionID string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`, roleID, permissionID)
	if db.IsUniqueViolation(err) {
		return shared.ErrAlreadyAssigned
	}
	return err
}

// UserRoles returns the roles assigned to a user.
func (r *PGRepository) UserRoles(ctx context.Context, userID string) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name`, userID)
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

// RolePermissions returns the permissions assigned to a role.
func (r *PGRepository) RolePermissions(ctx context.Context, roleID string) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.action
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.action`, roleID)
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

// RoleMemberIDs lists the ids of users currently holding the role.
func (r *PGRepository) RoleMemberIDs(ctx context.Context, roleID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM user_roles WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
