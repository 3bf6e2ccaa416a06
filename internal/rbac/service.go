package rbac

import (
	"context"

	"github.com/mowems/rbac-system/internal/shared"
)

// Service orchestrates assignment operations.
type Service struct {
	repo     Repository
	resolver *Resolver
}

// NewService constructs a Service.
func NewService(repo Repository, resolver *Resolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// AssignRole links a role to a user. Duplicate assignments surface as
// shared.ErrAlreadyAssigned from the store's unique index.
func (s *Service) AssignRole(ctx context.Context, userID, roleID string) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}
	exists, err = s.repo.RoleExists(ctx, roleID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}
	if err := s.repo.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}
	// The user's cached grants snapshot is stale now.
	s.resolver.InvalidateUser(ctx, userID)
	return nil
}

// AssignPermission links a permission to a role, under the same uniqueness
// discipline as AssignRole.
func (s *Service) AssignPermission(ctx context.Context, roleID, permissionID string) error {
	exists, err := s.repo.RoleExists(ctx, roleID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}
	exists, err = s.repo.PermissionExists(ctx, permissionID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}
	if err := s.repo.AssignPermission(ctx, roleID, permissionID); err != nil {
		return err
	}
	// Every member of the role just gained the permission; their cached
	// grants snapshots are stale until dropped.
	members, err := s.repo.RoleMemberIDs(ctx, roleID)
	if err != nil {
		return err
	}
	for _, userID := range members {
		s.resolver.InvalidateUser(ctx, userID)
	}
	return nil
}

// UserRoles lists the roles assigned to a user.
func (s *Service) UserRoles(ctx context.Context, userID string) ([]Role, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound
	}
	return s.repo.UserRoles(ctx, userID)
}

// RolePermissions lists the permissions assigned to a role.
func (s *Service) RolePermissions(ctx context.Context, roleID string) ([]Permission, error) {
	exists, err := s.repo.RoleExists(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound
	}
	return s.repo.RolePermissions(ctx, roleID)
}
