package roles

import (
	"context"
	"time"

	"github.com/mowems/rbac-system/internal/platform/cache"
)

const (
	collectionKey = "roles"
	byIDKeyPrefix = "role:"
)

// GrantsInvalidator exposes the cached-grants hooks the role lifecycle needs:
// membership lookups and per-user snapshot drops. Satisfied by the rbac
// resolver.
type GrantsInvalidator interface {
	RoleMemberIDs(ctx context.Context, roleID string) ([]string, error)
	InvalidateUser(ctx context.Context, userID string)
}

// Service wraps the repository with read-through caching and write-time
// invalidation. Postgres remains authoritative; cached entries are derived
// and expire on their own even if an invalidation is lost.
type Service struct {
	repo   Repository
	cache  *cache.Store
	grants GrantsInvalidator
	ttl    time.Duration
}

// NewService constructs a Service. ttl bounds how stale a cached role can get.
func NewService(repo Repository, store *cache.Store, grants GrantsInvalidator, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: store, grants: grants, ttl: ttl}
}

// List returns all roles through the collection cache key.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	var roles []Role
	err := s.cache.FetchJSON(ctx, collectionKey, s.ttl, &roles, func(ctx context.Context) (interface{}, error) {
		return s.repo.List(ctx)
	})
	return roles, err
}

// GetByID returns one role through its by-id cache key. A store miss is never
// cached.
func (s *Service) GetByID(ctx context.Context, id string) (Role, error) {
	var role Role
	err := s.cache.FetchJSON(ctx, byIDKeyPrefix+id, s.ttl, &role, func(ctx context.Context) (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return Role{}, err
	}
	return role, nil
}

// Create writes to the store first, then drops the collection key.
func (s *Service) Create(ctx context.Context, name string) (Role, error) {
	role, err := s.repo.Create(ctx, name)
	if err != nil {
		return Role{}, err
	}
	s.cache.Invalidate(ctx, collectionKey)
	return role, nil
}

// Update writes to the store first, then drops the affected keys. Members'
// cached grants embed the role name, so a rename drops those snapshots too.
func (s *Service) Update(ctx context.Context, id, name string) (Role, error) {
	role, err := s.repo.Update(ctx, id, name)
	if err != nil {
		return Role{}, err
	}
	s.cache.Invalidate(ctx, byIDKeyPrefix+id, collectionKey)
	s.invalidateMemberGrants(ctx, id)
	return role, nil
}

// Delete removes from the store first, then drops the affected keys. Member
// ids are read before the delete, while the assignment rows still exist, so
// the grants of every user who held the role can be dropped afterwards.
func (s *Service) Delete(ctx context.Context, id string) error {
	members, err := s.grants.RoleMemberIDs(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, byIDKeyPrefix+id, collectionKey)
	for _, userID := range members {
		s.grants.InvalidateUser(ctx, userID)
	}
	return nil
}

func (s *Service) invalidateMemberGrants(ctx context.Context, roleID string) {
	members, err := s.grants.RoleMemberIDs(ctx, roleID)
	if err != nil {
		// The rename already committed; stale snapshots still expire
		// with their TTL.
		return
	}
	for _, userID := range members {
		s.grants.InvalidateUser(ctx, userID)
	}
}
