package permissions

import (
	"context"
	"time"

	"github.com/mowems/rbac-system/internal/platform/cache"
)

const (
	collectionKey = "permissions"
	byIDKeyPrefix = "permission:"
)

// Service wraps the repository with read-through caching and write-time
// invalidation, mirroring the roles service.
type Service struct {
	repo  Repository
	cache *cache.Store
	ttl   time.Duration
}

// NewService constructs a Service.
func NewService(repo Repository, store *cache.Store, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: store, ttl: ttl}
}

// List returns all permissions through the collection cache key.
func (s *Service) List(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	err := s.cache.FetchJSON(ctx, collectionKey, s.ttl, &perms, func(ctx context.Context) (interface{}, error) {
		return s.repo.List(ctx)
	})
	return perms, err
}

// GetByID returns one permission through its by-id cache key.
func (s *Service) GetByID(ctx context.Context, id string) (Permission, error) {
	var perm Permission
	err := s.cache.FetchJSON(ctx, byIDKeyPrefix+id, s.ttl, &perm, func(ctx context.Context) (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return Permission{}, err
	}
	return perm, nil
}

// Create writes to the store first, then drops the collection key.
func (s *Service) Create(ctx context.Context, action string) (Permission, error) {
	perm, err := s.repo.Create(ctx, action)
	if err != nil {
		return Permission{}, err
	}
	s.cache.Invalidate(ctx, collectionKey)
	return perm, nil
}

// Update writes to the store first, then drops the affected keys.
func (s *Service) Update(ctx context.Context, id, action string) (Permission, error) {
	perm, err := s.repo.Update(ctx, id, action)
	if err != nil {
		return Permission{}, err
	}
	s.cache.Invalidate(ctx, byIDKeyPrefix+id, collectionKey)
	return perm, nil
}

// Delete removes from the store first, then drops the affected keys.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, byIDKeyPrefix+id, collectionKey)
	return nil
}
