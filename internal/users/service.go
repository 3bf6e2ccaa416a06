package users

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mowems/rbac-system/internal/platform/cache"
	"github.com/mowems/rbac-system/internal/shared"
)

const (
	collectionKey = "users"
	byIDKeyPrefix = "user:"
)

const bcryptCost = 10

// GrantsInvalidator drops a user's cached grants snapshot. Satisfied by the
// rbac resolver.
type GrantsInvalidator interface {
	InvalidateUser(ctx context.Context, userID string)
}

// Service handles user management. Reads go through the cache with a shorter
// TTL than roles and permissions: user data changes more often and is more
// sensitive. Scoped listings depend on the caller and bypass the cache
// entirely.
type Service struct {
	repo   Repository
	cache  *cache.Store
	grants GrantsInvalidator
	ttl    time.Duration
}

// NewService constructs a Service.
func NewService(repo Repository, store *cache.Store, grants GrantsInvalidator, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: store, grants: grants, ttl: ttl}
}

// List returns the users visible to the requester. The collection key is only
// used for the unfiltered national scope; narrowed scopes are per-caller and
// read the store directly.
func (s *Service) List(ctx context.Context, requesterID string, requesterRoles []string) ([]User, error) {
	requester, err := s.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	scope, err := ScopeForRoles(requesterRoles, requester.LocationID)
	if err != nil {
		return nil, err
	}

	if scope.Kind != ScopeNational {
		return s.repo.List(ctx, scope)
	}

	var users []User
	err = s.cache.FetchJSON(ctx, collectionKey, s.ttl, &users, func(ctx context.Context) (interface{}, error) {
		return s.repo.List(ctx, scope)
	})
	return users, err
}

// GetByID returns one user through the by-id cache key.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	var user User
	err := s.cache.FetchJSON(ctx, byIDKeyPrefix+id, s.ttl, &user, func(ctx context.Context) (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Exists reports whether the user id is present, riding the by-id cache.
// Used by the permission gate to reject tokens for deleted users.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InvalidateListing drops the cached user collection. Registration lives in
// the auth package and calls this so new accounts show up in listings
// immediately instead of after the TTL.
func (s *Service) InvalidateListing(ctx context.Context) {
	s.cache.Invalidate(ctx, collectionKey)
}

// Create adds a user with a hashed password, then drops the collection key.
func (s *Service) Create(ctx context.Context, name, email, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.Create(ctx, name, email, string(hash))
	if err != nil {
		return User{}, err
	}
	s.cache.Invalidate(ctx, collectionKey)
	return user, nil
}

// UpdateParams carries the optional profile fields for an update.
type UpdateParams struct {
	Name     string
	Email    string
	Password string
}

// Update applies the supplied fields; the password is only rehashed when one
// is provided. Invalidation follows the store write.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (User, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if params.Name != "" {
		current.Name = params.Name
	}
	if params.Email != "" {
		current.Email = params.Email
	}

	var hash string
	if params.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
		if err != nil {
			return User{}, err
		}
		hash = string(hashed)
	}

	user, err := s.repo.Update(ctx, current, hash)
	if err != nil {
		return User{}, err
	}
	s.cache.Invalidate(ctx, byIDKeyPrefix+id, collectionKey)
	return user, nil
}

// Delete removes the user, then drops its cache entries and cached grants so
// neither can outlive the account.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, byIDKeyPrefix+id, collectionKey)
	if s.grants != nil {
		s.grants.InvalidateUser(ctx, id)
	}
	return nil
}
