package rbac

import (
	"context"
	"time"

	"github.com/mowems/rbac-system/internal/platform/cache"
	"github.com/mowems/rbac-system/internal/shared"
)

const grantsKeyPrefix = "grants:"

// Resolver computes the current grants snapshot for a user. It runs at login
// only; issued tokens carry the snapshot until they expire. Results are read
// through the cache so repeated logins skip the join, but never the password
// check, since credential material stays in Postgres.
type Resolver struct {
	repo  Repository
	cache *cache.Store
	ttl   time.Duration
}

// NewResolver constructs a Resolver.
func NewResolver(repo Repository, store *cache.Store, ttl time.Duration) *Resolver {
	return &Resolver{repo: repo, cache: store, ttl: ttl}
}

// Resolve returns the deduplicated role and permission sets for the user,
// or shared.ErrNotFound when the identity does not exist.
func (r *Resolver) Resolve(ctx context.Context, userID string) (Grants, error) {
	var grants Grants
	err := r.cache.FetchJSON(ctx, grantsKeyPrefix+userID, r.ttl, &grants, func(ctx context.Context) (interface{}, error) {
		exists, err := r.repo.UserExists(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.ErrNotFound
		}
		return r.repo.UserGrants(ctx, userID)
	})
	if err != nil {
		return Grants{}, err
	}
	return grants, nil
}

// InvalidateUser drops the cached grants snapshot for a user. Called on
// logout and after role assignment writes.
func (r *Resolver) InvalidateUser(ctx context.Context, userID string) {
	r.cache.Invalidate(ctx, grantsKeyPrefix+userID)
}

// RoleMemberIDs lists the users holding a role. The roles service reads it
// before a delete, while the membership rows still exist, so it can drop the
// affected grants snapshots afterwards.
func (r *Resolver) RoleMemberIDs(ctx context.Context, roleID string) ([]string, error) {
	return r.repo.RoleMemberIDs(ctx, roleID)
}
