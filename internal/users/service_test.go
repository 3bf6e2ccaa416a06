package users

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mowems/rbac-system/internal/platform/cache"
	"github.com/mowems/rbac-system/internal/shared"
)

type stubRepo struct {
	users      map[string]User
	hashes     map[string]string
	listCalls  int
	listScopes []ScopeFilter
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: map[string]User{}, hashes: map[string]string{}}
}

func (r *stubRepo) List(ctx context.Context, scope ScopeFilter) ([]User, error) {
	r.listCalls++
	r.listScopes = append(r.listScopes, scope)
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		switch scope.Kind {
		case ScopeSuburb, ScopeCity:
			if u.LocationID == nil || *u.LocationID != scope.LocationID {
				continue
			}
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *stubRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *stubRepo) Create(ctx context.Context, name, email, passwordHash string) (User, error) {
	u := User{ID: "u-" + name, Name: name, Email: email}
	r.users[u.ID] = u
	r.hashes[u.ID] = passwordHash
	return u, nil
}

func (r *stubRepo) Update(ctx context.Context, user User, passwordHash string) (User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return User{}, shared.ErrNotFound
	}
	r.users[user.ID] = user
	if passwordHash != "" {
		r.hashes[user.ID] = passwordHash
	}
	return user, nil
}

func (r *stubRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type stubGrants struct {
	invalidated []string
}

func (s *stubGrants) InvalidateUser(ctx context.Context, userID string) {
	s.invalidated = append(s.invalidated, userID)
}

func newTestService(t *testing.T, repo Repository, grants GrantsInvalidator) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, cache.NewStore(client, nil), grants, time.Minute), mr
}

func TestListCachesNationalScopeOnly(t *testing.T) {
	repo := newStubRepo()
	repo.users["admin"] = User{ID: "admin", Name: "Admin"}
	repo.users["sub"] = User{ID: "sub", Name: "Sub", LocationID: strPtr("loc-1")}
	svc, mr := newTestService(t, repo, nil)

	ctx := context.Background()

	// National requester: collection key is primed and reused.
	_, err := svc.List(ctx, "admin", []string{"Admin"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("users"))
	_, err = svc.List(ctx, "admin", []string{"Admin"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	// Suburb requester: scoped listing bypasses the collection key.
	mr.FlushAll()
	listed, err := svc.List(ctx, "sub", []string{RoleSuburb})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "sub", listed[0].ID)
	assert.False(t, mr.Exists("users"))

	last := repo.listScopes[len(repo.listScopes)-1]
	assert.Equal(t, ScopeSuburb, last.Kind)
	assert.Equal(t, "loc-1", last.LocationID)
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo, nil)

	user, err := svc.Create(context.Background(), "Jane", "jane@example.com", "password123")
	require.NoError(t, err)

	hash := repo.hashes[user.ID]
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "password123", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("password123")))
}

func TestUpdateKeepsPasswordUnlessSupplied(t *testing.T) {
	repo := newStubRepo()
	repo.users["u-1"] = User{ID: "u-1", Name: "Jane", Email: "jane@example.com"}
	repo.hashes["u-1"] = "original-hash"
	svc, _ := newTestService(t, repo, nil)

	ctx := context.Background()
	updated, err := svc.Update(ctx, "u-1", UpdateParams{Name: "Janet"})
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.Name)
	assert.Equal(t, "jane@example.com", updated.Email)
	assert.Equal(t, "original-hash", repo.hashes["u-1"])

	_, err = svc.Update(ctx, "u-1", UpdateParams{Password: "new-password-1"})
	require.NoError(t, err)
	assert.NotEqual(t, "original-hash", repo.hashes["u-1"])
}

func TestDeleteDropsCacheAndGrants(t *testing.T) {
	repo := newStubRepo()
	repo.users["u-1"] = User{ID: "u-1", Name: "Jane"}
	grants := &stubGrants{}
	svc, mr := newTestService(t, repo, grants)

	ctx := context.Background()
	_, err := svc.GetByID(ctx, "u-1")
	require.NoError(t, err)
	require.True(t, mr.Exists("user:u-1"))

	require.NoError(t, svc.Delete(ctx, "u-1"))
	assert.False(t, mr.Exists("user:u-1"))
	assert.Equal(t, []string{"u-1"}, grants.invalidated)

	exists, err := svc.Exists(ctx, "u-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExistsRidesTheCache(t *testing.T) {
	repo := newStubRepo()
	repo.users["u-1"] = User{ID: "u-1", Name: "Jane"}
	svc, mr := newTestService(t, repo, nil)

	ctx := context.Background()
	exists, err := svc.Exists(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, mr.Exists("user:u-1"))
}
