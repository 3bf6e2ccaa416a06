package roles

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mowems/rbac-system/internal/platform/cache"
	"github.com/mowems/rbac-system/internal/shared"
)

type stubRepo struct {
	roles     map[string]Role
	listCalls int
	getCalls  int
	nextID    int
}

func newStubRepo() *stubRepo {
	return &stubRepo{roles: map[string]Role{}}
}

func (r *stubRepo) List(ctx context.Context) ([]Role, error) {
	r.listCalls++
	out := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *stubRepo) GetByID(ctx context.Context, id string) (Role, error) {
	r.getCalls++
	role, ok := r.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return role, nil
}

func (r *stubRepo) Create(ctx context.Context, name string) (Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return Role{}, shared.ErrAlreadyExists
		}
	}
	r.nextID++
	role := Role{ID: string(rune('a' + r.nextID)), Name: name}
	r.roles[role.ID] = role
	return role, nil
}

func (r *stubRepo) Update(ctx context.Context, id, name string) (Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	role.Name = name
	r.roles[id] = role
	return role, nil
}

func (r *stubRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.roles, id)
	return nil
}

type stubGrants struct {
	members     map[string][]string
	invalidated []string
}

func (s *stubGrants) RoleMemberIDs(ctx context.Context, roleID string) ([]string, error) {
	return s.members[roleID], nil
}

func (s *stubGrants) InvalidateUser(ctx context.Context, userID string) {
	s.invalidated = append(s.invalidated, userID)
}

func newTestService(t *testing.T, repo Repository) (*Service, *miniredis.Miniredis) {
	t.Helper()
	svc, mr := newTestServiceWithGrants(t, repo, &stubGrants{})
	return svc, mr
}

func newTestServiceWithGrants(t *testing.T, repo Repository, grants *stubGrants) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, cache.NewStore(client, nil), grants, time.Minute), mr
}

func TestGetByIDReadsThroughCache(t *testing.T) {
	repo := newStubRepo()
	repo.roles["r-1"] = Role{ID: "r-1", Name: "Admin"}
	svc, mr := newTestService(t, repo)

	ctx := context.Background()
	role, err := svc.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Admin", role.Name)
	assert.True(t, mr.Exists("role:r-1"))

	_, err = svc.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls)
}

func TestUpdateInvalidatesAffectedKeys(t *testing.T) {
	repo := newStubRepo()
	repo.roles["r-1"] = Role{ID: "r-1", Name: "Admin"}
	svc, mr := newTestService(t, repo)

	ctx := context.Background()
	_, err := svc.GetByID(ctx, "r-1")
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("role:r-1"))
	require.True(t, mr.Exists("roles"))

	_, err = svc.Update(ctx, "r-1", "Supervisor")
	require.NoError(t, err)
	assert.False(t, mr.Exists("role:r-1"))
	assert.False(t, mr.Exists("roles"))

	// The next read repopulates from the store with the new value.
	role, err := svc.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Supervisor", role.Name)
	assert.True(t, mr.Exists("role:r-1"))
}

func TestDeleteIsIdempotentOnCacheKeys(t *testing.T) {
	repo := newStubRepo()
	repo.roles["r-1"] = Role{ID: "r-1", Name: "Admin"}
	svc, mr := newTestService(t, repo)

	ctx := context.Background()
	_, err := svc.GetByID(ctx, "r-1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "r-1"))
	assert.False(t, mr.Exists("role:r-1"))

	// Deleting again: key already gone, store reports the miss.
	assert.ErrorIs(t, svc.Delete(ctx, "r-1"), shared.ErrNotFound)
}

func TestDeleteInvalidatesMemberGrants(t *testing.T) {
	repo := newStubRepo()
	repo.roles["r-1"] = Role{ID: "r-1", Name: "Manager"}
	grants := &stubGrants{members: map[string][]string{"r-1": {"u-1", "u-2"}}}
	svc, _ := newTestServiceWithGrants(t, repo, grants)

	require.NoError(t, svc.Delete(context.Background(), "r-1"))

	// Everyone who held the role loses the cached snapshot that still
	// listed it.
	assert.Equal(t, []string{"u-1", "u-2"}, grants.invalidated)
}

func TestRenameInvalidatesMemberGrants(t *testing.T) {
	repo := newStubRepo()
	repo.roles["r-1"] = Role{ID: "r-1", Name: "Manager"}
	grants := &stubGrants{members: map[string][]string{"r-1": {"u-1"}}}
	svc, _ := newTestServiceWithGrants(t, repo, grants)

	_, err := svc.Update(context.Background(), "r-1", "Supervisor")
	require.NoError(t, err)
	assert.Equal(t, []string{"u-1"}, grants.invalidated)
}

func TestMissIsNeverCached(t *testing.T) {
	repo := newStubRepo()
	svc, mr := newTestService(t, repo)

	ctx := context.Background()
	_, err := svc.GetByID(ctx, "r-ghost")
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.False(t, mr.Exists("role:r-ghost"))

	repo.roles["r-ghost"] = Role{ID: "r-ghost", Name: "Ghost"}
	role, err := svc.GetByID(ctx, "r-ghost")
	require.NoError(t, err)
	assert.Equal(t, "Ghost", role.Name)
}

func TestCacheOutageFallsBackToStore(t *testing.T) {
	repo := newStubRepo()
	repo.roles["r-1"] = Role{ID: "r-1", Name: "Admin"}
	svc, mr := newTestService(t, repo)

	mr.SetError("connection refused")

	role, err := svc.GetByID(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Admin", role.Name)
	assert.Equal(t, 1, repo.getCalls)
}
