package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mowems/rbac-system/internal/rbac"
	"github.com/mowems/rbac-system/internal/shared"
	"github.com/mowems/rbac-system/internal/token"
)

type stubRepo struct {
	users       map[string]*User
	createCalls int
	createErr   error
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: map[string]*User{}}
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (r *stubRepo) CreateWithDefaultRole(ctx context.Context, name, email, passwordHash string) (*User, error) {
	r.createCalls++
	if r.createErr != nil {
		return nil, r.createErr
	}
	user := &User{ID: "u-" + name, Name: name, Email: email, PasswordHash: passwordHash}
	r.users[email] = user
	return user, nil
}

type stubResolver struct {
	grants       rbac.Grants
	resolveErr   error
	invalidated  []string
	resolveCalls int
}

func (s *stubResolver) Resolve(ctx context.Context, userID string) (rbac.Grants, error) {
	s.resolveCalls++
	return s.grants, s.resolveErr
}

func (s *stubResolver) InvalidateUser(ctx context.Context, userID string) {
	s.invalidated = append(s.invalidated, userID)
}

type stubListings struct {
	dropped int
}

func (s *stubListings) InvalidateListing(ctx context.Context) {
	s.dropped++
}

func newTestService(repo *stubRepo, resolver *stubResolver) *Service {
	return NewService(repo, resolver, &stubListings{}, token.NewCodec("service-test-secret", time.Hour))
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterAttachesDefaultRole(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubResolver{})

	registered, err := svc.Register(context.Background(), "Jane", "jane@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", registered.Email)
	assert.Equal(t, shared.DefaultRoleName, registered.Role)
	assert.Equal(t, 1, repo.createCalls)

	stored := repo.users["jane@example.com"]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestRegisterDropsCachedUserListing(t *testing.T) {
	repo := newStubRepo()
	listings := &stubListings{}
	svc := NewService(repo, &stubResolver{}, listings, token.NewCodec("service-test-secret", time.Hour))

	_, err := svc.Register(context.Background(), "Jane", "jane@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, 1, listings.dropped)

	// A failed registration must leave the cache untouched.
	repo.createErr = shared.ErrMissingDefaultRole
	_, err = svc.Register(context.Background(), "John", "john@example.com", "password123")
	require.Error(t, err)
	assert.Equal(t, 1, listings.dropped)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubRepo()
	repo.users["jane@example.com"] = &User{ID: "u-1", Email: "jane@example.com"}
	svc := newTestService(repo, &stubResolver{})

	_, err := svc.Register(context.Background(), "Jane", "jane@example.com", "password123")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	assert.Equal(t, 0, repo.createCalls)
}

func TestRegisterMissingDefaultRole(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = shared.ErrMissingDefaultRole
	svc := newTestService(repo, &stubResolver{})

	_, err := svc.Register(context.Background(), "Jane", "jane@example.com", "password123")
	assert.ErrorIs(t, err, shared.ErrMissingDefaultRole)
}

func TestLoginEmbedsResolvedGrants(t *testing.T) {
	repo := newStubRepo()
	repo.users["jane@example.com"] = &User{
		ID:           "u-1",
		Email:        "jane@example.com",
		PasswordHash: hashFor(t, "password123"),
	}
	resolver := &stubResolver{grants: rbac.Grants{
		Roles:       []string{"Admin"},
		Permissions: []string{shared.PermReadUser, shared.PermWriteUser},
	}}
	svc := newTestService(repo, resolver)

	signed, err := svc.Login(context.Background(), "jane@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, 1, resolver.resolveCalls)

	claims, err := token.NewCodec("service-test-secret", time.Hour).Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.SubjectID())
	assert.Equal(t, resolver.grants.Roles, claims.Roles)
	assert.Equal(t, resolver.grants.Permissions, claims.Permissions)
}

func TestLoginLowercasesEmail(t *testing.T) {
	repo := newStubRepo()
	repo.users["jane@example.com"] = &User{
		ID:           "u-1",
		Email:        "jane@example.com",
		PasswordHash: hashFor(t, "password123"),
	}
	svc := newTestService(repo, &stubResolver{})

	_, err := svc.Login(context.Background(), "Jane@Example.COM", "password123")
	assert.NoError(t, err)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newStubRepo()
	repo.users["jane@example.com"] = &User{
		ID:           "u-1",
		Email:        "jane@example.com",
		PasswordHash: hashFor(t, "password123"),
	}
	svc := newTestService(repo, &stubResolver{})

	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "password123")
	_, wrongErr := svc.Login(context.Background(), "jane@example.com", "wrong-password")

	assert.ErrorIs(t, unknownErr, shared.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, shared.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLogoutInvalidatesGrants(t *testing.T) {
	resolver := &stubResolver{}
	svc := newTestService(newStubRepo(), resolver)

	svc.Logout(context.Background(), "u-1")
	assert.Equal(t, []string{"u-1"}, resolver.invalidated)
}
