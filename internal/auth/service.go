package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mowems/rbac-system/internal/rbac"
	"github.com/mowems/rbac-system/internal/shared"
	"github.com/mowems/rbac-system/internal/token"
)

// bcryptCost matches the cost the seed data is hashed with.
const bcryptCost = 10

// GrantsResolver supplies the claims snapshot embedded at login.
type GrantsResolver interface {
	Resolve(ctx context.Context, userID string) (rbac.Grants, error)
	InvalidateUser(ctx context.Context, userID string)
}

// ListingInvalidator drops the cached user collection after a registration
// write. Satisfied by the users service.
type ListingInvalidator interface {
	InvalidateListing(ctx context.Context)
}

// Service wraps registration, login and logout.
type Service struct {
	repo     Repository
	resolver GrantsResolver
	listings ListingInvalidator
	codec    *token.Codec
}

// NewService constructs a Service.
func NewService(repo Repository, resolver GrantsResolver, listings ListingInvalidator, codec *token.Codec) *Service {
	return &Service{repo: repo, resolver: resolver, listings: listings, codec: codec}
}

// RegisteredUser is the registration result exposed to clients.
type RegisteredUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Register creates a user with a hashed password and the default "User" role.
// The email check is an exact match on the stored value.
func (s *Service) Register(ctx context.Context, name, email, password string) (*RegisteredUser, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateWithDefaultRole(ctx, name, email, string(hash))
	if err != nil {
		return nil, err
	}
	s.listings.InvalidateListing(ctx)

	return &RegisteredUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  shared.DefaultRoleName,
	}, nil
}

// Login verifies credentials and issues a token carrying the user's current
// grants. Unknown email and wrong password collapse into one error so the
// endpoint cannot be used to enumerate accounts. The password hash is always
// read from the store; only the resolved grants may come from cache.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", shared.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", shared.ErrInvalidCredentials
	}

	grants, err := s.resolver.Resolve(ctx, user.ID)
	if err != nil {
		return "", err
	}

	return s.codec.Issue(user.ID, grants.Roles, grants.Permissions)
}

// Logout drops the cached grants snapshot for the user. Already-issued tokens
// remain valid until natural expiry; there is no revocation list.
func (s *Service) Logout(ctx context.Context, userID string) {
	s.resolver.InvalidateUser(ctx, userID)
}
