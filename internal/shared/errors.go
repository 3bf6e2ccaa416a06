package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. The same error is
	// returned for an unknown email and a wrong password so callers
	// cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAlreadyExists indicates a uniqueness violation on an entity field.
	ErrAlreadyExists = errors.New("already exists")
	// ErrAlreadyAssigned indicates a duplicate role or permission assignment.
	ErrAlreadyAssigned = errors.New("already assigned")
	// ErrMissingDefaultRole indicates the seeded "User" role is absent.
	ErrMissingDefaultRole = errors.New("default role \"User\" does not exist")
	// ErrNoToken occurs when the Authorization header carries no bearer token.
	ErrNoToken = errors.New("no token provided")
	// ErrTokenExpired occurs when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired, please log in again")
	// ErrTokenInvalid occurs when a token is malformed or its signature fails.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrForbidden indicates the caller lacks every required permission.
	ErrForbidden = errors.New("missing required permissions")
	// ErrMissingSecret indicates the signing secret was never configured.
	ErrMissingSecret = errors.New("signing secret is not configured")
)
