// Package token encodes and decodes the signed, expiring authorization
// tokens issued at login. Claims are a snapshot of the subject's grants at
// issuance time; they are trusted until expiry, not re-derived per request.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mowems/rbac-system/internal/shared"
)

// Claims is the payload embedded in every issued token.
type Claims struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// SubjectID returns the user id the token was issued for.
func (c *Claims) SubjectID() string {
	return c.Subject
}

// Codec signs and verifies bearer tokens with a process-wide HS256 secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec constructs a Codec. An empty secret is accepted here so the
// misconfiguration surfaces as ErrMissingSecret on use; LoadConfig already
// refuses to start without one.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed token embedding the subject and its grants.
func (c *Codec) Issue(subjectID string, roles, permissions []string) (string, error) {
	if c == nil || len(c.secret) == 0 {
		return "", shared.ErrMissingSecret
	}
	now := time.Now()
	claims := Claims{
		Roles:       roles,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates a token, distinguishing expiry from every other
// failure so clients can force a re-login.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	if c == nil || len(c.secret) == 0 {
		return nil, shared.ErrMissingSecret
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.ErrTokenExpired
		}
		return nil, shared.ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, shared.ErrTokenInvalid
	}
	return claims, nil
}

// TTL reports the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
