package token

import (
	"errors"
	"testing"
	"time"

	"github.com/mowems/rbac-system/internal/shared"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	codec := NewCodec("round-trip-secret", time.Hour)

	signed, err := codec.Issue("user-1", []string{"Admin"}, []string{"READ_USER", "WRITE_USER"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.SubjectID() != "user-1" {
		t.Fatalf("expected subject user-1, got %s", claims.SubjectID())
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "Admin" {
		t.Fatalf("unexpected roles: %v", claims.Roles)
	}
	if len(claims.Permissions) != 2 {
		t.Fatalf("unexpected permissions: %v", claims.Permissions)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	codec := NewCodec("expiry-secret", -time.Minute)

	signed, err := codec.Issue("user-1", nil, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = codec.Verify(signed)
	if !errors.Is(err, shared.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	codec := NewCodec("malformed-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Verify(raw); !errors.Is(err, shared.ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", raw, err)
		}
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	issuer := NewCodec("secret-a", time.Hour)
	verifier := NewCodec("secret-b", time.Hour)

	signed, err := issuer.Issue("user-1", nil, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.Verify(signed); !errors.Is(err, shared.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestMissingSecret(t *testing.T) {
	codec := NewCodec("", time.Hour)

	if _, err := codec.Issue("user-1", nil, nil); !errors.Is(err, shared.ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret on issue, got %v", err)
	}
	if _, err := codec.Verify("whatever"); !errors.Is(err, shared.ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret on verify, got %v", err)
	}
}
