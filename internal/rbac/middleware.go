package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mowems/rbac-system/internal/platform/httpx"
	"github.com/mowems/rbac-system/internal/shared"
	"github.com/mowems/rbac-system/internal/token"
)

// SubjectChecker re-confirms a token subject still exists. Implemented by the
// cache-coherent user repository, so the check rides the 5 minute user cache.
type SubjectChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// Gate authenticates bearer tokens and enforces required permissions. It
// trusts the claims embedded in a valid token instead of re-deriving grants
// per request; permission changes take effect on the next login.
type Gate struct {
	Codec    *token.Codec
	Subjects SubjectChecker
	Logger   *slog.Logger
}

// Authenticate validates the bearer token and attaches the principal to the
// request context. Expired tokens yield a distinct message so clients can
// force a re-login.
func (g Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.RespondError(w, shared.ErrNoToken)
			return
		}

		claims, err := g.Codec.Verify(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}

		// A token can outlive its subject; never let a deleted user in.
		exists, err := g.Subjects.Exists(r.Context(), claims.SubjectID())
		if err != nil {
			g.logError("check token subject", err)
			httpx.Error(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !exists {
			httpx.Error(w, http.StatusUnauthorized, "user not found")
			return
		}

		principal := &shared.Principal{
			ID:          claims.SubjectID(),
			Roles:       claims.Roles,
			Permissions: claims.Permissions,
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

// Require denies with 403 unless the principal holds at least one of the
// given actions.
func (g Gate) Require(actions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil || !principal.HasAny(actions...) {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	value, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func (g Gate) logError(msg string, err error) {
	if g.Logger != nil {
		g.Logger.Error(msg, slog.Any("error", err))
	}
}
