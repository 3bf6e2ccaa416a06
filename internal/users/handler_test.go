package users

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mowems/rbac-system/internal/rbac"
	"github.com/mowems/rbac-system/internal/shared"
	"github.com/mowems/rbac-system/internal/token"
)

func newTestRouter(t *testing.T, svc *Service) (chi.Router, *token.Codec) {
	t.Helper()
	codec := token.NewCodec("handler-test-secret", time.Hour)
	gate := rbac.Gate{Codec: codec, Subjects: svc}
	handler := NewHandler(slog.Default(), svc)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(gate.Authenticate)
		r.Route("/users", func(r chi.Router) {
			handler.MountRoutes(r, gate)
		})
	})
	return r, codec
}

func TestListUsersForbiddenWithoutReadPermission(t *testing.T) {
	repo := newStubRepo()
	repo.users["mgr"] = User{ID: "mgr", Name: "Manager"}
	svc, _ := newTestService(t, repo, nil)
	router, codec := newTestRouter(t, svc)

	signed, err := codec.Issue("mgr", []string{"Manager"}, []string{shared.PermWriteRole})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestListUsersAllowedWithReadPermission(t *testing.T) {
	repo := newStubRepo()
	repo.users["admin"] = User{ID: "admin", Name: "Admin"}
	svc, _ := newTestService(t, repo, nil)
	router, codec := newTestRouter(t, svc)

	signed, err := codec.Issue("admin", []string{"Admin"}, []string{shared.PermReadUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestDeletedUserTokenRejected(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo, nil)
	router, codec := newTestRouter(t, svc)

	signed, err := codec.Issue("ghost", []string{"Admin"}, []string{shared.PermReadUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rr.Code, rr.Body.String())
	}
}
