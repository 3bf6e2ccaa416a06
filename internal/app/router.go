package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mowems/rbac-system/internal/auth"
	"github.com/mowems/rbac-system/internal/observability"
	"github.com/mowems/rbac-system/internal/permissions"
	"github.com/mowems/rbac-system/internal/rbac"
	"github.com/mowems/rbac-system/internal/roles"
	"github.com/mowems/rbac-system/internal/users"
	"github.com/mowems/rbac-system/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Gate               rbac.Gate
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *permissions.Handler
	RBACHandler        *rbac.Handler
	JobsHandler        *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router for the RBAC API. Registration and
// login are public; everything else sits behind the bearer-token gate.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(params.Gate.Authenticate)
			params.AuthHandler.MountProtectedRoutes(r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Gate.Authenticate)

		r.Route("/users", func(r chi.Router) {
			params.UsersHandler.MountRoutes(r, params.Gate)
		})
		r.Route("/roles", func(r chi.Router) {
			params.RolesHandler.MountRoutes(r, params.Gate)
		})
		r.Route("/permissions", func(r chi.Router) {
			params.PermissionsHandler.MountRoutes(r, params.Gate)
		})
		r.Route("/assignments", func(r chi.Router) {
			params.RBACHandler.MountRoutes(r, params.Gate)
		})
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
