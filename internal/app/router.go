package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/praetor-auth/praetor/internal/auth"
	"github.com/praetor-auth/praetor/internal/observability"
	"github.com/praetor-auth/praetor/internal/rbac"
	"github.com/praetor-auth/praetor/internal/resources"
	"github.com/praetor-auth/praetor/internal/users"
	"github.com/praetor-auth/praetor/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	AuthMiddleware   auth.Middleware
	RBACHandler      *rbac.Handler
	RBACMiddleware   rbac.Middleware
	UsersHandler     *users.Handler
	ResourcesHandler *resources.Handler
	JobsHandler      *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults.
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

	r.Route("/api/auth", params.AuthHandler.MountRoutes)

	if params.UsersHandler != nil {
		r.Route("/api/users", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)
			params.UsersHandler.MountRoutes(r)
		})
	}

	if params.ResourcesHandler != nil {
		r.Route("/api/resources", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)
			params.ResourcesHandler.MountRoutes(r)
		})
	}

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireAuth)
		if params.RBACHandler != nil {
			params.RBACHandler.MountRoutes(r)
		}
		if params.UsersHandler != nil {
			r.Group(func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequireAdmin)
				params.UsersHandler.MountAdminRoutes(r)
			})
		}
		if params.JobsHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequireAdmin)
				params.JobsHandler.MountRoutes(r)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
