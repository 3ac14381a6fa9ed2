package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/praetor-auth/praetor/internal/platform/httpx"
	"github.com/praetor-auth/praetor/internal/shared"
)

// Authorizer is the subset of Service the middleware needs.
type Authorizer interface {
	HasPermission(ctx context.Context, userID int64, resource, action string) (bool, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Middleware wires authorization checks for HTTP handlers. The identity is
// expected in the request context, placed there by the auth middleware.
type Middleware struct {
	Service Authorizer
	Logger  *slog.Logger
}

// RequirePermission ensures the current user holds the (resource, action)
// permission, directly or through a role.
func (m Middleware) RequirePermission(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrInvalidToken)
				return
			}
			granted, err := m.Service.HasPermission(r.Context(), id.UserID, resource, action)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac permission check", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !granted {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin ensures the current user holds the admin role.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := shared.IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrInvalidToken)
			return
		}
		isAdmin, err := m.Service.IsAdmin(r.Context(), id.UserID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("rbac admin check", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		if !isAdmin {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
