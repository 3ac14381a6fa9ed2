package auth

import (
	"net/http"

	"github.com/praetor-auth/praetor/internal/platform/httpx"
	"github.com/praetor-auth/praetor/internal/shared"
)

// Middleware authenticates bearer tokens and places the resulting identity
// into the request context for downstream authorization checks.
type Middleware struct {
	Service *Service
}

// RequireAuth rejects requests without a verifiable, unrevoked access token.
// Every rejection is the same 401; the failing check is not revealed.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := shared.BearerToken(r)
		if !ok {
			httpx.RespondError(w, shared.ErrInvalidToken)
			return
		}
		user, err := m.Service.Authenticate(r.Context(), raw)
		if err != nil {
			httpx.RespondError(w, shared.ErrInvalidToken)
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), shared.Identity{UserID: user.ID, Email: user.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
