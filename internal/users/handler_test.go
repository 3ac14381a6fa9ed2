package users

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/praetor-auth/praetor/internal/shared"
	_ "github.com/praetor-auth/praetor/testing"
)

// identityInjector stands in for the auth middleware in handler tests.
func identityInjector(id shared.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), id)))
		})
	}
}

func newHandlerRouter(t *testing.T, identity *shared.Identity) (*chi.Mux, *memoryRepo) {
	t.Helper()
	svc, repo, _ := newTestService()
	handler := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	r.Route("/api/users", func(r chi.Router) {
		if identity != nil {
			r.Use(identityInjector(*identity))
		}
		handler.MountRoutes(r)
	})
	r.Route("/api/admin", handler.MountAdminRoutes)
	return r, repo
}

func TestHandlerGetProfile(t *testing.T) {
	identity := shared.Identity{UserID: 1, Email: "ada@example.com"}
	r, repo := newHandlerRouter(t, &identity)
	repo.addUser("ada@example.com", "hash")

	req := httptest.NewRequest(http.MethodGet, "/api/users/me/profile", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("get profile = %d, body %s", rec.Code, rec.Body.String())
	}
	var got profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Email != "ada@example.com" || !got.IsActive {
		t.Fatalf("profile body = %+v", got)
	}
}

func TestHandlerGetProfileWithoutIdentity(t *testing.T) {
	r, _ := newHandlerRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/users/me/profile", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandlerUpdateProfile(t *testing.T) {
	identity := shared.Identity{UserID: 1, Email: "ada@example.com"}
	r, repo := newHandlerRouter(t, &identity)
	repo.addUser("ada@example.com", "hash")

	body, _ := json.Marshal(map[string]string{
		"email":      "ada2@example.com",
		"first_name": "Ada",
		"last_name":  "Lovelace",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/users/me/profile", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d, body %s", rec.Code, rec.Body.String())
	}
	if repo.profiles[1].Email != "ada2@example.com" {
		t.Fatalf("email not updated: %+v", repo.profiles[1])
	}
}

func TestHandlerUpdateProfileValidation(t *testing.T) {
	identity := shared.Identity{UserID: 1, Email: "ada@example.com"}
	r, repo := newHandlerRouter(t, &identity)
	repo.addUser("ada@example.com", "hash")

	// New password without the current one must not pass validation.
	body, _ := json.Marshal(map[string]string{
		"email":        "ada@example.com",
		"first_name":   "Ada",
		"last_name":    "Lovelace",
		"new_password": "brand new pw",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/users/me/profile", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestHandlerDeactivate(t *testing.T) {
	identity := shared.Identity{UserID: 1, Email: "ada@example.com"}
	r, repo := newHandlerRouter(t, &identity)
	repo.addUser("ada@example.com", "hash")

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate = %d, body %s", rec.Code, rec.Body.String())
	}
	if repo.profiles[1].IsActive {
		t.Fatalf("account still active after DELETE /me")
	}
}

func TestHandlerAdminList(t *testing.T) {
	r, repo := newHandlerRouter(t, nil)
	repo.addUser("ada@example.com", "hash")
	repo.addUser("grace@example.com", "hash")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d, body %s", rec.Code, rec.Body.String())
	}
	var got []profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("list length = %d, want 2", len(got))
	}
}
