package auth

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	_ "github.com/praetor-auth/praetor/testing"
)

func newTestRouter(t *testing.T) (*chi.Mux, *harness) {
	t.Helper()
	h := newHarness(t)
	handler := NewHandler(slog.Default(), h.svc)
	r := chi.NewRouter()
	r.Route("/api/auth", handler.MountRoutes)
	return r, h
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerRegisterAndConflict(t *testing.T) {
	r, _ := newTestRouter(t)
	payload := map[string]string{
		"email":            "ada@example.com",
		"first_name":       "Ada",
		"last_name":        "Lovelace",
		"password":         "correct horse",
		"password_confirm": "correct horse",
	}

	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", payload, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["email"] != "ada@example.com" {
		t.Fatalf("register body = %v", got)
	}
	if _, leaked := got["password_hash"]; leaked {
		t.Fatalf("response leaks the password hash")
	}
	access, _ := got["access_token"].(string)
	if access == "" {
		t.Fatalf("register body lacks access_token: %v", got)
	}
	if refresh, _ := got["refresh_token"].(string); refresh == "" {
		t.Fatalf("register body lacks refresh_token: %v", got)
	}

	// Registration doubles as the first login.
	rec = doJSON(t, r, http.MethodGet, "/api/auth/me", nil, access)
	if rec.Code != http.StatusOK {
		t.Fatalf("me with registration token = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/register", payload, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register = %d, want 409", rec.Code)
	}
}

func TestHandlerRegisterValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	cases := []struct {
		name    string
		payload map[string]string
	}{
		{"bad email", map[string]string{"email": "not-an-email", "first_name": "A", "last_name": "B", "password": "longenough", "password_confirm": "longenough"}},
		{"short password", map[string]string{"email": "a@b.com", "first_name": "A", "last_name": "B", "password": "short", "password_confirm": "short"}},
		{"mismatched confirm", map[string]string{"email": "a@b.com", "first_name": "A", "last_name": "B", "password": "longenough", "password_confirm": "different1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/api/auth/register", tc.payload, "")
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rec.Code)
			}
		})
	}
}

func TestHandlerLoginSuccessAndFailure(t *testing.T) {
	r, h := newTestRouter(t)
	h.register(t, "ada@example.com", "correct horse")

	rec := doJSON(t, r, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ada@example.com", "password": "correct horse"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d, body %s", rec.Code, rec.Body.String())
	}
	var tokens tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" || tokens.TokenType != "bearer" {
		t.Fatalf("token body = %+v", tokens)
	}

	wrong := doJSON(t, r, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ada@example.com", "password": "nope nope"}, "")
	unknown := doJSON(t, r, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ghost@example.com", "password": "nope nope"}, "")
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("failure codes = %d, %d, want 401 twice", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Fatalf("wrong-password and unknown-email bodies differ:\n%s\n%s", wrong.Body, unknown.Body)
	}
}

func TestHandlerMeRequiresValidToken(t *testing.T) {
	r, h := newTestRouter(t)
	h.register(t, "ada@example.com", "correct horse")
	rec := doJSON(t, r, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ada@example.com", "password": "correct horse"}, "")
	var tokens tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}

	me := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, tokens.AccessToken)
	if me.Code != http.StatusOK {
		t.Fatalf("me = %d, body %s", me.Code, me.Body.String())
	}

	if rec := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token = %d, want 401", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me with garbage token = %d, want 401", rec.Code)
	}
}

func TestHandlerLogoutThenMeRejected(t *testing.T) {
	r, h := newTestRouter(t)
	h.register(t, "ada@example.com", "correct horse")
	rec := doJSON(t, r, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ada@example.com", "password": "correct horse"}, "")
	var tokens tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}

	if rec := doJSON(t, r, http.MethodPost, "/api/auth/logout", nil, tokens.AccessToken); rec.Code != http.StatusOK {
		t.Fatalf("logout = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, tokens.AccessToken); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d, want 401", rec.Code)
	}
}

func TestHandlerRefresh(t *testing.T) {
	r, h := newTestRouter(t)
	h.register(t, "ada@example.com", "correct horse")
	rec := doJSON(t, r, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ada@example.com", "password": "correct horse"}, "")
	var tokens tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}

	fresh := doJSON(t, r, http.MethodPost, "/api/auth/refresh",
		map[string]string{"refresh_token": tokens.RefreshToken}, "")
	if fresh.Code != http.StatusOK {
		t.Fatalf("refresh = %d, body %s", fresh.Code, fresh.Body.String())
	}

	bad := doJSON(t, r, http.MethodPost, "/api/auth/refresh",
		map[string]string{"refresh_token": tokens.AccessToken}, "")
	if bad.Code != http.StatusUnauthorized {
		t.Fatalf("refresh with access token = %d, want 401", bad.Code)
	}
}
