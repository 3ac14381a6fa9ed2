package shared

import (
	"net/http"
	"strings"
)

// BearerToken extracts the raw bearer token from the Authorization header.
// The scheme comparison is case-insensitive per RFC 7235.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
