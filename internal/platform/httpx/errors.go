package httpx

import (
	"errors"
	"net/http"

	"github.com/praetor-auth/praetor/internal/shared"
)

// RespondError maps domain errors to HTTP problem responses.
//
// Both credential and token failures produce the exact same 401 body. The
// undifferentiated response is deliberate: distinct messages would reveal
// which sub-check rejected the request.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrInvalidToken):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication failed")
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "insufficient permissions")
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
