package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure. Unknown email, inactive
	// account and wrong password all collapse to this value so the response
	// cannot reveal which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a token rejected for any reason: bad
	// signature, expired, wrong kind, or revoked in the session ledger.
	ErrInvalidToken = errors.New("invalid token")
	// ErrConflict indicates a uniqueness violation (email, role name,
	// resource/action pair).
	ErrConflict = errors.New("conflict")
	// ErrNotFound indicates the operation target does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates an authenticated subject lacking the required
	// permission or role.
	ErrForbidden = errors.New("forbidden")
)
