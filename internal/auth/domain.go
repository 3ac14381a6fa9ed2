// Package auth implements the authentication flow: registration, login,
// logout, token refresh, and bearer-token verification against the session
// ledger.
package auth

import "time"

// User represents an account. MiddleName is optional and empty when absent.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	MiddleName   string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenPair is the result of a successful login or refresh. Only the access
// token is tracked in the session ledger; the refresh token stays stateless
// and expires on its own.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// DefaultRoleName is attached to newly registered users when it exists.
const DefaultRoleName = "user"
