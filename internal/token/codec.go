// Package token issues and verifies the signed bearer tokens used by the
// authentication flow. The codec is stateless: trust rests entirely on the
// shared HMAC secret, and revocation is the session ledger's job.
package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/praetor-auth/praetor/internal/shared"
)

// Kind tags a token as access or refresh. Verification requires an exact
// match so a refresh token can never be presented as an access token.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the signed payload carried by every issued token.
type Claims struct {
	jwt.RegisteredClaims
	Kind Kind `json:"kind"`
}

// UserID parses the subject claim back into a user id.
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, shared.ErrInvalidToken
	}
	return id, nil
}

// Codec signs and verifies bearer tokens with HS256.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewCodec constructs a Codec. Lifetimes come from configuration, never from
// package constants. A nil now falls back to time.Now.
func NewCodec(secret string, accessTTL, refreshTTL time.Duration, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
	}
}

// Issue creates a signed token of the requested kind for the given user.
func (c *Codec) Issue(userID int64, kind Kind) (string, Claims, error) {
	ttl := c.accessTTL
	if kind == KindRefresh {
		ttl = c.refreshTTL
	}
	now := c.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Kind: kind,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, claims, nil
}

// Verify checks signature, expiry and kind, in that order. Every failure
// collapses to shared.ErrInvalidToken so callers cannot distinguish a
// tampered token from an expired one.
func (c *Codec) Verify(raw string, want Kind) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, shared.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, shared.ErrInvalidToken
	}
	if claims.Subject == "" || claims.Kind != want {
		return Claims{}, shared.ErrInvalidToken
	}
	return *claims, nil
}

// AccessTTL exposes the configured access token lifetime for ledger expiry.
func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}
