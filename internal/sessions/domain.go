// Package sessions is the server-side ledger of issued access tokens. The
// ledger stores a one-way digest of each token, never the raw value, and is
// the single source of revocation truth: a signature-valid token is still
// rejected once its ledger row is invalidated.
package sessions

import "time"

// Session is one ledger row.
type Session struct {
	ID          int64
	UserID      int64
	TokenDigest string
	ExpiresAt   time.Time
	IsValid     bool
	CreatedAt   time.Time
}
