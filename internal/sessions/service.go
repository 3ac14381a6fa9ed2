package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Digest computes the one-way digest under which a token is stored. SHA-256
// keeps ledger rows useless to anyone who reads the table.
func Digest(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// Service wraps ledger business rules around the repository.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a Service. A nil now falls back to time.Now.
func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Create records an issued access token. Only the digest is persisted.
func (s *Service) Create(ctx context.Context, userID int64, rawToken string, expiresAt time.Time) (Session, error) {
	return s.repo.Insert(ctx, userID, Digest(rawToken), expiresAt)
}

// LookupValid returns the ledger row for a raw token if it is still valid and
// unexpired, nil otherwise. Never errors on a miss.
func (s *Service) LookupValid(ctx context.Context, rawToken string) (*Session, error) {
	return s.repo.FindValidByDigest(ctx, Digest(rawToken), s.now())
}

// Invalidate revokes the session for a raw token. Idempotent; reports whether
// a matching row existed. Once cleared the flag is never set back.
func (s *Service) Invalidate(ctx context.Context, rawToken string) (bool, error) {
	return s.repo.InvalidateByDigest(ctx, Digest(rawToken))
}

// InvalidateAllForUser revokes every valid session of a user and returns the
// count. Used on logout-all and account deactivation.
func (s *Service) InvalidateAllForUser(ctx context.Context, userID int64) (int64, error) {
	return s.repo.InvalidateAllForUser(ctx, userID)
}

// PurgeExpired deletes rows whose expiry has passed and returns the count.
// Safe to run repeatedly and concurrently with live traffic.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}
