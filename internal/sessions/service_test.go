package sessions

import (
	"context"
	"testing"
	"time"

	_ "github.com/praetor-auth/praetor/testing"
)

type memoryRepo struct {
	rows   map[string]*Session
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[string]*Session)}
}

func (r *memoryRepo) Insert(ctx context.Context, userID int64, digest string, expiresAt time.Time) (Session, error) {
	r.nextID++
	s := &Session{
		ID:          r.nextID,
		UserID:      userID,
		TokenDigest: digest,
		ExpiresAt:   expiresAt,
		IsValid:     true,
		CreatedAt:   time.Now(),
	}
	r.rows[digest] = s
	return *s, nil
}

func (r *memoryRepo) FindValidByDigest(ctx context.Context, digest string, now time.Time) (*Session, error) {
	s, ok := r.rows[digest]
	if !ok || !s.IsValid || !s.ExpiresAt.After(now) {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *memoryRepo) InvalidateByDigest(ctx context.Context, digest string) (bool, error) {
	s, ok := r.rows[digest]
	if !ok {
		return false, nil
	}
	s.IsValid = false
	return true, nil
}

func (r *memoryRepo) InvalidateAllForUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	for _, s := range r.rows {
		if s.UserID == userID && s.IsValid {
			s.IsValid = false
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for digest, s := range r.rows {
		if s.ExpiresAt.Before(now) {
			delete(r.rows, digest)
			n++
		}
	}
	return n, nil
}

func TestDigestNeverStoresRawToken(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	raw := "raw.bearer.token"
	created, err := svc.Create(context.Background(), 1, raw, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.TokenDigest == raw {
		t.Fatalf("ledger stored the raw token")
	}
	if created.TokenDigest != Digest(raw) {
		t.Fatalf("digest mismatch")
	}
	if Digest(raw) != Digest(raw) {
		t.Fatalf("digest not deterministic")
	}
}

func TestLookupValidAndMonotonicInvalidate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	raw := "token-a"
	if _, err := svc.Create(ctx, 1, raw, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.LookupValid(ctx, raw)
	if err != nil || got == nil {
		t.Fatalf("LookupValid = (%v, %v), want row", got, err)
	}

	found, err := svc.Invalidate(ctx, raw)
	if err != nil || !found {
		t.Fatalf("Invalidate = (%v, %v), want found", found, err)
	}

	// Revocation is monotonic: the row never comes back.
	for i := 0; i < 3; i++ {
		got, err = svc.LookupValid(ctx, raw)
		if err != nil || got != nil {
			t.Fatalf("LookupValid after invalidate = (%v, %v), want nil", got, err)
		}
	}

	// Idempotent: a second invalidate still reports the row.
	found, err = svc.Invalidate(ctx, raw)
	if err != nil || !found {
		t.Fatalf("second Invalidate = (%v, %v), want found", found, err)
	}
}

func TestInvalidateUnknownTokenReportsMiss(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	found, err := svc.Invalidate(context.Background(), "never-issued")
	if err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if found {
		t.Fatalf("expected miss for unknown token")
	}
}

func TestExpiryEnforcedIndependentlyOfValidityFlag(t *testing.T) {
	repo := newMemoryRepo()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	svc := NewService(repo, func() time.Time { return current })
	ctx := context.Background()

	raw := "short-lived"
	if _, err := svc.Create(ctx, 1, raw, base.Add(10*time.Minute)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	current = base.Add(5 * time.Minute)
	if got, _ := svc.LookupValid(ctx, raw); got == nil {
		t.Fatalf("expected valid row before expiry")
	}

	current = base.Add(11 * time.Minute)
	got, err := svc.LookupValid(ctx, raw)
	if err != nil || got != nil {
		t.Fatalf("LookupValid past expiry = (%v, %v), want nil; flag alone must not keep it alive", got, err)
	}
}

func TestInvalidateAllForUser(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	for _, raw := range []string{"u1-a", "u1-b"} {
		if _, err := svc.Create(ctx, 1, raw, exp); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, 2, "u2-a", exp); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := svc.InvalidateAllForUser(ctx, 1)
	if err != nil {
		t.Fatalf("InvalidateAllForUser: %v", err)
	}
	if n != 2 {
		t.Fatalf("invalidated %d sessions, want 2", n)
	}
	if got, _ := svc.LookupValid(ctx, "u2-a"); got == nil {
		t.Fatalf("other user's session must stay valid")
	}

	// No sessions left to invalidate.
	n, err = svc.InvalidateAllForUser(ctx, 1)
	if err != nil || n != 0 {
		t.Fatalf("second sweep = (%d, %v), want 0", n, err)
	}
}

func TestPurgeExpired(t *testing.T) {
	repo := newMemoryRepo()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	svc := NewService(repo, func() time.Time { return current })
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, "old", base.Add(time.Minute)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, 1, "fresh", base.Add(time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// An invalidated-but-expired row is purged like any other.
	if _, err := svc.Create(ctx, 1, "revoked", base.Add(time.Minute)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Invalidate(ctx, "revoked"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	current = base.Add(2 * time.Minute)
	n, err := svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 2 {
		t.Fatalf("purged %d rows, want 2", n)
	}
	if got, _ := svc.LookupValid(ctx, "fresh"); got == nil {
		t.Fatalf("unexpired session must survive the sweep")
	}

	// Idempotent no-op when nothing is expired.
	n, err = svc.PurgeExpired(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second purge = (%d, %v), want 0", n, err)
	}
}
