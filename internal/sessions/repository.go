package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for the session ledger.
type Repository interface {
	Insert(ctx context.Context, userID int64, digest string, expiresAt time.Time) (Session, error)
	FindValidByDigest(ctx context.Context, digest string, now time.Time) (*Session, error)
	InvalidateByDigest(ctx context.Context, digest string) (bool, error)
	InvalidateAllForUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert stores a new ledger row for an issued access token.
func (r *PGRepository) Insert(ctx context.Context, userID int64, digest string, expiresAt time.Time) (Session, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sessions (user_id, token_digest, expires_at, is_valid, created_at)
		VALUES ($1, $2, $3, TRUE, now())
		RETURNING id, user_id, token_digest, expires_at, is_valid, created_at`,
		userID, digest, expiresAt.UTC())
	var s Session
	if err := row.Scan(&s.ID, &s.UserID, &s.TokenDigest, &s.ExpiresAt, &s.IsValid, &s.CreatedAt); err != nil {
		return Session{}, err
	}
	return s, nil
}

// FindValidByDigest returns the row only when it is still marked valid and
// unexpired. Absence is not an error.
func (r *PGRepository) FindValidByDigest(ctx context.Context, digest string, now time.Time) (*Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token_digest, expires_at, is_valid, created_at
		FROM sessions
		WHERE token_digest = $1 AND is_valid AND expires_at > $2`,
		digest, now.UTC())
	var s Session
	if err := row.Scan(&s.ID, &s.UserID, &s.TokenDigest, &s.ExpiresAt, &s.IsValid, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// InvalidateByDigest clears the validity flag. Reports whether a row matched.
func (r *PGRepository) InvalidateByDigest(ctx context.Context, digest string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE sessions SET is_valid = FALSE WHERE token_digest = $1`, digest)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// InvalidateAllForUser bulk-invalidates every currently valid session of a user.
func (r *PGRepository) InvalidateAllForUser(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE sessions SET is_valid = FALSE WHERE user_id = $1 AND is_valid`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes rows past their expiry regardless of the validity
// flag. Runs as a single statement so concurrent sweeps stay safe.
func (r *PGRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
