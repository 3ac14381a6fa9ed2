package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praetor-auth/praetor/internal/platform/db"
	"github.com/praetor-auth/praetor/internal/shared"
)

// RepositoryPort defines data access methods for account management.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]Profile, error)
	GetProfile(ctx context.Context, id int64) (*Profile, error)
	PasswordHash(ctx context.Context, id int64) (string, error)
	UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*Profile, error)
	Deactivate(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, email, first_name, last_name, middle_name, is_active, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.MiddleName, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListUsers returns all accounts, active or not, ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.MiddleName, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetProfile returns a single account by id.
func (r *Repository) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, id))
}

// PasswordHash returns the stored credential for password-change checks.
func (r *Repository) PasswordHash(ctx context.Context, id int64) (string, error) {
	var hash string
	err := r.pool.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	return hash, err
}

// UpdateProfile rewrites the mutable fields. The password hash only changes
// when a non-empty replacement is supplied. A taken email maps to
// ErrConflict.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			email = $2,
			first_name = $3,
			last_name = $4,
			middle_name = $5,
			password_hash = COALESCE(NULLIF($6, ''), password_hash),
			updated_at = now()
		WHERE id = $1 AND is_active
		RETURNING `+profileColumns,
		id, upd.Email, upd.FirstName, upd.LastName, upd.MiddleName, upd.PasswordHash)
	profile, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("email already registered: %w", shared.ErrConflict)
		}
		return nil, err
	}
	return profile, nil
}

// Deactivate soft-deletes the account and revokes every live session in the
// same transaction, so a half-applied delete can never leave a usable token
// behind.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE users SET is_active = FALSE, updated_at = now() WHERE id = $1 AND is_active`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx, `UPDATE sessions SET is_valid = FALSE WHERE user_id = $1 AND is_valid`, id)
		return err
	})
}
