package rbac

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

// Repository defines persistence operations for the role/permission graph.
// Cascading deletes and set-replacement are transactional: either the whole
// mutation applies or none of it does.
type Repository interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (RoleDetail, error)
	CreateRole(ctx context.Context, name, description string, permissionIDs []int64) (RoleDetail, error)
	SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) (RoleDetail, error)
	DeleteRole(ctx context.Context, id int64) error

	ListPermissions(ctx context.Context) ([]Permission, error)
	GetPermission(ctx context.Context, id int64) (Permission, error)
	CreatePermission(ctx context.Context, resource, action, description string) (Permission, error)
	DeletePermission(ctx context.Context, id int64) error

	AssignRole(ctx context.Context, userID, roleID int64) error
	RevokeRole(ctx context.Context, userID, roleID int64) error
	GrantDirectPermission(ctx context.Context, userID int64, resource, action string) error
	RevokeDirectPermission(ctx context.Context, userID int64, resource, action string) error

	EffectivePermissions(ctx context.Context, userID int64) ([]Permission, error)
	HasPermission(ctx context.Context, userID int64, resource, action string) (bool, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanPermissions(rows pgx.Rows) ([]Permission, error) {
	defer rows.Close()
	perms := []Permission{}
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Resource, &p.Action, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func rolePermissions(ctx context.Context, q queryer, roleID int64) ([]Permission, error) {
	rows, err := q.Query(ctx, `
		SELECT p.id, p.resource, p.action, p.description
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.resource, p.action`, roleID)
	if err != nil {
		return nil, err
	}
	return scanPermissions(rows)
}

// ListRoles returns all roles ordered by name.
func (r *PGRepository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	roles := []Role{}
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetRole fetches a role and its permissions.
func (r *PGRepository) GetRole(ctx context.Context, id int64) (RoleDetail, error) {
	var detail RoleDetail
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM roles WHERE id = $1`, id).
		Scan(&detail.ID, &detail.Name, &detail.Description, &detail.CreatedAt, &detail.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RoleDetail{}, fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
		}
		return RoleDetail{}, err
	}
	detail.Permissions, err = rolePermissions(ctx, r.pool, id)
	return detail, err
}

// CreateRole inserts a role and attaches the subset of permissionIDs that
// exist. Unknown ids are silently dropped.
func (r *PGRepository) CreateRole(ctx context.Context, name, description string, permissionIDs []int64) (RoleDetail, error) {
	var detail RoleDetail
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO roles (name, description, created_at, updated_at)
			VALUES ($1, $2, now(), now())
			RETURNING id, name, description, created_at, updated_at`,
			name, description).
			Scan(&detail.ID, &detail.Name, &detail.Description, &detail.CreatedAt, &detail.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("role %q already exists: %w", name, shared.ErrConflict)
			}
			return err
		}
		if len(permissionIDs) > 0 {
			// Attach only ids that resolve to existing permission rows.
			if _, err := tx.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				SELECT $1, p.id FROM permissions p WHERE p.id = ANY($2)
				ON CONFLICT DO NOTHING`, detail.ID, permissionIDs); err != nil {
				return err
			}
		}
		detail.Permissions, err = rolePermissions(ctx, tx, detail.ID)
		return err
	})
	if err != nil {
		return RoleDetail{}, err
	}
	return detail, nil
}

// SetRolePermissions replaces the role's entire permission set atomically.
// After commit the role holds exactly the existing permissions named by
// permissionIDs.
func (r *PGRepository) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) (RoleDetail, error) {
	var detail RoleDetail
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE roles SET updated_at = now() WHERE id = $1
			RETURNING id, name, description, created_at, updated_at`, roleID).
			Scan(&detail.ID, &detail.Name, &detail.Description, &detail.CreatedAt, &detail.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("role %d: %w", roleID, shared.ErrNotFound)
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		if len(permissionIDs) > 0 {
			if _, err := tx.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				SELECT $1, p.id FROM permissions p WHERE p.id = ANY($2)
				ON CONFLICT DO NOTHING`, roleID, permissionIDs); err != nil {
				return err
			}
		}
		detail.Permissions, err = rolePermissions(ctx, tx, roleID)
		return err
	})
	if err != nil {
		return RoleDetail{}, err
	}
	return detail, nil
}

// DeleteRole removes the role and every association pointing at it, in one
// transaction so no dangling rows survive a partial failure.
func (r *PGRepository) DeleteRole(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE role_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
		}
		return nil
	})
}

// ListPermissions returns all permissions ordered by pair.
func (r *PGRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, resource, action, description
		FROM permissions ORDER BY resource, action`)
	if err != nil {
		return nil, err
	}
	return scanPermissions(rows)
}

// GetPermission fetches a permission by id.
func (r *PGRepository) GetPermission(ctx context.Context, id int64) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `
		SELECT id, resource, action, description FROM permissions WHERE id = $1`, id).
		Scan(&p.ID, &p.Resource, &p.Action, &p.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, fmt.Errorf("permission %d: %w", id, shared.ErrNotFound)
		}
		return Permission{}, err
	}
	return p, nil
}

// CreatePermission inserts a new (resource, action) capability.
func (r *PGRepository) CreatePermission(ctx context.Context, resource, action, description string) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (resource, action, description)
		VALUES ($1, $2, $3)
		RETURNING id, resource, action, description`,
		resource, action, description).
		Scan(&p.ID, &p.Resource, &p.Action, &p.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return Permission{}, fmt.Errorf("permission %s:%s already exists: %w", resource, action, shared.ErrConflict)
		}
		return Permission{}, err
	}
	return p, nil
}

// DeletePermission cascades: role attachments and direct grants referencing
// the permission go first, then the permission itself.
func (r *PGRepository) DeletePermission(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE permission_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_permissions WHERE permission_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("permission %d: %w", id, shared.ErrNotFound)
		}
		return nil
	})
}

func (r *PGRepository) userExists(ctx context.Context, userID int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user %d: %w", userID, shared.ErrNotFound)
	}
	return nil
}

func (r *PGRepository) roleExists(ctx context.Context, roleID int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, roleID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("role %d: %w", roleID, shared.ErrNotFound)
	}
	return nil
}

// AssignRole links a user to a role. Re-assigning an already held role is a
// no-op; a missing user or role is NotFound.
func (r *PGRepository) AssignRole(ctx context.Context, userID, roleID int64) error {
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}
	if err := r.roleExists(ctx, roleID); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, roleID)
	return err
}

// RevokeRole unlinks a user from a role with the same idempotency contract.
func (r *PGRepository) RevokeRole(ctx context.Context, userID, roleID int64) error {
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}
	if err := r.roleExists(ctx, roleID); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return err
}

func (r *PGRepository) permissionID(ctx context.Context, resource, action string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM permissions WHERE resource = $1 AND action = $2`, resource, action).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("permission %s:%s: %w", resource, action, shared.ErrNotFound)
		}
		return 0, err
	}
	return id, nil
}

// GrantDirectPermission grants a user a permission outside any role. The
// permission must already exist; this operation never creates one.
func (r *PGRepository) GrantDirectPermission(ctx context.Context, userID int64, resource, action string) error {
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}
	permID, err := r.permissionID(ctx, resource, action)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_permissions (user_id, permission_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, permID)
	return err
}

// RevokeDirectPermission removes a direct grant; revoking an unheld grant is
// a no-op.
func (r *PGRepository) RevokeDirectPermission(ctx context.Context, userID int64, resource, action string) error {
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}
	permID, err := r.permissionID(ctx, resource, action)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1 AND permission_id = $2`, userID, permID)
	return err
}

// EffectivePermissions computes the union of role-derived and directly
// granted permissions. A user with neither, or an unknown user id, yields an
// empty set.
func (r *PGRepository) EffectivePermissions(ctx context.Context, userID int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.resource, p.action, p.description
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = $1
		UNION
		SELECT p.id, p.resource, p.action, p.description
		FROM permissions p
		JOIN user_permissions up ON up.permission_id = p.id
		WHERE up.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	return scanPermissions(rows)
}

// HasPermission is the short-circuit membership test. The EXISTS form stops
// at the first match but answers exactly as EffectivePermissions would.
func (r *PGRepository) HasPermission(ctx context.Context, userID int64, resource, action string) (bool, error) {
	var has bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM permissions p
			JOIN role_permissions rp ON rp.permission_id = p.id
			JOIN user_roles ur ON ur.role_id = rp.role_id
			WHERE ur.user_id = $1 AND p.resource = $2 AND p.action = $3
			UNION ALL
			SELECT 1
			FROM permissions p
			JOIN user_permissions up ON up.permission_id = p.id
			WHERE up.user_id = $1 AND p.resource = $2 AND p.action = $3
		)`, userID, resource, action).Scan(&has)
	return has, err
}

// IsAdmin reports whether the user holds a role named "admin",
// case-insensitively. Distinct from resource/action permissions.
func (r *PGRepository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var isAdmin bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM roles ro
			JOIN user_roles ur ON ur.role_id = ro.id
			WHERE ur.user_id = $1 AND lower(ro.name) = $2
		)`, userID, AdminRoleName).Scan(&isAdmin)
	return isAdmin, err
}

var _ Repository = (*PGRepository)(nil)
