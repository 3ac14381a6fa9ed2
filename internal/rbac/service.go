package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/praetor-auth/praetor/internal/shared"
)

// Service orchestrates role/permission graph operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service backed by the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches a role and its permissions.
func (s *Service) GetRole(ctx context.Context, id int64) (RoleDetail, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole inserts a new role. Unknown permission ids are dropped rather
// than rejected; the role ends up with the existing subset.
func (s *Service) CreateRole(ctx context.Context, name, description string, permissionIDs []int64) (RoleDetail, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return RoleDetail{}, fmt.Errorf("role name required: %w", shared.ErrConflict)
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(description), permissionIDs)
}

// SetRolePermissions atomically replaces the role's permission set. The
// change is visible to every subsequent EffectivePermissions call; nothing is
// cached between mutations.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) (RoleDetail, error) {
	return s.repo.SetRolePermissions(ctx, roleID, permissionIDs)
}

// DeleteRole removes a role and all of its associations.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	return s.repo.DeleteRole(ctx, id)
}

// ListPermissions returns all permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// GetPermission fetches a permission by id.
func (s *Service) GetPermission(ctx context.Context, id int64) (Permission, error) {
	return s.repo.GetPermission(ctx, id)
}

// CreatePermission registers a new (resource, action) capability.
func (s *Service) CreatePermission(ctx context.Context, resource, action, description string) (Permission, error) {
	resource = strings.TrimSpace(resource)
	action = strings.TrimSpace(action)
	if resource == "" || action == "" {
		return Permission{}, fmt.Errorf("resource and action required: %w", shared.ErrConflict)
	}
	return s.repo.CreatePermission(ctx, resource, action, strings.TrimSpace(description))
}

// DeletePermission removes a permission and every association referencing it.
func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	return s.repo.DeletePermission(ctx, id)
}

// AssignRole grants a role to a user (idempotent).
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	return s.repo.AssignRole(ctx, userID, roleID)
}

// RevokeRole removes a role from a user (idempotent).
func (s *Service) RevokeRole(ctx context.Context, userID, roleID int64) error {
	return s.repo.RevokeRole(ctx, userID, roleID)
}

// GrantPermission grants a direct permission to a user. The permission must
// already exist.
func (s *Service) GrantPermission(ctx context.Context, userID int64, resource, action string) error {
	return s.repo.GrantDirectPermission(ctx, userID, resource, action)
}

// RevokePermission removes a direct grant from a user.
func (s *Service) RevokePermission(ctx context.Context, userID int64, resource, action string) error {
	return s.repo.RevokeDirectPermission(ctx, userID, resource, action)
}

// EffectivePermissions computes the union of the user's role-derived and
// directly granted permissions, fresh on every call.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]Permission, error) {
	return s.repo.EffectivePermissions(ctx, userID)
}

// HasPermission answers the point query for one (resource, action) pair.
func (s *Service) HasPermission(ctx context.Context, userID int64, resource, action string) (bool, error) {
	return s.repo.HasPermission(ctx, userID, resource, action)
}

// IsAdmin reports whether the user holds the admin role.
func (s *Service) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return s.repo.IsAdmin(ctx, userID)
}
