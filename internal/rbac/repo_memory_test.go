package rbac

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/praetor-auth/praetor/internal/shared"
)

type pair struct{ userID, otherID int64 }

// memoryRepo mirrors the PostgreSQL repository's contracts for service and
// middleware tests.
type memoryRepo struct {
	users     map[int64]bool
	roles     map[int64]Role
	perms     map[int64]Permission
	rolePerms map[pair]bool // userID=roleID, otherID=permissionID
	userRoles map[pair]bool
	userPerms map[pair]bool
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:     make(map[int64]bool),
		roles:     make(map[int64]Role),
		perms:     make(map[int64]Permission),
		rolePerms: make(map[pair]bool),
		userRoles: make(map[pair]bool),
		userPerms: make(map[pair]bool),
	}
}

func (r *memoryRepo) addUser() int64 {
	r.nextID++
	r.users[r.nextID] = true
	return r.nextID
}

func (r *memoryRepo) ListRoles(ctx context.Context) ([]Role, error) {
	out := []Role{}
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *memoryRepo) GetRole(ctx context.Context, id int64) (RoleDetail, error) {
	role, ok := r.roles[id]
	if !ok {
		return RoleDetail{}, fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
	}
	return RoleDetail{Role: role, Permissions: r.permsOfRole(id)}, nil
}

func (r *memoryRepo) permsOfRole(roleID int64) []Permission {
	out := []Permission{}
	for link := range r.rolePerms {
		if link.userID == roleID {
			out = append(out, r.perms[link.otherID])
		}
	}
	return out
}

func (r *memoryRepo) CreateRole(ctx context.Context, name, description string, permissionIDs []int64) (RoleDetail, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return RoleDetail{}, fmt.Errorf("role %q already exists: %w", name, shared.ErrConflict)
		}
	}
	r.nextID++
	role := Role{ID: r.nextID, Name: name, Description: description, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.roles[role.ID] = role
	for _, permID := range permissionIDs {
		if _, ok := r.perms[permID]; ok {
			r.rolePerms[pair{role.ID, permID}] = true
		}
	}
	return RoleDetail{Role: role, Permissions: r.permsOfRole(role.ID)}, nil
}

func (r *memoryRepo) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) (RoleDetail, error) {
	role, ok := r.roles[roleID]
	if !ok {
		return RoleDetail{}, fmt.Errorf("role %d: %w", roleID, shared.ErrNotFound)
	}
	for link := range r.rolePerms {
		if link.userID == roleID {
			delete(r.rolePerms, link)
		}
	}
	for _, permID := range permissionIDs {
		if _, ok := r.perms[permID]; ok {
			r.rolePerms[pair{roleID, permID}] = true
		}
	}
	role.UpdatedAt = time.Now()
	r.roles[roleID] = role
	return RoleDetail{Role: role, Permissions: r.permsOfRole(roleID)}, nil
}

func (r *memoryRepo) DeleteRole(ctx context.Context, id int64) error {
	if _, ok := r.roles[id]; !ok {
		return fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
	}
	for link := range r.userRoles {
		if link.otherID == id {
			delete(r.userRoles, link)
		}
	}
	for link := range r.rolePerms {
		if link.userID == id {
			delete(r.rolePerms, link)
		}
	}
	delete(r.roles, id)
	return nil
}

func (r *memoryRepo) ListPermissions(ctx context.Context) ([]Permission, error) {
	out := []Permission{}
	for _, p := range r.perms {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) GetPermission(ctx context.Context, id int64) (Permission, error) {
	p, ok := r.perms[id]
	if !ok {
		return Permission{}, fmt.Errorf("permission %d: %w", id, shared.ErrNotFound)
	}
	return p, nil
}

func (r *memoryRepo) CreatePermission(ctx context.Context, resource, action, description string) (Permission, error) {
	for _, p := range r.perms {
		if p.Resource == resource && p.Action == action {
			return Permission{}, fmt.Errorf("permission %s:%s already exists: %w", resource, action, shared.ErrConflict)
		}
	}
	r.nextID++
	p := Permission{ID: r.nextID, Resource: resource, Action: action, Description: description}
	r.perms[p.ID] = p
	return p, nil
}

func (r *memoryRepo) DeletePermission(ctx context.Context, id int64) error {
	if _, ok := r.perms[id]; !ok {
		return fmt.Errorf("permission %d: %w", id, shared.ErrNotFound)
	}
	for link := range r.rolePerms {
		if link.otherID == id {
			delete(r.rolePerms, link)
		}
	}
	for link := range r.userPerms {
		if link.otherID == id {
			delete(r.userPerms, link)
		}
	}
	delete(r.perms, id)
	return nil
}

func (r *memoryRepo) AssignRole(ctx context.Context, userID, roleID int64) error {
	if !r.users[userID] {
		return fmt.Errorf("user %d: %w", userID, shared.ErrNotFound)
	}
	if _, ok := r.roles[roleID]; !ok {
		return fmt.Errorf("role %d: %w", roleID, shared.ErrNotFound)
	}
	r.userRoles[pair{userID, roleID}] = true
	return nil
}

func (r *memoryRepo) RevokeRole(ctx context.Context, userID, roleID int64) error {
	if !r.users[userID] {
		return fmt.Errorf("user %d: %w", userID, shared.ErrNotFound)
	}
	if _, ok := r.roles[roleID]; !ok {
		return fmt.Errorf("role %d: %w", roleID, shared.ErrNotFound)
	}
	delete(r.userRoles, pair{userID, roleID})
	return nil
}

func (r *memoryRepo) findPermission(resource, action string) (Permission, error) {
	for _, p := range r.perms {
		if p.Resource == resource && p.Action == action {
			return p, nil
		}
	}
	return Permission{}, fmt.Errorf("permission %s:%s: %w", resource, action, shared.ErrNotFound)
}

func (r *memoryRepo) GrantDirectPermission(ctx context.Context, userID int64, resource, action string) error {
	if !r.users[userID] {
		return fmt.Errorf("user %d: %w", userID, shared.ErrNotFound)
	}
	p, err := r.findPermission(resource, action)
	if err != nil {
		return err
	}
	r.userPerms[pair{userID, p.ID}] = true
	return nil
}

func (r *memoryRepo) RevokeDirectPermission(ctx context.Context, userID int64, resource, action string) error {
	if !r.users[userID] {
		return fmt.Errorf("user %d: %w", userID, shared.ErrNotFound)
	}
	p, err := r.findPermission(resource, action)
	if err != nil {
		return err
	}
	delete(r.userPerms, pair{userID, p.ID})
	return nil
}

func (r *memoryRepo) EffectivePermissions(ctx context.Context, userID int64) ([]Permission, error) {
	seen := map[int64]bool{}
	out := []Permission{}
	for link := range r.userRoles {
		if link.userID != userID {
			continue
		}
		for rp := range r.rolePerms {
			if rp.userID == link.otherID && !seen[rp.otherID] {
				seen[rp.otherID] = true
				out = append(out, r.perms[rp.otherID])
			}
		}
	}
	for link := range r.userPerms {
		if link.userID == userID && !seen[link.otherID] {
			seen[link.otherID] = true
			out = append(out, r.perms[link.otherID])
		}
	}
	return out, nil
}

func (r *memoryRepo) HasPermission(ctx context.Context, userID int64, resource, action string) (bool, error) {
	perms, _ := r.EffectivePermissions(ctx, userID)
	for _, p := range perms {
		if p.Resource == resource && p.Action == action {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	for link := range r.userRoles {
		if link.userID == userID && strings.EqualFold(r.roles[link.otherID].Name, AdminRoleName) {
			return true, nil
		}
	}
	return false, nil
}

var _ Repository = (*memoryRepo)(nil)
