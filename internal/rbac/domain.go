// Package rbac implements role-based access control: the role/permission
// graph, its mutation operations, and the resolver that answers whether a
// user may perform an action on a resource.
package rbac

import "time"

// Role represents a named, reusable bundle of permissions. Names are unique
// case-sensitively; the "admin" check alone is case-insensitive.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission is an atomic capability identified by the (resource, action)
// pair, e.g. ("documents", "read"). The pair is unique across the system.
type Permission struct {
	ID          int64
	Resource    string
	Action      string
	Description string
}

// RoleDetail is a role together with its attached permissions.
type RoleDetail struct {
	Role
	Permissions []Permission
}

// AdminRoleName is the role whose holders pass the coarse admin check.
const AdminRoleName = "admin"
