package auth

import "github.com/spec-kit/rbac-service/internal/domain"

// Permission is an atomic capability key of the form "resource:action".
type Permission string

const (
	PermPostsCreate Permission = "posts:create"
	PermPostsRead   Permission = "posts:read"
	PermPostsUpdate Permission = "posts:update"
	PermPostsDelete Permission = "posts:delete"
	PermUsersManage Permission = "users:manage"
)

// PermissionTable maps roles to the permissions they hold. It is built once
// at startup and never mutated afterwards; tests construct their own table
// instead of changing a shared one.
type PermissionTable struct {
	rules map[domain.Role]map[Permission]bool
}

// NewPermissionTable copies the given rules into an immutable table.
func NewPermissionTable(rules map[domain.Role]map[Permission]bool) *PermissionTable {
	copied := make(map[domain.Role]map[Permission]bool, len(rules))
	for role, perms := range rules {
		rolePerms := make(map[Permission]bool, len(perms))
		for perm, allowed := range perms {
			rolePerms[perm] = allowed
		}
		copied[role] = rolePerms
	}
	return &PermissionTable{rules: copied}
}

// DefaultPermissionTable returns the static role -> permission matrix.
// Editors may update but not delete; the ownership rule on update/delete is
// enforced at the service layer.
func DefaultPermissionTable() *PermissionTable {
	return NewPermissionTable(map[domain.Role]map[Permission]bool{
		domain.RoleAdmin: {
			PermPostsCreate: true,
			PermPostsRead:   true,
			PermPostsUpdate: true,
			PermPostsDelete: true,
			PermUsersManage: true,
		},
		domain.RoleEditor: {
			PermPostsCreate: true,
			PermPostsRead:   true,
			PermPostsUpdate: true,
			PermPostsDelete: false,
		},
		domain.RoleViewer: {
			PermPostsCreate: false,
			PermPostsRead:   true,
			PermPostsUpdate: false,
			PermPostsDelete: false,
		},
	})
}

// Allows reports whether the role holds the permission. Unknown roles and
// missing entries deny.
func (t *PermissionTable) Allows(role domain.Role, permission Permission) bool {
	if t == nil {
		return false
	}
	perms, ok := t.rules[role]
	if !ok {
		return false
	}
	return perms[permission]
}
