package domain

import "time"

// Role enumerates the closed set of account roles.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
)

// ValidRole reports whether the given string names a known role.
func ValidRole(r string) bool {
	switch Role(r) {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// User is the domain model for an account. Role is immutable except through
// the admin user-management surface; role changes become visible to callers
// on their next token refresh.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
