package domain

import "time"

// RoleAdmin and RoleUser are the two roles seeded at startup. Role storage is
// many-to-many, so a single account may hold both.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Role is immutable reference data seeded once at startup.
type Role struct {
	ID          int64
	Name        string
	Description string
}

// User is the domain model for account holders who create shipments.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	// SecurityStamp is a stable per-user identifier embedded in every issued
	// token. Rotating it invalidates all outstanding tokens for the account.
	SecurityStamp string
	Active        bool
	Roles         []Role
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the names of all roles held by the user.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

// EffectiveRole collapses the role set for API responses: an account holding
// "admin" is reported as admin even when it also holds "user".
func (u *User) EffectiveRole() string {
	if u.HasRole(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}
