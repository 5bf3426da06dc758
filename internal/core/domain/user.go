package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

// DefaultRoles are seeded at startup and are the only roles the system knows about.
var DefaultRoles = []string{RoleAdmin, RoleUser}

// Role is a named authority that can be granted to users.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Label returns the role name without the ROLE_ prefix, e.g. "ADMIN".
func (r Role) Label() string {
	return strings.TrimPrefix(r.Name, "ROLE_")
}

// User models an account managed through the admin pages.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email,omitempty"`
	Age          int       `json:"age"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the role with the given name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the names of the user's roles in assignment order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// RoleIDs returns the ids of the user's roles in assignment order.
func (u *User) RoleIDs() []int64 {
	ids := make([]int64, 0, len(u.Roles))
	for _, r := range u.Roles {
		ids = append(ids, r.ID)
	}
	return ids
}
