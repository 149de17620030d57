// Package auth, as part of the authentication module.
// This file, `models.go`, defines the entities shared by the authentication and
// user-management code: users, their roles, and the fixed set of role names.
package auth

import "time"

// RoleName is one of the fixed roles a user can hold.
type RoleName string

const (
	RoleUser          RoleName = "USER"
	RoleAdministrator RoleName = "ADMINISTRATOR"
)

// Valid reports whether r is one of the known role names.
func (r RoleName) Valid() bool {
	return r == RoleUser || r == RoleAdministrator
}

// Role is a row of the `roles` table.
type Role struct {
	ID   int64    `json:"id"`
	Name RoleName `json:"name"`
}

// User represents a user in the system, as stored in the `users` table.
// The `json:"-"` tag on PasswordHash keeps the hash out of every API response.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	Roles        []Role    `json:"roles"`
}

// RoleNames returns the names of the user's roles in their stored order.
func (u *User) RoleNames() []RoleName {
	names := make([]RoleName, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}
