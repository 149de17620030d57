// Package users, as part of the user management module.
// This file, `dto.go`, defines the request and response bodies of the `/users` endpoints.
package users

import (
	"time"

	"github.com/user/todoapi-go/auth"
)

// CreateUserRequest is the body of `POST /users`.
// @Description Self-registration of a new account
type CreateUserRequest struct {
	// example: john.doe@example.com
	Email string `json:"email" validate:"required,email"`
	// example: s3cret
	Password string `json:"password" validate:"required,maxbytes=72"`
}

// UpdateUserRequest is the body of `PUT /users/{id}`. It replaces the whole account:
// email, password and the full set of roles.
// @Description Full replacement of an account
type UpdateUserRequest struct {
	// example: john.doe@example.com
	Email string `json:"email" validate:"required,email"`
	// example: n3w-s3cret
	Password string `json:"password" validate:"required,maxbytes=72"`
	// example: ["USER"]
	Roles []auth.RoleName `json:"roles" validate:"required,min=1,dive,oneof=USER ADMINISTRATOR"`
}

// UserFilter narrows `GET /users/filter`. Empty fields do not filter.
type UserFilter struct {
	Email string        // case-insensitive substring of the email
	Role  auth.RoleName // exact role name
}

// UserResponse is the public view of a user. The password hash is never exposed.
// @Description User account
type UserResponse struct {
	// example: 1
	ID int64 `json:"id"`
	// example: john.doe@example.com
	Email     string      `json:"email"`
	Roles     []auth.Role `json:"roles"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewUserResponse maps a stored user to its public view.
func NewUserResponse(u auth.User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []auth.Role{}
	}
	return UserResponse{ID: u.ID, Email: u.Email, Roles: roles, CreatedAt: u.CreatedAt}
}
