// Package auth, as part of the authentication module.
// This file, `context.go`, deals with the authenticated Principal and how it travels
// with a request. The Request Authenticator stores it in the request's `context.Context`;
// handlers and services read it back from there instead of re-verifying the token.
package auth

import (
	"context"

	"github.com/user/todoapi-go/apperror"
)

// Principal is the authenticated identity attached to one request.
// It is built fresh for every request and never shared or persisted.
type Principal struct {
	ID    int64
	Email string
	Roles []RoleName
}

// NewPrincipal builds the Principal for a stored user.
func NewPrincipal(user *User) *Principal {
	return &Principal{
		ID:    user.ID,
		Email: user.Email,
		Roles: user.RoleNames(),
	}
}

// HasRole reports whether the principal carries the given role.
func (p *Principal) HasRole(role RoleName) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal carries at least one of roles.
// An empty list is always satisfied.
func (p *Principal) HasAnyRole(roles ...RoleName) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

// `contextKey` is a custom type for context keys. Using a custom type prevents collisions
// with context keys defined in other packages.
type contextKey string

const principalContextKey contextKey = "auth_principal"

// NewContextWithPrincipal returns a child context carrying p.
func NewContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext extracts the Principal stored by NewContextWithPrincipal.
// The second return value indicates whether one was found.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	return p, ok && p != nil
}

// RequirePrincipal is PrincipalFromContext for code paths that cannot run anonymously.
// A missing principal is reported as USER_NOT_AUTHENTICATED (401).
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return nil, apperror.NewAuthError(apperror.CodeUserNotAuthenticated, nil)
	}
	return p, nil
}
