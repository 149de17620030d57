// Package auth, as part of the authentication module.
// This file, `routes.go`, holds the static Route Classification table the Request
// Authenticator consults before it looks at any token.
package auth

import (
	"net/http"
	"strings"

	"github.com/user/todoapi-go/config"
)

// Access is the authentication requirement of a route.
type Access int

const (
	// AccessProtected routes need a valid token. This is the default.
	AccessProtected Access = iota
	// AccessPublic routes never need a token.
	AccessPublic
	// AccessPublicOnPost routes need no token for POST and a valid token otherwise.
	AccessPublicOnPost
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "PUBLIC"
	case AccessPublicOnPost:
		return "PUBLIC-ON-POST"
	default:
		return "PROTECTED"
	}
}

// RoleRule restricts requests matching Method and Pattern to principals holding one of Roles.
// Pattern segments written as `{name}` match exactly one non-empty path segment.
type RoleRule struct {
	Method  string
	Pattern string
	Roles   []RoleName
}

// DefaultRoleRules are the admin-only routes: listing users and fetching one by id.
// `/users/filter` is covered by the `{id}` pattern as well.
var DefaultRoleRules = []RoleRule{
	{Method: http.MethodGet, Pattern: "/users", Roles: []RoleName{RoleAdministrator}},
	{Method: http.MethodGet, Pattern: "/users/{id}", Roles: []RoleName{RoleAdministrator}},
}

// RouteTable classifies requests by path prefix and method. It is built once at startup
// and only read afterwards.
type RouteTable struct {
	public     []string
	publicPost []string
	roleRules  []RoleRule
}

// NewRouteTable builds the table from the configured prefix lists and role rules.
func NewRouteTable(sec config.SecurityConfig, rules []RoleRule) *RouteTable {
	return &RouteTable{
		public:     append([]string(nil), sec.PublicEndpoints...),
		publicPost: append([]string(nil), sec.PublicPostEndpoints...),
		roleRules:  append([]RoleRule(nil), rules...),
	}
}

// Classify returns the access level of the route the path belongs to.
// Prefixes are matched with a plain "starts with" test, so `/auth` also covers `/auth/x`.
func (t *RouteTable) Classify(path string) Access {
	if hasAnyPrefix(path, t.public) {
		return AccessPublic
	}
	if hasAnyPrefix(path, t.publicPost) {
		return AccessPublicOnPost
	}
	return AccessProtected
}

// IsPublic reports whether the request may proceed without a token.
func (t *RouteTable) IsPublic(method, path string) bool {
	switch t.Classify(path) {
	case AccessPublic:
		return true
	case AccessPublicOnPost:
		return method == http.MethodPost
	default:
		return false
	}
}

// RequiredRoles returns the roles of the first matching role rule, or nil when the
// route is open to any authenticated principal.
func (t *RouteTable) RequiredRoles(method, path string) []RoleName {
	for _, rule := range t.roleRules {
		if rule.Method == method && matchPattern(rule.Pattern, path) {
			return rule.Roles
		}
	}
	return nil
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// matchPattern compares a `/a/{b}` style pattern against a concrete path.
// A single trailing slash on the path is ignored.
func matchPattern(pattern, path string) bool {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternParts) != len(pathParts) {
		return false
	}
	for i, part := range patternParts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			if pathParts[i] == "" {
				return false
			}
			continue
		}
		if part != pathParts[i] {
			return false
		}
	}
	return true
}
