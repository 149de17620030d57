// Package auth, as part of the authentication module.
// This file, `middleware.go`, defines the Request Authenticator: the HTTP middleware that
// gates every inbound request exactly once, before routing reaches any handler.
package auth

import (
	"context"
	"net/http"
	// `strings` for stripping the "Bearer " prefix from the Authorization header.
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	// `apperror` provides standardized error types and responses.
	"github.com/user/todoapi-go/apperror"
)

// bearerPrefix is stripped literally from the Authorization header.
const bearerPrefix = "Bearer "

// TokenVerifier verifies a token string and returns its subject (the user's email).
// *TokenService satisfies it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder resolves a login email to a stored user.
// Implementations return an apperror NotFound error when no such user exists.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// RejectionRecorder counts requests the authenticator turns away, by reason.
type RejectionRecorder interface {
	RecordAuthRejection(reason string)
}

// Rejection reasons reported to the RejectionRecorder.
const (
	RejectMissingToken  = "missing_token"
	RejectInvalidToken  = "invalid_token"
	RejectUnknownUser   = "unknown_user"
	RejectForbiddenRole = "forbidden_role"
	RejectLookupFailure = "lookup_failure"
)

// Authenticator is the Request Authenticator middleware.
// It holds only read-only collaborators, so a single instance serves all requests
// concurrently without locking.
type Authenticator struct {
	tokens   TokenVerifier
	users    UserFinder
	routes   *RouteTable
	recorder RejectionRecorder
}

// NewAuthenticator creates the middleware. `recorder` may be nil.
func NewAuthenticator(tokens TokenVerifier, users UserFinder, routes *RouteTable, recorder RejectionRecorder) *Authenticator {
	return &Authenticator{
		tokens:   tokens,
		users:    users,
		routes:   routes,
		recorder: recorder,
	}
}

// Handler wraps next with the authentication pass:
//
//  1. classify the route; public routes continue with no principal attached
//  2. extract the bearer token; none -> 401 with an empty body
//  3. verify it; invalid -> 401 with an empty body
//  4. load the user by the token subject; unknown -> 404 USER_NOT_FOUND
//  5. enforce the route's role rule; missing role -> 403 USER_NOT_AUTHORIZED
//  6. attach the Principal to the request context and call next
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.routes.IsPublic(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearerToken(r)
		if token == "" {
			a.reject(w, r, RejectMissingToken, apperror.NewAuthError(apperror.CodeMissingToken, nil))
			return
		}

		subject, err := a.tokens.Verify(token)
		if err != nil {
			a.reject(w, r, RejectInvalidToken, apperror.NewAuthError(apperror.CodeUserNotAuthenticated, err))
			return
		}

		user, err := a.users.FindByEmail(r.Context(), subject)
		if err != nil {
			if apperror.IsNotFound(err) {
				a.reject(w, r, RejectUnknownUser, apperror.NewNotFoundError(apperror.CodeUserNotFound, err))
				return
			}
			a.reject(w, r, RejectLookupFailure, err)
			return
		}

		principal := NewPrincipal(user)
		if required := a.routes.RequiredRoles(r.Method, r.URL.Path); !principal.HasAnyRole(required...) {
			a.reject(w, r, RejectForbiddenRole, apperror.NewUnauthorizedError(apperror.CodeUserNotAuthorized, nil))
			return
		}

		ctx := NewContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, reason string, err error) {
	if a.recorder != nil {
		a.recorder.RecordAuthRejection(reason)
	}
	logrus.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"reason":     reason,
		"request_id": middleware.GetReqID(r.Context()),
	}).Debug("request rejected by authenticator")
	apperror.WriteError(w, r, err)
}

// extractBearerToken returns the token from "Authorization: Bearer <token>".
// An absent header, another scheme or an empty token all read as "no token".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}
