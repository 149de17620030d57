// Package auth, as part of the authentication module.
// This file, `service.go`, holds the login flow: it checks a user's credentials and
// hands back a token from the Token Service.
package auth

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user/todoapi-go/apperror"
)

// TokenIssuer issues a token for a principal. *TokenService satisfies it.
type TokenIssuer interface {
	Issue(p *Principal) (string, error)
	Duration() time.Duration
}

// AuthService provides the authentication operation behind `POST /auth`.
type AuthService struct {
	users  UserFinder
	tokens TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserFinder, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login exchanges an email and password for a token.
// An unknown email and a wrong password produce the same INVALID_CREDENTIALS error so
// callers cannot probe which emails are registered.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorizedError(apperror.CodeInvalidCredentials, nil)
		}
		return nil, err
	}

	ok, err := CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to check password", err)
	}
	if !ok {
		return nil, apperror.NewUnauthorizedError(apperror.CodeInvalidCredentials, nil)
	}

	token, err := s.tokens.Issue(NewPrincipal(user))
	if err != nil {
		// Signing only fails on a misconfigured secret.
		return nil, apperror.NewInternalError("failed to issue token", err)
	}

	logrus.WithField("user_id", user.ID).Info("user authenticated")
	return &TokenResponse{Token: token, ExpiresIn: int64(s.tokens.Duration() / time.Second)}, nil
}
