// Package auth, as part of the authentication module.
// This file, `token.go`, issues and verifies the signed bearer tokens (JWTs) that bind a
// request to a user. Tokens are self-contained: there is no server-side session or
// revocation list, so a token stays valid until it expires.
package auth

import (
	"errors"
	"fmt"
	"time"

	// `jwt` library for JWT creation, parsing and validation.
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/user/todoapi-go/config"
)

var (
	// ErrTokenCreation means a token could not be signed. It points at a configuration
	// problem (e.g. an empty secret) and is never retried.
	ErrTokenCreation = errors.New("error at token generation")
	// ErrTokenInvalid covers a bad signature, a foreign issuer, an expired or not yet
	// valid token and anything that does not parse as a token at all.
	ErrTokenInvalid = errors.New("invalid or expired token")
)

// TokenService creates and verifies HMAC-SHA256 signed tokens.
// All fields are read-only after construction, so one instance is shared by every request.
type TokenService struct {
	secret   []byte
	issuer   string
	duration time.Duration
	location *time.Location
	now      func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces the wall clock used for issuing and verifying tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a TokenService from the auth configuration.
// An unknown time zone falls back to UTC; config.LoadConfig already rejects those.
func NewTokenService(cfg config.AuthConfig, opts ...TokenOption) *TokenService {
	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		location = time.UTC
	}
	duration := cfg.TokenDuration
	if duration <= 0 {
		duration = 4 * time.Hour
	}

	s := &TokenService{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		duration: duration,
		location: location,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a token whose subject is the principal's email.
// The issued-at time is taken in the configured reference zone and the token expires
// `duration` later (4 hours by default).
func (s *TokenService) Issue(p *Principal) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("%w: signing secret is empty", ErrTokenCreation)
	}
	if p == nil || p.Email == "" {
		return "", fmt.Errorf("%w: principal has no email", ErrTokenCreation)
	}

	issuedAt := s.now().In(s.location)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   p.Email,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.duration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}
	return signed, nil
}

// Verify checks the token's signature, issuer and validity window and returns its subject.
// Every failure is reported as ErrTokenInvalid (wrapping the parser's reason).
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: subject claim is missing", ErrTokenInvalid)
	}
	return claims.Subject, nil
}

// Duration is the lifetime of issued tokens.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}
