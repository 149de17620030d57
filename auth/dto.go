// Package auth, as part of the authentication module.
// This file, `dto.go`, defines the request and response bodies of the `/auth` endpoint.
package auth

// LoginRequest is the body of `POST /auth`.
// @Description Credentials exchanged for a bearer token
type LoginRequest struct {
	// example: john.doe@example.com
	Email string `json:"email" validate:"required"`
	// example: s3cret
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a freshly issued bearer token.
// @Description Bearer token to send as `Authorization: Bearer <token>`
type TokenResponse struct {
	Token string `json:"token"`
	// Seconds until the token expires.
	ExpiresIn int64 `json:"expiresIn" example:"14400"`
}
