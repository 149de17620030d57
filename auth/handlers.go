// Package auth, as part of the authentication module.
// This file, `handlers.go`, exposes the login flow over HTTP.
package auth

import (
	"net/http"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/validation"
)

// Handlers wraps the AuthService to provide HTTP handlers.
type Handlers struct {
	service *AuthService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service}
}

// HandleLogin godoc
// @Summary Authenticate a user
// @Description Exchanges an existing user's email and password for a bearer token.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} auth.TokenResponse "Authenticated successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid fields"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - Invalid credentials"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := validation.DecodeAndValidate(r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		apperror.WriteJSON(w, http.StatusOK, resp)
	}
}
