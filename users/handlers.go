// Package users encapsulates all functionality related to user account management.
// This file, `handlers.go`, is responsible for handling HTTP requests related to users.
// Role checks for the admin-only listing routes happen in the Request Authenticator;
// self-service checks happen in the service.
package users

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/auth"
	"github.com/user/todoapi-go/pagination"
	"github.com/user/todoapi-go/validation"
)

// UserHandlers provides HTTP handlers for user account management.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// RegisterRoutes mounts the user routes on r.
func (h *UserHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreate())
	r.Get("/", h.HandleList())
	r.Get("/filter", h.HandleFilter())
	r.Get("/{id}", h.HandleGet())
	r.Put("/{id}", h.HandleUpdate())
	r.Delete("/{id}", h.HandleDelete())
}

// HandleCreate godoc
// @Summary Create user
// @Description Registers a new account with the USER role.
// @Tags User
// @Accept json
// @Param user body users.CreateUserRequest true "Account details"
// @Success 201 "Created; the Location header points at the new user"
// @Failure 400 {object} apperror.ErrorResponse "Invalid fields in the request body"
// @Failure 409 {object} apperror.ErrorResponse "Email already registered"
// @Router /users [post]
func (h *UserHandlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := validation.DecodeAndValidate(r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		user, err := h.service.Create(r.Context(), req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("/users/%d", user.ID))
		w.WriteHeader(http.StatusCreated)
	}
}

// HandleList godoc
// @Summary Get all users
// @Description Lists every user, one page at a time. Administrators only.
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param page query int false "Zero-based page index"
// @Param size query int false "Page size"
// @Param sort query string false "Sort as field[,asc|desc]; fields: id, email, createdAt"
// @Success 200 {object} pagination.Page[users.UserResponse]
// @Failure 401 "Missing or invalid token"
// @Failure 403 {object} apperror.ErrorResponse "Caller is not an administrator"
// @Router /users [get]
func (h *UserHandlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pagination.FromRequest(r, SortableColumns, "id")
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		result, err := h.service.FindAll(r.Context(), page)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, result)
	}
}

// HandleFilter godoc
// @Summary Get users by filter
// @Description Lists users whose email contains `email` and who hold `role`. Administrators only.
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param email query string false "Case-insensitive email fragment"
// @Param role query string false "Role name" Enums(USER, ADMINISTRATOR)
// @Success 200 {array} users.UserResponse
// @Failure 403 {object} apperror.ErrorResponse "Caller is not an administrator"
// @Router /users/filter [get]
func (h *UserHandlers) HandleFilter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := UserFilter{Email: q.Get("email"), Role: auth.RoleName(q.Get("role"))}
		if filter.Role != "" && !filter.Role.Valid() {
			apperror.WriteError(w, r, apperror.NewValidationError(
				map[string]string{"role": "must be one of [USER ADMINISTRATOR]"}, nil))
			return
		}

		result, err := h.service.FindByFilter(r.Context(), filter)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, result)
	}
}

// HandleGet godoc
// @Summary Get user by ID
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} users.UserResponse
// @Failure 403 {object} apperror.ErrorResponse "Caller is not an administrator"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *UserHandlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validation.PathID(r, "id")
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		user, err := h.service.FindByID(r.Context(), id)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleUpdate godoc
// @Summary Update user
// @Description Replaces the caller's own account. Other accounts are off limits.
// @Tags User
// @Accept json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param user body users.UpdateUserRequest true "New account state"
// @Success 204
// @Failure 400 {object} apperror.ErrorResponse "Invalid fields in the request body"
// @Failure 403 {object} apperror.ErrorResponse "Not the caller's account"
// @Failure 404 {object} apperror.ErrorResponse "User or role not found"
// @Router /users/{id} [put]
func (h *UserHandlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validation.PathID(r, "id")
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		var req UpdateUserRequest
		if err := validation.DecodeAndValidate(r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		if err := h.service.Update(r.Context(), id, req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleDelete godoc
// @Summary Delete user
// @Description Deletes the caller's own account together with its tasks.
// @Tags User
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} apperror.ErrorResponse "Not the caller's account"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (h *UserHandlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validation.PathID(r, "id")
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		if err := h.service.Delete(r.Context(), id); err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
