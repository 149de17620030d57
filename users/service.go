// Package users, as part of the user management module.
// This file, `service.go`, contains the business logic for user accounts, including the
// self-service access check applied before an account is changed or removed.
package users

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/auth"
	"github.com/user/todoapi-go/pagination"
)

// UserService provides methods for user account management.
type UserService struct {
	repo  Repository
	roles *RoleService
}

// NewUserService creates a new UserService.
func NewUserService(repo Repository, roles *RoleService) *UserService {
	return &UserService{repo: repo, roles: roles}
}

// Create registers a new account holding the USER role.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*auth.User, error) {
	role, err := s.roles.FindByName(ctx, auth.RoleUser)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &auth.User{
		Email:        req.Email,
		PasswordHash: hash,
		Roles:        []auth.Role{*role},
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if apperror.IsConflictError(err) {
			logrus.WithField("email", req.Email).Info("registration rejected: email already registered")
		}
		return nil, err
	}
	logrus.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// FindByID returns the user with the given id.
func (s *UserService) FindByID(ctx context.Context, id int64) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := NewUserResponse(*user)
	return &resp, nil
}

// FindByEmail returns the stored user, password hash included. It is the user lookup
// the Request Authenticator and the login flow run on.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// FindAll returns one page of all users.
func (s *UserService) FindAll(ctx context.Context, page pagination.PageRequest) (pagination.Page[UserResponse], error) {
	users, total, err := s.repo.FindAll(ctx, page)
	if err != nil {
		return pagination.Page[UserResponse]{}, err
	}
	return pagination.Map(pagination.NewPage(users, page, total), NewUserResponse), nil
}

// FindByFilter returns every user matching the filter.
func (s *UserService) FindByFilter(ctx context.Context, filter UserFilter) ([]UserResponse, error) {
	users, err := s.repo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out, nil
}

// Update replaces the caller's own account. Acting on anyone else's account is
// USER_NOT_AUTHORIZED, and nothing is written.
func (s *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := validateUserAccess(ctx, user); err != nil {
		return err
	}

	roles, err := s.roles.FindByNames(ctx, req.Roles)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperror.NewInternalError("failed to hash password", err)
	}

	updated := &auth.User{
		ID:           user.ID,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    user.CreatedAt,
		Roles:        roles,
	}
	return s.repo.Update(ctx, updated)
}

// Delete removes the caller's own account.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := validateUserAccess(ctx, user); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// validateUserAccess allows only the account's owner, matched by email.
func validateUserAccess(ctx context.Context, user *auth.User) error {
	principal, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return err
	}
	if user.Email != principal.Email {
		logrus.WithFields(logrus.Fields{
			"principal_id": principal.ID,
			"target_id":    user.ID,
		}).Warn("user tried to modify another account")
		return apperror.NewUnauthorizedError(apperror.CodeUserNotAuthorized, nil)
	}
	return nil
}
