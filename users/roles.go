// Package users, as part of the user management module.
// This file, `roles.go`, looks up the fixed roles seeded by the migrations.
package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/auth"
	"github.com/user/todoapi-go/db"
)

// RoleRepository reads the `roles` table.
type RoleRepository interface {
	// FindByName returns a NotFound error with ROLE_NOT_FOUND when the role is absent.
	FindByName(ctx context.Context, name auth.RoleName) (*auth.Role, error)
}

type pgRoleRepository struct {
	db db.DBTX
}

// NewRoleRepository creates a RoleRepository backed by PostgreSQL.
func NewRoleRepository(conn db.DBTX) RoleRepository {
	return &pgRoleRepository{db: conn}
}

func (r *pgRoleRepository) FindByName(ctx context.Context, name auth.RoleName) (*auth.Role, error) {
	var role auth.Role
	var stored string
	err := r.db.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, string(name)).
		Scan(&role.ID, &stored)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(apperror.CodeRoleNotFound, nil)
		}
		return nil, apperror.NewDatabaseError("failed to get role", err)
	}
	role.Name = auth.RoleName(stored)
	return &role, nil
}

// RoleService resolves role names to stored roles.
type RoleService struct {
	repo RoleRepository
}

// NewRoleService creates a new RoleService.
func NewRoleService(repo RoleRepository) *RoleService {
	return &RoleService{repo: repo}
}

// FindByName returns the stored role for name.
func (s *RoleService) FindByName(ctx context.Context, name auth.RoleName) (*auth.Role, error) {
	if !name.Valid() {
		return nil, apperror.NewNotFoundError(apperror.CodeRoleNotFound, nil)
	}
	return s.repo.FindByName(ctx, name)
}

// FindByNames resolves every name, failing on the first unknown one.
// Duplicate names collapse to a single role.
func (s *RoleService) FindByNames(ctx context.Context, names []auth.RoleName) ([]auth.Role, error) {
	roles := make([]auth.Role, 0, len(names))
	seen := make(map[auth.RoleName]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		role, err := s.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}
