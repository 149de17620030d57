//go:build integration

package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/auth"
	"github.com/user/todoapi-go/db/dbtest"
	"github.com/user/todoapi-go/pagination"
)

func TestPostgresUserRepository(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	repo := NewRepository(pool)
	roles := NewRoleService(NewRoleRepository(pool))

	userRole, err := roles.FindByName(ctx, auth.RoleUser)
	require.NoError(t, err)
	adminRole, err := roles.FindByName(ctx, auth.RoleAdministrator)
	require.NoError(t, err)

	alice := &auth.User{Email: "alice@example.com", PasswordHash: "h1", Roles: []auth.Role{*userRole}}
	require.NoError(t, repo.Create(ctx, alice))
	assert.NotZero(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	bob := &auth.User{Email: "bob@example.com", PasswordHash: "h2", Roles: []auth.Role{*userRole, *adminRole}}
	require.NoError(t, repo.Create(ctx, bob))

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := repo.Create(ctx, &auth.User{Email: "alice@example.com", PasswordHash: "x"})
		assert.True(t, apperror.HasCode(err, apperror.CodeEmailAlreadyExists))
	})

	t.Run("find by email loads roles", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, found.ID)
		assert.Equal(t, "h2", found.PasswordHash)
		assert.Equal(t, []auth.RoleName{auth.RoleUser, auth.RoleAdministrator}, found.RoleNames())

		_, err = repo.FindByEmail(ctx, "nobody@example.com")
		assert.True(t, apperror.HasCode(err, apperror.CodeUserNotFound))
	})

	t.Run("find all pages and sorts", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, pagination.PageRequest{Page: 0, Size: 1, Column: "email", Desc: true})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, users, 1)
		assert.Equal(t, "bob@example.com", users[0].Email)
	})

	t.Run("ties on the sort column page by id", func(t *testing.T) {
		_, err := pool.Exec(ctx, `UPDATE users SET created_at = '2024-03-01T12:00:00Z'`)
		require.NoError(t, err)

		var seen []int64
		for page := 0; page < 2; page++ {
			users, _, err := repo.FindAll(ctx, pagination.PageRequest{Page: page, Size: 1, Column: "created_at", Desc: true})
			require.NoError(t, err)
			require.Len(t, users, 1)
			seen = append(seen, users[0].ID)
		}
		assert.Equal(t, []int64{alice.ID, bob.ID}, seen)
	})

	t.Run("filter by email fragment and role", func(t *testing.T) {
		users, err := repo.FindByFilter(ctx, UserFilter{Email: "ALI"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, alice.ID, users[0].ID)

		users, err = repo.FindByFilter(ctx, UserFilter{Role: auth.RoleAdministrator})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, bob.ID, users[0].ID)

		users, err = repo.FindByFilter(ctx, UserFilter{})
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("update replaces roles", func(t *testing.T) {
		alice.Email = "alice2@example.com"
		alice.Roles = []auth.Role{*adminRole}
		require.NoError(t, repo.Update(ctx, alice))

		found, err := repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice2@example.com", found.Email)
		assert.Equal(t, []auth.RoleName{auth.RoleAdministrator}, found.RoleNames())

		err = repo.Update(ctx, &auth.User{ID: alice.ID, Email: "bob@example.com", PasswordHash: "x"})
		assert.True(t, apperror.IsConflictError(err))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, alice.ID))
		_, err := repo.FindByID(ctx, alice.ID)
		assert.True(t, apperror.IsNotFound(err))
		assert.True(t, apperror.IsNotFound(repo.Delete(ctx, alice.ID)))
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := NewRoleRepository(pool).FindByName(ctx, "GUEST")
		assert.True(t, apperror.HasCode(err, apperror.CodeRoleNotFound))
	})
}
