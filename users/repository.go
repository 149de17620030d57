// Package users, as part of the user management module.
// This file, `repository.go`, is the PostgreSQL persistence for users and their role links.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/auth"
	"github.com/user/todoapi-go/db"
	"github.com/user/todoapi-go/pagination"
)

// SortableColumns are the fields `GET /users` can be sorted by.
var SortableColumns = pagination.Sortable{
	"id":        "id",
	"email":     "email",
	"createdAt": "created_at",
}

// Repository persists users. Lookups that find nothing return a NotFound error with
// USER_NOT_FOUND; writes that hit the unique email constraint return a Conflict error.
type Repository interface {
	// Create inserts the user and its role links, filling in ID and CreatedAt.
	Create(ctx context.Context, user *auth.User) error
	FindByID(ctx context.Context, id int64) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	FindAll(ctx context.Context, page pagination.PageRequest) ([]auth.User, int64, error)
	FindByFilter(ctx context.Context, filter UserFilter) ([]auth.User, error)
	// Update rewrites email, password hash and replaces the full role set.
	Update(ctx context.Context, user *auth.User) error
	// Delete removes the user; its tasks and role links go with it.
	Delete(ctx context.Context, id int64) error
}

type pgRepository struct {
	db db.TxBeginner
}

// NewRepository creates a Repository backed by PostgreSQL.
func NewRepository(conn db.TxBeginner) Repository {
	return &pgRepository{db: conn}
}

const userColumns = `u.id, u.email, u.password, u.created_at`

func (r *pgRepository) Create(ctx context.Context, user *auth.User) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (email, password) VALUES ($1, $2) RETURNING id, created_at`,
			user.Email, user.PasswordHash,
		).Scan(&user.ID, &user.CreatedAt)
		if err != nil {
			return mapWriteError("failed to create user", err)
		}
		return insertRoles(ctx, tx, user.ID, user.Roles)
	})
}

func (r *pgRepository) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
}

func (r *pgRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email)
}

func (r *pgRepository) FindAll(ctx context.Context, page pagination.PageRequest) ([]auth.User, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count users", err)
	}

	// OrderBy only ever renders whitelisted columns.
	query := fmt.Sprintf(`SELECT %s FROM users u ORDER BY u.%s, u.id LIMIT $1 OFFSET $2`, userColumns, page.OrderBy())
	users, err := r.findMany(ctx, query, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *pgRepository) FindByFilter(ctx context.Context, filter UserFilter) ([]auth.User, error) {
	query := `
		SELECT DISTINCT ` + userColumns + `
		FROM users u
		LEFT JOIN user_role ur ON ur.user_id = u.id
		LEFT JOIN roles r ON r.id = ur.role_id
		WHERE ($1::text = '' OR strpos(lower(u.email), lower($1::text)) > 0)
		  AND ($2::text = '' OR r.name = $2::text)
		ORDER BY u.id`
	return r.findMany(ctx, query, filter.Email, string(filter.Role))
}

func (r *pgRepository) Update(ctx context.Context, user *auth.User) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE users SET email = $1, password = $2 WHERE id = $3`,
			user.Email, user.PasswordHash, user.ID,
		)
		if err != nil {
			return mapWriteError("failed to update user", err)
		}
		if tag.RowsAffected() == 0 {
			return apperror.NewNotFoundError(apperror.CodeUserNotFound, nil)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_role WHERE user_id = $1`, user.ID); err != nil {
			return apperror.NewDatabaseError("failed to clear user roles", err)
		}
		return insertRoles(ctx, tx, user.ID, user.Roles)
	})
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(apperror.CodeUserNotFound, nil)
	}
	return nil
}

func (r *pgRepository) findOne(ctx context.Context, query string, args ...any) (*auth.User, error) {
	users, err := r.findMany(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperror.NewNotFoundError(apperror.CodeUserNotFound, nil)
	}
	return &users[0], nil
}

// findMany runs a query selecting userColumns and attaches every user's roles.
func (r *pgRepository) findMany(ctx context.Context, query string, args ...any) ([]auth.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query users", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (auth.User, error) {
		var u auth.User
		err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
		return u, err
	})
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to scan users", err)
	}
	if err := loadRoles(ctx, r.db, users); err != nil {
		return nil, err
	}
	return users, nil
}

// loadRoles fills the Roles of each user with a single query.
func loadRoles(ctx context.Context, conn db.DBTX, users []auth.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]int64, len(users))
	index := make(map[int64]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
		index[u.ID] = i
		users[i].Roles = []auth.Role{}
	}

	rows, err := conn.Query(ctx, `
		SELECT ur.user_id, r.id, r.name
		FROM user_role ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = ANY($1)
		ORDER BY r.id`, ids)
	if err != nil {
		return apperror.NewDatabaseError("failed to query user roles", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID int64
		var role auth.Role
		var name string
		if err := rows.Scan(&userID, &role.ID, &name); err != nil {
			return apperror.NewDatabaseError("failed to scan user role", err)
		}
		role.Name = auth.RoleName(name)
		i := index[userID]
		users[i].Roles = append(users[i].Roles, role)
	}
	if err := rows.Err(); err != nil {
		return apperror.NewDatabaseError("failed to read user roles", err)
	}
	return nil
}

func insertRoles(ctx context.Context, tx pgx.Tx, userID int64, roles []auth.Role) error {
	for _, role := range roles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_role (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, role.ID,
		); err != nil {
			return apperror.NewDatabaseError("failed to link user role", err)
		}
	}
	return nil
}

func mapWriteError(message string, err error) error {
	if db.IsUniqueViolation(err) {
		return apperror.NewConflictError(apperror.CodeEmailAlreadyExists, err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewDatabaseError(message, err)
}
