// Package tasks, as part of the task management module.
// This file, `repository.go`, is the PostgreSQL persistence for tasks. Every statement
// carries the owner's id in its WHERE clause.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/db"
	"github.com/user/todoapi-go/pagination"
)

// SortableColumns are the fields `GET /tasks` can be sorted by.
var SortableColumns = pagination.Sortable{
	"id":        "id",
	"content":   "content",
	"completed": "completed",
}

// Repository persists tasks. Every lookup takes the owner's id; a task that exists
// under another owner yields a NotFound error with TASK_NOT_FOUND.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	FindByIDAndUser(ctx context.Context, id, userID int64) (*Task, error)
	FindAllByUser(ctx context.Context, userID int64, page pagination.PageRequest) ([]Task, int64, error)
	FindByFilters(ctx context.Context, userID int64, filter Filter) ([]Task, error)
	// Update writes content and completed of the task matching both ID and UserID.
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id, userID int64) error
}

type pgRepository struct {
	db db.DBTX
}

// NewRepository creates a Repository backed by PostgreSQL.
func NewRepository(conn db.DBTX) Repository {
	return &pgRepository{db: conn}
}

func (r *pgRepository) Create(ctx context.Context, task *Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO task (content, completed, user_id) VALUES ($1, $2, $3) RETURNING id`,
		task.Content, task.Completed, task.UserID,
	).Scan(&task.ID)
	if err != nil {
		return apperror.NewDatabaseError("failed to create task", err)
	}
	return nil
}

func (r *pgRepository) FindByIDAndUser(ctx context.Context, id, userID int64) (*Task, error) {
	var t Task
	err := r.db.QueryRow(ctx,
		`SELECT id, content, completed, user_id FROM task WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&t.ID, &t.Content, &t.Completed, &t.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(apperror.CodeTaskNotFound, nil)
		}
		return nil, apperror.NewDatabaseError("failed to get task", err)
	}
	return &t, nil
}

func (r *pgRepository) FindAllByUser(ctx context.Context, userID int64, page pagination.PageRequest) ([]Task, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM task WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count tasks", err)
	}

	// Secondary order on id keeps pages stable when the sort column has ties.
	query := fmt.Sprintf(`
		SELECT id, content, completed, user_id FROM task
		WHERE user_id = $1
		ORDER BY %s, id
		LIMIT $2 OFFSET $3`, page.OrderBy())
	tasks, err := r.query(ctx, query, userID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *pgRepository) FindByFilters(ctx context.Context, userID int64, filter Filter) ([]Task, error) {
	return r.query(ctx, `
		SELECT id, content, completed, user_id FROM task
		WHERE user_id = $1
		  AND ($2::text = '' OR strpos(lower(content), lower($2::text)) > 0)
		  AND ($3::boolean IS NULL OR completed = $3::boolean)
		ORDER BY id`,
		userID, filter.Content, filter.Completed)
}

func (r *pgRepository) Update(ctx context.Context, task *Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE task SET content = $1, completed = $2 WHERE id = $3 AND user_id = $4`,
		task.Content, task.Completed, task.ID, task.UserID,
	)
	if err != nil {
		return apperror.NewDatabaseError("failed to update task", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(apperror.CodeTaskNotFound, nil)
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id, userID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM task WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(apperror.CodeTaskNotFound, nil)
	}
	return nil
}

func (r *pgRepository) query(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query tasks", err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Task, error) {
		var t Task
		err := row.Scan(&t.ID, &t.Content, &t.Completed, &t.UserID)
		return t, err
	})
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to scan tasks", err)
	}
	return tasks, nil
}
