// Package tasks, as part of the task management module.
// This file, `service.go`, contains the owner-scoped task operations.
package tasks

import (
	"context"

	"github.com/user/todoapi-go/auth"
	"github.com/user/todoapi-go/pagination"
)

// TaskService holds the task operations of the calling user.
// The caller is always taken from the request context, never from input.
type TaskService struct {
	repo Repository
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo Repository) *TaskService {
	return &TaskService{repo: repo}
}

// Create stores a new task owned by the caller.
func (s *TaskService) Create(ctx context.Context, req TaskRequest) (*Task, error) {
	principal, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	task := &Task{Content: req.Content, Completed: *req.Completed, UserID: principal.ID}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// FindAll returns one page of the caller's tasks.
func (s *TaskService) FindAll(ctx context.Context, page pagination.PageRequest) (pagination.Page[TaskResponse], error) {
	principal, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return pagination.Page[TaskResponse]{}, err
	}
	tasks, total, err := s.repo.FindAllByUser(ctx, principal.ID, page)
	if err != nil {
		return pagination.Page[TaskResponse]{}, err
	}
	return pagination.Map(pagination.NewPage(tasks, page, total), NewTaskResponse), nil
}

// FindByID returns one of the caller's tasks.
func (s *TaskService) FindByID(ctx context.Context, id int64) (*TaskResponse, error) {
	task, err := s.findOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := NewTaskResponse(*task)
	return &resp, nil
}

// FindByFilter returns the caller's tasks matching filter.
func (s *TaskService) FindByFilter(ctx context.Context, filter Filter) ([]TaskResponse, error) {
	principal, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.FindByFilters(ctx, principal.ID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out, nil
}

// Update replaces content and status of one of the caller's tasks.
func (s *TaskService) Update(ctx context.Context, id int64, req TaskRequest) error {
	task, err := s.findOwned(ctx, id)
	if err != nil {
		return err
	}
	task.Content = req.Content
	task.Completed = *req.Completed
	return s.repo.Update(ctx, task)
}

// PatchCompleted changes only the completed status.
func (s *TaskService) PatchCompleted(ctx context.Context, id int64, req CompletedRequest) error {
	task, err := s.findOwned(ctx, id)
	if err != nil {
		return err
	}
	task.Completed = *req.Completed
	return s.repo.Update(ctx, task)
}

// Delete removes one of the caller's tasks.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	task, err := s.findOwned(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, task.ID, task.UserID)
}

// findOwned is the owner-scoped lookup every single-task operation goes through.
func (s *TaskService) findOwned(ctx context.Context, id int64) (*Task, error) {
	principal, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByIDAndUser(ctx, id, principal.ID)
}
