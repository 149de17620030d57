// Package tasks, as part of the task management module.
// This file, `dto.go`, defines the request and response bodies of the `/tasks` endpoints.
package tasks

// TaskRequest is the body of `POST /tasks` and `PUT /tasks/{id}`.
// @Description Task content and status
type TaskRequest struct {
	// example: Buy milk
	Content string `json:"content" validate:"required"`
	// example: false
	Completed *bool `json:"completed" validate:"required"`
}

// CompletedRequest is the body of `PATCH /tasks/{id}`.
// @Description Task completion status
type CompletedRequest struct {
	// example: true
	Completed *bool `json:"completed" validate:"required"`
}

// TaskResponse is the API view of a task. The owner is implied by the caller.
// @Description Task
type TaskResponse struct {
	// example: 1
	ID int64 `json:"id"`
	// example: Buy milk
	Content string `json:"content"`
	// example: false
	Completed bool `json:"completed"`
}

// NewTaskResponse maps a stored task to its API view.
func NewTaskResponse(t Task) TaskResponse {
	return TaskResponse{ID: t.ID, Content: t.Content, Completed: t.Completed}
}
