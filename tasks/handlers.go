// Package tasks, as part of the task management module.
// This file, `handlers.go`, maps the `/tasks` routes onto the TaskService.
package tasks

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/pagination"
	"github.com/user/todoapi-go/validation"
)

// TaskHandlers provides HTTP handlers for tasks.
type TaskHandlers struct {
	service *TaskService
}

// NewTaskHandlers creates new TaskHandlers.
func NewTaskHandlers(service *TaskService) *TaskHandlers {
	return &TaskHandlers{service: service}
}

// RegisterRoutes mounts the task routes on r.
func (h *TaskHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreate())
	r.Get("/", h.HandleList())
	r.Get("/filter", h.HandleFilter())
	r.Get("/{id}", h.HandleGet())
	r.Put("/{id}", h.HandleUpdate())
	r.Patch("/{id}", h.HandlePatchCompleted())
	r.Delete("/{id}", h.HandleDelete())
}

// HandleCreate godoc
// @Summary Create task
// @Tags Task
// @Accept json
// @Security BearerAuth
// @Param task body tasks.TaskRequest true "New task"
// @Success 201 "Created; the Location header points at the new task"
// @Failure 400 {object} apperror.ErrorResponse "Invalid fields in the request body"
// @Failure 401 "Missing or invalid token"
// @Router /tasks [post]
func (h *TaskHandlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TaskRequest
		if err := validation.DecodeAndValidate(r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		task, err := h.service.Create(r.Context(), req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("/tasks/%d", task.ID))
		w.WriteHeader(http.StatusCreated)
	}
}

// HandleList godoc
// @Summary Get all tasks
// @Description Lists the caller's tasks, one page at a time.
// @Tags Task
// @Produce json
// @Security BearerAuth
// @Param page query int false "Zero-based page index"
// @Param size query int false "Page size"
// @Param sort query string false "Sort as field[,asc|desc]; fields: id, content, completed"
// @Success 200 {object} pagination.Page[tasks.TaskResponse]
// @Failure 400 {object} apperror.ErrorResponse "Invalid paging parameters"
// @Router /tasks [get]
func (h *TaskHandlers) HandleList() http.HandlerFunc {
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
// @Summary Get tasks by filter
// @Tags Task
// @Produce json
// @Security BearerAuth
// @Param content query string false "Case-insensitive content fragment"
// @Param completed query bool false "Completion status"
// @Success 200 {array} tasks.TaskResponse
// @Router /tasks/filter [get]
func (h *TaskHandlers) HandleFilter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		completed, err := validation.QueryBool(r, "completed")
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		filter := Filter{Content: r.URL.Query().Get("content"), Completed: completed}

		result, err := h.service.FindByFilter(r.Context(), filter)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, result)
	}
}

// HandleGet godoc
// @Summary Get task by ID
// @Tags Task
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} tasks.TaskResponse
// @Failure 404 {object} apperror.ErrorResponse "Task not found"
// @Router /tasks/{id} [get]
func (h *TaskHandlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validation.PathID(r, "id")
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		task, err := h.service.FindByID(r.Context(), id)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, task)
	}
}

// HandleUpdate godoc
// @Summary Update task
// @Tags Task
// @Accept json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param task body tasks.TaskRequest true "New task state"
// @Success 204
// @Failure 400 {object} apperror.ErrorResponse "Invalid fields in the request body"
// @Failure 404 {object} apperror.ErrorResponse "Task not found"
// @Router /tasks/{id} [put]
func (h *TaskHandlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validation.PathID(r, "id")
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		var req TaskRequest
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

// HandlePatchCompleted godoc
// @Summary Change task's completed status
// @Tags Task
// @Accept json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param status body tasks.CompletedRequest true "Completion status"
// @Success 204
// @Failure 400 {object} apperror.ErrorResponse "Invalid fields in the request body"
// @Failure 404 {object} apperror.ErrorResponse "Task not found"
// @Router /tasks/{id} [patch]
func (h *TaskHandlers) HandlePatchCompleted() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validation.PathID(r, "id")
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		var req CompletedRequest
		if err := validation.DecodeAndValidate(r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		if err := h.service.PatchCompleted(r.Context(), id, req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleDelete godoc
// @Summary Delete task
// @Tags Task
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 204
// @Failure 404 {object} apperror.ErrorResponse "Task not found"
// @Router /tasks/{id} [delete]
func (h *TaskHandlers) HandleDelete() http.HandlerFunc {
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
