package tasks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/auth"
	"github.com/user/todoapi-go/pagination"
)

// memRepository is an in-memory Repository with owner scoping identical to the
// PostgreSQL one.
type memRepository struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]Task
}

func newMemRepository() *memRepository {
	return &memRepository{tasks: map[int64]Task{}}
}

func (m *memRepository) Create(_ context.Context, task *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	task.ID = m.nextID
	m.tasks[task.ID] = *task
	return nil
}

func (m *memRepository) FindByIDAndUser(_ context.Context, id, userID int64) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, apperror.NewNotFoundError(apperror.CodeTaskNotFound, nil)
	}
	return &t, nil
}

func (m *memRepository) owned(userID int64) []Task {
	var out []Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memRepository) FindAllByUser(_ context.Context, userID int64, page pagination.PageRequest) ([]Task, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.owned(userID)
	if page.Column == "content" {
		sort.SliceStable(all, func(i, j int) bool {
			if page.Desc {
				return all[i].Content > all[j].Content
			}
			return all[i].Content < all[j].Content
		})
	}
	start := min(page.Offset(), len(all))
	end := min(start+page.Size, len(all))
	return all[start:end], int64(len(all)), nil
}

func (m *memRepository) FindByFilters(_ context.Context, userID int64, filter Filter) ([]Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Task
	for _, t := range m.owned(userID) {
		if filter.Content != "" && !strings.Contains(strings.ToLower(t.Content), strings.ToLower(filter.Content)) {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memRepository) Update(_ context.Context, task *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tasks[task.ID]
	if !ok || stored.UserID != task.UserID {
		return apperror.NewNotFoundError(apperror.CodeTaskNotFound, nil)
	}
	m.tasks[task.ID] = *task
	return nil
}

func (m *memRepository) Delete(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tasks[id]
	if !ok || stored.UserID != userID {
		return apperror.NewNotFoundError(apperror.CodeTaskNotFound, nil)
	}
	delete(m.tasks, id)
	return nil
}

func boolPtr(b bool) *bool { return &b }

func as(userID int64) context.Context {
	return auth.NewContextWithPrincipal(context.Background(), &auth.Principal{
		ID:    userID,
		Email: "user@example.com",
		Roles: []auth.RoleName{auth.RoleUser},
	})
}

func TestCreateOwnsTaskByCaller(t *testing.T) {
	repo := newMemRepository()
	svc := NewTaskService(repo)

	task, err := svc.Create(as(7), TaskRequest{Content: "Buy milk", Completed: boolPtr(false)})
	require.NoError(t, err)

	assert.Equal(t, int64(7), task.UserID)
	assert.Equal(t, int64(7), repo.tasks[task.ID].UserID)
}

func TestCreateWithoutPrincipalIsUnauthenticated(t *testing.T) {
	_, err := NewTaskService(newMemRepository()).Create(context.Background(), TaskRequest{Content: "x", Completed: boolPtr(false)})
	assert.True(t, apperror.IsAuthError(err))
}

func TestTasksOfAnotherOwnerAreNotFound(t *testing.T) {
	repo := newMemRepository()
	svc := NewTaskService(repo)
	task, err := svc.Create(as(1), TaskRequest{Content: "secret", Completed: boolPtr(false)})
	require.NoError(t, err)
	intruder := as(2)

	_, err = svc.FindByID(intruder, task.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeTaskNotFound))
	assert.False(t, apperror.IsUnauthorizedError(err))

	err = svc.Update(intruder, task.ID, TaskRequest{Content: "mine now", Completed: boolPtr(true)})
	assert.True(t, apperror.HasCode(err, apperror.CodeTaskNotFound))

	err = svc.PatchCompleted(intruder, task.ID, CompletedRequest{Completed: boolPtr(true)})
	assert.True(t, apperror.HasCode(err, apperror.CodeTaskNotFound))

	err = svc.Delete(intruder, task.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeTaskNotFound))

	stored := repo.tasks[task.ID]
	assert.Equal(t, "secret", stored.Content)
	assert.False(t, stored.Completed)
}

func TestUpdatePatchAndDeleteOwnTask(t *testing.T) {
	repo := newMemRepository()
	svc := NewTaskService(repo)
	ctx := as(1)
	task, err := svc.Create(ctx, TaskRequest{Content: "draft", Completed: boolPtr(false)})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, task.ID, TaskRequest{Content: "final", Completed: boolPtr(false)}))
	require.NoError(t, svc.PatchCompleted(ctx, task.ID, CompletedRequest{Completed: boolPtr(true)}))

	got, err := svc.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskResponse{ID: task.ID, Content: "final", Completed: true}, *got)

	require.NoError(t, svc.Delete(ctx, task.ID))
	_, err = svc.FindByID(ctx, task.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestFindAllOnlyListsOwnTasks(t *testing.T) {
	svc := NewTaskService(newMemRepository())
	for _, content := range []string{"b", "a", "c"} {
		_, err := svc.Create(as(1), TaskRequest{Content: content, Completed: boolPtr(false)})
		require.NoError(t, err)
	}
	_, err := svc.Create(as(2), TaskRequest{Content: "other", Completed: boolPtr(false)})
	require.NoError(t, err)

	page, err := svc.FindAll(as(1), pagination.PageRequest{Page: 0, Size: 2, Column: "content"})
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "a", page.Content[0].Content)
	assert.Equal(t, "b", page.Content[1].Content)
}

func TestFindByFilter(t *testing.T) {
	svc := NewTaskService(newMemRepository())
	ctx := as(1)
	_, _ = svc.Create(ctx, TaskRequest{Content: "Buy MILK", Completed: boolPtr(false)})
	_, _ = svc.Create(ctx, TaskRequest{Content: "milkshake", Completed: boolPtr(true)})
	_, _ = svc.Create(ctx, TaskRequest{Content: "walk dog", Completed: boolPtr(true)})
	_, _ = svc.Create(as(2), TaskRequest{Content: "milk", Completed: boolPtr(true)})

	found, err := svc.FindByFilter(ctx, Filter{Content: "milk"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.FindByFilter(ctx, Filter{Content: "milk", Completed: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "milkshake", found[0].Content)

	found, err = svc.FindByFilter(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, found, 3)
}
