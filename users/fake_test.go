package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/auth"
	"github.com/user/todoapi-go/pagination"
)

// memRepository is an in-memory Repository with the same error contract as the
// PostgreSQL one.
type memRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]auth.User
	writes int
}

func newMemRepository() *memRepository {
	return &memRepository{users: map[int64]auth.User{}}
}

func (m *memRepository) Create(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.NewConflictError(apperror.CodeEmailAlreadyExists, nil)
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[user.ID] = *user
	m.writes++
	return nil
}

func (m *memRepository) FindByID(_ context.Context, id int64) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError(apperror.CodeUserNotFound, nil)
	}
	return &u, nil
}

func (m *memRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFoundError(apperror.CodeUserNotFound, nil)
}

func (m *memRepository) sorted() []auth.User {
	out := make([]auth.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memRepository) FindAll(_ context.Context, page pagination.PageRequest) ([]auth.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted()
	start := min(page.Offset(), len(all))
	end := min(start+page.Size, len(all))
	return all[start:end], int64(len(all)), nil
}

func (m *memRepository) FindByFilter(_ context.Context, filter UserFilter) ([]auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []auth.User
	for _, u := range m.sorted() {
		if filter.Email != "" && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(filter.Email)) {
			continue
		}
		if filter.Role != "" && !auth.NewPrincipal(&u).HasRole(filter.Role) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *memRepository) Update(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NewNotFoundError(apperror.CodeUserNotFound, nil)
	}
	m.users[user.ID] = *user
	m.writes++
	return nil
}

func (m *memRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return apperror.NewNotFoundError(apperror.CodeUserNotFound, nil)
	}
	delete(m.users, id)
	m.writes++
	return nil
}

type memRoles struct{}

func (memRoles) FindByName(_ context.Context, name auth.RoleName) (*auth.Role, error) {
	switch name {
	case auth.RoleUser:
		return &auth.Role{ID: 1, Name: auth.RoleUser}, nil
	case auth.RoleAdministrator:
		return &auth.Role{ID: 2, Name: auth.RoleAdministrator}, nil
	}
	return nil, apperror.NewNotFoundError(apperror.CodeRoleNotFound, nil)
}

func newTestService() (*UserService, *memRepository) {
	repo := newMemRepository()
	return NewUserService(repo, NewRoleService(memRoles{})), repo
}

func asPrincipal(ctx context.Context, u *auth.User) context.Context {
	return auth.NewContextWithPrincipal(ctx, auth.NewPrincipal(u))
}
