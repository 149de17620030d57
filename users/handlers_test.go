package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/auth"
	"github.com/user/todoapi-go/pagination"
)

// newTestRouter mounts the user routes behind a stand-in for the authenticator that
// attaches whatever principal the test sets.
func newTestRouter(svc *UserService, principal **auth.Principal) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if *principal != nil {
				req = req.WithContext(auth.NewContextWithPrincipal(req.Context(), *principal))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/users", NewUserHandlers(svc).RegisterRoutes)
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperror.ErrorResponse {
	t.Helper()
	var body apperror.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleCreate(t *testing.T) {
	svc, _ := newTestService()
	var principal *auth.Principal
	h := newTestRouter(svc, &principal)

	w := serve(h, http.MethodPost, "/users", `{"email":"a@example.com","password":"s3cret"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/users/1", w.Header().Get("Location"))
	assert.Empty(t, w.Body.String())

	w = serve(h, http.MethodPost, "/users", `{"email":"a@example.com","password":"again"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_ALREADY_EXISTS", decodeError(t, w).Code)

	w = serve(h, http.MethodPost, "/users", `{"email":"nope","password":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "INVALID_FIELDS", body.Code)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")
}

func TestHandleGetAndList(t *testing.T) {
	svc, _ := newTestService()
	admin, err := svc.Create(context.Background(), CreateUserRequest{Email: "root@example.com", Password: "x"})
	require.NoError(t, err)
	principal := auth.NewPrincipal(admin)
	h := newTestRouter(svc, &principal)

	w := serve(h, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var user UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "root@example.com", user.Email)
	assert.NotContains(t, w.Body.String(), "password")

	w = serve(h, http.MethodGet, "/users/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", decodeError(t, w).Code)

	w = serve(h, http.MethodGet, "/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(h, http.MethodGet, "/users?size=10&sort=email,desc", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page pagination.Page[UserResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, 10, page.Size)

	w = serve(h, http.MethodGet, "/users?sort=password", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(h, http.MethodGet, "/users/filter?email=ROOT", "")
	require.Equal(t, http.StatusOK, w.Code)
	var filtered []UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
	assert.Len(t, filtered, 1)

	w = serve(h, http.MethodGet, "/users/filter?role=GOD", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleUpdateAndDeleteOwnership(t *testing.T) {
	svc, repo := newTestService()
	bg := context.Background()
	caller, _ := svc.Create(bg, CreateUserRequest{Email: "caller@example.com", Password: "x"})
	target, _ := svc.Create(bg, CreateUserRequest{Email: "target@example.com", Password: "y"})
	principal := auth.NewPrincipal(caller)
	h := newTestRouter(svc, &principal)

	body := `{"email":"x@example.com","password":"z","roles":["ADMINISTRATOR"]}`
	w := serve(h, http.MethodPut, "/users/2", body)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "USER_NOT_AUTHORIZED", decodeError(t, w).Code)

	w = serve(h, http.MethodDelete, "/users/2", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	_, err := repo.FindByID(bg, target.ID)
	require.NoError(t, err)

	w = serve(h, http.MethodPut, "/users/1", `{"email":"caller@example.com","password":"z","roles":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Fields, "roles")

	w = serve(h, http.MethodPut, "/users/1", `{"email":"caller@example.com","password":"z","roles":["USER"]}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(h, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err = repo.FindByID(bg, caller.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestHandlePasswordOverBcryptLimit(t *testing.T) {
	svc, repo := newTestService()
	caller, err := svc.Create(context.Background(), CreateUserRequest{Email: "caller@example.com", Password: "x"})
	require.NoError(t, err)
	principal := auth.NewPrincipal(caller)
	h := newTestRouter(svc, &principal)
	writes := repo.writes

	tooLong := strings.Repeat("x", 73)
	w := serve(h, http.MethodPost, "/users", `{"email":"b@example.com","password":"`+tooLong+`"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "INVALID_FIELDS", body.Code)
	assert.Equal(t, "must be at most 72 bytes long", body.Fields["password"])

	// 25 three-byte runes: short in characters, over the limit in bytes.
	multibyte := strings.Repeat("€", 25)
	w = serve(h, http.MethodPut, "/users/1", `{"email":"caller@example.com","password":"`+multibyte+`","roles":["USER"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Fields, "password")
	assert.Equal(t, writes, repo.writes)

	w = serve(h, http.MethodPost, "/users", `{"email":"c@example.com","password":"`+strings.Repeat("x", 72)+`"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}
