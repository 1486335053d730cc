package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/repository"
)

type testServer struct {
	t   *testing.T
	url string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := repository.InitDB(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	router := SetupRouter(
		repository.NewTaskRepository(db),
		repository.NewUserRepository(db),
		RouterConfig{JWTSecret: "test-secret"},
		zap.NewNop(),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{t: t, url: srv.URL}
}

// browser returns an HTTP client with its own cookie jar, standing in for one
// logged-in browser.
func (s *testServer) browser() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(s.t, err)
	return &http.Client{Jar: jar}
}

func (s *testServer) do(c *http.Client, method, path string, body any, out any) int {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.url+path, &buf)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) register(email string) *http.Client {
	s.t.Helper()
	c := s.browser()
	var user models.User
	status := s.do(c, http.MethodPost, "/api/auth/register", models.RegisterInput{
		Name: "Tester", Email: email, Password: "password1",
	}, &user)
	require.Equal(s.t, http.StatusCreated, status)
	return c
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	c := s.browser()

	var msg models.MessageResponse
	assert.Equal(t, http.StatusUnauthorized, s.do(c, http.MethodGet, "/api/auth/me", nil, &msg))
	assert.Equal(t, "Not authorized", msg.Message)

	var raw map[string]any
	status := s.do(c, http.MethodPost, "/api/auth/register", models.RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "password1",
	}, &raw)
	require.Equal(t, http.StatusCreated, status)
	assert.NotContains(t, raw, "PasswordHash")
	assert.NotContains(t, raw, "password")
	assert.Equal(t, "ada@example.com", raw["email"])

	var me models.User
	require.Equal(t, http.StatusOK, s.do(c, http.MethodGet, "/api/auth/me", nil, &me))
	assert.Equal(t, "Ada", me.Name)

	assert.Equal(t, http.StatusBadRequest, s.do(s.browser(), http.MethodPost, "/api/auth/register", models.RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "password1",
	}, &msg))
	assert.Equal(t, "User already exists", msg.Message)

	require.Equal(t, http.StatusOK, s.do(c, http.MethodPost, "/api/auth/logout", nil, &msg))
	assert.Equal(t, http.StatusUnauthorized, s.do(c, http.MethodGet, "/api/auth/me", nil, nil))

	assert.Equal(t, http.StatusUnauthorized, s.do(c, http.MethodPost, "/api/auth/login", models.LoginInput{
		Email: "ada@example.com", Password: "nope",
	}, &msg))
	assert.Equal(t, "Invalid email or password", msg.Message)

	require.Equal(t, http.StatusOK, s.do(c, http.MethodPost, "/api/auth/login", models.LoginInput{
		Email: "ada@example.com", Password: "password1",
	}, &me))
	require.Equal(t, http.StatusOK, s.do(c, http.MethodGet, "/api/auth/me", nil, &me))
}

func TestSessionCookieAttributes(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(models.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1"})
	resp, err := http.Post(s.url+"/api/auth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "token", c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 30*24*60*60, c.MaxAge)
	assert.False(t, c.Secure)
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	c := s.register("ada@example.com")

	var msg models.MessageResponse
	assert.Equal(t, http.StatusBadRequest, s.do(c, http.MethodPost, "/api/tasks", models.CreateTaskInput{Title: "ab"}, &msg))
	assert.Contains(t, msg.Message, "at least 3")

	var a, b models.Task
	require.Equal(t, http.StatusCreated, s.do(c, http.MethodPost, "/api/tasks", models.CreateTaskInput{Title: "Alpha"}, &a))
	require.Equal(t, http.StatusCreated, s.do(c, http.MethodPost, "/api/tasks", map[string]any{
		"title": "Bravo", "priority": "high", "dueDate": "2026-12-24",
	}, &b))
	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, b.Order)
	assert.Equal(t, models.PriorityMedium, a.Priority)
	require.NotNil(t, b.DueDate)
	assert.Equal(t, "2026-12-24", b.DueDate.Format("2006-01-02"))

	var toggled models.Task
	require.Equal(t, http.StatusOK, s.do(c, http.MethodPatch, "/api/tasks/"+a.Id+"/toggle", nil, &toggled))
	assert.True(t, toggled.Completed)
	require.Equal(t, http.StatusOK, s.do(c, http.MethodPatch, "/api/tasks/"+a.Id+"/toggle", map[string]any{"completed": true}, &toggled))
	assert.True(t, toggled.Completed)

	var updated models.Task
	require.Equal(t, http.StatusOK, s.do(c, http.MethodPut, "/api/tasks/"+b.Id, map[string]any{
		"description": "wrap gifts", "dueDate": nil,
	}, &updated))
	assert.Equal(t, "Bravo", updated.Title)
	assert.Equal(t, "wrap gifts", updated.Description)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Nil(t, updated.DueDate)

	require.Equal(t, http.StatusOK, s.do(c, http.MethodPost, "/api/tasks/reorder", models.ReorderInput{
		Tasks: []models.OrderUpdate{{Id: b.Id, Order: 0}, {Id: a.Id, Order: 1}},
	}, &msg))
	assert.Equal(t, "Tasks reordered successfully", msg.Message)

	var tasks []models.Task
	require.Equal(t, http.StatusOK, s.do(c, http.MethodGet, "/api/tasks", nil, &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, b.Id, tasks[0].Id)
	assert.Equal(t, a.Id, tasks[1].Id)

	require.Equal(t, http.StatusOK, s.do(c, http.MethodDelete, "/api/tasks/"+a.Id, nil, &msg))
	assert.Equal(t, "Task deleted successfully", msg.Message)
	assert.Equal(t, http.StatusNotFound, s.do(c, http.MethodDelete, "/api/tasks/"+a.Id, nil, &msg))
	assert.Equal(t, "Task not found", msg.Message)
}

func TestTasksAreIsolatedPerUser(t *testing.T) {
	s := newTestServer(t)
	ada := s.register("ada@example.com")
	bob := s.register("bob@example.com")

	var task models.Task
	require.Equal(t, http.StatusCreated, s.do(ada, http.MethodPost, "/api/tasks", models.CreateTaskInput{Title: "Ada only"}, &task))

	var tasks []models.Task
	require.Equal(t, http.StatusOK, s.do(bob, http.MethodGet, "/api/tasks", nil, &tasks))
	assert.Empty(t, tasks)

	assert.Equal(t, http.StatusNotFound, s.do(bob, http.MethodPut, "/api/tasks/"+task.Id, map[string]any{"title": "stolen"}, nil))
	assert.Equal(t, http.StatusNotFound, s.do(bob, http.MethodPatch, "/api/tasks/"+task.Id+"/toggle", nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(bob, http.MethodDelete, "/api/tasks/"+task.Id, nil, nil))

	assert.Equal(t, http.StatusUnauthorized, s.do(s.browser(), http.MethodGet, "/api/tasks", nil, nil))
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	c := s.register("ada@example.com")

	req, err := http.NewRequest(http.MethodPost, s.url+"/api/tasks", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
