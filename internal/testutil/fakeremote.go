// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/models"
)

// FakeRemote is an in-memory stand-in for the task service, implementing the
// same methods as *client.Client. It serves a single user.
type FakeRemote struct {
	mu       sync.Mutex
	tasks    []models.Task
	user     *models.User
	password string
	nextID   int
	calls    map[string]int

	// Error injection for testing
	MeErr      error
	LoginErr   error
	LogoutErr  error
	ListErr    error
	CreateErr  error
	UpdateErr  error
	ToggleErr  error
	DeleteErr  error
	ReorderErr error
}

func NewFakeRemote() *FakeRemote {
	return &FakeRemote{calls: make(map[string]int)}
}

// SignIn makes user the current session user with the given password.
func (f *FakeRemote) SignIn(user models.User, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = &user
	f.password = password
}

// Seed replaces the server-side tasks.
func (f *FakeRemote) Seed(tasks ...models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = slices.Clone(tasks)
}

// ServerTasks returns the server-side tasks sorted as the real service sorts them.
func (f *FakeRemote) ServerTasks() []models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.tasks)
	slices.SortStableFunc(out, func(a, b models.Task) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Calls reports how many times method was invoked.
func (f *FakeRemote) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeRemote) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

func notFound() error {
	return &client.APIError{Kind: client.KindNotFound, Status: 404, Message: "Task not found"}
}

func unauthenticated() error {
	return &client.APIError{Kind: client.KindUnauthenticated, Status: 401, Message: "Not authorized"}
}

func (f *FakeRemote) index(id string) int {
	return slices.IndexFunc(f.tasks, func(t models.Task) bool { return t.Id == id })
}

func (f *FakeRemote) Me(ctx context.Context) (models.User, error) {
	f.record("Me")
	if f.MeErr != nil {
		return models.User{}, f.MeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return models.User{}, unauthenticated()
	}
	return *f.user, nil
}

func (f *FakeRemote) Register(ctx context.Context, in models.RegisterInput) (models.User, error) {
	f.record("Register")
	user := models.User{Id: "u-" + strings.ToLower(in.Email), Name: in.Name, Email: in.Email}
	f.SignIn(user, in.Password)
	return user, nil
}

func (f *FakeRemote) Login(ctx context.Context, in models.LoginInput) (models.User, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return models.User{}, f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil || f.user.Email != in.Email || f.password != in.Password {
		return models.User{}, &client.APIError{Kind: client.KindUnauthenticated, Status: 401, Message: "Invalid email or password"}
	}
	return *f.user, nil
}

func (f *FakeRemote) Logout(ctx context.Context) error {
	f.record("Logout")
	if f.LogoutErr != nil {
		return f.LogoutErr
	}
	return nil
}

func (f *FakeRemote) ListTasks(ctx context.Context) ([]models.Task, error) {
	f.record("ListTasks")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.ServerTasks(), nil
}

func (f *FakeRemote) CreateTask(ctx context.Context, in models.CreateTaskInput) (models.Task, error) {
	f.record("CreateTask")
	if f.CreateErr != nil {
		return models.Task{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	order := 0
	for _, t := range f.tasks {
		if t.Order >= order {
			order = t.Order + 1
		}
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	f.nextID++
	task := models.Task{
		Id:          fmt.Sprintf("t%d", f.nextID),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Priority:    priority,
		Order:       order,
		CreatedAt:   time.Now().UTC(),
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate.Ptr()
	}
	if f.user != nil {
		task.User = f.user.Id
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *FakeRemote) UpdateTask(ctx context.Context, id string, in models.UpdateTaskInput) (models.Task, error) {
	f.record("UpdateTask")
	if f.UpdateErr != nil {
		return models.Task{}, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return models.Task{}, notFound()
	}
	t := f.tasks[i]
	if in.Title.Set && in.Title.Value != "" {
		t.Title = in.Title.Value
	}
	if in.Description.Set {
		t.Description = in.Description.Value
	}
	if in.Priority.Set && in.Priority.Value != "" {
		t.Priority = in.Priority.Value
	}
	if in.DueDate.Set {
		t.DueDate = in.DueDate.Value.Ptr()
	}
	if in.Completed.Set && !in.Completed.Null {
		t.Completed = in.Completed.Value
	}
	f.tasks[i] = t
	return t, nil
}

func (f *FakeRemote) ToggleTask(ctx context.Context, id string, completed *bool) (models.Task, error) {
	f.record("ToggleTask")
	if f.ToggleErr != nil {
		return models.Task{}, f.ToggleErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return models.Task{}, notFound()
	}
	if completed != nil {
		f.tasks[i].Completed = *completed
	} else {
		f.tasks[i].Completed = !f.tasks[i].Completed
	}
	return f.tasks[i], nil
}

func (f *FakeRemote) DeleteTask(ctx context.Context, id string) error {
	f.record("DeleteTask")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return notFound()
	}
	f.tasks = slices.Delete(f.tasks, i, i+1)
	return nil
}

func (f *FakeRemote) ReorderTasks(ctx context.Context, updates []models.OrderUpdate) error {
	f.record("ReorderTasks")
	if f.ReorderErr != nil {
		return f.ReorderErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range updates {
		if i := f.index(u.Id); i >= 0 {
			f.tasks[i].Order = u.Order
		}
	}
	return nil
}
