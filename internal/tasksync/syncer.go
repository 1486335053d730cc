// Package tasksync keeps a taskstore.Store in step with the remote task
// service.
//
// Every mutation except Reorder is pessimistic: the store changes only after
// the server confirms. Reorder is optimistic and is never rolled back, so a
// failed reorder leaves the local order ahead of the server until the next
// FetchAll. Concurrent edits to one task resolve as last-response-wins.
package tasksync

import (
	"context"

	"go.uber.org/zap"

	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/taskstore"
)

// TaskRemote is the subset of *client.Client the Syncer needs.
type TaskRemote interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, in models.CreateTaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, id string, in models.UpdateTaskInput) (models.Task, error)
	ToggleTask(ctx context.Context, id string, completed *bool) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ReorderTasks(ctx context.Context, updates []models.OrderUpdate) error
}

type Syncer struct {
	remote TaskRemote
	store  *taskstore.Store
	logger *zap.Logger
}

func NewSyncer(remote TaskRemote, store *taskstore.Store, logger *zap.Logger) *Syncer {
	return &Syncer{
		remote: remote,
		store:  store,
		logger: logger,
	}
}

func (s *Syncer) Store() *taskstore.Store {
	return s.store
}

// failure normalises err to an *client.APIError, filling in fallback when the
// server gave no message.
func failure(err error, fallback string) *client.APIError {
	apiErr := client.AsAPIError(err)
	if apiErr.Message != "" {
		return apiErr
	}
	f := *apiErr
	f.Message = fallback
	return &f
}

// FetchAll replaces the store's tasks with the server's. On failure the error
// message is recorded in the store as well as returned.
func (s *Syncer) FetchAll(ctx context.Context) error {
	s.store.Dispatch(taskstore.SetLoading{Loading: true})

	tasks, err := s.remote.ListTasks(ctx)
	if err != nil {
		f := failure(err, "Failed to fetch tasks")
		s.store.Dispatch(taskstore.SetError{Message: f.Message})
		s.logger.Warn("fetch tasks failed", zap.String("kind", string(f.Kind)), zap.Error(err))
		return f
	}

	s.store.Dispatch(taskstore.ReplaceAll{Tasks: tasks})
	return nil
}

// Create rejects titles that are too short without contacting the server.
func (s *Syncer) Create(ctx context.Context, in models.CreateTaskInput) (models.Task, error) {
	if !models.ValidTitle(in.Title) {
		return models.Task{}, &client.APIError{
			Kind:    client.KindValidation,
			Message: "Title must be at least 3 characters",
		}
	}

	task, err := s.remote.CreateTask(ctx, in)
	if err != nil {
		return models.Task{}, failure(err, "Failed to add task")
	}

	s.store.Dispatch(taskstore.Add{Task: task})
	return task, nil
}

func (s *Syncer) Edit(ctx context.Context, id string, in models.UpdateTaskInput) (models.Task, error) {
	task, err := s.remote.UpdateTask(ctx, id, in)
	if err != nil {
		return models.Task{}, failure(err, "Failed to update task")
	}

	s.store.Dispatch(taskstore.Update{Task: task})
	return task, nil
}

// ToggleCompletion sets completion to *desired, or flips it server-side when
// desired is nil.
func (s *Syncer) ToggleCompletion(ctx context.Context, id string, desired *bool) (models.Task, error) {
	task, err := s.remote.ToggleTask(ctx, id, desired)
	if err != nil {
		return models.Task{}, failure(err, "Failed to toggle task status")
	}

	s.store.Dispatch(taskstore.Update{Task: task})
	return task, nil
}

func (s *Syncer) Remove(ctx context.Context, id string) error {
	if err := s.remote.DeleteTask(ctx, id); err != nil {
		return failure(err, "Failed to delete task")
	}

	s.store.Dispatch(taskstore.Delete{ID: id})
	return nil
}

// Reorder applies the new order to the store before contacting the server.
// Each task's Order becomes its index in ordered. A server failure is returned
// but the store keeps the new order.
func (s *Syncer) Reorder(ctx context.Context, ordered []models.Task) error {
	tasks := make([]models.Task, len(ordered))
	updates := make([]models.OrderUpdate, len(ordered))
	for i, t := range ordered {
		t.Order = i
		tasks[i] = t
		updates[i] = models.OrderUpdate{Id: t.Id, Order: i}
	}

	s.store.Dispatch(taskstore.Reorder{Tasks: tasks})

	if err := s.remote.ReorderTasks(ctx, updates); err != nil {
		f := failure(err, "Failed to save task order")
		s.logger.Warn("reorder not persisted; local order kept", zap.Error(err))
		return f
	}
	return nil
}

func (s *Syncer) SetFilter(f taskstore.Filter) taskstore.State {
	return s.store.Dispatch(taskstore.SetFilter{Filter: f})
}

// Forget drops a task locally. Callers use it to reconcile a KindNotFound
// failure for a task that was deleted elsewhere.
func (s *Syncer) Forget(id string) {
	s.store.Dispatch(taskstore.Delete{ID: id})
}
