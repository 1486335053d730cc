package repository

import (
	"context"
	"errors"

	"github.com/TWRT/taskboard/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// TaskRepository stores tasks. Every lookup is scoped to an owner, so a task
// owned by someone else is indistinguishable from a missing one.
type TaskRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Task, error)
	// MaxOrder returns false when the user has no tasks.
	MaxOrder(ctx context.Context, userID string) (int, bool, error)
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, userID, id string) (models.Task, error)
	Update(ctx context.Context, task models.Task) error
	Delete(ctx context.Context, userID, id string) error
	// UpdateOrder ignores ids that do not exist or are not owned by userID.
	UpdateOrder(ctx context.Context, userID, id string, order int) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

var (
	_ TaskRepository = (*SQLiteTaskRepository)(nil)
	_ TaskRepository = (*MongoTaskRepository)(nil)
	_ UserRepository = (*SQLiteUserRepository)(nil)
	_ UserRepository = (*MongoUserRepository)(nil)
)
