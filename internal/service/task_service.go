package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/repository"
)

const reorderConcurrency = 8

type TaskService struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func NewTaskService(tasks repository.TaskRepository, logger *zap.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		logger: logger,
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title", "Title is required")
	}
	if !models.ValidTitle(title) {
		return "", invalid("title", "Title must be at least %d characters", models.MinTitleLength)
	}
	return title, nil
}

func validatePriority(p models.Priority) error {
	if !p.Valid() {
		return invalid("priority", "Priority must be one of low, medium, high (got %q)", p)
	}
	return nil
}

func (s *TaskService) List(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Create stores a new task at the end of the user's list.
func (s *TaskService) Create(ctx context.Context, userID string, in models.CreateTaskInput) (models.Task, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return models.Task{}, err
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if err := validatePriority(priority); err != nil {
		return models.Task{}, err
	}

	order := 0
	highest, ok, err := s.tasks.MaxOrder(ctx, userID)
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	if ok {
		order = highest + 1
	}

	task := models.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		Order:       order,
		User:        userID,
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate.Ptr()
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.logger.Debug("task created",
		zap.String("user", userID),
		zap.String("task", task.Id),
		zap.Int("order", task.Order))
	return task, nil
}

// Update applies a partial update. An empty title or priority keeps the
// current value; a null description or due date clears it.
func (s *TaskService) Update(ctx context.Context, userID, id string, in models.UpdateTaskInput) (models.Task, error) {
	task, err := s.get(ctx, userID, id)
	if err != nil {
		return models.Task{}, err
	}

	if in.Title.Set && !in.Title.Null && strings.TrimSpace(in.Title.Value) != "" {
		title, err := validateTitle(in.Title.Value)
		if err != nil {
			return models.Task{}, err
		}
		task.Title = title
	}
	if in.Description.Set {
		task.Description = strings.TrimSpace(in.Description.Value)
	}
	if in.Priority.Set && !in.Priority.Null && in.Priority.Value != "" {
		if err := validatePriority(in.Priority.Value); err != nil {
			return models.Task{}, err
		}
		task.Priority = in.Priority.Value
	}
	if in.DueDate.Set {
		task.DueDate = in.DueDate.Value.Ptr()
	}
	if in.Completed.Set && !in.Completed.Null {
		task.Completed = in.Completed.Value
	}

	if err := s.save(ctx, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Toggle sets completion to the given value, or flips it when completed is nil.
func (s *TaskService) Toggle(ctx context.Context, userID, id string, completed *bool) (models.Task, error) {
	task, err := s.get(ctx, userID, id)
	if err != nil {
		return models.Task{}, err
	}

	if completed != nil {
		task.Completed = *completed
	} else {
		task.Completed = !task.Completed
	}

	if err := s.save(ctx, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	err := s.tasks.Delete(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Reorder writes each order independently. There is no multi-row atomicity:
// on failure some updates may already be applied.
func (s *TaskService) Reorder(ctx context.Context, userID string, updates []models.OrderUpdate) error {
	for _, u := range updates {
		if u.Id == "" {
			return invalid("tasks", "Every task needs an id")
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reorderConcurrency)
	for _, u := range updates {
		g.Go(func() error {
			return s.tasks.UpdateOrder(gctx, userID, u.Id, u.Order)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reorder tasks: %w", err)
	}

	s.logger.Debug("tasks reordered", zap.String("user", userID), zap.Int("count", len(updates)))
	return nil
}

func (s *TaskService) get(ctx context.Context, userID, id string) (models.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (s *TaskService) save(ctx context.Context, task models.Task) error {
	err := s.tasks.Update(ctx, task)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}
