package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TWRT/taskboard/internal/models"
)

const taskColumns = `id, user_id, title, description, completed, priority, due_date, position, created_at`

type SQLiteTaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t         models.Task
		priority  string
		dueDate   sql.NullString
		createdAt string
	)
	err := row.Scan(
		&t.Id,
		&t.User,
		&t.Title,
		&t.Description,
		&t.Completed,
		&priority,
		&dueDate,
		&t.Order,
		&createdAt,
	)
	if err != nil {
		return models.Task{}, err
	}

	t.Priority = models.Priority(priority)
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Task{}, err
	}
	if dueDate.Valid {
		due, err := parseTime(dueDate.String)
		if err != nil {
			return models.Task{}, err
		}
		t.DueDate = &due
	}
	return t, nil
}

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func (r *SQLiteTaskRepository) ListByUser(ctx context.Context, userID string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY position ASC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepository) MaxOrder(ctx context.Context, userID string) (int, bool, error) {
	var highest sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(position) FROM tasks WHERE user_id = ?`, userID).Scan(&highest)
	if err != nil {
		return 0, false, fmt.Errorf("max order: %w", err)
	}
	if !highest.Valid {
		return 0, false, nil
	}
	return int(highest.Int64), true, nil
}

func (r *SQLiteTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.Id == "" {
		task.Id = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		task.Id,
		task.User,
		task.Title,
		task.Description,
		task.Completed,
		string(task.Priority),
		nullableTime(task.DueDate),
		task.Order,
		formatTime(task.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepository) GetByID(ctx context.Context, userID, id string) (models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepository) Update(ctx context.Context, task models.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, completed = ?, priority = ?, due_date = ?, position = ?
		WHERE id = ? AND user_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.Completed,
		string(task.Priority),
		nullableTime(task.DueDate),
		task.Order,
		task.Id,
		task.User,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return expectAffected(result)
}

func (r *SQLiteTaskRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return expectAffected(result)
}

func (r *SQLiteTaskRepository) UpdateOrder(ctx context.Context, userID, id string, order int) error {
	query := `UPDATE tasks SET position = ? WHERE id = ? AND user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, order, id, userID); err != nil {
		return fmt.Errorf("update order of %s: %w", id, err)
	}
	return nil
}

func expectAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
