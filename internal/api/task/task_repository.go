package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-todo-api/app/db"
	"github.com/FACorreiaa/go-todo-api/internal/types"
)

var _ TaskRepo = (*PostgresTaskRepo)(nil)

// TaskRepo persists tasks. Only active tasks are visible through it.
type TaskRepo interface {
	GetActiveTask(ctx context.Context, taskID int64) (*types.Task, error)
	ListUserTasks(ctx context.Context, userID int64, params types.ListTasksParams) ([]types.Task, error)
	CreateTask(ctx context.Context, userID int64, params types.CreateTaskParams) (*types.Task, error)
	// UpdateTask writes only the provided fields and bumps updated_at.
	UpdateTask(ctx context.Context, taskID int64, params types.UpdateTaskParams) (*types.Task, error)
	SoftDeleteTask(ctx context.Context, taskID int64) error
}

const taskColumns = "id, title, description, status::text, priority::text, due_date, is_active, created_at, updated_at, user_id"

type PostgresTaskRepo struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewPostgresTaskRepo(pgpool database.Pool, logger *slog.Logger) *PostgresTaskRepo {
	return &PostgresTaskRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func scanTask(row pgx.Row) (*types.Task, error) {
	var t types.Task
	var status, priority string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.DueDate,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt, &t.UserID)
	if err != nil {
		return nil, err
	}
	t.Status = types.TaskStatus(status)
	t.Priority = types.TaskPriority(priority)
	return &t, nil
}

func (r *PostgresTaskRepo) GetActiveTask(ctx context.Context, taskID int64) (*types.Task, error) {
	ctx, span := otel.Tracer("TaskRepo").Start(ctx, "GetActiveTask", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "tasks"),
		attribute.Int64("db.task.id", taskID),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetActiveTask"), slog.Int64("taskID", taskID))

	query := "SELECT " + taskColumns + " FROM tasks WHERE id = $1 AND is_active = TRUE"
	t, err := scanTask(r.pgpool.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Task not found")
			return nil, fmt.Errorf("task %d: %w", taskID, types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to fetch task", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching task: %w", err)
	}

	span.SetStatus(codes.Ok, "Task found")
	return t, nil
}

func (r *PostgresTaskRepo) ListUserTasks(ctx context.Context, userID int64, params types.ListTasksParams) ([]types.Task, error) {
	ctx, span := otel.Tracer("TaskRepo").Start(ctx, "ListUserTasks", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "tasks"),
		attribute.Int64("db.user.id", userID),
		attribute.Int("db.skip", params.Skip),
		attribute.Int("db.limit", params.Limit),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "ListUserTasks"), slog.Int64("userID", userID))

	query := "SELECT " + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY id
		OFFSET $2 LIMIT $3`
	rows, err := r.pgpool.Query(ctx, query, userID, params.Skip, params.Limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query tasks", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]types.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			l.ErrorContext(ctx, "Failed to scan task row", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB scan failed")
			return nil, fmt.Errorf("database error scanning task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		l.ErrorContext(ctx, "Error iterating task rows", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB rows error")
		return nil, fmt.Errorf("database error iterating tasks: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(tasks)))
	span.SetStatus(codes.Ok, "Tasks listed")
	return tasks, nil
}

func (r *PostgresTaskRepo) CreateTask(ctx context.Context, userID int64, params types.CreateTaskParams) (*types.Task, error) {
	ctx, span := otel.Tracer("TaskRepo").Start(ctx, "CreateTask", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "tasks"),
		attribute.Int64("db.user.id", userID),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateTask"), slog.Int64("userID", userID))

	query := `
		INSERT INTO tasks (title, description, status, priority, due_date, user_id)
		VALUES ($1, $2, $3::task_status, $4::task_priority, $5, $6)
		RETURNING ` + taskColumns
	t, err := scanTask(r.pgpool.QueryRow(ctx, query,
		params.Title, params.Description, string(params.Status), string(params.Priority), params.DueDate.TimePtr(), userID))
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert task", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating task: %w", err)
	}

	l.InfoContext(ctx, "Task created", slog.Int64("taskID", t.ID))
	span.SetStatus(codes.Ok, "Task created")
	return t, nil
}

func (r *PostgresTaskRepo) UpdateTask(ctx context.Context, taskID int64, params types.UpdateTaskParams) (*types.Task, error) {
	ctx, span := otel.Tracer("TaskRepo").Start(ctx, "UpdateTask", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "tasks"),
		attribute.Int64("db.task.id", taskID),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateTask"), slog.Int64("taskID", taskID))

	var setClauses []string
	var args []interface{}
	argID := 1

	// null is only meaningful for the nullable columns; the handler rejects it for the rest
	if v := params.Title.Value; v != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *v)
		argID++
		span.SetAttributes(attribute.Bool("update.title", true))
	}
	if params.Description.Set {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, params.Description.Value)
		argID++
		span.SetAttributes(attribute.Bool("update.description", true))
	}
	if v := params.Status.Value; v != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d::task_status", argID))
		args = append(args, string(*v))
		argID++
		span.SetAttributes(attribute.Bool("update.status", true))
	}
	if v := params.Priority.Value; v != nil {
		setClauses = append(setClauses, fmt.Sprintf("priority = $%d::task_priority", argID))
		args = append(args, string(*v))
		argID++
		span.SetAttributes(attribute.Bool("update.priority", true))
	}
	if params.DueDate.Set {
		setClauses = append(setClauses, fmt.Sprintf("due_date = $%d", argID))
		args = append(args, params.DueDate.Value.TimePtr())
		argID++
		span.SetAttributes(attribute.Bool("update.due_date", true))
	}

	if len(setClauses) == 0 {
		l.WarnContext(ctx, "UpdateTask called with no fields to update")
		span.SetStatus(codes.Error, "Empty update")
		return nil, types.ErrEmptyUpdate
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, taskID)

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d AND is_active = TRUE RETURNING %s",
		strings.Join(setClauses, ", "), argID, taskColumns)

	t, err := scanTask(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Task not found")
			return nil, fmt.Errorf("task %d: %w", taskID, types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to update task", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return nil, fmt.Errorf("database error updating task: %w", err)
	}

	l.InfoContext(ctx, "Task updated")
	span.SetStatus(codes.Ok, "Task updated")
	return t, nil
}

func (r *PostgresTaskRepo) SoftDeleteTask(ctx context.Context, taskID int64) error {
	ctx, span := otel.Tracer("TaskRepo").Start(ctx, "SoftDeleteTask", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "tasks"),
		attribute.Int64("db.task.id", taskID),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "SoftDeleteTask"), slog.Int64("taskID", taskID))

	tag, err := r.pgpool.Exec(ctx,
		"UPDATE tasks SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE",
		taskID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to soft delete task", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Task not found")
		return fmt.Errorf("task %d: %w", taskID, types.ErrNotFound)
	}

	l.InfoContext(ctx, "Task soft deleted")
	span.SetStatus(codes.Ok, "Task deleted")
	return nil
}
