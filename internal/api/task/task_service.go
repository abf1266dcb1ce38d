package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-todo-api/app/observability/metrics"
	"github.com/FACorreiaa/go-todo-api/internal/types"
)

var _ TaskService = (*TaskServiceImpl)(nil)

// ErrDueDateInPast rejects a due date earlier than the current UTC time.
var ErrDueDateInPast = fmt.Errorf("%w: due_date не может быть в прошлом", types.ErrValidation)

// ActiveUserReader re-checks that the requester is still active before
// list and create.
type ActiveUserReader interface {
	GetUserByID(ctx context.Context, userID int64, active bool) (*types.User, error)
}

// TaskService defines task operations on behalf of an authenticated
// requester. Task lookups only see active tasks, so a missing or
// soft-deleted task is types.ErrNotFound before ownership is considered.
type TaskService interface {
	ListTasks(ctx context.Context, requester *types.User, params types.ListTasksParams) ([]types.Task, error)
	GetTask(ctx context.Context, requester *types.User, taskID int64) (*types.Task, error)
	CreateTask(ctx context.Context, requester *types.User, params types.CreateTaskParams) (*types.Task, error)
	UpdateTask(ctx context.Context, requester *types.User, taskID int64, params types.UpdateTaskParams) (*types.Task, error)
	DeleteTask(ctx context.Context, requester *types.User, taskID int64) error
}

type TaskServiceImpl struct {
	logger *slog.Logger
	repo   TaskRepo
	users  ActiveUserReader
	now    func() time.Time
}

func NewTaskService(repo TaskRepo, users ActiveUserReader, logger *slog.Logger) *TaskServiceImpl {
	return &TaskServiceImpl{
		logger: logger,
		repo:   repo,
		users:  users,
		now:    time.Now,
	}
}

func (s *TaskServiceImpl) checkDueDate(due *time.Time) error {
	if due != nil && due.UTC().Before(s.now().UTC()) {
		return ErrDueDateInPast
	}
	return nil
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, requester *types.User, params types.ListTasksParams) ([]types.Task, error) {
	ctx, span := otel.Tracer("TaskService").Start(ctx, "ListTasks", trace.WithAttributes(
		attribute.Int64("user.id", requester.ID),
	))
	defer span.End()

	if _, err := s.users.GetUserByID(ctx, requester.ID, true); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Requester lookup failed")
		return nil, fmt.Errorf("error checking requester: %w", err)
	}

	tasks, err := s.repo.ListUserTasks(ctx, requester.ID, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "List failed")
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}

	metrics.RecordTaskOperation(ctx, "list")
	span.SetStatus(codes.Ok, "Tasks listed")
	return tasks, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, requester *types.User, taskID int64) (*types.Task, error) {
	ctx, span := otel.Tracer("TaskService").Start(ctx, "GetTask", trace.WithAttributes(
		attribute.Int64("user.id", requester.ID),
		attribute.Int64("task.id", taskID),
	))
	defer span.End()

	t, err := s.activeOwnedTask(ctx, requester, taskID, OpView)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Access denied or not found")
		return nil, err
	}

	metrics.RecordTaskOperation(ctx, "get")
	span.SetStatus(codes.Ok, "Task fetched")
	return t, nil
}

// CreateTask defaults status to pending and priority to medium.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, requester *types.User, params types.CreateTaskParams) (*types.Task, error) {
	ctx, span := otel.Tracer("TaskService").Start(ctx, "CreateTask", trace.WithAttributes(
		attribute.Int64("user.id", requester.ID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateTask"), slog.Int64("userID", requester.ID))

	if err := s.checkDueDate(params.DueDate.TimePtr()); err != nil {
		span.SetStatus(codes.Error, "Invalid due date")
		return nil, err
	}
	if params.Status == "" {
		params.Status = types.TaskStatusPending
	}
	if params.Priority == "" {
		params.Priority = types.TaskPriorityMedium
	}

	if _, err := s.users.GetUserByID(ctx, requester.ID, true); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Requester lookup failed")
		return nil, fmt.Errorf("error checking requester: %w", err)
	}

	t, err := s.repo.CreateTask(ctx, requester.ID, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create failed")
		return nil, fmt.Errorf("error creating task: %w", err)
	}

	metrics.RecordTaskOperation(ctx, "create")
	l.InfoContext(ctx, "Task created", slog.Int64("taskID", t.ID))
	span.SetStatus(codes.Ok, "Task created")
	return t, nil
}

// UpdateTask checks, in order: due date, existence, ownership, emptiness.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, requester *types.User, taskID int64, params types.UpdateTaskParams) (*types.Task, error) {
	ctx, span := otel.Tracer("TaskService").Start(ctx, "UpdateTask", trace.WithAttributes(
		attribute.Int64("user.id", requester.ID),
		attribute.Int64("task.id", taskID),
	))
	defer span.End()

	if err := s.checkDueDate(params.DueDate.Value.TimePtr()); err != nil {
		span.SetStatus(codes.Error, "Invalid due date")
		return nil, err
	}

	if _, err := s.activeOwnedTask(ctx, requester, taskID, OpModify); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Access denied or not found")
		return nil, err
	}

	if params.IsEmpty() {
		span.SetStatus(codes.Error, "Empty update")
		return nil, types.ErrEmptyUpdate
	}

	t, err := s.repo.UpdateTask(ctx, taskID, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return nil, fmt.Errorf("error updating task: %w", err)
	}

	metrics.RecordTaskOperation(ctx, "update")
	span.SetStatus(codes.Ok, "Task updated")
	return t, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, requester *types.User, taskID int64) error {
	ctx, span := otel.Tracer("TaskService").Start(ctx, "DeleteTask", trace.WithAttributes(
		attribute.Int64("user.id", requester.ID),
		attribute.Int64("task.id", taskID),
	))
	defer span.End()

	if _, err := s.activeOwnedTask(ctx, requester, taskID, OpDelete); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Access denied or not found")
		return err
	}

	if err := s.repo.SoftDeleteTask(ctx, taskID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Delete failed")
		return fmt.Errorf("error deleting task: %w", err)
	}

	metrics.RecordTaskOperation(ctx, "delete")
	span.SetStatus(codes.Ok, "Task deleted")
	return nil
}

func (s *TaskServiceImpl) activeOwnedTask(ctx context.Context, requester *types.User, taskID int64, op Operation) (*types.Task, error) {
	l := s.logger.With(slog.String("method", "activeOwnedTask"), slog.Int64("taskID", taskID), slog.String("op", op.String()))

	t, err := s.repo.GetActiveTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("error fetching task: %w", err)
	}
	if err := AssertOwner(t, requester, op); err != nil {
		l.WarnContext(ctx, "Ownership check failed", slog.Int64("requesterID", requester.ID), slog.Int64("ownerID", t.UserID))
		return nil, err
	}
	return t, nil
}
