package task

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/FACorreiaa/go-todo-api/internal/api"
	"github.com/FACorreiaa/go-todo-api/internal/api/auth"
	"github.com/FACorreiaa/go-todo-api/internal/types"
)

const MsgEmptyUpdate = "Должно быть хотя-бы одно поле для изменения"

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListTasks(w http.ResponseWriter, r *http.Request)
	GetTask(w http.ResponseWriter, r *http.Request)
	CreateTask(w http.ResponseWriter, r *http.Request)
	UpdateTask(w http.ResponseWriter, r *http.Request)
	DeleteTask(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	taskService TaskService
	logger      *slog.Logger
}

func NewHandlerImpl(taskService TaskService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks godoc
// @Summary      List tasks
// @Description  Returns the authenticated user's active tasks.
// @Tags         Tasks
// @Produce      json
// @Param        skip  query int false "Offset" minimum(0) default(0)
// @Param        limit query int false "Page size" minimum(1) maximum(1000) default(100)
// @Success      200 {array}  types.Task
// @Failure      401 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse "Active user not found"
// @Failure      422 {object} types.ErrorResponse "Invalid pagination"
// @Security     BearerAuth
// @Router       /tasks [get]
func (h *HandlerImpl) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "ListTasks"))

	requester, ok := auth.GetUserFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, auth.MsgNotAuthenticated)
		return
	}

	skip, err := api.QueryInt(r, "skip", 0, 0, math.MaxInt32)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	limit, err := api.QueryInt(r, "limit", types.DefaultTaskLimit, 1, types.MaxTaskLimit)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tasks, err := h.taskService.ListTasks(ctx, requester, types.ListTasksParams{Skip: skip, Limit: limit})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, activeUserMissing(requester.ID))
			return
		}
		l.ErrorContext(ctx, "Failed to list tasks", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, tasks)
}

// GetTask godoc
// @Summary      Get task
// @Tags         Tasks
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} types.Task
// @Failure      401 {object} types.ErrorResponse
// @Failure      403 {object} types.ErrorResponse "Not the owner"
// @Failure      404 {object} types.ErrorResponse "Active task not found"
// @Security     BearerAuth
// @Router       /tasks/{id} [get]
func (h *HandlerImpl) GetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requester, ok := auth.GetUserFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, auth.MsgNotAuthenticated)
		return
	}
	taskID, err := api.PathID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	t, err := h.taskService.GetTask(ctx, requester, taskID)
	if err != nil {
		h.writeServiceError(w, r, "GetTask", taskID, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, t)
}

// CreateTask godoc
// @Summary      Create task
// @Description  Creates a task owned by the authenticated user. Status defaults to pending, priority to medium.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task body types.CreateTaskParams true "New task"
// @Success      201 {object} types.Task
// @Failure      401 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse "Active user not found"
// @Failure      422 {object} types.ErrorResponse "Validation error"
// @Security     BearerAuth
// @Router       /tasks [post]
func (h *HandlerImpl) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "CreateTask"))

	requester, ok := auth.GetUserFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, auth.MsgNotAuthenticated)
		return
	}

	var params types.CreateTaskParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := api.Validate(params); err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	t, err := h.taskService.CreateTask(ctx, requester, params)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, activeUserMissing(requester.ID))
		default:
			l.ErrorContext(ctx, "Failed to create task", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, t)
}

// UpdateTask godoc
// @Summary      Update task
// @Description  Partially updates a task. At least one field is required. Null clears description or due_date.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id   path int true "Task ID"
// @Param        task body types.UpdateTaskParams true "Fields to change"
// @Success      200 {object} types.Task
// @Failure      400 {object} types.ErrorResponse "No fields to change"
// @Failure      401 {object} types.ErrorResponse
// @Failure      403 {object} types.ErrorResponse "Not the owner"
// @Failure      404 {object} types.ErrorResponse "Active task not found"
// @Failure      422 {object} types.ErrorResponse "Validation error"
// @Security     BearerAuth
// @Router       /tasks/{id} [patch]
func (h *HandlerImpl) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdateTask"))

	requester, ok := auth.GetUserFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, auth.MsgNotAuthenticated)
		return
	}
	taskID, err := api.PathID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var params types.UpdateTaskParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := params.CheckNotNull(); err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := api.Validate(params); err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	t, err := h.taskService.UpdateTask(ctx, requester, taskID, params)
	if err != nil {
		h.writeServiceError(w, r, "UpdateTask", taskID, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, t)
}

// DeleteTask godoc
// @Summary      Delete task
// @Description  Soft-deletes a task.
// @Tags         Tasks
// @Param        id path int true "Task ID"
// @Success      204
// @Failure      401 {object} types.ErrorResponse
// @Failure      403 {object} types.ErrorResponse "Not the owner"
// @Failure      404 {object} types.ErrorResponse "Active task not found"
// @Security     BearerAuth
// @Router       /tasks/{id} [delete]
func (h *HandlerImpl) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requester, ok := auth.GetUserFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, auth.MsgNotAuthenticated)
		return
	}
	taskID, err := api.PathID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.taskService.DeleteTask(ctx, requester, taskID); err != nil {
		h.writeServiceError(w, r, "DeleteTask", taskID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps errors from single-task operations.
func (h *HandlerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, op string, taskID int64, err error) {
	var ownership *OwnershipError
	switch {
	case errors.As(err, &ownership):
		api.ErrorResponse(w, r, http.StatusForbidden, ownership.Error())
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, fmt.Sprintf("Активная задача с ID: %d не найдена", taskID))
	case errors.Is(err, types.ErrEmptyUpdate):
		api.ErrorResponse(w, r, http.StatusBadRequest, MsgEmptyUpdate)
	case errors.Is(err, types.ErrValidation):
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Task operation failed",
			slog.String("op", op), slog.Int64("taskID", taskID), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func activeUserMissing(userID int64) string {
	return fmt.Sprintf("Активный пользователь с ID: %d не найден", userID)
}
