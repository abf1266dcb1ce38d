package user

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-todo-api/internal/api"
	"github.com/FACorreiaa/go-todo-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetUser(w http.ResponseWriter, r *http.Request)
	CreateUser(w http.ResponseWriter, r *http.Request)
	RestoreUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

// NewHandlerImpl creates a new user HandlerImpl instance.
func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	if logger == nil {
		panic("PANIC: Attempting to create HandlerImpl with nil logger!")
	}
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// GetUser godoc
// @Summary      Get user
// @Description  Returns an active user by ID.
// @Tags         Users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} types.User
// @Failure      404 {object} types.ErrorResponse "Active user not found"
// @Failure      422 {object} types.ErrorResponse "Invalid ID"
// @Router       /users/{id} [get]
func (h *HandlerImpl) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetUser"))

	userID, err := api.PathID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	u, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, fmt.Sprintf("Активный пользователь с ID: %d не найден", userID))
			return
		}
		l.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, u)
}

// CreateUser godoc
// @Summary      Register user
// @Description  Creates a user. The email must not be registered yet.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user body types.CreateUserParams true "New user"
// @Success      201 {object} types.User
// @Failure      400 {object} types.ErrorResponse "Email already registered"
// @Failure      422 {object} types.ErrorResponse "Validation error"
// @Router       /users [post]
func (h *HandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "CreateUser"))

	var params types.CreateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := api.Validate(params); err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	u, err := h.userService.Register(ctx, params)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Email %s уже зарегистрирован", params.Email))
			return
		}
		l.ErrorContext(ctx, "Failed to register user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, u)
}

// RestoreUser godoc
// @Summary      Restore user
// @Description  Reactivates a soft-deleted user. The user's tasks stay deleted.
// @Tags         Users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} types.User
// @Failure      404 {object} types.ErrorResponse "Deleted user not found"
// @Failure      422 {object} types.ErrorResponse "Invalid ID"
// @Router       /users/restore/{id} [patch]
func (h *HandlerImpl) RestoreUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "RestoreUser"))

	userID, err := api.PathID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	u, err := h.userService.RestoreUser(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, fmt.Sprintf("Удаленный пользователь с ID: %d не найден", userID))
			return
		}
		l.ErrorContext(ctx, "Failed to restore user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, u)
}

// DeleteUser godoc
// @Summary      Delete user
// @Description  Soft-deletes the user and all of the user's tasks.
// @Tags         Users
// @Param        id path int true "User ID"
// @Success      204
// @Failure      404 {object} types.ErrorResponse "User not found"
// @Failure      422 {object} types.ErrorResponse "Invalid ID"
// @Router       /users/{id} [delete]
func (h *HandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "DeleteUser"))

	userID, err := api.PathID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.userService.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, fmt.Sprintf("Пользователь с ID: %d не найден", userID))
			return
		}
		l.ErrorContext(ctx, "Failed to delete user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
