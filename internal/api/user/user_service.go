package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-todo-api/app/observability/metrics"
	"github.com/FACorreiaa/go-todo-api/internal/api/auth"
	"github.com/FACorreiaa/go-todo-api/internal/types"
)

// Ensure implementation satisfies the interface
var _ UserService = (*UserServiceImpl)(nil)

// UserService defines the business logic contract for user operations.
type UserService interface {
	GetUser(ctx context.Context, userID int64) (*types.User, error)
	Register(ctx context.Context, params types.CreateUserParams) (*types.User, error)
	DeleteUser(ctx context.Context, userID int64) error
	RestoreUser(ctx context.Context, userID int64) (*types.User, error)
}

// UserServiceImpl provides the implementation for UserService.
type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
	hasher auth.PasswordHasher
}

// NewUserService creates a new user service instance.
func NewUserService(repo UserRepo, hasher auth.PasswordHasher, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
		hasher: hasher,
	}
}

// GetUser returns an active user.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*types.User, error) {
	l := s.logger.With(slog.String("method", "GetUser"), slog.Int64("userID", userID))
	l.DebugContext(ctx, "Fetching user")

	u, err := s.repo.GetUserByID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return u, nil
}

// Register hashes the password and stores a new active user.
func (s *UserServiceImpl) Register(ctx context.Context, params types.CreateUserParams) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "Register")
	defer span.End()

	l := s.logger.With(slog.String("method", "Register"))

	existing, err := s.repo.GetUserByEmail(ctx, params.Email)
	switch {
	case err == nil && existing != nil:
		l.InfoContext(ctx, "Email already registered")
		span.SetStatus(codes.Error, "Email conflict")
		return nil, fmt.Errorf("email %s: %w", params.Email, types.ErrConflict)
	case err != nil && !errors.Is(err, types.ErrNotFound):
		span.RecordError(err)
		span.SetStatus(codes.Error, "Email lookup failed")
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Hash failed")
		return nil, err
	}

	u, err := s.repo.CreateUser(ctx, params.Name, params.Email, hash)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create failed")
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	metrics.RecordUserLifecycle(ctx, "register")
	span.SetAttributes(attribute.Int64("user.id", u.ID))
	span.SetStatus(codes.Ok, "User registered")
	l.InfoContext(ctx, "User registered", slog.Int64("userID", u.ID))
	return u, nil
}

// DeleteUser soft-deletes the user together with all of its tasks. A second
// call for the same user returns types.ErrNotFound.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID int64) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "DeleteUser", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if err := s.repo.SoftDeleteUser(ctx, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Soft delete failed")
		return fmt.Errorf("error deleting user: %w", err)
	}

	metrics.RecordUserLifecycle(ctx, "soft_delete")
	span.SetStatus(codes.Ok, "User deleted")
	return nil
}

// RestoreUser reactivates an inactive user. The user's tasks are left
// inactive.
func (s *UserServiceImpl) RestoreUser(ctx context.Context, userID int64) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "RestoreUser", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	u, err := s.repo.RestoreUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Restore failed")
		return nil, fmt.Errorf("error restoring user: %w", err)
	}

	metrics.RecordUserLifecycle(ctx, "restore")
	span.SetStatus(codes.Ok, "User restored")
	return u, nil
}
