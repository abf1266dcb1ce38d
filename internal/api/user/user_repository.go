package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-todo-api/app/db"
	"github.com/FACorreiaa/go-todo-api/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for user persistence. Users are never
// hard-deleted; is_active carries the soft-delete state.
type UserRepo interface {
	// GetUserByID returns the user only when its is_active equals active.
	// Returns types.ErrNotFound otherwise.
	GetUserByID(ctx context.Context, userID int64, active bool) (*types.User, error)

	// GetUserByEmail matches the email exactly, active or not.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	// CreateUser returns types.ErrConflict when the email is taken.
	CreateUser(ctx context.Context, name, email, hashedPassword string) (*types.User, error)

	// SoftDeleteUser deactivates the user and every task the user owns in one
	// transaction. Returns types.ErrNotFound if no active user has this id.
	SoftDeleteUser(ctx context.Context, userID int64) error

	// RestoreUser reactivates an inactive user. Tasks stay inactive.
	RestoreUser(ctx context.Context, userID int64) (*types.User, error)
}

const userColumns = "id, name, email, hashed_password, is_active, created_at, updated_at"

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewPostgresUserRepo(pgpool database.Pool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, userID int64, active bool) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", userID),
		attribute.Bool("db.user.active", active),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetUserByID"), slog.Int64("userID", userID))

	query := "SELECT " + userColumns + " FROM users WHERE id = $1 AND is_active = $2"
	u, err := scanUser(r.pgpool.QueryRow(ctx, query, userID, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			l.DebugContext(ctx, "User not found", slog.Bool("active", active))
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user %d: %w", userID, types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to fetch user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	span.SetStatus(codes.Ok, "User found")
	return u, nil
}

func (r *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetUserByEmail"))

	query := "SELECT " + userColumns + " FROM users WHERE email = $1"
	u, err := scanUser(r.pgpool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user with email: %w", types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to fetch user by email", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}

	span.SetStatus(codes.Ok, "User found")
	return u, nil
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, name, email, hashedPassword string) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateUser"))
	l.DebugContext(ctx, "Creating user")

	query := `
		INSERT INTO users (name, email, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
	u, err := scanUser(r.pgpool.QueryRow(ctx, query, name, email, hashedPassword))
	if err != nil {
		if database.IsUniqueViolation(err) {
			l.WarnContext(ctx, "Email already registered")
			span.SetStatus(codes.Error, "Email conflict")
			return nil, fmt.Errorf("email %s: %w", email, types.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating user: %w", err)
	}

	l.InfoContext(ctx, "User created", slog.Int64("userID", u.ID))
	span.SetStatus(codes.Ok, "User created")
	return u, nil
}

func (r *PostgresUserRepo) SoftDeleteUser(ctx context.Context, userID int64) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "SoftDeleteUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users,tasks"),
		attribute.Int64("db.user.id", userID),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "SoftDeleteUser"), slog.Int64("userID", userID))
	l.DebugContext(ctx, "Soft deleting user and tasks")

	var tasksDeactivated int64
	err := database.WithTx(ctx, r.pgpool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE",
			userID)
		if err != nil {
			return fmt.Errorf("database error deactivating user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("active user %d: %w", userID, types.ErrNotFound)
		}

		tag, err = tx.Exec(ctx,
			"UPDATE tasks SET is_active = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_active = TRUE",
			userID)
		if err != nil {
			return fmt.Errorf("database error deactivating tasks: %w", err)
		}
		tasksDeactivated = tag.RowsAffected()
		return nil
	})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.WarnContext(ctx, "No active user to delete")
			span.SetStatus(codes.Error, "User not found")
			return err
		}
		l.ErrorContext(ctx, "Failed to soft delete user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB transaction failed")
		return err
	}

	l.InfoContext(ctx, "User soft deleted", slog.Int64("tasks_deactivated", tasksDeactivated))
	span.SetStatus(codes.Ok, "User deactivated")
	return nil
}

func (r *PostgresUserRepo) RestoreUser(ctx context.Context, userID int64) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "RestoreUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", userID),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "RestoreUser"), slog.Int64("userID", userID))

	query := `
		UPDATE users SET is_active = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_active = FALSE
		RETURNING ` + userColumns
	u, err := scanUser(r.pgpool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			l.WarnContext(ctx, "No inactive user to restore")
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("inactive user %d: %w", userID, types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to restore user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return nil, fmt.Errorf("database error restoring user: %w", err)
	}

	l.InfoContext(ctx, "User restored")
	span.SetStatus(codes.Ok, "User restored")
	return u, nil
}
