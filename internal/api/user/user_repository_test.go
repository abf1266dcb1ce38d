package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-todo-api/internal/types"
)

var userCols = []string{"id", "name", "email", "hashed_password", "is_active", "created_at", "updated_at"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRepoWithMock(t *testing.T) (*PostgresUserRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresUserRepo(mock, discardLogger()), mock
}

func TestPostgresUserRepo_GetUserByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	q := regexp.QuoteMeta("FROM users WHERE id = $1 AND is_active = $2")

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).
			WithArgs(int64(1), true).
			WillReturnRows(pgxmock.NewRows(userCols).
				AddRow(int64(1), "User_1", "user_1@example.com", "hash", true, created, (*time.Time)(nil)))

		u, err := repo.GetUserByID(ctx, 1, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
		assert.Equal(t, "User_1", u.Name)
		assert.True(t, u.IsActive)
		assert.Nil(t, u.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).
			WithArgs(int64(2), true).
			WillReturnRows(pgxmock.NewRows(userCols))

		_, err := repo.GetUserByID(ctx, 2, true)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).
			WithArgs(int64(3), false).
			WillReturnError(errors.New("db down"))

		_, err := repo.GetUserByID(ctx, 3, false)
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrNotFound)
	})
}

func TestPostgresUserRepo_GetUserByEmail(t *testing.T) {
	ctx := context.Background()
	q := regexp.QuoteMeta("FROM users WHERE email = $1")

	t.Run("inactive users are returned", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		updated := time.Now().UTC()
		mock.ExpectQuery(q).
			WithArgs("user_1@example.com").
			WillReturnRows(pgxmock.NewRows(userCols).
				AddRow(int64(1), "User_1", "user_1@example.com", "hash", false, time.Now().UTC(), &updated))

		u, err := repo.GetUserByEmail(ctx, "user_1@example.com")
		require.NoError(t, err)
		assert.False(t, u.IsActive)
		assert.Equal(t, "hash", u.PasswordHash)
		require.NotNil(t, u.UpdatedAt)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).
			WithArgs("ghost@example.com").
			WillReturnRows(pgxmock.NewRows(userCols))

		_, err := repo.GetUserByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestPostgresUserRepo_CreateUser(t *testing.T) {
	ctx := context.Background()
	q := regexp.QuoteMeta("INSERT INTO users (name, email, hashed_password)")

	t.Run("success", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).
			WithArgs("User_1", "user_1@example.com", "hash").
			WillReturnRows(pgxmock.NewRows(userCols).
				AddRow(int64(5), "User_1", "user_1@example.com", "hash", true, time.Now().UTC(), (*time.Time)(nil)))

		u, err := repo.CreateUser(ctx, "User_1", "user_1@example.com", "hash")
		require.NoError(t, err)
		assert.Equal(t, int64(5), u.ID)
		assert.True(t, u.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).
			WithArgs("User_1", "user_1@example.com", "hash").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repo.CreateUser(ctx, "User_1", "user_1@example.com", "hash")
		assert.ErrorIs(t, err, types.ErrConflict)
	})
}

func TestPostgresUserRepo_SoftDeleteUser(t *testing.T) {
	ctx := context.Background()
	usersQ := regexp.QuoteMeta("UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE")
	tasksQ := regexp.QuoteMeta("UPDATE tasks SET is_active = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_active = TRUE")

	t.Run("cascades to tasks in one transaction", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(usersQ).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(tasksQ).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 3))
		mock.ExpectCommit()

		require.NoError(t, repo.SoftDeleteUser(ctx, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already inactive user is not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(usersQ).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		err := repo.SoftDeleteUser(ctx, 1)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("task update failure rolls back the user update", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(usersQ).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(tasksQ).WithArgs(int64(1)).WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()

		err := repo.SoftDeleteUser(ctx, 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

		assert.Error(t, repo.SoftDeleteUser(ctx, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserRepo_RestoreUser(t *testing.T) {
	ctx := context.Background()
	q := regexp.QuoteMeta("UPDATE users SET is_active = TRUE, updated_at = NOW()")

	t.Run("restores inactive user", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		updated := time.Now().UTC()
		mock.ExpectQuery(q).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(userCols).
				AddRow(int64(1), "User_1", "user_1@example.com", "hash", true, time.Now().UTC(), &updated))

		u, err := repo.RestoreUser(ctx, 1)
		require.NoError(t, err)
		assert.True(t, u.IsActive)
		assert.NotNil(t, u.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("active or missing user is not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).
			WithArgs(int64(9)).
			WillReturnRows(pgxmock.NewRows(userCols))

		_, err := repo.RestoreUser(ctx, 9)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}
