package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-todo-api/internal/types"
)

var taskCols = []string{"id", "title", "description", "status", "priority", "due_date", "is_active", "created_at", "updated_at", "user_id"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRepoWithMock(t *testing.T) (*PostgresTaskRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresTaskRepo(mock, discardLogger()), mock
}

func taskRow(rows *pgxmock.Rows, id int64, title string, userID int64) *pgxmock.Rows {
	return rows.AddRow(id, title, (*string)(nil), "pending", "medium", (*time.Time)(nil),
		true, time.Now().UTC(), (*time.Time)(nil), userID)
}

func strPtr(s string) *string { return &s }

func TestPostgresTaskRepo_GetActiveTask(t *testing.T) {
	ctx := context.Background()
	q := regexp.QuoteMeta("FROM tasks WHERE id = $1 AND is_active = TRUE")

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(int64(1)).
			WillReturnRows(taskRow(pgxmock.NewRows(taskCols), 1, "New Task", 7))

		task, err := repo.GetActiveTask(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "New Task", task.Title)
		assert.Equal(t, types.TaskStatusPending, task.Status)
		assert.Equal(t, types.TaskPriorityMedium, task.Priority)
		assert.Equal(t, int64(7), task.UserID)
		assert.Nil(t, task.Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inactive or missing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(int64(1000)).WillReturnRows(pgxmock.NewRows(taskCols))

		_, err := repo.GetActiveTask(ctx, 1000)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestPostgresTaskRepo_ListUserTasks(t *testing.T) {
	ctx := context.Background()
	q := regexp.QuoteMeta("WHERE user_id = $1 AND is_active = TRUE")

	t.Run("pages", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		rows := pgxmock.NewRows(taskCols)
		taskRow(rows, 1, "first", 7)
		taskRow(rows, 2, "second", 7)
		mock.ExpectQuery(q).WithArgs(int64(7), 0, 100).WillReturnRows(rows)

		tasks, err := repo.ListUserTasks(ctx, 7, types.ListTasksParams{Skip: 0, Limit: 100})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "second", tasks[1].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(int64(7), 10, 5).WillReturnRows(pgxmock.NewRows(taskCols))

		tasks, err := repo.ListUserTasks(ctx, 7, types.ListTasksParams{Skip: 10, Limit: 5})
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(int64(7), 0, 100).WillReturnError(errors.New("db down"))

		_, err := repo.ListUserTasks(ctx, 7, types.ListTasksParams{Limit: 100})
		assert.Error(t, err)
	})
}

func TestPostgresTaskRepo_CreateTask(t *testing.T) {
	ctx := context.Background()
	repo, mock := newRepoWithMock(t)
	due := time.Now().Add(24 * time.Hour).UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks (title, description, status, priority, due_date, user_id)")).
		WithArgs("New Task", strPtr("desc"), "pending", "high", &due, int64(7)).
		WillReturnRows(pgxmock.NewRows(taskCols).
			AddRow(int64(1), "New Task", strPtr("desc"), "pending", "high", &due, true, time.Now().UTC(), (*time.Time)(nil), int64(7)))

	task, err := repo.CreateTask(ctx, 7, types.CreateTaskParams{
		Title:       "New Task",
		Description: strPtr("desc"),
		Status:      types.TaskStatusPending,
		Priority:    types.TaskPriorityHigh,
		DueDate:     &types.Timestamp{Time: due},
	})
	require.NoError(t, err)
	assert.True(t, task.IsActive)
	assert.Equal(t, int64(7), task.UserID)
	assert.Equal(t, types.TaskPriorityHigh, task.Priority)
	require.NotNil(t, task.Description)
	assert.Equal(t, "desc", *task.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskRepo_UpdateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("only provided fields are written", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(
			"UPDATE tasks SET title = $1, status = $2::task_status, updated_at = NOW() WHERE id = $3 AND is_active = TRUE")).
			WithArgs("Renamed", "completed", int64(1)).
			WillReturnRows(taskRow(pgxmock.NewRows(taskCols), 1, "Renamed", 7))

		task, err := repo.UpdateTask(ctx, 1, types.UpdateTaskParams{Title: types.Some("Renamed"), Status: types.Some(types.TaskStatusCompleted)})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", task.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty update", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		_, err := repo.UpdateTask(ctx, 1, types.UpdateTaskParams{})
		assert.ErrorIs(t, err, types.ErrEmptyUpdate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("task gone", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks SET description = $1, updated_at = NOW()")).
			WithArgs(strPtr("x"), int64(1)).
			WillReturnRows(pgxmock.NewRows(taskCols))

		_, err := repo.UpdateTask(ctx, 1, types.UpdateTaskParams{Description: types.Some("x")})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("null clears nullable columns", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(
			"UPDATE tasks SET description = $1, due_date = $2, updated_at = NOW() WHERE id = $3 AND is_active = TRUE")).
			WithArgs((*string)(nil), (*time.Time)(nil), int64(1)).
			WillReturnRows(taskRow(pgxmock.NewRows(taskCols), 1, "New Task", 7))

		task, err := repo.UpdateTask(ctx, 1, types.UpdateTaskParams{
			Description: types.Null[string](),
			DueDate:     types.Null[types.Timestamp](),
		})
		require.NoError(t, err)
		assert.Nil(t, task.Description)
		assert.Nil(t, task.DueDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("due date is written as time", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		due := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks SET due_date = $1, updated_at = NOW()")).
			WithArgs(&due, int64(1)).
			WillReturnRows(taskRow(pgxmock.NewRows(taskCols), 1, "New Task", 7))

		_, err := repo.UpdateTask(ctx, 1, types.UpdateTaskParams{DueDate: types.Some(types.Timestamp{Time: due})})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTaskRepo_SoftDeleteTask(t *testing.T) {
	ctx := context.Background()
	q := regexp.QuoteMeta("UPDATE tasks SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE")

	t.Run("deactivates", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.SoftDeleteTask(ctx, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already inactive", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.SoftDeleteTask(ctx, 1), types.ErrNotFound)
	})
}
