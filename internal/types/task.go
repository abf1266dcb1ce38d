package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type TaskStatus string

// UnmarshalJSON rejects null; an omitted status is handled by the caller.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	v, err := decodeNonNullString("status", data)
	if err != nil {
		return err
	}
	*s = TaskStatus(v)
	return nil
}

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

type TaskPriority string

func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	v, err := decodeNonNullString("priority", data)
	if err != nil {
		return err
	}
	*p = TaskPriority(v)
	return nil
}

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task belongs to exactly one user; UserID never changes after creation.
type Task struct {
	ID          int64        `json:"id" example:"1"`
	Title       string       `json:"title" example:"New Task"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status" example:"pending"`
	Priority    TaskPriority `json:"priority" example:"medium"`
	DueDate     *time.Time   `json:"due_date"`
	IsActive    bool         `json:"is_active" example:"true"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at"`
	UserID      int64        `json:"user_id" example:"1"`
}

// CreateTaskParams is the payload for a new task. Omitted status and
// priority fall back to pending and medium; null is rejected.
type CreateTaskParams struct {
	Title       string       `json:"title" validate:"required,min=1,max=255" example:"New Task"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=pending completed" example:"pending"`
	Priority    TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high" example:"medium"`
	DueDate     *Timestamp   `json:"due_date,omitempty" swaggertype:"string" format:"date-time"`
}

// UpdateTaskParams holds a partial update. An unset field is left alone; a
// null description or due_date clears the column.
type UpdateTaskParams struct {
	Title       Optional[string]       `json:"title,omitzero" validate:"omitempty,min=1,max=255" swaggertype:"string"`
	Description Optional[string]       `json:"description,omitzero" swaggertype:"string"`
	Status      Optional[TaskStatus]   `json:"status,omitzero" validate:"omitempty,oneof=pending completed" swaggertype:"string"`
	Priority    Optional[TaskPriority] `json:"priority,omitzero" validate:"omitempty,oneof=low medium high" swaggertype:"string"`
	DueDate     Optional[Timestamp]    `json:"due_date,omitzero" swaggertype:"string" format:"date-time"`
}

// IsEmpty reports whether no field was provided.
func (p UpdateTaskParams) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set && !p.Priority.Set && !p.DueDate.Set
}

// CheckNotNull rejects null for the columns that cannot be NULL.
func (p UpdateTaskParams) CheckNotNull() error {
	switch {
	case p.Title.IsNull():
		return fmt.Errorf("%w: title must not be null", ErrValidation)
	case p.Status.IsNull():
		return fmt.Errorf("%w: status must not be null", ErrValidation)
	case p.Priority.IsNull():
		return fmt.Errorf("%w: priority must not be null", ErrValidation)
	}
	return nil
}

func decodeNonNullString(field string, data []byte) (string, error) {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return "", fmt.Errorf("%w: %s must not be null", ErrValidation, field)
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrValidation, field)
	}
	return v, nil
}

// ListTasksParams paginates a user's active tasks.
type ListTasksParams struct {
	Skip  int
	Limit int
}

const (
	DefaultTaskLimit = 100
	MaxTaskLimit     = 1000
)
