package task

import (
	"fmt"

	"github.com/FACorreiaa/go-todo-api/internal/types"
)

// Operation names what a requester is trying to do with a task.
type Operation int

const (
	OpView Operation = iota
	OpModify
	OpDelete
)

func (op Operation) String() string {
	switch op {
	case OpView:
		return "view"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

func (op Operation) deniedMessage() string {
	switch op {
	case OpModify:
		return "Только владелец может изменить задачу"
	case OpDelete:
		return "Только владелец может удалить задачу"
	default:
		return "Только владелец имеет доступ к задаче"
	}
}

// OwnershipError is returned when a non-owner touches an active task. It
// matches types.ErrForbidden and its message is the client-facing detail.
type OwnershipError struct {
	Op          Operation
	TaskID      int64
	RequesterID int64
}

func (e *OwnershipError) Error() string { return e.Op.deniedMessage() }

func (e *OwnershipError) Unwrap() error { return types.ErrForbidden }

// AssertOwner allows the operation only when requester owns the task. The
// caller must already have checked that the task is active.
func AssertOwner(task *types.Task, requester *types.User, op Operation) error {
	if task.UserID != requester.ID {
		return &OwnershipError{Op: op, TaskID: task.ID, RequesterID: requester.ID}
	}
	return nil
}
