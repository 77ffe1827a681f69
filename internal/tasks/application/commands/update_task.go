package commands

import (
	"context"

	"github.com/taskhive/taskhive/internal/tasks/domain/task"
)

// UpdateTaskCommand contains the data needed to update a task.
type UpdateTaskCommand struct {
	TaskID      int64
	Title       *string // nil means no change
	Description *string // nil means no change
	Completed   *bool   // nil means no change
}

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	taskRepo task.Repository
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(taskRepo task.Repository) *UpdateTaskHandler {
	return &UpdateTaskHandler{taskRepo: taskRepo}
}

// Handle executes the UpdateTaskCommand and returns the full updated task.
// Only fields present in the command are applied; a command with no fields
// set succeeds as a no-op and returns the task unchanged.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) (*task.Task, error) {
	return h.taskRepo.Update(ctx, cmd.TaskID, func(t *task.Task) error {
		if cmd.Title != nil {
			if err := t.SetTitle(*cmd.Title); err != nil {
				return err
			}
		}
		if cmd.Description != nil {
			t.SetDescription(*cmd.Description)
		}
		if cmd.Completed != nil {
			t.SetCompleted(*cmd.Completed)
		}
		return nil
	})
}
