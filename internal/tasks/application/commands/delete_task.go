package commands

import (
	"context"

	"github.com/taskhive/taskhive/internal/tasks/domain/task"
)

// DeleteTaskCommand contains the data needed to delete a task.
type DeleteTaskCommand struct {
	TaskID int64
}

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskRepo task.Repository
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(taskRepo task.Repository) *DeleteTaskHandler {
	return &DeleteTaskHandler{taskRepo: taskRepo}
}

// Handle executes the DeleteTaskCommand. Deleting an id that does not exist,
// including one already deleted, fails with task.ErrTaskNotFound.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) error {
	return h.taskRepo.Delete(ctx, cmd.TaskID)
}
