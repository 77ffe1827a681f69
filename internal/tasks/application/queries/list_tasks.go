package queries

import (
	"context"

	"github.com/taskhive/taskhive/internal/tasks/domain/task"
)

// ListTasksHandler returns all tasks in creation order.
type ListTasksHandler struct {
	taskRepo task.Repository
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo}
}

// Handle returns every stored task. An empty store yields an empty slice.
func (h *ListTasksHandler) Handle(ctx context.Context) ([]*task.Task, error) {
	return h.taskRepo.FindAll(ctx)
}
