// Package commands contains the write-side application handlers for tasks.
package commands

import (
	"context"

	"github.com/taskhive/taskhive/internal/tasks/domain/task"
)

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	Title       string
	Description string
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo task.Repository
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository) *CreateTaskHandler {
	return &CreateTaskHandler{taskRepo: taskRepo}
}

// Handle executes the CreateTaskCommand and returns the created task with its
// assigned id. New tasks always start not completed.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*task.Task, error) {
	t, err := task.NewTask(cmd.Title)
	if err != nil {
		return nil, err
	}

	if cmd.Description != "" {
		t.SetDescription(cmd.Description)
	}

	return h.taskRepo.Create(ctx, t)
}
