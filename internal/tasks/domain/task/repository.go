package task

import (
	"context"
	"errors"
)

// ErrTaskNotFound is returned when no task exists with the requested id.
var ErrTaskNotFound = errors.New("task not found")

// Repository defines the interface for task persistence.
//
// Implementations must assign ids from a monotonic counter on Create, never
// reusing an id even after deletion, and must return defensive copies from
// every read so callers cannot mutate stored state.
type Repository interface {
	// Create persists a new task, assigns its id and returns the stored task.
	Create(ctx context.Context, t *Task) (*Task, error)

	// FindByID returns the task with the given id, or ErrTaskNotFound.
	FindByID(ctx context.Context, id int64) (*Task, error)

	// FindAll returns all tasks in creation order. Never fails on an empty store.
	FindAll(ctx context.Context) ([]*Task, error)

	// Update applies mutate to the task with the given id while holding the
	// store's write lock and returns the updated task. The stored task is left
	// unchanged if mutate returns an error.
	Update(ctx context.Context, id int64, mutate func(*Task) error) (*Task, error)

	// Delete removes the task with the given id, or returns ErrTaskNotFound.
	// Deleting the same id twice fails the second time.
	Delete(ctx context.Context, id int64) error
}
