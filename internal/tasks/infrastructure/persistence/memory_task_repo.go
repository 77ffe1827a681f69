// Package persistence provides the in-memory task repository.
package persistence

import (
	"context"
	"sync"

	"github.com/taskhive/taskhive/internal/tasks/domain/task"
)

// MemoryTaskRepository implements task.Repository with process-local state.
//
// A single RWMutex serializes all mutations together with the id counter, so
// concurrent creates can never share an id and concurrent updates to the same
// task cannot interleave. Reads hold the read lock and hand out copies, never
// references into the store. State is lost on process exit.
type MemoryTaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]*task.Task
	order  []int64
}

// NewMemoryTaskRepository creates an empty in-memory task repository.
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks: make(map[int64]*task.Task),
	}
}

// Create assigns the next id and stores the task.
func (r *MemoryTaskRepository) Create(ctx context.Context, t *task.Task) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Ids come from the counter, not max(existing)+1, so a deleted id is
	// never reissued.
	r.nextID++
	stored := task.Reconstruct(r.nextID, t.Title(), t.Description(), t.Completed(), t.CreatedAt(), t.UpdatedAt())
	r.tasks[stored.ID()] = stored
	r.order = append(r.order, stored.ID())

	return stored.Clone(), nil
}

// FindByID returns a copy of the task with the given id.
func (r *MemoryTaskRepository) FindByID(ctx context.Context, id int64) (*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	return t.Clone(), nil
}

// FindAll returns copies of all tasks in creation order.
func (r *MemoryTaskRepository) FindAll(ctx context.Context) ([]*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*task.Task, 0, len(r.order))
	for _, id := range r.order {
		tasks = append(tasks, r.tasks[id].Clone())
	}
	return tasks, nil
}

// Update applies mutate to a working copy under the write lock and commits it
// only when mutate succeeds, so a failed mutation never half-applies.
func (r *MemoryTaskRepository) Update(ctx context.Context, id int64, mutate func(*task.Task) error) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}

	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}

	r.tasks[id] = working
	return working.Clone(), nil
}

// Delete removes the task with the given id.
func (r *MemoryTaskRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return task.ErrTaskNotFound
	}

	delete(r.tasks, id)
	for i, ordered := range r.order {
		if ordered == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
