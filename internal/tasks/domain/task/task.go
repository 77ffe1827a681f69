package task

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyTitle is returned when a task title is empty or whitespace only.
var ErrEmptyTitle = errors.New("task title cannot be empty")

// Task represents a unit of work tracked by the service.
type Task struct {
	id          int64
	title       string
	description string
	completed   bool
	createdAt   time.Time
	updatedAt   time.Time
}

// NewTask creates a new task with the given title. The id is zero until the
// repository assigns one on first save.
func NewTask(title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now().UTC()
	return &Task{
		title:     title,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a task from stored state, bypassing id assignment.
// Intended for repository implementations only.
func Reconstruct(id int64, title, description string, completed bool, createdAt, updatedAt time.Time) *Task {
	return &Task{
		id:          id,
		title:       title,
		description: description,
		completed:   completed,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Getters

func (t *Task) ID() int64            { return t.id }
func (t *Task) Title() string        { return t.title }
func (t *Task) Description() string  { return t.description }
func (t *Task) Completed() bool      { return t.completed }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) UpdatedAt() time.Time { return t.updatedAt }

// SetTitle updates the task title.
func (t *Task) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.touch()
	return nil
}

// SetDescription updates the task description.
func (t *Task) SetDescription(description string) {
	t.description = strings.TrimSpace(description)
	t.touch()
}

// SetCompleted marks the task completed or reopens it.
func (t *Task) SetCompleted(completed bool) {
	t.completed = completed
	t.touch()
}

// Clone returns an independent copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}

func (t *Task) touch() {
	t.updatedAt = time.Now().UTC()
}
