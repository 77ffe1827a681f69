package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/taskhive/taskhive/internal/tasks/application/commands"
	"github.com/taskhive/taskhive/internal/tasks/application/queries"
	"github.com/taskhive/taskhive/internal/tasks/domain/task"
)

// TaskHandler handles task API requests.
type TaskHandler struct {
	createTask *commands.CreateTaskHandler
	updateTask *commands.UpdateTaskHandler
	deleteTask *commands.DeleteTaskHandler
	getTask    *queries.GetTaskHandler
	listTasks  *queries.ListTasksHandler
	logger     *slog.Logger
}

// TaskHandlerConfig holds dependencies for the task handler.
type TaskHandlerConfig struct {
	CreateTask *commands.CreateTaskHandler
	UpdateTask *commands.UpdateTaskHandler
	DeleteTask *commands.DeleteTaskHandler
	GetTask    *queries.GetTaskHandler
	ListTasks  *queries.ListTasksHandler
	Logger     *slog.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(cfg TaskHandlerConfig) *TaskHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &TaskHandler{
		createTask: cfg.CreateTask,
		updateTask: cfg.UpdateTask,
		deleteTask: cfg.DeleteTask,
		getTask:    cfg.GetTask,
		listTasks:  cfg.ListTasks,
		logger:     cfg.Logger,
	}
}

// taskResponse is the wire representation of a task.
type taskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func newTaskResponse(t *task.Task) taskResponse {
	return taskResponse{
		ID:          t.ID(),
		Title:       t.Title(),
		Description: t.Description(),
		Completed:   t.Completed(),
	}
}

// createTaskRequest is the payload for POST /tasks. A completed flag in the
// body is ignored: new tasks always start not completed.
type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (req createTaskRequest) validate() map[string]string {
	if strings.TrimSpace(req.Title) == "" {
		return map[string]string{"title": "must be a non-empty string"}
	}
	return nil
}

// updateTaskRequest is the payload for PUT /tasks/{id}. Nil fields were
// omitted from the request and leave the stored value unchanged.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (req updateTaskRequest) validate() map[string]string {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return map[string]string{"title": "must be a non-empty string"}
	}
	return nil
}

// ListTasks handles GET /tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.listTasks.Handle(r.Context())
	if err != nil {
		h.logger.Error("failed to list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list tasks")
		return
	}

	responses := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, newTaskResponse(t))
	}

	writeJSON(w, http.StatusOK, responses)
}

// GetTask handles GET /tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	t, err := h.getTask.Handle(r.Context(), queries.GetTaskQuery{TaskID: id})
	if err != nil {
		h.respondTaskError(w, r, id, err)
		return
	}

	writeJSON(w, http.StatusOK, newTaskResponse(t))
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if fields := req.validate(); fields != nil {
		writeValidationError(w, "Invalid task payload", fields)
		return
	}

	t, err := h.createTask.Handle(r.Context(), commands.CreateTaskCommand{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.respondTaskError(w, r, 0, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTaskResponse(t))
}

// UpdateTask handles PUT /tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if fields := req.validate(); fields != nil {
		writeValidationError(w, "Invalid task payload", fields)
		return
	}

	t, err := h.updateTask.Handle(r.Context(), commands.UpdateTaskCommand{
		TaskID:      id,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		h.respondTaskError(w, r, id, err)
		return
	}

	writeJSON(w, http.StatusOK, newTaskResponse(t))
}

// DeleteTask handles DELETE /tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	if err := h.deleteTask.Handle(r.Context(), commands.DeleteTaskCommand{TaskID: id}); err != nil {
		h.respondTaskError(w, r, id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// taskID parses the {id} path segment. A non-integer id is a validation
// failure, not a missing resource.
func (h *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeValidationError(w, "Invalid task id", map[string]string{"id": "must be an integer"})
		return 0, false
	}
	return id, true
}

// decodeBody decodes a JSON request body into dst. Unknown fields are
// ignored; a known field carrying the wrong JSON type is a validation
// failure naming the field, while a body that is not JSON at all is a 400.
func (h *TaskHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		writeValidationError(w, "Invalid task payload", map[string]string{
			field: fmt.Sprintf("must be of type %s", typeErr.Type),
		})
		return false
	}

	if errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "Request body is required")
		return false
	}
	writeError(w, http.StatusBadRequest, "bad_request", "Request body must be valid JSON")
	return false
}

// respondTaskError is the single translation point from store failures to
// wire responses. Unanticipated errors are logged and reduced to a generic
// 500 so internal state never leaks to clients.
func (h *TaskHandler) respondTaskError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("Task %d not found", id))
	case errors.Is(err, task.ErrEmptyTitle):
		writeValidationError(w, "Invalid task payload", map[string]string{"title": "must be a non-empty string"})
	default:
		h.logger.Error("task operation failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
