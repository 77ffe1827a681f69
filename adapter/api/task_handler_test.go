package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/tasks/application/commands"
	"github.com/taskhive/taskhive/internal/tasks/application/queries"
	"github.com/taskhive/taskhive/internal/tasks/infrastructure/persistence"
	"github.com/taskhive/taskhive/pkg/observability"
)

func newTestServer(t *testing.T) (http.Handler, *observability.InMemoryMetrics) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := persistence.NewMemoryTaskRepository()
	handler := NewTaskHandler(TaskHandlerConfig{
		CreateTask: commands.NewCreateTaskHandler(repo),
		UpdateTask: commands.NewUpdateTaskHandler(repo),
		DeleteTask: commands.NewDeleteTaskHandler(repo),
		GetTask:    queries.NewGetTaskHandler(repo),
		ListTasks:  queries.NewListTasksHandler(repo),
		Logger:     logger,
	})

	metrics := observability.NewInMemoryMetrics()
	server := NewServer(DefaultServerConfig(), handler, logger, metrics)
	return server.Handler(), metrics
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestTaskAPI_CRUDLifecycle(t *testing.T) {
	h, _ := newTestServer(t)

	// Create
	rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":"Buy groceries","description":"Milk, bread, and eggs"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeTask(t, rec)
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "Buy groceries", created["title"])
	assert.Equal(t, "Milk, bread, and eggs", created["description"])
	assert.Equal(t, false, created["completed"])

	// Read back: identical body
	rec = doRequest(t, h, http.MethodGet, "/tasks/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decodeTask(t, rec))

	// Partial update: only completed changes
	rec = doRequest(t, h, http.MethodPut, "/tasks/1", `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeTask(t, rec)
	assert.Equal(t, true, updated["completed"])
	assert.Equal(t, "Buy groceries", updated["title"])
	assert.Equal(t, "Milk, bread, and eggs", updated["description"])

	// Delete
	rec = doRequest(t, h, http.MethodDelete, "/tasks/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Gone
	rec = doRequest(t, h, http.MethodGet, "/tasks/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskAPI_ListTasks(t *testing.T) {
	t.Run("empty store returns empty JSON array", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodGet, "/tasks", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("returns tasks in creation order", func(t *testing.T) {
		h, _ := newTestServer(t)

		for _, title := range []string{"first", "second", "third"} {
			rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":"`+title+`"}`)
			require.Equal(t, http.StatusCreated, rec.Code)
		}

		rec := doRequest(t, h, http.MethodGet, "/tasks", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var tasks []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
		require.Len(t, tasks, 3)
		assert.Equal(t, "first", tasks[0]["title"])
		assert.Equal(t, "second", tasks[1]["title"])
		assert.Equal(t, "third", tasks[2]["title"])
	})
}

func TestTaskAPI_CreateTask(t *testing.T) {
	t.Run("rejects empty title", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":""}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := decodeTask(t, rec)
		assert.Equal(t, "validation_failed", body["code"])
		fields := body["fields"].(map[string]any)
		assert.Contains(t, fields, "title")
	})

	t.Run("rejects missing title", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPost, "/tasks", `{"description":"no title"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("rejects wrong field type naming the field", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":123}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := decodeTask(t, rec)
		fields := body["fields"].(map[string]any)
		assert.Contains(t, fields, "title")
	})

	t.Run("rejects malformed JSON with 400", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", decodeTask(t, rec)["code"])
	})

	t.Run("ignores a completed flag in the payload", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":"Buy groceries","completed":true}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, false, decodeTask(t, rec)["completed"])
	})

	t.Run("ignores unknown fields", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":"Buy groceries","priority":"high"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestTaskAPI_GetTask(t *testing.T) {
	t.Run("missing id returns 404 naming the task", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodGet, "/tasks/42", "")
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := decodeTask(t, rec)
		assert.Equal(t, "not_found", body["code"])
		assert.Contains(t, body["message"], "42")
	})

	t.Run("non-integer id is a validation failure, not 404", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodGet, "/tasks/abc", "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := decodeTask(t, rec)
		fields := body["fields"].(map[string]any)
		assert.Contains(t, fields, "id")
	})
}

func TestTaskAPI_UpdateTask(t *testing.T) {
	t.Run("missing id returns 404", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPut, "/tasks/7", `{"completed":true}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("empty payload is a no-op returning the unchanged task", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":"Buy groceries"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		created := decodeTask(t, rec)

		rec = doRequest(t, h, http.MethodPut, "/tasks/1", `{}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created, decodeTask(t, rec))
	})

	t.Run("rejects empty title on update", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":"Buy groceries"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doRequest(t, h, http.MethodPut, "/tasks/1", `{"title":"  "}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		// Stored task is untouched
		rec = doRequest(t, h, http.MethodGet, "/tasks/1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Buy groceries", decodeTask(t, rec)["title"])
	})

	t.Run("rejects wrong completed type", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":"Buy groceries"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doRequest(t, h, http.MethodPut, "/tasks/1", `{"completed":"yes"}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := decodeTask(t, rec)
		fields := body["fields"].(map[string]any)
		assert.Contains(t, fields, "completed")
	})
}

func TestTaskAPI_DeleteTask(t *testing.T) {
	t.Run("missing id returns 404", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodDelete, "/tasks/5", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("repeated delete returns 404", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":"Buy groceries"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doRequest(t, h, http.MethodDelete, "/tasks/1", "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(t, h, http.MethodDelete, "/tasks/1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("deleted id is never reassigned", func(t *testing.T) {
		h, _ := newTestServer(t)

		rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":"first"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doRequest(t, h, http.MethodDelete, "/tasks/1", "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(t, h, http.MethodPost, "/tasks", `{"title":"second"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, float64(2), decodeTask(t, rec)["id"])
	})
}

func TestTaskAPI_RecordsRequestMetrics(t *testing.T) {
	h, metrics := newTestServer(t)

	rec := doRequest(t, h, http.MethodPost, "/tasks", `{"title":"Buy groceries"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	count := metrics.CounterValue("http_requests_total",
		observability.T("method", http.MethodPost),
		observability.T("status", "201"),
	)
	assert.Equal(t, int64(1), count)
}

func TestTaskAPI_SetsRequestIDHeader(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestTaskAPI_Health(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeTask(t, rec)["status"])
}
