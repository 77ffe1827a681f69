// Package api provides the HTTP API for the taskhive service.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskhive/taskhive/pkg/observability"
)

// Server is the HTTP API server for the task service.
type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	handler *TaskHandler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new task API server. The middleware chain is explicit:
// every request carries a request id, is access-logged and measured, and a
// panicking handler is converted to a 500 instead of killing the process.
func NewServer(cfg ServerConfig, handler *TaskHandler, logger *slog.Logger, metrics observability.Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	mux := http.NewServeMux()

	s := &Server{
		mux:     mux,
		logger:  logger,
		handler: handler,
	}

	// Register routes
	s.registerRoutes()

	s.server = &http.Server{
		Addr: cfg.Addr,
		Handler: Chain(mux,
			RequestID(),
			AccessLog(logger),
			RecordMetrics(metrics),
			RecoverPanics(logger),
		),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	// Health check
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Task resource
	s.mux.HandleFunc("GET /tasks", s.handler.ListTasks)
	s.mux.HandleFunc("POST /tasks", s.handler.CreateTask)
	s.mux.HandleFunc("GET /tasks/{id}", s.handler.GetTask)
	s.mux.HandleFunc("PUT /tasks/{id}", s.handler.UpdateTask)
	s.mux.HandleFunc("DELETE /tasks/{id}", s.handler.DeleteTask)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler returns the server's root handler including the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting task API server",
		"addr", s.server.Addr,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down task API server")
	return s.server.Shutdown(ctx)
}

// errorResponse is the wire shape of every error body.
type errorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Log error but can't do much at this point
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Message: message,
	})
}

// writeValidationError writes a 422 response listing the offending fields.
func writeValidationError(w http.ResponseWriter, message string, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:   http.StatusText(http.StatusUnprocessableEntity),
		Code:    "validation_failed",
		Message: message,
		Fields:  fields,
	})
}
