package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskhive/taskhive/adapter/api"
	"github.com/taskhive/taskhive/internal/tasks/application/commands"
	"github.com/taskhive/taskhive/internal/tasks/application/queries"
	"github.com/taskhive/taskhive/internal/tasks/infrastructure/persistence"
	"github.com/taskhive/taskhive/pkg/config"
	"github.com/taskhive/taskhive/pkg/observability"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the task API server",
	Long: `Start the HTTP server exposing the task API.

The server stops gracefully on SIGINT or SIGTERM, draining in-flight
requests before exiting.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides TASKHIVE_HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	if verbose {
		logCfg.Level = observability.LogLevelDebug
	}
	if cfg.LogFormat != "" {
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	log := observability.NewLogger(logCfg)
	SetLogger(log)

	addr := cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	repo := persistence.NewMemoryTaskRepository()
	handler := api.NewTaskHandler(api.TaskHandlerConfig{
		CreateTask: commands.NewCreateTaskHandler(repo),
		UpdateTask: commands.NewUpdateTaskHandler(repo),
		DeleteTask: commands.NewDeleteTaskHandler(repo),
		GetTask:    queries.NewGetTaskHandler(repo),
		ListTasks:  queries.NewListTasksHandler(repo),
		Logger:     log,
	})

	server := api.NewServer(api.ServerConfig{
		Addr:         addr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, handler, log, observability.NewInMemoryMetrics())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
