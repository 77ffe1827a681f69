// Package cli implements the taskhive command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskhive",
	Short: "Taskhive - in-memory task management service",
	Long: `Taskhive serves a JSON HTTP API for creating, reading, updating and
deleting tasks.

All state lives in process memory: restarting the server starts over
with an empty task list.`,
}

// SetLogger sets the logger used by CLI commands.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
