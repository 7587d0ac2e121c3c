// Package cli provides the cobra command tree of the meetnotes binary.
package cli

import (
	"errors"
	"fmt"

	"github.com/actionsum/meetnotes/internal/config"
	"github.com/spf13/cobra"
)

// Exit codes returned by the binary
const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitConfigError = 2
)

// NewRootCmd builds the full command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "meetnotes",
		Short: "Open a meeting note whenever a meeting app has focus",
		Long: `meetnotes watches the focused application and, while it is one of the
configured meeting apps, shows a notification and opens a new note in your
note-taking app through a deep link (obsidian://new by default).`,
		Example: `  # Watch in the foreground with ./config.json
  meetnotes run

  # Run detached, with the JSON API
  meetnotes serve

  # Add an app to the allow-list
  meetnotes config add-app "Microsoft Teams"

  # Meeting time this week
  meetnotes report week`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", config.DefaultPath, "Path to config file")

	root.AddCommand(
		newRunCmd(),
		newStartCmd(),
		newServeCmd(),
		newStopCmd(),
		newStatusCmd(),
		newDetectCmd(),
		newReportCmd(),
		newHistoryCmd(),
		newClearCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

// Execute runs the command tree and maps the outcome to an exit code
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// ExitCode maps an error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	return ExitFailure
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	return config.Load(configPath(cmd))
}
