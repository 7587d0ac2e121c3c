package cli

import (
	"fmt"

	"github.com/actionsum/meetnotes/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
				return nil
			},
		},
		&cobra.Command{
			Use:   "add-app <name>",
			Short: "Add an application to meetingApps",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				changed, err := config.AddMeetingApp(configPath(cmd), args[0])
				if err != nil {
					return err
				}
				if changed {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %q to meetingApps\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%q is already in meetingApps\n", args[0])
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove-app <name>",
			Short: "Remove an application from meetingApps",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				changed, err := config.RemoveMeetingApp(configPath(cmd), args[0])
				if err != nil {
					return err
				}
				if changed {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from meetingApps\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%q is not in meetingApps\n", args[0])
				}
				return nil
			},
		},
	)

	return cmd
}
