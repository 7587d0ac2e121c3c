package cli

import (
	"fmt"
	"strings"

	"github.com/actionsum/meetnotes/internal/matcher"
	"github.com/actionsum/meetnotes/pkg/detector"

	"github.com/spf13/cobra"
)

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Print the focused application and whether it is a meeting app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			m, err := matcher.New(cfg.Monitor.MatchMode, cfg.MeetingApps)
			if err != nil {
				return err
			}

			det, err := detector.New(cfg.Detector.Backend, cfg.Detector.StaticApp)
			if err != nil {
				return fmt.Errorf("failed to initialize window detector: %w", err)
			}
			defer det.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Display: %s\n", det.GetDisplayServer())

			info, err := det.GetFocusedWindow()
			if err != nil {
				fmt.Fprintf(out, "No focused application detected: %v\n", err)
				return nil
			}
			app := ""
			if info != nil {
				app = strings.TrimSpace(info.AppName)
			}
			if app == "" {
				fmt.Fprintln(out, "No focused application detected")
				return nil
			}

			fmt.Fprintf(out, "App: %s\n", app)
			fmt.Fprintf(out, "Title: %s\n", info.WindowTitle)
			if info.ProcessName != "" {
				fmt.Fprintf(out, "Process: %s\n", info.ProcessName)
			}

			if entry, matched := m.Match(app); matched {
				fmt.Fprintf(out, "Meeting app: yes (matches %q, %s mode)\n", entry, m.Mode())
			} else {
				fmt.Fprintf(out, "Meeting app: no (%s mode)\n", m.Mode())
			}

			if idle, err := det.GetIdleInfo(); err == nil && idle != nil {
				fmt.Fprintf(out, "Locked: %v\n", idle.IsLocked)
				if idle.IdleTime > 0 {
					fmt.Fprintf(out, "Idle Time: %ds\n", idle.IdleTime)
				}
			}
			return nil
		},
	}
}
