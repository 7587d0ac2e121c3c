package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/actionsum/meetnotes/internal/config"
	"github.com/actionsum/meetnotes/internal/daemon"
	"github.com/actionsum/meetnotes/internal/models"
	"github.com/actionsum/meetnotes/internal/monitor"
	"github.com/actionsum/meetnotes/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
)

const statusTimeout = 2 * time.Second

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			dm := daemon.New(cfg.Daemon.PIDFile)
			running, pid, err := dm.IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check daemon status: %w", err)
			}

			out := cmd.OutOrStdout()
			if !running {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}

			fmt.Fprintf(out, "Stopping daemon (PID: %d)...\n", pid)
			if err := dm.Stop(); err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}
			fmt.Fprintln(out, "Daemon stopped successfully")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and the latest dispatch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			running, pid, err := daemon.New(cfg.Daemon.PIDFile).IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check daemon status: %w", err)
			}

			out := cmd.OutOrStdout()
			if running {
				fmt.Fprintf(out, "Status: Running (PID: %d)\n", pid)
			} else {
				fmt.Fprintln(out, "Status: Not running")
			}
			fmt.Fprintf(out, "Meeting Apps: %d configured\n", len(cfg.MeetingApps))
			fmt.Fprintf(out, "Poll Interval: %v\n", cfg.Monitor.PollInterval)

			if running {
				if st, err := fetchMonitorStatus(cfg); err == nil {
					printMonitorStatus(out, st)
				}
			}

			if cfg.Database.Enabled {
				db, repo, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer db.Close()

				latest, err := repo.GetLatestDispatch()
				if err != nil {
					return err
				}
				printLatestDispatch(out, latest, time.Now())
			}
			return nil
		},
	}
}

// fetchMonitorStatus asks a running serve daemon for its live loop state
func fetchMonitorStatus(cfg *config.Configuration) (*monitor.Status, error) {
	agent := fiber.Get(fmt.Sprintf("http://%s:%d/api/status", cfg.Web.Host, cfg.Web.Port))
	agent.Timeout(statusTimeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, errs[0]
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("status endpoint returned %d", code)
	}

	var resp struct {
		Monitor *monitor.Status `json:"monitor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Monitor == nil {
		return nil, fmt.Errorf("status endpoint did not report the monitor")
	}
	return resp.Monitor, nil
}

func printMonitorStatus(out io.Writer, st *monitor.Status) {
	fmt.Fprintf(out, "\nMonitor:\n")
	fmt.Fprintf(out, "  State: %s\n", st.State)
	fmt.Fprintf(out, "  Ticks: %d\n", st.Ticks)
	fmt.Fprintf(out, "  Dispatches: %d (%d failed)\n", st.Dispatches, st.Failures)
	if st.Session != nil {
		fmt.Fprintf(out, "  In meeting: %s since %s\n", st.Session.AppName, st.Session.StartedAt.Format("15:04"))
	}
	if st.LastError != "" {
		fmt.Fprintf(out, "  Last error: %s\n", st.LastError)
	}
}

func printLatestDispatch(out io.Writer, latest *models.DispatchEvent, now time.Time) {
	if latest == nil {
		fmt.Fprintln(out, "Last Dispatch: never")
		return
	}

	outcome := "ok"
	if !latest.Success {
		outcome = "failed at " + latest.Stage
	}
	fmt.Fprintf(out, "Last Dispatch: %s, %s (%s)\n", latest.AppName, utils.FormatAgo(latest.Timestamp, now), outcome)
}
