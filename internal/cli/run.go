package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/actionsum/meetnotes/internal/config"
	"github.com/actionsum/meetnotes/internal/daemon"
	"github.com/actionsum/meetnotes/internal/logging"
	"github.com/actionsum/meetnotes/internal/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type runOptions struct {
	web  bool
	port int
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch the focused application in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return runMonitor(cmd.Context(), cfg, logger, runOptions{})
		},
	}
}

func newStartCmd() *cobra.Command {
	return newDaemonCmd("start", "Start the monitor as a background daemon", false)
}

func newServeCmd() *cobra.Command {
	cmd := newDaemonCmd("serve", "Start the daemon with the web API", true)
	cmd.Flags().IntP("port", "p", 0, "Web API port (overrides web.port)")
	return cmd
}

func newDaemonCmd(use, short string, withWeb bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			opts := runOptions{web: withWeb}
			if withWeb {
				opts.port, _ = cmd.Flags().GetInt("port")
			}

			dm := daemon.New(cfg.Daemon.PIDFile)
			if daemon.IsChild() {
				return runChild(cmd.Context(), cfg, dm, opts)
			}

			running, pid, err := dm.IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check daemon status: %w", err)
			}
			if running {
				return fmt.Errorf("daemon is already running (PID: %d)", pid)
			}

			pid, err = daemon.Spawn(os.Args[1:])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon started successfully (PID: %d)\n", pid)
			if withWeb {
				port := cfg.Web.Port
				if opts.port > 0 {
					port = opts.port
				}
				fmt.Fprintf(out, "Web API available at: http://%s:%d\n", cfg.Web.Host, port)
			}
			fmt.Fprintf(out, "Logs: %s\n", daemonLogFile(cfg))
			return nil
		},
	}
}

func daemonLogFile(cfg *config.Configuration) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return logging.DaemonLogPath()
}

// runChild is the detached side of start and serve
func runChild(ctx context.Context, cfg *config.Configuration, dm *daemon.Daemon, opts runOptions) error {
	logger, err := logging.New(cfg.Log.Level, daemonLogFile(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := dm.WritePID(); err != nil {
		logger.Errorf("Failed to write PID file: %v", err)
		return err
	}
	defer func() {
		if err := dm.RemovePID(); err != nil {
			logger.Warnf("Failed to remove PID file: %v", err)
		}
	}()

	if err := runMonitor(ctx, cfg, logger, opts); err != nil {
		logger.Errorf("Monitor exited: %v", err)
		return err
	}
	return nil
}

// runMonitor wires the pipeline and blocks until a signal, ctx, or an
// aborting dispatch failure ends the loop
func runMonitor(ctx context.Context, cfg *config.Configuration, logger *zap.SugaredLogger, opts runOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var server *web.Server
	if opts.web {
		if a.repo == nil {
			return fmt.Errorf("the web API needs history (database.enabled is false)")
		}
		server = web.NewServer(cfg, web.NewHandler(cfg, a.repo, a.monitor, logger), opts.port, logger)
		go func() {
			if err := server.Start(); err != nil {
				logger.Errorf("Web server error: %v", err)
			}
		}()
	}

	logger.Infow("Starting meetnotes",
		"meeting_apps", cfg.MeetingApps,
		"poll_interval", cfg.Monitor.PollInterval,
		"display_server", a.detector.GetDisplayServer(),
		"deep_link", cfg.Dispatch.DeepLink,
	)
	logger.Debugf("%s", cfg.String())

	err = a.monitor.Start(ctx)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if serr := server.Shutdown(shutdownCtx); serr != nil {
			logger.Warnf("Error shutting down web server: %v", serr)
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	logger.Info("Monitor stopped")
	return nil
}
