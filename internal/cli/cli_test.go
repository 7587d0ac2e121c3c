package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/actionsum/meetnotes/internal/config"
	"github.com/actionsum/meetnotes/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a config that detects Zoom and dispatches through
// no-op commands, with all state kept in a temp dir
func writeConfig(t *testing.T, databaseEnabled bool) string {
	t.Helper()

	dir := t.TempDir()
	content := fmt.Sprintf(`{
    "meetingApps": ["Zoom", "Microsoft Teams"],
    "notificationTitle": "Meeting",
    "notificationMessage": "Take notes!",
    "monitor": {"pollInterval": "1s"},
    "detector": {"backend": "static", "staticApp": "Zoom"},
    "dispatch": {
        "notifier": "command",
        "notifierCommand": "true",
        "opener": "command",
        "openerCommand": "true",
        "maxAttempts": 1
    },
    "database": {"enabled": %t, "path": %q},
    "daemon": {"pidFile": %q},
    "log": {"level": "error"}
}`, databaseEnabled, filepath.Join(dir, "meetnotes.db"), filepath.Join(dir, "meetnotes.pid"))

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, context.Background(), "", args...)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(fmt.Errorf("boom")))
	assert.Equal(t, ExitConfigError, ExitCode(fmt.Errorf("wrapped: %w", &config.ConfigError{Path: "config.json"})))
}

func TestMissingConfigFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.json")

	for _, args := range [][]string{
		{"run", "--config", missing},
		{"detect", "--config", missing},
		{"report", "--config", missing},
	} {
		t.Run(args[0], func(t *testing.T) {
			_, err := run(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitConfigError, ExitCode(err))
		})
	}
}

func TestRun_DispatchesForMeetingApp(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses the true command")
	}
	path := writeConfig(t, true)

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	_, err := execute(t, ctx, "", "run", "--config", path)
	require.NoError(t, err)

	out, err := run(t, "history", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Zoom")
	assert.Contains(t, out, "ok")

	out, err = run(t, "report", "day", "--json", "--config", path)
	require.NoError(t, err)

	var report models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.GreaterOrEqual(t, report.TotalDispatches, 1)
	assert.Zero(t, report.TotalFailures)
	assert.Equal(t, 1, report.TotalSessions)
}

func TestDetect(t *testing.T) {
	path := writeConfig(t, false)

	out, err := run(t, "detect", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Display: static")
	assert.Contains(t, out, "App: Zoom")
	assert.Contains(t, out, `Meeting app: yes (matches "Zoom", exact mode)`)
}

func TestConfigCommands(t *testing.T) {
	path := writeConfig(t, false)

	out, err := run(t, "config", "add-app", "Webex", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `Added "Webex"`)

	out, err = run(t, "config", "add-app", "Webex", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "already in meetingApps")

	out, err = run(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Meeting Apps: Zoom, Microsoft Teams, Webex")

	out, err = run(t, "config", "remove-app", "Microsoft Teams", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `Removed "Microsoft Teams"`)

	out, err = run(t, "config", "remove-app", "Skype", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is not in meetingApps")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zoom", "Webex"}, cfg.MeetingApps)
}

func TestHistoryAndReport_DatabaseDisabled(t *testing.T) {
	path := writeConfig(t, false)

	_, err := run(t, "history", "--config", path)
	assert.ErrorContains(t, err, "history is disabled")

	_, err = run(t, "report", "--config", path)
	assert.ErrorContains(t, err, "history is disabled")
}

func TestHistory_Empty(t *testing.T) {
	path := writeConfig(t, true)

	out, err := run(t, "history", "--hours", "2", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No dispatches in the last 2h")

	_, err = run(t, "history", "--hours", "0", "--config", path)
	assert.Error(t, err)

	_, err = run(t, "history", "--hours", "3000000", "--config", path)
	assert.ErrorContains(t, err, "must not exceed")
}

func TestReport_Text(t *testing.T) {
	path := writeConfig(t, true)

	out, err := run(t, "report", "week", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Meeting Report - week")
	assert.Contains(t, out, "No meetings recorded for this period.")

	_, err = run(t, "report", "decade", "--config", path)
	assert.ErrorContains(t, err, "invalid period type")
}

func TestClear(t *testing.T) {
	path := writeConfig(t, true)

	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })

	isTerminal = func() bool { return false }
	_, err := run(t, "clear", "--config", path)
	assert.ErrorContains(t, err, "--yes")

	isTerminal = func() bool { return true }
	out, err := execute(t, context.Background(), "no\n", "clear", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Operation cancelled")

	out, err = execute(t, context.Background(), "yes\n", "clear", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Database cleared successfully")

	out, err = run(t, "clear", "--yes", "--older-than", "720h", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 0 record(s)")
}

func TestStatusAndStop_NotRunning(t *testing.T) {
	path := writeConfig(t, true)

	out, err := run(t, "status", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: Not running")
	assert.Contains(t, out, "Meeting Apps: 2 configured")
	assert.Contains(t, out, "Last Dispatch: never")

	out, err = run(t, "stop", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Daemon is not running")
}

func TestPrintLatestDispatch(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

	var out bytes.Buffer
	printLatestDispatch(&out, &models.DispatchEvent{
		AppName:   "Zoom",
		Timestamp: now.Add(-5 * time.Minute),
		Stage:     "open",
	}, now)
	assert.Equal(t, "Last Dispatch: Zoom, 5m ago (failed at open)\n", out.String())
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "meetnotes version")
}
