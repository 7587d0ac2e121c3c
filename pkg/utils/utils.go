package utils

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// FormatRoundedUnit renders a duration in seconds using its largest whole unit
func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%dh", seconds/3600)
	}
	return fmt.Sprintf("%dm", seconds/60)
}

// FormatAgo renders how long before now t was, e.g. "5m ago"
func FormatAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return FormatRoundedUnit(int64(now.Sub(t).Seconds())) + " ago"
}

// commandTimeout bounds helper processes spawned by the detectors
const commandTimeout = 5 * time.Second

// CommandOutput runs name with args and returns its standard output
func CommandOutput(name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return exec.CommandContext(ctx, name, args...).Output()
}

// CommandExists checks if a command is available in PATH
func CommandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
