package darwin

import (
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/actionsum/meetnotes/pkg/utils"
	"github.com/actionsum/meetnotes/pkg/window"
)

const idleThreshold = 300

const frontmostScript = `tell application "System Events"
	set proc to first application process whose frontmost is true
	return (name of proc) & "|" & (unix id of proc)
end tell`

var hidIdleRe = regexp.MustCompile(`"HIDIdleTime"\s*=\s*(\d+)`)

// Detector implements window.Detector for macOS using osascript
type Detector struct {
	goos   string
	run    func(name string, args ...string) ([]byte, error)
	exists func(cmd string) bool
}

// NewDetector creates a new macOS detector
func NewDetector() *Detector {
	return &Detector{
		goos:   runtime.GOOS,
		run:    utils.CommandOutput,
		exists: utils.CommandExists,
	}
}

// IsAvailable checks if osascript can be used
func (d *Detector) IsAvailable() bool {
	return d.goos == "darwin" && d.exists("osascript")
}

// GetDisplayServer returns "darwin"
func (d *Detector) GetDisplayServer() string {
	return "darwin"
}

// GetFocusedWindow returns the frontmost application process
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	out, err := d.run("osascript", "-e", frontmostScript)
	if err != nil {
		return nil, fmt.Errorf("failed to query frontmost application: %w", err)
	}

	name, pid, _ := strings.Cut(strings.TrimSpace(string(out)), "|")
	if name == "" {
		return nil, fmt.Errorf("no frontmost application")
	}

	processName := name
	if pid != "" {
		if out, err := d.run("ps", "-p", pid, "-o", "comm="); err == nil {
			if comm := strings.TrimSpace(string(out)); comm != "" {
				processName = comm[strings.LastIndex(comm, "/")+1:]
			}
		}
	}

	return &window.WindowInfo{
		AppName:       name,
		WindowTitle:   name,
		ProcessName:   processName,
		DisplayServer: "darwin",
	}, nil
}

// GetIdleInfo reads the HID idle counter from ioreg
func (d *Detector) GetIdleInfo() (*window.IdleInfo, error) {
	out, err := d.run("ioreg", "-c", "IOHIDSystem", "-d", "4")
	if err != nil {
		return nil, fmt.Errorf("failed to read idle time: %w", err)
	}

	idleTime := parseHIDIdleTime(string(out))
	return &window.IdleInfo{
		IsIdle:   idleTime > idleThreshold,
		IdleTime: idleTime,
	}, nil
}

// parseHIDIdleTime converts the HIDIdleTime nanosecond counter to seconds
func parseHIDIdleTime(output string) int64 {
	m := hidIdleRe.FindStringSubmatch(output)
	if m == nil {
		return 0
	}
	ns, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return ns / 1_000_000_000
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
