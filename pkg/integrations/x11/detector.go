package x11

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/actionsum/meetnotes/pkg/utils"
	"github.com/actionsum/meetnotes/pkg/window"
)

const idleThreshold = 300

var lockers = []string{
	"gnome-screensaver-dialog",
	"kscreenlocker",
	"i3lock",
	"slock",
	"xscreensaver",
	"xsecurelock",
}

// Detector implements window.Detector for X11
type Detector struct {
	hasXdotool bool
	hasXprop   bool

	run    func(name string, args ...string) ([]byte, error)
	exists func(cmd string) bool

	mu     sync.Mutex
	native *client
}

// NewDetector creates a new X11 detector
func NewDetector() *Detector {
	return newDetector(utils.CommandOutput, utils.CommandExists)
}

func newDetector(run func(string, ...string) ([]byte, error), exists func(string) bool) *Detector {
	return &Detector{
		hasXdotool: exists("xdotool"),
		hasXprop:   exists("xprop"),
		run:        run,
		exists:     exists,
	}
}

// IsAvailable reports whether an X display is reachable
func (d *Detector) IsAvailable() bool {
	return os.Getenv("DISPLAY") != "" || d.hasXdotool
}

// GetDisplayServer returns "x11"
func (d *Detector) GetDisplayServer() string {
	return "x11"
}

// GetFocusedWindow returns information about the currently focused window.
// The X server is queried directly; xdotool is the fallback.
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	if info, err := d.focusedNative(); err == nil {
		return info, nil
	}
	if d.hasXdotool {
		return d.focusedXdotool()
	}
	return nil, fmt.Errorf("no X11 connection and xdotool is not installed")
}

func (d *Detector) focusedNative() (*window.WindowInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.native == nil {
		c, err := newClient()
		if err != nil {
			return nil, err
		}
		d.native = c
	}

	fw, err := d.native.focused()
	if err != nil {
		// The connection may have died with the X server; reconnect next time.
		d.native.close()
		d.native = nil
		return nil, err
	}

	appName := fw.class
	if appName == "" {
		appName = fw.instance
	}
	processName := ""
	if fw.pid != 0 {
		processName = d.processName(strconv.FormatUint(uint64(fw.pid), 10))
	}
	if appName == "" {
		appName = processName
	}

	return &window.WindowInfo{
		AppName:       appName,
		WindowTitle:   fw.title,
		ProcessName:   processName,
		DisplayServer: "x11",
	}, nil
}

// focusedXdotool uses xdotool and xprop to get focused window info
func (d *Detector) focusedXdotool() (*window.WindowInfo, error) {
	out, err := d.run("xdotool", "getactivewindow")
	if err != nil {
		return nil, fmt.Errorf("failed to get active x11 window ID: %w", err)
	}
	windowID := strings.TrimSpace(string(out))

	out, err = d.run("xdotool", "getwindowname", windowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get window name: %w", err)
	}
	windowTitle := strings.TrimSpace(string(out))

	// WM_CLASS works for Flatpak apps, where the PID is sandboxed
	appName := ""
	if d.hasXprop {
		if out, err := d.run("xprop", "-id", windowID, "WM_CLASS"); err == nil {
			appName = parseWMClass(string(out))
		}
	}

	processName := ""
	if out, err := d.run("xdotool", "getwindowpid", windowID); err == nil {
		processName = d.processName(strings.TrimSpace(string(out)))
	}
	if appName == "" {
		appName = processName
	}

	return &window.WindowInfo{
		AppName:       appName,
		WindowTitle:   windowTitle,
		ProcessName:   processName,
		DisplayServer: "x11",
	}, nil
}

func (d *Detector) processName(pid string) string {
	out, err := d.run("ps", "-p", pid, "-o", "comm=")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// parseWMClass extracts the class name from xprop's WM_CLASS output,
// e.g. `WM_CLASS(STRING) = "zoom", "zoom"`
func parseWMClass(output string) string {
	_, classInfo, found := strings.Cut(output, "=")
	if !found {
		return ""
	}

	classes := strings.Split(classInfo, ",")
	return strings.Trim(strings.TrimSpace(classes[len(classes)-1]), "\" ")
}

// GetIdleInfo returns system idle/lock information
func (d *Detector) GetIdleInfo() (*window.IdleInfo, error) {
	idleTime := d.idleTime()
	return &window.IdleInfo{
		IsIdle:   idleTime > idleThreshold,
		IsLocked: d.screenLocked(),
		IdleTime: idleTime,
	}, nil
}

// idleTime returns the system idle time in seconds, zero when unknown
func (d *Detector) idleTime() int64 {
	if !d.exists("xprintidle") {
		return 0
	}

	out, err := d.run("xprintidle")
	if err != nil {
		return 0
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0
	}
	return ms / 1000
}

func (d *Detector) screenLocked() bool {
	for _, locker := range lockers {
		if _, err := d.run("pgrep", "-x", locker); err == nil {
			return true
		}
	}
	return false
}

// Close releases the X connection
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.native != nil {
		d.native.close()
		d.native = nil
	}
	return nil
}
