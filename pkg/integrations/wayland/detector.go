package wayland

import (
	"fmt"
	"os"
	"strings"

	"github.com/actionsum/meetnotes/pkg/utils"
	"github.com/actionsum/meetnotes/pkg/window"
)

var lockers = []string{
	"swaylock",
	"waylock",
	"gtklock",
	"hyprlock",
	"gnome-screensaver-dialog",
}

// Detector implements window.Detector for Wayland compositors
type Detector struct {
	compositor string

	run    func(name string, args ...string) ([]byte, error)
	exists func(cmd string) bool
	eval   func(script string) (string, error)
	locked func() (bool, error)
}

// NewDetector creates a new Wayland detector for the running compositor
func NewDetector() *Detector {
	return &Detector{
		compositor: detectCompositor(os.Getenv),
		run:        utils.CommandOutput,
		exists:     utils.CommandExists,
		eval:       shellEval,
		locked:     sessionLocked,
	}
}

// Compositor returns the detected compositor name
func (d *Detector) Compositor() string {
	return d.compositor
}

// IsAvailable checks if the compositor can be queried
func (d *Detector) IsAvailable() bool {
	switch d.compositor {
	case CompositorSway:
		return d.exists("swaymsg")
	case CompositorHyprland:
		return d.exists("hyprctl")
	case CompositorGnome:
		return true
	case CompositorKDE:
		return d.exists("kdotool")
	default:
		return false
	}
}

// GetDisplayServer returns "wayland"
func (d *Detector) GetDisplayServer() string {
	return "wayland"
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	var (
		app *focusedApp
		err error
	)

	switch d.compositor {
	case CompositorSway:
		app, err = d.focusedSway()
	case CompositorHyprland:
		app, err = d.focusedHyprland()
	case CompositorGnome:
		app, err = d.focusedGnome()
	case CompositorKDE:
		app, err = d.focusedKDE()
	default:
		return nil, fmt.Errorf("unsupported wayland compositor: %s", d.compositor)
	}
	if err != nil {
		return nil, err
	}

	processName := ""
	if app.pid != "" {
		processName = d.processName(app.pid)
	}

	return &window.WindowInfo{
		AppName:       app.app,
		WindowTitle:   app.title,
		ProcessName:   processName,
		DisplayServer: "wayland",
	}, nil
}

func (d *Detector) focusedSway() (*focusedApp, error) {
	out, err := d.run("swaymsg", "-t", "get_tree")
	if err != nil {
		return nil, fmt.Errorf("failed to execute swaymsg: %w", err)
	}
	return parseSwayTree(out)
}

func (d *Detector) focusedHyprland() (*focusedApp, error) {
	out, err := d.run("hyprctl", "activewindow", "-j")
	if err != nil {
		return nil, fmt.Errorf("failed to execute hyprctl: %w", err)
	}
	return parseHyprlandWindow(out)
}

func (d *Detector) focusedGnome() (*focusedApp, error) {
	out, err := d.eval(gnomeScript)
	if err != nil {
		return nil, err
	}
	return parseGnomeWindow(out)
}

func (d *Detector) focusedKDE() (*focusedApp, error) {
	out, err := d.run("kdotool", "getactivewindow", "getwindowclassname")
	if err != nil {
		return nil, fmt.Errorf("failed to query KDE window: %w", err)
	}
	app := &focusedApp{app: strings.TrimSpace(string(out))}

	if out, err := d.run("kdotool", "getactivewindow", "getwindowname"); err == nil {
		app.title = strings.TrimSpace(string(out))
	}
	return app, nil
}

func (d *Detector) processName(pid string) string {
	out, err := d.run("ps", "-p", pid, "-o", "comm=")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// GetIdleInfo returns lock information. Wayland exposes no portable idle
// counter, so IdleTime stays zero.
func (d *Detector) GetIdleInfo() (*window.IdleInfo, error) {
	return &window.IdleInfo{IsLocked: d.screenLocked()}, nil
}

func (d *Detector) screenLocked() bool {
	if locked, err := d.locked(); err == nil {
		return locked
	}

	for _, locker := range lockers {
		if _, err := d.run("pgrep", "-x", locker); err == nil {
			return true
		}
	}
	return false
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
