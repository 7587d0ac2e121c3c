package window

import "strings"

// WindowInfo represents information about the currently focused window
type WindowInfo struct {
	AppName       string
	WindowTitle   string
	ProcessName   string
	DisplayServer string // "x11", "wayland", "darwin", "windows" or "static"
}

// IdleInfo represents system idle/lock state
type IdleInfo struct {
	IsIdle   bool
	IsLocked bool
	IdleTime int64 // Idle time in seconds
}

// Detector is the interface that all window detection implementations must satisfy
type Detector interface {
	// GetFocusedWindow returns information about the currently focused window
	GetFocusedWindow() (*WindowInfo, error)

	// GetIdleInfo returns information about system idle/lock state
	GetIdleInfo() (*IdleInfo, error)

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the windowing system the detector talks to
	GetDisplayServer() string

	// Close cleans up any resources used by the detector
	Close() error
}

// ForegroundApp returns the name of the application that currently has
// focus. The name is trimmed of surrounding whitespace, since command based
// detectors report it with a trailing newline, so every match mode, exact
// included, compares "Zoom " and "Zoom\n" as "Zoom". Inner whitespace and
// case are left as reported. A detection failure or a blank name reports
// false; neither is an error for callers, who simply skip the tick.
func ForegroundApp(d Detector) (string, bool) {
	info, err := d.GetFocusedWindow()
	if err != nil || info == nil {
		return "", false
	}

	name := strings.TrimSpace(info.AppName)
	if name == "" {
		return "", false
	}
	return name, true
}
