package windows

import (
	"path/filepath"
	"strings"

	"github.com/actionsum/meetnotes/pkg/window"
)

const idleThreshold = 300

// Detector implements window.Detector using the Win32 API
type Detector struct{}

// NewDetector creates a new Windows detector
func NewDetector() *Detector {
	return &Detector{}
}

// GetDisplayServer returns "windows"
func (d *Detector) GetDisplayServer() string {
	return "windows"
}

// GetFocusedWindow returns the foreground window and its owning executable
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	title, image, err := foreground()
	if err != nil {
		return nil, err
	}

	appName := appNameFromImage(image)
	if appName == "" {
		appName = title
	}

	return &window.WindowInfo{
		AppName:       appName,
		WindowTitle:   title,
		ProcessName:   filepath.Base(image),
		DisplayServer: "windows",
	}, nil
}

// GetIdleInfo returns the time since the last keyboard or mouse input
func (d *Detector) GetIdleInfo() (*window.IdleInfo, error) {
	idleTime, err := idleSeconds()
	if err != nil {
		return nil, err
	}
	return &window.IdleInfo{
		IsIdle:   idleTime > idleThreshold,
		IdleTime: idleTime,
	}, nil
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}

// appNameFromImage turns C:\Program Files\Zoom\bin\Zoom.exe into Zoom
func appNameFromImage(image string) string {
	if image == "" {
		return ""
	}
	base := image[strings.LastIndexAny(image, `\/`)+1:]
	return strings.TrimSuffix(base, filepath.Ext(base))
}
