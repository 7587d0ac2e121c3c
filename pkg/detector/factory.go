package detector

import (
	"fmt"
	"os"
	"runtime"

	"github.com/actionsum/meetnotes/pkg/integrations/darwin"
	"github.com/actionsum/meetnotes/pkg/integrations/hybrid"
	"github.com/actionsum/meetnotes/pkg/integrations/static"
	"github.com/actionsum/meetnotes/pkg/integrations/wayland"
	"github.com/actionsum/meetnotes/pkg/integrations/windows"
	"github.com/actionsum/meetnotes/pkg/integrations/x11"
	"github.com/actionsum/meetnotes/pkg/window"
)

// New builds the detector for backend. "auto" picks by operating system
// and, on Linux, by display server.
func New(backend, staticApp string) (window.Detector, error) {
	switch backend {
	case "static":
		if staticApp == "" {
			return nil, fmt.Errorf("static detector needs an application name")
		}
		return static.NewDetector(staticApp), nil
	case "x11":
		return available(x11.NewDetector())
	case "wayland":
		return available(wayland.NewDetector())
	case "darwin":
		return available(darwin.NewDetector())
	case "windows":
		return available(windows.NewDetector())
	case "auto", "":
		return auto()
	default:
		return nil, fmt.Errorf("unknown detector backend: %s", backend)
	}
}

func available(d window.Detector) (window.Detector, error) {
	if !d.IsAvailable() {
		_ = d.Close()
		return nil, fmt.Errorf("%s detector is not available on this system", d.GetDisplayServer())
	}
	return d, nil
}

func auto() (window.Detector, error) {
	switch runtime.GOOS {
	case "darwin":
		return available(darwin.NewDetector())
	case "windows":
		return available(windows.NewDetector())
	}

	var chain []window.Detector
	switch DetectDisplayServer() {
	case "wayland":
		// XWayland keeps X11 useful as a second choice
		chain = []window.Detector{wayland.NewDetector(), x11.NewDetector()}
	case "x11":
		chain = []window.Detector{x11.NewDetector()}
	default:
		chain = []window.Detector{x11.NewDetector(), wayland.NewDetector()}
	}

	d, err := hybrid.NewDetector(nil, chain...)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DetectDisplayServer names the display server of the current session
func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
