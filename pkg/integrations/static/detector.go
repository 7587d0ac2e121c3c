package static

import "github.com/actionsum/meetnotes/pkg/window"

// Detector always reports the same application. It stands in for a real
// windowing API on hosts without one, and in tests.
type Detector struct {
	App string
}

// NewDetector creates a detector that always reports app
func NewDetector(app string) *Detector {
	return &Detector{App: app}
}

func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	return &window.WindowInfo{
		AppName:       d.App,
		WindowTitle:   d.App,
		ProcessName:   d.App,
		DisplayServer: "static",
	}, nil
}

func (d *Detector) GetIdleInfo() (*window.IdleInfo, error) {
	return &window.IdleInfo{}, nil
}

func (d *Detector) IsAvailable() bool {
	return true
}

func (d *Detector) GetDisplayServer() string {
	return "static"
}

func (d *Detector) Close() error {
	return nil
}
