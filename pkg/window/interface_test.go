package window

import (
	"errors"
	"testing"
)

type MockDetector struct {
	windowInfo    *WindowInfo
	windowErr     error
	idleInfo      *IdleInfo
	isAvailable   bool
	displayServer string
	closeError    error
}

func (m *MockDetector) GetFocusedWindow() (*WindowInfo, error) {
	return m.windowInfo, m.windowErr
}

func (m *MockDetector) GetIdleInfo() (*IdleInfo, error) {
	return m.idleInfo, nil
}

func (m *MockDetector) IsAvailable() bool {
	return m.isAvailable
}

func (m *MockDetector) GetDisplayServer() string {
	return m.displayServer
}

func (m *MockDetector) Close() error {
	return m.closeError
}

func TestMockDetector(t *testing.T) {
	var _ Detector = (*MockDetector)(nil)
}

func TestForegroundApp(t *testing.T) {
	tests := []struct {
		name     string
		detector *MockDetector
		wantApp  string
		wantOK   bool
	}{
		{
			name: "Focused app",
			detector: &MockDetector{
				windowInfo: &WindowInfo{AppName: "Zoom", WindowTitle: "Zoom Meeting", DisplayServer: "x11"},
			},
			wantApp: "Zoom",
			wantOK:  true,
		},
		{
			name: "Surrounding whitespace trimmed",
			detector: &MockDetector{
				windowInfo: &WindowInfo{AppName: " Microsoft Teams\n"},
			},
			wantApp: "Microsoft Teams",
			wantOK:  true,
		},
		{
			name: "Trailing space reaches exact matching as the bare name",
			detector: &MockDetector{
				windowInfo: &WindowInfo{AppName: "Zoom \n"},
			},
			wantApp: "Zoom",
			wantOK:  true,
		},
		{
			name: "Inner whitespace and case kept",
			detector: &MockDetector{
				windowInfo: &WindowInfo{AppName: "Slack  Huddle"},
			},
			wantApp: "Slack  Huddle",
			wantOK:  true,
		},
		{
			name: "Whitespace only name",
			detector: &MockDetector{
				windowInfo: &WindowInfo{AppName: " \t\n"},
			},
			wantOK: false,
		},
		{
			name: "Detection error",
			detector: &MockDetector{
				windowErr: errors.New("no active window found"),
			},
			wantOK: false,
		},
		{
			name:     "No window info",
			detector: &MockDetector{},
			wantOK:   false,
		},
		{
			name: "Empty app name",
			detector: &MockDetector{
				windowInfo: &WindowInfo{AppName: "", WindowTitle: "Desktop"},
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, ok := ForegroundApp(tt.detector)
			if ok != tt.wantOK {
				t.Errorf("ForegroundApp() ok = %v, want %v", ok, tt.wantOK)
			}
			if app != tt.wantApp {
				t.Errorf("ForegroundApp() app = %q, want %q", app, tt.wantApp)
			}
		})
	}
}

func TestIdleInfo(t *testing.T) {
	tests := []struct {
		name     string
		info     IdleInfo
		wantSkip bool
	}{
		{name: "Active", info: IdleInfo{}, wantSkip: false},
		{name: "Idle only", info: IdleInfo{IsIdle: true, IdleTime: 600}, wantSkip: false},
		{name: "Locked", info: IdleInfo{IsLocked: true}, wantSkip: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.info.IsLocked != tt.wantSkip {
				t.Errorf("IsLocked = %v, want %v", tt.info.IsLocked, tt.wantSkip)
			}
			if tt.info.IdleTime < 0 {
				t.Errorf("IdleTime is negative: %d", tt.info.IdleTime)
			}
		})
	}
}

func BenchmarkForegroundApp(b *testing.B) {
	mock := &MockDetector{windowInfo: &WindowInfo{AppName: "Zoom"}}
	for i := 0; i < b.N; i++ {
		_, _ = ForegroundApp(mock)
	}
}

func ExampleForegroundApp() {
	mock := &MockDetector{
		windowInfo: &WindowInfo{
			AppName:       "Zoom",
			WindowTitle:   "Zoom Meeting",
			ProcessName:   "zoom",
			DisplayServer: "x11",
		},
		isAvailable:   true,
		displayServer: "x11",
	}

	if app, ok := ForegroundApp(mock); ok {
		println("Current app:", app)
	}
}
