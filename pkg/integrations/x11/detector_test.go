package x11

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeShell answers commands by their joined command line
type fakeShell map[string]string

func (f fakeShell) run(name string, args ...string) ([]byte, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	out, ok := f[line]
	if !ok {
		return nil, errors.New("exit status 1")
	}
	return []byte(out), nil
}

func allCommands(string) bool { return true }

func TestGetDisplayServer(t *testing.T) {
	if got := NewDetector().GetDisplayServer(); got != "x11" {
		t.Errorf("GetDisplayServer() = %s, want x11", got)
	}
}

func TestParseWMClass(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"zoom", `WM_CLASS(STRING) = "zoom", "zoom"`, "zoom"},
		{"teams", `WM_CLASS(STRING) = "teams-for-linux", "Teams-for-linux"`, "Teams-for-linux"},
		{"single value", `WM_CLASS(STRING) = "Slack"`, "Slack"},
		{"not set", "WM_CLASS:  not found.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseWMClass(tt.output))
		})
	}
}

func TestSplitWMClass(t *testing.T) {
	instance, class := splitWMClass([]byte("zoom\x00Zoom\x00"))
	assert.Equal(t, "zoom", instance)
	assert.Equal(t, "Zoom", class)

	instance, class = splitWMClass([]byte("navigator\x00"))
	assert.Equal(t, "navigator", instance)
	assert.Empty(t, class)
}

func TestFocusedXdotool(t *testing.T) {
	shell := fakeShell{
		"xdotool getactivewindow":        "73400327\n",
		"xdotool getwindowname 73400327": "Zoom Meeting\n",
		"xprop -id 73400327 WM_CLASS":    `WM_CLASS(STRING) = "zoom", "zoom"`,
		"xdotool getwindowpid 73400327":  "4242\n",
		"ps -p 4242 -o comm=":            "zoom\n",
	}
	d := newDetector(shell.run, allCommands)

	info, err := d.focusedXdotool()
	require.NoError(t, err)
	assert.Equal(t, "zoom", info.AppName)
	assert.Equal(t, "Zoom Meeting", info.WindowTitle)
	assert.Equal(t, "zoom", info.ProcessName)
	assert.Equal(t, "x11", info.DisplayServer)
}

func TestFocusedXdotool_ProcessNameFallback(t *testing.T) {
	shell := fakeShell{
		"xdotool getactivewindow": "1\n",
		"xdotool getwindowname 1": "Webex\n",
		"xdotool getwindowpid 1":  "99\n",
		"ps -p 99 -o comm=":       "CiscoCollabHost\n",
	}
	d := newDetector(shell.run, func(cmd string) bool { return cmd != "xprop" })

	info, err := d.focusedXdotool()
	require.NoError(t, err)
	assert.Equal(t, "CiscoCollabHost", info.AppName)
}

func TestFocusedXdotool_NoActiveWindow(t *testing.T) {
	d := newDetector(fakeShell{}.run, allCommands)

	_, err := d.focusedXdotool()
	assert.ErrorContains(t, err, "failed to get active x11 window ID")
}

func TestGetIdleInfo(t *testing.T) {
	shell := fakeShell{
		"xprintidle":      "600500\n",
		"pgrep -x i3lock": "777\n",
	}
	d := newDetector(shell.run, allCommands)

	idle, err := d.GetIdleInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(600), idle.IdleTime)
	assert.True(t, idle.IsIdle)
	assert.True(t, idle.IsLocked)

	d = newDetector(fakeShell{}.run, func(string) bool { return false })
	idle, err = d.GetIdleInfo()
	require.NoError(t, err)
	assert.Zero(t, idle.IdleTime)
	assert.False(t, idle.IsLocked)
}

func TestGetFocusedWindow(t *testing.T) {
	detector := NewDetector()
	defer detector.Close()

	if !detector.IsAvailable() {
		t.Skip("X11 detector not available on this system")
	}

	windowInfo, err := detector.GetFocusedWindow()
	if err != nil {
		t.Logf("GetFocusedWindow() error (may be expected): %v", err)
		return
	}

	t.Logf("App Name: %s", windowInfo.AppName)
	t.Logf("Window Title: %s", windowInfo.WindowTitle)
	if windowInfo.DisplayServer != "x11" {
		t.Errorf("DisplayServer = %s, want x11", windowInfo.DisplayServer)
	}
}
