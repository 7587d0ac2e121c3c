package wayland

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const gnomeScript = `
let fw = global.display.get_focus_window();
fw ? JSON.stringify({
	wm_class: fw.get_wm_class() || '',
	title: fw.get_title() || '',
	pid: fw.get_pid() || 0
}) : 'null';
`

// shellEval runs a script in GNOME Shell. Shell.Eval only answers when
// the shell runs in unsafe mode or with a helper extension.
func shellEval(script string) (string, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return "", fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	var (
		ok  bool
		out string
	)
	obj := conn.Object("org.gnome.Shell", "/org/gnome/Shell")
	if err := obj.Call("org.gnome.Shell.Eval", 0, script).Store(&ok, &out); err != nil {
		return "", fmt.Errorf("gnome shell eval failed: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("gnome shell eval refused: %s", out)
	}
	return out, nil
}

// sessionLocked reads LockedHint of the caller's logind session
func sessionLocked() (bool, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return false, err
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.login1", "/org/freedesktop/login1/session/auto")
	v, err := obj.GetProperty("org.freedesktop.login1.Session.LockedHint")
	if err != nil {
		return false, err
	}

	locked, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("unexpected LockedHint type %s", v.Signature())
	}
	return locked, nil
}
