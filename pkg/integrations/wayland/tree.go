package wayland

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// swayNode is the subset of a swaymsg get_tree node we read
type swayNode struct {
	Name             string     `json:"name"`
	Focused          bool       `json:"focused"`
	AppID            string     `json:"app_id"`
	PID              int        `json:"pid"`
	Nodes            []swayNode `json:"nodes"`
	FloatingNodes    []swayNode `json:"floating_nodes"`
	WindowProperties struct {
		Class string `json:"class"`
	} `json:"window_properties"`
}

// hyprWindow is the subset of hyprctl activewindow -j we read
type hyprWindow struct {
	Class        string `json:"class"`
	InitialClass string `json:"initialClass"`
	Title        string `json:"title"`
	PID          int    `json:"pid"`
}

// focusedApp is the result of parsing a compositor's window query
type focusedApp struct {
	app   string
	title string
	pid   string
}

// parseSwayTree walks the tree for the focused leaf. Native Wayland clients
// carry app_id, XWayland clients only window_properties.class.
func parseSwayTree(data []byte) (*focusedApp, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse sway tree: %w", err)
	}

	node := findFocused(&root)
	if node == nil {
		return nil, fmt.Errorf("no focused window in sway tree")
	}

	app := node.AppID
	if app == "" {
		app = node.WindowProperties.Class
	}
	return &focusedApp{app: app, title: node.Name, pid: pidString(node.PID)}, nil
}

func findFocused(n *swayNode) *swayNode {
	if n.Focused && (n.AppID != "" || n.WindowProperties.Class != "" || n.PID != 0) {
		return n
	}
	for i := range n.Nodes {
		if found := findFocused(&n.Nodes[i]); found != nil {
			return found
		}
	}
	for i := range n.FloatingNodes {
		if found := findFocused(&n.FloatingNodes[i]); found != nil {
			return found
		}
	}
	return nil
}

// parseHyprlandWindow reads hyprctl activewindow -j; an empty desktop
// prints {} which yields an empty app
func parseHyprlandWindow(data []byte) (*focusedApp, error) {
	var w hyprWindow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}

	app := w.Class
	if app == "" {
		app = w.InitialClass
	}
	return &focusedApp{app: app, title: w.Title, pid: pidString(w.PID)}, nil
}

// gnomeWindow is the JSON object produced by gnomeScript
type gnomeWindow struct {
	WMClass string `json:"wm_class"`
	Title   string `json:"title"`
	PID     int    `json:"pid"`
}

func parseGnomeWindow(out string) (*focusedApp, error) {
	if out == "" || out == "null" {
		return nil, fmt.Errorf("gnome shell reported no focused window")
	}

	var w gnomeWindow
	if err := json.Unmarshal([]byte(out), &w); err != nil {
		return nil, fmt.Errorf("failed to parse gnome shell reply: %w", err)
	}
	return &focusedApp{app: w.WMClass, title: w.Title, pid: pidString(w.PID)}, nil
}

func pidString(pid int) string {
	if pid <= 0 {
		return ""
	}
	return strconv.Itoa(pid)
}
