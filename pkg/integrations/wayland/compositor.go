package wayland

import "strings"

// Supported compositors
const (
	CompositorSway     = "sway"
	CompositorHyprland = "hyprland"
	CompositorGnome    = "gnome"
	CompositorKDE      = "kde"
	CompositorUnknown  = "unknown"
)

// detectCompositor identifies the compositor from the session environment
func detectCompositor(getenv func(string) string) string {
	if getenv("SWAYSOCK") != "" {
		return CompositorSway
	}
	if getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return CompositorHyprland
	}

	desktop := strings.ToLower(getenv("XDG_CURRENT_DESKTOP") + ":" + getenv("XDG_SESSION_DESKTOP"))
	switch {
	case strings.Contains(desktop, "sway"):
		return CompositorSway
	case strings.Contains(desktop, "hyprland"):
		return CompositorHyprland
	case strings.Contains(desktop, "gnome"), strings.Contains(desktop, "ubuntu"):
		return CompositorGnome
	case strings.Contains(desktop, "kde"), strings.Contains(desktop, "plasma"):
		return CompositorKDE
	}
	return CompositorUnknown
}
