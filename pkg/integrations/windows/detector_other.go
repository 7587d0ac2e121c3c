//go:build !windows

package windows

import "errors"

var errUnsupported = errors.New("windows detector is only available on Windows")

// IsAvailable reports false outside Windows
func (d *Detector) IsAvailable() bool {
	return false
}

func foreground() (string, string, error) {
	return "", "", errUnsupported
}

func idleSeconds() (int64, error) {
	return 0, errUnsupported
}
