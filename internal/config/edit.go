package config

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
)

// AddMeetingApp appends app to the meetingApps list of the file at path.
// It reports false when the app is already listed. The file must load cleanly.
func AddMeetingApp(path, app string) (bool, error) {
	app = strings.TrimSpace(app)
	if app == "" {
		return false, fmt.Errorf("app name cannot be empty")
	}

	return editMeetingApps(path, func(apps []string) ([]string, bool) {
		if lo.Contains(apps, app) {
			return apps, false
		}
		return append(apps, app), true
	})
}

// RemoveMeetingApp drops every occurrence of app from the meetingApps list.
// It reports false when the app was not listed.
func RemoveMeetingApp(path, app string) (bool, error) {
	app = strings.TrimSpace(app)

	return editMeetingApps(path, func(apps []string) ([]string, bool) {
		kept := lo.Without(apps, app)
		return kept, len(kept) != len(apps)
	})
}

func editMeetingApps(path string, edit func([]string) ([]string, bool)) (bool, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg, err := Load(path)
	if err != nil {
		return false, err
	}

	updated, changed := edit(append([]string{}, cfg.MeetingApps...))
	if !changed {
		return false, nil
	}

	// Rewrite from the raw file so defaults and environment overrides are not
	// persisted into it.
	fk := koanf.New(".")
	if err := fk.Load(file.Provider(path), json.Parser()); err != nil {
		return false, &ConfigError{Path: path, Err: err}
	}
	if err := fk.Set("meetingApps", updated); err != nil {
		return false, &ConfigError{Path: path, Field: "meetingApps", Err: err}
	}

	raw, err := fk.Marshal(json.Parser())
	if err != nil {
		return false, fmt.Errorf("failed to encode config: %w", err)
	}

	var out bytes.Buffer
	if err := stdjson.Indent(&out, raw, "", "    "); err != nil {
		return false, fmt.Errorf("failed to format config: %w", err)
	}
	out.WriteByte('\n')

	info, err := os.Stat(path)
	if err != nil {
		return false, &ConfigError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, out.Bytes(), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}

	return true, nil
}
