package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_RoundTrip(t *testing.T) {
	tests := map[string]struct {
		content string
		apps    []string
		title   string
		message string
	}{
		"single app": {
			content: `{"meetingApps":["Zoom"],"notificationTitle":"Meeting","notificationMessage":"Take notes!"}`,
			apps:    []string{"Zoom"},
			title:   "Meeting",
			message: "Take notes!",
		},
		"several apps keep file order": {
			content: `{"meetingApps":["Microsoft Teams","Zoom","Slack Huddle"],"notificationTitle":"Heads up","notificationMessage":"Open a note"}`,
			apps:    []string{"Microsoft Teams", "Zoom", "Slack Huddle"},
			title:   "Heads up",
			message: "Open a note",
		},
		"duplicates are preserved verbatim": {
			content: `{"meetingApps":["Zoom","Zoom"],"notificationTitle":"T","notificationMessage":"M"}`,
			apps:    []string{"Zoom", "Zoom"},
			title:   "T",
			message: "M",
		},
		"unicode text": {
			content: `{"meetingApps":["Zoom"],"notificationTitle":"Réunion","notificationMessage":"Prenez des notes ✍"}`,
			apps:    []string{"Zoom"},
			title:   "Réunion",
			message: "Prenez des notes ✍",
		},
		"empty title": {
			content: `{"meetingApps":["Zoom"],"notificationTitle":"","notificationMessage":"Take notes!"}`,
			apps:    []string{"Zoom"},
			title:   "",
			message: "Take notes!",
		},
		"empty list entry": {
			content: `{"meetingApps":["Zoom",""],"notificationTitle":"Meeting","notificationMessage":"Take notes!"}`,
			apps:    []string{"Zoom", ""},
			title:   "Meeting",
			message: "Take notes!",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.apps, cfg.MeetingApps)
			assert.Equal(t, tt.title, cfg.NotificationTitle)
			assert.Equal(t, tt.message, cfg.NotificationMessage)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"meetingApps":["Zoom"],"notificationTitle":"Meeting","notificationMessage":"Take notes!"}`))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Monitor.PollInterval)
	assert.Equal(t, "exact", cfg.Monitor.MatchMode)
	assert.Equal(t, "every-tick", cfg.Monitor.DispatchMode)
	assert.Equal(t, time.Duration(0), cfg.Monitor.Cooldown)
	assert.Equal(t, "abort", cfg.Monitor.OnDispatchFailure)
	assert.Equal(t, "obsidian://new", cfg.Dispatch.DeepLink)
	assert.Equal(t, 1, cfg.Dispatch.MaxAttempts)
	assert.Equal(t, time.Duration(0), cfg.Dispatch.Timeout)
	assert.True(t, cfg.Database.Enabled)
}

func TestLoad_OptionalSections(t *testing.T) {
	content := `{
		"meetingApps": ["Zoom"],
		"notificationTitle": "Meeting",
		"notificationMessage": "Take notes!",
		"monitor": {"pollInterval": "30s", "matchMode": "contains", "cooldown": "2m"},
		"dispatch": {"deepLink": "obsidian://new?vault=work", "maxAttempts": 5},
		"web": {"port": 9090}
	}`

	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Monitor.PollInterval)
	assert.Equal(t, "contains", cfg.Monitor.MatchMode)
	assert.Equal(t, 2*time.Minute, cfg.Monitor.Cooldown)
	assert.Equal(t, "obsidian://new?vault=work", cfg.Dispatch.DeepLink)
	assert.Equal(t, 5, cfg.Dispatch.MaxAttempts)
	assert.Equal(t, 9090, cfg.Web.Port)
	// untouched keys inside a partially specified section keep their defaults
	assert.Equal(t, "every-tick", cfg.Monitor.DispatchMode)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MEETNOTES_POLL_INTERVAL", "20")
	t.Setenv("MEETNOTES_WEB_PORT", "9191")
	t.Setenv("MEETNOTES_DEEP_LINK", "obsidian://daily")

	cfg, err := Load(writeConfig(t, `{"meetingApps":["Zoom"],"notificationTitle":"Meeting","notificationMessage":"Take notes!"}`))
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, cfg.Monitor.PollInterval)
	assert.Equal(t, 9191, cfg.Web.Port)
	assert.Equal(t, "obsidian://daily", cfg.Dispatch.DeepLink)
}

func TestLoad_EnvCannotSupplyRequiredFields(t *testing.T) {
	t.Setenv("MEETNOTES_NOTIFICATIONTITLE", "from env")

	_, err := Load(writeConfig(t, `{"meetingApps":["Zoom"],"notificationMessage":"Take notes!"}`))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "notificationTitle", cfgErr.Field)
}

func TestLoad_MissingRequiredField(t *testing.T) {
	tests := map[string]struct {
		content string
		field   string
	}{
		"no meetingApps": {
			content: `{"notificationTitle":"Meeting","notificationMessage":"Take notes!"}`,
			field:   "meetingApps",
		},
		"no notificationTitle": {
			content: `{"meetingApps":["Zoom"],"notificationMessage":"Take notes!"}`,
			field:   "notificationTitle",
		},
		"no notificationMessage": {
			content: `{"meetingApps":["Zoom"],"notificationTitle":"Meeting"}`,
			field:   "notificationMessage",
		},
		"null meetingApps": {
			content: `{"meetingApps":null,"notificationTitle":"Meeting","notificationMessage":"Take notes!"}`,
			field:   "meetingApps",
		},
		"empty object": {
			content: `{}`,
			field:   "meetingApps",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			assert.Nil(t, cfg)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.True(t, errors.Is(err, ErrMissingField))
		})
	}
}

func TestLoad_WrongTypes(t *testing.T) {
	tests := map[string]struct {
		content string
		field   string
	}{
		"title is a number": {
			content: `{"meetingApps":["Zoom"],"notificationTitle":42,"notificationMessage":"Take notes!"}`,
			field:   "notificationTitle",
		},
		"message is a bool": {
			content: `{"meetingApps":["Zoom"],"notificationTitle":"Meeting","notificationMessage":true}`,
			field:   "notificationMessage",
		},
		"meetingApps is a string": {
			content: `{"meetingApps":"Zoom","notificationTitle":"Meeting","notificationMessage":"Take notes!"}`,
			field:   "meetingApps",
		},
		"meetingApps holds a number": {
			content: `{"meetingApps":["Zoom",7],"notificationTitle":"Meeting","notificationMessage":"Take notes!"}`,
			field:   "meetingApps",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			assert.Nil(t, cfg)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoad_FileErrors(t *testing.T) {
	t.Run("absent file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.json")
		cfg, err := Load(path)
		assert.Nil(t, cfg)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, path, cfgErr.Path)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("malformed JSON", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `{"meetingApps": ["Zoom",`))
		assert.Nil(t, cfg)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "invalid JSON")
	})
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := map[string]string{
		"poll interval too low": `{"meetingApps":["Zoom"],"notificationTitle":"t","notificationMessage":"m","monitor":{"pollInterval":"100ms"}}`,
		"unknown match mode":    `{"meetingApps":["Zoom"],"notificationTitle":"t","notificationMessage":"m","monitor":{"matchMode":"regex"}}`,
		"deep link not a URL":   `{"meetingApps":["Zoom"],"notificationTitle":"t","notificationMessage":"m","dispatch":{"deepLink":"new note"}}`,
		"too many attempts":     `{"meetingApps":["Zoom"],"notificationTitle":"t","notificationMessage":"m","dispatch":{"maxAttempts":50}}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, content))
			assert.Nil(t, cfg)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoad_EmptyAllowListIsValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"meetingApps":[],"notificationTitle":"Meeting","notificationMessage":""}`))
	require.NoError(t, err)
	assert.Empty(t, cfg.MeetingApps)
	assert.Equal(t, "", cfg.NotificationMessage)
}

func TestDefault_Validate(t *testing.T) {
	cfg := Default()
	cfg.NotificationTitle = "Meeting"
	assert.NoError(t, cfg.Validate())

	cfg.Web.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Path: "config.json", Field: "meetingApps", Err: ErrMissingField}
	assert.Equal(t, `config config.json: field "meetingApps": required field is missing`, err.Error())

	err = &ConfigError{Path: "config.json", Err: os.ErrNotExist}
	assert.Equal(t, "config config.json: file does not exist", err.Error())
}
