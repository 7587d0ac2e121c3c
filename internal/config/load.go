package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables that override optional settings
const EnvPrefix = "MEETNOTES_"

// requiredKeys must be present in the configuration file itself.
var requiredKeys = []string{"meetingApps", "notificationTitle", "notificationMessage"}

// envKeys maps environment variables to configuration keys. Required keys are
// deliberately absent: they can only come from the file.
var envKeys = map[string]string{
	"MEETNOTES_POLL_INTERVAL": "monitor.pollInterval",
	"MEETNOTES_MATCH_MODE":    "monitor.matchMode",
	"MEETNOTES_DETECTOR":      "detector.backend",
	"MEETNOTES_DEEP_LINK":     "dispatch.deepLink",
	"MEETNOTES_NOTIFIER":      "dispatch.notifier",
	"MEETNOTES_OPENER":        "dispatch.opener",
	"MEETNOTES_DB_PATH":       "database.path",
	"MEETNOTES_PID_FILE":      "daemon.pidFile",
	"MEETNOTES_WEB_HOST":      "web.host",
	"MEETNOTES_WEB_PORT":      "web.port",
	"MEETNOTES_LOG_LEVEL":     "log.level",
	"MEETNOTES_LOG_FILE":      "log.file",
}

// ConfigError reports why a configuration file could not be turned into a
// Configuration. Field is empty when the failure is not tied to one key.
type ConfigError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s: field %q: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ErrMissingField is wrapped by ConfigError when a required key is absent or null
var ErrMissingField = errors.New("required field is missing")

// Load reads the JSON file at path and returns the populated Configuration.
// Priority: environment variables > file > defaults. The three required fields
// must be present and correctly typed in the file; nothing partial is returned.
func Load(path string) (*Configuration, error) {
	if path == "" {
		path = DefaultPath
	}

	// Read the file on its own first so a read failure is not reported as a
	// parse failure, and so required keys are checked against the file only.
	if _, err := os.ReadFile(path); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	fk := koanf.New(".")
	if err := fk.Load(file.Provider(path), json.Parser()); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	for _, key := range requiredKeys {
		if !fk.Exists(key) || fk.Get(key) == nil {
			return nil, &ConfigError{Path: path, Field: key, Err: ErrMissingField}
		}
	}

	k := koanf.New(".")
	for key, value := range defaultValues() {
		if err := k.Set(key, value); err != nil {
			return nil, &ConfigError{Path: path, Err: err}
		}
	}
	if err := k.Merge(fk); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("failed to load environment: %w", err)}
	}

	cfg := &Configuration{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			WeaklyTypedInput: false,
			Result:           cfg,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, &ConfigError{Path: path, Field: decodeErrorField(err), Err: err}
	}

	if err := validator.New().Struct(cfg); err != nil {
		field := ""
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field = verrs[0].Namespace()
		}
		return nil, &ConfigError{Path: path, Field: field, Err: err}
	}

	cfg.Database.Path = expandHomePath(cfg.Database.Path)
	cfg.Log.File = expandHomePath(cfg.Log.File)

	return cfg, nil
}

// defaultValues flattens Default() into koanf keys
func defaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"monitor.pollInterval":      d.Monitor.PollInterval,
		"monitor.matchMode":         d.Monitor.MatchMode,
		"monitor.dispatchMode":      d.Monitor.DispatchMode,
		"monitor.cooldown":          d.Monitor.Cooldown,
		"monitor.onDispatchFailure": d.Monitor.OnDispatchFailure,
		"monitor.skipWhenLocked":    d.Monitor.SkipWhenLocked,
		"detector.backend":          d.Detector.Backend,
		"detector.staticApp":        d.Detector.StaticApp,
		"dispatch.notifier":         d.Dispatch.Notifier,
		"dispatch.notifierCommand":  d.Dispatch.NotifierCommand,
		"dispatch.opener":           d.Dispatch.Opener,
		"dispatch.openerCommand":    d.Dispatch.OpenerCommand,
		"dispatch.deepLink":         d.Dispatch.DeepLink,
		"dispatch.noteName":         d.Dispatch.NoteName,
		"dispatch.maxAttempts":      d.Dispatch.MaxAttempts,
		"dispatch.retryInterval":    d.Dispatch.RetryInterval,
		"dispatch.timeout":          d.Dispatch.Timeout,
		"database.enabled":          d.Database.Enabled,
		"database.path":             d.Database.Path,
		"daemon.pidFile":            d.Daemon.PIDFile,
		"web.host":                  d.Web.Host,
		"web.port":                  d.Web.Port,
		"log.level":                 d.Log.Level,
		"log.file":                  d.Log.File,
	}
}

// envTransform maps MEETNOTES_* variables onto optional keys and converts
// numeric values so strict decoding accepts them.
func envTransform(name, value string) (string, any) {
	key, ok := envKeys[name]
	if !ok || value == "" {
		return "", nil
	}

	if key == "web.port" {
		if port, err := strconv.Atoi(value); err == nil {
			return key, port
		}
	}

	if key == "monitor.pollInterval" {
		// Bare numbers are seconds, like the other daemons' env settings
		if seconds, err := strconv.Atoi(value); err == nil {
			return key, time.Duration(seconds) * time.Second
		}
	}

	return key, value
}

// decodeErrorField pulls the offending key out of a mapstructure error message
func decodeErrorField(err error) string {
	msg := err.Error()
	start := strings.Index(msg, "'")
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], "'")
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return homeDir + path[1:]
		}
	}
	return path
}
