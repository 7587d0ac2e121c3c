package dispatch

import (
	"fmt"

	"github.com/actionsum/meetnotes/internal/config"
	"go.uber.org/zap"
)

// NewNotifier creates the notifier backend named by cfg.Notifier
func NewNotifier(cfg config.DispatchConfig) (Notifier, error) {
	switch cfg.Notifier {
	case "command", "":
		return NewCommandNotifier(cfg.NotifierCommand), nil
	case "beeep":
		return &BeeepNotifier{}, nil
	case "dbus":
		return &DBusNotifier{AppName: "meetnotes"}, nil
	default:
		return nil, fmt.Errorf("unknown notifier: %s", cfg.Notifier)
	}
}

// NewOpener creates the opener backend named by cfg.Opener
func NewOpener(cfg config.DispatchConfig) (Opener, error) {
	switch cfg.Opener {
	case "command", "":
		return NewCommandOpener(cfg.OpenerCommand), nil
	case "browser":
		return &BrowserOpener{}, nil
	default:
		return nil, fmt.Errorf("unknown opener: %s", cfg.Opener)
	}
}

// NewFromConfig builds a dispatcher with the configured backends,
// notification content and retry policy.
func NewFromConfig(cfg *config.Configuration, logger *zap.SugaredLogger) (*Dispatcher, error) {
	notifier, err := NewNotifier(cfg.Dispatch)
	if err != nil {
		return nil, err
	}

	opener, err := NewOpener(cfg.Dispatch)
	if err != nil {
		return nil, err
	}

	return New(notifier, opener, OptionsFromConfig(cfg), logger), nil
}

// OptionsFromConfig extracts the dispatch options from cfg
func OptionsFromConfig(cfg *config.Configuration) Options {
	return Options{
		Title:   cfg.NotificationTitle,
		Message: cfg.NotificationMessage,
		Link: DeepLink{
			Base:     cfg.Dispatch.DeepLink,
			NoteName: cfg.Dispatch.NoteName,
		},
		MaxAttempts:   cfg.Dispatch.MaxAttempts,
		RetryInterval: cfg.Dispatch.RetryInterval,
		Timeout:       cfg.Dispatch.Timeout,
	}
}
