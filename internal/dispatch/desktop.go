package dispatch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/godbus/dbus/v5"
	"github.com/pkg/browser"
)

// BeeepNotifier shows the notification through the platform's native API
type BeeepNotifier struct {
	Icon string
}

func (n *BeeepNotifier) Notify(ctx context.Context, title, message string) error {
	done := make(chan error, 1)
	go func() {
		done <- beeep.Notify(title, message, n.Icon)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("beeep notify: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

const (
	notificationsDest   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsNotify = "org.freedesktop.Notifications.Notify"
)

// DBusNotifier calls org.freedesktop.Notifications.Notify on the session bus
type DBusNotifier struct {
	AppName string
	Expire  time.Duration // 0 lets the notification server decide
}

func (n *DBusNotifier) Notify(ctx context.Context, title, message string) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	expire := int32(-1)
	if n.Expire > 0 {
		expire = int32(n.Expire / time.Millisecond)
	}

	obj := conn.Object(notificationsDest, dbus.ObjectPath(notificationsPath))
	call := obj.CallWithContext(ctx, notificationsNotify, 0,
		n.AppName,
		uint32(0),
		"",
		title,
		message,
		[]string{},
		map[string]dbus.Variant{},
		expire,
	)
	if call.Err != nil {
		return fmt.Errorf("dbus notify: %w", call.Err)
	}
	return nil
}

// BrowserOpener hands the URI to the desktop's default handler
type BrowserOpener struct{}

func (o *BrowserOpener) Open(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	if err := browser.OpenURL(uri); err != nil {
		return fmt.Errorf("open %s: %w", uri, err)
	}
	return nil
}
