package notify

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"
	notifyMethod      = "org.freedesktop.Notifications.Notify"
	desktopTimeoutMs  = int32(10000)
)

type busObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// DesktopSender shows notifications through the session bus.
type DesktopSender struct {
	connect func() (busObject, func() error, error)
}

func NewDesktopSender() *DesktopSender {
	return &DesktopSender{connect: sessionNotifications}
}

func sessionNotifications() (busObject, func() error, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, nil, fmt.Errorf("connect session bus: %w", err)
	}
	return conn.Object(notificationsDest, notificationsPath), conn.Close, nil
}

func (d *DesktopSender) Name() string { return "desktop" }

func (d *DesktopSender) Send(ctx context.Context, msg Message) error {
	obj, closeFn, err := d.connect()
	if err != nil {
		return err
	}
	defer closeFn()

	call := obj.CallWithContext(ctx, notifyMethod, 0,
		"lessonsched",      // app_name
		uint32(0),          // replaces_id
		"appointment-soon", // app_icon
		msg.Subject,        // summary
		msg.Text,           // body
		[]string{},         // actions
		map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(byte(1)),
		},
		desktopTimeoutMs,
	)
	if call.Err != nil {
		return fmt.Errorf("desktop notify: %w", call.Err)
	}
	return nil
}
