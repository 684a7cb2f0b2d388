//go:build linux

package osd

import (
	"fmt"
	"time"

	"github.com/esiqveland/notify"
	"github.com/godbus/dbus/v5"

	"micmute/log"
)

const (
	appName = "micmute"
	timeout = 2 * time.Second
)

// notifyDisplay reuses one notification id so rapid toggles update the
// bubble in place instead of stacking.
type notifyDisplay struct {
	conn *dbus.Conn
	id   uint32
	w    *worker
}

func New() (Display, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}
	d := &notifyDisplay{conn: conn}
	d.w = startWorker(d.send)
	return d, nil
}

func (d *notifyDisplay) send(r request) {
	id, err := notify.SendNotification(d.conn, notification(r, d.id))
	if err != nil {
		log.Warnf("osd: %v", err)
		return
	}
	d.id = id
}

func notification(r request, replaces uint32) notify.Notification {
	hints := map[string]dbus.Variant{
		"transient": dbus.MakeVariant(true),
		// Lets notify-osd style servers treat this as a volume-like bubble.
		"x-canonical-private-synchronous": dbus.MakeVariant(appName),
	}
	if pct, ok := Percent(r.level); ok {
		hints["value"] = dbus.MakeVariant(pct)
	}
	return notify.Notification{
		AppName:       appName,
		ReplacesID:    replaces,
		AppIcon:       IconName(r.muted),
		Summary:       Summary(r.text, r.muted),
		Hints:         hints,
		ExpireTimeout: timeout,
	}
}

func (d *notifyDisplay) Show(text string, muted bool, level float64) {
	d.w.Show(text, muted, level)
}

func (d *notifyDisplay) Close() {
	d.w.stop()
	d.conn.Close()
}

func Diagnose() (string, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return "", fmt.Errorf("session bus: %w", err)
	}
	defer conn.Close()

	info, err := notify.GetServerInformation(conn)
	if err != nil {
		return "", fmt.Errorf("notification service: %w", err)
	}
	return fmt.Sprintf("%s %s", info.Name, info.Version), nil
}
