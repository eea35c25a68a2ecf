package desktop

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/holon-run/mozhelper/pkg/capability"
	helperlog "github.com/holon-run/mozhelper/pkg/log"
)

const (
	notificationsDest  = "org.freedesktop.Notifications"
	notificationsPath  = "/org/freedesktop/Notifications"
	notificationsIface = "org.freedesktop.Notifications"
)

// eventCategories maps notification events to freedesktop categories.
var eventCategories = map[string]string{
	"downloadfinished": "transfer.complete",
}

// Notifier implements capability.Notifier with the notification daemon.
type Notifier struct {
	bus     *Bus
	appName string
	icon    string
	// DesktopEntry names the desktop file the daemon associates events with.
	DesktopEntry string
}

// NewNotifier creates a Notifier sending as appName with icon.
func NewNotifier(bus *Bus, appName, icon string) *Notifier {
	return &Notifier{bus: bus, appName: appName, icon: icon, DesktopEntry: "firefox"}
}

// Emit posts n and returns once the daemon has accepted it.
func (n *Notifier) Emit(ctx context.Context, note capability.Notification) error {
	conn, err := n.bus.Conn()
	if err != nil {
		return err
	}
	var id uint32
	call := conn.Object(notificationsDest, notificationsPath).CallWithContext(ctx,
		notificationsIface+".Notify", 0,
		n.appName, uint32(0), n.icon, note.Title, note.Text,
		[]string{}, n.hints(note), int32(-1))
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	helperlog.Debug("notification sent", "event", note.Event, "id", id)
	return nil
}

func (n *Notifier) hints(note capability.Notification) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{}
	if category, ok := eventCategories[note.Event]; ok {
		hints["category"] = dbus.MakeVariant(category)
	}
	if n.DesktopEntry != "" {
		hints["desktop-entry"] = dbus.MakeVariant(n.DesktopEntry)
	}
	return hints
}
