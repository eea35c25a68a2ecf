// Package desktop implements the helper capabilities on a freedesktop.org
// session: xdg-desktop-portal and the notification daemon over D-Bus, the
// shared MIME database and desktop entries on disk, and the xdg-utils
// command line tools.
package desktop

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Bus is a session bus connection opened on first use, so commands that
// never touch D-Bus work without a running session bus.
type Bus struct {
	once sync.Once
	conn *dbus.Conn
	err  error
}

// NewBus returns an unconnected Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Conn returns the session bus connection, connecting on the first call.
func (b *Bus) Conn() (*dbus.Conn, error) {
	b.once.Do(func() {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			b.err = fmt.Errorf("failed to connect to session bus: %w", err)
			return
		}
		b.conn = conn
	})
	return b.conn, b.err
}

// Connect opens the connection and reports whether that succeeded.
func (b *Bus) Connect() error {
	_, err := b.Conn()
	return err
}

// NameHasOwner reports whether a client currently owns name on the bus.
func (b *Bus) NameHasOwner(ctx context.Context, name string) (bool, error) {
	conn, err := b.Conn()
	if err != nil {
		return false, err
	}
	var owned bool
	call := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, name)
	if err := call.Store(&owned); err != nil {
		return false, fmt.Errorf("NameHasOwner %s: %w", name, err)
	}
	return owned, nil
}

// Close closes the connection if one was opened.
func (b *Bus) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}
