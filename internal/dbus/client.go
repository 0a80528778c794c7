package dbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// ErrNotRunning is returned when no daemon owns the bus name.
var ErrNotRunning = errors.New("gitisland daemon is not running")

// Client talks to a running daemon.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus. It does not check that the
// daemon is running; calls return ErrNotRunning when it is not.
func NewClient() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(BusName, Path),
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, out ...any) error {
	call := c.obj.CallWithContext(ctx, Interface+"."+method, 0)
	if call.Err != nil {
		var dbusErr dbus.Error
		if errors.As(call.Err, &dbusErr) && dbusErr.Name == "org.freedesktop.DBus.Error.ServiceUnknown" {
			return ErrNotRunning
		}
		return fmt.Errorf("%s: %w", method, call.Err)
	}
	if len(out) == 0 {
		return nil
	}
	return call.Store(out...)
}

// Open asks the daemon to open the panel. It reports whether the status
// changed.
func (c *Client) Open(ctx context.Context) (bool, error) {
	var changed bool
	err := c.call(ctx, "Open", &changed)
	return changed, err
}

// CloseIsland asks the daemon to close the panel.
func (c *Client) CloseIsland(ctx context.Context) (bool, error) {
	var changed bool
	err := c.call(ctx, "Close", &changed)
	return changed, err
}

// Toggle flips the panel.
func (c *Client) Toggle(ctx context.Context) (bool, error) {
	var changed bool
	err := c.call(ctx, "Toggle", &changed)
	return changed, err
}

// Status fetches the daemon status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var m map[string]dbus.Variant
	if err := c.call(ctx, "Status", &m); err != nil {
		return Status{}, err
	}
	return StatusFromVariants(m)
}

// ResetAnimation clears the first-run flag in the daemon.
func (c *Client) ResetAnimation(ctx context.Context) error {
	return c.call(ctx, "ResetAnimation")
}

// Watch delivers StatusChanged signals to fn until ctx is cancelled.
func (c *Client) Watch(ctx context.Context, fn func(StatusChange)) error {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(Path),
		dbus.WithMatchInterface(Interface),
		dbus.WithMatchMember("StatusChanged"),
	}
	if err := c.conn.AddMatchSignal(opts...); err != nil {
		return fmt.Errorf("failed to add match rule: %w", err)
	}
	defer func() { _ = c.conn.RemoveMatchSignal(opts...) }()

	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)
	defer c.conn.RemoveSignal(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			if change, ok := parseStatusChanged(sig); ok {
				fn(change)
			}
		}
	}
}
