// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logind

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// D-Bus names for logind and the systemd manager.
const (
	LoginDestination   = "org.freedesktop.login1"
	LoginPath          = dbus.ObjectPath("/org/freedesktop/login1")
	LoginManager       = "org.freedesktop.login1.Manager"
	SystemdDestination = "org.freedesktop.systemd1"
	SystemdPath        = dbus.ObjectPath("/org/freedesktop/systemd1")
	SystemdManager     = "org.freedesktop.systemd1.Manager"
)

// Seat is one logind seat.
type Seat struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// Client calls logind and systemd on the system bus.
type Client struct {
	conn    *dbus.Conn
	login   dbus.BusObject
	systemd dbus.BusObject
	logger  *slog.Logger
}

// Connect opens a private connection to the system bus.
func Connect(ctx context.Context, logger *slog.Logger) (*Client, error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connecting to the system bus: %w", err)
	}
	client := newClient(conn.Object(LoginDestination, LoginPath), conn.Object(SystemdDestination, SystemdPath), logger)
	client.conn = conn
	return client, nil
}

func newClient(login, systemd dbus.BusObject, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{login: login, systemd: systemd, logger: logger}
}

// Close closes the bus connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// AttachDevice moves the device at sysPath, and everything below it in
// sysfs, to seat. logind creates the seat if it does not exist yet.
func (c *Client) AttachDevice(ctx context.Context, seat, sysPath string, interactive bool) error {
	call := c.login.CallWithContext(ctx, LoginManager+".AttachDevice", 0, seat, sysPath, interactive)
	if call.Err != nil {
		return fmt.Errorf("AttachDevice(%s, %s): %w", seat, sysPath, call.Err)
	}
	return nil
}

// ListSeats returns the seats logind knows about.
func (c *Client) ListSeats(ctx context.Context) ([]Seat, error) {
	var raw [][]any
	call := c.login.CallWithContext(ctx, LoginManager+".ListSeats", 0)
	if err := call.Store(&raw); err != nil {
		return nil, fmt.Errorf("ListSeats: %w", err)
	}
	seats := make([]Seat, 0, len(raw))
	for _, entry := range raw {
		if len(entry) != 2 {
			return nil, fmt.Errorf("ListSeats: malformed entry %v", entry)
		}
		id, ok := entry[0].(string)
		if !ok {
			return nil, fmt.Errorf("ListSeats: seat id has type %T", entry[0])
		}
		path, ok := entry[1].(dbus.ObjectPath)
		if !ok {
			return nil, fmt.Errorf("ListSeats: seat path has type %T", entry[1])
		}
		seats = append(seats, Seat{ID: id, Path: string(path)})
	}
	return seats, nil
}

// EnableUnitFiles enables units and reloads the manager so the change
// takes effect.
func (c *Client) EnableUnitFiles(ctx context.Context, units []string, runtime, force bool) error {
	var carriesInstallInfo bool
	var changes [][]any
	call := c.systemd.CallWithContext(ctx, SystemdManager+".EnableUnitFiles", 0, units, runtime, force)
	if err := call.Store(&carriesInstallInfo, &changes); err != nil {
		return fmt.Errorf("EnableUnitFiles(%v): %w", units, err)
	}
	for _, change := range changes {
		c.logger.Debug("unit file changed", "change", fmt.Sprint(change...))
	}
	if !carriesInstallInfo {
		c.logger.Warn("enabled units have no [Install] section", "units", units)
	}

	if call := c.systemd.CallWithContext(ctx, SystemdManager+".Reload", 0); call.Err != nil {
		return fmt.Errorf("reloading systemd: %w", call.Err)
	}
	return nil
}

// StartUnit queues a start job for unit.
func (c *Client) StartUnit(ctx context.Context, unit, mode string) error {
	var job dbus.ObjectPath
	call := c.systemd.CallWithContext(ctx, SystemdManager+".StartUnit", 0, unit, mode)
	if err := call.Store(&job); err != nil {
		return fmt.Errorf("StartUnit(%s): %w", unit, err)
	}
	c.logger.Debug("start job queued", "unit", unit, "job", string(job))
	return nil
}
