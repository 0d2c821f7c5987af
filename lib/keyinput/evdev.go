// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyinput

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

// eviocgrab is EVIOCGRAB, _IOW('E', 0x90, int).
const eviocgrab = 0x40044590

// Device is a [Stream] backed by an evdev character device.
//
// Events are read from a descriptor registered with the runtime poller.
// Nothing may call (*os.File).Fd on it: a descriptor switched to
// blocking mode keeps a pending read alive through Close.
type Device struct {
	path      string
	name      string
	file      *os.File
	grabbed   bool
	closeOnce sync.Once
	closeErr  error
}

// Open opens the evdev node at path. With grab set, the device is
// grabbed exclusively so its key presses do not also reach the session
// running on the default seat; the grab is released on Close.
func Open(path string, grab bool) (*Device, error) {
	probe, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	name, err := probe.Name()
	probe.Close()
	if err != nil || name == "" {
		name = path
	}
	return openStream(path, name, grab)
}

// openStream opens path for polled reads of input_event records.
func openStream(path, name string, grab bool) (*Device, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	device := &Device{path: path, name: name, file: file}
	if grab {
		if err := device.setGrab(1); err != nil {
			file.Close()
			return nil, fmt.Errorf("grabbing %s: %w", path, err)
		}
		device.grabbed = true
	}
	return device, nil
}

// setGrab issues EVIOCGRAB through the raw connection, which leaves
// the descriptor in non-blocking mode.
func (d *Device) setGrab(value int) error {
	raw, err := d.file.SyscallConn()
	if err != nil {
		return err
	}
	var ioctlErr error
	if err := raw.Control(func(fd uintptr) {
		ioctlErr = unix.IoctlSetInt(int(fd), eviocgrab, value)
	}); err != nil {
		return err
	}
	return ioctlErr
}

// Name returns the kernel's name for the device, or the node path if
// the name could not be read.
func (d *Device) Name() string {
	return d.name
}

// Next returns the next EV_KEY event. Non-key events (EV_SYN, EV_MSC,
// LED state) are skipped. Cancelling ctx expires the read deadline, so
// a blocked read returns without further input.
func (d *Device) Next(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	stop := context.AfterFunc(ctx, func() { d.file.SetReadDeadline(time.Now()) })
	defer stop()

	for {
		var event evdev.InputEvent
		if err := binary.Read(d.file, binary.LittleEndian, &event); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Event{}, ctxErr
			}
			return Event{}, fmt.Errorf("reading %s: %w", d.path, err)
		}
		if event.Type != evdev.EV_KEY {
			continue
		}
		return Event{Code: uint16(event.Code), Value: event.Value}, nil
	}
}

// Close releases any grab and closes the device. It is safe to call
// more than once and concurrently with Next; a blocked Next returns an
// error.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		if d.grabbed {
			d.setGrab(0)
		}
		d.closeErr = d.file.Close()
	})
	return d.closeErr
}
