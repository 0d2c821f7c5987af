// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package udev enumerates devices from the udev database through
// libudev. It adapts github.com/jochenvg/go-udev to the
// device.Enumerator and device.Record interfaces.
package udev

import (
	"context"
	"fmt"
	"sort"

	goudev "github.com/jochenvg/go-udev"

	"github.com/bureau-foundation/multiseat/lib/device"
)

// Enumerator lists devices from the live udev database.
type Enumerator struct {
	udev goudev.Udev
}

// New returns an Enumerator over the host's udev database.
func New() *Enumerator {
	return &Enumerator{}
}

// List returns the initialized devices matching query, ordered by
// sysfs path. Subsystem, tag, and valued properties are matched by
// libudev; properties with an empty required value (present with any
// value) are filtered afterwards.
func (e *Enumerator) List(ctx context.Context, query device.Query) ([]device.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enumerate := e.udev.NewEnumerate()
	if err := enumerate.AddMatchIsInitialized(); err != nil {
		return nil, fmt.Errorf("udev match initialized: %w", err)
	}
	if query.Subsystem != "" {
		if err := enumerate.AddMatchSubsystem(query.Subsystem); err != nil {
			return nil, fmt.Errorf("udev match subsystem %s: %w", query.Subsystem, err)
		}
	}
	for key, value := range query.Properties {
		if value == "" {
			continue
		}
		if err := enumerate.AddMatchProperty(key, value); err != nil {
			return nil, fmt.Errorf("udev match property %s=%s: %w", key, value, err)
		}
	}
	if query.Tag != "" {
		if err := enumerate.AddMatchTag(query.Tag); err != nil {
			return nil, fmt.Errorf("udev match tag %s: %w", query.Tag, err)
		}
	}

	devices, err := enumerate.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating %s devices: %w", query.Subsystem, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]device.Record, 0, len(devices))
	for _, found := range devices {
		record := wrap(found)
		if record == nil || !query.Matches(record) {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].SysPath() < records[j].SysPath() })
	return records, nil
}

// record adapts a libudev device.
type record struct {
	device *goudev.Device
}

// wrap returns nil (an untyped interface nil) for a nil device, so
// callers can compare ancestry results against nil.
func wrap(d *goudev.Device) device.Record {
	if d == nil {
		return nil
	}
	return &record{device: d}
}

func (r *record) Subsystem() string { return r.device.Subsystem() }

func (r *record) Devtype() string { return r.device.Devtype() }

func (r *record) SysPath() string { return r.device.Syspath() }

func (r *record) DevPath() string { return r.device.Devpath() }

func (r *record) SysName() string { return r.device.Sysname() }

func (r *record) DevNode() string { return r.device.Devnode() }

func (r *record) Property(key string) string { return r.device.PropertyValue(key) }

func (r *record) Attribute(name string) string { return r.device.SysattrValue(name) }

func (r *record) HasTag(tag string) bool {
	_, ok := r.device.Tags()[tag]
	return ok
}

func (r *record) Parent() device.Record { return wrap(r.device.Parent()) }

func (r *record) ParentWithSubsystemDevtype(subsystem, devtype string) device.Record {
	return wrap(r.device.ParentWithSubsystemDevtype(subsystem, devtype))
}
