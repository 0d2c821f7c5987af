// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package devicetest builds synthetic hardware snapshots for tests of
// packages that consume [device.Enumerator].
package devicetest

import (
	"fmt"
	"path"

	"github.com/bureau-foundation/multiseat/lib/device"
)

// Option customizes a synthetic record.
type Option func(*device.SnapshotRecord)

// Node sets the record's device node.
func Node(node string) Option {
	return func(r *device.SnapshotRecord) { r.DevNode = node }
}

// Devtype sets the record's device type.
func Devtype(devtype string) Option {
	return func(r *device.SnapshotRecord) { r.Devtype = devtype }
}

// Property sets one udev property.
func Property(key, value string) Option {
	return func(r *device.SnapshotRecord) {
		if r.Properties == nil {
			r.Properties = make(map[string]string)
		}
		r.Properties[key] = value
	}
}

// Attribute sets one sysfs attribute.
func Attribute(name, value string) Option {
	return func(r *device.SnapshotRecord) {
		if r.Attributes == nil {
			r.Attributes = make(map[string]string)
		}
		r.Attributes[name] = value
	}
}

// Tag adds a udev tag.
func Tag(tag string) Option {
	return func(r *device.SnapshotRecord) { r.Tags = append(r.Tags, tag) }
}

// Record builds a record at sysPath whose parent is parent.
func Record(sysPath, parent, subsystem string, options ...Option) device.SnapshotRecord {
	record := device.SnapshotRecord{
		SysPath:    sysPath,
		DevPath:    sysPath[len("/sys"):],
		Subsystem:  subsystem,
		SysName:    path.Base(sysPath),
		ParentPath: parent,
	}
	for _, option := range options {
		option(&record)
	}
	return record
}

// Builder accumulates records for a synthetic host.
type Builder struct {
	records []device.SnapshotRecord
	inputs  int
	cards   int
}

// PCIRoot is the sysfs path of the synthetic PCI root complex.
const PCIRoot = "/sys/devices/pci0000:00"

// XHCI is the synthetic USB host controller, with its root hub at
// XHCI+"/usb1".
const XHCI = PCIRoot + "/0000:00:14.0"

// RootHub is the synthetic root hub (vendor 1d6b).
const RootHub = XHCI + "/usb1"

// NewBuilder starts a host with a PCI root, an xHCI controller, and
// its root hub.
func NewBuilder() *Builder {
	return &Builder{records: []device.SnapshotRecord{
		Record(PCIRoot, "", ""),
		Record(XHCI, PCIRoot, "pci", Property("PCI_SLOT_NAME", "0000:00:14.0")),
		Record(RootHub, XHCI, "usb", Devtype("usb_device"), Attribute("idVendor", "1d6b")),
	}}
}

// GPU adds a PCI display adapter at slot (e.g. "0000:01:00.0") with a
// framebuffer and a DRM card node, and returns its sysfs path.
func (b *Builder) GPU(slot string, bootVGA bool) string {
	sysPath := PCIRoot + "/" + slot
	boot := "0"
	if bootVGA {
		boot = "1"
	}
	card := b.cards
	b.cards++
	b.records = append(b.records,
		Record(sysPath, PCIRoot, "pci", Property("PCI_SLOT_NAME", slot), Attribute("boot_vga", boot)),
		Record(fmt.Sprintf("%s/graphics/fb%d", sysPath, card), sysPath, "graphics", Node(fmt.Sprintf("/dev/fb%d", card))),
		Record(fmt.Sprintf("%s/drm/card%d", sysPath, card), sysPath, "drm", Devtype("drm_minor"), Node(fmt.Sprintf("/dev/dri/card%d", card))),
	)
	return sysPath
}

// Hub adds a seat-capable USB hub on port of the root hub and returns
// its sysfs path.
func (b *Builder) Hub(port string) string {
	sysPath := RootHub + "/" + port
	b.records = append(b.records,
		Record(sysPath, RootHub, "usb", Devtype("usb_device"),
			Attribute("idVendor", "05e3"), Attribute("idProduct", "0610"), Tag("seat")),
	)
	return sysPath
}

// Keyboard adds a USB keyboard on port below parent (a hub path, or
// [RootHub]) and returns its event node, e.g. "/dev/input/event0".
func (b *Builder) Keyboard(parent, port string) string {
	return b.input(parent, port, "ID_INPUT_KEYBOARD")
}

// Mouse adds a USB mouse on port below parent and returns its event
// node.
func (b *Builder) Mouse(parent, port string) string {
	return b.input(parent, port, "ID_INPUT_MOUSE")
}

func (b *Builder) input(parent, port, property string) string {
	number := b.inputs
	b.inputs++
	usbDevice := parent + "/" + port
	iface := usbDevice + "/" + path.Base(usbDevice) + ":1.0"
	input := fmt.Sprintf("%s/input/input%d", iface, number)
	event := fmt.Sprintf("%s/event%d", input, number)
	node := fmt.Sprintf("/dev/input/event%d", number)
	b.records = append(b.records,
		Record(usbDevice, parent, "usb", Devtype("usb_device"), Attribute("idVendor", "046d")),
		Record(iface, usbDevice, "usb", Devtype("usb_interface")),
		Record(input, iface, "input", Property(property, "1")),
		Record(event, input, "input", Property(property, "1"), Node(node)),
	)
	return node
}

// Snapshot returns the accumulated host.
func (b *Builder) Snapshot() *device.Snapshot {
	return device.NewSnapshot(b.records...)
}

// Host returns a host with gpus display adapters (the first is the
// boot display) and keyboards keyboards, each behind its own
// seat-capable hub.
func Host(gpus, keyboards int) *device.Snapshot {
	builder := NewBuilder()
	for index := range gpus {
		builder.GPU(fmt.Sprintf("0000:%02x:00.0", index+1), index == 0)
	}
	for index := range keyboards {
		hub := builder.Hub(fmt.Sprintf("1-%d", index+1))
		builder.Keyboard(hub, fmt.Sprintf("1-%d.1", index+1))
	}
	return builder.Snapshot()
}
