// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"fmt"
	"path"
)

// recordOption customizes a synthetic record.
type recordOption func(*SnapshotRecord)

func withNode(node string) recordOption {
	return func(r *SnapshotRecord) { r.DevNode = node }
}

func withDevtype(devtype string) recordOption {
	return func(r *SnapshotRecord) { r.Devtype = devtype }
}

func withProperty(key, value string) recordOption {
	return func(r *SnapshotRecord) {
		if r.Properties == nil {
			r.Properties = make(map[string]string)
		}
		r.Properties[key] = value
	}
}

func withAttribute(name, value string) recordOption {
	return func(r *SnapshotRecord) {
		if r.Attributes == nil {
			r.Attributes = make(map[string]string)
		}
		r.Attributes[name] = value
	}
}

func withTag(tag string) recordOption {
	return func(r *SnapshotRecord) { r.Tags = append(r.Tags, tag) }
}

// syntheticRecord builds a record at sysPath whose parent is parent.
func syntheticRecord(sysPath, parent, subsystem string, options ...recordOption) SnapshotRecord {
	record := SnapshotRecord{
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

// Paths in the synthetic two-GPU, two-keyboard host.
const (
	pciRoot     = "/sys/devices/pci0000:00"
	bootGPU     = pciRoot + "/0000:00:02.0"
	secondGPU   = pciRoot + "/0000:00:01.0/0000:01:00.0"
	xhci        = pciRoot + "/0000:00:14.0"
	rootHub     = xhci + "/usb1"
	seatHub     = rootHub + "/1-1"
	hubKeyboard = seatHub + "/1-1.2"
	bareKeybd   = rootHub + "/1-2"
	hubMouse    = seatHub + "/1-1.3"
)

// usbInput adds the usb_device, interface, input, and event records for
// one input device and returns the event node's sysfs path.
func usbInput(records *[]SnapshotRecord, usbDevice, parent, vendor string, inputNumber int, property string) string {
	iface := usbDevice + "/" + path.Base(usbDevice) + ":1.0"
	input := fmt.Sprintf("%s/input/input%d", iface, inputNumber)
	event := fmt.Sprintf("%s/event%d", input, inputNumber)
	*records = append(*records,
		syntheticRecord(usbDevice, parent, "usb", withDevtype("usb_device"), withAttribute("idVendor", vendor)),
		syntheticRecord(iface, usbDevice, "usb", withDevtype("usb_interface")),
		syntheticRecord(input, iface, "input", withProperty(property, "1")),
		syntheticRecord(event, input, "input", withProperty(property, "1"),
			withNode(fmt.Sprintf("/dev/input/event%d", inputNumber))),
	)
	return event
}

// syntheticHost returns a snapshot of a host with two PCI GPUs (the
// boot display at 0000:00:02.0), one keyboard and one mouse behind a
// seat-capable hub, and one keyboard plugged directly into the root
// hub.
func syntheticHost() *Snapshot {
	records := []SnapshotRecord{
		syntheticRecord(pciRoot, "", ""),
		syntheticRecord(bootGPU, pciRoot, "pci",
			withProperty("PCI_SLOT_NAME", "0000:00:02.0"), withAttribute("boot_vga", "1")),
		syntheticRecord(bootGPU+"/graphics/fb0", bootGPU, "graphics", withNode("/dev/fb0")),
		syntheticRecord(bootGPU+"/drm/card0", bootGPU, "drm", withDevtype("drm_minor"), withNode("/dev/dri/card0")),
		syntheticRecord(bootGPU+"/drm/renderD128", bootGPU, "drm", withDevtype("drm_minor"), withNode("/dev/dri/renderD128")),
		syntheticRecord(pciRoot+"/0000:00:01.0", pciRoot, "pci", withProperty("PCI_SLOT_NAME", "0000:00:01.0")),
		syntheticRecord(secondGPU, pciRoot+"/0000:00:01.0", "pci",
			withProperty("PCI_SLOT_NAME", "0000:01:00.0"), withAttribute("boot_vga", "0")),
		syntheticRecord(secondGPU+"/graphics/fb1", secondGPU, "graphics", withNode("/dev/fb1")),
		syntheticRecord(secondGPU+"/drm/card1", secondGPU, "drm", withDevtype("drm_minor"), withNode("/dev/dri/card1")),
		// A connector has no device node and is skipped.
		syntheticRecord(secondGPU+"/drm/card1/card1-HDMI-A-1", secondGPU+"/drm/card1", "drm", withDevtype("drm_connector")),
		syntheticRecord(xhci, pciRoot, "pci", withProperty("PCI_SLOT_NAME", "0000:00:14.0")),
		syntheticRecord(rootHub, xhci, "usb", withDevtype("usb_device"), withAttribute("idVendor", "1d6b")),
		syntheticRecord(seatHub, rootHub, "usb", withDevtype("usb_device"),
			withAttribute("idVendor", "05e3"), withAttribute("idProduct", "0610"), withTag("seat")),
	}
	usbInput(&records, hubKeyboard, seatHub, "046d", 5, "ID_INPUT_KEYBOARD")
	usbInput(&records, bareKeybd, rootHub, "413c", 6, "ID_INPUT_KEYBOARD")
	usbInput(&records, hubMouse, seatHub, "046d", 7, "ID_INPUT_MOUSE")
	return NewSnapshot(records...)
}
