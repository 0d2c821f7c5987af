// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"context"
	"fmt"
	"strings"
)

// udev property, tag, and node-path conventions the classifier relies on.
const (
	propertyKeyboard = "ID_INPUT_KEYBOARD"
	propertyMouse    = "ID_INPUT_MOUSE"
	propertySeat     = "ID_SEAT"
	propertyPCISlot  = "PCI_SLOT_NAME"
	propertyOutput   = "SM501_OUTPUT"

	attributeVendor  = "idVendor"
	attributeProduct = "idProduct"
	attributeBootVGA = "boot_vga"

	tagMasterOfSeat = "master-of-seat"

	eventNodePrefix       = "/dev/input/event"
	framebufferNodePrefix = "/dev/fb"
	drmNodePrefix         = "/dev/dri/"
)

// Inventory is the classified, not yet resolved, device set.
type Inventory struct {
	Keyboards    []*Device
	Mice         []*Device
	Framebuffers []*Device
	DRMNodes     []*Device
	AuxVideos    []*Device

	// Gaps are the [DiscoveryGap] errors for records that were skipped.
	Gaps []error
}

// discoveryQuery pairs an enumeration query with the kind its results
// are classified as.
type discoveryQuery struct {
	kind  Kind
	query Query
}

// DiscoveryQueries returns the fixed queries [Discover] runs, in order.
func DiscoveryQueries() []Query {
	queries := discoveryQueries()
	result := make([]Query, len(queries))
	for i, entry := range queries {
		result[i] = entry.query
	}
	return result
}

func discoveryQueries() []discoveryQuery {
	return []discoveryQuery{
		{KindKeyboard, Query{Subsystem: "input", Properties: map[string]string{propertyKeyboard: "1"}}},
		{KindMouse, Query{Subsystem: "input", Properties: map[string]string{propertyMouse: "1"}}},
		{KindKMSVideo, Query{Subsystem: "graphics"}},
		{KindDRMNode, Query{Subsystem: "drm"}},
		{KindAuxVideo, Query{Subsystem: "platform", Tag: tagMasterOfSeat, Properties: map[string]string{propertyOutput: ""}}},
	}
}

// Discover runs the discovery queries against enumerator and classifies
// every returned record. An enumeration failure is returned as an
// error; per-record problems land in Inventory.Gaps.
func Discover(ctx context.Context, enumerator Enumerator) (*Inventory, error) {
	inventory := &Inventory{}
	for _, entry := range discoveryQueries() {
		records, err := enumerator.List(ctx, entry.query)
		if err != nil {
			return nil, fmt.Errorf("enumerating %s devices: %w", entry.kind, err)
		}
		for _, record := range records {
			device, err := Classify(record, entry.kind)
			if err != nil {
				inventory.Gaps = append(inventory.Gaps, err)
				continue
			}
			switch device.Kind {
			case KindKeyboard:
				inventory.Keyboards = append(inventory.Keyboards, device)
			case KindMouse:
				inventory.Mice = append(inventory.Mice, device)
			case KindKMSVideo:
				inventory.Framebuffers = append(inventory.Framebuffers, device)
			case KindDRMNode:
				inventory.DRMNodes = append(inventory.DRMNodes, device)
			case KindAuxVideo:
				inventory.AuxVideos = append(inventory.AuxVideos, device)
			}
		}
	}
	return inventory, nil
}

// Classify builds a typed [Device] of the given kind from record. It
// returns a [*DiscoveryGap] when the record lacks a field the kind
// requires. Classify does not walk ancestry beyond the nearest PCI
// device; hub resolution is left to [Resolve].
func Classify(record Record, kind Kind) (*Device, error) {
	device := &Device{
		Kind:       kind,
		DevicePath: record.DevPath(),
		SysPath:    record.SysPath(),
		SysName:    record.SysName(),
		DeviceNode: record.DevNode(),
		SeatName:   record.Property(propertySeat),
		record:     record,
	}
	if parent := record.Parent(); parent != nil {
		device.parentPath = parent.SysPath()
	}

	gap := func(reason string) error {
		return &DiscoveryGap{Kind: kind, SysPath: device.SysPath, Reason: reason}
	}

	switch kind {
	case KindKeyboard, KindMouse:
		if !strings.HasPrefix(device.DeviceNode, eventNodePrefix) {
			return nil, gap("no input event node")
		}

	case KindKMSVideo:
		if !strings.HasPrefix(device.DeviceNode, framebufferNodePrefix) {
			return nil, gap("no framebuffer node")
		}
		if !classifyPCI(record, device) {
			return nil, gap("no PCI ancestor with a slot name")
		}

	case KindDRMNode:
		if !strings.HasPrefix(device.DeviceNode, drmNodePrefix) {
			return nil, gap("no DRM node")
		}

	case KindAuxVideo:
		device.Output = record.Property(propertyOutput)
		if device.Output == "" {
			return nil, gap("no " + propertyOutput + " property")
		}
		if !classifyPCI(record, device) {
			return nil, gap("no PCI ancestor with a slot name")
		}

	default:
		return nil, gap("kind is not enumerable")
	}

	return device, nil
}

// classifyPCI copies the PCI slot name and boot_vga flag of the
// nearest PCI ancestor into device. Returns false when there is none.
func classifyPCI(record Record, device *Device) bool {
	pci := record.ParentWithSubsystemDevtype("pci", "")
	if pci == nil {
		return false
	}
	device.PCISlot = pci.Property(propertyPCISlot)
	device.BootVGA = pci.Attribute(attributeBootVGA) == "1"
	return device.PCISlot != ""
}

// newHub classifies a USB device record found during an ancestry walk.
func newHub(record Record) *Device {
	return &Device{
		Kind:       KindHub,
		DevicePath: record.DevPath(),
		SysPath:    record.SysPath(),
		SysName:    record.SysName(),
		DeviceNode: record.DevNode(),
		SeatName:   record.Property(propertySeat),
		VendorID:   record.Attribute(attributeVendor),
		ProductID:  record.Attribute(attributeProduct),
	}
}
