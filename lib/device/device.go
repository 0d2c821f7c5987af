// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"fmt"
)

// Kind discriminates the device variants in the hardware graph.
type Kind int

const (
	// KindKeyboard is an input event node that reports keyboard keys.
	KindKeyboard Kind = iota + 1

	// KindMouse is an input event node that reports pointer motion.
	KindMouse

	// KindHub is a seat-capable USB hub. Hubs are never enumerated
	// directly; they are discovered while walking input ancestry.
	KindHub

	// KindKMSVideo is a framebuffer device backed by a PCI display
	// controller, together with its DRM nodes.
	KindKMSVideo

	// KindAuxVideo is a platform display output tagged master-of-seat
	// (the SM501 multi-head controllers).
	KindAuxVideo

	// KindDRMNode is a /dev/dri node. DRM nodes appear in the graph
	// only as children of a KMS video unit.
	KindDRMNode
)

var kindNames = map[Kind]string{
	KindKeyboard: "keyboard",
	KindMouse:    "mouse",
	KindHub:      "hub",
	KindKMSVideo: "kms-video",
	KindAuxVideo: "aux-video",
	KindDRMNode:  "drm-node",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name so JSON and CBOR output stays
// readable.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown device kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown device kind %q", text)
}

// IsVideo reports whether the kind is a video unit that can anchor a seat.
func (k Kind) IsVideo() bool {
	return k == KindKMSVideo || k == KindAuxVideo
}

// IsInput reports whether the kind is a human input device.
func (k Kind) IsInput() bool {
	return k == KindKeyboard || k == KindMouse
}

// Device is one node in the hardware graph. The common identity fields
// are always set; the kind-specific fields are meaningful only for the
// kinds noted on each. A Device is immutable once [Resolve] returns it.
type Device struct {
	Kind Kind `json:"kind"`

	// DevicePath is the kernel device path relative to /sys.
	DevicePath string `json:"device_path"`

	// SysPath is the absolute sysfs path. This is the identity the
	// session manager uses when attaching a device to a seat.
	SysPath string `json:"sys_path"`

	// SysName is the last component of SysPath.
	SysName string `json:"sys_name"`

	// DeviceNode is the /dev path, when the device has one.
	DeviceNode string `json:"device_node,omitempty"`

	// SeatName is the seat the device is already assigned to, from the
	// ID_SEAT property. Empty means the default seat.
	SeatName string `json:"seat_name,omitempty"`

	// PCISlot is the PCI_SLOT_NAME of the nearest PCI ancestor
	// ("0000:01:00.0"). Set for video units.
	PCISlot string `json:"pci_slot,omitempty"`

	// VendorID and ProductID are the USB identifiers. Hubs only.
	VendorID  string `json:"vendor_id,omitempty"`
	ProductID string `json:"product_id,omitempty"`

	// ParentHub is the nearest seat-capable hub above a keyboard or
	// mouse, or nil when the device is not behind one. The hub is owned
	// by the [Graph].
	ParentHub *Device `json:"parent_hub,omitempty"`

	// DRMNodes are the DRM devices sharing this framebuffer's parent,
	// ordered by sysfs name. KMS video only.
	DRMNodes []*Device `json:"drm_nodes,omitempty"`

	// DisplayIndex identifies the video unit. For KMS video it is the
	// PCI slot read as one hexadecimal number; aux outputs add their
	// head ordinal.
	DisplayIndex uint64 `json:"display_index,omitempty"`

	// BootVGA is true for the display the firmware initialised. Video
	// units only.
	BootVGA bool `json:"boot_vga,omitempty"`

	// Output is the panel output label (SM501_OUTPUT). Aux video only.
	Output string `json:"output,omitempty"`

	// Head is the ordinal of this output among the aux outputs sharing
	// one PCI device. Aux video only.
	Head int `json:"head,omitempty"`

	// parentPath is the sysfs path of the immediate parent, used to
	// group DRM nodes with their framebuffer.
	parentPath string

	// record is the enumeration record the device was classified from.
	// The resolver walks its ancestry; it is nil for hubs.
	record Record
}

// String returns a short identity for log lines.
func (d *Device) String() string {
	if d.DeviceNode != "" {
		return fmt.Sprintf("%s %s (%s)", d.Kind, d.DeviceNode, d.SysName)
	}
	return fmt.Sprintf("%s %s", d.Kind, d.SysName)
}

// BindingPath returns the sysfs path that is attached to a seat when
// this input device claims one: the parent hub when there is one, so
// every device plugged into the hub follows, otherwise the device
// itself.
func (d *Device) BindingPath() string {
	if d.ParentHub != nil {
		return d.ParentHub.SysPath
	}
	return d.SysPath
}
