// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package seat

import (
	"github.com/bureau-foundation/multiseat/lib/device"
)

// DefaultSeat is the name of the seat every device belongs to until it
// is attached elsewhere.
const DefaultSeat = "seat0"

// Name derives the seat name for a video unit: prefix followed by the
// PCI slot with '_' delimiters, plus "-<output>" for aux outputs
// ("seat-0000_01_00_0", "seat-0000_02_00_0-LCD").
func Name(prefix string, video *device.Device) string {
	slot, err := device.ParsePCISlot(video.PCISlot)
	if err != nil {
		// Resolve excludes unparseable slots; this only happens for
		// hand-built devices.
		return prefix + video.SysName
	}
	name := prefix + slot.Delimited("_")
	if video.Kind == device.KindAuxVideo && video.Output != "" {
		name += "-" + video.Output
	}
	return name
}
