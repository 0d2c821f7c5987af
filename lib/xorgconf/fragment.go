// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xorgconf

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/bureau-foundation/multiseat/lib/device"
)

// Drivers for the two video unit kinds.
const (
	DriverKMS = "modesetting"
	DriverAux = "siliconmotion"
)

// Fragment is the data behind one seat's config file.
type Fragment struct {
	Seat   string
	Driver string
	BusID  string

	// Screen selects the controller head for multi-head aux devices.
	// Negative means the Device section carries no Screen line.
	Screen int
}

// FileName returns the fragment file name for a seat.
func FileName(seat string) string {
	return "90-" + seat + ".conf"
}

// FragmentFor builds the fragment binding seat to video.
func FragmentFor(seat string, video *device.Device) (Fragment, error) {
	if video == nil {
		return Fragment{}, fmt.Errorf("seat %s has no video unit", seat)
	}
	slot, err := device.ParsePCISlot(video.PCISlot)
	if err != nil {
		return Fragment{}, fmt.Errorf("seat %s: %w", seat, err)
	}
	fragment := Fragment{
		Seat:   seat,
		Driver: DriverKMS,
		BusID:  slot.XorgBusID(),
		Screen: -1,
	}
	if video.Kind == device.KindAuxVideo {
		fragment.Driver = DriverAux
		fragment.Screen = video.Head
	}
	return fragment, nil
}

var fragmentTemplate = template.Must(template.New("fragment").Parse(`# Generated by multiseat for {{.Seat}}. Local edits are overwritten.

Section "ServerLayout"
    Identifier "layout-{{.Seat}}"
    MatchSeat "{{.Seat}}"
    Screen "screen-{{.Seat}}"
EndSection

Section "Device"
    Identifier "device-{{.Seat}}"
    MatchSeat "{{.Seat}}"
    Driver "{{.Driver}}"
    BusID "{{.BusID}}"
{{- if ge .Screen 0}}
    Screen {{.Screen}}
{{- end}}
EndSection

Section "Screen"
    Identifier "screen-{{.Seat}}"
    Device "device-{{.Seat}}"
    MatchSeat "{{.Seat}}"
EndSection
`))

// Render returns the fragment's file content.
func (f Fragment) Render() ([]byte, error) {
	var buffer bytes.Buffer
	if err := fragmentTemplate.Execute(&buffer, f); err != nil {
		return nil, fmt.Errorf("rendering xorg fragment for %s: %w", f.Seat, err)
	}
	return buffer.Bytes(), nil
}
