// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"fmt"
	"strconv"
	"strings"
)

// PCISlot is a parsed PCI_SLOT_NAME of the form DDDD:BB:SS.F, with
// every field hexadecimal.
type PCISlot struct {
	Domain   uint32
	Bus      uint8
	Slot     uint8
	Function uint8
}

// ParsePCISlot parses a PCI slot name such as "0000:01:00.0". The
// domain has at least four hex digits, the bus and slot exactly two,
// and the function exactly one (0-7).
func ParsePCISlot(name string) (PCISlot, error) {
	domainPart, rest, ok := strings.Cut(name, ":")
	if !ok {
		return PCISlot{}, fmt.Errorf("pci slot %q: missing domain separator", name)
	}
	busPart, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return PCISlot{}, fmt.Errorf("pci slot %q: missing bus separator", name)
	}
	slotPart, functionPart, ok := strings.Cut(rest, ".")
	if !ok {
		return PCISlot{}, fmt.Errorf("pci slot %q: missing function separator", name)
	}

	if len(domainPart) < 4 || len(domainPart) > 8 {
		return PCISlot{}, fmt.Errorf("pci slot %q: domain must be 4 to 8 hex digits", name)
	}
	if len(busPart) != 2 || len(slotPart) != 2 || len(functionPart) != 1 {
		return PCISlot{}, fmt.Errorf("pci slot %q: expected DDDD:BB:SS.F", name)
	}

	domain, err := strconv.ParseUint(domainPart, 16, 32)
	if err != nil {
		return PCISlot{}, fmt.Errorf("pci slot %q: domain: %w", name, err)
	}
	bus, err := strconv.ParseUint(busPart, 16, 8)
	if err != nil {
		return PCISlot{}, fmt.Errorf("pci slot %q: bus: %w", name, err)
	}
	slot, err := strconv.ParseUint(slotPart, 16, 8)
	if err != nil {
		return PCISlot{}, fmt.Errorf("pci slot %q: slot: %w", name, err)
	}
	function, err := strconv.ParseUint(functionPart, 16, 8)
	if err != nil {
		return PCISlot{}, fmt.Errorf("pci slot %q: function: %w", name, err)
	}
	if slot > 0x1f {
		return PCISlot{}, fmt.Errorf("pci slot %q: slot %#x out of range", name, slot)
	}
	if function > 7 {
		return PCISlot{}, fmt.Errorf("pci slot %q: function %d out of range", name, function)
	}

	return PCISlot{
		Domain:   uint32(domain),
		Bus:      uint8(bus),
		Slot:     uint8(slot),
		Function: uint8(function),
	}, nil
}

// String returns the canonical slot name ("0000:01:00.0").
func (p PCISlot) String() string {
	return fmt.Sprintf("%04x:%02x:%02x.%x", p.Domain, p.Bus, p.Slot, p.Function)
}

// DisplayIndex returns the slot name with its separators removed, read
// as one hexadecimal number: "0000:01:00.0" becomes 0x000001000, 4096.
func (p PCISlot) DisplayIndex() uint64 {
	return uint64(p.Domain)<<20 | uint64(p.Bus)<<12 | uint64(p.Slot)<<4 | uint64(p.Function)
}

// Delimited returns the slot name with ':' and '.' replaced by
// delimiter, for use in seat and unit names.
func (p PCISlot) Delimited(delimiter string) string {
	return fmt.Sprintf("%04x%s%02x%s%02x%s%x",
		p.Domain, delimiter, p.Bus, delimiter, p.Slot, delimiter, p.Function)
}

// XorgBusID returns the slot in the X server's BusID syntax, with
// decimal fields: "PCI:bus@domain:slot:function".
func (p PCISlot) XorgBusID() string {
	return fmt.Sprintf("PCI:%d@%d:%d:%d", p.Bus, p.Domain, p.Slot, p.Function)
}
