// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"cmp"
	"fmt"
	"slices"
)

// Options tunes the topology walk.
type Options struct {
	// HubTag is the udev tag that marks a hub as seat-capable.
	HubTag string

	// RootHubVendor is the USB vendor id of host-controller root hubs.
	// The ancestry walk stops when it reaches one.
	RootHubVendor string

	// MaxAncestryDepth bounds the number of USB ancestors visited.
	MaxAncestryDepth int
}

// DefaultOptions returns the stock topology options.
func DefaultOptions() Options {
	return Options{
		HubTag:           "seat",
		RootHubVendor:    "1d6b",
		MaxAncestryDepth: 32,
	}
}

// Graph is the resolved hardware graph.
type Graph struct {
	Keyboards []*Device `json:"keyboards"`
	Mice      []*Device `json:"mice"`

	// Videos are the seat-anchoring video units, KMS and aux, with the
	// boot display first and the rest in display-index order.
	Videos []*Device `json:"videos"`

	// Hubs are the seat-capable hubs referenced by input devices,
	// deduplicated and ordered by sysfs path.
	Hubs []*Device `json:"hubs"`
}

// ResolveParentHub walks the USB device ancestry of record and returns
// the nearest seat-capable hub. It returns (nil, nil) when the walk
// runs out of ancestors or reaches a root hub first; root hubs belong
// to the host controller and are never per-seat. The walk is iterative
// and fails with [ErrAncestryTooDeep] after options.MaxAncestryDepth
// steps.
func ResolveParentHub(record Record, options Options) (Record, error) {
	current := record
	for depth := 0; depth < options.MaxAncestryDepth; depth++ {
		ancestor := current.ParentWithSubsystemDevtype("usb", "usb_device")
		if ancestor == nil {
			return nil, nil
		}
		if ancestor.Attribute(attributeVendor) == options.RootHubVendor {
			return nil, nil
		}
		if ancestor.HasTag(options.HubTag) {
			return ancestor, nil
		}
		current = ancestor
	}
	return nil, fmt.Errorf("%w (%d)", ErrAncestryTooDeep, options.MaxAncestryDepth)
}

// Resolve builds the hardware graph from a classified inventory.
// Devices whose topology cannot be determined are left out of the
// graph and reported as [TopologyGap] errors.
func Resolve(inventory *Inventory, options Options) (*Graph, []error) {
	graph := &Graph{}
	var gaps []error
	hubs := make(map[string]*Device)

	resolveInputs := func(devices []*Device) []*Device {
		var resolved []*Device
		for _, device := range devices {
			hubRecord, err := ResolveParentHub(device.record, options)
			if err != nil {
				gaps = append(gaps, &TopologyGap{Kind: device.Kind, SysPath: device.SysPath, Err: err})
				continue
			}
			if hubRecord != nil {
				hub, ok := hubs[hubRecord.SysPath()]
				if !ok {
					hub = newHub(hubRecord)
					hubs[hub.SysPath] = hub
				}
				device.ParentHub = hub
			}
			resolved = append(resolved, device)
		}
		return resolved
	}
	graph.Keyboards = resolveInputs(inventory.Keyboards)
	graph.Mice = resolveInputs(inventory.Mice)

	drmByParent := make(map[string][]*Device)
	for _, node := range inventory.DRMNodes {
		drmByParent[node.parentPath] = append(drmByParent[node.parentPath], node)
	}

	for _, framebuffer := range inventory.Framebuffers {
		slot, err := ParsePCISlot(framebuffer.PCISlot)
		if err != nil {
			gaps = append(gaps, &TopologyGap{Kind: framebuffer.Kind, SysPath: framebuffer.SysPath, Err: err})
			continue
		}
		framebuffer.DisplayIndex = slot.DisplayIndex()
		nodes := slices.Clone(drmByParent[framebuffer.parentPath])
		slices.SortFunc(nodes, func(a, b *Device) int { return cmp.Compare(a.SysName, b.SysName) })
		framebuffer.DRMNodes = nodes
		graph.Videos = append(graph.Videos, framebuffer)
	}

	auxBySlot := make(map[PCISlot][]*Device)
	var auxSlots []PCISlot
	for _, aux := range inventory.AuxVideos {
		slot, err := ParsePCISlot(aux.PCISlot)
		if err != nil {
			gaps = append(gaps, &TopologyGap{Kind: aux.Kind, SysPath: aux.SysPath, Err: err})
			continue
		}
		if _, seen := auxBySlot[slot]; !seen {
			auxSlots = append(auxSlots, slot)
		}
		auxBySlot[slot] = append(auxBySlot[slot], aux)
	}
	for _, slot := range auxSlots {
		outputs := auxBySlot[slot]
		slices.SortFunc(outputs, func(a, b *Device) int {
			return cmp.Or(cmp.Compare(a.Output, b.Output), cmp.Compare(a.SysPath, b.SysPath))
		})
		for head, aux := range outputs {
			aux.Head = head
			aux.DisplayIndex = slot.DisplayIndex() + uint64(head)
			graph.Videos = append(graph.Videos, aux)
		}
	}

	SortVideos(graph.Videos)

	for _, hub := range hubs {
		graph.Hubs = append(graph.Hubs, hub)
	}
	slices.SortFunc(graph.Hubs, func(a, b *Device) int { return cmp.Compare(a.SysPath, b.SysPath) })

	return graph, gaps
}

// SortVideos orders video units boot display first, then by display
// index, then by sysfs path.
func SortVideos(videos []*Device) {
	slices.SortStableFunc(videos, func(a, b *Device) int {
		if a.BootVGA != b.BootVGA {
			if a.BootVGA {
				return -1
			}
			return 1
		}
		return cmp.Or(
			cmp.Compare(a.DisplayIndex, b.DisplayIndex),
			cmp.Compare(a.SysPath, b.SysPath),
		)
	})
}
