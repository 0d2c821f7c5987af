// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/multiseat/lib/config"
	"github.com/bureau-foundation/multiseat/lib/device"
	"github.com/bureau-foundation/multiseat/lib/seat"
	"github.com/bureau-foundation/multiseat/lib/udev"
)

// HostParams holds the flags shared by every command that inspects the
// machine. Embed it in a command's params struct.
type HostParams struct {
	ConfigPath string `json:"config"   flag:"config"    desc:"configuration file (default: $MULTISEAT_CONFIG, then built-in defaults)"`
	Snapshot   string `json:"snapshot" flag:"snapshot"  desc:"replay a hardware snapshot saved by 'multiseat scan --save' instead of querying udev"`
	Verbose    bool   `json:"-"        flag:"verbose,v" desc:"log at debug level"`
}

// Host is the discovered state of the machine: the resolved device
// graph and the number of seats that can be configured on it.
type Host struct {
	Config   *config.Config `json:"-"`
	Graph    *device.Graph  `json:"graph"`
	Gaps     []error        `json:"-"`
	Capacity int            `json:"capacity"`
}

// LoadConfig reads the configuration named by --config, or by
// $MULTISEAT_CONFIG, validates it, and applies its log level (raised
// to debug by --verbose).
func (p *HostParams) LoadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if p.ConfigPath != "" {
		cfg, err = config.LoadFile(p.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, Validation("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid configuration: %w", err)
	}

	level, _ := cfg.Level()
	if p.Verbose {
		level = slog.LevelDebug
	}
	LogLevel.Set(level)
	return cfg, nil
}

// Enumerator returns the device source: the snapshot named by
// --snapshot, or the live udev database.
func (p *HostParams) Enumerator() (device.Enumerator, error) {
	if p.Snapshot != "" {
		snapshot, err := device.LoadSnapshot(p.Snapshot)
		if err != nil {
			return nil, Validation("%w", err)
		}
		return snapshot, nil
	}
	return udev.New(), nil
}

// Scan loads the configuration and runs discovery against the chosen
// enumerator. See [ScanHost].
func (p *HostParams) Scan(ctx context.Context, logger *slog.Logger) (*Host, error) {
	cfg, err := p.LoadConfig()
	if err != nil {
		return nil, err
	}
	enumerator, err := p.Enumerator()
	if err != nil {
		return nil, err
	}
	return ScanHost(ctx, cfg, enumerator, logger)
}

// TopologyOptions converts the topology section of cfg.
func TopologyOptions(cfg *config.Config) device.Options {
	return device.Options{
		HubTag:           cfg.Topology.HubTag,
		RootHubVendor:    cfg.Topology.RootHubVendor,
		MaxAncestryDepth: cfg.Topology.MaxAncestryDepth,
	}
}

// ScanHost discovers and classifies devices, resolves the topology, and
// plans the seat capacity. Records that could not be classified or
// placed are reported in Host.Gaps; they never fail the scan.
func ScanHost(ctx context.Context, cfg *config.Config, enumerator device.Enumerator, logger *slog.Logger) (*Host, error) {
	inventory, err := device.Discover(ctx, enumerator)
	if err != nil {
		return nil, Transient("discovering devices: %w", err)
	}
	graph, topologyGaps := device.Resolve(inventory, TopologyOptions(cfg))
	// Interface-level input records carry the same properties as their
	// event nodes, so discovery gaps are routine and logged at debug.
	for _, gap := range inventory.Gaps {
		logger.Debug("record skipped", "error", gap)
	}
	for _, gap := range topologyGaps {
		logger.Warn("device excluded", "error", gap)
	}
	gaps := append(append([]error(nil), inventory.Gaps...), topologyGaps...)

	for _, keyboard := range graph.Keyboards {
		logger.Debug("keyboard found", "device", keyboard.DeviceNode, "syspath", keyboard.SysPath, "hub", hubPath(keyboard))
	}
	for _, mouse := range graph.Mice {
		logger.Debug("mouse found", "device", mouse.DeviceNode, "syspath", mouse.SysPath, "hub", hubPath(mouse))
	}
	for _, video := range graph.Videos {
		logger.Debug("video unit found", "syspath", video.SysPath, "kind", video.Kind, "pci", video.PCISlot, "boot_vga", video.BootVGA)
	}

	capacity := seat.Plan(len(graph.Videos), len(graph.Keyboards), cfg.Seats.MaxSeats)
	logger.Info("host scanned",
		"keyboards", len(graph.Keyboards),
		"mice", len(graph.Mice),
		"videos", len(graph.Videos),
		"hubs", len(graph.Hubs),
		"skipped", len(gaps),
		"capacity", capacity,
	)
	return &Host{Config: cfg, Graph: graph, Gaps: gaps, Capacity: capacity}, nil
}

// Registry creates the seat registry for the planned capacity.
func (h *Host) Registry() (*seat.Registry, error) {
	registry, err := seat.NewRegistry(h.Graph.Videos, h.Capacity, len(h.Graph.Keyboards), h.Config.Seats.SeatPrefix)
	if err != nil {
		return nil, Internal("building seat registry: %w", err)
	}
	return registry, nil
}

func hubPath(d *device.Device) string {
	if d.ParentHub == nil {
		return ""
	}
	return d.ParentHub.SysPath
}
