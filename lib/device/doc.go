// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package device turns raw device-enumeration records into a typed
// hardware graph suitable for seat planning.
//
// The package has two stages. [Discover] runs a fixed set of
// enumeration queries and classifies each returned [Record] into a
// [Device] of a known [Kind]: keyboards, mice, framebuffers, DRM nodes
// and auxiliary "master-of-seat" video outputs. Records that lack a
// required node path or property are reported as [DiscoveryGap] values
// and skipped; classification never aborts.
//
// [Resolve] then builds the [Graph]: it walks each input device's USB
// ancestry to find the nearest seat-capable hub (stopping at root hubs),
// groups DRM nodes under the framebuffer that shares their parent, and
// derives each video unit's display index from its PCI slot. Devices
// whose topology cannot be resolved are excluded and reported as
// [TopologyGap] values.
//
// The graph is built once from one enumeration snapshot and is not
// mutated afterwards. [Snapshot] captures the records a scan touched so
// that a scan can be replayed offline, and doubles as the in-memory
// enumerator used by tests.
package device
