// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"errors"
	"fmt"
)

// DiscoveryGap reports a record that matched a discovery query but is
// missing something its kind requires. The record is skipped.
type DiscoveryGap struct {
	Kind    Kind
	SysPath string
	Reason  string
}

func (e *DiscoveryGap) Error() string {
	return fmt.Sprintf("skipping %s %s: %s", e.Kind, e.SysPath, e.Reason)
}

// TopologyGap reports a classified device whose place in the graph
// could not be determined (unparseable PCI slot, ancestry deeper than
// the walk bound). The device is excluded from the graph.
type TopologyGap struct {
	Kind    Kind
	SysPath string
	Err     error
}

func (e *TopologyGap) Error() string {
	return fmt.Sprintf("excluding %s %s: %v", e.Kind, e.SysPath, e.Err)
}

func (e *TopologyGap) Unwrap() error { return e.Err }

// ErrAncestryTooDeep is wrapped by a [TopologyGap] when the hub walk
// exceeds its depth bound.
var ErrAncestryTooDeep = errors.New("device ancestry exceeds walk depth")
