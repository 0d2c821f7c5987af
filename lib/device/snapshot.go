// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/bureau-foundation/multiseat/lib/codec"
)

// SnapshotVersion is the current snapshot file format version.
const SnapshotVersion = 1

// Snapshot is a captured set of device records, closed under the
// parent relation. It implements [Enumerator], so a scan taken on one
// machine can be replayed elsewhere.
type Snapshot struct {
	Version int              `cbor:"version"`
	Records []SnapshotRecord `cbor:"records"`

	bySysPath map[string]*SnapshotRecord
}

// SnapshotRecord is the serialized form of one [Record]. Only the
// properties, attributes, and tags the classifier and resolver read are
// captured.
type SnapshotRecord struct {
	SysPath    string            `cbor:"sys_path"`
	DevPath    string            `cbor:"dev_path,omitempty"`
	Subsystem  string            `cbor:"subsystem,omitempty"`
	Devtype    string            `cbor:"devtype,omitempty"`
	SysName    string            `cbor:"sys_name,omitempty"`
	DevNode    string            `cbor:"dev_node,omitempty"`
	Properties map[string]string `cbor:"properties,omitempty"`
	Attributes map[string]string `cbor:"attributes,omitempty"`
	Tags       []string          `cbor:"tags,omitempty"`
	ParentPath string            `cbor:"parent_path,omitempty"`
}

var (
	capturedProperties = []string{propertyKeyboard, propertyMouse, propertySeat, propertyPCISlot, propertyOutput}
	capturedAttributes = []string{attributeVendor, attributeProduct, attributeBootVGA}
)

// NewSnapshot builds a snapshot from records. Records whose parent is
// not present are treated as roots.
func NewSnapshot(records ...SnapshotRecord) *Snapshot {
	snapshot := &Snapshot{Version: SnapshotVersion, Records: records}
	snapshot.index()
	return snapshot
}

func (s *Snapshot) index() {
	slices.SortFunc(s.Records, func(a, b SnapshotRecord) int { return cmp.Compare(a.SysPath, b.SysPath) })
	s.bySysPath = make(map[string]*SnapshotRecord, len(s.Records))
	for i := range s.Records {
		s.bySysPath[s.Records[i].SysPath] = &s.Records[i]
	}
}

// List returns the records matching query, ordered by sysfs path.
func (s *Snapshot) List(ctx context.Context, query Query) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result []Record
	for i := range s.Records {
		record := snapshotView{snapshot: s, data: &s.Records[i]}
		if query.Matches(record) {
			result = append(result, record)
		}
	}
	return result, nil
}

// Capture runs every discovery query against enumerator and records
// the results together with all of their ancestors.
func Capture(ctx context.Context, enumerator Enumerator, hubTag string) (*Snapshot, error) {
	tags := []string{tagMasterOfSeat, hubTag}
	seen := make(map[string]bool)
	var records []SnapshotRecord

	for _, query := range DiscoveryQueries() {
		matches, err := enumerator.List(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("capturing %s records: %w", query.Subsystem, err)
		}
		for _, record := range matches {
			for current := record; current != nil; current = current.Parent() {
				if seen[current.SysPath()] {
					break
				}
				seen[current.SysPath()] = true
				records = append(records, captureRecord(current, tags))
			}
		}
	}

	return NewSnapshot(records...), nil
}

func captureRecord(record Record, tags []string) SnapshotRecord {
	captured := SnapshotRecord{
		SysPath:   record.SysPath(),
		DevPath:   record.DevPath(),
		Subsystem: record.Subsystem(),
		Devtype:   record.Devtype(),
		SysName:   record.SysName(),
		DevNode:   record.DevNode(),
	}
	for _, key := range capturedProperties {
		if value := record.Property(key); value != "" {
			if captured.Properties == nil {
				captured.Properties = make(map[string]string)
			}
			captured.Properties[key] = value
		}
	}
	for _, name := range capturedAttributes {
		if value := record.Attribute(name); value != "" {
			if captured.Attributes == nil {
				captured.Attributes = make(map[string]string)
			}
			captured.Attributes[name] = value
		}
	}
	for _, tag := range tags {
		if tag != "" && record.HasTag(tag) {
			captured.Tags = append(captured.Tags, tag)
		}
	}
	if parent := record.Parent(); parent != nil {
		captured.ParentPath = parent.SysPath()
	}
	return captured
}

// Save writes the snapshot to path as CBOR.
func (s *Snapshot) Save(path string) error {
	data, err := codec.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by [Snapshot.Save].
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snapshot Snapshot
	if err := codec.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot %s has version %d, want %d", path, snapshot.Version, SnapshotVersion)
	}
	snapshot.index()
	return &snapshot, nil
}

// snapshotView adapts a SnapshotRecord to the Record interface.
type snapshotView struct {
	snapshot *Snapshot
	data     *SnapshotRecord
}

func (v snapshotView) Subsystem() string { return v.data.Subsystem }
func (v snapshotView) Devtype() string { return v.data.Devtype }
func (v snapshotView) SysPath() string { return v.data.SysPath }
func (v snapshotView) DevPath() string { return v.data.DevPath }
func (v snapshotView) SysName() string { return v.data.SysName }
func (v snapshotView) DevNode() string { return v.data.DevNode }
func (v snapshotView) Property(key string) string { return v.data.Properties[key] }
func (v snapshotView) Attribute(name string) string { return v.data.Attributes[name] }

func (v snapshotView) HasTag(tag string) bool {
	return slices.Contains(v.data.Tags, tag)
}

func (v snapshotView) Parent() Record {
	if v.data.ParentPath == "" {
		return nil
	}
	parent, ok := v.snapshot.bySysPath[v.data.ParentPath]
	if !ok {
		return nil
	}
	return snapshotView{snapshot: v.snapshot, data: parent}
}

func (v snapshotView) ParentWithSubsystemDevtype(subsystem, devtype string) Record {
	for ancestor := v.Parent(); ancestor != nil; ancestor = ancestor.Parent() {
		if ancestor.Subsystem() == subsystem && (devtype == "" || ancestor.Devtype() == devtype) {
			return ancestor
		}
	}
	return nil
}
