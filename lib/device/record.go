// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package device

import "context"

// Record is one raw device-enumeration entry, as reported by the
// kernel device manager. Implementations must return a nil interface
// (not a typed nil) from Parent and ParentWithSubsystemDevtype when
// there is no such ancestor.
type Record interface {
	Subsystem() string
	Devtype() string
	SysPath() string
	DevPath() string
	SysName() string

	// DevNode returns the /dev path, or "" when the device has none.
	DevNode() string

	// Property returns a udev property value, or "" when unset.
	Property(key string) string

	// Attribute returns a sysfs attribute value, or "" when unset.
	Attribute(name string) string

	HasTag(tag string) bool

	// Parent returns the immediate parent, or nil at the top of the tree.
	Parent() Record

	// ParentWithSubsystemDevtype returns the nearest ancestor (never the
	// record itself) with the given subsystem and, if devtype is
	// non-empty, devtype.
	ParentWithSubsystemDevtype(subsystem, devtype string) Record
}

// Query selects records from an [Enumerator]. All non-empty fields
// must match.
type Query struct {
	Subsystem string

	// Properties maps udev property names to required values. An empty
	// value matches any record that has the property set.
	Properties map[string]string

	Tag string
}

// Matches reports whether record satisfies the query. Enumerators that
// cannot filter natively use it as a post-filter.
func (q Query) Matches(record Record) bool {
	if q.Subsystem != "" && record.Subsystem() != q.Subsystem {
		return false
	}
	for key, want := range q.Properties {
		got := record.Property(key)
		if got == "" || (want != "" && got != want) {
			return false
		}
	}
	if q.Tag != "" && !record.HasTag(q.Tag) {
		return false
	}
	return true
}

// Enumerator lists device records matching a query. Results are
// ordered by sysfs path.
type Enumerator interface {
	List(ctx context.Context, query Query) ([]Record, error)
}
