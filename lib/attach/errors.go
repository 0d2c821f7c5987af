// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package attach

import "fmt"

// AttachmentFailure is a session manager call that failed for one
// device or unit. It is logged, never returned from Attach.
type AttachmentFailure struct {
	Seat      string
	Operation string
	Target    string
	Err       error
}

func (e *AttachmentFailure) Error() string {
	return fmt.Sprintf("%s %s for %s: %v", e.Operation, e.Target, e.Seat, e.Err)
}

func (e *AttachmentFailure) Unwrap() error { return e.Err }

// ConfigWriteFailure means the seat's X server fragment could not be
// written. It stops assignment.
type ConfigWriteFailure struct {
	Seat string
	Path string
	Err  error
}

func (e *ConfigWriteFailure) Error() string {
	return fmt.Sprintf("writing display config %s for %s: %v", e.Path, e.Seat, e.Err)
}

func (e *ConfigWriteFailure) Unwrap() error { return e.Err }
