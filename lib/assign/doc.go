// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package assign runs interactive seat assignment.
//
// The [Engine] listens to every keyboard at once, one goroutine per
// keyboard. Pressing F<n> on a keyboard claims seat n if it is still
// unconfigured: the registry's compare-and-swap picks exactly one
// winner when keyboards race for the same seat. The winner's hardware
// is attached through an [Attacher], and the winning keyboard (with
// every keyboard behind the same seat-capable hub) stops listening,
// because its hub now belongs to the new seat.
//
// Assignment ends when every seat is configured, when the optional
// timeout fires, when the caller cancels, when no keyboard is left to
// listen to, or when attaching a seat fails fatally. [Result] records
// which of these happened and which seats were claimed.
package assign
