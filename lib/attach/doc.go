// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package attach binds a claimed seat's hardware to the seat.
//
// [Protocol.Attach] runs once per successful claim. It asks the session
// manager to move the seat's video unit (and its DRM nodes) and the
// claiming keyboard's hub to the seat, writes the seat's X server
// fragment, and enables the seat's display service. Session manager
// failures are logged as [AttachmentFailure] and do not stop the
// protocol; the slot stays claimed either way. A failed config write
// is a [ConfigWriteFailure] and is returned, since a seat without its
// fragment cannot start a display.
package attach
