// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package xorgconf renders and writes the per-seat X server
// configuration fragments.
//
// Each configured seat gets one file, 90-<seat>.conf, in the X server's
// config directory. The fragment pins a ServerLayout, Device, and Screen
// to the seat with MatchSeat and binds the Device to the seat's video
// unit by BusID, so the X server started for the seat drives the right
// card. Rendering is deterministic: the same seat and video unit always
// produce the same bytes, which lets [Writer.UpdateFile] skip writes
// that would change nothing.
package xorgconf
