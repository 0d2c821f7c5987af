// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keyinput reads key events from Linux evdev keyboards and maps
// function keys to seat indexes.
//
// [Open] returns a [Stream] whose Next blocks until a key event arrives.
// Cancelling the context passed to Next unblocks a pending read without
// waiting for another key press, so a listener goroutine stops as soon
// as its context is done.
package keyinput
