// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyinput

import (
	"context"
	"strconv"

	evdev "github.com/holoplot/go-evdev"
)

// Key event values reported by the kernel.
const (
	ValueRelease int32 = 0
	ValuePress   int32 = 1
	ValueRepeat  int32 = 2
)

// Event is one EV_KEY event.
type Event struct {
	Code  uint16
	Value int32
}

// Stream is a source of key events from one keyboard.
type Stream interface {
	// Next blocks until the next key event, the stream fails, or ctx
	// is cancelled (in which case it returns ctx's error).
	Next(ctx context.Context) (Event, error)

	Close() error
}

// FunctionKeyIndex maps a function key code to the seat index it
// selects: F1 is 1 through F24 is 24. Linux key codes are not
// contiguous: F1-F10 are 59-68, F11 and F12 are 87 and 88, F13-F24 are
// 183-194. Any other code returns false.
func FunctionKeyIndex(code uint16) (int, bool) {
	key := evdev.EvCode(code)
	switch {
	case key >= evdev.KEY_F1 && key <= evdev.KEY_F10:
		return int(key-evdev.KEY_F1) + 1, true
	case key == evdev.KEY_F11:
		return 11, true
	case key == evdev.KEY_F12:
		return 12, true
	case key >= evdev.KEY_F13 && key <= evdev.KEY_F24:
		return int(key-evdev.KEY_F13) + 13, true
	default:
		return 0, false
	}
}

// FunctionKeyName returns "F<n>" for a seat index, as shown to users.
func FunctionKeyName(index int) string {
	if index < 1 || index > 24 {
		return ""
	}
	return "F" + strconv.Itoa(index)
}
