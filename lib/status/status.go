// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package status

import (
	"fmt"
	"log/slog"
)

// Image is what a seat's display shows.
type Image int

const (
	// PressKey prompts the user to press the seat's function key.
	PressKey Image = iota

	// Configured confirms the seat has a keyboard.
	Configured
)

func (i Image) String() string {
	switch i {
	case PressKey:
		return "press-key"
	case Configured:
		return "configured"
	default:
		return fmt.Sprintf("image(%d)", int(i))
	}
}

// Sink receives assignment progress.
type Sink interface {
	// SeatImage sets the image for the seat at index.
	SeatImage(index int, image Image)

	// Progress reports how many seats still need a keyboard and how
	// many keyboards are still free to claim one.
	Progress(remaining, availableKeyboards int)
}

// LogSink reports progress as structured log lines.
type LogSink struct {
	Logger *slog.Logger

	// Names maps seat index to seat name for log context. Optional.
	Names []string
}

// SeatImage logs the seat's new image.
func (s *LogSink) SeatImage(index int, image Image) {
	attributes := []any{"index", index, "image", image.String()}
	if index >= 0 && index < len(s.Names) {
		attributes = append(attributes, "seat", s.Names[index])
	}
	s.Logger.Info("seat display updated", attributes...)
}

// Progress logs the counters.
func (s *LogSink) Progress(remaining, availableKeyboards int) {
	s.Logger.Info("assignment progress",
		"remaining_seats", remaining,
		"available_keyboards", availableKeyboards,
	)
}

// Multi forwards every update to each sink in order.
type Multi []Sink

func (m Multi) SeatImage(index int, image Image) {
	for _, sink := range m {
		sink.SeatImage(index, image)
	}
}

func (m Multi) Progress(remaining, availableKeyboards int) {
	for _, sink := range m {
		sink.Progress(remaining, availableKeyboards)
	}
}

// Discard ignores every update.
type Discard struct{}

func (Discard) SeatImage(int, Image) {}
func (Discard) Progress(int, int) {}
