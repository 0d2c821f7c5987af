// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package seat

// MaxFunctionKeySeats is the largest seat index a function key can
// select (F1 through F24).
const MaxFunctionKeySeats = 24

// Plan returns the number of seats beyond the default seat that can be
// configured. Every seat needs its own video unit and keyboard, and the
// default seat keeps one of each, so the count is
// min(maxSeats, videoUnits-1, keyboards-1), never negative.
func Plan(videoUnits, keyboards, maxSeats int) int {
	return max(0, min(maxSeats, videoUnits-1, keyboards-1))
}
