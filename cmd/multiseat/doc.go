// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Multiseat configures extra seats on a Linux machine: it discovers
// graphics cards and keyboards through udev, plans how many seats the
// hardware supports, and lets each keyboard claim a seat by pressing
// the seat's function key. Subcommands cover diagnosis (doctor),
// discovery (scan, plan), assignment (assign), and inspection (seats).
package main
