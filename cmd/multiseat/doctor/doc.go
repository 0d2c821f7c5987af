// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor implements "multiseat doctor", which checks that the
// machine can run seat assignment: privileges, systemd and logind, the
// udev database, input device access, the X configuration directory,
// the display unit template, and enough hardware for a second seat.
package doctor
