// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logind talks to systemd-logind and the systemd manager over
// the system D-Bus.
//
// [Client] covers the calls seat assignment needs: moving a device to
// a seat (org.freedesktop.login1.Manager.AttachDevice), listing seats,
// and enabling and starting the per-seat display unit
// (org.freedesktop.systemd1.Manager). [DryRun] has the same methods and
// only logs, for rehearsing an assignment without touching the host.
package logind
