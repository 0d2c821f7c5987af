// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logind

import (
	"context"
	"log/slog"
	"sync"
)

// DryRun logs the calls a [Client] would make and reports success.
type DryRun struct {
	Logger *slog.Logger

	mu    sync.Mutex
	calls []string
}

// Calls returns a description of each call so far, in order.
func (d *DryRun) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *DryRun) record(call string) {
	d.mu.Lock()
	d.calls = append(d.calls, call)
	d.mu.Unlock()
}

func (d *DryRun) AttachDevice(ctx context.Context, seat, sysPath string, interactive bool) error {
	d.record("AttachDevice " + seat + " " + sysPath)
	d.Logger.InfoContext(ctx, "dry run: would attach device", "seat", seat, "syspath", sysPath)
	return nil
}

func (d *DryRun) EnableUnitFiles(ctx context.Context, units []string, runtime, force bool) error {
	for _, unit := range units {
		d.record("EnableUnitFiles " + unit)
		d.Logger.InfoContext(ctx, "dry run: would enable unit", "unit", unit, "runtime", runtime, "force", force)
	}
	return nil
}

func (d *DryRun) StartUnit(ctx context.Context, unit, mode string) error {
	d.record("StartUnit " + unit + " " + mode)
	d.Logger.InfoContext(ctx, "dry run: would start unit", "unit", unit, "mode", mode)
	return nil
}
