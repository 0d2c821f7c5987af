// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package attach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bureau-foundation/multiseat/lib/seat"
	"github.com/bureau-foundation/multiseat/lib/xorgconf"
)

// DefaultUnitTemplate is the display service template unit.
const DefaultUnitTemplate = "multiseat-xorg@.service"

// SessionManager is the subset of logind and systemd the protocol
// drives. lib/logind provides the D-Bus and dry-run implementations.
type SessionManager interface {
	AttachDevice(ctx context.Context, seat, sysPath string, interactive bool) error
	EnableUnitFiles(ctx context.Context, units []string, runtime, force bool) error
	StartUnit(ctx context.Context, unit, mode string) error
}

// ConfigWriter persists a config file, skipping identical content.
type ConfigWriter interface {
	UpdateFile(path string, content []byte) (bool, error)
}

// Protocol attaches claimed seats. All fields except StartUnits and
// Logger are required.
type Protocol struct {
	Sessions SessionManager
	Writer   ConfigWriter

	// ConfigDir is the X server config directory fragments go into.
	ConfigDir string

	// UnitTemplate is the display service template, such as
	// "multiseat-xorg@.service".
	UnitTemplate string

	// StartUnits starts each enabled display unit immediately instead
	// of waiting for the next boot.
	StartUnits bool

	Logger *slog.Logger
}

// Attach performs the attachment steps for a freshly claimed slot. The
// slot must carry its video unit and claiming keyboard. The only error
// returned is a *ConfigWriteFailure (or a malformed slot); session
// manager failures are logged.
func (p *Protocol) Attach(ctx context.Context, slot seat.SlotView) error {
	if slot.Video == nil || slot.Keyboard == nil {
		return fmt.Errorf("slot %d (%s) is missing its video unit or keyboard", slot.Index, slot.Name)
	}
	logger := p.Logger.With("seat", slot.Name, "index", slot.Index)

	p.attachDevice(ctx, logger, slot.Name, slot.Video.SysPath)
	for _, node := range slot.Video.DRMNodes {
		p.attachDevice(ctx, logger, slot.Name, node.SysPath)
	}
	if slot.Keyboard.ParentHub != nil {
		p.attachDevice(ctx, logger, slot.Name, slot.Keyboard.ParentHub.SysPath)
	} else {
		p.attachDevice(ctx, logger, slot.Name, slot.Keyboard.SysPath)
	}

	path := filepath.Join(p.ConfigDir, xorgconf.FileName(slot.Name))
	fragment, err := xorgconf.FragmentFor(slot.Name, slot.Video)
	if err != nil {
		return &ConfigWriteFailure{Seat: slot.Name, Path: path, Err: err}
	}
	content, err := fragment.Render()
	if err != nil {
		return &ConfigWriteFailure{Seat: slot.Name, Path: path, Err: err}
	}
	changed, err := p.Writer.UpdateFile(path, content)
	if err != nil {
		return &ConfigWriteFailure{Seat: slot.Name, Path: path, Err: err}
	}
	logger.Info("display config ready", "path", path, "changed", changed)

	unit, err := UnitInstance(p.UnitTemplate, slot.Video.DisplayIndex)
	if err != nil {
		p.logFailure(logger, &AttachmentFailure{Seat: slot.Name, Operation: "enable", Target: p.UnitTemplate, Err: err})
		return nil
	}
	if err := p.Sessions.EnableUnitFiles(ctx, []string{unit}, false, true); err != nil {
		p.logFailure(logger, &AttachmentFailure{Seat: slot.Name, Operation: "enable", Target: unit, Err: err})
		return nil
	}
	logger.Info("display unit enabled", "unit", unit)

	if p.StartUnits {
		if err := p.Sessions.StartUnit(ctx, unit, "replace"); err != nil {
			p.logFailure(logger, &AttachmentFailure{Seat: slot.Name, Operation: "start", Target: unit, Err: err})
			return nil
		}
		logger.Info("display unit started", "unit", unit)
	}
	return nil
}

func (p *Protocol) attachDevice(ctx context.Context, logger *slog.Logger, seatName, sysPath string) {
	if err := p.Sessions.AttachDevice(ctx, seatName, sysPath, false); err != nil {
		p.logFailure(logger, &AttachmentFailure{Seat: seatName, Operation: "attach", Target: sysPath, Err: err})
		return
	}
	logger.Info("device attached", "syspath", sysPath)
}

func (p *Protocol) logFailure(logger *slog.Logger, failure *AttachmentFailure) {
	level := slog.LevelWarn
	if errors.Is(failure.Err, context.Canceled) {
		level = slog.LevelInfo
	}
	logger.Log(context.Background(), level, "attachment step failed",
		"operation", failure.Operation,
		"target", failure.Target,
		"error", failure.Err,
	)
}

// UnitInstance inserts the display index after the '@' of a template
// unit name: "multiseat-xorg@.service" and 4096 give
// "multiseat-xorg@4096.service".
func UnitInstance(template string, displayIndex uint64) (string, error) {
	at := strings.IndexByte(template, '@')
	if at < 0 {
		return "", fmt.Errorf("unit template %q has no '@'", template)
	}
	return template[:at+1] + strconv.FormatUint(displayIndex, 10) + template[at+1:], nil
}
