// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package assign implements "multiseat assign", the interactive seat
// assignment run: every free keyboard listens for a function key, and
// the keyboard that presses Fn first claims seat n, which is then
// attached through logind and given an X config fragment and a
// display unit.
package assign

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bureau-foundation/multiseat/cmd/multiseat/cli"
	engine "github.com/bureau-foundation/multiseat/lib/assign"
	"github.com/bureau-foundation/multiseat/lib/attach"
	"github.com/bureau-foundation/multiseat/lib/clock"
	"github.com/bureau-foundation/multiseat/lib/device"
	"github.com/bureau-foundation/multiseat/lib/keyinput"
	"github.com/bureau-foundation/multiseat/lib/logind"
	"github.com/bureau-foundation/multiseat/lib/seat"
	"github.com/bureau-foundation/multiseat/lib/status"
	"github.com/bureau-foundation/multiseat/lib/xorgconf"
)

type assignParams struct {
	cli.JSONOutput
	cli.HostParams
	DryRun  bool          `json:"dry_run" flag:"dry-run,n" desc:"log session manager calls and config writes instead of performing them"`
	Timeout time.Duration `json:"timeout" flag:"timeout"   desc:"stop waiting after this long (0 keeps assignment.timeout from the configuration)"`
	TUI     bool          `json:"tui"     flag:"tui"       desc:"show a live seat table on the terminal"`
	NoGrab  bool          `json:"no_grab" flag:"no-grab"   desc:"do not grab keyboards exclusively while waiting"`
}

// sessionConnector opens the session manager. The returned function
// releases it.
type sessionConnector func(ctx context.Context, logger *slog.Logger) (attach.SessionManager, func(), error)

// collaborators are the parts of an assignment run that touch the
// machine. Tests replace them.
type collaborators struct {
	stdout   io.Writer
	sessions sessionConnector
	open     func(keyboard *device.Device, grab bool) (keyinput.Stream, error)
	clock    clock.Clock
}

func systemCollaborators() collaborators {
	return collaborators{
		stdout: os.Stdout,
		sessions: func(ctx context.Context, logger *slog.Logger) (attach.SessionManager, func(), error) {
			client, err := logind.Connect(ctx, logger)
			if err != nil {
				return nil, nil, err
			}
			return client, func() { client.Close() }, nil
		},
		open: func(keyboard *device.Device, grab bool) (keyinput.Stream, error) {
			stream, err := keyinput.Open(keyboard.DeviceNode, grab)
			if err != nil {
				return nil, err
			}
			return stream, nil
		},
		clock: clock.Real(),
	}
}

// ClaimedSeat is one seat configured during the run.
type ClaimedSeat struct {
	Index    int    `json:"index"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Keyboard string `json:"keyboard"`
	Hub      string `json:"hub,omitempty"`
	PCISlot  string `json:"pci_slot"`
}

// Output is the --json form of an assignment run.
type Output struct {
	Reason    engine.Reason `json:"reason"`
	DryRun    bool          `json:"dry_run,omitempty"`
	Capacity  int           `json:"capacity"`
	Claimed   []ClaimedSeat `json:"claimed"`
	Unclaimed []string      `json:"unclaimed"`
	Error     string        `json:"error,omitempty"`
}

// Command returns the "assign" command.
func Command() *cli.Command {
	var params assignParams

	return &cli.Command{
		Name:    "assign",
		Summary: "Assign keyboards to seats by function key",
		Description: `Plan the seats this machine supports, then wait for keyboards to
claim them. Each extra seat's screen asks for a function key: pressing
F1 on a keyboard claims seat 1 for it, F2 seat 2, and so on. The
claiming keyboard's seat-capable hub (or the keyboard itself) and the
seat's video unit are attached to the new seat through logind, an X
config fragment is written, and the seat's display unit is enabled.

Assignment ends when every seat is claimed, when the timeout expires,
or on interrupt. A keyboard that claims a seat, and every keyboard
behind the same hub, stops listening.

Exits 0 when every planned seat was claimed (or there was nothing to
claim), 1 when seats were left unclaimed or a seat's X configuration
could not be written.`,
		Usage: "multiseat assign [flags]",
		Examples: []cli.Example{
			{
				Description: "Assign seats interactively",
				Command:     "sudo multiseat assign --tui",
			},
			{
				Description: "Rehearse against a captured machine without touching anything",
				Command:     "multiseat assign --dry-run --snapshot host.cbor",
			},
			{
				Description: "Give up after two minutes",
				Command:     "sudo multiseat assign --timeout 2m",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.Timeout < 0 {
				return cli.Validation("--timeout must not be negative")
			}
			if params.Snapshot != "" && !params.DryRun {
				return cli.Validation("--snapshot requires --dry-run: snapshot devices are not attached to this machine")
			}
			if params.TUI && !cli.StderrIsTerminal() {
				return cli.Validation("--tui needs a terminal on stderr")
			}
			return runAssign(ctx, params, systemCollaborators(), logger)
		},
	}
}

func runAssign(ctx context.Context, params assignParams, with collaborators, logger *slog.Logger) error {
	host, err := params.Scan(ctx, logger)
	if err != nil {
		return err
	}
	cfg := host.Config

	timeout, err := cfg.AssignmentTimeout()
	if err != nil {
		return cli.Validation("%w", err)
	}
	if params.Timeout > 0 {
		timeout = params.Timeout
	}

	registry, err := host.Registry()
	if err != nil {
		return err
	}
	names := make([]string, registry.Len())
	for _, slot := range registry.Slots() {
		names[slot.Index] = slot.Name
	}

	var sessions attach.SessionManager
	var writer attach.ConfigWriter
	if params.DryRun {
		sessions = &logind.DryRun{Logger: logger}
		writer = &previewWriter{logger: logger}
	} else if registry.RemainingUnconfigured() > 0 {
		var release func()
		sessions, release, err = with.sessions(ctx, logger)
		if err != nil {
			return cli.Transient("connecting to logind: %w", err)
		}
		defer release()
		writer = &xorgconf.Writer{Logger: logger}
	}

	var sink status.Sink = &status.LogSink{Logger: logger, Names: names}
	var terminal *status.Terminal
	if params.TUI {
		// Log lines would tear the live table; keep warnings only.
		if !params.Verbose && cli.LogLevel.Level() < slog.LevelWarn {
			cli.LogLevel.Set(slog.LevelWarn)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		terminal = status.NewTerminal(names)
		terminal.Start(cancel)
		sink = status.Multi{terminal, sink}
	}

	grab := cfg.Assignment.GrabKeyboards && !params.NoGrab
	run := &engine.Engine{
		Registry:  registry,
		Keyboards: host.Graph.Keyboards,
		Open: func(keyboard *device.Device) (keyinput.Stream, error) {
			return with.open(keyboard, grab)
		},
		Attacher: &attach.Protocol{
			Sessions:     sessions,
			Writer:       writer,
			ConfigDir:    cfg.Paths.XorgConfigDir,
			UnitTemplate: cfg.Display.UnitTemplate,
			StartUnits:   cfg.Display.StartUnits,
			Logger:       logger,
		},
		Status:  sink,
		Clock:   with.clock,
		Timeout: timeout,
		Logger:  logger,
	}

	result, runErr := run.Run(ctx)
	output := buildOutput(result, registry, params.DryRun, runErr)

	if terminal != nil {
		if err := terminal.Finish(summary(output)); err != nil {
			logger.Warn("terminal view failed", "error", err)
		}
	}

	if params.OutputJSON {
		if err := cli.WriteJSON(with.stdout, output); err != nil {
			return err
		}
	} else {
		printOutput(with.stdout, output)
	}

	if runErr != nil {
		return cli.Internal("assignment aborted: %w", runErr)
	}
	if len(output.Unclaimed) > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func buildOutput(result *engine.Result, registry *seat.Registry, dryRun bool, runErr error) Output {
	output := Output{
		Reason:    result.Reason,
		DryRun:    dryRun,
		Capacity:  registry.Capacity(),
		Claimed:   []ClaimedSeat{},
		Unclaimed: []string{},
	}
	for _, slot := range result.Claimed {
		claimed := ClaimedSeat{
			Index:   slot.Index,
			Key:     keyinput.FunctionKeyName(slot.Index),
			Name:    slot.Name,
			PCISlot: slot.Video.PCISlot,
		}
		if slot.Keyboard != nil {
			claimed.Keyboard = slot.Keyboard.DeviceNode
			if slot.Keyboard.ParentHub != nil {
				claimed.Hub = slot.Keyboard.ParentHub.SysPath
			}
		}
		output.Claimed = append(output.Claimed, claimed)
	}
	for _, index := range result.Unclaimed {
		slot, _ := registry.Slot(index)
		output.Unclaimed = append(output.Unclaimed, slot.Name)
	}
	if runErr != nil {
		output.Error = runErr.Error()
	}
	return output
}

func summary(output Output) string {
	if output.Reason == engine.ReasonCapacityExhausted {
		return "No seats to configure: assignment needs at least two video units and two keyboards."
	}
	text := fmt.Sprintf("%d of %d seat(s) configured (%s).", len(output.Claimed), output.Capacity, output.Reason)
	if output.DryRun {
		text += " Dry run: nothing was changed."
	}
	return text
}

func printOutput(w io.Writer, output Output) {
	for _, claimed := range output.Claimed {
		keyboard := claimed.Keyboard
		if claimed.Hub != "" {
			keyboard += " via hub " + claimed.Hub
		}
		fmt.Fprintf(w, "%-4s %s  %s\n", claimed.Key, claimed.Name, keyboard)
	}
	for _, name := range output.Unclaimed {
		fmt.Fprintf(w, "     %s  unclaimed\n", name)
	}
	fmt.Fprintln(w, summary(output))
	if output.Error != "" {
		fmt.Fprintf(w, "Stopped: %s\n", output.Error)
	}
}
