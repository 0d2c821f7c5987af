// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/multiseat/cmd/multiseat/cli"
	"github.com/bureau-foundation/multiseat/cmd/multiseat/cli/doctor"
	"github.com/bureau-foundation/multiseat/lib/config"
	"github.com/bureau-foundation/multiseat/lib/logind"
)

type commandParams struct {
	cli.JSONOutput
	cli.HostParams
	Fix    bool `json:"fix"     flag:"fix"     desc:"repair fixable failures"`
	DryRun bool `json:"dry_run" flag:"dry-run" desc:"with --fix, show what would be repaired without changing anything"`
}

// seatLister is the part of the session manager the checks use.
type seatLister interface {
	ListSeats(ctx context.Context) ([]logind.Seat, error)
	Close() error
}

// environment holds the host paths and collaborators the checks read.
// Tests point it at temporary directories and fakes.
type environment struct {
	stdout      io.Writer
	root        bool
	systemdDir  string
	udevDataDir string
	inputDir    string
	unitDirs    []string
	connect     func(ctx context.Context, logger *slog.Logger) (seatLister, error)
}

func systemEnvironment() environment {
	return environment{
		stdout:      os.Stdout,
		root:        doctor.IsRoot(),
		systemdDir:  "/run/systemd/system",
		udevDataDir: "/run/udev/data",
		inputDir:    "/dev/input",
		unitDirs:    []string{"/etc/systemd/system", "/run/systemd/system", "/usr/lib/systemd/system", "/lib/systemd/system"},
		connect: func(ctx context.Context, logger *slog.Logger) (seatLister, error) {
			client, err := logind.Connect(ctx, logger)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
}

// Command returns the "doctor" command.
func Command() *cli.Command {
	var params commandParams

	return &cli.Command{
		Name:    "doctor",
		Summary: "Check that this machine is ready for seat assignment",
		Description: `Check everything seat assignment depends on: root privileges, systemd
and logind on the system bus, the udev database, read access to input
devices, a writable X configuration directory, the display unit
template, and at least two video units and two keyboards.

Use --fix to repair fixable issues (currently: creating the X
configuration directory). Use --fix --dry-run to preview repairs.`,
		Usage: "multiseat doctor [flags]",
		Examples: []cli.Example{
			{
				Description: "Check machine readiness",
				Command:     "multiseat doctor",
			},
			{
				Description: "Repair what can be repaired",
				Command:     "sudo multiseat doctor --fix",
			},
			{
				Description: "Machine-readable output",
				Command:     "multiseat doctor --json",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.DryRun && !params.Fix {
				return cli.Validation("--dry-run requires --fix")
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			return runDoctor(ctx, params, systemEnvironment(), logger)
		},
	}
}

func runDoctor(ctx context.Context, params commandParams, env environment, logger *slog.Logger) error {
	cfg, err := params.LoadConfig()
	if err != nil {
		return err
	}

	const maxFixIterations = 3
	repairedNames := make(map[string]bool)
	var aggregate doctor.Outcome
	var results []doctor.Result

	for range maxFixIterations {
		results = checkMachine(ctx, cfg, params.HostParams, env, logger)
		if !params.Fix {
			break
		}
		for _, result := range results {
			if result.Status == doctor.StatusFail {
				repairedNames[result.Name] = true
			}
		}
		outcome := doctor.ExecuteFixes(ctx, results, params.DryRun, env.root)
		aggregate.PermissionDenied = aggregate.PermissionDenied || outcome.PermissionDenied
		aggregate.ElevatedSkipped += outcome.ElevatedSkipped
		aggregate.FixedCount += outcome.FixedCount
		if outcome.FixedCount == 0 || params.DryRun {
			break
		}
	}

	doctor.MarkRepaired(results, repairedNames)

	if params.OutputJSON {
		if err := cli.WriteJSON(env.stdout, doctor.BuildJSON(results, params.DryRun, aggregate)); err != nil {
			return err
		}
		if doctor.Failed(results) {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}
	return doctor.PrintChecklist(env.stdout, results, params.Fix, params.DryRun, aggregate)
}

// checkMachine runs every check in order.
func checkMachine(ctx context.Context, cfg *config.Config, hostParams cli.HostParams, env environment, logger *slog.Logger) []doctor.Result {
	var results []doctor.Result
	results = append(results, checkPrivileges(env))
	results = append(results, checkSystemd(env))
	results = append(results, checkLogind(ctx, env, logger))
	results = append(results, checkUdevDatabase(env, hostParams.Snapshot != ""))
	results = append(results, checkXorgConfigDir(cfg))
	results = append(results, checkUnitTemplate(cfg, env))
	results = append(results, checkHardware(ctx, cfg, hostParams, env, logger)...)
	return results
}

func checkPrivileges(env environment) doctor.Result {
	const name = "privileges"
	if env.root {
		return doctor.Pass(name, "running as root")
	}
	return doctor.Warn(name, "not running as root; assign needs root to grab keyboards and attach devices")
}

func checkSystemd(env environment) doctor.Result {
	const name = "systemd"
	if _, err := os.Stat(env.systemdDir); err != nil {
		return doctor.Fail(name, fmt.Sprintf("systemd is not the running init system (%s missing)", env.systemdDir))
	}
	return doctor.Pass(name, "systemd is running")
}

func checkLogind(ctx context.Context, env environment, logger *slog.Logger) doctor.Result {
	const name = "logind"
	client, err := env.connect(ctx, logger)
	if err != nil {
		return doctor.Fail(name, fmt.Sprintf("cannot reach the system bus: %v", err))
	}
	defer client.Close()

	seats, err := client.ListSeats(ctx)
	if err != nil {
		return doctor.Fail(name, fmt.Sprintf("%s not answering: %v", logind.LoginDestination, err))
	}
	names := make([]string, len(seats))
	for i, seat := range seats {
		names[i] = seat.ID
	}
	return doctor.Pass(name, fmt.Sprintf("%d seat(s): %s", len(seats), strings.Join(names, ", ")))
}

func checkUdevDatabase(env environment, usingSnapshot bool) doctor.Result {
	const name = "udev database"
	if _, err := os.Stat(env.udevDataDir); err != nil {
		if usingSnapshot {
			return doctor.Warn(name, fmt.Sprintf("%s missing; checks use the snapshot", env.udevDataDir))
		}
		return doctor.Fail(name, fmt.Sprintf("%s missing; is systemd-udevd running?", env.udevDataDir))
	}
	return doctor.Pass(name, env.udevDataDir+" present")
}

func checkXorgConfigDir(cfg *config.Config) doctor.Result {
	const name = "xorg config directory"
	dir := cfg.Paths.XorgConfigDir

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return doctor.FailElevated(name, dir+" does not exist", "create "+dir,
			func(ctx context.Context) error { return cfg.EnsurePaths() })
	}
	if err != nil {
		return doctor.Fail(name, fmt.Sprintf("stat %s: %v", dir, err))
	}
	if !info.IsDir() {
		return doctor.Fail(name, dir+" is not a directory")
	}
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return doctor.Warn(name, fmt.Sprintf("%s is not writable by this user: %v", dir, err))
	}
	return doctor.Pass(name, dir+" writable")
}

func checkUnitTemplate(cfg *config.Config, env environment) doctor.Result {
	const name = "display unit template"
	for _, dir := range env.unitDirs {
		path := filepath.Join(dir, cfg.Display.UnitTemplate)
		if _, err := os.Stat(path); err == nil {
			return doctor.Pass(name, path)
		}
	}
	return doctor.Warn(name, fmt.Sprintf("%s not installed; seats are attached but no display server is enabled for them", cfg.Display.UnitTemplate))
}

func checkHardware(ctx context.Context, cfg *config.Config, hostParams cli.HostParams, env environment, logger *slog.Logger) []doctor.Result {
	enumerator, err := hostParams.Enumerator()
	if err == nil {
		var host *cli.Host
		host, err = cli.ScanHost(ctx, cfg, enumerator, logger)
		if err == nil {
			return hardwareResults(host, env)
		}
	}
	return []doctor.Result{
		doctor.Fail("device discovery", err.Error()),
		doctor.Skip("input device access", "device discovery failed"),
		doctor.Skip("video units", "device discovery failed"),
		doctor.Skip("keyboards", "device discovery failed"),
		doctor.Skip("seat capacity", "device discovery failed"),
	}
}

func hardwareResults(host *cli.Host, env environment) []doctor.Result {
	results := []doctor.Result{doctor.Pass("device discovery",
		fmt.Sprintf("%d record(s) skipped", len(host.Gaps)))}

	results = append(results, checkInputAccess(host, env))

	videos := len(host.Graph.Videos)
	if videos >= 2 {
		results = append(results, doctor.Pass("video units", fmt.Sprintf("%d found", videos)))
	} else {
		results = append(results, doctor.Fail("video units", fmt.Sprintf("%d found; a second seat needs at least 2", videos)))
	}

	keyboards := len(host.Graph.Keyboards)
	if keyboards >= 2 {
		results = append(results, doctor.Pass("keyboards", fmt.Sprintf("%d found", keyboards)))
	} else {
		results = append(results, doctor.Fail("keyboards", fmt.Sprintf("%d found; a second seat needs at least 2", keyboards)))
	}

	if host.Capacity > 0 {
		results = append(results, doctor.Pass("seat capacity", fmt.Sprintf("%d seat(s) can be configured", host.Capacity)))
	} else {
		results = append(results, doctor.Warn("seat capacity", "no seats can be configured beyond seat0"))
	}
	return results
}

func checkInputAccess(host *cli.Host, env environment) doctor.Result {
	const name = "input device access"
	if err := unix.Access(env.inputDir, unix.R_OK|unix.X_OK); err != nil {
		return doctor.Fail(name, fmt.Sprintf("cannot read %s: %v", env.inputDir, err))
	}
	var unreadable []string
	for _, keyboard := range host.Graph.Keyboards {
		if err := unix.Access(keyboard.DeviceNode, unix.R_OK); err != nil {
			unreadable = append(unreadable, keyboard.DeviceNode)
		}
	}
	if len(unreadable) > 0 {
		return doctor.Fail(name, fmt.Sprintf("%d keyboard(s) not readable: %s", len(unreadable), strings.Join(unreadable, ", ")))
	}
	return doctor.Pass(name, fmt.Sprintf("%d keyboard(s) readable", len(host.Graph.Keyboards)))
}
