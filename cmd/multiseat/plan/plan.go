// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package plan implements "multiseat plan", which shows how many seats
// can be configured and which video unit, function key, config file,
// and display unit each one would get.
package plan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/bureau-foundation/multiseat/cmd/multiseat/cli"
	"github.com/bureau-foundation/multiseat/lib/attach"
	"github.com/bureau-foundation/multiseat/lib/keyinput"
	"github.com/bureau-foundation/multiseat/lib/xorgconf"
)

type planParams struct {
	cli.JSONOutput
	cli.HostParams
}

// Seat is one planned seat.
type Seat struct {
	Index      int    `json:"index"`
	Key        string `json:"key,omitempty"`
	Name       string `json:"name"`
	Video      string `json:"video"`
	PCISlot    string `json:"pci_slot"`
	ConfigFile string `json:"config_file,omitempty"`
	Unit       string `json:"unit,omitempty"`
}

// Output is the --json form of a plan.
type Output struct {
	VideoUnits int    `json:"video_units"`
	Keyboards  int    `json:"keyboards"`
	MaxSeats   int    `json:"max_seats"`
	Capacity   int    `json:"capacity"`
	Seats      []Seat `json:"seats"`
}

// Command returns the "plan" command.
func Command() *cli.Command {
	var params planParams

	return &cli.Command{
		Name:    "plan",
		Summary: "Show the seats assignment would configure",
		Description: `Compute the number of configurable seats, the smallest of
(video units - 1), (keyboards - 1), and seats.max_seats, and list
each seat with its video unit, function key, X config fragment, and
display unit. seat0 keeps the boot display and one keyboard.

Nothing on the system is changed.`,
		Usage: "multiseat plan [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runPlan(ctx, params, os.Stdout, logger)
		},
	}
}

func runPlan(ctx context.Context, params planParams, stdout io.Writer, logger *slog.Logger) error {
	host, err := params.Scan(ctx, logger)
	if err != nil {
		return err
	}
	output, err := buildPlan(host)
	if err != nil {
		return err
	}
	if params.OutputJSON {
		return cli.WriteJSON(stdout, output)
	}
	printPlan(stdout, output)
	return nil
}

func buildPlan(host *cli.Host) (Output, error) {
	cfg := host.Config
	output := Output{
		VideoUnits: len(host.Graph.Videos),
		Keyboards:  len(host.Graph.Keyboards),
		MaxSeats:   cfg.Seats.MaxSeats,
		Capacity:   host.Capacity,
		Seats:      []Seat{},
	}
	registry, err := host.Registry()
	if err != nil {
		return Output{}, err
	}
	for _, slot := range registry.Slots() {
		planned := Seat{
			Index:   slot.Index,
			Name:    slot.Name,
			Video:   slot.Video.SysPath,
			PCISlot: slot.Video.PCISlot,
		}
		if slot.Index > 0 {
			planned.Key = keyinput.FunctionKeyName(slot.Index)
			planned.ConfigFile = filepath.Join(cfg.Paths.XorgConfigDir, xorgconf.FileName(slot.Name))
			unit, err := attach.UnitInstance(cfg.Display.UnitTemplate, slot.Video.DisplayIndex)
			if err != nil {
				return Output{}, cli.Validation("%w", err)
			}
			planned.Unit = unit
		}
		output.Seats = append(output.Seats, planned)
	}
	return output, nil
}

func printPlan(w io.Writer, output Output) {
	fmt.Fprintf(w, "%d video unit(s), %d keyboard(s), max_seats %d: %d seat(s) to configure\n\n",
		output.VideoUnits, output.Keyboards, output.MaxSeats, output.Capacity)
	if len(output.Seats) == 0 {
		fmt.Fprintln(w, "No video units found.")
		return
	}

	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSEAT\tPCI\tCONFIG\tUNIT")
	for _, planned := range output.Seats {
		key, config, unit := planned.Key, planned.ConfigFile, planned.Unit
		if planned.Index == 0 {
			key, config, unit = "-", "-", "(default seat)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", key, planned.Name, planned.PCISlot, config, unit)
	}
	tw.Flush()
}
