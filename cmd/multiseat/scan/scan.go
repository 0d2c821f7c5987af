// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scan implements "multiseat scan", which shows the resolved
// hardware graph and can save it as a snapshot for offline replay.
package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/bureau-foundation/multiseat/cmd/multiseat/cli"
	"github.com/bureau-foundation/multiseat/lib/device"
)

type scanParams struct {
	cli.JSONOutput
	cli.HostParams
	Save string `json:"save" flag:"save" desc:"write the scanned udev records to this file as a CBOR snapshot"`
}

// Output is the --json form of a scan.
type Output struct {
	Graph    *device.Graph `json:"graph"`
	Capacity int           `json:"capacity"`
	Skipped  []string      `json:"skipped"`
}

// Command returns the "scan" command.
func Command() *cli.Command {
	var params scanParams

	return &cli.Command{
		Name:    "scan",
		Summary: "Show video units, keyboards, mice, and seat-capable hubs",
		Description: `Enumerate input and video devices through udev, classify them, and
resolve each input device's seat-capable hub. Prints the graph that
"multiseat plan" and "multiseat assign" work from.

With --save, also writes the udev records behind the graph to a CBOR
snapshot. Pass it to any command with --snapshot to replay this
machine's hardware elsewhere.`,
		Usage: "multiseat scan [flags]",
		Examples: []cli.Example{
			{
				Description: "Show this machine's hardware",
				Command:     "multiseat scan",
			},
			{
				Description: "Capture the hardware for a bug report",
				Command:     "multiseat scan --save host.cbor",
			},
			{
				Description: "Replay a captured machine",
				Command:     "multiseat scan --snapshot host.cbor --json",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runScan(ctx, params, os.Stdout, logger)
		},
	}
}

func runScan(ctx context.Context, params scanParams, stdout io.Writer, logger *slog.Logger) error {
	cfg, err := params.LoadConfig()
	if err != nil {
		return err
	}
	enumerator, err := params.Enumerator()
	if err != nil {
		return err
	}
	host, err := cli.ScanHost(ctx, cfg, enumerator, logger)
	if err != nil {
		return err
	}

	if params.Save != "" {
		snapshot, err := device.Capture(ctx, enumerator, cfg.Topology.HubTag)
		if err != nil {
			return cli.Transient("capturing snapshot: %w", err)
		}
		if err := snapshot.Save(params.Save); err != nil {
			return cli.Internal("%w", err)
		}
		logger.Info("snapshot saved", "path", params.Save, "records", len(snapshot.Records))
	}

	output := Output{Graph: host.Graph, Capacity: host.Capacity, Skipped: []string{}}
	for _, gap := range host.Gaps {
		output.Skipped = append(output.Skipped, gap.Error())
	}
	if params.OutputJSON {
		return cli.WriteJSON(stdout, output)
	}
	printGraph(stdout, host)
	return nil
}

func printGraph(w io.Writer, host *cli.Host) {
	graph := host.Graph
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "VIDEO UNITS (%d)\n", len(graph.Videos))
	fmt.Fprintln(tw, "  KIND\tPCI\tDISPLAY\tBOOT\tDRM\tSYSPATH")
	for _, video := range graph.Videos {
		kind := "kms"
		if video.Kind == device.KindAuxVideo {
			kind = "aux:" + video.Output
		}
		boot := ""
		if video.BootVGA {
			boot = "yes"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\t%d\t%s\n", kind, video.PCISlot, video.DisplayIndex, boot, len(video.DRMNodes), video.SysPath)
	}

	printInputs(tw, "KEYBOARDS", graph.Keyboards)
	printInputs(tw, "MICE", graph.Mice)

	fmt.Fprintf(tw, "\nSEAT-CAPABLE HUBS (%d)\n", len(graph.Hubs))
	for _, hub := range graph.Hubs {
		fmt.Fprintf(tw, "  %s:%s\t%s\n", hub.VendorID, hub.ProductID, hub.SysPath)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d seat(s) can be configured beyond seat0", host.Capacity)
	if len(host.Gaps) > 0 {
		fmt.Fprintf(w, "; %d record(s) skipped (--verbose for details)", len(host.Gaps))
	}
	fmt.Fprintln(w)
}

func printInputs(w io.Writer, title string, devices []*device.Device) {
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(devices))
	if len(devices) == 0 {
		return
	}
	fmt.Fprintln(w, "  NODE\tHUB\tSEAT")
	for _, input := range devices {
		hub := "-"
		if input.ParentHub != nil {
			hub = input.ParentHub.SysPath
		}
		seatName := input.SeatName
		if seatName == "" {
			seatName = "seat0"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", input.DeviceNode, hub, seatName)
	}
}
