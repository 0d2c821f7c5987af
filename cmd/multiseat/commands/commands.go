// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the multiseat command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	assigncmd "github.com/bureau-foundation/multiseat/cmd/multiseat/assign"
	"github.com/bureau-foundation/multiseat/cmd/multiseat/cli"
	doctorcmd "github.com/bureau-foundation/multiseat/cmd/multiseat/doctor"
	plancmd "github.com/bureau-foundation/multiseat/cmd/multiseat/plan"
	scancmd "github.com/bureau-foundation/multiseat/cmd/multiseat/scan"
	seatscmd "github.com/bureau-foundation/multiseat/cmd/multiseat/seats"
	"github.com/bureau-foundation/multiseat/lib/version"
)

// Root builds and returns the complete command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "multiseat",
		Description: `multiseat: turn one Linux machine into several seats.

Each extra graphics card gets its own seat, and the keyboard (plus
everything on its hub) that claims a seat by pressing its function key
is attached to it through logind.`,
		Subcommands: []*cli.Command{
			doctorcmd.Command(),
			scancmd.Command(),
			plancmd.Command(),
			assigncmd.Command(),
			seatscmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("multiseat %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Check that this machine can run extra seats (start here)",
				Command:     "multiseat doctor",
			},
			{
				Description: "See the seats the hardware supports",
				Command:     "multiseat plan",
			},
			{
				Description: "Assign keyboards to seats",
				Command:     "sudo multiseat assign --tui",
			},
			{
				Description: "Show the seats logind knows about",
				Command:     "multiseat seats",
			},
		},
	}
}
