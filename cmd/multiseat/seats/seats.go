// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package seats implements "multiseat seats", which lists the seats
// logind currently knows about.
package seats

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
	"text/tabwriter"

	"github.com/bureau-foundation/multiseat/cmd/multiseat/cli"
	"github.com/bureau-foundation/multiseat/lib/logind"
	"github.com/bureau-foundation/multiseat/lib/xorgconf"
)

type seatsParams struct {
	cli.JSONOutput
	ConfigPath string `json:"config" flag:"config" desc:"configuration file (default: $MULTISEAT_CONFIG, else built-in defaults)"`
}

type seatLister interface {
	ListSeats(ctx context.Context) ([]logind.Seat, error)
	Close() error
}

type connector func(ctx context.Context, logger *slog.Logger) (seatLister, error)

func connectLogind(ctx context.Context, logger *slog.Logger) (seatLister, error) {
	client, err := logind.Connect(ctx, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Seat is one row of the listing.
type Seat struct {
	ID   string `json:"id"`
	Path string `json:"path"`

	// Managed reports whether the seat name carries the configured
	// seat prefix.
	Managed bool `json:"managed"`

	// ConfigFile is the seat's X config fragment, when one exists.
	ConfigFile string `json:"config_file,omitempty"`
}

// Command returns the "seats" command.
func Command() *cli.Command {
	var params seatsParams

	return &cli.Command{
		Name:    "seats",
		Summary: "List the seats logind knows about",
		Description: `Ask logind for its seats and show which of them this tool manages
(their names carry the configured seat prefix) and whether each has an
X config fragment on disk.`,
		Usage: "multiseat seats [flags]",
		Examples: []cli.Example{
			{
				Description: "List seats",
				Command:     "multiseat seats",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runSeats(ctx, params, connectLogind, os.Stdout, logger)
		},
	}
}

func runSeats(ctx context.Context, params seatsParams, connect connector, stdout io.Writer, logger *slog.Logger) error {
	host := cli.HostParams{ConfigPath: params.ConfigPath}
	cfg, err := host.LoadConfig()
	if err != nil {
		return err
	}

	client, err := connect(ctx, logger)
	if err != nil {
		return cli.Transient("connecting to logind: %w", err)
	}
	defer client.Close()

	listed, err := client.ListSeats(ctx)
	if err != nil {
		return cli.Transient("%w", err)
	}

	seats := make([]Seat, 0, len(listed))
	for _, entry := range listed {
		row := Seat{
			ID:      entry.ID,
			Path:    entry.Path,
			Managed: strings.HasPrefix(entry.ID, cfg.Seats.SeatPrefix),
		}
		path := filepath.Join(cfg.Paths.XorgConfigDir, xorgconf.FileName(entry.ID))
		switch _, err := os.Stat(path); {
		case err == nil:
			row.ConfigFile = path
		case !errors.Is(err, fs.ErrNotExist):
			logger.Warn("cannot check seat config", "seat", entry.ID, "path", path, "error", err)
		}
		seats = append(seats, row)
	}
	logger.Debug("seats listed", "count", len(seats))

	if params.OutputJSON {
		return cli.WriteJSON(stdout, seats)
	}

	writer := tabwriter.NewWriter(stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintln(writer, "SEAT\tMANAGED\tCONFIG")
	for _, row := range seats {
		managed := "no"
		if row.Managed {
			managed = "yes"
		}
		configFile := row.ConfigFile
		if configFile == "" {
			configFile = "-"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\n", row.ID, managed, configFile)
	}
	return writer.Flush()
}
