// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// LogLevel is the minimum level of every logger from [NewCommandLogger].
// Commands adjust it after loading configuration; loggers already
// handed out follow the change.
var LogLevel = new(slog.LevelVar)

// NewCommandLogger creates a structured logger on stderr. When stderr
// is a terminal it uses slog.TextHandler for human-readable output;
// when stderr is piped or redirected (systemd units, scripts) it uses
// slog.JSONHandler so the journal gets machine-parseable records.
func NewCommandLogger() *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
}

func newLogger(w io.Writer, terminal bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: LogLevel}
	if terminal {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// StderrIsTerminal reports whether stderr is attached to a terminal.
func StderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
