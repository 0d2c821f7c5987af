// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "multiseat",
		Subcommands: []*Command{
			{
				Name: "scan",
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					called = "scan"
					return nil
				},
			},
			{
				Name: "assign",
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					called = "assign"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"assign"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "assign" {
		t.Errorf("dispatched to %q, want %q", called, "assign")
	}
}

func TestCommand_Execute_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")

	var got any
	command := &Command{
		Name: "scan",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			got = ctx.Value(key{})
			if logger == nil {
				t.Error("Run received a nil logger")
			}
			return nil
		},
	}
	if err := command.Execute(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if got != "marker" {
		t.Errorf("context value = %v, want marker", got)
	}
}

type testParams struct {
	JSONOutput
	Timeout time.Duration `json:"timeout" flag:"timeout"        desc:"how long to wait"`
	DryRun  bool          `json:"dry_run" flag:"dry-run,n"      desc:"log instead of acting"`
	Prefix  string        `json:"prefix"  flag:"prefix"         desc:"seat name prefix" default:"seat-"`
}

func TestCommand_Execute_ParamsFlags(t *testing.T) {
	var params testParams
	var received []string

	command := &Command{
		Name:   "assign",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			received = args
			return nil
		},
	}

	err := command.Execute(context.Background(), []string{"--timeout", "30s", "-n", "--json", "extra"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if params.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", params.Timeout)
	}
	if !params.DryRun || !params.OutputJSON {
		t.Errorf("DryRun = %v, OutputJSON = %v, want both true", params.DryRun, params.OutputJSON)
	}
	if params.Prefix != "seat-" {
		t.Errorf("Prefix = %q, want default seat-", params.Prefix)
	}
	if len(received) != 1 || received[0] != "extra" {
		t.Errorf("args = %v, want [extra]", received)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	var params testParams
	command := &Command{
		Name:   "assign",
		Params: func() any { return &params },
		Run:    func(ctx context.Context, args []string, logger *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--dyr-run"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --dry-run") {
		t.Errorf("error = %q, want suggestion for --dry-run", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	var params testParams
	command := &Command{
		Name:   "assign",
		Params: func() any { return &params },
		Run:    func(ctx context.Context, args []string, logger *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "multiseat",
		Subcommands: []*Command{
			{Name: "scan"},
			{Name: "assign"},
			{Name: "doctor"},
		},
	}

	err := root.Execute(context.Background(), []string{"asign"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), `did you mean "assign"`) {
		t.Errorf("error = %q, want suggestion for assign", err.Error())
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "multiseat",
		Subcommands: []*Command{{Name: "scan", Summary: "Show the hardware graph"}},
		output:      &help,
	}

	err := root.Execute(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("Execute() = %v, want subcommand required", err)
	}
	if !strings.Contains(help.String(), "Show the hardware graph") {
		t.Errorf("help output missing subcommand summary:\n%s", help.String())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			var help bytes.Buffer
			ran := false
			var params testParams
			root := &Command{
				Name:   "multiseat",
				output: &help,
				Subcommands: []*Command{{
					Name:        "assign",
					Description: "Wait for keyboards to claim seats.",
					Params:      func() any { return &params },
					Examples: []Example{{
						Description: "Preview without touching the system",
						Command:     "multiseat assign --dry-run",
					}},
					Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
						ran = true
						return nil
					},
				}},
			}

			if err := root.Execute(context.Background(), []string{"assign", helpArg}); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if ran {
				t.Error("Run was called for a help flag")
			}
			output := help.String()
			for _, want := range []string{
				"Wait for keyboards to claim seats.",
				"multiseat assign [flags]",
				"--dry-run",
				"# Preview without touching the system",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("help missing %q:\n%s", want, output)
				}
			}
		})
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "multiseat"}
	child := &Command{Name: "doctor", parent: root}
	if got := child.fullName(); got != "multiseat doctor" {
		t.Errorf("fullName() = %q, want %q", got, "multiseat doctor")
	}
}
