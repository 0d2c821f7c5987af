// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"strings"
	"testing"

	"github.com/bureau-foundation/multiseat/cmd/multiseat/cli"
)

// TestCommandTree checks that every command in the tree is reachable
// by a unique name and describes itself in help output.
func TestCommandTree(t *testing.T) {
	root := Root()
	seen := make(map[string]bool)
	walkCommands(root, nil, func(command *cli.Command, path []string) {
		name := strings.Join(path, " ")
		if seen[name] {
			t.Errorf("%s: duplicate command", name)
		}
		seen[name] = true
		if len(path) > 1 && command.Summary == "" {
			t.Errorf("%s: missing Summary", name)
		}
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: neither runnable nor a group", name)
		}
		if command.Params != nil {
			// Flag binding panics on malformed tags.
			cli.FlagsFromParams(command.Name, command.Params())
		}
	})

	for _, want := range []string{"multiseat doctor", "multiseat scan", "multiseat plan", "multiseat assign", "multiseat seats", "multiseat version"} {
		if !seen[want] {
			t.Errorf("command tree lacks %q", want)
		}
	}
}

func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = command.Name
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}
