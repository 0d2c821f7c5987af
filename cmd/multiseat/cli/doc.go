// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the multiseat
// configurator.
//
// The central type is [Command], a named subcommand with optional nested
// [Command.Subcommands], a params struct whose tagged fields become
// flags, and a Run function. Commands are assembled into a tree by the
// commands package and dispatched via [Command.Execute], which handles
// flag parsing, subcommand routing, and help output with examples.
//
// Unknown subcommands and flags get a Levenshtein-distance suggestion
// (see suggest.go).
//
// [HostParams] carries the flags shared by every command that inspects
// the machine (--config, --snapshot, --verbose). Its [HostParams.Scan]
// method runs discovery and topology resolution and plans the seat
// capacity, producing a [Host].
package cli
