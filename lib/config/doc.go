// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for multiseat.
//
// Configuration is loaded from a single file named by either the
// MULTISEAT_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). With neither, [Default] applies unchanged. There is
// no ~/.config discovery and no automatic file search, so the values in
// effect are always the defaults plus one auditable file.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Seats, Topology, Paths, Display,
//     and Assignment sections
//   - [Default] -- returns a Config with the built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other multiseat packages.
package config
