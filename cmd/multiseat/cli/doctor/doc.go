// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor provides the check-and-repair framework behind
// "multiseat doctor".
//
// A check produces a [Result]. Failures that can be repaired carry a
// [FixAction] closure, and fixes that need root set Result.Elevated.
// [ExecuteFixes] runs the fixes, [PrintChecklist] renders the results
// for a terminal, and [BuildJSON] produces the --json form.
package doctor
