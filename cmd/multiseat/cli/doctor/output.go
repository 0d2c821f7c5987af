// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/bureau-foundation/multiseat/cmd/multiseat/cli"
)

// PrintChecklist writes results to w as a human-readable checklist and
// returns an [cli.ExitError] with code 1 if any check failed. Skipped
// elevated fixes are listed at the bottom with the command to re-run
// as root.
func PrintChecklist(w io.Writer, results []Result, fixMode, dryRun bool, outcome Outcome) error {
	fixableCount := 0
	fixedCount := 0
	var elevatedHints []string

	for _, result := range results {
		prefix := strings.ToUpper(string(result.Status))
		fmt.Fprintf(w, "[%-5s]  %-32s  %s\n", prefix, result.Name, result.Message)

		switch result.Status {
		case StatusFail:
			if result.FixHint == "" {
				continue
			}
			fixableCount++
			if dryRun {
				elevationNote := ""
				if result.Elevated {
					elevationNote = " (requires root)"
				}
				fmt.Fprintf(w, "         %-32s  would fix: %s%s\n", "", result.FixHint, elevationNote)
			}
			if result.Elevated {
				elevatedHints = append(elevatedHints, result.FixHint)
			}
		case StatusFixed:
			fixedCount++
		}
	}

	fmt.Fprintln(w)

	if Failed(results) {
		switch {
		case dryRun && fixableCount > 0:
			fmt.Fprintf(w, "%d issue(s) would be repaired. Run without --dry-run to apply.\n", fixableCount)
		case !fixMode && fixableCount > 0:
			fmt.Fprintf(w, "Run with --fix to repair %d issue(s).\n", fixableCount)
		default:
			fmt.Fprintln(w, "Some checks failed.")
		}
		if outcome.PermissionDenied {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Some fixes failed due to insufficient permissions.")
		}
		if outcome.ElevatedSkipped > 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "%d fix(es) require root privileges:\n", outcome.ElevatedSkipped)
			for _, hint := range elevatedHints {
				fmt.Fprintf(w, "  - %s\n", hint)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Re-run with sudo to apply these fixes:")
			fmt.Fprintln(w, "  sudo multiseat doctor --fix")
		}
		return &cli.ExitError{Code: 1}
	}

	if fixedCount > 0 {
		fmt.Fprintf(w, "%d issue(s) repaired.\n", fixedCount)
		return nil
	}

	fmt.Fprintln(w, "All checks passed.")
	return nil
}
