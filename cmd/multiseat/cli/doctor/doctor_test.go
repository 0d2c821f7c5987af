// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"testing"

	"github.com/bureau-foundation/multiseat/cmd/multiseat/cli"
)

func TestResultConstructors(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }
	tests := []struct {
		name     string
		result   Result
		status   Status
		hasFix   bool
		elevated bool
	}{
		{"pass", Pass("check", "fine"), StatusPass, false, false},
		{"fail", Fail("check", "broken"), StatusFail, false, false},
		{"fail with fix", FailWithFix("check", "broken", "repair", noop), StatusFail, true, false},
		{"fail elevated", FailElevated("check", "broken", "repair as root", noop), StatusFail, true, true},
		{"warn", Warn("check", "heads up"), StatusWarn, false, false},
		{"skip", Skip("check", "prerequisite failed"), StatusSkip, false, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.result.Status != test.status {
				t.Errorf("status = %q, want %q", test.result.Status, test.status)
			}
			if test.result.HasFix() != test.hasFix {
				t.Errorf("HasFix() = %v, want %v", test.result.HasFix(), test.hasFix)
			}
			if test.result.Elevated != test.elevated {
				t.Errorf("Elevated = %v, want %v", test.result.Elevated, test.elevated)
			}
		})
	}
}

func TestExecuteFixesDryRun(t *testing.T) {
	fixCalled := false
	results := []Result{
		FailWithFix("check", "broken", "fix it", func(ctx context.Context) error {
			fixCalled = true
			return nil
		}),
	}

	outcome := ExecuteFixes(context.Background(), results, true, true)

	if fixCalled {
		t.Error("dry run called a fix action")
	}
	if outcome.FixedCount != 0 || results[0].Status != StatusFail {
		t.Errorf("dry run changed state: outcome %+v, status %q", outcome, results[0].Status)
	}
}

func TestExecuteFixesSuccess(t *testing.T) {
	results := []Result{
		Pass("ok check", "fine"),
		FailWithFix("broken check", "broken", "fix it", func(ctx context.Context) error { return nil }),
		Fail("unfixable", "no fix available"),
	}

	outcome := ExecuteFixes(context.Background(), results, false, false)

	if outcome.FixedCount != 1 {
		t.Errorf("fixed count = %d, want 1", outcome.FixedCount)
	}
	if results[1].Status != StatusFixed {
		t.Errorf("fixed result status = %q, want fixed", results[1].Status)
	}
	if results[0].Status != StatusPass || results[2].Status != StatusFail {
		t.Errorf("untouched results changed: %q, %q", results[0].Status, results[2].Status)
	}
}

func TestExecuteFixesPermissionDenied(t *testing.T) {
	results := []Result{
		FailWithFix("check", "broken", "fix it", func(ctx context.Context) error {
			return fmt.Errorf("creating /etc/X11/xorg.conf.d: %w", syscall.EACCES)
		}),
	}

	outcome := ExecuteFixes(context.Background(), results, false, false)

	if !outcome.PermissionDenied {
		t.Error("EACCES fix failure not reported as permission denied")
	}
	if results[0].Status != StatusFail || !strings.Contains(results[0].Message, "insufficient permissions") {
		t.Errorf("result = %+v", results[0])
	}
}

func TestExecuteFixesFixError(t *testing.T) {
	results := []Result{
		FailWithFix("check", "broken", "fix it", func(ctx context.Context) error {
			return errors.New("fix exploded")
		}),
	}

	outcome := ExecuteFixes(context.Background(), results, false, false)

	if outcome.FixedCount != 0 || results[0].Status != StatusFail {
		t.Errorf("failed fix counted: outcome %+v, status %q", outcome, results[0].Status)
	}
	if results[0].Message != "broken (fix failed: fix exploded)" {
		t.Errorf("message = %q", results[0].Message)
	}
}

func TestExecuteFixesElevated(t *testing.T) {
	for _, root := range []bool{false, true} {
		t.Run(fmt.Sprintf("root=%v", root), func(t *testing.T) {
			elevatedCalled := false
			results := []Result{
				FailElevated("elevated check", "needs root", "create directory", func(ctx context.Context) error {
					elevatedCalled = true
					return nil
				}),
				FailWithFix("normal check", "broken", "fix it", func(ctx context.Context) error { return nil }),
			}

			outcome := ExecuteFixes(context.Background(), results, false, root)

			if elevatedCalled != root {
				t.Errorf("elevated fix called = %v, want %v", elevatedCalled, root)
			}
			wantSkipped := 1
			if root {
				wantSkipped = 0
			}
			if outcome.ElevatedSkipped != wantSkipped {
				t.Errorf("elevated skipped = %d, want %d", outcome.ElevatedSkipped, wantSkipped)
			}
			if results[1].Status != StatusFixed {
				t.Errorf("non-elevated result = %q, want fixed", results[1].Status)
			}
		})
	}
}

func TestBuildJSON(t *testing.T) {
	results := []Result{Pass("check1", "ok"), Fail("check2", "broken")}
	output := BuildJSON(results, true, Outcome{PermissionDenied: true, ElevatedSkipped: 2})

	if output.OK || !output.DryRun || !output.PermissionDenied || output.ElevatedSkipped != 2 || len(output.Checks) != 2 {
		t.Errorf("BuildJSON() = %+v", output)
	}
	if !BuildJSON([]Result{Pass("a", "ok"), Warn("b", "meh")}, false, Outcome{}).OK {
		t.Error("warnings made the run not OK")
	}
}

func TestMarkRepaired(t *testing.T) {
	results := []Result{
		Pass("repaired check", "now passing"),
		Pass("always passed", "fine"),
		Fail("still broken", "bad"),
	}
	MarkRepaired(results, map[string]bool{"repaired check": true, "still broken": true})

	if results[0].Status != StatusFixed {
		t.Errorf("repaired check = %q, want fixed", results[0].Status)
	}
	if results[1].Status != StatusPass {
		t.Errorf("always-passed check = %q, want pass", results[1].Status)
	}
	if results[2].Status != StatusFail {
		t.Errorf("still-broken check = %q, want fail", results[2].Status)
	}
}

func TestPrintChecklist(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }

	t.Run("all pass", func(t *testing.T) {
		var output bytes.Buffer
		err := PrintChecklist(&output, []Result{Pass("logind", "reachable")}, false, false, Outcome{})
		if err != nil {
			t.Fatalf("PrintChecklist() = %v", err)
		}
		if !strings.Contains(output.String(), "[PASS ]  logind") || !strings.Contains(output.String(), "All checks passed.") {
			t.Errorf("output:\n%s", output.String())
		}
	})

	t.Run("fixable failure", func(t *testing.T) {
		var output bytes.Buffer
		results := []Result{FailWithFix("xorg config directory", "missing", "create it", noop)}
		err := PrintChecklist(&output, results, false, false, Outcome{})
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != 1 {
			t.Fatalf("PrintChecklist() = %v, want exit code 1", err)
		}
		if !strings.Contains(output.String(), "Run with --fix to repair 1 issue(s).") {
			t.Errorf("output:\n%s", output.String())
		}
	})

	t.Run("dry run", func(t *testing.T) {
		var output bytes.Buffer
		results := []Result{FailElevated("xorg config directory", "missing", "create it", noop)}
		PrintChecklist(&output, results, true, true, Outcome{})
		if !strings.Contains(output.String(), "would fix: create it (requires root)") {
			t.Errorf("output:\n%s", output.String())
		}
	})

	t.Run("elevated skipped", func(t *testing.T) {
		var output bytes.Buffer
		results := []Result{FailElevated("xorg config directory", "missing", "create it", noop)}
		PrintChecklist(&output, results, true, false, Outcome{ElevatedSkipped: 1})
		if !strings.Contains(output.String(), "sudo multiseat doctor --fix") {
			t.Errorf("output:\n%s", output.String())
		}
	})

	t.Run("repaired", func(t *testing.T) {
		var output bytes.Buffer
		results := []Result{{Name: "xorg config directory", Status: StatusFixed, Message: "created"}}
		if err := PrintChecklist(&output, results, true, false, Outcome{FixedCount: 1}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(output.String(), "1 issue(s) repaired.") {
			t.Errorf("output:\n%s", output.String())
		}
	})
}
