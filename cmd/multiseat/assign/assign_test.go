// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package assign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/multiseat/cmd/multiseat/cli"
	engine "github.com/bureau-foundation/multiseat/lib/assign"
	"github.com/bureau-foundation/multiseat/lib/attach"
	"github.com/bureau-foundation/multiseat/lib/clock"
	"github.com/bureau-foundation/multiseat/lib/config"
	"github.com/bureau-foundation/multiseat/lib/device"
	"github.com/bureau-foundation/multiseat/lib/device/devicetest"
	"github.com/bureau-foundation/multiseat/lib/keyinput"
	"github.com/bureau-foundation/multiseat/lib/testutil"
)

const (
	keyF1 uint16 = 59
	keyF2 uint16 = 60

	testTimeout = 5 * time.Second
)

// scriptedStream replays its preloaded events, then blocks until the
// listener is retired.
type scriptedStream struct {
	events    chan keyinput.Event
	closed    chan struct{}
	closeOnce sync.Once
}

func newScriptedStream(codes ...uint16) *scriptedStream {
	stream := &scriptedStream{
		events: make(chan keyinput.Event, len(codes)),
		closed: make(chan struct{}),
	}
	for _, code := range codes {
		stream.events <- keyinput.Event{Code: code, Value: keyinput.ValuePress}
	}
	return stream
}

func (s *scriptedStream) Next(ctx context.Context) (keyinput.Event, error) {
	select {
	case event := <-s.events:
		return event, nil
	case <-ctx.Done():
		return keyinput.Event{}, ctx.Err()
	}
}

func (s *scriptedStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

type fakeSessions struct {
	mu       sync.Mutex
	calls    []string
	released bool
}

func (f *fakeSessions) AttachDevice(_ context.Context, seat, sysPath string, _ bool) error {
	f.record("attach %s %s", seat, sysPath)
	return nil
}

func (f *fakeSessions) EnableUnitFiles(_ context.Context, units []string, _, _ bool) error {
	f.record("enable %s", strings.Join(units, " "))
	return nil
}

func (f *fakeSessions) StartUnit(_ context.Context, unit, _ string) error {
	f.record("start %s", unit)
	return nil
}

func (f *fakeSessions) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// testRun wires runAssign to a snapshot host and scripted keyboards.
// The nth keyboard opened replays scripts[n].
type testRun struct {
	params   assignParams
	sessions *fakeSessions
	stdout   bytes.Buffer

	mu      sync.Mutex
	scripts [][]uint16
	opened  []string
}

func newTestRun(t *testing.T, gpus, keyboards int, configYAML string) *testRun {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
	root := t.TempDir()
	snapshot := filepath.Join(root, "host.cbor")
	if err := devicetest.Host(gpus, keyboards).Save(snapshot); err != nil {
		t.Fatal(err)
	}
	configYAML = fmt.Sprintf("paths:\n  xorg_config_dir: %s\n", filepath.Join(root, "xorg.conf.d")) + configYAML
	configPath := testutil.WriteFile(t, root, "multiseat.yaml", configYAML)

	run := &testRun{sessions: &fakeSessions{}}
	run.params.Snapshot = snapshot
	run.params.ConfigPath = configPath
	run.params.OutputJSON = true
	return run
}

func (r *testRun) collaborators(engineClock clock.Clock) collaborators {
	if engineClock == nil {
		engineClock = clock.Real()
	}
	return collaborators{
		stdout: &r.stdout,
		sessions: func(context.Context, *slog.Logger) (attach.SessionManager, func(), error) {
			return r.sessions, func() {
				r.sessions.mu.Lock()
				r.sessions.released = true
				r.sessions.mu.Unlock()
			}, nil
		},
		open: func(keyboard *device.Device, grab bool) (keyinput.Stream, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			var codes []uint16
			if n := len(r.opened); n < len(r.scripts) {
				codes = r.scripts[n]
			}
			r.opened = append(r.opened, fmt.Sprintf("%s grab=%t", keyboard.DeviceNode, grab))
			return newScriptedStream(codes...), nil
		},
		clock: engineClock,
	}
}

func (r *testRun) output(t *testing.T) Output {
	t.Helper()
	var output Output
	if err := json.Unmarshal(r.stdout.Bytes(), &output); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, r.stdout.String())
	}
	return output
}

func TestRunAssignAllClaimed(t *testing.T) {
	run := newTestRun(t, 3, 3, "display:\n  start_units: true\n")
	run.scripts = [][]uint16{{keyF1}, {keyF2}}
	configDir := filepath.Join(filepath.Dir(run.params.ConfigPath), "xorg.conf.d")

	err := runAssign(context.Background(), run.params, run.collaborators(nil), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("runAssign: %v", err)
	}

	output := run.output(t)
	if output.Reason != engine.ReasonAllClaimed {
		t.Errorf("reason = %s, want %s", output.Reason, engine.ReasonAllClaimed)
	}
	if output.Capacity != 2 || len(output.Claimed) != 2 || len(output.Unclaimed) != 0 {
		t.Fatalf("output = %+v, want two claimed seats", output)
	}
	first := output.Claimed[0]
	if first.Index != 1 || first.Key != "F1" || first.Name != "seat-0000_02_00_0" || first.PCISlot != "0000:02:00.0" {
		t.Errorf("first claimed seat = %+v", first)
	}
	if first.Keyboard == "" || first.Hub == "" {
		t.Errorf("first claimed seat lacks its keyboard or hub: %+v", first)
	}

	for _, name := range []string{"90-seat-0000_02_00_0.conf", "90-seat-0000_03_00_0.conf"} {
		content, err := os.ReadFile(filepath.Join(configDir, name))
		if err != nil {
			t.Errorf("reading %s: %v", name, err)
			continue
		}
		if !strings.Contains(string(content), "Section") {
			t.Errorf("%s does not look like an X config fragment:\n%s", name, content)
		}
	}

	run.sessions.mu.Lock()
	calls := strings.Join(run.sessions.calls, "\n")
	released := run.sessions.released
	run.sessions.mu.Unlock()
	for _, want := range []string{
		"enable multiseat-xorg@8192.service",
		"start multiseat-xorg@8192.service",
		"enable multiseat-xorg@12288.service",
		"attach seat-0000_02_00_0 ",
	} {
		if !strings.Contains(calls, want) {
			t.Errorf("session calls missing %q:\n%s", want, calls)
		}
	}
	if !released {
		t.Error("session manager connection was not released")
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	for _, opened := range run.opened {
		if !strings.HasSuffix(opened, "grab=true") {
			t.Errorf("keyboard opened without grab: %s", opened)
		}
	}
}

func TestRunAssignDryRun(t *testing.T) {
	run := newTestRun(t, 2, 2, "")
	run.params.DryRun = true
	run.params.NoGrab = true
	run.scripts = [][]uint16{{keyF1}}
	configDir := filepath.Join(filepath.Dir(run.params.ConfigPath), "xorg.conf.d")

	err := runAssign(context.Background(), run.params, run.collaborators(nil), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("runAssign: %v", err)
	}
	output := run.output(t)
	if !output.DryRun || output.Reason != engine.ReasonAllClaimed || len(output.Claimed) != 1 {
		t.Errorf("output = %+v, want one claimed seat on a dry run", output)
	}
	if _, err := os.Stat(configDir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("dry run touched %s: %v", configDir, err)
	}
	if len(run.sessions.calls) != 0 {
		t.Errorf("dry run reached the session manager: %v", run.sessions.calls)
	}
	for _, opened := range run.opened {
		if !strings.HasSuffix(opened, "grab=false") {
			t.Errorf("--no-grab keyboard opened with grab: %s", opened)
		}
	}
}

func TestRunAssignTimeoutLeavesSeatsUnclaimed(t *testing.T) {
	run := newTestRun(t, 2, 2, "assignment:\n  timeout: 1h\n")
	run.params.Timeout = 30 * time.Second
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	done := make(chan error, 1)
	go func() {
		done <- runAssign(context.Background(), run.params, run.collaborators(fake), slog.New(slog.DiscardHandler))
	}()
	fake.WaitForTimers(1)
	fake.Advance(30 * time.Second)

	err := testutil.RequireReceive(t, done, testTimeout, "assignment did not stop at the timeout")
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("error = %v, want exit code 1", err)
	}
	output := run.output(t)
	if output.Reason != engine.ReasonTimeout {
		t.Errorf("reason = %s, want %s", output.Reason, engine.ReasonTimeout)
	}
	if len(output.Unclaimed) != 1 || output.Unclaimed[0] != "seat-0000_02_00_0" {
		t.Errorf("unclaimed = %v", output.Unclaimed)
	}
}

func TestRunAssignNothingToClaim(t *testing.T) {
	run := newTestRun(t, 1, 3, "")
	run.params.OutputJSON = false

	err := runAssign(context.Background(), run.params, run.collaborators(nil), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("runAssign: %v", err)
	}
	if !strings.Contains(run.stdout.String(), "No seats to configure") {
		t.Errorf("output = %q", run.stdout.String())
	}
	if len(run.opened) != 0 {
		t.Errorf("keyboards opened with nothing to claim: %v", run.opened)
	}
}

func TestRunAssignConfigWriteAborts(t *testing.T) {
	run := newTestRun(t, 2, 2, "")
	blocker := filepath.Join(filepath.Dir(run.params.ConfigPath), "xorg.conf.d")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}
	run.scripts = [][]uint16{{keyF1}}

	err := runAssign(context.Background(), run.params, run.collaborators(nil), slog.New(slog.DiscardHandler))
	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != cli.CategoryInternal {
		t.Fatalf("error = %v, want an internal tool error", err)
	}
	var writeFailure *attach.ConfigWriteFailure
	if !errors.As(err, &writeFailure) {
		t.Errorf("error %v does not carry the config write failure", err)
	}
	output := run.output(t)
	if output.Reason != engine.ReasonAttachmentAborted || output.Error == "" {
		t.Errorf("output = %+v, want an aborted run with its error", output)
	}
}

func TestCommandRejectsSnapshotWithoutDryRun(t *testing.T) {
	err := Command().Execute(context.Background(), []string{"--snapshot", "host.cbor"})
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) || coder.ExitCode() != 2 {
		t.Fatalf("error = %v, want a validation error", err)
	}
	if !strings.Contains(err.Error(), "--dry-run") {
		t.Errorf("error %q does not mention --dry-run", err)
	}
}

func TestPreviewWriterKeepsContent(t *testing.T) {
	writer := &previewWriter{logger: slog.New(slog.DiscardHandler)}
	changed, err := writer.UpdateFile("/etc/X11/xorg.conf.d/90-seat-a.conf", []byte("Section"))
	if err != nil || !changed {
		t.Fatalf("UpdateFile = %v, %v", changed, err)
	}
	if string(writer.files["/etc/X11/xorg.conf.d/90-seat-a.conf"]) != "Section" {
		t.Errorf("files = %v", writer.files)
	}
}
