// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(5 * time.Second)
	want := epoch.Add(5 * time.Second)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockAfter(t *testing.T) {
	clock := Fake(epoch)
	channel := clock.After(5 * time.Second)

	clock.Advance(3 * time.Second)
	select {
	case <-channel:
		t.Fatal("After fired before its deadline")
	default:
	}

	clock.Advance(2 * time.Second)
	select {
	case <-channel:
	default:
		t.Fatal("After did not fire at its deadline")
	}
}

func TestFakeClockAfterZeroDuration(t *testing.T) {
	select {
	case <-Fake(epoch).After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
}

func TestFakeClockAfterFunc(t *testing.T) {
	clock := Fake(epoch)
	var order []int
	clock.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	clock.AfterFunc(1*time.Second, func() { order = append(order, 1) })

	if clock.PendingCount() != 2 {
		t.Fatalf("PendingCount() = %d, want 2", clock.PendingCount())
	}
	clock.Advance(5 * time.Second)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("callbacks ran in order %v, want [1 2]", order)
	}
	if clock.PendingCount() != 0 {
		t.Errorf("PendingCount() after firing = %d, want 0", clock.PendingCount())
	}
}

func TestFakeClockAfterFuncStop(t *testing.T) {
	clock := Fake(epoch)
	called := false
	timer := clock.AfterFunc(time.Second, func() { called = true })

	if !timer.Stop() {
		t.Error("Stop() on a pending timer = false, want true")
	}
	if timer.Stop() {
		t.Error("second Stop() = true, want false")
	}
	clock.Advance(time.Minute)
	if called {
		t.Error("stopped AfterFunc callback ran")
	}
}

func TestFakeClockStopAfterFire(t *testing.T) {
	clock := Fake(epoch)
	timer := clock.AfterFunc(time.Second, func() {})
	clock.Advance(time.Second)
	if timer.Stop() {
		t.Error("Stop() after the callback ran = true, want false")
	}
}

func TestFakeClockWaitForTimers(t *testing.T) {
	clock := Fake(epoch)
	fired := make(chan struct{})
	go func() {
		<-clock.After(time.Second)
		close(fired)
	}()

	clock.WaitForTimers(1)
	clock.Advance(time.Second)

	select {
	case <-fired:
	case <-time.After(5 * time.Second): //nolint:realclock test hang prevention
		t.Fatal("goroutine did not observe the advanced clock")
	}
}
