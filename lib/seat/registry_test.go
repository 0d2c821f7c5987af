// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package seat

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bureau-foundation/multiseat/lib/device"
)

// testVideos returns n KMS video units on buses 0..n-1.
func testVideos(n int) []*device.Device {
	videos := make([]*device.Device, n)
	for i := range videos {
		videos[i] = &device.Device{
			Kind:         device.KindKMSVideo,
			SysName:      fmt.Sprintf("fb%d", i),
			SysPath:      fmt.Sprintf("/sys/devices/pci0000:00/0000:%02x:00.0/graphics/fb%d", i, i),
			PCISlot:      fmt.Sprintf("0000:%02x:00.0", i),
			DisplayIndex: uint64(i) << 12,
		}
	}
	return videos
}

func testKeyboard(n int) *device.Device {
	return &device.Device{
		Kind:       device.KindKeyboard,
		SysName:    fmt.Sprintf("event%d", n),
		DeviceNode: fmt.Sprintf("/dev/input/event%d", n),
	}
}

func newTestRegistry(t *testing.T, videos, keyboards int) *Registry {
	t.Helper()
	capacity := Plan(videos, keyboards, MaxFunctionKeySeats)
	registry, err := NewRegistry(testVideos(videos), capacity, keyboards, "seat-")
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return registry
}

func TestNewRegistrySlots(t *testing.T) {
	registry := newTestRegistry(t, 3, 5)

	if registry.Capacity() != 2 || registry.Len() != 3 {
		t.Fatalf("Capacity()=%d Len()=%d, want 2 and 3", registry.Capacity(), registry.Len())
	}
	if registry.RemainingUnconfigured() != 2 {
		t.Errorf("RemainingUnconfigured() = %d, want 2", registry.RemainingUnconfigured())
	}
	if registry.AvailableKeyboards() != 4 {
		t.Errorf("AvailableKeyboards() = %d, want 4", registry.AvailableKeyboards())
	}

	slots := registry.Slots()
	if slots[0].Name != DefaultSeat || slots[0].State != Configured {
		t.Errorf("slot 0 = %+v, want configured %s", slots[0], DefaultSeat)
	}
	if slots[1].Name != "seat-0000_01_00_0" || slots[1].State != Unconfigured {
		t.Errorf("slot 1 = %s/%s, want unconfigured seat-0000_01_00_0", slots[1].Name, slots[1].State)
	}
	if slots[2].Video.PCISlot != "0000:02:00.0" {
		t.Errorf("slot 2 video = %s, want 0000:02:00.0", slots[2].Video.PCISlot)
	}
}

func TestNewRegistryRejectsOvercapacity(t *testing.T) {
	if _, err := NewRegistry(testVideos(2), 2, 5, "seat-"); err == nil {
		t.Error("NewRegistry accepted capacity beyond the video units")
	}
	if _, err := NewRegistry(testVideos(30), 25, 30, "seat-"); err == nil {
		t.Error("NewRegistry accepted capacity beyond the function keys")
	}
}

func TestNewRegistryWithoutVideo(t *testing.T) {
	registry, err := NewRegistry(nil, 0, 3, "seat-")
	if err != nil {
		t.Fatal(err)
	}
	if registry.Len() != 0 || registry.Capacity() != 0 || registry.RemainingUnconfigured() != 0 {
		t.Errorf("registry without video has slots: len=%d", registry.Len())
	}
	if registry.IsClaimable(0) || registry.TryClaim(1, testKeyboard(1)) {
		t.Error("empty registry accepted a claim")
	}
}

func TestTryClaimIsIdempotent(t *testing.T) {
	registry := newTestRegistry(t, 3, 3)
	first, second := testKeyboard(1), testKeyboard(2)

	if !registry.TryClaim(1, first) {
		t.Fatal("first TryClaim(1) = false, want true")
	}
	if registry.TryClaim(1, second) {
		t.Error("second TryClaim(1) = true, want false")
	}
	view, _ := registry.Slot(1)
	if view.Keyboard != first {
		t.Errorf("slot 1 keyboard = %v, want the first claimant", view.Keyboard)
	}
	if registry.IsClaimable(1) {
		t.Error("IsClaimable(1) = true after claim")
	}
	if registry.RemainingUnconfigured() != 1 {
		t.Errorf("RemainingUnconfigured() = %d, want 1", registry.RemainingUnconfigured())
	}
}

func TestTryClaimRace(t *testing.T) {
	registry := newTestRegistry(t, 2, 2)

	const contenders = 100
	var winners atomic.Int32
	var start sync.WaitGroup
	var done sync.WaitGroup
	start.Add(1)
	for i := range contenders {
		done.Add(1)
		go func() {
			defer done.Done()
			start.Wait()
			if registry.TryClaim(1, testKeyboard(i)) {
				winners.Add(1)
			}
		}()
	}
	start.Done()
	done.Wait()

	if winners.Load() != 1 {
		t.Errorf("%d goroutines won slot 1, want exactly 1", winners.Load())
	}
	if registry.RemainingUnconfigured() != 0 {
		t.Errorf("RemainingUnconfigured() = %d, want 0", registry.RemainingUnconfigured())
	}
}

func TestOutOfRangeClaimsLeaveRegistryUnchanged(t *testing.T) {
	registry := newTestRegistry(t, 3, 3)
	for _, index := range []int{-1, 0, 3, 12, 24, 1 << 30} {
		if registry.IsClaimable(index) {
			t.Errorf("IsClaimable(%d) = true", index)
		}
		if registry.TryClaim(index, testKeyboard(1)) {
			t.Errorf("TryClaim(%d) = true", index)
		}
	}
	if registry.RemainingUnconfigured() != 2 {
		t.Errorf("RemainingUnconfigured() = %d, want 2", registry.RemainingUnconfigured())
	}
	for _, view := range registry.Slots()[1:] {
		if view.State != Unconfigured || view.Keyboard != nil {
			t.Errorf("slot %d mutated by out-of-range claims: %+v", view.Index, view)
		}
	}
}

func TestReleaseKeyboardFloorsAtZero(t *testing.T) {
	registry := newTestRegistry(t, 3, 2)
	if got := registry.ReleaseKeyboard(); got != 0 {
		t.Errorf("ReleaseKeyboard() = %d, want 0", got)
	}
	if got := registry.ReleaseKeyboard(); got != 0 {
		t.Errorf("second ReleaseKeyboard() = %d, want 0", got)
	}
	if registry.AvailableKeyboards() != 0 {
		t.Errorf("AvailableKeyboards() = %d, want 0", registry.AvailableKeyboards())
	}
}

func TestSlotOutOfRange(t *testing.T) {
	registry := newTestRegistry(t, 2, 2)
	if _, ok := registry.Slot(2); ok {
		t.Error("Slot(2) exists in a two-slot registry")
	}
	if _, ok := registry.Slot(-1); ok {
		t.Error("Slot(-1) exists")
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		name  string
		video *device.Device
		want  string
	}{
		{
			"kms",
			&device.Device{Kind: device.KindKMSVideo, PCISlot: "0000:01:00.0"},
			"seat-0000_01_00_0",
		},
		{
			"aux",
			&device.Device{Kind: device.KindAuxVideo, PCISlot: "0000:02:00.0", Output: "LCD"},
			"seat-0000_02_00_0-LCD",
		},
		{
			"unparseable slot",
			&device.Device{Kind: device.KindKMSVideo, SysName: "fb3"},
			"seat-fb3",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Name("seat-", test.video); got != test.want {
				t.Errorf("Name() = %q, want %q", got, test.want)
			}
		})
	}
}
