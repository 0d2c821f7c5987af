// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package seat

import (
	"fmt"
	"sync/atomic"

	"github.com/bureau-foundation/multiseat/lib/device"
)

// State is a slot's configuration state.
type State int32

const (
	// Unconfigured slots are waiting for a keyboard to claim them.
	Unconfigured State = iota

	// Configured slots have a keyboard. Slot 0 starts configured.
	Configured
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// MarshalText encodes the state by name for --json output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// slot is the mutable per-seat record. state is the only field written
// after construction, apart from keyboard which is written once by the
// goroutine whose claim succeeded.
type slot struct {
	index    int
	name     string
	video    *device.Device
	state    atomic.Int32
	keyboard atomic.Pointer[device.Device]
}

// SlotView is a point-in-time copy of one slot.
type SlotView struct {
	Index    int            `json:"index"`
	Name     string         `json:"name"`
	State    State          `json:"state"`
	Video    *device.Device `json:"video,omitempty"`
	Keyboard *device.Device `json:"keyboard,omitempty"`
}

// Registry holds the seat slots and arbitrates claims. All methods are
// safe for concurrent use.
type Registry struct {
	slots              []*slot
	unconfigured       atomic.Int64
	availableKeyboards atomic.Int64
}

// NewRegistry creates slot 0 for videos[0] (configured, named
// [DefaultSeat]) and slots 1..capacity for the next video units, named
// with prefix. keyboards is the total keyboard count; one stays with
// the default seat. capacity must not exceed len(videos)-1, which
// [Plan] guarantees.
func NewRegistry(videos []*device.Device, capacity, keyboards int, prefix string) (*Registry, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("negative seat capacity %d", capacity)
	}
	if capacity > 0 && capacity > len(videos)-1 {
		return nil, fmt.Errorf("seat capacity %d needs %d video units, have %d", capacity, capacity+1, len(videos))
	}
	if capacity > MaxFunctionKeySeats {
		return nil, fmt.Errorf("seat capacity %d exceeds the %d function keys", capacity, MaxFunctionKeySeats)
	}

	registry := &Registry{}
	if len(videos) > 0 {
		registry.slots = make([]*slot, capacity+1)
		registry.slots[0] = &slot{index: 0, name: DefaultSeat, video: videos[0]}
		registry.slots[0].state.Store(int32(Configured))
		for index := 1; index <= capacity; index++ {
			registry.slots[index] = &slot{
				index: index,
				name:  Name(prefix, videos[index]),
				video: videos[index],
			}
		}
	}
	registry.unconfigured.Store(int64(capacity))
	registry.availableKeyboards.Store(int64(max(0, keyboards-1)))
	return registry, nil
}

// Capacity returns the number of claimable slots (excluding slot 0).
func (r *Registry) Capacity() int {
	return max(0, len(r.slots)-1)
}

// Len returns the number of slots including slot 0.
func (r *Registry) Len() int {
	return len(r.slots)
}

// IsClaimable reports whether index names an existing unconfigured
// slot. The answer can be stale by the time the caller acts on it;
// only [Registry.TryClaim] is authoritative.
func (r *Registry) IsClaimable(index int) bool {
	if index <= 0 || index >= len(r.slots) {
		return false
	}
	return State(r.slots[index].state.Load()) == Unconfigured
}

// TryClaim atomically moves slot index from unconfigured to configured
// on behalf of keyboard. It returns true for exactly one caller per
// slot; every other caller, and any out-of-range index, gets false and
// leaves the registry unchanged.
func (r *Registry) TryClaim(index int, keyboard *device.Device) bool {
	if index <= 0 || index >= len(r.slots) {
		return false
	}
	target := r.slots[index]
	if !target.state.CompareAndSwap(int32(Unconfigured), int32(Configured)) {
		return false
	}
	target.keyboard.Store(keyboard)
	r.unconfigured.Add(-1)
	return true
}

// RemainingUnconfigured returns the number of slots still waiting for
// a claim. The count only ever decreases.
func (r *Registry) RemainingUnconfigured() int {
	return int(r.unconfigured.Load())
}

// AvailableKeyboards returns how many keyboards are still free to
// claim a seat.
func (r *Registry) AvailableKeyboards() int {
	return int(r.availableKeyboards.Load())
}

// ReleaseKeyboard records that one more keyboard now belongs to a seat
// and returns the new available count. The count never drops below
// zero.
func (r *Registry) ReleaseKeyboard() int {
	for {
		current := r.availableKeyboards.Load()
		if current == 0 {
			return 0
		}
		if r.availableKeyboards.CompareAndSwap(current, current-1) {
			return int(current - 1)
		}
	}
}

// Slot returns a view of slot index, or false if it does not exist.
func (r *Registry) Slot(index int) (SlotView, bool) {
	if index < 0 || index >= len(r.slots) {
		return SlotView{}, false
	}
	target := r.slots[index]
	return SlotView{
		Index:    target.index,
		Name:     target.name,
		State:    State(target.state.Load()),
		Video:    target.video,
		Keyboard: target.keyboard.Load(),
	}, true
}

// Slots returns views of every slot in index order.
func (r *Registry) Slots() []SlotView {
	views := make([]SlotView, 0, len(r.slots))
	for index := range r.slots {
		view, _ := r.Slot(index)
		views = append(views, view)
	}
	return views
}
