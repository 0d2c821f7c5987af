// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package assign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/multiseat/lib/clock"
	"github.com/bureau-foundation/multiseat/lib/device"
	"github.com/bureau-foundation/multiseat/lib/keyinput"
	"github.com/bureau-foundation/multiseat/lib/seat"
	"github.com/bureau-foundation/multiseat/lib/status"
)

// Reason says why assignment stopped.
type Reason string

const (
	ReasonAllClaimed        Reason = "all-claimed"
	ReasonCapacityExhausted Reason = "capacity-exhausted"
	ReasonTimeout           Reason = "timeout"
	ReasonCanceled          Reason = "canceled"
	ReasonNoListeners       Reason = "no-listeners"
	ReasonAttachmentAborted Reason = "attachment-aborted"
)

// ErrCapacityExhausted reports that the host has no seat to configure
// beyond the default one. It is informational: zero extra seats is a
// valid outcome.
var ErrCapacityExhausted = errors.New("no seats to configure: need at least two video units and two keyboards")

var (
	errAllClaimed = errors.New("all seats claimed")
	errTimeout    = errors.New("assignment timed out")
)

// attachAborted carries a fatal Attach error through the cancel cause.
type attachAborted struct {
	seat string
	err  error
}

func (e *attachAborted) Error() string {
	return fmt.Sprintf("attaching %s: %v", e.seat, e.err)
}

func (e *attachAborted) Unwrap() error { return e.err }

// Attacher binds a freshly claimed slot's hardware to its seat. An
// error stops assignment.
type Attacher interface {
	Attach(ctx context.Context, slot seat.SlotView) error
}

// Result is the outcome of one assignment run.
type Result struct {
	Reason Reason `json:"reason"`

	// Claimed holds the seats configured during this run, in index
	// order.
	Claimed []seat.SlotView `json:"claimed"`

	// Unclaimed holds the indices of seats still waiting for a
	// keyboard.
	Unclaimed []int `json:"unclaimed"`
}

// Engine runs assignment over a registry. Registry, Keyboards, Open,
// and Attacher are required.
type Engine struct {
	Registry  *seat.Registry
	Keyboards []*device.Device

	// Open starts reading key events from a keyboard. A keyboard that
	// fails to open is logged and skipped.
	Open func(keyboard *device.Device) (keyinput.Stream, error)

	Attacher Attacher

	// Status receives seat images and progress. Nil discards.
	Status status.Sink

	// Clock drives the timeout. Nil means the real clock.
	Clock clock.Clock

	// Timeout stops assignment after this long. Zero waits until every
	// seat is claimed or the context is cancelled.
	Timeout time.Duration

	Logger *slog.Logger
}

// listener is one keyboard's read loop state. Keyboards behind one
// hub share a group context, so a claim by any of them retires all of
// them.
type listener struct {
	keyboard *device.Device
	stream   keyinput.Stream
	group    context.Context
	retire   context.CancelFunc
}

// run is the state shared by the listeners of one Run call.
type run struct {
	engine *Engine
	stop   context.CancelCauseFunc
	sink   status.Sink
	logger *slog.Logger

	mu      sync.Mutex
	aborted *attachAborted
}

// abort records the first fatal attach error and stops assignment. The
// error is kept even if assignment was already stopping for another
// reason.
func (r *run) abort(failure *attachAborted) {
	r.mu.Lock()
	if r.aborted == nil {
		r.aborted = failure
	}
	r.mu.Unlock()
	r.stop(failure)
}

// Run listens until assignment stops and returns the outcome. The
// error is non-nil only when attaching a seat failed fatally; the
// result is returned in that case too.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sink := e.Status
	if sink == nil {
		sink = status.Discard{}
	}
	engineClock := e.Clock
	if engineClock == nil {
		engineClock = clock.Real()
	}

	for _, slot := range e.Registry.Slots() {
		if slot.State == seat.Configured {
			sink.SeatImage(slot.Index, status.Configured)
		} else {
			sink.SeatImage(slot.Index, status.PressKey)
		}
	}
	sink.Progress(e.Registry.RemainingUnconfigured(), e.Registry.AvailableKeyboards())

	if e.Registry.RemainingUnconfigured() == 0 {
		logger.Info("no seats to configure",
			"capacity", e.Registry.Capacity(),
			"keyboards", len(e.Keyboards),
		)
		return e.result(ReasonCapacityExhausted), nil
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if e.Timeout > 0 {
		timer := engineClock.AfterFunc(e.Timeout, func() { cancel(errTimeout) })
		defer timer.Stop()
	}

	type hubGroup struct {
		ctx    context.Context
		retire context.CancelFunc
	}
	groups := make(map[string]hubGroup)
	var listeners []*listener
	for _, keyboard := range e.Keyboards {
		if ctx.Err() != nil {
			break
		}
		stream, err := e.Open(keyboard)
		if err != nil {
			logger.Warn("keyboard unavailable for assignment",
				"device", keyboard.DeviceNode,
				"syspath", keyboard.SysPath,
				"error", err,
			)
			continue
		}
		binding := keyboard.BindingPath()
		group, ok := groups[binding]
		if !ok {
			groupContext, retire := context.WithCancel(ctx)
			group = hubGroup{ctx: groupContext, retire: retire}
			groups[binding] = group
		}
		listeners = append(listeners, &listener{
			keyboard: keyboard,
			stream:   stream,
			group:    group.ctx,
			retire:   group.retire,
		})
	}
	defer func() {
		for _, group := range groups {
			group.retire()
		}
	}()
	state := &run{engine: e, stop: cancel, sink: sink, logger: logger}
	switch {
	case ctx.Err() != nil:
		// Stopped while opening keyboards: spawn nothing.
		for _, l := range listeners {
			l.stream.Close()
		}
	case len(listeners) == 0:
		logger.Warn("no keyboard could be opened for assignment", "keyboards", len(e.Keyboards))
		return e.result(ReasonNoListeners), nil
	default:
		logger.Info("waiting for seat claims",
			"seats", e.Registry.RemainingUnconfigured(),
			"listeners", len(listeners),
			"timeout", e.Timeout,
		)
		var wg sync.WaitGroup
		for _, l := range listeners {
			wg.Add(1)
			go func() {
				defer wg.Done()
				state.listen(ctx, l)
			}()
		}
		wg.Wait()
	}

	if state.aborted != nil {
		logger.Error("assignment aborted", "seat", state.aborted.seat, "error", state.aborted.err)
		return e.result(ReasonAttachmentAborted), state.aborted
	}

	cause := context.Cause(ctx)
	switch {
	case errors.Is(cause, errAllClaimed):
		logger.Info("all seats claimed")
		return e.result(ReasonAllClaimed), nil
	case errors.Is(cause, errTimeout):
		logger.Info("assignment timed out", "remaining", e.Registry.RemainingUnconfigured())
		return e.result(ReasonTimeout), nil
	case cause == nil:
		logger.Warn("every keyboard stopped before all seats were claimed",
			"remaining", e.Registry.RemainingUnconfigured())
		return e.result(ReasonNoListeners), nil
	default:
		logger.Info("assignment cancelled", "cause", cause)
		return e.result(ReasonCanceled), nil
	}
}

// listen reads one keyboard until it claims a seat, its group retires,
// assignment stops, or its stream fails. A successful claim ends the
// loop rather than returning to listening: the keyboard and its hub
// now belong to the claimed seat.
func (r *run) listen(ctx context.Context, l *listener) {
	defer l.stream.Close()
	registry := r.engine.Registry
	logger := r.logger.With("device", l.keyboard.DeviceNode, "syspath", l.keyboard.SysPath)

	for {
		event, err := l.stream.Next(l.group)
		if err != nil {
			if l.group.Err() == nil {
				logger.Warn("keyboard stopped", "error", err)
			}
			return
		}
		if event.Value != keyinput.ValuePress {
			continue
		}
		index, ok := keyinput.FunctionKeyIndex(event.Code)
		if !ok || !registry.IsClaimable(index) {
			continue
		}
		if !registry.TryClaim(index, l.keyboard) {
			continue
		}

		l.retire()
		slot, _ := registry.Slot(index)
		logger.Info("seat claimed", "seat", slot.Name, "index", index, "hub", hubPath(l.keyboard))

		if err := r.engine.Attacher.Attach(context.WithoutCancel(ctx), slot); err != nil {
			r.abort(&attachAborted{seat: slot.Name, err: err})
			return
		}

		available := registry.ReleaseKeyboard()
		remaining := registry.RemainingUnconfigured()
		r.sink.SeatImage(index, status.Configured)
		r.sink.Progress(remaining, available)
		if remaining == 0 {
			r.stop(errAllClaimed)
		}
		return
	}
}

func (e *Engine) result(reason Reason) *Result {
	result := &Result{Reason: reason, Claimed: []seat.SlotView{}, Unclaimed: []int{}}
	for _, slot := range e.Registry.Slots() {
		if slot.Index == 0 {
			continue
		}
		if slot.State == seat.Configured {
			result.Claimed = append(result.Claimed, slot)
		} else {
			result.Unclaimed = append(result.Unclaimed, slot.Index)
		}
	}
	return result
}

func hubPath(keyboard *device.Device) string {
	if keyboard.ParentHub == nil {
		return ""
	}
	return keyboard.ParentHub.SysPath
}
