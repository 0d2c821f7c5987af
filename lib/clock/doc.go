// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that timeouts
// can be tested without sleeping.
//
// Code that needs a deadline takes a [Clock] field. Production wiring
// uses [Real]; tests use [Fake] and drive time explicitly:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	engine := &assign.Engine{Clock: fake, Timeout: time.Minute}
//	go engine.Run(ctx)
//	fake.WaitForTimers(1)    // the engine has armed its timeout
//	fake.Advance(time.Minute) // fire it
package clock
