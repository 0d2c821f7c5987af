// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package seat plans how many seats a host can support and arbitrates
// which keyboard claims each one.
//
// [Plan] is the capacity formula. [Registry] holds one slot per seat:
// slot 0 is the pre-existing default seat and starts configured, slots
// 1 through the planned capacity start unconfigured. The only way a
// slot changes state is [Registry.TryClaim], a compare-and-swap that
// succeeds exactly once per slot no matter how many goroutines race
// for it. Slots never return to unconfigured.
package seat
