// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for multiseat packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] wrap the
// select-with-timeout pattern for channel assertions so that tests do
// not call time.After themselves. They are the only place in the test
// suite where real wall-clock timeouts are used; everything else
// drives time through lib/clock.
//
// [WriteFile] creates a file and its parent directories under a test
// root, for tests that build synthetic /etc or /sys trees.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
