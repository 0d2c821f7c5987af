// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package status reports seat-assignment progress to the operator.
//
// The assignment engine publishes two kinds of update through a
// [Sink]: the image each seat's display should show (a "press F<n>"
// prompt or a "configured" confirmation) and the overall progress
// counters. Sinks are called from listener goroutines and must be safe
// for concurrent use.
//
// [LogSink] writes structured log lines. [Terminal] renders a live
// seat table with bubbletea. [Multi] fans out to several sinks.
package status
