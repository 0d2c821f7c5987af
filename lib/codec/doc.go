// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration shared by
// every on-disk binary format in multiseat (currently device snapshots).
//
// JSON is reserved for human-facing output (--json on the CLI); CBOR is
// used for files the tool writes for itself. The encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2), so the same snapshot always
// produces identical bytes and can be compared or digested directly.
//
//	data, err := codec.Marshal(snapshot)
//	err = codec.Unmarshal(data, &snapshot)
//
// Types that are only ever CBOR carry `cbor` struct tags. Types that
// also appear in --json output carry `json` tags, which fxamacker/cbor
// reads as a fallback. Never put both on one field.
package codec
