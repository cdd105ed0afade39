// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package id provides the 16-byte identifier used for every entity,
// relation, property, space, and version in a GRC-20 edit.
//
// An [ID] is an opaque binary UUID. Identity is byte equality and
// ordering is lexicographic over the raw bytes, which is the order
// canonical encoding sorts dictionaries by. The text form is 32
// lower-case hex characters without dashes; [Parse] also accepts the
// dashed UUID forms.
//
// JSON and CBOR marshaling use the text form via encoding.TextMarshaler.
package id
