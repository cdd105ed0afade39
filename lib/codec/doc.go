// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR configuration used for edit
// documents.
//
// The binary GRC-20 format is hand-specified and lives in package
// grc20. Everything that is a plain data structure (edit documents,
// tool output) is serialized with JSON for people and CBOR for
// programs. This package fixes the CBOR side so that every caller
// encodes identically: Core Deterministic Encoding (RFC 8949 §4.2),
// with types that implement encoding.TextMarshaler (id.ID,
// edithash.Hash) written as text strings.
//
// Decoding is strict. Duplicate map keys and fields the target struct
// does not declare are errors, since a silently dropped field in an
// edit document would produce a different edit.
//
// Types carry `json` struct tags only; fxamacker/cbor falls back to
// them, so one tag set names fields in both formats.
package codec
