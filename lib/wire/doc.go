// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the byte-level primitives of the GRC-20 edit
// format: a growable [Writer] and a bounded [Reader].
//
// Encodings:
//
//   - Unsigned varints are LEB128: 7 data bits per byte, continuation
//     in the high bit, at most 10 bytes for a 64-bit value.
//   - Signed varints are zigzag-mapped onto unsigned varints.
//   - Fixed-width integers (16, 32, 48, 64 bit) are little-endian. The
//     48-bit form stores the low 6 bytes of a 64-bit value and is
//     sign-extended from bit 47 on read.
//   - Float64 is IEEE-754, little-endian.
//   - Strings are UTF-8 with a varint byte-count prefix. Invalid UTF-8
//     is a decode error, never replaced.
//   - Byte arrays carry a varint length prefix.
//   - IDs are exactly 16 raw bytes with no prefix.
//
// Every Reader failure is an [*Error] carrying a stable [Code] and the
// byte offset at which decoding failed. Codes are the programmatic
// contract; messages are for humans.
package wire
