// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compression wraps encoded GRC-20 edits in the compressed
// frame format:
//
//	"GRC2Z" uncompressedLength(varint) zstdFrame
//
// The frame is applied around a complete "GRC2" payload, never inside
// it; package grc20 rejects compressed input and expects callers to
// come here first.
//
// Compression is provided by an [Engine], which builds its zstd
// encoder and decoder lazily on first use. The lifecycle is explicit:
// an engine moves from [StateUninitialized] through [StateLoading] to
// [StateReady] or [StateFailed] exactly once, and concurrent callers
// that arrive during loading wait for the same initialization.
// [Engine.Ready] is the readiness probe and [Engine.Preload] forces
// loading ahead of the first request. [Default] returns the
// process-wide engine used by [EncodeEditAuto] and [DecodeEditAuto].
package compression
