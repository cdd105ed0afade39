// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the grc20 packages.
//
// [ID] builds a recognizable ID from one repeated byte, so that test
// failures print IDs like 8181...81 whose origin is obvious. [Ptr]
// takes the address of a literal for the optional fields that edits
// are full of.
//
// [RequireClosed] encapsulates the timeout safety valve for tests that
// wait on goroutines, so that a deadlock fails the test instead of
// hanging it.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
