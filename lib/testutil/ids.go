// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "github.com/geobrowser/grc-20-sub000/lib/id"

// ID returns an ID whose sixteen bytes are all b.
func ID(b byte) id.ID {
	var v id.ID
	for i := range v {
		v[i] = b
	}
	return v
}

// Ptr returns a pointer to a copy of v.
//
//	Position: testutil.Ptr("a0"),
//	Space:    testutil.Ptr(testutil.ID(0x50)),
func Ptr[T any](v T) *T {
	return &v
}
