// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grc20

import (
	"errors"
	"fmt"
)

// Encode-side error causes. An *EncodeError wraps exactly one of these,
// so callers can branch with errors.Is.
var (
	// ErrInvalidValue means a value violates its type's range or
	// normalization rules.
	ErrInvalidValue = errors.New("invalid value")

	// ErrSetUnsetOverlap means an update op sets and unsets the same
	// slot.
	ErrSetUnsetOverlap = errors.New("field both set and unset")

	// ErrUntypedProperty means a property appears only in unset
	// entries or value refs, so its data type cannot be inferred, and
	// EncodeOptions.PropertyTypes does not supply one.
	ErrUntypedProperty = errors.New("property data type unknown")

	// ErrPropertyTypeConflict means one property is paired with values
	// of two different data types in the same edit.
	ErrPropertyTypeConflict = errors.New("property used with conflicting data types")

	// ErrInvalidOp covers structurally invalid ops: nil ops, unknown
	// op implementations, unknown enum values.
	ErrInvalidOp = errors.New("invalid op")
)

// EncodeError reports an in-memory edit that cannot be encoded. These
// are caller bugs: retrying the same edit fails the same way.
type EncodeError struct {
	// Op is the index of the offending op, or -1 for edit-level
	// problems.
	Op int

	// Err is the cause, wrapping one of the Err* sentinels.
	Err error
}

func (e *EncodeError) Error() string {
	if e.Op < 0 {
		return fmt.Sprintf("grc20 encode: %v", e.Err)
	}
	return fmt.Sprintf("grc20 encode: op %d: %v", e.Op, e.Err)
}

// Unwrap returns the cause.
func (e *EncodeError) Unwrap() error { return e.Err }

func opError(index int, err error) *EncodeError {
	return &EncodeError{Op: index, Err: err}
}
