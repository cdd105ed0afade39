// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"errors"
	"fmt"
)

// Code classifies a decode failure. Codes are stable strings so that
// callers (and tools that log them) can branch on failure kind without
// parsing messages.
type Code string

const (
	// CodeInvalidMagic means the input does not start with the GRC2
	// magic bytes.
	CodeInvalidMagic Code = "invalid_magic"

	// CodeUnsupportedVersion means the header version byte is not the
	// one version this codec understands.
	CodeUnsupportedVersion Code = "unsupported_version"

	// CodeCompressedInput means the input carries the GRC2Z magic. The
	// caller must decompress before decoding.
	CodeCompressedInput Code = "compressed_input"

	// CodeUnexpectedEOF means the input ended in the middle of a field.
	CodeUnexpectedEOF Code = "unexpected_eof"

	// CodeVarintOverflow means a varint ran past 10 bytes or overflowed
	// its target width.
	CodeVarintOverflow Code = "varint_overflow"

	// CodeInvalidUTF8 means a string field is not valid UTF-8.
	CodeInvalidUTF8 Code = "invalid_utf8"

	// CodeIndexOutOfBounds means a dictionary or context index does not
	// refer to an entry that was declared.
	CodeIndexOutOfBounds Code = "index_out_of_bounds"

	// CodeInvalidValue means a value payload violates its type's range
	// or normalization rules.
	CodeInvalidValue Code = "invalid_value"

	// CodeReservedBits means a flag byte has a reserved bit set.
	CodeReservedBits Code = "reserved_bits"

	// CodeMalformed covers every other structural problem: unknown enum
	// bytes, size mismatches, trailing data.
	CodeMalformed Code = "malformed"
)

// Error is a decode failure.
type Error struct {
	// Code classifies the failure.
	Code Code

	// Offset is the byte offset in the input where the failure was
	// detected, or -1 when it does not apply.
	Offset int

	// Err carries the human-readable detail.
	Err error
}

func (e *Error) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("grc20 decode (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("grc20 decode (%s) at offset %d: %v", e.Code, e.Offset, e.Err)
}

// Unwrap returns the underlying detail error.
func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so that
// errors.Is(err, &wire.Error{Code: wire.CodeInvalidUTF8}) works.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Code == e.Code
}

// Errorf creates an Error with the given code and offset.
func Errorf(code Code, offset int, format string, args ...any) *Error {
	return &Error{Code: code, Offset: offset, Err: fmt.Errorf(format, args...)}
}

// CodeOf returns the Code of the first *Error in err's chain, or ""
// when err is nil or carries no code.
func CodeOf(err error) Code {
	var wireErr *Error
	if errors.As(err, &wireErr) {
		return wireErr.Code
	}
	return ""
}
