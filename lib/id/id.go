// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package id

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Size is the length of an ID in bytes.
const Size = 16

// ID is a 16-byte identifier.
type ID [Size]byte

// Nil is the all-zero ID.
var Nil ID

// FromBytes copies b into an ID. Returns an error unless b is exactly
// 16 bytes long.
func FromBytes(b []byte) (ID, error) {
	var result ID
	if len(b) != Size {
		return result, fmt.Errorf("id: got %d bytes, want %d", len(b), Size)
	}
	copy(result[:], b)
	return result, nil
}

// MustFromBytes is like FromBytes but panics on a length mismatch.
// Intended for constants and tests.
func MustFromBytes(b []byte) ID {
	result, err := FromBytes(b)
	if err != nil {
		panic(err)
	}
	return result
}

// Parse decodes the text form of an ID. Accepts 32 hex characters as
// well as the standard dashed, braced, and urn:uuid: UUID forms.
func Parse(s string) (ID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parsing %q: %w", s, err)
	}
	return ID(parsed), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) ID {
	result, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return result
}

// New returns a random (version 4) ID.
func New() ID {
	return ID(uuid.New())
}

// String returns the 32-character lower-case hex form.
func (i ID) String() string {
	return hex.EncodeToString(i[:])
}

// UUID returns the dashed UUID form.
func (i ID) UUID() string {
	return uuid.UUID(i).String()
}

// Bytes returns a copy of the raw bytes.
func (i ID) Bytes() []byte {
	result := make([]byte, Size)
	copy(result, i[:])
	return result
}

// IsNil reports whether i is the all-zero ID.
func (i ID) IsNil() bool {
	return i == Nil
}

// Compare returns -1, 0, or +1 comparing the raw bytes of a and b.
func Compare(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}

// Less reports whether a sorts before b.
func Less(a, b ID) bool {
	return Compare(a, b) < 0
}

// Sort sorts ids in place by raw byte order.
func Sort(ids []ID) {
	sort.Slice(ids, func(x, y int) bool { return Less(ids[x], ids[y]) })
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
