// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package edithash computes content addresses for GRC-20 edits: the
// BLAKE3 keyed hash of an edit's canonical encoding. Two edits that
// differ only in dictionary order, author order, or the order of
// values inside an op hash identically.
package edithash

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/geobrowser/grc-20-sub000/lib/grc20"
)

// Size is the digest length in bytes.
const Size = 32

// Hash is a BLAKE3 digest of a canonical edit encoding.
type Hash [Size]byte

// refPrefix begins the short form returned by Hash.Ref.
const refPrefix = "edit-"

// domainKey is "grc20.edit" in ASCII, zero-padded to 32 bytes.
// Changing it changes every edit hash.
var domainKey = [32]byte{
	'g', 'r', 'c', '2', '0', '.', 'e', 'd', 'i', 't',
}

// Of encodes edit canonically and hashes the result. options supplies
// property type hints; Canonical is forced on.
func Of(edit *grc20.Edit, options grc20.EncodeOptions) (Hash, error) {
	options.Canonical = true
	data, err := grc20.Encode(edit, options)
	if err != nil {
		return Hash{}, err
	}
	return Sum(data), nil
}

// OfEncoded hashes an uncompressed payload in any encoding order by
// canonicalizing it first.
func OfEncoded(data []byte) (Hash, error) {
	canonical, err := grc20.Canonicalize(data)
	if err != nil {
		return Hash{}, fmt.Errorf("canonicalizing edit: %w", err)
	}
	return Sum(canonical), nil
}

// Sum hashes bytes that are already a canonical encoding. It does not
// check that they are.
func Sum(canonical []byte) Hash {
	// NewKeyed only fails for keys that are not 32 bytes.
	hasher, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		panic("edithash: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(canonical)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// String returns the 64-character hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Ref returns the short reference used in logs and CLI output: "edit-"
// followed by the first 12 hex characters.
func (h Hash) Ref() string {
	return refPrefix + hex.EncodeToString(h[:6])
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Parse parses the hex form returned by String.
func Parse(s string) (Hash, error) {
	var hash Hash
	if strings.HasPrefix(s, refPrefix) {
		return hash, fmt.Errorf("parsing edit hash: %q is a short reference, need the full 64-character hash", s)
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return hash, fmt.Errorf("parsing edit hash: %w", err)
	}
	if len(decoded) != Size {
		return hash, fmt.Errorf("edit hash is %d bytes, want %d", len(decoded), Size)
	}
	copy(hash[:], decoded)
	return hash, nil
}
