// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grc20

import (
	"bytes"
	"fmt"

	"github.com/geobrowser/grc-20-sub000/lib/id"
	"github.com/geobrowser/grc-20-sub000/lib/wire"
)

const (
	// Magic begins every uncompressed encoded edit.
	Magic = "GRC2"

	// CompressedMagic begins a compressed edit frame. The codec
	// recognizes it only to reject it; see package compression.
	CompressedMagic = "GRC2Z"

	// Version is the only format version this package reads and
	// writes.
	Version = 0
)

// Edit is a standalone, ordered batch of ops plus metadata.
type Edit struct {
	ID      id.ID
	Name    string
	Authors []id.ID
	// CreatedAt is an opaque signed timestamp, conventionally
	// microseconds since the Unix epoch.
	CreatedAt int64
	Ops       []Op
}

// EncodeOptions controls encoding.
type EncodeOptions struct {
	// Canonical sorts every dictionary, the author list, the values
	// inside each op, and each op's unset entries by raw ID bytes, so
	// that the output depends only on the logical content of the edit.
	// Op order is never changed.
	Canonical bool

	// PropertyTypes supplies data types for properties that no value
	// in the edit pins down, such as properties that are only unset or
	// only named by a CreateValueRef. Types inferred from values take
	// precedence.
	PropertyTypes map[id.ID]DataType
}

// IsCompressed reports whether data carries the compressed frame magic.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, []byte(CompressedMagic))
}

// Encode serializes edit. The edit is not modified. All failures are
// *EncodeError values describing a defect in the in-memory edit.
func Encode(edit *Edit, options EncodeOptions) ([]byte, error) {
	if edit == nil {
		return nil, &EncodeError{Op: -1, Err: fmt.Errorf("%w: nil edit", ErrInvalidOp)}
	}

	dict, err := buildDictionaries(edit.Ops, options)
	if err != nil {
		return nil, err
	}

	authors := edit.Authors
	if options.Canonical && len(authors) > 1 {
		authors = append([]id.ID(nil), authors...)
		id.Sort(authors)
	}

	w := wire.NewWriter(estimateSize(edit, dict))
	w.WriteRaw([]byte(Magic))
	w.WriteUint8(Version)
	w.WriteID(edit.ID)
	w.WriteString(edit.Name)
	w.WriteIDs(authors)
	w.WriteSignedVarint(edit.CreatedAt)

	dict.write(w)

	encoder := &opEncoder{w: w, dict: dict, canonical: options.Canonical}
	w.WriteVarint(uint64(len(edit.Ops)))
	for _, op := range edit.Ops {
		encoder.writeOp(op)
	}
	return w.Bytes(), nil
}

// EncodeCanonical is Encode with Canonical set.
func EncodeCanonical(edit *Edit) ([]byte, error) {
	return Encode(edit, EncodeOptions{Canonical: true})
}

// estimateSize guesses the encoded size so the writer rarely grows.
func estimateSize(edit *Edit, dict *dictionaries) int {
	size := len(Magic) + 1 + id.Size + wire.MaxVarintLen + len(edit.Name)
	size += wire.MaxVarintLen + id.Size*len(edit.Authors) + wire.MaxVarintLen
	tables := len(dict.properties.ids) + len(dict.relationTypes.ids) + len(dict.languages.ids) +
		len(dict.units.ids) + len(dict.objects.ids) + len(dict.contextIDs.ids)
	size += 6*wire.MaxVarintLen + (id.Size+1)*tables
	size += 4 * 4 * len(dict.contexts)
	size += wire.MaxVarintLen + 48*len(edit.Ops)
	return size
}

// Decode parses an uncompressed encoded edit. Every failure wraps a
// *wire.Error; use wire.CodeOf to classify it. Decoding never
// partially succeeds.
//
// Input starting with CompressedMagic fails with
// wire.CodeCompressedInput; decompress it first.
func Decode(data []byte) (*Edit, error) {
	edit, _, err := decode(data)
	return edit, err
}

// Dictionary is the dictionary and contexts block of an encoded edit,
// as found on the wire.
type Dictionary struct {
	Properties    []id.ID
	PropertyTypes []DataType
	RelationTypes []id.ID
	Languages     []id.ID
	Units         []id.ID
	Objects       []id.ID
	ContextIDs    []id.ID
	Contexts      []Context
}

// PropertyTypeMap returns the declared data type of every property,
// in the form EncodeOptions.PropertyTypes takes.
func (d *Dictionary) PropertyTypeMap() map[id.ID]DataType {
	types := make(map[id.ID]DataType, len(d.Properties))
	for i, property := range d.Properties {
		types[property] = d.PropertyTypes[i]
	}
	return types
}

// DecodeWithDictionary is Decode that also returns the input's
// dictionaries. Tools use it to report table sizes and to re-encode
// an edit whose properties are not all pinned down by values.
func DecodeWithDictionary(data []byte) (*Edit, *Dictionary, error) {
	edit, l, err := decode(data)
	if err != nil {
		return nil, nil, err
	}
	return edit, &Dictionary{
		Properties:    l.properties,
		PropertyTypes: l.propertyTypes,
		RelationTypes: l.relationTypes,
		Languages:     l.languages,
		Units:         l.units,
		Objects:       l.objects,
		ContextIDs:    l.contextIDs,
		Contexts:      l.contexts,
	}, nil
}

// Canonicalize re-encodes an uncompressed payload canonically,
// carrying the declared property types over from the input.
func Canonicalize(data []byte) ([]byte, error) {
	edit, dict, err := DecodeWithDictionary(data)
	if err != nil {
		return nil, err
	}
	return Encode(edit, EncodeOptions{Canonical: true, PropertyTypes: dict.PropertyTypeMap()})
}

func decode(data []byte) (*Edit, *lookups, error) {
	if IsCompressed(data) {
		return nil, nil, wire.Errorf(wire.CodeCompressedInput, 0, "input is a compressed edit; decompress it before decoding")
	}
	if !bytes.HasPrefix(data, []byte(Magic)) {
		return nil, nil, wire.Errorf(wire.CodeInvalidMagic, 0, "input does not start with %q", Magic)
	}

	r := wire.NewReader(data)
	if _, err := r.ReadRaw(len(Magic)); err != nil {
		return nil, nil, err
	}
	version, err := r.ReadUint8()
	if err != nil {
		return nil, nil, err
	}
	if version != Version {
		return nil, nil, wire.Errorf(wire.CodeUnsupportedVersion, len(Magic), "version %d, want %d", version, Version)
	}

	edit := &Edit{}
	if edit.ID, err = r.ReadID(); err != nil {
		return nil, nil, err
	}
	if edit.Name, err = r.ReadString(); err != nil {
		return nil, nil, err
	}
	if edit.Authors, err = r.ReadIDs(); err != nil {
		return nil, nil, err
	}
	if len(edit.Authors) == 0 {
		edit.Authors = nil
	}
	if edit.CreatedAt, err = r.ReadSignedVarint(); err != nil {
		return nil, nil, err
	}

	l, err := readLookups(r)
	if err != nil {
		return nil, nil, err
	}

	// The smallest op (delete/restore) is a tag, an index, and a
	// context reference.
	opCount, err := r.ReadCount(3)
	if err != nil {
		return nil, nil, err
	}
	if opCount > 0 {
		edit.Ops = make([]Op, opCount)
	}
	for i := range edit.Ops {
		if edit.Ops[i], err = readOp(r, l); err != nil {
			return nil, nil, fmt.Errorf("op %d: %w", i, err)
		}
	}

	if !r.Done() {
		return nil, nil, r.Errorf(wire.CodeMalformed, "%d trailing bytes after last op", r.Remaining())
	}
	return edit, l, nil
}
