// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/geobrowser/grc-20-sub000/lib/codec"
)

// Parse strips JSONC comments and trailing commas from data, then
// decodes the result as a Document. Unknown fields are errors.
func Parse(data []byte) (*Document, error) {
	stripped := jsonc.ToJSON(data)

	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.DisallowUnknownFields()
	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing edit document: %w", err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("parsing edit document: trailing data after the document")
	}
	return &doc, nil
}

// ParseAny decodes data as a CBOR document when it is one well-formed
// CBOR item that does not start like JSON, and as JSONC otherwise.
func ParseAny(data []byte) (*Document, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '/' && codec.Wellformed(data) == nil {
		return UnmarshalCBOR(data)
	}
	return Parse(data)
}

// ReadFile reads and parses a JSONC edit document.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// MarshalJSON renders doc as JSON, indented unless compact is set. The
// output ends with a newline.
func MarshalJSON(doc *Document, compact bool) ([]byte, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("marshaling edit document: %w", err)
	}
	return append(data, '\n'), nil
}

// MarshalCBOR renders doc as deterministic CBOR.
func MarshalCBOR(doc *Document) ([]byte, error) {
	data, err := codec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling edit document: %w", err)
	}
	return data, nil
}

// Diagnose renders doc as CBOR diagnostic notation, one line ending in
// a newline.
func Diagnose(doc *Document) ([]byte, error) {
	data, err := MarshalCBOR(doc)
	if err != nil {
		return nil, err
	}
	notation, err := codec.Diagnose(data)
	if err != nil {
		return nil, fmt.Errorf("diagnosing edit document: %w", err)
	}
	return []byte(notation + "\n"), nil
}

// UnmarshalCBOR decodes a CBOR edit document.
func UnmarshalCBOR(data []byte) (*Document, error) {
	var doc Document
	if err := codec.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding CBOR edit document: %w", err)
	}
	return &doc, nil
}
