// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package grc20 encodes and decodes GRC-20 edits: self-contained,
// ordered batches of knowledge-graph mutations (entity and relation
// create, update, delete and restore, plus value references) with the
// metadata that identifies who made them and when.
//
// # Format
//
// An encoded edit is:
//
//	"GRC2" version(1)
//	id(16) name(string) authors(varint n, n×16) createdAt(zigzag varint)
//	dictionaries: properties(n, n×(id, dataType byte)) relationTypes
//	              languages units objects contextIDs (each n, n×16)
//	contexts:     n, n×(root index, edge count, edges×(relation type
//	              index, context id index))
//	ops:          n, n×op
//
// IDs that ops reference repeatedly are interned in the dictionaries
// and written as varint indices. Properties, relation types, objects
// and context IDs use 0-based indices. Languages, units and op
// contexts use 1-based references where 0 means absent.
//
// Every op except CreateValueRef ends with a context reference.
//
// # Canonical encoding
//
// With EncodeOptions.Canonical the encoder sorts each dictionary and
// the author list by raw ID bytes, orders values inside an op by
// (property, language, unit) and unset entries by (property, language
// code). The output is then a pure function of the edit's logical
// content, which is what package edithash hashes. Op order and context
// order follow the edit.
//
// # Errors
//
// Encode fails with *EncodeError when the in-memory edit is invalid:
// out-of-range values, a slot both set and unset, conflicting or
// missing property types. Decode fails with a *wire.Error whose Code
// classifies the problem. Neither ever returns a partial result.
//
// Compressed frames ("GRC2Z") are rejected by Decode; see package
// compression.
package grc20
