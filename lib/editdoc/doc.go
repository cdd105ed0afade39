// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package editdoc converts GRC-20 edits to and from a self-describing
// document form for people and tools. Documents are authored as JSONC
// (JSON with comments and trailing commas) and emitted as JSON or
// deterministic CBOR:
//
//	{
//	  "id": "0123456789abcdef0123456789abcdef",
//	  "name": "Add Alice",
//	  "createdAt": 1700000000000000,
//	  "ops": [
//	    {
//	      "type": "createEntity",
//	      "id": "...",
//	      "values": [
//	        {"property": "...", "type": "text", "text": "Alice"},
//	        {"property": "...", "type": "date", "date": "1990-04-01"},
//	      ],
//	    },
//	  ],
//	}
//
// IDs are 32 hex characters (dashed UUIDs are accepted on input).
// Dates and times use RFC 3339 text with an optional offset; the
// conversion to the wire's day and microsecond counts lives in
// [ParseDate], [ParseTime], [ParseDatetime] and their Format
// counterparts. Byte payloads are base64 in JSON and byte strings in
// CBOR.
//
// The document form is a view of an edit, not an encoding: converting
// a document to an edit and encoding it is the only way to get wire
// bytes.
package editdoc
