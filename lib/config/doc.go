// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the grc20
// tool.
//
// Configuration is loaded from a single file specified by either the
// GRC20_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search. Without either,
// the tool runs on [Default].
//
// A file only names the values it changes:
//
//	encoding:
//	  canonical: true
//	compression:
//	  threshold: -1   # never compress
//	  level: best
//	output:
//	  format: cbor
//	log:
//	  level: debug
//
// Unknown keys and unknown level or format names are errors.
//
// This package depends on no other grc20 packages.
package config
