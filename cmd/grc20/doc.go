// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Grc20 is the command-line tool for GRC-20 edits.
//
//	grc20 edit encode [--canonical] [--compress] [--threshold N] [FILE]
//	grc20 edit decode [--cbor|--diag] [-c] [FILE]
//	grc20 edit inspect [FILE]
//	grc20 edit hash [--ref] [--expect HASH] [FILE]
//	grc20 edit compress [--level LEVEL] [FILE]
//	grc20 edit decompress [FILE]
//	grc20 edit canonicalize [FILE]
//
// Every subcommand also takes --config, --hex (hex input), and -v.
// Run "grc20 edit <command> --help" for details.
package main
