// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package edit implements the "grc20 edit" command group: encode,
// decode, inspect, hash, compress, decompress, and canonicalize.
//
// Each subcommand reads one input (a file argument or stdin), resolves
// settings from flags over [config.Config], and does its work through a
// session holding the config, the command logger, and a
// [compression.Engine].
package edit
