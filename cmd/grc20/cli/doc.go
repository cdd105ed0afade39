// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the grc20 tool.
//
// A [Command] has a name, an optional [pflag.FlagSet] factory, nested
// [Command.Subcommands], and a Run function. [Command.Execute] routes
// arguments down the tree, parses flags, and renders help with
// examples. Unknown subcommands and flags get a "did you mean"
// suggestion when one is within edit distance 3.
//
// [NewCommandLogger] builds the slog logger commands share, and
// [ExitError] lets a command exit non-zero after printing its own
// report.
package cli
