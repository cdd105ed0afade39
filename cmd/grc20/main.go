// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/geobrowser/grc-20-sub000/cmd/grc20/cli"
	"github.com/geobrowser/grc-20-sub000/cmd/grc20/edit"
)

func main() {
	if err := run(); err != nil {
		// Commands that report their own outcome return an error
		// carrying the exit code; don't repeat it.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return rootCommand().Execute(os.Args[1:])
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:    "grc20",
		Summary: "Tools for GRC-20 knowledge graph edits",
		Description: `grc20 converts GRC-20 edits between the binary wire format and a
JSON document form, and inspects, hashes, and compresses encoded edits.`,
		Subcommands: []*cli.Command{
			edit.Command(),
		},
	}
}
