// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/geobrowser/grc-20-sub000/cmd/grc20/cli"
	"github.com/geobrowser/grc-20-sub000/lib/edithash"
)

func hashCommand() *cli.Command {
	var (
		global globalFlags
		ref    bool
		expect string
	)

	return &cli.Command{
		Name:    "hash",
		Summary: "Print the content address of a binary edit",
		Description: `Print the BLAKE3 content address of a binary edit.

The edit is canonicalized before hashing, so every encoding of the same
edit (canonical or not, compressed or not) has the same address.

With --expect, compares against the given hash (full or "edit-" short
form) and exits 1 on a mismatch.`,
		Usage: "grc20 edit hash [--ref] [--expect HASH] [FILE]",
		Examples: []cli.Example{
			{
				Description: "Check that two encodings hold the same edit",
				Command:     "grc20 edit hash --expect $(grc20 edit hash a.grc20) b.grc20",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("hash", pflag.ContinueOnError)
			global.register(flagSet)
			flagSet.BoolVar(&ref, "ref", false, `print the short "edit-" reference`)
			flagSet.StringVar(&expect, "expect", "", "exit 1 unless the hash matches")
			return flagSet
		},
		Run: func(args []string) error {
			if err := singleInput("hash", args); err != nil {
				return err
			}
			data, err := readInput(args, os.Stdin, global.hexInput)
			if err != nil {
				return err
			}
			s, err := global.open("hash", "")
			if err != nil {
				return err
			}
			defer s.Close()

			return s.hash(data, os.Stdout, ref, expect)
		},
	}
}

// hash writes the content address of data to w. A non-empty expect
// turns a mismatch into an *cli.ExitError after reporting it.
func (s *session) hash(data []byte, w io.Writer, ref bool, expect string) error {
	payload, err := s.payload(data)
	if err != nil {
		return err
	}
	hash, err := edithash.OfEncoded(payload)
	if err != nil {
		return err
	}

	text := hash.String()
	if ref {
		text = hash.Ref()
	}
	if expect == "" {
		_, err = fmt.Fprintln(w, text)
		return err
	}

	if !matchesExpected(hash, expect) {
		fmt.Fprintf(w, "mismatch: got %s, want %s\n", text, expect)
		return &cli.ExitError{Code: 1}
	}
	_, err = fmt.Fprintf(w, "ok %s\n", text)
	return err
}

// matchesExpected accepts either the full hash or its short reference.
func matchesExpected(hash edithash.Hash, expect string) bool {
	if expect == hash.Ref() {
		return true
	}
	parsed, err := edithash.Parse(expect)
	return err == nil && parsed == hash
}
