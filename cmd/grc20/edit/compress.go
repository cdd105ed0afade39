// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/geobrowser/grc-20-sub000/cmd/grc20/cli"
	"github.com/geobrowser/grc-20-sub000/lib/grc20"
)

func compressCommand() *cli.Command {
	var (
		global    globalFlags
		level     string
		hexOutput bool
	)

	return &cli.Command{
		Name:    "compress",
		Summary: "Wrap a binary edit in a compressed GRC2Z frame",
		Description: `Compress an uncompressed "GRC2" edit into a "GRC2Z" frame,
regardless of size. The payload is not decoded or validated.`,
		Usage: "grc20 edit compress [--level LEVEL] [FILE]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("compress", pflag.ContinueOnError)
			global.register(flagSet)
			flagSet.StringVar(&level, "level", "", "zstd level: fastest, default, better, best (default from config)")
			binaryOutputFlag(flagSet, &hexOutput)
			return flagSet
		},
		Run: func(args []string) error {
			if err := singleInput("compress", args); err != nil {
				return err
			}
			data, err := readInput(args, os.Stdin, global.hexInput)
			if err != nil {
				return err
			}
			s, err := global.open("compress", level)
			if err != nil {
				return err
			}
			defer s.Close()

			return s.compress(data, os.Stdout, hexOutput)
		},
	}
}

func (s *session) compress(data []byte, w io.Writer, hexOutput bool) error {
	frame, err := s.engine.Compress(data)
	if err != nil {
		return err
	}
	s.logger.Info("compressed edit",
		"payload", humanize.Bytes(uint64(len(data))),
		"frame", humanize.Bytes(uint64(len(frame))),
	)
	return writeBinary(w, frame, hexOutput)
}

func decompressCommand() *cli.Command {
	var (
		global    globalFlags
		hexOutput bool
	)

	return &cli.Command{
		Name:    "decompress",
		Summary: "Unwrap a GRC2Z frame to the plain binary edit",
		Description: `Decompress a "GRC2Z" frame and write the "GRC2" payload inside it.
Uncompressed input is an error.`,
		Usage: "grc20 edit decompress [FILE]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("decompress", pflag.ContinueOnError)
			global.register(flagSet)
			binaryOutputFlag(flagSet, &hexOutput)
			return flagSet
		},
		Run: func(args []string) error {
			if err := singleInput("decompress", args); err != nil {
				return err
			}
			data, err := readInput(args, os.Stdin, global.hexInput)
			if err != nil {
				return err
			}
			s, err := global.open("decompress", "")
			if err != nil {
				return err
			}
			defer s.Close()

			return s.decompress(data, os.Stdout, hexOutput)
		},
	}
}

func (s *session) decompress(data []byte, w io.Writer, hexOutput bool) error {
	if !grc20.IsCompressed(data) {
		return fmt.Errorf("input is not a compressed %q frame", grc20.CompressedMagic)
	}
	payload, err := s.payload(data)
	if err != nil {
		return err
	}
	return writeBinary(w, payload, hexOutput)
}

func canonicalizeCommand() *cli.Command {
	var (
		global    globalFlags
		hexOutput bool
	)

	return &cli.Command{
		Name:    "canonicalize",
		Summary: "Re-encode a binary edit canonically",
		Description: `Decode a binary edit (compressed or not) and write its canonical
uncompressed encoding. Canonicalizing is idempotent.`,
		Usage: "grc20 edit canonicalize [FILE]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("canonicalize", pflag.ContinueOnError)
			global.register(flagSet)
			binaryOutputFlag(flagSet, &hexOutput)
			return flagSet
		},
		Run: func(args []string) error {
			if err := singleInput("canonicalize", args); err != nil {
				return err
			}
			data, err := readInput(args, os.Stdin, global.hexInput)
			if err != nil {
				return err
			}
			s, err := global.open("canonicalize", "")
			if err != nil {
				return err
			}
			defer s.Close()

			return s.canonicalize(data, os.Stdout, hexOutput)
		},
	}
}

func (s *session) canonicalize(data []byte, w io.Writer, hexOutput bool) error {
	payload, err := s.payload(data)
	if err != nil {
		return err
	}
	canonical, err := grc20.Canonicalize(payload)
	if err != nil {
		return err
	}
	return writeBinary(w, canonical, hexOutput)
}
