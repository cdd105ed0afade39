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
	"github.com/geobrowser/grc-20-sub000/lib/compression"
	"github.com/geobrowser/grc-20-sub000/lib/editdoc"
	"github.com/geobrowser/grc-20-sub000/lib/grc20"
)

// encodeOptions are the resolved encode settings.
type encodeOptions struct {
	canonical bool
	threshold int
	hexOutput bool
}

func encodeCommand() *cli.Command {
	var (
		global    globalFlags
		canonical bool
		compress  bool
		threshold int
		level     string
		hexOutput bool
		flagSet   *pflag.FlagSet
	)

	return &cli.Command{
		Name:    "encode",
		Summary: "Encode a JSON or CBOR edit document to the binary format",
		Description: `Read a JSONC or CBOR edit document and write the binary encoding to
stdout. CBOR documents are what "grc20 edit decode --cbor" writes.

Payloads of at least the compression threshold (config
compression.threshold, default 1024 bytes) are written as a compressed
"GRC2Z" frame when that makes them smaller. --compress always
compresses; --threshold -1 never does.

--canonical sorts dictionaries and values so that logically equal
edits produce identical bytes. It defaults to config encoding.canonical.`,
		Usage: "grc20 edit encode [--canonical] [--compress] [--threshold N] [FILE]",
		Examples: []cli.Example{
			{
				Description: "Encode canonically without compression",
				Command:     "grc20 edit encode --canonical --threshold -1 edit.jsonc > edit.grc20",
			},
			{
				Description: "Encode to hex for pasting",
				Command:     "grc20 edit encode --hex-output edit.jsonc",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet = pflag.NewFlagSet("encode", pflag.ContinueOnError)
			global.register(flagSet)
			flagSet.BoolVar(&canonical, "canonical", false, "canonical encoding (default from config)")
			flagSet.BoolVar(&compress, "compress", false, "always compress")
			flagSet.IntVar(&threshold, "threshold", compression.DefaultThreshold, "compress payloads of at least N bytes; -1 never (default from config)")
			flagSet.StringVar(&level, "level", "", "zstd level: fastest, default, better, best (default from config)")
			binaryOutputFlag(flagSet, &hexOutput)
			return flagSet
		},
		Run: func(args []string) error {
			if err := singleInput("encode", args); err != nil {
				return err
			}
			if compress && flagSet.Changed("threshold") {
				return fmt.Errorf("--compress and --threshold are mutually exclusive")
			}
			data, err := readInput(args, os.Stdin, false)
			if err != nil {
				return err
			}
			s, err := global.open("encode", level)
			if err != nil {
				return err
			}
			defer s.Close()

			options := encodeOptions{
				canonical: s.config.Encoding.Canonical,
				threshold: s.config.Compression.Threshold,
				hexOutput: hexOutput,
			}
			if flagSet.Changed("canonical") {
				options.canonical = canonical
			}
			if flagSet.Changed("threshold") {
				options.threshold = threshold
			}
			if compress {
				options.threshold = 0
			}
			return s.encode(data, os.Stdout, options)
		},
	}
}

// encode parses a JSONC or CBOR document and writes its binary
// encoding to w.
func (s *session) encode(source []byte, w io.Writer, options encodeOptions) error {
	doc, err := editdoc.ParseAny(source)
	if err != nil {
		return err
	}
	edit, propertyTypes, err := doc.ToEdit()
	if err != nil {
		return err
	}

	encoded, err := s.engine.EncodeEdit(edit, grc20.EncodeOptions{
		Canonical:     options.canonical,
		PropertyTypes: propertyTypes,
	}, options.threshold)
	if err != nil {
		return err
	}

	s.logger.Debug("encoded edit",
		"edit", edit.ID,
		"ops", len(edit.Ops),
		"size", humanize.Bytes(uint64(len(encoded))),
		"compressed", grc20.IsCompressed(encoded),
		"canonical", options.canonical,
	)
	return writeBinary(w, encoded, options.hexOutput)
}
