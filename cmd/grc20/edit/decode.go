// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/geobrowser/grc-20-sub000/cmd/grc20/cli"
	"github.com/geobrowser/grc-20-sub000/lib/editdoc"
	"github.com/geobrowser/grc-20-sub000/lib/grc20"
)

// decodeOptions are the resolved decode settings.
type decodeOptions struct {
	format  string
	compact bool
}

func decodeCommand() *cli.Command {
	var (
		global  globalFlags
		cbor    bool
		diag    bool
		compact bool
		flagSet *pflag.FlagSet
	)

	return &cli.Command{
		Name:    "decode",
		Summary: "Decode a binary edit to its JSON or CBOR document form",
		Description: `Read a binary edit (compressed or not) and write its document form.

Output is indented JSON by default. -c writes compact JSON, --cbor
writes deterministic CBOR, and --diag writes that CBOR in diagnostic
notation for reading. These default to config output.compact and
output.format.

Properties whose data type no value pins down (ones only unset or only
referenced by createValueRef) are listed under "propertyTypes" so that
"grc20 edit encode" can reproduce the edit.`,
		Usage: "grc20 edit decode [--cbor|--diag] [-c] [FILE]",
		Examples: []cli.Example{
			{
				Description: "Decode to compact JSON and filter with jq",
				Command:     "grc20 edit decode -c edit.grc20 | jq '.ops[].type'",
			},
			{
				Description: "Show the CBOR document form in diagnostic notation",
				Command:     "grc20 edit decode --diag edit.grc20",
			},
			{
				Description: "Decode hex input",
				Command:     "echo '4752433200...' | grc20 edit decode --hex",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet = pflag.NewFlagSet("decode", pflag.ContinueOnError)
			global.register(flagSet)
			flagSet.BoolVar(&cbor, "cbor", false, "write CBOR instead of JSON")
			flagSet.BoolVar(&diag, "diag", false, "write CBOR diagnostic notation instead of JSON")
			flagSet.BoolVarP(&compact, "compact", "c", false, "compact JSON output")
			return flagSet
		},
		Run: func(args []string) error {
			if err := singleInput("decode", args); err != nil {
				return err
			}
			if cbor && diag {
				return fmt.Errorf("--cbor and --diag are mutually exclusive")
			}
			data, err := readInput(args, os.Stdin, global.hexInput)
			if err != nil {
				return err
			}
			s, err := global.open("decode", "")
			if err != nil {
				return err
			}
			defer s.Close()

			options := decodeOptions{format: s.config.Output.Format, compact: s.config.Output.Compact}
			if cbor {
				options.format = "cbor"
			}
			if diag {
				options.format = "diag"
			}
			if flagSet.Changed("compact") {
				options.compact = compact
			}
			return s.decode(data, os.Stdout, options)
		},
	}
}

// decode writes the document form of a binary edit to w.
func (s *session) decode(data []byte, w io.Writer, options decodeOptions) error {
	payload, err := s.payload(data)
	if err != nil {
		return err
	}
	edit, dictionary, err := grc20.DecodeWithDictionary(payload)
	if err != nil {
		return err
	}
	doc, err := editdoc.FromEdit(edit, dictionary.PropertyTypeMap())
	if err != nil {
		return err
	}

	var output []byte
	switch options.format {
	case "json":
		output, err = editdoc.MarshalJSON(doc, options.compact)
	case "cbor":
		output, err = editdoc.MarshalCBOR(doc)
	case "diag":
		output, err = editdoc.Diagnose(doc)
	default:
		return fmt.Errorf("unknown output format %q", options.format)
	}
	if err != nil {
		return err
	}

	s.logger.Debug("decoded edit", "edit", edit.ID, "ops", len(edit.Ops), "format", options.format)
	_, err = w.Write(output)
	return err
}
