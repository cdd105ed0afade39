// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/geobrowser/grc-20-sub000/cmd/grc20/cli"
	"github.com/geobrowser/grc-20-sub000/lib/edithash"
	"github.com/geobrowser/grc-20-sub000/lib/grc20"
)

func inspectCommand() *cli.Command {
	var global globalFlags

	return &cli.Command{
		Name:    "inspect",
		Summary: "Summarize a binary edit",
		Description: `Print a summary of a binary edit: header fields, encoded sizes, op
counts by type, dictionary table sizes, and the content hash.

Output is styled when stdout is a terminal.`,
		Usage: "grc20 edit inspect [FILE]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			global.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if err := singleInput("inspect", args); err != nil {
				return err
			}
			data, err := readInput(args, os.Stdin, global.hexInput)
			if err != nil {
				return err
			}
			s, err := global.open("inspect", "")
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.inspect(data)
			if err != nil {
				return err
			}
			result.render(os.Stdout, cli.IsTerminal(os.Stdout))
			return nil
		},
	}
}

// summary is what inspect reports about one encoded edit.
type summary struct {
	inputBytes   int
	payloadBytes int
	compressed   bool
	edit         *grc20.Edit
	dictionary   *grc20.Dictionary
	hash         edithash.Hash
}

func (s *session) inspect(data []byte) (*summary, error) {
	payload, err := s.payload(data)
	if err != nil {
		return nil, err
	}
	edit, dictionary, err := grc20.DecodeWithDictionary(payload)
	if err != nil {
		return nil, err
	}
	hash, err := edithash.OfEncoded(payload)
	if err != nil {
		return nil, err
	}
	return &summary{
		inputBytes:   len(data),
		payloadBytes: len(payload),
		compressed:   grc20.IsCompressed(data),
		edit:         edit,
		dictionary:   dictionary,
		hash:         hash,
	}, nil
}

// opCounts returns the number of ops of each type, in tag order.
func (s *summary) opCounts() [][2]string {
	counts := make(map[grc20.OpType]int)
	for _, op := range s.edit.Ops {
		counts[op.OpType()]++
	}
	var rows [][2]string
	for opType := grc20.OpCreateEntity; opType <= grc20.OpCreateValueRef; opType++ {
		if counts[opType] > 0 {
			rows = append(rows, [2]string{opType.String(), humanize.Comma(int64(counts[opType]))})
		}
	}
	return rows
}

func (s *summary) sections() []section {
	format := "uncompressed (GRC2)"
	size := humanize.Bytes(uint64(s.payloadBytes))
	if s.compressed {
		format = "compressed (GRC2Z)"
		size = fmt.Sprintf("%s, %s payload (%.0f%%)", humanize.Bytes(uint64(s.inputBytes)),
			humanize.Bytes(uint64(s.payloadBytes)), 100*float64(s.inputBytes)/float64(s.payloadBytes))
	}

	name := s.edit.Name
	if name == "" {
		name = "(none)"
	}

	header := section{title: "Edit", rows: [][2]string{
		{"id", s.edit.ID.String()},
		{"name", name},
		{"authors", fmt.Sprint(len(s.edit.Authors))},
		{"created", time.UnixMicro(s.edit.CreatedAt).UTC().Format(time.RFC3339Nano)},
		{"format", format},
		{"size", size},
		{"hash", s.hash.String()},
	}}

	ops := section{title: fmt.Sprintf("Ops (%s)", humanize.Comma(int64(len(s.edit.Ops)))), rows: s.opCounts()}

	tables := section{title: "Dictionaries", rows: [][2]string{
		{"properties", fmt.Sprint(len(s.dictionary.Properties))},
		{"relationTypes", fmt.Sprint(len(s.dictionary.RelationTypes))},
		{"languages", fmt.Sprint(len(s.dictionary.Languages))},
		{"units", fmt.Sprint(len(s.dictionary.Units))},
		{"objects", fmt.Sprint(len(s.dictionary.Objects))},
		{"contextIDs", fmt.Sprint(len(s.dictionary.ContextIDs))},
		{"contexts", fmt.Sprint(len(s.dictionary.Contexts))},
	}}

	return []section{header, ops, tables}
}

// section is a titled block of label/value rows.
type section struct {
	title string
	rows  [][2]string
}

// labelWidth fits the longest label ("relationTypes") plus a gap.
const labelWidth = 15

func (s *summary) render(w io.Writer, styled bool) {
	titleStyle := lipgloss.NewStyle()
	labelStyle := lipgloss.NewStyle().Width(labelWidth)
	valueStyle := lipgloss.NewStyle()
	if styled {
		titleStyle = titleStyle.Bold(true).Foreground(lipgloss.Color("12"))
		labelStyle = labelStyle.Foreground(lipgloss.Color("245"))
		valueStyle = valueStyle.Foreground(lipgloss.Color("15"))
	}

	var out strings.Builder
	for i, block := range s.sections() {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(titleStyle.Render(block.title) + "\n")
		for _, row := range block.rows {
			if styled {
				out.WriteString("  " + labelStyle.Render(row[0]) + valueStyle.Render(row[1]) + "\n")
			} else {
				fmt.Fprintf(&out, "  %-*s%s\n", labelWidth, row[0], row[1])
			}
		}
	}
	io.WriteString(w, out.String())
}
