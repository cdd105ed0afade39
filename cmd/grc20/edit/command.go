// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/geobrowser/grc-20-sub000/cmd/grc20/cli"
	"github.com/geobrowser/grc-20-sub000/lib/compression"
	"github.com/geobrowser/grc-20-sub000/lib/config"
	"github.com/geobrowser/grc-20-sub000/lib/grc20"
)

// Command returns the "edit" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "edit",
		Summary: "Encode, decode, and inspect GRC-20 edits",
		Description: `Convert GRC-20 edits between the binary wire format and the JSON
document form, and inspect or hash encoded edits.

Binary input may carry either the "GRC2" or the compressed "GRC2Z"
magic. Every subcommand reads the file named by its one positional
argument, or stdin when there is none (or it is "-").

Settings come from the file named by --config, else from
$GRC20_CONFIG, else from built-in defaults.`,
		Subcommands: []*cli.Command{
			encodeCommand(),
			decodeCommand(),
			inspectCommand(),
			hashCommand(),
			compressCommand(),
			decompressCommand(),
			canonicalizeCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Encode a document, compressing large results",
				Command:     "grc20 edit encode edit.jsonc > edit.grc20",
			},
			{
				Description: "Decode an edit back to JSON",
				Command:     "grc20 edit decode edit.grc20",
			},
			{
				Description: "Summarize an edit",
				Command:     "grc20 edit inspect edit.grc20",
			},
		},
	}
}

// globalFlags are registered on every subcommand.
type globalFlags struct {
	configPath string
	hexInput   bool
	verbose    bool
}

func (g *globalFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&g.configPath, "config", "", "config file (default $GRC20_CONFIG, else built-in defaults)")
	flagSet.BoolVarP(&g.hexInput, "hex", "x", false, "treat binary input as hex (whitespace ignored)")
	flagSet.BoolVarP(&g.verbose, "verbose", "v", false, "log at debug level")
}

// session holds what a subcommand needs once its flags are parsed.
type session struct {
	config *config.Config
	logger *slog.Logger
	engine *compression.Engine
}

// open loads configuration and builds the logger and compression
// engine. level overrides compression.level when non-empty.
func (g *globalFlags) open(command, level string) (*session, error) {
	cfg, err := loadConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	logLevel := cfg.LogLevel()
	if g.verbose {
		logLevel = slog.LevelDebug
	}
	logger := cli.NewCommandLogger(logLevel).With("command", "edit/"+command)

	if level == "" {
		level = cfg.Compression.Level
	}
	return newSession(cfg, logger, level)
}

func newSession(cfg *config.Config, logger *slog.Logger, level string) (*session, error) {
	zstdLevel, err := compression.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return &session{
		config: cfg,
		logger: logger,
		engine: compression.New(compression.Options{Level: zstdLevel, Logger: logger}),
	}, nil
}

func (s *session) Close() {
	s.engine.Close()
}

// loadConfig resolves configuration from an explicit path, then
// $GRC20_CONFIG, then defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv(config.EnvironmentVariable) != "" {
		return config.Load()
	}
	return config.Default(), nil
}

// payload returns the uncompressed "GRC2" payload of data, unwrapping
// a compressed frame if needed.
func (s *session) payload(data []byte) ([]byte, error) {
	if !grc20.IsCompressed(data) {
		return data, nil
	}
	payload, err := s.engine.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	s.logger.Debug("decompressed frame", "frame_bytes", len(data), "payload_bytes", len(payload))
	return payload, nil
}

// writeBinary writes data raw, or as one line of hex.
func writeBinary(w io.Writer, data []byte, hexOutput bool) error {
	if hexOutput {
		_, err := fmt.Fprintln(w, hex.EncodeToString(data))
		return err
	}
	_, err := w.Write(data)
	return err
}

// binaryOutputFlag registers --hex-output on commands that write binary.
func binaryOutputFlag(flagSet *pflag.FlagSet, hexOutput *bool) {
	flagSet.BoolVar(hexOutput, "hex-output", false, "write hex instead of raw bytes")
}

// singleInput checks that args name at most one input.
func singleInput(command string, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%s takes at most one input file, got %d arguments", command, len(args))
	}
	return nil
}
