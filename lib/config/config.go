// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "GRC20_CONFIG"

// Config is the configuration for the grc20 tool.
type Config struct {
	// Encoding controls how edits are written.
	Encoding EncodingConfig `yaml:"encoding"`

	// Compression controls the GRC2Z frame.
	Compression CompressionConfig `yaml:"compression"`

	// Output controls how decoded edits are rendered.
	Output OutputConfig `yaml:"output"`

	// Log configures the command logger.
	Log LogConfig `yaml:"log"`
}

// EncodingConfig configures the binary encoder.
type EncodingConfig struct {
	// Canonical sorts dictionaries and values so that equal edits
	// encode to identical bytes.
	// Default: false
	Canonical bool `yaml:"canonical"`
}

// CompressionConfig configures compression of encoded edits.
type CompressionConfig struct {
	// Threshold is the payload size in bytes above which encoded edits
	// are compressed. 0 always compresses; a negative value never does.
	// Default: 1024
	Threshold int `yaml:"threshold"`

	// Level is the zstd level: fastest, default, better, or best.
	// Default: default
	Level string `yaml:"level"`
}

// OutputConfig configures document output.
type OutputConfig struct {
	// Format is json, cbor, or diag (CBOR diagnostic notation).
	// Default: json
	Format string `yaml:"format"`

	// Compact disables JSON indentation.
	// Default: false
	Compact bool `yaml:"compact"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`
}

// Compression level names accepted in CompressionConfig.Level.
var compressionLevels = []string{"fastest", "default", "better", "best"}

// Output format names accepted in OutputConfig.Format.
var outputFormats = []string{"json", "cbor", "diag"}

// Log level names accepted in LogConfig.Level.
var logLevels = []string{"debug", "info", "warn", "error"}

// Default returns the default configuration. A config file only needs
// to name the fields it changes.
func Default() *Config {
	return &Config{
		Compression: CompressionConfig{
			Threshold: 1024,
			Level:     "default",
		},
		Output: OutputConfig{
			Format: "json",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the file named by GRC20_CONFIG. It fails
// when the variable is unset; callers that can run on defaults check
// the variable themselves.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your grc20.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path over the defaults and
// validates the result. Unknown keys are errors.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(compressionLevels, c.Compression.Level) {
		errs = append(errs, fmt.Errorf("compression.level must be one of: %v", compressionLevels))
	}
	if !slices.Contains(outputFormats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of: %v", outputFormats))
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LogLevel returns Log.Level as a slog level.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
