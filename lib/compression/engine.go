// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"
)

// State is the lifecycle stage of an Engine.
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// MaxDecompressedSize bounds the declared uncompressed length of a
// frame, and the memory the decoder may use for one.
const MaxDecompressedSize = 256 << 20

// ErrUnavailable means the engine failed to initialize. The cause is
// wrapped alongside it.
var ErrUnavailable = errors.New("compression engine unavailable")

// Options configures an Engine.
type Options struct {
	// Level is the zstd encoder level. The zero value selects
	// zstd.SpeedDefault.
	Level zstd.EncoderLevel

	// Logger receives initialization events. Nil discards them.
	Logger *slog.Logger
}

// ParseLevel parses a level name: fastest, default, better or best.
func ParseLevel(name string) (zstd.EncoderLevel, error) {
	ok, level := zstd.EncoderLevelFromString(name)
	if !ok {
		return 0, fmt.Errorf("unknown compression level %q (want fastest, default, better, or best)", name)
	}
	return level, nil
}

// Engine compresses and decompresses edit frames. Its zstd encoder and
// decoder are created on first use and shared by all callers; an
// Engine is safe for concurrent use.
type Engine struct {
	options Options
	logger  *slog.Logger

	once  sync.Once
	state atomic.Int32

	// Written once inside once.Do, read only after it returns.
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	err     error
}

// New returns an engine in StateUninitialized. Nothing is allocated
// until the first Compress, Decompress or Preload call.
func New(options Options) *Engine {
	if options.Level == 0 {
		options.Level = zstd.SpeedDefault
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{options: options, logger: logger}
}

var defaultEngine = sync.OnceValue(func() *Engine {
	return New(Options{})
})

// Default returns the process-wide engine at the default level.
func Default() *Engine {
	return defaultEngine()
}

// State reports the current lifecycle stage without triggering
// initialization.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Ready reports whether the engine has finished loading successfully.
func (e *Engine) Ready() bool {
	return e.State() == StateReady
}

// Preload initializes the engine if it has not been already and
// returns the initialization error, if any. Calling it again is cheap.
func (e *Engine) Preload() error {
	e.once.Do(e.load)
	return e.err
}

func (e *Engine) load() {
	e.state.Store(int32(StateLoading))
	start := time.Now()

	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(e.options.Level),
	)
	if err != nil {
		e.fail(fmt.Errorf("zstd encoder: %w", err))
		return
	}
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(MaxDecompressedSize),
	)
	if err != nil {
		encoder.Close()
		e.fail(fmt.Errorf("zstd decoder: %w", err))
		return
	}

	e.encoder = encoder
	e.decoder = decoder
	e.state.Store(int32(StateReady))
	e.logger.Debug("compression engine ready",
		"level", e.options.Level.String(),
		"duration", time.Since(start),
	)
}

func (e *Engine) fail(err error) {
	e.err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	e.state.Store(int32(StateFailed))
	e.logger.Error("compression engine failed to initialize", "error", err)
}

// Close releases the decoder's goroutines. The engine must not be used
// afterwards. Closing an engine that never loaded is a no-op.
func (e *Engine) Close() {
	if e.State() != StateReady {
		return
	}
	e.decoder.Close()
	e.encoder.Close()
}
