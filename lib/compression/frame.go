// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"bytes"
	"fmt"
	"math"

	"github.com/geobrowser/grc-20-sub000/lib/grc20"
	"github.com/geobrowser/grc-20-sub000/lib/wire"
)

const (
	// DefaultThreshold is the payload size, in bytes, at which
	// EncodeEditAuto starts compressing.
	DefaultThreshold = 1024

	// ThresholdNever disables compression in EncodeEditAuto.
	ThresholdNever = math.MaxInt
)

// Compress wraps an uncompressed "GRC2" payload in a compressed frame.
func (e *Engine) Compress(payload []byte) ([]byte, error) {
	if grc20.IsCompressed(payload) {
		return nil, fmt.Errorf("compress: payload is already a compressed frame")
	}
	if !bytes.HasPrefix(payload, []byte(grc20.Magic)) {
		return nil, fmt.Errorf("compress: payload does not start with %q", grc20.Magic)
	}
	if len(payload) > MaxDecompressedSize {
		return nil, fmt.Errorf("compress: payload of %d bytes exceeds the %d byte frame limit", len(payload), MaxDecompressedSize)
	}
	if err := e.Preload(); err != nil {
		return nil, err
	}

	header := wire.NewWriter(len(grc20.CompressedMagic) + wire.MaxVarintLen)
	header.WriteRaw([]byte(grc20.CompressedMagic))
	header.WriteVarint(uint64(len(payload)))
	return e.encoder.EncodeAll(payload, header.Bytes()), nil
}

// Decompress unwraps a compressed frame and returns the "GRC2" payload
// inside it. Frame problems are reported as *wire.Error values so that
// callers can classify them alongside grc20 decode errors.
func (e *Engine) Decompress(frame []byte) ([]byte, error) {
	if !grc20.IsCompressed(frame) {
		return nil, wire.Errorf(wire.CodeInvalidMagic, 0, "input does not start with %q", grc20.CompressedMagic)
	}
	r := wire.NewReader(frame)
	if _, err := r.ReadRaw(len(grc20.CompressedMagic)); err != nil {
		return nil, err
	}
	lengthOffset := r.Offset()
	declared, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if declared > MaxDecompressedSize {
		return nil, wire.Errorf(wire.CodeMalformed, lengthOffset, "declared size %d exceeds the %d byte frame limit", declared, MaxDecompressedSize)
	}
	if err := e.Preload(); err != nil {
		return nil, err
	}

	body := frame[r.Offset():]
	payload, err := e.decoder.DecodeAll(body, make([]byte, 0, declared))
	if err != nil {
		return nil, &wire.Error{Code: wire.CodeMalformed, Offset: r.Offset(), Err: fmt.Errorf("zstd: %w", err)}
	}
	if uint64(len(payload)) != declared {
		return nil, wire.Errorf(wire.CodeMalformed, lengthOffset, "decompressed %d bytes, frame declares %d", len(payload), declared)
	}
	if !bytes.HasPrefix(payload, []byte(grc20.Magic)) {
		return nil, wire.Errorf(wire.CodeInvalidMagic, r.Offset(), "decompressed payload does not start with %q", grc20.Magic)
	}
	return payload, nil
}

// EncodeEdit encodes edit and compresses the result when it is at
// least threshold bytes. A threshold of 0 always compresses; a
// negative threshold behaves like ThresholdNever. With a positive
// threshold, a frame that comes out no smaller than the payload is
// discarded and the payload returned instead.
func (e *Engine) EncodeEdit(edit *grc20.Edit, options grc20.EncodeOptions, threshold int) ([]byte, error) {
	payload, err := grc20.Encode(edit, options)
	if err != nil {
		return nil, err
	}
	if threshold < 0 {
		threshold = ThresholdNever
	}
	if len(payload) < threshold {
		return payload, nil
	}
	frame, err := e.Compress(payload)
	if err != nil {
		return nil, err
	}
	if threshold > 0 && len(frame) >= len(payload) {
		e.logger.Debug("compressed frame not smaller than payload, keeping payload",
			"payload_bytes", len(payload),
			"frame_bytes", len(frame),
		)
		return payload, nil
	}
	return frame, nil
}

// DecodeEdit decodes data carrying either magic.
func (e *Engine) DecodeEdit(data []byte) (*grc20.Edit, error) {
	if grc20.IsCompressed(data) {
		payload, err := e.Decompress(data)
		if err != nil {
			return nil, err
		}
		data = payload
	}
	return grc20.Decode(data)
}

// EncodeEditAuto is Default().EncodeEdit.
func EncodeEditAuto(edit *grc20.Edit, options grc20.EncodeOptions, threshold int) ([]byte, error) {
	return Default().EncodeEdit(edit, options, threshold)
}

// DecodeEditAuto is Default().DecodeEdit.
func DecodeEditAuto(data []byte) (*grc20.Edit, error) {
	return Default().DecodeEdit(data)
}
