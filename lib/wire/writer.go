// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/geobrowser/grc-20-sub000/lib/id"
)

// MaxVarintLen is the longest valid varint encoding, enough for any
// 64-bit value.
const MaxVarintLen = 10

// Writer accumulates encoded bytes. The buffer doubles its capacity
// whenever a write would overflow it. The zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with at least capacity bytes reserved.
// Callers that know an approximate output size should pass it to avoid
// repeated reallocation.
func NewWriter(capacity int) *Writer {
	if capacity < 0 {
		capacity = 0
	}
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the bytes written so far. The slice aliases the
// Writer's buffer and is valid until the next write.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Reset discards all written bytes, keeping the allocated capacity.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// ensure guarantees at least n free bytes of capacity.
func (w *Writer) ensure(n int) {
	if cap(w.buf)-len(w.buf) >= n {
		return
	}
	newCap := cap(w.buf)*2 + n
	grown := make([]byte, len(w.buf), newCap)
	copy(grown, w.buf)
	w.buf = grown
}

// grow extends the buffer by n bytes and returns the new region.
func (w *Writer) grow(n int) []byte {
	w.ensure(n)
	start := len(w.buf)
	w.buf = w.buf[:start+n]
	return w.buf[start:]
}

// WriteUint8 writes a single byte.
func (w *Writer) WriteUint8(v uint8) {
	w.ensure(1)
	w.buf = append(w.buf, v)
}

// WriteVarint writes v as an unsigned LEB128 varint.
func (w *Writer) WriteVarint(v uint64) {
	w.ensure(MaxVarintLen)
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// WriteSignedVarint writes v zigzag-encoded as a varint.
func (w *Writer) WriteSignedVarint(v int64) {
	w.WriteVarint(ZigzagEncode(v))
}

// WriteUint16 writes v as 2 little-endian bytes.
func (w *Writer) WriteUint16(v uint16) {
	binary.LittleEndian.PutUint16(w.grow(2), v)
}

// WriteInt16 writes v as 2 little-endian bytes.
func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

// WriteUint32 writes v as 4 little-endian bytes.
func (w *Writer) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.grow(4), v)
}

// WriteInt32 writes v as 4 little-endian bytes.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteInt48 writes the low 6 bytes of v, little-endian. Values outside
// the signed 48-bit range lose their high bits; callers validate range
// first.
func (w *Writer) WriteInt48(v int64) {
	u := uint64(v)
	out := w.grow(6)
	for i := 0; i < 6; i++ {
		out[i] = byte(u >> (8 * i))
	}
}

// WriteUint64 writes v as 8 little-endian bytes.
func (w *Writer) WriteUint64(v uint64) {
	binary.LittleEndian.PutUint64(w.grow(8), v)
}

// WriteInt64 writes v as 8 little-endian bytes.
func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteFloat64 writes v as an IEEE-754 double, little-endian. NaN
// rejection is the caller's responsibility.
func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteString writes s with a varint byte-count prefix.
func (w *Writer) WriteString(s string) {
	w.WriteVarint(uint64(len(s)))
	w.ensure(len(s))
	w.buf = append(w.buf, s...)
}

// WriteBytes writes b with a varint length prefix.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteVarint(uint64(len(b)))
	w.WriteRaw(b)
}

// WriteRaw writes b with no prefix.
func (w *Writer) WriteRaw(b []byte) {
	w.ensure(len(b))
	w.buf = append(w.buf, b...)
}

// WriteID writes the 16 raw bytes of v.
func (w *Writer) WriteID(v id.ID) {
	w.WriteRaw(v[:])
}

// WriteIDBytes writes an ID supplied as a byte slice. Returns an error
// unless b is exactly 16 bytes; nothing is written in that case.
func (w *Writer) WriteIDBytes(b []byte) error {
	if len(b) != id.Size {
		return fmt.Errorf("wire: id must be %d bytes, got %d", id.Size, len(b))
	}
	w.WriteRaw(b)
	return nil
}

// WriteIDs writes a varint count followed by each ID.
func (w *Writer) WriteIDs(ids []id.ID) {
	w.WriteVarint(uint64(len(ids)))
	w.ensure(len(ids) * id.Size)
	for _, v := range ids {
		w.buf = append(w.buf, v[:]...)
	}
}

// ZigzagEncode maps a signed integer onto the unsigned domain so that
// small magnitudes produce short varints: 0→0, -1→1, 1→2, -2→3, ...
func ZigzagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

// ZigzagDecode is the inverse of ZigzagEncode.
func ZigzagDecode(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}
