// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/geobrowser/grc-20-sub000/lib/id"
)

// Reader consumes a fixed input buffer with an internal cursor. Every
// method fails fast on underrun. Readers never alias the input in the
// values they return: strings and byte slices are copies.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.pos }

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Done reports whether every byte has been consumed.
func (r *Reader) Done() bool { return r.pos >= len(r.data) }

// Errorf returns an *Error positioned at the current offset.
func (r *Reader) Errorf(code Code, format string, args ...any) *Error {
	return Errorf(code, r.pos, format, args...)
}

// take advances past n bytes and returns them, aliasing the input.
func (r *Reader) take(n int, what string) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, r.Errorf(CodeUnexpectedEOF, "%s: need %d bytes, have %d", what, n, r.Remaining())
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1, "byte")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadVarint reads an unsigned LEB128 varint of at most 10 bytes.
func (r *Reader) ReadVarint() (uint64, error) {
	start := r.pos
	var result uint64
	for i := 0; i < MaxVarintLen; i++ {
		if r.pos >= len(r.data) {
			return 0, Errorf(CodeUnexpectedEOF, start, "varint truncated after %d bytes", i)
		}
		b := r.data[r.pos]
		r.pos++
		if i == MaxVarintLen-1 && b > 1 {
			return 0, Errorf(CodeVarintOverflow, start, "varint overflows 64 bits")
		}
		result |= uint64(b&0x7F) << (7 * i)
		if b < 0x80 {
			return result, nil
		}
	}
	return 0, Errorf(CodeVarintOverflow, start, "varint longer than %d bytes", MaxVarintLen)
}

// ReadSignedVarint reads a zigzag-encoded varint.
func (r *Reader) ReadSignedVarint() (int64, error) {
	u, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return ZigzagDecode(u), nil
}

// ReadVarint32 reads a varint that must fit in 32 bits.
func (r *Reader) ReadVarint32() (uint32, error) {
	start := r.pos
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, Errorf(CodeVarintOverflow, start, "varint %d exceeds 32 bits", v)
	}
	return uint32(v), nil
}

// ReadCount reads a varint element count and checks it against the
// remaining input, assuming each element occupies at least
// minElementSize bytes. This bounds allocations driven by hostile
// counts.
func (r *Reader) ReadCount(minElementSize int) (int, error) {
	start := r.pos
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	if minElementSize < 1 {
		minElementSize = 1
	}
	if v > uint64(r.Remaining()/minElementSize) {
		return 0, Errorf(CodeUnexpectedEOF, start, "count %d exceeds remaining input (%d bytes)", v, r.Remaining())
	}
	return int(v), nil
}

// ReadUint16 reads 2 little-endian bytes.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2, "uint16")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadInt16 reads 2 little-endian bytes as a signed value.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads 4 little-endian bytes.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4, "uint32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32 reads 4 little-endian bytes as a signed value.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadInt48 reads 6 little-endian bytes and sign-extends from bit 47.
func (r *Reader) ReadInt48() (int64, error) {
	b, err := r.take(6, "int48")
	if err != nil {
		return 0, err
	}
	var u uint64
	for i := 0; i < 6; i++ {
		u |= uint64(b[i]) << (8 * i)
	}
	if u&(1<<47) != 0 {
		u |= 0xFFFF << 48
	}
	return int64(u), nil
}

// ReadUint64 reads 8 little-endian bytes.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.take(8, "uint64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadInt64 reads 8 little-endian bytes as a signed value.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat64 reads an IEEE-754 double. NaN is returned as-is; callers
// that forbid it check for themselves.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadString reads a varint-prefixed UTF-8 string. Invalid UTF-8 is a
// CodeInvalidUTF8 error.
func (r *Reader) ReadString() (string, error) {
	start := r.pos
	length, err := r.ReadCount(1)
	if err != nil {
		return "", err
	}
	b, err := r.take(length, "string")
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", Errorf(CodeInvalidUTF8, start, "string of %d bytes is not valid UTF-8", length)
	}
	return string(b), nil
}

// ReadBytes reads a varint-prefixed byte array.
func (r *Reader) ReadBytes() ([]byte, error) {
	length, err := r.ReadCount(1)
	if err != nil {
		return nil, err
	}
	return r.ReadRaw(length)
}

// ReadRaw reads exactly n bytes with no prefix.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	b, err := r.take(n, "bytes")
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadID reads 16 raw bytes.
func (r *Reader) ReadID() (id.ID, error) {
	var result id.ID
	b, err := r.take(id.Size, "id")
	if err != nil {
		return result, err
	}
	copy(result[:], b)
	return result, nil
}

// ReadIDs reads a varint count followed by that many IDs.
func (r *Reader) ReadIDs() ([]id.ID, error) {
	count, err := r.ReadCount(id.Size)
	if err != nil {
		return nil, err
	}
	ids := make([]id.ID, count)
	for i := range ids {
		if ids[i], err = r.ReadID(); err != nil {
			return nil, err
		}
	}
	return ids, nil
}
