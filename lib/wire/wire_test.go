// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/geobrowser/grc-20-sub000/lib/id"
)

func TestVarintEncoding(t *testing.T) {
	tests := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{math.MaxUint64, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
	}

	for _, tt := range tests {
		writer := NewWriter(0)
		writer.WriteVarint(tt.value)
		if !bytes.Equal(writer.Bytes(), tt.want) {
			t.Errorf("WriteVarint(%d) = %x, want %x", tt.value, writer.Bytes(), tt.want)
		}

		reader := NewReader(tt.want)
		got, err := reader.ReadVarint()
		if err != nil {
			t.Fatalf("ReadVarint(%x): %v", tt.want, err)
		}
		if got != tt.value {
			t.Errorf("ReadVarint(%x) = %d, want %d", tt.want, got, tt.value)
		}
		if !reader.Done() {
			t.Errorf("ReadVarint(%x) left %d bytes", tt.want, reader.Remaining())
		}
	}
}

func TestVarintTooLong(t *testing.T) {
	input := bytes.Repeat([]byte{0x80}, 11)
	_, err := NewReader(input).ReadVarint()
	if CodeOf(err) != CodeVarintOverflow {
		t.Errorf("11-byte varint: got %v, want %s", err, CodeVarintOverflow)
	}

	// Ten bytes where the last carries more than the single bit that
	// fits in 64 bits.
	overflow := append(bytes.Repeat([]byte{0xFF}, 9), 0x02)
	_, err = NewReader(overflow).ReadVarint()
	if CodeOf(err) != CodeVarintOverflow {
		t.Errorf("overflowing varint: got %v, want %s", err, CodeVarintOverflow)
	}
}

func TestVarintTruncated(t *testing.T) {
	_, err := NewReader([]byte{0x80, 0x80}).ReadVarint()
	if CodeOf(err) != CodeUnexpectedEOF {
		t.Errorf("truncated varint: got %v, want %s", err, CodeUnexpectedEOF)
	}
}

func TestZigzag(t *testing.T) {
	tests := []struct {
		signed   int64
		unsigned uint64
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
		{math.MaxInt64, math.MaxUint64 - 1},
		{math.MinInt64, math.MaxUint64},
	}

	for _, tt := range tests {
		if got := ZigzagEncode(tt.signed); got != tt.unsigned {
			t.Errorf("ZigzagEncode(%d) = %d, want %d", tt.signed, got, tt.unsigned)
		}
		if got := ZigzagDecode(tt.unsigned); got != tt.signed {
			t.Errorf("ZigzagDecode(%d) = %d, want %d", tt.unsigned, got, tt.signed)
		}
	}
}

func TestFixedWidthLittleEndian(t *testing.T) {
	writer := NewWriter(0)
	writer.WriteUint16(0x0102)
	writer.WriteInt32(-2)
	writer.WriteUint64(0x0102030405060708)

	want := []byte{
		0x02, 0x01,
		0xFE, 0xFF, 0xFF, 0xFF,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}
	if !bytes.Equal(writer.Bytes(), want) {
		t.Fatalf("fixed-width bytes = %x, want %x", writer.Bytes(), want)
	}

	reader := NewReader(writer.Bytes())
	if v, _ := reader.ReadUint16(); v != 0x0102 {
		t.Errorf("ReadUint16 = %#x", v)
	}
	if v, _ := reader.ReadInt32(); v != -2 {
		t.Errorf("ReadInt32 = %d", v)
	}
	if v, _ := reader.ReadUint64(); v != 0x0102030405060708 {
		t.Errorf("ReadUint64 = %#x", v)
	}
}

func TestInt48SignExtension(t *testing.T) {
	tests := []struct {
		value int64
		want  []byte
	}{
		{0, []byte{0, 0, 0, 0, 0, 0}},
		{1, []byte{1, 0, 0, 0, 0, 0}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{86_399_999_999, []byte{0xFF, 0x5F, 0xD7, 0x1D, 0x14, 0x00}},
		{1<<47 - 1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F}},
		{-(1 << 47), []byte{0, 0, 0, 0, 0, 0x80}},
	}

	for _, tt := range tests {
		writer := NewWriter(0)
		writer.WriteInt48(tt.value)
		if !bytes.Equal(writer.Bytes(), tt.want) {
			t.Errorf("WriteInt48(%d) = %x, want %x", tt.value, writer.Bytes(), tt.want)
		}
		got, err := NewReader(tt.want).ReadInt48()
		if err != nil {
			t.Fatalf("ReadInt48(%x): %v", tt.want, err)
		}
		if got != tt.value {
			t.Errorf("ReadInt48(%x) = %d, want %d", tt.want, got, tt.value)
		}
	}
}

func TestStringRoundtripAndUTF8(t *testing.T) {
	writer := NewWriter(0)
	writer.WriteString("héllo")
	got, err := NewReader(writer.Bytes()).ReadString()
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got != "héllo" {
		t.Errorf("ReadString = %q", got)
	}

	invalid := []byte{0x02, 0xC3, 0x28}
	_, err = NewReader(invalid).ReadString()
	if CodeOf(err) != CodeInvalidUTF8 {
		t.Errorf("invalid UTF-8: got %v, want %s", err, CodeInvalidUTF8)
	}
	if !errors.Is(err, &Error{Code: CodeInvalidUTF8}) {
		t.Error("errors.Is should match by code")
	}
}

func TestReadBytesDoesNotAlias(t *testing.T) {
	input := []byte{0x03, 'a', 'b', 'c'}
	got, err := NewReader(input).ReadBytes()
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	input[1] = 'z'
	if string(got) != "abc" {
		t.Errorf("ReadBytes result changed with input: %q", got)
	}
}

func TestUnderrun(t *testing.T) {
	reader := NewReader([]byte{0x01, 0x02, 0x03})
	if _, err := reader.ReadUint32(); CodeOf(err) != CodeUnexpectedEOF {
		t.Errorf("ReadUint32 on 3 bytes: got %v", err)
	}
	if _, err := NewReader([]byte{0x05, 'a'}).ReadString(); CodeOf(err) != CodeUnexpectedEOF {
		t.Errorf("short string: got %v", err)
	}
	if _, err := NewReader(make([]byte, 15)).ReadID(); CodeOf(err) != CodeUnexpectedEOF {
		t.Errorf("short id: got %v", err)
	}
}

func TestReadCountBoundsAllocation(t *testing.T) {
	// A count of 1000 IDs with only 32 bytes behind it must fail
	// before allocating.
	writer := NewWriter(0)
	writer.WriteVarint(1000)
	writer.WriteRaw(make([]byte, 32))
	if _, err := NewReader(writer.Bytes()).ReadIDs(); CodeOf(err) != CodeUnexpectedEOF {
		t.Errorf("oversized count: got %v", err)
	}
}

func TestIDs(t *testing.T) {
	ids := []id.ID{id.New(), id.New(), id.New()}
	writer := NewWriter(0)
	writer.WriteIDs(ids)
	if writer.Len() != 1+3*id.Size {
		t.Errorf("WriteIDs length = %d", writer.Len())
	}
	got, err := NewReader(writer.Bytes()).ReadIDs()
	if err != nil {
		t.Fatalf("ReadIDs: %v", err)
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Errorf("id %d: got %s, want %s", i, got[i], ids[i])
		}
	}

	if err := writer.WriteIDBytes(make([]byte, 15)); err == nil {
		t.Error("WriteIDBytes should reject 15 bytes")
	}
	if err := writer.WriteIDBytes(make([]byte, 17)); err == nil {
		t.Error("WriteIDBytes should reject 17 bytes")
	}
}

func TestWriterGrowth(t *testing.T) {
	writer := NewWriter(1)
	for i := 0; i < 1000; i++ {
		writer.WriteUint8(byte(i))
	}
	if writer.Len() != 1000 {
		t.Fatalf("Len = %d", writer.Len())
	}
	for i, b := range writer.Bytes() {
		if b != byte(i) {
			t.Fatalf("byte %d = %d", i, b)
		}
	}
	writer.Reset()
	if writer.Len() != 0 {
		t.Error("Reset did not empty the writer")
	}
}

func BenchmarkWriteVarint(b *testing.B) {
	writer := NewWriter(1 << 16)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		writer.Reset()
		for v := uint64(0); v < 1000; v++ {
			writer.WriteVarint(v * 977)
		}
	}
}
