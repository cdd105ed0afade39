// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package id

import (
	"encoding/json"
	"testing"
)

func TestFromBytesLength(t *testing.T) {
	for _, length := range []int{0, 15, 17, 32} {
		if _, err := FromBytes(make([]byte, length)); err == nil {
			t.Errorf("FromBytes(%d bytes) should fail", length)
		}
	}

	raw := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	got, err := FromBytes(raw)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	raw[0] = 0xFF
	if got[0] != 0 {
		t.Error("FromBytes must copy, not alias, its input")
	}
}

func TestParseForms(t *testing.T) {
	want := MustFromBytes([]byte{
		0x55, 0x0e, 0x84, 0x00, 0xe2, 0x9b, 0x41, 0xd4,
		0xa7, 0x16, 0x44, 0x66, 0x55, 0x44, 0x00, 0x00,
	})

	for _, input := range []string{
		"550e8400e29b41d4a716446655440000",
		"550e8400-e29b-41d4-a716-446655440000",
		"{550e8400-e29b-41d4-a716-446655440000}",
		"urn:uuid:550e8400-e29b-41d4-a716-446655440000",
	} {
		t.Run(input, func(t *testing.T) {
			got, err := Parse(input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", input, err)
			}
			if got != want {
				t.Errorf("Parse(%q) = %s, want %s", input, got, want)
			}
		})
	}

	if want.String() != "550e8400e29b41d4a716446655440000" {
		t.Errorf("String() = %q", want.String())
	}
	if want.UUID() != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("UUID() = %q", want.UUID())
	}

	if _, err := Parse("not-an-id"); err == nil {
		t.Error("Parse should reject garbage")
	}
}

func TestCompareAndSort(t *testing.T) {
	low := ID{0x00, 0xFF}
	mid := ID{0x01}
	high := ID{0xFF}

	if Compare(low, mid) != -1 || Compare(high, mid) != 1 || Compare(mid, mid) != 0 {
		t.Error("Compare does not follow raw byte order")
	}

	ids := []ID{high, low, mid}
	Sort(ids)
	if ids[0] != low || ids[1] != mid || ids[2] != high {
		t.Errorf("Sort = %v", ids)
	}
}

func TestJSONRoundtrip(t *testing.T) {
	original := New()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"`+original.String()+`"` {
		t.Errorf("Marshal = %s, want quoted hex", data)
	}

	var decoded ID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip: got %s, want %s", decoded, original)
	}
}
