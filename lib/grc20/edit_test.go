// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grc20

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/big"
	"reflect"
	"testing"

	"github.com/geobrowser/grc-20-sub000/lib/id"
	"github.com/geobrowser/grc-20-sub000/lib/testutil"
	"github.com/geobrowser/grc-20-sub000/lib/wire"
)

// richEdit exercises every op, every value type, and shared contexts.
func richEdit() *Edit {
	var (
		english  = testutil.ID(0xE1)
		spanish  = testutil.ID(0xE2)
		meters   = testutil.ID(0xA1)
		alice    = testutil.ID(0x10)
		bob      = testutil.ID(0x11)
		relation = testutil.ID(0x20)
		worksAt  = testutil.ID(0x30)
		valueRef = testutil.ID(0x40)
		space    = testutil.ID(0x50)
		version  = testutil.ID(0x51)
	)
	context := &Context{
		Root:  testutil.ID(0x60),
		Edges: []ContextEdge{{RelationType: testutil.ID(0x61), To: testutil.ID(0x62)}},
	}

	return &Edit{
		ID:        testutil.ID(0x01),
		Name:      "Import people",
		Authors:   []id.ID{testutil.ID(0x03), testutil.ID(0x02)},
		CreatedAt: 1_700_000_000_000_000,
		Ops: []Op{
			&CreateEntity{
				ID: alice,
				Values: []PropertyValue{
					{Property: testutil.ID(0x81), Value: Text{Value: "Alice", Language: &english}},
					{Property: testutil.ID(0x82), Value: Bool{Value: true}},
					{Property: testutil.ID(0x83), Value: Int64{Value: -42, Unit: &meters}},
					{Property: testutil.ID(0x84), Value: Float64{Value: 1.5}},
					{Property: testutil.ID(0x85), Value: Decimal{Exponent: -2, Mantissa: 12345, Unit: &meters}},
					{Property: testutil.ID(0x86), Value: Decimal{Exponent: 3, BigMantissa: BigMantissaBytes(new(big.Int).Lsh(big.NewInt(-3), 90))}},
					{Property: testutil.ID(0x87), Value: Bytes{Value: []byte{0xDE, 0xAD}}},
					{Property: testutil.ID(0x88), Value: Date{Days: -365, OffsetMin: 60}},
					{Property: testutil.ID(0x89), Value: Time{Micros: MaxTimeMicros, OffsetMin: -300}},
					{Property: testutil.ID(0x8A), Value: Datetime{Micros: -1, OffsetMin: 0}},
					{Property: testutil.ID(0x8B), Value: Schedule{Value: "FREQ=WEEKLY;BYDAY=MO"}},
					{Property: testutil.ID(0x8C), Value: Point{Lon: -122.4, Lat: 37.8, Alt: testutil.Ptr(16.0)}},
					{Property: testutil.ID(0x8D), Value: Point{Lon: 2.35, Lat: 48.85}},
					{Property: testutil.ID(0x8E), Value: Embedding{Type: EmbeddingInt8, Dims: 3, Data: []byte{1, 0xFF, 7}}},
				},
				Context: context,
			},
			&CreateEntity{ID: bob},
			&UpdateEntity{
				ID: alice,
				Set: []PropertyValue{
					{Property: testutil.ID(0x81), Value: Text{Value: "Alicia", Language: &spanish}},
				},
				Unset: []UnsetValue{
					{Property: testutil.ID(0x82), Kind: UnsetDefaultLanguage},
					{Property: testutil.ID(0x81), Kind: UnsetSpecificLanguage, Language: english},
					{Property: testutil.ID(0x8B), Kind: UnsetAllLanguages},
				},
				Context: context,
			},
			&CreateValueRef{ID: valueRef, Entity: alice, Property: testutil.ID(0x81), Language: &english, Space: &space},
			&CreateRelation{
				ID:             relation,
				RelationType:   worksAt,
				From:           valueRef,
				FromIsValueRef: true,
				To:             bob,
				FromSpace:      &space,
				ToVersion:      &version,
				Entity:         testutil.Ptr(testutil.ID(0x21)),
				Position:       testutil.Ptr("a0"),
			},
			&UpdateRelation{
				ID:       relation,
				ToSpace:  &space,
				Position: testutil.Ptr("a1"),
				Unset:    []RelationField{RelationFromSpace, RelationToVersion},
			},
			&DeleteRelation{ID: relation, Context: &Context{Root: testutil.ID(0x60)}},
			&RestoreRelation{ID: relation},
			&DeleteEntity{ID: bob, Context: context},
			&RestoreEntity{ID: bob},
		},
	}
}

func mustEncode(t testing.TB, edit *Edit, options EncodeOptions) []byte {
	t.Helper()
	data, err := Encode(edit, options)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func mustDecode(t testing.TB, data []byte) *Edit {
	t.Helper()
	edit, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return edit
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	tests := []struct {
		name string
		edit *Edit
	}{
		{"empty", &Edit{}},
		{"rich", richEdit()},
		{"negative createdAt", &Edit{ID: testutil.ID(9), Name: "ünïcødé", CreatedAt: math.MinInt64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := mustEncode(t, tt.edit, EncodeOptions{})
			decoded := mustDecode(t, data)
			if !reflect.DeepEqual(decoded, tt.edit) {
				t.Errorf("roundtrip mismatch:\n got %#v\nwant %#v", decoded, tt.edit)
			}
		})
	}
}

func TestAliceScenario(t *testing.T) {
	edit := &Edit{
		Ops: []Op{
			&CreateEntity{
				ID: testutil.ID(0x0A),
				Values: []PropertyValue{
					{Property: testutil.ID(0x0B), Value: Text{Value: "Alice"}},
				},
			},
		},
	}
	decoded := mustDecode(t, mustEncode(t, edit, EncodeOptions{}))

	if decoded.Name != "" {
		t.Errorf("Name = %q, want empty", decoded.Name)
	}
	if len(decoded.Ops) != 1 {
		t.Fatalf("len(Ops) = %d, want 1", len(decoded.Ops))
	}
	create, ok := decoded.Ops[0].(*CreateEntity)
	if !ok {
		t.Fatalf("Ops[0] is %T, want *CreateEntity", decoded.Ops[0])
	}
	if len(create.Values) != 1 {
		t.Fatalf("len(Values) = %d, want 1", len(create.Values))
	}
	text, ok := create.Values[0].Value.(Text)
	if !ok {
		t.Fatalf("value is %T, want Text", create.Values[0].Value)
	}
	if text.Value != "Alice" {
		t.Errorf("text = %q, want %q", text.Value, "Alice")
	}
	if text.Language != nil {
		t.Errorf("language = %v, want nil", text.Language)
	}
}

func TestHeaderLayout(t *testing.T) {
	data := mustEncode(t, &Edit{ID: testutil.ID(0x01)}, EncodeOptions{})
	want := append([]byte("GRC2\x00"), bytes.Repeat([]byte{0x01}, 16)...)
	if !bytes.HasPrefix(data, want) {
		t.Fatalf("header = %x, want prefix %x", data[:len(want)], want)
	}
	// name, authors, createdAt, six empty dictionaries, contexts, ops.
	if rest := data[len(want):]; !bytes.Equal(rest, make([]byte, 11)) {
		t.Errorf("empty edit body = %x, want 11 zero bytes", rest)
	}
}

func TestCanonicalDeterminism(t *testing.T) {
	build := func(reversed bool) *Edit {
		values := []PropertyValue{
			{Property: testutil.ID(0x92), Value: Text{Value: "x", Language: testutil.Ptr(testutil.ID(0xE2))}},
			{Property: testutil.ID(0x92), Value: Text{Value: "y", Language: testutil.Ptr(testutil.ID(0xE1))}},
			{Property: testutil.ID(0x91), Value: Int64{Value: 7, Unit: testutil.Ptr(testutil.ID(0xA1))}},
		}
		unsets := []UnsetValue{
			{Property: testutil.ID(0x93), Kind: UnsetAllLanguages},
			{Property: testutil.ID(0x91), Kind: UnsetDefaultLanguage},
		}
		authors := []id.ID{testutil.ID(0x05), testutil.ID(0x04)}
		if reversed {
			values = []PropertyValue{values[2], values[1], values[0]}
			unsets = []UnsetValue{unsets[1], unsets[0]}
			authors = []id.ID{authors[1], authors[0]}
		}
		return &Edit{
			ID:      testutil.ID(0x01),
			Authors: authors,
			Ops: []Op{
				&CreateEntity{ID: testutil.ID(0x70), Values: values},
				&UpdateEntity{ID: testutil.ID(0x71), Unset: unsets},
			},
		}
	}
	options := EncodeOptions{Canonical: true, PropertyTypes: map[id.ID]DataType{testutil.ID(0x93): DataTypeText}}

	first := build(false)
	a := mustEncode(t, first, options)
	b := mustEncode(t, build(true), options)
	if !bytes.Equal(a, b) {
		t.Fatalf("canonical encodings differ:\n%x\n%x", a, b)
	}
	again := mustEncode(t, build(false), options)
	if !bytes.Equal(a, again) {
		t.Fatal("canonical encoding is not stable across calls")
	}

	plain := EncodeOptions{PropertyTypes: options.PropertyTypes}
	if bytes.Equal(mustEncode(t, build(false), plain), mustEncode(t, build(true), plain)) {
		t.Error("non-canonical encodings of differently ordered edits should differ")
	}

	if first.Authors[0] != testutil.ID(0x05) {
		t.Error("canonical encoding reordered the caller's author slice")
	}
	if first.Ops[0].(*CreateEntity).Values[0].Property != testutil.ID(0x92) {
		t.Error("canonical encoding reordered the caller's values")
	}

	decoded := mustDecode(t, a)
	if !id.Less(decoded.Authors[0], decoded.Authors[1]) {
		t.Errorf("decoded authors not sorted: %v", decoded.Authors)
	}
	values := decoded.Ops[0].(*CreateEntity).Values
	if values[0].Property != testutil.ID(0x91) || *values[1].Value.(Text).Language != testutil.ID(0xE1) {
		t.Errorf("decoded values not in (property, language) order: %#v", values)
	}

	t.Run("two values in one slot", func(t *testing.T) {
		property := testutil.ID(0x91)
		for _, values := range [][]PropertyValue{
			{{Property: property, Value: Int64{Value: 1}}, {Property: property, Value: Int64{Value: 2}}},
			{{Property: property, Value: Int64{Value: 2}}, {Property: property, Value: Int64{Value: 1}}},
		} {
			edit := &Edit{Ops: []Op{&CreateEntity{ID: testutil.ID(0x70), Values: values}}}
			if _, err := Encode(edit, EncodeOptions{Canonical: true}); !errors.Is(err, ErrInvalidOp) {
				t.Errorf("Encode with a repeated slot = %v, want ErrInvalidOp", err)
			}
		}
	})

	t.Run("decimal has one encoding", func(t *testing.T) {
		build := func(value Decimal) *Edit {
			return &Edit{Ops: []Op{&CreateEntity{ID: testutil.ID(0x70),
				Values: []PropertyValue{{Property: testutil.ID(0x85), Value: value}}}}}
		}
		mustEncode(t, build(Decimal{Mantissa: 5}), EncodeOptions{Canonical: true})
		_, err := Encode(build(Decimal{BigMantissa: []byte{0x05}}), EncodeOptions{Canonical: true})
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Encode with a small big mantissa = %v, want ErrInvalidValue", err)
		}
	})
}

func TestDictionaryDedup(t *testing.T) {
	property := testutil.ID(0x81)
	edit := &Edit{}
	for i := 0; i < 50; i++ {
		var entity id.ID
		entity[0] = 0x70
		entity[15] = byte(i)
		edit.Ops = append(edit.Ops, &CreateEntity{
			ID:     entity,
			Values: []PropertyValue{{Property: property, Value: Int64{Value: int64(i)}}},
		})
	}

	dict, err := buildDictionaries(edit.Ops, EncodeOptions{})
	if err != nil {
		t.Fatalf("buildDictionaries: %v", err)
	}
	if got := len(dict.properties.ids); got != 1 {
		t.Errorf("properties table has %d entries, want 1", got)
	}

	data := mustEncode(t, edit, EncodeOptions{})
	if got := bytes.Count(data, property[:]); got != 1 {
		t.Errorf("property ID appears %d times in encoding, want 1", got)
	}
	decoded := mustDecode(t, data)
	if !reflect.DeepEqual(decoded, edit) {
		t.Error("roundtrip mismatch")
	}
}

func TestValueRefEndpointIsInline(t *testing.T) {
	entity := testutil.ID(0x70)
	target := testutil.ID(0x71)
	valueRef := testutil.ID(0x4A)
	edit := &Edit{
		Ops: []Op{
			&CreateEntity{ID: entity, Values: []PropertyValue{{Property: testutil.ID(0x81), Value: Text{Value: "v"}}}},
			&CreateValueRef{ID: valueRef, Entity: entity, Property: testutil.ID(0x81)},
			&CreateRelation{ID: testutil.ID(0x20), RelationType: testutil.ID(0x30), From: valueRef, FromIsValueRef: true, To: target},
		},
	}

	dict, err := buildDictionaries(edit.Ops, EncodeOptions{})
	if err != nil {
		t.Fatalf("buildDictionaries: %v", err)
	}
	if dict.objects.contains(valueRef) {
		t.Error("value-ref endpoint was registered in the objects dictionary")
	}
	if !dict.objects.contains(target) {
		t.Error("plain endpoint missing from the objects dictionary")
	}

	data := mustEncode(t, edit, EncodeOptions{})
	// Once as the CreateValueRef ID, once inline as the endpoint.
	if got := bytes.Count(data, valueRef[:]); got != 2 {
		t.Errorf("value ref ID appears %d times, want 2", got)
	}
	if decoded := mustDecode(t, data); !reflect.DeepEqual(decoded, edit) {
		t.Errorf("roundtrip mismatch: got %#v", decoded.Ops[2])
	}
}

func TestEncodeRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		value Value
	}{
		{"latitude 95", Point{Lon: 0, Lat: 95.0}},
		{"time 86400000000", Time{Micros: 86_400_000_000}},
		{"float64 NaN", Float64{Value: math.NaN()}},
		{"date offset 1500", Date{Days: 0, OffsetMin: 1500}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edit := &Edit{Ops: []Op{
				&DeleteEntity{ID: testutil.ID(0x70)},
				&CreateEntity{ID: testutil.ID(0x71), Values: []PropertyValue{{Property: testutil.ID(0x81), Value: tt.value}}},
			}}
			_, err := Encode(edit, EncodeOptions{})
			if !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("Encode error = %v, want ErrInvalidValue", err)
			}
			var encodeErr *EncodeError
			if !errors.As(err, &encodeErr) {
				t.Fatalf("Encode error %T is not *EncodeError", err)
			}
			if encodeErr.Op != 1 {
				t.Errorf("EncodeError.Op = %d, want 1", encodeErr.Op)
			}
		})
	}
}

func TestEncodeRejectsInvalidOps(t *testing.T) {
	english := testutil.ID(0xE1)
	french := testutil.ID(0xE3)
	property := testutil.ID(0x81)
	text := PropertyValue{Property: property, Value: Text{Value: "x", Language: &english}}

	tests := []struct {
		name    string
		ops     []Op
		options EncodeOptions
		want    error
	}{
		{
			name: "unset same language",
			ops: []Op{&UpdateEntity{ID: testutil.ID(0x70), Set: []PropertyValue{text},
				Unset: []UnsetValue{{Property: property, Kind: UnsetSpecificLanguage, Language: english}}}},
			want: ErrSetUnsetOverlap,
		},
		{
			name: "unset all languages",
			ops: []Op{&UpdateEntity{ID: testutil.ID(0x70), Set: []PropertyValue{text},
				Unset: []UnsetValue{{Property: property, Kind: UnsetAllLanguages}}}},
			want: ErrSetUnsetOverlap,
		},
		{
			name: "unset non-text default",
			ops: []Op{&UpdateEntity{ID: testutil.ID(0x70),
				Set:   []PropertyValue{{Property: testutil.ID(0x82), Value: Bool{Value: true}}},
				Unset: []UnsetValue{{Property: testutil.ID(0x82), Kind: UnsetDefaultLanguage}}}},
			want: ErrSetUnsetOverlap,
		},
		{
			name: "relation field set and unset",
			ops: []Op{&UpdateRelation{ID: testutil.ID(0x20), FromSpace: testutil.Ptr(testutil.ID(0x50)),
				Unset: []RelationField{RelationFromSpace}}},
			want: ErrSetUnsetOverlap,
		},
		{
			name: "unknown relation field",
			ops:  []Op{&UpdateRelation{ID: testutil.ID(0x20), Unset: []RelationField{1 << 6}}},
			want: ErrInvalidOp,
		},
		{
			name: "combined relation fields",
			ops:  []Op{&UpdateRelation{ID: testutil.ID(0x20), Unset: []RelationField{RelationFromSpace | RelationToSpace}}},
			want: ErrInvalidOp,
		},
		{
			name: "relation field unset twice",
			ops: []Op{&UpdateRelation{ID: testutil.ID(0x20),
				Unset: []RelationField{RelationPosition, RelationFromSpace, RelationFromSpace}}},
			want: ErrInvalidOp,
		},
		{
			name: "create with two values in one slot",
			ops: []Op{&CreateEntity{ID: testutil.ID(0x70), Values: []PropertyValue{
				{Property: testutil.ID(0x82), Value: Bool{Value: true}},
				{Property: testutil.ID(0x82), Value: Bool{Value: false}},
			}}},
			want: ErrInvalidOp,
		},
		{
			name: "update with two values in one language",
			ops: []Op{&UpdateEntity{ID: testutil.ID(0x70), Set: []PropertyValue{
				text,
				{Property: property, Value: Text{Value: "y", Language: &english}},
			}}},
			want: ErrInvalidOp,
		},
		{
			name: "conflicting property types",
			ops: []Op{
				&CreateEntity{ID: testutil.ID(0x70), Values: []PropertyValue{text}},
				&CreateEntity{ID: testutil.ID(0x71), Values: []PropertyValue{{Property: property, Value: Int64{Value: 1}}}},
			},
			want: ErrPropertyTypeConflict,
		},
		{
			name: "untyped unset property",
			ops: []Op{&UpdateEntity{ID: testutil.ID(0x70),
				Unset: []UnsetValue{{Property: property, Kind: UnsetAllLanguages}}}},
			want: ErrUntypedProperty,
		},
		{
			name: "untyped value ref property",
			ops:  []Op{&CreateValueRef{ID: testutil.ID(0x40), Entity: testutil.ID(0x70), Property: property}},
			want: ErrUntypedProperty,
		},
		{
			name: "invalid type hint",
			ops:  []Op{&CreateValueRef{ID: testutil.ID(0x40), Entity: testutil.ID(0x70), Property: property}},
			options: EncodeOptions{
				PropertyTypes: map[id.ID]DataType{property: 0},
			},
			want: ErrInvalidOp,
		},
		{
			name: "nil op",
			ops:  []Op{nil},
			want: ErrInvalidOp,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(&Edit{Ops: tt.ops}, tt.options)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Encode error = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("different languages do not overlap", func(t *testing.T) {
		edit := &Edit{Ops: []Op{&UpdateEntity{ID: testutil.ID(0x70), Set: []PropertyValue{text},
			Unset: []UnsetValue{
				{Property: property, Kind: UnsetSpecificLanguage, Language: french},
				{Property: property, Kind: UnsetDefaultLanguage},
			}}}}
		decoded := mustDecode(t, mustEncode(t, edit, EncodeOptions{}))
		if !reflect.DeepEqual(decoded, edit) {
			t.Errorf("roundtrip mismatch: got %#v", decoded.Ops[0])
		}
	})

	t.Run("same property in two languages", func(t *testing.T) {
		edit := &Edit{Ops: []Op{&CreateEntity{ID: testutil.ID(0x70), Values: []PropertyValue{
			text,
			{Property: property, Value: Text{Value: "y", Language: &french}},
			{Property: property, Value: Text{Value: "z"}},
		}}}}
		decoded := mustDecode(t, mustEncode(t, edit, EncodeOptions{}))
		if !reflect.DeepEqual(decoded, edit) {
			t.Errorf("roundtrip mismatch: got %#v", decoded.Ops[0])
		}
	})

	t.Run("relation unset decodes in wire order", func(t *testing.T) {
		edit := &Edit{Ops: []Op{&UpdateRelation{ID: testutil.ID(0x20),
			Unset: []RelationField{RelationPosition, RelationFromSpace}}}}
		decoded := mustDecode(t, mustEncode(t, edit, EncodeOptions{}))
		got := decoded.Ops[0].(*UpdateRelation).Unset
		want := []RelationField{RelationFromSpace, RelationPosition}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("decoded Unset = %v, want %v", got, want)
		}
	})

	t.Run("nil edit", func(t *testing.T) {
		if _, err := Encode(nil, EncodeOptions{}); !errors.Is(err, ErrInvalidOp) {
			t.Errorf("Encode(nil) error = %v, want ErrInvalidOp", err)
		}
	})
}

func TestPropertyTypeHint(t *testing.T) {
	property := testutil.ID(0x81)
	edit := &Edit{Ops: []Op{
		&UpdateEntity{ID: testutil.ID(0x70), Unset: []UnsetValue{{Property: property, Kind: UnsetAllLanguages}}},
		&CreateValueRef{ID: testutil.ID(0x40), Entity: testutil.ID(0x70), Property: property},
	}}
	options := EncodeOptions{PropertyTypes: map[id.ID]DataType{property: DataTypeText}}
	decoded := mustDecode(t, mustEncode(t, edit, options))
	if !reflect.DeepEqual(decoded, edit) {
		t.Errorf("roundtrip mismatch: got %#v", decoded)
	}
}

func TestDecodeRejectsReservedBits(t *testing.T) {
	property := testutil.ID(0x81)
	tests := []struct {
		name    string
		op      Op
		options EncodeOptions
		// offset from the end of the encoding of the flag byte to
		// corrupt, and the bit to set.
		fromEnd int
		bit     byte
	}{
		{"update entity", &UpdateEntity{ID: testutil.ID(0x70)}, EncodeOptions{}, 2, 1 << 2},
		{"update entity high bit", &UpdateEntity{ID: testutil.ID(0x70)}, EncodeOptions{}, 2, 1 << 7},
		{"update relation set", &UpdateRelation{ID: testutil.ID(0x20)}, EncodeOptions{}, 3, 1 << 5},
		{"update relation unset", &UpdateRelation{ID: testutil.ID(0x20)}, EncodeOptions{}, 2, 1 << 7},
		{
			"create value ref",
			&CreateValueRef{ID: testutil.ID(0x40), Entity: testutil.ID(0x70), Property: property},
			EncodeOptions{PropertyTypes: map[id.ID]DataType{property: DataTypeBool}},
			1, 1 << 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := mustEncode(t, &Edit{Ops: []Op{tt.op}}, tt.options)
			if _, err := Decode(data); err != nil {
				t.Fatalf("clean encoding failed to decode: %v", err)
			}
			data[len(data)-tt.fromEnd] |= tt.bit
			_, err := Decode(data)
			if code := wire.CodeOf(err); code != wire.CodeReservedBits {
				t.Fatalf("Decode error = %v (code %q), want %q", err, code, wire.CodeReservedBits)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	deleteEdit := mustEncode(t, &Edit{Name: "ab", Ops: []Op{&DeleteEntity{ID: testutil.ID(0x70)}}}, EncodeOptions{})
	boolEdit := mustEncode(t, &Edit{Ops: []Op{&CreateEntity{ID: testutil.ID(0x70),
		Values: []PropertyValue{{Property: testutil.ID(0x81), Value: Bool{Value: true}}}}}}, EncodeOptions{})
	floatEdit := mustEncode(t, &Edit{Ops: []Op{&CreateEntity{ID: testutil.ID(0x70),
		Values: []PropertyValue{{Property: testutil.ID(0x81), Value: Float64{Value: 1.5}}}}}}, EncodeOptions{})
	decimalEdit := mustEncode(t, &Edit{Ops: []Op{&CreateEntity{ID: testutil.ID(0x70),
		Values: []PropertyValue{{Property: testutil.ID(0x81), Value: Decimal{Mantissa: 5}}}}}}, EncodeOptions{})

	clone := func(data []byte) []byte { return append([]byte(nil), data...) }

	tests := []struct {
		name   string
		mutate func() []byte
		want   wire.Code
	}{
		{"empty", func() []byte { return nil }, wire.CodeInvalidMagic},
		{"short magic", func() []byte { return []byte("GRC") }, wire.CodeInvalidMagic},
		{"wrong magic", func() []byte {
			data := clone(deleteEdit)
			data[0] = 'X'
			return data
		}, wire.CodeInvalidMagic},
		{"compressed magic", func() []byte {
			return append([]byte(CompressedMagic), deleteEdit[len(Magic):]...)
		}, wire.CodeCompressedInput},
		{"version 1", func() []byte {
			data := clone(deleteEdit)
			data[4] = 1
			return data
		}, wire.CodeUnsupportedVersion},
		{"invalid UTF-8 name", func() []byte {
			data := clone(deleteEdit)
			data[22] = 0xFF
			return data
		}, wire.CodeInvalidUTF8},
		{"object index out of range", func() []byte {
			data := clone(deleteEdit)
			data[len(data)-2] = 5
			return data
		}, wire.CodeIndexOutOfBounds},
		{"context reference out of range", func() []byte {
			data := clone(deleteEdit)
			data[len(data)-1] = 1
			return data
		}, wire.CodeIndexOutOfBounds},
		{"unknown op type", func() []byte {
			data := clone(deleteEdit)
			data[len(data)-3] = 10
			return data
		}, wire.CodeMalformed},
		{"trailing bytes", func() []byte {
			return append(clone(deleteEdit), 0x00)
		}, wire.CodeMalformed},
		{"truncated", func() []byte {
			return deleteEdit[:len(deleteEdit)-1]
		}, wire.CodeUnexpectedEOF},
		{"unknown data type", func() []byte {
			data := clone(boolEdit)
			// magic, version, id, name, authors, createdAt, count, property id.
			data[4+1+16+1+1+1+1+16] = 99
			return data
		}, wire.CodeMalformed},
		{"bool byte 2", func() []byte {
			data := clone(boolEdit)
			data[len(data)-2] = 2
			return data
		}, wire.CodeInvalidValue},
		{"float64 NaN", func() []byte {
			data := clone(floatEdit)
			binary.LittleEndian.PutUint64(data[len(data)-10:], math.Float64bits(math.NaN()))
			return data
		}, wire.CodeInvalidValue},
		{"big mantissa fits int64", func() []byte {
			// Tail is mantissa kind 0, zigzag 5, no unit, no context.
			data := clone(decimalEdit[:len(decimalEdit)-4])
			return append(data, 0x01, 0x01, 0x05, 0x00, 0x00)
		}, wire.CodeInvalidValue},
		{"big mantissa not minimal", func() []byte {
			data := clone(decimalEdit[:len(decimalEdit)-4])
			mantissa := BigMantissaBytes(new(big.Int).Lsh(big.NewInt(1), 80))
			data = append(data, 0x01, byte(len(mantissa)+1), 0x00)
			data = append(data, mantissa...)
			return append(data, 0x00, 0x00)
		}, wire.CodeInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edit, err := Decode(tt.mutate())
			if err == nil {
				t.Fatalf("Decode succeeded with %+v, want %q", edit, tt.want)
			}
			if edit != nil {
				t.Error("Decode returned a partial edit alongside an error")
			}
			if code := wire.CodeOf(err); code != tt.want {
				t.Errorf("Decode error = %v (code %q), want %q", err, code, tt.want)
			}
		})
	}
}

func TestDecodeEveryTruncationFails(t *testing.T) {
	data := mustEncode(t, richEdit(), EncodeOptions{})
	for n := 0; n < len(data); n++ {
		if _, err := Decode(data[:n]); err == nil {
			t.Fatalf("Decode of %d-byte prefix (of %d) succeeded", n, len(data))
		}
	}
}

func TestDecodeWithDictionary(t *testing.T) {
	data := mustEncode(t, richEdit(), EncodeOptions{})
	_, dict, err := DecodeWithDictionary(data)
	if err != nil {
		t.Fatalf("DecodeWithDictionary: %v", err)
	}
	if got := len(dict.Properties); got != 14 {
		t.Errorf("%d properties, want 14", got)
	}
	if got := len(dict.Languages); got != 2 {
		t.Errorf("%d languages, want 2", got)
	}
	if got := len(dict.Units); got != 1 {
		t.Errorf("%d units, want 1", got)
	}
	if got := len(dict.Contexts); got != 2 {
		t.Errorf("%d contexts, want 2", got)
	}
	types := dict.PropertyTypeMap()
	if types[testutil.ID(0x8E)] != DataTypeEmbedding {
		t.Errorf("property 0x8e type = %s, want embedding", types[testutil.ID(0x8E)])
	}
}

func TestCanonicalize(t *testing.T) {
	property := testutil.ID(0x93)
	edit := &Edit{
		Authors: []id.ID{testutil.ID(0x05), testutil.ID(0x04)},
		Ops: []Op{
			&UpdateEntity{ID: testutil.ID(0x71), Unset: []UnsetValue{{Property: property, Kind: UnsetAllLanguages}}},
			&CreateEntity{ID: testutil.ID(0x70), Values: []PropertyValue{
				{Property: testutil.ID(0x92), Value: Bool{Value: true}},
				{Property: testutil.ID(0x91), Value: Bool{Value: false}},
			}},
		},
	}
	options := EncodeOptions{PropertyTypes: map[id.ID]DataType{property: DataTypeSchedule}}
	plain := mustEncode(t, edit, options)

	canonical, err := Canonicalize(plain)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	options.Canonical = true
	want := mustEncode(t, edit, options)
	if !bytes.Equal(canonical, want) {
		t.Errorf("Canonicalize output differs from canonical Encode:\n got %x\nwant %x", canonical, want)
	}

	again, err := Canonicalize(canonical)
	if err != nil {
		t.Fatalf("second Canonicalize: %v", err)
	}
	if !bytes.Equal(again, canonical) {
		t.Error("Canonicalize is not idempotent")
	}
}

func TestIsCompressed(t *testing.T) {
	if !IsCompressed([]byte("GRC2Z\x05")) {
		t.Error("IsCompressed(GRC2Z...) = false")
	}
	if IsCompressed([]byte("GRC2\x00")) {
		t.Error("IsCompressed(GRC2...) = true")
	}
}

func BenchmarkEncode(b *testing.B) {
	edit := richEdit()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(edit, EncodeOptions{Canonical: true}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	data, err := Encode(richEdit(), EncodeOptions{})
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		if _, err := Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}
