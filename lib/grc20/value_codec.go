// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grc20

import (
	"fmt"
	"math"

	"github.com/geobrowser/grc-20-sub000/lib/id"
	"github.com/geobrowser/grc-20-sub000/lib/wire"
)

// Decimal mantissa encodings.
const (
	mantissaVarint = 0
	mantissaBytes  = 1
)

// valueLanguage returns the language a value carries on the wire.
func valueLanguage(v Value) *id.ID {
	if text, ok := v.(Text); ok {
		return text.Language
	}
	return nil
}

// valueUnit returns the unit a value carries on the wire.
func valueUnit(v Value) *id.ID {
	switch value := v.(type) {
	case Int64:
		return value.Unit
	case Float64:
		return value.Unit
	case Decimal:
		return value.Unit
	default:
		return nil
	}
}

// writePropertyValue writes the property index, the payload, and then
// the language reference for text or the unit reference for numbers.
// The value must already have passed ValidateValue.
func writePropertyValue(w *wire.Writer, dict *dictionaries, pv PropertyValue) {
	w.WriteVarint(dict.propertyIndex(pv.Property))
	writeValuePayload(w, pv.Value)
	switch value := pv.Value.(type) {
	case Text:
		w.WriteVarint(dict.languageRef(value.Language))
	case Int64, Float64, Decimal:
		w.WriteVarint(dict.unitRef(valueUnit(value)))
	}
}

func writeValuePayload(w *wire.Writer, v Value) {
	switch value := v.(type) {
	case Bool:
		if value.Value {
			w.WriteUint8(1)
		} else {
			w.WriteUint8(0)
		}
	case Int64:
		w.WriteSignedVarint(value.Value)
	case Float64:
		w.WriteFloat64(value.Value)
	case Decimal:
		w.WriteSignedVarint(int64(value.Exponent))
		if value.BigMantissa != nil {
			w.WriteUint8(mantissaBytes)
			w.WriteBytes(value.BigMantissa)
		} else {
			w.WriteUint8(mantissaVarint)
			w.WriteSignedVarint(value.Mantissa)
		}
	case Text:
		w.WriteString(value.Value)
	case Bytes:
		w.WriteBytes(value.Value)
	case Date:
		w.WriteInt32(value.Days)
		w.WriteInt16(value.OffsetMin)
	case Time:
		w.WriteInt48(value.Micros)
		w.WriteInt16(value.OffsetMin)
	case Datetime:
		w.WriteInt64(value.Micros)
		w.WriteInt16(value.OffsetMin)
	case Schedule:
		w.WriteString(value.Value)
	case Point:
		if value.Alt != nil {
			w.WriteUint8(3)
		} else {
			w.WriteUint8(2)
		}
		w.WriteFloat64(value.Lon)
		w.WriteFloat64(value.Lat)
		if value.Alt != nil {
			w.WriteFloat64(*value.Alt)
		}
	case Embedding:
		w.WriteUint8(uint8(value.Type))
		w.WriteVarint(uint64(value.Dims))
		w.WriteRaw(value.Data)
	default:
		panic(fmt.Sprintf("grc20: unvalidated value type %T reached the encoder", v))
	}
}

// readPropertyValue mirrors writePropertyValue. The data type comes
// from the properties dictionary.
func readPropertyValue(r *wire.Reader, l *lookups) (PropertyValue, error) {
	property, dataType, err := l.property(r)
	if err != nil {
		return PropertyValue{}, err
	}

	start := r.Offset()
	value, err := readValuePayload(r, dataType)
	if err != nil {
		return PropertyValue{}, fmt.Errorf("property %s (%s): %w", property, dataType, err)
	}
	if err := ValidateValue(value); err != nil {
		return PropertyValue{}, &wire.Error{
			Code:   wire.CodeInvalidValue,
			Offset: start,
			Err:    fmt.Errorf("property %s: %w", property, err),
		}
	}

	switch v := value.(type) {
	case Text:
		if v.Language, err = l.language(r); err != nil {
			return PropertyValue{}, err
		}
		value = v
	case Int64:
		if v.Unit, err = l.unit(r); err != nil {
			return PropertyValue{}, err
		}
		value = v
	case Float64:
		if v.Unit, err = l.unit(r); err != nil {
			return PropertyValue{}, err
		}
		value = v
	case Decimal:
		if v.Unit, err = l.unit(r); err != nil {
			return PropertyValue{}, err
		}
		value = v
	}
	return PropertyValue{Property: property, Value: value}, nil
}

func readValuePayload(r *wire.Reader, dataType DataType) (Value, error) {
	switch dataType {
	case DataTypeBool:
		start := r.Offset()
		b, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		switch b {
		case 0:
			return Bool{Value: false}, nil
		case 1:
			return Bool{Value: true}, nil
		default:
			return nil, wire.Errorf(wire.CodeInvalidValue, start, "bool byte %#x", b)
		}

	case DataTypeInt64:
		v, err := r.ReadSignedVarint()
		if err != nil {
			return nil, err
		}
		return Int64{Value: v}, nil

	case DataTypeFloat64:
		v, err := r.ReadFloat64()
		if err != nil {
			return nil, err
		}
		return Float64{Value: v}, nil

	case DataTypeDecimal:
		return readDecimal(r)

	case DataTypeText:
		v, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return Text{Value: v}, nil

	case DataTypeBytes:
		v, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return Bytes{Value: v}, nil

	case DataTypeDate:
		days, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		offset, err := r.ReadInt16()
		if err != nil {
			return nil, err
		}
		return Date{Days: days, OffsetMin: offset}, nil

	case DataTypeTime:
		micros, err := r.ReadInt48()
		if err != nil {
			return nil, err
		}
		offset, err := r.ReadInt16()
		if err != nil {
			return nil, err
		}
		return Time{Micros: micros, OffsetMin: offset}, nil

	case DataTypeDatetime:
		micros, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		offset, err := r.ReadInt16()
		if err != nil {
			return nil, err
		}
		return Datetime{Micros: micros, OffsetMin: offset}, nil

	case DataTypeSchedule:
		v, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return Schedule{Value: v}, nil

	case DataTypePoint:
		return readPoint(r)

	case DataTypeEmbedding:
		return readEmbedding(r)

	default:
		return nil, r.Errorf(wire.CodeMalformed, "unknown data type %d", uint8(dataType))
	}
}

func readDecimal(r *wire.Reader) (Value, error) {
	start := r.Offset()
	exponent, err := r.ReadSignedVarint()
	if err != nil {
		return nil, err
	}
	if exponent < math.MinInt32 || exponent > math.MaxInt32 {
		return nil, wire.Errorf(wire.CodeInvalidValue, start, "decimal exponent %d exceeds 32 bits", exponent)
	}
	kindOffset := r.Offset()
	kind, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	decimal := Decimal{Exponent: int32(exponent)}
	switch kind {
	case mantissaVarint:
		if decimal.Mantissa, err = r.ReadSignedVarint(); err != nil {
			return nil, err
		}
	case mantissaBytes:
		if decimal.BigMantissa, err = r.ReadBytes(); err != nil {
			return nil, err
		}
	default:
		return nil, wire.Errorf(wire.CodeMalformed, kindOffset, "decimal mantissa kind %d", kind)
	}
	return decimal, nil
}

func readPoint(r *wire.Reader) (Value, error) {
	start := r.Offset()
	count, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	if count != 2 && count != 3 {
		return nil, wire.Errorf(wire.CodeMalformed, start, "point has %d ordinates, want 2 or 3", count)
	}
	var point Point
	if point.Lon, err = r.ReadFloat64(); err != nil {
		return nil, err
	}
	if point.Lat, err = r.ReadFloat64(); err != nil {
		return nil, err
	}
	if count == 3 {
		alt, err := r.ReadFloat64()
		if err != nil {
			return nil, err
		}
		point.Alt = &alt
	}
	return point, nil
}

func readEmbedding(r *wire.Reader) (Value, error) {
	start := r.Offset()
	raw, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	embeddingType := EmbeddingType(raw)
	dims, err := r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	size, ok := embeddingType.ByteLength(uint64(dims))
	if !ok {
		return nil, wire.Errorf(wire.CodeMalformed, start, "unknown embedding type %d", raw)
	}
	if size > uint64(r.Remaining()) {
		return nil, r.Errorf(wire.CodeUnexpectedEOF, "%s embedding with %d dims needs %d bytes, have %d", embeddingType, dims, size, r.Remaining())
	}
	data, err := r.ReadRaw(int(size))
	if err != nil {
		return nil, err
	}
	return Embedding{Type: embeddingType, Dims: dims, Data: data}, nil
}
