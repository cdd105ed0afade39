// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editdoc

import (
	"fmt"
	"math/big"

	"github.com/geobrowser/grc-20-sub000/lib/grc20"
	"github.com/geobrowser/grc-20-sub000/lib/id"
)

// Value is a property value. Type is a grc20.DataType name and selects
// the payload field:
//
//	bool       bool
//	int64      int64, unit
//	float64    float64, unit
//	decimal    mantissa (base-10 integer text), exponent, unit
//	text       text, language
//	bytes      bytes
//	date       date     ("2024-01-15", optional offset)
//	time       time     ("14:30:00.5+05:30")
//	datetime   datetime (RFC 3339)
//	schedule   schedule
//	point      point    ([lon, lat] or [lon, lat, alt])
//	embedding  embedding
type Value struct {
	Property id.ID  `json:"property"`
	Type     string `json:"type"`

	Bool     *bool      `json:"bool,omitempty"`
	Int64    *int64     `json:"int64,omitempty"`
	Float64  *float64   `json:"float64,omitempty"`
	Mantissa string     `json:"mantissa,omitempty"`
	Exponent int32      `json:"exponent,omitempty"`
	Text     *string    `json:"text,omitempty"`
	Bytes    []byte     `json:"bytes,omitempty"`
	Date     string     `json:"date,omitempty"`
	Time     string     `json:"time,omitempty"`
	Datetime string     `json:"datetime,omitempty"`
	Schedule *string    `json:"schedule,omitempty"`
	Point    []float64  `json:"point,omitempty"`
	Vector   *Embedding `json:"embedding,omitempty"`

	Unit     *id.ID `json:"unit,omitempty"`
	Language *id.ID `json:"language,omitempty"`
}

// Embedding is the payload of an embedding value.
type Embedding struct {
	Type string `json:"type"`
	Dims uint32 `json:"dims"`
	Data []byte `json:"data"`
}

func fromValue(pv grc20.PropertyValue) (Value, error) {
	if pv.Value == nil {
		return Value{}, fmt.Errorf("property %s: nil value", pv.Property)
	}
	converted := Value{Property: pv.Property, Type: pv.Value.DataType().String()}

	switch v := pv.Value.(type) {
	case grc20.Bool:
		converted.Bool = &v.Value
	case grc20.Int64:
		converted.Int64 = &v.Value
		converted.Unit = v.Unit
	case grc20.Float64:
		converted.Float64 = &v.Value
		converted.Unit = v.Unit
	case grc20.Decimal:
		converted.Mantissa = v.BigMantissaValue().String()
		converted.Exponent = v.Exponent
		converted.Unit = v.Unit
	case grc20.Text:
		converted.Text = &v.Value
		converted.Language = v.Language
	case grc20.Bytes:
		converted.Bytes = v.Value
	case grc20.Date:
		converted.Date = FormatDate(v)
	case grc20.Time:
		converted.Time = FormatTime(v)
	case grc20.Datetime:
		converted.Datetime = FormatDatetime(v)
	case grc20.Schedule:
		converted.Schedule = &v.Value
	case grc20.Point:
		converted.Point = []float64{v.Lon, v.Lat}
		if v.Alt != nil {
			converted.Point = append(converted.Point, *v.Alt)
		}
	case grc20.Embedding:
		converted.Vector = &Embedding{Type: v.Type.String(), Dims: v.Dims, Data: v.Data}
	default:
		return Value{}, fmt.Errorf("property %s: unsupported value type %T", pv.Property, pv.Value)
	}
	return converted, nil
}

func toValues(values []Value) ([]grc20.PropertyValue, error) {
	if len(values) == 0 {
		return nil, nil
	}
	result := make([]grc20.PropertyValue, len(values))
	for i := range values {
		value, err := values[i].toValue()
		if err != nil {
			return nil, fmt.Errorf("value %d (property %s): %w", i, values[i].Property, err)
		}
		result[i] = grc20.PropertyValue{Property: values[i].Property, Value: value}
	}
	return result, nil
}

func (v *Value) toValue() (grc20.Value, error) {
	dataType, err := grc20.ParseDataType(v.Type)
	if err != nil {
		return nil, err
	}
	missing := func(field string) error {
		return fmt.Errorf("%s value needs %q", v.Type, field)
	}

	switch dataType {
	case grc20.DataTypeBool:
		if v.Bool == nil {
			return nil, missing("bool")
		}
		return grc20.Bool{Value: *v.Bool}, nil

	case grc20.DataTypeInt64:
		if v.Int64 == nil {
			return nil, missing("int64")
		}
		return grc20.Int64{Value: *v.Int64, Unit: v.Unit}, nil

	case grc20.DataTypeFloat64:
		if v.Float64 == nil {
			return nil, missing("float64")
		}
		return grc20.Float64{Value: *v.Float64, Unit: v.Unit}, nil

	case grc20.DataTypeDecimal:
		return v.decimal()

	case grc20.DataTypeText:
		if v.Text == nil {
			return nil, missing("text")
		}
		return grc20.Text{Value: *v.Text, Language: v.Language}, nil

	case grc20.DataTypeBytes:
		// An empty payload is omitted from the document.
		if v.Bytes == nil {
			return grc20.Bytes{Value: []byte{}}, nil
		}
		return grc20.Bytes{Value: v.Bytes}, nil

	case grc20.DataTypeDate:
		if v.Date == "" {
			return nil, missing("date")
		}
		return ParseDate(v.Date)

	case grc20.DataTypeTime:
		if v.Time == "" {
			return nil, missing("time")
		}
		return ParseTime(v.Time)

	case grc20.DataTypeDatetime:
		if v.Datetime == "" {
			return nil, missing("datetime")
		}
		return ParseDatetime(v.Datetime)

	case grc20.DataTypeSchedule:
		if v.Schedule == nil {
			return nil, missing("schedule")
		}
		return grc20.Schedule{Value: *v.Schedule}, nil

	case grc20.DataTypePoint:
		switch len(v.Point) {
		case 2:
			return grc20.Point{Lon: v.Point[0], Lat: v.Point[1]}, nil
		case 3:
			altitude := v.Point[2]
			return grc20.Point{Lon: v.Point[0], Lat: v.Point[1], Alt: &altitude}, nil
		default:
			return nil, fmt.Errorf("point needs 2 or 3 ordinates, got %d", len(v.Point))
		}

	case grc20.DataTypeEmbedding:
		if v.Vector == nil {
			return nil, missing("embedding")
		}
		embeddingType, err := grc20.ParseEmbeddingType(v.Vector.Type)
		if err != nil {
			return nil, err
		}
		return grc20.Embedding{Type: embeddingType, Dims: v.Vector.Dims, Data: v.Vector.Data}, nil

	default:
		return nil, fmt.Errorf("unsupported data type %s", dataType)
	}
}

// decimal picks the int64 mantissa form when the value fits and the
// big form otherwise.
func (v *Value) decimal() (grc20.Value, error) {
	if v.Mantissa == "" {
		return nil, fmt.Errorf("decimal value needs %q", "mantissa")
	}
	mantissa, ok := new(big.Int).SetString(v.Mantissa, 10)
	if !ok {
		return nil, fmt.Errorf("decimal mantissa %q is not a base-10 integer", v.Mantissa)
	}
	decimal := grc20.Decimal{Exponent: v.Exponent, Unit: v.Unit}
	if mantissa.IsInt64() {
		decimal.Mantissa = mantissa.Int64()
	} else {
		decimal.BigMantissa = grc20.BigMantissaBytes(mantissa)
	}
	return decimal, nil
}
