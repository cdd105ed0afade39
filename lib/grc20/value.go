// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grc20

import (
	"bytes"
	"fmt"
	"math"
	"math/big"

	"github.com/geobrowser/grc-20-sub000/lib/id"
)

// DataType identifies the payload layout of a [Value]. The byte values
// are protocol constants written into the properties dictionary.
type DataType uint8

const (
	DataTypeBool      DataType = 1
	DataTypeInt64     DataType = 2
	DataTypeFloat64   DataType = 3
	DataTypeDecimal   DataType = 4
	DataTypeText      DataType = 5
	DataTypeBytes     DataType = 6
	DataTypeDate      DataType = 7
	DataTypeTime      DataType = 8
	DataTypeDatetime  DataType = 9
	DataTypeSchedule  DataType = 10
	DataTypePoint     DataType = 11
	DataTypeEmbedding DataType = 12
)

var dataTypeNames = map[DataType]string{
	DataTypeBool:      "bool",
	DataTypeInt64:     "int64",
	DataTypeFloat64:   "float64",
	DataTypeDecimal:   "decimal",
	DataTypeText:      "text",
	DataTypeBytes:     "bytes",
	DataTypeDate:      "date",
	DataTypeTime:      "time",
	DataTypeDatetime:  "datetime",
	DataTypeSchedule:  "schedule",
	DataTypePoint:     "point",
	DataTypeEmbedding: "embedding",
}

// String returns the lower-case name of the data type.
func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(d))
}

// Valid reports whether d is one of the twelve defined data types.
func (d DataType) Valid() bool {
	return d >= DataTypeBool && d <= DataTypeEmbedding
}

// ParseDataType parses the name returned by DataType.String.
func ParseDataType(name string) (DataType, error) {
	for dataType, candidate := range dataTypeNames {
		if candidate == name {
			return dataType, nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", name)
}

// EmbeddingType is the element encoding of an [Embedding].
type EmbeddingType uint8

const (
	// EmbeddingFloat32 stores each dimension as a little-endian float32.
	EmbeddingFloat32 EmbeddingType = 0
	// EmbeddingInt8 stores each dimension as one signed byte.
	EmbeddingInt8 EmbeddingType = 1
	// EmbeddingBinary packs one bit per dimension.
	EmbeddingBinary EmbeddingType = 2
)

// String returns the lower-case name of the embedding type.
func (e EmbeddingType) String() string {
	switch e {
	case EmbeddingFloat32:
		return "float32"
	case EmbeddingInt8:
		return "int8"
	case EmbeddingBinary:
		return "binary"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

// ParseEmbeddingType parses the name returned by EmbeddingType.String.
func ParseEmbeddingType(name string) (EmbeddingType, error) {
	switch name {
	case "float32":
		return EmbeddingFloat32, nil
	case "int8":
		return EmbeddingInt8, nil
	case "binary":
		return EmbeddingBinary, nil
	default:
		return 0, fmt.Errorf("unknown embedding type %q", name)
	}
}

// ByteLength returns the data size in bytes for dims dimensions, and
// false for an unknown embedding type.
func (e EmbeddingType) ByteLength(dims uint64) (uint64, bool) {
	switch e {
	case EmbeddingFloat32:
		return 4 * dims, true
	case EmbeddingInt8:
		return dims, true
	case EmbeddingBinary:
		return (dims + 7) / 8, true
	default:
		return 0, false
	}
}

// Value is a typed property value. The set of implementations is
// closed: Bool, Int64, Float64, Decimal, Text, Bytes, Date, Time,
// Datetime, Schedule, Point, Embedding.
type Value interface {
	// DataType reports the wire data type of the value.
	DataType() DataType
	isValue()
}

// Bool is a boolean value.
type Bool struct {
	Value bool
}

// Int64 is a signed integer with an optional unit.
type Int64 struct {
	Value int64
	Unit  *id.ID
}

// Float64 is a double with an optional unit. Never NaN.
type Float64 struct {
	Value float64
	Unit  *id.ID
}

// Decimal is Mantissa × 10^Exponent in normalized form: a zero
// mantissa has exponent 0 and a non-zero mantissa has no trailing zero
// digit. Mantissas outside the int64 range are carried in BigMantissa
// as minimal big-endian two's complement bytes (see [BigMantissaBytes]),
// in which case Mantissa must be zero. A BigMantissa that fits in int64
// is invalid, so every decimal has exactly one encoding.
type Decimal struct {
	Exponent    int32
	Mantissa    int64
	BigMantissa []byte
	Unit        *id.ID
}

// Text is a UTF-8 string with an optional language.
type Text struct {
	Value    string
	Language *id.ID
}

// Bytes is an opaque byte array.
type Bytes struct {
	Value []byte
}

// Date is a calendar day: days since 1970-01-01 plus the UTC offset in
// minutes the date was recorded in.
type Date struct {
	Days      int32
	OffsetMin int16
}

// Time is a time of day: microseconds since midnight plus the UTC
// offset in minutes.
type Time struct {
	Micros    int64
	OffsetMin int16
}

// Datetime is an instant: microseconds since the Unix epoch plus the
// UTC offset in minutes it was recorded in.
type Datetime struct {
	Micros    int64
	OffsetMin int16
}

// Schedule is an RFC 5545 recurrence text. The codec does not parse it.
type Schedule struct {
	Value string
}

// Point is a WGS84 coordinate with optional altitude.
type Point struct {
	Lon float64
	Lat float64
	Alt *float64
}

// Embedding is a dense vector. len(Data) must equal
// Type.ByteLength(Dims).
type Embedding struct {
	Type EmbeddingType
	Dims uint32
	Data []byte
}

func (Bool) DataType() DataType      { return DataTypeBool }
func (Int64) DataType() DataType     { return DataTypeInt64 }
func (Float64) DataType() DataType   { return DataTypeFloat64 }
func (Decimal) DataType() DataType   { return DataTypeDecimal }
func (Text) DataType() DataType      { return DataTypeText }
func (Bytes) DataType() DataType     { return DataTypeBytes }
func (Date) DataType() DataType      { return DataTypeDate }
func (Time) DataType() DataType      { return DataTypeTime }
func (Datetime) DataType() DataType  { return DataTypeDatetime }
func (Schedule) DataType() DataType  { return DataTypeSchedule }
func (Point) DataType() DataType     { return DataTypePoint }
func (Embedding) DataType() DataType { return DataTypeEmbedding }

func (Bool) isValue()      {}
func (Int64) isValue()     {}
func (Float64) isValue()   {}
func (Decimal) isValue()   {}
func (Text) isValue()      {}
func (Bytes) isValue()     {}
func (Date) isValue()      {}
func (Time) isValue()      {}
func (Datetime) isValue()  {}
func (Schedule) isValue()  {}
func (Point) isValue()     {}
func (Embedding) isValue() {}

// PropertyValue attaches a value to a property.
type PropertyValue struct {
	Property id.ID
	Value    Value
}

// Range limits enforced on encode and decode.
const (
	MaxOffsetMin = 1440
	MinOffsetMin = -1440

	// MaxTimeMicros is the last microsecond of a day.
	MaxTimeMicros = 86_399_999_999
)

// ValidateValue checks the per-type range and normalization rules.
// Errors wrap ErrInvalidValue.
func ValidateValue(v Value) error {
	switch value := v.(type) {
	case Bool, Int64, Text, Bytes, Schedule:
		return nil
	case Float64:
		if math.IsNaN(value.Value) {
			return fmt.Errorf("%w: float64 is NaN", ErrInvalidValue)
		}
		return nil
	case Decimal:
		return validateDecimal(value)
	case Date:
		return validateOffset(value.OffsetMin)
	case Time:
		if value.Micros < 0 || value.Micros > MaxTimeMicros {
			return fmt.Errorf("%w: time %d µs outside [0, %d]", ErrInvalidValue, value.Micros, int64(MaxTimeMicros))
		}
		return validateOffset(value.OffsetMin)
	case Datetime:
		return validateOffset(value.OffsetMin)
	case Point:
		return validatePoint(value)
	case Embedding:
		expected, ok := value.Type.ByteLength(uint64(value.Dims))
		if !ok {
			return fmt.Errorf("%w: unknown embedding type %d", ErrInvalidValue, uint8(value.Type))
		}
		if uint64(len(value.Data)) != expected {
			return fmt.Errorf("%w: %s embedding with %d dims needs %d bytes, got %d",
				ErrInvalidValue, value.Type, value.Dims, expected, len(value.Data))
		}
		return nil
	case nil:
		return fmt.Errorf("%w: nil value", ErrInvalidValue)
	default:
		return fmt.Errorf("%w: unsupported value type %T", ErrInvalidValue, v)
	}
}

func validateOffset(offset int16) error {
	if offset < MinOffsetMin || offset > MaxOffsetMin {
		return fmt.Errorf("%w: offset %d minutes outside [%d, %d]", ErrInvalidValue, offset, MinOffsetMin, MaxOffsetMin)
	}
	return nil
}

func validatePoint(p Point) error {
	if math.IsNaN(p.Lon) || math.IsNaN(p.Lat) || (p.Alt != nil && math.IsNaN(*p.Alt)) {
		return fmt.Errorf("%w: point coordinate is NaN", ErrInvalidValue)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: point longitude %v outside [-180, 180]", ErrInvalidValue, p.Lon)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: point latitude %v outside [-90, 90]", ErrInvalidValue, p.Lat)
	}
	return nil
}

func validateDecimal(d Decimal) error {
	if d.BigMantissa == nil {
		if d.Mantissa == 0 {
			if d.Exponent != 0 {
				return fmt.Errorf("%w: zero decimal must have exponent 0, got %d", ErrInvalidValue, d.Exponent)
			}
			return nil
		}
		if d.Mantissa%10 == 0 {
			return fmt.Errorf("%w: decimal mantissa %d has a trailing zero", ErrInvalidValue, d.Mantissa)
		}
		return nil
	}

	if d.Mantissa != 0 {
		return fmt.Errorf("%w: decimal sets both Mantissa and BigMantissa", ErrInvalidValue)
	}
	mantissa := bigFromTwosComplement(d.BigMantissa)
	if mantissa.IsInt64() {
		return fmt.Errorf("%w: big mantissa %s fits in int64; use Mantissa", ErrInvalidValue, mantissa)
	}
	if !bytes.Equal(d.BigMantissa, BigMantissaBytes(mantissa)) {
		return fmt.Errorf("%w: big mantissa %x is not minimal two's complement", ErrInvalidValue, d.BigMantissa)
	}
	remainder := new(big.Int).Rem(mantissa, big.NewInt(10))
	if remainder.Sign() == 0 {
		return fmt.Errorf("%w: decimal mantissa %s has a trailing zero", ErrInvalidValue, mantissa)
	}
	return nil
}

// bigFromTwosComplement interprets b as a big-endian two's complement
// integer. An empty slice is zero.
func bigFromTwosComplement(b []byte) *big.Int {
	result := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		modulus := new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8)
		result.Sub(result, modulus)
	}
	return result
}

// BigMantissaBytes returns the minimal big-endian two's complement
// encoding of n, suitable for Decimal.BigMantissa.
func BigMantissaBytes(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}
	if n.Sign() > 0 {
		raw := n.Bytes()
		if raw[0]&0x80 != 0 {
			raw = append([]byte{0}, raw...)
		}
		return raw
	}
	// Negative: find the smallest width whose two's complement range
	// covers n, then add 2^(8*width).
	width := (n.BitLen() + 7) / 8
	for {
		lowest := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(width*8-1)))
		if n.Cmp(lowest) >= 0 {
			break
		}
		width++
	}
	modulus := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
	raw := new(big.Int).Add(n, modulus).Bytes()
	for len(raw) < width {
		raw = append([]byte{0xFF}, raw...)
	}
	return raw
}

// BigMantissaValue returns the mantissa of d as a big.Int regardless
// of which form carries it.
func (d Decimal) BigMantissaValue() *big.Int {
	if d.BigMantissa != nil {
		return bigFromTwosComplement(d.BigMantissa)
	}
	return big.NewInt(d.Mantissa)
}
