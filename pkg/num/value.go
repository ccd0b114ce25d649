// Package num implements the typed values the scanner decodes from memory
// and the constraints it evaluates against them.
package num

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	e "smug/error"
)

// Kind is one of the ten numeric representations.
type Kind uint8

const (
	F32 Kind = iota
	F64
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
)

var kindInfo = [...]struct {
	code  byte
	name  string
	width int
}{
	F32: {'f', "f32", 4},
	F64: {'F', "f64", 8},
	U8:  {'b', "u8", 1},
	U16: {'w', "u16", 2},
	U32: {'d', "u32", 4},
	U64: {'q', "u64", 8},
	I8:  {'B', "i8", 1},
	I16: {'W', "i16", 2},
	I32: {'D', "i32", 4},
	I64: {'Q', "i64", 8},
}

// floatDisplayWidth is the padded width of a formatted float.
const floatDisplayWidth = 25

func (k Kind) String() string {
	return kindInfo[k].name
}

// Code returns the single character type code of k.
func (k Kind) Code() byte {
	return kindInfo[k].code
}

func (k Kind) IsFloat() bool {
	return k == F32 || k == F64
}

func (k Kind) IsSigned() bool {
	return k >= I8 && k <= I64
}

// TypeCodes lists every valid type code.
const TypeCodes = "bwdqBWDQfF"

// Value is a number of a given Kind. The zero Value is an f32 zero.
//
// The raw little-endian bits are kept in a uint64 so that a Value can be
// decoded in place, chunk after chunk, without allocating.
type Value struct {
	kind Kind
	bits uint64
}

// FromTypeCode returns a zero value of the kind named by code.
func FromTypeCode(code byte) (Value, error) {
	for k, info := range kindInfo {
		if info.code == code {
			return Value{kind: Kind(k)}, nil
		}
	}
	return Value{}, e.Arg("type", string(code), e.UnknownType)
}

// FromBits returns a value of kind k with raw bits b, truncated to its
// width.
func FromBits(k Kind, b uint64) Value {
	return Value{kind: k, bits: b & mask(kindInfo[k].width)}
}

// FromUint64 returns u truncated to kind k. Float kinds convert the number.
func FromUint64(k Kind, u uint64) Value {
	if k.IsFloat() {
		return FromFloat64(k, float64(u))
	}
	return FromBits(k, u)
}

// FromInt64 returns i truncated to kind k. Float kinds convert the number.
func FromInt64(k Kind, i int64) Value {
	if k.IsFloat() {
		return FromFloat64(k, float64(i))
	}
	return FromBits(k, uint64(i))
}

// FromFloat64 returns f as a value of float kind k. Integer kinds truncate
// towards zero.
func FromFloat64(k Kind, f float64) Value {
	switch k {
	case F32:
		return Value{kind: k, bits: uint64(math.Float32bits(float32(f)))}
	case F64:
		return Value{kind: k, bits: math.Float64bits(f)}
	}
	if k.IsSigned() {
		return FromBits(k, uint64(int64(f)))
	}
	return FromBits(k, uint64(f))
}

func mask(width int) uint64 {
	if width >= 8 {
		return math.MaxUint64
	}
	return 1<<(8*uint(width)) - 1
}

func (v Value) Kind() Kind {
	return v.kind
}

// ByteWidth is the number of bytes the value occupies in memory.
func (v Value) ByteWidth() int {
	return kindInfo[v.kind].width
}

// DisplayWidth is the length of Display's output.
func (v Value) DisplayWidth() int {
	if v.kind.IsFloat() {
		return floatDisplayWidth
	}
	return 2 * v.ByteWidth()
}

// Bits returns the raw little-endian bits of the value.
func (v Value) Bits() uint64 {
	return v.bits
}

// Decode sets v from little-endian bytes in place. It returns false, and
// leaves v alone, if len(b) isn't the byte width of v.
func (v *Value) Decode(b []byte) bool {
	if len(b) != v.ByteWidth() {
		return false
	}
	switch len(b) {
	case 1:
		v.bits = uint64(b[0])
	case 2:
		v.bits = uint64(binary.LittleEndian.Uint16(b))
	case 4:
		v.bits = uint64(binary.LittleEndian.Uint32(b))
	case 8:
		v.bits = binary.LittleEndian.Uint64(b)
	}
	return true
}

// AppendLE appends the little-endian encoding of v to b.
func (v Value) AppendLE(b []byte) []byte {
	switch v.ByteWidth() {
	case 1:
		return append(b, byte(v.bits))
	case 2:
		return binary.LittleEndian.AppendUint16(b, uint16(v.bits))
	case 4:
		return binary.LittleEndian.AppendUint32(b, uint32(v.bits))
	default:
		return binary.LittleEndian.AppendUint64(b, v.bits)
	}
}

// Uint returns the value of an unsigned kind.
func (v Value) Uint() uint64 {
	return v.bits
}

// Int returns the sign-extended value of a signed kind.
func (v Value) Int() int64 {
	switch v.kind {
	case I8, U8:
		return int64(int8(v.bits))
	case I16, U16:
		return int64(int16(v.bits))
	case I32, U32:
		return int64(int32(v.bits))
	default:
		return int64(v.bits)
	}
}

// Float returns the value of a float kind.
func (v Value) Float() float64 {
	switch v.kind {
	case F32:
		return float64(math.Float32frombits(uint32(v.bits)))
	case F64:
		return math.Float64frombits(v.bits)
	}
	if v.kind.IsSigned() {
		return float64(v.Int())
	}
	return float64(v.bits)
}

// AsU64 reinterprets the value as a 64 bit integer, the way a pointer held
// in it would be read. Signed kinds are sign-extended, floats give their
// bit pattern.
func (v Value) AsU64() uint64 {
	if v.kind.IsSigned() {
		return uint64(v.Int())
	}
	return v.bits
}

// Display formats v in DisplayWidth characters: zero-padded hex for
// integers, 6 decimals for floats.
func (v Value) Display() string {
	if v.kind.IsFloat() {
		return fmt.Sprintf("%*.6f", floatDisplayWidth, v.Float())
	}
	return fmt.Sprintf("%0*x", v.DisplayWidth(), v.bits)
}

func (v Value) String() string {
	switch {
	case v.kind.IsFloat():
		return fmt.Sprintf("%g", v.Float())
	case v.kind.IsSigned():
		return fmt.Sprintf("%d", v.Int())
	}
	return fmt.Sprintf("%d", v.bits)
}

// Placeholder is what Display shows for a trailing chunk too short to
// decode.
func (v Value) Placeholder() string {
	return strings.Repeat("?", v.DisplayWidth())
}

// Equal reports numeric equality. NaN is never equal.
func (v Value) Equal(o Value) bool {
	if v.kind.IsFloat() {
		return v.Float() == o.Float()
	}
	return v.bits == o.bits
}

// Less reports whether v < o, comparing in the domain of v's kind.
func (v Value) Less(o Value) bool {
	switch {
	case v.kind.IsFloat():
		return v.Float() < o.Float()
	case v.kind.IsSigned():
		return v.Int() < o.Int()
	}
	return v.bits < o.bits
}

// Add returns v+d, wrapping at the width of integer kinds.
func (v Value) Add(d Value) Value {
	if v.kind.IsFloat() {
		return FromFloat64(v.kind, v.Float()+d.Float())
	}
	return FromBits(v.kind, v.bits+d.bits)
}

// Sub returns v-d, wrapping at the width of integer kinds.
func (v Value) Sub(d Value) Value {
	if v.kind.IsFloat() {
		return FromFloat64(v.kind, v.Float()-d.Float())
	}
	return FromBits(v.kind, v.bits-d.bits)
}
