package domain

import "encoding/binary"

// ScalarType enumerates the primitive types a device can report.
type ScalarType uint8

const (
	U8 ScalarType = iota + 1
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	Bool
	F32
	F64
)

var scalarTypeNames = [...]string{
	U8:   "u8",
	U16:  "u16",
	U32:  "u32",
	U64:  "u64",
	I8:   "i8",
	I16:  "i16",
	I32:  "i32",
	I64:  "i64",
	Bool: "bool",
	F32:  "f32",
	F64:  "f64",
}

var scalarTypeSizes = [...]int{
	U8:   1,
	U16:  2,
	U32:  4,
	U64:  8,
	I8:   1,
	I16:  2,
	I32:  4,
	I64:  8,
	Bool: 1,
	F32:  4,
	F64:  8,
}

// ScalarTypes lists every known scalar type in wire-tag order.
func ScalarTypes() []ScalarType {
	return []ScalarType{U8, U16, U32, U64, I8, I16, I32, I64, Bool, F32, F64}
}

// Valid reports whether t is one of the known scalar types.
func (t ScalarType) Valid() bool {
	return t >= U8 && t <= F64
}

// String returns the wire tag of t, e.g. "u32".
func (t ScalarType) String() string {
	if !t.Valid() {
		return "invalid"
	}
	return scalarTypeNames[t]
}

// Size is the encoded width of one element in bytes.
func (t ScalarType) Size() int {
	if !t.Valid() {
		return 0
	}
	return scalarTypeSizes[t]
}

func (t ScalarType) IsUnsigned() bool { return t >= U8 && t <= U64 }
func (t ScalarType) IsSigned() bool   { return t >= I8 && t <= I64 }
func (t ScalarType) IsFloat() bool    { return t == F32 || t == F64 }
func (t ScalarType) IsBool() bool     { return t == Bool }

// Bits decodes one little-endian element into its widened 64-bit form:
// unsigned values are zero-extended, signed values sign-extended, bools are
// 0 or 1 (any nonzero byte is true) and floats keep their IEEE-754 bits.
// le must be exactly t.Size() bytes long.
func (t ScalarType) Bits(le []byte) uint64 {
	switch t {
	case U8:
		return uint64(le[0])
	case U16:
		return uint64(binary.LittleEndian.Uint16(le))
	case U32, F32:
		return uint64(binary.LittleEndian.Uint32(le))
	case U64, F64:
		return binary.LittleEndian.Uint64(le)
	case I8:
		return uint64(int64(int8(le[0])))
	case I16:
		return uint64(int64(int16(binary.LittleEndian.Uint16(le))))
	case I32:
		return uint64(int64(int32(binary.LittleEndian.Uint32(le))))
	case I64:
		return binary.LittleEndian.Uint64(le)
	case Bool:
		if le[0] != 0 {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AppendLE appends the little-endian encoding of bits (as produced by Bits)
// truncated to the width of t.
func (t ScalarType) AppendLE(dst []byte, bits uint64) []byte {
	switch t.Size() {
	case 1:
		return append(dst, byte(bits))
	case 2:
		return binary.LittleEndian.AppendUint16(dst, uint16(bits))
	case 4:
		return binary.LittleEndian.AppendUint32(dst, uint32(bits))
	case 8:
		return binary.LittleEndian.AppendUint64(dst, bits)
	default:
		return dst
	}
}
