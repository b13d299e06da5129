package domain

import (
	"bytes"
	"iter"
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates the MetricValue union.
type ValueKind uint8

const (
	KindOne ValueKind = iota + 1
	KindMany
	KindUnknown
)

func (k ValueKind) String() string {
	switch k {
	case KindOne:
		return "one"
	case KindMany:
		return "many"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// MetricValue is a decoded telemetry value: a single scalar, a homogeneous
// array of scalars, or an unrecognised tag with its raw bytes.
//
// Scalars are stored widened to 64 bits (see ScalarType.Bits). Arrays keep
// their little-endian encoding and decode elements lazily.
type MetricValue struct {
	kind ValueKind
	typ  ScalarType
	bits uint64
	raw  []byte
	tag  string
}

// OneValue builds a scalar from its widened bits.
func OneValue(typ ScalarType, bits uint64) MetricValue {
	return MetricValue{kind: KindOne, typ: typ, bits: bits}
}

func U8Value(v uint8) MetricValue    { return OneValue(U8, uint64(v)) }
func U16Value(v uint16) MetricValue  { return OneValue(U16, uint64(v)) }
func U32Value(v uint32) MetricValue  { return OneValue(U32, uint64(v)) }
func U64Value(v uint64) MetricValue  { return OneValue(U64, v) }
func I8Value(v int8) MetricValue     { return OneValue(I8, uint64(int64(v))) }
func I16Value(v int16) MetricValue   { return OneValue(I16, uint64(int64(v))) }
func I32Value(v int32) MetricValue   { return OneValue(I32, uint64(int64(v))) }
func I64Value(v int64) MetricValue   { return OneValue(I64, uint64(v)) }
func F32Value(v float32) MetricValue { return OneValue(F32, uint64(math.Float32bits(v))) }
func F64Value(v float64) MetricValue { return OneValue(F64, math.Float64bits(v)) }

func BoolValue(v bool) MetricValue {
	if v {
		return OneValue(Bool, 1)
	}
	return OneValue(Bool, 0)
}

// ManyValue builds an array from its little-endian encoding. len(le) must be
// a multiple of typ.Size(); the bytes are copied.
func ManyValue(typ ScalarType, le []byte) MetricValue {
	return MetricValue{kind: KindMany, typ: typ, raw: bytes.Clone(le)}
}

// UnknownValue preserves an unrecognised tag and its bytes verbatim.
func UnknownValue(tag string, raw []byte) MetricValue {
	return MetricValue{kind: KindUnknown, tag: tag, raw: bytes.Clone(raw)}
}

func (v MetricValue) Kind() ValueKind { return v.kind }

// ScalarType returns the scalar or element type. It is zero for Unknown.
func (v MetricValue) ScalarType() ScalarType { return v.typ }

// Bits returns the widened scalar bits of a One value.
func (v MetricValue) Bits() uint64 { return v.bits }

// Raw returns the little-endian array bytes of a Many value or the verbatim
// bytes of an Unknown value. The slice must not be modified.
func (v MetricValue) Raw() []byte { return v.raw }

// Len returns the number of array elements, 1 for a scalar and the byte
// count for an Unknown value.
func (v MetricValue) Len() int {
	switch v.kind {
	case KindOne:
		return 1
	case KindMany:
		if n := v.typ.Size(); n > 0 {
			return len(v.raw) / n
		}
		return 0
	default:
		return len(v.raw)
	}
}

// Type returns the wire tag: "u32" for scalars, "[u32]" for arrays and the
// received tag for Unknown values.
func (v MetricValue) Type() string {
	switch v.kind {
	case KindOne:
		return v.typ.String()
	case KindMany:
		return "[" + v.typ.String() + "]"
	default:
		return v.tag
	}
}

// Equal reports structural equality.
func (v MetricValue) Equal(o MetricValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindOne:
		return v.typ == o.typ && v.bits == o.bits
	case KindMany:
		return v.typ == o.typ && bytes.Equal(v.raw, o.raw)
	case KindUnknown:
		return v.tag == o.tag && bytes.Equal(v.raw, o.raw)
	default:
		return true
	}
}

func (v MetricValue) AsBool() (bool, bool) {
	if v.kind != KindOne || v.typ != Bool {
		return false, false
	}
	return v.bits != 0, true
}

func (v MetricValue) IsBool() bool { _, ok := v.AsBool(); return ok }

// AsUnsignedInteger widens any unsigned scalar to uint64.
func (v MetricValue) AsUnsignedInteger() (uint64, bool) {
	if v.kind != KindOne || !v.typ.IsUnsigned() {
		return 0, false
	}
	return v.bits, true
}

func (v MetricValue) IsUnsignedInteger() bool { _, ok := v.AsUnsignedInteger(); return ok }

// AsSignedInteger widens any signed scalar to int64.
func (v MetricValue) AsSignedInteger() (int64, bool) {
	if v.kind != KindOne || !v.typ.IsSigned() {
		return 0, false
	}
	return int64(v.bits), true
}

func (v MetricValue) IsSignedInteger() bool { _, ok := v.AsSignedInteger(); return ok }

// AsFloat widens f32 and f64 scalars to float64.
func (v MetricValue) AsFloat() (float64, bool) {
	if v.kind != KindOne || !v.typ.IsFloat() {
		return 0, false
	}
	return bitsToFloat(v.typ, v.bits), true
}

func (v MetricValue) IsFloat() bool { _, ok := v.AsFloat(); return ok }

func bitsToFloat(typ ScalarType, bits uint64) float64 {
	if typ == F32 {
		return float64(math.Float32frombits(uint32(bits)))
	}
	return math.Float64frombits(bits)
}

// elements yields the widened bits of each array element.
func (v MetricValue) elements() iter.Seq[uint64] {
	size := v.typ.Size()
	raw := v.raw
	return func(yield func(uint64) bool) {
		if size == 0 {
			return
		}
		for off := 0; off+size <= len(raw); off += size {
			if !yield(v.typ.Bits(raw[off : off+size])) {
				return
			}
		}
	}
}

// BoolSeq lazily iterates a bool array.
func (v MetricValue) BoolSeq() (iter.Seq[bool], bool) {
	if v.kind != KindMany || v.typ != Bool {
		return nil, false
	}
	elems := v.elements()
	return func(yield func(bool) bool) {
		for b := range elems {
			if !yield(b != 0) {
				return
			}
		}
	}, true
}

// UnsignedIntegerSeq lazily iterates an unsigned array widened to uint64.
func (v MetricValue) UnsignedIntegerSeq() (iter.Seq[uint64], bool) {
	if v.kind != KindMany || !v.typ.IsUnsigned() {
		return nil, false
	}
	return v.elements(), true
}

// SignedIntegerSeq lazily iterates a signed array widened to int64.
func (v MetricValue) SignedIntegerSeq() (iter.Seq[int64], bool) {
	if v.kind != KindMany || !v.typ.IsSigned() {
		return nil, false
	}
	elems := v.elements()
	return func(yield func(int64) bool) {
		for b := range elems {
			if !yield(int64(b)) {
				return
			}
		}
	}, true
}

// FloatSeq lazily iterates an f32 or f64 array widened to float64.
func (v MetricValue) FloatSeq() (iter.Seq[float64], bool) {
	if v.kind != KindMany || !v.typ.IsFloat() {
		return nil, false
	}
	elems, typ := v.elements(), v.typ
	return func(yield func(float64) bool) {
		for b := range elems {
			if !yield(bitsToFloat(typ, b)) {
				return
			}
		}
	}, true
}

// IsFocusable reports whether the value is a scalar that can be plotted.
func (v MetricValue) IsFocusable() bool {
	return v.IsFloat() || v.IsSignedInteger() || v.IsUnsignedInteger() || v.IsBool()
}

// Float64 projects a focusable value onto the real line. Bools map to 0/1.
// ok is false for arrays and unknown values.
func (v MetricValue) Float64() (float64, bool) {
	if f, ok := v.AsFloat(); ok {
		return f, true
	}
	if u, ok := v.AsUnsignedInteger(); ok {
		return float64(u), true
	}
	if i, ok := v.AsSignedInteger(); ok {
		return float64(i), true
	}
	if b, ok := v.AsBool(); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func formatScalar(typ ScalarType, bits uint64) string {
	switch {
	case typ.IsUnsigned():
		return strconv.FormatUint(bits, 10)
	case typ.IsSigned():
		return strconv.FormatInt(int64(bits), 10)
	case typ == Bool:
		return strconv.FormatBool(bits != 0)
	case typ == F32:
		return strconv.FormatFloat(bitsToFloat(typ, bits), 'g', -1, 32)
	case typ == F64:
		return strconv.FormatFloat(bitsToFloat(typ, bits), 'g', -1, 64)
	default:
		return "?"
	}
}

func (v MetricValue) items() []string {
	var out []string
	switch v.kind {
	case KindMany:
		for b := range v.elements() {
			out = append(out, formatScalar(v.typ, b))
		}
	case KindUnknown:
		for _, b := range v.raw {
			out = append(out, strconv.Itoa(int(b)))
		}
	}
	return out
}

// String renders scalars plainly and arrays or unknown bytes on one line,
// e.g. "[1, 2, 3]".
func (v MetricValue) String() string {
	if v.kind == KindOne {
		return formatScalar(v.typ, v.bits)
	}
	return "[" + strings.Join(v.items(), ", ") + "]"
}

// Pretty is like String but puts one array element per line.
func (v MetricValue) Pretty() string {
	if v.kind == KindOne {
		return v.String()
	}
	items := v.items()
	if len(items) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteString("[\n")
	for _, it := range items {
		sb.WriteString("    ")
		sb.WriteString(it)
		sb.WriteString(",\n")
	}
	sb.WriteString("]")
	return sb.String()
}
