// Package codec decodes and encodes the typed value section of a telemetry
// packet. Scalar tags are the names of the primitive types ("u8" ... "f64",
// "bool"); a bracketed tag ("[u16]") denotes an array of that type. All
// values are little-endian.
package codec

import (
	"fmt"

	"github.com/aeroteameindhoven/kestrel/internal/domain"
)

// LengthError reports a value section whose length does not fit its tag.
// For arrays Expected is the element width and Got the length of the
// trailing partial chunk.
type LengthError struct {
	Expected int
	Got      int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("value length mismatch: expected %d bytes, got %d", e.Expected, e.Got)
}

type decodeFunc func(raw []byte) (domain.MetricValue, error)

var decoders = buildDecoders()

func buildDecoders() map[string]decodeFunc {
	m := make(map[string]decodeFunc, 2*len(domain.ScalarTypes()))
	for _, typ := range domain.ScalarTypes() {
		m[typ.String()] = scalarDecoder(typ)
		m["["+typ.String()+"]"] = arrayDecoder(typ)
	}
	return m
}

func scalarDecoder(typ domain.ScalarType) decodeFunc {
	size := typ.Size()
	return func(raw []byte) (domain.MetricValue, error) {
		if len(raw) != size {
			return domain.MetricValue{}, &LengthError{Expected: size, Got: len(raw)}
		}
		return domain.OneValue(typ, typ.Bits(raw)), nil
	}
}

func arrayDecoder(typ domain.ScalarType) decodeFunc {
	size := typ.Size()
	return func(raw []byte) (domain.MetricValue, error) {
		if rem := len(raw) % size; rem != 0 {
			return domain.MetricValue{}, &LengthError{Expected: size, Got: rem}
		}
		return domain.ManyValue(typ, raw), nil
	}
}

// Decode interprets raw according to tag. Unknown tags never fail: the tag
// and bytes are kept verbatim. The returned value does not alias raw.
func Decode(tag string, raw []byte) (domain.MetricValue, error) {
	if dec, ok := decoders[tag]; ok {
		return dec(raw)
	}
	return domain.UnknownValue(tag, raw), nil
}

// KnownTag reports whether tag has a dedicated decoder.
func KnownTag(tag string) bool {
	_, ok := decoders[tag]
	return ok
}

// Encode is the inverse of Decode.
func Encode(v domain.MetricValue) (tag string, raw []byte) {
	switch v.Kind() {
	case domain.KindOne:
		return v.Type(), v.ScalarType().AppendLE(nil, v.Bits())
	default:
		return v.Type(), append([]byte(nil), v.Raw()...)
	}
}
