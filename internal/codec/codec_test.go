package codec

import (
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeroteameindhoven/kestrel/internal/domain"
)

func TestDecodeScalars(t *testing.T) {
	cases := []struct {
		tag  string
		raw  []byte
		want domain.MetricValue
	}{
		{"u8", []byte{0xfe}, domain.U8Value(254)},
		{"u16", []byte{0x34, 0x12}, domain.U16Value(0x1234)},
		{"u32", []byte{42, 0, 0, 0}, domain.U32Value(42)},
		{"u64", binary.LittleEndian.AppendUint64(nil, math.MaxUint64), domain.U64Value(math.MaxUint64)},
		{"i8", []byte{0xff}, domain.I8Value(-1)},
		{"i16", []byte{0x00, 0x80}, domain.I16Value(math.MinInt16)},
		{"i32", binary.LittleEndian.AppendUint32(nil, uint32(0xfffffff6)), domain.I32Value(-10)},
		{"i64", binary.LittleEndian.AppendUint64(nil, 5), domain.I64Value(5)},
		{"bool", []byte{0x02}, domain.BoolValue(true)},
		{"bool", []byte{0x00}, domain.BoolValue(false)},
		{"f32", binary.LittleEndian.AppendUint32(nil, math.Float32bits(2.5)), domain.F32Value(2.5)},
		{"f64", binary.LittleEndian.AppendUint64(nil, math.Float64bits(-0.25)), domain.F64Value(-0.25)},
	}
	for _, tc := range cases {
		t.Run(tc.tag, func(t *testing.T) {
			got, err := Decode(tc.tag, tc.raw)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
		})
	}
}

func TestDecodeScalarLengthMismatch(t *testing.T) {
	for _, typ := range domain.ScalarTypes() {
		raw := make([]byte, typ.Size()+1)
		_, err := Decode(typ.String(), raw)

		var lerr *LengthError
		require.ErrorAs(t, err, &lerr, typ.String())
		assert.Equal(t, typ.Size(), lerr.Expected)
		assert.Equal(t, typ.Size()+1, lerr.Got)
	}
}

func TestDecodeArray(t *testing.T) {
	var raw []byte
	for _, v := range []uint32{1, 2, 3} {
		raw = binary.LittleEndian.AppendUint32(raw, v)
	}
	v, err := Decode("[u32]", raw)
	require.NoError(t, err)
	assert.Equal(t, domain.KindMany, v.Kind())

	seq, ok := v.UnsignedIntegerSeq()
	require.True(t, ok)
	assert.Equal(t, []uint64{1, 2, 3}, slices.Collect(seq))

	empty, err := Decode("[f64]", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestDecodeArrayTrailingChunk(t *testing.T) {
	_, err := Decode("[u32]", make([]byte, 10))

	var lerr *LengthError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, &LengthError{Expected: 4, Got: 2}, lerr)
}

func TestDecodeUnknownTagNeverFails(t *testing.T) {
	for _, tag := range []string{"v3", "", "[u33]", "U8", "[u8"} {
		v, err := Decode(tag, []byte{1, 2, 3})
		require.NoError(t, err, tag)
		assert.Equal(t, domain.KindUnknown, v.Kind())
		assert.Equal(t, tag, v.Type())
		assert.Equal(t, []byte{1, 2, 3}, v.Raw())
		assert.False(t, v.IsFocusable())
	}
}

func TestDecodeDoesNotAlias(t *testing.T) {
	raw := []byte{1, 2}
	v, err := Decode("[u8]", raw)
	require.NoError(t, err)
	raw[0] = 0
	assert.Equal(t, []byte{1, 2}, v.Raw())
}

func TestEncodeRoundTrip(t *testing.T) {
	values := []domain.MetricValue{
		domain.U8Value(7),
		domain.I16Value(-300),
		domain.I64Value(math.MinInt64),
		domain.F32Value(3.25),
		domain.BoolValue(true),
		domain.ManyValue(domain.U16, []byte{1, 0, 2, 0}),
		domain.UnknownValue("blob", []byte{0xde, 0xad}),
	}
	for _, v := range values {
		tag, raw := Encode(v)
		got, err := Decode(tag, raw)
		require.NoError(t, err, tag)
		assert.True(t, v.Equal(got), "%s: got %s want %s", tag, got, v)
	}
}

// patternBytes returns n bytes of a recognisable pattern that is also a
// canonical encoding for every scalar type, bools included.
func patternBytes(typ domain.ScalarType, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		if typ.IsBool() {
			out[i] = byte(i % 2)
		} else {
			out[i] = byte(0x81 + i*7)
		}
	}
	return out
}

func TestRoundTripEveryTag(t *testing.T) {
	for _, typ := range domain.ScalarTypes() {
		scalar := typ.String()
		array := "[" + scalar + "]"

		t.Run(scalar, func(t *testing.T) {
			raw := patternBytes(typ, typ.Size())
			if typ.IsBool() {
				raw = []byte{1}
			}
			v, err := Decode(scalar, raw)
			require.NoError(t, err)
			assert.Equal(t, domain.KindOne, v.Kind())
			assert.Equal(t, typ, v.ScalarType())

			tag, back := Encode(v)
			assert.Equal(t, scalar, tag)
			assert.Equal(t, raw, back)

			again, err := Decode(tag, back)
			require.NoError(t, err)
			assert.True(t, v.Equal(again), "got %s want %s", again, v)
		})

		t.Run(array, func(t *testing.T) {
			raw := patternBytes(typ, 3*typ.Size())
			v, err := Decode(array, raw)
			require.NoError(t, err)
			assert.Equal(t, domain.KindMany, v.Kind())
			assert.Equal(t, 3, v.Len())

			tag, back := Encode(v)
			assert.Equal(t, array, tag)
			assert.Equal(t, raw, back)

			again, err := Decode(tag, back)
			require.NoError(t, err)
			assert.True(t, v.Equal(again), "got %s want %s", again, v)
		})
	}
}

func TestArrayLengthMustDivideElementSize(t *testing.T) {
	for _, typ := range domain.ScalarTypes() {
		size := typ.Size()
		tag := "[" + typ.String() + "]"
		lengths := []int{0, size - 1, size, size + 1, 3 * size}
		for _, n := range slices.Compact(lengths) {
			v, err := Decode(tag, patternBytes(typ, n))
			if n%size == 0 {
				require.NoError(t, err, "%s len %d", tag, n)
				assert.Equal(t, n/size, v.Len(), "%s len %d", tag, n)
				continue
			}
			var lerr *LengthError
			require.ErrorAs(t, err, &lerr, "%s len %d", tag, n)
			assert.Equal(t, size, lerr.Expected)
			assert.Equal(t, n%size, lerr.Got)
		}
	}
}

func TestKnownTag(t *testing.T) {
	assert.True(t, KnownTag("bool"))
	assert.True(t, KnownTag("[bool]"))
	assert.False(t, KnownTag("v3"))
}
