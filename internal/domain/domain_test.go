package domain

import (
	"encoding/binary"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampString(t *testing.T) {
	assert.Equal(t, "00:00.000", TimestampFromMillis(0).String())
	assert.Equal(t, "01:01.005", TimestampFromMillis(61_005).String())
	assert.Equal(t, "125:00.000", TimestampFromMillis(125*60_000).String())
}

func TestTimestampSubSaturates(t *testing.T) {
	assert.Equal(t, Timestamp(150), Timestamp(250).Sub(100))
	assert.Equal(t, Timestamp(0), Timestamp(100).Sub(250))
	assert.Equal(t, MaxTimestamp, MaxTimestamp.Sub(MinTimestamp))
}

func TestWatermarkDetectsReboot(t *testing.T) {
	var w Watermark
	var reboots int
	for _, ts := range []Timestamp{100, 250, 80} {
		if w.Observe(ts) {
			reboots++
		}
	}
	assert.Equal(t, 1, reboots)
	assert.Equal(t, Timestamp(80), w.Max())

	assert.False(t, w.Observe(80), "equal timestamps are not a reboot")
	assert.False(t, w.Observe(90))

	w.Reset()
	assert.False(t, w.Observe(0))
}

func TestParseMetricName(t *testing.T) {
	n := ParseMetricName("a:b:c")
	assert.Equal(t, []string{"a", "b", "c"}, n.Segments())
	assert.Equal(t, "c", n.Name())
	assert.Equal(t, "a:b:c", n.String())
	assert.Equal(t, NewNamespace("a", NewNamespace("b", NewName("c"))), n)

	ns, inner, ok := n.Namespace()
	require.True(t, ok)
	assert.Equal(t, "a", ns)
	assert.Equal(t, ParseMetricName("b:c"), inner)

	bare := ParseMetricName("speed")
	assert.False(t, bare.IsNamespaced())
	_, _, ok = bare.Namespace()
	assert.False(t, ok)

	empty := ParseMetricName("")
	assert.Equal(t, "", empty.Name())
	assert.Equal(t, NewName(""), empty)
}

func TestMetricNameAsMapKey(t *testing.T) {
	counts := map[MetricName]int{}
	counts[ParseMetricName("ultrasonic:distance")]++
	counts[NewNamespace("ultrasonic", NewName("distance"))]++
	assert.Len(t, counts, 1)
	assert.Equal(t, 2, counts[ParseMetricName("ultrasonic:distance")])
}

func TestMetricNameCompareIsSegmentWise(t *testing.T) {
	names := []MetricName{
		ParseMetricName("a0"),
		ParseMetricName("a:b"),
		ParseMetricName("a"),
		ParseMetricName("a:a"),
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Compare(names[j]) < 0 })

	got := make([]string, 0, len(names))
	for _, n := range names {
		got = append(got, n.String())
	}
	assert.Equal(t, []string{"a", "a:a", "a:b", "a0"}, got)
	assert.Equal(t, 0, ParseMetricName("x:y").Compare(NewNamespace("x", NewName("y"))))
}

func TestScalarTypeBitsWidening(t *testing.T) {
	assert.Equal(t, uint64(0xffff), U16.Bits([]byte{0xff, 0xff}))
	assert.Equal(t, uint64(1<<64-1), I16.Bits([]byte{0xff, 0xff}))
	assert.Equal(t, uint64(1), Bool.Bits([]byte{0x07}))

	for _, typ := range ScalarTypes() {
		buf := typ.AppendLE(nil, 0)
		assert.Len(t, buf, typ.Size(), typ.String())
	}
}

func TestMetricValueScalarAccessors(t *testing.T) {
	u, ok := U32Value(42).AsUnsignedInteger()
	require.True(t, ok)
	assert.Equal(t, uint64(42), u)

	i, ok := I8Value(-3).AsSignedInteger()
	require.True(t, ok)
	assert.Equal(t, int64(-3), i)

	f, ok := F32Value(1.5).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 1.5, f)

	b, ok := BoolValue(true).AsBool()
	require.True(t, ok)
	assert.True(t, b)

	assert.False(t, U8Value(1).IsBool())
	assert.False(t, I64Value(1).IsUnsignedInteger())
	assert.False(t, F64Value(1).IsSignedInteger())
}

func TestMetricValueArraySeq(t *testing.T) {
	var raw []byte
	for _, v := range []int16{-1, 2, -3} {
		raw = binary.LittleEndian.AppendUint16(raw, uint16(v))
	}
	v := ManyValue(I16, raw)
	assert.Equal(t, "[i16]", v.Type())
	assert.Equal(t, 3, v.Len())

	seq, ok := v.SignedIntegerSeq()
	require.True(t, ok)
	assert.Equal(t, []int64{-1, 2, -3}, slices.Collect(seq))

	_, ok = v.UnsignedIntegerSeq()
	assert.False(t, ok)
	_, ok = v.AsSignedInteger()
	assert.False(t, ok, "arrays are not scalars")

	bools, ok := ManyValue(Bool, []byte{0, 1, 9}).BoolSeq()
	require.True(t, ok)
	assert.Equal(t, []bool{false, true, true}, slices.Collect(bools))
}

func TestMetricValueSeqStopsEarly(t *testing.T) {
	v := ManyValue(U8, []byte{1, 2, 3, 4})
	seq, ok := v.UnsignedIntegerSeq()
	require.True(t, ok)

	var seen []uint64
	for x := range seq {
		seen = append(seen, x)
		if x == 2 {
			break
		}
	}
	assert.Equal(t, []uint64{1, 2}, seen)
}

func TestMetricValueFocusable(t *testing.T) {
	assert.True(t, U8Value(1).IsFocusable())
	assert.True(t, BoolValue(false).IsFocusable())
	assert.True(t, F64Value(2).IsFocusable())
	assert.False(t, ManyValue(U8, []byte{1}).IsFocusable())
	assert.False(t, UnknownValue("v3", []byte{1, 2}).IsFocusable())

	f, ok := BoolValue(true).Float64()
	require.True(t, ok)
	assert.Equal(t, 1.0, f)
	_, ok = UnknownValue("x", nil).Float64()
	assert.False(t, ok)
}

func TestMetricValueFormatting(t *testing.T) {
	assert.Equal(t, "42", U32Value(42).String())
	assert.Equal(t, "-7", I32Value(-7).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "0.1", F32Value(0.1).String())
	assert.Equal(t, "[1, 2]", ManyValue(U8, []byte{1, 2}).String())
	assert.Equal(t, "[\n    1,\n    2,\n]", ManyValue(U8, []byte{1, 2}).Pretty())
	assert.Equal(t, "[]", ManyValue(U8, nil).Pretty())

	unk := UnknownValue("v3", []byte{9})
	assert.Equal(t, "v3", unk.Type())
	assert.Equal(t, "[9]", unk.String())
}

func TestMetricValueDoesNotAliasInput(t *testing.T) {
	raw := []byte{1, 2}
	v := ManyValue(U8, raw)
	raw[0] = 99
	assert.True(t, v.Equal(ManyValue(U8, []byte{1, 2})))
}

func TestMetricValueEqual(t *testing.T) {
	assert.True(t, U8Value(3).Equal(U8Value(3)))
	assert.False(t, U8Value(3).Equal(U16Value(3)))
	assert.False(t, UnknownValue("a", nil).Equal(UnknownValue("b", nil)))
	assert.True(t, UnknownValue("a", []byte{}).Equal(UnknownValue("a", nil)))
}

func TestParseRobotCommand(t *testing.T) {
	c, err := ParseRobotCommand("Calibrate-Ambient-Infrared")
	require.NoError(t, err)
	assert.Equal(t, CalibrateAmbientInfrared, c)
	assert.Equal(t, byte(0x01), CalibrateReferenceInfrared.Byte())

	_, err = ParseRobotCommand("launch")
	assert.Error(t, err)
}

func TestWorkerStateString(t *testing.T) {
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "detached", StateDetached.String())
}
