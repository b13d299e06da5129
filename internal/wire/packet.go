// Package wire turns the serial byte stream into metrics: FrameReader
// recovers delimited frames and ParsePacket splits a frame into timestamp,
// name, type tag and value.
//
// Packet layout (all integers little-endian):
//
//	[timestamp u32][name][0x00][type tag][0x00][value][declared length u16]
//
// The declared length counts every byte before it plus its own two bytes.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aeroteameindhoven/kestrel/internal/codec"
	"github.com/aeroteameindhoven/kestrel/internal/domain"
)

const (
	lengthSize    = 2
	timestampSize = 4
)

// ErrPacketTooLarge is returned when a metric does not fit the u16 length field.
var ErrPacketTooLarge = errors.New("packet exceeds u16 length field")

// BadPacketLengthError reports a declared length that disagrees with the
// frame. Expected is -1 when the frame cannot even hold the length field.
type BadPacketLengthError struct {
	Expected int
	Got      int
}

func (e *BadPacketLengthError) Error() string {
	if e.Expected < 0 {
		return fmt.Sprintf("bad packet length: frame of %d bytes has no length field", e.Got)
	}
	return fmt.Sprintf("bad packet length: expected %d, got %d", e.Expected, e.Got)
}

// Section identifies a part of the packet body.
type Section int

const (
	SectionTimestamp Section = iota - 1
	SectionName
	SectionType
	SectionValue
)

func (s Section) String() string {
	switch s {
	case SectionTimestamp:
		return "timestamp"
	case SectionName:
		return "name"
	case SectionType:
		return "type"
	case SectionValue:
		return "value"
	default:
		return fmt.Sprintf("section(%d)", int(s))
	}
}

// PoorLayoutError reports a body that is missing a section. Packet holds a
// copy of the offending bytes.
type PoorLayoutError struct {
	Section Section
	Packet  []byte
}

func (e *PoorLayoutError) Error() string {
	return fmt.Sprintf("poor packet layout: missing %s section (index %d)", e.Section, int(e.Section))
}

// ValueError wraps a value decode failure with the metric it belongs to.
type ValueError struct {
	Name domain.MetricName
	Tag  string
	Err  error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("decode value of %s as %q: %v", e.Name, e.Tag, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }

// ParsePacket decodes one unstuffed frame. It does not retain frame.
func ParsePacket(frame []byte) (domain.Metric, error) {
	if len(frame) < lengthSize {
		return domain.Metric{}, &BadPacketLengthError{Expected: -1, Got: len(frame)}
	}
	body := frame[:len(frame)-lengthSize]
	declared := int(binary.LittleEndian.Uint16(frame[len(frame)-lengthSize:]))
	expected := max(declared-lengthSize, 0)
	if expected != len(body) {
		return domain.Metric{}, &BadPacketLengthError{Expected: expected, Got: len(body)}
	}

	if len(body) < timestampSize {
		return domain.Metric{}, &PoorLayoutError{Section: SectionTimestamp, Packet: bytes.Clone(body)}
	}
	ts := domain.TimestampFromMillis(binary.LittleEndian.Uint32(body))
	payload := body[timestampSize:]

	sections := bytes.SplitN(payload, []byte{0}, 3)
	if len(sections) < 3 {
		return domain.Metric{}, &PoorLayoutError{Section: Section(len(sections)), Packet: bytes.Clone(payload)}
	}

	name := domain.ParseMetricName(lossyString(sections[0]))
	tag := lossyString(sections[1])
	value, err := codec.Decode(tag, sections[2])
	if err != nil {
		return domain.Metric{}, &ValueError{Name: name, Tag: tag, Err: err}
	}
	return domain.Metric{Timestamp: ts, Name: name, Value: value}, nil
}

func lossyString(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// AppendPacket appends the unstuffed packet encoding of m to dst.
func AppendPacket(dst []byte, m domain.Metric) ([]byte, error) {
	tag, raw := codec.Encode(m.Value)
	name := m.Name.String()
	size := timestampSize + len(name) + 1 + len(tag) + 1 + len(raw) + lengthSize
	if size > math.MaxUint16 {
		return dst, ErrPacketTooLarge
	}
	dst = binary.LittleEndian.AppendUint32(dst, m.Timestamp.Millis())
	dst = append(dst, name...)
	dst = append(dst, 0)
	dst = append(dst, tag...)
	dst = append(dst, 0)
	dst = append(dst, raw...)
	return binary.LittleEndian.AppendUint16(dst, uint16(size)), nil
}

// AppendMetricFrame appends m as a complete wire frame, delimiter included.
func AppendMetricFrame(dst []byte, m domain.Metric) ([]byte, error) {
	pkt, err := AppendPacket(nil, m)
	if err != nil {
		return dst, err
	}
	return EncodeFrame(dst, pkt), nil
}
