package wire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/aeroteameindhoven/kestrel/internal/wire/cobs"
)

// Delimiter terminates every frame on the wire.
const Delimiter byte = 0x00

// DefaultMaxFrameSize bounds the bytes buffered while waiting for a delimiter.
const DefaultMaxFrameSize = 70_000

// ErrFrameTooLong is returned once per run of bytes that exceeded the frame
// size bound before a delimiter arrived. The run is discarded.
var ErrFrameTooLong = errors.New("frame exceeds maximum size")

// MalformedFramingError reports a frame whose stuffing could not be undone.
type MalformedFramingError struct {
	Raw []byte
}

func (e *MalformedFramingError) Error() string {
	return fmt.Sprintf("malformed framing (%d raw bytes)", len(e.Raw))
}

func (e *MalformedFramingError) Unwrap() error { return cobs.ErrMalformed }

// FrameReader splits a byte stream into delimiter-terminated frames and
// unstuffs them in place.
//
// Bytes of a frame that is still in flight survive reader errors, so a read
// timeout in the middle of a frame does not split it. Call Reset when the
// underlying stream is replaced.
type FrameReader struct {
	br      *bufio.Reader
	scratch []byte
	max     int

	// done marks scratch as holding a frame already handed out.
	done bool
	// overflow is set while skipping to the next delimiter after the bound
	// was exceeded.
	overflow bool
}

// NewFrameReader reads frames from r. maxFrameSize <= 0 selects
// DefaultMaxFrameSize.
func NewFrameReader(r io.Reader, maxFrameSize int) *FrameReader {
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &FrameReader{
		br:      bufio.NewReader(r),
		scratch: make([]byte, 0, 256),
		max:     maxFrameSize,
	}
}

// Next returns the payload of the next frame with the trailing logical
// terminator removed. The slice is only valid until the following call.
func (f *FrameReader) Next() ([]byte, error) {
	if f.done {
		f.scratch = f.scratch[:0]
		f.done = false
	}
	for {
		chunk, err := f.br.ReadSlice(Delimiter)
		if !f.overflow {
			f.scratch = append(f.scratch, chunk...)
			if len(f.scratch) > f.max+1 {
				f.scratch = f.scratch[:0]
				f.overflow = true
			}
		}
		switch {
		case err == nil:
			if f.overflow {
				f.overflow = false
				f.scratch = f.scratch[:0]
				return nil, ErrFrameTooLong
			}
			f.done = true
			return f.decode()
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return nil, err
		}
	}
}

func (f *FrameReader) decode() ([]byte, error) {
	// scratch holds the stuffed bytes plus the delimiter.
	raw := f.scratch
	n, err := cobs.DecodeInPlace(raw)
	if err != nil {
		return nil, &MalformedFramingError{Raw: bytes.Clone(raw[:len(raw)-1])}
	}
	if n > 0 {
		n--
	}
	return raw[:n], nil
}

// Buffered reports how many bytes of an incomplete frame are held.
func (f *FrameReader) Buffered() int {
	if f.done {
		return f.br.Buffered()
	}
	return len(f.scratch) + f.br.Buffered()
}

// Reset discards every in-flight byte and continues reading from r.
func (f *FrameReader) Reset(r io.Reader) {
	f.br.Reset(r)
	f.scratch = f.scratch[:0]
	f.done = false
	f.overflow = false
}

// EncodeFrame stuffs payload followed by its logical terminator and appends
// the delimiter, the inverse of FrameReader.Next.
func EncodeFrame(dst, payload []byte) []byte {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, payload...)
	buf = append(buf, 0)
	dst = cobs.Encode(dst, buf)
	return append(dst, Delimiter)
}
