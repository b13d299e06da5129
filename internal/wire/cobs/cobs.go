// Package cobs implements Consistent Overhead Byte Stuffing with 0x00 as the
// frame delimiter.
package cobs

import (
	"bytes"
	"errors"
)

// ErrMalformed is returned when a code byte points past the end of the frame.
var ErrMalformed = errors.New("cobs: malformed frame")

const maxBlock = 0xFF

// Encode appends the stuffed form of src to dst. The output contains no zero
// bytes; the caller appends the delimiter.
func Encode(dst, src []byte) []byte {
	codeIdx := len(dst)
	dst = append(dst, 0)
	code := byte(1)
	for _, b := range src {
		if b == 0 {
			dst[codeIdx] = code
			codeIdx = len(dst)
			dst = append(dst, 0)
			code = 1
			continue
		}
		dst = append(dst, b)
		code++
		if code == maxBlock {
			dst[codeIdx] = code
			codeIdx = len(dst)
			dst = append(dst, 0)
			code = 1
		}
	}
	dst[codeIdx] = code
	return dst
}

// MaxEncodedLen is the worst-case stuffed length of n bytes.
func MaxEncodedLen(n int) int {
	return n + n/(maxBlock-1) + 1
}

// DecodeInPlace unstuffs buf up to its first zero byte (or its end) and
// returns the decoded length; the result occupies buf[:n]. The block
// structure is validated before anything is written, so on error buf is
// unchanged.
func DecodeInPlace(buf []byte) (int, error) {
	end := bytes.IndexByte(buf, 0)
	if end < 0 {
		end = len(buf)
	}
	for i := 0; i < end; {
		next := i + int(buf[i])
		if next > end {
			return 0, ErrMalformed
		}
		i = next
	}

	r, w := 0, 0
	for r < end {
		code := int(buf[r])
		r++
		w += copy(buf[w:], buf[r:r+code-1])
		r += code - 1
		if code != maxBlock && r < end {
			buf[w] = 0
			w++
		}
	}
	return w, nil
}

// Decode is the allocating counterpart of DecodeInPlace.
func Decode(src []byte) ([]byte, error) {
	buf := bytes.Clone(src)
	n, err := DecodeInPlace(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
