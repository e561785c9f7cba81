// Package bytes provides utility functions for byte slices.
package bytes

import (
	"bytes"
	"encoding/binary"
)

// Equal reports whether a and b are the same length and contain the same bytes. A nil argument is equivalent to an empty slice.
func Equal(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// NewReader returns a new Reader reading from b.
func NewReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

// FromUint32 converts uint32 to big endian byte slice with length 4.
func FromUint32(val uint32) []byte {
	result := make([]byte, 4)
	binary.BigEndian.PutUint32(result, val)
	return result
}
