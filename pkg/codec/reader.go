package codec

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Reader is responsible for reading data in borsh format.
// Every read checks the remaining length before touching the data.
type Reader struct {
	index int
	end   int
	data  []byte
}

// NewReader returns reader with the data given.
func NewReader(data []byte) *Reader {
	return &Reader{
		data:  data,
		index: 0,
		end:   len(data),
	}
}

// ReadUInt8 reads a single byte.
func (r *Reader) ReadUInt8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUInt32 reads little-endian uint32.
func (r *Reader) ReadUInt32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUInt64 reads little-endian uint64.
func (r *Reader) ReadUInt64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadUInt128 reads little-endian u128.
func (r *Reader) ReadUInt128() (U128, error) {
	b, err := r.next(U128Length)
	if err != nil {
		return U128{}, err
	}
	return U128FromLittleEndian(b), nil
}

// ReadBool reads a boolean. Bytes other than 0x00 and 0x01 are rejected.
func (r *Reader) ReadBool() (bool, error) {
	target, err := r.ReadUInt8()
	if err != nil {
		return false, err
	}
	if target != 0x00 && target != 0x01 {
		return false, fmt.Errorf("%w: bool byte %d", ErrInvalidData, target)
	}
	return target == 0x01, nil
}

// ReadOptionFlag reads the presence byte of an optional value.
func (r *Reader) ReadOptionFlag() (bool, error) {
	return r.ReadBool()
}

// ReadLength reads u32 length or count prefix.
func (r *Reader) ReadLength() (int, error) {
	size, err := r.ReadUInt32()
	if err != nil {
		return 0, err
	}
	return int(size), nil
}

// ReadFixedBytes reads exactly size bytes. Result is a copy.
func (r *Reader) ReadFixedBytes(size int) ([]byte, error) {
	b, err := r.next(size)
	if err != nil {
		return nil, err
	}
	result := make([]byte, size)
	copy(result, b)
	return result, nil
}

// ReadBytes reads u32 length prefixed bytes. Zero length yields nil.
func (r *Reader) ReadBytes() ([]byte, error) {
	size, err := r.ReadLength()
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	return r.ReadFixedBytes(size)
}

// ReadString reads u32 length prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	size, err := r.ReadLength()
	if err != nil {
		return "", err
	}
	b, err := r.next(size)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// ReadStrings reads u32 count followed by strings. Zero count yields nil.
func (r *Reader) ReadStrings() ([]string, error) {
	count, err := r.ReadLength()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	// every string takes at least 4 bytes, cap the allocation by what is left
	result := make([]string, 0, min(count, r.Remaining()/4))
	for i := 0; i < count; i++ {
		val, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, nil
}

// Offset returns the number of bytes consumed.
func (r *Reader) Offset() int {
	return r.index
}

// Remaining returns the number of bytes left to read.
func (r *Reader) Remaining() int {
	return r.end - r.index
}

func (r *Reader) HasUnreadBytes() bool {
	return r.index != r.end
}

func (r *Reader) next(size int) ([]byte, error) {
	remaining := r.end - r.index
	if size < 0 || size > remaining {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d but %d remaining", ErrBufferUnderflow, size, r.index, remaining)
	}
	result := r.data[r.index : r.index+size]
	r.index += size
	return result, nil
}
