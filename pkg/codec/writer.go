package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer is responsible for writing data in borsh format.
// The first failure is kept and returned by Err; later writes are ignored.
type Writer struct {
	result []byte
	err    error
}

// NewWriter returns a new instances of a writer.
func NewWriter() *Writer {
	return &Writer{
		result: []byte{},
	}
}

// NewWriterSize returns a writer with preallocated capacity.
func NewWriterSize(size int) *Writer {
	return &Writer{
		result: make([]byte, 0, size),
	}
}

// WriteUInt8 writes a single byte.
func (w *Writer) WriteUInt8(data uint8) {
	if w.err != nil {
		return
	}
	w.result = append(w.result, data)
}

// WriteUInt32 writes uint32 in little-endian.
func (w *Writer) WriteUInt32(data uint32) {
	if w.err != nil {
		return
	}
	w.result = binary.LittleEndian.AppendUint32(w.result, data)
}

// WriteUInt64 writes uint64 in little-endian.
func (w *Writer) WriteUInt64(data uint64) {
	if w.err != nil {
		return
	}
	w.result = binary.LittleEndian.AppendUint64(w.result, data)
}

// WriteUInt128 writes u128 in little-endian.
func (w *Writer) WriteUInt128(data U128) {
	if w.err != nil {
		return
	}
	b := make([]byte, U128Length)
	data.PutLittleEndian(b)
	w.result = append(w.result, b...)
}

// WriteBool writes a boolean as 0x00 or 0x01.
func (w *Writer) WriteBool(data bool) {
	if data {
		w.WriteUInt8(0x01)
		return
	}
	w.WriteUInt8(0x00)
}

// WriteOptionFlag writes the presence byte of an optional value.
func (w *Writer) WriteOptionFlag(present bool) {
	w.WriteBool(present)
}

// WriteLength writes u32 length or count prefix.
func (w *Writer) WriteLength(size int) {
	if w.err != nil {
		return
	}
	if size < 0 || uint64(size) > math.MaxUint32 {
		w.err = fmt.Errorf("%w: %d", ErrLengthOverflow, size)
		return
	}
	w.WriteUInt32(uint32(size))
}

// WriteFixedBytes writes data as is without length prefix.
func (w *Writer) WriteFixedBytes(data []byte) {
	if w.err != nil {
		return
	}
	w.result = append(w.result, data...)
}

// WriteBytes writes u32 length prefix followed by data.
func (w *Writer) WriteBytes(data []byte) {
	w.WriteLength(len(data))
	w.WriteFixedBytes(data)
}

// WriteString writes UTF-8 bytes of the string with u32 length prefix.
// The string is written as given, without normalization.
func (w *Writer) WriteString(data string) {
	w.WriteLength(len(data))
	if w.err != nil {
		return
	}
	w.result = append(w.result, data...)
}

// WriteStrings writes u32 count followed by each string.
func (w *Writer) WriteStrings(data []string) {
	w.WriteLength(len(data))
	for _, val := range data {
		w.WriteString(val)
	}
}

// WriteEncodable writes nested structure to result.
func (w *Writer) WriteEncodable(data WriterEncodable) {
	if w.err != nil {
		return
	}
	if err := data.EncodeTo(w); err != nil && w.err == nil {
		w.err = err
	}
}

// Result returns the written bytes.
func (w *Writer) Result() []byte {
	return w.result
}

// Size returns written size.
func (w *Writer) Size() int {
	return len(w.result)
}

// Err returns the first error occurred while writing.
func (w *Writer) Err() error {
	return w.err
}
