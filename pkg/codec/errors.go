package codec

import "errors"

var (
	// ErrBufferUnderflow represents a read past the end of the buffer.
	ErrBufferUnderflow = errors.New("buffer underflow")
	// ErrInvalidData represents general invalid data.
	ErrInvalidData = errors.New("invalid data")
	// ErrInvalidUTF8 represents string payload which is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid byte for UTF-8 is included")
	// ErrLengthOverflow represents a length which does not fit into u32 prefix.
	ErrLengthOverflow = errors.New("length exceeds u32")
	// ErrOutOfRange represents a numeric value not fitting into the target type.
	ErrOutOfRange = errors.New("out of range")
)
