// Package codec implements the Borsh primitives used by the NEAR protocol wire format.
//
// All multi-byte integers are little-endian, variable-length byte buffers and strings
// carry a u32 length prefix, and fixed-size arrays are written raw. See [Borsh].
//
// [Borsh]: https://borsh.io
package codec

// Encodable is interface for struct which is encodable.
type Encodable interface {
	Encode() ([]byte, error)
}

// WriterEncodable is interface for struct which writes itself into a shared writer.
// Union members and nested structures implement it so the parent can compose them.
type WriterEncodable interface {
	EncodeTo(*Writer) error
}
