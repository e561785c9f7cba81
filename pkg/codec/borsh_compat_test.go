package codec

import (
	"testing"

	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type borshSample struct {
	Tag     uint8
	Count   uint32
	Nonce   uint64
	Name    string
	Payload []byte
	Hash    [8]byte
	Flag    bool
	Methods []string
}

func writeSample(w *Writer, s *borshSample) {
	w.WriteUInt8(s.Tag)
	w.WriteUInt32(s.Count)
	w.WriteUInt64(s.Nonce)
	w.WriteString(s.Name)
	w.WriteBytes(s.Payload)
	w.WriteFixedBytes(s.Hash[:])
	w.WriteBool(s.Flag)
	w.WriteStrings(s.Methods)
}

func TestWriterMatchesReferenceBorsh(t *testing.T) {
	samples := []*borshSample{
		{},
		{
			Tag:     3,
			Count:   0xdeadbeef,
			Nonce:   1<<63 + 5,
			Name:    "bob.testnet",
			Payload: []byte{1, 2, 3, 4, 5},
			Hash:    [8]byte{9, 8, 7, 6, 5, 4, 3, 2},
			Flag:    true,
			Methods: []string{"get", "set", "ünïcode"},
		},
	}
	for _, sample := range samples {
		expected, err := borsh.Serialize(*sample)
		require.NoError(t, err)

		writer := NewWriter()
		writeSample(writer, sample)
		require.NoError(t, writer.Err())
		assert.Equal(t, expected, writer.Result())

		reader := NewReader(expected)
		tag, err := reader.ReadUInt8()
		assert.NoError(t, err)
		assert.Equal(t, sample.Tag, tag)
		count, err := reader.ReadUInt32()
		assert.NoError(t, err)
		assert.Equal(t, sample.Count, count)
		nonce, err := reader.ReadUInt64()
		assert.NoError(t, err)
		assert.Equal(t, sample.Nonce, nonce)
		name, err := reader.ReadString()
		assert.NoError(t, err)
		assert.Equal(t, sample.Name, name)
		payload, err := reader.ReadBytes()
		assert.NoError(t, err)
		assert.Equal(t, len(sample.Payload), len(payload))
		hash, err := reader.ReadFixedBytes(8)
		assert.NoError(t, err)
		assert.Equal(t, sample.Hash[:], hash)
		flag, err := reader.ReadBool()
		assert.NoError(t, err)
		assert.Equal(t, sample.Flag, flag)
		methods, err := reader.ReadStrings()
		assert.NoError(t, err)
		assert.Equal(t, len(sample.Methods), len(methods))
		assert.False(t, reader.HasUnreadBytes())
	}
}
