package near

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polywrap/near-engine/pkg/codec"
)

func TestParsePublicKey(t *testing.T) {
	cases := []struct {
		input string
		err   error
	}{
		{input: testPublicKey},
		{input: "1thX6LZfHDZZKUs92febYZhYRcXddmzfzF2NvTkPNE"},
		{input: "ED25519:1thX6LZfHDZZKUs92febYZhYRcXddmzfzF2NvTkPNE"},
		{input: "secp256k1:1thX6LZfHDZZKUs92febYZhYRcXddmzfzF2NvTkPNE", err: ErrUnsupportedKeyType},
		{input: "ed25519:3yZe7d", err: ErrInvalidKeyLength},
	}
	for _, testCase := range cases {
		key, err := ParsePublicKey(testCase.input)
		if testCase.err != nil {
			assert.ErrorIs(t, err, testCase.err, testCase.input)
			continue
		}
		require.NoError(t, err, testCase.input)
		assert.True(t, key.Equal(testKey()))
		assert.Equal(t, testPublicKey, key.String())
	}

	_, err := ParsePublicKey("ed25519:0OIl")
	assert.Error(t, err)
}

func TestPublicKeyCodec(t *testing.T) {
	encoded, err := encodeWith(testKey().EncodeTo)
	require.NoError(t, err)
	assert.Len(t, encoded, 33)
	assert.Equal(t, uint8(0), encoded[0])
	assert.Equal(t, testKey().Data, encoded[1:])

	reader := codec.NewReader(encoded)
	decoded, err := DecodePublicKey(reader)
	require.NoError(t, err)
	assert.Equal(t, testKey(), decoded)
	assert.False(t, reader.HasUnreadBytes())

	// decoded data must not alias the input
	encoded[1] = 0xff
	assert.Equal(t, uint8(0), decoded.Data[0])
}

func TestPublicKeyCodecErrors(t *testing.T) {
	_, err := encodeWith(PublicKey{KeyType: KeyTypeED25519, Data: []byte{1, 2, 3}}.EncodeTo)
	assert.ErrorIs(t, err, ErrInvalidKeyLength)

	_, err = encodeWith(PublicKey{KeyType: 1, Data: make([]byte, 33)}.EncodeTo)
	assert.ErrorIs(t, err, ErrUnsupportedKeyType)

	// unknown key type must not fall back to 32 bytes
	data := append([]byte{1}, make([]byte, 32)...)
	_, err = DecodePublicKey(codec.NewReader(data))
	assert.ErrorIs(t, err, ErrUnsupportedKeyType)

	_, err = DecodePublicKey(codec.NewReader(data[:20]))
	assert.ErrorIs(t, err, ErrUnsupportedKeyType)

	_, err = DecodePublicKey(codec.NewReader([]byte{0, 1, 2}))
	assert.ErrorIs(t, err, codec.ErrBufferUnderflow)
}

func TestKeyTypeLengths(t *testing.T) {
	size, err := KeyTypeED25519.PublicKeyLength()
	assert.NoError(t, err)
	assert.Equal(t, 32, size)

	size, err = KeyTypeED25519.SignatureLength()
	assert.NoError(t, err)
	assert.Equal(t, 64, size)

	for tag := 1; tag < 256; tag++ {
		_, err := KeyType(tag).PublicKeyLength()
		assert.ErrorIs(t, err, ErrUnsupportedKeyType)
		_, err = KeyType(tag).SignatureLength()
		assert.ErrorIs(t, err, ErrUnsupportedKeyType)
	}
	assert.Equal(t, "unknown(9)", KeyType(9).String())
}

func TestPublicKeyJSON(t *testing.T) {
	b, err := json.Marshal(testKey())
	require.NoError(t, err)
	assert.Equal(t, `"`+testPublicKey+`"`, string(b))

	decoded := PublicKey{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.True(t, decoded.Equal(testKey()))

	assert.Error(t, json.Unmarshal([]byte(`12`), &decoded))
}

func TestSignature(t *testing.T) {
	sig := Signature{KeyType: KeyTypeED25519, Data: make([]byte, 64)}
	encoded, err := encodeWith(sig.EncodeTo)
	require.NoError(t, err)
	assert.Len(t, encoded, 65)

	parsed, err := ParseSignature(sig.String())
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)

	b, err := json.Marshal(sig)
	require.NoError(t, err)
	fromJSON := Signature{}
	require.NoError(t, json.Unmarshal(b, &fromJSON))
	assert.Equal(t, sig, fromJSON)

	_, err = ParseSignature("1111")
	assert.Error(t, err)

	_, err = encodeWith(Signature{KeyType: KeyTypeED25519, Data: make([]byte, 32)}.EncodeTo)
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}
