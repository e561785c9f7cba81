package near

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polywrap/near-engine/pkg/codec"
)

func TestAccessKeyCodec(t *testing.T) {
	allowance := codec.MustParseU128("250000000000000000000000")
	cases := []struct {
		name    string
		key     AccessKey
		encoded string
	}{
		{
			name:    "full access",
			key:     NewFullAccessKey(),
			encoded: "0000000000000000" + "00",
		},
		{
			name:    "function call without allowance",
			key:     NewFunctionCallAccessKey("contract.near", []string{"a", "b"}, nil),
			encoded: "0000000000000000" + "01" + "00" + "0d000000636f6e74726163742e6e656172" + "02000000" + "0100000061" + "0100000062",
		},
		{
			name:    "function call with allowance and any method",
			key:     NewFunctionCallAccessKey("c", nil, &allowance),
			encoded: "0000000000000000" + "01" + "01" + "000040683bb3f386f034000000000000" + "0100000063" + "00000000",
		},
	}
	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			encoded, err := encodeWith(testCase.key.EncodeTo)
			require.NoError(t, err)
			assert.Equal(t, testCase.encoded, codec.Hex(encoded).String())

			reader := codec.NewReader(encoded)
			decoded, err := DecodeAccessKey(reader)
			require.NoError(t, err)
			assert.Equal(t, testCase.key, decoded)
			assert.False(t, reader.HasUnreadBytes())
		})
	}
}

func TestAccessKeyNonceIsZero(t *testing.T) {
	assert.Equal(t, uint64(0), NewFullAccessKey().Nonce)
	assert.Equal(t, uint64(0), NewFunctionCallAccessKey("r", nil, nil).Nonce)
}

func TestDecodePermissionErrors(t *testing.T) {
	for tag := 2; tag < 256; tag++ {
		_, err := DecodePermission(codec.NewReader([]byte{byte(tag)}))
		assert.ErrorIs(t, err, ErrUnknownPermissionTag)
	}

	// allowance presence byte must be 0 or 1
	_, err := DecodePermission(codec.NewReader([]byte{1, 2}))
	assert.ErrorIs(t, err, codec.ErrInvalidData)

	_, err = DecodePermission(codec.NewReader([]byte{1, 1, 0}))
	assert.ErrorIs(t, err, codec.ErrBufferUnderflow)

	_, err = DecodePermission(codec.NewReader(nil))
	assert.ErrorIs(t, err, codec.ErrBufferUnderflow)
}

func TestEncodePermissionErrors(t *testing.T) {
	_, err := encodeWith(AccessKey{}.EncodeTo)
	assert.ErrorIs(t, err, ErrMissingField)

	var permission *FunctionCallPermission
	_, err = encodeWith(AccessKey{Permission: permission}.EncodeTo)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestAccessKeyJSON(t *testing.T) {
	allowance := codec.NewU128(10)
	keys := []AccessKey{
		NewFullAccessKey(),
		NewFunctionCallAccessKey("contract.near", []string{"get"}, &allowance),
	}
	for _, key := range keys {
		b, err := json.Marshal(key)
		require.NoError(t, err)
		decoded := AccessKey{}
		require.NoError(t, json.Unmarshal(b, &decoded))
		assert.Equal(t, key, decoded)
	}

	b, err := json.Marshal(NewFullAccessKey())
	require.NoError(t, err)
	assert.JSONEq(t, `{"nonce":"0","permission":{"isFullAccess":true}}`, string(b))

	decoded := AccessKey{}
	assert.Error(t, json.Unmarshal([]byte(`{"nonce":"0"}`), &decoded))

	var permission *FunctionCallPermission
	_, err = json.Marshal(AccessKey{Permission: permission})
	assert.ErrorIs(t, err, ErrMissingField)
}
