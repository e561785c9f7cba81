package near

import (
	"testing"

	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polywrap/near-engine/pkg/codec"
)

type borshTransactionHeader struct {
	SignerID    string
	KeyType     uint8
	Key         [32]byte
	Nonce       uint64
	ReceiverID  string
	BlockHash   [32]byte
	ActionCount uint32
}

type borshFunctionCallKey struct {
	Nonce       uint64
	Permission  uint8
	Allowance   *[16]byte
	ReceiverID  string
	MethodNames []string
}

func TestTransactionHeaderMatchesReferenceBorsh(t *testing.T) {
	tx := testTransaction(NewCreateAccount(), NewDeleteAccount("carol.near"))
	tx.Nonce = 1<<40 + 7
	header := borshTransactionHeader{
		SignerID:    tx.SignerID,
		KeyType:     uint8(tx.PublicKey.KeyType),
		Nonce:       tx.Nonce,
		ReceiverID:  tx.ReceiverID,
		BlockHash:   tx.BlockHash,
		ActionCount: uint32(len(tx.Actions)),
	}
	copy(header.Key[:], tx.PublicKey.Data)

	expected, err := borsh.Serialize(header)
	require.NoError(t, err)

	encoded, err := tx.Encode()
	require.NoError(t, err)
	assert.Equal(t, expected, encoded[:len(expected)])
}

func TestAccessKeyMatchesReferenceBorsh(t *testing.T) {
	allowance := codec.MustParseU128("340282366920938463463374607431768211455")
	var allowanceBytes [16]byte
	allowance.PutLittleEndian(allowanceBytes[:])

	cases := []struct {
		key       AccessKey
		reference borshFunctionCallKey
	}{
		{
			key: NewFunctionCallAccessKey("app.near", []string{"vote", "unvote"}, &allowance),
			reference: borshFunctionCallKey{
				Permission:  1,
				Allowance:   &allowanceBytes,
				ReceiverID:  "app.near",
				MethodNames: []string{"vote", "unvote"},
			},
		},
		{
			key: NewFunctionCallAccessKey("app.near", nil, nil),
			reference: borshFunctionCallKey{
				Permission:  1,
				ReceiverID:  "app.near",
				MethodNames: []string{},
			},
		},
	}
	for _, testCase := range cases {
		expected, err := borsh.Serialize(testCase.reference)
		require.NoError(t, err)

		encoded, err := encodeWith(testCase.key.EncodeTo)
		require.NoError(t, err)
		assert.Equal(t, expected, encoded)
	}
}
