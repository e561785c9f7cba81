package near

import (
	"encoding/hex"

	"github.com/polywrap/near-engine/pkg/codec"
)

const testPublicKey = "ed25519:1thX6LZfHDZZKUs92febYZhYRcXddmzfzF2NvTkPNE"

func mustDecodeHex(str string) []byte {
	b, err := hex.DecodeString(str)
	if err != nil {
		panic(err)
	}
	return b
}

func testKey() PublicKey {
	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(i)
	}
	return PublicKey{KeyType: KeyTypeED25519, Data: data}
}

func testBlockHash() CryptoHash {
	var hash CryptoHash
	for i := range hash {
		hash[i] = 2
	}
	return hash
}

func testTransaction(actions ...Action) *Transaction {
	return &Transaction{
		SignerID:   "alice.near",
		PublicKey:  testKey(),
		Nonce:      1,
		ReceiverID: "bob.near",
		BlockHash:  testBlockHash(),
		Actions:    actions,
	}
}

func encodeWith(f func(w *codec.Writer) error) ([]byte, error) {
	writer := codec.NewWriter()
	if err := f(writer); err != nil {
		return nil, err
	}
	if err := writer.Err(); err != nil {
		return nil, err
	}
	return writer.Result(), nil
}
