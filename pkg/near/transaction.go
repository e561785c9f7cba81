// Package near implements the NEAR protocol transaction wire format.
//
// Transactions, actions, access keys and public keys are encoded with the Borsh
// primitives from [github.com/polywrap/near-engine/pkg/codec]. Encode and decode are
// exact inverses and decode always returns freshly allocated values.
package near

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/polywrap/near-engine/pkg/codec"
	"github.com/polywrap/near-engine/pkg/crypto"
)

// CryptoHashLength is the size of block and transaction hashes.
const CryptoHashLength = 32

// CryptoHash is a sha256 digest, rendered as base58 in JSON.
type CryptoHash [CryptoHashLength]byte

// ParseCryptoHash decodes base58 hash.
func ParseCryptoHash(encoded string) (CryptoHash, error) {
	decoded, err := base58.Decode(encoded)
	if err != nil {
		return CryptoHash{}, fmt.Errorf("invalid base58 hash %q: %w", encoded, err)
	}
	if len(decoded) != CryptoHashLength {
		return CryptoHash{}, fmt.Errorf("hash must have length %d but received %d", CryptoHashLength, len(decoded))
	}
	var hash CryptoHash
	copy(hash[:], decoded)
	return hash, nil
}

func (h CryptoHash) String() string {
	return base58.Encode(h[:])
}

func (h CryptoHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *CryptoHash) UnmarshalJSON(b []byte) error {
	str := ""
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	parsed, err := ParseCryptoHash(str)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Transaction holds NEAR transaction. Actions are executed in order.
type Transaction struct {
	SignerID   string
	PublicKey  PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  CryptoHash
	Actions    []Action
}

// EncodeTo writes the transaction fields in wire order.
func (t *Transaction) EncodeTo(w *codec.Writer) error {
	w.WriteString(t.SignerID)
	if err := t.PublicKey.EncodeTo(w); err != nil {
		return fmt.Errorf("encode public key: %w", err)
	}
	w.WriteUInt64(t.Nonce)
	w.WriteString(t.ReceiverID)
	w.WriteFixedBytes(t.BlockHash[:])
	w.WriteLength(len(t.Actions))
	for i, action := range t.Actions {
		if err := EncodeAction(w, action); err != nil {
			return fmt.Errorf("encode action %d: %w", i, err)
		}
	}
	return nil
}

// Encode returns the borsh bytes of the transaction.
func (t *Transaction) Encode() ([]byte, error) {
	writer := codec.NewWriter()
	writer.WriteEncodable(t)
	if err := writer.Err(); err != nil {
		return nil, err
	}
	return writer.Result(), nil
}

// Hash returns sha256 of the encoded transaction, which is the NEAR transaction hash.
func (t *Transaction) Hash() (CryptoHash, error) {
	encoded, err := t.Encode()
	if err != nil {
		return CryptoHash{}, err
	}
	var hash CryptoHash
	copy(hash[:], crypto.Hash(encoded))
	return hash, nil
}

// Validate checks what the codec itself does not require but the network does.
func (t *Transaction) Validate() error {
	if len(t.Actions) == 0 {
		return ErrNoActions
	}
	if err := t.PublicKey.Validate(); err != nil {
		return err
	}
	for i, action := range t.Actions {
		if isNilAction(action) {
			return fmt.Errorf("%w: action %d is nil", ErrMissingField, i)
		}
	}
	return nil
}

// SerializeTransaction returns the borsh bytes of the transaction.
func SerializeTransaction(tx *Transaction) ([]byte, error) {
	return tx.Encode()
}

// DeserializeTransaction decodes a transaction. When allowTrailing is false bytes left
// after the transaction are rejected with ErrTrailingBytes.
func DeserializeTransaction(data []byte, allowTrailing bool) (*Transaction, error) {
	if allowTrailing {
		tx, _, err := DecodeTransactionPrefix(data)
		return tx, err
	}
	return DecodeTransaction(data)
}

// DecodeTransaction decodes a transaction which must span the whole input.
func DecodeTransaction(data []byte) (*Transaction, error) {
	tx, consumed, err := DecodeTransactionPrefix(data)
	if err != nil {
		return nil, err
	}
	if consumed != len(data) {
		return nil, fmt.Errorf("%w: %d bytes after offset %d", ErrTrailingBytes, len(data)-consumed, consumed)
	}
	return tx, nil
}

// DecodeTransactionPrefix decodes a transaction from the beginning of data and returns
// the number of bytes it spans.
func DecodeTransactionPrefix(data []byte) (*Transaction, int, error) {
	reader := codec.NewReader(data)
	tx, err := decodeTransaction(reader)
	if err != nil {
		if errors.Is(err, codec.ErrBufferUnderflow) {
			err = fmt.Errorf("%w: %w", ErrTruncatedInput, err)
		}
		return nil, 0, err
	}
	return tx, reader.Offset(), nil
}

func decodeTransaction(r *codec.Reader) (*Transaction, error) {
	signerID, err := r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("decode signerId: %w", err)
	}
	publicKey, err := DecodePublicKey(r)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	nonce, err := r.ReadUInt64()
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", err)
	}
	receiverID, err := r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("decode receiverId: %w", err)
	}
	blockHash, err := r.ReadFixedBytes(CryptoHashLength)
	if err != nil {
		return nil, fmt.Errorf("decode block hash: %w", err)
	}
	count, err := r.ReadLength()
	if err != nil {
		return nil, fmt.Errorf("decode actions length: %w", err)
	}
	tx := &Transaction{
		SignerID:   signerID,
		PublicKey:  publicKey,
		Nonce:      nonce,
		ReceiverID: receiverID,
	}
	copy(tx.BlockHash[:], blockHash)
	if count > 0 {
		// every action takes at least its tag byte
		tx.Actions = make([]Action, 0, min(count, r.Remaining()))
	}
	for i := 0; i < count; i++ {
		action, err := DecodeAction(r)
		if err != nil {
			return nil, fmt.Errorf("decode action %d: %w", i, err)
		}
		tx.Actions = append(tx.Actions, action)
	}
	return tx, nil
}

type transactionJSON struct {
	SignerID   string          `json:"signerId"`
	PublicKey  PublicKey       `json:"publicKey"`
	Nonce      codec.UInt64Str `json:"nonce"`
	ReceiverID string          `json:"receiverId"`
	BlockHash  CryptoHash      `json:"blockHash"`
	Actions    []*actionJSON   `json:"actions"`
}

func (t *Transaction) MarshalJSON() ([]byte, error) {
	actions := make([]*actionJSON, len(t.Actions))
	for i, action := range t.Actions {
		converted, err := actionToJSON(action)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions[i] = converted
	}
	return json.Marshal(&transactionJSON{
		SignerID:   t.SignerID,
		PublicKey:  t.PublicKey,
		Nonce:      codec.UInt64Str(t.Nonce),
		ReceiverID: t.ReceiverID,
		BlockHash:  t.BlockHash,
		Actions:    actions,
	})
}

func (t *Transaction) UnmarshalJSON(b []byte) error {
	decoded := &transactionJSON{}
	if err := json.Unmarshal(b, decoded); err != nil {
		return err
	}
	var actions []Action
	for i, a := range decoded.Actions {
		if a == nil {
			return fmt.Errorf("%w: action %d is null", ErrMissingField, i)
		}
		action, err := actionFromJSON(a)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, action)
	}
	*t = Transaction{
		SignerID:   decoded.SignerID,
		PublicKey:  decoded.PublicKey,
		Nonce:      uint64(decoded.Nonce),
		ReceiverID: decoded.ReceiverID,
		BlockHash:  decoded.BlockHash,
		Actions:    actions,
	}
	return nil
}
