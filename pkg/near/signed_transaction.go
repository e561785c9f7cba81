package near

import (
	"encoding/base64"
	"fmt"

	"github.com/polywrap/near-engine/pkg/codec"
	"github.com/polywrap/near-engine/pkg/crypto"
)

// SignedTransaction is a transaction with the signature of its hash.
type SignedTransaction struct {
	Transaction Transaction `json:"transaction"`
	Signature   Signature   `json:"signature"`
}

// EncodeTo writes the transaction followed by the signature.
func (s *SignedTransaction) EncodeTo(w *codec.Writer) error {
	if err := s.Transaction.EncodeTo(w); err != nil {
		return err
	}
	if err := s.Signature.EncodeTo(w); err != nil {
		return fmt.Errorf("encode signature: %w", err)
	}
	return nil
}

// Encode returns the bytes submitted to broadcast_tx endpoints.
func (s *SignedTransaction) Encode() ([]byte, error) {
	writer := codec.NewWriter()
	writer.WriteEncodable(s)
	if err := writer.Err(); err != nil {
		return nil, err
	}
	return writer.Result(), nil
}

// Hash returns the hash of the inner transaction. The signature is not part of it.
func (s *SignedTransaction) Hash() (CryptoHash, error) {
	return s.Transaction.Hash()
}

// Verify checks the signature over the transaction hash against the signer public key.
func (s *SignedTransaction) Verify() error {
	if s.Signature.KeyType != s.Transaction.PublicKey.KeyType {
		return fmt.Errorf("signature key type %s does not match public key type %s", s.Signature.KeyType, s.Transaction.PublicKey.KeyType)
	}
	if err := s.Signature.Validate(); err != nil {
		return err
	}
	if err := s.Transaction.PublicKey.Validate(); err != nil {
		return err
	}
	hash, err := s.Hash()
	if err != nil {
		return err
	}
	return crypto.VerifySignature(s.Transaction.PublicKey.Data, s.Signature.Data, hash[:])
}

// Base64 returns the encoded signed transaction as expected by the JSON-RPC broadcast methods.
func (s *SignedTransaction) Base64() (string, error) {
	encoded, err := s.Encode()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(encoded), nil
}
