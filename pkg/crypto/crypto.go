// Package crypto provides crypto related utility functions.
//
// It supports ed25519 for signature verification and key derivation, and sha256 for hash.
// Signing is left to the caller; transactions handled by this module arrive already signed.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	ed "golang.org/x/crypto/ed25519"
)

const (
	HashLengh          = 32
	EdPublicKeyLength  = 32
	EdPrivateKeyLength = 64
	EdSeedLength       = 32
	EdSignatureLength  = 64
)

func RandomBytes(size int) []byte {
	r := make([]byte, size)
	if _, err := rand.Read(r); err != nil {
		panic(err)
	}
	return r
}

// GetEdPublicKey returns public key of 64 bytes private key or 32 bytes seed.
func GetEdPublicKey(privateKey []byte) ([]byte, error) {
	switch len(privateKey) {
	case EdPrivateKeyLength:
		return privateKey[32:], nil
	case EdSeedLength:
		pk := ed.NewKeyFromSeed(privateKey)
		return pk.Public().(ed.PublicKey), nil
	default:
		return nil, fmt.Errorf("private key must have length %d or %d but received %d", EdPrivateKeyLength, EdSeedLength, len(privateKey))
	}
}

func Hash(data []byte) []byte {
	hasher := sha256.New()
	hasher.Write(data)
	return hasher.Sum(nil)
}

func hexToBytes(key string) ([]byte, error) {
	return hex.DecodeString(key)
}

func VerifySignature(publicKey, signature []byte, message []byte) error {
	if len(publicKey) != EdPublicKeyLength {
		return fmt.Errorf("public key must have length %d but received %d", EdPublicKeyLength, len(publicKey))
	}
	if valid := ed.Verify(publicKey, message, signature); !valid {
		return fmt.Errorf("invalid signature %x by %x", signature, publicKey)
	}
	return nil
}
