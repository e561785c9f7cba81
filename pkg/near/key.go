package near

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/polywrap/near-engine/pkg/codec"
	"github.com/polywrap/near-engine/pkg/collection/bytes"
	"github.com/polywrap/near-engine/pkg/crypto"
)

// KeyType is the curve discriminant written before key and signature bytes.
type KeyType uint8

const (
	KeyTypeED25519 KeyType = 0
)

const keyTypeED25519Name = "ed25519"

func (k KeyType) String() string {
	if k == KeyTypeED25519 {
		return keyTypeED25519Name
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// PublicKeyLength returns the byte length of a public key of the type.
func (k KeyType) PublicKeyLength() (int, error) {
	if k == KeyTypeED25519 {
		return crypto.EdPublicKeyLength, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedKeyType, uint8(k))
}

// SignatureLength returns the byte length of a signature of the type.
func (k KeyType) SignatureLength() (int, error) {
	if k == KeyTypeED25519 {
		return crypto.EdSignatureLength, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedKeyType, uint8(k))
}

// ParseKeyType returns key type from its name.
func ParseKeyType(name string) (KeyType, error) {
	if strings.ToLower(name) == keyTypeED25519Name {
		return KeyTypeED25519, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedKeyType, name)
}

// PublicKey is a key type followed by raw key bytes.
type PublicKey struct {
	KeyType KeyType
	Data    []byte
}

// NewED25519PublicKey returns ed25519 public key holding a copy of data.
func NewED25519PublicKey(data []byte) (PublicKey, error) {
	pk := PublicKey{
		KeyType: KeyTypeED25519,
		Data:    bytes.Copy(data),
	}
	if err := pk.Validate(); err != nil {
		return PublicKey{}, err
	}
	return pk, nil
}

// ParsePublicKey parses "<type>:<base58 data>". Without a type prefix ed25519 is assumed.
func ParsePublicKey(encoded string) (PublicKey, error) {
	keyType := KeyTypeED25519
	data := encoded
	if typeName, rest, found := strings.Cut(encoded, ":"); found {
		parsed, err := ParseKeyType(typeName)
		if err != nil {
			return PublicKey{}, err
		}
		keyType = parsed
		data = rest
	}
	decoded, err := base58.Decode(data)
	if err != nil {
		return PublicKey{}, fmt.Errorf("invalid base58 public key %q: %w", encoded, err)
	}
	pk := PublicKey{KeyType: keyType, Data: decoded}
	if err := pk.Validate(); err != nil {
		return PublicKey{}, err
	}
	return pk, nil
}

// Validate checks the data length against the key type.
func (p PublicKey) Validate() error {
	return validateKeyData(p.KeyType, p.Data, KeyType.PublicKeyLength)
}

func (p PublicKey) String() string {
	return p.KeyType.String() + ":" + base58.Encode(p.Data)
}

func (p PublicKey) Equal(other PublicKey) bool {
	return p.KeyType == other.KeyType && bytes.Equal(p.Data, other.Data)
}

// EncodeTo writes the key type and the raw key bytes without length prefix.
func (p PublicKey) EncodeTo(w *codec.Writer) error {
	if err := p.Validate(); err != nil {
		return err
	}
	w.WriteUInt8(uint8(p.KeyType))
	w.WriteFixedBytes(p.Data)
	return nil
}

// DecodePublicKey reads the key type and as many bytes as the key type defines.
func DecodePublicKey(r *codec.Reader) (PublicKey, error) {
	tag, err := r.ReadUInt8()
	if err != nil {
		return PublicKey{}, err
	}
	keyType := KeyType(tag)
	size, err := keyType.PublicKeyLength()
	if err != nil {
		return PublicKey{}, err
	}
	data, err := r.ReadFixedBytes(size)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKey{KeyType: keyType, Data: data}, nil
}

func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PublicKey) UnmarshalJSON(b []byte) error {
	str := ""
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	parsed, err := ParsePublicKey(str)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Signature is a key type followed by raw signature bytes.
// It is only ever written, as part of a signed transaction.
type Signature struct {
	KeyType KeyType
	Data    []byte
}

// ParseSignature parses "<type>:<base58 data>".
func ParseSignature(encoded string) (Signature, error) {
	typeName, data, found := strings.Cut(encoded, ":")
	if !found {
		return Signature{}, fmt.Errorf("signature %q must have form <type>:<base58>", encoded)
	}
	keyType, err := ParseKeyType(typeName)
	if err != nil {
		return Signature{}, err
	}
	decoded, err := base58.Decode(data)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid base58 signature %q: %w", encoded, err)
	}
	sig := Signature{KeyType: keyType, Data: decoded}
	if err := sig.Validate(); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

func (s Signature) Validate() error {
	return validateKeyData(s.KeyType, s.Data, KeyType.SignatureLength)
}

func (s Signature) String() string {
	return s.KeyType.String() + ":" + base58.Encode(s.Data)
}

// EncodeTo writes the key type and the raw signature bytes without length prefix.
func (s Signature) EncodeTo(w *codec.Writer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	w.WriteUInt8(uint8(s.KeyType))
	w.WriteFixedBytes(s.Data)
	return nil
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Signature) UnmarshalJSON(b []byte) error {
	str := ""
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	parsed, err := ParseSignature(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func validateKeyData(keyType KeyType, data []byte, length func(KeyType) (int, error)) error {
	expected, err := length(keyType)
	if err != nil {
		return err
	}
	if len(data) != expected {
		return fmt.Errorf("%w: %s requires %d bytes but received %d", ErrInvalidKeyLength, keyType, expected, len(data))
	}
	return nil
}
