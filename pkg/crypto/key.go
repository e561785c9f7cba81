package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip39"
	ed "golang.org/x/crypto/ed25519"

	"github.com/polywrap/near-engine/pkg/collection/bytes"
)

const (
	hardendOffset = 0x80000000
	// NearDerivationPath is the SLIP-10 path used by NEAR wallets for the first account.
	NearDerivationPath = "m/44'/397'/0'"
)

func parseDerivationPath(path string) ([]int, error) {
	if path == "" || path[0] != 'm' {
		return nil, errors.New("derivation path must start from `m`")
	}
	segments := strings.Split(path, "/")
	result := make([]int, len(segments)-1)
	keyPathRegex := regexp.MustCompile("^[0-9]+'?$")
	for i, segment := range segments {
		// first segment is m
		if i == 0 {
			continue
		}
		if segment == "" {
			return nil, errors.New("each segment cannot be empty")
		}
		if !keyPathRegex.MatchString(segment) {
			return nil, fmt.Errorf("invalid segment format for %s", segment)
		}
		if string(segment[len(segment)-1]) == "'" {
			val, err := strconv.Atoi(segment[:len(segment)-1])
			if err != nil {
				return nil, err
			}
			if val > math.MaxUint32/2 {
				return nil, fmt.Errorf("segment %s exceeds max uint32 / 2", segment)
			}
			result[i-1] = val + hardendOffset
			continue
		}
		val, err := strconv.Atoi(segment)
		if err != nil {
			return nil, err
		}
		result[i-1] = val
	}
	return result, nil
}

func DeriveEd25519Key(recoveryPhrase, path string) ([]byte, error) {
	derivationPath, err := parseDerivationPath(path)
	if err != nil {
		return nil, err
	}
	seed := bip39.NewSeed(recoveryPhrase, "")
	key, chainCode, err := getEd25519MasterKey(seed)
	if err != nil {
		return nil, err
	}
	for _, segment := range derivationPath {
		var err error
		key, chainCode, err = getEd25519ChildKey(key, chainCode, segment)
		if err != nil {
			return nil, err
		}
	}

	_, sk, err := ed.GenerateKey(bytes.NewReader(key))
	if err != nil {
		return nil, err
	}
	return sk, nil
}

func hmacHash(hasher func() hash.Hash, key, message []byte) ([]byte, error) {
	hmacer := hmac.New(hasher, key)
	if _, err := hmacer.Write(message); err != nil {
		return nil, err
	}
	result := hmacer.Sum(nil)
	return result, nil
}

func getEd25519MasterKey(seed []byte) ([]byte, []byte, error) {
	result, err := hmacHash(sha512.New, []byte("ed25519 seed"), seed)
	if err != nil {
		return nil, nil, err
	}
	return result[:32], result[32:], nil
}

func getEd25519ChildKey(key, chainCode []byte, index int) ([]byte, []byte, error) {
	indexBytes := bytes.FromUint32(uint32(index))

	hmacer := hmac.New(sha512.New, chainCode)
	if _, err := hmacer.Write(bytes.Join([]byte{0}, key, indexBytes)); err != nil {
		return nil, nil, err
	}
	result := hmacer.Sum(nil)
	return result[:32], result[32:], nil
}
