package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/polywrap/near-engine/pkg/crypto"
	"github.com/polywrap/near-engine/pkg/near"
)

const stdinPath = "-"

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == stdinPath {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func readTransaction(data []byte) (*near.Transaction, error) {
	tx := &near.Transaction{}
	if err := json.Unmarshal(data, tx); err != nil {
		return nil, fmt.Errorf("invalid transaction JSON: %w", err)
	}
	return tx, nil
}

func encodeTransaction(out io.Writer, input []byte, useBase64 bool) error {
	tx, err := readTransaction(input)
	if err != nil {
		return err
	}
	encoded, err := near.SerializeTransaction(tx)
	if err != nil {
		return err
	}
	if useBase64 {
		_, err = fmt.Fprintln(out, base64.StdEncoding.EncodeToString(encoded))
		return err
	}
	_, err = fmt.Fprintln(out, hex.EncodeToString(encoded))
	return err
}

func decodeBytes(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if decoded, err := hex.DecodeString(strings.TrimPrefix(encoded, "0x")); err == nil {
		return decoded, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.New("input must be hex or base64 encoded")
	}
	return decoded, nil
}

func decodeTransaction(out io.Writer, encoded string, allowTrailing bool) error {
	data, err := decodeBytes(encoded)
	if err != nil {
		return err
	}
	tx, err := near.DeserializeTransaction(data, allowTrailing)
	if err != nil {
		return err
	}
	result, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(result))
	return err
}

func hashTransaction(out io.Writer, input []byte) error {
	tx, err := readTransaction(input)
	if err != nil {
		return err
	}
	hash, err := tx.Hash()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "hex: %x\nbase58: %s\n", hash[:], hash.String())
	return err
}

func derivePublicKey(out io.Writer, passphrase, path string) error {
	privateKey, err := crypto.DeriveEd25519Key(passphrase, path)
	if err != nil {
		return err
	}
	data, err := crypto.GetEdPublicKey(privateKey)
	if err != nil {
		return err
	}
	publicKey, err := near.NewED25519PublicKey(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, publicKey.String())
	return err
}
