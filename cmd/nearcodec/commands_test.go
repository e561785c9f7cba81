package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polywrap/near-engine/pkg/log"
)

const (
	transferJSON = `{
		"signerId": "alice.near",
		"publicKey": "ed25519:1thX6LZfHDZZKUs92febYZhYRcXddmzfzF2NvTkPNE",
		"nonce": "1",
		"receiverId": "bob.near",
		"blockHash": "8qbHbw2BbbTHBW1sbeqakYXVKRQM8Ne7pLK7m6CVfeR",
		"actions": [{"type": "transfer", "deposit": "1000000000000000000000"}]
	}`
	transferHex  = "0a000000616c6963652e6e65617200000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f010000000000000008000000626f622e6e656172020202020202020202020202020202020202020202020202020202020202020201000000030000a0dec5adc9353600000000000000"
	transferHash = "061a05d376a669c7dd433d572eeb6aec302809cca159b9757ce7ff244f3ed14a"
)

func TestReadInput(t *testing.T) {
	data, err := readInput("-", strings.NewReader("stdin"))
	require.NoError(t, err)
	assert.Equal(t, "stdin", string(data))

	path := filepath.Join(t.TempDir(), "tx.json")
	require.NoError(t, os.WriteFile(path, []byte(transferJSON), 0o600))
	data, err = readInput(path, strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, transferJSON, string(data))

	_, err = readInput(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}

func TestEncodeDecodeTransaction(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, encodeTransaction(out, []byte(transferJSON), false))
	assert.Equal(t, transferHex+"\n", out.String())

	out.Reset()
	require.NoError(t, encodeTransaction(out, []byte(transferJSON), true))
	encodedBase64 := strings.TrimSpace(out.String())

	for _, input := range []string{transferHex, "0x" + transferHex, encodedBase64} {
		out.Reset()
		require.NoError(t, decodeTransaction(out, input, false))
		decoded := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.Equal(t, "alice.near", decoded["signerId"])
		assert.Equal(t, "1", decoded["nonce"])
	}

	assert.Error(t, decodeTransaction(out, transferHex+"00", false))
	assert.NoError(t, decodeTransaction(out, transferHex+"00", true))
	assert.EqualError(t, decodeTransaction(out, "not encoded!", false), "input must be hex or base64 encoded")
	assert.Error(t, encodeTransaction(out, []byte(`{"nonce": 1}`), false))
}

func TestHashTransaction(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, hashTransaction(out, []byte(transferJSON)))
	assert.True(t, strings.HasPrefix(out.String(), "hex: "+transferHash+"\n"))
	assert.Contains(t, out.String(), "base58: ")
}

func TestDerivePublicKey(t *testing.T) {
	passphrase := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	out := &bytes.Buffer{}
	require.NoError(t, derivePublicKey(out, passphrase, "m/44'/397'/0'"))
	first := out.String()
	assert.Equal(t, "ed25519:6j4b6zUaty6fD1awqcGCCU9JYGCWYUgdJhQrzfZhqE25\n", first)

	out.Reset()
	require.NoError(t, derivePublicKey(out, passphrase, "m/44'/397'/1'"))
	assert.NotEqual(t, first, out.String())

	assert.Error(t, derivePublicKey(out, passphrase, "44'/397'"))
}

func TestAppAmountCommands(t *testing.T) {
	app := newApp(log.NewSilentLogger())
	out := &bytes.Buffer{}
	app.Writer = out

	require.NoError(t, app.Run([]string{"nearcodec", "amount", "format", "1230000000000000000000000000"}))
	assert.Equal(t, "1,230\n", out.String())

	out.Reset()
	require.NoError(t, app.Run([]string{"nearcodec", "amount", "parse", "0.5"}))
	assert.Equal(t, "500000000000000000000000\n", out.String())

	assert.Error(t, app.Run([]string{"nearcodec", "amount", "parse", "abc"}))
}

func TestAppEncodeCommand(t *testing.T) {
	app := newApp(log.NewSilentLogger())
	out := &bytes.Buffer{}
	app.Writer = out
	app.Reader = strings.NewReader(transferJSON)

	require.NoError(t, app.Run([]string{"nearcodec", "encode"}))
	assert.Equal(t, transferHex+"\n", out.String())
}
