package crypto

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDerivationPath(t *testing.T) {
	cases := []struct {
		input    string
		expected []int
		errStr   string
	}{
		{
			input:    "",
			expected: []int{},
			errStr:   "derivation path must start from `m`",
		},
		{
			input:    "am/32",
			expected: []int{},
			errStr:   "derivation path must start from `m`",
		},
		{
			input:    "m/32/'31",
			expected: []int{},
			errStr:   "invalid segment format",
		},
		{
			input:    "m/2'/1x",
			expected: []int{},
			errStr:   "invalid segment format for 1x",
		},
		{
			input:    "m/4294967295'/1x",
			expected: []int{},
			errStr:   "segment 4294967295' exceeds max uint32 / 2",
		},
		{
			input:    "m/332'/a",
			expected: []int{},
			errStr:   "invalid segment format",
		},
		{
			input:    "m/13343",
			expected: []int{13343},
			errStr:   "",
		},
		{
			input:    NearDerivationPath,
			expected: []int{44 + hardendOffset, 397 + hardendOffset, hardendOffset},
			errStr:   "",
		},
		{
			input:    "m/44'/134'/0'",
			expected: []int{44 + hardendOffset, 134 + hardendOffset, hardendOffset},
			errStr:   "",
		},
	}

	for _, testCase := range cases {
		t.Logf("Testing input %s", testCase.input)
		result, err := parseDerivationPath(testCase.input)
		if testCase.errStr != "" {
			assert.Contains(t, err.Error(), testCase.errStr)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, result, testCase.expected)
	}
}

func TestDeriveEd25519Key(t *testing.T) {
	cases := []struct {
		recoveryPhrase string
		derivationPath string
		privateKey     []byte
		errStr         string
	}{
		{
			recoveryPhrase: "target cancel solution recipe vague faint bomb convince pink vendor fresh patrol",
			derivationPath: "m/44'/134'/0'",
			privateKey:     strToHex("0xc465dfb15018d3aef0d94d411df048e240e87a3ec9cd6d422cea903bfc101f61c6bae83af23540096ac58d5121b00f33be6f02f05df785766725acdd5d48be9d"),
		},
		{
			recoveryPhrase: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art",
			derivationPath: "m/44'/134'/0'",
			privateKey:     strToHex("0x111b6146ec9fbfd7631c75bf42de7c020837d905323a1c161352efed680e86a94815aaeb2da9e7485bfd4f43a5a57431d78fd9e2a3545f9aa6f131ff35ee57b0"),
		},
		{
			recoveryPhrase: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art",
			derivationPath: "m/44'/134'/1'",
			privateKey:     strToHex("0x544a796e02833f9b6fe90512a8fe48360924a9a5462a5e263a3a40092dae99f50ad5733ff582886700791aed326ff226e1c04ab5b683facb082b36594b7eddb1"),
		},
	}

	for i, testCase := range cases {
		t.Logf("Testing case %d", i+1)
		pk, err := DeriveEd25519Key(testCase.recoveryPhrase, testCase.derivationPath)
		assert.NoError(t, err)
		assert.Equal(t, testCase.privateKey, pk)
	}
}

func strToHex(str string) []byte {
	res, err := hex.DecodeString(strings.TrimPrefix(str, "0x"))
	if err != nil {
		panic(err)
	}
	return res
}

func TestDeriveNearKey(t *testing.T) {
	phrase := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	first, err := DeriveEd25519Key(phrase, NearDerivationPath)
	assert.NoError(t, err)
	assert.Len(t, first, EdPrivateKeyLength)

	second, err := DeriveEd25519Key(phrase, NearDerivationPath)
	assert.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := DeriveEd25519Key(phrase, "m/44'/397'/1'")
	assert.NoError(t, err)
	assert.NotEqual(t, first, other)

	expected := strToHex("0x0c158d858a52316667d03d1d04aad51b3b542cd705215810629b78c501492fba5510e2b44cae6eb807e3e0e45d579dda058c274abcba15e5cb84636f5d1ee412")
	assert.Equal(t, expected, first)

	publicKey, err := GetEdPublicKey(first)
	assert.NoError(t, err)
	assert.Equal(t, first[32:], publicKey)

	_, err = DeriveEd25519Key(phrase, "x/44'")
	assert.Error(t, err)
}
