package near

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polywrap/near-engine/pkg/codec"
)

func allActions() []Action {
	allowance := codec.NewU128(1)
	return []Action{
		NewCreateAccount(),
		NewDeployContract([]byte{0, 'a', 's', 'm'}),
		NewFunctionCall("set", []byte(`{"a":1}`), 30_000_000_000_000, codec.NewU128(5)),
		NewTransfer(codec.MustParseU128("1000000000000000000000")),
		NewStake(codec.U128FromParts(1, 2), testKey()),
		NewAddKey(testKey(), NewFunctionCallAccessKey("contract.near", []string{"a", "b"}, &allowance)),
		NewDeleteKey(testKey()),
		NewDeleteAccount("carol.near"),
	}
}

func TestActionKinds(t *testing.T) {
	for i, action := range allActions() {
		assert.Equal(t, ActionKind(i), action.Kind())

		kind, err := ParseActionKind(action.Kind().String())
		assert.NoError(t, err)
		assert.Equal(t, action.Kind(), kind)
	}
	_, err := ParseActionKind("signDelegate")
	assert.ErrorIs(t, err, ErrUnknownActionTag)
	assert.Equal(t, "unknown(8)", ActionKind(8).String())
}

func TestActionRoundTrip(t *testing.T) {
	for _, action := range allActions() {
		t.Run(action.Kind().String(), func(t *testing.T) {
			encoded, err := encodeWith(func(w *codec.Writer) error {
				return EncodeAction(w, action)
			})
			require.NoError(t, err)
			assert.Equal(t, uint8(action.Kind()), encoded[0])

			reader := codec.NewReader(encoded)
			decoded, err := DecodeAction(reader)
			require.NoError(t, err)
			assert.Equal(t, action, decoded)
			assert.False(t, reader.HasUnreadBytes())
		})
	}
}

func TestActionEncoding(t *testing.T) {
	encoded, err := encodeWith(func(w *codec.Writer) error {
		return EncodeAction(w, NewTransfer(codec.MustParseU128("1000000000000000000000")))
	})
	require.NoError(t, err)
	assert.Equal(t, "03"+"0000a0dec5adc9353600000000000000", codec.Hex(encoded).String())

	encoded, err = encodeWith(func(w *codec.Writer) error {
		return EncodeAction(w, NewDeleteAccount("x"))
	})
	require.NoError(t, err)
	assert.Equal(t, "07"+"01000000"+"78", codec.Hex(encoded).String())

	encoded, err = encodeWith(func(w *codec.Writer) error {
		return EncodeAction(w, NewCreateAccount())
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, encoded)
}

func TestDecodeActionTags(t *testing.T) {
	for tag := 0; tag < 256; tag++ {
		_, err := DecodeAction(codec.NewReader([]byte{byte(tag)}))
		switch {
		case tag == int(ActionCreateAccount):
			assert.NoError(t, err)
		case tag <= int(ActionDeleteAccount):
			// known tag with missing payload
			assert.ErrorIs(t, err, codec.ErrBufferUnderflow, "tag %d", tag)
		default:
			assert.ErrorIs(t, err, ErrUnknownActionTag, "tag %d", tag)
		}
	}
}

func TestEncodeActionErrors(t *testing.T) {
	_, err := encodeWith(func(w *codec.Writer) error {
		return EncodeAction(w, nil)
	})
	assert.ErrorIs(t, err, ErrMissingField)

	nilActions := []Action{
		(*CreateAccount)(nil),
		(*DeployContract)(nil),
		(*FunctionCall)(nil),
		(*Transfer)(nil),
		(*Stake)(nil),
		(*AddKey)(nil),
		(*DeleteKey)(nil),
		(*DeleteAccount)(nil),
	}
	for _, action := range nilActions {
		_, err = encodeWith(func(w *codec.Writer) error {
			return EncodeAction(w, action)
		})
		assert.ErrorIs(t, err, ErrMissingField, "%T", action)

		_, err = actionToJSON(action)
		assert.ErrorIs(t, err, ErrMissingField, "%T", action)
	}

	_, err = testTransaction((*Transfer)(nil)).Encode()
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = encodeWith(func(w *codec.Writer) error {
		return EncodeAction(w, NewDeleteKey(PublicKey{KeyType: 3, Data: nil}))
	})
	assert.ErrorIs(t, err, ErrUnsupportedKeyType)
}

func TestActionJSONRequiredFields(t *testing.T) {
	cases := []*actionJSON{
		{Type: "transfer"},
		{Type: "stake", Stake: &codec.U128{}},
		{Type: "addKey"},
		{Type: "deleteKey"},
	}
	for _, testCase := range cases {
		_, err := actionFromJSON(testCase)
		assert.ErrorIs(t, err, ErrMissingField, testCase.Type)
	}

	_, err := actionFromJSON(&actionJSON{Type: "unknown"})
	assert.ErrorIs(t, err, ErrUnknownActionTag)

	for _, action := range allActions() {
		converted, err := actionToJSON(action)
		require.NoError(t, err)
		back, err := actionFromJSON(converted)
		require.NoError(t, err)
		assert.Equal(t, action, back)
	}
}

func TestActionJSONEmptyStrings(t *testing.T) {
	tx := testTransaction(
		NewFunctionCall("", nil, 1, codec.U128{}),
		NewDeleteAccount(""),
	)
	encoded, err := tx.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTransaction(encoded)
	require.NoError(t, err)
	b, err := json.Marshal(decoded)
	require.NoError(t, err)

	fromJSON := &Transaction{}
	require.NoError(t, json.Unmarshal(b, fromJSON))
	reencoded, err := fromJSON.Encode()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)

	action, err := actionFromJSON(&actionJSON{Type: "functionCall"})
	require.NoError(t, err)
	assert.Equal(t, NewFunctionCall("", nil, 0, codec.U128{}), action)

	action, err = actionFromJSON(&actionJSON{Type: "deleteAccount"})
	require.NoError(t, err)
	assert.Equal(t, NewDeleteAccount(""), action)
}
