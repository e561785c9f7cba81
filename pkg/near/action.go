package near

import (
	"fmt"

	"github.com/polywrap/near-engine/pkg/codec"
)

// ActionKind is the discriminant of Action on the wire.
type ActionKind uint8

const (
	ActionCreateAccount ActionKind = iota
	ActionDeployContract
	ActionFunctionCall
	ActionTransfer
	ActionStake
	ActionAddKey
	ActionDeleteKey
	ActionDeleteAccount
)

var actionKindNames = [...]string{
	ActionCreateAccount:  "createAccount",
	ActionDeployContract: "deployContract",
	ActionFunctionCall:   "functionCall",
	ActionTransfer:       "transfer",
	ActionStake:          "stake",
	ActionAddKey:         "addKey",
	ActionDeleteKey:      "deleteKey",
	ActionDeleteAccount:  "deleteAccount",
}

func (k ActionKind) String() string {
	if int(k) < len(actionKindNames) {
		return actionKindNames[k]
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// ParseActionKind returns the kind from its name.
func ParseActionKind(name string) (ActionKind, error) {
	for i, n := range actionKindNames {
		if n == name {
			return ActionKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownActionTag, name)
}

// Action is one operation of a transaction. Implementations are the eight pointer types below.
type Action interface {
	Kind() ActionKind
	isAction()
}

type CreateAccount struct{}

type DeployContract struct {
	Code []byte
}

type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    codec.U128
}

type Transfer struct {
	Deposit codec.U128
}

type Stake struct {
	Stake     codec.U128
	PublicKey PublicKey
}

type AddKey struct {
	PublicKey PublicKey
	AccessKey AccessKey
}

type DeleteKey struct {
	PublicKey PublicKey
}

type DeleteAccount struct {
	BeneficiaryID string
}

func (*CreateAccount) Kind() ActionKind  { return ActionCreateAccount }
func (*DeployContract) Kind() ActionKind { return ActionDeployContract }
func (*FunctionCall) Kind() ActionKind   { return ActionFunctionCall }
func (*Transfer) Kind() ActionKind       { return ActionTransfer }
func (*Stake) Kind() ActionKind          { return ActionStake }
func (*AddKey) Kind() ActionKind         { return ActionAddKey }
func (*DeleteKey) Kind() ActionKind      { return ActionDeleteKey }
func (*DeleteAccount) Kind() ActionKind  { return ActionDeleteAccount }

func (*CreateAccount) isAction()  {}
func (*DeployContract) isAction() {}
func (*FunctionCall) isAction()   {}
func (*Transfer) isAction()       {}
func (*Stake) isAction()          {}
func (*AddKey) isAction()         {}
func (*DeleteKey) isAction()      {}
func (*DeleteAccount) isAction()  {}

func NewCreateAccount() *CreateAccount {
	return &CreateAccount{}
}

func NewDeployContract(code []byte) *DeployContract {
	return &DeployContract{Code: code}
}

func NewFunctionCall(methodName string, args []byte, gas uint64, deposit codec.U128) *FunctionCall {
	return &FunctionCall{
		MethodName: methodName,
		Args:       args,
		Gas:        gas,
		Deposit:    deposit,
	}
}

func NewTransfer(deposit codec.U128) *Transfer {
	return &Transfer{Deposit: deposit}
}

func NewStake(stake codec.U128, publicKey PublicKey) *Stake {
	return &Stake{Stake: stake, PublicKey: publicKey}
}

func NewAddKey(publicKey PublicKey, accessKey AccessKey) *AddKey {
	return &AddKey{PublicKey: publicKey, AccessKey: accessKey}
}

func NewDeleteKey(publicKey PublicKey) *DeleteKey {
	return &DeleteKey{PublicKey: publicKey}
}

func NewDeleteAccount(beneficiaryID string) *DeleteAccount {
	return &DeleteAccount{BeneficiaryID: beneficiaryID}
}

// EncodeAction writes the action discriminant followed by the variant payload.
func EncodeAction(w *codec.Writer, action Action) error {
	if isNilAction(action) {
		return fmt.Errorf("%w: action is nil", ErrMissingField)
	}
	w.WriteUInt8(uint8(action.Kind()))
	switch a := action.(type) {
	case *CreateAccount:
	case *DeployContract:
		w.WriteBytes(a.Code)
	case *FunctionCall:
		w.WriteString(a.MethodName)
		w.WriteBytes(a.Args)
		w.WriteUInt64(a.Gas)
		w.WriteUInt128(a.Deposit)
	case *Transfer:
		w.WriteUInt128(a.Deposit)
	case *Stake:
		w.WriteUInt128(a.Stake)
		return a.PublicKey.EncodeTo(w)
	case *AddKey:
		if err := a.PublicKey.EncodeTo(w); err != nil {
			return err
		}
		return a.AccessKey.EncodeTo(w)
	case *DeleteKey:
		return a.PublicKey.EncodeTo(w)
	case *DeleteAccount:
		w.WriteString(a.BeneficiaryID)
	default:
		return fmt.Errorf("unsupported action %T", action)
	}
	return nil
}

// isNilAction reports whether action is nil or a nil pointer of one of the variants.
func isNilAction(action Action) bool {
	switch a := action.(type) {
	case nil:
		return true
	case *CreateAccount:
		return a == nil
	case *DeployContract:
		return a == nil
	case *FunctionCall:
		return a == nil
	case *Transfer:
		return a == nil
	case *Stake:
		return a == nil
	case *AddKey:
		return a == nil
	case *DeleteKey:
		return a == nil
	case *DeleteAccount:
		return a == nil
	default:
		return false
	}
}

// DecodeAction reads the discriminant and decodes exactly one variant.
func DecodeAction(r *codec.Reader) (Action, error) {
	tag, err := r.ReadUInt8()
	if err != nil {
		return nil, err
	}
	switch ActionKind(tag) {
	case ActionCreateAccount:
		return &CreateAccount{}, nil
	case ActionDeployContract:
		code, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return &DeployContract{Code: code}, nil
	case ActionFunctionCall:
		return decodeFunctionCall(r)
	case ActionTransfer:
		deposit, err := r.ReadUInt128()
		if err != nil {
			return nil, err
		}
		return &Transfer{Deposit: deposit}, nil
	case ActionStake:
		stake, err := r.ReadUInt128()
		if err != nil {
			return nil, err
		}
		publicKey, err := DecodePublicKey(r)
		if err != nil {
			return nil, err
		}
		return &Stake{Stake: stake, PublicKey: publicKey}, nil
	case ActionAddKey:
		publicKey, err := DecodePublicKey(r)
		if err != nil {
			return nil, err
		}
		accessKey, err := DecodeAccessKey(r)
		if err != nil {
			return nil, err
		}
		return &AddKey{PublicKey: publicKey, AccessKey: accessKey}, nil
	case ActionDeleteKey:
		publicKey, err := DecodePublicKey(r)
		if err != nil {
			return nil, err
		}
		return &DeleteKey{PublicKey: publicKey}, nil
	case ActionDeleteAccount:
		beneficiaryID, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return &DeleteAccount{BeneficiaryID: beneficiaryID}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownActionTag, tag)
	}
}

func decodeFunctionCall(r *codec.Reader) (*FunctionCall, error) {
	methodName, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	args, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	gas, err := r.ReadUInt64()
	if err != nil {
		return nil, err
	}
	deposit, err := r.ReadUInt128()
	if err != nil {
		return nil, err
	}
	return &FunctionCall{
		MethodName: methodName,
		Args:       args,
		Gas:        gas,
		Deposit:    deposit,
	}, nil
}
