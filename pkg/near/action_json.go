package near

import (
	"fmt"

	"github.com/polywrap/near-engine/pkg/codec"
)

// actionJSON is the flat JSON form of every action variant, discriminated by type.
type actionJSON struct {
	Type          string           `json:"type"`
	Code          []byte           `json:"code,omitempty"`
	MethodName    string           `json:"methodName,omitempty"`
	Args          []byte           `json:"args,omitempty"`
	Gas           *codec.UInt64Str `json:"gas,omitempty"`
	Deposit       *codec.U128      `json:"deposit,omitempty"`
	Stake         *codec.U128      `json:"stake,omitempty"`
	PublicKey     *PublicKey       `json:"publicKey,omitempty"`
	AccessKey     *AccessKey       `json:"accessKey,omitempty"`
	BeneficiaryID string           `json:"beneficiaryId,omitempty"`
}

func actionToJSON(action Action) (*actionJSON, error) {
	if isNilAction(action) {
		return nil, fmt.Errorf("%w: action is nil", ErrMissingField)
	}
	result := &actionJSON{Type: action.Kind().String()}
	switch a := action.(type) {
	case *CreateAccount:
	case *DeployContract:
		result.Code = a.Code
	case *FunctionCall:
		gas := codec.UInt64Str(a.Gas)
		deposit := a.Deposit
		result.MethodName = a.MethodName
		result.Args = a.Args
		result.Gas = &gas
		result.Deposit = &deposit
	case *Transfer:
		deposit := a.Deposit
		result.Deposit = &deposit
	case *Stake:
		stake := a.Stake
		publicKey := a.PublicKey
		result.Stake = &stake
		result.PublicKey = &publicKey
	case *AddKey:
		publicKey := a.PublicKey
		accessKey := a.AccessKey
		result.PublicKey = &publicKey
		result.AccessKey = &accessKey
	case *DeleteKey:
		publicKey := a.PublicKey
		result.PublicKey = &publicKey
	case *DeleteAccount:
		result.BeneficiaryID = a.BeneficiaryID
	default:
		return nil, fmt.Errorf("unsupported action %T", action)
	}
	return result, nil
}

func actionFromJSON(j *actionJSON) (Action, error) {
	kind, err := ParseActionKind(j.Type)
	if err != nil {
		return nil, err
	}
	required := func(present bool, field string) error {
		if !present {
			return fmt.Errorf("%w: %s action requires %s", ErrMissingField, kind, field)
		}
		return nil
	}
	switch kind {
	case ActionCreateAccount:
		return NewCreateAccount(), nil
	case ActionDeployContract:
		return NewDeployContract(j.Code), nil
	case ActionFunctionCall:
		action := NewFunctionCall(j.MethodName, j.Args, 0, codec.U128{})
		if j.Gas != nil {
			action.Gas = uint64(*j.Gas)
		}
		if j.Deposit != nil {
			action.Deposit = *j.Deposit
		}
		return action, nil
	case ActionTransfer:
		if err := required(j.Deposit != nil, "deposit"); err != nil {
			return nil, err
		}
		return NewTransfer(*j.Deposit), nil
	case ActionStake:
		if err := required(j.Stake != nil, "stake"); err != nil {
			return nil, err
		}
		if err := required(j.PublicKey != nil, "publicKey"); err != nil {
			return nil, err
		}
		return NewStake(*j.Stake, *j.PublicKey), nil
	case ActionAddKey:
		if err := required(j.PublicKey != nil, "publicKey"); err != nil {
			return nil, err
		}
		if err := required(j.AccessKey != nil, "accessKey"); err != nil {
			return nil, err
		}
		return NewAddKey(*j.PublicKey, *j.AccessKey), nil
	case ActionDeleteKey:
		if err := required(j.PublicKey != nil, "publicKey"); err != nil {
			return nil, err
		}
		return NewDeleteKey(*j.PublicKey), nil
	default:
		return NewDeleteAccount(j.BeneficiaryID), nil
	}
}
