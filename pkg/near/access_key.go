package near

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/polywrap/near-engine/pkg/codec"
)

// PermissionKind is the discriminant of AccessKeyPermission on the wire.
type PermissionKind uint8

const (
	PermissionFullAccess   PermissionKind = 0
	PermissionFunctionCall PermissionKind = 1
)

// AccessKeyPermission is either *FullAccessPermission or *FunctionCallPermission.
type AccessKeyPermission interface {
	Kind() PermissionKind
	isPermission()
}

// FullAccessPermission allows any action on the account.
type FullAccessPermission struct{}

// FunctionCallPermission restricts the key to calling MethodNames on ReceiverID.
// Empty MethodNames means any method of the receiver. Allowance nil means unlimited.
type FunctionCallPermission struct {
	Allowance   *codec.U128
	ReceiverID  string
	MethodNames []string
}

func (*FullAccessPermission) Kind() PermissionKind   { return PermissionFullAccess }
func (*FunctionCallPermission) Kind() PermissionKind { return PermissionFunctionCall }

func (*FullAccessPermission) isPermission()   {}
func (*FunctionCallPermission) isPermission() {}

// AccessKey is the credential attached to an account by AddKey.
type AccessKey struct {
	Nonce      uint64
	Permission AccessKeyPermission
}

// NewFullAccessKey returns a fresh full access key. Fresh keys always have nonce 0.
func NewFullAccessKey() AccessKey {
	return AccessKey{
		Nonce:      0,
		Permission: &FullAccessPermission{},
	}
}

// NewFunctionCallAccessKey returns a fresh function call key.
func NewFunctionCallAccessKey(receiverID string, methodNames []string, allowance *codec.U128) AccessKey {
	return AccessKey{
		Nonce: 0,
		Permission: &FunctionCallPermission{
			Allowance:   allowance,
			ReceiverID:  receiverID,
			MethodNames: methodNames,
		},
	}
}

// EncodeTo writes the nonce followed by the permission.
func (a AccessKey) EncodeTo(w *codec.Writer) error {
	w.WriteUInt64(a.Nonce)
	return EncodePermission(w, a.Permission)
}

// DecodeAccessKey reads nonce and permission.
func DecodeAccessKey(r *codec.Reader) (AccessKey, error) {
	nonce, err := r.ReadUInt64()
	if err != nil {
		return AccessKey{}, err
	}
	permission, err := DecodePermission(r)
	if err != nil {
		return AccessKey{}, err
	}
	return AccessKey{Nonce: nonce, Permission: permission}, nil
}

// EncodePermission writes the permission tag and its payload.
func EncodePermission(w *codec.Writer, permission AccessKeyPermission) error {
	switch p := permission.(type) {
	case *FullAccessPermission:
		w.WriteUInt8(uint8(PermissionFullAccess))
	case *FunctionCallPermission:
		if p == nil {
			return fmt.Errorf("%w: function call permission is nil", ErrMissingField)
		}
		w.WriteUInt8(uint8(PermissionFunctionCall))
		w.WriteOptionFlag(p.Allowance != nil)
		if p.Allowance != nil {
			w.WriteUInt128(*p.Allowance)
		}
		w.WriteString(p.ReceiverID)
		w.WriteStrings(p.MethodNames)
	case nil:
		return fmt.Errorf("%w: access key permission is not set", ErrMissingField)
	default:
		return fmt.Errorf("unsupported access key permission %T", permission)
	}
	return nil
}

// DecodePermission reads the permission tag and its payload.
func DecodePermission(r *codec.Reader) (AccessKeyPermission, error) {
	tag, err := r.ReadUInt8()
	if err != nil {
		return nil, err
	}
	switch PermissionKind(tag) {
	case PermissionFullAccess:
		return &FullAccessPermission{}, nil
	case PermissionFunctionCall:
		permission := &FunctionCallPermission{}
		present, err := r.ReadOptionFlag()
		if err != nil {
			return nil, err
		}
		if present {
			allowance, err := r.ReadUInt128()
			if err != nil {
				return nil, err
			}
			permission.Allowance = &allowance
		}
		if permission.ReceiverID, err = r.ReadString(); err != nil {
			return nil, err
		}
		if permission.MethodNames, err = r.ReadStrings(); err != nil {
			return nil, err
		}
		return permission, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPermissionTag, tag)
	}
}

type accessKeyPermissionJSON struct {
	IsFullAccess bool        `json:"isFullAccess,omitempty"`
	ReceiverID   string      `json:"receiverId,omitempty"`
	MethodNames  []string    `json:"methodNames,omitempty"`
	Allowance    *codec.U128 `json:"allowance,omitempty"`
}

type accessKeyJSON struct {
	Nonce      codec.UInt64Str          `json:"nonce"`
	Permission *accessKeyPermissionJSON `json:"permission"`
}

func (a AccessKey) MarshalJSON() ([]byte, error) {
	permission := &accessKeyPermissionJSON{}
	switch p := a.Permission.(type) {
	case *FullAccessPermission:
		permission.IsFullAccess = true
	case *FunctionCallPermission:
		if p == nil {
			return nil, fmt.Errorf("%w: function call permission is nil", ErrMissingField)
		}
		permission.ReceiverID = p.ReceiverID
		permission.MethodNames = p.MethodNames
		permission.Allowance = p.Allowance
	default:
		return nil, fmt.Errorf("%w: access key permission is not set", ErrMissingField)
	}
	return json.Marshal(&accessKeyJSON{
		Nonce:      codec.UInt64Str(a.Nonce),
		Permission: permission,
	})
}

func (a *AccessKey) UnmarshalJSON(b []byte) error {
	decoded := &accessKeyJSON{}
	if err := json.Unmarshal(b, decoded); err != nil {
		return err
	}
	if decoded.Permission == nil {
		return errors.New("access key permission is required")
	}
	a.Nonce = uint64(decoded.Nonce)
	if decoded.Permission.IsFullAccess {
		a.Permission = &FullAccessPermission{}
		return nil
	}
	a.Permission = &FunctionCallPermission{
		Allowance:   decoded.Permission.Allowance,
		ReceiverID:  decoded.Permission.ReceiverID,
		MethodNames: decoded.Permission.MethodNames,
	}
	return nil
}
