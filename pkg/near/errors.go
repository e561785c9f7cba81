package near

import "errors"

var (
	// ErrUnknownActionTag represents action discriminant outside of the known variants.
	ErrUnknownActionTag = errors.New("unknown action tag")
	// ErrUnknownPermissionTag represents access key permission discriminant outside of the known variants.
	ErrUnknownPermissionTag = errors.New("unknown access key permission tag")
	// ErrUnsupportedKeyType represents key type without defined byte length.
	ErrUnsupportedKeyType = errors.New("unsupported key type")
	// ErrInvalidKeyLength represents key or signature data not matching the key type.
	ErrInvalidKeyLength = errors.New("invalid key length")
	// ErrTruncatedInput represents transaction bytes ending before the transaction is complete.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrTrailingBytes represents bytes left after a complete transaction.
	ErrTrailingBytes = errors.New("trailing bytes after transaction")
	// ErrMissingField represents nil action or permission passed for encoding.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidAmount represents NEAR amount string which cannot be converted.
	ErrInvalidAmount = errors.New("invalid NEAR amount")
	// ErrNoActions is returned by Validate for transactions which cannot be broadcast.
	ErrNoActions = errors.New("transaction has no actions")
)
