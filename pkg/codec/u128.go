package codec

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"math/bits"
)

// U128Length is the size of u128 on the wire.
const U128Length = 16

var maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// U128 is an unsigned 128 bit integer. The zero value is 0.
type U128 struct {
	hi uint64
	lo uint64
}

// NewU128 returns U128 holding v.
func NewU128(v uint64) U128 {
	return U128{lo: v}
}

// U128FromParts returns U128 from high and low 64 bits.
func U128FromParts(hi, lo uint64) U128 {
	return U128{hi: hi, lo: lo}
}

// U128FromBig converts non-negative big integer which fits into 128 bits.
func U128FromBig(v *big.Int) (U128, error) {
	if v == nil {
		return U128{}, nil
	}
	if v.Sign() < 0 || v.Cmp(maxU128) > 0 {
		return U128{}, fmt.Errorf("%w: %s does not fit into u128", ErrOutOfRange, v.String())
	}
	words := new(big.Int).Set(v)
	lo := new(big.Int).And(words, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := words.Rsh(words, 64).Uint64()
	return U128{hi: hi, lo: lo}, nil
}

// ParseU128 parses decimal representation of u128. Only ASCII digits are accepted.
func ParseU128(s string) (U128, error) {
	if s == "" {
		return U128{}, fmt.Errorf("%w: empty decimal integer", ErrInvalidData)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return U128{}, fmt.Errorf("%w: %q is not a decimal integer", ErrInvalidData, s)
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return U128{}, fmt.Errorf("%w: %q is not a decimal integer", ErrInvalidData, s)
	}
	return U128FromBig(v)
}

// MustParseU128 is ParseU128 which panics on error.
func MustParseU128(s string) U128 {
	v, err := ParseU128(s)
	if err != nil {
		panic(err)
	}
	return v
}

// U128FromLittleEndian reads the first 16 bytes of b.
func U128FromLittleEndian(b []byte) U128 {
	return U128{
		lo: binary.LittleEndian.Uint64(b[:8]),
		hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

// PutLittleEndian writes u into the first 16 bytes of b.
func (u U128) PutLittleEndian(b []byte) {
	binary.LittleEndian.PutUint64(b[:8], u.lo)
	binary.LittleEndian.PutUint64(b[8:16], u.hi)
}

func (u U128) IsZero() bool {
	return u.hi == 0 && u.lo == 0
}

// Cmp returns -1, 0 or 1 depending on u being less, equal or greater than v.
func (u U128) Cmp(v U128) int {
	switch {
	case u.hi < v.hi:
		return -1
	case u.hi > v.hi:
		return 1
	case u.lo < v.lo:
		return -1
	case u.lo > v.lo:
		return 1
	default:
		return 0
	}
}

// Add returns u+v and false if the result overflows.
func (u U128) Add(v U128) (U128, bool) {
	lo, carry := bits.Add64(u.lo, v.lo, 0)
	hi, carryOut := bits.Add64(u.hi, v.hi, carry)
	return U128{hi: hi, lo: lo}, carryOut == 0
}

// Big returns new big integer holding u.
func (u U128) Big() *big.Int {
	result := new(big.Int).SetUint64(u.hi)
	result.Lsh(result, 64)
	return result.Or(result, new(big.Int).SetUint64(u.lo))
}

func (u U128) String() string {
	if u.hi == 0 {
		return fmt.Sprintf("%d", u.lo)
	}
	return u.Big().String()
}

func (u U128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *U128) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Fallback to number
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		s = n.String()
	}
	v, err := ParseU128(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}
