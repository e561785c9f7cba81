package near

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/polywrap/near-engine/pkg/codec"
)

// NearNominationExp is the number of decimal places of yoctoNEAR in one NEAR.
const NearNominationExp = 24

// ParseNearAmount converts human readable NEAR amount into yoctoNEAR.
// Commas are ignored and surrounding spaces trimmed, so "1,000.5" is accepted.
func ParseNearAmount(amount string) (string, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(amount, ",", ""))
	parts := strings.Split(cleaned, ".")
	whole := parts[0]
	fraction := ""
	if len(parts) > 1 {
		fraction = parts[1]
	}
	if len(parts) > 2 || len(fraction) > NearNominationExp {
		return "", fmt.Errorf("%w: cannot parse %q as NEAR amount", ErrInvalidAmount, amount)
	}
	if whole == "" && fraction == "" {
		return "", fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	if !isDigits(whole) || !isDigits(fraction) {
		return "", fmt.Errorf("%w: %q contains non digit characters", ErrInvalidAmount, amount)
	}
	result := strings.TrimLeft(whole+fraction+strings.Repeat("0", NearNominationExp-len(fraction)), "0")
	if result == "" {
		return "0", nil
	}
	return result, nil
}

// ParseNearAmountU128 is ParseNearAmount returning the yoctoNEAR value.
func ParseNearAmountU128(amount string) (codec.U128, error) {
	parsed, err := ParseNearAmount(amount)
	if err != nil {
		return codec.U128{}, err
	}
	value, err := codec.ParseU128(parsed)
	if err != nil {
		return codec.U128{}, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	return value, nil
}

// FormatNearAmount converts yoctoNEAR into NEAR with thousands separators in the whole part
// and without trailing zeroes in the fraction.
func FormatNearAmount(yocto string) (string, error) {
	trimmed := strings.TrimSpace(yocto)
	if trimmed == "" || !isDigits(trimmed) {
		return "", fmt.Errorf("%w: %q is not a yoctoNEAR amount", ErrInvalidAmount, yocto)
	}
	value, _ := new(big.Int).SetString(trimmed, 10)
	balance := value.String()

	whole := "0"
	if len(balance) > NearNominationExp {
		whole = balance[:len(balance)-NearNominationExp]
	}
	fraction := balance
	if len(balance) > NearNominationExp {
		fraction = balance[len(balance)-NearNominationExp:]
	}
	fraction = strings.Repeat("0", NearNominationExp-len(fraction)) + fraction
	fraction = strings.TrimRight(fraction, "0")

	result := formatWithCommas(whole)
	if fraction == "" {
		return result, nil
	}
	return result + "." + fraction, nil
}

// FormatNearAmountU128 formats yoctoNEAR value.
func FormatNearAmountU128(yocto codec.U128) string {
	// decimal form of U128 is always valid input
	result, _ := FormatNearAmount(yocto.String())
	return result
}

func formatWithCommas(value string) string {
	if len(value) <= 3 {
		return value
	}
	var sb strings.Builder
	head := len(value) % 3
	if head > 0 {
		sb.WriteString(value[:head])
	}
	for i := head; i < len(value); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(value[i : i+3])
	}
	return sb.String()
}

func isDigits(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
