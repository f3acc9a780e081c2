package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatBigInt converts a big.Int value to a human-readable string,
// considering the given number of decimals.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) (string, error) {
	if amount == nil {
		return "0", nil
	}
	if decimals == 0 {
		return amount.String(), nil
	}

	// Integer-only formatting: split into quotient and remainder so the
	// formatted string round-trips back to the exact raw value.
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(new(big.Int).Abs(amount), divisor, new(big.Int))

	sign := ""
	if amount.Sign() < 0 {
		sign = "-"
	}

	if rem.Sign() == 0 {
		return sign + quo.String(), nil
	}

	frac := fmt.Sprintf("%0*s", decimals, rem.String())
	frac = strings.TrimRight(frac, "0")
	return sign + quo.String() + "." + frac, nil
}

// ParseDecimalAmount converts a human decimal string into the raw integer
// representation for a token with the given decimals.
// Example: amount="1.5", decimals=18 => 1500000000000000000.
// More fractional digits than the token supports is an error rather than a
// silent truncation.
func ParseDecimalAmount(amount string, decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		fracPart = s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("malformed amount %q", amount)
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, fmt.Errorf("malformed amount %q", amount)
	}
	if len(fracPart) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}

	// Scale: concat integer and fraction, pad fraction to `decimals` digits.
	scaled := intPart + fracPart + strings.Repeat("0", int(decimals)-len(fracPart))
	v, ok := new(big.Int).SetString(scaled, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount %q", amount)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
