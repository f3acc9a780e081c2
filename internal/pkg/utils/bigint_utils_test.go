package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBigInt(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		decimals uint8
		want     string
	}{
		{"whole value", "1000000000000000000", 18, "1"},
		{"fractional value", "1234500000000000000", 18, "1.2345"},
		{"sub one", "500000000000000000", 18, "0.5"},
		{"dust", "1", 18, "0.000000000000000001"},
		{"zero decimals", "42", 0, "42"},
		{"six decimals", "1500000", 6, "1.5"},
		{"zero", "0", 18, "0"},
		{"negative", "-1250000", 6, "-1.25"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, ok := new(big.Int).SetString(tc.raw, 10)
			require.True(t, ok)
			got, err := FormatBigInt(raw, tc.decimals)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatBigIntNil(t *testing.T) {
	got, err := FormatBigInt(nil, 18)
	require.NoError(t, err)
	assert.Equal(t, "0", got)
}

func TestParseDecimalAmount(t *testing.T) {
	cases := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
	}{
		{"whole", "1", 18, "1000000000000000000"},
		{"fractional", "1.5", 18, "1500000000000000000"},
		{"leading dot", ".25", 6, "250000"},
		{"trailing zeros", "0.500", 6, "500000"},
		{"exact precision", "0.000001", 6, "1"},
		{"zero", "0", 18, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDecimalAmount(tc.amount, tc.decimals)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestParseDecimalAmountRejects(t *testing.T) {
	cases := []struct {
		name     string
		amount   string
		decimals uint8
	}{
		{"empty", "", 18},
		{"spaces only", "   ", 18},
		{"not a number", "abc", 18},
		{"two dots", "1.2.3", 18},
		{"hex", "0x10", 18},
		{"too many decimals", "0.1234567", 6},
		{"lone dot", ".", 18},
		{"exponent", "1e18", 18},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDecimalAmount(tc.amount, tc.decimals)
			assert.Error(t, err)
		})
	}
}

// Formatting then parsing must reproduce the exact raw value.
func TestFormatParseRoundTrip(t *testing.T) {
	values := []string{"1", "999", "1000000000000000000", "1234567890123456789", "5", "100000000000000000001"}
	for _, v := range values {
		raw, ok := new(big.Int).SetString(v, 10)
		require.True(t, ok)

		formatted, err := FormatBigInt(raw, 18)
		require.NoError(t, err)

		back, err := ParseDecimalAmount(formatted, 18)
		require.NoError(t, err)
		assert.Zero(t, raw.Cmp(back), "round trip changed %s to %s", raw, back)
	}
}
