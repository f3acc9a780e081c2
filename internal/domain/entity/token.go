package entity

import "math/big"

// TokenInfo holds the details of a specific token.
type TokenInfo struct {
	ChainID  uint64 `json:"chainId,omitempty" yaml:"chainId,omitempty"`
	Address  string `json:"address" yaml:"address"`
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// TokenBalance represents the amount of a specific token held by a wallet.
// Raw is the exact on-chain integer and is the source of truth; Formatted is
// a display derivation obtained by shifting the decimal point by Decimals.
type TokenBalance struct {
	Address   string   `json:"address"`
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Decimals  uint8    `json:"decimals"`
	Raw       *big.Int `json:"-"`
	RawString string   `json:"raw"`
	Formatted string   `json:"formatted"`
}

// IsZero reports whether the raw balance is zero (or unset).
func (b TokenBalance) IsZero() bool {
	return b.Raw == nil || b.Raw.Sign() == 0
}
