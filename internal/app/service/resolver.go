package service

import (
	"strings"

	"token_trader/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// ResolutionKind describes how a token reference was resolved.
type ResolutionKind int

const (
	ResolvedAddressLiteral ResolutionKind = iota
	ResolvedNative
	ResolvedConfigured
	ResolvedCustom
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolvedAddressLiteral:
		return "address_literal"
	case ResolvedNative:
		return "native"
	case ResolvedConfigured:
		return "configured"
	case ResolvedCustom:
		return "custom"
	}
	return "unknown"
}

// ResolveToken maps a symbol or address string to a checksummed on-chain
// address using the network configuration. Resolution never fails here: an
// unknown symbol is passed through as an unverified custom token and the
// first on-chain call that needs the address surfaces the problem.
//
// The native symbol resolves to the wrapped-native contract because the
// router operates on the wrapped form for native legs.
func ResolveToken(symbolOrAddress string, netDef entity.NetworkDefinition) (string, ResolutionKind) {
	input := strings.TrimSpace(symbolOrAddress)

	if common.IsHexAddress(input) {
		// No existence check at this layer.
		return common.HexToAddress(input).Hex(), ResolvedAddressLiteral
	}

	if strings.EqualFold(input, netDef.NativeSymbol) {
		return common.HexToAddress(netDef.WrappedNativeAddress).Hex(), ResolvedNative
	}

	if tok, ok := netDef.TokenBySymbol(input); ok {
		return common.HexToAddress(tok.Address).Hex(), ResolvedConfigured
	}

	return input, ResolvedCustom
}

// IsNativeLeg reports whether the token reference denotes the chain's native
// asset (by symbol or by the zero-address convention).
func IsNativeLeg(symbolOrAddress string, netDef entity.NetworkDefinition) bool {
	input := strings.TrimSpace(symbolOrAddress)
	return strings.EqualFold(input, netDef.NativeSymbol) || strings.EqualFold(input, entity.ZeroAddress)
}
