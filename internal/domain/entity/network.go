package entity

import "strings"

// ZeroAddress is the canonical zero address, used to mark native-asset legs.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// NetworkDefinition holds the configuration for a specific blockchain network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
// It is loaded once at startup and treated as read-only afterwards.
type NetworkDefinition struct {
	ChainID              uint64               `json:"chainId" yaml:"chainId"`
	Name                 string               `json:"name" yaml:"name"`
	Identifier           string               `json:"identifier" yaml:"identifier"` // unique network identifier (e.g. "sepolia", "bsc-testnet")
	NativeSymbol         string               `json:"nativeSymbol" yaml:"nativeSymbol"`
	NativeDecimals       uint8                `json:"nativeDecimals" yaml:"nativeDecimals"`
	PrimaryRPCURL        string               `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs      []string             `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL     string               `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	RouterAddress        string               `json:"routerAddress" yaml:"routerAddress"`
	FactoryAddress       string               `json:"factoryAddress" yaml:"factoryAddress"`
	WrappedNativeAddress string               `json:"wrappedNativeAddress" yaml:"wrappedNativeAddress"`
	Tokens               map[string]TokenInfo `json:"tokens" yaml:"tokens"` // keyed by lowercase symbol
	PopularTokens        []TokenInfo          `json:"popularTokens,omitempty" yaml:"popularTokens,omitempty"`
	LogScanBlocks        uint64               `json:"logScanBlocks,omitempty" yaml:"logScanBlocks,omitempty"`
}

// ExplorerTxURL builds the block-explorer link for a transaction hash.
// Returns an empty string when no explorer is configured.
func (n NetworkDefinition) ExplorerTxURL(txHash string) string {
	if n.BlockExplorerURL == "" || txHash == "" {
		return ""
	}
	return strings.TrimRight(n.BlockExplorerURL, "/") + "/tx/" + txHash
}

// TokenBySymbol performs a case-insensitive lookup in the configured token map.
func (n NetworkDefinition) TokenBySymbol(symbol string) (TokenInfo, bool) {
	t, ok := n.Tokens[strings.ToLower(symbol)]
	return t, ok
}
