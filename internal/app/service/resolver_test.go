package service

import (
	"testing"

	"token_trader/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func testNetDef() entity.NetworkDefinition {
	return entity.NetworkDefinition{
		ChainID:              56,
		Name:                 "BNB Smart Chain",
		Identifier:           "bsc",
		NativeSymbol:         "BNB",
		NativeDecimals:       18,
		BlockExplorerURL:     "https://bscscan.com",
		RouterAddress:        "0x10ED43C718714eb63d5aA57B78B54704E256024E",
		FactoryAddress:       "0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73",
		WrappedNativeAddress: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
		Tokens: map[string]entity.TokenInfo{
			"busd": {
				ChainID:  56,
				Address:  "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56",
				Name:     "BUSD Token",
				Symbol:   "BUSD",
				Decimals: 18,
			},
			"usdc": {
				ChainID:  56,
				Address:  "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d",
				Name:     "USD Coin",
				Symbol:   "USDC",
				Decimals: 6,
			},
		},
	}
}

func TestResolveTokenAddressLiteral(t *testing.T) {
	netDef := testNetDef()

	addr, kind := ResolveToken("0xe9e7cea3dedca5984780bafc599bd69add087d56", netDef)
	assert.Equal(t, ResolvedAddressLiteral, kind)
	// Checksummed, not lowercased.
	assert.Equal(t, "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", addr)
}

func TestResolveTokenNativeMapsToWrapped(t *testing.T) {
	netDef := testNetDef()

	addr, kind := ResolveToken("bnb", netDef)
	assert.Equal(t, ResolvedNative, kind)
	assert.Equal(t, netDef.WrappedNativeAddress, addr)
}

func TestResolveTokenConfiguredSymbol(t *testing.T) {
	netDef := testNetDef()

	addr, kind := ResolveToken("BUSD", netDef)
	assert.Equal(t, ResolvedConfigured, kind)
	assert.Equal(t, "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", addr)

	addr, kind = ResolveToken("  busd ", netDef)
	assert.Equal(t, ResolvedConfigured, kind)
	assert.Equal(t, "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", addr)
}

func TestResolveTokenUnknownSymbolPassesThrough(t *testing.T) {
	netDef := testNetDef()

	out, kind := ResolveToken("SHIBAMOON", netDef)
	assert.Equal(t, ResolvedCustom, kind)
	assert.Equal(t, "SHIBAMOON", out)
}

func TestIsNativeLeg(t *testing.T) {
	netDef := testNetDef()

	assert.True(t, IsNativeLeg("BNB", netDef))
	assert.True(t, IsNativeLeg("bnb", netDef))
	assert.True(t, IsNativeLeg(entity.ZeroAddress, netDef))
	assert.False(t, IsNativeLeg("BUSD", netDef))
	assert.False(t, IsNativeLeg(netDef.WrappedNativeAddress, netDef))
}
