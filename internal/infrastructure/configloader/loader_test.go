package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
server:
  port: "9090"
logging:
  level: "debug"
indexer:
  baseURL: "https://indexer.example.com"
  apiKey: "${TEST_INDEXER_KEY}"
swap:
  deadlineMinutes: 15
networks:
  - chainId: 56
    name: "BNB Smart Chain"
    identifier: "bsc"
    nativeSymbol: "BNB"
    primaryRpcUrl: "https://bsc-dataseed.binance.org"
    routerAddress: "0x10ED43C718714eb63d5aA57B78B54704E256024E"
    factoryAddress: "0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73"
    wrappedNativeAddress: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"
    tokens:
      busd:
        chainId: 56
        address: "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56"
        symbol: "BUSD"
        decimals: 18
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	t.Setenv("TEST_INDEXER_KEY", "sekret")

	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "sekret", cfg.Indexer.APIKey)
	assert.Equal(t, 15, cfg.Swap.DeadlineMinutes)

	require.Len(t, cfg.Networks, 1)
	n := cfg.Networks[0]
	assert.Equal(t, uint64(56), n.ChainID)
	// Unset nativeDecimals defaults to 18.
	assert.Equal(t, uint8(18), n.NativeDecimals)
	tok, ok := n.TokenBySymbol("BUSD")
	require.True(t, ok)
	assert.Equal(t, uint8(18), tok.Decimals)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Swap.GasMarginPercent)
	assert.Equal(t, 90, cfg.Swap.ConfirmTimeoutSeconds)
	assert.Equal(t, uint64(10000), cfg.Scanner.DefaultLogScanBlocks)
	assert.Equal(t, 10, cfg.Scanner.MaxConcurrentProbes)
	assert.Equal(t, "WALLET_STORE_SECRET", cfg.WalletStore.SecretEnv)
	assert.Equal(t, 10, cfg.Performance.RPCCallTimeoutSeconds)
}

func TestLoadRefusesMalformedRouterAddress(t *testing.T) {
	bad := `
networks:
  - chainId: 56
    identifier: "bsc"
    nativeSymbol: "BNB"
    primaryRpcUrl: "https://bsc-dataseed.binance.org"
    routerAddress: "not-an-address"
    factoryAddress: "0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73"
    wrappedNativeAddress: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"
`
	_, err := Load(writeConfig(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "routerAddress")
}

func TestLoadRefusesMalformedTokenAddress(t *testing.T) {
	bad := `
networks:
  - chainId: 56
    identifier: "bsc"
    nativeSymbol: "BNB"
    primaryRpcUrl: "https://bsc-dataseed.binance.org"
    routerAddress: "0x10ED43C718714eb63d5aA57B78B54704E256024E"
    factoryAddress: "0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73"
    wrappedNativeAddress: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"
    tokens:
      busd:
        address: "0xZZ"
        symbol: "BUSD"
`
	_, err := Load(writeConfig(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "busd")
}

func TestLoadRefusesMissingIdentifier(t *testing.T) {
	bad := `
networks:
  - chainId: 56
    nativeSymbol: "BNB"
    routerAddress: "0x10ED43C718714eb63d5aA57B78B54704E256024E"
    factoryAddress: "0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73"
    wrappedNativeAddress: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"
`
	_, err := Load(writeConfig(t, bad))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
