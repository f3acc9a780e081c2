package httpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL, apiKey string) *IndexerClient {
	return NewIndexerClient(baseURL, apiKey, time.Second, zap.NewNop()).(*IndexerClient)
}

func TestEnabled(t *testing.T) {
	assert.True(t, newTestClient("https://indexer.example.com", "key").Enabled())
	assert.False(t, newTestClient("https://indexer.example.com", "").Enabled())
	assert.False(t, newTestClient("", "key").Enabled())
}

func TestMapRows(t *testing.T) {
	c := newTestClient("https://indexer.example.com", "key")

	rows := []indexerTokenRow{
		{ContractAddress: "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", Symbol: "BUSD", Name: "BUSD Token", Decimals: 18, Balance: "1500000000000000000"},
		{ContractAddress: "0x55d398326f99059fF775485246999027B3197955", Symbol: "USDT", Decimals: 18, Balance: "not-a-number"},
		{ContractAddress: "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", Symbol: "USDC", Decimals: 6, Balance: "0"},
	}

	balances := c.mapRows(rows)
	// Malformed rows are dropped, zero balances are kept (filtering is the
	// scanner's decision).
	require.Len(t, balances, 2)
	assert.Equal(t, "BUSD", balances[0].Symbol)
	assert.Equal(t, "1.5", balances[0].Formatted)
	assert.Equal(t, "USDC", balances[1].Symbol)
	assert.True(t, balances[1].IsZero())
}
