package client

import (
	"context"
	"fmt"
	"testing"

	"token_trader/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestDecodeRPCErrorNil(t *testing.T) {
	assert.Nil(t, decodeRPCError("eth_call", nil))
}

func TestDecodeRPCErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want entity.ErrorKind
	}{
		{"pancake liquidity", fmt.Errorf("execution reverted: PancakeLibrary: INSUFFICIENT_LIQUIDITY"), entity.ErrNoLiquidity},
		{"uniswap underflow", fmt.Errorf("execution reverted: ds-math-sub-underflow"), entity.ErrNoLiquidity},
		{"missing pair", fmt.Errorf("no pair found for path"), entity.ErrNoLiquidity},
		{"invalid path", fmt.Errorf("execution reverted: UniswapV2Router: INVALID_PATH"), entity.ErrNoLiquidity},
		{"deadline", fmt.Errorf("execution reverted: UniswapV2Router: EXPIRED"), entity.ErrDeadlineExpired},
		{"funds", fmt.Errorf("insufficient funds for gas * price + value"), entity.ErrInsufficientFunds},
		{"plain revert", fmt.Errorf("execution reverted"), entity.ErrLikelyRevert},
		{"connection refused", fmt.Errorf("dial tcp 1.2.3.4:8545: connection refused"), entity.ErrProviderUnavailable},
		{"dns", fmt.Errorf("dial tcp: lookup rpc.example: no such host"), entity.ErrProviderUnavailable},
		{"io timeout", fmt.Errorf("read tcp: i/o timeout"), entity.ErrProviderUnavailable},
		{"unknown", fmt.Errorf("some strange node response"), entity.ErrInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := decodeRPCError("eth_call", tc.err)
			assert.Equal(t, tc.want, got.Kind)
			// The original error stays reachable for logging.
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

// Liquidity strings appear inside revert messages; the revert branch must not
// shadow the more specific classification.
func TestDecodeRPCErrorLiquidityBeatsRevert(t *testing.T) {
	err := fmt.Errorf("execution reverted: INSUFFICIENT_LIQUIDITY")
	got := decodeRPCError("getAmountsOut", err)
	assert.Equal(t, entity.ErrNoLiquidity, got.Kind)
}

func TestDecodeRPCErrorContextDeadline(t *testing.T) {
	got := decodeRPCError("eth_getBalance", context.DeadlineExceeded)
	assert.Equal(t, entity.ErrProviderUnavailable, got.Kind)

	got = decodeRPCError("eth_getBalance", fmt.Errorf("wrapped: %w", context.Canceled))
	assert.Equal(t, entity.ErrProviderUnavailable, got.Kind)
}
