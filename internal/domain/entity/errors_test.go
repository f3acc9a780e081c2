package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := NewTradeError(ErrNoLiquidity, "no pair", nil)
	assert.Equal(t, ErrNoLiquidity, KindOf(err))

	wrapped := fmt.Errorf("quote failed: %w", err)
	assert.Equal(t, ErrNoLiquidity, KindOf(wrapped))

	assert.Equal(t, ErrInternal, KindOf(fmt.Errorf("plain error")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestAsTradeError(t *testing.T) {
	inner := NewTradeError(ErrPendingTimeout, "stuck", nil)
	inner.TxHash = "0xabc"
	wrapped := fmt.Errorf("swap: %w", inner)

	te, ok := AsTradeError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "0xabc", te.TxHash)

	_, ok = AsTradeError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestRetryable(t *testing.T) {
	assert.True(t, ErrDeadlineExpired.Retryable())
	assert.True(t, ErrProviderUnavailable.Retryable())

	// PendingTimeout retries risk nonce reuse; never retryable.
	assert.False(t, ErrPendingTimeout.Retryable())
	assert.False(t, ErrInsufficientFunds.Retryable())
	assert.False(t, ErrLikelyRevert.Retryable())
	// A missing pair does not fix itself on retry.
	assert.False(t, ErrNoLiquidity.Retryable())
}

func TestTradeErrorMessageAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := NewTradeError(ErrProviderUnavailable, "rpc down", cause)
	assert.Contains(t, err.Error(), "ProviderUnavailable")
	assert.Contains(t, err.Error(), "rpc down")
	assert.Equal(t, cause, err.Unwrap())
}
