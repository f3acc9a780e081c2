package client

import (
	"context"
	"errors"
	"strings"

	"token_trader/internal/domain/entity"
)

// decodeRPCError maps a raw node/provider error to a typed TradeError. This is
// the single place where provider message heuristics live; everything above
// this layer matches on entity.ErrorKind structurally.
func decodeRPCError(op string, err error) *entity.TradeError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return entity.NewTradeError(entity.ErrProviderUnavailable, op+" timed out", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient_liquidity"),
		strings.Contains(msg, "insufficient liquidity"),
		strings.Contains(msg, "ds-math-sub-underflow"),
		strings.Contains(msg, "no pair"),
		strings.Contains(msg, "invalid_path"):
		return entity.NewTradeError(entity.ErrNoLiquidity, "router has no liquidity for this pair", err)
	case strings.Contains(msg, "expired"):
		return entity.NewTradeError(entity.ErrDeadlineExpired, "router deadline expired", err)
	case strings.Contains(msg, "insufficient funds"):
		return entity.NewTradeError(entity.ErrInsufficientFunds, "account cannot cover value plus gas", err)
	case strings.Contains(msg, "execution reverted"), strings.Contains(msg, "always failing transaction"):
		return entity.NewTradeError(entity.ErrLikelyRevert, op+" reverted", err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "eof"),
		strings.Contains(msg, "connection reset"):
		return entity.NewTradeError(entity.ErrProviderUnavailable, "RPC endpoint unreachable", err)
	}
	return entity.NewTradeError(entity.ErrInternal, op+" failed", err)
}
