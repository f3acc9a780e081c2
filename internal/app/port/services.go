package port

import (
	"context"
	"math/big"

	"token_trader/internal/domain/entity"
)

// ScannerService enumerates a wallet's ERC-20 holdings without a paid indexer.
type ScannerService interface {
	ScanAllTokens(ctx context.Context, netDef entity.NetworkDefinition, walletAddress string, includeZeroBalances bool) ([]entity.TokenBalance, error)
}

// QuoteService wraps the router's constant-product quote function.
type QuoteService interface {
	Quote(ctx context.Context, netDef entity.NetworkDefinition, fromToken, toToken string, amountIn *big.Int) (entity.Quote, error)
}

// SwapService drives the per-swap state machine. Events, when non-nil,
// receives a stage-transition stream and is closed before ExecuteSwap returns.
type SwapService interface {
	ExecuteSwap(ctx context.Context, req entity.SwapRequest, events chan<- entity.SwapEvent) (entity.SwapReceipt, error)
}

// TransferService submits native and token sends.
type TransferService interface {
	SendAsset(ctx context.Context, req entity.TransferRequest) (entity.TransferReceipt, error)
}
