package port

import (
	"context"

	"token_trader/internal/domain/entity"
)

// TokenIndexer is the optional tier-1 scanner backend: an external indexing
// service that returns the full token list with balances in one query.
// Absence of credentials is a normal configuration state, not an error.
type TokenIndexer interface {
	Enabled() bool
	TokenBalances(ctx context.Context, chainID uint64, wallet string) ([]entity.TokenBalance, error)
}
