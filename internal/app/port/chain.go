package port

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"token_trader/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// TokenMetadata is the result of an ERC-20 introspection probe.
type TokenMetadata struct {
	Symbol   string
	Name     string
	Decimals uint8
}

// SwapCall carries the exact router call arguments for one swap. The same
// struct is used for gas estimation and for submission so the estimate always
// covers the call that is actually sent.
type SwapCall struct {
	Shape        entity.SwapShape
	Path         []common.Address
	AmountIn     *big.Int
	AmountOutMin *big.Int
	Recipient    common.Address
	Deadline     *big.Int
}

// MinedReceipt is the subset of a transaction receipt the pipeline consumes.
type MinedReceipt struct {
	Status            uint64
	GasUsed           uint64
	EffectiveGasPrice *big.Int
	BlockNumber       uint64
}

// Succeeded reports whether the receipt carries the on-chain success flag.
func (r MinedReceipt) Succeeded() bool { return r.Status == 1 }

// ChainIntegration is the per-network capability set the pipeline runs
// against. New chains implement this interface instead of duck-typing
// matching method names; the provider selects a variant by network.
type ChainIntegration interface {
	// Reads.
	GetNativeBalance(ctx context.Context, wallet common.Address) (*big.Int, error)
	GetTokenBalance(ctx context.Context, token, wallet common.Address) (*big.Int, error)
	TokenMetadata(ctx context.Context, token common.Address) (TokenMetadata, error)
	GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	LatestBlock(ctx context.Context) (uint64, error)

	// FilterTransferLogs returns the distinct contract addresses that emitted
	// Transfer events involving the wallet within [fromBlock, toBlock].
	FilterTransferLogs(ctx context.Context, wallet common.Address, fromBlock, toBlock uint64) ([]common.Address, error)

	// Gas estimation for the exact swap call arguments.
	EstimateSwapGas(ctx context.Context, from common.Address, call SwapCall) (uint64, error)

	// Writes. The private key exists only for the duration of the call.
	Approve(ctx context.Context, key *ecdsa.PrivateKey, token, spender common.Address, amount *big.Int) (common.Hash, error)
	SwapExactIn(ctx context.Context, key *ecdsa.PrivateKey, call SwapCall, gasLimit uint64) (common.Hash, error)
	SendNative(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (common.Hash, error)
	SendToken(ctx context.Context, key *ecdsa.PrivateKey, token, to common.Address, amount *big.Int) (common.Hash, error)

	// WaitMined blocks until the transaction is mined or ctx expires.
	WaitMined(ctx context.Context, txHash common.Hash) (MinedReceipt, error)

	// Definition returns the network definition associated with this integration.
	Definition() entity.NetworkDefinition
}

// ChainIntegrationProvider hands out (and caches) integrations per network.
type ChainIntegrationProvider interface {
	GetIntegration(netDef entity.NetworkDefinition) (ChainIntegration, error)
}

// NetworkDefinitionProvider resolves network definitions by identifier.
type NetworkDefinitionProvider interface {
	GetAllNetworkDefinitions() []entity.NetworkDefinition
	GetNetworkDefinitionByName(nameOrIdentifier string) (entity.NetworkDefinition, bool)
}
