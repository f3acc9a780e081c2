package client

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

const (
	nativeTransferGas = uint64(21000)
	receiptPollDelay  = 2 * time.Second
)

// EVMClient implements port.ChainIntegration for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	router         common.Address
	chainID        *big.Int
	rpcCallTimeout time.Duration
	probeLimiter   *rate.Limiter
}

// NewEVMClient dials the network's primary RPC endpoint, falling back in
// order, and returns a ready integration.
func NewEVMClient(netDef entity.NetworkDefinition, connectionTimeout, rpcCallTimeout time.Duration, probeRatePerSecond int) (port.ChainIntegration, error) {
	initParsedABIs()
	rpcURLs := append([]string{netDef.PrimaryRPCURL}, netDef.FallbackRPCURLs...)
	var lastErr error

	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		ec, err := ethclient.DialContext(ctx, rpcURL)
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
			continue
		}
		limit := rate.Limit(probeRatePerSecond)
		if probeRatePerSecond <= 0 {
			limit = rate.Inf
		}
		return &EVMClient{
			ethClient:      ec,
			netDef:         netDef,
			router:         common.HexToAddress(netDef.RouterAddress),
			chainID:        new(big.Int).SetUint64(netDef.ChainID),
			rpcCallTimeout: rpcCallTimeout,
			probeLimiter:   rate.NewLimiter(limit, probeRatePerSecond+1),
		}, nil
	}
	return nil, decodeRPCError("dial", fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr))
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

func (c *EVMClient) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.rpcCallTimeout)
}

// GetNativeBalance fetches the native currency balance for a wallet.
func (c *EVMClient) GetNativeBalance(ctx context.Context, wallet common.Address) (*big.Int, error) {
	callCtx, cancel := c.callCtx(ctx)
	defer cancel()
	bal, err := c.ethClient.BalanceAt(callCtx, wallet, nil)
	if err != nil {
		return nil, decodeRPCError("eth_getBalance", err)
	}
	return bal, nil
}

// GetTokenBalance fetches the ERC-20 balance of a token for a wallet.
func (c *EVMClient) GetTokenBalance(ctx context.Context, token, wallet common.Address) (*big.Int, error) {
	if err := c.probeLimiter.Wait(ctx); err != nil {
		return nil, decodeRPCError("balanceOf", err)
	}
	out, err := c.viewCall(ctx, token, parsedERC20ABI, "balanceOf", wallet)
	if err != nil {
		return nil, err
	}
	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, decodeRPCError("balanceOf", fmt.Errorf("unexpected balanceOf return type %T", out[0]))
	}
	return bal, nil
}

// TokenMetadata probes decimals/symbol/name in a single JSON-RPC batch.
// A contract that fails the decimals or symbol call does not look like an
// ERC-20 and yields an error.
func (c *EVMClient) TokenMetadata(ctx context.Context, token common.Address) (port.TokenMetadata, error) {
	if err := c.probeLimiter.Wait(ctx); err != nil {
		return port.TokenMetadata{}, decodeRPCError("token metadata", err)
	}

	methods := []string{"decimals", "symbol", "name"}
	batch := make([]rpc.BatchElem, len(methods))
	results := make([]string, len(methods)) // hex-encoded return data

	for i, m := range methods {
		data, err := parsedERC20ABI.Pack(m)
		if err != nil {
			return port.TokenMetadata{}, fmt.Errorf("failed to pack %s call: %w", m, err)
		}
		batch[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []interface{}{
				map[string]interface{}{"to": token, "data": "0x" + common.Bytes2Hex(data)},
				"latest",
			},
			Result: &results[i],
		}
	}

	callCtx, cancel := c.callCtx(ctx)
	defer cancel()
	if err := c.ethClient.Client().BatchCallContext(callCtx, batch); err != nil {
		return port.TokenMetadata{}, decodeRPCError("token metadata batch", err)
	}

	var meta port.TokenMetadata
	for i, m := range methods {
		if batch[i].Error != nil {
			if m == "name" {
				// name() is optional in practice; tolerate its absence.
				continue
			}
			return port.TokenMetadata{}, decodeRPCError(m, batch[i].Error)
		}
		raw := common.FromHex(results[i])
		if len(raw) == 0 {
			if m == "name" {
				continue
			}
			return port.TokenMetadata{}, decodeRPCError(m, fmt.Errorf("empty return data from %s", token.Hex()))
		}
		out, err := parsedERC20ABI.Unpack(m, raw)
		if err != nil || len(out) == 0 {
			if m == "name" {
				continue
			}
			return port.TokenMetadata{}, decodeRPCError(m, fmt.Errorf("failed to unpack %s result: %v", m, err))
		}
		switch m {
		case "decimals":
			if d, ok := out[0].(uint8); ok {
				meta.Decimals = d
			}
		case "symbol":
			if s, ok := out[0].(string); ok {
				meta.Symbol = s
			}
		case "name":
			if s, ok := out[0].(string); ok {
				meta.Name = s
			}
		}
	}
	if meta.Symbol == "" {
		return port.TokenMetadata{}, decodeRPCError("symbol", fmt.Errorf("contract %s returned no symbol", token.Hex()))
	}
	return meta, nil
}

// GetAmountsOut delegates pricing to the router's on-chain view function.
func (c *EVMClient) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	out, err := c.viewCall(ctx, c.router, parsedRouterABI, "getAmountsOut", amountIn, path)
	if err != nil {
		return nil, err
	}
	amounts, ok := out[0].([]*big.Int)
	if !ok {
		return nil, decodeRPCError("getAmountsOut", fmt.Errorf("unexpected getAmountsOut return type %T", out[0]))
	}
	if len(amounts) != len(path) {
		return nil, decodeRPCError("getAmountsOut", fmt.Errorf("router returned %d amounts for path of %d", len(amounts), len(path)))
	}
	return amounts, nil
}

// Allowance reads the current ERC-20 allowance owner -> spender.
func (c *EVMClient) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	out, err := c.viewCall(ctx, token, parsedERC20ABI, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	al, ok := out[0].(*big.Int)
	if !ok {
		return nil, decodeRPCError("allowance", fmt.Errorf("unexpected allowance return type %T", out[0]))
	}
	return al, nil
}

// SuggestGasPrice returns the node's suggested gas price.
func (c *EVMClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	callCtx, cancel := c.callCtx(ctx)
	defer cancel()
	gp, err := c.ethClient.SuggestGasPrice(callCtx)
	if err != nil {
		return nil, decodeRPCError("eth_gasPrice", err)
	}
	return gp, nil
}

// LatestBlock returns the current head block number.
func (c *EVMClient) LatestBlock(ctx context.Context) (uint64, error) {
	callCtx, cancel := c.callCtx(ctx)
	defer cancel()
	n, err := c.ethClient.BlockNumber(callCtx)
	if err != nil {
		return 0, decodeRPCError("eth_blockNumber", err)
	}
	return n, nil
}

// FilterTransferLogs collects the distinct contracts that emitted Transfer
// events with the wallet as sender or recipient inside the block window.
func (c *EVMClient) FilterTransferLogs(ctx context.Context, wallet common.Address, fromBlock, toBlock uint64) ([]common.Address, error) {
	walletTopic := common.BytesToHash(common.LeftPadBytes(wallet.Bytes(), 32))

	queries := []ethereum.FilterQuery{
		{ // wallet as sender
			FromBlock: new(big.Int).SetUint64(fromBlock),
			ToBlock:   new(big.Int).SetUint64(toBlock),
			Topics:    [][]common.Hash{{transferEventTopic}, {walletTopic}},
		},
		{ // wallet as recipient
			FromBlock: new(big.Int).SetUint64(fromBlock),
			ToBlock:   new(big.Int).SetUint64(toBlock),
			Topics:    [][]common.Hash{{transferEventTopic}, nil, {walletTopic}},
		},
	}

	seen := make(map[common.Address]struct{})
	var contracts []common.Address
	for _, q := range queries {
		callCtx, cancel := c.callCtx(ctx)
		logs, err := c.ethClient.FilterLogs(callCtx, q)
		cancel()
		if err != nil {
			return nil, decodeRPCError("eth_getLogs", err)
		}
		for _, l := range logs {
			if _, dup := seen[l.Address]; dup {
				continue
			}
			seen[l.Address] = struct{}{}
			contracts = append(contracts, l.Address)
		}
	}
	return contracts, nil
}

// EstimateSwapGas estimates gas for the exact router call the executor would
// submit. A revert here means the real transaction would almost certainly
// fail too.
func (c *EVMClient) EstimateSwapGas(ctx context.Context, from common.Address, call port.SwapCall) (uint64, error) {
	data, value, err := packSwapCall(call)
	if err != nil {
		return 0, err
	}
	msg := ethereum.CallMsg{From: from, To: &c.router, Value: value, Data: data}

	callCtx, cancel := c.callCtx(ctx)
	defer cancel()
	gas, err := c.ethClient.EstimateGas(callCtx, msg)
	if err != nil {
		return 0, decodeRPCError("eth_estimateGas", err)
	}
	return gas, nil
}

// Approve submits an ERC-20 approve transaction.
func (c *EVMClient) Approve(ctx context.Context, key *ecdsa.PrivateKey, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	data, err := parsedERC20ABI.Pack("approve", spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack approve data: %w", err)
	}
	return c.sendTx(ctx, key, token, big.NewInt(0), 0, data)
}

// SwapExactIn signs and broadcasts the router swap call for the given shape.
func (c *EVMClient) SwapExactIn(ctx context.Context, key *ecdsa.PrivateKey, call port.SwapCall, gasLimit uint64) (common.Hash, error) {
	data, value, err := packSwapCall(call)
	if err != nil {
		return common.Hash{}, err
	}
	return c.sendTx(ctx, key, c.router, value, gasLimit, data)
}

// SendNative submits a plain value transfer.
func (c *EVMClient) SendNative(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (common.Hash, error) {
	return c.sendTx(ctx, key, to, amount, nativeTransferGas, nil)
}

// SendToken submits an ERC-20 transfer.
func (c *EVMClient) SendToken(ctx context.Context, key *ecdsa.PrivateKey, token, to common.Address, amount *big.Int) (common.Hash, error) {
	data, err := parsedERC20ABI.Pack("transfer", to, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack transfer data: %w", err)
	}
	return c.sendTx(ctx, key, token, big.NewInt(0), 0, data)
}

// WaitMined polls for the receipt until the transaction is mined or the
// context expires.
func (c *EVMClient) WaitMined(ctx context.Context, txHash common.Hash) (port.MinedReceipt, error) {
	ticker := time.NewTicker(receiptPollDelay)
	defer ticker.Stop()

	for {
		callCtx, cancel := c.callCtx(ctx)
		receipt, err := c.ethClient.TransactionReceipt(callCtx, txHash)
		cancel()
		if err == nil && receipt != nil {
			mined := port.MinedReceipt{
				Status:  receipt.Status,
				GasUsed: receipt.GasUsed,
			}
			if receipt.EffectiveGasPrice != nil {
				mined.EffectiveGasPrice = receipt.EffectiveGasPrice
			}
			if receipt.BlockNumber != nil {
				mined.BlockNumber = receipt.BlockNumber.Uint64()
			}
			return mined, nil
		}

		select {
		case <-ctx.Done():
			return port.MinedReceipt{}, entity.NewTradeError(entity.ErrPendingTimeout,
				"transaction not mined within the confirmation window", ctx.Err())
		case <-ticker.C:
		}
	}
}

// viewCall performs a read-only contract call and unpacks the result.
func (c *EVMClient) viewCall(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	callCtx, cancel := c.callCtx(ctx)
	defer cancel()
	raw, err := c.ethClient.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, decodeRPCError(method, err)
	}
	if len(raw) == 0 {
		return nil, decodeRPCError(method, fmt.Errorf("empty return data from %s", to.Hex()))
	}
	out, err := contractABI.Unpack(method, raw)
	if err != nil || len(out) == 0 {
		return nil, decodeRPCError(method, fmt.Errorf("failed to unpack %s result: %v", method, err))
	}
	return out, nil
}

// sendTx builds, signs and broadcasts a legacy transaction. A zero gasLimit
// triggers estimation with a 20% buffer, mirroring what the executor does for
// the swap call itself.
func (c *EVMClient) sendTx(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, value *big.Int, gasLimit uint64, data []byte) (common.Hash, error) {
	from := crypto.PubkeyToAddress(key.PublicKey)

	callCtx, cancel := c.callCtx(ctx)
	nonce, err := c.ethClient.PendingNonceAt(callCtx, from)
	cancel()
	if err != nil {
		return common.Hash{}, decodeRPCError("eth_getTransactionCount", err)
	}

	gasPrice, err := c.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	if gasLimit == 0 {
		msg := ethereum.CallMsg{From: from, To: &to, Value: value, Data: data}
		callCtx, cancel = c.callCtx(ctx)
		estimated, err := c.ethClient.EstimateGas(callCtx, msg)
		cancel()
		if err != nil {
			return common.Hash{}, decodeRPCError("eth_estimateGas", err)
		}
		gasLimit = estimated * 120 / 100
	}

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	callCtx, cancel = c.callCtx(ctx)
	defer cancel()
	if err := c.ethClient.SendTransaction(callCtx, signedTx); err != nil {
		return common.Hash{}, decodeRPCError("eth_sendRawTransaction", err)
	}
	return signedTx.Hash(), nil
}

// packSwapCall maps a SwapCall to router calldata plus the attached value.
func packSwapCall(call port.SwapCall) ([]byte, *big.Int, error) {
	if len(call.Path) != 2 {
		return nil, nil, fmt.Errorf("swap path must have exactly 2 hops, got %d", len(call.Path))
	}
	switch call.Shape {
	case entity.SwapNativeToToken:
		data, err := parsedRouterABI.Pack("swapExactETHForTokens", call.AmountOutMin, call.Path, call.Recipient, call.Deadline)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to pack swapExactETHForTokens: %w", err)
		}
		return data, call.AmountIn, nil
	case entity.SwapTokenToNative:
		data, err := parsedRouterABI.Pack("swapExactTokensForETH", call.AmountIn, call.AmountOutMin, call.Path, call.Recipient, call.Deadline)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to pack swapExactTokensForETH: %w", err)
		}
		return data, big.NewInt(0), nil
	case entity.SwapTokenToToken:
		data, err := parsedRouterABI.Pack("swapExactTokensForTokens", call.AmountIn, call.AmountOutMin, call.Path, call.Recipient, call.Deadline)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to pack swapExactTokensForTokens: %w", err)
		}
		return data, big.NewInt(0), nil
	}
	return nil, nil, fmt.Errorf("unknown swap shape %v", call.Shape)
}
