package service

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// fakeIntegration is a scriptable port.ChainIntegration that records every
// call so tests can assert on ordering and call counts.
type fakeIntegration struct {
	mu sync.Mutex

	netDef entity.NetworkDefinition

	nativeBalance *big.Int
	tokenBalances map[string]*big.Int // lowercase token address -> balance
	balanceErr    error

	metadata    map[string]port.TokenMetadata
	metadataErr error

	amountsOut    *big.Int // last element returned by GetAmountsOut
	amountsOutErr error

	allowance    *big.Int
	allowanceErr error

	gasEstimate    uint64
	gasEstimateErr error

	submitErr   error
	waitErr     error
	waitReceipt port.MinedReceipt

	latestBlock    uint64
	latestBlockErr error
	transferLogs   []common.Address
	transferErr    error

	calls        []string
	approveCalls int
	swapCalls    int
	lastSwapCall port.SwapCall
	nextHash     byte
}

func newFakeIntegration(netDef entity.NetworkDefinition) *fakeIntegration {
	return &fakeIntegration{
		netDef:        netDef,
		nativeBalance: big.NewInt(0),
		tokenBalances: make(map[string]*big.Int),
		metadata:      make(map[string]port.TokenMetadata),
		allowance:     big.NewInt(0),
		gasEstimate:   150000,
		waitReceipt:   port.MinedReceipt{Status: 1, GasUsed: 120000, EffectiveGasPrice: big.NewInt(3000000000)},
		latestBlock:   20000000,
	}
}

func (f *fakeIntegration) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeIntegration) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeIntegration) setTokenBalance(addr string, v *big.Int) {
	f.tokenBalances[strings.ToLower(addr)] = v
}

func (f *fakeIntegration) GetNativeBalance(ctx context.Context, wallet common.Address) (*big.Int, error) {
	f.record("GetNativeBalance")
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return f.nativeBalance, nil
}

func (f *fakeIntegration) GetTokenBalance(ctx context.Context, token, wallet common.Address) (*big.Int, error) {
	f.record("GetTokenBalance:" + token.Hex())
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	if b, ok := f.tokenBalances[strings.ToLower(token.Hex())]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeIntegration) TokenMetadata(ctx context.Context, token common.Address) (port.TokenMetadata, error) {
	f.record("TokenMetadata:" + token.Hex())
	if f.metadataErr != nil {
		return port.TokenMetadata{}, f.metadataErr
	}
	if m, ok := f.metadata[strings.ToLower(token.Hex())]; ok {
		return m, nil
	}
	return port.TokenMetadata{}, fmt.Errorf("no metadata scripted for %s", token.Hex())
}

func (f *fakeIntegration) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	f.record("GetAmountsOut")
	if f.amountsOutErr != nil {
		return nil, f.amountsOutErr
	}
	return []*big.Int{amountIn, f.amountsOut}, nil
}

func (f *fakeIntegration) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	f.record("Allowance")
	if f.allowanceErr != nil {
		return nil, f.allowanceErr
	}
	return f.allowance, nil
}

func (f *fakeIntegration) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	f.record("SuggestGasPrice")
	return big.NewInt(3000000000), nil
}

func (f *fakeIntegration) LatestBlock(ctx context.Context) (uint64, error) {
	f.record("LatestBlock")
	if f.latestBlockErr != nil {
		return 0, f.latestBlockErr
	}
	return f.latestBlock, nil
}

func (f *fakeIntegration) FilterTransferLogs(ctx context.Context, wallet common.Address, fromBlock, toBlock uint64) ([]common.Address, error) {
	f.record("FilterTransferLogs")
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	return f.transferLogs, nil
}

func (f *fakeIntegration) EstimateSwapGas(ctx context.Context, from common.Address, call port.SwapCall) (uint64, error) {
	f.record("EstimateSwapGas")
	if f.gasEstimateErr != nil {
		return 0, f.gasEstimateErr
	}
	return f.gasEstimate, nil
}

func (f *fakeIntegration) Approve(ctx context.Context, key *ecdsa.PrivateKey, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	f.record("Approve")
	f.mu.Lock()
	f.approveCalls++
	f.mu.Unlock()
	return f.newHash(), nil
}

func (f *fakeIntegration) SwapExactIn(ctx context.Context, key *ecdsa.PrivateKey, call port.SwapCall, gasLimit uint64) (common.Hash, error) {
	f.record("SwapExactIn")
	f.mu.Lock()
	f.swapCalls++
	f.lastSwapCall = call
	f.mu.Unlock()
	if f.submitErr != nil {
		return common.Hash{}, f.submitErr
	}
	return f.newHash(), nil
}

func (f *fakeIntegration) SendNative(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (common.Hash, error) {
	f.record("SendNative")
	if f.submitErr != nil {
		return common.Hash{}, f.submitErr
	}
	return f.newHash(), nil
}

func (f *fakeIntegration) SendToken(ctx context.Context, key *ecdsa.PrivateKey, token, to common.Address, amount *big.Int) (common.Hash, error) {
	f.record("SendToken")
	if f.submitErr != nil {
		return common.Hash{}, f.submitErr
	}
	return f.newHash(), nil
}

func (f *fakeIntegration) WaitMined(ctx context.Context, txHash common.Hash) (port.MinedReceipt, error) {
	f.record("WaitMined")
	if f.waitErr != nil {
		return port.MinedReceipt{}, f.waitErr
	}
	return f.waitReceipt, nil
}

func (f *fakeIntegration) Definition() entity.NetworkDefinition { return f.netDef }

func (f *fakeIntegration) newHash() common.Hash {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextHash++
	var h common.Hash
	h[31] = f.nextHash
	return h
}

// fakeProvider hands out a single scripted integration for any network.
type fakeProvider struct {
	integration port.ChainIntegration
	err         error
}

func (p *fakeProvider) GetIntegration(netDef entity.NetworkDefinition) (port.ChainIntegration, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.integration, nil
}

// fakeNetProvider resolves one definition by its identifier.
type fakeNetProvider struct {
	netDef entity.NetworkDefinition
}

func (p *fakeNetProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	return []entity.NetworkDefinition{p.netDef}
}

func (p *fakeNetProvider) GetNetworkDefinitionByName(name string) (entity.NetworkDefinition, bool) {
	if strings.EqualFold(name, p.netDef.Identifier) {
		return p.netDef, true
	}
	return entity.NetworkDefinition{}, false
}

// fakeIndexer scripts tier-1 scanner behavior.
type fakeIndexer struct {
	enabled  bool
	balances []entity.TokenBalance
	err      error
	calls    int
}

func (f *fakeIndexer) Enabled() bool { return f.enabled }

func (f *fakeIndexer) TokenBalances(ctx context.Context, chainID uint64, wallet string) ([]entity.TokenBalance, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.balances, nil
}

// nopLogger keeps test output quiet.
type nopLogger struct{}

func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
