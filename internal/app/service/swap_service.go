package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"
	"token_trader/internal/infrastructure/configloader"
	"token_trader/internal/pkg/utils"
	"token_trader/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
)

// SwapServiceImpl implements port.SwapService. Each swap walks the state
// machine INIT -> AMOUNT_VALIDATED -> BALANCE_CHECKED -> [APPROVED] ->
// QUOTED -> GAS_ESTIMATED -> SUBMITTED -> CONFIRMED | FAILED, with every
// on-chain call awaited before the next state begins.
type SwapServiceImpl struct {
	netProvider    port.NetworkDefinitionProvider
	clientProvider port.ChainIntegrationProvider
	walletSvc      port.WalletService
	quoteSvc       port.QuoteService
	logger         port.Logger
	cfg            configloader.SwapConfig

	// One in-flight submission per wallet address: concurrent swaps from the
	// same address risk nonce collisions.
	walletLocks sync.Map // address (lowercase) -> *sync.Mutex
}

// NewSwapService creates a new SwapServiceImpl.
func NewSwapService(
	np port.NetworkDefinitionProvider,
	cp port.ChainIntegrationProvider,
	ws port.WalletService,
	qs port.QuoteService,
	logger port.Logger,
	cfg configloader.SwapConfig,
) port.SwapService {
	return &SwapServiceImpl{
		netProvider:    np,
		clientProvider: cp,
		walletSvc:      ws,
		quoteSvc:       qs,
		logger:         logger,
		cfg:            cfg,
	}
}

// ExecuteSwap runs the full pipeline for one request. events, when non-nil,
// receives stage transitions and is closed before this method returns; a slow
// consumer drops events rather than stalling the pipeline.
func (s *SwapServiceImpl) ExecuteSwap(ctx context.Context, req entity.SwapRequest, events chan<- entity.SwapEvent) (entity.SwapReceipt, error) {
	if events != nil {
		defer close(events)
	}

	netDef, ok := s.netProvider.GetNetworkDefinitionByName(req.Network)
	if !ok {
		return entity.SwapReceipt{}, entity.NewTradeError(entity.ErrInternal, fmt.Sprintf("unknown network %q", req.Network), nil)
	}

	// INIT: validate the request before any provider interaction.
	emit(events, entity.StageInit, "validating request", "")

	if req.SlippageBps < entity.MinSlippageBps || req.SlippageBps > entity.MaxSlippageBps {
		return entity.SwapReceipt{}, entity.NewTradeError(entity.ErrInvalidAmount,
			fmt.Sprintf("slippage %d bps outside [%d, %d]", req.SlippageBps, entity.MinSlippageBps, entity.MaxSlippageBps), nil)
	}

	fromNative := IsNativeLeg(req.FromToken, netDef)
	toNative := IsNativeLeg(req.ToToken, netDef)
	if fromNative && toNative {
		return entity.SwapReceipt{}, entity.NewTradeError(entity.ErrInvalidAmount, "both legs denominate the native asset", nil)
	}

	shape := entity.SwapTokenToToken
	switch {
	case fromNative:
		shape = entity.SwapNativeToToken
	case toNative:
		shape = entity.SwapTokenToNative
	}

	srcDecimals, srcKnown := s.staticDecimals(req.FromToken, netDef)
	parseDecimals := srcDecimals
	if !srcKnown {
		parseDecimals = 18 // provisional; re-parsed after the metadata probe
	}
	amountIn, err := utils.ParseDecimalAmount(req.Amount, parseDecimals)
	if err != nil {
		return entity.SwapReceipt{}, entity.NewTradeError(entity.ErrInvalidAmount, fmt.Sprintf("cannot parse amount %q", req.Amount), err)
	}
	if amountIn.Sign() <= 0 {
		return entity.SwapReceipt{}, entity.NewTradeError(entity.ErrInvalidAmount, "amount must be positive", nil)
	}
	emit(events, entity.StageAmountValid, req.Amount, "")

	wallet, err := s.walletSvc.Get(req.OwnerID, req.WalletID)
	if err != nil {
		return entity.SwapReceipt{}, err
	}
	from := common.HexToAddress(wallet.Address)

	integration, err := s.clientProvider.GetIntegration(netDef)
	if err != nil {
		return entity.SwapReceipt{}, entity.NewTradeError(entity.ErrProviderUnavailable, "no integration for network", err)
	}

	fromAddrStr, _ := ResolveToken(req.FromToken, netDef)
	toAddrStr, _ := ResolveToken(req.ToToken, netDef)
	if !common.IsHexAddress(fromAddrStr) {
		return entity.SwapReceipt{}, entity.NewTradeError(entity.ErrInvalidAddress, fmt.Sprintf("cannot resolve source token %q", req.FromToken), nil)
	}
	if !common.IsHexAddress(toAddrStr) {
		return entity.SwapReceipt{}, entity.NewTradeError(entity.ErrInvalidAddress, fmt.Sprintf("cannot resolve destination token %q", req.ToToken), nil)
	}
	fromAddr := common.HexToAddress(fromAddrStr)
	toAddr := common.HexToAddress(toAddrStr)

	// A custom source token needs its real decimals before the amount is final.
	if !srcKnown && !fromNative {
		meta, err := integration.TokenMetadata(ctx, fromAddr)
		if err != nil {
			return entity.SwapReceipt{}, err
		}
		if meta.Decimals != parseDecimals {
			amountIn, err = utils.ParseDecimalAmount(req.Amount, meta.Decimals)
			if err != nil || amountIn.Sign() <= 0 {
				return entity.SwapReceipt{}, entity.NewTradeError(entity.ErrInvalidAmount,
					fmt.Sprintf("amount %q does not fit token with %d decimals", req.Amount, meta.Decimals), err)
			}
		}
		srcDecimals = meta.Decimals
	}

	// BALANCE_CHECKED: the source asset must cover the input amount.
	var available *big.Int
	if fromNative {
		available, err = integration.GetNativeBalance(ctx, from)
	} else {
		available, err = integration.GetTokenBalance(ctx, fromAddr, from)
	}
	if err != nil {
		return entity.SwapReceipt{}, err
	}
	if available.Cmp(amountIn) < 0 {
		return entity.SwapReceipt{}, entity.NewTradeError(entity.ErrInsufficientFunds,
			fmt.Sprintf("required %s, available %s", amountIn.String(), available.String()), nil)
	}
	emit(events, entity.StageBalanceCheck, fmt.Sprintf("available %s", available.String()), "")

	key, err := s.walletSvc.Reveal(req.WalletID)
	if err != nil {
		return entity.SwapReceipt{}, err
	}

	router := common.HexToAddress(netDef.RouterAddress)

	// APPROVED: token legs only; native legs skip this state.
	if !fromNative {
		allowance, err := integration.Allowance(ctx, fromAddr, from, router)
		if err != nil {
			return entity.SwapReceipt{}, err
		}
		if allowance.Cmp(amountIn) < 0 {
			approveHash, err := integration.Approve(ctx, key, fromAddr, router, amountIn)
			if err != nil {
				return entity.SwapReceipt{}, err
			}
			waitCtx, cancel := context.WithTimeout(ctx, s.confirmTimeout())
			receipt, err := integration.WaitMined(waitCtx, approveHash)
			cancel()
			if err != nil {
				return entity.SwapReceipt{}, attachTxHash(err, approveHash.Hex())
			}
			if !receipt.Succeeded() {
				return entity.SwapReceipt{}, &entity.TradeError{
					Kind: entity.ErrTransferFailed, Message: "approve transaction reverted", TxHash: approveHash.Hex(),
				}
			}
			emit(events, entity.StageApproved, "router allowance granted", approveHash.Hex())
		}
	}

	// QUOTED: the router is the source of truth for pricing.
	quote, err := s.quoteSvc.Quote(ctx, netDef, req.FromToken, req.ToToken, amountIn)
	if err != nil {
		return entity.SwapReceipt{}, err
	}
	amountOutMin := ApplySlippage(quote.AmountOut, req.SlippageBps)
	emit(events, entity.StageQuoted, fmt.Sprintf("out %s, min %s, impact %.2f%%", quote.AmountOut, amountOutMin, quote.PriceImpactPct), "")

	deadline := big.NewInt(time.Now().Add(time.Duration(s.cfg.DeadlineMinutes) * time.Minute).Unix())
	call := port.SwapCall{
		Shape:        shape,
		Path:         []common.Address{fromAddr, toAddr},
		AmountIn:     amountIn,
		AmountOutMin: amountOutMin,
		Recipient:    from,
		Deadline:     deadline,
	}

	// GAS_ESTIMATED: a revert here means the real call would burn gas for
	// nothing, so abort instead of submitting blind.
	gas, err := integration.EstimateSwapGas(ctx, from, call)
	if err != nil {
		if entity.KindOf(err) == entity.ErrInternal {
			err = entity.NewTradeError(entity.ErrLikelyRevert, "gas estimation failed for the exact swap call", err)
		}
		return entity.SwapReceipt{}, err
	}
	gasLimit := gas * uint64(100+s.cfg.GasMarginPercent) / 100
	emit(events, entity.StageGasEstimated, fmt.Sprintf("estimate %d, limit %d", gas, gasLimit), "")

	// SUBMITTED: serialize per wallet address across submit+confirm to avoid
	// nonce collisions.
	lock := s.lockFor(wallet.Address)
	lock.Lock()
	defer lock.Unlock()

	txHash, err := integration.SwapExactIn(ctx, key, call, gasLimit)
	if err != nil {
		return entity.SwapReceipt{}, err
	}
	metrics.SwapsSubmitted.Inc()
	s.logger.Info("Swap submitted", "tx", txHash.Hex(), "shape", shape.String(), "network", netDef.Identifier)
	emit(events, entity.StageSubmitted, "transaction broadcast", txHash.Hex())

	// CONFIRMED | FAILED: await exactly one confirmation. A transaction that
	// is never mined inside the window is PendingTimeout and must not be
	// auto-retried (nonce reuse risk); the hash is always surfaced.
	waitCtx, cancel := context.WithTimeout(ctx, s.confirmTimeout())
	defer cancel()
	mined, err := integration.WaitMined(waitCtx, txHash)
	if err != nil {
		metrics.SwapsFailed.Inc()
		emit(events, entity.StageFailed, "confirmation wait expired", txHash.Hex())
		return entity.SwapReceipt{}, attachTxHash(err, txHash.Hex())
	}

	dstDecimals := s.destDecimals(ctx, integration, req.ToToken, toAddr, netDef)
	receipt := s.buildReceipt(req, netDef, shape, txHash.Hex(), amountIn, srcDecimals, quote, dstDecimals, mined)

	if !mined.Succeeded() {
		metrics.SwapsFailed.Inc()
		receipt.Status = entity.SwapStatusFailed
		emit(events, entity.StageFailed, "transaction reverted on chain", txHash.Hex())
		s.logger.Warn("Swap reverted on chain", "tx", txHash.Hex(), "network", netDef.Identifier)
		return receipt, nil
	}

	metrics.SwapsConfirmed.Inc()
	emit(events, entity.StageConfirmed, "one confirmation", txHash.Hex())
	return receipt, nil
}

func (s *SwapServiceImpl) buildReceipt(
	req entity.SwapRequest,
	netDef entity.NetworkDefinition,
	shape entity.SwapShape,
	txHash string,
	amountIn *big.Int,
	srcDecimals uint8,
	quote entity.Quote,
	dstDecimals uint8,
	mined port.MinedReceipt,
) entity.SwapReceipt {
	inStr, _ := utils.FormatBigInt(amountIn, srcDecimals)
	outStr, _ := utils.FormatBigInt(quote.AmountOut, dstDecimals)
	gasPrice := ""
	if mined.EffectiveGasPrice != nil {
		gasPrice = mined.EffectiveGasPrice.String()
	}
	return entity.SwapReceipt{
		TxHash:         txHash,
		Status:         entity.SwapStatusSuccess,
		Shape:          shape,
		FromToken:      req.FromToken,
		ToToken:        req.ToToken,
		AmountIn:       amountIn,
		AmountInStr:    inStr,
		AmountOut:      quote.AmountOut,
		AmountOutStr:   outStr,
		PriceImpactPct: quote.PriceImpactPct,
		GasUsed:        mined.GasUsed,
		GasPrice:       gasPrice,
		ExplorerURL:    netDef.ExplorerTxURL(txHash),
	}
}

// staticDecimals resolves source decimals without touching the chain.
func (s *SwapServiceImpl) staticDecimals(ref string, netDef entity.NetworkDefinition) (uint8, bool) {
	if IsNativeLeg(ref, netDef) {
		return netDef.NativeDecimals, true
	}
	if tok, ok := netDef.TokenBySymbol(ref); ok {
		return tok.Decimals, true
	}
	return 0, false
}

func (s *SwapServiceImpl) destDecimals(ctx context.Context, integration port.ChainIntegration, ref string, addr common.Address, netDef entity.NetworkDefinition) uint8 {
	if d, ok := s.staticDecimals(ref, netDef); ok {
		return d
	}
	meta, err := integration.TokenMetadata(ctx, addr)
	if err != nil {
		return 18
	}
	return meta.Decimals
}

func (s *SwapServiceImpl) confirmTimeout() time.Duration {
	return time.Duration(s.cfg.ConfirmTimeoutSeconds) * time.Second
}

func (s *SwapServiceImpl) lockFor(address string) *sync.Mutex {
	key := common.HexToAddress(address).Hex()
	actual, _ := s.walletLocks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// emit delivers a stage event without ever blocking the pipeline.
func emit(events chan<- entity.SwapEvent, stage entity.SwapStage, detail, txHash string) {
	if events == nil {
		return
	}
	select {
	case events <- entity.SwapEvent{Stage: stage, Detail: detail, TxHash: txHash}:
	default:
	}
}

// attachTxHash stamps the transaction hash onto a typed error so the caller
// can surface it even when the swap ultimately failed.
func attachTxHash(err error, txHash string) error {
	if te, ok := entity.AsTradeError(err); ok && te.TxHash == "" {
		te.TxHash = txHash
	}
	return err
}
