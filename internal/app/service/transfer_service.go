package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"
	"token_trader/internal/infrastructure/configloader"
	"token_trader/internal/pkg/utils"
	"token_trader/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
)

// TransferServiceImpl implements port.TransferService for native and ERC-20
// sends with the same validate, submit, confirm discipline as the swap
// pipeline.
type TransferServiceImpl struct {
	netProvider    port.NetworkDefinitionProvider
	clientProvider port.ChainIntegrationProvider
	walletSvc      port.WalletService
	logger         port.Logger
	cfg            configloader.SwapConfig
}

// NewTransferService creates a new TransferServiceImpl. Deadline and confirm
// timing is shared with the swap configuration.
func NewTransferService(
	np port.NetworkDefinitionProvider,
	cp port.ChainIntegrationProvider,
	ws port.WalletService,
	logger port.Logger,
	cfg configloader.SwapConfig,
) port.TransferService {
	return &TransferServiceImpl{
		netProvider:    np,
		clientProvider: cp,
		walletSvc:      ws,
		logger:         logger,
		cfg:            cfg,
	}
}

// SendAsset submits one transfer and waits for a single confirmation.
func (s *TransferServiceImpl) SendAsset(ctx context.Context, req entity.TransferRequest) (entity.TransferReceipt, error) {
	netDef, ok := s.netProvider.GetNetworkDefinitionByName(req.Network)
	if !ok {
		return entity.TransferReceipt{}, entity.NewTradeError(entity.ErrInternal, fmt.Sprintf("unknown network %q", req.Network), nil)
	}

	if !common.IsHexAddress(req.To) {
		return entity.TransferReceipt{}, entity.NewTradeError(entity.ErrInvalidAddress, fmt.Sprintf("malformed recipient address %q", req.To), nil)
	}
	to := common.HexToAddress(req.To)

	wallet, err := s.walletSvc.Get(req.OwnerID, req.WalletID)
	if err != nil {
		return entity.TransferReceipt{}, err
	}
	from := common.HexToAddress(wallet.Address)

	integration, err := s.clientProvider.GetIntegration(netDef)
	if err != nil {
		return entity.TransferReceipt{}, entity.NewTradeError(entity.ErrProviderUnavailable, "no integration for network", err)
	}

	native := IsNativeLeg(req.Asset, netDef)

	var (
		tokenAddr common.Address
		decimals  uint8
	)
	if native {
		decimals = netDef.NativeDecimals
	} else {
		addrStr, _ := ResolveToken(req.Asset, netDef)
		if !common.IsHexAddress(addrStr) {
			return entity.TransferReceipt{}, entity.NewTradeError(entity.ErrInvalidAddress, fmt.Sprintf("cannot resolve asset %q", req.Asset), nil)
		}
		tokenAddr = common.HexToAddress(addrStr)
		if tok, found := netDef.TokenBySymbol(req.Asset); found {
			decimals = tok.Decimals
		} else {
			meta, err := integration.TokenMetadata(ctx, tokenAddr)
			if err != nil {
				return entity.TransferReceipt{}, err
			}
			decimals = meta.Decimals
		}
	}

	amount, err := utils.ParseDecimalAmount(req.Amount, decimals)
	if err != nil {
		return entity.TransferReceipt{}, entity.NewTradeError(entity.ErrInvalidAmount, fmt.Sprintf("cannot parse amount %q", req.Amount), err)
	}
	if amount.Sign() <= 0 {
		return entity.TransferReceipt{}, entity.NewTradeError(entity.ErrInvalidAmount, "amount must be positive", nil)
	}

	var available *big.Int
	if native {
		available, err = integration.GetNativeBalance(ctx, from)
	} else {
		available, err = integration.GetTokenBalance(ctx, tokenAddr, from)
	}
	if err != nil {
		return entity.TransferReceipt{}, err
	}
	if available.Cmp(amount) < 0 {
		return entity.TransferReceipt{}, entity.NewTradeError(entity.ErrInsufficientFunds,
			fmt.Sprintf("required %s, available %s", amount.String(), available.String()), nil)
	}

	key, err := s.walletSvc.Reveal(req.WalletID)
	if err != nil {
		return entity.TransferReceipt{}, err
	}

	var txHash common.Hash
	if native {
		txHash, err = integration.SendNative(ctx, key, to, amount)
	} else {
		txHash, err = integration.SendToken(ctx, key, tokenAddr, to, amount)
	}
	if err != nil {
		return entity.TransferReceipt{}, err
	}
	metrics.TransfersSubmitted.Inc()
	s.logger.Info("Transfer submitted", "tx", txHash.Hex(), "asset", req.Asset, "network", netDef.Identifier)

	waitCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.ConfirmTimeoutSeconds)*time.Second)
	defer cancel()
	mined, err := integration.WaitMined(waitCtx, txHash)
	if err != nil {
		return entity.TransferReceipt{}, attachTxHash(err, txHash.Hex())
	}

	amountStr, _ := utils.FormatBigInt(amount, decimals)
	receipt := entity.TransferReceipt{
		TxHash:      txHash.Hex(),
		Status:      entity.SwapStatusSuccess,
		Asset:       req.Asset,
		To:          to.Hex(),
		Amount:      amount,
		AmountStr:   amountStr,
		GasUsed:     mined.GasUsed,
		ExplorerURL: netDef.ExplorerTxURL(txHash.Hex()),
	}
	if !mined.Succeeded() {
		receipt.Status = entity.SwapStatusFailed
		// Usually a token-level restriction (pausable, blacklist, fee hooks).
		return receipt, &entity.TradeError{
			Kind:    entity.ErrTransferFailed,
			Message: "transfer transaction reverted on chain",
			TxHash:  txHash.Hex(),
		}
	}
	return receipt, nil
}
