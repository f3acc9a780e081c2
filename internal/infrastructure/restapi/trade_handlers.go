package restapi

import (
	"net/http"
	"strconv"

	"token_trader/internal/app/port"
	"token_trader/internal/app/service"
	"token_trader/internal/domain/entity"
	"token_trader/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// swapEventBuffer bounds the in-flight progress events per swap request; the
// executor drops events past this rather than blocking.
const swapEventBuffer = 16

// APISwapResponse wraps the receipt together with the stage trail so chat
// frontends can render progress after the fact.
type APISwapResponse struct {
	Receipt entity.SwapReceipt `json:"receipt"`
	Stages  []entity.SwapEvent `json:"stages"`
}

// TradeHandler serves the swap, transfer, quote and scan endpoints.
type TradeHandler struct {
	swapSvc     port.SwapService
	transferSvc port.TransferService
	quoteSvc    port.QuoteService
	scannerSvc  port.ScannerService
	netProvider port.NetworkDefinitionProvider
	logger      port.Logger
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(
	swapSvc port.SwapService,
	transferSvc port.TransferService,
	quoteSvc port.QuoteService,
	scannerSvc port.ScannerService,
	netProvider port.NetworkDefinitionProvider,
	logger port.Logger,
) *TradeHandler {
	return &TradeHandler{
		swapSvc:     swapSvc,
		transferSvc: transferSvc,
		quoteSvc:    quoteSvc,
		scannerSvc:  scannerSvc,
		netProvider: netProvider,
		logger:      logger,
	}
}

// SwapHandler runs one swap to completion and returns the receipt plus the
// observed stage transitions.
func (h *TradeHandler) SwapHandler(c *gin.Context) {
	var req entity.SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, entity.NewTradeError(entity.ErrInvalidAmount, "malformed swap request body", err))
		return
	}

	events := make(chan entity.SwapEvent, swapEventBuffer)
	stages := make([]entity.SwapEvent, 0, swapEventBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			stages = append(stages, ev)
		}
	}()

	receipt, err := h.swapSvc.ExecuteSwap(c.Request.Context(), req, events)
	<-done

	if err != nil {
		h.logger.Warn("Swap failed", "owner", req.OwnerID, "kind", string(entity.KindOf(err)), "error", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, APISwapResponse{Receipt: receipt, Stages: stages})
}

// TransferHandler submits a native or token send.
func (h *TradeHandler) TransferHandler(c *gin.Context) {
	var req entity.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, entity.NewTradeError(entity.ErrInvalidAmount, "malformed transfer request body", err))
		return
	}

	receipt, err := h.transferSvc.SendAsset(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}

// QuoteHandler returns a read-only quote for a pair.
// Query: network, from, to, amount (human decimal in the source asset).
func (h *TradeHandler) QuoteHandler(c *gin.Context) {
	netDef, ok := h.netProvider.GetNetworkDefinitionByName(c.Query("network"))
	if !ok {
		writeError(c, entity.NewTradeError(entity.ErrInvalidAddress, "unknown network", nil))
		return
	}
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		writeError(c, entity.NewTradeError(entity.ErrInvalidAddress, "from and to are required", nil))
		return
	}

	decimals := netDef.NativeDecimals
	if !service.IsNativeLeg(from, netDef) {
		if tok, found := netDef.TokenBySymbol(from); found {
			decimals = tok.Decimals
		} else {
			decimals = 18
		}
	}
	amountIn, err := utils.ParseDecimalAmount(c.Query("amount"), decimals)
	if err != nil {
		writeError(c, entity.NewTradeError(entity.ErrInvalidAmount, "cannot parse amount", err))
		return
	}

	quote, err := h.quoteSvc.Quote(c.Request.Context(), netDef, from, to, amountIn)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// ScanHandler enumerates a wallet's token balances on one network.
// Query: network, include_zero.
func (h *TradeHandler) ScanHandler(c *gin.Context) {
	netDef, ok := h.netProvider.GetNetworkDefinitionByName(c.Query("network"))
	if !ok {
		writeError(c, entity.NewTradeError(entity.ErrInvalidAddress, "unknown network", nil))
		return
	}
	includeZero, _ := strconv.ParseBool(c.DefaultQuery("include_zero", "false"))

	balances, err := h.scannerSvc.ScanAllTokens(c.Request.Context(), netDef, c.Param("address"), includeZero)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"network":  netDef.Identifier,
		"balances": balances,
	})
}

// NetworksHandler lists the configured networks for clients that build pickers.
func (h *TradeHandler) NetworksHandler(c *gin.Context) {
	defs := h.netProvider.GetAllNetworkDefinitions()
	type netRow struct {
		Identifier   string `json:"identifier"`
		Name         string `json:"name"`
		ChainID      uint64 `json:"chainId"`
		NativeSymbol string `json:"nativeSymbol"`
	}
	rows := make([]netRow, 0, len(defs))
	for _, d := range defs {
		rows = append(rows, netRow{Identifier: d.Identifier, Name: d.Name, ChainID: d.ChainID, NativeSymbol: d.NativeSymbol})
	}
	c.JSON(http.StatusOK, gin.H{"networks": rows})
}
