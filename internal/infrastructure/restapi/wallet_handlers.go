package restapi

import (
	"net/http"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// WalletHandler serves wallet custody endpoints. Responses carry handles only;
// key material never leaves the service layer.
type WalletHandler struct {
	walletSvc port.WalletService
	logger    port.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc port.WalletService, logger port.Logger) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, logger: logger}
}

type generateWalletRequest struct {
	OwnerID string `json:"ownerId" binding:"required"`
	Name    string `json:"name"`
}

type importWalletRequest struct {
	OwnerID    string `json:"ownerId" binding:"required"`
	Name       string `json:"name"`
	PrivateKey string `json:"privateKey" binding:"required"`
}

// GenerateHandler creates a fresh wallet for the owner.
func (h *WalletHandler) GenerateHandler(c *gin.Context) {
	var req generateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, entity.NewTradeError(entity.ErrInvalidKey, "malformed wallet request body", err))
		return
	}
	handle, err := h.walletSvc.Generate(req.OwnerID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	h.logger.Info("Wallet generated", "owner", req.OwnerID, "address", handle.Address)
	c.JSON(http.StatusCreated, gin.H{"wallet": handle})
}

// ImportHandler imports an externally created private key. The key is
// validated before anything is persisted.
func (h *WalletHandler) ImportHandler(c *gin.Context) {
	var req importWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, entity.NewTradeError(entity.ErrInvalidKey, "malformed wallet request body", err))
		return
	}
	handle, err := h.walletSvc.Import(req.OwnerID, req.Name, req.PrivateKey)
	if err != nil {
		writeError(c, err)
		return
	}
	h.logger.Info("Wallet imported", "owner", req.OwnerID, "address", handle.Address)
	c.JSON(http.StatusCreated, gin.H{"wallet": handle})
}

// ListHandler returns the owner's wallet handles.
func (h *WalletHandler) ListHandler(c *gin.Context) {
	handles, err := h.walletSvc.List(c.Param("owner"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallets": handles})
}

// DeleteHandler removes a wallet after the ownership check.
func (h *WalletHandler) DeleteHandler(c *gin.Context) {
	if err := h.walletSvc.Delete(c.Param("owner"), c.Param("walletId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
