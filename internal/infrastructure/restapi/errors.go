package restapi

import (
	"net/http"

	"token_trader/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIError is the JSON error payload. Kind is machine-readable; clients must
// branch on it rather than on the message text.
type APIError struct {
	Kind      entity.ErrorKind `json:"kind"`
	Message   string           `json:"message"`
	TxHash    string           `json:"txHash,omitempty"`
	Retryable bool             `json:"retryable"`
}

func statusForKind(kind entity.ErrorKind) int {
	switch kind {
	case entity.ErrInvalidAmount, entity.ErrInvalidAddress, entity.ErrInvalidKey:
		return http.StatusBadRequest
	case entity.ErrWalletNotFound:
		return http.StatusNotFound
	case entity.ErrInsufficientFunds, entity.ErrNoLiquidity, entity.ErrLikelyRevert, entity.ErrTransferFailed:
		return http.StatusUnprocessableEntity
	case entity.ErrProviderUnavailable:
		return http.StatusServiceUnavailable
	case entity.ErrDeadlineExpired, entity.ErrPendingTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// writeError translates a typed pipeline error into an HTTP response.
// Untyped errors surface as Internal without leaking the raw message.
func writeError(c *gin.Context, err error) {
	kind := entity.KindOf(err)
	payload := APIError{
		Kind:      kind,
		Message:   "internal error",
		Retryable: kind.Retryable(),
	}
	if te, ok := entity.AsTradeError(err); ok {
		payload.Message = te.Message
		payload.TxHash = te.TxHash
	}
	c.JSON(statusForKind(kind), gin.H{"error": payload})
}
