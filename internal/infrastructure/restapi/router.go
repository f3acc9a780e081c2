package restapi

import (
	"net/http"
	"strconv"
	"time"

	"token_trader/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the API surface. CORS and the metrics endpoint are added
// by the caller so this stays testable without middleware.
func SetupRouter(tradeHandler *TradeHandler, walletHandler *WalletHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics())

	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	v1 := router.Group("/api/v1")
	{
		v1.POST("/swap", tradeHandler.SwapHandler)
		v1.POST("/transfer", tradeHandler.TransferHandler)
		v1.GET("/quote", tradeHandler.QuoteHandler)
		v1.GET("/scan/:address", tradeHandler.ScanHandler)
		v1.GET("/networks", tradeHandler.NetworksHandler)

		v1.POST("/wallets", walletHandler.GenerateHandler)
		v1.POST("/wallets/import", walletHandler.ImportHandler)
		v1.GET("/wallets/:owner", walletHandler.ListHandler)
		v1.DELETE("/wallets/:owner/:walletId", walletHandler.DeleteHandler)
	}

	return router
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
