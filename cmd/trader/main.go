package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"token_trader/internal/app/port"
	"token_trader/internal/app/service"
	"token_trader/internal/infrastructure/configloader"
	"token_trader/internal/infrastructure/httpclient"
	"token_trader/internal/infrastructure/network/client"
	"token_trader/internal/infrastructure/network/definition"
	"token_trader/internal/infrastructure/restapi"
	"token_trader/internal/infrastructure/walletstore"
	"token_trader/internal/pkg/logger"
	"token_trader/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Route the shared slog-based logger through zap so all layers emit
	// through one core.
	logger.InitWithHandler(zapslog.NewHandler(zapLogger.Core()))
	portLogger := logger.NewSlogAdapter()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yml"
	}
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath), zap.Int("networks", len(cfg.Networks)))

	metrics.MustRegisterMetrics()

	// Chain access.
	netProvider := definition.NewProvider(cfg.Networks)
	clientProvider := client.NewEVMClientProvider(cfg, portLogger)

	// Optional tier-1 indexer.
	var indexer port.TokenIndexer
	if cfg.Indexer.BaseURL != "" {
		indexer = httpclient.NewIndexerClient(
			cfg.Indexer.BaseURL,
			cfg.Indexer.APIKey,
			time.Duration(cfg.Indexer.RequestTimeoutMillis)*time.Millisecond,
			zapLogger,
		)
		zapLogger.Info("Indexer client initialized", zap.String("base_url", cfg.Indexer.BaseURL))
	} else {
		zapLogger.Info("No indexer configured, scanner starts at the probing tier")
	}

	// Wallet custody.
	secret := os.Getenv(cfg.WalletStore.SecretEnv)
	if secret == "" {
		log.Fatalf("Wallet store secret is empty: set %s", cfg.WalletStore.SecretEnv)
	}
	store, err := walletstore.NewFileStore(cfg.WalletStore.FilePath, portLogger)
	if err != nil {
		log.Fatalf("Failed to open wallet store: %v", err)
	}
	walletSvc, err := service.NewWalletService(store, secret, portLogger)
	if err != nil {
		log.Fatalf("Failed to initialize wallet service: %v", err)
	}

	// Trading services.
	quoteSvc := service.NewQuoteService(clientProvider, portLogger, cfg.Swap.ImpactWarnThresholdPct)
	scannerSvc := service.NewScannerService(clientProvider, indexer, portLogger, cfg.Scanner)
	swapSvc := service.NewSwapService(netProvider, clientProvider, walletSvc, quoteSvc, portLogger, cfg.Swap)
	transferSvc := service.NewTransferService(netProvider, clientProvider, walletSvc, portLogger, cfg.Swap)
	zapLogger.Info("Trading services initialized")

	tradeHandler := restapi.NewTradeHandler(swapSvc, transferSvc, quoteSvc, scannerSvc, netProvider, portLogger)
	walletHandler := restapi.NewWalletHandler(walletSvc, portLogger)
	router := restapi.SetupRouter(tradeHandler, walletHandler)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // Adjust for production
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	zapLogger.Info("Prometheus metrics endpoint enabled", zap.String("path", "/metrics"))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
