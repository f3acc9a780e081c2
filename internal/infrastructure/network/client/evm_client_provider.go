package client

import (
	"fmt"
	"sync"
	"time"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"
	"token_trader/internal/infrastructure/configloader"
)

const defaultProviderConnectionTimeout = 10 * time.Second

// evmClientProvider implements port.ChainIntegrationProvider. It caches one
// integration per network so repeated swaps and scans share a connection.
type evmClientProvider struct {
	clients            map[string]port.ChainIntegration
	mu                 sync.Mutex
	logger             port.Logger
	connectionTimeout  time.Duration
	rpcCallTimeout     time.Duration
	probeRatePerSecond int
}

// NewEVMClientProvider creates a new ChainIntegrationProvider backed by
// EVMClient instances.
func NewEVMClientProvider(cfg *configloader.Config, logger port.Logger) port.ChainIntegrationProvider {
	return &evmClientProvider{
		clients:            make(map[string]port.ChainIntegration),
		logger:             logger,
		connectionTimeout:  defaultProviderConnectionTimeout,
		rpcCallTimeout:     time.Duration(cfg.Performance.RPCCallTimeoutSeconds) * time.Second,
		probeRatePerSecond: cfg.Scanner.ProbeRatePerSecond,
	}
}

// GetIntegration retrieves an integration for the given network definition,
// creating and caching it on first use.
func (p *evmClientProvider) GetIntegration(netDef entity.NetworkDefinition) (port.ChainIntegration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clientKey := netDef.Identifier
	if c, exists := p.clients[clientKey]; exists {
		return c, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.Name, "rpc_primary", netDef.PrimaryRPCURL)
	newClient, err := NewEVMClient(netDef, p.connectionTimeout, p.rpcCallTimeout, p.probeRatePerSecond)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[clientKey] = newClient
	return newClient, nil
}
