package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"
	"token_trader/internal/infrastructure/configloader"
	"token_trader/internal/pkg/utils"
	"token_trader/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// ScannerServiceImpl implements port.ScannerService with a three-tier
// fallback: indexed lookup, known/popular token probing, then a transaction
// log heuristic. A single token probe failing never aborts the scan; only
// total unavailability of a tier causes fallthrough.
type ScannerServiceImpl struct {
	clientProvider port.ChainIntegrationProvider
	indexer        port.TokenIndexer
	logger         port.Logger
	cfg            configloader.ScannerConfig
	metaCache      *gocache.Cache
}

// NewScannerService creates a new ScannerServiceImpl. indexer may be nil when
// no indexing service is configured.
func NewScannerService(cp port.ChainIntegrationProvider, indexer port.TokenIndexer, logger port.Logger, cfg configloader.ScannerConfig) port.ScannerService {
	ttl := time.Duration(cfg.MetadataCacheTTLMinutes) * time.Minute
	return &ScannerServiceImpl{
		clientProvider: cp,
		indexer:        indexer,
		logger:         logger,
		cfg:            cfg,
		metaCache:      gocache.New(ttl, 2*ttl),
	}
}

// ScanAllTokens enumerates the wallet's ERC-20 balances. Sort order is the
// caller's concern.
func (s *ScannerServiceImpl) ScanAllTokens(ctx context.Context, netDef entity.NetworkDefinition, walletAddress string, includeZeroBalances bool) ([]entity.TokenBalance, error) {
	start := time.Now()
	defer func() {
		metrics.ScanDuration.WithLabelValues(netDef.Identifier).Observe(time.Since(start).Seconds())
	}()

	if !common.IsHexAddress(walletAddress) {
		return nil, entity.NewTradeError(entity.ErrInvalidAddress, fmt.Sprintf("malformed wallet address %q", walletAddress), nil)
	}
	wallet := common.HexToAddress(walletAddress)

	integration, err := s.clientProvider.GetIntegration(netDef)
	if err != nil {
		return nil, entity.NewTradeError(entity.ErrProviderUnavailable, "cannot reach network", err)
	}

	// Tier 1: indexed lookup.
	if s.indexer != nil && s.indexer.Enabled() {
		balances, err := s.indexer.TokenBalances(ctx, netDef.ChainID, wallet.Hex())
		switch {
		case err != nil:
			s.logger.Warn("Indexer lookup failed, falling through to token probing", "network", netDef.Identifier, "error", err)
		case len(balances) == 0:
			s.logger.Debug("Indexer returned zero rows, falling through to token probing", "network", netDef.Identifier)
		default:
			return filterZero(balances, includeZeroBalances), nil
		}
	}

	// Tier 2: known + popular token probing.
	results, probed := s.probeKnownTokens(ctx, integration, netDef, wallet)

	// Tier 3: transaction-log heuristic, when tier 2 found too little or the
	// caller wants the zero-balance-inclusive view.
	if len(results) < s.cfg.MinTier2Results || includeZeroBalances {
		logResults, err := s.scanTransferLogs(ctx, integration, netDef, wallet, probed)
		if err != nil {
			s.logger.Warn("Transfer-log scan unavailable", "network", netDef.Identifier, "error", err)
		} else {
			results = append(results, logResults...)
		}
	}

	if len(results) == 0 {
		// Every tier produced nothing; last resort is a serial probe of the
		// configured tokens so the caller still gets a best-effort inventory
		// from configuration alone. When even that yields nothing, a head
		// block read distinguishes an empty wallet from a dead provider.
		results = s.lastResortProbe(ctx, integration, netDef, wallet)
		if len(results) == 0 {
			if _, err := integration.LatestBlock(ctx); err != nil {
				return nil, entity.NewTradeError(entity.ErrProviderUnavailable, "provider connection is down", err)
			}
		}
	}

	return filterZero(results, includeZeroBalances), nil
}

// probeKnownTokens fans out concurrent probes over the union of configured
// and popular tokens. Returns the successful balances and the set of
// addresses attempted (lowercase), for tier-3 deduplication.
func (s *ScannerServiceImpl) probeKnownTokens(ctx context.Context, integration port.ChainIntegration, netDef entity.NetworkDefinition, wallet common.Address) ([]entity.TokenBalance, map[string]struct{}) {
	candidates := make([]entity.TokenInfo, 0, len(netDef.Tokens)+len(netDef.PopularTokens))
	attempted := make(map[string]struct{})

	for _, tok := range netDef.Tokens {
		key := strings.ToLower(tok.Address)
		if _, dup := attempted[key]; dup {
			continue
		}
		attempted[key] = struct{}{}
		candidates = append(candidates, tok)
	}
	for _, tok := range netDef.PopularTokens {
		key := strings.ToLower(tok.Address)
		if _, dup := attempted[key]; dup {
			continue
		}
		attempted[key] = struct{}{}
		candidates = append(candidates, tok)
	}

	var (
		mu      sync.Mutex
		results []entity.TokenBalance
	)

	g, probeCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentProbes)

	for _, tok := range candidates {
		g.Go(func() error {
			balance, err := s.probeOne(probeCtx, integration, netDef, tok, wallet)
			if err != nil {
				// Probe failures are isolated: log and drop the entry.
				s.logger.Debug("Token probe failed, skipping", "token", tok.Address, "symbol", tok.Symbol, "error", err)
				return nil
			}
			mu.Lock()
			results = append(results, balance)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; they isolate them

	return results, attempted
}

// probeOne reads one token's balance, filling metadata from configuration or
// the metadata cache, probing the contract only when necessary.
func (s *ScannerServiceImpl) probeOne(ctx context.Context, integration port.ChainIntegration, netDef entity.NetworkDefinition, tok entity.TokenInfo, wallet common.Address) (entity.TokenBalance, error) {
	addr := common.HexToAddress(tok.Address)

	meta := port.TokenMetadata{Symbol: tok.Symbol, Name: tok.Name, Decimals: tok.Decimals}
	if meta.Symbol == "" || meta.Decimals == 0 {
		m, err := s.cachedMetadata(ctx, integration, netDef.ChainID, addr)
		if err != nil {
			return entity.TokenBalance{}, err
		}
		meta = m
	}

	raw, err := integration.GetTokenBalance(ctx, addr, wallet)
	if err != nil {
		return entity.TokenBalance{}, err
	}

	formatted, err := utils.FormatBigInt(raw, meta.Decimals)
	if err != nil {
		return entity.TokenBalance{}, err
	}
	return entity.TokenBalance{
		Address:   addr.Hex(),
		Symbol:    meta.Symbol,
		Name:      meta.Name,
		Decimals:  meta.Decimals,
		Raw:       raw,
		RawString: raw.String(),
		Formatted: formatted,
	}, nil
}

// scanTransferLogs walks a bounded window of recent blocks for Transfer
// events involving the wallet and probes each emitting contract that still
// looks like an ERC-20.
func (s *ScannerServiceImpl) scanTransferLogs(ctx context.Context, integration port.ChainIntegration, netDef entity.NetworkDefinition, wallet common.Address, alreadyProbed map[string]struct{}) ([]entity.TokenBalance, error) {
	latest, err := integration.LatestBlock(ctx)
	if err != nil {
		return nil, err
	}

	window := netDef.LogScanBlocks
	if window == 0 {
		window = s.cfg.DefaultLogScanBlocks
	}
	fromBlock := uint64(0)
	if latest > window {
		fromBlock = latest - window
	}

	contracts, err := integration.FilterTransferLogs(ctx, wallet, fromBlock, latest)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Transfer-log scan candidates", "network", netDef.Identifier, "contracts", len(contracts), "from_block", fromBlock, "to_block", latest)

	var (
		mu      sync.Mutex
		results []entity.TokenBalance
	)
	g, probeCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentProbes)

	for _, contract := range contracts {
		key := strings.ToLower(contract.Hex())
		if _, dup := alreadyProbed[key]; dup {
			continue
		}
		alreadyProbed[key] = struct{}{}

		g.Go(func() error {
			// Lightweight "looks like an ERC-20" gate: decimals() and
			// symbol() must not revert.
			meta, err := s.cachedMetadata(probeCtx, integration, netDef.ChainID, contract)
			if err != nil {
				s.logger.Debug("Log candidate failed ERC-20 probe, skipping", "contract", contract.Hex(), "error", err)
				return nil
			}
			raw, err := integration.GetTokenBalance(probeCtx, contract, wallet)
			if err != nil {
				s.logger.Debug("Balance probe failed for log candidate, skipping", "contract", contract.Hex(), "error", err)
				return nil
			}
			formatted, err := utils.FormatBigInt(raw, meta.Decimals)
			if err != nil {
				return nil
			}
			mu.Lock()
			results = append(results, entity.TokenBalance{
				Address:   contract.Hex(),
				Symbol:    meta.Symbol,
				Name:      meta.Name,
				Decimals:  meta.Decimals,
				Raw:       raw,
				RawString: raw.String(),
				Formatted: formatted,
			})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// lastResortProbe serially probes the configured tokens; the scanner never
// throws past this point unless the provider connection itself is down.
func (s *ScannerServiceImpl) lastResortProbe(ctx context.Context, integration port.ChainIntegration, netDef entity.NetworkDefinition, wallet common.Address) []entity.TokenBalance {
	var results []entity.TokenBalance
	for _, tok := range netDef.Tokens {
		balance, err := s.probeOne(ctx, integration, netDef, tok, wallet)
		if err != nil {
			s.logger.Debug("Last-resort probe failed", "token", tok.Address, "error", err)
			continue
		}
		results = append(results, balance)
	}
	return results
}

func (s *ScannerServiceImpl) cachedMetadata(ctx context.Context, integration port.ChainIntegration, chainID uint64, token common.Address) (port.TokenMetadata, error) {
	key := fmt.Sprintf("%d:%s", chainID, strings.ToLower(token.Hex()))
	if cached, found := s.metaCache.Get(key); found {
		return cached.(port.TokenMetadata), nil
	}
	meta, err := integration.TokenMetadata(ctx, token)
	if err != nil {
		return port.TokenMetadata{}, err
	}
	s.metaCache.Set(key, meta, gocache.DefaultExpiration)
	return meta, nil
}

func filterZero(balances []entity.TokenBalance, includeZero bool) []entity.TokenBalance {
	if includeZero {
		return balances
	}
	out := make([]entity.TokenBalance, 0, len(balances))
	for _, b := range balances {
		if b.IsZero() {
			continue
		}
		out = append(out, b)
	}
	return out
}
