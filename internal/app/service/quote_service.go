package service

import (
	"context"
	"fmt"
	"math/big"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"
	"token_trader/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

const bpsDenominator = 10000

// QuoteServiceImpl implements port.QuoteService by delegating to the router's
// on-chain getAmountsOut; no AMM math is reimplemented locally.
type QuoteServiceImpl struct {
	clientProvider port.ChainIntegrationProvider
	logger         port.Logger
	impactWarnPct  float64
}

// NewQuoteService creates a new QuoteServiceImpl.
func NewQuoteService(cp port.ChainIntegrationProvider, logger port.Logger, impactWarnPct int) port.QuoteService {
	if impactWarnPct <= 0 {
		impactWarnPct = 5
	}
	return &QuoteServiceImpl{
		clientProvider: cp,
		logger:         logger,
		impactWarnPct:  float64(impactWarnPct),
	}
}

// Quote resolves both token references, asks the router for the output
// amounts over the direct 2-hop path and attaches the price-impact estimate.
func (s *QuoteServiceImpl) Quote(ctx context.Context, netDef entity.NetworkDefinition, fromToken, toToken string, amountIn *big.Int) (entity.Quote, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return entity.Quote{}, entity.NewTradeError(entity.ErrInvalidAmount, "quote amount must be positive", nil)
	}

	fromAddr, _ := ResolveToken(fromToken, netDef)
	toAddr, _ := ResolveToken(toToken, netDef)
	if !common.IsHexAddress(fromAddr) {
		return entity.Quote{}, entity.NewTradeError(entity.ErrInvalidAddress, fmt.Sprintf("cannot resolve token %q", fromToken), nil)
	}
	if !common.IsHexAddress(toAddr) {
		return entity.Quote{}, entity.NewTradeError(entity.ErrInvalidAddress, fmt.Sprintf("cannot resolve token %q", toToken), nil)
	}

	integration, err := s.clientProvider.GetIntegration(netDef)
	if err != nil {
		return entity.Quote{}, entity.NewTradeError(entity.ErrProviderUnavailable, "no integration for network", err)
	}

	path := []common.Address{common.HexToAddress(fromAddr), common.HexToAddress(toAddr)}
	amounts, err := integration.GetAmountsOut(ctx, amountIn, path)
	if err != nil {
		// NoLiquidity and friends already classified by the decode layer.
		return entity.Quote{}, err
	}
	amountOut := amounts[len(amounts)-1]

	decIn := s.tokenDecimals(ctx, integration, netDef, fromToken, path[0])
	decOut := s.tokenDecimals(ctx, integration, netDef, toToken, path[1])

	impact := EstimatePriceImpact(amountIn, decIn, amountOut, decOut)
	warn := impact >= s.impactWarnPct
	if warn {
		s.logger.Warn("Price impact estimate above threshold; heuristic only, not an oracle comparison",
			"impact_pct", impact, "from", fromToken, "to", toToken)
	}

	inStr, _ := utils.FormatBigInt(amountIn, decIn)
	outStr, _ := utils.FormatBigInt(amountOut, decOut)
	rate := normalizedRate(amountIn, decIn, amountOut, decOut)

	return entity.Quote{
		Path:           []string{path[0].Hex(), path[1].Hex()},
		AmountIn:       amountIn,
		AmountOut:      amountOut,
		AmountInStr:    inStr,
		AmountOutStr:   outStr,
		Rate:           rate,
		PriceImpactPct: impact,
		ImpactWarning:  warn,
	}, nil
}

// tokenDecimals resolves decimals from config where possible, probing the
// contract only for custom tokens. Probe failure falls back to 18.
func (s *QuoteServiceImpl) tokenDecimals(ctx context.Context, integration port.ChainIntegration, netDef entity.NetworkDefinition, ref string, addr common.Address) uint8 {
	if IsNativeLeg(ref, netDef) {
		return netDef.NativeDecimals
	}
	if tok, ok := netDef.TokenBySymbol(ref); ok {
		return tok.Decimals
	}
	for _, tok := range netDef.Tokens {
		if common.HexToAddress(tok.Address) == addr {
			return tok.Decimals
		}
	}
	meta, err := integration.TokenMetadata(ctx, addr)
	if err != nil {
		s.logger.Debug("Decimals probe failed, assuming 18", "token", addr.Hex(), "error", err)
		return 18
	}
	return meta.Decimals
}

// ApplySlippage computes amountOutMin = amountOut - floor(amountOut*bps/10000).
// Pure integer math; monotonically non-increasing in slippageBps.
func ApplySlippage(amountOut *big.Int, slippageBps int64) *big.Int {
	cut := new(big.Int).Mul(amountOut, big.NewInt(slippageBps))
	cut.Div(cut, big.NewInt(bpsDenominator))
	return new(big.Int).Sub(amountOut, cut)
}

// EstimatePriceImpact compares decimal-normalized input and output values
// against an implicit 1:1 rate. This is a rough order-of-magnitude warning
// signal, not a slippage-vs-mid-price calculation: no oracle mid-price is
// consulted, so across unrelated assets the number is not economically
// meaningful.
func EstimatePriceImpact(amountIn *big.Int, decIn uint8, amountOut *big.Int, decOut uint8) float64 {
	if amountIn == nil || amountOut == nil || amountIn.Sign() == 0 {
		return 0
	}
	normIn := new(big.Float).Quo(new(big.Float).SetInt(amountIn), pow10Float(decIn))
	normOut := new(big.Float).Quo(new(big.Float).SetInt(amountOut), pow10Float(decOut))

	ratio := new(big.Float).Quo(normOut, normIn)
	r, _ := ratio.Float64()
	impact := (1 - r) * 100
	if impact < 0 {
		return 0
	}
	return impact
}

func normalizedRate(amountIn *big.Int, decIn uint8, amountOut *big.Int, decOut uint8) string {
	if amountIn == nil || amountIn.Sign() == 0 || amountOut == nil {
		return "0"
	}
	normIn := new(big.Float).Quo(new(big.Float).SetInt(amountIn), pow10Float(decIn))
	normOut := new(big.Float).Quo(new(big.Float).SetInt(amountOut), pow10Float(decOut))
	return new(big.Float).Quo(normOut, normIn).Text('f', 8)
}

func pow10Float(decimals uint8) *big.Float {
	return new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}
