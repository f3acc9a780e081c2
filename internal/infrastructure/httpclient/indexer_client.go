package httpclient

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"
	"token_trader/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// indexerTokenRow mirrors one row of the indexing service's balance response.
type indexerTokenRow struct {
	ContractAddress string `json:"contractAddress"`
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	Decimals        uint8  `json:"decimals"`
	Balance         string `json:"balance"` // raw integer as string
}

type indexerResponse struct {
	Result []indexerTokenRow `json:"result"`
	Status string            `json:"status"`
}

// IndexerClient is the tier-1 scanner backend: a token-indexing HTTP API that
// returns a wallet's full token list with balances in one call. Implements
// port.TokenIndexer.
type IndexerClient struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewIndexerClient creates a new IndexerClient. An empty apiKey produces a
// disabled client, which the scanner treats as "tier 1 not configured".
func NewIndexerClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) port.TokenIndexer {
	return &IndexerClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("IndexerClient"),
	}
}

// Enabled reports whether credentials are configured.
func (c *IndexerClient) Enabled() bool {
	return c.apiKey != "" && c.baseURL != ""
}

// TokenBalances queries the indexing service once for the wallet's full token
// list and maps it to the common TokenBalance shape.
func (c *IndexerClient) TokenBalances(ctx context.Context, chainID uint64, wallet string) ([]entity.TokenBalance, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("indexer client is not configured")
	}

	requestURL := fmt.Sprintf("%s/v1/%d/address/%s/tokens?apikey=%s", c.baseURL, chainID, wallet, c.apiKey)
	c.logger.Debug("Requesting token balances from indexer", zap.Uint64("chainID", chainID), zap.String("wallet", wallet))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to execute indexer request: %w", err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return nil, fmt.Errorf("failed to execute indexer request with default timeout: %w", err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Indexer API request failed",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("indexer API request failed with status %d", resp.StatusCode())
	}

	var parsed indexerResponse
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal indexer response: %w", err)
	}
	return c.mapRows(parsed.Result), nil
}

// mapRows converts indexer rows to the common TokenBalance shape, dropping
// rows whose balance does not parse.
func (c *IndexerClient) mapRows(rows []indexerTokenRow) []entity.TokenBalance {
	balances := make([]entity.TokenBalance, 0, len(rows))
	for _, row := range rows {
		raw, ok := new(big.Int).SetString(row.Balance, 10)
		if !ok {
			c.logger.Warn("Skipping indexer row with malformed balance",
				zap.String("contract", row.ContractAddress), zap.String("balance", row.Balance))
			continue
		}
		formatted, err := utils.FormatBigInt(raw, row.Decimals)
		if err != nil {
			continue
		}
		balances = append(balances, entity.TokenBalance{
			Address:   row.ContractAddress,
			Symbol:    row.Symbol,
			Name:      row.Name,
			Decimals:  row.Decimals,
			Raw:       raw,
			RawString: raw.String(),
			Formatted: formatted,
		})
	}
	return balances
}
