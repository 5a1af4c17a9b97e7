// Package pricing values assets in USD. Stables are pinned at $1; everything
// else is looked up against a Dexscreener-compatible HTTP API with a short
// TTL cache in front.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/cache"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
)

// Source resolves an asset to a USD price. ok=false means unpriced; callers
// treat unpriced assets as zero USD contribution.
type Source interface {
	Price(ctx context.Context, chainID int64, assetAddress, symbol string) (price float64, ok bool)
}

// chainSlugs maps registry ids to Dexscreener chain identifiers.
var chainSlugs = map[int64]string{
	chain.IDEthereum:  "ethereum",
	chain.IDOptimism:  "optimism",
	chain.IDBSC:       "bsc",
	chain.IDPolygon:   "polygon",
	chain.IDBase:      "base",
	chain.IDArbitrum:  "arbitrum",
	chain.IDAvalanche: "avalanche",
	chain.IDSolana:    "solana",
}

// wrappedNative substitutes a tradable token address when pricing gas assets.
var wrappedNative = map[int64]string{
	chain.IDEthereum:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	chain.IDOptimism:  "0x4200000000000000000000000000000000000006",
	chain.IDBSC:       "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
	chain.IDPolygon:   "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270",
	chain.IDBase:      "0x4200000000000000000000000000000000000006",
	chain.IDArbitrum:  "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1",
	chain.IDAvalanche: "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7",
	chain.IDSolana:    "So11111111111111111111111111111111111111112",
}

// HTTPSource polls a Dexscreener-style endpoint for token prices.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.TTL[string, float64]
	log        zerolog.Logger
}

// NewHTTPSource builds a price source with a short TTL cache. A nil clock
// defaults to wall time.
func NewHTTPSource(baseURL string, ttl time.Duration, now cache.Clock, log zerolog.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache.NewTTL[string, float64](ttl, now),
		log:        log,
	}
}

// Invalidate drops all cached prices; called before each optimization run.
func (s *HTTPSource) Invalidate() { s.cache.Reset() }

// Price implements Source. Lookup failures are logged and reported as
// unpriced, never raised: a missing price only shrinks the option set.
func (s *HTTPSource) Price(ctx context.Context, chainID int64, assetAddress, symbol string) (float64, bool) {
	if chain.IsStableSymbol(symbol) {
		return 1.0, true
	}
	address := assetAddress
	if chain.IsNative(chainID, assetAddress, symbol) {
		wrapped, ok := wrappedNative[chainID]
		if !ok {
			return 0, false
		}
		address = wrapped
	}

	key := strconv.FormatInt(chainID, 10) + ":" + strings.ToLower(address)
	if px, ok := s.cache.Get(key); ok {
		return px, true
	}

	px, err := s.fetch(ctx, chainID, address)
	if err != nil {
		s.log.Warn().Err(err).Int64("chain", chainID).Str("asset", symbol).Msg("price lookup failed")
		return 0, false
	}
	s.cache.Put(key, px)
	return px, true
}

type pairsResponse struct {
	Pairs []struct {
		ChainID  string `json:"chainId"`
		PriceUsd string `json:"priceUsd"`
	} `json:"pairs"`
}

func (s *HTTPSource) fetch(ctx context.Context, chainID int64, address string) (float64, error) {
	slug, ok := chainSlugs[chainID]
	if !ok {
		return 0, fmt.Errorf("no price feed slug for chain %d", chainID)
	}
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", s.baseURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload pairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	for _, pair := range payload.Pairs {
		if pair.ChainID != slug || pair.PriceUsd == "" {
			continue
		}
		px, err := strconv.ParseFloat(pair.PriceUsd, 64)
		if err == nil && px > 0 {
			return px, nil
		}
	}
	return 0, fmt.Errorf("no priced pair on %s for %s", slug, address)
}

// Static is a fixed price table keyed by "chainID:address", for tests and
// offline planning.
type Static map[string]float64

// Price implements Source from the fixed table, with the same $1 stable pin.
func (s Static) Price(_ context.Context, chainID int64, assetAddress, symbol string) (float64, bool) {
	if chain.IsStableSymbol(symbol) {
		return 1.0, true
	}
	px, ok := s[strconv.FormatInt(chainID, 10)+":"+strings.ToLower(assetAddress)]
	return px, ok && px > 0
}
