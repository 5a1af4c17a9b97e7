package optimizer

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/amount"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/config"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/lifi"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/metrics"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/scanner"
)

// Quoter is the slice of the aggregator client the optimizer needs.
type Quoter interface {
	GetQuote(ctx context.Context, req lifi.QuoteRequest) (*lifi.Quote, error)
}

// WalletAddresses carries the sending address per VM family.
type WalletAddresses struct {
	EVM    string
	Solana string
}

// Address returns the wallet address that signs on the given chain.
func (w WalletAddresses) Address(chainID int64) string {
	if info, ok := chain.ByID(chainID); ok && info.VM == chain.VMSolana {
		return w.Solana
	}
	return w.EVM
}

// QuoteProgress reports per-option quoting completion.
type QuoteProgress struct {
	Done        int
	Total       int
	ChainName   string
	AssetSymbol string
	Quoted      bool
}

// Engine quotes balances against the destination asset and assembles bridge
// options for the selector.
type Engine struct {
	quoter     Quoter
	dest       config.Destination
	slippage   float64
	maxOptions int
	log        zerolog.Logger
}

// NewEngine builds a quoting engine. maxOptions caps how many balances are
// quoted per run; balances are assumed sorted by descending USD value so the
// cap keeps the most valuable ones.
func NewEngine(quoter Quoter, dest config.Destination, slippage float64, maxOptions int, log zerolog.Logger) *Engine {
	return &Engine{quoter: quoter, dest: dest, slippage: slippage, maxOptions: maxOptions, log: log}
}

// GetBridgeQuotes requests one quote per balance, sequentially in balance
// order. Failed or unroutable quotes are logged and skipped; the settlement
// asset sitting on the destination chain needs no bridging and is skipped too.
// onProgress may be nil.
func (e *Engine) GetBridgeQuotes(ctx context.Context, wallet WalletAddresses, balances []scanner.TokenBalance, onProgress func(QuoteProgress)) []BridgeOption {
	candidates := balances
	if e.maxOptions > 0 && len(candidates) > e.maxOptions {
		candidates = candidates[:e.maxOptions]
	}

	var options []BridgeOption
	for i, bal := range candidates {
		opt, quoted := e.quoteBalance(ctx, wallet, bal)
		if quoted {
			options = append(options, *opt)
		}
		if onProgress != nil {
			onProgress(QuoteProgress{
				Done:        i + 1,
				Total:       len(candidates),
				ChainName:   bal.ChainName,
				AssetSymbol: bal.AssetSymbol,
				Quoted:      quoted,
			})
		}
	}
	return options
}

func (e *Engine) quoteBalance(ctx context.Context, wallet WalletAddresses, bal scanner.TokenBalance) (*BridgeOption, bool) {
	if e.isDestinationAsset(bal) {
		// Already in settlement position, nothing to bridge.
		return nil, false
	}
	if bal.RawBalance == "" || bal.RawBalance == "0" {
		return nil, false
	}

	quote, err := e.quoter.GetQuote(ctx, lifi.QuoteRequest{
		FromChain:   bal.ChainID,
		ToChain:     e.dest.ChainID,
		FromToken:   bal.AssetAddress,
		ToToken:     e.dest.USDCAddress,
		FromAmount:  bal.RawBalance,
		FromAddress: wallet.Address(bal.ChainID),
		ToAddress:   wallet.EVM,
		Slippage:    e.slippage,
	})
	if err != nil {
		metrics.QuotesTotal.WithLabelValues("failed").Inc()
		evt := e.log.Warn()
		if lifi.IsNoRoute(err) {
			evt = e.log.Debug()
		}
		evt.Err(err).Str("chain", bal.ChainName).Str("asset", bal.AssetSymbol).Msg("quote skipped")
		return nil, false
	}

	outTokens, err := amount.FromRaw(quote.Estimate.ToAmount, e.dest.USDCDecimals)
	if err != nil {
		metrics.QuotesTotal.WithLabelValues("failed").Inc()
		e.log.Warn().Err(err).Str("asset", bal.AssetSymbol).Msg("unparseable quote output, skipped")
		return nil, false
	}
	// Destination asset is a dollar stable, so output tokens are output USD.
	outputUSD := amount.USDValue(outTokens, 1.0)
	if outputUSD <= 0 || bal.BalanceUSD <= 0 {
		metrics.QuotesTotal.WithLabelValues("failed").Inc()
		return nil, false
	}

	fees := bal.BalanceUSD - outputUSD
	if fees < 0 {
		fees = 0
	}
	metrics.QuotesTotal.WithLabelValues("ok").Inc()
	return &BridgeOption{
		Source:               bal,
		Quote:                quote,
		EstimatedOutputUSD:   outputUSD,
		EstimatedTimeSeconds: quote.Estimate.ExecutionDuration,
		EstimatedFeesUSD:     fees,
		Efficiency:           outputUSD / bal.BalanceUSD,
	}, true
}

func (e *Engine) isDestinationAsset(bal scanner.TokenBalance) bool {
	return bal.ChainID == e.dest.ChainID && strings.EqualFold(bal.AssetAddress, e.dest.USDCAddress)
}
