// Package scanner enumerates a wallet's bridgeable balances across chains and
// values them in USD for the optimizer.
package scanner

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/amount"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/metrics"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/pricing"
)

// TokenBalance is one nonzero, above-threshold balance the wallet holds.
// Immutable once produced; the optimizer never mutates it.
type TokenBalance struct {
	ChainID       int64
	ChainName     string
	AssetAddress  string
	AssetSymbol   string
	AssetDecimals int
	RawBalance    string // on-chain integer units
	BalanceUSD    float64
}

// BalanceReader fetches the wallet's raw balance of one asset on one chain.
type BalanceReader interface {
	Balance(ctx context.Context, chainID int64, assetAddress string) (*big.Int, error)
}

// Progress reports per-chain scan completion.
type Progress struct {
	ChainID   int64
	ChainName string
	Done      int
	Total     int
}

// Scanner fans balance reads out across chains. Each scan is independent; the
// scanner itself holds no state between calls.
type Scanner struct {
	reader        BalanceReader
	prices        pricing.Source
	minBalanceUSD float64
	log           zerolog.Logger
}

const scanConcurrency = 4

// ErrNoChainScanned means every chain failed outright; partial failures are
// tolerated and simply shrink the result.
var ErrNoChainScanned = errors.New("scanner: no chain could be scanned")

// New builds a scanner. Balances below minBalanceUSD are treated as dust and
// dropped before the optimizer ever sees them.
func New(reader BalanceReader, prices pricing.Source, minBalanceUSD float64, log zerolog.Logger) *Scanner {
	return &Scanner{reader: reader, prices: prices, minBalanceUSD: minBalanceUSD, log: log}
}

// ScanAll reads the native asset plus the known stable table on every chain,
// returning balances ordered by descending USD value. onProgress may be nil.
func (s *Scanner) ScanAll(ctx context.Context, chainIDs []int64, onProgress func(Progress)) ([]TokenBalance, error) {
	var (
		mu      sync.Mutex
		results []TokenBalance
		done    int
		scanned int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	for _, chainID := range chainIDs {
		chainID := chainID
		g.Go(func() error {
			balances, ok := s.scanChain(gctx, chainID)

			mu.Lock()
			if ok {
				scanned++
				results = append(results, balances...)
			}
			done++
			// Reported under the lock so callbacks arrive serialized with
			// monotonic Done counts.
			if onProgress != nil {
				onProgress(Progress{ChainID: chainID, ChainName: chain.Name(chainID), Done: done, Total: len(chainIDs)})
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if scanned == 0 && len(chainIDs) > 0 {
		return nil, ErrNoChainScanned
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].BalanceUSD != results[j].BalanceUSD {
			return results[i].BalanceUSD > results[j].BalanceUSD
		}
		if results[i].ChainID != results[j].ChainID {
			return results[i].ChainID < results[j].ChainID
		}
		return strings.ToLower(results[i].AssetAddress) < strings.ToLower(results[j].AssetAddress)
	})
	return results, nil
}

// scanChain reads every tracked asset on one chain. ok is false only when no
// asset on the chain could be read at all.
func (s *Scanner) scanChain(ctx context.Context, chainID int64) ([]TokenBalance, bool) {
	info, known := chain.ByID(chainID)
	if !known {
		s.log.Warn().Int64("chain", chainID).Msg("unknown chain id, skipped")
		return nil, false
	}

	type asset struct {
		address  string
		symbol   string
		decimals int
	}
	assets := []asset{{chain.NativeAddress(chainID), info.NativeSymbol, info.NativeDecimals}}
	for _, stable := range chain.Stables(chainID) {
		assets = append(assets, asset{stable.Address, stable.Symbol, stable.Decimals})
	}

	var out []TokenBalance
	readable := false
	for _, a := range assets {
		raw, err := s.reader.Balance(ctx, chainID, a.address)
		if err != nil {
			s.log.Warn().Err(err).Str("chain", info.Name).Str("asset", a.symbol).Msg("balance read failed, skipped")
			continue
		}
		readable = true
		metrics.BalancesScanned.WithLabelValues(info.Name).Inc()
		if raw.Sign() == 0 {
			continue
		}

		tokens, err := amount.FromRaw(raw.String(), a.decimals)
		if err != nil {
			s.log.Warn().Err(err).Str("asset", a.symbol).Msg("unparseable balance, skipped")
			continue
		}
		price, priced := s.prices.Price(ctx, chainID, a.address, a.symbol)
		if !priced {
			// Unpriced assets contribute zero USD and fall under the floor.
			continue
		}
		usd := amount.USDValue(tokens, price)
		if usd < s.minBalanceUSD {
			continue
		}
		out = append(out, TokenBalance{
			ChainID:       chainID,
			ChainName:     info.Name,
			AssetAddress:  a.address,
			AssetSymbol:   a.symbol,
			AssetDecimals: a.decimals,
			RawBalance:    raw.String(),
			BalanceUSD:    usd,
		})
	}
	return out, readable
}
