package optimizer

import (
	"sort"
	"strings"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/amount"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
)

// SelectorConfig tunes the greedy allocator.
type SelectorConfig struct {
	// CompletionTolerance stops allocation once this fraction of the target
	// is covered; bridging another leg for the last few percent usually
	// costs more in fees than it delivers.
	CompletionTolerance float64
	// DustFloorUSD drops legs whose output would not be worth executing.
	DustFloorUSD float64
}

// SelectStrategy greedily builds a strategy toward targetUSD from the quoted
// options, ordered by the objective. Options are never mutated; allocations
// carry copies. Returns nil when no leg survives allocation.
func SelectStrategy(objective Objective, targetUSD float64, options []BridgeOption, cfg SelectorConfig) *DepositStrategy {
	if targetUSD <= 0 || len(options) == 0 {
		return nil
	}

	ordered := make([]BridgeOption, len(options))
	copy(ordered, options)
	sortByObjective(objective, ordered)

	stopAt := cfg.CompletionTolerance * targetUSD
	strategy := &DepositStrategy{Objective: objective}

	for _, opt := range ordered {
		if strategy.TotalOutputUSD >= stopAt {
			break
		}
		alloc, ok := allocate(opt, targetUSD-strategy.TotalOutputUSD, cfg.DustFloorUSD)
		if !ok {
			continue
		}
		strategy.Bridges = append(strategy.Bridges, alloc)
		strategy.TotalInputUSD += alloc.UsedInputUSD
		strategy.TotalOutputUSD += alloc.UsedOutputUSD
		strategy.TotalTimeSeconds += opt.EstimatedTimeSeconds
		strategy.TotalFeesUSD += alloc.UsedInputUSD - alloc.UsedOutputUSD
	}

	if len(strategy.Bridges) == 0 {
		return nil
	}
	if strategy.TotalInputUSD > 0 {
		strategy.Efficiency = strategy.TotalOutputUSD / strategy.TotalInputUSD
	}
	return strategy
}

// allocate carves neededOutputUSD worth of output from the option's balance,
// reserving gas for natives and rounding to what the bridge will accept.
func allocate(opt BridgeOption, neededOutputUSD, dustFloorUSD float64) (Allocation, bool) {
	src := opt.Source
	if opt.Efficiency <= 0 || src.BalanceUSD <= 0 {
		return Allocation{}, false
	}

	tokens, err := amount.FromRaw(src.RawBalance, src.AssetDecimals)
	if err != nil || tokens.Sign() <= 0 {
		return Allocation{}, false
	}
	// Price implied by the scan so allocation and scan stay consistent even
	// if the market moved since.
	price := src.BalanceUSD / tokens.InexactFloat64()

	available := tokens
	if chain.IsNative(src.ChainID, src.AssetAddress, src.AssetSymbol) {
		available = available.Sub(chain.GasReserve(src.ChainID))
		if available.Sign() <= 0 {
			return Allocation{}, false
		}
	}

	availableOutputUSD := amount.USDValue(available, price) * opt.Efficiency
	allocTokens := available
	if availableOutputUSD > neededOutputUSD {
		allocTokens = amount.TokensForUSD(neededOutputUSD/opt.Efficiency, price)
		if allocTokens.GreaterThan(available) {
			allocTokens = available
		}
	}

	stable := chain.IsStableSymbol(src.AssetSymbol)
	allocTokens = amount.FloorForBridge(allocTokens, stable)
	if amount.RawIsZero(allocTokens, src.AssetDecimals) {
		return Allocation{}, false
	}

	// Recompute USD from the rounded amount so the plan never promises more
	// than the wire amount delivers.
	inputUSD := amount.USDValue(allocTokens, price)
	outputUSD := inputUSD * opt.Efficiency
	if outputUSD < dustFloorUSD {
		return Allocation{}, false
	}

	return Allocation{
		Option:          opt,
		UsedInputUSD:    inputUSD,
		UsedOutputUSD:   outputUSD,
		UsedInputAmount: amount.ToRaw(allocTokens, src.AssetDecimals),
	}, true
}

// sortByObjective orders options for greedy consumption. Ties fall back to
// chain id and address so identical inputs always produce identical plans.
func sortByObjective(objective Objective, options []BridgeOption) {
	sort.SliceStable(options, func(i, j int) bool {
		a, b := options[i], options[j]
		switch objective {
		case ObjectiveFastest:
			if a.EstimatedTimeSeconds != b.EstimatedTimeSeconds {
				return a.EstimatedTimeSeconds < b.EstimatedTimeSeconds
			}
			if a.EstimatedOutputUSD != b.EstimatedOutputUSD {
				return a.EstimatedOutputUSD > b.EstimatedOutputUSD
			}
		default:
			if a.Efficiency != b.Efficiency {
				return a.Efficiency > b.Efficiency
			}
			if a.EstimatedOutputUSD != b.EstimatedOutputUSD {
				return a.EstimatedOutputUSD > b.EstimatedOutputUSD
			}
		}
		if a.Source.ChainID != b.Source.ChainID {
			return a.Source.ChainID < b.Source.ChainID
		}
		return strings.ToLower(a.Source.AssetAddress) < strings.ToLower(b.Source.AssetAddress)
	})
}
