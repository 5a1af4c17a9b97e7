// Package optimizer turns scanned balances into an executable deposit plan:
// one bridging quote per balance, greedy selection under two objectives, and a
// dominance comparison between the resulting strategies.
package optimizer

import (
	"strings"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/lifi"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/scanner"
)

// Objective orders options during selection.
type Objective string

const (
	// ObjectiveFastest minimizes total bridging time.
	ObjectiveFastest Objective = "fastest"
	// ObjectiveCheapest maximizes output per input dollar.
	ObjectiveCheapest Objective = "cheapest"
)

// BridgeOption is one quoted route from a source balance to the settlement
// asset. Immutable after creation; allocations copy it rather than mutate it.
type BridgeOption struct {
	Source               scanner.TokenBalance
	Quote                *lifi.Quote
	EstimatedOutputUSD   float64
	EstimatedTimeSeconds float64
	EstimatedFeesUSD     float64
	Efficiency           float64 // output / input
}

// Allocation commits a fraction of an option's balance to a strategy. The same
// option may be allocated differently across the two strategies.
type Allocation struct {
	Option          BridgeOption
	UsedInputUSD    float64
	UsedOutputUSD   float64
	UsedInputAmount string // raw on-chain units, already rounded
}

// DepositStrategy is an ordered set of allocations reaching (or approaching)
// the target. Read-only after construction.
type DepositStrategy struct {
	Objective        Objective
	Bridges          []Allocation
	TotalInputUSD    float64
	TotalOutputUSD   float64
	TotalTimeSeconds float64
	TotalFeesUSD     float64
	Efficiency       float64
}

// LegKey identifies an allocation by source chain, asset, and amount, used for
// the identical-strategy comparison.
func (a Allocation) LegKey() string {
	return strings.ToLower(a.Option.Source.AssetAddress) + "@" +
		a.Option.Source.ChainName + ":" + a.UsedInputAmount
}

// DepositPlan is the result of one optimization run. Insufficient funds and
// missing routes are plan states, not errors: both are expected outcomes.
type DepositPlan struct {
	TargetAmountUSD     float64
	AvailableBalanceUSD float64
	Fastest             *DepositStrategy
	Cheapest            *DepositStrategy
	// Best is set when one strategy dominates (or both collapse to the same
	// route); Reason says why. When Best is nil and both strategies exist,
	// the caller faces a genuine speed/cost trade-off.
	Best              *DepositStrategy
	Reason            string
	AllBalances       []scanner.TokenBalance
	InsufficientFunds bool
	NoRoutes          bool
}
