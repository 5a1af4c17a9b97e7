package optimizer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/scanner"
)

// BalanceScanner is the slice of the scanner the planner needs.
type BalanceScanner interface {
	ScanAll(ctx context.Context, chainIDs []int64, onProgress func(scanner.Progress)) ([]scanner.TokenBalance, error)
}

// Plan stages, reported through the progress callback.
const (
	StageScanning  = "scanning"
	StageQuoting   = "quoting"
	StageSelecting = "selecting"
)

// PlanProgress is a coarse progress event covering the whole planning run.
type PlanProgress struct {
	Stage  string
	Done   int
	Total  int
	Detail string
}

// Planner runs the full scan, quote, select, compare pipeline.
type Planner struct {
	scanner BalanceScanner
	engine  *Engine
	chains  []int64
	wallet  WalletAddresses
	selCfg  SelectorConfig
	domCfg  DominanceConfig
	log     zerolog.Logger
}

// NewPlanner assembles a planner over the given chains.
func NewPlanner(sc BalanceScanner, engine *Engine, chains []int64, wallet WalletAddresses, selCfg SelectorConfig, domCfg DominanceConfig, log zerolog.Logger) *Planner {
	return &Planner{
		scanner: sc,
		engine:  engine,
		chains:  chains,
		wallet:  wallet,
		selCfg:  selCfg,
		domCfg:  domCfg,
		log:     log,
	}
}

// CalculateDepositPlan produces the plan for one target amount. Insufficient
// funds and unroutable balances come back as plan states; only a total scan
// failure or an invalid target is an error. onProgress may be nil.
func (p *Planner) CalculateDepositPlan(ctx context.Context, targetUSD float64, onProgress func(PlanProgress)) (*DepositPlan, error) {
	if targetUSD <= 0 {
		return nil, fmt.Errorf("target must be positive, got %.2f", targetUSD)
	}
	report := func(ev PlanProgress) {
		if onProgress != nil {
			onProgress(ev)
		}
	}

	balances, err := p.scanner.ScanAll(ctx, p.chains, func(sp scanner.Progress) {
		report(PlanProgress{Stage: StageScanning, Done: sp.Done, Total: sp.Total, Detail: sp.ChainName})
	})
	if err != nil {
		return nil, fmt.Errorf("scan balances: %w", err)
	}

	plan := &DepositPlan{TargetAmountUSD: targetUSD, AllBalances: balances}
	for _, bal := range balances {
		plan.AvailableBalanceUSD += bal.BalanceUSD
	}
	if plan.AvailableBalanceUSD < targetUSD {
		plan.InsufficientFunds = true
		p.log.Info().
			Float64("available", plan.AvailableBalanceUSD).
			Float64("target", targetUSD).
			Msg("insufficient funds for target")
		return plan, nil
	}

	options := p.engine.GetBridgeQuotes(ctx, p.wallet, balances, func(qp QuoteProgress) {
		report(PlanProgress{Stage: StageQuoting, Done: qp.Done, Total: qp.Total, Detail: qp.ChainName + "/" + qp.AssetSymbol})
	})
	if len(options) == 0 {
		plan.NoRoutes = true
		p.log.Warn().Int("balances", len(balances)).Msg("no bridgeable route for any balance")
		return plan, nil
	}

	report(PlanProgress{Stage: StageSelecting, Done: 0, Total: 1})
	plan.Fastest, plan.Cheapest = p.CalculateStrategies(targetUSD, options)
	rec := Compare(plan.Fastest, plan.Cheapest, p.domCfg)
	plan.Best = rec.Best
	plan.Reason = rec.Reason
	report(PlanProgress{Stage: StageSelecting, Done: 1, Total: 1})

	p.logPlan(plan)
	return plan, nil
}

// CalculateStrategies runs the selector once per objective over the same
// immutable option set.
func (p *Planner) CalculateStrategies(targetUSD float64, options []BridgeOption) (fastest, cheapest *DepositStrategy) {
	fastest = SelectStrategy(ObjectiveFastest, targetUSD, options, p.selCfg)
	cheapest = SelectStrategy(ObjectiveCheapest, targetUSD, options, p.selCfg)
	return fastest, cheapest
}

func (p *Planner) logPlan(plan *DepositPlan) {
	ev := p.log.Info().
		Float64("target", plan.TargetAmountUSD).
		Float64("available", plan.AvailableBalanceUSD).
		Str("reason", plan.Reason)
	if plan.Fastest != nil {
		ev = ev.Int("fastest_legs", len(plan.Fastest.Bridges)).Float64("fastest_out", plan.Fastest.TotalOutputUSD)
	}
	if plan.Cheapest != nil {
		ev = ev.Int("cheapest_legs", len(plan.Cheapest.Bridges)).Float64("cheapest_out", plan.Cheapest.TotalOutputUSD)
	}
	ev.Msg("deposit plan ready")
}
