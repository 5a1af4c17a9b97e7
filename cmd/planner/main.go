// Command planner computes the deposit plan for a target amount without
// touching any keys: scan, quote, select, compare, print.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/config"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/lifi"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/metrics"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/optimizer"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/pricing"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/scanner"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/util"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/wallet"
)

func main() {
	target := flag.Float64("target", 0, "deposit target in USD")
	configPath := flag.String("config", "internal/config/config.yaml", "config file path")
	flag.Parse()
	if *target <= 0 {
		fmt.Fprintln(os.Stderr, "usage: planner -target <usd>")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := util.NewLogger(cfg.App.LogLevel)
	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	planner, err := buildPlanner(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("wiring")
	}

	plan, err := planner.CalculateDepositPlan(ctx, *target, func(p optimizer.PlanProgress) {
		log.Debug().Str("stage", p.Stage).Int("done", p.Done).Int("total", p.Total).Str("detail", p.Detail).Msg("planning")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("plan")
	}
	printPlan(plan)
}

func buildPlanner(cfg *config.Config, log zerolog.Logger) (*optimizer.Planner, error) {
	rpcURLs := make(map[int64]string)
	var solanaRPC string
	var chainIDs []int64
	for _, c := range cfg.Chains {
		chainIDs = append(chainIDs, c.ID)
		if info, ok := chain.ByID(c.ID); ok && info.VM == chain.VMSolana {
			solanaRPC = c.RPCURL
			continue
		}
		rpcURLs[c.ID] = c.RPCURL
	}

	evm, err := wallet.NewEVMClient(rpcURLs, log)
	if err != nil {
		return nil, err
	}
	var sol *wallet.SolanaClient
	if solanaRPC != "" && cfg.Wallet.SolanaAddress != "" {
		sol = wallet.NewSolanaClient(solanaRPC, nil, log)
	}
	reader, err := wallet.NewReader(evm, cfg.Wallet.Address, sol, cfg.Wallet.SolanaAddress)
	if err != nil {
		return nil, err
	}

	prices := pricing.NewHTTPSource(cfg.Pricing.BaseURL, time.Duration(cfg.Pricing.CacheTTLSecs)*time.Second, nil, log)
	scan := scanner.New(reader, prices, cfg.Optimizer.MinBalanceUSD, log)
	quoter := lifi.NewClient(cfg.LiFi.BaseURL, cfg.LiFi.Integrator, log)
	engine := optimizer.NewEngine(quoter, cfg.Destination, cfg.LiFi.Slippage, cfg.Optimizer.MaxQuotedOptions, log)

	planner := optimizer.NewPlanner(scan, engine, chainIDs,
		optimizer.WalletAddresses{EVM: cfg.Wallet.Address, Solana: cfg.Wallet.SolanaAddress},
		optimizer.SelectorConfig{
			CompletionTolerance: cfg.Optimizer.CompletionTolerance,
			DustFloorUSD:        cfg.Optimizer.DustFloorUSD,
		},
		optimizer.DominanceConfig{
			OutputBand:         cfg.Optimizer.OutputBand,
			TimeToleranceSecs:  cfg.Optimizer.TimeToleranceSecs,
			FeesToleranceUSD:   cfg.Optimizer.FeesToleranceUSD,
			OutputToleranceUSD: cfg.Optimizer.OutputToleranceUSD,
		},
		log)
	return planner, nil
}

func printPlan(plan *optimizer.DepositPlan) {
	fmt.Printf("target $%.2f, available $%.2f\n", plan.TargetAmountUSD, plan.AvailableBalanceUSD)
	switch {
	case plan.InsufficientFunds:
		fmt.Println("insufficient funds: wallet cannot cover the target")
		return
	case plan.NoRoutes:
		fmt.Println("no routes: none of the balances can be bridged")
		return
	}
	if plan.Best != nil {
		fmt.Printf("recommendation: %s strategy (%s)\n", plan.Best.Objective, plan.Reason)
	} else {
		fmt.Printf("trade-off: pick fastest or cheapest (%s)\n", plan.Reason)
	}
	printStrategy("fastest", plan.Fastest)
	printStrategy("cheapest", plan.Cheapest)
}

func printStrategy(label string, s *optimizer.DepositStrategy) {
	if s == nil {
		fmt.Printf("%s: no viable strategy\n", label)
		return
	}
	fmt.Printf("%s: %d leg(s), output $%.2f for $%.2f in, fees $%.2f, ~%.0fs\n",
		label, len(s.Bridges), s.TotalOutputUSD, s.TotalInputUSD, s.TotalFeesUSD, s.TotalTimeSeconds)
	for i, leg := range s.Bridges {
		src := leg.Option.Source
		fmt.Printf("  %d. %s %s -> %s units, $%.2f in / $%.2f out via %s\n",
			i+1, src.ChainName, src.AssetSymbol, leg.UsedInputAmount,
			leg.UsedInputUSD, leg.UsedOutputUSD, leg.Option.Quote.Tool)
	}
}
