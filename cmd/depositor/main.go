// Command depositor runs the full flow: plan a deposit, execute the chosen
// strategy leg by leg, settle into the bridge contract, and wait for the
// exchange to credit the account. Needs EVM_PRIVATE_KEY (and optionally
// SOLANA_PRIVATE_KEY_BASE58) in the environment or a .env file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/config"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/executor"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/hyperliquid"
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
	objective := flag.String("strategy", "auto", "fastest, cheapest, or auto")
	configPath := flag.String("config", "internal/config/config.yaml", "config file path")
	flag.Parse()
	if *target <= 0 {
		fmt.Fprintln(os.Stderr, "usage: depositor -target <usd> [-strategy fastest|cheapest|auto]")
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
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, err := wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("wiring")
	}

	plan, err := deps.planner.CalculateDepositPlan(ctx, *target, func(p optimizer.PlanProgress) {
		log.Info().Str("stage", p.Stage).Int("done", p.Done).Int("total", p.Total).Str("detail", p.Detail).Msg("planning")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("plan")
	}
	strategy, err := chooseStrategy(plan, *objective)
	if err != nil {
		log.Fatal().Err(err).Msg("no executable strategy")
	}
	log.Info().Str("objective", string(strategy.Objective)).Int("legs", len(strategy.Bridges)).
		Float64("output", strategy.TotalOutputUSD).Msg("strategy chosen")

	result, err := deps.exec.ExecuteStrategy(ctx, strategy, *target, func(ev executor.ProgressEvent) {
		log.Info().Str("run", ev.RunID).Int("leg", ev.LegIndex+1).Int("of", ev.TotalLegs).
			Str("state", string(ev.State)).Int("pct", ev.Percent).Str("detail", ev.Detail).Msg("executing")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("execution failed")
	}
	log.Info().Float64("settled", result.SettledUSD).Str("tx", result.SettlementTx).Msg("deposit settled")

	credited, err := deps.watcher.WaitForCredit(ctx, result.SettledUSD*0.99,
		time.Duration(cfg.Hyperliquid.CreditTimeoutSecs)*time.Second)
	if err != nil {
		if errors.Is(err, hyperliquid.ErrCreditTimeout) {
			log.Warn().Msg("credit not observed before timeout; check the exchange balance manually")
			return
		}
		log.Fatal().Err(err).Msg("credit watch")
	}
	log.Info().Float64("credited", credited).Msg("deposit credited on exchange")
}

type dependencies struct {
	planner *optimizer.Planner
	exec    *executor.Executor
	watcher *hyperliquid.Watcher
}

func wire(cfg *config.Config, log zerolog.Logger) (*dependencies, error) {
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
	signer, err := wallet.NewEVMSignerFromEnv(evm, log)
	if err != nil {
		return nil, err
	}
	walletAddr := signer.Address().Hex()
	if cfg.Wallet.Address != "" && walletAddr != cfg.Wallet.Address {
		log.Warn().Str("configured", cfg.Wallet.Address).Str("key", walletAddr).
			Msg("configured wallet address differs from signing key, using the key")
	}

	var sol *wallet.SolanaClient
	if solanaRPC != "" && cfg.Wallet.SolanaAddress != "" {
		solKey, keyErr := wallet.LoadSolanaKeyFromEnv()
		if keyErr != nil {
			log.Warn().Err(keyErr).Msg("solana key missing, solana legs disabled")
		} else {
			sol = wallet.NewSolanaClient(solanaRPC, solKey, log)
		}
	}
	reader, err := wallet.NewReader(evm, walletAddr, sol, cfg.Wallet.SolanaAddress)
	if err != nil {
		return nil, err
	}

	prices := pricing.NewHTTPSource(cfg.Pricing.BaseURL, time.Duration(cfg.Pricing.CacheTTLSecs)*time.Second, nil, log)
	scan := scanner.New(reader, prices, cfg.Optimizer.MinBalanceUSD, log)
	client := lifi.NewClient(cfg.LiFi.BaseURL, cfg.LiFi.Integrator, log)
	engine := optimizer.NewEngine(client, cfg.Destination, cfg.LiFi.Slippage, cfg.Optimizer.MaxQuotedOptions, log)

	addresses := optimizer.WalletAddresses{EVM: walletAddr, Solana: cfg.Wallet.SolanaAddress}
	planner := optimizer.NewPlanner(scan, engine, chainIDs, addresses,
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

	exec := executor.New(client, client,
		executor.NewWalletSubmitter(signer, sol, log),
		executor.NewUSDCSettler(signer, evm, cfg.Destination),
		executor.Config{
			Destination:      cfg.Destination,
			Wallet:           addresses,
			Slippage:         cfg.LiFi.Slippage,
			PollInterval:     time.Duration(cfg.LiFi.PollIntervalMs) * time.Millisecond,
			MinSettlementUSD: cfg.Optimizer.MinSettlementUSD,
		},
		log)

	watcher := hyperliquid.NewWatcher(cfg.Hyperliquid.WSURL, walletAddr, log)
	return &dependencies{planner: planner, exec: exec, watcher: watcher}, nil
}

func chooseStrategy(plan *optimizer.DepositPlan, objective string) (*optimizer.DepositStrategy, error) {
	switch {
	case plan.InsufficientFunds:
		return nil, fmt.Errorf("insufficient funds: $%.2f available for a $%.2f target",
			plan.AvailableBalanceUSD, plan.TargetAmountUSD)
	case plan.NoRoutes:
		return nil, errors.New("no bridgeable route for any balance")
	}
	switch objective {
	case "fastest":
		if plan.Fastest == nil {
			return nil, errors.New("no fastest strategy available")
		}
		return plan.Fastest, nil
	case "cheapest":
		if plan.Cheapest == nil {
			return nil, errors.New("no cheapest strategy available")
		}
		return plan.Cheapest, nil
	case "auto":
		if plan.Best != nil {
			return plan.Best, nil
		}
		// Genuine trade-off: default to not overpaying.
		if plan.Cheapest != nil {
			return plan.Cheapest, nil
		}
		return nil, errors.New("no viable strategy")
	default:
		return nil, fmt.Errorf("unknown strategy %q", objective)
	}
}
