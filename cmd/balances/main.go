// Command balances scans every configured chain for the wallet's bridgeable
// balances and prints them in descending USD order. Read-only: no keys needed.
package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/config"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/pricing"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/scanner"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/util"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/wallet"
)

func main() {
	cfg, err := config.Load("internal/config/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := util.NewLogger(cfg.App.LogLevel)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

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
		log.Fatal().Err(err).Msg("evm clients")
	}
	var sol *wallet.SolanaClient
	if solanaRPC != "" && cfg.Wallet.SolanaAddress != "" {
		sol = wallet.NewSolanaClient(solanaRPC, nil, log)
	}
	reader, err := wallet.NewReader(evm, cfg.Wallet.Address, sol, cfg.Wallet.SolanaAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("wallet reader")
	}

	prices := pricing.NewHTTPSource(cfg.Pricing.BaseURL, time.Duration(cfg.Pricing.CacheTTLSecs)*time.Second, nil, log)
	scan := scanner.New(reader, prices, cfg.Optimizer.MinBalanceUSD, log)

	balances, err := scan.ScanAll(ctx, chainIDs, func(p scanner.Progress) {
		log.Info().Str("chain", p.ChainName).Int("done", p.Done).Int("total", p.Total).Msg("chain scanned")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("scan")
	}

	if len(balances) == 0 {
		fmt.Println("no bridgeable balances found")
		return
	}
	total := 0.0
	fmt.Printf("%-12s %-8s %-14s %s\n", "CHAIN", "ASSET", "BALANCE", "USD")
	for _, b := range balances {
		fmt.Printf("%-12s %-8s %-14s $%.2f\n", b.ChainName, b.AssetSymbol, b.RawBalance, b.BalanceUSD)
		total += b.BalanceUSD
	}
	fmt.Printf("total: $%.2f across %d balances\n", total, len(balances))
}
