// Package executor runs a selected deposit strategy: each bridge leg is
// re-quoted, signed, submitted, and tracked in sequence, then whatever arrived
// on the destination chain is deposited into the bridge contract.
package executor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/amount"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/config"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/lifi"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/metrics"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/optimizer"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/wallet"
)

// Quoter refreshes routes right before submission; planning quotes are stale
// by execution time.
type Quoter interface {
	GetQuote(ctx context.Context, req lifi.QuoteRequest) (*lifi.Quote, error)
}

// StatusSource polls cross-chain transfer state for a submitted leg.
type StatusSource interface {
	GetStatus(ctx context.Context, txHash string, fromChain, toChain int64) (*lifi.Status, error)
}

// Submitter signs and sends the quote's transaction on the source chain.
type Submitter interface {
	Submit(ctx context.Context, quote *lifi.Quote) (txHash string, err error)
}

// Settler handles the destination side: how much settlement asset the wallet
// holds and the final transfer into the bridge contract.
type Settler interface {
	SettledBalance(ctx context.Context) (*big.Int, error)
	Deposit(ctx context.Context, raw *big.Int) (txHash string, err error)
}

// Config carries the execution knobs.
type Config struct {
	Destination      config.Destination
	Wallet           optimizer.WalletAddresses
	Slippage         float64
	PollInterval     time.Duration
	MinSettlementUSD float64
}

// Executor drives one strategy to settlement. Legs run strictly one at a
// time; parallel bridging from the same wallet races on nonces.
type Executor struct {
	quoter    Quoter
	status    StatusSource
	submitter Submitter
	settler   Settler
	cfg       Config
	log       zerolog.Logger
}

// New assembles an executor.
func New(quoter Quoter, status StatusSource, submitter Submitter, settler Settler, cfg Config, log zerolog.Logger) *Executor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	return &Executor{quoter: quoter, status: status, submitter: submitter, settler: settler, cfg: cfg, log: log}
}

// ExecuteStrategy runs every leg of the strategy in order, then settles.
// A wallet rejection abandons the remaining legs; any other leg failure is
// recorded and the run continues. As long as at least one leg completed,
// whatever reached the destination is settled, so a rejected run can still
// finish as a partial success. The returned Result is always populated, also
// on error. onProgress may be nil.
func (e *Executor) ExecuteStrategy(ctx context.Context, strategy *optimizer.DepositStrategy, targetUSD float64, onProgress func(ProgressEvent)) (*Result, error) {
	if strategy == nil || len(strategy.Bridges) == 0 {
		return nil, errors.New("empty strategy")
	}
	result := &Result{RunID: uuid.NewString()}
	report := func(ev ProgressEvent) {
		ev.RunID = result.RunID
		ev.TotalLegs = len(strategy.Bridges)
		if onProgress != nil {
			onProgress(ev)
		}
	}
	e.log.Info().Str("run", result.RunID).Str("objective", string(strategy.Objective)).
		Int("legs", len(strategy.Bridges)).Float64("target", targetUSD).Msg("executing strategy")

	for i, leg := range strategy.Bridges {
		legResult := e.executeLeg(ctx, i, leg, report)
		result.Legs = append(result.Legs, legResult)
		metrics.LegsTotal.WithLabelValues(string(legResult.State)).Inc()

		if legResult.State == LegCompleted {
			result.BridgedOutputUSD += legResult.OutputUSD
			continue
		}
		if legResult.Failure == FailureUserRejected {
			// The user said no; stop asking. Anything already bridged
			// still gets settled below.
			result.Failure = FailureUserRejected
			for j := i + 1; j < len(strategy.Bridges); j++ {
				result.Legs = append(result.Legs, LegResult{Index: j, State: LegSkipped})
				metrics.LegsTotal.WithLabelValues(string(LegSkipped)).Inc()
				report(ProgressEvent{LegIndex: j, State: LegSkipped, Detail: "abandoned after wallet rejection"})
			}
			break
		}
		e.log.Warn().Str("run", result.RunID).Int("leg", i).Str("failure", string(legResult.Failure)).
			Msg("leg failed, continuing with remaining legs")
	}

	completed := 0
	for _, lr := range result.Legs {
		if lr.State == LegCompleted {
			completed++
		}
	}
	if completed == 0 {
		if result.Failure == "" {
			result.Failure = result.Legs[0].Failure
		}
		if result.Failure == FailureUserRejected {
			return result, fmt.Errorf("leg rejected before any completed: %w", wallet.ErrUserRejected)
		}
		return result, errors.New("no leg completed")
	}
	if completed < len(strategy.Bridges) {
		e.log.Warn().Str("run", result.RunID).Int("completed", completed).
			Int("of", len(strategy.Bridges)).Msg("partial run, settling what arrived")
	}

	if err := e.settle(ctx, targetUSD, result); err != nil {
		return result, err
	}
	result.Completed = true
	return result, nil
}

func (e *Executor) executeLeg(ctx context.Context, index int, leg optimizer.Allocation, report func(ProgressEvent)) LegResult {
	src := leg.Option.Source
	detail := src.AssetSymbol + " on " + src.ChainName
	report(ProgressEvent{LegIndex: index, State: LegExecuting, Percent: PhasePreparing, Detail: detail})

	// Fresh quote at the exact allocated amount; the planning quote covered
	// the full balance and has likely expired anyway.
	quote, err := e.quoter.GetQuote(ctx, lifi.QuoteRequest{
		FromChain:   src.ChainID,
		ToChain:     e.cfg.Destination.ChainID,
		FromToken:   src.AssetAddress,
		ToToken:     e.cfg.Destination.USDCAddress,
		FromAmount:  leg.UsedInputAmount,
		FromAddress: e.cfg.Wallet.Address(src.ChainID),
		ToAddress:   e.cfg.Wallet.EVM,
		Slippage:    e.cfg.Slippage,
	})
	if err != nil {
		return e.failLeg(index, "", err, report)
	}
	report(ProgressEvent{LegIndex: index, State: LegExecuting, Percent: PhaseQuoted, Detail: detail})

	txHash, err := e.submitter.Submit(ctx, quote)
	if err != nil {
		return e.failLeg(index, txHash, err, report)
	}
	report(ProgressEvent{LegIndex: index, State: LegExecuting, Percent: PhaseSubmitted, Detail: detail, TxHash: txHash})

	if err := e.awaitArrival(ctx, txHash, src.ChainID); err != nil {
		return e.failLeg(index, txHash, err, report)
	}

	outputUSD := leg.UsedOutputUSD
	if tokens, convErr := amount.FromRaw(quote.Estimate.ToAmount, e.cfg.Destination.USDCDecimals); convErr == nil {
		outputUSD = amount.USDValue(tokens, 1.0)
	}
	report(ProgressEvent{LegIndex: index, State: LegCompleted, Percent: PhaseConfirmed, Detail: detail, TxHash: txHash})
	return LegResult{Index: index, State: LegCompleted, TxHash: txHash, OutputUSD: outputUSD}
}

func (e *Executor) failLeg(index int, txHash string, err error, report func(ProgressEvent)) LegResult {
	kind := Classify(err)
	e.log.Warn().Err(err).Int("leg", index).Str("kind", string(kind)).Msg("leg execution failed")
	report(ProgressEvent{LegIndex: index, State: LegFailed, Detail: kind.Message(), TxHash: txHash})
	return LegResult{Index: index, State: LegFailed, TxHash: txHash, Failure: kind}
}

// awaitArrival polls transfer status until funds land on the destination.
// NOT_FOUND and PENDING keep polling (indexing lags the chain); transient API
// errors are retried on the same cadence.
func (e *Executor) awaitArrival(ctx context.Context, txHash string, fromChain int64) error {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()
	for {
		st, err := e.status.GetStatus(ctx, txHash, fromChain, e.cfg.Destination.ChainID)
		if err == nil {
			switch st.Status {
			case lifi.StatusDone:
				return nil
			case lifi.StatusFailed, lifi.StatusInvalid:
				if st.SubstatusMessage != "" {
					return fmt.Errorf("transfer %s: %s", st.Status, st.SubstatusMessage)
				}
				return fmt.Errorf("transfer %s", st.Status)
			}
		} else if !lifi.IsTransient(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// settle moves min(target, settled balance) into the bridge contract. Deposits
// under the contract minimum are refused outright.
func (e *Executor) settle(ctx context.Context, targetUSD float64, result *Result) error {
	balanceRaw, err := e.settler.SettledBalance(ctx)
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("read settled balance: %w", err)
	}

	decimals := e.cfg.Destination.USDCDecimals
	targetRaw := decimal.NewFromFloat(targetUSD).Shift(int32(decimals)).Floor().BigInt()
	depositRaw := new(big.Int).Set(balanceRaw)
	if depositRaw.Cmp(targetRaw) > 0 {
		depositRaw.Set(targetRaw)
	}

	tokens, err := amount.FromRaw(depositRaw.String(), decimals)
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("failed").Inc()
		return err
	}
	depositUSD := amount.USDValue(tokens, 1.0)
	if depositUSD < e.cfg.MinSettlementUSD {
		metrics.SettlementsTotal.WithLabelValues("below_minimum").Inc()
		return fmt.Errorf("%w: %.2f USDC settled, minimum is %.2f",
			ErrSettlementBelowMinimum, depositUSD, e.cfg.MinSettlementUSD)
	}

	txHash, err := e.settler.Deposit(ctx, depositRaw)
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("settlement deposit: %w", err)
	}
	metrics.SettlementsTotal.WithLabelValues("ok").Inc()
	result.SettledUSD = depositUSD
	result.SettlementTx = txHash
	e.log.Info().Str("run", result.RunID).Float64("usd", depositUSD).Str("tx", txHash).Msg("settlement deposited")
	return nil
}
