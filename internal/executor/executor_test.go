package executor

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/config"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/lifi"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/optimizer"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/scanner"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/wallet"
)

var testCfg = Config{
	Destination: config.Destination{
		ChainID:       chain.IDArbitrum,
		USDCAddress:   "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
		USDCDecimals:  6,
		BridgeAddress: "0x2Df1c51E09aECF9cacB7bc98cB1742757f163dF7",
	},
	Wallet:           optimizer.WalletAddresses{EVM: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"},
	Slippage:         0.005,
	PollInterval:     time.Millisecond,
	MinSettlementUSD: 5.0,
}

func testStrategy(legCount int) *optimizer.DepositStrategy {
	s := &optimizer.DepositStrategy{Objective: optimizer.ObjectiveFastest}
	for i := 0; i < legCount; i++ {
		s.Bridges = append(s.Bridges, optimizer.Allocation{
			Option: optimizer.BridgeOption{
				Source: scanner.TokenBalance{
					ChainID:       chain.IDBase,
					ChainName:     "Base",
					AssetAddress:  "0xaaa" + strconv.Itoa(i),
					AssetSymbol:   "USDC",
					AssetDecimals: 6,
				},
				Quote:                &lifi.Quote{ID: "plan-" + strconv.Itoa(i)},
				EstimatedTimeSeconds: 30,
				Efficiency:           0.99,
			},
			UsedInputUSD:    10,
			UsedOutputUSD:   9.9,
			UsedInputAmount: "10000000",
		})
		s.TotalInputUSD += 10
		s.TotalOutputUSD += 9.9
	}
	return s
}

type stubQuoter struct{ calls int }

func (q *stubQuoter) GetQuote(_ context.Context, req lifi.QuoteRequest) (*lifi.Quote, error) {
	q.calls++
	return &lifi.Quote{
		ID: "fresh-" + strconv.Itoa(q.calls),
		Action: lifi.Action{
			FromChainID: req.FromChain,
			ToChainID:   req.ToChain,
			FromAmount:  req.FromAmount,
		},
		Estimate:           lifi.Estimate{FromAmount: req.FromAmount, ToAmount: "9900000"},
		TransactionRequest: &lifi.TxRequest{To: "0xrouter", Data: "0x00", Value: "0", GasLimit: "300000"},
	}, nil
}

type stubStatus struct{}

func (stubStatus) GetStatus(_ context.Context, _ string, _, _ int64) (*lifi.Status, error) {
	return &lifi.Status{Status: lifi.StatusDone}, nil
}

// stubSubmitter fails specific calls (1-based) with configured errors.
type stubSubmitter struct {
	calls int
	fail  map[int]error
}

func (s *stubSubmitter) Submit(_ context.Context, _ *lifi.Quote) (string, error) {
	s.calls++
	if err, ok := s.fail[s.calls]; ok {
		return "", err
	}
	return "0xtx" + strconv.Itoa(s.calls), nil
}

type stubSettler struct {
	balance   *big.Int
	deposited *big.Int
	err       error
}

func (s *stubSettler) SettledBalance(context.Context) (*big.Int, error) {
	if s.err != nil {
		return nil, s.err
	}
	return new(big.Int).Set(s.balance), nil
}

func (s *stubSettler) Deposit(_ context.Context, raw *big.Int) (string, error) {
	s.deposited = new(big.Int).Set(raw)
	return "0xsettle", nil
}

func newTestExecutor(submitter Submitter, settler Settler) *Executor {
	return New(&stubQuoter{}, stubStatus{}, submitter, settler, testCfg, zerolog.Nop())
}

func TestExecuteStrategyHappyPath(t *testing.T) {
	settler := &stubSettler{balance: big.NewInt(25_000_000)} // $25 settled
	exec := newTestExecutor(&stubSubmitter{}, settler)

	var events []ProgressEvent
	result, err := exec.ExecuteStrategy(context.Background(), testStrategy(2), 15, func(ev ProgressEvent) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	require.True(t, result.Completed)
	require.Len(t, result.Legs, 2)
	for _, leg := range result.Legs {
		require.Equal(t, LegCompleted, leg.State)
		require.InDelta(t, 9.9, leg.OutputUSD, 1e-9)
	}
	// Settlement is capped at the target, not the full settled balance.
	require.Equal(t, big.NewInt(15_000_000), settler.deposited)
	require.InDelta(t, 15.0, result.SettledUSD, 1e-9)
	require.Equal(t, "0xsettle", result.SettlementTx)

	// Each leg walks preparing, quoted, submitted, confirmed in order.
	var percents []int
	for _, ev := range events {
		require.Equal(t, result.RunID, ev.RunID)
		if ev.LegIndex == 0 {
			percents = append(percents, ev.Percent)
		}
	}
	require.Equal(t, []int{PhasePreparing, PhaseQuoted, PhaseSubmitted, PhaseConfirmed}, percents)
}

func TestExecuteStrategyUserRejectionStopsRemainingLegs(t *testing.T) {
	submitter := &stubSubmitter{fail: map[int]error{2: wallet.ErrUserRejected}}
	settler := &stubSettler{balance: big.NewInt(9_900_000)} // leg 1's output arrived
	exec := newTestExecutor(submitter, settler)

	result, err := exec.ExecuteStrategy(context.Background(), testStrategy(3), 15, nil)
	require.NoError(t, err)
	require.Len(t, result.Legs, 3)
	require.Equal(t, LegCompleted, result.Legs[0].State)
	require.Equal(t, LegFailed, result.Legs[1].State)
	require.Equal(t, FailureUserRejected, result.Legs[1].Failure)
	require.Equal(t, LegSkipped, result.Legs[2].State)
	// Leg 1 already bridged, so the run settles what arrived and finishes
	// as a partial success with the rejection on record.
	require.True(t, result.Completed)
	require.Equal(t, FailureUserRejected, result.Failure)
	require.Equal(t, big.NewInt(9_900_000), settler.deposited)
	require.InDelta(t, 9.9, result.SettledUSD, 1e-9)
}

func TestExecuteStrategyRejectionBeforeAnySuccess(t *testing.T) {
	submitter := &stubSubmitter{fail: map[int]error{1: wallet.ErrUserRejected}}
	settler := &stubSettler{balance: big.NewInt(25_000_000)}
	exec := newTestExecutor(submitter, settler)

	result, err := exec.ExecuteStrategy(context.Background(), testStrategy(2), 15, nil)
	require.ErrorIs(t, err, wallet.ErrUserRejected)
	require.False(t, result.Completed)
	require.Equal(t, LegFailed, result.Legs[0].State)
	require.Equal(t, LegSkipped, result.Legs[1].State)
	require.Nil(t, settler.deposited, "nothing bridged, nothing to settle")
}

func TestExecuteStrategyRejectionWithDustSettlement(t *testing.T) {
	submitter := &stubSubmitter{fail: map[int]error{2: wallet.ErrUserRejected}}
	settler := &stubSettler{balance: big.NewInt(3_000_000)} // under the bridge minimum
	exec := newTestExecutor(submitter, settler)

	result, err := exec.ExecuteStrategy(context.Background(), testStrategy(2), 15, nil)
	require.ErrorIs(t, err, ErrSettlementBelowMinimum)
	require.False(t, result.Completed)
	require.Equal(t, LegCompleted, result.Legs[0].State)
	require.Nil(t, settler.deposited)
}

func TestExecuteStrategyContinuesPastNonFatalFailure(t *testing.T) {
	submitter := &stubSubmitter{fail: map[int]error{1: &lifi.TransientError{StatusCode: 502, Message: "bad gateway"}}}
	settler := &stubSettler{balance: big.NewInt(12_000_000)}
	exec := newTestExecutor(submitter, settler)

	result, err := exec.ExecuteStrategy(context.Background(), testStrategy(2), 15, nil)
	require.NoError(t, err)
	require.True(t, result.Completed)
	require.Equal(t, LegFailed, result.Legs[0].State)
	require.Equal(t, FailureNetwork, result.Legs[0].Failure)
	require.Equal(t, LegCompleted, result.Legs[1].State)
	// Only $12 arrived, below the $15 target, so everything settled goes in.
	require.Equal(t, big.NewInt(12_000_000), settler.deposited)
}

func TestExecuteStrategyAllLegsFailed(t *testing.T) {
	submitter := &stubSubmitter{fail: map[int]error{
		1: errors.New("intrinsic gas too low"),
		2: errors.New("return amount is not enough"),
	}}
	settler := &stubSettler{balance: big.NewInt(25_000_000)}
	exec := newTestExecutor(submitter, settler)

	result, err := exec.ExecuteStrategy(context.Background(), testStrategy(2), 15, nil)
	require.Error(t, err)
	require.False(t, result.Completed)
	require.Equal(t, FailureInsufficientGas, result.Legs[0].Failure)
	require.Equal(t, FailureSlippage, result.Legs[1].Failure)
	require.Nil(t, settler.deposited)
}

func TestExecuteStrategyRefusesDustSettlement(t *testing.T) {
	settler := &stubSettler{balance: big.NewInt(3_000_000)} // $3, under the bridge minimum
	exec := newTestExecutor(&stubSubmitter{}, settler)

	result, err := exec.ExecuteStrategy(context.Background(), testStrategy(1), 15, nil)
	require.ErrorIs(t, err, ErrSettlementBelowMinimum)
	require.False(t, result.Completed)
	require.Nil(t, settler.deposited)
}

func TestExecuteStrategyRejectsEmptyStrategy(t *testing.T) {
	exec := newTestExecutor(&stubSubmitter{}, &stubSettler{balance: big.NewInt(0)})

	_, err := exec.ExecuteStrategy(context.Background(), nil, 15, nil)
	require.Error(t, err)
	_, err = exec.ExecuteStrategy(context.Background(), &optimizer.DepositStrategy{}, 15, nil)
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	require.Equal(t, FailureUserRejected, Classify(wallet.ErrUserRejected))
	require.Equal(t, FailureUserRejected, Classify(errors.New("MetaMask: User denied transaction signature")))
	require.Equal(t, FailureQuoteExpired, Classify(errors.New("execution reverted: quote is outdated")))
	require.Equal(t, FailureSlippage, Classify(errors.New("slippage tolerance exceeded")))
	require.Equal(t, FailureInsufficientGas, Classify(errors.New("insufficient funds for gas * price + value")))
	require.Equal(t, FailureNetwork, Classify(&lifi.TransientError{StatusCode: 429, Message: "rate limited"}))
	require.Equal(t, FailureNetwork, Classify(errors.New("dial tcp: connection refused")))
	require.Equal(t, FailureUnknown, Classify(errors.New("something else entirely")))
}
