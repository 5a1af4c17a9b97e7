package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/config"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/executor"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/lifi"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/optimizer"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/pricing"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/scanner"
)

// aggregatorServer mimics the LI.FI API: quotes at 99% efficiency, transfers
// immediately DONE.
func aggregatorServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		fromAmount := r.URL.Query().Get("fromAmount")
		in, err := decimal.NewFromString(fromAmount)
		if err != nil {
			http.Error(w, `{"message":"bad amount"}`, http.StatusBadRequest)
			return
		}
		out := in.Mul(decimal.RequireFromString("0.99")).Floor()
		fromChain, _ := strconv.ParseInt(r.URL.Query().Get("fromChain"), 10, 64)
		toChain, _ := strconv.ParseInt(r.URL.Query().Get("toChain"), 10, 64)
		quote := lifi.Quote{
			ID:   "itest-quote",
			Tool: "stargate",
			Action: lifi.Action{
				FromChainID: fromChain,
				ToChainID:   toChain,
				FromAmount:  fromAmount,
			},
			Estimate: lifi.Estimate{
				FromAmount:        fromAmount,
				ToAmount:          out.String(),
				ToAmountMin:       out.String(),
				ExecutionDuration: 30,
			},
			TransactionRequest: &lifi.TxRequest{
				To: "0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE", Data: "0x00", Value: "0", GasLimit: "500000", ChainID: fromChain,
			},
		}
		_ = json.NewEncoder(w).Encode(quote)
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(lifi.Status{Status: lifi.StatusDone})
	})
	return httptest.NewServer(mux)
}

type fixedReader struct {
	balances map[string]*big.Int
}

func (f *fixedReader) Balance(_ context.Context, chainID int64, assetAddress string) (*big.Int, error) {
	key := fmt.Sprintf("%d:%s", chainID, assetAddress)
	if bal, ok := f.balances[key]; ok {
		return new(big.Int).Set(bal), nil
	}
	return big.NewInt(0), nil
}

type recordingSubmitter struct{ submitted []string }

func (s *recordingSubmitter) Submit(_ context.Context, quote *lifi.Quote) (string, error) {
	s.submitted = append(s.submitted, quote.Estimate.FromAmount)
	return "0xabc" + strconv.Itoa(len(s.submitted)), nil
}

type recordingSettler struct {
	balance   *big.Int
	deposited *big.Int
}

func (s *recordingSettler) SettledBalance(context.Context) (*big.Int, error) {
	return new(big.Int).Set(s.balance), nil
}

func (s *recordingSettler) Deposit(_ context.Context, raw *big.Int) (string, error) {
	s.deposited = new(big.Int).Set(raw)
	return "0xsettlement", nil
}

func TestDepositFlowPlanThroughSettlement(t *testing.T) {
	server := aggregatorServer(t)
	defer server.Close()

	dest := config.Destination{
		ChainID:       chain.IDArbitrum,
		USDCAddress:   "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
		USDCDecimals:  6,
		BridgeAddress: "0x2Df1c51E09aECF9cacB7bc98cB1742757f163dF7",
	}
	addresses := optimizer.WalletAddresses{EVM: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"}
	log := zerolog.Nop()

	// $20 USDC on base is the only balance worth bridging.
	baseUSDC := "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	reader := &fixedReader{balances: map[string]*big.Int{
		fmt.Sprintf("%d:%s", chain.IDBase, baseUSDC): big.NewInt(20_000_000),
	}}
	scan := scanner.New(reader, pricing.Static{}, 0.10, log)
	client := lifi.NewClient(server.URL, "itest", log)
	engine := optimizer.NewEngine(client, dest, 0.005, 8, log)
	planner := optimizer.NewPlanner(scan, engine, []int64{chain.IDBase, chain.IDArbitrum}, addresses,
		optimizer.SelectorConfig{CompletionTolerance: 0.95, DustFloorUSD: 1.0},
		optimizer.DominanceConfig{OutputBand: 0.05, TimeToleranceSecs: 1, FeesToleranceUSD: 0.01, OutputToleranceUSD: 0.01},
		log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	plan, err := planner.CalculateDepositPlan(ctx, 10, nil)
	if err != nil {
		t.Fatalf("CalculateDepositPlan returned error: %v", err)
	}
	if plan.InsufficientFunds || plan.NoRoutes {
		t.Fatalf("unexpected plan state: %+v", plan)
	}
	if plan.Best == nil {
		t.Fatalf("single route should collapse to one recommendation: %+v", plan)
	}
	if len(plan.Best.Bridges) != 1 || plan.Best.Bridges[0].UsedInputAmount != "10000000" {
		t.Fatalf("expected one leg of 10 whole USDC, got %+v", plan.Best.Bridges)
	}

	submitter := &recordingSubmitter{}
	settler := &recordingSettler{balance: big.NewInt(9_900_000)}
	exec := executor.New(client, client, submitter, settler, executor.Config{
		Destination:      dest,
		Wallet:           addresses,
		Slippage:         0.005,
		PollInterval:     10 * time.Millisecond,
		MinSettlementUSD: 5.0,
	}, log)

	result, err := exec.ExecuteStrategy(ctx, plan.Best, 10, nil)
	if err != nil {
		t.Fatalf("ExecuteStrategy returned error: %v", err)
	}
	if !result.Completed {
		t.Fatalf("expected completed run, got %+v", result)
	}
	// The leg is re-quoted at the allocated amount, not the full balance.
	if len(submitter.submitted) != 1 || submitter.submitted[0] != "10000000" {
		t.Fatalf("expected fresh quote for 10 USDC, got %v", submitter.submitted)
	}
	// Everything that arrived goes into the bridge, capped by the target.
	if settler.deposited == nil || settler.deposited.Cmp(big.NewInt(9_900_000)) != 0 {
		t.Fatalf("expected 9.9 USDC deposited, got %v", settler.deposited)
	}
	if result.SettlementTx != "0xsettlement" {
		t.Fatalf("missing settlement tx: %+v", result)
	}
}
