package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
)

func TestPriceStablesPinnedWithoutNetwork(t *testing.T) {
	src := NewHTTPSource("http://127.0.0.1:1", time.Minute, nil, zerolog.Nop())
	px, ok := src.Price(context.Background(), chain.IDArbitrum, "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", "USDC")
	if !ok || px != 1.0 {
		t.Fatalf("expected $1 stable pin, got %.4f ok=%v", px, ok)
	}
}

func TestPriceFetchesAndCaches(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if !strings.HasPrefix(r.URL.Path, "/latest/dex/tokens/") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"pairs": [
			{"chainId": "bsc", "priceUsd": "9999"},
			{"chainId": "arbitrum", "priceUsd": "2450.12"}
		]}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Minute, nil, zerolog.Nop())
	weth := "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"

	px, ok := src.Price(context.Background(), chain.IDArbitrum, weth, "WETH")
	if !ok || px != 2450.12 {
		t.Fatalf("expected arbitrum pair price, got %.2f ok=%v", px, ok)
	}
	// Second lookup must come from the cache.
	if _, ok := src.Price(context.Background(), chain.IDArbitrum, weth, "WETH"); !ok {
		t.Fatalf("expected cached hit")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", calls.Load())
	}
}

func TestPriceNativeUsesWrappedAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1") {
			t.Fatalf("expected wrapped native lookup, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"pairs": [{"chainId": "arbitrum", "priceUsd": "2450"}]}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Minute, nil, zerolog.Nop())
	px, ok := src.Price(context.Background(), chain.IDArbitrum, chain.EVMNativeAddress, "ETH")
	if !ok || px != 2450 {
		t.Fatalf("expected native priced via wrapped token, got %.2f ok=%v", px, ok)
	}
}

func TestPriceUnreachableIsUnpriced(t *testing.T) {
	src := NewHTTPSource("http://127.0.0.1:1", time.Minute, nil, zerolog.Nop())
	if _, ok := src.Price(context.Background(), chain.IDArbitrum, "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", "WETH"); ok {
		t.Fatalf("expected unpriced result on network failure")
	}
}

func TestStaticSource(t *testing.T) {
	src := Static{"42161:0xweth": 2500}
	if px, ok := src.Price(context.Background(), 42161, "0xWETH", "WETH"); !ok || px != 2500 {
		t.Fatalf("expected static price, got %.2f ok=%v", px, ok)
	}
	if _, ok := src.Price(context.Background(), 1, "0xunknown", "PEPE"); ok {
		t.Fatalf("expected unknown asset to be unpriced")
	}
}
