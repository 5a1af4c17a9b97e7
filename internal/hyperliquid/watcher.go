// Package hyperliquid watches the exchange's websocket for the account credit
// that follows a bridge deposit. The bridge contract emits no event the wallet
// can see, so the ledger stream is the only confirmation signal.
package hyperliquid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ErrCreditTimeout means the deposit never showed up on the ledger stream
// within the watch window. The funds are usually fine, just slow to index.
var ErrCreditTimeout = errors.New("hyperliquid: credit not observed in time")

const (
	readDeadline = 30 * time.Second
	pingInterval = 15 * time.Second
	maxBackoff   = 30 * time.Second
)

// Watcher subscribes to one account's non-funding ledger updates.
type Watcher struct {
	url  string
	user string
	log  zerolog.Logger
}

// NewWatcher targets the given websocket endpoint and account address.
func NewWatcher(url, userAddress string, log zerolog.Logger) *Watcher {
	return &Watcher{url: url, user: strings.ToLower(userAddress), log: log}
}

type subscribeRequest struct {
	Method       string       `json:"method"`
	Subscription subscription `json:"subscription"`
}

type subscription struct {
	Type string `json:"type"`
	User string `json:"user"`
}

type ledgerEnvelope struct {
	Channel string     `json:"channel"`
	Data    ledgerData `json:"data"`
}

type ledgerData struct {
	IsSnapshot bool           `json:"isSnapshot"`
	Updates    []ledgerUpdate `json:"nonFundingLedgerUpdates"`
}

type ledgerUpdate struct {
	Time  int64       `json:"time"`
	Delta ledgerDelta `json:"delta"`
}

type ledgerDelta struct {
	Type string `json:"type"`
	USDC string `json:"usdc"`
}

// WaitForCredit blocks until a deposit of at least minUSD is credited, the
// timeout passes, or ctx is canceled. Returns the credited amount. Reconnects
// with backoff across transient stream failures.
func (w *Watcher) WaitForCredit(ctx context.Context, minUSD float64, timeout time.Duration) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := time.Second
	for {
		credited, err := w.consumeLedgerStream(ctx, minUSD)
		if err == nil {
			return credited, nil
		}
		if ctx.Err() != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return 0, ErrCreditTimeout
			}
			return 0, ctx.Err()
		}
		w.log.Warn().Err(err).Msg("ledger stream disconnected, retrying")
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return 0, ErrCreditTimeout
		}
		backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
	}
}

func (w *Watcher) consumeLedgerStream(ctx context.Context, minUSD float64) (float64, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	sub := subscribeRequest{
		Method:       "subscribe",
		Subscription: subscription{Type: "userNonFundingLedgerUpdates", User: w.user},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return 0, fmt.Errorf("subscribe: %w", err)
	}
	w.log.Info().Str("user", w.user).Msg("watching ledger for deposit credit")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	// Unblock ReadMessage when the context dies.
	go func() {
		<-pingCtx.Done()
		conn.SetReadDeadline(time.Now())
	}()

	for {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return 0, err
		}

		var env ledgerEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			w.log.Warn().Err(err).Msg("undecodable ledger message")
			continue
		}
		if env.Channel != "userNonFundingLedgerUpdates" || env.Data.IsSnapshot {
			// Snapshots replay history; only live updates count.
			continue
		}
		for _, update := range env.Data.Updates {
			if update.Delta.Type != "deposit" {
				continue
			}
			credited, err := strconv.ParseFloat(update.Delta.USDC, 64)
			if err != nil {
				w.log.Warn().Str("usdc", update.Delta.USDC).Msg("unparseable deposit amount")
				continue
			}
			if credited >= minUSD {
				w.log.Info().Float64("usd", credited).Msg("deposit credited")
				return credited, nil
			}
			w.log.Debug().Float64("usd", credited).Float64("min", minUSD).Msg("credit below expected amount, still waiting")
		}
	}
}
