package hyperliquid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ledgerServer upgrades one connection, checks the subscription, and plays the
// given messages.
func ledgerServer(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var sub subscribeRequest
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("read subscription: %v", err)
			return
		}
		if sub.Method != "subscribe" || sub.Subscription.Type != "userNonFundingLedgerUpdates" {
			t.Errorf("unexpected subscription: %+v", sub)
			return
		}

		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		// Keep the connection open until the client gives up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func depositMessage(t *testing.T, usdc string, snapshot bool) string {
	t.Helper()
	env := ledgerEnvelope{
		Channel: "userNonFundingLedgerUpdates",
		Data: ledgerData{
			IsSnapshot: snapshot,
			Updates:    []ledgerUpdate{{Time: time.Now().UnixMilli(), Delta: ledgerDelta{Type: "deposit", USDC: usdc}}},
		},
	}
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestWaitForCreditReturnsDeposit(t *testing.T) {
	server := ledgerServer(t, []string{
		depositMessage(t, "50.0", true), // snapshot replay, must be ignored
		`{"channel":"subscriptionResponse"}`,
		depositMessage(t, "2.0", false), // partial credit below the expected amount
		depositMessage(t, "12.5", false),
	})
	defer server.Close()

	w := NewWatcher(wsURL(server), "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", zerolog.Nop())
	credited, err := w.WaitForCredit(context.Background(), 10, 5*time.Second)
	if err != nil {
		t.Fatalf("WaitForCredit returned error: %v", err)
	}
	if credited != 12.5 {
		t.Fatalf("expected 12.5 credited, got %v", credited)
	}
}

func TestWaitForCreditTimesOut(t *testing.T) {
	server := ledgerServer(t, nil)
	defer server.Close()

	w := NewWatcher(wsURL(server), "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", zerolog.Nop())
	if _, err := w.WaitForCredit(context.Background(), 10, 300*time.Millisecond); !errors.Is(err, ErrCreditTimeout) {
		t.Fatalf("expected ErrCreditTimeout, got %v", err)
	}
}

func TestWaitForCreditUnreachableEndpoint(t *testing.T) {
	w := NewWatcher("ws://127.0.0.1:1/ws", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", zerolog.Nop())
	if _, err := w.WaitForCredit(context.Background(), 10, 300*time.Millisecond); !errors.Is(err, ErrCreditTimeout) {
		t.Fatalf("expected ErrCreditTimeout, got %v", err)
	}
}
