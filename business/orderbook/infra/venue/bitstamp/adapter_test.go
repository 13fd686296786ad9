package bitstamp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/ordermesh/orderbook-aggregator/internal/apperror"
	"github.com/ordermesh/orderbook-aggregator/internal/logger"
)

func testAdapter(t *testing.T) *Adapter {
	t.Helper()
	log := logger.New(io.Discard, logger.LevelError, "bitstamp-test", nil)
	a, err := NewAdapter(Config{WSURL: "wss://ws.bitstamp.net/"}, log)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	return a
}

func TestStreamRejectsUnsupportedPair(t *testing.T) {
	a := testAdapter(t)

	_, err := a.Stream(context.Background(), "ZZZ", "QQQ")
	if apperror.GetCode(err) != apperror.CodePairNotSupported {
		t.Fatalf("expected CodePairNotSupported, got %v", err)
	}
}

func TestIsSupportedPair(t *testing.T) {
	if !isSupportedPair("btc", "usd") {
		t.Fatal("expected btcusd to be supported")
	}
	if isSupportedPair("zzz", "qqq") {
		t.Fatal("expected zzzqqq to be unsupported")
	}
}

func TestSubscribeRequestShape(t *testing.T) {
	req := newSubscribeRequest("order_book_btcusd")
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var round map[string]any
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if round["event"] != "bts:subscribe" {
		t.Fatalf("unexpected event: %v", round["event"])
	}
}

func TestDecodeBookUpdate(t *testing.T) {
	raw := []byte(`{
		"event": "data",
		"channel": "order_book_btcusd",
		"data": {"bids": [["100.5","1"]], "asks": [["101.0","2"]]}
	}`)

	var upd bookUpdate
	if err := json.Unmarshal(raw, &upd); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if upd.Channel != "order_book_btcusd" {
		t.Fatalf("unexpected channel: %s", upd.Channel)
	}
	if len(upd.Data.Bids) != 1 || len(upd.Data.Asks) != 1 {
		t.Fatalf("expected one bid and one ask, got %+v", upd.Data)
	}
}

func TestDecodeSubscriptionSucceeded(t *testing.T) {
	raw := []byte(`{"event":"bts:subscription_succeeded","channel":"order_book_btcusd","data":{}}`)

	var resp subscriptionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if resp.Event != eventSubscriptionSucceeded {
		t.Fatalf("unexpected event: %s", resp.Event)
	}
}

// mockWSServer accepts one websocket connection and hands it to handler.
func mockWSServer(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Logf("websocket accept error: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		handler(conn)
	}))
}

// TestStreamFailsOnNonAckResponse drives the real subscribe handshake
// against a mock server that replies to the bts:subscribe request with
// a frame whose event is neither bts:subscription_succeeded nor
// anything recognizable (an empty event field, among other things).
// Stream must fail with CodeSubscriptionFailed rather than hang.
func TestStreamFailsOnNonAckResponse(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		ctx := context.Background()

		// Read the bts:subscribe request.
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}

		// Reply with a frame that doesn't carry a recognized event.
		conn.Write(ctx, websocket.MessageText, []byte(`{"channel":"order_book_btcusd","data":{}}`))

		// Keep the connection open briefly so Stream observes the reply
		// before any transport-level disconnect error could race it.
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	log := logger.New(io.Discard, logger.LevelError, "bitstamp-test", nil)
	a, err := NewAdapter(Config{WSURL: wsURL}, log)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = a.Stream(ctx, "BTC", "USD")
	if err == nil {
		t.Fatal("expected Stream to fail on a non-ack subscription response")
	}
	if got := apperror.GetCode(err); got != apperror.CodeSubscriptionFailed {
		t.Fatalf("expected CodeSubscriptionFailed, got %v (%v)", got, err)
	}
}
