package binance

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
	"github.com/shopspring/decimal"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook/app"
	"github.com/ordermesh/orderbook-aggregator/business/orderbook/domain"
	"github.com/ordermesh/orderbook-aggregator/internal/apperror"
	"github.com/ordermesh/orderbook-aggregator/internal/logger"
)

func testAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	log := logger.New(io.Discard, logger.LevelError, "binance-test", nil)
	a, err := NewAdapter(Config{BaseURL: baseURL, Depth: 20}, log)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	return a
}

func TestStreamURLBuildsDepthPath(t *testing.T) {
	a := testAdapter(t, "wss://stream.binance.com:443/ws/")

	got, err := a.streamURL("BTC", "ETH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "wss://stream.binance.com:443/ws/btceth@depth20"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStreamURLRejectsBaseURLWithNoHost(t *testing.T) {
	a := testAdapter(t, "not-a-url")

	_, err := a.streamURL("BTC", "ETH")
	if apperror.GetCode(err) != apperror.CodeUrlCannotBeBase {
		t.Fatalf("expected CodeUrlCannotBeBase, got %v", err)
	}
}

func TestDecodeDepthSnapshot(t *testing.T) {
	raw := []byte(`{
		"lastUpdateId": 160,
		"bids": [["0.0024","10"]],
		"asks": [["0.0026","5"]]
	}`)

	var ob domain.OrderBook
	if err := json.Unmarshal(raw, &ob); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(ob.Bids) != 1 || len(ob.Asks) != 1 {
		t.Fatalf("expected one bid and one ask, got %+v", ob)
	}
	if !ob.Bids[0].Price.Equal(decimal.RequireFromString("0.0024")) {
		t.Fatalf("unexpected bid price: %v", ob.Bids[0].Price)
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

// TestStreamSurvivesMalformedFrame drives a real depth stream through a
// mock server that sends one malformed frame followed by one
// well-formed snapshot: the malformed frame must surface as a
// Tick{Err: DecodeError} without ending the stream, and the following
// Tick must still carry the decoded order book.
func TestStreamSurvivesMalformedFrame(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		ctx := context.Background()

		conn.Write(ctx, websocket.MessageText, []byte(`{not valid json`))
		conn.Write(ctx, websocket.MessageText, []byte(`{"bids":[["100.5","1"]],"asks":[["101.0","2"]]}`))

		time.Sleep(200 * time.Millisecond)
	})
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	a := testAdapter(t, wsURL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ticks, err := a.Stream(ctx, "BTC", "USDT")
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var first, second app.Tick
	select {
	case first = <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first tick")
	}
	if first.Err == nil {
		t.Fatalf("expected first tick to carry a decode error, got %+v", first)
	}
	if got := apperror.GetCode(first.Err); got != apperror.CodeDecodeError {
		t.Fatalf("expected CodeDecodeError, got %v (%v)", got, first.Err)
	}

	select {
	case second = <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for second tick")
	}
	if second.Err != nil {
		t.Fatalf("expected second tick to be a clean order book, got error %v", second.Err)
	}
	if second.OrderBook == nil || len(second.OrderBook.Bids) != 1 || len(second.OrderBook.Asks) != 1 {
		t.Fatalf("unexpected order book: %+v", second.OrderBook)
	}
}
