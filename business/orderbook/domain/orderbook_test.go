package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ordermesh/orderbook-aggregator/internal/apperror"
)

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOrderBookUnmarshalJSON(t *testing.T) {
	raw := []byte(`{
		"lastUpdateId": 160,
		"bids": [["0.0024","10"], ["0.0023","5"]],
		"asks": [["0.0026","5"], ["0.0027","3"]]
	}`)

	var ob OrderBook
	if err := json.Unmarshal(raw, &ob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ob.Bids) != 2 || len(ob.Asks) != 2 {
		t.Fatalf("expected 2 bids and 2 asks, got %+v", ob)
	}
}

func TestOrderBookUnmarshalJSONRejectsMalformedLevel(t *testing.T) {
	raw := []byte(`{"bids": [["not-a-number","10"]], "asks": []}`)

	var ob OrderBook
	err := json.Unmarshal(raw, &ob)
	if apperror.GetCode(err) != apperror.CodeDecodeError {
		t.Fatalf("expected CodeDecodeError, got %v", err)
	}
}

func TestBestBidAskAndSpread(t *testing.T) {
	ob := OrderBook{
		Bids: []PriceLevel{
			{Price: mustDecimal("100")},
			{Price: mustDecimal("102")},
			{Price: mustDecimal("99")},
		},
		Asks: []PriceLevel{
			{Price: mustDecimal("105")},
			{Price: mustDecimal("103")},
		},
	}

	bid, ok := ob.BestBid()
	if !ok || !bid.Price.Equal(mustDecimal("102")) {
		t.Fatalf("expected best bid 102, got %v", bid)
	}

	ask, ok := ob.BestAsk()
	if !ok || !ask.Price.Equal(mustDecimal("103")) {
		t.Fatalf("expected best ask 103, got %v", ask)
	}

	spread, ok := ob.Spread()
	if !ok || !spread.Equal(mustDecimal("1")) {
		t.Fatalf("expected spread 1, got %v", spread)
	}
}

func TestSpreadAbsentWhenOneSideEmpty(t *testing.T) {
	ob := OrderBook{Bids: []PriceLevel{{Price: mustDecimal("100")}}}
	if _, ok := ob.Spread(); ok {
		t.Fatal("expected no spread with empty asks")
	}
}
