package app

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook/domain"
)

func level(price, amount string) domain.PriceLevel {
	return domain.PriceLevel{
		Price:  decimal.RequireFromString(price),
		Amount: decimal.RequireFromString(amount),
	}
}

func seedTwoVenues(e *MergeEngine) {
	e.Insert("exchange1", &domain.OrderBook{
		Bids: []domain.PriceLevel{level("100", "1"), level("90", "2")},
		Asks: []domain.PriceLevel{level("110", "3"), level("120", "4")},
	})
	e.Insert("exchange2", &domain.OrderBook{
		Bids: []domain.PriceLevel{level("95", "1.5"), level("85", "2.5")},
		Asks: []domain.PriceLevel{level("115", "3.5"), level("125", "4.5")},
	})
}

func assertLevel(t *testing.T, got domain.WirePriceLevel, exchange, price, amount string) {
	t.Helper()
	if got.Exchange != exchange {
		t.Fatalf("expected exchange %s, got %s", exchange, got.Exchange)
	}
	if !domain.FromWireDecimal(got.Price).Equal(decimal.RequireFromString(price)) {
		t.Fatalf("expected price %s, got %s", price, domain.FromWireDecimal(got.Price).String())
	}
	if !domain.FromWireDecimal(got.Amount).Equal(decimal.RequireFromString(amount)) {
		t.Fatalf("expected amount %s, got %s", amount, domain.FromWireDecimal(got.Amount).String())
	}
}

func TestMergeEngineTwoVenueSummaryN2(t *testing.T) {
	e := NewMergeEngine(2)
	seedTwoVenues(e)

	summary, err := e.Summary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(summary.Asks) != 2 || len(summary.Bids) != 2 {
		t.Fatalf("expected 2 asks and 2 bids, got %d/%d", len(summary.Asks), len(summary.Bids))
	}

	assertLevel(t, summary.Asks[0], "exchange1", "110", "3")
	assertLevel(t, summary.Asks[1], "exchange2", "115", "3.5")
	assertLevel(t, summary.Bids[0], "exchange1", "100", "1")
	assertLevel(t, summary.Bids[1], "exchange2", "95", "1.5")

	if !summary.HasSpread || !summary.Spread.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected spread 10, got %v (has=%v)", summary.Spread, summary.HasSpread)
	}
}

func TestMergeEngineTwoVenueSummaryN4(t *testing.T) {
	e := NewMergeEngine(4)
	seedTwoVenues(e)

	summary, err := e.Summary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(summary.Asks) != 4 || len(summary.Bids) != 4 {
		t.Fatalf("expected 4 asks and 4 bids, got %d/%d", len(summary.Asks), len(summary.Bids))
	}

	assertLevel(t, summary.Asks[0], "exchange1", "110", "3")
	assertLevel(t, summary.Asks[1], "exchange2", "115", "3.5")
	assertLevel(t, summary.Asks[2], "exchange1", "120", "4")
	assertLevel(t, summary.Asks[3], "exchange2", "125", "4.5")

	assertLevel(t, summary.Bids[0], "exchange1", "100", "1")
	assertLevel(t, summary.Bids[1], "exchange2", "95", "1.5")
	assertLevel(t, summary.Bids[2], "exchange1", "90", "2")
	assertLevel(t, summary.Bids[3], "exchange2", "85", "2.5")

	if !summary.HasSpread || !summary.Spread.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected spread 10, got %v (has=%v)", summary.Spread, summary.HasSpread)
	}
}

func TestMergeEngineInsertReplacesPerVenueSnapshot(t *testing.T) {
	e := NewMergeEngine(10)
	e.Insert("exchange1", &domain.OrderBook{
		Bids: []domain.PriceLevel{level("100", "1")},
		Asks: []domain.PriceLevel{level("110", "1")},
	})
	e.Insert("exchange1", &domain.OrderBook{
		Bids: []domain.PriceLevel{level("200", "1")},
		Asks: []domain.PriceLevel{level("210", "1")},
	})

	summary, err := e.Summary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Bids) != 1 || len(summary.Asks) != 1 {
		t.Fatalf("expected a single replaced snapshot, got %+v", summary)
	}
	assertLevel(t, summary.Bids[0], "exchange1", "200", "1")
}
