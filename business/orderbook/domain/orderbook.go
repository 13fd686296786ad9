// Package domain holds the normalized order-book types shared by every
// venue adapter and the merge engine: decimals, price levels, order
// books, and the wire-level summary the RPC endpoint streams out.
package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/ordermesh/orderbook-aggregator/internal/apperror"
)

// PriceLevel is one normalized [price, amount] entry of a venue's order
// book. Venues encode a level as a two-element JSON array of decimal
// strings; UnmarshalJSON accepts exactly that shape.
type PriceLevel struct {
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// UnmarshalJSON parses the ["<price>","<quantity>"] wire shape used by
// every supported venue's depth payload.
func (l *PriceLevel) UnmarshalJSON(data []byte) error {
	var raw [2]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return apperror.New(apperror.CodeDecodeError,
			apperror.WithCause(err),
			apperror.WithContext("price level must be a [price, quantity] string pair"))
	}

	price, err := decimal.NewFromString(raw[0])
	if err != nil {
		return apperror.New(apperror.CodeDecodeError,
			apperror.WithCause(err),
			apperror.WithContext("invalid price: "+raw[0]))
	}

	amount, err := decimal.NewFromString(raw[1])
	if err != nil {
		return apperror.New(apperror.CodeDecodeError,
			apperror.WithCause(err),
			apperror.WithContext("invalid amount: "+raw[1]))
	}

	l.Price = price
	l.Amount = amount
	return nil
}

// MarshalJSON writes the level back out in the same two-string-array
// shape it is read in.
func (l PriceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{l.Price.String(), l.Amount.String()})
}

// OrderBook is one venue's full depth snapshot at a point in time.
// Bids are ordered highest-price-first, asks lowest-price-first, as
// both supported venues send them; the adapters pass the venue's order
// through and do not re-sort it.
type OrderBook struct {
	Bids []PriceLevel
	Asks []PriceLevel
}

// wireOrderBook mirrors the {"bids":[...], "asks":[...]} shape shared
// by every supported venue's depth snapshot.
type wireOrderBook struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// UnmarshalJSON parses a venue's raw {"bids": [...], "asks": [...]}
// snapshot. Callers that need venue-specific envelope fields (lastUpdateId,
// channel, event) unmarshal those separately and delegate the bids/asks
// payload to this type.
func (ob *OrderBook) UnmarshalJSON(data []byte) error {
	var w wireOrderBook
	if err := json.Unmarshal(data, &w); err != nil {
		return apperror.New(apperror.CodeDecodeError,
			apperror.WithCause(err),
			apperror.WithContext("order book must have bids and asks arrays"))
	}
	ob.Bids = w.Bids
	ob.Asks = w.Asks
	return nil
}

// BestBid returns the highest bid, if any.
func (ob *OrderBook) BestBid() (PriceLevel, bool) {
	if len(ob.Bids) == 0 {
		return PriceLevel{}, false
	}
	best := ob.Bids[0]
	for _, l := range ob.Bids[1:] {
		if l.Price.GreaterThan(best.Price) {
			best = l
		}
	}
	return best, true
}

// BestAsk returns the lowest ask, if any.
func (ob *OrderBook) BestAsk() (PriceLevel, bool) {
	if len(ob.Asks) == 0 {
		return PriceLevel{}, false
	}
	best := ob.Asks[0]
	for _, l := range ob.Asks[1:] {
		if l.Price.LessThan(best.Price) {
			best = l
		}
	}
	return best, true
}

// Spread returns best ask minus best bid, when both sides are present.
func (ob *OrderBook) Spread() (decimal.Decimal, bool) {
	bid, okBid := ob.BestBid()
	ask, okAsk := ob.BestAsk()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price), true
}
