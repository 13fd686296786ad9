package domain

import (
	"github.com/shopspring/decimal"
)

// WirePriceLevel is a price level tagged with the venue it came from,
// in the wire decimal representation the RPC endpoint streams out.
type WirePriceLevel struct {
	Exchange string
	Price    WireDecimal
	Amount   WireDecimal
}

// ToWirePriceLevel converts a normalized PriceLevel into its wire form,
// tagged with the venue name it was sourced from.
func ToWirePriceLevel(exchange string, l PriceLevel) (WirePriceLevel, error) {
	price, err := ToWire(l.Price)
	if err != nil {
		return WirePriceLevel{}, err
	}
	amount, err := ToWire(l.Amount)
	if err != nil {
		return WirePriceLevel{}, err
	}
	return WirePriceLevel{Exchange: exchange, Price: price, Amount: amount}, nil
}

// Less implements the total order the merge engine's sorted-merge
// iterator walks by: price first, then amount, then exchange name as a
// final tiebreak for exact duplicates. Levels from different venues
// interleave by price rather than clustering by venue.
func (l WirePriceLevel) Less(other WirePriceLevel) bool {
	if c := CompareWire(l.Price, other.Price); c != 0 {
		return c < 0
	}
	if c := CompareWire(l.Amount, other.Amount); c != 0 {
		return c < 0
	}
	return l.Exchange < other.Exchange
}

// Summary is the merged, top-N view of every venue's latest order book,
// as streamed by the RPC endpoint.
type Summary struct {
	Spread    decimal.Decimal
	HasSpread bool
	Asks      []WirePriceLevel
	Bids      []WirePriceLevel
}

// NewSummary builds a Summary from already-merged, already-truncated
// ask (ascending) and bid (descending) sequences, computing the spread
// from their respective first (best) elements.
func NewSummary(asks, bids []WirePriceLevel) Summary {
	s := Summary{Asks: asks, Bids: bids}
	if len(asks) == 0 || len(bids) == 0 {
		return s
	}

	bestAsk := FromWireDecimal(asks[0].Price)
	bestBid := FromWireDecimal(bids[0].Price)
	s.Spread = bestAsk.Sub(bestBid)
	s.HasSpread = true
	return s
}
