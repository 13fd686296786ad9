// Package app holds the orderbook bounded context's use cases: the
// venue adapter port every venue implements, and the merge engine that
// turns per-venue snapshots into a single merged summary.
package app

import (
	"context"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook/domain"
)

// Tick is one item of a venue adapter's snapshot stream: either a fresh
// order book or a recoverable decode error. A Tick is never both.
type Tick struct {
	OrderBook *domain.OrderBook
	Err       error
}

// VenueAdapter connects to one exchange's streaming feed for a given
// currency pair and yields a lazy sequence of Ticks. Decode failures
// surface as Ticks with Err set and the stream continues; a terminal
// transport failure closes the channel after emitting one final
// error Tick.
type VenueAdapter interface {
	Name() string
	Stream(ctx context.Context, base, quote string) (<-chan Tick, error)
}
