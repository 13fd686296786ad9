// Package grpc implements the OrderbookAggregator RPC service: a
// single server-streaming method that subscribes a fresh bus listener
// per call and forwards summaries until the client disconnects or the
// bus closes.
package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook/domain"
	"github.com/ordermesh/orderbook-aggregator/business/orderbook/infra/bus"
	"github.com/ordermesh/orderbook-aggregator/internal/logger"
	orderbookv1 "github.com/ordermesh/orderbook-aggregator/proto/orderbook/v1"
)

// Server implements orderbookv1.OrderbookAggregatorServer.
type Server struct {
	orderbookv1.UnimplementedOrderbookAggregatorServer
	bus    *bus.Bus
	logger logger.LoggerInterface
}

// New builds a Server that subscribes to b for every BookSummary call.
func New(b *bus.Bus, log logger.LoggerInterface) *Server {
	return &Server{bus: b, logger: log}
}

// BookSummary streams merged summaries to the caller until the stream's
// context is cancelled or the bus is closed. Lagged notifications are
// swallowed with a warning; everything else becomes Internal.
func (s *Server) BookSummary(_ *orderbookv1.Empty, stream orderbookv1.OrderbookAggregator_BookSummaryServer) error {
	ctx := stream.Context()
	_, items, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case item, ok := <-items:
			if !ok {
				return nil
			}
			if item.Err != nil {
				var lagged *bus.Lagged
				if errors.As(item.Err, &lagged) {
					s.logger.Warn(ctx, "subscriber lagged", "skipped", lagged.Skipped)
					continue
				}
				s.logger.Error(ctx, "book summary stream error", "error", item.Err)
				return status.Error(codes.Internal, item.Err.Error())
			}
			if err := stream.Send(toWireSummary(item.Summary)); err != nil {
				return status.Error(codes.Internal, err.Error())
			}
		}
	}
}

func toWireSummary(s domain.Summary) *orderbookv1.Summary {
	out := &orderbookv1.Summary{
		HasSpread: s.HasSpread,
		Bids:      make([]orderbookv1.PriceLevel, len(s.Bids)),
		Asks:      make([]orderbookv1.PriceLevel, len(s.Asks)),
	}
	if s.HasSpread {
		spread, err := domain.ToWire(s.Spread)
		if err == nil {
			out.Spread = toWireDecimal(spread)
		}
	}
	for i, lvl := range s.Bids {
		out.Bids[i] = toWirePriceLevel(lvl)
	}
	for i, lvl := range s.Asks {
		out.Asks[i] = toWirePriceLevel(lvl)
	}
	return out
}

func toWirePriceLevel(l domain.WirePriceLevel) orderbookv1.PriceLevel {
	return orderbookv1.PriceLevel{
		Exchange: l.Exchange,
		Price:    toWireDecimal(l.Price),
		Amount:   toWireDecimal(l.Amount),
	}
}

func toWireDecimal(d domain.WireDecimal) orderbookv1.Decimal {
	return orderbookv1.Decimal{
		Lo:       d.Lo,
		Mid:      d.Mid,
		Hi:       d.Hi,
		Scale:    d.Scale,
		Negative: d.Negative,
		View:     d.View,
	}
}
