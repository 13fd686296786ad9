// Package orderbook implements the order-book aggregation bounded context:
// per-venue ingestion, the merge engine, and the fan-out bus that feeds
// the RPC endpoint.
package orderbook

import (
	"context"

	orderbookDI "github.com/ordermesh/orderbook-aggregator/business/orderbook/di"
	"github.com/ordermesh/orderbook-aggregator/business/orderbook/infra/bus"
	"github.com/ordermesh/orderbook-aggregator/business/orderbook/infra/venue/binance"
	"github.com/ordermesh/orderbook-aggregator/business/orderbook/infra/venue/bitstamp"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook/app"
	"github.com/ordermesh/orderbook-aggregator/internal/config"
	"github.com/ordermesh/orderbook-aggregator/internal/di"
	"github.com/ordermesh/orderbook-aggregator/internal/logger"
	"github.com/ordermesh/orderbook-aggregator/internal/monolith"
)

// Module implements the orderbook bounded context.
type Module struct{}

// RegisterServices registers the merge engine and fan-out bus with the
// DI container; both are singletons shared by every venue's ingestion
// goroutine and every RPC subscriber.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, orderbookDI.MergeEngine, func(sr di.ServiceRegistry) *app.MergeEngine {
		cfg := sr.Get("config").(*config.Config)
		return app.NewMergeEngine(cfg.Summary.Size)
	})

	di.RegisterToken(c, orderbookDI.Bus, func(sr di.ServiceRegistry) *bus.Bus {
		cfg := sr.Get("config").(*config.Config)
		return bus.New(cfg.Summary.BusCapacity)
	})

	return nil
}

// Startup launches one ingestion goroutine per configured venue (task
// per venue), each feeding the shared merge engine and publishing a
// fresh summary to the bus after every accepted snapshot.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	engine := orderbookDI.GetMergeEngine(mono.Services())
	b := orderbookDI.GetBus(mono.Services())

	binanceAdapter, err := binance.NewAdapter(binance.Config{
		BaseURL:        cfg.Binance.WebSocketURL,
		Depth:          cfg.Binance.Depth,
		MaxReconnects:  cfg.Binance.MaxReconnects,
		InitialBackoff: cfg.Binance.InitialBackoff,
		MaxBackoff:     cfg.Binance.MaxBackoff,
	}, log)
	if err != nil {
		return err
	}

	bitstampAdapter, err := bitstamp.NewAdapter(bitstamp.Config{
		WSURL:          cfg.Bitstamp.WebSocketURL,
		MaxReconnects:  cfg.Bitstamp.MaxReconnects,
		InitialBackoff: cfg.Bitstamp.InitialBackoff,
		MaxBackoff:     cfg.Bitstamp.MaxBackoff,
	}, log)
	if err != nil {
		return err
	}

	go runVenue(ctx, log.With("venue", binanceAdapter.Name()), engine, b,
		binanceAdapter, cfg.Binance.BaseCurrency, cfg.Binance.QuoteCurrency)
	go runVenue(ctx, log.With("venue", bitstampAdapter.Name()), engine, b,
		bitstampAdapter, cfg.Bitstamp.BaseCurrency, cfg.Bitstamp.QuoteCurrency)

	log.Info(ctx, "orderbook module started")
	return nil
}

// runVenue owns one venue's whole ingestion lifetime: it connects once,
// consumes Ticks until the adapter's stream ends, and then exits. A
// decode error is logged and skipped; the venue's last known order book
// and the bus are left untouched. Each accepted snapshot is inserted,
// summarized and published while the merge engine's lock is held. A
// failure to even start the stream, or the stream ending (the websocket
// client gave up after its configured maximum of reconnect attempts;
// with the default of 0 it keeps reconnecting and the stream does not
// end on a transport error), is logged and this goroutine returns — the venue simply
// stops contributing to merged summaries, other venues are unaffected,
// and the bus stays open for everyone still subscribed.
func runVenue(
	ctx context.Context,
	log logger.LoggerInterface,
	engine *app.MergeEngine,
	b *bus.Bus,
	venue app.VenueAdapter,
	base, quote string,
) {
	ticks, err := venue.Stream(ctx, base, quote)
	if err != nil {
		log.Error(ctx, "venue stream failed to start", "error", err)
		return
	}

	for tick := range ticks {
		if tick.Err != nil {
			log.Warn(ctx, "venue tick error", "error", tick.Err)
			continue
		}

		engine.Lock()
		engine.InsertLocked(venue.Name(), tick.OrderBook)
		summary, err := engine.SummaryLocked()
		if err != nil {
			engine.Unlock()
			log.Error(ctx, "failed to compute merged summary", "error", err)
			continue
		}

		b.Publish(summary)
		engine.Unlock()
	}

	log.Warn(ctx, "venue stream ended")
}
