// Package bitstamp implements Adapter B: a single shared channel
// subscribed to with an explicit bts:subscribe handshake, then a
// stream of full order-book replacement frames on that channel.
package bitstamp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook/app"
	"github.com/ordermesh/orderbook-aggregator/internal/apperror"
	"github.com/ordermesh/orderbook-aggregator/internal/circuitbreaker"
	"github.com/ordermesh/orderbook-aggregator/internal/logger"
	"github.com/ordermesh/orderbook-aggregator/internal/ratelimit"
	"github.com/ordermesh/orderbook-aggregator/internal/wsconn"
)

const (
	tracerName = "bitstamp"
	meterName  = "bitstamp"

	// VenueName identifies this adapter's snapshots in the merge engine.
	VenueName = "bitstamp"
)

// Config configures the Bitstamp adapter.
type Config struct {
	WSURL          string // e.g. wss://ws.bitstamp.net/
	MaxReconnects  int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Adapter implements app.VenueAdapter for Bitstamp.
type Adapter struct {
	cfg     Config
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[struct{}]

	bookUpdates metric.Int64Counter
	parseErrors metric.Int64Counter
}

// NewAdapter creates a Bitstamp adapter.
func NewAdapter(cfg Config, log logger.LoggerInterface) (*Adapter, error) {
	meter := otel.Meter(meterName)

	bookUpdates, err := meter.Int64Counter("bitstamp_order_book_updates_total",
		metric.WithDescription("Total order book updates received"))
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	parseErrors, err := meter.Int64Counter("bitstamp_parse_errors_total",
		metric.WithDescription("Order book update parse errors"))
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &Adapter{
		cfg:         cfg,
		logger:      log,
		tracer:      otel.Tracer(tracerName),
		limiter:     ratelimit.New(30), // at most 30 connect attempts/min
		breaker:     circuitbreaker.New[struct{}](circuitbreaker.DefaultConfig(VenueName)),
		bookUpdates: bookUpdates,
		parseErrors: parseErrors,
	}, nil
}

// Name returns the venue name used to tag merged price levels.
func (a *Adapter) Name() string { return VenueName }

// Stream connects to Bitstamp's single shared WebSocket, subscribes to
// the order_book_<base><quote> channel, and yields a Tick per update
// on that channel once the subscription is acknowledged.
func (a *Adapter) Stream(ctx context.Context, base, quote string) (<-chan app.Tick, error) {
	pair := lowerPair(base, quote)
	if !isSupportedPair(pair.base, pair.quote) {
		return nil, apperror.New(apperror.CodePairNotSupported,
			apperror.WithContext(fmt.Sprintf("bitstamp does not support pair %s%s", pair.base, pair.quote)))
	}
	channel := fmt.Sprintf("order_book_%s%s", pair.base, pair.quote)

	wsCfg := wsconn.DefaultConfig(a.cfg.WSURL, VenueName)
	wsCfg.MaxReconnects = a.cfg.MaxReconnects
	if a.cfg.InitialBackoff > 0 {
		wsCfg.InitialBackoff = a.cfg.InitialBackoff
	}
	if a.cfg.MaxBackoff > 0 {
		wsCfg.MaxBackoff = a.cfg.MaxBackoff
	}

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return nil, apperror.New(apperror.CodeTransportError,
			apperror.WithCause(err),
			apperror.WithContext("failed to construct bitstamp websocket client"))
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	_, connErr := a.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, conn.Connect(ctx)
	})
	if connErr != nil {
		return nil, apperror.New(apperror.CodeTransportError,
			apperror.WithCause(connErr),
			apperror.WithContext("failed to connect to bitstamp"))
	}

	if err := conn.SendJSON(ctx, newSubscribeRequest(channel)); err != nil {
		_ = conn.Close()
		return nil, apperror.New(apperror.CodeSubscriptionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to send bitstamp subscribe request"))
	}

	if err := a.awaitSubscriptionAck(ctx, conn, channel); err != nil {
		_ = conn.Close()
		return nil, err
	}

	out := make(chan app.Tick, 32)
	var closeOnce sync.Once
	closeOut := func() { closeOnce.Do(func() { close(out) }) }

	conn.OnMessage(func(ctx context.Context, data []byte) {
		var upd bookUpdate
		if err := json.Unmarshal(data, &upd); err != nil {
			a.parseErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("venue", VenueName)))
			select {
			case out <- app.Tick{Err: apperror.New(apperror.CodeDecodeError,
				apperror.WithCause(err),
				apperror.WithContext("failed to decode bitstamp order book update"))}:
			default:
			}
			return
		}
		if upd.Channel != channel {
			return
		}
		a.bookUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("venue", VenueName)))
		ob := upd.Data
		select {
		case out <- app.Tick{OrderBook: &ob}:
		default:
		}
	})

	conn.OnStateChange(func(state wsconn.State, err error) {
		if state == wsconn.StateDisconnected && err != nil {
			select {
			case out <- app.Tick{Err: apperror.New(apperror.CodeTransportError,
				apperror.WithCause(err),
				apperror.WithContext("bitstamp connection terminated"))}:
			default:
			}
			closeOut()
		}
	})

	go func() {
		<-ctx.Done()
		_ = conn.Close()
		closeOut()
	}()

	a.logger.Info(ctx, "bitstamp adapter subscribed", "channel", channel)

	return out, nil
}

// awaitSubscriptionAck reads the next frame off the raw message
// channel: bts:subscription_succeeded completes the handshake, and any
// other frame, JSON or not, fails with SubscriptionFailed. Ping/pong
// control frames never reach this channel. It also fails if ctx ends
// first.
func (a *Adapter) awaitSubscriptionAck(ctx context.Context, conn *wsconn.Client, channel string) error {
	for {
		select {
		case <-ctx.Done():
			return apperror.New(apperror.CodeSubscriptionFailed,
				apperror.WithCause(ctx.Err()),
				apperror.WithContext("context cancelled awaiting bitstamp subscription ack"))
		case data, ok := <-conn.Messages():
			if !ok {
				return apperror.New(apperror.CodeSubscriptionFailed,
					apperror.WithContext("connection closed awaiting bitstamp subscription ack"))
			}

			var resp subscriptionResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				return apperror.New(apperror.CodeSubscriptionFailed,
					apperror.WithCause(err),
					apperror.WithContext(fmt.Sprintf("bitstamp subscription to %s failed: %s", channel, string(data))))
			}

			switch resp.Event {
			case eventSubscriptionSucceeded:
				return nil
			default:
				return apperror.New(apperror.CodeSubscriptionFailed,
					apperror.WithContext(fmt.Sprintf("bitstamp subscription to %s failed: %s", channel, string(data))))
			}
		}
	}
}

type pair struct{ base, quote string }

func lowerPair(base, quote string) pair {
	return pair{base: strings.ToLower(base), quote: strings.ToLower(quote)}
}
