// Package binance implements Adapter A: a URL-per-pair depth stream,
// one WebSocket connection per currency pair at
// <base>/<base><quote>@depth<N>, yielding full-snapshot replacements
// (never diffs) on every message.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook/app"
	"github.com/ordermesh/orderbook-aggregator/business/orderbook/domain"
	"github.com/ordermesh/orderbook-aggregator/internal/apperror"
	"github.com/ordermesh/orderbook-aggregator/internal/circuitbreaker"
	"github.com/ordermesh/orderbook-aggregator/internal/logger"
	"github.com/ordermesh/orderbook-aggregator/internal/ratelimit"
	"github.com/ordermesh/orderbook-aggregator/internal/wsconn"
)

const (
	tracerName = "binance"
	meterName  = "binance"

	// VenueName identifies this adapter's snapshots in the merge engine.
	VenueName = "binance"
)

// Config configures the Binance adapter.
type Config struct {
	BaseURL        string // e.g. wss://stream.binance.com:443/ws/
	Depth          int    // one of 5, 10, 20
	MaxReconnects  int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Adapter implements app.VenueAdapter for Binance-style venues.
type Adapter struct {
	cfg     Config
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[struct{}]

	depthUpdates metric.Int64Counter
	parseErrors  metric.Int64Counter
}

// NewAdapter creates a Binance adapter.
func NewAdapter(cfg Config, log logger.LoggerInterface) (*Adapter, error) {
	meter := otel.Meter(meterName)

	depthUpdates, err := meter.Int64Counter("binance_depth_snapshots_total",
		metric.WithDescription("Total depth snapshots received"))
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	parseErrors, err := meter.Int64Counter("binance_parse_errors_total",
		metric.WithDescription("Depth snapshot parse errors"))
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &Adapter{
		cfg:          cfg,
		logger:       log,
		tracer:       otel.Tracer(tracerName),
		limiter:      ratelimit.New(30), // at most 30 connect attempts/min
		breaker:      circuitbreaker.New[struct{}](circuitbreaker.DefaultConfig(VenueName)),
		depthUpdates: depthUpdates,
		parseErrors:  parseErrors,
	}, nil
}

// Name returns the venue name used to tag merged price levels.
func (a *Adapter) Name() string { return VenueName }

// streamURL builds <base>/<base><quote>@depth<N>, mirroring the
// original reference's url.path_segments_mut().push(...) call: a base
// URL with no host (cannot be a base URL) is rejected up front rather
// than producing a malformed stream URL.
func (a *Adapter) streamURL(base, quote string) (string, error) {
	u, err := url.Parse(a.cfg.BaseURL)
	if err != nil {
		return "", apperror.New(apperror.CodeUrlCannotBeBase,
			apperror.WithCause(err),
			apperror.WithContext("invalid binance base url"))
	}
	if u.Host == "" {
		return "", apperror.New(apperror.CodeUrlCannotBeBase,
			apperror.WithContext("binance base url cannot be used as a base: "+a.cfg.BaseURL))
	}

	symbol := strings.ToLower(base + quote)
	u.Path = strings.TrimSuffix(u.Path, "/") + fmt.Sprintf("/%s@depth%d", symbol, a.cfg.Depth)

	return u.String(), nil
}

// Stream connects to the per-pair depth stream and yields a Tick per
// message: a decode failure is a recoverable Tick, a terminal
// transport failure is the last Tick before the channel closes.
func (a *Adapter) Stream(ctx context.Context, base, quote string) (<-chan app.Tick, error) {
	wsURL, err := a.streamURL(base, quote)
	if err != nil {
		return nil, err
	}

	wsCfg := wsconn.DefaultConfig(wsURL, VenueName)
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
			apperror.WithContext("failed to construct binance websocket client"))
	}

	out := make(chan app.Tick, 32)
	var closeOnce sync.Once
	closeOut := func() { closeOnce.Do(func() { close(out) }) }

	conn.OnMessage(func(ctx context.Context, data []byte) {
		var ob domain.OrderBook
		if err := json.Unmarshal(data, &ob); err != nil {
			a.parseErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("venue", VenueName)))
			select {
			case out <- app.Tick{Err: apperror.New(apperror.CodeDecodeError,
				apperror.WithCause(err),
				apperror.WithContext("failed to decode binance depth snapshot"))}:
			default:
			}
			return
		}
		a.depthUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("venue", VenueName)))
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
				apperror.WithContext("binance connection terminated"))}:
			default:
			}
			closeOut()
		}
	})

	if err := a.limiter.Wait(ctx); err != nil {
		closeOut()
		return nil, err
	}

	_, err = a.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, conn.ConnectWithRetry(ctx)
	})
	if err != nil {
		closeOut()
		return nil, apperror.New(apperror.CodeTransportError,
			apperror.WithCause(err),
			apperror.WithContext("failed to connect to binance"))
	}

	go func() {
		<-ctx.Done()
		_ = conn.Close()
		closeOut()
	}()

	a.logger.Info(ctx, "binance adapter connected", "url", wsURL, "pair", base+quote)

	return out, nil
}
