// Package main is the entry point for the order-book aggregator
// service: it aggregates Binance and Bitstamp depth streams and serves
// the merged top-N summary over a streaming gRPC endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook"
	orderbookDI "github.com/ordermesh/orderbook-aggregator/business/orderbook/di"
	aggrgrpc "github.com/ordermesh/orderbook-aggregator/business/orderbook/infra/grpc"
	"github.com/ordermesh/orderbook-aggregator/internal/apm"
	"github.com/ordermesh/orderbook-aggregator/internal/config"
	"github.com/ordermesh/orderbook-aggregator/internal/health"
	"github.com/ordermesh/orderbook-aggregator/internal/logger"
	"github.com/ordermesh/orderbook-aggregator/internal/metrics"
	"github.com/ordermesh/orderbook-aggregator/internal/monolith"
	orderbookv1 "github.com/ordermesh/orderbook-aggregator/proto/orderbook/v1"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("orderbook-aggregator %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}
	log := logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
	log.Info(ctx, "starting order-book aggregator", "version", version, "environment", cfg.App.Environment)

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	modules := []monolith.Module{&orderbook.Module{}}
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	b := orderbookDI.GetBus(mono.Services())
	grpcServer := aggrgrpc.NewGRPCServer()
	orderbookv1.RegisterOrderbookAggregatorServer(grpcServer, aggrgrpc.New(b, log))
	dual := aggrgrpc.NewDualStackServer(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}
	log.Info(ctx, "rpc server listening", "addr", cfg.Server.Addr)

	serveErr := make(chan error, 1)
	go func() { serveErr <- dual.Serve(lis) }()

	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down")
		return dual.Shutdown(context.Background())
	case err := <-serveErr:
		return fmt.Errorf("rpc server stopped: %w", err)
	}
}
