package grpc

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/metadata"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook/domain"
	"github.com/ordermesh/orderbook-aggregator/business/orderbook/infra/bus"
	"github.com/ordermesh/orderbook-aggregator/internal/logger"
	orderbookv1 "github.com/ordermesh/orderbook-aggregator/proto/orderbook/v1"
)

// fakeStream is a minimal grpc.ServerStream double that records every
// Summary sent and signals sent on each one, so a test can wait for N
// sends without a busy loop or a race on the slice.
type fakeStream struct {
	ctx context.Context

	mu   sync.Mutex
	sent []*orderbookv1.Summary
	wake chan struct{}
}

func newFakeStream(ctx context.Context) *fakeStream {
	return &fakeStream{ctx: ctx, wake: make(chan struct{}, 1)}
}

func (f *fakeStream) SetHeader(metadata.MD) error { return nil }
func (f *fakeStream) SendHeader(metadata.MD) error { return nil }
func (f *fakeStream) SetTrailer(metadata.MD)       {}
func (f *fakeStream) Context() context.Context     { return f.ctx }

func (f *fakeStream) SendMsg(m any) error {
	f.mu.Lock()
	f.sent = append(f.sent, m.(*orderbookv1.Summary))
	f.mu.Unlock()
	select {
	case f.wake <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeStream) RecvMsg(any) error { return io.EOF }

func (f *fakeStream) Send(m *orderbookv1.Summary) error {
	return f.SendMsg(m)
}

func (f *fakeStream) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeStream) waitForAtLeast(t *testing.T, n int) {
	t.Helper()
	deadline := time.After(time.Second)
	for f.count() < n {
		select {
		case <-f.wake:
		case <-deadline:
			t.Fatalf("timed out waiting for %d sends, got %d", n, f.count())
		}
	}
}

func TestBookSummaryForwardsPublishedSummaries(t *testing.T) {
	b := bus.New(4)
	log := logger.New(io.Discard, logger.LevelError, "grpc-test", nil)
	srv := New(b, log)

	ctx, cancel := context.WithCancel(context.Background())
	stream := newFakeStream(ctx)

	done := make(chan error, 1)
	go func() { done <- srv.BookSummary(&orderbookv1.Empty{}, stream) }()

	b.Publish(domain.Summary{Spread: decimal.NewFromInt(5), HasSpread: true})
	stream.waitForAtLeast(t, 1)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stream.count() != 1 {
		t.Fatalf("expected 1 summary sent, got %d", stream.count())
	}
	if !stream.sent[0].HasSpread {
		t.Fatal("expected HasSpread to be true")
	}
}

func TestBookSummarySkipsLaggedWithoutError(t *testing.T) {
	b := bus.New(1)
	log := logger.New(io.Discard, logger.LevelError, "grpc-test", nil)
	srv := New(b, log)

	ctx, cancel := context.WithCancel(context.Background())
	stream := newFakeStream(ctx)

	done := make(chan error, 1)
	go func() { done <- srv.BookSummary(&orderbookv1.Empty{}, stream) }()

	for i := 0; i < 5; i++ {
		b.Publish(domain.Summary{Spread: decimal.NewFromInt(int64(i)), HasSpread: true})
	}
	stream.waitForAtLeast(t, 1)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
