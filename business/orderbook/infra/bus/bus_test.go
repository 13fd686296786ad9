package bus

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook/domain"
)

func summaryWithSpread(n int64) domain.Summary {
	return domain.Summary{Spread: decimal.NewFromInt(n), HasSpread: true}
}

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	b := New(4)
	_, ch1, unsub1 := b.Subscribe()
	defer unsub1()
	_, ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Publish(summaryWithSpread(1))

	for _, ch := range []<-chan Item{ch1, ch2} {
		item := <-ch
		if item.Err != nil {
			t.Fatalf("unexpected error: %v", item.Err)
		}
	}
}

func TestPublishReportsLaggedWhenChannelFull(t *testing.T) {
	b := New(1)
	_, ch, unsub := b.Subscribe()
	defer unsub()

	b.Publish(summaryWithSpread(1)) // fills the buffered slot
	b.Publish(summaryWithSpread(2)) // dropped, dropped=1
	b.Publish(summaryWithSpread(3)) // dropped, dropped=2

	first := <-ch // the buffered summary 1
	if first.Err != nil {
		t.Fatalf("expected summary, got error: %v", first.Err)
	}

	b.Publish(summaryWithSpread(4)) // room now; delivers Lagged(2) first

	lagged := <-ch
	l, ok := lagged.Err.(*Lagged)
	if !ok {
		t.Fatalf("expected Lagged error, got %+v", lagged)
	}
	if l.Skipped != 2 {
		t.Fatalf("expected 2 skipped, got %d", l.Skipped)
	}
}

func TestPublishReportsLaggedWithCapacityTen(t *testing.T) {
	b := New(10)
	_, ch, unsub := b.Subscribe()
	defer unsub()

	for i := int64(1); i <= 15; i++ {
		b.Publish(summaryWithSpread(i))
	}

	for i := 0; i < 10; i++ {
		item := <-ch
		if item.Err != nil {
			t.Fatalf("unexpected error at item %d: %v", i, item.Err)
		}
	}

	// the channel is now empty again; the next publish delivers the
	// Lagged notification for the 5 summaries dropped past capacity.
	b.Publish(summaryWithSpread(16))

	lagged := <-ch
	l, ok := lagged.Err.(*Lagged)
	if !ok {
		t.Fatalf("expected Lagged error, got %+v", lagged)
	}
	if l.Skipped != 5 {
		t.Fatalf("expected 5 skipped, got %d", l.Skipped)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New(1)
	_, ch, unsub := b.Subscribe()
	unsub()
	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}
