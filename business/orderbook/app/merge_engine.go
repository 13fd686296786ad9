package app

import (
	"sync"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook/domain"
	"github.com/ordermesh/orderbook-aggregator/internal/mergeiter"
)

// MergeEngine holds the latest snapshot received from each venue and
// computes the merged top-N summary across all of them. Insert and
// Summary share a single lock so a publisher can insert a fresh
// snapshot and immediately compute the summary to publish without a
// concurrent Insert from another venue landing in between — the two
// operations are meant to be called back-to-back under one critical
// section, not independently.
type MergeEngine struct {
	mu          sync.Mutex
	bySource    map[string]*domain.OrderBook
	summarySize int
}

// NewMergeEngine creates a merge engine that truncates summaries to
// summarySize entries per side.
func NewMergeEngine(summarySize int) *MergeEngine {
	return &MergeEngine{
		bySource:    make(map[string]*domain.OrderBook),
		summarySize: summarySize,
	}
}

// Lock acquires the engine's single lock, for callers that need to pair
// Insert with Summary atomically (the ingestion loop's normal use).
func (e *MergeEngine) Lock()   { e.mu.Lock() }
func (e *MergeEngine) Unlock() { e.mu.Unlock() }

// InsertLocked replaces venue's last known order book. Caller must hold
// the engine's lock (see Lock/Unlock).
func (e *MergeEngine) InsertLocked(venue string, ob *domain.OrderBook) {
	e.bySource[venue] = ob
}

// Insert replaces venue's last known order book under its own lock,
// for callers that don't need to pair it with an immediate Summary.
func (e *MergeEngine) Insert(venue string, ob *domain.OrderBook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.InsertLocked(venue, ob)
}

// SummaryLocked computes the merged top-N summary from the current
// per-venue state. Caller must hold the engine's lock.
func (e *MergeEngine) SummaryLocked() (domain.Summary, error) {
	askSources := make([][]domain.WirePriceLevel, 0, len(e.bySource))
	bidSources := make([][]domain.WirePriceLevel, 0, len(e.bySource))

	for venue, ob := range e.bySource {
		asks := make([]domain.WirePriceLevel, 0, len(ob.Asks))
		for _, lvl := range ob.Asks {
			w, err := domain.ToWirePriceLevel(venue, lvl)
			if err != nil {
				return domain.Summary{}, err
			}
			asks = append(asks, w)
		}
		askSources = append(askSources, asks)

		bids := make([]domain.WirePriceLevel, 0, len(ob.Bids))
		for _, lvl := range ob.Bids {
			w, err := domain.ToWirePriceLevel(venue, lvl)
			if err != nil {
				return domain.Summary{}, err
			}
			bids = append(bids, w)
		}
		bidSources = append(bidSources, bids)
	}

	ascending := func(a, b domain.WirePriceLevel) bool { return a.Less(b) }
	descending := func(a, b domain.WirePriceLevel) bool { return b.Less(a) }

	mergedAsks := mergeiter.MergeSlices(ascending, e.summarySize, askSources...)
	mergedBids := mergeiter.MergeSlices(descending, e.summarySize, bidSources...)

	return domain.NewSummary(mergedAsks, mergedBids), nil
}

// Summary computes the merged summary under its own lock.
func (e *MergeEngine) Summary() (domain.Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.SummaryLocked()
}
