// Package mergeiter implements a generic k-way merge over already-sorted
// pull sources, the same min-heap-of-lookahead-values construction used
// by the original order-book merger's Takeble/BinaryHeap<Reverse<...>>.
package mergeiter

import "container/heap"

// Next pulls the next element of one sorted source. ok is false once the
// source is exhausted.
type Next[T any] func() (T, bool)

// FromSlice adapts an already-sorted slice into a Next source.
func FromSlice[T any](s []T) Next[T] {
	i := 0
	return func() (T, bool) {
		if i >= len(s) {
			var zero T
			return zero, false
		}
		v := s[i]
		i++
		return v, true
	}
}

type lookahead[T any] struct {
	value T
	next  Next[T]
}

type mergeHeap[T any] struct {
	items []lookahead[T]
	less  func(a, b T) bool
}

func (h *mergeHeap[T]) Len() int            { return len(h.items) }
func (h *mergeHeap[T]) Less(i, j int) bool  { return h.less(h.items[i].value, h.items[j].value) }
func (h *mergeHeap[T]) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *mergeHeap[T]) Push(x any)          { h.items = append(h.items, x.(lookahead[T])) }
func (h *mergeHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	it := old[n-1]
	h.items = old[:n-1]
	return it
}

// Iter is a k-way merge over sorted sources: Next always returns the
// smallest (per less) element currently available across every source,
// pulling lazily so unbounded/streaming sources never need to be fully
// materialized up front.
type Iter[T any] struct {
	h *mergeHeap[T]
}

// New builds a merge iterator over sorted sources.
func New[T any](less func(a, b T) bool, sources ...Next[T]) *Iter[T] {
	h := &mergeHeap[T]{less: less}
	for _, src := range sources {
		if v, ok := src(); ok {
			h.items = append(h.items, lookahead[T]{value: v, next: src})
		}
	}
	heap.Init(h)
	return &Iter[T]{h: h}
}

// Next returns the next smallest element across all sources.
func (it *Iter[T]) Next() (T, bool) {
	if it.h.Len() == 0 {
		var zero T
		return zero, false
	}
	top := heap.Pop(it.h).(lookahead[T])
	if v, ok := top.next(); ok {
		heap.Push(it.h, lookahead[T]{value: v, next: top.next})
	}
	return top.value, true
}

// Take collects up to n elements from it, fewer if it is exhausted first.
func Take[T any](it *Iter[T], n int) []T {
	out := make([]T, 0, n)
	for len(out) < n {
		v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// MergeSlices is a convenience wrapper for the common case of merging
// already-materialized sorted slices down to their first n elements.
func MergeSlices[T any](less func(a, b T) bool, n int, sources ...[]T) []T {
	nexts := make([]Next[T], len(sources))
	for i, s := range sources {
		nexts[i] = FromSlice(s)
	}
	return Take(New(less, nexts...), n)
}
