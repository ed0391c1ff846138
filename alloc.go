// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package useq

import "sync"

// Allocator supplies backing storage for queue segments.
//
// AllocSegment must return a segment whose slot array is zeroed; cursor
// state is initialized by the queue. FreeSegment reclaims a segment; the
// queue guarantees that no goroutine can still observe the segment when
// FreeSegment runs (either the segment was never published, or it passed
// through epoch-deferred retirement first), so implementations are free
// to recycle the memory immediately.
//
// Returning nil from AllocSegment is treated as allocator exhaustion and
// aborts the queue operation with a panic: there is no safe way to retry
// a push without memory.
type Allocator[T any] interface {
	AllocSegment() *Segment[T]
	FreeSegment(s *Segment[T])
}

// HeapAllocator allocates segments from the Go heap and releases them to
// the garbage collector. This is the default allocator.
type HeapAllocator[T any] struct{}

// AllocSegment returns a fresh zeroed segment.
func (HeapAllocator[T]) AllocSegment() *Segment[T] {
	return new(Segment[T])
}

// FreeSegment drops the segment. The garbage collector reclaims it along
// with any elements still referenced from its slots.
func (HeapAllocator[T]) FreeSegment(s *Segment[T]) {
	_ = s
}

// PoolAllocator recycles segments through a sync.Pool.
//
// Recycling makes deferred reclamation load-bearing: a segment returned
// to the pool may be handed to a producer and overwritten immediately, so
// freeing must wait until no guard can still observe the segment. The
// queue enforces this through epoch retirement; PoolAllocator itself
// performs no synchronization beyond the pool's own.
type PoolAllocator[T any] struct {
	pool sync.Pool
}

// NewPoolAllocator creates an empty segment pool.
func NewPoolAllocator[T any]() *PoolAllocator[T] {
	return &PoolAllocator[T]{
		pool: sync.Pool{New: func() any { return new(Segment[T]) }},
	}
}

// AllocSegment returns a pooled segment, or a fresh one when the pool is
// empty. Slots are zeroed in either case: FreeSegment clears before Put.
func (a *PoolAllocator[T]) AllocSegment() *Segment[T] {
	return a.pool.Get().(*Segment[T])
}

// FreeSegment clears the segment and returns it to the pool. Clearing
// happens on the free side so pooled segments hold no stale element
// references while they wait for reuse.
func (a *PoolAllocator[T]) FreeSegment(s *Segment[T]) {
	s.reset()
	a.pool.Put(s)
}
