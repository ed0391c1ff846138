// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package useq

import (
	"sync/atomic"

	"code.hybscloud.com/spin"
	"code.hybscloud.com/useq/epoch"
)

// Queue is an unbounded lock-free MPMC FIFO queue built from linked
// fixed-capacity segments.
//
// Producers claim slots in the tail segment with a fetch-and-add, then
// publish them through an in-order commit chain so consumers only ever
// observe a contiguous prefix of fully written elements. When a segment
// fills up, the producer that discovers the overflow links a new segment
// pre-seeded with its value, Michael-Scott style; competitors help
// advance the tail and retry. Consumers inspect only the oldest
// committed, unconsumed element and claim it by CAS; exhausted head
// segments are handed to epoch-deferred reclamation.
//
// Every operation takes a pinned [epoch.Guard]. The pin keeps segment
// memory alive for the duration of the call: without it, a recycled
// segment could be overwritten while a stalled producer or consumer
// still holds a pointer into it. All guards passed to one queue must
// come from the same collector, or pins cannot block each other's
// reclamation.
//
// Elements are FIFO in claim order: two producers racing for slots can
// have their physical call order reversed in the final sequence. This is
// inherent to array-based lock-free queues; the structure is a queue,
// not a total real-time order.
type Queue[T any] struct {
	_     pad
	head  atomic.Pointer[Segment[T]]
	_     padPtr
	tail  atomic.Pointer[Segment[T]]
	_     padPtr
	alloc Allocator[T]
}

// New creates a queue backed by the default [HeapAllocator].
func New[T any]() *Queue[T] {
	return NewQueue[T](HeapAllocator[T]{})
}

// NewQueue creates a queue whose segments come from alloc.
// Panics if alloc is nil or fails to produce the sentinel segment.
func NewQueue[T any](alloc Allocator[T]) *Queue[T] {
	if alloc == nil {
		panic("useq: nil allocator")
	}
	q := &Queue[T]{alloc: alloc}
	sentinel := q.newSegment(nil)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// newSegment obtains a segment from the allocator and initializes its
// cursors, seeding slot 0 with *first when first is non-nil.
func (q *Queue[T]) newSegment(first *T) *Segment[T] {
	s := q.alloc.AllocSegment()
	if s == nil {
		panic("useq: allocator exhausted")
	}
	s.prime(first)
	return s
}

// Push inserts *v at the logical tail. It retries internally and always
// succeeds; the only wait is a bounded spin on the immediate
// predecessor's commit step.
//
// The guard must be pinned for the duration of the call.
func (q *Queue[T]) Push(v *T, g *epoch.Guard) {
	_ = g // the pin itself is the protection; see Queue doc
	for {
		tail := q.tail.Load()
		idx := tail.allocate.AddAcqRel(1) - 1

		if idx < SegmentCapacity {
			tail.slots[idx] = *v

			// Publish in claim order: wait only for the predecessor's
			// commit, never for arbitrary contention.
			sw := spin.Wait{}
			for !tail.commit.CompareAndSwapAcqRel(int64(idx)-1, int64(idx)) {
				sw.Once()
			}
			return
		}

		// Overflow. If the tail already moved, the increment hit a dead
		// segment; retry without allocating.
		if q.tail.Load() != tail {
			continue
		}

		next := tail.next.Load()
		if next == nil {
			seg := q.newSegment(v)
			if tail.next.CompareAndSwap(nil, seg) {
				q.tail.CompareAndSwap(tail, seg)
				return
			}
			// Lost the link race. The speculative segment was never
			// published, so it goes straight back to the allocator,
			// disposing of the duplicated value with it.
			q.alloc.FreeSegment(seg)
			continue
		}

		// Another producer linked a segment; help the tail forward.
		q.tail.CompareAndSwap(tail, next)
	}
}

// PopIf attempts to dequeue the current logical head element, and only
// if pred returns true for it. This is not a scan: when the head element
// fails the predicate, PopIf returns ErrWouldBlock immediately even if a
// later element would match.
//
// On success the returned pointer aims into segment storage and stays
// valid only while g remains pinned; copy the value out before Leave if
// it is needed longer. ErrWouldBlock means empty or no match: a
// point-in-time judgment, not a guarantee of global emptiness under
// concurrent pushes.
func (q *Queue[T]) PopIf(pred func(*T) bool, g *epoch.Guard) (*T, error) {
	for {
		head := q.head.Load()
		idx := head.consume.LoadAcquire()

		if idx >= SegmentCapacity {
			// Segment exhausted; advance past it or report empty.
			next := head.next.Load()
			if next == nil {
				return nil, ErrWouldBlock
			}
			if q.head.CompareAndSwap(head, next) {
				alloc := q.alloc
				g.Retire(func() { alloc.FreeSegment(head) })
			}
			// A losing CAS means another consumer advanced head; either
			// way, re-read fresh state.
			continue
		}

		if int64(idx) > head.commit.LoadAcquire() {
			return nil, ErrWouldBlock
		}

		item := &head.slots[idx]
		if !pred(item) {
			return nil, ErrWouldBlock
		}
		if !head.consume.CompareAndSwapAcqRel(idx, idx+1) {
			// Another consumer took this slot; do not assume idx+1 is
			// the new head, re-read everything.
			continue
		}
		return item, nil
	}
}

// Pop dequeues the head element unconditionally. Equivalent to PopIf
// with an always-true predicate.
func (q *Queue[T]) Pop(g *epoch.Guard) (*T, error) {
	return q.PopIf(matchAny[T], g)
}

func matchAny[T any](*T) bool { return true }

// Drain empties the queue and returns all segment storage to the
// allocator, using the unprotected guard.
//
// The caller must guarantee exclusive access: no concurrent Push, PopIf
// or Pop may run, and the queue must not be used after Drain returns.
func (q *Queue[T]) Drain() {
	g := epoch.Unprotected()
	for {
		if _, err := q.Pop(&g); err != nil {
			break
		}
	}
	// With no producers in flight a fully drained chain has collapsed to
	// a single segment: head only advances past exhausted segments, and
	// any linked successor forces that advance during the drain.
	last := q.head.Load()
	q.head.Store(nil)
	q.tail.Store(nil)
	q.alloc.FreeSegment(last)
}
