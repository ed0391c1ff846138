// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package useq provides an unbounded lock-free MPMC FIFO queue built
// from linked fixed-capacity segments.
//
// Unlike the bounded rings in code.hybscloud.com/lfq, this queue grows
// without limit by chaining 256-slot segments: Push never reports a full
// queue and never blocks, which makes the queue a building block for
// pipelines where backpressure is handled elsewhere or not at all.
//
// # Quick Start
//
//	q := useq.New[int]()
//
//	// Produce
//	g := epoch.Enter()
//	v := 42
//	q.Push(&v, &g)
//	g.Leave()
//
//	// Consume
//	g = epoch.Enter()
//	if p, err := q.Pop(&g); err == nil {
//	    fmt.Println(*p) // valid while g is pinned
//	}
//	g.Leave()
//
// # Guards
//
// Every operation takes a pinned [epoch.Guard]. The pin guarantees that
// segment memory observed during the call is not recycled underneath the
// caller, and it scopes the pointer returned by Pop/PopIf: dereference it
// only while the guard is pinned, and copy the value out if it is needed
// longer. Acquire a guard per call or per short batch; a long-lived pin
// delays reclamation for the whole process.
//
// # Predicate Gating
//
// PopIf is the queue's only conditional primitive. It applies the
// predicate to the oldest unconsumed element and nothing else:
//
//	a, b := 5, 10
//	q.Push(&a, &g)
//	q.Push(&b, &g)
//	q.PopIf(func(x *int) bool { return *x == 10 }, &g) // ErrWouldBlock
//	q.PopIf(func(x *int) bool { return *x == 5 }, &g)  // &5
//
// A caller wanting a timeout polls Pop in a loop with an external
// deadline check between calls; the queue has no intrinsic cancellation.
//
// # Ordering
//
// Consumers observe a contiguous prefix of fully written elements per
// segment: the commit chain forbids observing slot i while slot i-1 is
// still mid-write. Across segments, chain order gives whole-queue FIFO.
// Between concurrent pushes, claim order decides final position, not
// call order. This is standard for array-based lock-free queues.
//
// # Memory Reclamation
//
// Exhausted head segments are not freed on head-advance; they are retired
// through the consumer's guard and destroyed only when no pinned guard
// can still observe them. This is the discipline that prevents
// use-after-free without a global lock. See [code.hybscloud.com/useq/epoch].
//
// # Allocators
//
// Segment storage comes from an [Allocator]. [HeapAllocator] (the
// default) leaves reclamation to the garbage collector; [PoolAllocator]
// recycles segments through a sync.Pool, trading GC pressure for strict
// dependence on the reclamation protocol:
//
//	q := useq.NewQueue[Event](useq.NewPoolAllocator[Event]())
//
// # Error Handling
//
// Pop and PopIf return [ErrWouldBlock] when nothing can be removed
// (queue empty or predicate rejected). This is a control flow signal
// sourced from [code.hybscloud.com/iox] for ecosystem consistency; Push
// has no error path at all. Failed CAS attempts inside operations are
// retried transparently and never surface.
//
// # Race Detection
//
// Go's race detector cannot observe happens-before relationships
// established through atomic memory orderings on separate variables, so
// the commit protocol triggers false positives under -race. Concurrency
// tests are gated on [RaceEnabled]; see the lfq package documentation
// for the full rationale.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause
// instructions.
package useq
