// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package useq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// SegmentCapacity is the number of slots in one segment.
const SegmentCapacity = 256

// Segment is a fixed-capacity chunk of queue storage.
//
// Three cursors coordinate access to the slot array:
//
//	allocate: FAA-claimed by producers; a claim below capacity grants
//	          exclusive write access to exactly one slot
//	commit:   highest contiguously written slot, -1 when none; slot i is
//	          visible to consumers iff commit >= i
//	consume:  next slot eligible for removal; advanced only by a
//	          successful CAS, which arbitrates competing consumers
//
// Segments link into a chain through next; the link is set exactly once,
// by whichever producer's CAS wins. Segment state is opaque to callers:
// allocators traffic in *Segment but never inspect it.
type Segment[T any] struct {
	_        pad
	allocate atomix.Uint64
	_        padShort
	commit   atomix.Int64
	_        padShort
	consume  atomix.Uint64
	_        padShort
	next     atomic.Pointer[Segment[T]]
	_        padPtr
	slots    [SegmentCapacity]T
}

// prime initializes the cursors of a segment entering the chain. The
// slot array must already be zeroed (the Allocator contract).
//
// When first is non-nil the segment carries one pre-committed element in
// slot 0. Seeding before publication closes the race where a competing
// producer could claim slot 0 of a segment nobody else can see yet.
func (s *Segment[T]) prime(first *T) {
	if first != nil {
		s.slots[0] = *first
		s.allocate.StoreRelaxed(1)
		s.commit.StoreRelaxed(0)
	} else {
		s.allocate.StoreRelaxed(0)
		s.commit.StoreRelaxed(-1)
	}
	s.consume.StoreRelaxed(0)
	s.next.Store(nil)
}

// reset clears cursors, link and every slot, releasing element memory
// before the segment is recycled or dropped. Covers the whole slot
// array: consumed, committed-but-unconsumed and never-written alike.
func (s *Segment[T]) reset() {
	s.allocate.StoreRelaxed(0)
	s.commit.StoreRelaxed(-1)
	s.consume.StoreRelaxed(0)
	s.next.Store(nil)
	clear(s.slots[:])
}
