// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package epoch

import "sync/atomic"

// retireRecord is one deferred destruction callback tagged with the epoch
// at which it was retired.
type retireRecord struct {
	fn    func()
	epoch uint64
	next  *retireRecord
}

// retireStack is a Treiber stack of retire records. Records link through
// GC-traced pointers so a stalled reclaimer cannot lose callbacks to the
// runtime collector.
type retireStack struct {
	head atomic.Pointer[retireRecord]
}

func (s *retireStack) push(rec *retireRecord) {
	for {
		h := s.head.Load()
		rec.next = h
		if s.head.CompareAndSwap(h, rec) {
			return
		}
	}
}

// takeAll detaches the whole stack. Concurrent callers obtain disjoint
// batches.
func (s *retireStack) takeAll() *retireRecord {
	return s.head.Swap(nil)
}

// retire records fn at the current epoch and collects under pressure.
func (c *Collector) retire(fn func()) {
	rec := &retireRecord{fn: fn, epoch: c.global.LoadAcquire()}
	c.retired.push(rec)
	if c.pending.Add(1) >= retirePressure {
		c.Advance()
	}
}

// reclaim runs every detached record whose retire epoch lies two or more
// steps behind the global epoch; the rest are pushed back.
//
// The two-step lag is the safety argument: advancing from e to e+1
// requires every pinned reader to have observed e, so once the epoch
// reaches e+2 no guard pinned at or before e can still be live.
func (c *Collector) reclaim() {
	g := c.global.LoadAcquire()
	rec := c.retired.takeAll()
	for rec != nil {
		next := rec.next
		if rec.epoch+2 <= g {
			rec.fn()
			c.pending.Add(-1)
		} else {
			rec.next = nil
			c.retired.push(rec)
		}
		rec = next
	}
}
